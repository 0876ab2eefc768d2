package contracts

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestVotingPower(t *testing.T) {
	// 100 XLM = 1e9 stroops, sqrt = 31622.77...
	power := VotingPower(decimal.NewFromInt(100))
	if power != 31622 {
		t.Errorf("100 XLM: got %v, want 31622", power)
	}
	if VotingPower(decimal.Zero) != 0 {
		t.Errorf("zero contribution should have zero power")
	}
	if VotingPower(decimal.RequireFromString("-5")) != 0 {
		t.Errorf("negative contribution should have zero power")
	}
	// 1 stroop is the smallest non-zero power
	if VotingPower(decimal.RequireFromString("0.0000001")) != 1 {
		t.Errorf("1 stroop should have power 1")
	}
}
