package contracts

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/chainfund/donation-workers/entities"
)

// VotingPower computes a backer's quadratic voting power from their XLM
// contribution: floor(sqrt(stroops)). The voting algorithm itself runs in
// the DAO backend; this mirrors its weighting for display and preflight
// checks.
func VotingPower(contributionXlm decimal.Decimal) uint64 {
	stroops := entities.XlmToStroops(contributionXlm)
	if stroops <= 0 {
		return 0
	}
	return uint64(math.Floor(math.Sqrt(float64(stroops))))
}
