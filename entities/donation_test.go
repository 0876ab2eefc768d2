package entities

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

func mustAsset(t *testing.T, code string) Asset {
	t.Helper()
	asset, ok := AssetByCode(code)
	if !ok {
		t.Fatalf("asset %v not supported", code)
	}
	return asset
}

func TestDonationRequestValidate(t *testing.T) {
	xlm := mustAsset(t, "XLM")

	req := NewDonationRequest("proj-1", xlm, decimal.NewFromInt(50), 1000, "")
	if err := req.Validate(); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}

	req = NewDonationRequest("", xlm, decimal.NewFromInt(50), 1000, "")
	if err := req.Validate(); err == nil {
		t.Errorf("empty project id accepted")
	}

	req = NewDonationRequest("proj-1", Asset{Code: "DOGE"}, decimal.NewFromInt(50), 1000, "")
	if err := req.Validate(); err == nil {
		t.Errorf("unsupported asset accepted")
	}

	req = NewDonationRequest("proj-1", xlm, decimal.Zero, 1000, "")
	if err := req.Validate(); err == nil {
		t.Errorf("zero fiat amount accepted")
	}

	req = NewDonationRequest("proj-1", xlm, decimal.NewFromInt(50), 2501, "")
	if err := req.Validate(); err == nil {
		t.Errorf("fee above 2500 bps accepted")
	}

	req = NewDonationRequest("proj-1", xlm, decimal.NewFromInt(50), -1, "")
	if err := req.Validate(); err == nil {
		t.Errorf("negative fee accepted")
	}
}

func TestTotalFiatAmount(t *testing.T) {
	xlm := mustAsset(t, "XLM")

	req := NewDonationRequest("proj-1", xlm, decimal.NewFromInt(50), 1000, "")
	total := req.TotalFiatAmount()
	if !total.Equal(decimal.NewFromInt(55)) {
		t.Errorf("50 USD at 1000 bps: got %v, want 55", total)
	}

	req = NewDonationRequest("proj-1", xlm, decimal.NewFromInt(100), 0, "")
	total = req.TotalFiatAmount()
	if !total.Equal(decimal.NewFromInt(100)) {
		t.Errorf("zero fee should leave amount unchanged, got %v", total)
	}
}

func TestNormalizedMemo(t *testing.T) {
	xlm := mustAsset(t, "XLM")

	req := NewDonationRequest("proj-1", xlm, decimal.NewFromInt(10), 0, "")
	if memo := req.NormalizedMemo(); memo != "Donate proj-1" {
		t.Errorf("default memo: got %q", memo)
	}

	req.Memo = "  thanks!  "
	if memo := req.NormalizedMemo(); memo != "thanks!" {
		t.Errorf("trim: got %q", memo)
	}

	req.Memo = "this memo is definitely longer than twenty characters"
	if memo := req.NormalizedMemo(); utf8.RuneCountInString(memo) != MaxMemoLength {
		t.Errorf("truncation: got %q (len %v)", memo, len(memo))
	}

	// truncation must not split a multi-byte rune
	req.Memo = strings.Repeat("✓", 25)
	memo := req.NormalizedMemo()
	if !utf8.ValidString(memo) {
		t.Errorf("truncated memo is not valid UTF-8: %q", memo)
	}
	if utf8.RuneCountInString(memo) != MaxMemoLength {
		t.Errorf("multi-byte truncation: got %v runes", utf8.RuneCountInString(memo))
	}
}

func TestXlmStroopsConversion(t *testing.T) {
	stroops := XlmToStroops(decimal.RequireFromString("458.333333339"))
	if stroops != 4583333333 {
		t.Errorf("stroops should floor fractional remainder, got %v", stroops)
	}
	back := StroopsToXlm(4583333333)
	if !back.Equal(decimal.RequireFromString("458.3333333")) {
		t.Errorf("stroops to xlm: got %v", back)
	}
}
