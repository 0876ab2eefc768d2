package entities

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MaxPlatformFeeBps = 2500 // 25%
	MaxMemoLength     = 20   // kept short for safety across chains
)

// DonationRequest captures user intent for a single donation. It is
// immutable once submitted; retries construct a new request.
type DonationRequest struct {
	ID                string          `json:"id"`
	ProjectID         string          `json:"project_id"`
	Asset             Asset           `json:"asset"`
	FiatAmount        decimal.Decimal `json:"fiat_amount"`
	PlatformFeeBps    int64           `json:"platform_fee_bps"`
	Memo              string          `json:"memo"`
	RecipientOverride string          `json:"recipient_override,omitempty"`
}

func NewDonationRequest(projectID string, asset Asset, fiatAmount decimal.Decimal, feeBps int64, memo string) DonationRequest {
	return DonationRequest{
		ID:             uuid.NewString(),
		ProjectID:      projectID,
		Asset:          asset,
		FiatAmount:     fiatAmount,
		PlatformFeeBps: feeBps,
		Memo:           memo,
	}
}

func (r DonationRequest) Validate() error {
	if r.ProjectID == "" {
		return &ValidationError{Field: "projectId", Reason: "must not be empty"}
	}
	if _, ok := AssetByCode(r.Asset.Code); !ok {
		return &ValidationError{Field: "asset", Reason: "unsupported asset " + r.Asset.Code}
	}
	if !r.FiatAmount.IsPositive() {
		return &ValidationError{Field: "fiatAmount", Reason: "must be greater than zero"}
	}
	if r.PlatformFeeBps < 0 || r.PlatformFeeBps > MaxPlatformFeeBps {
		return &ValidationError{Field: "platformFeeBps", Reason: "must be within [0, 2500]"}
	}
	return nil
}

// TotalFiatAmount is the donation plus the platform fee share.
func (r DonationRequest) TotalFiatAmount() decimal.Decimal {
	fee := decimal.New(r.PlatformFeeBps, -4)
	return r.FiatAmount.Mul(decimal.NewFromInt(1).Add(fee))
}

// NormalizedMemo trims and bounds the memo, substituting a project-tagged
// default when the user left it empty.
func (r DonationRequest) NormalizedMemo() string {
	memo := strings.TrimSpace(r.Memo)
	if memo == "" {
		memo = "Donate " + r.ProjectID
	}
	if utf8.RuneCountInString(memo) > MaxMemoLength {
		runes := []rune(memo)
		memo = string(runes[:MaxMemoLength])
	}
	return memo
}
