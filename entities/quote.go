package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceQuote is a short-lived spot price for an asset's native currency.
// Default reports whether the quote came from the static fallback table
// rather than the live feed.
type PriceQuote struct {
	Asset     Asset
	USDPrice  decimal.Decimal
	FetchedAt time.Time
	Default   bool
}

// Fresh reports whether the quote is younger than maxAge. Default quotes
// are always considered fresh; there is nothing newer to fetch for them.
func (q PriceQuote) Fresh(maxAge time.Duration) bool {
	if q.Default {
		return true
	}
	return time.Since(q.FetchedAt) < maxAge
}
