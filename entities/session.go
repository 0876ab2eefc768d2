package entities

import "github.com/shopspring/decimal"

// ChainSession is the per-chain wallet state. It is owned exclusively by the
// chain adapter; everything else receives value snapshots only.
type ChainSession struct {
	Chain         Chain
	Connected     bool
	Address       string
	NativeBalance decimal.NullDecimal
}

// HasBalanceFor reports whether the session knows its balance and that
// balance covers the given native amount.
func (s ChainSession) HasBalanceFor(amount decimal.Decimal) bool {
	return s.NativeBalance.Valid && s.NativeBalance.Decimal.GreaterThanOrEqual(amount)
}
