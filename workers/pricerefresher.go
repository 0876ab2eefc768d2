package workers

import (
	"github.com/chainfund/donation-workers/pricing"
)

// PriceRefresher keeps the oracle's quote cache warm so donations rarely
// pay the fetch latency, and raises a flag when the live feed has been
// replaced by the default table.
type PriceRefresher struct {
	WorkerAbs
	oracle *pricing.Oracle
}

func (b *PriceRefresher) Init(id int, name string, freq int, network string, oracle *pricing.Oracle) error {
	if err := b.WorkerAbs.Init(id, name, freq, network); err != nil {
		return err
	}
	b.oracle = oracle
	return nil
}

func (b *PriceRefresher) Execute() {
	b.Logger.Info("PriceRefresher worker is executing...")

	defaults := b.oracle.Refresh()
	for code, quote := range b.oracle.Quotes() {
		b.Logger.Infof("Quote %v: %v USD (default=%v)", code, quote.USDPrice, quote.Default)
	}
	if defaults > 0 {
		b.Logger.Warnf("Price feed degraded: %v asset(s) served from the default table", defaults)
	}
}
