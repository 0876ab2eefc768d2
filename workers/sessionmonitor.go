package workers

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/chainfund/donation-workers/wallet"
)

// SessionMonitor refreshes the balances of connected wallet sessions and
// alerts when a donor wallet runs low enough that donations will start
// failing the prepare-step balance check.
type SessionMonitor struct {
	WorkerAbs
	adapters   []wallet.Adapter
	minBalance decimal.Decimal
}

func (b *SessionMonitor) Init(id int, name string, freq int, network string, adapters []wallet.Adapter, minBalance decimal.Decimal) error {
	if err := b.WorkerAbs.Init(id, name, freq, network); err != nil {
		return err
	}
	b.adapters = adapters
	b.minBalance = minBalance
	return nil
}

func (b *SessionMonitor) Execute() {
	b.Logger.Info("SessionMonitor worker is executing...")

	for _, adapter := range b.adapters {
		session := adapter.Session()
		if !session.Connected {
			b.Logger.Infof("Chain %v: no connected session", adapter.Chain())
			continue
		}

		balance, err := adapter.RefreshBalance()
		if err != nil {
			b.ExportErrorLog(fmt.Sprintf("Could not refresh %v balance for %v - with err: %v", adapter.Chain(), session.Address, err))
			continue
		}
		b.Logger.Infof("Chain %v: %v %v available", adapter.Chain(), balance, adapter.NativeCurrencySymbol())

		if balance.LessThan(b.minBalance) {
			b.ExportErrorLog(fmt.Sprintf(
				"Low balance on %v wallet %v: %v %v remaining",
				adapter.Chain(), session.Address, balance, adapter.NativeCurrencySymbol(),
			))
		}
	}
}
