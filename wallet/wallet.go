package wallet

import (
	"github.com/shopspring/decimal"

	"github.com/chainfund/donation-workers/entities"
)

// Adapter is the chain-agnostic wallet capability set. Each adapter owns
// one ChainSession; Session returns value snapshots only, and all mutation
// happens inside the adapter.
type Adapter interface {
	Chain() entities.Chain
	Session() entities.ChainSession

	// Connect authorizes the signing backend and returns its address. It
	// fails with entities.ErrWalletUnavailable when no backend is
	// configured, entities.ErrUserRejected when authorization is declined,
	// and entities.ErrInvalidAddressFormat when the backend reports a
	// malformed address.
	Connect() (string, error)
	Disconnect() error

	// RefreshBalance re-reads the native balance from the chain and
	// records it on the session.
	RefreshBalance() (decimal.Decimal, error)

	// Send submits a native payment and returns the transaction hash. The
	// balance is checked client-side before submission.
	Send(destination string, amount decimal.Decimal, memo string) (string, error)

	ValidateAddress(address string) error
	NativeCurrencySymbol() string
}
