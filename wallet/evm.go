package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/chainfund/donation-workers/entities"
)

const (
	evmTransferGasLimit = 21000
	evmCallTimeout      = 30 * time.Second
)

type EVMConfig struct {
	Chain          entities.Chain // ChainEthereum or ChainPolygon
	RPCURL         string
	ChainID        int64
	CurrencySymbol string
	PrivateKeyHex  string // empty means no signing backend configured
}

// EVMAdapter drives native value transfers on an EVM chain through a JSON
// RPC endpoint, signing locally with a configured key.
type EVMAdapter struct {
	cfg    EVMConfig
	client *ethclient.Client
	key    *ecdsa.PrivateKey
	store  *SessionStore
	logger *logrus.Entry

	mu      sync.Mutex
	session entities.ChainSession
}

func NewEVMAdapter(cfg EVMConfig, store *SessionStore, logger *logrus.Entry) *EVMAdapter {
	a := &EVMAdapter{
		cfg:     cfg,
		store:   store,
		logger:  logger,
		session: entities.ChainSession{Chain: cfg.Chain},
	}
	client, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		logger.Warnf("Could not dial EVM rpc %v - with err: %v", cfg.RPCURL, err)
	} else {
		a.client = client
	}
	a.silentReconnect()
	return a
}

func (a *EVMAdapter) Chain() entities.Chain {
	return a.cfg.Chain
}

func (a *EVMAdapter) NativeCurrencySymbol() string {
	return a.cfg.CurrencySymbol
}

// ChainID returns the EIP-155 chain id the adapter signs for.
func (a *EVMAdapter) ChainID() int64 {
	return a.cfg.ChainID
}

func (a *EVMAdapter) Session() entities.ChainSession {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

func (a *EVMAdapter) silentReconnect() {
	if a.store == nil {
		return
	}
	persisted, ok, err := a.store.Load(a.cfg.Chain)
	if err != nil {
		a.logger.Warnf("Could not read persisted %v session - with err: %v", a.cfg.Chain, err)
		return
	}
	if !ok || !persisted.Connected {
		return
	}

	addr, err := a.deriveAddress()
	if err != nil || addr.Hex() != persisted.Address {
		a.logger.Infof("Persisted %v session no longer authorized, clearing", a.cfg.Chain)
		_ = a.store.Clear(a.cfg.Chain)
		return
	}

	a.mu.Lock()
	a.session.Connected = true
	a.session.Address = addr.Hex()
	a.mu.Unlock()
	if _, err := a.RefreshBalance(); err != nil {
		a.logger.Warnf("Could not refresh %v balance on reconnect - with err: %v", a.cfg.Chain, err)
	}
}

func (a *EVMAdapter) deriveAddress() (common.Address, error) {
	if a.cfg.PrivateKeyHex == "" {
		return common.Address{}, entities.ErrWalletUnavailable
	}
	if a.key == nil {
		key, err := crypto.HexToECDSA(a.cfg.PrivateKeyHex)
		if err != nil {
			return common.Address{}, fmt.Errorf("%w: bad signing key", entities.ErrWalletUnavailable)
		}
		a.key = key
	}
	return crypto.PubkeyToAddress(a.key.PublicKey), nil
}

func (a *EVMAdapter) Connect() (string, error) {
	if a.client == nil {
		return "", entities.ErrWalletUnavailable
	}
	addr, err := a.deriveAddress()
	if err != nil {
		return "", err
	}

	a.mu.Lock()
	a.session.Connected = true
	a.session.Address = addr.Hex()
	a.mu.Unlock()

	if a.store != nil {
		if err := a.store.Save(a.cfg.Chain, PersistedSession{Address: addr.Hex(), Connected: true}); err != nil {
			a.logger.Warnf("Could not persist %v session - with err: %v", a.cfg.Chain, err)
		}
	}
	if _, err := a.RefreshBalance(); err != nil {
		a.logger.Warnf("Could not load %v balance after connect - with err: %v", a.cfg.Chain, err)
	}
	return addr.Hex(), nil
}

func (a *EVMAdapter) Disconnect() error {
	a.mu.Lock()
	a.session = entities.ChainSession{Chain: a.cfg.Chain}
	a.mu.Unlock()
	if a.store != nil {
		return a.store.Clear(a.cfg.Chain)
	}
	return nil
}

// evmTransferCost is the total native debit of a value transfer: the
// amount plus the gas burned at the given price.
func evmTransferCost(amount decimal.Decimal, gasPrice *big.Int) decimal.Decimal {
	gasWei := new(big.Int).Mul(gasPrice, big.NewInt(evmTransferGasLimit))
	return amount.Add(decimal.NewFromBigInt(gasWei, -18))
}

func (a *EVMAdapter) ValidateAddress(address string) error {
	if !common.IsHexAddress(address) {
		return entities.ErrInvalidAddressFormat
	}
	return nil
}

func (a *EVMAdapter) RefreshBalance() (decimal.Decimal, error) {
	session := a.Session()
	if !session.Connected {
		return decimal.Zero, entities.ErrWalletUnavailable
	}
	if a.client == nil {
		return decimal.Zero, entities.ErrWalletUnavailable
	}

	ctx, cancel := context.WithTimeout(context.Background(), evmCallTimeout)
	defer cancel()
	wei, err := a.client.BalanceAt(ctx, common.HexToAddress(session.Address), nil)
	if err != nil {
		return decimal.Zero, &entities.NetworkError{Op: "evm balance lookup", Err: err}
	}

	balance := decimal.NewFromBigInt(wei, -18)
	a.mu.Lock()
	a.session.NativeBalance = decimal.NullDecimal{Decimal: balance, Valid: true}
	a.mu.Unlock()
	return balance, nil
}

// Send submits a plain value transfer. The memo is not carried on EVM
// chains; attribution happens off-chain via the contract backend.
func (a *EVMAdapter) Send(destination string, amount decimal.Decimal, memo string) (string, error) {
	_ = memo

	session := a.Session()
	if !session.Connected || a.client == nil || a.key == nil {
		return "", entities.ErrWalletUnavailable
	}
	if err := a.ValidateAddress(destination); err != nil {
		return "", err
	}
	if !session.HasBalanceFor(amount) {
		return "", entities.ErrInsufficientBalance
	}

	ctx, cancel := context.WithTimeout(context.Background(), evmCallTimeout)
	defer cancel()

	from := common.HexToAddress(session.Address)
	nonce, err := a.client.PendingNonceAt(ctx, from)
	if err != nil {
		return "", &entities.NetworkError{Op: "evm nonce lookup", Err: err}
	}
	gasPrice, err := a.client.SuggestGasPrice(ctx)
	if err != nil {
		return "", &entities.NetworkError{Op: "evm gas price", Err: err}
	}

	// The transfer also burns gas; re-check against the full debit so a
	// near-full-balance send fails here instead of at the node.
	if !session.HasBalanceFor(evmTransferCost(amount, gasPrice)) {
		return "", entities.ErrInsufficientBalance
	}

	to := common.HexToAddress(destination)
	value := amount.Shift(18).Floor().BigInt()
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      evmTransferGasLimit,
		GasPrice: gasPrice,
	})

	signed, err := types.SignTx(tx, types.NewEIP155Signer(big.NewInt(a.cfg.ChainID)), a.key)
	if err != nil {
		return "", &entities.NetworkError{Op: "evm tx sign", Err: err}
	}
	if err := a.client.SendTransaction(ctx, signed); err != nil {
		return "", &entities.NetworkError{Op: "evm tx submit", Err: err}
	}

	if _, err := a.RefreshBalance(); err != nil {
		a.logger.Warnf("Could not refresh %v balance after transfer - with err: %v", a.cfg.Chain, err)
	}
	return signed.Hash().Hex(), nil
}
