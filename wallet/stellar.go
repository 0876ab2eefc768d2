package wallet

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"
	"github.com/stellar/go/strkey"
	"github.com/stellar/go/txnbuild"

	"github.com/chainfund/donation-workers/entities"
)

const stellarTxTimeoutSeconds = 180

// stellarAddressPattern: ed25519 public keys start with G and run 56
// base32 characters.
var stellarAddressPattern = regexp.MustCompile(`^G[A-Z2-7]{55}$`)

// StellarSigner abstracts the signing backend (a wallet extension in the
// browser deployment, a configured keypair here).
type StellarSigner interface {
	Available() bool
	Address() (string, error)
	Sign(tx *txnbuild.Transaction, networkPassphrase string) (*txnbuild.Transaction, error)
}

// KeypairSigner signs with a locally configured Stellar secret key.
type KeypairSigner struct {
	kp *keypair.Full
}

func NewKeypairSigner(secret string) (*KeypairSigner, error) {
	kp, err := keypair.ParseFull(secret)
	if err != nil {
		return nil, fmt.Errorf("parse stellar secret: %w", err)
	}
	return &KeypairSigner{kp: kp}, nil
}

func (s *KeypairSigner) Available() bool {
	return s != nil && s.kp != nil
}

func (s *KeypairSigner) Address() (string, error) {
	if !s.Available() {
		return "", entities.ErrWalletUnavailable
	}
	return s.kp.Address(), nil
}

func (s *KeypairSigner) Sign(tx *txnbuild.Transaction, networkPassphrase string) (*txnbuild.Transaction, error) {
	return tx.Sign(networkPassphrase, s.kp)
}

type StellarConfig struct {
	HorizonURL        string
	NetworkPassphrase string
}

// TestnetStellarConfig and MainnetStellarConfig carry the well-known
// network endpoints.
func TestnetStellarConfig() StellarConfig {
	return StellarConfig{
		HorizonURL:        "https://horizon-testnet.stellar.org",
		NetworkPassphrase: network.TestNetworkPassphrase,
	}
}

func MainnetStellarConfig() StellarConfig {
	return StellarConfig{
		HorizonURL:        "https://horizon.stellar.org",
		NetworkPassphrase: network.PublicNetworkPassphrase,
	}
}

// StellarAdapter drives native XLM payments through Horizon. It owns the
// stellar ChainSession and persists connection state across restarts.
type StellarAdapter struct {
	horizon    horizonclient.ClientInterface
	signer     StellarSigner
	passphrase string
	store      *SessionStore
	logger     *logrus.Entry

	mu      sync.Mutex
	session entities.ChainSession
}

func NewStellarAdapter(cfg StellarConfig, signer StellarSigner, store *SessionStore, logger *logrus.Entry) *StellarAdapter {
	a := &StellarAdapter{
		horizon:    &horizonclient.Client{HorizonURL: cfg.HorizonURL},
		signer:     signer,
		passphrase: cfg.NetworkPassphrase,
		store:      store,
		logger:     logger,
		session:    entities.ChainSession{Chain: entities.ChainStellar},
	}
	a.silentReconnect()
	return a
}

func (a *StellarAdapter) Chain() entities.Chain {
	return entities.ChainStellar
}

func (a *StellarAdapter) NativeCurrencySymbol() string {
	return "XLM"
}

func (a *StellarAdapter) Session() entities.ChainSession {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

// silentReconnect restores a persisted session without prompting. Persisted
// state is cleared when the signing backend no longer authorizes it.
func (a *StellarAdapter) silentReconnect() {
	if a.store == nil {
		return
	}
	persisted, ok, err := a.store.Load(entities.ChainStellar)
	if err != nil {
		a.logger.Warnf("Could not read persisted stellar session - with err: %v", err)
		return
	}
	if !ok || !persisted.Connected {
		return
	}

	if a.signer == nil || !a.signer.Available() {
		a.logger.Info("Stellar signer not available, clearing persisted session")
		_ = a.store.Clear(entities.ChainStellar)
		return
	}
	addr, err := a.signer.Address()
	if err != nil || addr != persisted.Address {
		a.logger.Info("Persisted stellar session no longer authorized, clearing")
		_ = a.store.Clear(entities.ChainStellar)
		return
	}

	a.mu.Lock()
	a.session.Connected = true
	a.session.Address = addr
	a.mu.Unlock()
	if _, err := a.RefreshBalance(); err != nil {
		a.logger.Warnf("Could not refresh stellar balance on reconnect - with err: %v", err)
	}
}

func (a *StellarAdapter) Connect() (string, error) {
	if a.signer == nil || !a.signer.Available() {
		return "", entities.ErrWalletUnavailable
	}
	addr, err := a.signer.Address()
	if err != nil {
		return "", err
	}
	if err := a.ValidateAddress(addr); err != nil {
		return "", err
	}

	a.mu.Lock()
	a.session.Connected = true
	a.session.Address = addr
	a.mu.Unlock()

	if a.store != nil {
		if err := a.store.Save(entities.ChainStellar, PersistedSession{Address: addr, Connected: true}); err != nil {
			a.logger.Warnf("Could not persist stellar session - with err: %v", err)
		}
	}
	if _, err := a.RefreshBalance(); err != nil {
		a.logger.Warnf("Could not load stellar balance after connect - with err: %v", err)
	}
	return addr, nil
}

func (a *StellarAdapter) Disconnect() error {
	a.mu.Lock()
	a.session = entities.ChainSession{Chain: entities.ChainStellar}
	a.mu.Unlock()
	if a.store != nil {
		return a.store.Clear(entities.ChainStellar)
	}
	return nil
}

func (a *StellarAdapter) ValidateAddress(address string) error {
	if !stellarAddressPattern.MatchString(address) {
		return entities.ErrInvalidAddressFormat
	}
	if _, err := strkey.Decode(strkey.VersionByteAccountID, address); err != nil {
		return entities.ErrInvalidAddressFormat
	}
	return nil
}

func (a *StellarAdapter) RefreshBalance() (decimal.Decimal, error) {
	a.mu.Lock()
	addr := a.session.Address
	connected := a.session.Connected
	a.mu.Unlock()
	if !connected {
		return decimal.Zero, entities.ErrWalletUnavailable
	}

	account, err := a.horizon.AccountDetail(horizonclient.AccountRequest{AccountID: addr})
	if err != nil {
		if horizonclient.IsNotFoundError(err) {
			// Own account not funded yet: balance is zero, not an error.
			a.setBalance(decimal.Zero)
			return decimal.Zero, nil
		}
		return decimal.Zero, &entities.NetworkError{Op: "stellar balance lookup", Err: err}
	}

	native, err := account.GetNativeBalance()
	if err != nil {
		return decimal.Zero, &entities.NetworkError{Op: "stellar balance lookup", Err: err}
	}
	balance, err := decimal.NewFromString(native)
	if err != nil {
		return decimal.Zero, &entities.NetworkError{Op: "stellar balance parse", Err: err}
	}
	a.setBalance(balance)
	return balance, nil
}

func (a *StellarAdapter) setBalance(balance decimal.Decimal) {
	a.mu.Lock()
	a.session.NativeBalance = decimal.NullDecimal{Decimal: balance, Valid: true}
	a.mu.Unlock()
}

// Send submits a native payment with a text memo and the standard 180s
// timebound. The destination must be an existing funded account.
func (a *StellarAdapter) Send(destination string, amount decimal.Decimal, memo string) (string, error) {
	session := a.Session()
	if !session.Connected {
		return "", entities.ErrWalletUnavailable
	}
	if err := a.ValidateAddress(destination); err != nil {
		return "", err
	}
	if !session.HasBalanceFor(amount) {
		return "", entities.ErrInsufficientBalance
	}

	// Probe the destination first: Horizon rejects payments to unfunded
	// accounts with op_no_destination, and the caller treats that case
	// specially.
	if _, err := a.horizon.AccountDetail(horizonclient.AccountRequest{AccountID: destination}); err != nil {
		if horizonclient.IsNotFoundError(err) {
			return "", entities.ErrDestinationNotFound
		}
		return "", &entities.NetworkError{Op: "stellar destination lookup", Err: err}
	}

	sourceAccount, err := a.horizon.AccountDetail(horizonclient.AccountRequest{AccountID: session.Address})
	if err != nil {
		return "", &entities.NetworkError{Op: "stellar source lookup", Err: err}
	}

	params := txnbuild.TransactionParams{
		SourceAccount:        &sourceAccount,
		IncrementSequenceNum: true,
		BaseFee:              txnbuild.MinBaseFee,
		Preconditions:        txnbuild.Preconditions{TimeBounds: txnbuild.NewTimeout(stellarTxTimeoutSeconds)},
		Operations: []txnbuild.Operation{
			&txnbuild.Payment{
				Destination: destination,
				Amount:      stellarAmountString(amount),
				Asset:       txnbuild.NativeAsset{},
			},
		},
	}
	if memo != "" {
		params.Memo = txnbuild.MemoText(memo)
	}

	tx, err := txnbuild.NewTransaction(params)
	if err != nil {
		return "", &entities.NetworkError{Op: "stellar tx build", Err: err}
	}
	signed, err := a.signer.Sign(tx, a.passphrase)
	if err != nil {
		return "", err
	}

	resp, err := a.horizon.SubmitTransaction(signed)
	if err != nil {
		if isNoDestinationError(err) {
			return "", entities.ErrDestinationNotFound
		}
		return "", &entities.NetworkError{Op: "stellar tx submit", Err: err}
	}

	if _, err := a.RefreshBalance(); err != nil {
		a.logger.Warnf("Could not refresh stellar balance after payment - with err: %v", err)
	}
	return resp.Hash, nil
}

// stellarAmountString formats a payment amount at stroop precision,
// flooring any sub-stroop remainder. The submitted value therefore never
// rounds above the prechecked balance and always matches the stroop count
// recorded against the escrow.
func stellarAmountString(amount decimal.Decimal) string {
	return amount.RoundDown(7).StringFixed(7)
}

// isNoDestinationError checks Horizon result codes for a payment to a
// nonexistent account that slipped past the destination probe.
func isNoDestinationError(err error) bool {
	hErr := horizonclient.GetError(err)
	if hErr == nil {
		return false
	}
	codes, cErr := hErr.ResultCodes()
	if cErr != nil || codes == nil {
		return false
	}
	for _, code := range codes.OperationCodes {
		if code == "op_no_destination" {
			return true
		}
	}
	return false
}
