package orchestrator

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/chainfund/donation-workers/contracts"
	"github.com/chainfund/donation-workers/entities"
	"github.com/chainfund/donation-workers/wallet"
)

// QuoteSource provides best-effort spot prices. Implementations never fail;
// a broken feed degrades to defaults.
type QuoteSource interface {
	GetQuote(asset entities.Asset) entities.PriceQuote
}

// EscrowFunder records a contribution against the milestone escrow. A
// failed call is an expected, recoverable condition.
type EscrowFunder interface {
	FundCampaign(campaignID uint64, backerAddress string, amountBaseUnits int64) contracts.FundResult
}

// Notifier receives fire-and-forget post-success side effects (reward
// dispatch, toasts).
type Notifier interface {
	DonationSucceeded(req entities.DonationRequest, state entities.TransactionState)
}

type Config struct {
	Network string

	// AllowDemoFallback gates the substitution of the donor's own address
	// when a project destination is invalid or unfunded. It must be false
	// on production networks: there an invalid destination is terminal.
	AllowDemoFallback bool

	// EVMRecipient is the configured direct-payment destination for EVM
	// chains when the project has no registered EVM address.
	EVMRecipient string

	// SignPause stands in for the interval during which a wallet
	// extension would prompt the user. Zero disables it.
	SignPause time.Duration
}

// Orchestrator composes the price oracle, chain wallet adapters and the
// contract service into the donation state machine. One donation runs at a
// time; concurrent Donate calls are serialized.
type Orchestrator struct {
	cfg      Config
	adapters map[entities.Chain]wallet.Adapter
	oracle   QuoteSource
	escrow   EscrowFunder
	projects ProjectDirectory
	notifier Notifier
	logger   *logrus.Entry

	mu sync.Mutex
}

func New(cfg Config, adapters []wallet.Adapter, oracle QuoteSource, escrow EscrowFunder, projects ProjectDirectory, notifier Notifier, logger *logrus.Entry) *Orchestrator {
	byChain := make(map[entities.Chain]wallet.Adapter, len(adapters))
	for _, a := range adapters {
		byChain[a.Chain()] = a
	}
	return &Orchestrator{
		cfg:      cfg,
		adapters: byChain,
		oracle:   oracle,
		escrow:   escrow,
		projects: projects,
		notifier: notifier,
		logger:   logger,
	}
}

// Donate runs one donation attempt through the five-step lifecycle,
// invoking emit with a state snapshot after every transition. The returned
// state is terminal: success with a transaction hash, or error. A failed
// attempt is never resumed; retrying means a fresh request.
func (o *Orchestrator) Donate(req entities.DonationRequest, emit func(entities.TransactionState)) entities.TransactionState {
	o.mu.Lock()
	defer o.mu.Unlock()

	state := entities.TransactionState{
		RequestID: req.ID,
		Step:      entities.StepPrepare,
		Status:    entities.StatusPending,
	}
	publish := func() {
		state.UpdatedAt = time.Now()
		if emit != nil {
			emit(state)
		}
	}
	fail := func(step entities.Step, msg string) entities.TransactionState {
		state.Step = step
		state.Status = entities.StatusError
		state.Error = msg
		publish()
		return state
	}

	if err := req.Validate(); err != nil {
		return fail(entities.StepPrepare, err.Error())
	}

	adapter, ok := o.adapters[req.Asset.Chain]
	if !ok {
		return fail(entities.StepPrepare, fmt.Sprintf("no wallet adapter for chain %v", req.Asset.Chain))
	}

	// Connection precedes any step progression: a declined or failed
	// connect terminates the attempt before the lifecycle starts.
	if !adapter.Session().Connected {
		if _, err := adapter.Connect(); err != nil {
			return fail(entities.StepPrepare, fmt.Sprintf("could not connect %v wallet: %v", req.Asset.Chain, errorMessage(err)))
		}
	}
	session := adapter.Session()

	publish() // prepare/pending

	project, err := o.projects.Resolve(req.ProjectID)
	if err != nil {
		return fail(entities.StepPrepare, fmt.Sprintf("unknown project %q", req.ProjectID))
	}

	totalFiat := req.TotalFiatAmount()
	quote := o.oracle.GetQuote(req.Asset)
	native := totalFiat.Div(quote.USDPrice)

	// The balance check runs before any signing prompt so a doomed
	// donation never costs the user an interaction.
	if !session.HasBalanceFor(native) {
		return fail(entities.StepPrepare, fmt.Sprintf("insufficient %v balance for %v", adapter.NativeCurrencySymbol(), native.StringFixed(4)))
	}

	state.Step = entities.StepSign
	publish()
	if o.cfg.SignPause > 0 {
		time.Sleep(o.cfg.SignPause)
	}

	state.Step = entities.StepSubmit
	publish()

	// Escrow runs on Stellar only and is non-fatal by design: the direct
	// payment below is the actual fund transfer, the escrow call is
	// contract bookkeeping.
	if req.Asset.Chain == entities.ChainStellar && o.escrow != nil {
		state.EscrowAttempted = true
		res := o.escrow.FundCampaign(project.CampaignID, session.Address, req.Asset.ToBaseUnits(native).Int64())
		if !res.OK() {
			o.logger.Warnf("Escrow funding skipped for project %v - with err: %v", req.ProjectID, res.Err)
		}
	}

	destination := req.RecipientOverride
	if destination == "" {
		destination = project.RecipientFor(req.Asset.Chain)
	}
	if destination == "" && req.Asset.Chain.IsEVM() {
		destination = o.cfg.EVMRecipient
	}

	if err := adapter.ValidateAddress(destination); err != nil {
		if !o.cfg.AllowDemoFallback {
			return fail(entities.StepSubmit, fmt.Sprintf("project %q has no valid %v payment address", req.ProjectID, req.Asset.Chain))
		}
		o.logger.Warnf("Invalid project destination %q, substituting donor address (demo mode)", destination)
		destination = session.Address
		state.UsedFallbackDestination = true
	}

	memo := req.NormalizedMemo()
	hash, err := adapter.Send(destination, native, memo)
	if errors.Is(err, entities.ErrDestinationNotFound) && !state.UsedFallbackDestination && o.cfg.AllowDemoFallback {
		// The registered destination looked valid but has no funding
		// history. One bounded retry against the donor's own address.
		o.logger.Warnf("Destination %q not funded, substituting donor address (demo mode)", destination)
		destination = session.Address
		state.UsedFallbackDestination = true
		hash, err = adapter.Send(destination, native, memo)
	}
	if err != nil {
		return fail(entities.StepSubmit, errorMessage(err))
	}

	// Submission is synchronously confirmed by both adapters; the returned
	// hash is authoritative.
	state.Step = entities.StepConfirm
	publish()

	state.Step = entities.StepComplete
	state.Status = entities.StatusSuccess
	state.TxHash = hash
	publish()

	if o.notifier != nil {
		go o.notifier.DonationSucceeded(req, state)
	}
	return state
}

// Adapter exposes the wallet adapter registered for a chain, if any.
func (o *Orchestrator) Adapter(chain entities.Chain) (wallet.Adapter, bool) {
	a, ok := o.adapters[chain]
	return a, ok
}

// Adapters returns all registered wallet adapters.
func (o *Orchestrator) Adapters() []wallet.Adapter {
	out := make([]wallet.Adapter, 0, len(o.adapters))
	for _, a := range o.adapters {
		out = append(out, a)
	}
	return out
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, entities.ErrWalletUnavailable):
		return "wallet provider is not available"
	case errors.Is(err, entities.ErrUserRejected):
		return "connection request was declined"
	case errors.Is(err, entities.ErrInvalidAddressFormat):
		return "address format is invalid"
	case errors.Is(err, entities.ErrInsufficientBalance):
		return "insufficient balance to cover the donation"
	case errors.Is(err, entities.ErrDestinationNotFound):
		return "destination account does not exist on this network"
	default:
		return err.Error()
	}
}
