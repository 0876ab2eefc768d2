package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/chainfund/donation-workers/contracts"
	"github.com/chainfund/donation-workers/entities"
	"github.com/chainfund/donation-workers/orchestrator"
	"github.com/chainfund/donation-workers/pricing"
	"github.com/chainfund/donation-workers/utils"
	"github.com/chainfund/donation-workers/wallet"
	"github.com/chainfund/donation-workers/workers"
)

type Server struct {
	quit    chan os.Signal
	finish  chan bool
	workers []workers.Worker
}

func NewServer(workerIDs []int) *Server {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	serverLogger := logger.WithField("component", "server")

	network := os.Getenv("STELLAR_NETWORK")
	if network == "" {
		network = "testnet"
	}

	sessionStore, err := wallet.OpenSessionStore("db/sessions")
	if err != nil {
		panic("Can't open session store: " + err.Error())
	}

	adapters := buildAdapters(network, sessionStore, serverLogger)

	oracle := pricing.NewOracle(os.Getenv("PRICE_FEED_URL"), logger.WithField("component", "oracle"))

	contractURL := os.Getenv("CONTRACT_API_URL")
	if contractURL == "" {
		contractURL = "http://localhost:8000"
	}
	contract := contracts.NewClient(contractURL, logger.WithField("component", "contracts"))

	directory := buildDirectory(serverLogger)

	notifier := &utils.SlackNotifier{Logger: logger.WithField("component", "notifier")}

	orch := orchestrator.New(
		orchestrator.Config{
			Network:           network,
			AllowDemoFallback: demoFallbackEnabled(network),
			EVMRecipient:      os.Getenv("EVM_RECIPIENT_ADDRESS"),
			SignPause:         signPause(),
		},
		adapters,
		oracle,
		contract,
		directory,
		notifier,
		logger.WithField("component", "orchestrator"),
	)

	listWorkers := []workers.Worker{}

	if contain(workerIDs, workers.DonationProcessorID) {
		queue, err := workers.OpenDonationQueue("db/donations")
		if err != nil {
			panic("Can't open donation queue: " + err.Error())
		}
		donationProcessor := &workers.DonationProcessor{}
		err = donationProcessor.Init(workers.DonationProcessorID, "Donation Processor", workers.DonationProcessorFreq, network, orch, queue)
		if err != nil {
			panic("Can't init Donation Processor")
		}
		listWorkers = append(listWorkers, donationProcessor)
	}
	if contain(workerIDs, workers.PriceRefresherID) {
		priceRefresher := &workers.PriceRefresher{}
		err = priceRefresher.Init(workers.PriceRefresherID, "Price Refresher", workers.PriceRefresherFreq, network, oracle)
		if err != nil {
			panic("Can't init Price Refresher")
		}
		listWorkers = append(listWorkers, priceRefresher)
	}
	if contain(workerIDs, workers.SessionMonitorID) {
		sessionMonitor := &workers.SessionMonitor{}
		err = sessionMonitor.Init(workers.SessionMonitorID, "Session Monitor", workers.SessionMonitorFreq, network, adapters, minBalanceAlert())
		if err != nil {
			panic("Can't init Session Monitor")
		}
		listWorkers = append(listWorkers, sessionMonitor)
	}
	if contain(workerIDs, workers.MilestoneAlerterID) {
		milestoneAlerter := &workers.MilestoneAlerter{}
		err = milestoneAlerter.Init(workers.MilestoneAlerterID, "Milestone Alerter", workers.MilestoneAlerterFreq, network, contract, watchedCampaignIDs())
		if err != nil {
			panic("Can't init Milestone Alerter")
		}
		listWorkers = append(listWorkers, milestoneAlerter)
	}

	quitChan := make(chan os.Signal, 1)
	signal.Notify(quitChan, os.Interrupt, syscall.SIGTERM)
	return &Server{
		quit:    quitChan,
		finish:  make(chan bool, len(listWorkers)),
		workers: listWorkers,
	}
}

func buildAdapters(network string, store *wallet.SessionStore, logger *logrus.Entry) []wallet.Adapter {
	adapters := []wallet.Adapter{}

	stellarCfg := wallet.TestnetStellarConfig()
	if network == "mainnet" {
		stellarCfg = wallet.MainnetStellarConfig()
	}
	var signer wallet.StellarSigner
	if secret := os.Getenv("STELLAR_SECRET_KEY"); secret != "" {
		keypairSigner, err := wallet.NewKeypairSigner(secret)
		if err != nil {
			panic("Invalid STELLAR_SECRET_KEY: " + err.Error())
		}
		signer = keypairSigner
	}
	adapters = append(adapters, wallet.NewStellarAdapter(stellarCfg, signer, store, logger.WithField("chain", "stellar")))

	if rpcURL := os.Getenv("EVM_RPC_URL"); rpcURL != "" {
		chainID, err := strconv.ParseInt(os.Getenv("EVM_CHAIN_ID"), 10, 64)
		if err != nil {
			panic("Invalid EVM_CHAIN_ID")
		}
		adapters = append(adapters, wallet.NewEVMAdapter(wallet.EVMConfig{
			Chain:          entities.ChainEthereum,
			RPCURL:         rpcURL,
			ChainID:        chainID,
			CurrencySymbol: "ETH",
			PrivateKeyHex:  os.Getenv("EVM_PRIVATE_KEY"),
		}, store, logger.WithField("chain", "ethereum")))
	}
	if rpcURL := os.Getenv("POLYGON_RPC_URL"); rpcURL != "" {
		chainID, err := strconv.ParseInt(os.Getenv("POLYGON_CHAIN_ID"), 10, 64)
		if err != nil {
			panic("Invalid POLYGON_CHAIN_ID")
		}
		adapters = append(adapters, wallet.NewEVMAdapter(wallet.EVMConfig{
			Chain:          entities.ChainPolygon,
			RPCURL:         rpcURL,
			ChainID:        chainID,
			CurrencySymbol: "MATIC",
			PrivateKeyHex:  os.Getenv("EVM_PRIVATE_KEY"),
		}, store, logger.WithField("chain", "polygon")))
	}

	return adapters
}

func buildDirectory(logger *logrus.Entry) *orchestrator.StaticDirectory {
	if path := os.Getenv("PROJECTS_FILE"); path != "" {
		directory, err := orchestrator.LoadDirectory(path)
		if err != nil {
			panic("Can't load projects file: " + err.Error())
		}
		return directory
	}
	logger.Warn("PROJECTS_FILE not set, serving the built-in demo project only")
	return orchestrator.NewStaticDirectory(entities.Project{
		ID:             "demo-project",
		Title:          "Demo Project",
		StellarAddress: os.Getenv("DEMO_PROJECT_ADDRESS"),
	})
}

// demoFallbackEnabled decides whether a donation with an invalid or unfunded
// destination may be redirected to the donor's own address. Never on mainnet.
func demoFallbackEnabled(network string) bool {
	if network == "mainnet" {
		return false
	}
	if v := os.Getenv("DEMO_MODE"); v != "" {
		return v == "true"
	}
	return network == "testnet"
}

func signPause() time.Duration {
	ms, err := strconv.Atoi(os.Getenv("SIGN_PAUSE_MS"))
	if err != nil || ms < 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}

func minBalanceAlert() decimal.Decimal {
	if v := os.Getenv("MIN_BALANCE_ALERT"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	}
	return decimal.NewFromInt(5)
}

func watchedCampaignIDs() []uint64 {
	ids := []uint64{}
	for _, part := range strings.Split(os.Getenv("WATCHED_CAMPAIGN_IDS"), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			panic("Invalid WATCHED_CAMPAIGN_IDS entry: " + part)
		}
		ids = append(ids, id)
	}
	return ids
}

func contain(list []int, target int) bool {
	for _, item := range list {
		if item == target {
			return true
		}
	}
	return false
}

func (s *Server) NotifyQuitSignal(workers []workers.Worker) {
	sig := <-s.quit
	fmt.Printf("Caught sig: %+v \n", sig)
	// notify all workers about quit signal
	for _, a := range workers {
		a.GetQuitChan() <- true
	}
}

func (s *Server) Run() {
	workers := s.workers
	go s.NotifyQuitSignal(workers)
	for _, a := range workers {
		go executeWorker(s.finish, a)
	}
}

func executeWorker(finish chan bool, worker workers.Worker) {
	worker.Execute() // execute as soon as starting up
	for {
		select {
		case <-worker.GetQuitChan():
			fmt.Printf("Finishing task for %s ...\n", worker.GetName())
			time.Sleep(time.Second * 1)
			fmt.Printf("Task for %s done! \n", worker.GetName())
			finish <- true
			return
		case <-time.After(time.Duration(worker.GetFrequency()) * time.Second):
			worker.Execute()
		}
	}
}
