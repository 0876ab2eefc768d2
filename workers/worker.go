package workers

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/chainfund/donation-workers/utils"
)

type WorkerAbs struct {
	ID        int
	Name      string
	Frequency int // in sec
	Quit      chan bool
	Network   string // mainnet, testnet, ...
	Logger    *logrus.Entry
}

type Worker interface {
	Execute()
	GetName() string
	GetFrequency() int
	GetQuitChan() chan bool
	GetNetwork() string
}

func (a *WorkerAbs) Init(id int, name string, freq int, network string) error {
	a.ID = id
	a.Name = name
	a.Frequency = freq
	a.Quit = make(chan bool)
	a.Network = network
	a.Logger = NewWorkerLogger(name)
	return nil
}

func (a *WorkerAbs) Execute() {
	fmt.Println("Abstract worker is executing...")
}

func (a *WorkerAbs) GetName() string {
	return a.Name
}

func (a *WorkerAbs) GetFrequency() int {
	return a.Frequency
}

func (a *WorkerAbs) GetQuitChan() chan bool {
	return a.Quit
}

func (a *WorkerAbs) GetNetwork() string {
	return a.Network
}

// ExportErrorLog logs the message and raises it on the alert channel.
func (a *WorkerAbs) ExportErrorLog(msg string) {
	a.Logger.Error(msg)
	if err := utils.SendSlackNotification(msg, utils.AlertNotification); err != nil {
		a.Logger.Warnf("Could not send alert notification - with err: %v", err)
	}
}

// ExportInfoLog logs the message and mirrors it on the info channel.
func (a *WorkerAbs) ExportInfoLog(msg string) {
	a.Logger.Info(msg)
	if err := utils.SendSlackNotification(msg, utils.InfoNotification); err != nil {
		a.Logger.Warnf("Could not send info notification - with err: %v", err)
	}
}

// NewWorkerLogger builds a logrus entry tagged with the worker name.
func NewWorkerLogger(name string) *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if os.Getenv("LOG_LEVEL") == "debug" {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger.WithField("worker", name)
}
