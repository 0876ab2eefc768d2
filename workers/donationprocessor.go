package workers

import (
	"fmt"

	"github.com/chainfund/donation-workers/entities"
	"github.com/chainfund/donation-workers/orchestrator"
)

// DonationProcessor drains queued donation requests through the
// orchestrator, one at a time, and persists each terminal state.
type DonationProcessor struct {
	WorkerAbs
	orch  *orchestrator.Orchestrator
	queue *DonationQueue
}

func (b *DonationProcessor) Init(id int, name string, freq int, network string, orch *orchestrator.Orchestrator, queue *DonationQueue) error {
	if err := b.WorkerAbs.Init(id, name, freq, network); err != nil {
		return err
	}
	b.orch = orch
	b.queue = queue
	return nil
}

func (b *DonationProcessor) Execute() {
	b.Logger.Info("DonationProcessor worker is executing...")

	pending, err := b.queue.Pending()
	if err != nil {
		b.ExportErrorLog(fmt.Sprintf("Could not read pending donations from db - with err: %v", err))
		return
	}

	for _, req := range pending {
		b.process(req)
	}
}

func (b *DonationProcessor) process(req entities.DonationRequest) {
	tracker := orchestrator.NewProgressTracker()
	state := b.orch.Donate(req, func(s entities.TransactionState) {
		tracker.Update(s)
		b.Logger.Debugf("Donation %v: step=%v status=%v", req.ID, s.Step, s.Status)
	})

	if err := b.queue.MarkDone(req.ID, state); err != nil {
		b.ExportErrorLog(fmt.Sprintf("Could not record donation result %v - with err: %v", req.ID, err))
		return
	}

	if state.Status == entities.StatusError {
		b.ExportErrorLog(fmt.Sprintf(
			"Donation %v to project %v failed at step %v: %v",
			req.ID, req.ProjectID, state.Step, state.Error,
		))
		return
	}
	msg := fmt.Sprintf("Donation %v to project %v completed, tx %v", req.ID, req.ProjectID, state.TxHash)
	if state.UsedFallbackDestination {
		msg += " (demo destination)"
	}
	b.ExportInfoLog(msg)
}
