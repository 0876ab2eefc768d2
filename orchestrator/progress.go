package orchestrator

import (
	"sync"

	"github.com/chainfund/donation-workers/entities"
)

// StepLabels maps lifecycle steps to the labels the progress indicator
// renders, in presentation order.
var StepLabels = map[entities.Step]string{
	entities.StepPrepare:  "Preparing",
	entities.StepSign:     "Signing",
	entities.StepSubmit:   "Submitting",
	entities.StepConfirm:  "Confirming",
	entities.StepComplete: "Complete",
}

// ProgressTracker accumulates TransactionState snapshots for one donation
// attempt and enforces the presenter contract: the view may only be
// dismissed once the attempt is terminal, so a pending chain submission is
// never orphaned.
type ProgressTracker struct {
	mu      sync.Mutex
	current entities.TransactionState
	history []entities.TransactionState
}

func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{}
}

// Update records a snapshot. Snapshots arriving after a terminal state are
// dropped: error and success admit no further transitions.
func (t *ProgressTracker) Update(state entities.TransactionState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.history) > 0 && t.current.Terminal() {
		return
	}
	t.current = state
	t.history = append(t.history, state)
}

func (t *ProgressTracker) Current() entities.TransactionState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

func (t *ProgressTracker) History() []entities.TransactionState {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]entities.TransactionState, len(t.history))
	copy(out, t.history)
	return out
}

// CanClose reports whether the progress view may be dismissed.
func (t *ProgressTracker) CanClose() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current.Terminal()
}
