package entities

import "time"

type Step string

const (
	StepPrepare  Step = "prepare"
	StepSign     Step = "sign"
	StepSubmit   Step = "submit"
	StepConfirm  Step = "confirm"
	StepComplete Step = "complete"
)

// Steps lists the lifecycle steps in presentation order.
var Steps = []Step{StepPrepare, StepSign, StepSubmit, StepConfirm, StepComplete}

type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// TransactionState is the lifecycle record for one donation attempt. The
// orchestrator owns it for the duration of the attempt; consumers get value
// snapshots. A failed state is terminal: retrying means a new record.
type TransactionState struct {
	RequestID               string    `json:"request_id"`
	Step                    Step      `json:"step"`
	Status                  Status    `json:"status"`
	TxHash                  string    `json:"tx_hash,omitempty"`
	UsedFallbackDestination bool      `json:"used_fallback_destination"`
	EscrowAttempted         bool      `json:"escrow_attempted"`
	Error                   string    `json:"error,omitempty"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// Terminal reports whether the state admits no further transitions.
func (s TransactionState) Terminal() bool {
	return s.Status == StatusSuccess || s.Status == StatusError
}

// StepIndex returns the position of the state's step in the five-step
// model, or -1 for an unknown step.
func (s TransactionState) StepIndex() int {
	for i, st := range Steps {
		if st == s.Step {
			return i
		}
	}
	return -1
}
