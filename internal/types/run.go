package types

import "github.com/google/uuid"

// RunState is the lifecycle state of a search run.
type RunState string

const (
	RunStateIdle       RunState = "idle"
	RunStateResolving  RunState = "resolving"
	RunStateGathering  RunState = "gathering-context"
	RunStateInvoking   RunState = "invoking"
	RunStateValidating RunState = "validating"
	RunStateComplete   RunState = "complete"
	RunStateCancelled  RunState = "cancelled"
	RunStateFailed     RunState = "failed"
)

// Active reports whether the state counts against the one-run-in-flight limit.
func (s RunState) Active() bool {
	switch s {
	case RunStateResolving, RunStateGathering, RunStateInvoking, RunStateValidating:
		return true
	}
	return false
}

// RunSnapshot is the poll view of the controller: state, monotonic progress,
// a human-readable status line, and the result or error once terminal.
type RunSnapshot struct {
	RunID    uuid.UUID             `json:"run_id,omitempty"`
	State    RunState              `json:"state"`
	Progress int                   `json:"progress"` // 0-100, monotonically non-decreasing within a run.
	Status   string                `json:"status,omitempty"`
	Result   *RecommendationResult `json:"result,omitempty"`
	Error    string                `json:"error,omitempty"`
}
