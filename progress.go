package formfill

import "github.com/hiremate/formfill/internal/fill"

// Re-exported fill types, so consumers can name everything the Engine
// returns without reaching into internal packages.
type (
	Value       = fill.Value
	Result      = fill.Result
	Progress    = fill.Progress
	FailedField = fill.FailedField
	State       = fill.State
)

const (
	StateIdle      = fill.StateIdle
	StateRunning   = fill.StateRunning
	StateCompleted = fill.StateCompleted
	StateAborted   = fill.StateAborted
)

// ProgressFunc receives one event per attempted field, across all sessions.
type ProgressFunc func(sessionID string, p Progress)

// ChannelProgress adapts a channel into a ProgressFunc. Events are dropped,
// not blocked on, when the receiver lags: progress is advisory and must
// never stall a fill.
func ChannelProgress(ch chan<- Progress) ProgressFunc {
	return func(_ string, p Progress) {
		select {
		case ch <- p:
		default:
		}
	}
}
