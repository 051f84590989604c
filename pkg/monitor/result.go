package monitor

import "errors"

type Outcome int

const (
	// OutcomeUpdated means the cached state was replaced
	OutcomeUpdated Outcome = iota
	// OutcomeNoUpdate means the refresh was abandoned and prior state kept
	OutcomeNoUpdate
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUpdated:
		return "updated"
	case OutcomeNoUpdate:
		return "noupdate"
	default:
		return "unknown"
	}
}

var (
	ErrFetchFailed      = errors.New("fetch failed")
	ErrLineNotFound     = errors.New("line not found in monitor payload")
	ErrDepartureMissing = errors.New("departure list too short for variant")

	// ErrNotReady is returned from Setup when a stop could not be fetched or
	// had no lines yet, the caller should retry setup later.
	ErrNotReady = errors.New("platform not ready")
)

// RefreshResult reports what a single refresh did. Reason is set for
// OutcomeNoUpdate and wraps one of the Err* sentinels.
type RefreshResult struct {
	Outcome Outcome
	Reason  error
}

func updated() RefreshResult {
	return RefreshResult{Outcome: OutcomeUpdated}
}

func noUpdate(reason error) RefreshResult {
	return RefreshResult{Outcome: OutcomeNoUpdate, Reason: reason}
}

// ReasonLabel is a short stable name for the reason, used for metrics
func (r RefreshResult) ReasonLabel() string {
	switch {
	case r.Reason == nil:
		return "none"
	case errors.Is(r.Reason, ErrFetchFailed):
		return "fetch"
	case errors.Is(r.Reason, ErrLineNotFound):
		return "line"
	case errors.Is(r.Reason, ErrDepartureMissing):
		return "departure"
	default:
		return "other"
	}
}
