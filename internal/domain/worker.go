package domain

import "time"

type WorkerPhase string

const (
	PhaseLoggingIn   WorkerPhase = "logging_in"
	PhaseActive      WorkerPhase = "active"
	PhaseSleeping    WorkerPhase = "sleeping"
	PhaseCoolingDown WorkerPhase = "cooling_down"
	PhaseTerminated  WorkerPhase = "terminated"
)

func (p WorkerPhase) Label() string {
	switch p {
	case PhaseLoggingIn:
		return "logging in"
	case PhaseActive:
		return "active"
	case PhaseSleeping:
		return "sleeping"
	case PhaseCoolingDown:
		return "cooling down"
	case PhaseTerminated:
		return "terminated"
	default:
		return string(p)
	}
}

// AccountStatus is the last thing a worker reported about its account.
type AccountStatus struct {
	AccountID    AccountID
	Phase        WorkerPhase
	UpdatedAt    time.Time
	Window       *FarmingWindow
	PlaysClaimed int
	FarmClaims   int
	LastError    string
	Terminated   bool
}

// IsStale reports whether the status was not refreshed within maxAge. A
// non-positive maxAge disables the check.
func (s AccountStatus) IsStale(now time.Time, maxAge time.Duration) bool {
	if s.UpdatedAt.IsZero() {
		return true
	}
	if maxAge <= 0 {
		return false
	}

	return now.Sub(s.UpdatedAt) > maxAge
}
