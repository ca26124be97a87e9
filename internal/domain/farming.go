package domain

import "time"

// FarmingWindow is one balance snapshot. FarmStart and FarmEnd are either
// both set or both nil in a consistent snapshot.
type FarmingWindow struct {
	ObservedAt  time.Time
	FarmStart   *time.Time
	FarmEnd     *time.Time
	PlayPasses  int
	FastFarming bool
	Balance     string
}

func (w FarmingWindow) Consistent() bool {
	return (w.FarmStart == nil) == (w.FarmEnd == nil)
}

func (w FarmingWindow) Open() bool {
	return w.FarmStart != nil && w.FarmEnd != nil
}

// Elapsed is true once the observation time has reached the window end.
func (w FarmingWindow) Elapsed() bool {
	return w.Open() && !w.ObservedAt.Before(*w.FarmEnd)
}

func (w FarmingWindow) Remaining() time.Duration {
	if !w.Open() {
		return 0
	}

	remaining := w.FarmEnd.Sub(w.ObservedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Progress returns the elapsed fraction of the window in [0, 1].
func (w FarmingWindow) Progress() float64 {
	if !w.Open() {
		return 0
	}

	total := w.FarmEnd.Sub(*w.FarmStart)
	if total <= 0 {
		return 1
	}

	done := w.ObservedAt.Sub(*w.FarmStart)
	switch {
	case done <= 0:
		return 0
	case done >= total:
		return 1
	default:
		return float64(done) / float64(total)
	}
}

type DailyReward struct {
	Claimed bool
	Detail  string
}

type GameClaim struct {
	RoundID         string
	Points          int
	SecondaryPoints int
	Payload         string
}

type GameClaimResult struct {
	Accepted bool
	Message  string
	Points   int
}

type FarmClaim struct {
	ClaimedAt time.Time
	Balance   string
}

// PayloadRequest is what a payload server needs to produce the
// anti-tamper blob for one round.
type PayloadRequest struct {
	RoundID         string
	Points          int
	SecondaryPoints int
}
