package domain

import "time"

type DelayCategory string

const (
	DelayBeforeRequest DelayCategory = "before_request"
	DelayAccountStart  DelayCategory = "account_start"
	DelayPlay          DelayCategory = "play"
	DelayClaimGame     DelayCategory = "claim_game"
	DelayPlayError     DelayCategory = "play_error"
	DelayReconnect     DelayCategory = "reconnect"
	DelayTokenRefresh  DelayCategory = "token_refresh"
	DelayCycle         DelayCategory = "cycle"
	DelayBetweenChecks DelayCategory = "between_checks"
	DelayTaskStep      DelayCategory = "task_step"
)

// DelayCategories lists every category in a stable order.
func DelayCategories() []DelayCategory {
	return []DelayCategory{
		DelayBeforeRequest,
		DelayAccountStart,
		DelayPlay,
		DelayClaimGame,
		DelayPlayError,
		DelayReconnect,
		DelayTokenRefresh,
		DelayCycle,
		DelayBetweenChecks,
		DelayTaskStep,
	}
}

type DelayRange struct {
	Min time.Duration
	Max time.Duration
}

// Normalize swaps inverted bounds and clamps negatives to zero.
func (r DelayRange) Normalize() DelayRange {
	if r.Min < 0 {
		r.Min = 0
	}
	if r.Max < 0 {
		r.Max = 0
	}
	if r.Max < r.Min {
		r.Min, r.Max = r.Max, r.Min
	}
	return r
}

// DefaultDelayRanges returns the pacing used when nothing is configured.
func DefaultDelayRanges() map[DelayCategory]DelayRange {
	return map[DelayCategory]DelayRange{
		DelayBeforeRequest: {Min: time.Second, Max: time.Second},
		DelayAccountStart:  {Min: 5 * time.Second, Max: 15 * time.Second},
		DelayPlay:          {Min: 5 * time.Second, Max: 15 * time.Second},
		DelayClaimGame:     {Min: 40 * time.Second, Max: 50 * time.Second},
		DelayPlayError:     {Min: 60 * time.Second, Max: 180 * time.Second},
		DelayReconnect:     {Min: 65 * time.Second, Max: 65 * time.Second},
		DelayTokenRefresh:  {Min: 25 * time.Minute, Max: 35 * time.Minute},
		DelayCycle:         {Min: 10 * time.Second, Max: 10 * time.Second},
		DelayBetweenChecks: {Min: 3 * time.Second, Max: 10 * time.Second},
		DelayTaskStep:      {Min: 500 * time.Millisecond, Max: 5 * time.Second},
	}
}
