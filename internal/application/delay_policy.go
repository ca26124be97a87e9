package application

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/bnema/farmhand/internal/domain"
)

// DelayPolicy hands out randomized waits per category. The ranges are fixed
// after construction so it can be shared by every worker without locking.
type DelayPolicy struct {
	ranges map[domain.DelayCategory]domain.DelayRange
}

func NewDelayPolicy(overrides map[domain.DelayCategory]domain.DelayRange) *DelayPolicy {
	ranges := domain.DefaultDelayRanges()
	for category, r := range overrides {
		ranges[category] = r
	}
	for category, r := range ranges {
		ranges[category] = r.Normalize()
	}

	return &DelayPolicy{ranges: ranges}
}

func (p *DelayPolicy) Range(category domain.DelayCategory) domain.DelayRange {
	return p.ranges[category]
}

func (p *DelayPolicy) Jitter(category domain.DelayCategory) time.Duration {
	r := p.ranges[category]
	return Between(r.Min, r.Max)
}

// Wait blocks for a jittered duration of category or until ctx is done.
func (p *DelayPolicy) Wait(ctx context.Context, category domain.DelayCategory) error {
	return sleepContext(ctx, p.Jitter(category))
}

// Between returns a uniform duration in [min, max]. Inverted bounds are
// swapped.
func Between(lo, hi time.Duration) time.Duration {
	if hi < lo {
		lo, hi = hi, lo
	}
	if hi == lo {
		return lo
	}

	return lo + time.Duration(rand.Int64N(int64(hi-lo)+1))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
