package application

import (
	"context"
	"testing"
	"time"

	"github.com/bnema/farmhand/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestBetweenStaysInRange(t *testing.T) {
	for range 200 {
		d := Between(2*time.Second, 5*time.Second)
		assert.GreaterOrEqual(t, d, 2*time.Second)
		assert.LessOrEqual(t, d, 5*time.Second)
	}
}

func TestBetweenSwapsInvertedBounds(t *testing.T) {
	for range 50 {
		d := Between(5*time.Second, 2*time.Second)
		assert.GreaterOrEqual(t, d, 2*time.Second)
		assert.LessOrEqual(t, d, 5*time.Second)
	}
	assert.Equal(t, time.Second, Between(time.Second, time.Second))
}

func TestDelayPolicyUsesDefaultsAndOverrides(t *testing.T) {
	p := NewDelayPolicy(map[domain.DelayCategory]domain.DelayRange{
		domain.DelayPlay: {Min: 3 * time.Second, Max: time.Second},
	})

	assert.Equal(t, domain.DelayRange{Min: time.Second, Max: 3 * time.Second}, p.Range(domain.DelayPlay))
	assert.Equal(t, domain.DefaultDelayRanges()[domain.DelayClaimGame], p.Range(domain.DelayClaimGame))
	assert.Equal(t, 65*time.Second, p.Jitter(domain.DelayReconnect))
}

func TestDelayPolicyWaitHonoursContext(t *testing.T) {
	p := NewDelayPolicy(map[domain.DelayCategory]domain.DelayRange{
		domain.DelayCycle: {Min: time.Hour, Max: time.Hour},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := p.Wait(ctx, domain.DelayCycle)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}
