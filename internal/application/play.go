package application

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/bnema/farmhand/internal/domain"
	"github.com/bnema/farmhand/internal/ports"
	"github.com/rs/zerolog"
)

type PlayConfig struct {
	PointsMin          int
	PointsMax          int
	SecondaryMin       int
	SecondaryMax       int
	RequirePayload     bool
	RefreshEveryRounds int
}

type PlayReport struct {
	Requested int
	Started   int
	Claimed   int
	Failed    int
	Points    int
}

// Player spends play passes. Passes are one-shot: a rejected claim ends the
// cycle and the remaining passes wait for the next window.
type Player struct {
	cfg      PlayConfig
	delays   *DelayPolicy
	registry *EndpointRegistry
	payloads ports.PayloadGenerator
}

func NewPlayer(cfg PlayConfig, delays *DelayPolicy, registry *EndpointRegistry, payloads ports.PayloadGenerator) *Player {
	if cfg.PointsMax < cfg.PointsMin {
		cfg.PointsMin, cfg.PointsMax = cfg.PointsMax, cfg.PointsMin
	}
	if cfg.SecondaryMax < cfg.SecondaryMin {
		cfg.SecondaryMin, cfg.SecondaryMax = cfg.SecondaryMax, cfg.SecondaryMin
	}

	return &Player{
		cfg:      cfg,
		delays:   delays,
		registry: registry,
		payloads: payloads,
	}
}

// Play starts and claims up to passes rounds. The only error it returns is
// context cancellation; round failures are counted in the report.
func (p *Player) Play(ctx context.Context, session ports.GameSession, passes int, logger zerolog.Logger) (PlayReport, error) {
	report := PlayReport{Requested: passes}
	startRetried := false
	sinceRefresh := 0

	for remaining := passes; remaining > 0; {
		if p.cfg.RefreshEveryRounds > 0 && sinceRefresh >= p.cfg.RefreshEveryRounds {
			sinceRefresh = 0
			if err := session.RefreshToken(ctx); err != nil {
				if ctx.Err() != nil {
					return report, ctx.Err()
				}
				logger.Warn().Err(err).Msg("token refresh between rounds failed")
			}
		}

		if err := p.delays.Wait(ctx, domain.DelayPlay); err != nil {
			return report, err
		}

		roundID, err := session.StartGameRound(ctx)
		if err == nil && roundID == "" {
			err = errors.New("empty round id")
		}
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			report.Failed++
			if startRetried {
				logger.Error().Err(err).Int("passes_left", remaining).Msg("could not start game round twice in a row, giving up this cycle")
				break
			}
			startRetried = true
			logger.Warn().Err(err).Int("passes_left", remaining).Msg("could not start game round, retrying")
			if err := p.delays.Wait(ctx, domain.DelayPlayError); err != nil {
				return report, err
			}
			continue
		}
		report.Started++

		if err := p.delays.Wait(ctx, domain.DelayClaimGame); err != nil {
			return report, err
		}
		sinceRefresh++

		claim, err := p.buildClaim(ctx, session, roundID)
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			report.Failed++
			logger.Error().Err(err).Str("round_id", roundID).Msg("could not build game claim")
			break
		}

		result, err := session.ClaimGameRound(ctx, claim)
		if err == nil && !result.Accepted {
			err = fmt.Errorf("claim rejected: %s", result.Message)
		}
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			report.Failed++
			logger.Error().Err(err).Str("round_id", roundID).Int("passes_left", remaining).Msg("could not claim game round")
			break
		}

		report.Claimed++
		report.Points += result.Points
		remaining--
		// A claimed round earns the start retry back.
		startRetried = false
		logger.Info().Int("points", result.Points).Int("passes_left", remaining).Msg("game round claimed")
	}

	return report, nil
}

func (p *Player) buildClaim(ctx context.Context, session ports.GameSession, roundID string) (domain.GameClaim, error) {
	claim := domain.GameClaim{
		RoundID: roundID,
		Points:  uniformInt(p.cfg.PointsMin, p.cfg.PointsMax),
	}

	eligible, err := session.SecondaryRewardEligible(ctx)
	if err == nil && eligible {
		claim.SecondaryPoints = min(uniformInt(p.cfg.SecondaryMin, p.cfg.SecondaryMax), claim.Points)
	}

	if !p.cfg.RequirePayload {
		return claim, nil
	}
	if p.registry == nil || p.payloads == nil {
		return domain.GameClaim{}, ErrNoEndpoints
	}

	req := domain.PayloadRequest{
		RoundID:         claim.RoundID,
		Points:          claim.Points,
		SecondaryPoints: claim.SecondaryPoints,
	}
	_, err = p.registry.WithEndpoint(ctx, func(ctx context.Context, id string) error {
		payload, err := p.payloads.Generate(ctx, id, req)
		if err != nil {
			return err
		}
		if payload == "" {
			return errors.New("empty payload")
		}
		claim.Payload = payload
		return nil
	})
	if err != nil {
		return domain.GameClaim{}, fmt.Errorf("generate payload: %w", err)
	}

	return claim, nil
}

func uniformInt(lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	if lo < 0 {
		lo = 0
	}
	if hi <= lo {
		return lo
	}

	return lo + rand.IntN(hi-lo+1)
}
