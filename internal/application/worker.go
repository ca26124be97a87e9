package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/farmhand/internal/domain"
	"github.com/bnema/farmhand/internal/ports"
	"github.com/rs/zerolog"
)

type WorkerConfig struct {
	// RetryBudget is the start/claim budget granted after every login.
	RetryBudget int
	// MaxConsecutiveExhaustions is how many sessions in a row may run out
	// of budget without sleeping before the worker gives up.
	MaxConsecutiveExhaustions int
	MaxPlays                  int
	TasksEnabled              bool
}

type WorkerDeps struct {
	Sessions ports.SessionFactory
	Login    ports.LoginPayloadProvider
	Delays   *DelayPolicy
	Player   *Player
	Tasks    *TaskRunner
	Status   ports.StatusRepository
	Clock    ports.Clock
}

type workerState struct {
	maxTries  int
	played    bool
	tasksDone bool
}

// Worker drives one account through login, play, farm and sleep. Run is a
// single dispatch loop over the phase; every handler returns the next phase.
type Worker struct {
	account domain.Account
	cfg     WorkerConfig
	deps    WorkerDeps
	logger  zerolog.Logger

	phase        domain.WorkerPhase
	session      ports.GameSession
	state        workerState
	sleepFor     time.Duration
	exhaustions  int
	window       *domain.FarmingWindow
	playsClaimed int
	farmClaims   int
	lastErr      error
	fatalErr     error
}

func NewWorker(account domain.Account, cfg WorkerConfig, deps WorkerDeps, logger zerolog.Logger) *Worker {
	if cfg.RetryBudget <= 0 {
		cfg.RetryBudget = 2
	}
	if cfg.MaxConsecutiveExhaustions <= 0 {
		cfg.MaxConsecutiveExhaustions = 2
	}
	if deps.Clock == nil {
		deps.Clock = ports.SystemClock{}
	}
	if deps.Delays == nil {
		deps.Delays = NewDelayPolicy(nil)
	}

	return &Worker{
		account: account,
		cfg:     cfg,
		deps:    deps,
		logger:  logger.With().Str("account", string(account.ID)).Logger(),
		phase:   domain.PhaseLoggingIn,
	}
}

func (w *Worker) Phase() domain.WorkerPhase {
	return w.phase
}

// Run returns the fatal error that terminated the worker, or the context
// error on shutdown.
func (w *Worker) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			w.logger.Info().Str("phase", string(w.phase)).Msg("worker stopping")
			return err
		}

		var next domain.WorkerPhase
		switch w.phase {
		case domain.PhaseLoggingIn:
			next = w.loggingIn(ctx)
		case domain.PhaseActive:
			next = w.active(ctx)
		case domain.PhaseSleeping:
			next = w.sleeping(ctx)
		case domain.PhaseCoolingDown:
			next = w.coolingDown(ctx)
		case domain.PhaseTerminated:
			return w.fatalErr
		default:
			w.fatalErr = Fatal(fmt.Errorf("unknown worker phase %q", w.phase))
			next = domain.PhaseTerminated
		}

		w.transition(ctx, next)
	}
}

func (w *Worker) transition(ctx context.Context, next domain.WorkerPhase) {
	prev := w.phase
	w.phase = next

	switch {
	case next == domain.PhaseTerminated:
		w.logger.Error().
			Err(w.fatalErr).
			Strs("cause_chain", causeChain(w.fatalErr)).
			Str("from", string(prev)).
			Msg("worker terminated")
	case next != prev:
		w.logger.Debug().Str("from", string(prev)).Str("to", string(next)).Msg("phase changed")
	}

	w.report(ctx)
}

func (w *Worker) loggingIn(ctx context.Context) domain.WorkerPhase {
	if err := w.deps.Delays.Wait(ctx, domain.DelayAccountStart); err != nil {
		return w.phase
	}

	payload, err := w.deps.Login.ObtainLoginPayload(ctx, w.account)
	if err != nil {
		if ctx.Err() != nil {
			return w.phase
		}
		return w.terminate(fmt.Errorf("obtain login payload: %w", err))
	}

	session, err := w.deps.Sessions.NewSession(w.account)
	if err != nil {
		return w.terminate(fmt.Errorf("create game session: %w", err))
	}

	if err := session.Login(ctx, payload); err != nil {
		if ctx.Err() != nil {
			return w.phase
		}
		if IsFatal(err) {
			return w.terminate(fmt.Errorf("login: %w", err))
		}
		return w.abort(fmt.Errorf("login: %w", err))
	}

	w.session = session
	w.state = workerState{maxTries: w.cfg.RetryBudget}
	w.lastErr = nil
	w.logger.Info().Msg("logged in")

	return domain.PhaseActive
}

func (w *Worker) active(ctx context.Context) domain.WorkerPhase {
	next, err := w.iterate(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return w.phase
		}
		if IsFatal(err) {
			return w.terminate(err)
		}
		return w.abort(err)
	}
	if next != domain.PhaseActive {
		return next
	}

	if err := w.deps.Delays.Wait(ctx, domain.DelayCycle); err != nil {
		return w.phase
	}
	return domain.PhaseActive
}

// iterate runs one pass of the farming ladder and picks the next phase.
func (w *Worker) iterate(ctx context.Context) (domain.WorkerPhase, error) {
	if err := w.deps.Delays.Wait(ctx, domain.DelayBeforeRequest); err != nil {
		return w.phase, err
	}
	reward, err := w.session.ClaimDailyReward(ctx)
	switch {
	case err != nil:
		if ctx.Err() != nil {
			return w.phase, ctx.Err()
		}
		w.logger.Debug().Err(err).Msg("daily reward not claimed")
	case reward.Claimed:
		w.logger.Info().Str("detail", reward.Detail).Msg("daily reward claimed")
	default:
		w.logger.Debug().Str("detail", reward.Detail).Msg("daily reward not available")
	}

	window, err := w.balance(ctx)
	if err != nil {
		return w.phase, err
	}

	if passes := min(window.PlayPasses, w.cfg.MaxPlays); passes > 0 && !w.state.played && w.deps.Player != nil {
		w.logger.Info().Int("passes", passes).Int("available", window.PlayPasses).Msg("starting game")
		report, err := w.deps.Player.Play(ctx, w.session, passes, w.logger)
		w.playsClaimed += report.Claimed
		w.state.played = true
		if err != nil {
			return w.phase, err
		}
		w.logger.Info().
			Int("claimed", report.Claimed).
			Int("failed", report.Failed).
			Int("points", report.Points).
			Msg("game cycle finished")
	}

	if err := w.deps.Delays.Wait(ctx, domain.DelayBetweenChecks); err != nil {
		return w.phase, err
	}

	window, err = w.balance(ctx)
	if err != nil {
		return w.phase, err
	}

	return w.decide(ctx, window)
}

func (w *Worker) decide(ctx context.Context, window domain.FarmingWindow) (domain.WorkerPhase, error) {
	switch {
	case !window.Open() && w.state.maxTries > 0:
		w.state.maxTries--
		if err := w.deps.Delays.Wait(ctx, domain.DelayBeforeRequest); err != nil {
			return w.phase, err
		}
		if err := w.session.StartFarming(ctx); err != nil {
			if ctx.Err() != nil {
				return w.phase, ctx.Err()
			}
			w.lastErr = err
			w.logger.Warn().Err(err).Int("max_tries", w.state.maxTries).Msg("could not start farming")
		} else {
			w.logger.Info().Msg("farming started")
		}
		return domain.PhaseActive, nil

	case window.Elapsed() && w.state.maxTries > 0:
		w.state.maxTries--
		if err := w.deps.Delays.Wait(ctx, domain.DelayBeforeRequest); err != nil {
			return w.phase, err
		}
		if err := w.session.RefreshToken(ctx); err != nil {
			if ctx.Err() != nil {
				return w.phase, ctx.Err()
			}
			w.logger.Warn().Err(err).Msg("token refresh before farm claim failed")
		}
		claim, err := w.session.ClaimFarming(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return w.phase, ctx.Err()
			}
			w.lastErr = err
			w.logger.Warn().Err(err).Int("max_tries", w.state.maxTries).Msg("could not claim farm reward")
		} else {
			w.farmClaims++
			w.logger.Info().Str("balance", claim.Balance).Msg("farm reward claimed")
		}
		return domain.PhaseActive, nil

	case w.cfg.TasksEnabled && !w.state.tasksDone && w.deps.Tasks != nil:
		w.state.tasksDone = true
		report, err := w.deps.Tasks.Run(ctx, w.session, w.logger)
		if err != nil {
			if ctx.Err() != nil {
				return w.phase, ctx.Err()
			}
			w.logger.Warn().Err(err).Msg("task pass failed")
		} else {
			w.logger.Info().
				Int("started", report.Started).
				Int("claimed", report.Claimed).
				Int("verified", report.Verified).
				Int("failed", report.Failed).
				Msg("task pass finished")
		}
		return domain.PhaseActive, nil

	case window.Open() && !window.Elapsed():
		w.sleepFor = window.Remaining()
		return domain.PhaseSleeping, nil

	case w.state.maxTries <= 0:
		return w.exhausted()
	}

	return domain.PhaseActive, nil
}

func (w *Worker) exhausted() (domain.WorkerPhase, error) {
	w.exhaustions++
	err := fmt.Errorf("%w after %d consecutive sessions", ErrRetryBudgetExhausted, w.exhaustions)
	if w.exhaustions >= w.cfg.MaxConsecutiveExhaustions {
		return w.phase, Fatal(err)
	}

	return w.phase, err
}

func (w *Worker) sleeping(ctx context.Context) domain.WorkerPhase {
	w.state.maxTries++
	w.exhaustions = 0

	w.logger.Info().
		Dur("duration", w.sleepFor).
		Time("until", w.deps.Clock.Now().Add(w.sleepFor)).
		Msg("sleeping until farm window ends")

	if err := sleepWithRefresh(ctx, w.sleepFor, w.deps.Delays, w.session.RefreshToken, w.logger); err != nil {
		return w.phase
	}

	w.state.played = false
	w.state.tasksDone = false

	if err := w.session.RefreshToken(ctx); err != nil {
		if ctx.Err() != nil {
			return w.phase
		}
		w.logger.Warn().Err(err).Msg("token refresh after sleep failed")
	}

	return domain.PhaseActive
}

func (w *Worker) coolingDown(ctx context.Context) domain.WorkerPhase {
	delay := w.deps.Delays.Jitter(domain.DelayReconnect)
	w.logger.Info().Dur("delay", delay).Msg("reconnecting")

	if err := sleepContext(ctx, delay); err != nil {
		return w.phase
	}

	return domain.PhaseLoggingIn
}

func (w *Worker) abort(err error) domain.WorkerPhase {
	w.lastErr = err
	w.session = nil

	event := w.logger.Error()
	if errors.Is(err, ErrRetryBudgetExhausted) {
		event = w.logger.Warn()
	}
	event.Err(err).Str("phase", string(w.phase)).Msg("session aborted")

	return domain.PhaseCoolingDown
}

func (w *Worker) terminate(err error) domain.WorkerPhase {
	if !errors.Is(err, ErrFatal) {
		err = Fatal(err)
	}
	w.fatalErr = err
	w.lastErr = err
	w.session = nil

	return domain.PhaseTerminated
}

func (w *Worker) balance(ctx context.Context) (domain.FarmingWindow, error) {
	if err := w.deps.Delays.Wait(ctx, domain.DelayBeforeRequest); err != nil {
		return domain.FarmingWindow{}, err
	}

	window, err := w.session.Balance(ctx)
	if err != nil {
		return domain.FarmingWindow{}, fmt.Errorf("query balance: %w", err)
	}
	if !window.Consistent() {
		w.logger.Warn().Msg("balance returned a half-open farm window")
	}

	w.window = &window
	return window, nil
}

// report persists a status snapshot. Failures are logged only.
func (w *Worker) report(ctx context.Context) {
	if w.deps.Status == nil {
		return
	}

	status := domain.AccountStatus{
		AccountID:    w.account.ID,
		Phase:        w.phase,
		UpdatedAt:    w.deps.Clock.Now(),
		Window:       w.window,
		PlaysClaimed: w.playsClaimed,
		FarmClaims:   w.farmClaims,
		Terminated:   w.phase == domain.PhaseTerminated,
	}
	if w.lastErr != nil {
		status.LastError = w.lastErr.Error()
	}

	saveCtx := context.WithoutCancel(ctx)
	if err := w.deps.Status.Save(saveCtx, status); err != nil {
		w.logger.Debug().Err(err).Msg("could not save status")
	}
}
