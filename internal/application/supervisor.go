package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/farmhand/internal/domain"
	"github.com/bnema/farmhand/internal/ports"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

var ErrNoEnabledAccounts = errors.New("no enabled accounts")

type SupervisorConfig struct {
	Worker WorkerConfig
	// SeedEndpoints are added to the registry next to the directory entries.
	SeedEndpoints []string
	// ReseedSchedule is a cron spec for refreshing the registry from the
	// directory. Empty disables it.
	ReseedSchedule string
}

// Supervisor runs one isolated worker per enabled account until ctx ends.
type Supervisor struct {
	cfg       SupervisorConfig
	accounts  ports.AccountRepository
	directory ports.EndpointDirectory
	registry  *EndpointRegistry
	deps      WorkerDeps
	logger    zerolog.Logger
	flush     func() error
}

func NewSupervisor(
	cfg SupervisorConfig,
	accounts ports.AccountRepository,
	directory ports.EndpointDirectory,
	registry *EndpointRegistry,
	deps WorkerDeps,
	logger zerolog.Logger,
	flush func() error,
) *Supervisor {
	if deps.Clock == nil {
		deps.Clock = ports.SystemClock{}
	}

	return &Supervisor{
		cfg:       cfg,
		accounts:  accounts,
		directory: directory,
		registry:  registry,
		deps:      deps,
		logger:    logger,
		flush:     flush,
	}
}

func (s *Supervisor) Run(ctx context.Context) (err error) {
	defer func() {
		if s.flush == nil {
			return
		}
		if flushErr := s.flush(); flushErr != nil {
			err = errors.Join(err, fmt.Errorf("flush logs: %w", flushErr))
		}
	}()

	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}

	enabled := make([]domain.Account, 0, len(accounts))
	for _, account := range accounts {
		if account.Enabled {
			enabled = append(enabled, account)
		}
	}
	s.logger.Info().Int("total", len(accounts)).Int("enabled", len(enabled)).Msg("accounts loaded")
	if len(enabled) == 0 {
		return ErrNoEnabledAccounts
	}

	s.Seed(ctx)
	if s.cfg.ReseedSchedule != "" {
		scheduler := cron.New()
		if _, err := scheduler.AddFunc(s.cfg.ReseedSchedule, func() { s.Seed(ctx) }); err != nil {
			return fmt.Errorf("schedule endpoint reseed: %w", err)
		}
		scheduler.Start()
		// Registered after the flush defer, so a reseed still running is
		// joined before the logs are flushed.
		defer func() { <-scheduler.Stop().Done() }()
	}

	var wg conc.WaitGroup
	for _, account := range enabled {
		wg.Go(func() {
			s.runWorker(ctx, account)
		})
	}
	wg.Wait()

	s.logger.Info().Msg("all workers stopped")
	return nil
}

// Seed adds the directory's endpoints and the configured seeds to the
// registry. A directory failure only leaves the registry as it was.
func (s *Supervisor) Seed(ctx context.Context) {
	added := 0
	for _, id := range s.cfg.SeedEndpoints {
		if s.registry.AddIfMissing(id) {
			added++
		}
	}

	if s.directory != nil {
		ids, err := s.directory.Endpoints(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("could not fetch payload endpoint directory")
		}
		for _, id := range ids {
			if s.registry.AddIfMissing(id) {
				added++
			}
		}
	}

	s.logger.Info().Int("added", added).Int("available", s.registry.Len()).Msg("payload endpoints seeded")
}

func (s *Supervisor) runWorker(ctx context.Context, account domain.Account) {
	logger := s.logger.With().Str("run_id", uuid.NewString()).Logger()
	worker := NewWorker(account, s.cfg.Worker, s.deps, logger)

	var runErr error
	var catcher panics.Catcher
	catcher.Try(func() {
		runErr = worker.Run(ctx)
	})

	if recovered := catcher.Recovered(); recovered != nil {
		logger.Error().
			Str("account", string(account.ID)).
			Interface("panic", recovered.Value).
			Str("stack", string(recovered.Stack)).
			Msg("worker panicked")
		s.recordCrash(ctx, account.ID, fmt.Errorf("%w: %v", ErrWorkerPanic, recovered.Value))
		return
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) && !errors.Is(runErr, context.DeadlineExceeded) {
		logger.Error().Str("account", string(account.ID)).Err(runErr).Msg("worker stopped for good")
	}
}

func (s *Supervisor) recordCrash(ctx context.Context, id domain.AccountID, err error) {
	if s.deps.Status == nil {
		return
	}

	status := domain.AccountStatus{
		AccountID:  id,
		Phase:      domain.PhaseTerminated,
		UpdatedAt:  s.deps.Clock.Now(),
		LastError:  err.Error(),
		Terminated: true,
	}
	if previous, getErr := s.deps.Status.GetByAccountID(context.WithoutCancel(ctx), id); getErr == nil {
		status.Window = previous.Window
		status.PlaysClaimed = previous.PlaysClaimed
		status.FarmClaims = previous.FarmClaims
	}

	if saveErr := s.deps.Status.Save(context.WithoutCancel(ctx), status); saveErr != nil {
		s.logger.Debug().Err(saveErr).Str("account", string(id)).Msg("could not save crash status")
	}
}
