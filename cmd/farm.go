package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bnema/farmhand/internal/adapters/game/blum"
	"github.com/bnema/farmhand/internal/adapters/initdata"
	"github.com/bnema/farmhand/internal/adapters/payload"
	"github.com/bnema/farmhand/internal/application"
	"github.com/bnema/farmhand/internal/logging"
	"github.com/bnema/farmhand/internal/ports"
	"github.com/spf13/cobra"
)

func newFarmCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "farm",
		Short: "Run the farming loop for every enabled account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runFarm(ctx, cmd, app)
		},
	}

	// Values reach the config through flagBindings in wire.go.
	cmd.Flags().Int("max-plays", 7, "Play passes spent per cycle (0 disables playing)")
	cmd.Flags().Bool("tasks", false, "Run the task completion pass once per login")
	cmd.Flags().String("log-level", "info", "Log level (trace, debug, info, warn, error)")
	cmd.Flags().String("proxy", "", "Proxy URL for game traffic (http, https or socks5)")

	return cmd
}

func runFarm(ctx context.Context, cmd *cobra.Command, app *app) error {
	cfg := app.cfg

	logger, err := logging.New(logging.Options{
		Level:   cfg.Log.Level,
		File:    cfg.Log.File,
		JSON:    cfg.Log.JSON,
		Console: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	httpClient, err := blum.NewHTTPClient(cfg.HTTP.Timeout, cfg.HTTP.Proxy)
	if err != nil {
		_ = logger.Close()
		return fmt.Errorf("build http client: %w", err)
	}

	delays := application.NewDelayPolicy(cfg.Delays)
	registry := application.NewEndpointRegistry(logger.Logger)
	directory := &payload.Directory{URL: cfg.Endpoints.DirectoryURL, HTTPClient: httpClient}
	answers := directory
	if cfg.Service.TaskAnswersURL != "" && cfg.Service.TaskAnswersURL != cfg.Endpoints.DirectoryURL {
		answers = &payload.Directory{URL: cfg.Service.TaskAnswersURL, HTTPClient: httpClient}
	}
	generator := payload.Generator{URLTemplate: cfg.Endpoints.GeneratorURLTemplate, HTTPClient: httpClient}

	player := application.NewPlayer(application.PlayConfig{
		PointsMin:          cfg.Game.PointsMin,
		PointsMax:          cfg.Game.PointsMax,
		SecondaryMin:       cfg.Game.SecondaryMin,
		SecondaryMax:       cfg.Game.SecondaryMax,
		RequirePayload:     cfg.Game.RequirePayload,
		RefreshEveryRounds: cfg.Game.RefreshEveryRounds,
	}, delays, registry, generator)

	sessions := blum.NewFactory(blum.FactoryConfig{
		URLs: blum.URLs{
			Auth:  cfg.Service.AuthURL,
			Game:  cfg.Service.GameURL,
			Tasks: cfg.Service.TasksURL,
		},
		Timeout:   cfg.HTTP.Timeout,
		Proxy:     cfg.HTTP.Proxy,
		UserAgent: cfg.HTTP.UserAgent,
	}, delays, ports.SystemClock{})

	supervisor := application.NewSupervisor(
		application.SupervisorConfig{
			Worker: application.WorkerConfig{
				RetryBudget:               cfg.Farming.RetryBudget,
				MaxConsecutiveExhaustions: cfg.Farming.MaxConsecutiveExhaustions,
				MaxPlays:                  cfg.Game.MaxPlays,
				TasksEnabled:              cfg.Farming.TasksEnabled,
			},
			SeedEndpoints:  cfg.Endpoints.Seed,
			ReseedSchedule: cfg.Endpoints.RefreshSchedule,
		},
		app.accounts,
		directory,
		registry,
		application.WorkerDeps{
			Sessions: sessions,
			Login:    initdata.NewProvider(app.secretStore),
			Delays:   delays,
			Player:   player,
			Tasks:    application.NewTaskRunner(answers, delays),
			Status:   app.status,
		},
		logger.Logger,
		logger.Close,
	)

	logger.Info().
		Str("accounts_file", app.accounts.Path()).
		Int("max_plays", cfg.Game.MaxPlays).
		Bool("tasks", cfg.Farming.TasksEnabled).
		Msg("farmhand starting")

	err = supervisor.Run(ctx)
	if errors.Is(err, application.ErrNoEnabledAccounts) {
		return fmt.Errorf("%w: add one with `fh account add --name NAME --phone PHONE`", err)
	}
	return err
}
