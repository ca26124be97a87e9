package cmd

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bnema/farmhand/internal/adapters/crypto/sealbox"
	statusadapter "github.com/bnema/farmhand/internal/adapters/render/status"
	tomlrepo "github.com/bnema/farmhand/internal/adapters/repo/toml"
	chainstore "github.com/bnema/farmhand/internal/adapters/secrets/chain"
	"github.com/bnema/farmhand/internal/application"
	"github.com/bnema/farmhand/internal/config"
	"github.com/bnema/farmhand/internal/ports"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// flagBindings maps command flags onto config keys so flags win over the
// config file and the environment.
var flagBindings = map[string]string{
	"max-plays": "game.max_plays",
	"tasks":     "farming.tasks_enabled",
	"log-level": "log.level",
	"proxy":     "http.proxy",
}

type app struct {
	viper          *viper.Viper
	cfg            config.Config
	service        *application.Service
	accounts       *tomlrepo.Repository
	status         *tomlrepo.StatusRepository
	secretStore    ports.SecretStore
	statusRenderer func([]application.Status, statusadapter.RenderOptions) (string, error)
	now            func() time.Time
}

func wireApp(cmd *cobra.Command, configPath string) (*app, error) {
	v, err := config.NewViper(configPath)
	if err != nil {
		return nil, err
	}
	for name, key := range flagBindings {
		if flag := cmd.Flags().Lookup(name); flag != nil {
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	cfg, err := config.Load(v)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	secretStore, err := chainstore.NewPassFirstWithFileFallback(cfg.Paths.Secrets)
	if err != nil {
		return nil, fmt.Errorf("wire secret store chain: %w", err)
	}

	sealer := &lazySealer{
		passphrase: func(ctx context.Context) (string, error) {
			if cfg.Security.Passphrase != "" {
				return cfg.Security.Passphrase, nil
			}
			return sealbox.LoadOrCreatePassphrase(ctx, secretStore)
		},
		params: sealbox.Params{
			Time:      cfg.Security.ArgonTime,
			MemoryKiB: cfg.Security.ArgonMemoryKiB,
			Threads:   cfg.Security.ArgonThreads,
		},
	}

	accounts, err := tomlrepo.NewRepository(v, sealer)
	if err != nil {
		return nil, fmt.Errorf("wire account repository: %w", err)
	}
	status, err := tomlrepo.NewStatusRepository(v)
	if err != nil {
		return nil, fmt.Errorf("wire status repository: %w", err)
	}

	return &app{
		viper:          v,
		cfg:            cfg,
		service:        application.NewService(accounts, secretStore, status, ports.SystemClock{}),
		accounts:       accounts,
		status:         status,
		secretStore:    secretStore,
		statusRenderer: statusadapter.Render,
		now:            time.Now,
	}, nil
}

// lazySealer defers reading the passphrase until the accounts file is first
// touched, so commands that never read it never reach the secret store.
type lazySealer struct {
	passphrase func(ctx context.Context) (string, error)
	params     sealbox.Params

	once sync.Once
	box  *sealbox.Box
	err  error
}

func (s *lazySealer) load() (*sealbox.Box, error) {
	s.once.Do(func() {
		passphrase, err := s.passphrase(context.Background())
		if err != nil {
			s.err = err
			return
		}
		s.box, s.err = sealbox.New(passphrase, s.params)
	})
	return s.box, s.err
}

func (s *lazySealer) Seal(plaintext []byte) ([]byte, error) {
	box, err := s.load()
	if err != nil {
		return nil, err
	}
	return box.Seal(plaintext)
}

func (s *lazySealer) Open(envelope []byte) ([]byte, error) {
	box, err := s.load()
	if err != nil {
		return nil, err
	}
	return box.Open(envelope)
}
