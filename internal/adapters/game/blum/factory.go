package blum

import (
	"fmt"
	"time"

	"github.com/bnema/farmhand/internal/domain"
	"github.com/bnema/farmhand/internal/ports"
)

type FactoryConfig struct {
	URLs      URLs
	Timeout   time.Duration
	Proxy     string
	UserAgent string
}

// Factory hands every worker its own session with its own connection pool
// and user agent.
type Factory struct {
	cfg   FactoryConfig
	pacer Pacer
	clock ports.Clock
}

var _ ports.SessionFactory = (*Factory)(nil)

func NewFactory(cfg FactoryConfig, pacer Pacer, clock ports.Clock) *Factory {
	return &Factory{cfg: cfg, pacer: pacer, clock: clock}
}

func (f *Factory) NewSession(account domain.Account) (ports.GameSession, error) {
	client, err := NewHTTPClient(f.cfg.Timeout, f.cfg.Proxy)
	if err != nil {
		return nil, fmt.Errorf("build http client for %s: %w", account.ID, err)
	}

	return NewSession(client, f.cfg.URLs, f.cfg.UserAgent, f.pacer, f.clock), nil
}
