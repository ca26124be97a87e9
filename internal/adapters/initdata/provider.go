package initdata

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/farmhand/internal/domain"
	"github.com/bnema/farmhand/internal/ports"
)

// Provider serves the login payload saved by `fh account set-init-data`.
type Provider struct {
	store ports.SecretStore
}

var _ ports.LoginPayloadProvider = (*Provider)(nil)

func NewProvider(store ports.SecretStore) *Provider {
	return &Provider{store: store}
}

func (p *Provider) ObtainLoginPayload(ctx context.Context, account domain.Account) (string, error) {
	ref := account.ID.InitDataSecretRef()

	value, err := p.store.Get(ctx, ref)
	if err != nil {
		if errors.Is(err, domain.ErrSecretNotFound) {
			return "", fmt.Errorf("%w: no init data stored for %s", domain.ErrLoginPayloadUnavailable, account.ID)
		}
		return "", fmt.Errorf("read init data for %s: %w", account.ID, err)
	}
	if strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("%w: init data for %s is empty", domain.ErrLoginPayloadUnavailable, account.ID)
	}

	return value, nil
}
