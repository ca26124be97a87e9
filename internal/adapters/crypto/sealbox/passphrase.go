package sealbox

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/bnema/farmhand/internal/domain"
	"github.com/bnema/farmhand/internal/ports"
)

// PassphraseKey is where the accounts passphrase is kept in the secret store.
const PassphraseKey = "farmhand/passphrase"

// LoadOrCreatePassphrase returns the stored passphrase, generating and
// storing a random one on first use.
func LoadOrCreatePassphrase(ctx context.Context, store ports.SecretStore) (string, error) {
	passphrase, err := store.Get(ctx, PassphraseKey)
	if err == nil && passphrase != "" {
		return passphrase, nil
	}
	if err != nil && !errors.Is(err, domain.ErrSecretNotFound) {
		return "", fmt.Errorf("load accounts passphrase: %w", err)
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate accounts passphrase: %w", err)
	}
	passphrase = hex.EncodeToString(raw)

	if err := store.Put(ctx, PassphraseKey, passphrase); err != nil {
		return "", fmt.Errorf("store accounts passphrase: %w", err)
	}

	return passphrase, nil
}
