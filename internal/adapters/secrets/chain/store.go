package chain

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	filestore "github.com/bnema/farmhand/internal/adapters/secrets/file"
	passstore "github.com/bnema/farmhand/internal/adapters/secrets/pass"
	"github.com/bnema/farmhand/internal/domain"
	"github.com/bnema/farmhand/internal/ports"
)

// Store reads and writes through primary and falls back on any error other
// than a cancelled context or a locked pass store. Once primary reports that its backend is not
// installed it is skipped for the rest of the process.
type Store struct {
	primary  ports.SecretStore
	fallback ports.SecretStore

	primaryGone atomic.Bool
}

var _ ports.SecretStore = (*Store)(nil)

var (
	errNilPrimaryStore  = errors.New("primary secret store is nil")
	errNilFallbackStore = errors.New("fallback secret store is nil")
)

func NewStore(primary ports.SecretStore, fallback ports.SecretStore) *Store {
	store, err := NewStoreChecked(primary, fallback)
	if err != nil {
		panic(err)
	}

	return store
}

func NewStoreChecked(primary ports.SecretStore, fallback ports.SecretStore) (*Store, error) {
	if primary == nil {
		return nil, errNilPrimaryStore
	}
	if fallback == nil {
		return nil, errNilFallbackStore
	}

	return &Store{primary: primary, fallback: fallback}, nil
}

// NewPassFirstWithFileFallback keeps secrets in pass when it is installed
// and in one 0600 file per key below fileRoot otherwise.
func NewPassFirstWithFileFallback(fileRoot string) (*Store, error) {
	return NewStoreChecked(passstore.NewStore(), filestore.NewStore(fileRoot))
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	return s.route("put", func(store ports.SecretStore) error {
		return store.Put(ctx, key, value)
	})
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.route("get", func(store ports.SecretStore) error {
		v, err := store.Get(ctx, key)
		if err == nil {
			value = v
		}
		return err
	})
	if err != nil {
		return "", err
	}

	return value, nil
}

// Delete removes key from both backends so a copy written to the fallback
// while pass was missing does not outlive the account.
func (s *Store) Delete(ctx context.Context, key string) error {
	var primaryErr error
	if !s.primaryGone.Load() {
		primaryErr = s.primary.Delete(ctx, key)
		if shouldSkipFallback(primaryErr) {
			return primaryErr
		}
		s.notePrimary(primaryErr)
		if errors.Is(primaryErr, passstore.ErrUnavailable) || errors.Is(primaryErr, domain.ErrSecretNotFound) {
			primaryErr = nil
		}
	}

	fallbackErr := s.fallback.Delete(ctx, key)
	if errors.Is(fallbackErr, domain.ErrSecretNotFound) {
		fallbackErr = nil
	}

	switch {
	case primaryErr != nil && fallbackErr != nil:
		return fmt.Errorf("primary backend delete failed: %w; fallback backend delete failed: %w", primaryErr, fallbackErr)
	case primaryErr != nil:
		return fmt.Errorf("primary backend delete failed: %w", primaryErr)
	case fallbackErr != nil:
		return fmt.Errorf("fallback backend delete failed: %w", fallbackErr)
	}

	return nil
}

func (s *Store) route(op string, call func(ports.SecretStore) error) error {
	if s.primaryGone.Load() {
		return call(s.fallback)
	}

	err := call(s.primary)
	if err == nil {
		return nil
	}
	if shouldSkipFallback(err) {
		return err
	}
	s.notePrimary(err)

	fallbackErr := call(s.fallback)
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("primary backend %s failed: %w; fallback backend %s failed: %w", op, err, op, fallbackErr)
}

func (s *Store) notePrimary(err error) {
	if errors.Is(err, passstore.ErrUnavailable) {
		s.primaryGone.Store(true)
	}
}

// shouldSkipFallback stops at a locked pass store: the fallback would miss
// the passphrase and a fresh one would overwrite it.
func shouldSkipFallback(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, passstore.ErrLocked)
}
