package pass

import (
	"context"
	"errors"
	"testing"

	"github.com/bnema/farmhand/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorePutUsesPassInsert(t *testing.T) {
	t.Parallel()

	called := false
	store := &Store{
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			called = true
			assert.Equal(t, context.Background(), ctx)
			assert.Equal(t, []string{"insert", "-m", "-f", "farmhand/accounts/main/init_data"}, args)
			assert.Equal(t, "top-secret\n", input)
			return "", "", nil
		},
	}

	err := store.Put(context.Background(), "farmhand/accounts/main/init_data", "top-secret")
	require.NoError(t, err)
	assert.True(t, called)
}

func TestStoreGetUsesPassShowAndTrimsTrailingNewline(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			assert.Equal(t, []string{"show", "farmhand/accounts/main/init_data"}, args)
			assert.Empty(t, input)
			return "top-secret\n", "", nil
		},
	}

	value, err := store.Get(context.Background(), "farmhand/accounts/main/init_data")
	require.NoError(t, err)
	assert.Equal(t, "top-secret", value)
}

func TestStoreDeleteUsesPassRemove(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			assert.Equal(t, []string{"rm", "-f", "farmhand/accounts/main/init_data"}, args)
			assert.Empty(t, input)
			return "", "", nil
		},
	}

	err := store.Delete(context.Background(), "farmhand/accounts/main/init_data")
	require.NoError(t, err)
}

func TestStoreGetReturnsClearError(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			return "", "entry not found", errors.New("exit status 1")
		},
	}

	_, err := store.Get(context.Background(), "farmhand/accounts/main/init_data")
	require.Error(t, err)
	assert.ErrorContains(t, err, "pass get")
	assert.ErrorContains(t, err, "farmhand/accounts/main/init_data")
	assert.ErrorContains(t, err, "entry not found")
}

func TestStoreMapsMissingEntryToSecretNotFound(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			return "", "Error: farmhand/accounts/main/init_data is not in the password store.", errors.New("exit status 1")
		},
	}

	_, err := store.Get(context.Background(), "farmhand/accounts/main/init_data")
	assert.ErrorIs(t, err, domain.ErrSecretNotFound)

	err = store.Delete(context.Background(), "farmhand/accounts/main/init_data")
	assert.ErrorIs(t, err, domain.ErrSecretNotFound)
}

func TestStoreGetKeepsOnlyFirstLine(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(context.Context, string, ...string) (string, string, error) {
			return "query_id=AAH&hash=abc\r\nadded by hand for the main account\n", "", nil
		},
	}

	value, err := store.Get(context.Background(), "farmhand/accounts/main/init_data")
	require.NoError(t, err)
	assert.Equal(t, "query_id=AAH&hash=abc", value)
}

func TestStorePutRejectsMultilineValues(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(context.Context, string, ...string) (string, string, error) {
			t.Fatal("pass must not run for a multi-line value")
			return "", "", nil
		},
	}

	err := store.Put(context.Background(), "farmhand/passphrase", "line one\nline two")
	assert.ErrorContains(t, err, "several lines")
}

func TestStoreMapsDecryptionFailureToLocked(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(context.Context, string, ...string) (string, string, error) {
			return "", "gpg: decryption failed: No secret key", errors.New("exit status 2")
		},
	}

	_, err := store.Get(context.Background(), "farmhand/passphrase")
	require.ErrorIs(t, err, ErrLocked)
	assert.NotErrorIs(t, err, domain.ErrSecretNotFound)
	assert.ErrorContains(t, err, "farmhand/passphrase")
}

func TestStoreHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(context.Context, string, ...string) (string, string, error) {
			t.Fatal("pass must not run after cancellation")
			return "", "", nil
		},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Get(ctx, "farmhand/passphrase")
	assert.ErrorIs(t, err, context.Canceled)
}
