package sealbox

import (
	"context"
	"errors"
	"testing"

	"github.com/bnema/farmhand/internal/domain"
	"github.com/bnema/farmhand/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fastParams = Params{Time: 1, MemoryKiB: 64, Threads: 1}

func TestBoxRoundTrip(t *testing.T) {
	t.Parallel()

	box, err := New("correct horse", fastParams)
	require.NoError(t, err)

	sealed, err := box.Seal([]byte("version = 1"))
	require.NoError(t, err)
	assert.True(t, IsSealed(sealed))
	assert.NotContains(t, string(sealed), "version")

	opened, err := box.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "version = 1", string(opened))
}

func TestBoxUsesFreshSaltAndNoncePerSeal(t *testing.T) {
	t.Parallel()

	box, err := New("correct horse", fastParams)
	require.NoError(t, err)

	first, err := box.Seal([]byte("same"))
	require.NoError(t, err)
	second, err := box.Seal([]byte("same"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestBoxOpenRejectsWrongPassphrase(t *testing.T) {
	t.Parallel()

	box, err := New("correct horse", fastParams)
	require.NoError(t, err)
	sealed, err := box.Seal([]byte("secret"))
	require.NoError(t, err)

	other, err := New("battery staple", fastParams)
	require.NoError(t, err)

	_, err = other.Open(sealed)
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestBoxOpenDetectsTampering(t *testing.T) {
	t.Parallel()

	box, err := New("correct horse", fastParams)
	require.NoError(t, err)
	sealed, err := box.Seal([]byte("secret"))
	require.NoError(t, err)

	tampered := append([]byte(nil), sealed...)
	tampered[len(tampered)-1] ^= 0xff
	_, err = box.Open(tampered)
	assert.ErrorIs(t, err, ErrDecrypt)

	header := append([]byte(nil), sealed...)
	header[len(magic)] ^= 0xff
	_, err = box.Open(header)
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestBoxOpenRejectsGarbage(t *testing.T) {
	t.Parallel()

	box, err := New("correct horse", fastParams)
	require.NoError(t, err)

	_, err = box.Open([]byte("version = 1"))
	assert.ErrorIs(t, err, ErrInvalidEnvelope)
}

func TestNewRejectsEmptyPassphrase(t *testing.T) {
	t.Parallel()

	_, err := New("", fastParams)
	assert.ErrorIs(t, err, ErrEmptyPassphrase)
}

func TestLoadOrCreatePassphraseReturnsStored(t *testing.T) {
	store := mocks.NewMockSecretStore(t)
	store.EXPECT().Get(mock.Anything, PassphraseKey).Return("stored", nil)

	passphrase, err := LoadOrCreatePassphrase(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, "stored", passphrase)
}

func TestLoadOrCreatePassphraseGeneratesOnFirstUse(t *testing.T) {
	store := mocks.NewMockSecretStore(t)
	store.EXPECT().Get(mock.Anything, PassphraseKey).Return("", domain.ErrSecretNotFound)

	var stored string
	store.EXPECT().Put(mock.Anything, PassphraseKey, mock.AnythingOfType("string")).
		Run(func(_ context.Context, _ string, value string) { stored = value }).
		Return(nil)

	passphrase, err := LoadOrCreatePassphrase(context.Background(), store)
	require.NoError(t, err)
	assert.Len(t, passphrase, 64)
	assert.Equal(t, stored, passphrase)
}

func TestLoadOrCreatePassphrasePropagatesStoreErrors(t *testing.T) {
	store := mocks.NewMockSecretStore(t)
	store.EXPECT().Get(mock.Anything, PassphraseKey).Return("", errors.New("gpg agent down"))

	_, err := LoadOrCreatePassphrase(context.Background(), store)
	assert.ErrorContains(t, err, "load accounts passphrase")
}
