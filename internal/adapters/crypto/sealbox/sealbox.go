// Package sealbox encrypts small files at rest with a passphrase.
//
// An envelope is laid out as magic | salt | nonce | ciphertext. The key is
// derived with Argon2id from the passphrase and the per-envelope salt, and
// the payload is sealed with XChaCha20-Poly1305 so tampering is detected on
// open.
package sealbox

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	saltSize = 16
	keySize  = chacha20poly1305.KeySize
)

var magic = []byte("FHS1")

var (
	ErrInvalidEnvelope = errors.New("invalid sealed envelope")
	ErrDecrypt         = errors.New("decrypt sealed envelope")
	ErrEmptyPassphrase = errors.New("passphrase is empty")
)

// Params tunes the Argon2id key derivation.
type Params struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
}

func DefaultParams() Params {
	return Params{Time: 3, MemoryKiB: 64 * 1024, Threads: 4}
}

func (p Params) normalize() Params {
	defaults := DefaultParams()
	if p.Time == 0 {
		p.Time = defaults.Time
	}
	if p.MemoryKiB == 0 {
		p.MemoryKiB = defaults.MemoryKiB
	}
	if p.Threads == 0 {
		p.Threads = defaults.Threads
	}
	return p
}

type Box struct {
	passphrase []byte
	params     Params
}

func New(passphrase string, params Params) (*Box, error) {
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}

	return &Box{passphrase: []byte(passphrase), params: params.normalize()}, nil
}

func (b *Box) Seal(plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	aead, err := chacha20poly1305.NewX(b.deriveKey(salt))
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	header := make([]byte, 0, len(magic)+saltSize+len(nonce))
	header = append(header, magic...)
	header = append(header, salt...)
	header = append(header, nonce...)

	// The header is authenticated as additional data.
	return aead.Seal(header, nonce, plaintext, header), nil
}

func (b *Box) Open(envelope []byte) ([]byte, error) {
	headerSize := len(magic) + saltSize + chacha20poly1305.NonceSizeX
	if len(envelope) < headerSize+chacha20poly1305.Overhead || !bytes.HasPrefix(envelope, magic) {
		return nil, ErrInvalidEnvelope
	}

	header := envelope[:headerSize]
	salt := header[len(magic) : len(magic)+saltSize]
	nonce := header[len(magic)+saltSize:]

	aead, err := chacha20poly1305.NewX(b.deriveKey(salt))
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}

	plaintext, err := aead.Open(nil, nonce, envelope[headerSize:], header)
	if err != nil {
		return nil, ErrDecrypt
	}

	return plaintext, nil
}

// IsSealed reports whether data starts with the envelope magic.
func IsSealed(data []byte) bool {
	return bytes.HasPrefix(data, magic)
}

func (b *Box) deriveKey(salt []byte) []byte {
	return argon2.IDKey(b.passphrase, salt, b.params.Time, b.params.MemoryKiB, b.params.Threads, keySize)
}
