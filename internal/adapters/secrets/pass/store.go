// Package pass keeps farmhand secrets in the user's password store. Entries
// follow the pass convention: the secret is the first line, anything after
// it is free-form notes and is ignored.
package pass

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/bnema/farmhand/internal/domain"
	"github.com/bnema/farmhand/internal/ports"
)

var (
	ErrUnavailable = errors.New("pass command unavailable")
	// ErrLocked means gpg could not decrypt the entry, usually because the
	// agent has no unlocked key. Retrying without the user will not help.
	ErrLocked = errors.New("password store is locked")
)

type runFunc func(ctx context.Context, input string, args ...string) (stdout string, stderr string, err error)

type Store struct {
	run runFunc
}

var _ ports.SecretStore = (*Store)(nil)

func NewStore() *Store {
	return &Store{run: runPassCommand}
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	if strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("pass put %q: value spans several lines", key)
	}

	_, err := s.call(ctx, "put", key, value+"\n", "insert", "-m", "-f", key)
	return err
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	stdout, err := s.call(ctx, "get", key, "", "show", key)
	if err != nil {
		return "", err
	}

	secret, _, _ := strings.Cut(stdout, "\n")
	return strings.TrimSuffix(secret, "\r"), nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.call(ctx, "delete", key, "", "rm", "-f", key)
	return err
}

func (s *Store) call(ctx context.Context, op string, key string, input string, args ...string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	stdout, stderr, err := s.run(ctx, input, args...)
	if err != nil {
		return "", classify(op, key, err, stderr)
	}

	return stdout, nil
}

func runPassCommand(ctx context.Context, input string, args ...string) (string, string, error) {
	path, err := exec.LookPath("pass")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", "", ErrUnavailable
		}
		return "", "", fmt.Errorf("locate pass command: %w", err)
	}

	cmd := exec.CommandContext(ctx, path, args...)
	if input != "" {
		cmd.Stdin = strings.NewReader(input)
	}

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	return stdout.String(), strings.TrimSpace(stderr.String()), err
}

func classify(op string, key string, err error, stderr string) error {
	switch {
	case strings.Contains(stderr, "is not in the password store"):
		return fmt.Errorf("pass %s %q: %w", op, key, domain.ErrSecretNotFound)
	case strings.Contains(stderr, "decryption failed"), strings.Contains(stderr, "No secret key"):
		return fmt.Errorf("pass %s %q: %w: %s", op, key, ErrLocked, stderr)
	case stderr == "":
		return fmt.Errorf("pass %s %q: %w", op, key, err)
	}

	return fmt.Errorf("pass %s %q: %w: %s", op, key, err, stderr)
}
