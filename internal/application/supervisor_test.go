package application

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bnema/farmhand/internal/domain"
	"github.com/bnema/farmhand/internal/ports"
	"github.com/bnema/farmhand/internal/ports/mocks"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type directoryFunc func(ctx context.Context) ([]string, error)

func (f directoryFunc) Endpoints(ctx context.Context) ([]string, error) {
	return f(ctx)
}

type perAccountFactory struct {
	mu      sync.Mutex
	created map[domain.AccountID]int
	build   func(account domain.Account) ports.GameSession
}

func (f *perAccountFactory) NewSession(account domain.Account) (ports.GameSession, error) {
	f.mu.Lock()
	f.created[account.ID]++
	f.mu.Unlock()
	return f.build(account), nil
}

func (f *perAccountFactory) count(id domain.AccountID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created[id]
}

func TestSupervisorIsolatesWorkerFailures(t *testing.T) {
	repo := mocks.NewMockAccountRepository(t)
	repo.EXPECT().List(mockAnyContext()).Return([]domain.Account{
		{ID: "boom", Phone: "+15550000001", Enabled: true},
		{ID: "rejected", Phone: "+15550000002", Enabled: true},
		{ID: "off", Phone: "+15550000003", Enabled: false},
	}, nil)

	factory := &perAccountFactory{
		created: map[domain.AccountID]int{},
		build: func(account domain.Account) ports.GameSession {
			if account.ID == "boom" {
				panic("nil session state")
			}
			session := newFakeSession()
			session.loginErr = domain.ErrLoginRejected
			return session
		},
	}
	status := &statusRecorder{}
	registry := NewEndpointRegistry(zerolog.Nop())
	directory := directoryFunc(func(context.Context) ([]string, error) {
		return []string{"x", "y"}, nil
	})

	flushed := 0
	supervisor := NewSupervisor(
		SupervisorConfig{SeedEndpoints: []string{"z", "x"}},
		repo,
		directory,
		registry,
		WorkerDeps{
			Sessions: factory,
			Login:    staticLoginPayload("query_id=1"),
			Delays:   instantDelays(nil),
			Status:   status,
		},
		zerolog.Nop(),
		func() error {
			flushed++
			return nil
		},
	)

	err := supervisor.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, flushed)
	assert.Equal(t, []string{"x", "y", "z"}, registry.Snapshot())
	assert.Equal(t, 1, factory.count("boom"))
	assert.Equal(t, 1, factory.count("rejected"))
	assert.Zero(t, factory.count("off"))

	crashed, err := status.GetByAccountID(context.Background(), "boom")
	require.NoError(t, err)
	assert.True(t, crashed.Terminated)
	assert.Contains(t, crashed.LastError, ErrWorkerPanic.Error())

	rejected, err := status.GetByAccountID(context.Background(), "rejected")
	require.NoError(t, err)
	assert.True(t, rejected.Terminated)
	assert.Contains(t, rejected.LastError, domain.ErrLoginRejected.Error())
}

func TestSupervisorWithoutEnabledAccounts(t *testing.T) {
	repo := mocks.NewMockAccountRepository(t)
	repo.EXPECT().List(mockAnyContext()).Return([]domain.Account{
		{ID: "off", Phone: "+15550000003", Enabled: false},
	}, nil)

	flushErr := errors.New("sync failed")
	supervisor := NewSupervisor(SupervisorConfig{}, repo, nil, NewEndpointRegistry(zerolog.Nop()), WorkerDeps{}, zerolog.Nop(), func() error {
		return flushErr
	})

	err := supervisor.Run(context.Background())

	assert.ErrorIs(t, err, ErrNoEnabledAccounts)
	assert.ErrorIs(t, err, flushErr)
}

func TestSupervisorRejectsInvalidReseedSchedule(t *testing.T) {
	repo := mocks.NewMockAccountRepository(t)
	repo.EXPECT().List(mockAnyContext()).Return([]domain.Account{
		{ID: "main", Phone: "+15550000001", Enabled: true},
	}, nil)

	supervisor := NewSupervisor(
		SupervisorConfig{ReseedSchedule: "every now and then"},
		repo,
		nil,
		NewEndpointRegistry(zerolog.Nop()),
		WorkerDeps{},
		zerolog.Nop(),
		nil,
	)

	err := supervisor.Run(context.Background())
	assert.ErrorContains(t, err, "schedule endpoint reseed")
}

func TestSupervisorSeedKeepsRegistryOnDirectoryFailure(t *testing.T) {
	registry := NewEndpointRegistry(zerolog.Nop(), "existing")
	directory := directoryFunc(func(context.Context) ([]string, error) {
		return nil, errors.New("404")
	})
	supervisor := NewSupervisor(SupervisorConfig{}, nil, directory, registry, WorkerDeps{}, zerolog.Nop(), nil)

	supervisor.Seed(context.Background())

	assert.Equal(t, []string{"existing"}, registry.Snapshot())
}

func TestSupervisorJoinsRunningReseedBeforeFlush(t *testing.T) {
	repo := mocks.NewMockAccountRepository(t)
	repo.EXPECT().List(mockAnyContext()).Return([]domain.Account{
		{ID: "main", Phone: "+15550000001", Enabled: true},
	}, nil)

	reseedStarted := make(chan struct{})
	var reseedDone atomic.Bool
	var fetches atomic.Int32
	directory := directoryFunc(func(context.Context) ([]string, error) {
		if fetches.Add(1) == 2 {
			close(reseedStarted)
			time.Sleep(200 * time.Millisecond)
			reseedDone.Store(true)
		}
		return []string{"x"}, nil
	})

	factory := &perAccountFactory{
		created: map[domain.AccountID]int{},
		build: func(domain.Account) ports.GameSession {
			session := newFakeSession()
			session.loginErr = domain.ErrLoginRejected
			session.onLogin = func() { <-reseedStarted }
			return session
		},
	}

	var doneAtFlush bool
	supervisor := NewSupervisor(
		SupervisorConfig{ReseedSchedule: "@every 1s"},
		repo,
		directory,
		NewEndpointRegistry(zerolog.Nop()),
		WorkerDeps{
			Sessions: factory,
			Login:    staticLoginPayload("query_id=1"),
			Delays:   instantDelays(nil),
			Status:   &statusRecorder{},
		},
		zerolog.Nop(),
		func() error {
			doneAtFlush = reseedDone.Load()
			return nil
		},
	)

	require.NoError(t, supervisor.Run(context.Background()))
	assert.True(t, doneAtFlush)
}
