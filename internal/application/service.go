package application

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/bnema/farmhand/internal/domain"
	"github.com/bnema/farmhand/internal/ports"
)

// Service manages the account list and the secrets attached to it.
type Service struct {
	repo   ports.AccountRepository
	store  ports.SecretStore
	status ports.StatusRepository
	clock  ports.Clock
}

func NewService(repo ports.AccountRepository, store ports.SecretStore, status ports.StatusRepository, clock ports.Clock) *Service {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &Service{
		repo:   repo,
		store:  store,
		status: status,
		clock:  clock,
	}
}

func (s *Service) AddAccount(ctx context.Context, cmd AddAccountCommand) (domain.Account, error) {
	account, err := domain.NewAccount(cmd.Name, cmd.Phone, s.clock.Now())
	if err != nil {
		return domain.Account{}, err
	}

	existing, err := s.repo.List(ctx)
	if err != nil {
		return domain.Account{}, fmt.Errorf("list accounts: %w", err)
	}
	for _, other := range existing {
		if err := account.ConflictsWith(other); err != nil {
			return domain.Account{}, err
		}
	}

	if err := s.repo.Save(ctx, account); err != nil {
		return domain.Account{}, fmt.Errorf("save account: %w", err)
	}

	return account, nil
}

func (s *Service) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].ID < accounts[j].ID
	})
	return accounts, nil
}

func (s *Service) SetEnabled(ctx context.Context, cmd SetEnabledCommand) error {
	account, err := s.repo.GetByID(ctx, cmd.ID)
	if err != nil {
		return fmt.Errorf("get account by id: %w", err)
	}

	if account.Enabled == cmd.Enabled {
		return nil
	}
	account.Enabled = cmd.Enabled

	if err := s.repo.Save(ctx, account); err != nil {
		return fmt.Errorf("save account: %w", err)
	}

	return nil
}

func (s *Service) SetInitData(ctx context.Context, cmd SetInitDataCommand) error {
	if _, err := s.repo.GetByID(ctx, cmd.ID); err != nil {
		return fmt.Errorf("get account by id: %w", err)
	}

	data, err := domain.ParseInitData(cmd.Raw)
	if err != nil {
		return err
	}

	if err := s.store.Put(ctx, cmd.ID.InitDataSecretRef(), data); err != nil {
		return fmt.Errorf("store init data: %w", err)
	}

	return nil
}

// DeleteAccount removes the account with its init data and status. If the
// secret cannot be removed the account is restored so it can be retried.
func (s *Service) DeleteAccount(ctx context.Context, id domain.AccountID) error {
	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get account by id: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	if err := s.store.Delete(ctx, id.InitDataSecretRef()); err != nil && !errors.Is(err, domain.ErrSecretNotFound) {
		if restoreErr := s.repo.Save(ctx, account); restoreErr != nil {
			return fmt.Errorf("delete init data and restore account: %w", errors.Join(err, restoreErr))
		}
		return fmt.Errorf("delete init data: %w", err)
	}

	if s.status != nil {
		if err := s.status.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrStatusNotFound) {
			return fmt.Errorf("delete account status: %w", err)
		}
	}

	return nil
}

func (s *Service) GetStatus(ctx context.Context, id domain.AccountID) (Status, error) {
	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Status{}, fmt.Errorf("get account by id: %w", err)
	}

	runtime, err := s.runtimeStatus(ctx, id)
	if err != nil {
		return Status{}, err
	}

	return Status{
		Account:     account,
		Runtime:     runtime,
		HasInitData: s.hasInitData(ctx, id),
	}, nil
}

func (s *Service) GetStatusAll(ctx context.Context) ([]Status, error) {
	accounts, err := s.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}

	statuses := make([]Status, 0, len(accounts))
	for _, account := range accounts {
		runtime, err := s.runtimeStatus(ctx, account.ID)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, Status{
			Account:     account,
			Runtime:     runtime,
			HasInitData: s.hasInitData(ctx, account.ID),
		})
	}

	return statuses, nil
}

func (s *Service) runtimeStatus(ctx context.Context, id domain.AccountID) (*domain.AccountStatus, error) {
	if s.status == nil {
		return nil, nil
	}

	status, err := s.status.GetByAccountID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrStatusNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account status: %w", err)
	}

	return &status, nil
}

func (s *Service) hasInitData(ctx context.Context, id domain.AccountID) bool {
	value, err := s.store.Get(ctx, id.InitDataSecretRef())
	return err == nil && value != ""
}
