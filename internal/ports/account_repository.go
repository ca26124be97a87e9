package ports

import (
	"context"

	"github.com/bnema/farmhand/internal/domain"
)

type AccountRepository interface {
	GetByID(ctx context.Context, id domain.AccountID) (domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
	Save(ctx context.Context, account domain.Account) error
	Delete(ctx context.Context, id domain.AccountID) error
}

type StatusRepository interface {
	GetByAccountID(ctx context.Context, id domain.AccountID) (domain.AccountStatus, error)
	List(ctx context.Context) ([]domain.AccountStatus, error)
	Save(ctx context.Context, status domain.AccountStatus) error
	Delete(ctx context.Context, id domain.AccountID) error
}
