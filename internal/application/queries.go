package application

import "github.com/bnema/farmhand/internal/domain"

// Status pairs an account with the last snapshot its worker saved. Runtime is
// nil when the account never ran.
type Status struct {
	Account     domain.Account
	Runtime     *domain.AccountStatus
	HasInitData bool
}
