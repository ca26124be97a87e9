package application

import "github.com/bnema/farmhand/internal/domain"

type AddAccountCommand struct {
	Name  string
	Phone string
}

type SetEnabledCommand struct {
	ID      domain.AccountID
	Enabled bool
}

type SetInitDataCommand struct {
	ID domain.AccountID
	// Raw is either the bare init data or a web app URL carrying it.
	Raw string
}
