package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// AccountID is the session name chosen when the account was added.
type AccountID string

type Account struct {
	ID        AccountID
	Phone     string
	Enabled   bool
	CreatedAt time.Time
}

var (
	accountIDPattern = regexp.MustCompile(`^[A-Za-z0-9_]{1,64}$`)
	phonePattern     = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
)

func NewAccount(id string, phone string, now time.Time) (Account, error) {
	normalized, err := NormalizePhone(phone)
	if err != nil {
		return Account{}, err
	}

	account := Account{
		ID:        AccountID(strings.TrimSpace(id)),
		Phone:     normalized,
		Enabled:   true,
		CreatedAt: now,
	}
	if err := account.Validate(); err != nil {
		return Account{}, err
	}

	return account, nil
}

// NormalizePhone strips separators and returns the number in +<digits> form.
func NormalizePhone(raw string) (string, error) {
	cleaned := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(raw))
	if !phonePattern.MatchString(cleaned) {
		return "", fmt.Errorf("%w: phone number %q is not valid", ErrInvalidAccount, raw)
	}

	return "+" + strings.TrimPrefix(cleaned, "+"), nil
}

func (a Account) Validate() error {
	if !accountIDPattern.MatchString(string(a.ID)) {
		return fmt.Errorf("%w: session name %q must be 1-64 letters, digits or underscores", ErrInvalidAccount, a.ID)
	}
	if !phonePattern.MatchString(a.Phone) {
		return fmt.Errorf("%w: phone number %q is not valid", ErrInvalidAccount, a.Phone)
	}

	return nil
}

// ConflictsWith reports a duplicate when either the session name or the
// phone number (compared without the leading +) is already taken.
func (a Account) ConflictsWith(other Account) error {
	if a.ID == other.ID {
		return fmt.Errorf("%w: session name %q already exists", ErrDuplicateAccount, a.ID)
	}
	if phoneDigits(a.Phone) == phoneDigits(other.Phone) {
		return fmt.Errorf("%w: phone number %s already exists", ErrDuplicateAccount, a.Phone)
	}

	return nil
}

func phoneDigits(phone string) string {
	return strings.TrimPrefix(strings.TrimSpace(phone), "+")
}

// InitDataSecretRef is the secret store key holding the account's login
// payload.
func (id AccountID) InitDataSecretRef() string {
	return "farmhand/accounts/" + string(id) + "/init_data"
}
