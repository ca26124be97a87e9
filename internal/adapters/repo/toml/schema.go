package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version  int             `toml:"version"`
	Accounts []accountSchema `toml:"accounts"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported accounts schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type accountSchema struct {
	ID        string `toml:"id"`
	Phone     string `toml:"phone"`
	Enabled   bool   `toml:"enabled"`
	CreatedAt string `toml:"created_at"`
}

type statusFileSchema struct {
	Version  int            `toml:"version"`
	Statuses []statusSchema `toml:"statuses"`
}

func (s *statusFileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s statusFileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported status schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type statusSchema struct {
	AccountID    string        `toml:"account_id"`
	Phase        string        `toml:"phase"`
	UpdatedAt    string        `toml:"updated_at"`
	PlaysClaimed int           `toml:"plays_claimed"`
	FarmClaims   int           `toml:"farm_claims"`
	LastError    string        `toml:"last_error,omitempty"`
	Terminated   bool          `toml:"terminated"`
	Window       *windowSchema `toml:"window,omitempty"`
}

type windowSchema struct {
	ObservedAt  string `toml:"observed_at"`
	FarmStart   string `toml:"farm_start,omitempty"`
	FarmEnd     string `toml:"farm_end,omitempty"`
	PlayPasses  int    `toml:"play_passes"`
	FastFarming bool   `toml:"fast_farming"`
	Balance     string `toml:"balance"`
}
