package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bnema/farmhand/internal/domain"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

var ErrConfigExists = errors.New("config file already exists")

// defaultTables is the default configuration, table by table. Paths are
// filled in from the state directory.
func defaultTables(home string) map[string]map[string]any {
	tables := map[string]map[string]any{
		"paths": {
			"home":     home,
			"accounts": filepath.Join(home, "accounts.enc"),
			"status":   filepath.Join(home, "status.toml"),
			"secrets":  filepath.Join(home, "secrets"),
		},
		"security": {
			"passphrase":       "",
			"argon_time":       3,
			"argon_memory_kib": 64 * 1024,
			"argon_threads":    4,
		},
		"http": {
			"timeout":    "60s",
			"proxy":      "",
			"user_agent": "",
		},
		"game": {
			"max_plays":            7,
			"points_min":           250,
			"points_max":           280,
			"secondary_min":        0,
			"secondary_max":        100,
			"require_payload":      true,
			"refresh_every_rounds": 21,
		},
		"farming": {
			"retry_budget":                2,
			"max_consecutive_exhaustions": 2,
			"tasks_enabled":               false,
		},
		"endpoints": {
			"directory_url":          "https://raw.githubusercontent.com/zuydd/database/main/blum.json",
			"generator_url_template": "https://%s.vercel.app/api/blum",
			"seed":                   []string{},
			"refresh_schedule":       "@every 6h",
		},
		"log": {
			"level": "info",
			"file":  "",
			"json":  false,
		},
		"service": {
			"auth_url":         "https://user-domain.blum.codes",
			"game_url":         "https://game-domain.blum.codes",
			"tasks_url":        "https://earn-domain.blum.codes",
			"task_answers_url": "https://raw.githubusercontent.com/zuydd/database/main/blum.json",
		},
	}

	delays := make(map[string]any)
	for category, r := range domain.DefaultDelayRanges() {
		delays[string(category)+"_min"] = r.Min.String()
		delays[string(category)+"_max"] = r.Max.String()
	}
	tables[delaysTable] = delays

	return tables
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper, home string) {
	for table, values := range defaultTables(home) {
		for key, value := range values {
			v.SetDefault(table+"."+key, value)
		}
	}
}

// WriteDefault writes the default configuration to path. It never
// overwrites an existing file.
func WriteDefault(path string, home string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s: %w", path, ErrConfigExists)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat config %s: %w", path, err)
	}

	data, err := toml.Marshal(defaultTables(home))
	if err != nil {
		return fmt.Errorf("encode default config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%s: %w", path, ErrConfigExists)
		}
		return fmt.Errorf("create config %s: %w", path, err)
	}

	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return file.Close()
}
