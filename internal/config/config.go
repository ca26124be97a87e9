package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/farmhand/internal/domain"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	EnvPrefix   = "FH"
	StateDir    = ".farmhand"
	ConfigName  = "config.toml"
	maxPoints   = 280
	delaysTable = "delays"
)

// Config is the validated runtime configuration.
type Config struct {
	Paths     Paths
	Security  Security
	HTTP      HTTP
	Game      Game
	Farming   Farming
	Endpoints Endpoints
	Delays    map[domain.DelayCategory]domain.DelayRange
	Log       Log
	Service   Service
}

type Paths struct {
	Home     string
	Accounts string
	Status   string
	Secrets  string
}

type Security struct {
	// Passphrase overrides the one kept in the secret store.
	Passphrase     string
	ArgonTime      uint32
	ArgonMemoryKiB uint32
	ArgonThreads   uint8
}

type HTTP struct {
	Timeout   time.Duration
	Proxy     string
	UserAgent string
}

type Game struct {
	MaxPlays           int
	PointsMin          int
	PointsMax          int
	SecondaryMin       int
	SecondaryMax       int
	RequirePayload     bool
	RefreshEveryRounds int
}

type Farming struct {
	RetryBudget               int
	MaxConsecutiveExhaustions int
	TasksEnabled              bool
}

type Endpoints struct {
	DirectoryURL         string
	GeneratorURLTemplate string
	Seed                 []string
	RefreshSchedule      string
}

type Log struct {
	Level string
	File  string
	JSON  bool
}

type Service struct {
	AuthURL        string
	GameURL        string
	TasksURL       string
	TaskAnswersURL string
}

// NewViper builds the viper instance every command reads from: defaults,
// then the config file, then FH_* variables (a .env file in the working
// directory or the state directory is loaded into the environment first).
func NewViper(configPath string) (*viper.Viper, error) {
	home, err := StateHome()
	if err != nil {
		return nil, err
	}

	if err := loadDotEnv(filepath.Join(home, ".env"), ".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	SetDefaults(v, home)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath == "" {
		configPath = filepath.Join(home, ConfigName)
	}
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil && !isMissingConfig(err) {
		return nil, fmt.Errorf("read config %s: %w", configPath, err)
	}

	return v, nil
}

// DefaultPath is where config init writes and NewViper reads by default.
func DefaultPath() (string, error) {
	home, err := StateHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigName), nil
}

// StateHome is ~/.farmhand unless FH_PATHS_HOME points elsewhere.
func StateHome() (string, error) {
	if home := os.Getenv(EnvPrefix + "_PATHS_HOME"); home != "" {
		return home, nil
	}

	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(userHome, StateDir), nil
}

func loadDotEnv(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file %s: %w", path, err)
		}
	}
	return nil
}

func isMissingConfig(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}

// Load reads every setting out of v and validates it. All problems are
// reported at once.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Paths: Paths{
			Home:     v.GetString("paths.home"),
			Accounts: v.GetString("paths.accounts"),
			Status:   v.GetString("paths.status"),
			Secrets:  v.GetString("paths.secrets"),
		},
		Security: Security{
			Passphrase:     v.GetString("security.passphrase"),
			ArgonTime:      v.GetUint32("security.argon_time"),
			ArgonMemoryKiB: v.GetUint32("security.argon_memory_kib"),
			ArgonThreads:   uint8(v.GetUint("security.argon_threads")),
		},
		HTTP: HTTP{
			Timeout:   v.GetDuration("http.timeout"),
			Proxy:     v.GetString("http.proxy"),
			UserAgent: v.GetString("http.user_agent"),
		},
		Game: Game{
			MaxPlays:           v.GetInt("game.max_plays"),
			PointsMin:          v.GetInt("game.points_min"),
			PointsMax:          v.GetInt("game.points_max"),
			SecondaryMin:       v.GetInt("game.secondary_min"),
			SecondaryMax:       v.GetInt("game.secondary_max"),
			RequirePayload:     v.GetBool("game.require_payload"),
			RefreshEveryRounds: v.GetInt("game.refresh_every_rounds"),
		},
		Farming: Farming{
			RetryBudget:               v.GetInt("farming.retry_budget"),
			MaxConsecutiveExhaustions: v.GetInt("farming.max_consecutive_exhaustions"),
			TasksEnabled:              v.GetBool("farming.tasks_enabled"),
		},
		Endpoints: Endpoints{
			DirectoryURL:         v.GetString("endpoints.directory_url"),
			GeneratorURLTemplate: v.GetString("endpoints.generator_url_template"),
			Seed:                 v.GetStringSlice("endpoints.seed"),
			RefreshSchedule:      v.GetString("endpoints.refresh_schedule"),
		},
		Delays: make(map[domain.DelayCategory]domain.DelayRange),
		Log: Log{
			Level: v.GetString("log.level"),
			File:  v.GetString("log.file"),
			JSON:  v.GetBool("log.json"),
		},
		Service: Service{
			AuthURL:        v.GetString("service.auth_url"),
			GameURL:        v.GetString("service.game_url"),
			TasksURL:       v.GetString("service.tasks_url"),
			TaskAnswersURL: v.GetString("service.task_answers_url"),
		},
	}

	for _, category := range domain.DelayCategories() {
		cfg.Delays[category] = domain.DelayRange{
			Min: v.GetDuration(delayKey(category, "min")),
			Max: v.GetDuration(delayKey(category, "max")),
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	if c.Game.MaxPlays < 0 {
		errs = append(errs, fmt.Errorf("game.max_plays must be >= 0, got %d", c.Game.MaxPlays))
	}
	if c.Game.PointsMin < 1 || c.Game.PointsMin > maxPoints {
		errs = append(errs, fmt.Errorf("game.points_min must be within 1..%d, got %d", maxPoints, c.Game.PointsMin))
	}
	if c.Game.PointsMax < 1 || c.Game.PointsMax > maxPoints {
		errs = append(errs, fmt.Errorf("game.points_max must be within 1..%d, got %d", maxPoints, c.Game.PointsMax))
	}
	if c.Game.PointsMin > c.Game.PointsMax {
		errs = append(errs, fmt.Errorf("game.points_min (%d) must not exceed game.points_max (%d)", c.Game.PointsMin, c.Game.PointsMax))
	}
	if c.Game.SecondaryMin < 0 || c.Game.SecondaryMax < 0 {
		errs = append(errs, errors.New("game.secondary_min and game.secondary_max must be >= 0"))
	}
	if c.Game.SecondaryMin > c.Game.SecondaryMax {
		errs = append(errs, fmt.Errorf("game.secondary_min (%d) must not exceed game.secondary_max (%d)", c.Game.SecondaryMin, c.Game.SecondaryMax))
	}
	if c.Game.RefreshEveryRounds < 0 {
		errs = append(errs, fmt.Errorf("game.refresh_every_rounds must be >= 0, got %d", c.Game.RefreshEveryRounds))
	}
	if c.Farming.RetryBudget < 1 {
		errs = append(errs, fmt.Errorf("farming.retry_budget must be >= 1, got %d", c.Farming.RetryBudget))
	}
	if c.Farming.MaxConsecutiveExhaustions < 1 {
		errs = append(errs, fmt.Errorf("farming.max_consecutive_exhaustions must be >= 1, got %d", c.Farming.MaxConsecutiveExhaustions))
	}
	if c.HTTP.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("http.timeout must be positive, got %s", c.HTTP.Timeout))
	}
	if c.HTTP.Proxy != "" && !strings.Contains(c.HTTP.Proxy, "://") {
		errs = append(errs, fmt.Errorf("http.proxy must be a URL with a scheme, got %q", c.HTTP.Proxy))
	}
	if c.Endpoints.GeneratorURLTemplate != "" && strings.Count(c.Endpoints.GeneratorURLTemplate, "%s") != 1 {
		errs = append(errs, fmt.Errorf("endpoints.generator_url_template must contain exactly one %%s, got %q", c.Endpoints.GeneratorURLTemplate))
	}
	if c.Security.ArgonTime < 1 || c.Security.ArgonMemoryKiB < 8*1024 || c.Security.ArgonThreads < 1 {
		errs = append(errs, errors.New("security argon parameters must be time >= 1, memory >= 8192 KiB and threads >= 1"))
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	for _, category := range domain.DelayCategories() {
		r := c.Delays[category]
		if r.Min < 0 || r.Max < 0 {
			errs = append(errs, fmt.Errorf("%s durations must be >= 0", delayKey(category, "min/max")))
		} else if r.Min > r.Max {
			errs = append(errs, fmt.Errorf("%s (%s) must not exceed %s (%s)", delayKey(category, "min"), r.Min, delayKey(category, "max"), r.Max))
		}
	}

	return errors.Join(errs...)
}

func delayKey(category domain.DelayCategory, bound string) string {
	return delaysTable + "." + string(category) + "_" + bound
}
