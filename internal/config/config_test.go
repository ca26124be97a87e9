package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bnema/farmhand/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setHome(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("FH_PATHS_HOME", "")
	return filepath.Join(home, StateDir)
}

func TestLoadDefaults(t *testing.T) {
	state := setHome(t)

	v, err := NewViper("")
	require.NoError(t, err)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(state, "accounts.enc"), cfg.Paths.Accounts)
	assert.Equal(t, filepath.Join(state, "status.toml"), cfg.Paths.Status)
	assert.Equal(t, 7, cfg.Game.MaxPlays)
	assert.Equal(t, 250, cfg.Game.PointsMin)
	assert.Equal(t, 280, cfg.Game.PointsMax)
	assert.True(t, cfg.Game.RequirePayload)
	assert.Equal(t, 21, cfg.Game.RefreshEveryRounds)
	assert.Equal(t, 2, cfg.Farming.RetryBudget)
	assert.Equal(t, 60*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "https://%s.vercel.app/api/blum", cfg.Endpoints.GeneratorURLTemplate)
	assert.Equal(t, domain.DefaultDelayRanges(), cfg.Delays)
	assert.Equal(t, uint32(3), cfg.Security.ArgonTime)
}

func TestLoadConfigFileAndEnvironment(t *testing.T) {
	setHome(t)
	path := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[game]
max_plays = 3
points_min = 100
points_max = 200

[delays]
play_min = "1s"
play_max = "2s"

[endpoints]
seed = ["alpha", "beta"]
`), 0o600))
	t.Setenv("FH_GAME_POINTS_MAX", "150")
	t.Setenv("FH_FARMING_TASKS_ENABLED", "true")

	v, err := NewViper(path)
	require.NoError(t, err)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Game.MaxPlays)
	assert.Equal(t, 100, cfg.Game.PointsMin)
	assert.Equal(t, 150, cfg.Game.PointsMax)
	assert.True(t, cfg.Farming.TasksEnabled)
	assert.Equal(t, []string{"alpha", "beta"}, cfg.Endpoints.Seed)
	assert.Equal(t, domain.DelayRange{Min: time.Second, Max: 2 * time.Second}, cfg.Delays[domain.DelayPlay])
	assert.Equal(t, domain.DefaultDelayRanges()[domain.DelayCycle], cfg.Delays[domain.DelayCycle])
}

func TestNewViperLoadsDotEnvFromStateDir(t *testing.T) {
	state := setHome(t)
	require.NoError(t, os.MkdirAll(state, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(state, ".env"), []byte("FH_LOG_LEVEL=debug\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("FH_LOG_LEVEL") })

	v, err := NewViper("")
	require.NoError(t, err)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestNewViperRejectsBrokenConfig(t *testing.T) {
	setHome(t)
	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("[game\nmax_plays = "), 0o600))

	_, err := NewViper(path)
	assert.ErrorContains(t, err, "read config")
}

func TestLoadReportsEveryProblem(t *testing.T) {
	setHome(t)
	t.Setenv("FH_GAME_POINTS_MIN", "0")
	t.Setenv("FH_GAME_POINTS_MAX", "300")
	t.Setenv("FH_FARMING_RETRY_BUDGET", "0")
	t.Setenv("FH_LOG_LEVEL", "loud")
	t.Setenv("FH_DELAYS_PLAY_MIN", "1m")
	t.Setenv("FH_DELAYS_PLAY_MAX", "1s")

	v, err := NewViper("")
	require.NoError(t, err)

	_, err = Load(v)
	require.Error(t, err)

	for _, want := range []string{
		"game.points_min must be within 1..280",
		"game.points_max must be within 1..280",
		"farming.retry_budget",
		"log.level",
		"delays.play_min",
	} {
		assert.ErrorContains(t, err, want)
	}
}

func TestValidateGeneratorTemplate(t *testing.T) {
	setHome(t)
	t.Setenv("FH_ENDPOINTS_GENERATOR_URL_TEMPLATE", "https://example.test/api")

	v, err := NewViper("")
	require.NoError(t, err)

	_, err = Load(v)
	assert.ErrorContains(t, err, "generator_url_template")
}

func TestWriteDefaultRoundTrips(t *testing.T) {
	state := setHome(t)
	path := filepath.Join(state, ConfigName)

	require.NoError(t, WriteDefault(path, state))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	v, err := NewViper(path)
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Game.MaxPlays)
	assert.Equal(t, domain.DefaultDelayRanges(), cfg.Delays)

	assert.ErrorIs(t, WriteDefault(path, state), ErrConfigExists)
}
