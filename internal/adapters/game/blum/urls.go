package blum

import (
	"net/url"
	"strings"
)

const (
	DefaultAuthURL  = "https://user-domain.blum.codes"
	DefaultGameURL  = "https://game-domain.blum.codes"
	DefaultTasksURL = "https://earn-domain.blum.codes"
)

// URLs holds the base URL of every service the session talks to.
type URLs struct {
	Auth  string
	Game  string
	Tasks string
}

func (u URLs) withDefaults() URLs {
	if u.Auth == "" {
		u.Auth = DefaultAuthURL
	}
	if u.Game == "" {
		u.Game = DefaultGameURL
	}
	if u.Tasks == "" {
		u.Tasks = DefaultTasksURL
	}

	u.Auth = strings.TrimRight(u.Auth, "/")
	u.Game = strings.TrimRight(u.Game, "/")
	u.Tasks = strings.TrimRight(u.Tasks, "/")
	return u
}

func (u URLs) login() string {
	return u.Auth + "/api/v1/auth/provider/PROVIDER_TELEGRAM_MINI_APP"
}

func (u URLs) refresh() string {
	return u.Auth + "/api/v1/auth/refresh"
}

func (u URLs) balance() string {
	return u.Game + "/api/v1/user/balance"
}

func (u URLs) dailyReward() string {
	return u.Game + "/api/v1/daily-reward?offset=-180"
}

func (u URLs) gamePlay() string {
	return u.Game + "/api/v2/game/play"
}

func (u URLs) gameClaim() string {
	return u.Game + "/api/v2/game/claim"
}

func (u URLs) eligibility() string {
	return u.Game + "/api/v2/game/eligibility/dogs_drop"
}

func (u URLs) farmingStart() string {
	return u.Game + "/api/v1/farming/start"
}

func (u URLs) farmingClaim() string {
	return u.Game + "/api/v1/farming/claim"
}

func (u URLs) tasks() string {
	return u.Tasks + "/api/v1/tasks"
}

func (u URLs) task(id string, action string) string {
	return u.Tasks + "/api/v1/tasks/" + url.PathEscape(id) + "/" + action
}
