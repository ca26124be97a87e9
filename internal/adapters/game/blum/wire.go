package blum

import "strings"

type loginRequest struct {
	Query string `json:"query"`
}

type loginResponse struct {
	Token *tokenPair `json:"token"`
}

type tokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type balanceResponse struct {
	AvailableBalance     string           `json:"availableBalance"`
	IsFastFarmingEnabled bool             `json:"isFastFarmingEnabled"`
	Timestamp            int64            `json:"timestamp"`
	PlayPasses           int              `json:"playPasses"`
	Farming              *farmingResponse `json:"farming"`
}

type farmingResponse struct {
	StartTime int64 `json:"startTime"`
	EndTime   int64 `json:"endTime"`
}

type farmClaimResponse struct {
	AvailableBalance string `json:"availableBalance"`
	Timestamp        int64  `json:"timestamp"`
}

type dailyRewardResponse struct {
	Days []struct {
		Ordinal int `json:"ordinal"`
		Reward  struct {
			Passes int    `json:"passes"`
			Points string `json:"points"`
		} `json:"reward"`
	} `json:"days"`
}

type gameStartResponse struct {
	GameID string `json:"gameId"`
}

type eligibilityResponse struct {
	Eligible bool `json:"eligible"`
}

type payloadClaimRequest struct {
	Payload string `json:"payload"`
}

type legacyClaimRequest struct {
	GameID string `json:"gameId"`
	Points int    `json:"points"`
	Dogs   int    `json:"dogs,omitempty"`
}

type taskSection struct {
	SectionType string          `json:"sectionType"`
	Tasks       []taskEntry     `json:"tasks"`
	SubSections []taskSubsection `json:"subSections"`
}

type taskSubsection struct {
	Title string      `json:"title"`
	Tasks []taskEntry `json:"tasks"`
}

type taskEntry struct {
	ID             string      `json:"id"`
	Kind           string      `json:"kind"`
	Type           string      `json:"type"`
	Status         string      `json:"status"`
	ValidationType string      `json:"validationType"`
	Title          string      `json:"title"`
	Reward         string      `json:"reward"`
	SubTasks       []taskEntry `json:"subTasks"`
}

type taskStatusResponse struct {
	Status string `json:"status"`
}

type keywordRequest struct {
	Keyword string `json:"keyword"`
}

func isOK(body []byte) bool {
	return strings.TrimSpace(string(body)) == "OK"
}
