package blum

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bnema/farmhand/internal/domain"
	"github.com/bnema/farmhand/internal/ports"
)

const maxResponseBytes = 4 << 20

const partnerIntegration = "PARTNER_INTEGRATION"

var ErrNotAuthenticated = errors.New("session is not logged in")

// Pacer inserts the pause taken before every request.
type Pacer interface {
	Wait(ctx context.Context, category domain.DelayCategory) error
}

// StatusError is returned for any non-2xx answer.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Body)
}

type Session struct {
	client    *http.Client
	urls      URLs
	userAgent string
	pacer     Pacer
	clock     ports.Clock

	mu      sync.Mutex
	access  string
	refresh string
}

var _ ports.GameSession = (*Session)(nil)

func NewSession(client *http.Client, urls URLs, userAgent string, pacer Pacer, clock ports.Clock) *Session {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	if userAgent == "" {
		userAgent = randomUserAgent()
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &Session{
		client:    client,
		urls:      urls.withDefaults(),
		userAgent: userAgent,
		pacer:     pacer,
		clock:     clock,
	}
}

// Login exchanges the web app init data for a token pair. A rejected or
// unusable answer wraps domain.ErrLoginRejected; transport failures do not.
func (s *Session) Login(ctx context.Context, loginPayload string) error {
	if strings.TrimSpace(loginPayload) == "" {
		return domain.ErrLoginPayloadUnavailable
	}

	status, body, err := s.send(ctx, http.MethodPost, s.urls.login(), loginRequest{Query: loginPayload}, false, 3*time.Second)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if status >= http.StatusBadRequest && status < http.StatusInternalServerError {
		return fmt.Errorf("login: %w: status %d: %s", domain.ErrLoginRejected, status, trimBody(body))
	}
	if !success(status) {
		return &StatusError{Op: "login", StatusCode: status, Body: trimBody(body)}
	}

	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("login: %w: decode response: %v", domain.ErrLoginRejected, err)
	}
	if resp.Token == nil || resp.Token.Access == "" || resp.Token.Refresh == "" {
		return fmt.Errorf("login: %w: no token pair in response", domain.ErrLoginRejected)
	}

	s.setTokens(resp.Token.Access, resp.Token.Refresh)
	return nil
}

func (s *Session) RefreshToken(ctx context.Context) error {
	s.mu.Lock()
	refresh := s.refresh
	s.mu.Unlock()
	if refresh == "" {
		return ErrNotAuthenticated
	}

	status, body, err := s.send(ctx, http.MethodPost, s.urls.refresh(), refreshRequest{Refresh: refresh}, false, time.Second)
	if err != nil {
		return fmt.Errorf("refresh token: %w", err)
	}
	if !success(status) {
		return &StatusError{Op: "refresh token", StatusCode: status, Body: trimBody(body)}
	}

	var resp tokenPair
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("decode refresh response: %w", err)
	}
	if resp.Access == "" {
		return errors.New("refresh token: no access token in response")
	}
	if resp.Refresh == "" {
		resp.Refresh = refresh
	}

	s.setTokens(resp.Access, resp.Refresh)
	return nil
}

func (s *Session) Balance(ctx context.Context) (domain.FarmingWindow, error) {
	var resp balanceResponse
	if err := s.getJSON(ctx, "balance", s.urls.balance(), &resp); err != nil {
		return domain.FarmingWindow{}, err
	}

	window := domain.FarmingWindow{
		ObservedAt:  s.fromMillis(resp.Timestamp),
		PlayPasses:  resp.PlayPasses,
		FastFarming: resp.IsFastFarmingEnabled,
		Balance:     resp.AvailableBalance,
	}
	if resp.Farming != nil && resp.Farming.StartTime != 0 && resp.Farming.EndTime != 0 {
		start := time.UnixMilli(resp.Farming.StartTime).UTC()
		end := time.UnixMilli(resp.Farming.EndTime).UTC()
		window.FarmStart = &start
		window.FarmEnd = &end
	}

	return window, nil
}

// ClaimDailyReward reads today's reward and claims it. A missing reward is
// not an error: the server answers 404 once the day is claimed.
func (s *Session) ClaimDailyReward(ctx context.Context) (domain.DailyReward, error) {
	status, body, err := s.send(ctx, http.MethodGet, s.urls.dailyReward(), nil, true, 0)
	if err != nil {
		return domain.DailyReward{}, fmt.Errorf("daily reward: %w", err)
	}
	if !success(status) {
		return domain.DailyReward{Detail: trimBody(body)}, nil
	}

	detail := describeReward(body)

	status, body, err = s.send(ctx, http.MethodPost, s.urls.dailyReward(), nil, true, 0)
	if err != nil {
		return domain.DailyReward{}, fmt.Errorf("claim daily reward: %w", err)
	}
	if !success(status) || !isOK(body) {
		return domain.DailyReward{Detail: trimBody(body)}, nil
	}

	return domain.DailyReward{Claimed: true, Detail: detail}, nil
}

func (s *Session) StartGameRound(ctx context.Context) (string, error) {
	var resp gameStartResponse
	if err := s.postJSON(ctx, "start game", s.urls.gamePlay(), nil, 0, &resp); err != nil {
		return "", err
	}
	if resp.GameID == "" {
		return "", errors.New("start game: no game id in response")
	}

	return resp.GameID, nil
}

func (s *Session) SecondaryRewardEligible(ctx context.Context) (bool, error) {
	var resp eligibilityResponse
	if err := s.getJSON(ctx, "drop eligibility", s.urls.eligibility(), &resp); err != nil {
		return false, err
	}

	return resp.Eligible, nil
}

func (s *Session) ClaimGameRound(ctx context.Context, claim domain.GameClaim) (domain.GameClaimResult, error) {
	var body any = payloadClaimRequest{Payload: claim.Payload}
	if claim.Payload == "" {
		body = legacyClaimRequest{GameID: claim.RoundID, Points: claim.Points, Dogs: claim.SecondaryPoints}
	}

	status, resp, err := s.send(ctx, http.MethodPost, s.urls.gameClaim(), body, true, 3*time.Second)
	if err != nil {
		return domain.GameClaimResult{}, fmt.Errorf("claim game: %w", err)
	}
	if !success(status) || !isOK(resp) {
		return domain.GameClaimResult{Accepted: false, Message: trimBody(resp)}, nil
	}

	return domain.GameClaimResult{Accepted: true, Points: claim.Points}, nil
}

func (s *Session) StartFarming(ctx context.Context) error {
	return s.postJSON(ctx, "start farming", s.urls.farmingStart(), nil, time.Second, nil)
}

func (s *Session) ClaimFarming(ctx context.Context) (domain.FarmClaim, error) {
	var resp farmClaimResponse
	if err := s.postJSON(ctx, "claim farming", s.urls.farmingClaim(), nil, time.Second, &resp); err != nil {
		return domain.FarmClaim{}, err
	}

	return domain.FarmClaim{ClaimedAt: s.fromMillis(resp.Timestamp), Balance: resp.AvailableBalance}, nil
}

func (s *Session) ListTasks(ctx context.Context) ([]domain.Task, error) {
	var sections []taskSection
	if err := s.getJSON(ctx, "list tasks", s.urls.tasks(), &sections); err != nil {
		return nil, err
	}

	return flattenTasks(sections), nil
}

func (s *Session) StartTask(ctx context.Context, id string) error {
	return s.postJSON(ctx, "start task", s.urls.task(id, "start"), nil, 0, nil)
}

func (s *Session) ClaimTask(ctx context.Context, id string) (bool, error) {
	var resp taskStatusResponse
	if err := s.postJSON(ctx, "claim task", s.urls.task(id, "claim"), nil, 0, &resp); err != nil {
		return false, err
	}

	return domain.TaskStatus(resp.Status) == domain.TaskStatusFinished, nil
}

// VerifyTask submits the keyword and claims the task when the server accepts
// it.
func (s *Session) VerifyTask(ctx context.Context, id string, answer string) (bool, error) {
	var resp taskStatusResponse
	if err := s.postJSON(ctx, "validate task", s.urls.task(id, "validate"), keywordRequest{Keyword: answer}, 0, &resp); err != nil {
		return false, err
	}
	if domain.TaskStatus(resp.Status) != domain.TaskStatusReadyForClaim {
		return false, nil
	}

	return s.ClaimTask(ctx, id)
}

func flattenTasks(sections []taskSection) []domain.Task {
	var tasks []domain.Task
	for _, section := range sections {
		switch section.SectionType {
		case "HIGHLIGHTS":
			for _, entry := range section.Tasks {
				tasks = appendTasks(tasks, entry.SubTasks)
				if entry.Type != partnerIntegration || entry.Reward != "" {
					tasks = append(tasks, entry.toDomain())
				}
			}
		case "WEEKLY_ROUTINE":
			for _, entry := range section.Tasks {
				tasks = appendTasks(tasks, entry.SubTasks)
			}
		case "DEFAULT":
			for _, sub := range section.SubSections {
				tasks = appendTasks(tasks, sub.Tasks)
			}
		}
	}

	return tasks
}

func appendTasks(tasks []domain.Task, entries []taskEntry) []domain.Task {
	for _, entry := range entries {
		tasks = append(tasks, entry.toDomain())
	}
	return tasks
}

func (e taskEntry) toDomain() domain.Task {
	return domain.Task{
		ID:             e.ID,
		Title:          e.Title,
		Kind:           e.Kind,
		Type:           e.Type,
		Status:         domain.TaskStatus(e.Status),
		ValidationType: e.ValidationType,
	}
}

func describeReward(body []byte) string {
	var reward dailyRewardResponse
	if err := json.Unmarshal(body, &reward); err != nil || len(reward.Days) < 2 {
		return ""
	}

	today := reward.Days[1]
	return fmt.Sprintf("day %d: %d passes, %s points", today.Ordinal, today.Reward.Passes, today.Reward.Points)
}

func (s *Session) getJSON(ctx context.Context, op string, endpoint string, out any) error {
	status, body, err := s.send(ctx, http.MethodGet, endpoint, nil, true, 0)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !success(status) {
		return &StatusError{Op: op, StatusCode: status, Body: trimBody(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}

func (s *Session) postJSON(ctx context.Context, op string, endpoint string, payload any, retryAfter time.Duration, out any) error {
	status, body, err := s.send(ctx, http.MethodPost, endpoint, payload, true, retryAfter)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !success(status) {
		return &StatusError{Op: op, StatusCode: status, Body: trimBody(body)}
	}
	if out == nil {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}

// send performs one request, and when retryAfter is positive one more after
// that pause if the first attempt failed or was not 2xx.
func (s *Session) send(ctx context.Context, method string, endpoint string, payload any, authorized bool, retryAfter time.Duration) (int, []byte, error) {
	status, body, err := s.do(ctx, method, endpoint, payload, authorized)
	if retryAfter <= 0 || (err == nil && success(status)) || ctx.Err() != nil {
		return status, body, err
	}

	timer := time.NewTimer(retryAfter)
	select {
	case <-ctx.Done():
		timer.Stop()
		return 0, nil, ctx.Err()
	case <-timer.C:
	}

	return s.do(ctx, method, endpoint, payload, authorized)
}

func (s *Session) do(ctx context.Context, method string, endpoint string, payload any, authorized bool) (int, []byte, error) {
	if s.pacer != nil {
		if err := s.pacer.Wait(ctx, domain.DelayBeforeRequest); err != nil {
			return 0, nil, err
		}
	}

	var reader io.Reader
	if payload != nil {
		var buf bytes.Buffer
		encoder := json.NewEncoder(&buf)
		encoder.SetEscapeHTML(false)
		if err := encoder.Encode(payload); err != nil {
			return 0, nil, fmt.Errorf("encode request: %w", err)
		}
		reader = &buf
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("User-Agent", s.userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authorized {
		s.mu.Lock()
		access := s.access
		s.mu.Unlock()
		if access == "" {
			return 0, nil, ErrNotAuthenticated
		}
		req.Header.Set("Authorization", "Bearer "+access)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}

	return resp.StatusCode, body, nil
}

func (s *Session) setTokens(access string, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
	s.refresh = refresh
}

// fromMillis maps a server timestamp to time, treating 0 as "now".
func (s *Session) fromMillis(ms int64) time.Time {
	if ms == 0 {
		return s.clock.Now()
	}
	return time.UnixMilli(ms).UTC()
}

func success(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

func trimBody(body []byte) string {
	const limit = 256
	text := strings.TrimSpace(string(body))
	if len(text) > limit {
		return text[:limit] + "..."
	}
	return text
}
