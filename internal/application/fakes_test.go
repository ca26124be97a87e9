package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bnema/farmhand/internal/domain"
	"github.com/bnema/farmhand/internal/ports"
)

var errTransient = errors.New("transient")

// fakeSession is a scripted game session that records every call.
type fakeSession struct {
	mu sync.Mutex

	calls map[string]int

	loginErr         error
	onLogin          func()
	balanceFn        func(call int) (domain.FarmingWindow, error)
	startRoundErrs   int
	startRoundFailOn map[int]bool
	rejectClaimAfter int
	eligible         bool
	startFarmingErr  error
	claimFarmingErr  error
	refreshErr       error
	refreshTimes     []time.Time
	claims           []domain.GameClaim
	taskLists        [][]domain.Task
	verifyAnswers    map[string]string
	onStartFarming   func()
	onClaimFarming   func()
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		calls:            map[string]int{},
		rejectClaimAfter: -1,
		verifyAnswers:    map[string]string{},
	}
}

func (f *fakeSession) record(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	return f.calls[name]
}

func (f *fakeSession) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeSession) refreshes() []time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Time(nil), f.refreshTimes...)
}

func (f *fakeSession) Login(context.Context, string) error {
	f.record("Login")
	if f.onLogin != nil {
		f.onLogin()
	}
	return f.loginErr
}

func (f *fakeSession) Balance(context.Context) (domain.FarmingWindow, error) {
	n := f.record("Balance")
	if f.balanceFn == nil {
		return domain.FarmingWindow{ObservedAt: time.Now()}, nil
	}
	return f.balanceFn(n)
}

func (f *fakeSession) ClaimDailyReward(context.Context) (domain.DailyReward, error) {
	f.record("ClaimDailyReward")
	return domain.DailyReward{Claimed: true, Detail: "day 1"}, nil
}

func (f *fakeSession) StartGameRound(context.Context) (string, error) {
	n := f.record("StartGameRound")
	if n <= f.startRoundErrs || f.startRoundFailOn[n] {
		return "", errTransient
	}
	return "round", nil
}

func (f *fakeSession) SecondaryRewardEligible(context.Context) (bool, error) {
	f.record("SecondaryRewardEligible")
	return f.eligible, nil
}

func (f *fakeSession) ClaimGameRound(_ context.Context, claim domain.GameClaim) (domain.GameClaimResult, error) {
	n := f.record("ClaimGameRound")
	f.mu.Lock()
	f.claims = append(f.claims, claim)
	f.mu.Unlock()

	if f.rejectClaimAfter >= 0 && n > f.rejectClaimAfter {
		return domain.GameClaimResult{Accepted: false, Message: "game session not finished"}, nil
	}
	return domain.GameClaimResult{Accepted: true, Points: claim.Points}, nil
}

func (f *fakeSession) StartFarming(context.Context) error {
	f.record("StartFarming")
	if f.onStartFarming != nil {
		f.onStartFarming()
	}
	return f.startFarmingErr
}

func (f *fakeSession) ClaimFarming(context.Context) (domain.FarmClaim, error) {
	f.record("ClaimFarming")
	if f.onClaimFarming != nil {
		f.onClaimFarming()
	}
	if f.claimFarmingErr != nil {
		return domain.FarmClaim{}, f.claimFarmingErr
	}
	return domain.FarmClaim{ClaimedAt: time.Now(), Balance: "100.5"}, nil
}

func (f *fakeSession) RefreshToken(context.Context) error {
	f.record("RefreshToken")
	f.mu.Lock()
	f.refreshTimes = append(f.refreshTimes, time.Now())
	f.mu.Unlock()
	return f.refreshErr
}

func (f *fakeSession) ListTasks(context.Context) ([]domain.Task, error) {
	n := f.record("ListTasks")
	if len(f.taskLists) == 0 {
		return nil, nil
	}
	if n > len(f.taskLists) {
		n = len(f.taskLists)
	}
	return f.taskLists[n-1], nil
}

func (f *fakeSession) StartTask(_ context.Context, id string) error {
	f.record("StartTask:" + id)
	return nil
}

func (f *fakeSession) ClaimTask(_ context.Context, id string) (bool, error) {
	f.record("ClaimTask:" + id)
	return true, nil
}

func (f *fakeSession) VerifyTask(_ context.Context, id string, answer string) (bool, error) {
	f.record("VerifyTask:" + id)
	return f.verifyAnswers[id] == answer, nil
}

type fakeSessionFactory struct {
	session *fakeSession
	created int
}

func (f *fakeSessionFactory) NewSession(domain.Account) (ports.GameSession, error) {
	f.created++
	return f.session, nil
}

type loginPayloadFunc func(ctx context.Context, account domain.Account) (string, error)

func (f loginPayloadFunc) ObtainLoginPayload(ctx context.Context, account domain.Account) (string, error) {
	return f(ctx, account)
}

func staticLoginPayload(payload string) loginPayloadFunc {
	return func(context.Context, domain.Account) (string, error) {
		return payload, nil
	}
}

type payloadFunc func(ctx context.Context, endpointID string, req domain.PayloadRequest) (string, error)

func (f payloadFunc) Generate(ctx context.Context, endpointID string, req domain.PayloadRequest) (string, error) {
	return f(ctx, endpointID, req)
}

type answerMap map[string]string

func (m answerMap) Answer(_ context.Context, taskID string) (string, error) {
	answer, ok := m[taskID]
	if !ok {
		return "", errors.New("no answer")
	}
	return answer, nil
}

// instantDelays returns a policy with every wait set to zero except the
// ones passed in.
func instantDelays(overrides map[domain.DelayCategory]domain.DelayRange) *DelayPolicy {
	ranges := make(map[domain.DelayCategory]domain.DelayRange)
	for _, category := range domain.DelayCategories() {
		ranges[category] = domain.DelayRange{}
	}
	for category, r := range overrides {
		ranges[category] = r
	}
	return NewDelayPolicy(ranges)
}

func openWindow(observedAt time.Time, remaining time.Duration, passes int) domain.FarmingWindow {
	start := observedAt.Add(-time.Hour)
	end := observedAt.Add(remaining)
	return domain.FarmingWindow{
		ObservedAt: observedAt,
		FarmStart:  &start,
		FarmEnd:    &end,
		PlayPasses: passes,
	}
}
