package ports

import (
	"context"

	"github.com/bnema/farmhand/internal/domain"
)

// GameSession is one authenticated conversation with the game service. A
// session is owned by a single worker and is not safe for concurrent use.
type GameSession interface {
	Login(ctx context.Context, loginPayload string) error
	Balance(ctx context.Context) (domain.FarmingWindow, error)
	ClaimDailyReward(ctx context.Context) (domain.DailyReward, error)
	StartGameRound(ctx context.Context) (string, error)
	SecondaryRewardEligible(ctx context.Context) (bool, error)
	ClaimGameRound(ctx context.Context, claim domain.GameClaim) (domain.GameClaimResult, error)
	StartFarming(ctx context.Context) error
	ClaimFarming(ctx context.Context) (domain.FarmClaim, error)
	RefreshToken(ctx context.Context) error
	ListTasks(ctx context.Context) ([]domain.Task, error)
	StartTask(ctx context.Context, id string) error
	ClaimTask(ctx context.Context, id string) (bool, error)
	VerifyTask(ctx context.Context, id string, answer string) (bool, error)
}

type SessionFactory interface {
	NewSession(account domain.Account) (GameSession, error)
}

type LoginPayloadProvider interface {
	ObtainLoginPayload(ctx context.Context, account domain.Account) (string, error)
}

type PayloadGenerator interface {
	Generate(ctx context.Context, endpointID string, req domain.PayloadRequest) (string, error)
}

type EndpointDirectory interface {
	Endpoints(ctx context.Context) ([]string, error)
}

type TaskAnswerSource interface {
	Answer(ctx context.Context, taskID string) (string, error)
}
