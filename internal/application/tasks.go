package application

import (
	"context"
	"fmt"

	"github.com/bnema/farmhand/internal/domain"
	"github.com/bnema/farmhand/internal/ports"
	"github.com/rs/zerolog"
)

type TaskReport struct {
	Started  int
	Claimed  int
	Verified int
	Failed   int
}

// TaskRunner walks the task list once: start what can be started, then claim
// or verify what became ready. Per-task failures never stop the pass.
type TaskRunner struct {
	answers ports.TaskAnswerSource
	delays  *DelayPolicy
}

func NewTaskRunner(answers ports.TaskAnswerSource, delays *DelayPolicy) *TaskRunner {
	return &TaskRunner{answers: answers, delays: delays}
}

func (r *TaskRunner) Run(ctx context.Context, session ports.GameSession, logger zerolog.Logger) (TaskReport, error) {
	var report TaskReport

	tasks, err := session.ListTasks(ctx)
	if err != nil {
		return report, fmt.Errorf("list tasks: %w", err)
	}

	for _, task := range tasks {
		if !task.Startable() {
			continue
		}
		if err := session.StartTask(ctx, task.ID); err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			report.Failed++
			logger.Warn().Err(err).Str("task", task.Title).Msg("could not start task")
			continue
		}
		report.Started++
		logger.Info().Str("task", task.Title).Msg("task started")
		if err := r.delays.Wait(ctx, domain.DelayTaskStep); err != nil {
			return report, err
		}
	}

	if err := r.delays.Wait(ctx, domain.DelayBetweenChecks); err != nil {
		return report, err
	}

	tasks, err = session.ListTasks(ctx)
	if err != nil {
		return report, fmt.Errorf("list tasks: %w", err)
	}

	for _, task := range tasks {
		switch {
		case task.Claimable():
			r.claim(ctx, session, task, &report, logger)
		case task.NeedsKeyword():
			r.verify(ctx, session, task, &report, logger)
		default:
			continue
		}
		if err := r.delays.Wait(ctx, domain.DelayTaskStep); err != nil {
			return report, err
		}
	}

	return report, nil
}

func (r *TaskRunner) claim(ctx context.Context, session ports.GameSession, task domain.Task, report *TaskReport, logger zerolog.Logger) {
	ok, err := session.ClaimTask(ctx, task.ID)
	if err != nil || !ok {
		report.Failed++
		logger.Warn().Err(err).Str("task", task.Title).Msg("could not claim task")
		return
	}

	report.Claimed++
	logger.Info().Str("task", task.Title).Msg("task claimed")
}

func (r *TaskRunner) verify(ctx context.Context, session ports.GameSession, task domain.Task, report *TaskReport, logger zerolog.Logger) {
	if r.answers == nil {
		report.Failed++
		logger.Warn().Str("task", task.Title).Msg("no answer source for keyword task")
		return
	}

	answer, err := r.answers.Answer(ctx, task.ID)
	if err != nil {
		report.Failed++
		logger.Warn().Err(err).Str("task", task.Title).Msg("keyword not found")
		return
	}

	ok, err := session.VerifyTask(ctx, task.ID, answer)
	if err != nil || !ok {
		report.Failed++
		logger.Warn().Err(err).Str("task", task.Title).Msg("could not verify task")
		return
	}

	report.Verified++
	logger.Info().Str("task", task.Title).Msg("task verified")
}
