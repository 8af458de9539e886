package task

import (
	"context"
	"errors"
	"time"

	providerRepo "workhive/database/repository/provider"
	taskRepo "workhive/database/repository/task"
	"workhive/models"
	"workhive/services/booking"
	"workhive/services/geo"
	"workhive/services/matching"

	"go.uber.org/zap"
)

// DefaultTaskService implements Service.
type DefaultTaskService struct {
	Repo      taskRepo.TaskRepository
	Matching  matching.Engine
	Converter booking.Service
	Providers providerRepo.CandidateSource
	Geo       geo.Service
	Logger    *zap.Logger
}

// getLive fetches a task and applies lazy expiry before the caller acts on
// it: a task observed past its schedule window transitions to EXPIRED ahead
// of any other operation.
func (s *DefaultTaskService) getLive(ctx context.Context, taskID string) (*models.Task, error) {
	t, err := s.Repo.FindByID(ctx, taskID)
	if errors.Is(err, taskRepo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.expireIfDue(ctx, t)
}

func (s *DefaultTaskService) expireIfDue(ctx context.Context, t *models.Task) (*models.Task, error) {
	switch t.Status {
	case models.TaskStatusMatched, models.TaskStatusFloating, models.TaskStatusRequested:
	default:
		return t, nil
	}
	if time.Now().UTC().Before(t.Schedule.End) {
		return t, nil
	}

	cleared := ""
	expired, err := s.Repo.AtomicTransition(ctx, t.ID, t.Status, models.TaskStatusExpired,
		taskRepo.TransitionPatch{RequestedProviderID: &cleared})
	if errors.Is(err, taskRepo.ErrNotApplied) {
		// Someone else moved the task first; their transition wins.
		current, fetchErr := s.Repo.FindByID(ctx, t.ID)
		if fetchErr != nil {
			return nil, fetchErr
		}
		return current, nil
	}
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("task expired", zap.String("taskId", t.ID))
	}
	return expired, nil
}

// runMatching executes a matching run on a PENDING task and records the
// outcome: MATCHED with the winning candidate set, or FLOATING when nobody
// qualifies. An engine failure leaves the task PENDING for a later run.
func (s *DefaultTaskService) runMatching(ctx context.Context, t *models.Task) (*models.Task, error) {
	candidates, err := s.Matching.FindCandidates(ctx, t, matching.Options{Strategy: t.MatchingStrategy})
	if err != nil {
		if s.Logger != nil {
			s.Logger.Warn("matching run failed, task stays pending",
				zap.String("taskId", t.ID), zap.Error(err))
		}
		return t, nil
	}

	if len(candidates) == 0 {
		empty := []models.MatchedProvider{}
		updated, err := s.Repo.AtomicTransition(ctx, t.ID, t.Status, models.TaskStatusFloating,
			taskRepo.TransitionPatch{MatchedProviders: &empty})
		return s.settleMatchOutcome(ctx, t.ID, updated, err)
	}

	matched := toMatchedProviders(candidates, time.Now().UTC())
	updated, err := s.Repo.AtomicTransition(ctx, t.ID, t.Status, models.TaskStatusMatched,
		taskRepo.TransitionPatch{MatchedProviders: &matched})
	return s.settleMatchOutcome(ctx, t.ID, updated, err)
}

// settleMatchOutcome absorbs a lost race after a matching run: whoever moved
// the task first wins, and the current state is returned as-is.
func (s *DefaultTaskService) settleMatchOutcome(ctx context.Context, taskID string, updated *models.Task, err error) (*models.Task, error) {
	if err == nil {
		return updated, nil
	}
	if errors.Is(err, taskRepo.ErrNotApplied) {
		current, fetchErr := s.Repo.FindByID(ctx, taskID)
		if fetchErr != nil {
			return nil, fetchErr
		}
		return current, nil
	}
	return nil, err
}

// conflictFor maps a lost CAS race to the caller-facing conflict error by
// inspecting the task's current state.
func (s *DefaultTaskService) conflictFor(ctx context.Context, taskID string) error {
	current, err := s.Repo.FindByID(ctx, taskID)
	if errors.Is(err, taskRepo.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	switch {
	case current.Status == models.TaskStatusConverted:
		return ErrAlreadyConverted
	case current.Status.Terminal():
		return ErrTerminal
	default:
		return ErrConflict
	}
}

func toMatchedProviders(candidates []models.MatchCandidate, at time.Time) []models.MatchedProvider {
	matched := make([]models.MatchedProvider, 0, len(candidates))
	for _, c := range candidates {
		matched = append(matched, models.MatchedProvider{
			ProviderID: c.ProviderID,
			DistanceKm: c.DistanceKm,
			MatchedAt:  at,
		})
	}
	return matched
}
