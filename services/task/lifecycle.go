package task

import (
	"context"
	"errors"
	"time"

	providerRepo "workhive/database/repository/provider"
	taskRepo "workhive/database/repository/task"
	"workhive/models"
	"workhive/services/booking"

	"go.uber.org/zap"
)

// RequestProvider records the customer's pick of one matched provider and
// moves the task MATCHED -> REQUESTED.
func (s *DefaultTaskService) RequestProvider(ctx context.Context, taskID, providerID string) (*models.Task, error) {
	t, err := s.getLive(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t.Status == models.TaskStatusConverted {
		return nil, ErrAlreadyConverted
	}
	if t.Status != models.TaskStatusMatched || !t.HasMatchedProvider(providerID) {
		return nil, ErrProviderNotMatched
	}

	updated, err := s.Repo.AtomicTransition(ctx, taskID,
		models.TaskStatusMatched, models.TaskStatusRequested,
		taskRepo.TransitionPatch{RequestedProviderID: &providerID})
	if errors.Is(err, taskRepo.ErrNotApplied) {
		return nil, ErrProviderNotMatched
	}
	if errors.Is(err, taskRepo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// RespondToRequest applies the requested provider's accept or reject. An
// accept delegates to the booking converter; a reject reverts the task to
// MATCHED with the provider removed from the matched list. Only the first
// response transitions out of REQUESTED; any later response observes the
// state mismatch and fails cleanly.
func (s *DefaultTaskService) RespondToRequest(ctx context.Context, taskID, providerID string, accept bool) (*models.Task, *models.Booking, error) {
	t, err := s.getLive(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	if t.Status == models.TaskStatusConverted {
		return nil, nil, ErrAlreadyConverted
	}
	if t.Status != models.TaskStatusRequested {
		return nil, nil, ErrNotRequested
	}
	if providerID != t.RequestedProviderID {
		return nil, nil, ErrProviderNotMatched
	}

	if accept {
		converted, b, err := s.Converter.Convert(ctx, t)
		if errors.Is(err, booking.ErrTaskAlreadyConverted) {
			return nil, nil, ErrAlreadyConverted
		}
		if errors.Is(err, booking.ErrTaskNotRequested) {
			return nil, nil, ErrNotRequested
		}
		if err != nil {
			return nil, nil, err
		}
		return converted, b, nil
	}

	cleared := ""
	remaining := t.WithoutMatchedProvider(providerID)
	updated, err := s.Repo.AtomicTransition(ctx, taskID,
		models.TaskStatusRequested, models.TaskStatusMatched,
		taskRepo.TransitionPatch{
			RequestedProviderID: &cleared,
			MatchedProviders:    &remaining,
		})
	if errors.Is(err, taskRepo.ErrNotApplied) {
		return nil, nil, ErrNotRequested
	}
	if errors.Is(err, taskRepo.ErrNotFound) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("provider rejected task request",
			zap.String("taskId", taskID), zap.String("providerId", providerID))
	}
	return updated, nil, nil
}

// ExpressInterest is the provider-initiated analogue for open tasks: it adds
// the provider to the matched list without forcing a status change.
// Idempotent when the provider is already listed.
func (s *DefaultTaskService) ExpressInterest(ctx context.Context, taskID, providerID string) (*models.Task, error) {
	t, err := s.getLive(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t.Status != models.TaskStatusFloating && t.Status != models.TaskStatusMatched {
		return nil, ErrNotOpen
	}
	if t.HasMatchedProvider(providerID) {
		return t, nil
	}

	candidate, err := s.Providers.GetByID(ctx, providerID)
	if errors.Is(err, providerRepo.ErrNotFound) {
		return nil, ErrProviderNotFound
	}
	if err != nil {
		return nil, err
	}
	if candidate.Deleted {
		return nil, ErrProviderNotFound
	}

	entry := models.MatchedProvider{
		ProviderID: providerID,
		DistanceKm: s.Geo.DistanceKm(t.Location, candidate.Coordinates),
		MatchedAt:  time.Now().UTC(),
	}

	// Append is a repository-level conditional push, never a full-list
	// write: interest from two providers landing together keeps both.
	open := []models.TaskStatus{models.TaskStatusFloating, models.TaskStatusMatched}
	updated, err := s.Repo.AppendMatchedProvider(ctx, taskID, open, entry)
	if errors.Is(err, taskRepo.ErrNotApplied) {
		current, fetchErr := s.Repo.FindByID(ctx, taskID)
		if errors.Is(fetchErr, taskRepo.ErrNotFound) {
			return nil, ErrNotFound
		}
		if fetchErr != nil {
			return nil, fetchErr
		}
		if current.HasMatchedProvider(providerID) {
			// A concurrent call added the same provider first.
			return current, nil
		}
		return nil, ErrNotOpen
	}
	if errors.Is(err, taskRepo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Rematch resets a non-terminal task to PENDING, clears prior matching
// state and runs a fresh matching run.
func (s *DefaultTaskService) Rematch(ctx context.Context, taskID string, strategy models.MatchingStrategy) (*models.Task, error) {
	t, err := s.getLive(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t.Status == models.TaskStatusConverted {
		return nil, ErrAlreadyConverted
	}
	if t.Status.Terminal() {
		return nil, ErrTerminal
	}

	if !strategy.Valid() {
		strategy = t.MatchingStrategy
	}
	cleared := ""
	empty := []models.MatchedProvider{}
	reset, err := s.Repo.AtomicTransition(ctx, taskID, t.Status, models.TaskStatusPending,
		taskRepo.TransitionPatch{
			MatchedProviders:    &empty,
			RequestedProviderID: &cleared,
			MatchingStrategy:    &strategy,
		})
	if errors.Is(err, taskRepo.ErrNotApplied) {
		return nil, s.conflictFor(ctx, taskID)
	}
	if errors.Is(err, taskRepo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return s.runMatching(ctx, reset)
}

// Cancel moves a live task to CANCELLED.
func (s *DefaultTaskService) Cancel(ctx context.Context, taskID string) (*models.Task, error) {
	t, err := s.getLive(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t.Status == models.TaskStatusConverted {
		return nil, ErrAlreadyConverted
	}
	if t.Status.Terminal() {
		return nil, ErrTerminal
	}

	cleared := ""
	updated, err := s.Repo.AtomicTransition(ctx, taskID, t.Status, models.TaskStatusCancelled,
		taskRepo.TransitionPatch{RequestedProviderID: &cleared})
	if errors.Is(err, taskRepo.ErrNotApplied) {
		return nil, s.conflictFor(ctx, taskID)
	}
	if errors.Is(err, taskRepo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("task cancelled", zap.String("taskId", taskID))
	}
	return updated, nil
}

// PromoteFloating re-runs matching for a batch of FLOATING tasks, promoting
// those that now have candidates. Used by the background rematch worker.
// Returns how many tasks were promoted to MATCHED.
func (s *DefaultTaskService) PromoteFloating(ctx context.Context, limit int) (int, error) {
	tasks, err := s.Repo.FindByStatus(ctx, models.TaskStatusFloating, int64(limit))
	if err != nil {
		return 0, err
	}

	promoted := 0
	for i := range tasks {
		t := &tasks[i]
		live, err := s.expireIfDue(ctx, t)
		if err != nil || live.Status != models.TaskStatusFloating {
			continue
		}
		after, err := s.runMatching(ctx, live)
		if err != nil {
			continue
		}
		if after.Status == models.TaskStatusMatched {
			promoted++
		}
	}
	return promoted, nil
}
