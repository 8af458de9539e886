package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	taskRepo "workhive/database/repository/task"
	"workhive/models"
	"workhive/services/booking"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Create validates the input, stores the task and runs the first matching
// run. The task comes back MATCHED or FLOATING in the normal case, PENDING
// if the matching engine was unavailable.
func (s *DefaultTaskService) Create(ctx context.Context, input models.CreateTaskInput) (*models.Task, error) {
	if err := input.CustomerLocation.Validate(); err != nil {
		return nil, fmt.Errorf("%w: invalid customer location: %v", ErrValidation, err)
	}
	if !input.ScheduleEnd.After(input.ScheduleStart) {
		return nil, fmt.Errorf("%w: schedule end must be after schedule start", ErrValidation)
	}
	if input.ScheduleEnd.Before(time.Now().UTC()) {
		return nil, fmt.Errorf("%w: schedule window is already in the past", ErrValidation)
	}
	if input.Service.ID == "" {
		return nil, fmt.Errorf("%w: service reference is required", ErrValidation)
	}

	strategy := input.MatchingStrategy
	if !strategy.Valid() {
		strategy = models.StrategyLocationOnly
	}

	now := time.Now().UTC()
	t := &models.Task{
		ID:               uuid.New().String(),
		CustomerID:       input.CustomerID,
		Title:            input.Title,
		Description:      input.Description,
		Service:          input.Service,
		Tags:             input.Tags,
		EstimatedBudget:  input.EstimatedBudget,
		Schedule:         models.ScheduleWindow{Start: input.ScheduleStart, End: input.ScheduleEnd},
		Location:         input.CustomerLocation,
		Status:           models.TaskStatusPending,
		MatchingStrategy: strategy,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.Repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	if s.Logger != nil {
		s.Logger.Info("task created",
			zap.String("taskId", t.ID),
			zap.String("customerId", t.CustomerID),
			zap.String("serviceId", t.Service.ID))
	}

	return s.runMatching(ctx, t)
}

// Get retrieves a task, applying lazy expiry first.
func (s *DefaultTaskService) Get(ctx context.Context, taskID string) (*models.Task, error) {
	return s.getLive(ctx, taskID)
}

// GetWithBooking retrieves a task together with its booking once converted.
func (s *DefaultTaskService) GetWithBooking(ctx context.Context, taskID string) (*models.TaskWithBooking, error) {
	t, err := s.getLive(ctx, taskID)
	if err != nil {
		return nil, err
	}
	out := &models.TaskWithBooking{Task: t}
	if t.ConvertedToBookingID != "" {
		b, err := s.Converter.Get(ctx, t.ConvertedToBookingID)
		if err != nil && !errors.Is(err, booking.ErrNotFound) {
			return nil, err
		}
		out.Booking = b
	}
	return out, nil
}

// Update patches descriptive fields. Once the task is CONVERTED the update
// is rejected; the customer must operate on the booking instead.
func (s *DefaultTaskService) Update(ctx context.Context, taskID string, input models.UpdateTaskInput) (*models.Task, error) {
	updated, err := s.Repo.UpdateDescriptive(ctx, taskID, input)
	if errors.Is(err, taskRepo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if errors.Is(err, taskRepo.ErrNotApplied) {
		return nil, ErrAlreadyConverted
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ListByCustomer retrieves a customer's tasks with an optional status filter.
func (s *DefaultTaskService) ListByCustomer(ctx context.Context, customerID string, statuses []models.TaskStatus) ([]models.Task, error) {
	return s.Repo.FindByCustomer(ctx, customerID, statuses)
}

// SoftDelete removes the task from view. Deleting a CONVERTED task is
// rejected; a live task is cancelled first, so a delete while REQUESTED
// behaves like a customer cancel.
func (s *DefaultTaskService) SoftDelete(ctx context.Context, taskID string) error {
	t, err := s.getLive(ctx, taskID)
	if err != nil {
		return err
	}
	if t.Status == models.TaskStatusConverted {
		return ErrAlreadyConverted
	}
	if !t.Status.Terminal() {
		if _, err := s.Cancel(ctx, taskID); err != nil && !errors.Is(err, ErrTerminal) {
			return err
		}
	}
	if err := s.Repo.SoftDelete(ctx, taskID); err != nil {
		if errors.Is(err, taskRepo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Restore brings a soft-deleted task back.
func (s *DefaultTaskService) Restore(ctx context.Context, taskID string) error {
	if err := s.Repo.Restore(ctx, taskID); err != nil {
		if errors.Is(err, taskRepo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
