package task

import (
	"context"

	"workhive/models"
)

// Service owns the task state machine: creation, matching runs, provider
// requests and responses, cancellation, lazy expiry and conversion handoff.
// No other component writes task state.
type Service interface {
	Create(ctx context.Context, input models.CreateTaskInput) (*models.Task, error)
	Get(ctx context.Context, taskID string) (*models.Task, error)
	GetWithBooking(ctx context.Context, taskID string) (*models.TaskWithBooking, error)
	Update(ctx context.Context, taskID string, input models.UpdateTaskInput) (*models.Task, error)
	ListByCustomer(ctx context.Context, customerID string, statuses []models.TaskStatus) ([]models.Task, error)
	RequestProvider(ctx context.Context, taskID, providerID string) (*models.Task, error)
	RespondToRequest(ctx context.Context, taskID, providerID string, accept bool) (*models.Task, *models.Booking, error)
	ExpressInterest(ctx context.Context, taskID, providerID string) (*models.Task, error)
	Rematch(ctx context.Context, taskID string, strategy models.MatchingStrategy) (*models.Task, error)
	Cancel(ctx context.Context, taskID string) (*models.Task, error)
	SoftDelete(ctx context.Context, taskID string) error
	Restore(ctx context.Context, taskID string) error
	PromoteFloating(ctx context.Context, limit int) (int, error)
}
