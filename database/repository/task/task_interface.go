package taskRepo

import (
	"context"
	"errors"

	"workhive/models"
)

var (
	// ErrNotFound indicates no task exists with the given id.
	ErrNotFound = errors.New("task not found")
	// ErrNotApplied indicates the conditional transition matched nothing:
	// the task exists but its status was not the expected one. The caller
	// lost a race and should re-fetch.
	ErrNotApplied = errors.New("task transition not applied")
)

// TransitionPatch carries the fields written alongside an atomic status
// change. Nil fields are left untouched; a pointer to the zero value clears
// the field.
type TransitionPatch struct {
	MatchedProviders    *[]models.MatchedProvider
	RequestedProviderID *string
	MatchingStrategy    *models.MatchingStrategy
}

// TaskRepository defines methods for task data access. AtomicTransition is
// the single write primitive for status changes: it applies the new status
// and patch only if the stored status still equals expected, in one
// conditional update. AppendMatchedProvider adds a single entry to the
// matched list in one conditional update (status in open, provider not yet
// listed), so concurrent appends never overwrite each other.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id string) (*models.Task, error)
	FindByCustomer(ctx context.Context, customerID string, statuses []models.TaskStatus) ([]models.Task, error)
	FindByStatus(ctx context.Context, status models.TaskStatus, limit int64) ([]models.Task, error)
	AtomicTransition(ctx context.Context, id string, expected, next models.TaskStatus, patch TransitionPatch) (*models.Task, error)
	AppendMatchedProvider(ctx context.Context, id string, open []models.TaskStatus, entry models.MatchedProvider) (*models.Task, error)
	UpdateDescriptive(ctx context.Context, id string, input models.UpdateTaskInput) (*models.Task, error)
	SoftDelete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
}
