package bookingRepo

import (
	"context"
	"errors"
	"time"

	"workhive/models"
)

var (
	// ErrNotFound indicates no booking exists with the given id.
	ErrNotFound = errors.New("booking not found")
	// ErrNotApplied indicates a conditional update matched nothing: the
	// booking exists but its status was not the expected one.
	ErrNotApplied = errors.New("booking transition not applied")
	// ErrTaskNotConvertible indicates the task already carries a booking
	// reference (or vanished): someone else won the conversion.
	ErrTaskNotConvertible = errors.New("task not convertible")
	// ErrTaskNotRequested indicates the conversion found the task in a
	// non-REQUESTED state with no booking reference, e.g. it was cancelled
	// or expired before the conversion landed.
	ErrTaskNotRequested = errors.New("task is not requested")
)

// TransitionPatch carries the fields written alongside an atomic booking
// status change. Nil fields are left untouched.
type TransitionPatch struct {
	FinalPrice   *float64
	CancelReason *string
	StartedAt    *time.Time
	CompletedAt  *time.Time
	CancelledAt  *time.Time
}

// BookingRepository defines methods for booking data access.
//
// ConvertTask is the exclusive task-to-booking conversion: in one
// transaction it flips the task REQUESTED -> CONVERTED (conditional on the
// status still being REQUESTED and convertedToBookingId being unset) and
// inserts the booking. Concurrent conversions of the same task produce
// exactly one booking; losers get ErrTaskNotConvertible when the task was
// converted and ErrTaskNotRequested when it left REQUESTED some other way.
type BookingRepository interface {
	ConvertTask(ctx context.Context, taskID string, booking *models.Booking) (*models.Task, error)
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	FindByClient(ctx context.Context, clientID string) ([]models.Booking, error)
	FindByProvider(ctx context.Context, providerID string) ([]models.Booking, error)
	FindByTask(ctx context.Context, taskID string) (*models.Booking, error)
	AtomicTransition(ctx context.Context, id string, expected, next models.BookingStatus, patch TransitionPatch) (*models.Booking, error)
	CountByStatus(ctx context.Context) (map[models.BookingStatus]int64, error)
}
