package booking

import (
	"context"

	"workhive/models"
)

// Service converts accepted tasks into bookings and drives bookings through
// execution. It is the only writer of booking records.
type Service interface {
	Convert(ctx context.Context, task *models.Task) (*models.Task, *models.Booking, error)
	Start(ctx context.Context, bookingID, providerID string) (*models.Booking, error)
	Complete(ctx context.Context, bookingID, providerID string, finalPrice *float64) (*models.Booking, error)
	Cancel(ctx context.Context, bookingID, actorID, reason string) (*models.Booking, error)
	Get(ctx context.Context, bookingID string) (*models.Booking, error)
	GetByTask(ctx context.Context, taskID string) (*models.Booking, error)
	ListByClient(ctx context.Context, clientID string) ([]models.Booking, error)
	ListByProvider(ctx context.Context, providerID string) ([]models.Booking, error)
	CountByStatus(ctx context.Context) (map[models.BookingStatus]int64, error)
}
