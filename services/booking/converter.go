package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingRepo "workhive/database/repository/booking"
	"workhive/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBookingService implements Service.
type DefaultBookingService struct {
	Repo   bookingRepo.BookingRepository
	Logger *zap.Logger
}

// Convert turns a REQUESTED task into a CONFIRMED booking. Exclusivity is
// enforced at the persistence layer: the repository applies the task's
// REQUESTED -> CONVERTED flip as a compare-and-set, so concurrent calls for
// the same task create exactly one booking. Losing to another conversion
// fails with ErrTaskAlreadyConverted; finding the stored task cancelled or
// expired fails with ErrTaskNotRequested.
func (s *DefaultBookingService) Convert(ctx context.Context, task *models.Task) (*models.Task, *models.Booking, error) {
	if task.ConvertedToBookingID != "" {
		return nil, nil, ErrTaskAlreadyConverted
	}
	if task.Status != models.TaskStatusRequested {
		return nil, nil, ErrTaskNotRequested
	}
	if task.RequestedProviderID == "" {
		return nil, nil, fmt.Errorf("requested task %s has no requested provider", task.ID)
	}

	booking := &models.Booking{
		ID:         uuid.New().String(),
		TaskID:     task.ID,
		ClientID:   task.CustomerID,
		ProviderID: task.RequestedProviderID,
		Status:     models.BookingStatusConfirmed,
		CreatedAt:  time.Now().UTC(),
	}

	converted, err := s.Repo.ConvertTask(ctx, task.ID, booking)
	if errors.Is(err, bookingRepo.ErrTaskNotConvertible) {
		return nil, nil, ErrTaskAlreadyConverted
	}
	if errors.Is(err, bookingRepo.ErrTaskNotRequested) {
		return nil, nil, ErrTaskNotRequested
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to convert task %s: %w", task.ID, err)
	}

	if s.Logger != nil {
		s.Logger.Info("task converted to booking",
			zap.String("taskId", task.ID),
			zap.String("bookingId", booking.ID),
			zap.String("providerId", booking.ProviderID))
	}
	return converted, booking, nil
}
