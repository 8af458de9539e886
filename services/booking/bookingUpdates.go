package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingRepo "workhive/database/repository/booking"
	"workhive/models"
)

// Start moves a CONFIRMED booking to IN_PROGRESS. Only the assigned
// provider may start the work.
func (s *DefaultBookingService) Start(ctx context.Context, bookingID, providerID string) (*models.Booking, error) {
	b, err := s.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.ProviderID != providerID {
		return nil, ErrNotAuthorized
	}

	now := time.Now().UTC()
	updated, err := s.Repo.AtomicTransition(ctx, bookingID,
		models.BookingStatusConfirmed, models.BookingStatusInProgress,
		bookingRepo.TransitionPatch{StartedAt: &now})
	if err != nil {
		return nil, s.mapTransitionErr(ctx, bookingID, err)
	}
	return updated, nil
}

// Complete moves an IN_PROGRESS booking to COMPLETED, optionally recording
// the final price. Only the assigned provider may complete the work.
func (s *DefaultBookingService) Complete(ctx context.Context, bookingID, providerID string, finalPrice *float64) (*models.Booking, error) {
	b, err := s.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.ProviderID != providerID {
		return nil, ErrNotAuthorized
	}

	now := time.Now().UTC()
	updated, err := s.Repo.AtomicTransition(ctx, bookingID,
		models.BookingStatusInProgress, models.BookingStatusCompleted,
		bookingRepo.TransitionPatch{FinalPrice: finalPrice, CompletedAt: &now})
	if err != nil {
		return nil, s.mapTransitionErr(ctx, bookingID, err)
	}
	return updated, nil
}

// Cancel cancels a CONFIRMED or IN_PROGRESS booking. Either party may
// cancel, with a reason.
func (s *DefaultBookingService) Cancel(ctx context.Context, bookingID, actorID, reason string) (*models.Booking, error) {
	b, err := s.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if actorID != b.ClientID && actorID != b.ProviderID {
		return nil, ErrNotAuthorized
	}
	if b.Status.Terminal() {
		return nil, ErrTerminal
	}

	now := time.Now().UTC()
	updated, err := s.Repo.AtomicTransition(ctx, bookingID,
		b.Status, models.BookingStatusCancelled,
		bookingRepo.TransitionPatch{CancelReason: &reason, CancelledAt: &now})
	if err != nil {
		return nil, s.mapTransitionErr(ctx, bookingID, err)
	}
	return updated, nil
}

// Get retrieves a booking.
func (s *DefaultBookingService) Get(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := s.Repo.FindByID(ctx, bookingID)
	if errors.Is(err, bookingRepo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// GetByTask retrieves the booking created from the given task, if any.
func (s *DefaultBookingService) GetByTask(ctx context.Context, taskID string) (*models.Booking, error) {
	b, err := s.Repo.FindByTask(ctx, taskID)
	if errors.Is(err, bookingRepo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ListByClient retrieves a client's bookings.
func (s *DefaultBookingService) ListByClient(ctx context.Context, clientID string) ([]models.Booking, error) {
	return s.Repo.FindByClient(ctx, clientID)
}

// ListByProvider retrieves a provider's bookings.
func (s *DefaultBookingService) ListByProvider(ctx context.Context, providerID string) ([]models.Booking, error) {
	return s.Repo.FindByProvider(ctx, providerID)
}

// CountByStatus aggregates booking counts per status.
func (s *DefaultBookingService) CountByStatus(ctx context.Context) (map[models.BookingStatus]int64, error) {
	return s.Repo.CountByStatus(ctx)
}

// mapTransitionErr turns a repository CAS miss into the caller-facing
// conflict error by inspecting the booking's current state.
func (s *DefaultBookingService) mapTransitionErr(ctx context.Context, bookingID string, err error) error {
	if errors.Is(err, bookingRepo.ErrNotFound) {
		return ErrNotFound
	}
	if !errors.Is(err, bookingRepo.ErrNotApplied) {
		return fmt.Errorf("booking transition failed: %w", err)
	}
	current, fetchErr := s.Repo.FindByID(ctx, bookingID)
	if fetchErr != nil {
		return ErrInvalidState
	}
	if current.Status.Terminal() {
		return ErrTerminal
	}
	return ErrInvalidState
}
