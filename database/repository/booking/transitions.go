package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"workhive/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AtomicTransition applies a conditional booking status change; the write
// lands only if the stored status still equals expected.
func (r *MongoBookingRepo) AtomicTransition(ctx context.Context, id string, expected, next models.BookingStatus, patch TransitionPatch) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"status": next}
	if patch.FinalPrice != nil {
		set["finalPrice"] = *patch.FinalPrice
	}
	if patch.CancelReason != nil {
		set["cancelReason"] = *patch.CancelReason
	}
	if patch.StartedAt != nil {
		set["startedAt"] = *patch.StartedAt
	}
	if patch.CompletedAt != nil {
		set["completedAt"] = *patch.CompletedAt
	}
	if patch.CancelledAt != nil {
		set["cancelledAt"] = *patch.CancelledAt
	}

	filter := bson.M{"id": id, "status": expected}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking models.Booking
	err := r.bookingColl.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&booking)
	if errors.Is(err, mongo.ErrNoDocuments) {
		count, cntErr := r.bookingColl.CountDocuments(ctx, bson.M{"id": id})
		if cntErr != nil {
			return nil, fmt.Errorf("error checking booking %s: %w", id, cntErr)
		}
		if count == 0 {
			return nil, ErrNotFound
		}
		return nil, ErrNotApplied
	}
	if err != nil {
		return nil, fmt.Errorf("booking transition %s -> %s failed for %s: %w", expected, next, id, err)
	}
	return &booking, nil
}
