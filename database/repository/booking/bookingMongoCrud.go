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

// FindByID retrieves a booking by its ID.
func (r *MongoBookingRepo) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	err := r.bookingColl.FindOne(ctx, bson.M{"id": id}).Decode(&booking)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching booking %s: %w", id, err)
	}
	return &booking, nil
}

// FindByTask retrieves the booking referencing the given task, if any.
func (r *MongoBookingRepo) FindByTask(ctx context.Context, taskID string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	err := r.bookingColl.FindOne(ctx, bson.M{"taskId": taskID}).Decode(&booking)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching booking for task %s: %w", taskID, err)
	}
	return &booking, nil
}

// FindByClient retrieves a client's bookings, newest first.
func (r *MongoBookingRepo) FindByClient(ctx context.Context, clientID string) ([]models.Booking, error) {
	return r.findByParty(ctx, bson.M{"clientId": clientID})
}

// FindByProvider retrieves a provider's bookings, newest first.
func (r *MongoBookingRepo) FindByProvider(ctx context.Context, providerID string) ([]models.Booking, error) {
	return r.findByParty(ctx, bson.M{"providerId": providerID})
}

func (r *MongoBookingRepo) findByParty(ctx context.Context, filter bson.M) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.bookingColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error querying bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}
