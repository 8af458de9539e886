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

// ConvertTask atomically converts a REQUESTED task into a booking. The task
// update is a compare-and-set on status plus an unset convertedToBookingId,
// so of N concurrent calls exactly one matches the filter; the rest abort
// with no booking written for them. A CAS miss is classified by re-reading
// the task: ErrTaskNotConvertible when it was converted (or vanished),
// ErrTaskNotRequested when it left REQUESTED another way.
func (r *MongoBookingRepo) ConvertTask(ctx context.Context, taskID string, booking *models.Booking) (*models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client := r.bookingColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	var converted models.Task

	txnFn := func(sc mongo.SessionContext) error {
		filter := bson.M{
			"id":                   taskID,
			"deleted":              false,
			"status":               models.TaskStatusRequested,
			"convertedToBookingId": bson.M{"$exists": false},
		}
		update := bson.M{"$set": bson.M{
			"status":               models.TaskStatusConverted,
			"convertedToBookingId": booking.ID,
			"updatedAt":            time.Now().UTC(),
		}}
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

		err := r.taskColl.FindOneAndUpdate(sc, filter, update, opts).Decode(&converted)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return r.classifyConversionMiss(sc, taskID)
		}
		if err != nil {
			return fmt.Errorf("task conversion update failed: %w", err)
		}

		if _, err := r.bookingColl.InsertOne(sc, booking); err != nil {
			return fmt.Errorf("insert booking failed: %w", err)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		if errors.Is(err, ErrTaskNotConvertible) || errors.Is(err, ErrTaskNotRequested) {
			return nil, err
		}
		return nil, fmt.Errorf("conversion transaction failed: %w", err)
	}

	return &converted, nil
}

// classifyConversionMiss inspects the task after a failed conversion CAS.
// A converted or missing task means the conversion race was lost; anything
// else means the task left REQUESTED before the conversion landed.
func (r *MongoBookingRepo) classifyConversionMiss(sc mongo.SessionContext, taskID string) error {
	var t models.Task
	err := r.taskColl.FindOne(sc, bson.M{"id": taskID, "deleted": false}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrTaskNotConvertible
	}
	if err != nil {
		return fmt.Errorf("conversion miss lookup failed: %w", err)
	}
	if t.Status == models.TaskStatusConverted || t.ConvertedToBookingID != "" {
		return ErrTaskNotConvertible
	}
	return ErrTaskNotRequested
}
