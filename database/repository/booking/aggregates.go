package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"workhive/models"

	"go.mongodb.org/mongo-driver/bson"
)

// CountByStatus aggregates booking counts per status. Consumed by the
// external reporting collaborator.
func (r *MongoBookingRepo) CountByStatus(ctx context.Context) (map[models.BookingStatus]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pipeline := []bson.D{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.bookingColl.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("booking status aggregation failed: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status models.BookingStatus `bson:"_id"`
		Count  int64                `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode status counts: %w", err)
	}

	counts := make(map[models.BookingStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
