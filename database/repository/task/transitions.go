package taskRepo

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

// AtomicTransition applies a conditional status change: the write lands only
// if the stored status still equals expected. Concurrent callers racing on
// the same task see exactly one winner; losers get ErrNotApplied.
func (r *MongoTaskRepo) AtomicTransition(ctx context.Context, id string, expected, next models.TaskStatus, patch TransitionPatch) (*models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":      id,
		"deleted": false,
		"status":  expected,
	}

	set := bson.M{
		"status":    next,
		"updatedAt": time.Now().UTC(),
	}
	unset := bson.M{}

	if patch.MatchedProviders != nil {
		set["matchedProviders"] = *patch.MatchedProviders
	}
	if patch.RequestedProviderID != nil {
		if *patch.RequestedProviderID == "" {
			unset["requestedProviderId"] = ""
		} else {
			set["requestedProviderId"] = *patch.RequestedProviderID
		}
	}
	if patch.MatchingStrategy != nil {
		set["matchingStrategy"] = *patch.MatchingStrategy
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var task models.Task
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&task)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, r.notFoundOrNotApplied(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("task transition %s -> %s failed for %s: %w", expected, next, id, err)
	}
	return &task, nil
}

// AppendMatchedProvider pushes one entry onto the matched list. The filter
// requires a status in open and excludes tasks already listing the
// provider, so the push is a single conditional update: two concurrent
// appends for different providers both land, and a duplicate append
// matches nothing instead of overwriting the list.
func (r *MongoTaskRepo) AppendMatchedProvider(ctx context.Context, id string, open []models.TaskStatus, entry models.MatchedProvider) (*models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":      id,
		"deleted": false,
		"status":  bson.M{"$in": open},
		"matchedProviders.providerId": bson.M{"$ne": entry.ProviderID},
	}
	update := bson.M{
		"$push": bson.M{"matchedProviders": entry},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var task models.Task
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&task)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, r.notFoundOrNotApplied(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("append matched provider failed for %s: %w", id, err)
	}
	return &task, nil
}
