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

// Create inserts a new task document.
func (r *MongoTaskRepo) Create(ctx context.Context, task *models.Task) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, task); err != nil {
		return fmt.Errorf("error creating task: %w", err)
	}
	return nil
}

// FindByID retrieves a task by its ID. Soft-deleted tasks are not returned.
func (r *MongoTaskRepo) FindByID(ctx context.Context, id string) (*models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var task models.Task
	err := r.coll.FindOne(ctx, bson.M{"id": id, "deleted": false}).Decode(&task)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching task %s: %w", id, err)
	}
	return &task, nil
}

// FindByCustomer retrieves a customer's tasks, optionally filtered by status,
// newest first.
func (r *MongoTaskRepo) FindByCustomer(ctx context.Context, customerID string, statuses []models.TaskStatus) ([]models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{"customerId": customerID, "deleted": false}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error querying tasks for customer %s: %w", customerID, err)
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}
	return tasks, nil
}

// FindByStatus retrieves up to limit tasks in the given status, oldest first.
// Used by the floating-task rematch worker.
func (r *MongoTaskRepo) FindByStatus(ctx context.Context, status models.TaskStatus, limit int64) ([]models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: 1}})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}
	cursor, err := r.coll.Find(ctx, bson.M{"status": status, "deleted": false}, opts)
	if err != nil {
		return nil, fmt.Errorf("error querying tasks by status %s: %w", status, err)
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}
	return tasks, nil
}

// UpdateDescriptive patches title/description/tags/budget. The update is
// conditional on the task not having been converted, so a stale client gets
// ErrNotApplied instead of silently editing a converted task.
func (r *MongoTaskRepo) UpdateDescriptive(ctx context.Context, id string, input models.UpdateTaskInput) (*models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"updatedAt": time.Now().UTC()}
	if input.Title != nil {
		set["title"] = *input.Title
	}
	if input.Description != nil {
		set["description"] = *input.Description
	}
	if input.Tags != nil {
		set["tags"] = *input.Tags
	}
	if input.EstimatedBudget != nil {
		set["estimatedBudget"] = *input.EstimatedBudget
	}

	filter := bson.M{
		"id":      id,
		"deleted": false,
		"status":  bson.M{"$ne": models.TaskStatusConverted},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var task models.Task
	err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&task)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, r.notFoundOrNotApplied(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("error updating task %s: %w", id, err)
	}
	return &task, nil
}

// SoftDelete flags the task deleted. Hard deletes never happen while a
// booking references the task.
func (r *MongoTaskRepo) SoftDelete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id, "deleted": false},
		bson.M{"$set": bson.M{"deleted": true, "deletedAt": now, "updatedAt": now}},
	)
	if err != nil {
		return fmt.Errorf("error soft-deleting task %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Restore clears the soft-delete flag.
func (r *MongoTaskRepo) Restore(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id, "deleted": true},
		bson.M{
			"$set":   bson.M{"deleted": false, "updatedAt": time.Now().UTC()},
			"$unset": bson.M{"deletedAt": ""},
		},
	)
	if err != nil {
		return fmt.Errorf("error restoring task %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// notFoundOrNotApplied distinguishes "no such task" from "task exists but
// the condition failed" after a conditional update matched nothing.
func (r *MongoTaskRepo) notFoundOrNotApplied(ctx context.Context, id string) error {
	count, err := r.coll.CountDocuments(ctx, bson.M{"id": id, "deleted": false})
	if err != nil {
		return fmt.Errorf("error checking task %s: %w", id, err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrNotApplied
}
