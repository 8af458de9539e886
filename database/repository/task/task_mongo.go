package taskRepo

import (
	"workhive/database"

	"go.mongodb.org/mongo-driver/mongo"
)

// MongoTaskRepo is the MongoDB-backed TaskRepository.
type MongoTaskRepo struct {
	coll *mongo.Collection
}

// NewMongoTaskRepo creates a repository over the "tasks" collection.
func NewMongoTaskRepo() *MongoTaskRepo {
	return &MongoTaskRepo{
		coll: database.DB().Collection("tasks"),
	}
}
