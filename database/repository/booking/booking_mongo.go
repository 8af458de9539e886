package bookingRepo

import (
	"workhive/database"

	"go.mongodb.org/mongo-driver/mongo"
)

// MongoBookingRepo is the MongoDB-backed BookingRepository. It holds the
// task collection too: conversion touches both collections in one
// transaction.
type MongoBookingRepo struct {
	bookingColl *mongo.Collection
	taskColl    *mongo.Collection
}

// NewMongoBookingRepo creates a repository over the "bookings" and "tasks"
// collections.
func NewMongoBookingRepo() *MongoBookingRepo {
	db := database.DB()
	return &MongoBookingRepo{
		bookingColl: db.Collection("bookings"),
		taskColl:    db.Collection("tasks"),
	}
}
