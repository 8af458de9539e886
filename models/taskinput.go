package models

import "time"

// CreateTaskInput is the payload for POST /tasks.
type CreateTaskInput struct {
	CustomerID       string           `json:"customerId" validate:"required"`
	Title            string           `json:"title" validate:"required,min=3,max=140"`
	Description      string           `json:"description" validate:"max=2000"`
	Service          ServiceRef       `json:"service" validate:"required"`
	Tags             []string         `json:"tags" validate:"max=10,dive,min=1,max=40"`
	EstimatedBudget  *float64         `json:"estimatedBudget" validate:"omitempty,gt=0"`
	ScheduleStart    time.Time        `json:"scheduleStart" validate:"required"`
	ScheduleEnd      time.Time        `json:"scheduleEnd" validate:"required,gtfield=ScheduleStart"`
	CustomerLocation Coordinates      `json:"customerLocation"`
	MatchingStrategy MatchingStrategy `json:"matchingStrategy" validate:"omitempty,oneof=LOCATION_ONLY INTELLIGENT"`
}

// UpdateTaskInput is the payload for PATCH /tasks/:taskId. Only descriptive
// fields are patchable; matching state is owned by the lifecycle operations.
type UpdateTaskInput struct {
	Title           *string   `json:"title" validate:"omitempty,min=3,max=140"`
	Description     *string   `json:"description" validate:"omitempty,max=2000"`
	Tags            *[]string `json:"tags" validate:"omitempty,max=10,dive,min=1,max=40"`
	EstimatedBudget *float64  `json:"estimatedBudget" validate:"omitempty,gt=0"`
}

// RequestProviderInput is the payload for POST /tasks/:taskId/request-provider.
type RequestProviderInput struct {
	ProviderID string `json:"providerId" validate:"required"`
	Message    string `json:"message" validate:"max=500"`
}

// RespondInput is the payload for POST /tasks/:taskId/respond.
type RespondInput struct {
	ProviderID string `json:"providerId" validate:"required"`
	Action     string `json:"action" validate:"required,oneof=accept reject"`
}

// RematchInput is the payload for POST /tasks/:taskId/rematch.
type RematchInput struct {
	Strategy MatchingStrategy `json:"strategy" validate:"omitempty,oneof=LOCATION_ONLY INTELLIGENT"`
}

// CompleteBookingInput is the payload for POST /bookings/:bookingId/complete.
type CompleteBookingInput struct {
	ProviderID string   `json:"providerId" validate:"required"`
	FinalPrice *float64 `json:"finalPrice" validate:"omitempty,gte=0"`
}

// CancelBookingInput is the payload for POST /bookings/:bookingId/cancel.
type CancelBookingInput struct {
	ActorID string `json:"actorId" validate:"required"`
	Reason  string `json:"reason" validate:"max=500"`
}

// TaskWithBooking pairs a task with its booking once converted.
type TaskWithBooking struct {
	Task    *Task    `json:"task"`
	Booking *Booking `json:"booking,omitempty"`
}
