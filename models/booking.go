package models

import "time"

// BookingStatus is the execution-phase state of a confirmed job.
type BookingStatus string

const (
	BookingStatusConfirmed  BookingStatus = "CONFIRMED"
	BookingStatusInProgress BookingStatus = "IN_PROGRESS"
	BookingStatusCompleted  BookingStatus = "COMPLETED"
	BookingStatusCancelled  BookingStatus = "CANCELLED"
)

// Terminal reports whether no further transitions are permitted.
func (s BookingStatus) Terminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

// Booking is the execution contract between one client and one provider for
// one task. TaskID, ClientID and ProviderID are set at creation and never
// change.
type Booking struct {
	ID         string `bson:"id" json:"id"`
	TaskID     string `bson:"taskId" json:"taskId"`
	ClientID   string `bson:"clientId" json:"clientId"`
	ProviderID string `bson:"providerId" json:"providerId"`

	Status       BookingStatus `bson:"status" json:"status"`
	FinalPrice   *float64      `bson:"finalPrice,omitempty" json:"finalPrice,omitempty"`
	CancelReason string        `bson:"cancelReason,omitempty" json:"cancelReason,omitempty"`

	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`
	StartedAt   *time.Time `bson:"startedAt,omitempty" json:"startedAt,omitempty"`
	CompletedAt *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CancelledAt *time.Time `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
}
