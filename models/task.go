package models

import "time"

// TaskStatus is the discovery-phase state of a work request.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "PENDING"
	TaskStatusFloating  TaskStatus = "FLOATING"
	TaskStatusMatched   TaskStatus = "MATCHED"
	TaskStatusRequested TaskStatus = "REQUESTED"
	TaskStatusConverted TaskStatus = "CONVERTED"
	TaskStatusCancelled TaskStatus = "CANCELLED"
	TaskStatusExpired   TaskStatus = "EXPIRED"
)

// Terminal reports whether no further status writes are permitted.
func (s TaskStatus) Terminal() bool {
	switch s {
	case TaskStatusConverted, TaskStatusCancelled, TaskStatusExpired:
		return true
	}
	return false
}

// MatchingStrategy selects how candidate providers are ranked.
type MatchingStrategy string

const (
	StrategyLocationOnly MatchingStrategy = "LOCATION_ONLY"
	StrategyIntelligent  MatchingStrategy = "INTELLIGENT"
)

// Valid reports whether the strategy is one of the closed set.
func (s MatchingStrategy) Valid() bool {
	return s == StrategyLocationOnly || s == StrategyIntelligent
}

// ScheduleWindow is the customer's acceptable start/end window for the work.
type ScheduleWindow struct {
	Start time.Time `bson:"start" json:"start"`
	End   time.Time `bson:"end" json:"end"`
}

// MatchedProvider is one entry of a task's ordered candidate list.
type MatchedProvider struct {
	ProviderID string    `bson:"providerId" json:"providerId"`
	DistanceKm float64   `bson:"distanceKm" json:"distanceKm"`
	MatchedAt  time.Time `bson:"matchedAt" json:"matchedAt"`
}

// Task is a customer's work request during the discovery phase, prior to
// provider assignment.
type Task struct {
	ID         string `bson:"id" json:"id"`
	CustomerID string `bson:"customerId" json:"customerId"`

	Title           string         `bson:"title" json:"title"`
	Description     string         `bson:"description" json:"description,omitempty"`
	Service         ServiceRef     `bson:"service" json:"service"`
	Tags            []string       `bson:"tags,omitempty" json:"tags,omitempty"`
	EstimatedBudget *float64       `bson:"estimatedBudget,omitempty" json:"estimatedBudget,omitempty"`
	Schedule        ScheduleWindow `bson:"schedule" json:"schedule"`

	Location Coordinates `bson:"location" json:"location"`

	Status               TaskStatus        `bson:"status" json:"status"`
	MatchedProviders     []MatchedProvider `bson:"matchedProviders,omitempty" json:"matchedProviders,omitempty"`
	RequestedProviderID  string            `bson:"requestedProviderId,omitempty" json:"requestedProviderId,omitempty"`
	MatchingStrategy     MatchingStrategy  `bson:"matchingStrategy" json:"matchingStrategy"`
	ConvertedToBookingID string            `bson:"convertedToBookingId,omitempty" json:"convertedToBookingId,omitempty"`

	Deleted   bool       `bson:"deleted" json:"-"`
	DeletedAt *time.Time `bson:"deletedAt,omitempty" json:"-"`
	CreatedAt time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// HasMatchedProvider reports whether providerID is in the matched list.
func (t *Task) HasMatchedProvider(providerID string) bool {
	for _, mp := range t.MatchedProviders {
		if mp.ProviderID == providerID {
			return true
		}
	}
	return false
}

// WithoutMatchedProvider returns a copy of the matched list with providerID
// removed, preserving order.
func (t *Task) WithoutMatchedProvider(providerID string) []MatchedProvider {
	out := make([]MatchedProvider, 0, len(t.MatchedProviders))
	for _, mp := range t.MatchedProviders {
		if mp.ProviderID != providerID {
			out = append(out, mp)
		}
	}
	return out
}
