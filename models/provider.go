package models

// ProviderCandidate is what the candidate source reports about a provider
// near a point. The matching engine treats this data as read-only.
type ProviderCandidate struct {
	ProviderID        string      `bson:"id" json:"providerId"`
	Coordinates       Coordinates `bson:"coordinates" json:"coordinates"`
	ActiveServiceIDs  []string    `bson:"activeServiceIds" json:"activeServiceIds"`
	CompanyTrained    bool        `bson:"companyTrained" json:"companyTrained"`
	Rating            float64     `bson:"rating" json:"rating"`
	CompletedBookings int         `bson:"completedBookings" json:"completedBookings"`
	Deleted           bool        `bson:"deleted" json:"-"`
}

// OffersService reports whether serviceID is in the provider's active list.
func (p ProviderCandidate) OffersService(serviceID string) bool {
	for _, id := range p.ActiveServiceIDs {
		if id == serviceID {
			return true
		}
	}
	return false
}

// MatchCandidate is an ephemeral ranking result. Only the winning set is
// written back onto the task as MatchedProvider entries.
type MatchCandidate struct {
	ProviderID        string  `json:"providerId"`
	DistanceKm        float64 `json:"distanceKm"`
	Rating            float64 `json:"rating"`
	CompletedBookings int     `json:"completedBookings"`
	CompanyTrained    bool    `json:"companyTrained"`
	Score             float64 `json:"score,omitempty"`
}
