package providerRepo

import (
	"context"
	"errors"

	"workhive/models"
)

// ErrNotFound indicates no provider exists with the given id.
var ErrNotFound = errors.New("provider not found")

// QueryNearCriteria narrows a candidate query. ServiceID is optional;
// Limit caps the result size.
type QueryNearCriteria struct {
	Center        models.Coordinates
	MaxDistanceKm float64
	ServiceID     string
	Limit         int
}

// CandidateSource exposes providers near a point. The matching engine only
// reads from it; nothing in this module mutates provider data.
type CandidateSource interface {
	QueryNear(ctx context.Context, criteria QueryNearCriteria) ([]models.ProviderCandidate, error)
	GetByID(ctx context.Context, providerID string) (*models.ProviderCandidate, error)
}
