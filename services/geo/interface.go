package geo

import (
	"context"

	"workhive/models"
)

// GeocodeResult is a forward-geocoding hit.
type GeocodeResult struct {
	Coordinates models.Coordinates `json:"coordinates"`
	DisplayName string             `json:"displayName"`
}

// Place is one nearby-search hit.
type Place struct {
	Name        string             `json:"name"`
	Address     string             `json:"address,omitempty"`
	Coordinates models.Coordinates `json:"coordinates"`
}

// VerifyResult reports how well a coordinate pair agrees with the reference
// point of a digital address.
type VerifyResult struct {
	Verified   bool    `json:"verified"`
	Confidence float64 `json:"confidence"`
	DistanceKm float64 `json:"distanceKm"`
}

// Service converts digital addresses and free text into canonical locations
// and computes great-circle distances.
type Service interface {
	EnrichLocation(ctx context.Context, postalCode string, coords *models.Coordinates, landmark string) (*models.Location, error)
	VerifyLocation(ctx context.Context, postalCode string, coords models.Coordinates) (*VerifyResult, error)
	DistanceKm(a, b models.Coordinates) float64
	GeocodeAddress(ctx context.Context, text string) (*GeocodeResult, error)
	ReverseGeocode(ctx context.Context, coords models.Coordinates) (*models.Location, error)
	NearbySearch(ctx context.Context, center models.Coordinates, query string, radiusKm float64) ([]Place, error)
}
