package geo

import (
	"context"
	"fmt"
	"math"
	"regexp"

	"workhive/models"
)

// Ghana Post GPS digital addresses look like "GA-183-8164": a two-letter
// district code plus area and unique digits.
var postalCodePattern = regexp.MustCompile(`^[A-Z]{2}-\d{3,4}-\d{4}$`)

// DefaultGeoService implements Service on top of an external geocoder.
type DefaultGeoService struct {
	Geocoder       *Geocoder
	VerifyCutoffKm float64
	ToleranceKm    float64
}

// DistanceKm calculates the great-circle distance between two coordinate
// pairs using the haversine formula on a mean Earth radius of 6371 km.
func (s *DefaultGeoService) DistanceKm(a, b models.Coordinates) float64 {
	return haversine(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}

func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371
	dLat := (lat2 - lat1) * (math.Pi / 180)
	dLon := (lon2 - lon1) * (math.Pi / 180)
	lat1Rad := lat1 * (math.Pi / 180)
	lat2Rad := lat2 * (math.Pi / 180)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}

// EnrichLocation builds a canonical Location from a digital address. When
// coordinates are supplied they are checked against the postal-code
// reference point within the tolerance radius; otherwise the reference
// point itself becomes the location's coordinates.
func (s *DefaultGeoService) EnrichLocation(ctx context.Context, postalCode string, coords *models.Coordinates, landmark string) (*models.Location, error) {
	if !postalCodePattern.MatchString(postalCode) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPostalCode, postalCode)
	}

	ref, err := s.Geocoder.Forward(ctx, postalCode)
	if err != nil {
		return nil, err
	}

	resolved := ref.Coordinates
	if coords != nil {
		if err := coords.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCoordinates, err)
		}
		if d := s.DistanceKm(*coords, ref.Coordinates); d > s.ToleranceKm {
			return nil, fmt.Errorf("%w: %.2f km from reference point", ErrCoordinatesMismatch, d)
		}
		resolved = *coords
	}

	return &models.Location{
		PostalCode:  postalCode,
		Coordinates: resolved,
		Address:     ref.DisplayName,
		Landmark:    landmark,
	}, nil
}

// VerifyLocation reports whether coords plausibly belong to the digital
// address. Confidence decays linearly with distance from the reference
// point; past the cutoff radius the pair is unverified with confidence 0.
func (s *DefaultGeoService) VerifyLocation(ctx context.Context, postalCode string, coords models.Coordinates) (*VerifyResult, error) {
	if !postalCodePattern.MatchString(postalCode) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPostalCode, postalCode)
	}
	if err := coords.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCoordinates, err)
	}

	ref, err := s.Geocoder.Forward(ctx, postalCode)
	if err != nil {
		return nil, err
	}

	d := s.DistanceKm(coords, ref.Coordinates)
	if d >= s.VerifyCutoffKm {
		return &VerifyResult{Verified: false, Confidence: 0, DistanceKm: d}, nil
	}
	return &VerifyResult{
		Verified:   true,
		Confidence: 1 - d/s.VerifyCutoffKm,
		DistanceKm: d,
	}, nil
}

// GeocodeAddress resolves free text to coordinates.
func (s *DefaultGeoService) GeocodeAddress(ctx context.Context, text string) (*GeocodeResult, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: empty address", ErrNotFound)
	}
	return s.Geocoder.Forward(ctx, text)
}

// ReverseGeocode resolves coordinates to a display address.
func (s *DefaultGeoService) ReverseGeocode(ctx context.Context, coords models.Coordinates) (*models.Location, error) {
	if err := coords.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCoordinates, err)
	}
	res, err := s.Geocoder.Reverse(ctx, coords)
	if err != nil {
		return nil, err
	}
	return &models.Location{
		Coordinates: coords,
		Address:     res.DisplayName,
	}, nil
}

// NearbySearch lists places matching query around center.
func (s *DefaultGeoService) NearbySearch(ctx context.Context, center models.Coordinates, query string, radiusKm float64) ([]Place, error) {
	if err := center.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCoordinates, err)
	}
	return s.Geocoder.Nearby(ctx, center, query, radiusKm)
}
