package geo

import "errors"

var (
	// ErrGeocodeFailed indicates the external geocoding provider could not
	// be reached after the retry. Callers may present "try again".
	ErrGeocodeFailed = errors.New("geocoding provider unavailable")
	// ErrNotFound indicates the provider resolved nothing for the input.
	// Permanent; not retried.
	ErrNotFound = errors.New("no geocoding result")
	// ErrInvalidPostalCode indicates the digital address is malformed.
	ErrInvalidPostalCode = errors.New("invalid digital address")
	// ErrInvalidCoordinates indicates a latitude/longitude pair outside
	// the valid ranges.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	// ErrCoordinatesMismatch indicates supplied coordinates fall outside
	// the tolerance radius of the postal-code reference point.
	ErrCoordinatesMismatch = errors.New("coordinates do not match digital address")
)
