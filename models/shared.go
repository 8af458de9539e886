package models

import "fmt"

// Coordinates is a plain latitude/longitude pair. It is a value type, never
// mutated after construction.
type Coordinates struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
}

// Validate checks that the pair lies within the valid geographic range.
func (c Coordinates) Validate() error {
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("latitude %f out of range [-90, 90]", c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("longitude %f out of range [-180, 180]", c.Longitude)
	}
	return nil
}

// GeoPoint represents a GeoJSON Point.
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`               // Always "Point"
	Coordinates []float64 `bson:"coordinates" json:"coordinates"` // [longitude, latitude]
}

// GeoPoint converts the pair to its GeoJSON representation ([lng, lat] order).
func (c Coordinates) GeoPoint() GeoPoint {
	return GeoPoint{
		Type:        "Point",
		Coordinates: []float64{c.Longitude, c.Latitude},
	}
}

// CoordinatesFromGeoPoint converts a GeoJSON point back to a Coordinates
// pair. Returns false when the point does not carry two coordinates.
func CoordinatesFromGeoPoint(p GeoPoint) (Coordinates, bool) {
	if len(p.Coordinates) < 2 {
		return Coordinates{}, false
	}
	return Coordinates{Latitude: p.Coordinates[1], Longitude: p.Coordinates[0]}, true
}

// Location is the canonical resolved address record produced by the geo
// service: a Ghana Post GPS digital address plus its resolved coordinates.
type Location struct {
	PostalCode  string      `bson:"postalCode" json:"postalCode"`
	Coordinates Coordinates `bson:"coordinates" json:"coordinates"`
	Address     string      `bson:"address" json:"address,omitempty"`
	Landmark    string      `bson:"landmark,omitempty" json:"landmark,omitempty"`
}

// ServiceRef identifies the category/service a task asks for. Private
// services are restricted to company-trained providers.
type ServiceRef struct {
	ID      string `bson:"id" json:"id"`
	Name    string `bson:"name" json:"name,omitempty"`
	Private bool   `bson:"private,omitempty" json:"private,omitempty"`
}
