package providerRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"workhive/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// candidateDoc is the stored provider shape this repo cares about. Provider
// profiles keep a GeoJSON point so $geoNear can use the 2dsphere index.
type candidateDoc struct {
	ID                string          `bson:"id"`
	LocationGeo       models.GeoPoint `bson:"locationGeo"`
	ActiveServiceIDs  []string        `bson:"activeServiceIds"`
	CompanyTrained    bool            `bson:"companyTrained"`
	Rating            float64         `bson:"rating"`
	CompletedBookings int             `bson:"completedBookings"`
	Deleted           bool            `bson:"deleted"`
}

func (d candidateDoc) toCandidate() models.ProviderCandidate {
	coords, _ := models.CoordinatesFromGeoPoint(d.LocationGeo)
	return models.ProviderCandidate{
		ProviderID:        d.ID,
		Coordinates:       coords,
		ActiveServiceIDs:  d.ActiveServiceIDs,
		CompanyTrained:    d.CompanyTrained,
		Rating:            d.Rating,
		CompletedBookings: d.CompletedBookings,
		Deleted:           d.Deleted,
	}
}

// QueryNear returns non-deleted providers within the radius, nearest first.
func (r *MongoCandidateSource) QueryNear(ctx context.Context, criteria QueryNearCriteria) ([]models.ProviderCandidate, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := criteria.Center.Validate(); err != nil {
		return nil, fmt.Errorf("invalid search center: %w", err)
	}

	var pipeline mongo.Pipeline

	// $geoNear must come first to filter and sort by distance.
	pipeline = append(pipeline, bson.D{
		{Key: "$geoNear", Value: bson.D{
			{Key: "near", Value: bson.D{
				{Key: "type", Value: "Point"},
				{Key: "coordinates", Value: criteria.Center.GeoPoint().Coordinates},
			}},
			{Key: "distanceField", Value: "distance"},
			{Key: "spherical", Value: true},
			{Key: "maxDistance", Value: criteria.MaxDistanceKm * 1000},
		}},
	})

	matchFilter := bson.M{"deleted": false}
	if criteria.ServiceID != "" {
		matchFilter["activeServiceIds"] = criteria.ServiceID
	}
	pipeline = append(pipeline, bson.D{{Key: "$match", Value: matchFilter}})

	if criteria.Limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: criteria.Limit}})
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("candidate query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []candidateDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode candidates: %w", err)
	}

	candidates := make([]models.ProviderCandidate, 0, len(docs))
	for _, d := range docs {
		candidates = append(candidates, d.toCandidate())
	}
	return candidates, nil
}

// GetByID retrieves a single provider candidate.
func (r *MongoCandidateSource) GetByID(ctx context.Context, providerID string) (*models.ProviderCandidate, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var doc candidateDoc
	err := r.coll.FindOne(ctx, bson.M{"id": providerID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching provider %s: %w", providerID, err)
	}
	candidate := doc.toCandidate()
	return &candidate, nil
}
