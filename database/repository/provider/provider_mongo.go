package providerRepo

import (
	"workhive/database"

	"go.mongodb.org/mongo-driver/mongo"
)

// MongoCandidateSource is the MongoDB-backed CandidateSource. Provider
// documents are owned by the external profile subsystem; this repo only
// projects the fields matching needs.
type MongoCandidateSource struct {
	coll *mongo.Collection
}

// NewMongoCandidateSource creates a source over the "providers" collection.
func NewMongoCandidateSource() *MongoCandidateSource {
	return &MongoCandidateSource{
		coll: database.DB().Collection("providers"),
	}
}
