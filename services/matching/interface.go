package matching

import (
	"context"

	"workhive/models"
)

// Options tunes one matching run. Zero values fall back to the engine's
// configured defaults.
type Options struct {
	Strategy      models.MatchingStrategy
	MaxDistanceKm float64
	Limit         int
}

// Engine computes a ranked candidate list for a task. An empty list is a
// normal outcome, not an error; callers decide whether it means FLOATING.
type Engine interface {
	FindCandidates(ctx context.Context, task *models.Task, opts Options) ([]models.MatchCandidate, error)
}
