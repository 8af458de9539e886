package matching

import (
	"math"
	"sort"

	"workhive/models"
)

// Strategy ranks an already-eligible candidate set. Implementations must be
// deterministic for identical inputs.
type Strategy interface {
	Name() models.MatchingStrategy
	Rank(candidates []models.MatchCandidate, maxDistanceKm float64) []models.MatchCandidate
}

func strategyFor(name models.MatchingStrategy) Strategy {
	if name == models.StrategyIntelligent {
		return intelligentStrategy{}
	}
	return locationOnlyStrategy{}
}

// locationOnlyStrategy orders candidates ascending by distance; ties break
// on provider id so identical inputs always produce identical output.
type locationOnlyStrategy struct{}

func (locationOnlyStrategy) Name() models.MatchingStrategy { return models.StrategyLocationOnly }

func (locationOnlyStrategy) Rank(candidates []models.MatchCandidate, _ float64) []models.MatchCandidate {
	ranked := append([]models.MatchCandidate(nil), candidates...)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].DistanceKm != ranked[j].DistanceKm {
			return ranked[i].DistanceKm < ranked[j].DistanceKm
		}
		return ranked[i].ProviderID < ranked[j].ProviderID
	})
	return ranked
}

// intelligentStrategy combines proximity with trust signals. Scoring
// constants mirror the relative weights used across the platform: location
// dominates, then trained status, track record and rating.
type intelligentStrategy struct{}

const (
	maxLocationPoints = 45.0
	trainedBonus      = 20.0
	maxCompletedPts   = 20.0
	maxRatingPts      = 15.0
)

func (intelligentStrategy) Name() models.MatchingStrategy { return models.StrategyIntelligent }

func (intelligentStrategy) Rank(candidates []models.MatchCandidate, maxDistanceKm float64) []models.MatchCandidate {
	ranked := append([]models.MatchCandidate(nil), candidates...)
	for i := range ranked {
		ranked[i].Score = scoreCandidate(ranked[i], maxDistanceKm)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].ProviderID < ranked[j].ProviderID
	})
	return ranked
}

func scoreCandidate(c models.MatchCandidate, maxDistanceKm float64) float64 {
	locScore := 0.0
	if maxDistanceKm > 0 && c.DistanceKm < maxDistanceKm {
		locScore = maxLocationPoints * (1 - c.DistanceKm/maxDistanceKm)
	}

	var trainedScore float64
	if c.CompanyTrained {
		trainedScore = trainedBonus
	}

	completed := c.CompletedBookings
	if completed > 100 {
		completed = 100
	}
	completedScore := math.Log10(float64(completed+1)) * maxCompletedPts / math.Log10(101)

	rating := c.Rating
	if rating > 5 {
		rating = 5
	}
	ratingScore := (rating / 5) * maxRatingPts

	return locScore + trainedScore + completedScore + ratingScore
}
