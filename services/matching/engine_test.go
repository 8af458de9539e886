package matching

import (
	"context"
	"errors"
	"testing"

	providerRepo "workhive/database/repository/provider"
	"workhive/models"
	"workhive/services/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeCandidateSource serves a fixed candidate set, ignoring the geo query.
type fakeCandidateSource struct {
	candidates []models.ProviderCandidate
	err        error
}

func (f *fakeCandidateSource) QueryNear(_ context.Context, _ providerRepo.QueryNearCriteria) ([]models.ProviderCandidate, error) {
	return f.candidates, f.err
}

func (f *fakeCandidateSource) GetByID(_ context.Context, providerID string) (*models.ProviderCandidate, error) {
	for _, c := range f.candidates {
		if c.ProviderID == providerID {
			return &c, nil
		}
	}
	return nil, providerRepo.ErrNotFound
}

var taskOrigin = models.Coordinates{Latitude: 5.6037, Longitude: -0.1870}

// candidateAt places a provider roughly km kilometers north of the task.
func candidateAt(id string, km float64, services ...string) models.ProviderCandidate {
	if len(services) == 0 {
		services = []string{"cleaning"}
	}
	return models.ProviderCandidate{
		ProviderID:       id,
		Coordinates:      models.Coordinates{Latitude: taskOrigin.Latitude + km/111.19, Longitude: taskOrigin.Longitude},
		ActiveServiceIDs: services,
		Rating:           4.0,
	}
}

func newTestEngine(src *fakeCandidateSource) *DefaultEngine {
	return &DefaultEngine{
		Providers:            src,
		Geo:                  &geo.DefaultGeoService{},
		Logger:               zap.NewNop(),
		DefaultMaxDistanceKm: 25,
		DefaultLimit:         20,
	}
}

func testTask() *models.Task {
	return &models.Task{
		ID:         "task-1",
		CustomerID: "cust-1",
		Service:    models.ServiceRef{ID: "cleaning", Name: "Home Cleaning"},
		Location:   taskOrigin,
	}
}

func TestFindCandidatesLocationOnly(t *testing.T) {
	ctx := context.Background()

	t.Run("orders by distance ascending", func(t *testing.T) {
		src := &fakeCandidateSource{candidates: []models.ProviderCandidate{
			candidateAt("p-far", 15),
			candidateAt("p-near", 3),
			candidateAt("p-mid", 8),
		}}
		got, err := newTestEngine(src).FindCandidates(ctx, testTask(), Options{Strategy: models.StrategyLocationOnly})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "p-near", got[0].ProviderID)
		assert.Equal(t, "p-mid", got[1].ProviderID)
		assert.Equal(t, "p-far", got[2].ProviderID)
		assert.InDelta(t, 3, got[0].DistanceKm, 0.1)
	})

	t.Run("ties break on provider id", func(t *testing.T) {
		src := &fakeCandidateSource{candidates: []models.ProviderCandidate{
			candidateAt("p-b", 5),
			candidateAt("p-a", 5),
		}}
		got, err := newTestEngine(src).FindCandidates(ctx, testTask(), Options{Strategy: models.StrategyLocationOnly})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "p-a", got[0].ProviderID)
	})

	t.Run("drops candidates beyond the radius", func(t *testing.T) {
		src := &fakeCandidateSource{candidates: []models.ProviderCandidate{
			candidateAt("p-in", 4),
			candidateAt("p-out", 30),
		}}
		got, err := newTestEngine(src).FindCandidates(ctx, testTask(), Options{Strategy: models.StrategyLocationOnly})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "p-in", got[0].ProviderID)
	})

	t.Run("respects an explicit smaller radius", func(t *testing.T) {
		src := &fakeCandidateSource{candidates: []models.ProviderCandidate{
			candidateAt("p-in", 4),
			candidateAt("p-out", 10),
		}}
		got, err := newTestEngine(src).FindCandidates(ctx, testTask(), Options{MaxDistanceKm: 5})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "p-in", got[0].ProviderID)
	})

	t.Run("caps results at the limit", func(t *testing.T) {
		src := &fakeCandidateSource{}
		for i := 0; i < 30; i++ {
			src.candidates = append(src.candidates, candidateAt(string(rune('a'+i%26))+"-p", float64(i%20)+1))
		}
		e := newTestEngine(src)
		e.DefaultLimit = 5
		got, err := e.FindCandidates(ctx, testTask(), Options{})
		require.NoError(t, err)
		assert.Len(t, got, 5)
	})

	t.Run("candidate query error surfaces", func(t *testing.T) {
		src := &fakeCandidateSource{err: errors.New("mongo down")}
		_, err := newTestEngine(src).FindCandidates(ctx, testTask(), Options{})
		assert.Error(t, err)
	})

	t.Run("unknown strategy falls back to location only", func(t *testing.T) {
		src := &fakeCandidateSource{candidates: []models.ProviderCandidate{
			candidateAt("p-near", 2),
			candidateAt("p-far", 9),
		}}
		got, err := newTestEngine(src).FindCandidates(ctx, testTask(), Options{Strategy: "SOMETHING_ELSE"})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "p-near", got[0].ProviderID)
	})
}

func TestFindCandidatesEligibility(t *testing.T) {
	ctx := context.Background()

	t.Run("provider must offer the service", func(t *testing.T) {
		src := &fakeCandidateSource{candidates: []models.ProviderCandidate{
			candidateAt("p-plumber", 2, "plumbing"),
			candidateAt("p-cleaner", 6, "cleaning"),
		}}
		got, err := newTestEngine(src).FindCandidates(ctx, testTask(), Options{})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "p-cleaner", got[0].ProviderID)
	})

	t.Run("private service requires company-trained", func(t *testing.T) {
		trained := candidateAt("p-trained", 6)
		trained.CompanyTrained = true
		src := &fakeCandidateSource{candidates: []models.ProviderCandidate{
			candidateAt("p-untrained", 2),
			trained,
		}}
		task := testTask()
		task.Service.Private = true

		got, err := newTestEngine(src).FindCandidates(ctx, task, Options{})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "p-trained", got[0].ProviderID)
	})

	t.Run("soft-deleted providers never match", func(t *testing.T) {
		gone := candidateAt("p-gone", 1)
		gone.Deleted = true
		src := &fakeCandidateSource{candidates: []models.ProviderCandidate{gone}}

		got, err := newTestEngine(src).FindCandidates(ctx, testTask(), Options{})
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestFindCandidatesIntelligent(t *testing.T) {
	ctx := context.Background()

	t.Run("trust signals can beat raw proximity", func(t *testing.T) {
		veteran := candidateAt("p-veteran", 10)
		veteran.CompanyTrained = true
		veteran.CompletedBookings = 100
		veteran.Rating = 5

		rookie := candidateAt("p-rookie", 2)
		rookie.Rating = 0
		rookie.CompletedBookings = 0

		src := &fakeCandidateSource{candidates: []models.ProviderCandidate{rookie, veteran}}
		got, err := newTestEngine(src).FindCandidates(ctx, testTask(), Options{Strategy: models.StrategyIntelligent})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "p-veteran", got[0].ProviderID)
		assert.Greater(t, got[0].Score, got[1].Score)
	})

	t.Run("deterministic across runs", func(t *testing.T) {
		src := &fakeCandidateSource{candidates: []models.ProviderCandidate{
			candidateAt("p-1", 3), candidateAt("p-2", 3), candidateAt("p-3", 7),
		}}
		e := newTestEngine(src)
		first, err := e.FindCandidates(ctx, testTask(), Options{Strategy: models.StrategyIntelligent})
		require.NoError(t, err)
		for i := 0; i < 5; i++ {
			again, err := e.FindCandidates(ctx, testTask(), Options{Strategy: models.StrategyIntelligent})
			require.NoError(t, err)
			assert.Equal(t, first, again)
		}
	})

	t.Run("never includes an ineligible provider", func(t *testing.T) {
		gone := candidateAt("p-gone", 1)
		gone.Deleted = true
		gone.Rating = 5
		gone.CompletedBookings = 500
		src := &fakeCandidateSource{candidates: []models.ProviderCandidate{gone, candidateAt("p-ok", 8)}}

		got, err := newTestEngine(src).FindCandidates(ctx, testTask(), Options{Strategy: models.StrategyIntelligent})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "p-ok", got[0].ProviderID)
	})
}

func TestScoreCandidate(t *testing.T) {
	t.Run("perfect candidate approaches the maximum", func(t *testing.T) {
		c := models.MatchCandidate{DistanceKm: 0, Rating: 5, CompletedBookings: 100, CompanyTrained: true}
		assert.InDelta(t, 100, scoreCandidate(c, 25), 0.01)
	})

	t.Run("rating is clamped at five", func(t *testing.T) {
		inflated := models.MatchCandidate{Rating: 9}
		honest := models.MatchCandidate{Rating: 5}
		assert.Equal(t, scoreCandidate(honest, 25), scoreCandidate(inflated, 25))
	})

	t.Run("location score decays to zero at the radius", func(t *testing.T) {
		edge := models.MatchCandidate{DistanceKm: 25}
		assert.Zero(t, scoreCandidate(edge, 25))
	})

	t.Run("completed bookings saturate at one hundred", func(t *testing.T) {
		hundred := scoreCandidate(models.MatchCandidate{CompletedBookings: 100}, 25)
		thousand := scoreCandidate(models.MatchCandidate{CompletedBookings: 1000}, 25)
		assert.Equal(t, hundred, thousand)
		assert.InDelta(t, 20, hundred, 0.01)
	})

	t.Run("completed bookings use diminishing returns", func(t *testing.T) {
		ten := scoreCandidate(models.MatchCandidate{CompletedBookings: 10}, 25)
		hundred := scoreCandidate(models.MatchCandidate{CompletedBookings: 100}, 25)
		assert.Greater(t, hundred, ten)
		// Going 10 -> 100 gains less than 0 -> 10 did.
		zero := scoreCandidate(models.MatchCandidate{}, 25)
		assert.Less(t, hundred-ten, (ten-zero)*2)
	})
}
