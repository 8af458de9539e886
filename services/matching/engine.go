package matching

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	providerRepo "workhive/database/repository/provider"
	"workhive/models"
	"workhive/services/geo"
	"workhive/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// DefaultEngine implements Engine against a candidate source and the geo
// service.
type DefaultEngine struct {
	Providers providerRepo.CandidateSource
	Geo       geo.Service
	Cache     *redis.Client // optional; nil disables match-result caching
	Logger    *zap.Logger

	DefaultMaxDistanceKm float64
	DefaultLimit         int
	CacheTTL             time.Duration
}

// FindCandidates queries providers near the task, filters to eligible ones
// and ranks them with the requested strategy. Results are cached briefly
// keyed on the query inputs.
func (e *DefaultEngine) FindCandidates(ctx context.Context, task *models.Task, opts Options) ([]models.MatchCandidate, error) {
	if opts.MaxDistanceKm <= 0 {
		opts.MaxDistanceKm = e.DefaultMaxDistanceKm
	}
	if opts.Limit <= 0 {
		opts.Limit = e.DefaultLimit
	}
	if !opts.Strategy.Valid() {
		opts.Strategy = models.StrategyLocationOnly
	}

	cacheKey := e.cacheKey(task, opts)
	if cached, ok := e.fromCache(ctx, cacheKey); ok {
		return cached, nil
	}

	candidates, err := e.Providers.QueryNear(ctx, providerRepo.QueryNearCriteria{
		Center:        task.Location,
		MaxDistanceKm: opts.MaxDistanceKm,
		ServiceID:     task.Service.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("candidate query failed: %w", err)
	}

	eligible := make([]models.MatchCandidate, 0, len(candidates))
	for _, p := range candidates {
		if !e.eligible(p, task.Service) {
			continue
		}
		d := e.Geo.DistanceKm(task.Location, p.Coordinates)
		if d > opts.MaxDistanceKm {
			continue
		}
		eligible = append(eligible, models.MatchCandidate{
			ProviderID:        p.ProviderID,
			DistanceKm:        d,
			Rating:            p.Rating,
			CompletedBookings: p.CompletedBookings,
			CompanyTrained:    p.CompanyTrained,
		})
	}

	ranked := strategyFor(opts.Strategy).Rank(eligible, opts.MaxDistanceKm)
	if len(ranked) > opts.Limit {
		ranked = ranked[:opts.Limit]
	}

	e.toCache(ctx, cacheKey, ranked)
	return ranked, nil
}

// eligible applies the rules both strategies share: the provider must offer
// the service, a private service requires the company-trained flag, and a
// soft-deleted provider never matches.
func (e *DefaultEngine) eligible(p models.ProviderCandidate, service models.ServiceRef) bool {
	if p.Deleted {
		return false
	}
	if !p.OffersService(service.ID) {
		return false
	}
	if service.Private && !p.CompanyTrained {
		return false
	}
	return true
}

func (e *DefaultEngine) cacheKey(task *models.Task, opts Options) string {
	raw, err := json.Marshal(struct {
		Location models.Coordinates
		Service  string
		Private  bool
		Options  Options
	}{task.Location, task.Service.ID, task.Service.Private, opts})
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s%x", utils.MatchCachePrefix, raw)
}

func (e *DefaultEngine) fromCache(ctx context.Context, key string) ([]models.MatchCandidate, bool) {
	if e.Cache == nil || key == "" {
		return nil, false
	}
	cached, err := e.Cache.Get(ctx, key).Result()
	if err != nil || cached == "" {
		return nil, false
	}
	var out []models.MatchCandidate
	if err := json.Unmarshal([]byte(cached), &out); err != nil {
		return nil, false
	}
	return out, true
}

func (e *DefaultEngine) toCache(ctx context.Context, key string, candidates []models.MatchCandidate) {
	if e.Cache == nil || key == "" {
		return
	}
	data, err := json.Marshal(candidates)
	if err != nil {
		return
	}
	if err := e.Cache.Set(ctx, key, data, e.CacheTTL).Err(); err != nil && e.Logger != nil {
		e.Logger.Warn("failed to cache match result", zap.Error(err))
	}
}
