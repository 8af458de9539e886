package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"workhive/models"
	"workhive/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Geocoder is a thin client for the external geocoding provider (Google
// Maps-shaped API). Every call carries a bounded timeout and exactly one
// retry on transient failure; permanent failures surface immediately.
type Geocoder struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Cache      *redis.Client // optional; nil disables response caching
	Timeout    time.Duration
	Logger     *zap.Logger
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Name             string `json:"name"`
		Vicinity         string `json:"vicinity"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Forward resolves text (a free address or a digital address code) to
// coordinates.
func (g *Geocoder) Forward(ctx context.Context, text string) (*GeocodeResult, error) {
	endpoint := fmt.Sprintf("%s/geocode/json?address=%s&key=%s",
		g.BaseURL, url.QueryEscape(text), g.APIKey)

	var resp geocodeResponse
	if err := g.get(ctx, "fwd:"+strings.ToLower(text), endpoint, &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("%w for %q", ErrNotFound, text)
	}

	top := resp.Results[0]
	return &GeocodeResult{
		Coordinates: models.Coordinates{
			Latitude:  top.Geometry.Location.Lat,
			Longitude: top.Geometry.Location.Lng,
		},
		DisplayName: top.FormattedAddress,
	}, nil
}

// Reverse resolves coordinates to a display address.
func (g *Geocoder) Reverse(ctx context.Context, coords models.Coordinates) (*GeocodeResult, error) {
	latlng := fmt.Sprintf("%.6f,%.6f", coords.Latitude, coords.Longitude)
	endpoint := fmt.Sprintf("%s/geocode/json?latlng=%s&key=%s", g.BaseURL, latlng, g.APIKey)

	var resp geocodeResponse
	if err := g.get(ctx, "rev:"+latlng, endpoint, &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNotFound, latlng)
	}

	return &GeocodeResult{
		Coordinates: coords,
		DisplayName: resp.Results[0].FormattedAddress,
	}, nil
}

// Nearby lists places matching query within radiusKm of center.
func (g *Geocoder) Nearby(ctx context.Context, center models.Coordinates, query string, radiusKm float64) ([]Place, error) {
	location := fmt.Sprintf("%.6f,%.6f", center.Latitude, center.Longitude)
	endpoint := fmt.Sprintf("%s/place/nearbysearch/json?location=%s&radius=%.0f&keyword=%s&key=%s",
		g.BaseURL, location, radiusKm*1000, url.QueryEscape(query), g.APIKey)

	cacheKey := fmt.Sprintf("near:%s:%s:%.0f", location, strings.ToLower(query), radiusKm)
	var resp geocodeResponse
	if err := g.get(ctx, cacheKey, endpoint, &resp); err != nil {
		return nil, err
	}

	places := make([]Place, 0, len(resp.Results))
	for _, r := range resp.Results {
		name := r.Name
		if name == "" {
			name = r.FormattedAddress
		}
		places = append(places, Place{
			Name:    name,
			Address: r.Vicinity,
			Coordinates: models.Coordinates{
				Latitude:  r.Geometry.Location.Lat,
				Longitude: r.Geometry.Location.Lng,
			},
		})
	}
	return places, nil
}

// get fetches endpoint into out, consulting the Redis cache first. Transient
// failures (network errors, timeouts, 5xx) are retried once; everything else
// surfaces immediately.
func (g *Geocoder) get(ctx context.Context, cacheKey, endpoint string, out *geocodeResponse) error {
	key := utils.GeoCachePrefix + cacheKey

	if g.Cache != nil {
		if cached, err := g.Cache.Get(ctx, key).Result(); err == nil && cached != "" {
			if err := json.Unmarshal([]byte(cached), out); err == nil {
				return nil
			}
			// Corrupt cache entry falls through to re-fetch.
		}
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		err := g.fetch(ctx, endpoint, out)
		if err == nil {
			g.store(ctx, key, out)
			return nil
		}
		if !isTransient(err) {
			return err
		}
		lastErr = err
		if g.Logger != nil {
			g.Logger.Warn("geocoding call failed, retrying",
				zap.Int("attempt", attempt+1), zap.Error(err))
		}
	}
	return fmt.Errorf("%w: %v", ErrGeocodeFailed, lastErr)
}

func (g *Geocoder) fetch(ctx context.Context, endpoint string, out *geocodeResponse) error {
	reqCtx, cancel := context.WithTimeout(ctx, g.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build geocoding request: %w", err)
	}

	resp, err := g.httpClient().Do(req)
	if err != nil {
		return &transientError{err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return &transientError{fmt.Errorf("provider returned status %d", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("geocoding provider returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode geocoding response: %w", err)
	}
	if out.Status != "" && out.Status != "OK" && out.Status != "ZERO_RESULTS" {
		return fmt.Errorf("geocoding provider status %q", out.Status)
	}
	return nil
}

func (g *Geocoder) store(ctx context.Context, key string, resp *geocodeResponse) {
	if g.Cache == nil {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	g.Cache.Set(ctx, key, data, utils.GeoCacheTTL)
}

func (g *Geocoder) httpClient() *http.Client {
	if g.HTTPClient != nil {
		return g.HTTPClient
	}
	return http.DefaultClient
}

// transientError marks failures worth one retry.
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func isTransient(err error) bool {
	var te *transientError
	if errors.As(err, &te) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
