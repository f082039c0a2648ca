// Package geocode resolves street addresses to coordinates through the
// Google Geocoding API.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/freee021022/onconet/internal/config"
	"github.com/freee021022/onconet/pkg/metrics"
)

var (
	ErrMissingKey = errors.New("geocoding API key not configured")
	ErrNotFound   = errors.New("address not found")
	// ErrUnavailable is returned without calling upstream while the
	// breaker is open.
	ErrUnavailable = errors.New("geocoding service unavailable")
)

// abandonedError marks a lookup cut short by the caller's context. It is not
// held against the upstream by the breaker.
type abandonedError struct {
	err error
}

func (e abandonedError) Error() string { return e.err.Error() }
func (e abandonedError) Unwrap() error { return e.err }

type Result struct {
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	FormattedAddress string  `json:"formatted_address"`
}

// Geocoder is what the HTTP layer depends on.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*Result, error)
}

type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	cache   *cache.Cache
	breaker *gobreaker.CircuitBreaker
	metrics *metrics.Metrics
}

// NewClient builds a client from cfg. m may be nil.
func NewClient(cfg config.GeocodingConfig, m *metrics.Metrics) *Client {
	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		cache:   cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "geocoder",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			IsSuccessful: func(err error) bool {
				var abandoned abandonedError
				return err == nil || errors.As(err, &abandoned)
			},
		}),
		metrics: m,
	}
}

type apiResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

func cacheKey(address string) string {
	return strings.ToLower(strings.Join(strings.Fields(address), " "))
}

// Geocode returns the first match for address. Successful lookups are
// cached; misses are not.
func (c *Client) Geocode(ctx context.Context, address string) (*Result, error) {
	if c.apiKey == "" {
		return nil, ErrMissingKey
	}

	key := cacheKey(address)
	if v, ok := c.cache.Get(key); ok {
		c.metrics.ObserveGeocode("hit", time.Time{})
		r := v.(Result)
		return &r, nil
	}

	start := time.Now()
	v, err := c.breaker.Execute(func() (interface{}, error) {
		r, err := c.lookup(ctx, address)
		if err != nil && ctx.Err() != nil {
			return nil, abandonedError{ctx.Err()}
		}
		return r, err
	})
	var abandoned abandonedError
	switch {
	case errors.As(err, &abandoned):
		c.metrics.ObserveGeocode("canceled", start)
		return nil, abandoned.err
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		c.metrics.ObserveGeocode("open", time.Time{})
		return nil, ErrUnavailable
	case err != nil:
		c.metrics.ObserveGeocode("error", start)
		return nil, err
	}

	r, _ := v.(*Result)
	if r == nil {
		c.metrics.ObserveGeocode("not_found", start)
		return nil, ErrNotFound
	}
	c.metrics.ObserveGeocode("ok", start)
	c.cache.SetDefault(key, *r)
	return r, nil
}

// lookup performs one upstream call. An address with no match is reported
// as a nil result rather than an error so it does not count against the
// breaker.
func (c *Client) lookup(ctx context.Context, address string) (*Result, error) {
	q := url.Values{}
	q.Set("address", address)
	q.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocoding request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding API error: %d", resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode geocoding response: %w", err)
	}

	switch body.Status {
	case "OK":
		if len(body.Results) == 0 {
			return nil, nil
		}
		first := body.Results[0]
		return &Result{
			Lat:              first.Geometry.Location.Lat,
			Lng:              first.Geometry.Location.Lng,
			FormattedAddress: first.FormattedAddress,
		}, nil
	case "ZERO_RESULTS", "INVALID_REQUEST":
		zerolog.Ctx(ctx).Warn().Str("status", body.Status).Msg("geocoding found no match")
		return nil, nil
	default:
		return nil, fmt.Errorf("geocoding API status %s: %s", body.Status, body.ErrorMessage)
	}
}
