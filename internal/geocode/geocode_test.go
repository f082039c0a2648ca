package geocode

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freee021022/onconet/internal/config"
)

const okBody = `{
  "status": "OK",
  "results": [{
    "formatted_address": "Via Roma, 1, 00100 Roma RM, Italy",
    "geometry": {"location": {"lat": 41.9, "lng": 12.49}}
  }]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(config.GeocodingConfig{
		APIKey:   "test-key",
		BaseURL:  srv.URL,
		Timeout:  time.Second,
		CacheTTL: time.Minute,
	}, nil)
	return c, &calls
}

func TestGeocodeOK(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Via Roma 1", r.URL.Query().Get("address"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		fmt.Fprint(w, okBody)
	})

	r, err := c.Geocode(context.Background(), "Via Roma 1")
	require.NoError(t, err)
	assert.InDelta(t, 41.9, r.Lat, 0.0001)
	assert.InDelta(t, 12.49, r.Lng, 0.0001)
	assert.Equal(t, "Via Roma, 1, 00100 Roma RM, Italy", r.FormattedAddress)

	// Second lookup with different spacing and case is served from cache.
	_, err = c.Geocode(context.Background(), "  via roma   1 ")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestGeocodeZeroResults(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"ZERO_RESULTS","results":[]}`)
	})

	_, err := c.Geocode(context.Background(), "nowhere")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGeocodeUpstreamError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.Geocode(context.Background(), "Via Roma 1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "502")
}

func TestGeocodeMissingKey(t *testing.T) {
	c := NewClient(config.GeocodingConfig{BaseURL: "http://127.0.0.1:0", Timeout: time.Second, CacheTTL: time.Minute}, nil)
	_, err := c.Geocode(context.Background(), "Via Roma 1")
	assert.ErrorIs(t, err, ErrMissingKey)
}

func TestGeocodeBreakerOpens(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"REQUEST_DENIED","error_message":"bad key"}`)
	})

	for i := 0; i < 5; i++ {
		_, err := c.Geocode(context.Background(), fmt.Sprintf("addr %d", i))
		require.Error(t, err)
	}
	_, err := c.Geocode(context.Background(), "addr 6")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(5), atomic.LoadInt32(calls))
}

func TestGeocodeCanceledCallerDoesNotTripBreaker(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, okBody)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 6; i++ {
		_, err := c.Geocode(ctx, fmt.Sprintf("addr %d", i))
		assert.ErrorIs(t, err, context.Canceled)
	}

	r, err := c.Geocode(context.Background(), "Via Roma 1")
	require.NoError(t, err)
	assert.Equal(t, 41.9, r.Lat)
	assert.Equal(t, gobreaker.StateClosed, c.breaker.State())
}
