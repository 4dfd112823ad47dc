package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datavisiting/fdp-explorer/pkg/rdf"
)

func TestObserveFetch(t *testing.T) {
	m := New()

	m.ObserveFetch("ok", rdf.Turtle, 120*time.Millisecond)
	m.ObserveFetch("ok", rdf.Turtle, 80*time.Millisecond)
	m.ObserveFetch("timeout", "", 30*time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.fetchTotal.WithLabelValues("ok", "turtle")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetchTotal.WithLabelValues("timeout", "none")))
}

func TestObserveAggregationAndCache(t *testing.T) {
	m := New()

	m.ObserveAggregation(42, time.Second)
	m.ObserveCache(CacheHit)
	m.ObserveCache(CacheMiss)
	m.ObserveCache(CacheHit)

	assert.Equal(t, 42.0, testutil.ToFloat64(m.aggregatedDatasets))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheRequests.WithLabelValues(CacheHit)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheRequests.WithLabelValues(CacheMiss)))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveFetch("ok", rdf.JSONLD, time.Millisecond)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `fdp_explorer_fetch_requests_total{format="json-ld",outcome="ok"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
