package fdp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/datavisiting/fdp-explorer/pkg/rdf"
)

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
	formats  []rdf.Format
}

func (o *recordingObserver) ObserveFetch(outcome string, format rdf.Format, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
	o.formats = append(o.formats, format)
}

func TestFetcher_TurtleWithAcceptHeader(t *testing.T) {
	var gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "text/turtle")
		_, _ = w.Write([]byte(`<https://x.org/a> <http://purl.org/dc/terms/title> "A" .`))
	}))
	defer server.Close()

	obs := &recordingObserver{}
	f := NewFetcher(Options{Observer: obs}, zap.NewNop())

	g, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, 1, g.Len())
	assert.Equal(t, AcceptHeader, gotAccept)
	assert.Equal(t, []string{OutcomeOK}, obs.outcomes)
	assert.Equal(t, []rdf.Format{rdf.Turtle}, obs.formats)
}

func TestFetcher_JSONLDByContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/ld+json")
		_, _ = w.Write([]byte(`{"@id": "https://x.org/a", "http://purl.org/dc/terms/title": "A"}`))
	}))
	defer server.Close()

	f := NewFetcher(Options{}, zap.NewNop())
	g, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	titles := g.Objects(rdf.IRI("https://x.org/a"), "http://purl.org/dc/terms/title")
	require.Len(t, titles, 1)
	assert.Equal(t, "A", titles[0].Value)
}

func TestFetcher_MissingContentTypeDefaultsToTurtle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Content-Type"] = nil
		_, _ = w.Write([]byte(`<https://x.org/a> <http://purl.org/dc/terms/title> "A" .`))
	}))
	defer server.Close()

	f := NewFetcher(Options{}, zap.NewNop())
	g, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, 1, g.Len())
}

func TestFetcher_NonSuccessStatusIsConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	obs := &recordingObserver{}
	f := NewFetcher(Options{Observer: obs}, zap.NewNop())
	_, err := f.Fetch(context.Background(), server.URL)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnection)
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusNotFound, fe.StatusCode)
	assert.Contains(t, err.Error(), "404")
	assert.Equal(t, []string{string(KindConnection)}, obs.outcomes)
}

func TestFetcher_UnparsableBodyIsParseError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/turtle")
		_, _ = w.Write([]byte(`this is not turtle <<<`))
	}))
	defer server.Close()

	f := NewFetcher(Options{}, zap.NewNop())
	_, err := f.Fetch(context.Background(), server.URL)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)
}

func TestFetcher_SlowServerIsTimeoutError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	f := NewFetcher(Options{Timeout: 50 * time.Millisecond}, zap.NewNop())
	_, err := f.Fetch(context.Background(), server.URL)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Contains(t, err.Error(), "timed out")
}

func TestFetcher_UnreachableHostIsConnectionError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	f := NewFetcher(Options{}, zap.NewNop())
	_, err := f.Fetch(context.Background(), url)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnection)
	assert.Contains(t, err.Error(), "Could not connect to")
}

func TestFetcher_RetriesServerErrors(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/turtle")
		_, _ = w.Write([]byte(`<https://x.org/a> <http://purl.org/dc/terms/title> "A" .`))
	}))
	defer server.Close()

	f := NewFetcher(Options{MaxRetries: 1}, zap.NewNop())
	_, err := f.Fetch(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestFetcher_NoRetryByDefault(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	f := NewFetcher(Options{}, zap.NewNop())
	_, err := f.Fetch(context.Background(), server.URL)

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestFetcher_SkipTLSVerify(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/turtle")
		_, _ = w.Write([]byte(`<https://x.org/a> <http://purl.org/dc/terms/title> "A" .`))
	}))
	defer server.Close()

	strict := NewFetcher(Options{}, zap.NewNop())
	_, err := strict.Fetch(context.Background(), server.URL)
	assert.ErrorIs(t, err, ErrConnection)

	lenient := NewFetcher(Options{SkipTLSVerify: true}, zap.NewNop())
	_, err = lenient.Fetch(context.Background(), server.URL)
	assert.NoError(t, err)
}

// resetInsecureWarning lets a test observe the once-per-process warning.
func resetInsecureWarning(t *testing.T) {
	t.Helper()
	insecureWarning = sync.Once{}
	t.Cleanup(func() { insecureWarning = sync.Once{} })
}

func TestFetcher_InsecureWarningLoggedOnce(t *testing.T) {
	resetInsecureWarning(t)
	core, logs := observer.New(zap.WarnLevel)
	logger := zap.New(core)

	NewFetcher(Options{}, logger)
	assert.Equal(t, 0, logs.Len())

	NewFetcher(Options{SkipTLSVerify: true}, logger)
	NewFetcher(Options{SkipTLSVerify: true}, logger)

	warnings := logs.FilterMessage("TLS certificate verification is disabled for FAIR Data Point requests")
	require.Equal(t, 1, warnings.Len())
	assert.Equal(t, zap.WarnLevel, warnings.All()[0].Level)
}

func TestFetcher_RateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/turtle")
		_, _ = w.Write([]byte(`<https://x.org/a> <http://purl.org/dc/terms/title> "A" .`))
	}))
	defer server.Close()

	f := NewFetcher(Options{Timeout: 5 * time.Second, RateLimit: 20}, zap.NewNop())

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := f.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
	}
	// Burst of one, then one request every 50ms.
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestFetcher_RateLimitHonoursContext(t *testing.T) {
	f := NewFetcher(Options{RateLimit: 0.001}, zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// The first request takes the burst token without touching the network.
	f.limiter.Allow()

	_, err := f.Fetch(ctx, "http://127.0.0.1:1/")
	require.Error(t, err)
	assert.NotEqual(t, ErrorKind(""), KindOf(err))
}
