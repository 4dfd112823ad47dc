package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/datavisiting/fdp-explorer/pkg/fdp"
	"github.com/datavisiting/fdp-explorer/pkg/models"
	"github.com/datavisiting/fdp-explorer/pkg/session"
)

// mockFDPClient serves canned metadata. Unknown URIs fail with err, or with a
// connection error when err is nil.
type mockFDPClient struct {
	fdps     map[string]*models.FairDataPoint
	indexes  map[string][]models.FairDataPoint
	catalogs map[string]*models.Catalog
	datasets map[string]*models.Dataset
	err      error
}

func (m *mockFDPClient) fail(uri string) error {
	if m.err != nil {
		return m.err
	}
	return &fdp.FetchError{Kind: fdp.KindConnection, URI: uri}
}

func (m *mockFDPClient) FetchFDP(ctx context.Context, uri string) (*models.FairDataPoint, error) {
	if f, ok := m.fdps[fdp.NormalizeURI(uri)]; ok {
		cp := *f
		return &cp, nil
	}
	return nil, m.fail(uri)
}

func (m *mockFDPClient) FetchCatalogWithDatasets(ctx context.Context, catalogURI, fdpURI, fdpTitle string) ([]models.Dataset, error) {
	return nil, m.fail(catalogURI)
}

func (m *mockFDPClient) FetchAllFromIndex(ctx context.Context, uri string) ([]models.FairDataPoint, error) {
	if all, ok := m.indexes[fdp.NormalizeURI(uri)]; ok {
		return all, nil
	}
	return nil, m.fail(uri)
}

func (m *mockFDPClient) FetchCatalog(ctx context.Context, uri, fdpURI string) (*models.Catalog, error) {
	if c, ok := m.catalogs[uri]; ok {
		return c, nil
	}
	return nil, m.fail(uri)
}

func (m *mockFDPClient) FetchDataset(ctx context.Context, uri, catalogURI, fdpURI, fdpTitle string) (*models.Dataset, error) {
	if d, ok := m.datasets[uri]; ok {
		return d, nil
	}
	return nil, m.fail(uri)
}

// mockListings serves a fixed listing and records invalidations.
type mockListings struct {
	mu          sync.Mutex
	datasets    []models.Dataset
	gets        [][]string
	refreshes   int
	invalidated [][]string
}

func (m *mockListings) Get(ctx context.Context, fdpURIs []string) []models.Dataset {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets = append(m.gets, fdpURIs)
	return m.datasets
}

func (m *mockListings) Cached(ctx context.Context, fdpURIs []string) ([]models.Dataset, bool) {
	return m.datasets, m.datasets != nil
}

func (m *mockListings) Refresh(ctx context.Context, fdpURIs []string) []models.Dataset {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshes++
	return m.datasets
}

func (m *mockListings) Find(ctx context.Context, fdpURIs []string, hash string) (*models.Dataset, bool) {
	for _, d := range m.datasets {
		if models.URIHash(d.URI) == hash {
			d := d
			return &d, true
		}
	}
	return nil, false
}

func (m *mockListings) Invalidate(ctx context.Context, fdpURIs []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidated = append(m.invalidated, fdpURIs)
}

func newTestSessions(t *testing.T, initial func() session.State) *session.Manager {
	t.Helper()
	mgr, err := session.NewManager(session.Options{
		Secret:    "test-secret",
		StorePath: t.TempDir(),
		MaxAge:    3600,
	}, initial)
	require.NoError(t, err)
	return mgr
}

// browser sends requests to a mux and carries cookies between them.
type browser struct {
	t       *testing.T
	mux     *http.ServeMux
	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T, mux *http.ServeMux) *browser {
	return &browser{t: t, mux: mux, cookies: make(map[string]*http.Cookie)}
}

func (b *browser) do(method, path string, body any) *httptest.ResponseRecorder {
	b.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(b.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range b.cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	b.mux.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		b.cookies[c.Name] = c
	}
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

// decodeData unmarshals the data of a successful ApiResponse into out.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	require.True(t, env.Success, rec.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, out))
}

// decodeError returns the error code of an error response.
func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body["error"]
}
