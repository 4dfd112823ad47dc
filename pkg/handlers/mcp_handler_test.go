package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/datavisiting/fdp-explorer/pkg/mcp"
	"github.com/datavisiting/fdp-explorer/pkg/mcp/tools"
	"github.com/datavisiting/fdp-explorer/pkg/models"
)

func newMCPTestMux(t *testing.T, listings *mockListings) *http.ServeMux {
	t.Helper()
	logger := zap.NewNop()

	mcpServer := mcp.NewServer("test", "test-version", logger)
	tools.RegisterHealthTool(mcpServer.MCP(), "test-version", []string{"https://fdp.example.org"})
	tools.RegisterDatasetTools(mcpServer.MCP(), &tools.DatasetToolDeps{
		Listings: listings,
		Client:   &mockFDPClient{},
		FDPURIs:  []string{"https://fdp.example.org"},
		Logger:   logger,
	})

	mux := http.NewServeMux()
	NewMCPHandler(mcpServer, logger).RegisterRoutes(mux)
	return mux
}

// postRPC sends one JSON-RPC message to /mcp and returns the decoded envelope.
func postRPC(t *testing.T, mux *http.ServeMux, body string) map[string]any {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var response map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, "2.0", response["jsonrpc"])
	return response
}

// toolText returns the text of the first content item of a tools/call result.
func toolText(t *testing.T, response map[string]any) string {
	t.Helper()

	result, ok := response["result"].(map[string]any)
	require.True(t, ok, "missing result in %v", response)
	content, ok := result["content"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, content)
	first, ok := content[0].(map[string]any)
	require.True(t, ok)
	text, _ := first["text"].(string)
	return text
}

func TestMCPHandler_ToolsList(t *testing.T) {
	mux := newMCPTestMux(t, &mockListings{})

	response := postRPC(t, mux, `{"jsonrpc":"2.0","method":"tools/list","id":1}`)
	assert.Equal(t, float64(1), response["id"])

	result := response["result"].(map[string]any)
	var names []string
	for _, tool := range result["tools"].([]any) {
		names = append(names, tool.(map[string]any)["name"].(string))
	}
	assert.ElementsMatch(t, []string{"health", "search_datasets", "list_themes", "fetch_fdp"}, names)
}

func TestMCPHandler_RejectsGet(t *testing.T) {
	mux := newMCPTestMux(t, &mockListings{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/mcp", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "POST", rec.Header().Get("Allow"))
}

func TestMCPHandler_HealthTool(t *testing.T) {
	mux := newMCPTestMux(t, &mockListings{})

	response := postRPC(t, mux, `{"jsonrpc":"2.0","method":"tools/call","params":{"name":"health"},"id":2}`)

	var health struct {
		Status   string `json:"status"`
		Version  string `json:"version"`
		FDPCount int    `json:"fdp_count"`
	}
	require.NoError(t, json.Unmarshal([]byte(toolText(t, response)), &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "test-version", health.Version)
	assert.Equal(t, 1, health.FDPCount)
}

func TestMCPHandler_SearchDatasetsOverHTTP(t *testing.T) {
	listings := &mockListings{datasets: []models.Dataset{
		{URI: "https://fdp.example.org/dataset/1", Title: "Rare disease registry", FDPTitle: "Example FDP"},
		{URI: "https://fdp.example.org/dataset/2", Title: "Biobank samples", FDPTitle: "Example FDP"},
	}}
	mux := newMCPTestMux(t, listings)

	response := postRPC(t, mux, `{"jsonrpc":"2.0","method":"tools/call","params":{"name":"search_datasets","arguments":{"query":"registry"}},"id":3}`)

	var found struct {
		Total    int `json:"total"`
		Datasets []struct {
			URI   string `json:"uri"`
			Title string `json:"title"`
		} `json:"datasets"`
	}
	require.NoError(t, json.Unmarshal([]byte(toolText(t, response)), &found))
	assert.Equal(t, 1, found.Total)
	require.Len(t, found.Datasets, 1)
	assert.Equal(t, "Rare disease registry", found.Datasets[0].Title)

	require.Len(t, listings.gets, 1)
	assert.Equal(t, []string{"https://fdp.example.org"}, listings.gets[0])
}
