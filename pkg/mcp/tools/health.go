// Package tools provides the MCP tools of fdp-explorer.
package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type healthResult struct {
	Status   string   `json:"status"`
	Version  string   `json:"version"`
	FDPCount int      `json:"fdp_count"`
	FDPs     []string `json:"fdps,omitempty"`
}

// RegisterHealthTool adds the health tool. It reports the server version and
// the FDPs the dataset tools aggregate over; the URIs are only listed when
// include_fdps is set.
func RegisterHealthTool(s *server.MCPServer, version string, fdpURIs []string) {
	tool := mcp.NewTool(
		"health",
		mcp.WithDescription("Returns server health status, version and the configured FAIR Data Points"),
		mcp.WithBoolean("include_fdps", mcp.Description("List the FDP URIs searched by the dataset tools")),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := healthResult{Status: "ok", Version: version, FDPCount: len(fdpURIs)}
		if req.GetBool("include_fdps", false) {
			result.FDPs = append([]string{}, fdpURIs...)
		}
		return jsonResult(result)
	})
}
