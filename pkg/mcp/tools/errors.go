package tools

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/datavisiting/fdp-explorer/pkg/fdp"
	"github.com/datavisiting/fdp-explorer/pkg/logging"
)

// ErrorResponse represents a structured error in tool results.
// Tool-level failures are returned as successful MCP responses carrying this
// payload, with IsError set, so the client sees the details.
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// NewErrorResult creates a tool result containing a structured error.
// Use this for errors the caller can act on (bad parameters, unreachable
// FDP). Internal failures should still return Go errors.
func NewErrorResult(code, message string) *mcp.CallToolResult {
	return NewErrorResultWithDetails(code, message, nil)
}

// NewErrorResultWithDetails creates an error result with additional context.
func NewErrorResultWithDetails(code, message string, details any) *mcp.CallToolResult {
	resp := ErrorResponse{
		Error:   true,
		Code:    code,
		Message: message,
		Details: details,
	}
	jsonBytes, _ := json.Marshal(resp)
	result := mcp.NewToolResultText(string(jsonBytes))
	result.IsError = true
	return result
}

// NewFetchErrorResult converts a failed FDP fetch into an error result. The
// code is "fdp_<kind>", e.g. fdp_timeout.
func NewFetchErrorResult(err error) *mcp.CallToolResult {
	code := "fdp_error"
	if kind := fdp.KindOf(err); kind != "" {
		code = "fdp_" + string(kind)
	}
	return NewErrorResult(code, logging.SanitizeText(err.Error()))
}
