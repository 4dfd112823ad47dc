package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/datavisiting/fdp-explorer/pkg/fdp"
)

// ApiResponse is the envelope of every successful JSON API response.
type ApiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// User-facing messages for failed FDP fetches.
const (
	msgFDPUnreachable  = "Could not connect to the FAIR Data Point. Please check the URL."
	msgFDPParseFailed  = "Could not parse the FDP metadata. The endpoint may not be a valid FDP."
	msgFDPTimeout      = "Request timed out. Please try again."
	msgFDPFetchFailed  = "Failed to fetch FDP metadata."
	errCodeUnreachable = "fdp_unreachable"
	errCodeParseFailed = "fdp_parse_failed"
	errCodeTimeout     = "fdp_timeout"
)

// fetchErrorStatus maps a fetch failure to its HTTP status, error code and message.
func fetchErrorStatus(err error) (int, string, string) {
	switch fdp.KindOf(err) {
	case fdp.KindConnection:
		return http.StatusBadGateway, errCodeUnreachable, msgFDPUnreachable
	case fdp.KindParse:
		return http.StatusUnprocessableEntity, errCodeParseFailed, msgFDPParseFailed
	case fdp.KindTimeout:
		return http.StatusGatewayTimeout, errCodeTimeout, msgFDPTimeout
	default:
		return http.StatusInternalServerError, "fdp_fetch_failed", msgFDPFetchFailed
	}
}

// fetchErrorResponse writes the error response for a failed FDP fetch.
func fetchErrorResponse(w http.ResponseWriter, err error, logger *zap.Logger) {
	status, code, message := fetchErrorStatus(err)
	if err := ErrorResponse(w, status, code, message); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}

// writeError writes an error response, logging encoding failures.
func writeError(w http.ResponseWriter, status int, code, message string, logger *zap.Logger) {
	if err := ErrorResponse(w, status, code, message); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}

// writeData writes data in a successful ApiResponse envelope.
func writeData(w http.ResponseWriter, status int, data any, logger *zap.Logger) {
	if err := WriteJSON(w, status, ApiResponse{Success: true, Data: data}); err != nil {
		logger.Error("Failed to write response", zap.Error(err))
	}
}
