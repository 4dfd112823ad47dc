package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/datavisiting/fdp-explorer/pkg/logging"
)

// maxLoggedArgLen caps string tool arguments in log entries.
const maxLoggedArgLen = 200

// Outcomes of an MCP call as logged by MCPRequestLogger.
const (
	mcpOutcomeSuccess   = "success"
	mcpOutcomeRPCError  = "rpc_error"
	mcpOutcomeToolError = "tool_error"
	mcpOutcomeUnknown   = "unparsed"
)

// MCPRequestLogger returns middleware that logs one DEBUG entry per MCP
// JSON-RPC call once it completes: method, tool name, arguments with URIs
// sanitized, outcome and duration. Pass nil logger to disable logging.
func MCPRequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if logger == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bodyBytes, err := io.ReadAll(r.Body)
			if err != nil {
				logger.Error("Failed to read MCP request body", zap.Error(err))
				http.Error(w, "failed to read request body", http.StatusBadRequest)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))

			var call jsonRPCRequest
			_ = json.Unmarshal(bodyBytes, &call)

			recorder := &mcpResponseRecorder{ResponseWriter: w}
			start := time.Now()
			next.ServeHTTP(recorder, r)

			fields := []zap.Field{
				zap.String("method", call.Method),
				zap.Duration("duration", time.Since(start)),
			}
			if call.Params.Name != "" {
				fields = append(fields,
					zap.String("tool", call.Params.Name),
					zap.Any("arguments", sanitizeArguments(call.Params.Arguments)))
			}
			logger.Debug("MCP call", append(fields, classifyMCPResponse(recorder.body.Bytes())...)...)
		})
	}
}

// classifyMCPResponse returns the outcome field and, for JSON-RPC errors, the
// error code and message.
func classifyMCPResponse(body []byte) []zap.Field {
	var resp jsonRPCResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return []zap.Field{zap.String("outcome", mcpOutcomeUnknown)}
	}
	switch {
	case resp.Error != nil:
		return []zap.Field{
			zap.String("outcome", mcpOutcomeRPCError),
			zap.Int("error_code", resp.Error.Code),
			zap.String("error_message", resp.Error.Message),
		}
	case resp.Result.IsError:
		return []zap.Field{zap.String("outcome", mcpOutcomeToolError)}
	default:
		return []zap.Field{zap.String("outcome", mcpOutcomeSuccess)}
	}
}

type jsonRPCRequest struct {
	Method string `json:"method"`
	Params struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	} `json:"params"`
}

type jsonRPCResponse struct {
	Result struct {
		IsError bool `json:"isError"`
	} `json:"result"`
	Error *jsonRPCError `json:"error"`
}

type jsonRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// mcpResponseRecorder tees the response body into a buffer.
type mcpResponseRecorder struct {
	http.ResponseWriter
	body bytes.Buffer
}

func (r *mcpResponseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *mcpResponseRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// sanitizeArguments strips credentials from URI-valued arguments and
// truncates long strings.
func sanitizeArguments(args map[string]any) map[string]any {
	if args == nil {
		return nil
	}

	result := make(map[string]any, len(args))
	for k, v := range args {
		str, ok := v.(string)
		if !ok {
			result[k] = v
			continue
		}
		if strings.Contains(str, "://") {
			str = logging.SanitizeURL(str)
		}
		result[k] = logging.TruncateString(str, maxLoggedArgLen)
	}
	return result
}
