package handlers

import (
	"encoding/hex"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

// uriHashLen is the length of a hex MD5 URI hash.
const uriHashLen = 32

// ParseURIHash extracts and validates the URI hash from the request path.
// Returns the hash and true on success, or "" and false on error
// (after writing an error response).
// Expects path parameter: hash
func ParseURIHash(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (string, bool) {
	hash := r.PathValue("hash")
	if len(hash) != uriHashLen {
		writeError(w, http.StatusBadRequest, "invalid_hash", "Invalid identifier format", logger)
		return "", false
	}
	if _, err := hex.DecodeString(hash); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_hash", "Invalid identifier format", logger)
		return "", false
	}
	return hash, true
}

// queryInt returns the integer query parameter name, or def when it is
// missing or not a number.
func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
