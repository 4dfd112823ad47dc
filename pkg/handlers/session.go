package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/datavisiting/fdp-explorer/pkg/session"
)

// SessionStore loads and saves per-browser state.
type SessionStore interface {
	Load(r *http.Request) (*session.State, error)
	Save(w http.ResponseWriter, r *http.Request, st *session.State) error
}

var _ SessionStore = (*session.Manager)(nil)

// loadState loads the session state, writing a 500 response on failure.
func loadState(w http.ResponseWriter, r *http.Request, store SessionStore, logger *zap.Logger) (*session.State, bool) {
	st, err := store.Load(r)
	if err != nil {
		logger.Error("Failed to load session", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "session_error", "Failed to load session", logger)
		return nil, false
	}
	return st, true
}

// saveState saves the session state, writing a 500 response on failure.
// It must be called before anything is written to w.
func saveState(w http.ResponseWriter, r *http.Request, store SessionStore, st *session.State, logger *zap.Logger) bool {
	if err := store.Save(w, r, st); err != nil {
		logger.Error("Failed to save session", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "session_error", "Failed to save session", logger)
		return false
	}
	return true
}
