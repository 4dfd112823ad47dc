// Package session keeps per-browser state: the configured FDPs, the request
// basket and the most recently composed request.
package session

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/sessions"

	"github.com/datavisiting/fdp-explorer/pkg/models"
)

// Name is the session cookie name.
const Name = "fdp-explorer"

// stateKey is the session value holding the JSON-encoded State.
const stateKey = "state"

// State is everything the explorer remembers for one browser.
type State struct {
	FDPs           []models.FairDataPoint `json:"fdps"`
	Basket         []models.BasketItem    `json:"basket"`
	ComposedEmails []models.ComposedEmail `json:"composed_emails,omitempty"`
	DataRequest    *models.DataRequest    `json:"data_request,omitempty"`
}

// FDPURIs returns the URIs of the configured FDPs in the order they were added.
func (s *State) FDPURIs() []string {
	uris := make([]string, len(s.FDPs))
	for i, f := range s.FDPs {
		uris[i] = f.URI
	}
	return uris
}

// FindFDP returns the index of the FDP whose URI hashes to hash, or -1.
func (s *State) FindFDP(hash string) int {
	for i, f := range s.FDPs {
		if models.URIHash(f.URI) == hash {
			return i
		}
	}
	return -1
}

// HasFDP reports whether an FDP with this URI is configured.
func (s *State) HasFDP(uri string) bool {
	return s.FindFDP(models.URIHash(uri)) >= 0
}

// AddFDP appends fdp unless its URI is already present. It reports whether
// the FDP was added.
func (s *State) AddFDP(fdp models.FairDataPoint) bool {
	if s.HasFDP(fdp.URI) {
		return false
	}
	s.FDPs = append(s.FDPs, fdp)
	return true
}

// RemoveFDP removes the FDP with the given hash and returns it.
func (s *State) RemoveFDP(hash string) (models.FairDataPoint, bool) {
	i := s.FindFDP(hash)
	if i < 0 {
		return models.FairDataPoint{}, false
	}
	removed := s.FDPs[i]
	s.FDPs = append(s.FDPs[:i], s.FDPs[i+1:]...)
	return removed, true
}

// InBasket reports whether the dataset with this URI is in the basket.
func (s *State) InBasket(uri string) bool {
	for _, item := range s.Basket {
		if item.URI == uri {
			return true
		}
	}
	return false
}

// AddToBasket adds item unless the dataset is already present. It reports
// whether the basket changed.
func (s *State) AddToBasket(item models.BasketItem) bool {
	if s.InBasket(item.URI) {
		return false
	}
	s.Basket = append(s.Basket, item)
	return true
}

// RemoveFromBasket removes the item with the given hash. It reports whether
// an item was removed.
func (s *State) RemoveFromBasket(hash string) bool {
	for i, item := range s.Basket {
		if item.URIHash == hash {
			s.Basket = append(s.Basket[:i], s.Basket[i+1:]...)
			return true
		}
	}
	return false
}

// BasketHashes returns the set of URI hashes in the basket.
func (s *State) BasketHashes() map[string]bool {
	hashes := make(map[string]bool, len(s.Basket))
	for _, item := range s.Basket {
		hashes[item.URIHash] = true
	}
	return hashes
}

// ClearRequest empties the basket and forgets the composed request.
func (s *State) ClearRequest() {
	s.Basket = nil
	s.ComposedEmails = nil
	s.DataRequest = nil
}

// Options configures the session store.
type Options struct {
	Secret    string // Hashed into the signing key
	StorePath string // Directory for session files
	MaxAge    int    // Seconds
	Secure    bool   // Cookie only sent over HTTPS
}

// Manager loads and saves State through a server-side filesystem store. Only
// the session ID travels in the cookie.
type Manager struct {
	store   *sessions.FilesystemStore
	initial func() State
}

// NewManager creates the session store. initial returns the state for a
// browser without a session; nil gives an empty state.
func NewManager(opts Options, initial func() State) (*Manager, error) {
	if opts.StorePath != "" {
		if err := os.MkdirAll(opts.StorePath, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create session directory: %w", err)
		}
	}

	// Hash the secret to get a consistent 32-byte key
	key := sha256.Sum256([]byte(opts.Secret))

	store := sessions.NewFilesystemStore(opts.StorePath, key[:])
	store.MaxLength(0)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   opts.MaxAge,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}

	if initial == nil {
		initial = func() State { return State{} }
	}
	return &Manager{store: store, initial: initial}, nil
}

// Load returns the state of the requesting browser. A missing or unreadable
// session yields the initial state.
func (m *Manager) Load(r *http.Request) (*State, error) {
	sess, err := m.store.Get(r, Name)
	if err != nil && sess == nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	raw, ok := sess.Values[stateKey].(string)
	if !ok || err != nil {
		st := m.initial()
		return &st, nil
	}

	var st State
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		st = m.initial()
	}
	return &st, nil
}

// Save persists state for the requesting browser.
func (m *Manager) Save(w http.ResponseWriter, r *http.Request, st *State) error {
	sess, err := m.store.Get(r, Name)
	if err != nil && sess == nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode session state: %w", err)
	}
	sess.Values[stateKey] = string(data)

	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}
