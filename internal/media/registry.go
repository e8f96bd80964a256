package media

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var ErrSessionNotFound = errors.New("form session not found")

// Session is a live form coordinator bound to a session ID.
type Session struct {
	ID   string
	Form *Form
}

// Registry tracks form sessions by ID. Each session owns one Form whose
// lifecycle is tied to the session: removing a session closes the form and
// cancels any pending debounce timer.
type Registry struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	searcher  Searcher
	submitter Submitter
	cache     *PageCache
	notifier  Notifier
	logger    zerolog.Logger
}

// NewRegistry creates a session registry. The collaborators are shared by all
// forms it creates.
func NewRegistry(searcher Searcher, submitter Submitter, cache *PageCache, notifier Notifier, logger zerolog.Logger) *Registry {
	return &Registry{
		sessions:  make(map[string]*Session),
		searcher:  searcher,
		submitter: submitter,
		cache:     cache,
		notifier:  notifier,
		logger:    logger.With().Str("component", "form-registry").Logger(),
	}
}

// Create starts a new form session for the database.
func (r *Registry) Create(databaseID string) *Session {
	session := &Session{
		ID:   uuid.NewString(),
		Form: NewForm(databaseID, r.searcher, r.submitter, r.cache, r.notifier, r.logger),
	}

	r.mu.Lock()
	r.sessions[session.ID] = session
	r.mu.Unlock()

	r.logger.Debug().Str("sessionId", session.ID).Str("databaseId", databaseID).Msg("Created form session")
	return session
}

// Get returns the session with the given ID.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Remove closes the session's form and forgets the session.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	session, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	session.Form.Close()
	r.logger.Debug().Str("sessionId", id).Msg("Removed form session")
	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
