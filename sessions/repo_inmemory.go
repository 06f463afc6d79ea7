package sessions

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vlessgen/go-vless-bot/internal/apperrors"
)

// InMemorySessionRepo is an in-memory implementation of Repo
type InMemorySessionRepo struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

// NewInMemorySessionRepo creates a new in-memory session repository
func NewInMemorySessionRepo() *InMemorySessionRepo {
	return &InMemorySessionRepo{
		sessions: make(map[int64]*Session),
	}
}

var _ Repo = (*InMemorySessionRepo)(nil)

// Create registers a fresh session for userID, overwriting any stale one
func (r *InMemorySessionRepo) Create(userID int64) *Session {
	session := &Session{
		UserID:    userID,
		RunID:     uuid.New(),
		State:     StateLanguageSelect,
		CreatedAt: time.Now(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[userID] = session
	return session
}

// Get retrieves the active session for userID
func (r *InMemorySessionRepo) Get(userID int64) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[userID]
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	return session, nil
}

// Delete removes the session for userID. Deleting an absent session is not
// an error.
func (r *InMemorySessionRepo) Delete(userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, userID)
}
