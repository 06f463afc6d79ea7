package sessions

// Repo defines the interface for session storage operations.
// Sessions are transient workflow state; implementations must be safe for
// concurrent use across arbitrary user ids.
type Repo interface {
	// Create registers a fresh session for userID, discarding any stale
	// session left behind for that id.
	Create(userID int64) *Session

	// Get retrieves the active session for userID
	Get(userID int64) (*Session, error)

	// Delete removes the session for userID, if any
	Delete(userID int64)
}
