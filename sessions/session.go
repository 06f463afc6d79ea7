package sessions

import (
	"time"

	"github.com/google/uuid"
	"github.com/vlessgen/go-vless-bot/i18n"
)

// State is the session's current position in the provisioning workflow.
// Terminal outcomes (completed, cancelled, failed) are never stored: a
// session reaching one is deleted from the repo instead.
type State int

const (
	StateLanguageSelect State = iota
	StateEmailMethodSelect
	StateEmailEntry
	StateCodeEntry
	StateLocationSelect
)

func (s State) String() string {
	switch s {
	case StateLanguageSelect:
		return "language_select"
	case StateEmailMethodSelect:
		return "email_method_select"
	case StateEmailEntry:
		return "email_entry"
	case StateCodeEntry:
		return "code_entry"
	case StateLocationSelect:
		return "location_select"
	}
	return "unknown"
}

// Session tracks one user's progress through the provisioning workflow.
// At most one exists per user; the engine mutates it in place while holding
// that user's lock.
type Session struct {
	UserID   int64
	RunID    uuid.UUID // correlation id for logging, unique per workflow run
	Language i18n.Language
	Email    string

	// DeviceID is generated at most once per session and scopes the upstream
	// token to this workflow run.
	DeviceID string

	// AccessToken is non-empty only from StateLocationSelect onward.
	AccessToken string

	State     State
	CreatedAt time.Time
}
