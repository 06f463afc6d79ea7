// Package workflow implements the provisioning state machine: it sequences
// the upstream calls for one user, holds their session across asynchronous
// inputs and turns every failure into a clean terminal outcome.
package workflow

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	mathrand "math/rand"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/vlessgen/go-vless-bot/i18n"
	"github.com/vlessgen/go-vless-bot/sessions"
)

// API is the slice of the upstream client the engine drives.
type API interface {
	RequestConfirmationCode(ctx context.Context, email string) error
	IssueTemporaryEmail(ctx context.Context) (string, error)
	ConfirmCode(ctx context.Context, email, code, deviceID string) (string, error)
	ListAvailableLocations(ctx context.Context) ([]string, error)
	ProvisionConnection(ctx context.Context, location, deviceID, accessToken string) (string, error)
}

// Choice is one selectable option in a prompt. Token is what comes back via
// Choose when the user picks it.
type Choice struct {
	Label string
	Token string
}

// Presenter delivers prompts and outcomes to the user over whatever
// transport drives the engine.
type Presenter interface {
	// Choice presents the message for key together with selectable options.
	Choice(ctx context.Context, userID int64, lang i18n.Language, key string, choices []Choice) error

	// Prompt presents the message for key on its own.
	Prompt(ctx context.Context, userID int64, lang i18n.Language, key string) error

	// Result delivers the final credential as text plus a rendered image.
	Result(ctx context.Context, userID int64, lang i18n.Language, key, payload string, image []byte) error

	// Error presents the message for key formatted with detail.
	Error(ctx context.Context, userID int64, lang i18n.Language, key, detail string) error
}

// Renderer turns the opaque credential payload into a shareable artifact.
type Renderer interface {
	PNG(payload string) ([]byte, error)
}

// Choice tokens produced by the engine's prompts. The temporary-email token
// is accepted even though the current product surface does not offer the
// button.
const (
	tokenLangPrefix = "lang_"

	TokenOwnEmail  = "email_own"
	TokenTempEmail = "email_temp"

	tokenLocPrefix      = "loc_"
	TokenRandomLocation = "loc_random"
)

// Engine runs the workflow. Inputs for one user are serialized on a per-user
// lock; inputs for distinct users run independently.
type Engine struct {
	repo      sessions.Repo
	api       API
	presenter Presenter
	renderer  Renderer

	randInt        func(n int) int
	deviceIDSource func() (string, error)

	mu        sync.Mutex
	userLocks map[int64]*sync.Mutex
}

// EngineOption defines a function type to modify the Engine instance.
type EngineOption func(*Engine)

// WithRandInt sets the randomness source for the random-location pick
// (primarily for testing).
func WithRandInt(randInt func(n int) int) EngineOption {
	return func(e *Engine) {
		e.randInt = randInt
	}
}

// WithDeviceIDSource sets the device-id generator (primarily for testing).
func WithDeviceIDSource(source func() (string, error)) EngineOption {
	return func(e *Engine) {
		e.deviceIDSource = source
	}
}

// NewEngine initializes an Engine with required dependencies.
func NewEngine(repo sessions.Repo, api API, presenter Presenter, renderer Renderer, options ...EngineOption) (*Engine, error) {
	if repo == nil {
		return nil, errors.New("[NewEngine] session repo is required")
	}
	if api == nil {
		return nil, errors.New("[NewEngine] api client is required")
	}
	if presenter == nil {
		return nil, errors.New("[NewEngine] presenter is required")
	}
	if renderer == nil {
		return nil, errors.New("[NewEngine] renderer is required")
	}

	engine := &Engine{
		repo:           repo,
		api:            api,
		presenter:      presenter,
		renderer:       renderer,
		randInt:        mathrand.Intn,
		deviceIDSource: generateDeviceID,
		userLocks:      make(map[int64]*sync.Mutex),
	}

	for _, opt := range options {
		opt(engine)
	}

	return engine, nil
}

// userLock returns the mutex serializing transitions for userID. Entries are
// kept for the lifetime of the process; the map is bounded by the number of
// distinct users seen.
func (e *Engine) userLock(userID int64) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	lock, ok := e.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		e.userLocks[userID] = lock
	}
	return lock
}

// generateDeviceID produces the opaque per-session token that scopes the
// upstream auth to one logical client: 8 random bytes, hex, upper-case.
func generateDeviceID() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "generate device id")
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}
