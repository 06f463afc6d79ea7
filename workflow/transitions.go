package workflow

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/rs/zerolog/log"

	"github.com/vlessgen/go-vless-bot/i18n"
	"github.com/vlessgen/go-vless-bot/internal/apperrors"
	"github.com/vlessgen/go-vless-bot/sessions"
)

// Start begins a fresh workflow run for userID, discarding any session left
// over from an earlier run.
func (e *Engine) Start(ctx context.Context, userID int64) error {
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	session := e.repo.Create(userID)
	log.Info().Int64("user_id", userID).Str("run_id", session.RunID.String()).Msg("workflow started")

	choices := []Choice{
		{Label: "English 🇬🇧", Token: tokenLangPrefix + string(i18n.English)},
		{Label: "Русский 🇷🇺", Token: tokenLangPrefix + string(i18n.Russian)},
	}
	return e.presenter.Choice(ctx, userID, i18n.Default, i18n.KeyBootstrap, choices)
}

// Choose handles a selection made from a previously presented choice.
func (e *Engine) Choose(ctx context.Context, userID int64, token string) error {
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	session, err := e.repo.Get(userID)
	if err != nil {
		// Stale callback from a finished or never-started run.
		return e.presenter.Error(ctx, userID, i18n.Default, i18n.KeyNoSession, "")
	}

	switch session.State {
	case sessions.StateLanguageSelect:
		return e.chooseLanguage(ctx, session, token)
	case sessions.StateEmailMethodSelect:
		return e.chooseEmailMethod(ctx, session, token)
	case sessions.StateLocationSelect:
		return e.chooseLocation(ctx, session, token)
	}

	log.Debug().Int64("user_id", userID).Stringer("state", session.State).Str("token", token).Msg("choice ignored in current state")
	return nil
}

// Text handles free-form input (email address or confirmation code).
func (e *Engine) Text(ctx context.Context, userID int64, text string) error {
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	session, err := e.repo.Get(userID)
	if err != nil {
		return e.presenter.Error(ctx, userID, i18n.Default, i18n.KeyNoSession, "")
	}

	switch session.State {
	case sessions.StateEmailEntry:
		return e.enterEmail(ctx, session, strings.TrimSpace(text))
	case sessions.StateCodeEntry:
		return e.enterCode(ctx, session, strings.TrimSpace(text))
	}

	log.Debug().Int64("user_id", userID).Stringer("state", session.State).Msg("text ignored in current state")
	return nil
}

// Cancel aborts the workflow from any non-terminal state.
func (e *Engine) Cancel(ctx context.Context, userID int64) error {
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	lang := i18n.Default
	if session, err := e.repo.Get(userID); err == nil && session.Language != "" {
		lang = session.Language
	}
	e.repo.Delete(userID)

	log.Info().Int64("user_id", userID).Msg("workflow cancelled")
	return e.presenter.Prompt(ctx, userID, lang, i18n.KeyCancelled)
}

func (e *Engine) chooseLanguage(ctx context.Context, session *sessions.Session, token string) error {
	tag, ok := strings.CutPrefix(token, tokenLangPrefix)
	if !ok {
		return nil
	}
	lang, ok := i18n.Parse(tag)
	if !ok {
		log.Debug().Int64("user_id", session.UserID).Str("tag", tag).Msg("unsupported language tag ignored")
		return nil
	}

	session.Language = lang
	session.State = sessions.StateEmailMethodSelect

	// The temporary-email method stays off the keyboard for now; the engine
	// still accepts its token.
	choices := []Choice{
		{Label: i18n.T(lang, i18n.KeyOwnEmail), Token: TokenOwnEmail},
	}
	return e.presenter.Choice(ctx, session.UserID, lang, i18n.KeyEmailChoice, choices)
}

func (e *Engine) chooseEmailMethod(ctx context.Context, session *sessions.Session, token string) error {
	switch token {
	case TokenOwnEmail:
		session.State = sessions.StateEmailEntry
		return e.presenter.Prompt(ctx, session.UserID, session.Language, i18n.KeyEnterEmail)

	case TokenTempEmail:
		email, err := e.api.IssueTemporaryEmail(ctx)
		if err != nil {
			return e.fail(ctx, session, err)
		}
		if err := e.api.RequestConfirmationCode(ctx, email); err != nil {
			return e.fail(ctx, session, err)
		}
		session.Email = email
		session.State = sessions.StateCodeEntry
		return e.presenter.Prompt(ctx, session.UserID, session.Language, i18n.KeyEnterCode)
	}

	log.Debug().Int64("user_id", session.UserID).Str("token", token).Msg("unknown email method ignored")
	return nil
}

func (e *Engine) enterEmail(ctx context.Context, session *sessions.Session, email string) error {
	if err := validateEmail(email); err != nil {
		// Recoverable: re-prompt in place, session untouched.
		return e.presenter.Prompt(ctx, session.UserID, session.Language, i18n.KeyInvalidEmail)
	}

	if err := e.api.RequestConfirmationCode(ctx, email); err != nil {
		return e.fail(ctx, session, err)
	}
	session.Email = email
	session.State = sessions.StateCodeEntry
	return e.presenter.Prompt(ctx, session.UserID, session.Language, i18n.KeyEnterCode)
}

func (e *Engine) enterCode(ctx context.Context, session *sessions.Session, code string) error {
	if session.DeviceID == "" {
		deviceID, err := e.deviceIDSource()
		if err != nil {
			return e.fail(ctx, session, err)
		}
		session.DeviceID = deviceID
	}

	token, err := e.api.ConfirmCode(ctx, session.Email, code, session.DeviceID)
	if err != nil {
		return e.fail(ctx, session, err)
	}
	session.AccessToken = token

	locations, err := e.api.ListAvailableLocations(ctx)
	if err != nil {
		return e.fail(ctx, session, err)
	}
	if len(locations) == 0 {
		return e.fail(ctx, session, apperrors.ErrNoLocations)
	}

	session.State = sessions.StateLocationSelect

	choices := make([]Choice, 0, len(locations)+1)
	for _, code := range locations {
		choices = append(choices, Choice{Label: code, Token: tokenLocPrefix + code})
	}
	choices = append(choices, Choice{
		Label: i18n.T(session.Language, i18n.KeyRandomLocation),
		Token: TokenRandomLocation,
	})
	return e.presenter.Choice(ctx, session.UserID, session.Language, i18n.KeySelectLocation, choices)
}

func (e *Engine) chooseLocation(ctx context.Context, session *sessions.Session, token string) error {
	location, ok := strings.CutPrefix(token, tokenLocPrefix)
	if !ok {
		log.Debug().Int64("user_id", session.UserID).Str("token", token).Msg("unknown location token ignored")
		return nil
	}

	if err := e.presenter.Prompt(ctx, session.UserID, session.Language, i18n.KeyGenerating); err != nil {
		log.Warn().Err(err).Int64("user_id", session.UserID).Msg("failed to present progress message")
	}

	if token == TokenRandomLocation {
		// Re-fetch availability at selection time so the pick can never land
		// on a location that went unavailable since the list was shown.
		locations, err := e.api.ListAvailableLocations(ctx)
		if err != nil {
			return e.fail(ctx, session, err)
		}
		if len(locations) == 0 {
			return e.fail(ctx, session, apperrors.ErrNoLocations)
		}
		location = locations[e.randInt(len(locations))]
	}

	payload, err := e.api.ProvisionConnection(ctx, location, session.DeviceID, session.AccessToken)
	if err != nil {
		return e.fail(ctx, session, err)
	}

	image, err := e.renderer.PNG(payload)
	if err != nil {
		return e.fail(ctx, session, err)
	}

	// Terminal: the session must be gone before the result is shown.
	e.repo.Delete(session.UserID)
	log.Info().
		Int64("user_id", session.UserID).
		Str("run_id", session.RunID.String()).
		Str("location", location).
		Msg("workflow completed")
	return e.presenter.Result(ctx, session.UserID, session.Language, i18n.KeySuccess, payload, image)
}

// fail terminates the workflow: the session is deleted and the upstream
// error detail is surfaced to the user. The user must /start again.
func (e *Engine) fail(ctx context.Context, session *sessions.Session, err error) error {
	e.repo.Delete(session.UserID)
	log.Error().
		Err(err).
		Int64("user_id", session.UserID).
		Str("run_id", session.RunID.String()).
		Stringer("state", session.State).
		Msg("workflow failed")

	lang := session.Language
	if lang == "" {
		lang = i18n.Default
	}
	return e.presenter.Error(ctx, session.UserID, lang, i18n.KeyError, err.Error())
}

// validateEmail applies the syntactic email-format gate.
func validateEmail(email string) error {
	if err := validation.Validate(email, validation.Required, is.Email); err != nil {
		return apperrors.Wrapf(apperrors.ErrInvalidEmail, "%q", email)
	}
	return nil
}
