package usecase

import (
	"context"
	"errors"
	"strings"

	"chief-of-staff-client/internal/domain"
)

// RedirectKind classifies what an OAuth redirect brought back.
type RedirectKind int

const (
	RedirectNone RedirectKind = iota
	RedirectToken
	RedirectError
)

type RedirectResult struct {
	Kind RedirectKind
	// Error is the provider error for RedirectError.
	Error string
}

// CompleteRedirect consumes ?token= or ?error= from loc. A token wins over
// an error and is stored before anything else reads the session. The
// query is stripped either way. Boot announces the result.
func (a *App) CompleteRedirect(ctx context.Context, loc Location) RedirectResult {
	if loc == nil {
		return RedirectResult{}
	}
	q := loc.Query()
	token := q.Get("token")
	oauthErr := q.Get("error")

	switch {
	case token != "":
		loc.ReplaceQuery()
		if err := a.session.Set(ctx, token); err != nil {
			a.log.Error().Err(err).Msg("store redirect token")
			return RedirectResult{Kind: RedirectError, Error: "could not save session"}
		}
		return RedirectResult{Kind: RedirectToken}
	case oauthErr != "":
		a.log.Warn().Str("error", oauthErr).Msg("oauth error")
		loc.ReplaceQuery()
		return RedirectResult{Kind: RedirectError, Error: oauthErr}
	default:
		return RedirectResult{}
	}
}

func (a *App) announceRedirect(res RedirectResult) {
	switch res.Kind {
	case RedirectToken:
		a.notifier.Notify(domain.NoteGoogleSuccess, domain.NotifySuccess)
	case RedirectError:
		a.notifier.Notify(domain.NoteGoogleFailedPfx+res.Error, domain.NotifyError)
	}
}

// GoogleLoginURL is where the browser must be sent to start the OAuth flow.
func (a *App) GoogleLoginURL() string {
	u := a.backend.GoogleLoginURL()
	a.log.Info().Str("url", u).Msg("initiating google oauth")
	return u
}

// SubmitAuth posts the credentials to the endpoint selected by mode. On
// success the token is stored, the modal closed and the main content shown.
// On failure only a notification is emitted; the session is untouched.
func (a *App) SubmitAuth(ctx context.Context, mode domain.AuthMode, email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		a.notifier.Notify(domain.NoteCredentialsRequired, domain.NotifyError)
		return newError(ErrorInvalidInput, "missing_credentials", nil)
	}

	var (
		token string
		err   error
	)
	if mode == domain.AuthRegister {
		token, err = a.backend.Register(ctx, email, password)
	} else {
		token, err = a.backend.Login(ctx, email, password)
	}
	if err != nil {
		var statusErr httpStatusCoder
		if errors.As(err, &statusErr) {
			msg := errorDetail(err)
			if msg == "" {
				msg = domain.DefaultAuthRejection
			}
			a.log.Debug().Int("status", statusErr.HTTPStatusCode()).Str("mode", string(mode)).Msg("auth rejected")
			a.notifier.Notify(msg, domain.NotifyError)
			return newError(ErrorRejected, "auth_rejected", err)
		}
		a.log.Error().Err(err).Str("mode", string(mode)).Msg("auth error")
		a.notifier.Notify(domain.MsgNetworkError, domain.NotifyError)
		return newError(ErrorTransport, "auth_transport", err)
	}

	if err := a.session.Set(ctx, token); err != nil {
		a.log.Error().Err(err).Msg("store auth token")
		a.notifier.Notify(domain.NoteStorageError, domain.NotifyError)
		return newError(ErrorStorage, "session_write", err)
	}
	a.view.CloseAuthModal()
	a.view.ShowMainContent()
	a.notifier.Notify(mode.SuccessText(), domain.NotifySuccess)
	return nil
}

// Logout forgets the token and returns to a fresh auth screen.
func (a *App) Logout(ctx context.Context) {
	if err := a.session.Clear(ctx); err != nil {
		a.log.Error().Err(err).Msg("clear session token")
	}
	a.view.ShowAuthSection()
	a.view.ResetTranscript()
	a.notifier.Notify(domain.NoteLoggedOut, domain.NotifySuccess)
}

func errorDetail(err error) string {
	var d errorDetailer
	if !errors.As(err, &d) {
		return ""
	}
	return strings.TrimSpace(d.ErrorDetail())
}
