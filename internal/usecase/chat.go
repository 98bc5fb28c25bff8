package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"chief-of-staff-client/internal/domain"
)

// Outcome reports how a chat submission ended.
type Outcome int

const (
	OutcomeIgnored Outcome = iota
	OutcomeNeedsLogin
	OutcomeAnswered
	OutcomeSessionExpired
	OutcomeAuthFailed
	OutcomeFailed
	OutcomeNetworkError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeNeedsLogin:
		return "needs_login"
	case OutcomeAnswered:
		return "answered"
	case OutcomeSessionExpired:
		return "session_expired"
	case OutcomeAuthFailed:
		return "auth_failed"
	case OutcomeFailed:
		return "failed"
	case OutcomeNetworkError:
		return "network_error"
	default:
		return "unknown"
	}
}

// Sent reports whether the message reached the transcript as a user entry.
func (o Outcome) Sent() bool {
	return o != OutcomeIgnored && o != OutcomeNeedsLogin
}

// Send submits one chat message. Blank input is dropped without any side
// effect. Without a token nothing is sent and the user is pointed at the
// auth section.
func (a *App) Send(ctx context.Context, raw string) Outcome {
	message := strings.TrimSpace(raw)
	if message == "" {
		return OutcomeIgnored
	}

	token, ok := a.currentToken(ctx)
	if !ok {
		a.view.AppendMessage(domain.AssistantMessage(domain.MsgPleaseLogIn))
		a.view.ShowAuthSection()
		return OutcomeNeedsLogin
	}

	a.view.AppendMessage(domain.UserMessage(message))
	a.view.SetLoading(true)
	defer a.view.SetLoading(false)

	reply, err := a.backend.Chat(ctx, token, message)
	if err == nil {
		a.view.AppendMessage(domain.AssistantMessage(reply))
		return OutcomeAnswered
	}

	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		a.log.Error().Err(err).Msg("chat error")
		a.view.AppendMessage(domain.AssistantMessage(domain.MsgNetworkError))
		return OutcomeNetworkError
	}
	if statusErr.HTTPStatusCode() == http.StatusUnauthorized {
		return a.expireSession(ctx, err)
	}
	a.log.Error().Err(err).Int("status", statusErr.HTTPStatusCode()).Msg("chat error")
	a.view.AppendMessage(domain.AssistantMessage(domain.MsgChatFailed))
	return OutcomeFailed
}

// SendQuick sends one of domain.QuickMessages by index.
func (a *App) SendQuick(ctx context.Context, index int) Outcome {
	if index < 0 || index >= len(domain.QuickMessages) {
		return OutcomeIgnored
	}
	return a.Send(ctx, domain.QuickMessages[index])
}

func (a *App) expireSession(ctx context.Context, err error) Outcome {
	detail := errorDetail(err)
	if detail == "" {
		detail = domain.DefaultUnauthorized
	}
	if clearErr := a.session.Clear(ctx); clearErr != nil {
		a.log.Error().Err(clearErr).Msg("clear session token")
	}

	outcome := OutcomeAuthFailed
	if strings.Contains(detail, "expired") {
		outcome = OutcomeSessionExpired
		a.view.AppendMessage(domain.AssistantMessage(domain.MsgSessionExpired))
		a.notifier.Notify(domain.NoteSessionExpired, domain.NotifyError)
	} else {
		a.view.AppendMessage(domain.AssistantMessage(domain.MsgAuthFailed))
		a.notifier.Notify(domain.NotePleaseLogInAgain, domain.NotifyError)
	}
	a.log.Info().Str("detail", detail).Stringer("outcome", outcome).Msg("session rejected by backend")
	a.view.ShowAuthSection()
	return outcome
}
