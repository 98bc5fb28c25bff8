package usecase

import (
	"context"
	"net/url"

	"chief-of-staff-client/internal/domain"
)

// View is what the flows may do to the screen. Implementations decide how
// sections, transcript entries and the loading indicator are rendered.
type View interface {
	ShowAuthSection()
	ShowMainContent()
	AppendMessage(msg domain.ChatMessage)
	// ResetTranscript drops every entry and shows the greeting.
	ResetTranscript()
	SetLoading(on bool)
	CloseAuthModal()
}

type Notifier interface {
	Notify(text string, kind domain.NotificationKind) string
}

type SessionStore interface {
	Get(ctx context.Context) (string, bool, error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

type Backend interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, email, password string) (string, error)
	Chat(ctx context.Context, token, message string) (string, error)
	GoogleLoginURL() string
}

// Location is the address the client was (re)entered through. After an
// OAuth redirect it carries ?token= or ?error=.
type Location interface {
	Query() url.Values
	// ReplaceQuery drops the query string from the visible address
	// without reloading.
	ReplaceQuery()
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

type errorDetailer interface {
	ErrorDetail() string
}
