package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// App is the view controller plus the auth and chat flows. It holds no
// session state of its own; the token is read from the SessionStore at the
// start of every flow.
type App struct {
	session  SessionStore
	backend  Backend
	view     View
	notifier Notifier
	log      zerolog.Logger
}

type Option func(*App)

func WithLogger(l zerolog.Logger) Option {
	return func(a *App) {
		a.log = l
	}
}

func NewApp(session SessionStore, backend Backend, view View, notifier Notifier, opts ...Option) (*App, error) {
	if session == nil {
		return nil, errors.New("usecase: session store must not be nil")
	}
	if backend == nil {
		return nil, errors.New("usecase: backend must not be nil")
	}
	if view == nil {
		return nil, errors.New("usecase: view must not be nil")
	}
	if notifier == nil {
		return nil, errors.New("usecase: notifier must not be nil")
	}
	a := &App{
		session:  session,
		backend:  backend,
		view:     view,
		notifier: notifier,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Boot runs on every (re)entry: it consumes a pending OAuth redirect first
// so the stored token is in place for the section decision, then shows the
// matching section, then announces the redirect outcome. loc may be nil.
func (a *App) Boot(ctx context.Context, loc Location) RedirectResult {
	res := a.CompleteRedirect(ctx, loc)
	a.CheckAuth(ctx)
	a.announceRedirect(res)
	return res
}

// CheckAuth shows the main content when a token is stored and the auth
// section otherwise. It reports whether a token was found.
func (a *App) CheckAuth(ctx context.Context) bool {
	if _, ok := a.currentToken(ctx); ok {
		a.log.Debug().Msg("token found, showing main content")
		a.view.ShowMainContent()
		return true
	}
	a.log.Debug().Msg("no token found, showing auth section")
	a.view.ShowAuthSection()
	return false
}

// currentToken treats unreadable storage as a logged-out session.
func (a *App) currentToken(ctx context.Context) (string, bool) {
	tok, ok, err := a.session.Get(ctx)
	if err != nil {
		a.log.Warn().Err(err).Msg("read session token")
		return "", false
	}
	return tok, ok
}
