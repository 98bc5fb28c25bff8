package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"chief-of-staff-client/internal/usecase"
)

// Booter runs the page-load sequence against a location.
type Booter interface {
	Boot(ctx context.Context, loc usecase.Location) usecase.RedirectResult
}

// Handler serves the loopback origin the OAuth provider redirects back to.
type Handler struct {
	app        Booter
	log        zerolog.Logger
	onRedirect func(usecase.RedirectResult)
}

type Option func(*Handler)

func WithLogger(l zerolog.Logger) Option {
	return func(h *Handler) {
		h.log = l
	}
}

// WithOnRedirect registers a callback invoked after a redirect carrying a
// token or an error has been processed.
func WithOnRedirect(fn func(usecase.RedirectResult)) Option {
	return func(h *Handler) {
		h.onRedirect = fn
	}
}

func NewHandler(app Booter, opts ...Option) (*Handler, error) {
	if app == nil {
		return nil, errors.New("handler: app must not be nil")
	}
	h := &Handler{app: app, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Router returns the chi router for the callback origin.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(hlog.NewHandler(h.log))
	r.Use(hlog.RequestIDHandler("req_id", "X-Correlation-Id"))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
		// The query may carry a token; only the path is logged.
		hlog.FromRequest(r).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Dur("duration", d).
			Msg("callback request")
	}))
	r.Use(middleware.Recoverer)

	r.Get("/", h.callback)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func (h *Handler) callback(w http.ResponseWriter, r *http.Request) {
	loc := &requestLocation{url: r.URL}
	res := h.app.Boot(r.Context(), loc)
	if res.Kind != usecase.RedirectNone && h.onRedirect != nil {
		h.onRedirect(res)
	}

	if loc.replaced {
		// Same page, query stripped, so the token leaves the address bar
		// and browser history.
		http.Redirect(w, r, loc.cleanURL(), http.StatusSeeOther)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = fmt.Fprintln(w, "Chief of Staff: you can close this tab and return to your terminal.")
}

// requestLocation adapts an incoming callback request to usecase.Location.
type requestLocation struct {
	url      *url.URL
	replaced bool
}

func (l *requestLocation) Query() url.Values {
	return l.url.Query()
}

func (l *requestLocation) ReplaceQuery() {
	l.replaced = true
}

func (l *requestLocation) cleanURL() string {
	path := l.url.Path
	if path == "" {
		path = "/"
	}
	return path
}
