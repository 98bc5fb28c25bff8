package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"chief-of-staff-client/internal/domain"
	"chief-of-staff-client/internal/session"
)

type fakeView struct {
	events     []string
	transcript []domain.ChatMessage
	section    domain.Section
	loading    bool
}

func (v *fakeView) ShowAuthSection() {
	v.section = domain.SectionAuth
	v.events = append(v.events, "auth")
}

func (v *fakeView) ShowMainContent() {
	v.section = domain.SectionMain
	v.events = append(v.events, "main")
}

func (v *fakeView) AppendMessage(msg domain.ChatMessage) {
	v.transcript = append(v.transcript, msg)
	v.events = append(v.events, "append:"+msg.Role)
}

func (v *fakeView) ResetTranscript() {
	v.transcript = []domain.ChatMessage{domain.AssistantMessage(domain.Greeting)}
	v.events = append(v.events, "reset")
}

func (v *fakeView) SetLoading(on bool) {
	v.loading = on
	v.events = append(v.events, fmt.Sprintf("loading:%t", on))
}

func (v *fakeView) CloseAuthModal() {
	v.events = append(v.events, "close-modal")
}

type note struct {
	text string
	kind domain.NotificationKind
}

type recordingNotifier struct {
	notes []note
}

func (n *recordingNotifier) Notify(text string, kind domain.NotificationKind) string {
	n.notes = append(n.notes, note{text: text, kind: kind})
	return fmt.Sprintf("n%d", len(n.notes))
}

// statusError mimics the backend client's HTTP status error.
type statusError struct {
	status int
	detail string
}

func (e *statusError) Error() string       { return fmt.Sprintf("status %d", e.status) }
func (e *statusError) HTTPStatusCode() int { return e.status }
func (e *statusError) ErrorDetail() string { return e.detail }

type chatCall struct {
	token   string
	message string
}

type fakeBackend struct {
	token    string
	authErr  error
	reply    string
	chatErr  error
	chats    []chatCall
	logins   int
	register int
	lastMail string
	lastPass string
}

func (b *fakeBackend) Login(_ context.Context, email, password string) (string, error) {
	b.logins++
	b.lastMail, b.lastPass = email, password
	return b.token, b.authErr
}

func (b *fakeBackend) Register(_ context.Context, email, password string) (string, error) {
	b.register++
	b.lastMail, b.lastPass = email, password
	return b.token, b.authErr
}

func (b *fakeBackend) Chat(_ context.Context, token, message string) (string, error) {
	b.chats = append(b.chats, chatCall{token: token, message: message})
	return b.reply, b.chatErr
}

func (b *fakeBackend) GoogleLoginURL() string {
	return "http://localhost:8000/auth/google/login"
}

type fakeLocation struct {
	query    url.Values
	replaced bool
}

func (l *fakeLocation) Query() url.Values { return l.query }
func (l *fakeLocation) ReplaceQuery()     { l.replaced = true }

type brokenSession struct{}

func (brokenSession) Get(context.Context) (string, bool, error) { return "", false, errors.New("disk gone") }
func (brokenSession) Set(context.Context, string) error         { return errors.New("disk gone") }
func (brokenSession) Clear(context.Context) error               { return errors.New("disk gone") }

type harness struct {
	app      *App
	store    *session.Store
	backend  *fakeBackend
	view     *fakeView
	notifier *recordingNotifier
}

func newHarness(t *testing.T, token string) *harness {
	t.Helper()
	store, err := session.New(session.NewMemoryStorage(), session.DefaultKey)
	require.NoError(t, err)
	if token != "" {
		require.NoError(t, store.Set(context.Background(), token))
	}
	h := &harness{
		store:    store,
		backend:  &fakeBackend{},
		view:     &fakeView{},
		notifier: &recordingNotifier{},
	}
	h.app, err = NewApp(h.store, h.backend, h.view, h.notifier)
	require.NoError(t, err)
	return h
}

func (h *harness) token(t *testing.T) (string, bool) {
	t.Helper()
	tok, ok, err := h.store.Get(context.Background())
	require.NoError(t, err)
	return tok, ok
}
