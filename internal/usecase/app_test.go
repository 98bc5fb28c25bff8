package usecase

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"chief-of-staff-client/internal/domain"
)

func TestNewApp_ValidatesDependencies(t *testing.T) {
	h := newHarness(t, "")

	_, err := NewApp(nil, h.backend, h.view, h.notifier)
	require.Error(t, err)
	_, err = NewApp(h.store, nil, h.view, h.notifier)
	require.Error(t, err)
	_, err = NewApp(h.store, h.backend, nil, h.notifier)
	require.Error(t, err)
	_, err = NewApp(h.store, h.backend, h.view, nil)
	require.Error(t, err)
}

func TestCheckAuth_SelectsSectionFromToken(t *testing.T) {
	h := newHarness(t, "")
	require.False(t, h.app.CheckAuth(context.Background()))
	require.Equal(t, domain.SectionAuth, h.view.section)

	h = newHarness(t, "T1")
	require.True(t, h.app.CheckAuth(context.Background()))
	require.Equal(t, domain.SectionMain, h.view.section)
}

func TestCheckAuth_StorageErrorShowsAuth(t *testing.T) {
	h := newHarness(t, "")
	app, err := NewApp(brokenSession{}, h.backend, h.view, h.notifier)
	require.NoError(t, err)

	require.False(t, app.CheckAuth(context.Background()))
	require.Equal(t, domain.SectionAuth, h.view.section)
}

func TestBoot_RedirectToken(t *testing.T) {
	h := newHarness(t, "")
	loc := &fakeLocation{query: url.Values{"token": {"T2"}}}

	res := h.app.Boot(context.Background(), loc)
	require.Equal(t, RedirectToken, res.Kind)

	tok, ok := h.token(t)
	require.True(t, ok)
	require.Equal(t, "T2", tok)
	require.True(t, loc.replaced)
	require.Equal(t, domain.SectionMain, h.view.section)
	require.Equal(t, []note{{text: domain.NoteGoogleSuccess, kind: domain.NotifySuccess}}, h.notifier.notes)
}

func TestBoot_RedirectTokenReplacesExistingSession(t *testing.T) {
	h := newHarness(t, "OLD")
	h.app.Boot(context.Background(), &fakeLocation{query: url.Values{"token": {"NEW"}}})

	tok, _ := h.token(t)
	require.Equal(t, "NEW", tok)
}

func TestBoot_RedirectError(t *testing.T) {
	h := newHarness(t, "")
	loc := &fakeLocation{query: url.Values{"error": {"access_denied"}}}

	res := h.app.Boot(context.Background(), loc)
	require.Equal(t, RedirectError, res.Kind)
	require.Equal(t, "access_denied", res.Error)

	_, ok := h.token(t)
	require.False(t, ok)
	require.True(t, loc.replaced)
	require.Equal(t, domain.SectionAuth, h.view.section)
	require.Equal(t, []note{{text: "Google login failed: access_denied", kind: domain.NotifyError}}, h.notifier.notes)
}

func TestBoot_TokenWinsOverError(t *testing.T) {
	h := newHarness(t, "")
	res := h.app.Boot(context.Background(), &fakeLocation{query: url.Values{"token": {"T2"}, "error": {"x"}}})
	require.Equal(t, RedirectToken, res.Kind)
	tok, _ := h.token(t)
	require.Equal(t, "T2", tok)
}

func TestBoot_PlainLoad(t *testing.T) {
	h := newHarness(t, "T1")
	loc := &fakeLocation{query: url.Values{"utm": {"x"}}}

	res := h.app.Boot(context.Background(), loc)
	require.Equal(t, RedirectNone, res.Kind)
	require.False(t, loc.replaced)
	require.Equal(t, domain.SectionMain, h.view.section)
	require.Empty(t, h.notifier.notes)

	res = h.app.Boot(context.Background(), nil)
	require.Equal(t, RedirectNone, res.Kind)
}

func TestBoot_RedirectTokenStorageFailure(t *testing.T) {
	h := newHarness(t, "")
	app, err := NewApp(brokenSession{}, h.backend, h.view, h.notifier)
	require.NoError(t, err)
	loc := &fakeLocation{query: url.Values{"token": {"T2"}}}

	res := app.Boot(context.Background(), loc)
	require.Equal(t, RedirectError, res.Kind)
	require.True(t, loc.replaced)
	require.Equal(t, domain.SectionAuth, h.view.section)
	require.Len(t, h.notifier.notes, 1)
	require.Equal(t, domain.NotifyError, h.notifier.notes[0].kind)
}

func TestCompleteRedirect_DoesNotTouchView(t *testing.T) {
	h := newHarness(t, "")
	loc := &fakeLocation{query: url.Values{"token": {"T2"}}}

	res := h.app.CompleteRedirect(context.Background(), loc)

	require.Equal(t, RedirectToken, res.Kind)
	require.True(t, loc.replaced)
	require.Empty(t, h.view.events)
	require.Empty(t, h.notifier.notes)
	tok, ok := h.token(t)
	require.True(t, ok)
	require.Equal(t, "T2", tok)

	require.Equal(t, RedirectResult{}, h.app.CompleteRedirect(context.Background(), nil))
}
