// Package tui is the full-screen terminal client built on tview. UI
// implements usecase.View and notify.Sink; every widget change is queued
// onto the tview event loop, so flows may call it from any goroutine.
package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/rs/zerolog"

	"chief-of-staff-client/internal/domain"
	"chief-of-staff-client/internal/notify"
	"chief-of-staff-client/internal/usecase"
)

const (
	pageAuth  = "auth"
	pageMain  = "main"
	pageModal = "modal"

	barAuth = "auth-bar"
	barUser = "user-bar"
)

// Controller is the part of usecase.App the widgets trigger.
type Controller interface {
	SubmitAuth(ctx context.Context, mode domain.AuthMode, email, password string) error
	GoogleLoginURL() string
	Logout(ctx context.Context)
	Send(ctx context.Context, raw string) usecase.Outcome
	SendQuick(ctx context.Context, index int) usecase.Outcome
}

type Option func(*UI)

func WithLogger(l zerolog.Logger) Option {
	return func(u *UI) {
		u.log = l
	}
}

// WithBrowser sets how the Google login URL is opened.
func WithBrowser(open func(url string) error) Option {
	return func(u *UI) {
		u.openURL = open
	}
}

type UI struct {
	app        *tview.Application
	bars       *tview.Pages
	body       *tview.Pages
	transcript *tview.TextView
	loading    *tview.TextView
	toastView  *tview.TextView
	input      *tview.InputField
	form       *tview.Form
	loginBtn   *tview.Button

	mu     sync.Mutex
	toasts []toast

	// Owned by the event loop.
	mode      domain.AuthMode
	modalOpen bool

	ctx     context.Context
	ctrl    Controller
	openURL func(string) error
	log     zerolog.Logger
}

func New(opts ...Option) *UI {
	u := &UI{
		app:     tview.NewApplication(),
		mode:    domain.AuthLogin,
		ctx:     context.Background(),
		openURL: func(string) error { return errors.New("no browser configured") },
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(u)
	}
	u.build()
	return u
}

func (u *UI) build() {
	title := tview.NewTextView().SetDynamicColors(true).SetText("[::b]Chief of Staff[::-]")

	u.loginBtn = tview.NewButton("Login (^L)").SetSelectedFunc(func() { u.openModal(domain.AuthLogin) })
	registerBtn := tview.NewButton("Register (^R)").SetSelectedFunc(func() { u.openModal(domain.AuthRegister) })
	googleBtn := tview.NewButton("Google (^G)").SetSelectedFunc(u.startGoogle)
	authBar := tview.NewFlex().
		AddItem(u.loginBtn, 0, 1, true).
		AddItem(nil, 1, 0, false).
		AddItem(registerBtn, 0, 1, false).
		AddItem(nil, 1, 0, false).
		AddItem(googleBtn, 0, 1, false)

	logoutBtn := tview.NewButton("Logout (^O)").SetSelectedFunc(u.logout)
	userBar := tview.NewFlex().
		AddItem(nil, 0, 2, false).
		AddItem(logoutBtn, 0, 1, false)

	u.bars = tview.NewPages().
		AddPage(barAuth, authBar, true, true).
		AddPage(barUser, userBar, true, false)

	header := tview.NewFlex().
		AddItem(title, 0, 1, false).
		AddItem(u.bars, 0, 2, false)

	welcome := tview.NewTextView().SetDynamicColors(true).SetTextAlign(tview.AlignCenter).
		SetText("\n\nSign in to talk to your assistant.\n\n[yellow]^L[-] login  [yellow]^R[-] register  [yellow]^G[-] Google  [yellow]^C[-] quit")

	u.transcript = tview.NewTextView().SetDynamicColors(true).SetWordWrap(true).SetScrollable(true)
	u.transcript.SetBorder(true).SetTitle(" Chat ")
	u.transcript.SetText(formatMessage(domain.AssistantMessage(domain.Greeting)))

	u.loading = tview.NewTextView().SetDynamicColors(true)
	quick := tview.NewTextView().SetDynamicColors(true).SetText(quickHelp())

	u.input = tview.NewInputField().SetLabel("> ").SetFieldWidth(0)
	u.input.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			u.submitInput()
		}
	})

	mainPage := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(u.transcript, 0, 1, false).
		AddItem(u.loading, 1, 0, false).
		AddItem(quick, 1, 0, false).
		AddItem(u.input, 1, 0, true)

	u.form = tview.NewForm().
		AddInputField("Email", "", 40, nil, nil).
		AddPasswordField("Password", "", 40, '*', nil).
		AddButton(u.mode.Title(), u.submitForm).
		AddButton("Cancel", u.closeModal)
	u.form.SetCancelFunc(u.closeModal)
	u.form.SetBorder(true).SetTitle(" " + u.mode.Title() + " ")

	u.body = tview.NewPages().
		AddPage(pageAuth, welcome, true, true).
		AddPage(pageMain, mainPage, true, false).
		AddPage(pageModal, centered(u.form, 56, 9), true, false)

	u.toastView = tview.NewTextView().SetDynamicColors(true).SetTextAlign(tview.AlignRight)

	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(header, 1, 0, false).
		AddItem(u.body, 0, 1, true).
		AddItem(u.toastView, 3, 0, false)

	u.app.SetRoot(root, true).EnableMouse(true).SetInputCapture(u.capture)
}

// Run drives the event loop until ctx ends or the user quits. ctrl must
// be set before any widget fires, so it is passed here rather than to New.
func (u *UI) Run(ctx context.Context, ctrl Controller) error {
	u.ctx = ctx
	u.ctrl = ctrl
	go func() {
		<-ctx.Done()
		u.app.Stop()
	}()
	if err := u.app.Run(); err != nil {
		return fmt.Errorf("tui: run: %w", err)
	}
	return nil
}

// Stop ends Run.
func (u *UI) Stop() {
	u.app.Stop()
}

func (u *UI) capture(ev *tcell.EventKey) *tcell.EventKey {
	if u.modalOpen {
		if ev.Key() == tcell.KeyEscape {
			u.closeModal()
			return nil
		}
		return ev
	}
	switch ev.Key() {
	case tcell.KeyCtrlL:
		u.openModal(domain.AuthLogin)
	case tcell.KeyCtrlR:
		u.openModal(domain.AuthRegister)
	case tcell.KeyCtrlG:
		u.startGoogle()
	case tcell.KeyCtrlO:
		u.logout()
	case tcell.KeyF1, tcell.KeyF2, tcell.KeyF3, tcell.KeyF4:
		u.sendQuick(int(ev.Key() - tcell.KeyF1))
	default:
		return ev
	}
	return nil
}

func (u *UI) openModal(mode domain.AuthMode) {
	u.mode = mode
	u.form.SetTitle(" " + mode.Title() + " ")
	u.form.GetButton(0).SetLabel(mode.Title())
	u.form.SetFocus(0)
	u.modalOpen = true
	u.body.ShowPage(pageModal)
	u.app.SetFocus(u.form)
}

func (u *UI) closeModal() {
	u.modalOpen = false
	u.body.HidePage(pageModal)
	u.focusSection()
}

func (u *UI) focusSection() {
	if name, _ := u.body.GetFrontPage(); name == pageMain {
		u.app.SetFocus(u.input)
		return
	}
	u.app.SetFocus(u.loginBtn)
}

func (u *UI) submitForm() {
	email := u.form.GetFormItem(0).(*tview.InputField).GetText()
	password := u.form.GetFormItem(1).(*tview.InputField).GetText()
	mode := u.mode
	go func() {
		// Failures are already notified.
		_ = u.ctrl.SubmitAuth(u.ctx, mode, email, password)
	}()
}

func (u *UI) startGoogle() {
	target := u.ctrl.GoogleLoginURL()
	go func() {
		if err := u.openURL(target); err != nil {
			u.log.Warn().Err(err).Msg("open browser")
			u.update(func() {
				u.loading.SetText("Open in your browser: " + tview.Escape(target))
			})
		}
	}()
}

func (u *UI) logout() {
	go u.ctrl.Logout(u.ctx)
}

func (u *UI) submitInput() {
	text := u.input.GetText()
	go func() {
		if u.ctrl.Send(u.ctx, text).Sent() {
			u.update(func() {
				if u.input.GetText() == text {
					u.input.SetText("")
				}
			})
		}
	}()
}

func (u *UI) sendQuick(index int) {
	go u.ctrl.SendQuick(u.ctx, index)
}

func (u *UI) update(f func()) {
	u.app.QueueUpdateDraw(f)
}

func (u *UI) ShowAuthSection() {
	u.update(func() {
		u.bars.SwitchToPage(barAuth)
		u.body.SwitchToPage(pageAuth)
		u.modalOpen = false
		u.app.SetFocus(u.loginBtn)
	})
}

func (u *UI) ShowMainContent() {
	u.update(func() {
		u.bars.SwitchToPage(barUser)
		u.body.SwitchToPage(pageMain)
		u.modalOpen = false
		u.app.SetFocus(u.input)
	})
}

func (u *UI) AppendMessage(msg domain.ChatMessage) {
	u.update(func() {
		_, _ = fmt.Fprint(u.transcript, formatMessage(msg))
		u.transcript.ScrollToEnd()
	})
}

func (u *UI) ResetTranscript() {
	u.update(func() {
		u.transcript.SetText(formatMessage(domain.AssistantMessage(domain.Greeting)))
	})
}

func (u *UI) SetLoading(on bool) {
	u.update(func() {
		if on {
			u.loading.SetText("[gray]Thinking…[-]")
			return
		}
		u.loading.SetText("")
	})
}

// CloseAuthModal hides the form and clears its fields.
func (u *UI) CloseAuthModal() {
	u.update(func() {
		u.form.GetFormItem(0).(*tview.InputField).SetText("")
		u.form.GetFormItem(1).(*tview.InputField).SetText("")
		u.modalOpen = false
		u.body.HidePage(pageModal)
	})
}

func (u *UI) Show(n notify.Notification) {
	u.mu.Lock()
	u.toasts = append(u.toasts, toast{n: n})
	u.mu.Unlock()
	u.redrawToasts()
}

func (u *UI) Exit(id string) {
	u.mu.Lock()
	for i := range u.toasts {
		if u.toasts[i].n.ID == id {
			u.toasts[i].exiting = true
		}
	}
	u.mu.Unlock()
	u.redrawToasts()
}

func (u *UI) Remove(id string) {
	u.mu.Lock()
	u.toasts = removeToast(u.toasts, id)
	u.mu.Unlock()
	u.redrawToasts()
}

func (u *UI) redrawToasts() {
	u.update(func() {
		u.mu.Lock()
		text := renderToasts(u.toasts)
		u.mu.Unlock()
		u.toastView.SetText(text)
	})
}

func centered(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 1, true).
			AddItem(nil, 0, 1, false), width, 1, true).
		AddItem(nil, 0, 1, false)
}
