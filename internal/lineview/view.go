// Package lineview renders the client as plain lines on a writer. The
// one-shot CLI commands use it.
package lineview

import (
	"fmt"
	"io"
	"sync"

	"chief-of-staff-client/internal/domain"
	"chief-of-staff-client/internal/notify"
)

// View implements usecase.View and notify.Sink.
type View struct {
	mu      sync.Mutex
	w       io.Writer
	section domain.Section
	loading bool
}

func New(w io.Writer) *View {
	return &View{w: w}
}

// Section is the last section shown.
func (v *View) Section() domain.Section {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.section
}

func (v *View) ShowAuthSection() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.section == domain.SectionAuth {
		return
	}
	v.section = domain.SectionAuth
	v.printf("Not signed in. Use `login`, `register` or `google-login`.\n")
}

func (v *View) ShowMainContent() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.section = domain.SectionMain
}

func (v *View) AppendMessage(msg domain.ChatMessage) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.printf("%s: %s\n", speaker(msg.Role), msg.Content)
}

func (v *View) ResetTranscript() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.printf("%s: %s\n", speaker(domain.RoleAssistant), domain.Greeting)
}

func (v *View) SetLoading(on bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if on && !v.loading {
		v.printf("…\n")
	}
	v.loading = on
}

func (v *View) CloseAuthModal() {}

func (v *View) Show(n notify.Notification) {
	v.mu.Lock()
	defer v.mu.Unlock()
	mark := "✓"
	if n.Kind == domain.NotifyError {
		mark = "✗"
	}
	v.printf("[%s] %s\n", mark, n.Text)
}

// Exit and Remove are no-ops: a printed line cannot be taken back.
func (v *View) Exit(string)   {}
func (v *View) Remove(string) {}

func (v *View) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(v.w, format, args...)
}

func speaker(role string) string {
	if role == domain.RoleUser {
		return "you"
	}
	return "assistant"
}
