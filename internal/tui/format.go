package tui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"

	"chief-of-staff-client/internal/domain"
	"chief-of-staff-client/internal/notify"
)

type toast struct {
	n       notify.Notification
	exiting bool
}

// formatMessage renders one transcript entry with tview colour tags.
func formatMessage(msg domain.ChatMessage) string {
	if msg.Role == domain.RoleUser {
		return fmt.Sprintf("[::b][dodgerblue]You[-][::-]\n%s\n\n", tview.Escape(msg.Content))
	}
	return fmt.Sprintf("[::b][mediumseagreen]Assistant[-][::-]\n%s\n\n", tview.Escape(msg.Content))
}

// renderToasts renders the stacked toasts, newest last.
func renderToasts(toasts []toast) string {
	var b strings.Builder
	for i, t := range toasts {
		if i > 0 {
			b.WriteByte('\n')
		}
		color, mark := "green", "✓"
		if t.n.Kind == domain.NotifyError {
			color, mark = "red", "✗"
		}
		if t.exiting {
			color = "gray"
		}
		fmt.Fprintf(&b, "[%s]%s %s[-]", color, mark, tview.Escape(t.n.Text))
	}
	return b.String()
}

func quickHelp() string {
	parts := make([]string, 0, len(domain.QuickMessages))
	for i, q := range domain.QuickMessages {
		parts = append(parts, fmt.Sprintf("[yellow]F%d[-] %s", i+1, tview.Escape(q)))
	}
	return strings.Join(parts, "  ")
}

func removeToast(toasts []toast, id string) []toast {
	out := toasts[:0]
	for _, t := range toasts {
		if t.n.ID != id {
			out = append(out, t)
		}
	}
	return out
}
