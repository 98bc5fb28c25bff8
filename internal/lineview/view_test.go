package lineview

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"chief-of-staff-client/internal/domain"
	"chief-of-staff-client/internal/notify"
)

func TestView_RendersTranscriptAndToasts(t *testing.T) {
	var buf bytes.Buffer
	v := New(&buf)

	v.ShowMainContent()
	v.AppendMessage(domain.UserMessage("hello"))
	v.SetLoading(true)
	v.AppendMessage(domain.AssistantMessage("hi there"))
	v.SetLoading(false)
	v.Show(notify.Notification{ID: "1", Text: "Logged in successfully!", Kind: domain.NotifySuccess})
	v.Show(notify.Notification{ID: "2", Text: "Please log in again.", Kind: domain.NotifyError})
	v.Exit("1")
	v.Remove("1")

	require.Equal(t,
		"you: hello\n"+
			"…\n"+
			"assistant: hi there\n"+
			"[✓] Logged in successfully!\n"+
			"[✗] Please log in again.\n",
		buf.String())
	require.Equal(t, domain.SectionMain, v.Section())
}

func TestView_AuthSectionPrintedOnce(t *testing.T) {
	var buf bytes.Buffer
	v := New(&buf)

	v.ShowAuthSection()
	v.ShowAuthSection()
	require.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("Not signed in")))
	require.Equal(t, domain.SectionAuth, v.Section())
}

func TestView_ResetTranscriptShowsGreeting(t *testing.T) {
	var buf bytes.Buffer
	v := New(&buf)
	v.ResetTranscript()
	require.Contains(t, buf.String(), "Chief of Staff")
}
