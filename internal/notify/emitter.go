// Package notify shows transient toast notifications. Every call creates an
// independent toast with its own timers; there is no queue and no dedup.
package notify

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"chief-of-staff-client/internal/domain"
)

const (
	// VisibleFor is how long a toast stays fully shown.
	VisibleFor = 3 * time.Second
	// ExitFor is the exit transition before the toast is removed.
	ExitFor = 300 * time.Millisecond
)

// Notification is one toast.
type Notification struct {
	ID   string
	Text string
	Kind domain.NotificationKind
}

// Sink renders toasts. Calls for one ID always arrive in the order
// Show, Exit, Remove, but may come from timer goroutines.
type Sink interface {
	Show(n Notification)
	Exit(id string)
	Remove(id string)
}

// Scheduler runs f once after d.
type Scheduler func(d time.Duration, f func())

func afterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// Emitter creates toasts on a Sink.
type Emitter struct {
	sink  Sink
	after Scheduler
	newID func() string
	log   zerolog.Logger
}

type Option func(*Emitter)

func WithScheduler(s Scheduler) Option {
	return func(e *Emitter) {
		e.after = s
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(e *Emitter) {
		e.log = l
	}
}

func NewEmitter(sink Sink, opts ...Option) (*Emitter, error) {
	if sink == nil {
		return nil, errors.New("notify: sink must not be nil")
	}
	e := &Emitter{
		sink:  sink,
		after: afterFunc,
		newID: uuid.NewString,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Notify shows text and schedules its removal. It returns the toast ID.
func (e *Emitter) Notify(text string, kind domain.NotificationKind) string {
	n := Notification{ID: e.newID(), Text: text, Kind: kind}
	e.log.Debug().Str("id", n.ID).Str("kind", string(kind)).Str("text", text).Msg("notification")
	e.sink.Show(n)
	e.after(VisibleFor, func() {
		e.sink.Exit(n.ID)
		e.after(ExitFor, func() {
			e.sink.Remove(n.ID)
		})
	})
	return n.ID
}
