package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/pebble/v2"
	"github.com/rs/zerolog"
)

const (
	defaultOpenAttempts = 40
	defaultOpenBackoff  = 25 * time.Millisecond
)

// PebbleStore is the on-disk key-value store used as the client's local
// storage. The database is opened for each operation and closed right
// after, so the directory lock is only held briefly and several client
// processes can share one profile. Writes are synced so a crash never
// resurrects a cleared token.
type PebbleStore struct {
	dir      string
	log      zerolog.Logger
	attempts int
	backoff  time.Duration

	// mu serialises operations of this process; other processes are
	// waited out by retrying the open.
	mu sync.Mutex
}

type PebbleOption func(*PebbleStore)

// WithPebbleLogger routes Pebble's own log output to l.
func WithPebbleLogger(l zerolog.Logger) PebbleOption {
	return func(s *PebbleStore) {
		s.log = l
	}
}

// WithOpenRetry sets how often and how fast a locked database is retried.
func WithOpenRetry(attempts int, backoff time.Duration) PebbleOption {
	return func(s *PebbleStore) {
		if attempts > 0 {
			s.attempts = attempts
		}
		if backoff > 0 {
			s.backoff = backoff
		}
	}
}

// NewPebbleStore prepares a Pebble database in dir, creating it if needed.
func NewPebbleStore(dir string, opts ...PebbleOption) (*PebbleStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("repository: data dir must not be empty")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("repository: create data dir: %w", err)
	}
	s := &PebbleStore{
		dir:      filepath.Clean(dir),
		log:      zerolog.Nop(),
		attempts: defaultOpenAttempts,
		backoff:  defaultOpenBackoff,
	}
	for _, opt := range opts {
		opt(s)
	}
	// Fail fast on an unusable directory.
	if err := s.withDB(context.Background(), func(*pebble.DB) error { return nil }); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PebbleStore) Get(ctx context.Context, key string) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := s.withDB(ctx, func(db *pebble.DB) error {
		val, closer, err := db.Get([]byte(key))
		if errors.Is(err, pebble.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("repository: pebble get %q: %w", key, err)
		}
		// val is only valid until closer is closed.
		value, found = string(val), true
		return closer.Close()
	})
	if err != nil {
		return "", false, err
	}
	return value, found, nil
}

func (s *PebbleStore) Put(ctx context.Context, key, value string) error {
	return s.withDB(ctx, func(db *pebble.DB) error {
		if err := db.Set([]byte(key), []byte(value), pebble.Sync); err != nil {
			return fmt.Errorf("repository: pebble set %q: %w", key, err)
		}
		return nil
	})
}

func (s *PebbleStore) Delete(ctx context.Context, key string) error {
	return s.withDB(ctx, func(db *pebble.DB) error {
		if err := db.Delete([]byte(key), pebble.Sync); err != nil {
			return fmt.Errorf("repository: pebble delete %q: %w", key, err)
		}
		return nil
	})
}

func (s *PebbleStore) withDB(ctx context.Context, fn func(db *pebble.DB) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	fnErr := fn(db)
	if err := db.Close(); err != nil && fnErr == nil {
		fnErr = fmt.Errorf("repository: close pebble: %w", err)
	}
	return fnErr
}

// open retries while another process holds the directory lock.
func (s *PebbleStore) open(ctx context.Context) (*pebble.DB, error) {
	var lastErr error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		db, err := pebble.Open(s.dir, &pebble.Options{Logger: pebbleLogger{log: s.log}})
		if err == nil {
			return db, nil
		}
		lastErr = err
		s.log.Debug().Err(err).Int("attempt", attempt).Msg("pebble open failed, retrying")
		if attempt == s.attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("repository: open pebble: %w", ctx.Err())
		case <-time.After(s.backoff):
		}
	}
	return nil, fmt.Errorf("repository: open pebble: %w", lastErr)
}

// pebbleLogger adapts zerolog to pebble.Logger. Pebble's info output is
// internal bookkeeping, so it goes to debug.
type pebbleLogger struct {
	log zerolog.Logger
}

func (l pebbleLogger) Infof(format string, args ...interface{}) {
	l.log.Debug().Str("component", "pebble").Msgf(format, args...)
}

func (l pebbleLogger) Errorf(format string, args ...interface{}) {
	l.log.Error().Str("component", "pebble").Msgf(format, args...)
}

// Fatalf must not return; panicking keeps deferred closes running.
func (l pebbleLogger) Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.log.Error().Str("component", "pebble").Msg(msg)
	panic(msg)
}
