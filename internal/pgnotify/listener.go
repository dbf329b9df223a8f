package pgnotify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/brightpath-ai/siteadmin/internal/logging"
	"github.com/brightpath-ai/siteadmin/pkg/interfaces"
	"github.com/lib/pq"
)

const (
	minReconnect = 10 * time.Second
	maxReconnect = time.Minute
)

// Stream is the subset of *pq.Listener the Listener consumes.
type Stream interface {
	Listen(channel string) error
	NotificationChannel() <-chan *pq.Notification
	Close() error
}

// Listener fans Postgres notifications out to per-collection subscribers. It
// satisfies records.ChangeSource.
type Listener struct {
	stream  Stream
	channel string
	logger  interfaces.Logger

	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]func()
}

// ListenerOption configures a Listener.
type ListenerOption func(*Listener)

// WithLogger sets the listener logger.
func WithLogger(logger interfaces.Logger) ListenerOption {
	return func(l *Listener) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// Dial opens a pq listener on dsn and subscribes to channel.
func Dial(dsn, channel string, opts ...ListenerOption) (*Listener, error) {
	listener := newListener(nil, channel, opts...)
	stream := pq.NewListener(dsn, minReconnect, maxReconnect, func(event pq.ListenerEventType, err error) {
		listener.event(event, err)
	})
	listener.stream = stream
	if err := stream.Listen(listener.channel); err != nil {
		_ = stream.Close()
		return nil, fmt.Errorf("pgnotify: listen %s: %w", listener.channel, err)
	}
	return listener, nil
}

// NewListener wraps an already listening stream.
func NewListener(stream Stream, channel string, opts ...ListenerOption) *Listener {
	return newListener(stream, channel, opts...)
}

func newListener(stream Stream, channel string, opts ...ListenerOption) *Listener {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = DefaultChannel
	}
	l := &Listener{
		stream:  stream,
		channel: channel,
		logger:  logging.NoOp(),
		subs:    make(map[string]map[int]func()),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Subscribe registers onChange for notifications naming table.
func (l *Listener) Subscribe(table string, onChange func()) func() {
	if onChange == nil {
		return func() {}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	id := l.nextID
	if l.subs[table] == nil {
		l.subs[table] = make(map[int]func())
	}
	l.subs[table][id] = onChange

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			delete(l.subs[table], id)
		})
	}
}

// Run dispatches notifications until ctx is done or the stream closes.
func (l *Listener) Run(ctx context.Context) error {
	if l.stream == nil {
		return fmt.Errorf("pgnotify: listener has no stream")
	}
	notifications := l.stream.NotificationChannel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n, ok := <-notifications:
			if !ok {
				return nil
			}
			if n == nil {
				// Notifications sent while disconnected are lost.
				l.dispatchAll()
				continue
			}
			if n.Channel != l.channel {
				continue
			}
			l.dispatch(strings.TrimSpace(n.Extra))
		}
	}
}

// Close stops the underlying stream.
func (l *Listener) Close() error {
	if l.stream == nil {
		return nil
	}
	return l.stream.Close()
}

func (l *Listener) dispatch(table string) {
	l.mu.Lock()
	callbacks := make([]func(), 0, len(l.subs[table]))
	for _, fn := range l.subs[table] {
		callbacks = append(callbacks, fn)
	}
	l.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}

func (l *Listener) dispatchAll() {
	l.mu.Lock()
	callbacks := make([]func(), 0)
	for _, subs := range l.subs {
		for _, fn := range subs {
			callbacks = append(callbacks, fn)
		}
	}
	l.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}

func (l *Listener) event(event pq.ListenerEventType, err error) {
	switch event {
	case pq.ListenerEventConnected:
		l.logger.Debug("pgnotify.connected", "channel", l.channel)
	case pq.ListenerEventDisconnected:
		l.logger.Warn("pgnotify.disconnected", "channel", l.channel, "error", err)
	case pq.ListenerEventReconnected:
		l.logger.Info("pgnotify.reconnected", "channel", l.channel)
	case pq.ListenerEventConnectionAttemptFailed:
		l.logger.Warn("pgnotify.connect_failed", "channel", l.channel, "error", err)
	}
}
