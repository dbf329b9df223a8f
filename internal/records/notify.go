package records

import (
	"context"
	"sync"
	"time"

	"github.com/brightpath-ai/siteadmin/internal/logging"
	"github.com/brightpath-ai/siteadmin/pkg/interfaces"
)

// Level grades a shell notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a transient, dismissible message for the admin shell.
type Notification struct {
	Level      Level     `json:"level"`
	Collection string    `json:"collection"`
	Operation  string    `json:"operation"`
	Message    string    `json:"message"`
	Kind       string    `json:"kind,omitempty"`
	Err        error     `json:"-"`
	At         time.Time `json:"at"`
}

// Notifier receives shell notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function into a Notifier.
type NotifierFunc func(ctx context.Context, n Notification)

func (fn NotifierFunc) Notify(ctx context.Context, n Notification) {
	if fn != nil {
		fn(ctx, n)
	}
}

// Recorder keeps notifications in memory until they are drained.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func (r *Recorder) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// Items returns a snapshot of the recorded notifications.
func (r *Recorder) Items() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

// Drain returns and clears the recorded notifications.
func (r *Recorder) Drain() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.items
	r.items = nil
	return out
}

// LogNotifier writes notifications to a logger.
func LogNotifier(logger interfaces.Logger) Notifier {
	if logger == nil {
		logger = logging.NoOp()
	}
	return NotifierFunc(func(ctx context.Context, n Notification) {
		log := logging.WithFields(logger.WithContext(ctx), map[string]any{
			"collection": n.Collection,
			"operation":  n.Operation,
			"kind":       n.Kind,
		})
		switch n.Level {
		case LevelError:
			log.Error(n.Message, "error", n.Err)
		case LevelWarning:
			log.Warn(n.Message, "error", n.Err)
		default:
			log.Info(n.Message)
		}
	})
}

// Notifiers fans a notification out to several notifiers.
type Notifiers []Notifier

func (ns Notifiers) Notify(ctx context.Context, n Notification) {
	for _, notifier := range ns {
		if notifier != nil {
			notifier.Notify(ctx, n)
		}
	}
}
