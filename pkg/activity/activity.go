package activity

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Event describes a domain action worth recording or fanning out to
// notification channels.
type Event struct {
	Verb           string
	ActorID        string
	UserID         string
	TenantID       string
	ObjectType     string
	ObjectID       string
	Channel        string
	DefinitionCode string
	Recipients     []string
	Metadata       map[string]any
	OccurredAt     time.Time
}

// Hook receives emitted events.
type Hook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc adapts a function into a Hook.
type HookFunc func(ctx context.Context, event Event) error

func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Hooks is an ordered hook list.
type Hooks []Hook

// Config toggles emission and sets defaults applied to every event.
type Config struct {
	Enabled bool
	Channel string
}

// Emitter fans events out to the configured hooks.
type Emitter struct {
	hooks  Hooks
	config Config
	now    func() time.Time
}

// NewEmitter builds an emitter. A nil hook list yields a disabled emitter.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	filtered := make(Hooks, 0, len(hooks))
	for _, hook := range hooks {
		if hook != nil {
			filtered = append(filtered, hook)
		}
	}
	return &Emitter{hooks: filtered, config: cfg, now: time.Now}
}

// Enabled reports whether events will reach at least one hook.
func (e *Emitter) Enabled() bool {
	return e != nil && e.config.Enabled && len(e.hooks) > 0
}

// Emit stamps defaults on event and delivers it to every hook. Hook errors are
// joined; a failing hook does not stop delivery to the rest.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() || event.Verb == "" {
		return nil
	}
	if event.Channel == "" {
		event.Channel = e.config.Channel
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = e.now().UTC()
	}
	var errs []error
	for _, hook := range e.hooks {
		if err := hook.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CaptureHook stores events in memory. Useful in tests.
type CaptureHook struct {
	mu     sync.Mutex
	Events []Event
}

func (h *CaptureHook) Notify(_ context.Context, event Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Events = append(h.Events, event)
	return nil
}

// Snapshot returns a copy of the captured events.
func (h *CaptureHook) Snapshot() []Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Event(nil), h.Events...)
}
