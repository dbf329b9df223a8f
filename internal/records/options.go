package records

import (
	"time"

	"github.com/brightpath-ai/siteadmin/internal/logging"
	"github.com/brightpath-ai/siteadmin/pkg/activity"
	"github.com/brightpath-ai/siteadmin/pkg/interfaces"
)

// Option configures adapters, controllers, editors and managers.
type Option func(*options)

type options struct {
	now        func() time.Time
	window     time.Duration
	logger     interfaces.Logger
	notifier   Notifier
	activity   *activity.Emitter
	recipients []string
	urlFor     func(*Record) string
}

// WithClock overrides the timestamp source.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.now = clock
		}
	}
}

// WithDebounceWindow sets the coalescing window for change notifications.
func WithDebounceWindow(window time.Duration) Option {
	return func(o *options) {
		if window > 0 {
			o.window = window
		}
	}
}

// WithLogger sets the logger used for operational messages.
func WithLogger(logger interfaces.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithNotifier routes shell notifications to notifier.
func WithNotifier(notifier Notifier) Option {
	return func(o *options) {
		if notifier != nil {
			o.notifier = notifier
		}
	}
}

// WithActivityEmitter emits a "create" event addressed to recipients whenever
// a draft is saved as a new record.
func WithActivityEmitter(emitter *activity.Emitter, recipients ...string) Option {
	return func(o *options) {
		o.activity = emitter
		o.recipients = append([]string(nil), recipients...)
	}
}

// WithURLBuilder attaches the public URL of a record to creation events.
func WithURLBuilder(fn func(*Record) string) Option {
	return func(o *options) {
		o.urlFor = fn
	}
}

func buildOptions(opts []Option) options {
	o := options{
		now:      time.Now,
		window:   DefaultDebounceWindow,
		logger:   logging.NoOp(),
		notifier: NotifierFunc(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
