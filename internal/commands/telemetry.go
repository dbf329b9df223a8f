package commands

import (
	"context"
	"time"

	"github.com/brightpath-ai/siteadmin/internal/logging"
	"github.com/brightpath-ai/siteadmin/internal/records"
	"github.com/brightpath-ai/siteadmin/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

// TelemetryStatus is the outcome of one command execution.
type TelemetryStatus string

const (
	TelemetryStatusSuccess      TelemetryStatus = "success"
	TelemetryStatusFailed       TelemetryStatus = "failed"
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

// TelemetryInfo is handed to telemetry callbacks after execution.
type TelemetryInfo struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Error     error
	Status    TelemetryStatus
}

// Telemetry is invoked after every execution, successful or not.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

// SlowCommandThreshold is the duration above which successful commands are
// logged at warn level.
const SlowCommandThreshold = 2 * time.Second

// DefaultTelemetry logs command outcomes with duration to logger. Failures
// carry the record error kind so log queries can separate store outages from
// rejected input.
func DefaultTelemetry[T command.Message](logger interfaces.Logger) Telemetry[T] {
	if logger == nil {
		logger = logging.NoOp()
	}
	return func(ctx context.Context, _ T, info TelemetryInfo) {
		entry := logging.WithFields(logger, info.Fields)
		args := []any{"duration_ms", info.Duration.Milliseconds()}
		switch info.Status {
		case TelemetryStatusSuccess:
			if info.Duration > SlowCommandThreshold {
				entry.Warn("command.execute.slow", args...)
				return
			}
			entry.Info("command.execute.success", args...)
		case TelemetryStatusContextError:
			entry.Error("command.execute.context_error", append(args, "error", info.Error)...)
		default:
			args = append(args, "error", info.Error)
			if kind := records.Kind(info.Error); kind != "" {
				args = append(args, "kind", kind)
			}
			entry.Error("command.execute.failed", args...)
		}
	}
}
