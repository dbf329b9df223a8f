package commands

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brightpath-ai/siteadmin/internal/records"
	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	goerrors "github.com/goliatone/go-errors"
)

type refreshListCommand struct {
	Collection string
}

func (refreshListCommand) Type() string { return "siteadmin.test.refresh_list" }

func (cmd refreshListCommand) Validate() error {
	if cmd.Collection == "" {
		return errors.New("collection required")
	}
	return nil
}

// A store outage on the first attempt is retried by the dispatcher and the
// second attempt succeeds.
func TestDispatcherRetriesTransientStoreFailure(t *testing.T) {
	var attempts atomic.Int32
	handler := NewHandler(func(ctx context.Context, _ refreshListCommand) error {
		if attempts.Add(1) == 1 {
			return &records.StoreError{Op: "select", Collection: "services", Err: errors.New("connection reset")}
		}
		return nil
	}, WithTimeout[refreshListCommand](time.Second))

	sub := dispatcher.SubscribeCommand(handler, runner.WithMaxRetries(1))
	t.Cleanup(sub.Unsubscribe)

	if err := dispatcher.Dispatch(context.Background(), refreshListCommand{Collection: "services"}); err != nil {
		t.Fatalf("dispatch: expected success after retry, got %v", err)
	}
	if got := attempts.Load(); got != 2 {
		t.Fatalf("expected 2 attempts, got %d", got)
	}
}

func TestDispatcherSurfacesPersistentStoreFailure(t *testing.T) {
	var attempts atomic.Int32
	handler := NewHandler(func(ctx context.Context, _ refreshListCommand) error {
		attempts.Add(1)
		return &records.StoreError{Op: "select", Collection: "use_cases", Err: errors.New("connection refused")}
	}, WithTimeout[refreshListCommand](time.Second))

	sub := dispatcher.SubscribeCommand(handler, runner.WithMaxRetries(2))
	t.Cleanup(sub.Unsubscribe)

	err := dispatcher.Dispatch(context.Background(), refreshListCommand{Collection: "use_cases"})
	if err == nil {
		t.Fatal("expected dispatcher to return error after exhausting retries")
	}
	if got := attempts.Load(); got != 3 {
		t.Fatalf("expected 3 attempts (initial + 2 retries), got %d", got)
	}

	direct := handler.Execute(context.Background(), refreshListCommand{Collection: "use_cases"})
	if !errors.Is(direct, records.ErrStoreUnavailable) {
		t.Fatalf("expected store unavailable in chain, got %v", direct)
	}
	if !goerrors.IsCategory(direct, goerrors.CategoryExternal) {
		t.Fatalf("expected external category, got %v", direct)
	}
}

func TestDispatcherRejectsInvalidMessageWithoutRunning(t *testing.T) {
	var attempts atomic.Int32
	handler := NewHandler(func(ctx context.Context, _ refreshListCommand) error {
		attempts.Add(1)
		return nil
	})

	sub := dispatcher.SubscribeCommand(handler, runner.WithMaxRetries(0))
	t.Cleanup(sub.Unsubscribe)

	if err := dispatcher.Dispatch(context.Background(), refreshListCommand{}); err == nil {
		t.Fatalf("expected validation failure for missing collection")
	}
	if got := attempts.Load(); got != 0 {
		t.Fatalf("expected handler not to run, got %d attempts", got)
	}
}
