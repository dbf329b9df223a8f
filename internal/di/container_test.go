package di_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	recordscmd "github.com/brightpath-ai/siteadmin/internal/commands/records"
	"github.com/brightpath-ai/siteadmin/internal/di"
	"github.com/brightpath-ai/siteadmin/internal/records"
	"github.com/brightpath-ai/siteadmin/internal/runtimeconfig"
	"github.com/brightpath-ai/siteadmin/internal/services"
	"github.com/brightpath-ai/siteadmin/pkg/activity"
	"github.com/brightpath-ai/siteadmin/pkg/testsupport"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var testActor = uuid.MustParse("6f1c2d3e-4b5a-4c6d-8e7f-90a1b2c3d4e5")

func newTestDB(t *testing.T, name string) *bun.DB {
	t.Helper()
	db, err := testsupport.NewBunDB(name)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func createService(t *testing.T, container *di.Container, title string) *records.Record {
	t.Helper()
	result := &recordscmd.Result{}
	err := container.Handlers().Create.Execute(context.Background(), recordscmd.CreateRecordCommand{
		Collection: services.Table,
		Values:     map[string]any{"title": title, "description": title + " for growing teams"},
		ActorID:    testActor,
		Result:     result,
	})
	if err != nil {
		t.Fatalf("create %q: %v", title, err)
	}
	return result.Record
}

func TestNewContainerRejectsInvalidConfig(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Driver = "mysql"

	if _, err := di.NewContainer(cfg); !errors.Is(err, runtimeconfig.ErrStorageDriverUnknown) {
		t.Fatalf("expected ErrStorageDriverUnknown, got %v", err)
	}
}

func TestContainerWiresEveryContentType(t *testing.T) {
	container, err := di.NewContainer(runtimeconfig.DefaultConfig(), di.WithTable(records.NewMemoryTable()))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	var names []string
	for _, manager := range container.Managers().All() {
		names = append(names, manager.Descriptor().Table)
	}
	if strings.Join(names, ",") != "pages,services,use_cases" {
		t.Fatalf("unexpected managers %v", names)
	}
	if container.DB() != nil {
		t.Fatalf("expected no database when a table is supplied")
	}
}

func TestContainerEmitsCreationEventToOperationsMailbox(t *testing.T) {
	capture := &activity.CaptureHook{}
	cfg := runtimeconfig.DefaultConfig()
	cfg.Notifications.OperationsMailbox = "ops@brightpath.example"
	cfg.Links.BaseURL = "https://brightpath.example"

	container, err := di.NewContainer(cfg,
		di.WithTable(records.NewMemoryTable()),
		di.WithActivityHooks(capture),
	)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	created := createService(t, container, "AI Strategy")

	events := capture.Snapshot()
	if len(events) != 1 {
		t.Fatalf("expected one creation event, got %d", len(events))
	}
	event := events[0]
	if event.Verb != "create" || event.ObjectID != created.ID.String() || event.Channel != "email" {
		t.Fatalf("unexpected event %+v", event)
	}
	if len(event.Recipients) != 1 || event.Recipients[0] != "ops@brightpath.example" {
		t.Fatalf("expected operations mailbox recipient, got %v", event.Recipients)
	}
	if event.Metadata["url"] != "https://brightpath.example/services/ai-strategy" {
		t.Fatalf("expected public url, got %v", event.Metadata["url"])
	}
	if event.Metadata["order_index"] != 0 {
		t.Fatalf("expected order index, got %v", event.Metadata["order_index"])
	}
	if items := container.Inbox().Items(); len(items) == 0 {
		t.Fatalf("expected a saved notification in the inbox")
	}
}

func TestContainerOverSQLiteRoundTrips(t *testing.T) {
	db := newTestDB(t, "container_sqlite_round_trip")
	container, err := di.NewContainer(runtimeconfig.DefaultConfig(), di.WithBunDB(db))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	ctx := context.Background()
	if err := container.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := container.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	createService(t, container, "AI Strategy")
	second := createService(t, container, "Data Audit")
	if second.OrderIndex != 1 {
		t.Fatalf("expected second service at order 1, got %d", second.OrderIndex)
	}

	stored, err := container.Table().Select(ctx, services.Table, records.Query{})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(stored) != 2 || stored[1].Title != "Data Audit" {
		t.Fatalf("unexpected stored records %+v", stored)
	}
}

func TestContainerAdminAPIUsesConfiguredPaths(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.HTTP.BasePath = "/api"
	cfg.HTTP.ActorHeader = "X-Editor"

	container, err := di.NewContainer(cfg, di.WithTable(records.NewMemoryTable()))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	mux := http.NewServeMux()
	if err := container.AdminAPI().Register(mux); err != nil {
		t.Fatalf("register: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/collections", nil)
	req.Header.Set("X-Editor", "editor@brightpath.example")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"name":"use_cases"`) {
		t.Fatalf("expected use_cases collection, got %s", rec.Body.String())
	}
}

func TestOpenDBRejectsUnknownDriver(t *testing.T) {
	_, err := di.OpenDB(runtimeconfig.StorageConfig{Driver: "oracle", DSN: "x"})
	if !errors.Is(err, runtimeconfig.ErrStorageDriverUnknown) {
		t.Fatalf("expected ErrStorageDriverUnknown, got %v", err)
	}
	if _, err := di.OpenDB(runtimeconfig.StorageConfig{Driver: "sqlite"}); !errors.Is(err, runtimeconfig.ErrStorageDSNRequired) {
		t.Fatalf("expected ErrStorageDSNRequired, got %v", err)
	}
}

func TestNewLoggerProviderSelectsBackend(t *testing.T) {
	if _, err := di.NewLoggerProvider(runtimeconfig.LoggingConfig{Provider: "console", Level: "loud"}); err == nil {
		t.Fatalf("expected invalid console level error")
	}
	provider, err := di.NewLoggerProvider(runtimeconfig.LoggingConfig{Provider: "gologger", Level: "info", Format: "json"})
	if err != nil || provider == nil {
		t.Fatalf("expected gologger provider, got %v %v", provider, err)
	}
}
