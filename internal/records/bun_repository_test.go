package records_test

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/brightpath-ai/siteadmin/internal/logging/console"
	"github.com/brightpath-ai/siteadmin/internal/records"
	"github.com/brightpath-ai/siteadmin/pkg/testsupport"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func newBunTable(t *testing.T) (*records.BunTable, *bun.DB) {
	t.Helper()
	db, err := testsupport.NewBunDB(t.Name())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := records.EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return records.NewBunTable(db), db
}

func TestBunTableRoundTrip(t *testing.T) {
	table, _ := newBunTable(t)
	ctx := context.Background()

	created, err := table.Insert(ctx, "services", &records.Record{
		Slug:       "strategy",
		Title:      "Strategy",
		OrderIndex: 2,
		IsActive:   true,
		Fields: map[string]any{
			"description": "Roadmaps",
			"features":    []any{"Assessment", "Pilot"},
		},
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatalf("expected id to be assigned")
	}

	loaded, err := table.Get(ctx, "services", created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.Title != "Strategy" || !loaded.IsActive || loaded.Fields["description"] != "Roadmaps" {
		t.Fatalf("unexpected loaded record %+v", loaded)
	}
	features, ok := loaded.Fields["features"].([]any)
	if !ok || len(features) != 2 {
		t.Fatalf("expected features payload to round trip, got %#v", loaded.Fields["features"])
	}

	order := 0
	updated, err := table.Update(ctx, "services", created.ID, records.Patch{OrderIndex: &order, LastModifiedBy: actorID, UpdatedAt: fixedTime})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.OrderIndex != 0 || updated.Title != "Strategy" || updated.LastModifiedBy != actorID {
		t.Fatalf("unexpected updated record %+v", updated)
	}

	if err := table.Delete(ctx, "services", created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := table.Get(ctx, "services", created.ID); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestBunTableSelectPartitionsByCollectionAndOrders(t *testing.T) {
	table, _ := newBunTable(t)
	ctx := context.Background()

	for _, item := range []struct {
		collection string
		slug       string
		order      int
	}{
		{"pages", "contact", 7},
		{"pages", "home", 0},
		{"services", "strategy", 1},
		{"pages", "about", 3},
	} {
		if _, err := table.Insert(ctx, item.collection, &records.Record{Slug: item.slug, Title: item.slug, OrderIndex: item.order}); err != nil {
			t.Fatalf("insert %s: %v", item.slug, err)
		}
	}

	list, err := table.Select(ctx, "pages", records.Query{})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	slugs := make([]string, 0, len(list))
	for _, record := range list {
		slugs = append(slugs, record.Slug)
	}
	if !slices.Equal(slugs, []string{"home", "about", "contact"}) {
		t.Fatalf("unexpected page order %v", slugs)
	}

	matches, err := table.Select(ctx, "pages", records.Query{Slug: "about"})
	if err != nil {
		t.Fatalf("select by slug: %v", err)
	}
	if len(matches) != 1 || matches[0].Slug != "about" {
		t.Fatalf("expected one slug match, got %d", len(matches))
	}
}

func TestBunTableMissingRecords(t *testing.T) {
	table, _ := newBunTable(t)
	ctx := context.Background()
	title := "x"

	if _, err := table.Update(ctx, "pages", uuid.New(), records.Patch{Title: &title}); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected update not found, got %v", err)
	}
	if err := table.Delete(ctx, "pages", uuid.New()); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected delete not found, got %v", err)
	}

	created, err := table.Insert(ctx, "pages", &records.Record{Slug: "home", Title: "Home"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := table.Get(ctx, "services", created.ID); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected record to be invisible from another collection, got %v", err)
	}
}

func TestManagerOverBunTableAssignsOrder(t *testing.T) {
	table, _ := newBunTable(t)
	manager := records.NewManager(pagesDescriptor(), table, records.WithClock(fixedClock))
	ctx := context.Background()
	if err := manager.Controller().Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	editor := manager.Editor()
	for _, title := range []string{"Home", "About", "Contact"} {
		if _, err := editor.StartNew(map[string]any{"title": title}); err != nil {
			t.Fatalf("start new: %v", err)
		}
		if _, err := editor.Save(ctx, actorID); err != nil {
			t.Fatalf("save %s: %v", title, err)
		}
	}
	visible := manager.Controller().Visible()
	if got := titles(visible); !slices.Equal(got, []string{"Home", "About", "Contact"}) {
		t.Fatalf("unexpected visible order %v", got)
	}
	if _, err := manager.Controller().Reorder(ctx, visible[2].ID, records.Up, actorID); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	if err := manager.Controller().Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got := titles(manager.Controller().Visible()); !slices.Equal(got, []string{"Home", "Contact", "About"}) {
		t.Fatalf("unexpected order after reorder %v", got)
	}
}

type manualChangeSource struct {
	subs map[string][]func()
}

func (s *manualChangeSource) Subscribe(table string, onChange func()) func() {
	if s.subs == nil {
		s.subs = map[string][]func(){}
	}
	s.subs[table] = append(s.subs[table], onChange)
	return func() {}
}

func (s *manualChangeSource) Fire(table string) {
	for _, fn := range s.subs[table] {
		fn()
	}
}

type failingPublisher struct{ err error }

func (p failingPublisher) Publish(context.Context, string) error { return p.err }

func newCachedBunTable(t *testing.T, opts ...records.BunTableOption) (*records.BunTable, *bun.DB) {
	t.Helper()
	db, err := testsupport.NewBunDB(t.Name())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := records.EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	service, err := cache.NewCacheService(cache.DefaultConfig())
	if err != nil {
		t.Fatalf("cache service: %v", err)
	}
	opts = append([]records.BunTableOption{records.WithCache(service, cache.NewDefaultKeySerializer())}, opts...)
	return records.NewBunTable(db, opts...), db
}

func TestBunTableWithCacheKeepsCollectionsApart(t *testing.T) {
	table, _ := newCachedBunTable(t)
	ctx := context.Background()

	if _, err := table.Insert(ctx, "pages", &records.Record{Slug: "about", Title: "About"}); err != nil {
		t.Fatalf("insert page: %v", err)
	}
	service, err := table.Insert(ctx, "services", &records.Record{Slug: "strategy", Title: "Strategy"})
	if err != nil {
		t.Fatalf("insert service: %v", err)
	}

	for round := 0; round < 2; round++ {
		pages, err := table.Select(ctx, "pages", records.Query{})
		if err != nil {
			t.Fatalf("select pages: %v", err)
		}
		services, err := table.Select(ctx, "services", records.Query{})
		if err != nil {
			t.Fatalf("select services: %v", err)
		}
		if len(pages) != 1 || pages[0].Collection != "pages" {
			t.Fatalf("round %d: expected only the page, got %+v", round, pages)
		}
		if len(services) != 1 || services[0].Collection != "services" {
			t.Fatalf("round %d: expected only the service, got %+v", round, services)
		}
		bySlug, err := table.Select(ctx, "services", records.Query{Slug: "about"})
		if err != nil || len(bySlug) != 0 {
			t.Fatalf("round %d: expected no service with the page slug, got %v err=%v", round, bySlug, err)
		}
	}

	if _, err := table.Get(ctx, "pages", service.ID); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected service id to miss in pages, got %v", err)
	}
}

func TestBunTableWithCacheSeesExternalWrites(t *testing.T) {
	source := &manualChangeSource{}
	table, db := newCachedBunTable(t, records.WithChangeSource(source))
	ctx := context.Background()

	created, err := table.Insert(ctx, "services", &records.Record{Slug: "strategy", Title: "Strategy", OrderIndex: 5})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := table.Select(ctx, "services", records.Query{}); err != nil {
		t.Fatalf("prime select: %v", err)
	}
	if _, err := table.Get(ctx, "services", created.ID); err != nil {
		t.Fatalf("prime get: %v", err)
	}

	signalled := 0
	unsubscribe := table.Subscribe("services", func() { signalled++ })
	defer unsubscribe()

	if _, err := db.NewUpdate().Model((*records.Record)(nil)).
		Set("order_index = ?", 9).
		Where("id = ?", created.ID).
		Exec(ctx); err != nil {
		t.Fatalf("external update: %v", err)
	}
	source.Fire("services")
	if signalled != 1 {
		t.Fatalf("expected the external signal to reach subscribers, got %d", signalled)
	}

	listed, err := table.Select(ctx, "services", records.Query{})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(listed) != 1 || listed[0].OrderIndex != 9 {
		t.Fatalf("expected list to reflect external write, got %+v", listed)
	}
	loaded, err := table.Get(ctx, "services", created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.OrderIndex != 9 {
		t.Fatalf("expected get to reflect external write after signal, got %d", loaded.OrderIndex)
	}
}

func TestBunTableWithCacheReadsOwnWrites(t *testing.T) {
	table, _ := newCachedBunTable(t)
	ctx := context.Background()

	created, err := table.Insert(ctx, "pages", &records.Record{Slug: "home", Title: "Home"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := table.Get(ctx, "pages", created.ID); err != nil {
		t.Fatalf("prime get: %v", err)
	}
	title := "Welcome"
	if _, err := table.Update(ctx, "pages", created.ID, records.Patch{Title: &title}); err != nil {
		t.Fatalf("update: %v", err)
	}
	loaded, err := table.Get(ctx, "pages", created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.Title != "Welcome" {
		t.Fatalf("expected updated title, got %q", loaded.Title)
	}
}

func TestBunTableLogsFailedChangePublish(t *testing.T) {
	db, err := testsupport.NewBunDB(t.Name())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := records.EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	var buf bytes.Buffer
	logger := console.NewProvider(console.Options{Writer: &buf}).GetLogger("siteadmin.store")
	table := records.NewBunTable(db,
		records.WithChangePublisher(failingPublisher{err: errors.New("pg_notify: connection closed")}),
		records.WithTableLogger(logger),
	)

	if _, err := table.Insert(context.Background(), "pages", &records.Record{Slug: "home", Title: "Home"}); err != nil {
		t.Fatalf("insert should succeed when the notification fails, got %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "records.notify.failed") || !strings.Contains(out, "connection closed") {
		t.Fatalf("expected notify failure to be logged, got %q", out)
	}
}
