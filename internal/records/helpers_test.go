package records_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brightpath-ai/siteadmin/internal/records"
	"github.com/google/uuid"
)

var (
	actorID   = uuid.MustParse("5f7c1c9e-2d1a-4b1e-9d55-7a1f3f0c0a11")
	fixedTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	storeDown = errors.New("connection reset by peer")
)

func fixedClock() time.Time { return fixedTime }

func pagesDescriptor() records.Descriptor {
	return records.Descriptor{
		Table:        "pages",
		Label:        "Page",
		Required:     []string{"title", "slug"},
		Flags:        []records.Flag{records.FlagPublished, records.FlagActive},
		SearchFields: []string{"meta.description"},
	}
}

func servicesDescriptor() records.Descriptor {
	return records.Descriptor{
		Table:        "services",
		Label:        "Service",
		Required:     []string{"title", "description"},
		Template:     map[string]any{"features": []any{}},
		Flags:        []records.Flag{records.FlagActive, records.FlagFeatured},
		SearchFields: []string{"description"},
	}
}

func useCasesDescriptor() records.Descriptor {
	return records.Descriptor{
		Table:        "use_cases",
		Label:        "Use case",
		Required:     []string{"title", "industry", "challenge"},
		CategoryFrom: "industry",
		Flags:        []records.Flag{records.FlagPublished, records.FlagFeatured},
	}
}

// seed stores records in order, assigning ids and increasing creation times.
func seed(store *records.MemoryTable, table string, items ...*records.Record) []*records.Record {
	out := make([]*records.Record, 0, len(items))
	for i, item := range items {
		record := records.CloneRecord(item)
		if record.ID == uuid.Nil {
			record.ID = uuid.New()
		}
		if record.Slug == "" {
			record.Slug = records.DeriveSlug(record.Title)
		}
		if record.CreatedAt.IsZero() {
			record.CreatedAt = fixedTime.Add(-time.Duration(len(items)-i) * time.Hour)
		}
		store.Put(table, record)
		out = append(out, record)
	}
	return out
}

type fixture struct {
	store      *records.MemoryTable
	recorder   *records.Recorder
	controller *records.Controller
	editor     *records.Editor
}

func newFixture(t *testing.T, desc records.Descriptor, items ...*records.Record) (*fixture, []*records.Record) {
	t.Helper()
	store := records.NewMemoryTable()
	seeded := seed(store, desc.Table, items...)
	recorder := &records.Recorder{}
	manager := records.NewManager(desc, store,
		records.WithClock(fixedClock),
		records.WithNotifier(recorder),
	)
	if err := manager.Controller().Refresh(context.Background()); err != nil {
		t.Fatalf("initial refresh: %v", err)
	}
	return &fixture{
		store:      store,
		recorder:   recorder,
		controller: manager.Controller(),
		editor:     manager.Editor(),
	}, seeded
}

func titles(list []*records.Record) []string {
	out := make([]string, 0, len(list))
	for _, record := range list {
		out = append(out, record.Title)
	}
	return out
}

func orderOf(t *testing.T, store *records.MemoryTable, table string, id uuid.UUID) int {
	t.Helper()
	record, err := store.Get(context.Background(), table, id)
	if err != nil {
		t.Fatalf("get %s: %v", id, err)
	}
	return record.OrderIndex
}
