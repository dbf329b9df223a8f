package recordscmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/brightpath-ai/siteadmin/internal/commands/fixtures"
	"github.com/brightpath-ai/siteadmin/internal/pages"
	"github.com/brightpath-ai/siteadmin/internal/records"
	"github.com/brightpath-ai/siteadmin/internal/services"
	"github.com/goliatone/go-command/dispatcher"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

type harness struct {
	store *records.MemoryTable
	index *ManagerIndex
	set   *HandlerSet
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := records.NewMemoryTable()
	clock := func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) }
	index := NewManagerIndex(
		records.NewManager(pages.Descriptor(), store, records.WithClock(clock)),
		records.NewManager(services.Descriptor(), store, records.WithClock(clock)),
	)
	set, err := RegisterRecordCommands(nil, index, nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return &harness{store: store, index: index, set: set}
}

func (h *harness) createService(t *testing.T, title string) *records.Record {
	t.Helper()
	result := &Result{}
	err := h.set.Create.Execute(context.Background(), CreateRecordCommand{
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

func TestCreateHandlerSavesRecord(t *testing.T) {
	h := newHarness(t)
	record := h.createService(t, "AI Strategy")

	if record.Slug != "ai-strategy" || record.OrderIndex != 0 {
		t.Fatalf("unexpected record %+v", record)
	}
	if record.LastModifiedBy != testActor {
		t.Fatalf("expected provenance, got %s", record.LastModifiedBy)
	}
	pricing, _ := record.Fields["pricing"].(map[string]any)
	if pricing["model"] != services.PricingCustom {
		t.Fatalf("expected template pricing, got %v", record.Fields["pricing"])
	}
}

func TestCreateHandlerCategorisesValidationFailure(t *testing.T) {
	h := newHarness(t)
	err := h.set.Create.Execute(context.Background(), CreateRecordCommand{
		Collection: services.Table,
		Values:     map[string]any{"title": "Data Audit"},
		ActorID:    testActor,
	})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if !errors.Is(err, records.ErrValidation) {
		t.Fatalf("expected records.ErrValidation in chain, got %v", err)
	}
	if h.store.Calls(records.OpInsert) != 0 {
		t.Fatalf("expected no insert on validation failure")
	}
}

func TestUpdateHandlerAppliesFieldPaths(t *testing.T) {
	h := newHarness(t)
	created := h.createService(t, "AI Strategy")

	result := &Result{}
	err := h.set.Update.Execute(context.Background(), UpdateRecordCommand{
		Collection: services.Table,
		ID:         created.ID,
		Values: map[string]any{
			"title":                   "AI Strategy Sprint",
			"fields.pricing.model":    services.PricingFixed,
			"fields.pricing.currency": "EUR",
		},
		ActorID: testActor,
		Result:  result,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	updated := result.Record
	if updated.Title != "AI Strategy Sprint" || updated.Slug != "ai-strategy" {
		t.Fatalf("expected title change with stable slug, got %q %q", updated.Title, updated.Slug)
	}
	pricing := updated.Fields["pricing"].(map[string]any)
	if pricing["model"] != services.PricingFixed || pricing["currency"] != "EUR" {
		t.Fatalf("unexpected pricing %v", pricing)
	}
}

func TestUpdateHandlerReportsMissingRecord(t *testing.T) {
	h := newHarness(t)
	err := h.set.Update.Execute(context.Background(), UpdateRecordCommand{
		Collection: services.Table,
		ID:         uuid.New(),
		Values:     map[string]any{"title": "Ghost"},
		ActorID:    testActor,
	})
	if !goerrors.IsCategory(err, goerrors.CategoryNotFound) {
		t.Fatalf("expected not found category, got %v", err)
	}
}

func TestReorderHandlerReportsBoundaryAndMove(t *testing.T) {
	h := newHarness(t)
	first := h.createService(t, "AI Strategy")
	h.createService(t, "Data Audit")

	result := &Result{}
	err := h.set.Reorder.Execute(context.Background(), ReorderRecordCommand{
		Collection: services.Table, ID: first.ID, Direction: records.Up, ActorID: testActor, Result: result,
	})
	if err != nil || result.Moved {
		t.Fatalf("expected boundary no-op, got moved=%v err=%v", result.Moved, err)
	}

	result = &Result{}
	err = h.set.Reorder.Execute(context.Background(), ReorderRecordCommand{
		Collection: services.Table, ID: first.ID, Direction: records.Down, ActorID: testActor, Result: result,
	})
	if err != nil || !result.Moved {
		t.Fatalf("expected move, got moved=%v err=%v", result.Moved, err)
	}
	if result.Record.OrderIndex != 1 {
		t.Fatalf("expected order 1 after moving down, got %d", result.Record.OrderIndex)
	}
}

func TestToggleHandlerRejectsFlagOutsideDescriptor(t *testing.T) {
	h := newHarness(t)
	created := h.createService(t, "AI Strategy")

	err := h.set.Toggle.Execute(context.Background(), ToggleFlagCommand{
		Collection: services.Table, ID: created.ID, Flag: records.FlagPublished, ActorID: testActor,
	})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}

	result := &Result{}
	err = h.set.Toggle.Execute(context.Background(), ToggleFlagCommand{
		Collection: services.Table, ID: created.ID, Flag: records.FlagFeatured, ActorID: testActor, Result: result,
	})
	if err != nil || !result.Record.IsFeatured {
		t.Fatalf("expected featured toggle, got %+v %v", result.Record, err)
	}
}

func TestDeleteHandlerRemovesConfirmedRecord(t *testing.T) {
	h := newHarness(t)
	created := h.createService(t, "AI Strategy")

	err := h.set.Delete.Execute(context.Background(), DeleteRecordCommand{
		Collection: services.Table, ID: created.ID, ActorID: testActor,
	})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected unconfirmed delete to fail validation, got %v", err)
	}

	err = h.set.Delete.Execute(context.Background(), DeleteRecordCommand{
		Collection: services.Table, ID: created.ID, Confirmed: true, ActorID: testActor,
	})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	manager, _ := h.index.Manager("services")
	if len(manager.Controller().All()) != 0 {
		t.Fatalf("expected record removed from the list")
	}
}

func TestUnknownCollectionIsNotFound(t *testing.T) {
	h := newHarness(t)
	err := h.set.Refresh.Execute(context.Background(), RefreshCollectionCommand{Collection: "blog"})
	if !goerrors.IsCategory(err, goerrors.CategoryNotFound) {
		t.Fatalf("expected not found category, got %v", err)
	}
}

func TestManagerIndexAcceptsHyphenatedNames(t *testing.T) {
	h := newHarness(t)
	if _, ok := h.index.Manager("Services"); !ok {
		t.Fatalf("expected case-insensitive lookup")
	}
	if len(h.index.All()) != 2 {
		t.Fatalf("expected two managers")
	}
}

func TestImportSeedsHandlerReadsDirectory(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, services.Table), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	seed := "---\ntitle: Model Evaluation\nfeatures:\n  - Benchmarks\n---\nIndependent review of model quality.\n"
	if err := os.WriteFile(filepath.Join(dir, services.Table, "evaluation.md"), []byte(seed), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	result := &Result{}
	err := h.set.Import.Execute(context.Background(), ImportSeedsCommand{
		Directory: dir, Collections: []string{services.Table}, ActorID: testActor, Result: result,
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(result.Import.Created) != 1 || result.Import.Created[0] != "services/model-evaluation" {
		t.Fatalf("unexpected import summary %+v", result.Import)
	}
}

func TestRegisterRecordCommandsRegistersEveryHandler(t *testing.T) {
	registry := fixtures.NewRecordingRegistry()
	if _, err := RegisterRecordCommands(registry, NewManagerIndex(), nil); err != nil {
		t.Fatalf("register: %v", err)
	}
	if registry.Len() != 7 {
		t.Fatalf("expected 7 handlers, got %d", registry.Len())
	}

	registry.Err = errors.New("duplicate handler")
	if _, err := RegisterRecordCommands(registry, NewManagerIndex(), nil); err == nil {
		t.Fatalf("expected registry error to propagate")
	}
}

func TestDispatchReachesSubscribedHandlers(t *testing.T) {
	h := newHarness(t)
	unsubscribe := h.set.Subscribe()
	t.Cleanup(unsubscribe)

	result := &Result{}
	err := dispatcher.Dispatch(context.Background(), CreateRecordCommand{
		Collection: pages.Table,
		Values:     map[string]any{"title": "About Us"},
		ActorID:    testActor,
		Result:     result,
	})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if result.Record == nil || result.Record.Slug != "about-us" {
		t.Fatalf("expected created page through dispatcher, got %+v", result.Record)
	}
}
