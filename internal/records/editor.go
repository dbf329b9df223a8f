package records

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/brightpath-ai/siteadmin/pkg/activity"
	"github.com/google/uuid"
)

// State is the editor lifecycle state.
type State string

const (
	StateClosed  State = "closed"
	StateEditing State = "editing"
	StateSaving  State = "saving"
)

// Editor holds at most one draft for a collection and saves it through the
// controller's adapter.
type Editor struct {
	desc       Descriptor
	controller *Controller
	opts       options

	mu             sync.Mutex
	state          State
	draft          *Record
	slugOverridden bool
	session        uint64
	lastErr        error
}

// NewEditor builds an editor bound to controller.
func NewEditor(controller *Controller, opts ...Option) *Editor {
	o := controller.opts
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return &Editor{
		desc:       controller.desc,
		controller: controller,
		opts:       o,
		state:      StateClosed,
	}
}

// State returns the current lifecycle state.
func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Draft returns a copy of the open draft.
func (e *Editor) Draft() (*Record, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.draft == nil {
		return nil, false
	}
	return CloneRecord(e.draft), true
}

// Err returns the error from the last failed save, if the draft is still open.
func (e *Editor) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// StartNew opens an empty draft seeded from the content type template and
// values. Any previous draft is discarded.
func (e *Editor) StartNew(values map[string]any) (*Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateSaving {
		return nil, ErrSaveInProgress
	}
	e.open(&Record{Collection: e.desc.Table, Fields: map[string]any{}}, false)
	for _, source := range []map[string]any{e.desc.Template, values} {
		for _, key := range slices.Sorted(maps.Keys(source)) {
			if err := e.set(key, source[key]); err != nil {
				e.close()
				return nil, err
			}
		}
	}
	return CloneRecord(e.draft), nil
}

// StartEdit opens a draft copied from an existing record. The stored slug is
// kept until the user edits it directly.
func (e *Editor) StartEdit(record *Record) (*Record, error) {
	if record == nil || record.ID == uuid.Nil {
		return nil, fmt.Errorf("%w: record id required", ErrNoDraft)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateSaving {
		return nil, ErrSaveInProgress
	}
	draft := CloneRecord(record)
	if draft.Fields == nil {
		draft.Fields = map[string]any{}
	}
	e.open(draft, true)
	return CloneRecord(e.draft), nil
}

// SetField updates one draft field. Paths name core columns (title, slug,
// category, is_featured, is_published, is_active) or dotted payload keys,
// optionally prefixed with "fields.". A nil value clears a payload key.
func (e *Editor) SetField(path string, value any) (*Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.state {
	case StateClosed:
		return nil, ErrNoDraft
	case StateSaving:
		return nil, ErrSaveInProgress
	}
	if err := e.set(path, value); err != nil {
		return nil, err
	}
	return CloneRecord(e.draft), nil
}

func (e *Editor) set(path string, value any) error {
	path = strings.TrimSpace(path)
	switch path {
	case "id":
		return ErrIDImmutable
	case "order_index":
		return fmt.Errorf("%w: order_index is managed by reordering", ErrFieldPath)
	case "title":
		title, err := stringValue(path, value)
		if err != nil {
			return err
		}
		e.draft.Title = title
		if !e.slugOverridden {
			e.draft.Slug = DeriveSlug(title)
		}
		return nil
	case "slug":
		slug, err := stringValue(path, value)
		if err != nil {
			return err
		}
		slug = strings.TrimSpace(slug)
		if slug == "" {
			e.slugOverridden = false
			e.draft.Slug = DeriveSlug(e.draft.Title)
			return nil
		}
		e.slugOverridden = true
		e.draft.Slug = slug
		return nil
	case "category":
		category, err := stringValue(path, value)
		if err != nil {
			return err
		}
		e.draft.Category = strings.TrimSpace(category)
		return nil
	case string(FlagFeatured), string(FlagPublished), string(FlagActive):
		flag, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%w: %s expects a boolean", ErrFieldPath, path)
		}
		switch Flag(path) {
		case FlagFeatured:
			e.draft.IsFeatured = flag
		case FlagPublished:
			e.draft.IsPublished = flag
		case FlagActive:
			e.draft.IsActive = flag
		}
		return nil
	}

	parts := splitPath(strings.TrimPrefix(path, "fields."))
	if parts == nil {
		return fmt.Errorf("%w: %q", ErrFieldPath, path)
	}
	if e.draft.Fields == nil {
		e.draft.Fields = map[string]any{}
	}
	if err := assignPath(e.draft.Fields, parts, value); err != nil {
		return fmt.Errorf("%w: %q", err, path)
	}
	if e.desc.CategoryFrom != "" && strings.Join(parts, ".") == e.desc.CategoryFrom {
		category, _ := value.(string)
		e.draft.Category = strings.TrimSpace(category)
	}
	return nil
}

// Save validates the draft and writes it. Validation failures never reach the
// store and leave the draft open; store failures leave it open as well.
func (e *Editor) Save(ctx context.Context, actor uuid.UUID) (*Record, error) {
	e.mu.Lock()
	switch e.state {
	case StateClosed:
		e.mu.Unlock()
		return nil, ErrNoDraft
	case StateSaving:
		e.mu.Unlock()
		return nil, ErrSaveInProgress
	}
	draft := CloneRecord(e.draft)
	if err := ValidateRecord(e.desc, draft); err != nil {
		e.lastErr = err
		e.mu.Unlock()
		e.notify(ctx, LevelWarning, err.Error(), err)
		return nil, err
	}
	e.state = StateSaving
	session := e.session
	e.mu.Unlock()

	creating := draft.ID == uuid.Nil
	var (
		saved *Record
		err   error
	)
	if creating {
		saved, err = e.controller.adapter.Create(ctx, draft, actor)
	} else {
		saved, err = e.controller.adapter.Update(ctx, draft.ID, draftPatch(draft), actor)
	}

	e.mu.Lock()
	current := e.session == session
	if current {
		if err != nil {
			e.state = StateEditing
			e.lastErr = err
		} else {
			e.close()
		}
	}
	e.mu.Unlock()

	if err != nil {
		e.notify(ctx, LevelError, failureMessage(e.desc, "save", err), err)
		if errors.Is(err, ErrNotFound) {
			_ = e.controller.Refresh(ctx)
		}
		return nil, err
	}

	e.controller.Commit(saved)
	e.notify(ctx, LevelInfo, e.desc.label()+" saved", nil)
	if creating {
		e.emitCreated(ctx, saved, actor)
	}
	return CloneRecord(saved), nil
}

// Cancel discards the draft unconditionally. A save already in flight still
// completes but no longer reopens the draft on failure.
func (e *Editor) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.close()
}

func (e *Editor) open(draft *Record, existing bool) {
	e.session++
	e.state = StateEditing
	e.draft = draft
	e.slugOverridden = existing
	e.lastErr = nil
}

func (e *Editor) close() {
	e.session++
	e.state = StateClosed
	e.draft = nil
	e.slugOverridden = false
	e.lastErr = nil
}

func (e *Editor) notify(ctx context.Context, level Level, message string, err error) {
	e.opts.notifier.Notify(ctx, Notification{
		Level:      level,
		Collection: e.desc.Table,
		Operation:  "save",
		Message:    message,
		Kind:       Kind(err),
		Err:        err,
		At:         e.opts.now(),
	})
}

func (e *Editor) emitCreated(ctx context.Context, record *Record, actor uuid.UUID) {
	if e.opts.activity == nil || !e.opts.activity.Enabled() {
		return
	}
	meta := map[string]any{
		"title":       record.Title,
		"slug":        record.Slug,
		"order_index": record.OrderIndex,
	}
	if record.Category != "" {
		meta["category"] = record.Category
	}
	if e.opts.urlFor != nil {
		if url := e.opts.urlFor(record); url != "" {
			meta["url"] = url
		}
	}
	event := activity.Event{
		Verb:           "create",
		ActorID:        actor.String(),
		UserID:         actor.String(),
		ObjectType:     e.desc.Table,
		ObjectID:       record.ID.String(),
		DefinitionCode: e.desc.Table + ":create",
		Recipients:     append([]string(nil), e.opts.recipients...),
		Metadata:       meta,
		OccurredAt:     record.CreatedAt,
	}
	if err := e.opts.activity.Emit(ctx, event); err != nil {
		e.opts.logger.WithContext(ctx).Warn("records.create.event_failed", "collection", e.desc.Table, "record_id", record.ID, "error", err)
	}
}

func draftPatch(draft *Record) Patch {
	slug, title, category := draft.Slug, draft.Title, draft.Category
	featured, published, active := draft.IsFeatured, draft.IsPublished, draft.IsActive
	fields := deepCloneMap(draft.Fields)
	if fields == nil {
		fields = map[string]any{}
	}
	return Patch{
		Slug:        &slug,
		Title:       &title,
		Category:    &category,
		IsFeatured:  &featured,
		IsPublished: &published,
		IsActive:    &active,
		Fields:      fields,
	}
}

func stringValue(path string, value any) (string, error) {
	switch typed := value.(type) {
	case nil:
		return "", nil
	case string:
		return typed, nil
	default:
		return "", fmt.Errorf("%w: %s expects a string", ErrFieldPath, path)
	}
}
