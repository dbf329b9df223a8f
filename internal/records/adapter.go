package records

import (
	"context"
	"errors"
	"strings"

	"github.com/brightpath-ai/siteadmin/internal/logging"
	"github.com/brightpath-ai/siteadmin/pkg/interfaces"
	"github.com/google/uuid"
)

// Adapter performs CRUD for one collection against the external table store
// and translates store failures into the records error taxonomy.
type Adapter struct {
	desc  Descriptor
	table Table
	opts  options
}

// NewAdapter binds desc to table.
func NewAdapter(desc Descriptor, table Table, opts ...Option) *Adapter {
	return &Adapter{desc: desc, table: table, opts: buildOptions(opts)}
}

// Descriptor returns the content type this adapter serves.
func (a *Adapter) Descriptor() Descriptor {
	return a.desc
}

// List returns every record in the collection ordered by order_index.
func (a *Adapter) List(ctx context.Context) ([]*Record, error) {
	records, err := a.table.Select(ctx, a.desc.Table, Query{OrderBy: "order_index"})
	if err != nil {
		return nil, a.translate("list", uuid.Nil, err)
	}
	return records, nil
}

// Get loads one record by id.
func (a *Adapter) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	record, err := a.table.Get(ctx, a.desc.Table, id)
	if err != nil {
		return nil, a.translate("get", id, err)
	}
	return record, nil
}

// Create inserts draft at the end of the list. The store assigns the id; the
// adapter assigns order_index = max(existing)+1, or 0 for an empty collection.
func (a *Adapter) Create(ctx context.Context, draft *Record, actor uuid.UUID) (*Record, error) {
	if actor == uuid.Nil {
		return nil, ErrActorRequired
	}
	if err := ValidateRecord(a.desc, draft); err != nil {
		return nil, err
	}

	existing, err := a.List(ctx)
	if err != nil {
		return nil, err
	}
	next := 0
	for i, record := range existing {
		if record.Slug == draft.Slug {
			return nil, slugTaken(a.desc, draft.Slug)
		}
		if i == 0 || record.OrderIndex >= next {
			next = record.OrderIndex + 1
		}
	}

	now := a.opts.now()
	record := CloneRecord(draft)
	record.ID = uuid.Nil
	record.Collection = a.desc.Table
	record.OrderIndex = next
	record.CreatedAt = now
	record.UpdatedAt = now
	record.LastModifiedBy = actor

	created, err := a.table.Insert(ctx, a.desc.Table, record)
	if err != nil {
		return nil, a.translate("create", uuid.Nil, err)
	}
	a.log(ctx).Debug("records.created", "record_id", created.ID, "slug", created.Slug, "order_index", created.OrderIndex)
	return created, nil
}

// Update applies patch to the record identified by id and stamps provenance.
func (a *Adapter) Update(ctx context.Context, id uuid.UUID, patch Patch, actor uuid.UUID) (*Record, error) {
	if actor == uuid.Nil {
		return nil, ErrActorRequired
	}
	if patch.Slug != nil {
		slug := strings.TrimSpace(*patch.Slug)
		if !ValidSlug(slug) {
			return nil, slugInvalid(a.desc)
		}
		matches, err := a.table.Select(ctx, a.desc.Table, Query{Slug: slug})
		if err != nil {
			return nil, a.translate("update", id, err)
		}
		for _, match := range matches {
			if match.ID != id {
				return nil, slugTaken(a.desc, slug)
			}
		}
		patch.Slug = &slug
	}
	patch.UpdatedAt = a.opts.now()
	patch.LastModifiedBy = actor

	updated, err := a.table.Update(ctx, a.desc.Table, id, patch)
	if err != nil {
		return nil, a.translate("update", id, err)
	}
	return updated, nil
}

// Delete removes the record identified by id.
func (a *Adapter) Delete(ctx context.Context, id uuid.UUID) error {
	if err := a.table.Delete(ctx, a.desc.Table, id); err != nil {
		return a.translate("delete", id, err)
	}
	a.log(ctx).Debug("records.deleted", "record_id", id)
	return nil
}

// SubscribeToChanges registers onChange for external changes to the
// collection. Bursts of notifications inside the debounce window collapse into
// one call. The returned function stops delivery and waits for a call already
// in progress, so onChange never runs after it returns. Do not call it from
// inside onChange.
func (a *Adapter) SubscribeToChanges(onChange func()) (unsubscribe func()) {
	if onChange == nil {
		return func() {}
	}
	debounced := newDebouncer(a.opts.window, onChange)
	stop := a.table.Subscribe(a.desc.Table, debounced.Trigger)
	return func() {
		stop()
		debounced.Stop()
	}
}

func (a *Adapter) translate(op string, id uuid.UUID, err error) error {
	if err == nil {
		return nil
	}
	var notFoundErr *NotFoundError
	if errors.As(err, &notFoundErr) {
		return notFoundErr
	}
	if errors.Is(err, ErrValidation) {
		return err
	}
	a.log(context.Background()).Warn("records.store.failed", "op", op, "record_id", id, "error", err)
	return &StoreError{Op: op, Collection: a.desc.Table, Err: err}
}

func (a *Adapter) log(ctx context.Context) interfaces.Logger {
	return logging.WithFields(a.opts.logger.WithContext(ctx), map[string]any{
		"collection": a.desc.Table,
	})
}
