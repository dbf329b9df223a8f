package records

import (
	"cmp"
	"context"
	"errors"
	"iter"
	"slices"
	"sync"

	"github.com/brightpath-ai/siteadmin/internal/logging"
	"github.com/brightpath-ai/siteadmin/pkg/interfaces"
	ozzo "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// Controller owns the in-memory list for one collection: loading, filtering,
// reordering, flag toggles and deletes. The list is replaced wholesale on
// every change so readers can iterate a snapshot without holding the lock.
type Controller struct {
	desc    Descriptor
	adapter *Adapter
	opts    options

	mu      sync.RWMutex
	all     []*Record
	filters Filters
	loaded  bool

	listenersMu  sync.Mutex
	listeners    map[int]func()
	nextListener int
}

// NewController builds a controller on top of adapter. Call Refresh to load.
func NewController(adapter *Adapter, opts ...Option) *Controller {
	o := adapter.opts
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return &Controller{
		desc:      adapter.desc,
		adapter:   adapter,
		opts:      o,
		listeners: make(map[int]func()),
	}
}

// Descriptor returns the content type served by the controller.
func (c *Controller) Descriptor() Descriptor {
	return c.desc
}

// Adapter exposes the underlying store adapter.
func (c *Controller) Adapter() *Adapter {
	return c.adapter
}

// Loaded reports whether at least one refresh has succeeded.
func (c *Controller) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Filters returns the active filters.
func (c *Controller) Filters() Filters {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filters
}

// SetFilters replaces the filters. The full list is untouched.
func (c *Controller) SetFilters(filters Filters) {
	c.mu.Lock()
	c.filters = filters
	c.mu.Unlock()
	c.emit()
}

// All returns a copy of the full list in order.
func (c *Controller) All() []*Record {
	c.mu.RLock()
	snapshot := c.all
	c.mu.RUnlock()
	return cloneRecords(snapshot)
}

// Find returns a copy of the record with id from the full list.
func (c *Controller) Find(id uuid.UUID) (*Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, record := range c.all {
		if record.ID == id {
			return CloneRecord(record), true
		}
	}
	return nil, false
}

// VisibleSeq yields copies of the records that pass the current filters, in
// list order. It is restartable and reflects the list at call time.
func (c *Controller) VisibleSeq() iter.Seq[*Record] {
	c.mu.RLock()
	snapshot, filters := c.all, c.filters
	c.mu.RUnlock()
	return func(yield func(*Record) bool) {
		for _, record := range snapshot {
			if !filters.Match(c.desc, record) {
				continue
			}
			if !yield(CloneRecord(record)) {
				return
			}
		}
	}
}

// Visible collects VisibleSeq into a slice.
func (c *Controller) Visible() []*Record {
	return slices.Collect(c.VisibleSeq())
}

// Categories lists the distinct non-empty categories in list order.
func (c *Controller) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seen := map[string]struct{}{}
	out := []string{}
	for _, record := range c.all {
		if record.Category == "" {
			continue
		}
		if _, ok := seen[record.Category]; ok {
			continue
		}
		seen[record.Category] = struct{}{}
		out = append(out, record.Category)
	}
	return out
}

// Subscribe registers listener for list changes (refresh, filter, mutation).
func (c *Controller) Subscribe(listener func()) (unsubscribe func()) {
	if listener == nil {
		return func() {}
	}
	c.listenersMu.Lock()
	c.nextListener++
	id := c.nextListener
	c.listeners[id] = listener
	c.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.listenersMu.Lock()
			delete(c.listeners, id)
			c.listenersMu.Unlock()
		})
	}
}

// Refresh reloads the full list from the store. On failure the previous list
// is kept and a notification is raised.
func (c *Controller) Refresh(ctx context.Context) error {
	records, err := c.adapter.List(ctx)
	if err != nil {
		c.notify(ctx, LevelError, "refresh", "Could not load "+c.desc.label(), err)
		return err
	}
	c.mu.Lock()
	c.all = records
	c.loaded = true
	c.mu.Unlock()
	c.emit()
	return nil
}

// Watch keeps the list in sync with external changes until the returned stop
// function is called.
func (c *Controller) Watch(ctx context.Context) (stop func()) {
	base := context.WithoutCancel(ctx)
	return c.adapter.SubscribeToChanges(func() {
		if err := c.Refresh(base); err != nil {
			c.log(base).Warn("records.refresh.failed", "error", err)
		}
	})
}

// Reorder swaps the record with its neighbour in the visible list. It returns
// false without touching the store when the record is already at that edge.
// When both records share an order_index the swap keeps list position and the
// tied run is renumbered so indexes stay unique.
func (c *Controller) Reorder(ctx context.Context, id uuid.UUID, direction Direction, actor uuid.UUID) (bool, error) {
	if direction != Up && direction != Down {
		return false, newValidationError(c.desc.Table, ozzo.Errors{
			"direction": ozzo.NewError("records.direction_invalid", "direction must be up or down"),
		})
	}
	visible := c.Visible()
	idx := slices.IndexFunc(visible, func(r *Record) bool { return r.ID == id })
	if idx < 0 {
		err := notFound(c.desc.Table, id)
		c.fail(ctx, "reorder", err)
		return false, err
	}
	neighborIdx := idx - 1
	if direction == Down {
		neighborIdx = idx + 1
	}
	if neighborIdx < 0 || neighborIdx >= len(visible) {
		return false, nil
	}

	mover, neighbor := visible[idx], visible[neighborIdx]
	if mover.OrderIndex == neighbor.OrderIndex {
		return c.reorderTied(ctx, mover, neighbor, actor)
	}
	moverOrder, neighborOrder := neighbor.OrderIndex, mover.OrderIndex

	first, err := c.adapter.Update(ctx, mover.ID, OrderPatch(moverOrder), actor)
	if err != nil {
		c.fail(ctx, "reorder", err)
		return false, err
	}
	second, err := c.adapter.Update(ctx, neighbor.ID, OrderPatch(neighborOrder), actor)
	if err != nil {
		c.commit(first)
		reorderErr := &ReorderError{Collection: c.desc.Table, Moved: mover.ID, Neighbor: neighbor.ID, Err: err}
		c.fail(ctx, "reorder", reorderErr)
		return false, reorderErr
	}
	c.commit(first, second)
	return true, nil
}

// reorderTied swaps two records that share an order index. The pair is
// exchanged in the full list, then the tied run and everything after it is
// renumbered so indexes stay strictly increasing. Only records whose index
// changes are written, last first, so a partial failure never introduces a
// new duplicate.
func (c *Controller) reorderTied(ctx context.Context, mover, neighbor *Record, actor uuid.UUID) (bool, error) {
	c.mu.RLock()
	list := slices.Clone(c.all)
	c.mu.RUnlock()

	mi := slices.IndexFunc(list, func(r *Record) bool { return r.ID == mover.ID })
	ni := slices.IndexFunc(list, func(r *Record) bool { return r.ID == neighbor.ID })
	if mi < 0 || ni < 0 {
		err := notFound(c.desc.Table, mover.ID)
		c.fail(ctx, "reorder", err)
		return false, err
	}
	list[mi], list[ni] = list[ni], list[mi]

	start := slices.IndexFunc(list, func(r *Record) bool { return r.OrderIndex >= mover.OrderIndex })
	type renumber struct {
		id    uuid.UUID
		order int
	}
	var writes []renumber
	prev := mover.OrderIndex - 1
	for _, record := range list[start:] {
		next := max(record.OrderIndex, prev+1)
		if next != record.OrderIndex {
			writes = append(writes, renumber{id: record.ID, order: next})
		}
		prev = next
	}

	applied := make([]*Record, 0, len(writes))
	for i := len(writes) - 1; i >= 0; i-- {
		updated, err := c.adapter.Update(ctx, writes[i].id, OrderPatch(writes[i].order), actor)
		if err != nil {
			if len(applied) == 0 {
				c.fail(ctx, "reorder", err)
				return false, err
			}
			c.commit(applied...)
			reorderErr := &ReorderError{Collection: c.desc.Table, Moved: mover.ID, Neighbor: neighbor.ID, Err: err}
			c.fail(ctx, "reorder", reorderErr)
			return false, reorderErr
		}
		applied = append(applied, updated)
	}
	c.commit(applied...)
	return true, nil
}

// ToggleFlag negates flag on the record and stores the result.
func (c *Controller) ToggleFlag(ctx context.Context, id uuid.UUID, flag Flag, actor uuid.UUID) (*Record, error) {
	if !c.desc.AllowsFlag(flag) {
		return nil, newValidationError(c.desc.Table, ozzo.Errors{
			string(flag): ozzo.NewError("records.flag_unsupported", string(flag)+" cannot be toggled on "+c.desc.Table),
		})
	}
	current, ok := c.Find(id)
	if !ok {
		err := notFound(c.desc.Table, id)
		c.fail(ctx, "toggle", err)
		return nil, err
	}
	updated, err := c.adapter.Update(ctx, id, FlagPatch(flag, !flag.Value(current)), actor)
	if err != nil {
		c.fail(ctx, "toggle", err)
		return nil, err
	}
	c.commit(updated)
	return CloneRecord(updated), nil
}

// Remove deletes the record. A record already gone is dropped locally and the
// miss is still reported.
func (c *Controller) Remove(ctx context.Context, id uuid.UUID) error {
	if err := c.adapter.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.drop(id)
		}
		c.fail(ctx, "delete", err)
		return err
	}
	c.drop(id)
	c.notify(ctx, LevelInfo, "delete", c.desc.label()+" deleted", nil)
	return nil
}

// Commit merges records saved elsewhere (the editor) into the list.
func (c *Controller) Commit(records ...*Record) {
	c.commit(records...)
}

func (c *Controller) commit(records ...*Record) {
	c.mu.Lock()
	next := slices.Clone(c.all)
	for _, record := range records {
		if record == nil {
			continue
		}
		stored := CloneRecord(record)
		if i := slices.IndexFunc(next, func(r *Record) bool { return r.ID == stored.ID }); i >= 0 {
			next[i] = stored
		} else {
			next = append(next, stored)
		}
	}
	slices.SortStableFunc(next, func(a, b *Record) int { return cmp.Compare(a.OrderIndex, b.OrderIndex) })
	c.all = next
	c.mu.Unlock()
	c.emit()
}

func (c *Controller) drop(id uuid.UUID) {
	c.mu.Lock()
	c.all = slices.DeleteFunc(slices.Clone(c.all), func(r *Record) bool { return r.ID == id })
	c.mu.Unlock()
	c.emit()
}

// fail raises a notification for err and reloads the list when the local
// copy is known to be stale.
func (c *Controller) fail(ctx context.Context, op string, err error) {
	c.notify(ctx, LevelError, op, failureMessage(c.desc, op, err), err)
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrReorderInconsistent) {
		_ = c.Refresh(ctx)
	}
}

func (c *Controller) notify(ctx context.Context, level Level, op, message string, err error) {
	c.opts.notifier.Notify(ctx, Notification{
		Level:      level,
		Collection: c.desc.Table,
		Operation:  op,
		Message:    message,
		Kind:       Kind(err),
		Err:        err,
		At:         c.opts.now(),
	})
}

func (c *Controller) emit() {
	c.listenersMu.Lock()
	listeners := make([]func(), 0, len(c.listeners))
	for _, listener := range c.listeners {
		listeners = append(listeners, listener)
	}
	c.listenersMu.Unlock()
	for _, listener := range listeners {
		listener()
	}
}

func (c *Controller) log(ctx context.Context) interfaces.Logger {
	return logging.WithFields(c.opts.logger.WithContext(ctx), map[string]any{
		"collection": c.desc.Table,
	})
}

func failureMessage(desc Descriptor, op string, err error) string {
	switch Kind(err) {
	case "not_found":
		return desc.label() + " no longer exists; the list was reloaded"
	case "reorder_inconsistent":
		return "Reorder partially applied; the list was reloaded"
	case "validation":
		return err.Error()
	case "store_unavailable":
		return "Could not " + op + " " + desc.label() + ": store unavailable"
	default:
		return "Could not " + op + " " + desc.label()
	}
}
