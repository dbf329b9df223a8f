package records

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Query narrows a Select call.
type Query struct {
	// Slug restricts results to an exact slug match when set.
	Slug string
	// OrderBy is one of order_index (default), title, created_at, updated_at.
	OrderBy    string
	Descending bool
}

// Table is the external table-oriented store. Misses are reported as
// *NotFoundError; any other error is treated as a transport failure.
type Table interface {
	Select(ctx context.Context, table string, query Query) ([]*Record, error)
	Get(ctx context.Context, table string, id uuid.UUID) (*Record, error)
	Insert(ctx context.Context, table string, record *Record) (*Record, error)
	Update(ctx context.Context, table string, id uuid.UUID, patch Patch) (*Record, error)
	Delete(ctx context.Context, table string, id uuid.UUID) error
	Subscribe(table string, onChange func()) (unsubscribe func())
}

// ChangeSource delivers "something changed" signals for a table from outside
// the process (database notifications, webhooks).
type ChangeSource interface {
	Subscribe(table string, onChange func()) (unsubscribe func())
}

// changeHub fans out table change signals to in-process subscribers.
type changeHub struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]func()
}

func newChangeHub() *changeHub {
	return &changeHub{subs: make(map[string]map[int]func())}
}

func (h *changeHub) Subscribe(table string, onChange func()) func() {
	if onChange == nil {
		return func() {}
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	id := h.nextID
	if h.subs[table] == nil {
		h.subs[table] = make(map[int]func())
	}
	h.subs[table][id] = onChange

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[table], id)
		})
	}
}

func (h *changeHub) Publish(table string) {
	h.mu.Lock()
	callbacks := make([]func(), 0, len(h.subs[table]))
	for _, fn := range h.subs[table] {
		callbacks = append(callbacks, fn)
	}
	h.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}
