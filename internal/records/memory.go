package records

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory table operation names, used for call counting and fault injection.
const (
	OpSelect = "select"
	OpGet    = "get"
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

type injectedFailure struct {
	skip int
	err  error
}

// MemoryTable is an in-memory Table for scaffolding and tests.
type MemoryTable struct {
	mu       sync.RWMutex
	tables   map[string]map[uuid.UUID]*Record
	calls    map[string]int
	failures map[string][]*injectedFailure
	hub      *changeHub
	now      func() time.Time
	newID    func() uuid.UUID
}

// NewMemoryTable constructs an empty store.
func NewMemoryTable() *MemoryTable {
	return &MemoryTable{
		tables:   make(map[string]map[uuid.UUID]*Record),
		calls:    make(map[string]int),
		failures: make(map[string][]*injectedFailure),
		hub:      newChangeHub(),
		now:      time.Now,
		newID:    uuid.New,
	}
}

// FailOn makes the nth upcoming call (1-based) of op return err.
func (m *MemoryTable) FailOn(op string, nth int, err error) {
	if nth < 1 {
		nth = 1
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[op] = append(m.failures[op], &injectedFailure{skip: nth - 1, err: err})
}

// Calls reports how many times op has been invoked.
func (m *MemoryTable) Calls(op string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[op]
}

// Put stores record verbatim without notifying subscribers.
func (m *MemoryTable) Put(table string, record *Record) {
	if record == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cloned := CloneRecord(record)
	cloned.Collection = table
	m.bucket(table)[cloned.ID] = cloned
}

func (m *MemoryTable) Select(_ context.Context, table string, query Query) ([]*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpSelect); err != nil {
		return nil, err
	}

	out := make([]*Record, 0, len(m.tables[table]))
	for _, record := range m.tables[table] {
		if query.Slug != "" && record.Slug != query.Slug {
			continue
		}
		out = append(out, CloneRecord(record))
	}
	sortRecords(out, query)
	return out, nil
}

func (m *MemoryTable) Get(_ context.Context, table string, id uuid.UUID) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpGet); err != nil {
		return nil, err
	}
	record, ok := m.tables[table][id]
	if !ok {
		return nil, notFound(table, id)
	}
	return CloneRecord(record), nil
}

func (m *MemoryTable) Insert(_ context.Context, table string, record *Record) (*Record, error) {
	created, err := func() (*Record, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		if err := m.enter(OpInsert); err != nil {
			return nil, err
		}
		cloned := CloneRecord(record)
		cloned.Collection = table
		if cloned.ID == uuid.Nil {
			cloned.ID = m.newID()
		}
		now := m.now()
		if cloned.CreatedAt.IsZero() {
			cloned.CreatedAt = now
		}
		if cloned.UpdatedAt.IsZero() {
			cloned.UpdatedAt = now
		}
		m.bucket(table)[cloned.ID] = cloned
		return CloneRecord(cloned), nil
	}()
	if err != nil {
		return nil, err
	}
	m.hub.Publish(table)
	return created, nil
}

func (m *MemoryTable) Update(_ context.Context, table string, id uuid.UUID, patch Patch) (*Record, error) {
	updated, err := func() (*Record, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		if err := m.enter(OpUpdate); err != nil {
			return nil, err
		}
		current, ok := m.tables[table][id]
		if !ok {
			return nil, notFound(table, id)
		}
		next := CloneRecord(current)
		patch.Apply(next)
		m.tables[table][id] = next
		return CloneRecord(next), nil
	}()
	if err != nil {
		return nil, err
	}
	m.hub.Publish(table)
	return updated, nil
}

func (m *MemoryTable) Delete(_ context.Context, table string, id uuid.UUID) error {
	err := func() error {
		m.mu.Lock()
		defer m.mu.Unlock()
		if err := m.enter(OpDelete); err != nil {
			return err
		}
		if _, ok := m.tables[table][id]; !ok {
			return notFound(table, id)
		}
		delete(m.tables[table], id)
		return nil
	}()
	if err != nil {
		return err
	}
	m.hub.Publish(table)
	return nil
}

func (m *MemoryTable) Subscribe(table string, onChange func()) func() {
	return m.hub.Subscribe(table, onChange)
}

// enter records the call and pops any injected failure. Callers hold m.mu.
func (m *MemoryTable) enter(op string) error {
	m.calls[op]++
	queue := m.failures[op]
	if len(queue) == 0 {
		return nil
	}
	head := queue[0]
	if head.skip > 0 {
		head.skip--
		return nil
	}
	m.failures[op] = queue[1:]
	return head.err
}

func (m *MemoryTable) bucket(table string) map[uuid.UUID]*Record {
	bucket, ok := m.tables[table]
	if !ok {
		bucket = make(map[uuid.UUID]*Record)
		m.tables[table] = bucket
	}
	return bucket
}

func sortRecords(list []*Record, query Query) {
	field := strings.ToLower(strings.TrimSpace(query.OrderBy))
	slices.SortStableFunc(list, func(a, b *Record) int {
		var order int
		switch field {
		case "title":
			order = strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		case "created_at":
			order = a.CreatedAt.Compare(b.CreatedAt)
		case "updated_at":
			order = a.UpdatedAt.Compare(b.UpdatedAt)
		default:
			order = cmp.Compare(a.OrderIndex, b.OrderIndex)
		}
		if order == 0 {
			order = a.CreatedAt.Compare(b.CreatedAt)
		}
		if order == 0 {
			order = strings.Compare(a.ID.String(), b.ID.String())
		}
		if query.Descending {
			return -order
		}
		return order
	})
}
