package records

import (
	"context"
	"sync"
)

// Manager wires an adapter, a controller and an editor for one content type.
type Manager struct {
	adapter    *Adapter
	controller *Controller
	editor     *Editor

	mu    sync.Mutex
	watch func()
}

// NewManager assembles the record manager for desc on top of table.
func NewManager(desc Descriptor, table Table, opts ...Option) *Manager {
	adapter := NewAdapter(desc, table, opts...)
	controller := NewController(adapter)
	return &Manager{
		adapter:    adapter,
		controller: controller,
		editor:     NewEditor(controller),
	}
}

func (m *Manager) Descriptor() Descriptor  { return m.adapter.desc }
func (m *Manager) Adapter() *Adapter       { return m.adapter }
func (m *Manager) Controller() *Controller { return m.controller }
func (m *Manager) Editor() *Editor         { return m.editor }

// NewEditor returns an independent editor bound to the same list, for callers
// that handle several drafts at once (request handlers, importers).
func (m *Manager) NewEditor() *Editor {
	return NewEditor(m.controller)
}

// Start loads the list and begins following external changes. A failed
// initial load is returned but the subscription stays active so the list
// recovers once the store is reachable again.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.watch == nil {
		m.watch = m.controller.Watch(ctx)
	}
	m.mu.Unlock()
	return m.controller.Refresh(ctx)
}

// Stop ends the change subscription. It is safe to call more than once.
func (m *Manager) Stop() {
	m.mu.Lock()
	stop := m.watch
	m.watch = nil
	m.mu.Unlock()
	if stop != nil {
		stop()
	}
}
