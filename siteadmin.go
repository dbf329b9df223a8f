package siteadmin

import (
	"context"
	"errors"
	"net/http"

	recordscmd "github.com/brightpath-ai/siteadmin/internal/commands/records"
	"github.com/brightpath-ai/siteadmin/internal/di"
	"github.com/brightpath-ai/siteadmin/internal/identity"
	"github.com/brightpath-ai/siteadmin/internal/records"
	"github.com/brightpath-ai/siteadmin/pkg/interfaces"
)

// Record exports the managed record type.
type Record = records.Record

// Manager exports the per content type record manager.
type Manager = records.Manager

// Filters exports the list filter state.
type Filters = records.Filters

// ImportSummary exports the outcome of a seed import.
type ImportSummary = recordscmd.ImportSummary

// Module is the top level runtime façade over the record managers.
type Module struct {
	container *di.Container
}

// New constructs a module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Logger returns the root module logger.
func (m *Module) Logger(module string) interfaces.Logger {
	return m.container.LoggerProvider().GetLogger(module)
}

// Migrate creates the record storage.
func (m *Module) Migrate(ctx context.Context) error {
	return m.container.Migrate(ctx)
}

// Start loads every collection and follows store changes.
func (m *Module) Start(ctx context.Context) error {
	return m.container.Start(ctx)
}

// Close releases managers, listeners and owned connections.
func (m *Module) Close() error {
	return m.container.Close()
}

// Collections lists the managed collection names in menu order.
func (m *Module) Collections() []string {
	all := m.container.Managers().All()
	out := make([]string, 0, len(all))
	for _, manager := range all {
		out = append(out, manager.Descriptor().Table)
	}
	return out
}

// Manager returns the record manager for collection.
func (m *Module) Manager(collection string) (*Manager, bool) {
	return m.container.Managers().Manager(collection)
}

// Handler returns an http.Handler serving the admin API.
func (m *Module) Handler() (http.Handler, error) {
	mux := http.NewServeMux()
	if err := m.container.AdminAPI().Register(mux); err != nil {
		return nil, err
	}
	return mux, nil
}

// ImportSeeds loads Markdown seed files from dir into the given collections
// (all when empty). Writes are attributed to the system seeding actor.
func (m *Module) ImportSeeds(ctx context.Context, dir string, collections ...string) (*ImportSummary, error) {
	if dir == "" {
		dir = m.container.Config.Seed.Directory
	}
	if dir == "" {
		return nil, errors.New("siteadmin: seed directory is required")
	}
	result := &recordscmd.Result{}
	err := m.container.Handlers().Import.Execute(ctx, recordscmd.ImportSeedsCommand{
		Directory:   dir,
		Collections: collections,
		ActorID:     identity.SystemActor("seed"),
		Result:      result,
	})
	return result.Import, err
}
