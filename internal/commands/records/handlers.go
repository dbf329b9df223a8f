package recordscmd

import (
	"context"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/brightpath-ai/siteadmin/internal/commands"
	"github.com/brightpath-ai/siteadmin/internal/logging"
	"github.com/brightpath-ai/siteadmin/internal/markdown"
	"github.com/brightpath-ai/siteadmin/internal/records"
	"github.com/brightpath-ai/siteadmin/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

var (
	_ command.Commander[CreateRecordCommand]      = (*commands.Handler[CreateRecordCommand])(nil)
	_ command.Commander[UpdateRecordCommand]      = (*commands.Handler[UpdateRecordCommand])(nil)
	_ command.Commander[ReorderRecordCommand]     = (*commands.Handler[ReorderRecordCommand])(nil)
	_ command.Commander[ToggleFlagCommand]        = (*commands.Handler[ToggleFlagCommand])(nil)
	_ command.Commander[DeleteRecordCommand]      = (*commands.Handler[DeleteRecordCommand])(nil)
	_ command.Commander[RefreshCollectionCommand] = (*commands.Handler[RefreshCollectionCommand])(nil)
	_ command.Commander[ImportSeedsCommand]       = (*commands.Handler[ImportSeedsCommand])(nil)
)

// ManagerIndex resolves a collection name to its record manager. Names are
// matched case-insensitively and hyphens stand for underscores.
type ManagerIndex struct {
	byName map[string]*records.Manager
	order  []*records.Manager
}

// NewManagerIndex indexes managers by descriptor table.
func NewManagerIndex(managers ...*records.Manager) *ManagerIndex {
	idx := &ManagerIndex{byName: make(map[string]*records.Manager, len(managers))}
	for _, manager := range managers {
		if manager == nil {
			continue
		}
		idx.byName[manager.Descriptor().Table] = manager
		idx.order = append(idx.order, manager)
	}
	return idx
}

// Manager returns the manager for collection.
func (i *ManagerIndex) Manager(collection string) (*records.Manager, bool) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(collection)), "-", "_")
	manager, ok := i.byName[key]
	return manager, ok
}

// All returns the managers in registration order.
func (i *ManagerIndex) All() []*records.Manager {
	return slices.Clone(i.order)
}

func (i *ManagerIndex) resolve(collection string) (*records.Manager, error) {
	if manager, ok := i.Manager(collection); ok {
		return manager, nil
	}
	return nil, &records.NotFoundError{Resource: "collection", Key: collection}
}

// loaded returns the controller of collection, refreshing it on first use.
func (i *ManagerIndex) loaded(ctx context.Context, collection string) (*records.Manager, error) {
	manager, err := i.resolve(collection)
	if err != nil {
		return nil, err
	}
	if !manager.Controller().Loaded() {
		if err := manager.Controller().Refresh(ctx); err != nil {
			return nil, err
		}
	}
	return manager, nil
}

func newHandler[T command.Message](logger interfaces.Logger, operation string, fields func(T) map[string]any, exec command.CommandFunc[T], opts []commands.HandlerOption[T]) *commands.Handler[T] {
	if logger == nil {
		logger = logging.NoOp()
	}
	handlerOpts := []commands.HandlerOption[T]{
		commands.WithLogger[T](logger),
		commands.WithOperation[T](operation),
		commands.WithMessageFields(fields),
		commands.WithTelemetry(commands.DefaultTelemetry[T](logger)),
	}
	return commands.NewHandler(exec, append(handlerOpts, opts...)...)
}

func recordFields(collection, id string) map[string]any {
	fields := map[string]any{"collection": collection}
	if id != "" {
		fields["record_id"] = id
	}
	return fields
}

// NewCreateHandler saves a new record built from the collection template.
func NewCreateHandler(index *ManagerIndex, logger interfaces.Logger, opts ...commands.HandlerOption[CreateRecordCommand]) *commands.Handler[CreateRecordCommand] {
	exec := func(ctx context.Context, msg CreateRecordCommand) error {
		manager, err := index.loaded(ctx, msg.Collection)
		if err != nil {
			return err
		}
		editor := manager.NewEditor()
		if _, err := editor.StartNew(msg.Values); err != nil {
			return err
		}
		saved, err := editor.Save(ctx, msg.ActorID)
		if err != nil {
			editor.Cancel()
			return err
		}
		if msg.Result != nil {
			msg.Result.Record = saved
		}
		return nil
	}
	fields := func(msg CreateRecordCommand) map[string]any {
		return recordFields(msg.Collection, "")
	}
	return newHandler(logger, "records.create", fields, exec, opts)
}

// NewUpdateHandler applies field edits to an existing record and saves it.
func NewUpdateHandler(index *ManagerIndex, logger interfaces.Logger, opts ...commands.HandlerOption[UpdateRecordCommand]) *commands.Handler[UpdateRecordCommand] {
	exec := func(ctx context.Context, msg UpdateRecordCommand) error {
		manager, err := index.loaded(ctx, msg.Collection)
		if err != nil {
			return err
		}
		existing, ok := manager.Controller().Find(msg.ID)
		if !ok {
			if err := manager.Controller().Refresh(ctx); err != nil {
				return err
			}
			if existing, ok = manager.Controller().Find(msg.ID); !ok {
				return &records.NotFoundError{Resource: manager.Descriptor().Table, Key: msg.ID.String()}
			}
		}

		editor := manager.NewEditor()
		if _, err := editor.StartEdit(existing); err != nil {
			return err
		}
		for _, path := range slices.Sorted(maps.Keys(msg.Values)) {
			if _, err := editor.SetField(path, msg.Values[path]); err != nil {
				editor.Cancel()
				return err
			}
		}
		saved, err := editor.Save(ctx, msg.ActorID)
		if err != nil {
			editor.Cancel()
			return err
		}
		if msg.Result != nil {
			msg.Result.Record = saved
		}
		return nil
	}
	fields := func(msg UpdateRecordCommand) map[string]any {
		return recordFields(msg.Collection, msg.ID.String())
	}
	return newHandler(logger, "records.update", fields, exec, opts)
}

// NewReorderHandler moves a record within the visible list.
func NewReorderHandler(index *ManagerIndex, logger interfaces.Logger, opts ...commands.HandlerOption[ReorderRecordCommand]) *commands.Handler[ReorderRecordCommand] {
	exec := func(ctx context.Context, msg ReorderRecordCommand) error {
		manager, err := index.loaded(ctx, msg.Collection)
		if err != nil {
			return err
		}
		controller := manager.Controller()
		if msg.Filters != nil {
			controller.SetFilters(*msg.Filters)
		}
		moved, err := controller.Reorder(ctx, msg.ID, msg.Direction, msg.ActorID)
		if err != nil {
			return err
		}
		if msg.Result != nil {
			msg.Result.Moved = moved
			msg.Result.Record, _ = controller.Find(msg.ID)
		}
		return nil
	}
	fields := func(msg ReorderRecordCommand) map[string]any {
		f := recordFields(msg.Collection, msg.ID.String())
		f["direction"] = string(msg.Direction)
		return f
	}
	return newHandler(logger, "records.reorder", fields, exec, opts)
}

// NewToggleFlagHandler flips a visibility flag.
func NewToggleFlagHandler(index *ManagerIndex, logger interfaces.Logger, opts ...commands.HandlerOption[ToggleFlagCommand]) *commands.Handler[ToggleFlagCommand] {
	exec := func(ctx context.Context, msg ToggleFlagCommand) error {
		manager, err := index.loaded(ctx, msg.Collection)
		if err != nil {
			return err
		}
		updated, err := manager.Controller().ToggleFlag(ctx, msg.ID, msg.Flag, msg.ActorID)
		if err != nil {
			return err
		}
		if msg.Result != nil {
			msg.Result.Record = updated
		}
		return nil
	}
	fields := func(msg ToggleFlagCommand) map[string]any {
		f := recordFields(msg.Collection, msg.ID.String())
		f["flag"] = string(msg.Flag)
		return f
	}
	return newHandler(logger, "records.toggle_flag", fields, exec, opts)
}

// NewDeleteHandler removes a record.
func NewDeleteHandler(index *ManagerIndex, logger interfaces.Logger, opts ...commands.HandlerOption[DeleteRecordCommand]) *commands.Handler[DeleteRecordCommand] {
	exec := func(ctx context.Context, msg DeleteRecordCommand) error {
		manager, err := index.loaded(ctx, msg.Collection)
		if err != nil {
			return err
		}
		return manager.Controller().Remove(ctx, msg.ID)
	}
	fields := func(msg DeleteRecordCommand) map[string]any {
		f := recordFields(msg.Collection, msg.ID.String())
		f["actor_id"] = msg.ActorID.String()
		return f
	}
	return newHandler(logger, "records.delete", fields, exec, opts)
}

// NewRefreshHandler reloads a collection.
func NewRefreshHandler(index *ManagerIndex, logger interfaces.Logger, opts ...commands.HandlerOption[RefreshCollectionCommand]) *commands.Handler[RefreshCollectionCommand] {
	exec := func(ctx context.Context, msg RefreshCollectionCommand) error {
		manager, err := index.resolve(msg.Collection)
		if err != nil {
			return err
		}
		return manager.Controller().Refresh(ctx)
	}
	fields := func(msg RefreshCollectionCommand) map[string]any {
		return recordFields(msg.Collection, "")
	}
	return newHandler(logger, "records.refresh", fields, exec, opts)
}

// NewImportSeedsHandler loads Markdown seeds from disk and applies them
// through the record managers.
func NewImportSeedsHandler(index *ManagerIndex, logger interfaces.Logger, opts ...commands.HandlerOption[ImportSeedsCommand]) *commands.Handler[ImportSeedsCommand] {
	if logger == nil {
		logger = logging.NoOp()
	}
	exec := func(ctx context.Context, msg ImportSeedsCommand) error {
		collections := msg.Collections
		if len(collections) == 0 {
			for _, manager := range index.All() {
				collections = append(collections, manager.Descriptor().Table)
			}
		}
		for _, name := range collections {
			if _, err := index.resolve(name); err != nil {
				return err
			}
		}
		docs, err := markdown.LoadSeeds(ctx, os.DirFS(msg.Directory), collections)
		if err != nil {
			return err
		}
		result, importErr := markdown.NewImporter(index.All(), logger).Import(ctx, docs, msg.ActorID)
		summary := summarize(result)
		logging.WithFields(logger, map[string]any{
			"created_count":   len(summary.Created),
			"updated_count":   len(summary.Updated),
			"unchanged_count": len(summary.Unchanged),
			"error_count":     len(summary.Errors),
		}).Info("records.command.import_seeds.completed")
		if msg.Result != nil {
			msg.Result.Import = summary
		}
		if importErr != nil && len(summary.Created)+len(summary.Updated)+len(summary.Unchanged) == 0 {
			return importErr
		}
		return nil
	}
	fields := func(msg ImportSeedsCommand) map[string]any {
		return map[string]any{"directory": msg.Directory}
	}
	return newHandler(logger, "records.import_seeds", fields, exec, opts)
}

func summarize(result *markdown.ImportResult) *ImportSummary {
	summary := &ImportSummary{}
	if result == nil {
		return summary
	}
	summary.Created = result.Created
	summary.Updated = result.Updated
	summary.Unchanged = result.Unchanged
	for _, err := range result.Errors {
		summary.Errors = append(summary.Errors, err.Error())
	}
	return summary
}
