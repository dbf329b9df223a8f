package recordscmd

import (
	"errors"

	"github.com/brightpath-ai/siteadmin/internal/commands"
	"github.com/brightpath-ai/siteadmin/pkg/interfaces"
	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
)

// CommandRegistry is the registration contract used when wiring handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// HandlerSet groups the record command handlers.
type HandlerSet struct {
	Create  *commands.Handler[CreateRecordCommand]
	Update  *commands.Handler[UpdateRecordCommand]
	Reorder *commands.Handler[ReorderRecordCommand]
	Toggle  *commands.Handler[ToggleFlagCommand]
	Delete  *commands.Handler[DeleteRecordCommand]
	Refresh *commands.Handler[RefreshCollectionCommand]
	Import  *commands.Handler[ImportSeedsCommand]
}

// RegisterRecordCommands builds the record handlers and registers them with
// reg when it is non-nil.
func RegisterRecordCommands(reg CommandRegistry, index *ManagerIndex, provider interfaces.LoggerProvider) (*HandlerSet, error) {
	if index == nil {
		return nil, errors.New("records command registration: manager index is nil")
	}
	logger := commands.CommandLogger(provider, "records")
	set := &HandlerSet{
		Create:  NewCreateHandler(index, logger),
		Update:  NewUpdateHandler(index, logger),
		Reorder: NewReorderHandler(index, logger),
		Toggle:  NewToggleFlagHandler(index, logger),
		Delete:  NewDeleteHandler(index, logger),
		Refresh: NewRefreshHandler(index, logger),
		Import:  NewImportSeedsHandler(index, logger),
	}
	if reg != nil {
		for _, handler := range set.handlers() {
			if err := reg.RegisterCommand(handler); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}

func (s *HandlerSet) handlers() []any {
	return []any{s.Create, s.Update, s.Reorder, s.Toggle, s.Delete, s.Refresh, s.Import}
}

// Subscribe attaches every handler to the go-command dispatcher so callers
// can use dispatcher.Dispatch. Store-facing handlers are not retried: a
// repeated reorder would move the record twice.
func (s *HandlerSet) Subscribe() (unsubscribe func()) {
	subs := []interface{ Unsubscribe() }{
		dispatcher.SubscribeCommand(s.Create, runner.WithMaxRetries(0)),
		dispatcher.SubscribeCommand(s.Update, runner.WithMaxRetries(0)),
		dispatcher.SubscribeCommand(s.Reorder, runner.WithMaxRetries(0)),
		dispatcher.SubscribeCommand(s.Toggle, runner.WithMaxRetries(0)),
		dispatcher.SubscribeCommand(s.Delete, runner.WithMaxRetries(0)),
		dispatcher.SubscribeCommand(s.Refresh, runner.WithMaxRetries(2)),
		dispatcher.SubscribeCommand(s.Import, runner.WithMaxRetries(0)),
	}
	return func() {
		for _, sub := range subs {
			sub.Unsubscribe()
		}
	}
}
