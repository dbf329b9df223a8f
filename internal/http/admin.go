package http

import (
	"fmt"
	"net/http"
	"strings"

	recordscmd "github.com/brightpath-ai/siteadmin/internal/commands/records"
	"github.com/brightpath-ai/siteadmin/internal/logging"
	"github.com/brightpath-ai/siteadmin/internal/markdown"
	"github.com/brightpath-ai/siteadmin/internal/records"
	"github.com/brightpath-ai/siteadmin/pkg/interfaces"
)

// DefaultActorHeader carries the acting user id or handle.
const DefaultActorHeader = "X-Actor-ID"

// URLResolver builds public record URLs.
type URLResolver interface {
	URL(record *records.Record) string
}

// AdminAPI registers the record admin endpoints.
type AdminAPI struct {
	basePath    string
	actorHeader string
	managers    *recordscmd.ManagerIndex
	handlers    *recordscmd.HandlerSet
	previewer   *markdown.Previewer
	links       URLResolver
	inbox       *records.Recorder
	logger      interfaces.Logger
}

// AdminOption mutates the AdminAPI configuration.
type AdminOption func(*AdminAPI)

// NewAdminAPI constructs an AdminAPI instance.
func NewAdminAPI(opts ...AdminOption) *AdminAPI {
	api := &AdminAPI{
		basePath:    "/admin/api",
		actorHeader: DefaultActorHeader,
		logger:      logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	if api.previewer == nil {
		api.previewer = markdown.NewPreviewer(markdown.ParseOptions{})
	}
	return api
}

// WithBasePath overrides the base API path (defaults to "/admin/api").
func WithBasePath(path string) AdminOption {
	return func(api *AdminAPI) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.basePath = trimmed
		}
	}
}

// WithActorHeader overrides the header used to identify the acting user.
func WithActorHeader(header string) AdminOption {
	return func(api *AdminAPI) {
		if trimmed := strings.TrimSpace(header); trimmed != "" {
			api.actorHeader = trimmed
		}
	}
}

// WithRecords wires the managers and the command handlers that mutate them.
func WithRecords(managers *recordscmd.ManagerIndex, handlers *recordscmd.HandlerSet) AdminOption {
	return func(api *AdminAPI) {
		api.managers = managers
		api.handlers = handlers
	}
}

// WithPreviewer overrides the Markdown previewer.
func WithPreviewer(previewer *markdown.Previewer) AdminOption {
	return func(api *AdminAPI) {
		api.previewer = previewer
	}
}

// WithURLResolver adds public URLs to record responses.
func WithURLResolver(resolver URLResolver) AdminOption {
	return func(api *AdminAPI) {
		api.links = resolver
	}
}

// WithNotificationInbox exposes manager notifications at /notifications.
func WithNotificationInbox(inbox *records.Recorder) AdminOption {
	return func(api *AdminAPI) {
		api.inbox = inbox
	}
}

// WithLogger sets the request logger.
func WithLogger(logger interfaces.Logger) AdminOption {
	return func(api *AdminAPI) {
		if logger != nil {
			api.logger = logger
		}
	}
}

// Register attaches the admin endpoints to the provided mux.
func (api *AdminAPI) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	if api == nil {
		return fmt.Errorf("http: admin api is nil")
	}
	if api.managers == nil || api.handlers == nil {
		return fmt.Errorf("http: record managers are required")
	}

	base := joinPath(api.basePath, "")
	handle := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, api.authenticated(fn))
	}

	handle("GET "+joinPath(base, "collections"), api.handleCollections)
	handle("GET "+joinPath(base, "notifications"), api.handleNotifications)

	collection := joinPath(base, "{collection}")
	handle("GET "+collection, api.handleList)
	handle("POST "+collection, api.handleCreate)
	handle("POST "+collection+"/refresh", api.handleRefresh)
	handle("GET "+collection+"/{id}", api.handleGet)
	handle("PATCH "+collection+"/{id}", api.handleUpdate)
	handle("DELETE "+collection+"/{id}", api.handleDelete)
	handle("POST "+collection+"/{id}/reorder", api.handleReorder)
	handle("POST "+collection+"/{id}/toggle", api.handleToggle)
	handle("GET "+collection+"/{id}/preview", api.handlePreview)
	return nil
}
