package di

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/brightpath-ai/siteadmin/internal/catalog"
	recordscmd "github.com/brightpath-ai/siteadmin/internal/commands/records"
	adminhttp "github.com/brightpath-ai/siteadmin/internal/http"
	"github.com/brightpath-ai/siteadmin/internal/links"
	"github.com/brightpath-ai/siteadmin/internal/logging"
	"github.com/brightpath-ai/siteadmin/internal/markdown"
	"github.com/brightpath-ai/siteadmin/internal/pgnotify"
	"github.com/brightpath-ai/siteadmin/internal/records"
	"github.com/brightpath-ai/siteadmin/internal/runtimeconfig"
	"github.com/brightpath-ai/siteadmin/pkg/activity"
	"github.com/brightpath-ai/siteadmin/pkg/activity/usersink"
	"github.com/brightpath-ai/siteadmin/pkg/interfaces"
	repocache "github.com/goliatone/go-repository-cache/cache"
	urlkit "github.com/goliatone/go-urlkit"
	"github.com/uptrace/bun"
)

// Container wires the record managers, their store, and the surfaces that
// drive them.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logger         interfaces.Logger

	bunDB   *bun.DB
	ownsDB  bool
	table   records.Table
	cacheSv repocache.CacheService
	keySer  repocache.KeySerializer

	listener   *pgnotify.Listener
	publisher  *pgnotify.Publisher
	listenStop context.CancelFunc
	listenDone chan struct{}

	descriptors   []records.Descriptor
	activitySink  interfaces.ActivitySink
	activityHooks activity.Hooks
	emitter       *activity.Emitter
	inbox         *records.Recorder

	routes    *urlkit.RouteManager
	links     *links.Resolver
	previewer *markdown.Previewer

	registry recordscmd.CommandRegistry
	managers *recordscmd.ManagerIndex
	handlers *recordscmd.HandlerSet

	mu      sync.Mutex
	started bool
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider derived from the logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithBunDB supplies an open database instead of dialing the configured DSN.
// The caller keeps ownership of db.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithTable bypasses the database entirely, e.g. with records.NewMemoryTable.
func WithTable(table records.Table) Option {
	return func(c *Container) {
		c.table = table
	}
}

// WithCache overrides the go-repository-cache service used when caching is enabled.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheSv = service
		c.keySer = serializer
	}
}

// WithDescriptors restricts or replaces the managed content types.
func WithDescriptors(descriptors ...records.Descriptor) Option {
	return func(c *Container) {
		c.descriptors = append([]records.Descriptor(nil), descriptors...)
	}
}

// WithActivitySink routes creation events to sink, such as a go-users store.
func WithActivitySink(sink interfaces.ActivitySink) Option {
	return func(c *Container) {
		c.activitySink = sink
	}
}

// WithActivityHooks adds hooks that receive creation events alongside the sink.
func WithActivityHooks(hooks ...activity.Hook) Option {
	return func(c *Container) {
		c.activityHooks = append(c.activityHooks, hooks...)
	}
}

// WithCommandRegistry registers the record command handlers with registry.
func WithCommandRegistry(registry recordscmd.CommandRegistry) Option {
	return func(c *Container) {
		c.registry = registry
	}
}

// NewContainer validates cfg and assembles every dependency. Database
// connections are opened lazily by the driver; nothing is read until Start.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		Config:      cfg,
		descriptors: catalog.All(),
		inbox:       &records.Recorder{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	if err := c.configureStore(); err != nil {
		_ = c.closeStore()
		return nil, err
	}
	c.configureLinks()
	c.configureActivity()
	if err := c.configureManagers(); err != nil {
		_ = c.closeStore()
		return nil, err
	}
	c.previewer = markdown.NewPreviewer(markdown.ParseOptions{})
	return c, nil
}

func (c *Container) configureLogging() error {
	if c.loggerProvider == nil {
		provider, err := NewLoggerProvider(c.Config.Logging)
		if err != nil {
			return fmt.Errorf("logging: %w", err)
		}
		c.loggerProvider = provider
	}
	c.logger = logging.ModuleLogger(c.loggerProvider, "")
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled {
		return
	}
	if c.cacheSv == nil {
		cfg := repocache.DefaultConfig()
		if c.Config.Cache.DefaultTTL > 0 {
			cfg.TTL = c.Config.Cache.DefaultTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err != nil {
			c.logger.Warn("cache.disabled", "error", err)
			return
		}
		c.cacheSv = service
	}
	if c.keySer == nil {
		c.keySer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureStore() error {
	if c.table != nil {
		return nil
	}
	if c.bunDB == nil {
		db, err := OpenDB(c.Config.Storage)
		if err != nil {
			return err
		}
		c.bunDB = db
		c.ownsDB = true
	}

	tableOpts := []records.BunTableOption{
		records.WithTableLogger(logging.StoreLogger(c.loggerProvider)),
	}
	if c.cacheSv != nil {
		tableOpts = append(tableOpts, records.WithCache(c.cacheSv, c.keySer))
	}
	if c.Config.Postgres() && c.Config.Storage.Notify {
		channel := c.Config.Storage.NotifyChannel
		c.publisher = pgnotify.NewPublisher(c.bunDB, channel)
		listener, err := pgnotify.Dial(c.Config.Storage.DSN, channel,
			pgnotify.WithLogger(logging.StoreLogger(c.loggerProvider)))
		if err != nil {
			return err
		}
		c.listener = listener
		tableOpts = append(tableOpts,
			records.WithChangePublisher(c.publisher),
			records.WithChangeSource(c.listener),
		)
	}
	c.table = records.NewBunTable(c.bunDB, tableOpts...)
	return nil
}

func (c *Container) configureLinks() {
	routeCfg := links.DefaultConfig(c.Config.Links.BaseURL)
	for route, path := range c.Config.Links.Paths {
		if strings.TrimSpace(path) != "" {
			routeCfg.Groups[0].Paths[route] = path
		}
	}
	c.routes = urlkit.NewRouteManager(routeCfg)
	c.links = links.NewResolver(c.routes, links.DefaultGroup, c.descriptors...)
}

func (c *Container) configureActivity() {
	sink := c.activitySink
	if sink == nil {
		sink = usersink.LogSink{Logger: logging.ModuleLogger(c.loggerProvider, "siteadmin.activity")}
	}
	hooks := append(activity.Hooks{usersink.Hook{Sink: sink}}, c.activityHooks...)
	c.emitter = activity.NewEmitter(hooks, activity.Config{
		Enabled: true,
		Channel: c.Config.Notifications.Channel,
	})
}

func (c *Container) configureManagers() error {
	recordsLogger := logging.RecordsLogger(c.loggerProvider)
	notifier := records.Notifiers{c.inbox, records.LogNotifier(recordsLogger)}

	var recipients []string
	if mailbox := strings.TrimSpace(c.Config.Notifications.OperationsMailbox); mailbox != "" {
		recipients = append(recipients, mailbox)
	}

	managers := make([]*records.Manager, 0, len(c.descriptors))
	for _, desc := range c.descriptors {
		managers = append(managers, records.NewManager(desc, c.table,
			records.WithLogger(recordsLogger),
			records.WithDebounceWindow(c.Config.Records.DebounceWindow),
			records.WithNotifier(notifier),
			records.WithActivityEmitter(c.emitter, recipients...),
			records.WithURLBuilder(c.links.URL),
		))
	}
	c.managers = recordscmd.NewManagerIndex(managers...)

	handlers, err := recordscmd.RegisterRecordCommands(c.registry, c.managers, c.loggerProvider)
	if err != nil {
		return err
	}
	c.handlers = handlers
	return nil
}

// Migrate creates the record table when the container owns a database.
func (c *Container) Migrate(ctx context.Context) error {
	if c.bunDB == nil {
		return nil
	}
	if err := records.EnsureSchema(ctx, c.bunDB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	logging.StoreLogger(c.loggerProvider).Info("store.migrated", "driver", c.Config.Storage.Driver)
	return nil
}

// Start loads every list, begins following changes, and runs the pg_notify
// listener when configured. Load failures are joined and returned; the
// managers keep watching and recover once the store answers.
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return nil
	}
	c.started = true
	if c.listener != nil {
		listenCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		c.listenStop = cancel
		c.listenDone = make(chan struct{})
		go func() {
			defer close(c.listenDone)
			if err := c.listener.Run(listenCtx); err != nil && !errors.Is(err, context.Canceled) {
				logging.StoreLogger(c.loggerProvider).Error("pgnotify.stopped", "error", err)
			}
		}()
	}
	c.mu.Unlock()

	var errs []error
	for _, manager := range c.managers.All() {
		if err := manager.Start(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close stops the managers and releases the listener and any owned database.
func (c *Container) Close() error {
	c.mu.Lock()
	started := c.started
	c.started = false
	stop, done := c.listenStop, c.listenDone
	c.listenStop, c.listenDone = nil, nil
	c.mu.Unlock()

	if started {
		for _, manager := range c.managers.All() {
			manager.Stop()
		}
	}
	if stop != nil {
		stop()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
		}
	}
	return c.closeStore()
}

func (c *Container) closeStore() error {
	var errs []error
	if c.listener != nil {
		errs = append(errs, c.listener.Close())
		c.listener = nil
	}
	if c.ownsDB && c.bunDB != nil {
		errs = append(errs, c.bunDB.Close())
		c.bunDB = nil
		c.ownsDB = false
	}
	return errors.Join(errs...)
}

// AdminAPI builds the HTTP admin surface over the container's managers.
func (c *Container) AdminAPI(opts ...adminhttp.AdminOption) *adminhttp.AdminAPI {
	base := []adminhttp.AdminOption{
		adminhttp.WithBasePath(c.Config.HTTP.BasePath),
		adminhttp.WithActorHeader(c.Config.HTTP.ActorHeader),
		adminhttp.WithRecords(c.managers, c.handlers),
		adminhttp.WithPreviewer(c.previewer),
		adminhttp.WithURLResolver(c.links),
		adminhttp.WithNotificationInbox(c.inbox),
		adminhttp.WithLogger(logging.HTTPLogger(c.loggerProvider)),
	}
	return adminhttp.NewAdminAPI(append(base, opts...)...)
}

func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }
func (c *Container) DB() *bun.DB                               { return c.bunDB }
func (c *Container) Table() records.Table                      { return c.table }
func (c *Container) Managers() *recordscmd.ManagerIndex        { return c.managers }
func (c *Container) Handlers() *recordscmd.HandlerSet          { return c.handlers }
func (c *Container) Inbox() *records.Recorder                  { return c.inbox }
func (c *Container) Links() *links.Resolver                    { return c.links }
func (c *Container) Previewer() *markdown.Previewer            { return c.previewer }
