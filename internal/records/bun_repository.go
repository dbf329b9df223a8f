package records

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/brightpath-ai/siteadmin/internal/logging"
	"github.com/brightpath-ai/siteadmin/pkg/interfaces"
	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ChangePublisher announces a committed write to out-of-process listeners.
type ChangePublisher interface {
	Publish(ctx context.Context, table string) error
}

// BunTable implements Table on a single content_records table where the
// collection column partitions the logical tables.
//
// List queries always read the database. When a cache is configured only
// single-record reads go through it, and the cache is flushed after every
// local write and every change signal from the change source.
type BunTable struct {
	db           *bun.DB
	base         repository.Repository[*Record]
	cached       repository.Repository[*Record]
	cacheService cache.CacheService
	hub          *changeHub
	source       ChangeSource
	publisher    ChangePublisher
	logger       interfaces.Logger
	now          func() time.Time
}

// BunTableOption configures a BunTable.
type BunTableOption func(*BunTable)

// WithCache serves Get through a go-repository-cache decorator.
func WithCache(cacheService cache.CacheService, keySerializer cache.KeySerializer) BunTableOption {
	return func(t *BunTable) {
		if cacheService == nil || keySerializer == nil {
			return
		}
		t.cached = repositorycache.New(t.base, cacheService, keySerializer)
		t.cacheService = cacheService
	}
}

// WithChangeSource merges out-of-process change signals into Subscribe.
func WithChangeSource(source ChangeSource) BunTableOption {
	return func(t *BunTable) {
		t.source = source
	}
}

// WithChangePublisher announces every committed write through publisher.
func WithChangePublisher(publisher ChangePublisher) BunTableOption {
	return func(t *BunTable) {
		t.publisher = publisher
	}
}

// WithTableLogger sets the logger for cache and notification failures.
func WithTableLogger(logger interfaces.Logger) BunTableOption {
	return func(t *BunTable) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewBunTable constructs a Table backed by bun.
func NewBunTable(db *bun.DB, opts ...BunTableOption) *BunTable {
	t := &BunTable{
		db:     db,
		base:   NewRecordRepository(db),
		hub:    newChangeHub(),
		logger: logging.NoOp(),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

// EnsureSchema creates the content_records table when missing.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().Model((*Record)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("create content_records: %w", err)
	}
	if _, err := db.NewCreateIndex().
		Model((*Record)(nil)).
		Index("idx_content_records_order").
		Column("collection", "order_index").
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("index content_records: %w", err)
	}
	return nil
}

func (t *BunTable) Select(ctx context.Context, table string, query Query) ([]*Record, error) {
	records, _, err := t.base.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			q = q.Where("?TableAlias.collection = ?", table)
			if query.Slug != "" {
				q = q.Where("?TableAlias.slug = ?", query.Slug)
			}
			return q.OrderExpr(orderExpression(query))
		}),
	)
	if err != nil {
		return nil, err
	}
	for _, record := range records {
		normalizeLoaded(record)
	}
	return records, nil
}

func (t *BunTable) Get(ctx context.Context, table string, id uuid.UUID) (*Record, error) {
	repo := t.base
	if t.cached != nil {
		repo = t.cached
	}
	return t.load(ctx, repo, table, id)
}

func (t *BunTable) load(ctx context.Context, repo repository.Repository[*Record], table string, id uuid.UUID) (*Record, error) {
	record, err := repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, table, id)
	}
	if record == nil || record.Collection != table {
		return nil, notFound(table, id)
	}
	record = CloneRecord(record)
	normalizeLoaded(record)
	return record, nil
}

func (t *BunTable) Insert(ctx context.Context, table string, record *Record) (*Record, error) {
	toInsert := CloneRecord(record)
	toInsert.Collection = table
	if toInsert.ID == uuid.Nil {
		toInsert.ID = uuid.New()
	}
	now := t.now().UTC()
	if toInsert.CreatedAt.IsZero() {
		toInsert.CreatedAt = now
	}
	if toInsert.UpdatedAt.IsZero() {
		toInsert.UpdatedAt = now
	}
	if toInsert.Fields == nil {
		toInsert.Fields = map[string]any{}
	}
	created, err := t.base.Create(ctx, toInsert)
	if err != nil {
		return nil, err
	}
	t.changed(ctx, table)
	return CloneRecord(created), nil
}

func (t *BunTable) Update(ctx context.Context, table string, id uuid.UUID, patch Patch) (*Record, error) {
	current, err := t.load(ctx, t.base, table, id)
	if err != nil {
		return nil, err
	}
	columns := patch.Columns()
	if len(columns) == 0 {
		return current, nil
	}
	patch.Apply(current)
	updated, err := t.base.Update(ctx, current,
		repository.UpdateByID(id.String()),
		repository.UpdateColumns(columns...),
	)
	if err != nil {
		return nil, mapRepositoryError(err, table, id)
	}
	t.changed(ctx, table)
	return CloneRecord(updated), nil
}

func (t *BunTable) Delete(ctx context.Context, table string, id uuid.UUID) error {
	if _, err := t.load(ctx, t.base, table, id); err != nil {
		return err
	}
	if err := t.base.Delete(ctx, &Record{ID: id}); err != nil {
		return mapRepositoryError(err, table, id)
	}
	t.changed(ctx, table)
	return nil
}

// Subscribe delivers signals for writes made through this table and, when a
// change source is configured, for writes made by other processes.
func (t *BunTable) Subscribe(table string, onChange func()) func() {
	local := t.hub.Subscribe(table, onChange)
	if t.source == nil || onChange == nil {
		return local
	}
	remote := t.source.Subscribe(table, func() {
		t.evict(context.Background(), table)
		onChange()
	})
	return func() {
		local()
		remote()
	}
}

// Invalidate flushes cached reads. Use it after writing to content_records
// outside this table when no change source is configured.
func (t *BunTable) Invalidate(ctx context.Context) {
	t.evict(ctx, "")
}

func (t *BunTable) changed(ctx context.Context, table string) {
	t.evict(ctx, table)
	t.hub.Publish(table)
	if t.publisher == nil {
		return
	}
	if err := t.publisher.Publish(ctx, table); err != nil {
		t.logger.WithContext(ctx).Warn("records.notify.failed", "collection", table, "error", err)
	}
}

func (t *BunTable) evict(ctx context.Context, table string) {
	if t.cacheService == nil {
		return
	}
	if err := t.cacheService.DeleteByPrefix(ctx, ""); err != nil {
		t.logger.WithContext(ctx).Warn("records.cache.evict_failed", "collection", table, "error", err)
	}
}

func orderExpression(query Query) string {
	dir := "ASC"
	if query.Descending {
		dir = "DESC"
	}
	switch strings.ToLower(strings.TrimSpace(query.OrderBy)) {
	case "title":
		return "LOWER(?TableAlias.title) " + dir + ", ?TableAlias.created_at ASC"
	case "created_at":
		return "?TableAlias.created_at " + dir
	case "updated_at":
		return "?TableAlias.updated_at " + dir
	default:
		return "?TableAlias.order_index " + dir + ", ?TableAlias.created_at ASC, ?TableAlias.id ASC"
	}
}

func normalizeLoaded(record *Record) {
	if record != nil && record.Fields == nil {
		record.Fields = map[string]any{}
	}
}

func mapRepositoryError(err error, table string, id uuid.UUID) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return notFound(table, id)
	}
	return fmt.Errorf("%s repository error: %w", table, err)
}
