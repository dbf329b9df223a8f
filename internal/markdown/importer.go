package markdown

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/brightpath-ai/siteadmin/internal/logging"
	"github.com/brightpath-ai/siteadmin/internal/records"
	"github.com/brightpath-ai/siteadmin/pkg/interfaces"
	"github.com/google/uuid"
)

// ImportResult summarises a seed import.
type ImportResult struct {
	Created   []string
	Updated   []string
	Unchanged []string
	Errors    []error
}

// Importer applies seed documents through the record managers so seeded
// content goes through the same validation and ordering as admin edits.
type Importer struct {
	managers map[string]*records.Manager
	logger   interfaces.Logger
}

// NewImporter indexes managers by collection.
func NewImporter(managers []*records.Manager, logger interfaces.Logger) *Importer {
	if logger == nil {
		logger = logging.NoOp()
	}
	index := make(map[string]*records.Manager, len(managers))
	for _, manager := range managers {
		index[manager.Descriptor().Table] = manager
	}
	return &Importer{managers: index, logger: logger}
}

// Import creates records for new slugs and updates records whose seed content
// differs. Per-document failures are collected and joined into the error.
func (i *Importer) Import(ctx context.Context, docs []*SeedDocument, actor uuid.UUID) (*ImportResult, error) {
	result := &ImportResult{}
	loaded := map[string]bool{}
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		manager, ok := i.managers[doc.Collection]
		if !ok {
			result.Errors = append(result.Errors, fmt.Errorf("%s: unknown collection %q", doc.Path, doc.Collection))
			continue
		}
		if !loaded[doc.Collection] {
			if err := manager.Controller().Refresh(ctx); err != nil {
				return result, err
			}
			loaded[doc.Collection] = true
		}
		outcome, err := i.apply(ctx, manager, doc, actor)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("%s: %w", doc.Path, err))
			continue
		}
		key := doc.Collection + "/" + outcome.slug
		switch outcome.kind {
		case "created":
			result.Created = append(result.Created, key)
		case "updated":
			result.Updated = append(result.Updated, key)
		default:
			result.Unchanged = append(result.Unchanged, key)
		}
		i.logger.Debug("markdown.import.applied", "path", doc.Path, "outcome", outcome.kind)
	}
	return result, errors.Join(result.Errors...)
}

type applyOutcome struct {
	kind string
	slug string
}

func (i *Importer) apply(ctx context.Context, manager *records.Manager, doc *SeedDocument, actor uuid.UUID) (applyOutcome, error) {
	desc := manager.Descriptor()
	slug := doc.Slug
	if slug == "" {
		slug = records.DeriveSlug(doc.Title)
	}
	editor := manager.NewEditor()

	var existing *records.Record
	for _, record := range manager.Controller().All() {
		if record.Slug == slug {
			existing = record
			break
		}
	}
	if existing == nil {
		if _, err := editor.StartNew(nil); err != nil {
			return applyOutcome{}, err
		}
	} else if _, err := editor.StartEdit(existing); err != nil {
		return applyOutcome{}, err
	}

	for _, field := range seedValues(desc, doc) {
		if _, err := editor.SetField(field.path, field.value); err != nil {
			editor.Cancel()
			return applyOutcome{}, err
		}
	}
	if doc.Slug != "" {
		if _, err := editor.SetField("slug", doc.Slug); err != nil {
			editor.Cancel()
			return applyOutcome{}, err
		}
	}

	if existing != nil {
		draft, _ := editor.Draft()
		if sameContent(existing, draft) {
			editor.Cancel()
			return applyOutcome{kind: "unchanged", slug: slug}, nil
		}
	}
	saved, err := editor.Save(ctx, actor)
	if err != nil {
		return applyOutcome{}, err
	}
	if existing == nil {
		return applyOutcome{kind: "created", slug: saved.Slug}, nil
	}
	return applyOutcome{kind: "updated", slug: saved.Slug}, nil
}

type seedField struct {
	path  string
	value any
}

// seedValues orders the draft edits: payload keys first (sorted), then core
// columns so an explicit category wins over one mirrored from the payload.
func seedValues(desc records.Descriptor, doc *SeedDocument) []seedField {
	keys := make([]string, 0, len(doc.Fields))
	for key := range doc.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	values := make([]seedField, 0, len(keys)+6)
	for _, key := range keys {
		values = append(values, seedField{key, doc.Fields[key]})
	}
	if doc.Body != "" && desc.BodyField != "" {
		values = append(values, seedField{desc.BodyField, doc.Body})
	}
	if doc.Title != "" {
		values = append(values, seedField{"title", doc.Title})
	}
	if doc.Category != "" {
		values = append(values, seedField{"category", doc.Category})
	}
	if doc.Featured != nil {
		values = append(values, seedField{string(records.FlagFeatured), *doc.Featured})
	}
	if doc.Published != nil {
		values = append(values, seedField{string(records.FlagPublished), *doc.Published})
	}
	if doc.Active != nil {
		values = append(values, seedField{string(records.FlagActive), *doc.Active})
	}
	return values
}

func sameContent(a, b *records.Record) bool {
	if a == nil || b == nil {
		return false
	}
	if a.Title != b.Title || a.Slug != b.Slug || a.Category != b.Category ||
		a.IsFeatured != b.IsFeatured || a.IsPublished != b.IsPublished || a.IsActive != b.IsActive {
		return false
	}
	left, errLeft := json.Marshal(a.Fields)
	right, errRight := json.Marshal(b.Fields)
	return errLeft == nil && errRight == nil && bytes.Equal(left, right)
}
