package records

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Record is one persisted content item (page, service, or use case).
type Record struct {
	bun.BaseModel `bun:"table:content_records,alias:cr"`

	ID             uuid.UUID      `bun:",pk,type:uuid" json:"id"`
	Collection     string         `bun:"collection,notnull,unique:collection_slug" json:"collection"`
	Slug           string         `bun:"slug,notnull,unique:collection_slug" json:"slug"`
	Title          string         `bun:"title,notnull" json:"title"`
	Category       string         `bun:"category" json:"category,omitempty"`
	OrderIndex     int            `bun:"order_index,notnull,default:0" json:"order_index"`
	IsFeatured     bool           `bun:"is_featured,notnull,default:false" json:"is_featured"`
	IsPublished    bool           `bun:"is_published,notnull,default:false" json:"is_published"`
	IsActive       bool           `bun:"is_active,notnull,default:false" json:"is_active"`
	Fields         map[string]any `bun:"fields,type:jsonb" json:"fields,omitempty"`
	LastModifiedBy uuid.UUID      `bun:"last_modified_by,type:uuid" json:"last_modified_by"`
	CreatedAt      time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt      time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Flag names a boolean visibility flag on a record.
type Flag string

const (
	FlagFeatured  Flag = "is_featured"
	FlagPublished Flag = "is_published"
	FlagActive    Flag = "is_active"
)

// Value reports the flag value carried by the record.
func (f Flag) Value(r *Record) bool {
	if r == nil {
		return false
	}
	switch f {
	case FlagFeatured:
		return r.IsFeatured
	case FlagPublished:
		return r.IsPublished
	case FlagActive:
		return r.IsActive
	default:
		return false
	}
}

// Direction is the reorder direction within the visible list.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Patch describes a partial update. Nil members are left untouched.
type Patch struct {
	Slug        *string
	Title       *string
	Category    *string
	OrderIndex  *int
	IsFeatured  *bool
	IsPublished *bool
	IsActive    *bool
	Fields      map[string]any

	// Provenance, stamped by the adapter on every write.
	UpdatedAt      time.Time
	LastModifiedBy uuid.UUID
}

// Empty reports whether the patch carries no content changes.
func (p Patch) Empty() bool {
	return p.Slug == nil && p.Title == nil && p.Category == nil && p.OrderIndex == nil &&
		p.IsFeatured == nil && p.IsPublished == nil && p.IsActive == nil && p.Fields == nil
}

// FlagPatch builds a patch that sets a single flag.
func FlagPatch(flag Flag, value bool) Patch {
	v := value
	switch flag {
	case FlagFeatured:
		return Patch{IsFeatured: &v}
	case FlagPublished:
		return Patch{IsPublished: &v}
	case FlagActive:
		return Patch{IsActive: &v}
	default:
		return Patch{}
	}
}

// OrderPatch builds a patch that moves a record to the supplied order index.
func OrderPatch(order int) Patch {
	v := order
	return Patch{OrderIndex: &v}
}

// Apply copies the patch onto record. Fields replace the payload wholesale.
func (p Patch) Apply(record *Record) {
	if record == nil {
		return
	}
	if p.Slug != nil {
		record.Slug = *p.Slug
	}
	if p.Title != nil {
		record.Title = *p.Title
	}
	if p.Category != nil {
		record.Category = *p.Category
	}
	if p.OrderIndex != nil {
		record.OrderIndex = *p.OrderIndex
	}
	if p.IsFeatured != nil {
		record.IsFeatured = *p.IsFeatured
	}
	if p.IsPublished != nil {
		record.IsPublished = *p.IsPublished
	}
	if p.IsActive != nil {
		record.IsActive = *p.IsActive
	}
	if p.Fields != nil {
		record.Fields = deepCloneMap(p.Fields)
	}
	if !p.UpdatedAt.IsZero() {
		record.UpdatedAt = p.UpdatedAt
	}
	if p.LastModifiedBy != uuid.Nil {
		record.LastModifiedBy = p.LastModifiedBy
	}
}

// Columns lists the storage columns touched by the patch.
func (p Patch) Columns() []string {
	cols := make([]string, 0, 8)
	if p.Slug != nil {
		cols = append(cols, "slug")
	}
	if p.Title != nil {
		cols = append(cols, "title")
	}
	if p.Category != nil {
		cols = append(cols, "category")
	}
	if p.OrderIndex != nil {
		cols = append(cols, "order_index")
	}
	if p.IsFeatured != nil {
		cols = append(cols, "is_featured")
	}
	if p.IsPublished != nil {
		cols = append(cols, "is_published")
	}
	if p.IsActive != nil {
		cols = append(cols, "is_active")
	}
	if p.Fields != nil {
		cols = append(cols, "fields")
	}
	if !p.UpdatedAt.IsZero() {
		cols = append(cols, "updated_at")
	}
	if p.LastModifiedBy != uuid.Nil {
		cols = append(cols, "last_modified_by")
	}
	return cols
}

// Descriptor parameterises the manager for one content type.
type Descriptor struct {
	// Table is the store table (collection) name.
	Table string
	// Label is used in notifications ("Service saved").
	Label string
	// Required lists field paths that must be non-empty before saving.
	Required []string
	// Template seeds new drafts.
	Template map[string]any
	// Schema is an optional JSON schema applied to the payload fields.
	Schema map[string]any
	// Flags lists the flags that may be toggled for this content type.
	Flags []Flag
	// CategoryFrom names a payload key mirrored into Category on edit.
	CategoryFrom string
	// SearchFields are payload keys matched by the search filter.
	SearchFields []string
	// Route names the public route used when building record URLs.
	Route string
	// BodyField is the payload key that receives the Markdown body of seed files.
	BodyField string
	// PreviewFields lists payload keys rendered, in order, by the preview.
	PreviewFields []string
}

// AllowsFlag reports whether the descriptor allows toggling flag.
func (d Descriptor) AllowsFlag(flag Flag) bool {
	for _, allowed := range d.Flags {
		if allowed == flag {
			return true
		}
	}
	return false
}

func (d Descriptor) label() string {
	if d.Label != "" {
		return d.Label
	}
	return d.Table
}
