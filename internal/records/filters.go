package records

import (
	"fmt"
	"strings"
)

// Status selects records by flag state.
type Status string

const (
	StatusAll       Status = "all"
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusFeatured  Status = "featured"
	StatusPublished Status = "published"
	StatusDraft     Status = "draft"
)

// ParseStatus accepts the status names used by query strings and the CLI.
func ParseStatus(value string) (Status, error) {
	switch status := Status(strings.ToLower(strings.TrimSpace(value))); status {
	case "":
		return StatusAll, nil
	case StatusAll, StatusActive, StatusInactive, StatusFeatured, StatusPublished, StatusDraft:
		return status, nil
	default:
		return "", fmt.Errorf("%w: unknown status %q", ErrValidation, value)
	}
}

// Filters narrow the visible list. The zero value matches everything.
type Filters struct {
	Search   string `json:"search,omitempty"`
	Category string `json:"category,omitempty"`
	Status   Status `json:"status,omitempty"`
}

// Match reports whether record is visible under f for the given content type.
func (f Filters) Match(desc Descriptor, record *Record) bool {
	if record == nil {
		return false
	}
	if category := strings.TrimSpace(f.Category); category != "" && !strings.EqualFold(category, "all") {
		if !strings.EqualFold(record.Category, category) {
			return false
		}
	}
	if !f.matchStatus(record) {
		return false
	}
	return f.matchSearch(desc, record)
}

func (f Filters) matchStatus(record *Record) bool {
	switch f.Status {
	case "", StatusAll:
		return true
	case StatusActive:
		return record.IsActive
	case StatusInactive:
		return !record.IsActive
	case StatusFeatured:
		return record.IsFeatured
	case StatusPublished:
		return record.IsPublished
	case StatusDraft:
		return !record.IsPublished
	default:
		return false
	}
}

func (f Filters) matchSearch(desc Descriptor, record *Record) bool {
	needle := strings.ToLower(strings.TrimSpace(f.Search))
	if needle == "" {
		return true
	}
	if strings.Contains(strings.ToLower(record.Title), needle) ||
		strings.Contains(strings.ToLower(record.Slug), needle) {
		return true
	}
	for _, path := range desc.SearchFields {
		value := fieldValue(record, path)
		if containsText(value, needle) {
			return true
		}
	}
	return false
}

func containsText(value any, needle string) bool {
	switch typed := value.(type) {
	case string:
		return strings.Contains(strings.ToLower(typed), needle)
	case []string:
		for _, item := range typed {
			if strings.Contains(strings.ToLower(item), needle) {
				return true
			}
		}
	case []any:
		for _, item := range typed {
			if containsText(item, needle) {
				return true
			}
		}
	}
	return false
}
