package pages

import (
	"encoding/json"
	"fmt"

	"github.com/brightpath-ai/siteadmin/internal/records"
)

// Table is the collection name for site pages.
const Table = "pages"

// Section is one block of page content.
type Section struct {
	Type    string `json:"type"`
	Heading string `json:"heading,omitempty"`
	Body    string `json:"body,omitempty"`
}

// Meta carries search-engine metadata.
type Meta struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// Payload is the typed view of a page record's fields.
type Payload struct {
	Body     string         `json:"body,omitempty"`
	Sections []Section      `json:"sections"`
	Meta     Meta           `json:"meta"`
	Settings map[string]any `json:"settings,omitempty"`
}

// Descriptor configures the record manager for pages.
func Descriptor() records.Descriptor {
	return records.Descriptor{
		Table:    Table,
		Label:    "Page",
		Required: []string{"title", "slug"},
		Template: map[string]any{
			"sections": []any{},
			"meta":     map[string]any{},
			"settings": map[string]any{},
		},
		Schema:        schema(),
		Flags:         []records.Flag{records.FlagPublished, records.FlagActive},
		SearchFields:  []string{"meta.title", "meta.description"},
		Route:         "page",
		BodyField:     "body",
		PreviewFields: []string{"body", "sections"},
	}
}

// Decode reads the typed payload of a page record.
func Decode(record *records.Record) (*Payload, error) {
	if record == nil {
		return nil, fmt.Errorf("pages: record required")
	}
	encoded, err := json.Marshal(record.Fields)
	if err != nil {
		return nil, fmt.Errorf("pages: encode payload: %w", err)
	}
	payload := &Payload{}
	if err := json.Unmarshal(encoded, payload); err != nil {
		return nil, fmt.Errorf("pages: decode payload: %w", err)
	}
	return payload, nil
}

func schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"body": map[string]any{"type": "string"},
			"sections": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []any{"type"},
					"properties": map[string]any{
						"type":    map[string]any{"type": "string", "minLength": 1},
						"heading": map[string]any{"type": "string"},
						"body":    map[string]any{"type": "string"},
					},
				},
			},
			"meta": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title":       map[string]any{"type": "string", "maxLength": 70},
					"description": map[string]any{"type": "string", "maxLength": 160},
				},
			},
			"settings": map[string]any{"type": "object"},
		},
	}
}
