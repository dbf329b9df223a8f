package usecases

import (
	"encoding/json"
	"fmt"

	"github.com/brightpath-ai/siteadmin/internal/records"
)

// Table is the collection name for client use cases.
const Table = "use_cases"

// Metric is one measurable outcome of an engagement.
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Results summarises what an engagement delivered.
type Results struct {
	Summary string   `json:"summary,omitempty"`
	Metrics []Metric `json:"metrics"`
}

// Payload is the typed view of a use case record's fields.
type Payload struct {
	Client       string   `json:"client,omitempty"`
	Industry     string   `json:"industry"`
	Challenge    string   `json:"challenge"`
	Solution     string   `json:"solution,omitempty"`
	Results      Results  `json:"results"`
	Technologies []string `json:"technologies"`
}

// Descriptor configures the record manager for use cases. The industry is
// mirrored into the record category so the category filter can use it.
func Descriptor() records.Descriptor {
	return records.Descriptor{
		Table:    Table,
		Label:    "Use case",
		Required: []string{"title", "industry", "challenge"},
		Template: map[string]any{
			"results":      map[string]any{"summary": "", "metrics": []any{}},
			"technologies": []any{},
		},
		Schema:        schema(),
		CategoryFrom:  "industry",
		Flags:         []records.Flag{records.FlagPublished, records.FlagFeatured},
		SearchFields:  []string{"client", "industry", "challenge", "technologies"},
		Route:         "use_case",
		BodyField:     "solution",
		PreviewFields: []string{"challenge", "solution", "results.summary", "technologies"},
	}
}

// Decode reads the typed payload of a use case record.
func Decode(record *records.Record) (*Payload, error) {
	if record == nil {
		return nil, fmt.Errorf("usecases: record required")
	}
	encoded, err := json.Marshal(record.Fields)
	if err != nil {
		return nil, fmt.Errorf("usecases: encode payload: %w", err)
	}
	payload := &Payload{}
	if err := json.Unmarshal(encoded, payload); err != nil {
		return nil, fmt.Errorf("usecases: decode payload: %w", err)
	}
	return payload, nil
}

func schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"client":    map[string]any{"type": "string"},
			"industry":  map[string]any{"type": "string"},
			"challenge": map[string]any{"type": "string"},
			"solution":  map[string]any{"type": "string"},
			"results": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"summary": map[string]any{"type": "string"},
					"metrics": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type":     "object",
							"required": []any{"label", "value"},
							"properties": map[string]any{
								"label": map[string]any{"type": "string", "minLength": 1},
								"value": map[string]any{"type": "string", "minLength": 1},
							},
						},
					},
				},
			},
			"technologies": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
	}
}
