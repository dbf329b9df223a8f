package services

import (
	"encoding/json"
	"fmt"

	"github.com/brightpath-ai/siteadmin/internal/records"
)

// Table is the collection name for consulting services.
const Table = "services"

// Pricing models accepted on a service.
const (
	PricingFixed    = "fixed"
	PricingHourly   = "hourly"
	PricingRetainer = "retainer"
	PricingCustom   = "custom"
)

// Pricing describes how a service is billed.
type Pricing struct {
	Model      string  `json:"model,omitempty"`
	StartingAt float64 `json:"starting_at,omitempty"`
	Currency   string  `json:"currency,omitempty"`
}

// Payload is the typed view of a service record's fields.
type Payload struct {
	Description string   `json:"description"`
	Pricing     Pricing  `json:"pricing"`
	Features    []string `json:"features"`
	Icon        string   `json:"icon,omitempty"`
}

// Descriptor configures the record manager for services.
func Descriptor() records.Descriptor {
	return records.Descriptor{
		Table:    Table,
		Label:    "Service",
		Required: []string{"title", "description"},
		Template: map[string]any{
			"description": "",
			"pricing":     map[string]any{"model": PricingCustom},
			"features":    []any{},
		},
		Schema:        schema(),
		Flags:         []records.Flag{records.FlagActive, records.FlagFeatured},
		SearchFields:  []string{"description", "features"},
		Route:         "service",
		BodyField:     "description",
		PreviewFields: []string{"description", "features"},
	}
}

// Decode reads the typed payload of a service record.
func Decode(record *records.Record) (*Payload, error) {
	if record == nil {
		return nil, fmt.Errorf("services: record required")
	}
	encoded, err := json.Marshal(record.Fields)
	if err != nil {
		return nil, fmt.Errorf("services: encode payload: %w", err)
	}
	payload := &Payload{}
	if err := json.Unmarshal(encoded, payload); err != nil {
		return nil, fmt.Errorf("services: decode payload: %w", err)
	}
	return payload, nil
}

func schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"description": map[string]any{"type": "string"},
			"pricing": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"model": map[string]any{
						"type": "string",
						"enum": []any{PricingFixed, PricingHourly, PricingRetainer, PricingCustom},
					},
					"starting_at": map[string]any{"type": "number", "minimum": 0},
					"currency":    map[string]any{"type": "string", "pattern": "^[A-Z]{3}$"},
				},
			},
			"features": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string", "minLength": 1},
			},
			"icon": map[string]any{"type": "string"},
		},
	}
}
