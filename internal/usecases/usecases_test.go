package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/brightpath-ai/siteadmin/internal/records"
	"github.com/brightpath-ai/siteadmin/internal/usecases"
	"github.com/google/uuid"
)

func TestDecodeReadsNestedResults(t *testing.T) {
	payload, err := usecases.Decode(&records.Record{Fields: map[string]any{
		"industry":  "Insurance",
		"challenge": "Manual claims triage",
		"results": map[string]any{
			"summary": "Faster routing",
			"metrics": []any{map[string]any{"label": "Handling time", "value": "-38%"}},
		},
		"technologies": []any{"Python", "Vertex AI"},
	}})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Industry != "Insurance" || len(payload.Results.Metrics) != 1 || payload.Results.Metrics[0].Value != "-38%" {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if len(payload.Technologies) != 2 {
		t.Fatalf("expected technologies, got %v", payload.Technologies)
	}
}

func TestManagerRejectsIncompleteMetrics(t *testing.T) {
	manager := records.NewManager(usecases.Descriptor(), records.NewMemoryTable())
	editor := manager.Editor()
	if _, err := editor.StartNew(map[string]any{
		"title":           "Claims triage",
		"industry":        "Insurance",
		"challenge":       "Backlog",
		"results.metrics": []any{map[string]any{"label": "Handling time"}},
	}); err != nil {
		t.Fatalf("start new: %v", err)
	}

	_, err := editor.Save(context.Background(), uuid.New())
	if !errors.Is(err, records.ErrValidation) {
		t.Fatalf("expected metric without value to be rejected, got %v", err)
	}
	draft, _ := editor.Draft()
	if draft.Category != "Insurance" {
		t.Fatalf("expected category mirrored from industry, got %q", draft.Category)
	}
}
