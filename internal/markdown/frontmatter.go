package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
)

// SeedDocument is one record described by a Markdown file with frontmatter.
type SeedDocument struct {
	Path       string
	Collection string
	Title      string
	Slug       string
	Category   string
	Featured   *bool
	Published  *bool
	Active     *bool
	Fields     map[string]any
	Body       string
}

type seedEnvelope struct {
	Title     string         `yaml:"title"`
	Slug      string         `yaml:"slug"`
	Category  string         `yaml:"category"`
	Featured  *bool          `yaml:"featured"`
	Published *bool          `yaml:"published"`
	Active    *bool          `yaml:"active"`
	Fields    map[string]any `yaml:",inline"`
}

// ParseSeed extracts the frontmatter and Markdown body of a seed file.
// Frontmatter keys other than the core ones become payload fields.
func ParseSeed(collection, path string, source []byte) (*SeedDocument, error) {
	var meta seedEnvelope
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return nil, fmt.Errorf("parse frontmatter %s: %w", path, err)
	}
	fields, _ := normalizeYAML(meta.Fields).(map[string]any)
	if fields == nil {
		fields = map[string]any{}
	}
	return &SeedDocument{
		Path:       path,
		Collection: collection,
		Title:      strings.TrimSpace(meta.Title),
		Slug:       strings.TrimSpace(meta.Slug),
		Category:   strings.TrimSpace(meta.Category),
		Featured:   meta.Featured,
		Published:  meta.Published,
		Active:     meta.Active,
		Fields:     fields,
		Body:       strings.TrimSpace(string(body)),
	}, nil
}

// normalizeYAML converts YAML-decoded maps with interface keys into
// map[string]any so payloads serialise as JSON objects.
func normalizeYAML(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = normalizeYAML(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[fmt.Sprint(key)] = normalizeYAML(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = normalizeYAML(item)
		}
		return out
	default:
		return value
	}
}
