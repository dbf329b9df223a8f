package markdown

import (
	"fmt"
	"strings"

	"github.com/brightpath-ai/siteadmin/internal/records"
)

// Previewer renders a record as HTML from its title and preview fields.
type Previewer struct {
	parser *GoldmarkParser
}

// NewPreviewer builds a previewer. Raw HTML in record content is dropped.
func NewPreviewer(opts ParseOptions) *Previewer {
	opts.SafeMode = true
	return &Previewer{parser: NewGoldmarkParser(opts)}
}

// Markdown assembles the Markdown source used for the preview.
func Markdown(desc records.Descriptor, record *records.Record) string {
	if record == nil {
		return ""
	}
	var b strings.Builder
	if title := strings.TrimSpace(record.Title); title != "" {
		fmt.Fprintf(&b, "# %s\n\n", title)
	}
	for _, path := range desc.PreviewFields {
		writeValue(&b, lookup(record.Fields, path))
	}
	return b.String()
}

// Render produces the HTML preview of record.
func (p *Previewer) Render(desc records.Descriptor, record *records.Record) ([]byte, error) {
	return p.parser.Parse([]byte(Markdown(desc, record)))
}

func writeValue(b *strings.Builder, value any) {
	switch typed := value.(type) {
	case string:
		if text := strings.TrimSpace(typed); text != "" {
			b.WriteString(text)
			b.WriteString("\n\n")
		}
	case []string:
		for _, item := range typed {
			fmt.Fprintf(b, "- %s\n", item)
		}
		if len(typed) > 0 {
			b.WriteString("\n")
		}
	case []any:
		bullets := 0
		for _, item := range typed {
			switch entry := item.(type) {
			case string:
				fmt.Fprintf(b, "- %s\n", entry)
				bullets++
			case map[string]any:
				if bullets > 0 {
					b.WriteString("\n")
					bullets = 0
				}
				writeSection(b, entry)
			}
		}
		if bullets > 0 {
			b.WriteString("\n")
		}
	}
}

func writeSection(b *strings.Builder, section map[string]any) {
	if heading, _ := section["heading"].(string); strings.TrimSpace(heading) != "" {
		fmt.Fprintf(b, "## %s\n\n", strings.TrimSpace(heading))
	}
	if body, _ := section["body"].(string); strings.TrimSpace(body) != "" {
		b.WriteString(strings.TrimSpace(body))
		b.WriteString("\n\n")
	}
	if label, _ := section["label"].(string); label != "" {
		value, _ := section["value"].(string)
		fmt.Fprintf(b, "- **%s**: %s\n\n", label, value)
	}
}

func lookup(fields map[string]any, path string) any {
	var current any = fields
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = m[part]
	}
	return current
}
