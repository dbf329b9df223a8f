package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
)

// ParseOptions configures the Markdown engine. An empty extension list means GFM.
type ParseOptions struct {
	Extensions []string `yaml:"extensions" json:"extensions"`
	HardWraps  bool     `yaml:"hard_wraps" json:"hard_wraps"`
	// SafeMode drops raw HTML embedded in the source.
	SafeMode bool `yaml:"safe_mode" json:"safe_mode"`
}

var knownExtensions = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"tasklist":      extension.TaskList,
	"footnote":      extension.Footnote,
}

// GoldmarkParser renders Markdown to HTML with an engine built once from its
// options. Safe for concurrent use.
type GoldmarkParser struct {
	engine goldmark.Markdown
}

// NewGoldmarkParser builds the engine. Unknown extension names are ignored.
func NewGoldmarkParser(opts ParseOptions) *GoldmarkParser {
	rendererOpts := []renderer.Option{}
	if opts.HardWraps {
		rendererOpts = append(rendererOpts, html.WithHardWraps())
	}
	if !opts.SafeMode {
		rendererOpts = append(rendererOpts, html.WithUnsafe())
	}
	engine := goldmark.New(
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(rendererOpts...),
		goldmark.WithExtensions(extenders(opts.Extensions)...),
	)
	return &GoldmarkParser{engine: engine}
}

// Parse renders source to HTML.
func (p *GoldmarkParser) Parse(source []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.engine.Convert(source, &buf); err != nil {
		return nil, fmt.Errorf("markdown: render: %w", err)
	}
	return buf.Bytes(), nil
}

func extenders(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{extension.GFM}
	}
	out := make([]goldmark.Extender, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		ext, ok := knownExtensions[key]
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, ext)
	}
	return out
}
