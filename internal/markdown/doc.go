// Package markdown renders record previews with goldmark and imports seed
// content from Markdown files with YAML frontmatter.
package markdown
