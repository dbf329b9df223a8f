package markdown

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
)

// LoadSeeds reads <collection>/*.md for every collection, in collection order
// and then file name order. Missing collection directories are skipped.
func LoadSeeds(ctx context.Context, fsys fs.FS, collections []string) ([]*SeedDocument, error) {
	var docs []*SeedDocument
	for _, collection := range collections {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		matches, err := fs.Glob(fsys, path.Join(collection, "*.md"))
		if err != nil {
			return nil, fmt.Errorf("seed glob %s: %w", collection, err)
		}
		if len(matches) == 0 {
			if _, statErr := fs.Stat(fsys, collection); statErr != nil && !errors.Is(statErr, fs.ErrNotExist) {
				return nil, fmt.Errorf("seed stat %s: %w", collection, statErr)
			}
			continue
		}
		sort.Strings(matches)
		for _, match := range matches {
			source, err := fs.ReadFile(fsys, match)
			if err != nil {
				return nil, fmt.Errorf("seed read %s: %w", match, err)
			}
			doc, err := ParseSeed(collection, match, source)
			if err != nil {
				return nil, err
			}
			docs = append(docs, doc)
		}
	}
	return docs, nil
}
