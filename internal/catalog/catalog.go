package catalog

import (
	"strings"

	"github.com/brightpath-ai/siteadmin/internal/pages"
	"github.com/brightpath-ai/siteadmin/internal/records"
	"github.com/brightpath-ai/siteadmin/internal/services"
	"github.com/brightpath-ai/siteadmin/internal/usecases"
)

// All returns the descriptors of every managed content type in menu order.
func All() []records.Descriptor {
	return []records.Descriptor{
		pages.Descriptor(),
		services.Descriptor(),
		usecases.Descriptor(),
	}
}

// Lookup finds a descriptor by table name. Hyphenated names are accepted so
// "use-cases" resolves like "use_cases".
func Lookup(name string) (records.Descriptor, bool) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	for _, desc := range All() {
		if desc.Table == key {
			return desc, true
		}
	}
	return records.Descriptor{}, false
}

// Names lists the table names of every managed content type.
func Names() []string {
	all := All()
	out := make([]string, 0, len(all))
	for _, desc := range all {
		out = append(out, desc.Table)
	}
	return out
}
