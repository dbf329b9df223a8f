package links_test

import (
	"testing"

	"github.com/brightpath-ai/siteadmin/internal/catalog"
	"github.com/brightpath-ai/siteadmin/internal/links"
	"github.com/brightpath-ai/siteadmin/internal/records"
	urlkit "github.com/goliatone/go-urlkit"
)

func newResolver(group string) *links.Resolver {
	manager := urlkit.NewRouteManager(links.DefaultConfig("https://brightpath.example/"))
	return links.NewResolver(manager, group, catalog.All()...)
}

func TestResolverBuildsRouteForEachCollection(t *testing.T) {
	resolver := newResolver("")
	cases := map[string]string{
		"pages":     "https://brightpath.example/about",
		"services":  "https://brightpath.example/services/about",
		"use_cases": "https://brightpath.example/use-cases/about",
	}
	for collection, want := range cases {
		got, err := resolver.Resolve(&records.Record{Collection: collection, Slug: "about"})
		if err != nil {
			t.Fatalf("%s: resolve: %v", collection, err)
		}
		if got != want {
			t.Fatalf("%s: expected %q, got %q", collection, want, got)
		}
	}
}

func TestResolverRejectsUnknownCollection(t *testing.T) {
	resolver := newResolver("")
	if _, err := resolver.Resolve(&records.Record{Collection: "blog", Slug: "hello"}); err == nil {
		t.Fatalf("expected error for collection without route")
	}
	if url := resolver.URL(&records.Record{Collection: "blog", Slug: "hello"}); url != "" {
		t.Fatalf("expected empty url, got %q", url)
	}
}

func TestResolverReportsMissingGroup(t *testing.T) {
	resolver := newResolver("admin")
	if _, err := resolver.Resolve(&records.Record{Collection: "pages", Slug: "home"}); err == nil {
		t.Fatalf("expected error for unknown route group")
	}
}

func TestResolverSkipsRecordsWithoutSlug(t *testing.T) {
	resolver := newResolver("")
	url, err := resolver.Resolve(&records.Record{Collection: "pages"})
	if err != nil || url != "" {
		t.Fatalf("expected empty url without error, got %q %v", url, err)
	}
}
