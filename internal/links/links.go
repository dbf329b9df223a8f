package links

import (
	"fmt"
	"strings"
	"sync"

	"github.com/brightpath-ai/siteadmin/internal/records"
	urlkit "github.com/goliatone/go-urlkit"
)

// DefaultGroup is the urlkit group holding the public site routes.
const DefaultGroup = "site"

// DefaultConfig returns the public route table for the managed content types.
func DefaultConfig(baseURL string) *urlkit.Config {
	return &urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    DefaultGroup,
				BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
				Paths: map[string]string{
					"page":     "/:slug",
					"service":  "/services/:slug",
					"use_case": "/use-cases/:slug",
				},
			},
		},
	}
}

// Resolver builds public record URLs with a go-urlkit route manager.
type Resolver struct {
	manager *urlkit.RouteManager
	group   string
	routes  map[string]string

	mu     sync.Mutex
	cached *urlkit.Group
}

// NewResolver indexes descriptor routes by table. An empty group selects
// DefaultGroup.
func NewResolver(manager *urlkit.RouteManager, group string, descriptors ...records.Descriptor) *Resolver {
	if strings.TrimSpace(group) == "" {
		group = DefaultGroup
	}
	routes := make(map[string]string, len(descriptors))
	for _, desc := range descriptors {
		if desc.Route != "" {
			routes[desc.Table] = desc.Route
		}
	}
	return &Resolver{manager: manager, group: strings.TrimSpace(group), routes: routes}
}

// Resolve returns the public URL of record.
func (r *Resolver) Resolve(record *records.Record) (string, error) {
	if r == nil || r.manager == nil || record == nil || record.Slug == "" {
		return "", nil
	}
	route, ok := r.routes[record.Collection]
	if !ok {
		return "", fmt.Errorf("links: no route for collection %q", record.Collection)
	}
	group, err := r.lookupGroup()
	if err != nil {
		return "", err
	}
	builder, err := safeBuilder(group, route)
	if err != nil {
		return "", err
	}
	return builder.WithParam("slug", record.Slug).Build()
}

// URL is Resolve without the error, suitable for records.WithURLBuilder.
func (r *Resolver) URL(record *records.Record) string {
	url, err := r.Resolve(record)
	if err != nil {
		return ""
	}
	return url
}

func (r *Resolver) lookupGroup() (group *urlkit.Group, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cached != nil {
		return r.cached, nil
	}
	defer func() {
		if rec := recover(); rec != nil {
			group, err = nil, fmt.Errorf("links: route group %q not found", r.group)
		}
	}()
	group = r.manager.Group(r.group)
	if group == nil {
		return nil, fmt.Errorf("links: route group %q not found", r.group)
	}
	r.cached = group
	return group, nil
}

func safeBuilder(group *urlkit.Group, route string) (builder *urlkit.Builder, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			builder, err = nil, fmt.Errorf("links: route %q: %v", route, rec)
		}
	}()
	return group.Builder(route), nil
}
