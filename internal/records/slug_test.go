package records_test

import (
	"regexp"
	"testing"

	"github.com/brightpath-ai/siteadmin/internal/records"
)

var slugShape = regexp.MustCompile(`^([a-z0-9]+(-[a-z0-9]+)*)?$`)

func TestDeriveSlug(t *testing.T) {
	cases := map[string]string{
		"Home":                         "home",
		"  About  Us  ":                "about-us",
		"AI & Machine-Learning":        "ai-machine-learning",
		"--Leading and trailing--":     "leading-and-trailing",
		"Multiple---hyphens":           "multiple-hyphens",
		"Café déjà vu":                 "caf-dj-vu",
		"Under_score":                  "underscore",
		"2026 Roadmap: Q1/Q2 Planning": "2026-roadmap-q1q2-planning",
		"!!!":                          "",
		"":                             "",
	}
	for input, want := range cases {
		if got := records.DeriveSlug(input); got != want {
			t.Fatalf("DeriveSlug(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestDeriveSlugIsIdempotent(t *testing.T) {
	inputs := []string{
		"Home", "AI Strategy & Roadmaps", " -- spaced -- out -- ", "tabs\tand\nnewlines",
		"ÜBER cool", "a--b", "-", "x y z 1 2 3", "Already-a-slug",
	}
	for _, input := range inputs {
		once := records.DeriveSlug(input)
		if twice := records.DeriveSlug(once); twice != once {
			t.Fatalf("not idempotent for %q: %q then %q", input, once, twice)
		}
		if !slugShape.MatchString(once) {
			t.Fatalf("DeriveSlug(%q) = %q has an invalid shape", input, once)
		}
	}
}

func TestValidSlug(t *testing.T) {
	valid := []string{"home", "about-us", "services-2026"}
	invalid := []string{"", "Home", "about--us", "-home", "home-", "about us", "café"}
	for _, value := range valid {
		if !records.ValidSlug(value) {
			t.Fatalf("expected %q to be valid", value)
		}
	}
	for _, value := range invalid {
		if records.ValidSlug(value) {
			t.Fatalf("expected %q to be invalid", value)
		}
	}
}
