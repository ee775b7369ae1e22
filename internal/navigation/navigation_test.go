package navigation

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"slidedeck/internal/section"
	"slidedeck/pkg/domain"
)

func deck(sections ...string) []domain.SlideRecord {
	out := make([]domain.SlideRecord, len(sections))
	for i, s := range sections {
		out[i] = domain.SlideRecord{Ordinal: fmt.Sprintf("%02d", i+1), Slug: fmt.Sprintf("s%d", i+1), Section: s, Active: true}
	}
	return out
}

func TestPrevNextAdjacency(t *testing.T) {
	d := deck("A", "A", "B", "C", "B")
	nav := Build(d, section.DefaultPalette())
	if len(nav) != len(d) {
		t.Fatalf("expected %d entries, got %d", len(d), len(nav))
	}
	for i, r := range d {
		info := nav[r.Slug]
		if i == 0 && info.HasPrev() {
			t.Fatalf("first slide must not have prev")
		}
		if i > 0 && info.Prev != d[i-1].Slug {
			t.Fatalf("slide %d prev = %q", i, info.Prev)
		}
		if i == len(d)-1 && info.HasNext() {
			t.Fatalf("last slide must not have next")
		}
		if i < len(d)-1 && info.Next != d[i+1].Slug {
			t.Fatalf("slide %d next = %q", i, info.Next)
		}
		if info.Position != i+1 || info.Total != len(d) {
			t.Fatalf("slide %d position %d/%d", i, info.Position, info.Total)
		}
	}
}

func TestBreadcrumbsAreGlobalWithOneCurrent(t *testing.T) {
	d := deck("A", "B", "A", "C")
	nav := Build(d, section.Palette{Colors: map[string]string{"A": "#a00"}})
	for _, r := range d {
		crumbs := nav[r.Slug].Breadcrumbs
		if len(crumbs) != 3 {
			t.Fatalf("expected 3 crumbs, got %d", len(crumbs))
		}
		current := 0
		for _, c := range crumbs {
			if c.Current {
				current++
				if c.Label != r.Section {
					t.Fatalf("current crumb %q does not match section %q", c.Label, r.Section)
				}
			}
		}
		if current != 1 {
			t.Fatalf("expected exactly one current crumb, got %d", current)
		}
	}
	want := []Breadcrumb{
		{Label: "A", Display: "A", Color: "#a00", LinkSlug: "s1"},
		{Label: "B", Display: "B", Color: section.NeutralColor, LinkSlug: "s2", Current: true},
		{Label: "C", Display: "C", Color: section.NeutralColor, LinkSlug: "s4"},
	}
	if diff := cmp.Diff(want, nav["s2"].Breadcrumbs); diff != "" {
		t.Fatalf("breadcrumbs mismatch (-want +got):\n%s", diff)
	}
}

func TestPaddedSectionLabelsShareOneCrumb(t *testing.T) {
	d := deck("Agenda", " Agenda", "Agenda ")
	nav := Build(d, section.Palette{Colors: map[string]string{"Agenda": "#0a0"}})
	want := []Breadcrumb{{Label: "Agenda", Display: "Agenda", Color: "#0a0", LinkSlug: "s1", Current: true}}
	for _, r := range d {
		if diff := cmp.Diff(want, nav[r.Slug].Breadcrumbs); diff != "" {
			t.Fatalf("%s breadcrumbs mismatch (-want +got):\n%s", r.Slug, diff)
		}
	}
}

func TestBuildIsDeterministicAndHandlesEdges(t *testing.T) {
	d := deck("A", "", "B")
	if diff := cmp.Diff(Build(d, section.DefaultPalette()), Build(d, section.DefaultPalette())); diff != "" {
		t.Fatalf("non-deterministic output:\n%s", diff)
	}
	if got := Build(nil, section.DefaultPalette()); len(got) != 0 {
		t.Fatalf("expected empty map")
	}
	single := Build(deck("Solo"), section.DefaultPalette())["s1"]
	if single.HasPrev() || single.HasNext() || len(single.Breadcrumbs) != 1 || !single.Breadcrumbs[0].Current {
		t.Fatalf("unexpected single-slide nav %+v", single)
	}
	if Build(d, section.DefaultPalette())["s2"].Breadcrumbs[1].Label != domain.DefaultSection {
		t.Fatalf("empty section should map to the default label")
	}
}
