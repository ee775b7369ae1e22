// Package navigation computes per-slide prev/next links and the global
// section breadcrumb bar for an ordered deck.
package navigation

import (
	"slidedeck/internal/section"
	"slidedeck/pkg/domain"
)

// Breadcrumb is one section in the breadcrumb bar.
type Breadcrumb struct {
	Label    string
	Display  string
	Color    string
	LinkSlug string // first slide of the section
	Current  bool
}

// NavInfo is the navigation state of one slide. Empty Prev/Next mean the
// slide is first/last.
type NavInfo struct {
	Position    int // 1-based
	Total       int
	Prev        string
	Next        string
	Breadcrumbs []Breadcrumb
}

// HasPrev reports whether the slide has a predecessor.
func (n NavInfo) HasPrev() bool { return n.Prev != "" }

// HasNext reports whether the slide has a successor.
func (n NavInfo) HasNext() bool { return n.Next != "" }

// Build maps each slug in deck to its navigation. deck must already be the
// filtered, ordered list of slides that will be published.
func Build(deck []domain.SlideRecord, p section.Palette) map[string]NavInfo {
	catalog := section.Build(deck, p)
	first := make(map[string]string, len(catalog))
	for _, r := range deck {
		if _, ok := first[r.SectionLabel()]; !ok {
			first[r.SectionLabel()] = r.Slug
		}
	}
	out := make(map[string]NavInfo, len(deck))
	for i, r := range deck {
		info := NavInfo{Position: i + 1, Total: len(deck)}
		if i > 0 {
			info.Prev = deck[i-1].Slug
		}
		if i < len(deck)-1 {
			info.Next = deck[i+1].Slug
		}
		current := r.SectionLabel()
		info.Breadcrumbs = make([]Breadcrumb, len(catalog))
		for j, e := range catalog {
			info.Breadcrumbs[j] = Breadcrumb{
				Label:    e.Label,
				Display:  e.Display,
				Color:    e.Color,
				LinkSlug: first[e.Label],
				Current:  e.Label == current,
			}
		}
		out[r.Slug] = info
	}
	return out
}
