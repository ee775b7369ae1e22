// Package domain defines the slide registry data model shared by the
// registry, the navigation builder, the assembler and the reorganizer.
package domain

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultSection is assigned to records that do not name a section.
const DefaultSection = "General"

// ArtifactExt is the file extension of every assembled slide document.
const ArtifactExt = ".html"

// SlideRecord is one registry entry describing a slide's identity, position
// and content source.
type SlideRecord struct {
	Ordinal    string `json:"ordinal" yaml:"ordinal"`
	Slug       string `json:"slug" yaml:"slug"`
	Title      string `json:"title" yaml:"title"`
	ContentRef string `json:"content_ref" yaml:"content_ref"`
	Section    string `json:"section" yaml:"section"`
	Active     bool   `json:"active" yaml:"active"`
}

// String renders a short identity used in logs and error messages.
func (r SlideRecord) String() string {
	return fmt.Sprintf("%s/%s", r.Ordinal, r.Slug)
}

// SectionLabel returns the record's trimmed section, falling back to
// DefaultSection.
func (r SlideRecord) SectionLabel() string {
	if label := strings.TrimSpace(r.Section); label != "" {
		return label
	}
	return DefaultSection
}

// Normalized returns a copy with surrounding whitespace trimmed and the
// section defaulted.
func (r SlideRecord) Normalized() SlideRecord {
	r.Ordinal = strings.TrimSpace(r.Ordinal)
	r.Slug = strings.TrimSpace(r.Slug)
	r.Title = strings.TrimSpace(r.Title)
	r.ContentRef = strings.TrimSpace(r.ContentRef)
	r.Section = r.SectionLabel()
	return r
}

// ArtifactName is the deterministic output file name of a slide.
func ArtifactName(r SlideRecord) string {
	return r.Ordinal + "_" + r.Slug + ArtifactExt
}

// ValidSlug reports whether slug can be used as a file name component.
func ValidSlug(slug string) bool { return safeComponent(slug) }

// ValidOrdinal reports whether ordinal can lead an artifact file name.
func ValidOrdinal(ordinal string) bool { return safeComponent(ordinal) }

func safeComponent(s string) bool {
	if s == "" || strings.HasPrefix(s, ".") || strings.Contains(s, "..") {
		return false
	}
	return !strings.ContainsAny(s, "/\\ \t\r\n:*?\"<>|")
}

// CompareOrdinals orders ordinals naturally: digit runs compare by numeric
// value and all other runs compare lexically, so "2" < "10" < "A01".
// Ordinals that differ only in zero padding compare equal.
func CompareOrdinals(a, b string) int {
	for a != "" && b != "" {
		ra, restA := nextRun(a)
		rb, restB := nextRun(b)
		da, db := isDigit(ra[0]), isDigit(rb[0])
		switch {
		case da && db:
			if c := compareNumeric(ra, rb); c != 0 {
				return c
			}
		case da:
			return -1
		case db:
			return 1
		default:
			if c := strings.Compare(ra, rb); c != 0 {
				return c
			}
		}
		a, b = restA, restB
	}
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	default:
		return 1
	}
}

// SortRecords orders records by ordinal in place. The sort is stable so
// records with equal ordinals keep their relative order.
func SortRecords(records []SlideRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return CompareOrdinals(records[i].Ordinal, records[j].Ordinal) < 0
	})
}

// ActiveRecords returns the active subset of records, preserving order.
func ActiveRecords(records []SlideRecord) []SlideRecord {
	out := make([]SlideRecord, 0, len(records))
	for _, r := range records {
		if r.Active {
			out = append(out, r)
		}
	}
	return out
}

// CloneRecords returns a copy of records that callers may mutate freely.
func CloneRecords(records []SlideRecord) []SlideRecord {
	if records == nil {
		return nil
	}
	out := make([]SlideRecord, len(records))
	copy(out, records)
	return out
}

func nextRun(s string) (run, rest string) {
	digit := isDigit(s[0])
	i := 1
	for i < len(s) && isDigit(s[i]) == digit {
		i++
	}
	return s[:i], s[i:]
}

func compareNumeric(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
