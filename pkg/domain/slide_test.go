package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCompareOrdinals(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"01", "02", -1},
		{"2", "10", -1},
		{"10", "2", 1},
		{"01", "1", 0},
		{"09", "A01", -1},
		{"A01", "A02", -1},
		{"A10", "A9", 1},
		{"A", "A01", -1},
		{"12b", "12", 1},
		{"12a", "12b", -1},
		{"", "", 0},
		{"", "01", -1},
	}
	for _, tc := range cases {
		if got := CompareOrdinals(tc.a, tc.b); got != tc.want {
			t.Errorf("CompareOrdinals(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestSortRecordsNaturalOrder(t *testing.T) {
	records := []SlideRecord{{Ordinal: "A01"}, {Ordinal: "10"}, {Ordinal: "02"}, {Ordinal: "1"}}
	SortRecords(records)
	got := make([]string, len(records))
	for i, r := range records {
		got[i] = r.Ordinal
	}
	want := []string{"1", "02", "10", "A01"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizedDefaultsSection(t *testing.T) {
	r := SlideRecord{Ordinal: " 01 ", Slug: "title ", Title: " Title", ContentRef: "slides/a.html"}.Normalized()
	if r.Ordinal != "01" || r.Slug != "title" || r.Title != "Title" {
		t.Fatalf("unexpected trim result %+v", r)
	}
	if r.Section != DefaultSection {
		t.Fatalf("expected default section, got %q", r.Section)
	}
}

func TestArtifactNameAndSlugSafety(t *testing.T) {
	r := SlideRecord{Ordinal: "A02", Slug: "key_metrics"}
	if got := ArtifactName(r); got != "A02_key_metrics.html" {
		t.Fatalf("ArtifactName = %q", got)
	}
	for _, bad := range []string{"", "../x", "a/b", ".hidden", "has space"} {
		if ValidSlug(bad) {
			t.Errorf("expected %q to be rejected", bad)
		}
	}
	if !ValidSlug("roi-analysis_2") {
		t.Fatalf("expected plain slug to be accepted")
	}
}

func TestActiveRecordsKeepsOrder(t *testing.T) {
	in := []SlideRecord{{Slug: "a", Active: true}, {Slug: "b"}, {Slug: "c", Active: true}}
	got := ActiveRecords(in)
	if len(got) != 2 || got[0].Slug != "a" || got[1].Slug != "c" {
		t.Fatalf("unexpected active set %+v", got)
	}
}

func TestValidOrdinalRejectsPathComponents(t *testing.T) {
	for _, bad := range []string{"", "../../x", "a/b", `a\b`, ".5", "0 1"} {
		if ValidOrdinal(bad) {
			t.Errorf("expected ordinal %q to be rejected", bad)
		}
	}
	for _, good := range []string{"01", "A02", "12b"} {
		if !ValidOrdinal(good) {
			t.Errorf("expected ordinal %q to be accepted", good)
		}
	}
}

func TestSectionLabelIsTrimmed(t *testing.T) {
	if got := (SlideRecord{Section: " Agenda\t"}).SectionLabel(); got != "Agenda" {
		t.Fatalf("SectionLabel = %q", got)
	}
	if got := (SlideRecord{Section: " Agenda "}).Normalized().Section; got != "Agenda" {
		t.Fatalf("Normalized section = %q", got)
	}
	if got := (SlideRecord{Section: "   "}).SectionLabel(); got != DefaultSection {
		t.Fatalf("blank section = %q", got)
	}
}
