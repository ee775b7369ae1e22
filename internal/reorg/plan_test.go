package reorg

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const samplePlan = `
content_prefix = "slides/"
prune_orphans  = true

slide "01" {
  from  = "title"
}

slide "03" {
  from    = "executive_summary"
  slug    = "background_executive_summary"
  title   = "Executive Summary"
  section = "Background"
}

slide "A01" {
  from    = "core_strategies"
  section = "Appendix"
  active  = false
}
`

func TestParsePlan(t *testing.T) {
	plan, err := ParsePlan([]byte(samplePlan), "plan.hcl")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	inactive := false
	want := Plan{
		ContentPrefix: "slides/",
		PruneOrphans:  true,
		Targets: []Target{
			{Ordinal: "01", From: "title"},
			{Ordinal: "03", From: "executive_summary", Slug: "background_executive_summary", Title: "Executive Summary", Section: "Background"},
			{Ordinal: "A01", From: "core_strategies", Section: "Appendix", Active: &inactive},
		},
	}
	if diff := cmp.Diff(want, plan); diff != "" {
		t.Fatalf("plan mismatch (-want +got):\n%s", diff)
	}
}

func TestParsePlanErrorsCarryPositions(t *testing.T) {
	cases := map[string]string{
		"syntax":        "slide \"01\" {\n  from = \n}\n",
		"missing from":  "slide \"01\" {\n  slug = \"x\"\n}\n",
		"unknown field": "slide \"01\" {\n  from = \"a\"\n  colour = \"red\"\n}\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParsePlan([]byte(src), "plan.hcl")
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), "plan.hcl:") {
				t.Fatalf("error lacks file position: %v", err)
			}
		})
	}
}

func TestLoadPlanFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reorg.hcl")
	if err := os.WriteFile(path, []byte(samplePlan), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	plan, err := LoadPlanFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(plan.Targets) != 3 || plan.Targets[2].Ordinal != "A01" {
		t.Fatalf("unexpected plan %+v", plan)
	}
	if _, err := LoadPlanFile(filepath.Join(t.TempDir(), "missing.hcl")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
