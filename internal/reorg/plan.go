package reorg

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Target declares one slide of the reorganized registry. Ordinal is the new
// position; From names the current identity (old ordinal, slug or content
// key). Empty fields inherit from the source record.
type Target struct {
	Ordinal    string `hcl:"ordinal,label"`
	From       string `hcl:"from"`
	Slug       string `hcl:"slug,optional"`
	Title      string `hcl:"title,optional"`
	Section    string `hcl:"section,optional"`
	ContentRef string `hcl:"content_ref,optional"`
	Active     *bool  `hcl:"active,optional"`
}

// Plan is the complete target registry. Records not named by any target are
// removed.
type Plan struct {
	// ContentPrefix, when set, renames content to {prefix}{ordinal}_{slug}.html
	// for targets without an explicit ContentRef.
	ContentPrefix string   `hcl:"content_prefix,optional"`
	PruneOrphans  bool     `hcl:"prune_orphans,optional"`
	Targets       []Target `hcl:"slide,block"`
}

// ParsePlan decodes an HCL plan. filename is used in diagnostics.
func ParsePlan(src []byte, filename string) (Plan, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return Plan{}, fmt.Errorf("failed to parse plan %s: %w", filename, diags)
	}
	return decodePlan(file, filename)
}

// LoadPlanFile reads and decodes the HCL plan at path.
func LoadPlanFile(path string) (Plan, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return Plan{}, fmt.Errorf("failed to parse plan %s: %w", path, diags)
	}
	return decodePlan(file, path)
}

func decodePlan(file *hcl.File, name string) (Plan, error) {
	var plan Plan
	if diags := gohcl.DecodeBody(file.Body, nil, &plan); diags.HasErrors() {
		return Plan{}, fmt.Errorf("failed to decode plan %s: %w", name, diags)
	}
	return plan, nil
}
