package blob

import (
	"sort"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// Only the blob facade wraps the infra blob drivers; everything else
// programs against blob.Store.
func TestOnlyFacadeImportsInfraBlob(t *testing.T) {
	const infra = "slidedeck/internal/infra/blob"
	checkImports(t, func(pkg, imp string) bool {
		return within(imp, infra) && !within(pkg, infra) && !within(pkg, "slidedeck/internal/blob")
	})
}

// Infra drivers sit below the application: they may use the blob core types,
// the domain model and each other, nothing else from the module.
func TestInfraDoesNotImportApplicationPackages(t *testing.T) {
	allowed := []string{"slidedeck/internal/infra", "slidedeck/internal/blob/core", "slidedeck/pkg/domain"}
	checkImports(t, func(pkg, imp string) bool {
		return within(pkg, "slidedeck/internal/infra") &&
			strings.HasPrefix(imp, "slidedeck/") && !withinAny(imp, allowed)
	})
}

func checkImports(t *testing.T, forbidden func(pkg, imp string) bool) {
	t.Helper()
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports, Tests: true}
	pkgs, err := packages.Load(cfg, "slidedeck/...")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}
	var violations []string
	for _, pkg := range pkgs {
		for imp := range pkg.Imports {
			if forbidden(pkg.PkgPath, imp) {
				violations = append(violations, pkg.PkgPath+" -> "+imp)
			}
		}
	}
	sort.Strings(violations)
	for _, v := range compact(violations) {
		t.Errorf("forbidden import: %s", v)
	}
}

func within(path, root string) bool {
	return path == root || strings.HasPrefix(path, root+"/")
}

func withinAny(path string, roots []string) bool {
	for _, r := range roots {
		if within(path, r) {
			return true
		}
	}
	return false
}

func compact(sorted []string) []string {
	out := sorted[:0]
	for i, s := range sorted {
		if i == 0 || s != sorted[i-1] {
			out = append(out, s)
		}
	}
	return out
}
