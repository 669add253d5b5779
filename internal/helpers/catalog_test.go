package helpers

import (
	"strings"
	"testing"
)

func TestCatalogListsEveryPackage(t *testing.T) {
	out := Catalog()
	for _, pkg := range []string{"jobs", "inspection", "search", "export", "datasets", "wait", "dataiku"} {
		if !strings.Contains(out, "=== "+pkg+" ===") {
			t.Errorf("catalog is missing %s", pkg)
		}
	}
	if !strings.Contains(out, "ComputeAndApplySchema") {
		t.Error("catalog is missing ComputeAndApplySchema")
	}
	if strings.HasSuffix(out, "\n") {
		t.Error("catalog should not end with a newline")
	}
}
