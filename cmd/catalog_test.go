package cmd

import (
	"testing"

	"github.com/pageaudit/pageaudit-cli/internal/audit"
)

func TestAuditCatalogMatchesRegistry(t *testing.T) {
	catalog := getAuditCatalog()
	registered := audit.Registered()

	if len(catalog) != len(registered) {
		t.Fatalf("catalog has %d entries, registry has %d", len(catalog), len(registered))
	}

	for i, a := range registered {
		if catalog[i].ID != a.Meta().ID {
			t.Errorf("catalog[%d].ID = %q, registry has %q", i, catalog[i].ID, a.Meta().ID)
		}
	}
}

func TestGetAuditCatalogReturnsCopy(t *testing.T) {
	first := getAuditCatalog()
	first[0].ID = "mutated"

	second := getAuditCatalog()
	if second[0].ID == "mutated" {
		t.Error("getAuditCatalog must return a copy")
	}
}
