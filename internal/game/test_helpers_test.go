package game

import (
	"fmt"
	"testing"
)

// testNames generates n participant names in submission order.
func testNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("Player %d", i+1)
	}
	return names
}

// mustRegistry fails the test on a catalog error so tables stay flat.
func mustRegistry(t *testing.T, defs ...RoleDefinition) *Registry {
	t.Helper()
	reg, err := NewRegistry(defs)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	return reg
}

// constrainedCatalog is a compact catalog with tight count constraints for
// exercising min/max paths the shipped defaults never hit.
func constrainedCatalog() []RoleDefinition {
	return []RoleDefinition{
		{
			ID:           "wolf",
			Name:         "Wolf",
			Team:         TeamMafia,
			Constraints:  CountConstraints{Min: 1, Max: 3, Default: 1},
			DisplayOrder: 1,
			Special:      true,
		},
		{
			ID:           "seer",
			Name:         "Seer",
			Team:         TeamVillage,
			Constraints:  CountConstraints{Max: 1, Default: 1},
			DisplayOrder: 2,
			Special:      true,
		},
		{
			ID:           "peasant",
			Name:         "Peasant",
			Team:         TeamVillage,
			DisplayOrder: 3,
		},
	}
}

// villageOnlyCatalog has no mafia-team role at all.
func villageOnlyCatalog() []RoleDefinition {
	return []RoleDefinition{
		{ID: "healer", Name: "Healer", Team: TeamVillage, DisplayOrder: 1, Special: true},
		{ID: "farmer", Name: "Farmer", Team: TeamVillage, DisplayOrder: 2},
	}
}
