package game

// RoleID identifies a role definition in the registry.
type RoleID string

// Role ids of the built-in catalog. The registry itself is data-driven;
// these constants exist so handlers and tests can reference the default
// catalog without magic strings.
const (
	RoleMafia    RoleID = "mafia"
	RolePolice   RoleID = "police"
	RoleDoctor   RoleID = "doctor"
	RoleVillager RoleID = "villager"
)

// Team groups roles for aggregate statistics.
type Team string

const (
	TeamMafia   Team = "mafia"
	TeamVillage Team = "village"
)

// ColorSet carries the presentation color tokens for a role. The core never
// interprets these values; they pass through to the views untouched.
type ColorSet struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Text      string `json:"text"`
}

// CountConstraints bounds how many players may hold a role. Max <= 0 means
// unbounded, which in practice caps at the session's player count.
type CountConstraints struct {
	Min     int `json:"min"`
	Max     int `json:"max"`
	Default int `json:"default"`
}

// RoleDefinition describes a single assignable role. Definitions are owned
// by the registry and never mutated after construction.
type RoleDefinition struct {
	ID           RoleID           `json:"id"`
	Name         string           `json:"name"`
	Team         Team             `json:"team"`
	Color        ColorSet         `json:"color"`
	Description  string           `json:"description"`
	Constraints  CountConstraints `json:"constraints"`
	DisplayOrder int              `json:"displayOrder"`
	Special      bool             `json:"isSpecialRole"`
}

// MaxFor resolves the effective upper bound for a given player count.
func (d RoleDefinition) MaxFor(totalPlayers int) int {
	if d.Constraints.Max <= 0 || d.Constraints.Max > totalPlayers {
		return totalPlayers
	}
	return d.Constraints.Max
}

// RoleCounts maps special role ids to requested player counts. The
// catch-all role's count is never supplied directly; it is derived as
// totalPlayers minus the sum of these counts.
type RoleCounts map[RoleID]int

// Total sums every requested count.
func (c RoleCounts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Clone returns an independent copy so callers can hold one without
// aliasing the original map.
func (c RoleCounts) Clone() RoleCounts {
	out := make(RoleCounts, len(c))
	for id, n := range c {
		out[id] = n
	}
	return out
}
