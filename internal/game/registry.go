package game

import (
	"fmt"
	"sort"

	"rolecast/internal/config"
)

// Registry is the immutable catalog of role definitions. It holds no
// mutable state and performs no I/O; validation and assignment receive it
// explicitly so tests can swap in their own catalogs.
type Registry struct {
	roles    []RoleDefinition
	byID     map[RoleID]int
	catchAll RoleID
}

// NewRegistry builds a registry from role definitions. It rejects duplicate
// ids, negative constraints, and any catalog that does not contain exactly
// one catch-all role.
func NewRegistry(defs []RoleDefinition) (*Registry, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("role catalog is empty")
	}

	roles := make([]RoleDefinition, len(defs))
	copy(roles, defs)
	sort.SliceStable(roles, func(i, j int) bool {
		return roles[i].DisplayOrder < roles[j].DisplayOrder
	})

	byID := make(map[RoleID]int, len(roles))
	var catchAll RoleID
	for i, def := range roles {
		if def.ID == "" {
			return nil, fmt.Errorf("role %q has an empty id", def.Name)
		}
		if _, dup := byID[def.ID]; dup {
			return nil, fmt.Errorf("duplicate role id %q", def.ID)
		}
		if def.Constraints.Min < 0 {
			return nil, fmt.Errorf("role %q: min count cannot be negative", def.ID)
		}
		if def.Constraints.Max > 0 && def.Constraints.Min > def.Constraints.Max {
			return nil, fmt.Errorf("role %q: min count %d exceeds max count %d",
				def.ID, def.Constraints.Min, def.Constraints.Max)
		}
		if !def.Special {
			if catchAll != "" {
				return nil, fmt.Errorf("roles %q and %q both claim the catch-all slot", catchAll, def.ID)
			}
			catchAll = def.ID
		}
		byID[def.ID] = i
	}
	if catchAll == "" {
		return nil, fmt.Errorf("catalog needs exactly one catch-all role, found none")
	}

	return &Registry{roles: roles, byID: byID, catchAll: catchAll}, nil
}

// NewRegistryFromConfig builds the registry from the configured role
// catalog. Adding a role to the config file is the only change needed to
// extend the game with a new special role.
func NewRegistryFromConfig(rc config.RolesConfig) (*Registry, error) {
	defs := make([]RoleDefinition, 0, len(rc.Available))
	for id, rd := range rc.Available {
		defs = append(defs, RoleDefinition{
			ID:          RoleID(id),
			Name:        rd.DisplayName,
			Team:        Team(rd.Team),
			Color:       ColorSet{Primary: rd.Color.Primary, Secondary: rd.Color.Secondary, Text: rd.Color.Text},
			Description: rd.Description,
			Constraints: CountConstraints{
				Min:     rd.MinCount,
				Max:     rd.MaxCount,
				Default: rd.DefaultCount,
			},
			DisplayOrder: rd.DisplayOrder,
			Special:      !rd.CatchAll,
		})
	}
	return NewRegistry(defs)
}

// DefaultRegistry returns the compiled-in catalog of mafia, police, doctor
// and villager. It panics only when the built-in defaults are malformed,
// which the config tests pin down.
func DefaultRegistry() *Registry {
	reg, err := NewRegistryFromConfig(config.DefaultConfig().Roles)
	if err != nil {
		panic(fmt.Sprintf("built-in role catalog invalid: %v", err))
	}
	return reg
}

// Roles returns every definition ordered by display order.
func (r *Registry) Roles() []RoleDefinition {
	out := make([]RoleDefinition, len(r.roles))
	copy(out, r.roles)
	return out
}

// RoleByID looks up a single definition.
func (r *Registry) RoleByID(id RoleID) (RoleDefinition, error) {
	i, ok := r.byID[id]
	if !ok {
		return RoleDefinition{}, fmt.Errorf("%q: %w", id, ErrRoleNotFound)
	}
	return r.roles[i], nil
}

// RolesByTeam returns the definitions on the given team, in display order.
func (r *Registry) RolesByTeam(team Team) []RoleDefinition {
	var out []RoleDefinition
	for _, def := range r.roles {
		if def.Team == team {
			out = append(out, def)
		}
	}
	return out
}

// SpecialRoles returns every role except the catch-all, in display order.
func (r *Registry) SpecialRoles() []RoleDefinition {
	out := make([]RoleDefinition, 0, len(r.roles)-1)
	for _, def := range r.roles {
		if def.Special {
			out = append(out, def)
		}
	}
	return out
}

// CatchAll returns the one role whose count is derived rather than
// requested.
func (r *Registry) CatchAll() RoleDefinition {
	return r.roles[r.byID[r.catchAll]]
}

// DefaultCounts returns the catalog's suggested starting configuration:
// each special role at its default count, zeros omitted.
func (r *Registry) DefaultCounts() RoleCounts {
	counts := make(RoleCounts)
	for _, def := range r.SpecialRoles() {
		if def.Constraints.Default > 0 {
			counts[def.ID] = def.Constraints.Default
		}
	}
	return counts
}

// Antagonist returns the primary antagonist role: the first special role on
// the mafia team in display order. The second return is false when the
// catalog has no such role.
func (r *Registry) Antagonist() (RoleDefinition, bool) {
	for _, def := range r.roles {
		if def.Special && def.Team == TeamMafia {
			return def, true
		}
	}
	return RoleDefinition{}, false
}

// ValidateRoleCount checks one requested count against the role's
// constraints and the player total. A nil return means the count is
// acceptable.
func (r *Registry) ValidateRoleCount(id RoleID, count, totalPlayers int) error {
	def, err := r.RoleByID(id)
	if err != nil {
		return err
	}
	if count < def.Constraints.Min {
		return fmt.Errorf("%s needs at least %d, got %d", def.Name, def.Constraints.Min, count)
	}
	if max := def.MaxFor(totalPlayers); count > max {
		return fmt.Errorf("%s allows at most %d for %d players, got %d", def.Name, max, totalPlayers, count)
	}
	return nil
}
