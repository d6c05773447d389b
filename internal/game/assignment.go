package game

import (
	"fmt"
	"time"

	"rolecast/internal/pkg/idgen"
)

const assignmentVersion = "1"

// PlayerAssignment pairs one participant with the role they drew. ID is the
// participant's stable position in the submitted name list; Revealed is
// presentation state flipped by the session during the reveal walk, never
// by the assigner.
type PlayerAssignment struct {
	ID       int            `json:"id"`
	Name     string         `json:"name"`
	Role     RoleDefinition `json:"role"`
	Revealed bool           `json:"revealed"`
}

// AssignmentStats is the realized distribution, counted from the dealt
// players rather than copied from the request.
type AssignmentStats struct {
	RoleDistribution map[RoleID]int `json:"roles"`
	TeamDistribution map[Team]int   `json:"teams"`
}

// AssignmentMetadata records the exact inputs an assignment was dealt
// from, so a reallocation can reproduce the same configuration.
type AssignmentMetadata struct {
	TotalPlayers int        `json:"totalPlayers"`
	RoleCounts   RoleCounts `json:"roleCounts"`
	Version      string     `json:"version"`
}

// Assignment is one complete secret deal. It is immutable to the assigner
// once returned; only the session holding it may flip reveal flags.
type Assignment struct {
	ID        string             `json:"id"`
	CreatedAt time.Time          `json:"createdAt"`
	Players   []PlayerAssignment `json:"players"`
	Metadata  AssignmentMetadata `json:"metadata"`
	Stats     AssignmentStats    `json:"statistics"`
}

// Assigner deals roles to participants. It is safe for concurrent use: each
// Assign call works on fresh state and draws fresh randomness.
type Assigner struct {
	registry *Registry
	ids      idgen.Generator
	rng      randomSource
}

// AssignerOption customizes an Assigner.
type AssignerOption func(*Assigner)

// WithIDGenerator swaps the assignment id generator, usually for a
// sequential one in tests.
func WithIDGenerator(g idgen.Generator) AssignerOption {
	return func(a *Assigner) { a.ids = g }
}

// WithRandomSeed makes deals deterministic. Test-only; production assigners
// stay on the crypto source.
func WithRandomSeed(seed int64) AssignerOption {
	return func(a *Assigner) { a.rng = newSeededSource(seed) }
}

// NewAssigner builds an assigner over the given catalog.
func NewAssigner(reg *Registry, opts ...AssignerOption) *Assigner {
	a := &Assigner{
		registry: reg,
		ids:      idgen.NewUUID("asn"),
		rng:      &cryptoSource{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assign deals the configured roles to the named participants in four
// steps: build the exact role pool, shuffle it, zip pool against names in
// input order, then recount the deal and refuse to return anything that
// does not match the request. The input map and name slice are never
// mutated.
func (a *Assigner) Assign(counts RoleCounts, totalPlayers int, names []string) (*Assignment, error) {
	if len(names) == 0 {
		return nil, ErrNoParticipants
	}
	if totalPlayers != len(names) {
		return nil, fmt.Errorf("%d names for %d players: %w", len(names), totalPlayers, ErrPlayerCountMismatch)
	}

	pool, err := a.buildPool(counts, totalPlayers)
	if err != nil {
		return nil, err
	}

	shuffleRoles(pool, a.rng)

	players := make([]PlayerAssignment, totalPlayers)
	for i, name := range names {
		players[i] = PlayerAssignment{ID: i, Name: name, Role: pool[i]}
	}

	assignment := &Assignment{
		ID:        a.ids.Generate(),
		CreatedAt: time.Now(),
		Players:   players,
		Metadata: AssignmentMetadata{
			TotalPlayers: totalPlayers,
			RoleCounts:   counts.Clone(),
			Version:      assignmentVersion,
		},
	}

	stats, err := a.verify(assignment.Players, counts, totalPlayers)
	if err != nil {
		return nil, err
	}
	assignment.Stats = stats
	return assignment, nil
}

// AssignAntagonists is the quick-start path: n antagonists, everyone else
// on the catch-all role.
func (a *Assigner) AssignAntagonists(antagonists int, names []string) (*Assignment, error) {
	def, ok := a.registry.Antagonist()
	if !ok {
		return nil, fmt.Errorf("catalog has no antagonist role: %w", ErrRoleNotFound)
	}
	return a.Assign(RoleCounts{def.ID: antagonists}, len(names), names)
}

// buildPool expands the counts into one role definition per player. Pool
// order is deterministic here; the shuffle supplies all the randomness.
func (a *Assigner) buildPool(counts RoleCounts, totalPlayers int) ([]RoleDefinition, error) {
	catchAll := a.registry.CatchAll()
	for _, id := range sortedRoleIDs(counts) {
		if n := counts[id]; n < 0 {
			return nil, fmt.Errorf("%s: %d: %w", id, n, ErrNegativeCount)
		}
		if id == catchAll.ID {
			return nil, fmt.Errorf("%s: %w", id, ErrCatchAllCount)
		}
		if _, err := a.registry.RoleByID(id); err != nil {
			return nil, err
		}
	}

	pool := make([]RoleDefinition, 0, totalPlayers)
	for _, def := range a.registry.SpecialRoles() {
		for i := 0; i < counts[def.ID]; i++ {
			pool = append(pool, def)
		}
	}

	villagers := totalPlayers - len(pool)
	if villagers < 0 {
		return nil, fmt.Errorf("%d roles for %d players: %w", len(pool), totalPlayers, ErrOverAllocated)
	}
	for i := 0; i < villagers; i++ {
		pool = append(pool, catchAll)
	}
	return pool, nil
}

// verify recounts the dealt roles against the request. A mismatch means a
// bug upstream, and the whole assignment is discarded rather than returned.
func (a *Assigner) verify(players []PlayerAssignment, counts RoleCounts, totalPlayers int) (AssignmentStats, error) {
	stats := AssignmentStats{
		RoleDistribution: make(map[RoleID]int),
		TeamDistribution: make(map[Team]int),
	}
	if len(players) != totalPlayers {
		return stats, fmt.Errorf("dealt %d players, expected %d: %w", len(players), totalPlayers, ErrIntegrityViolation)
	}
	for _, p := range players {
		if p.Role.ID == "" {
			return stats, fmt.Errorf("player %q holds no role: %w", p.Name, ErrIntegrityViolation)
		}
		stats.RoleDistribution[p.Role.ID]++
		stats.TeamDistribution[p.Role.Team]++
	}
	for _, def := range a.registry.SpecialRoles() {
		if got, want := stats.RoleDistribution[def.ID], counts[def.ID]; got != want {
			return stats, fmt.Errorf("dealt %d %s, expected %d: %w", got, def.Name, want, ErrIntegrityViolation)
		}
	}
	catchAll := a.registry.CatchAll()
	if got, want := stats.RoleDistribution[catchAll.ID], totalPlayers-counts.Total(); got != want {
		return stats, fmt.Errorf("dealt %d %s, expected %d: %w", got, catchAll.Name, want, ErrIntegrityViolation)
	}
	return stats, nil
}
