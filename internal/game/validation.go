package game

import (
	"fmt"
	"sort"
)

// Severity classifies a rule finding. Errors block allocation; warnings
// require explicit acknowledgment but do not block.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is a single verdict produced by a validation rule.
type Finding struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Rule inspects a proposed role-count configuration. Rules are pure
// functions: they never mutate their inputs, never depend on another rule
// having run, and always return every finding they have rather than
// stopping at the first.
type Rule func(counts RoleCounts, totalPlayers int, reg *Registry) []Finding

// ValidationResult aggregates every finding from one validation pass.
type ValidationResult struct {
	IsValid              bool      `json:"isValid"`
	RequiresConfirmation bool      `json:"requiresConfirmation"`
	VillagerCount        int       `json:"villagerCount"`
	Errors               []Finding `json:"errors"`
	Warnings             []Finding `json:"warnings"`
}

// Validator runs an ordered rule pipeline against a registry. The zero
// value is not usable; construct with NewValidator.
type Validator struct {
	registry *Registry
	rules    []Rule
}

// NewValidator builds a validator with the built-in rule pipeline.
func NewValidator(reg *Registry) *Validator {
	return &Validator{
		registry: reg,
		rules: []Rule{
			TotalRoleCountRule,
			IndividualMinMaxRule,
			NegativeCountRule,
			MinimumVillagersRule,
			AllSpecialRolesRule,
			EdgeRatioRule,
		},
	}
}

// WithRule appends custom rules to the pipeline and returns the validator
// for chaining. Appended rules must follow the same contract as the
// built-ins: order-independent and side-effect-free.
func (v *Validator) WithRule(rules ...Rule) *Validator {
	v.rules = append(v.rules, rules...)
	return v
}

// Validate runs every rule and folds the findings into a single result.
// It never returns a Go error: configuration problems are data the caller
// displays, not exceptions. Identical inputs always yield an identical
// result.
func (v *Validator) Validate(counts RoleCounts, totalPlayers int) ValidationResult {
	result := ValidationResult{
		VillagerCount: totalPlayers - counts.Total(),
	}

	for _, rule := range v.rules {
		for _, f := range rule(counts, totalPlayers, v.registry) {
			switch f.Severity {
			case SeverityError:
				result.Errors = append(result.Errors, f)
			case SeverityWarning:
				result.Warnings = append(result.Warnings, f)
			}
		}
	}

	result.IsValid = len(result.Errors) == 0
	result.RequiresConfirmation = result.IsValid && len(result.Warnings) > 0
	return result
}

// TotalRoleCountRule fails when the requested special-role counts exceed
// the player total. The message states the overflow amount.
func TotalRoleCountRule(counts RoleCounts, totalPlayers int, reg *Registry) []Finding {
	total := counts.Total()
	if total <= totalPlayers {
		return nil
	}
	return []Finding{{
		Rule:     "total-role-count",
		Severity: SeverityError,
		Message: fmt.Sprintf("%d roles configured for %d players: %d over capacity",
			total, totalPlayers, total-totalPlayers),
	}}
}

// IndividualMinMaxRule fails when any requested count falls outside that
// role's registry constraints. Unbounded maxima cap at the player total.
func IndividualMinMaxRule(counts RoleCounts, totalPlayers int, reg *Registry) []Finding {
	var findings []Finding
	for _, def := range reg.SpecialRoles() {
		count, ok := counts[def.ID]
		if !ok {
			continue
		}
		if count < 0 {
			continue // negative-count rule owns this case
		}
		if err := reg.ValidateRoleCount(def.ID, count, totalPlayers); err != nil {
			findings = append(findings, Finding{
				Rule:     "individual-min-max",
				Severity: SeverityError,
				Message:  err.Error(),
			})
		}
	}
	return findings
}

// NegativeCountRule fails on counts that are nonsense at the data level:
// negative numbers, counts keyed by a role id the registry does not know,
// and a count for the catch-all role, whose value is derived rather than
// requested. None of these may pass silently into assignment.
func NegativeCountRule(counts RoleCounts, totalPlayers int, reg *Registry) []Finding {
	var findings []Finding
	catchAll := reg.CatchAll()
	for _, id := range sortedRoleIDs(counts) {
		count := counts[id]
		switch {
		case count < 0:
			findings = append(findings, Finding{
				Rule:     "negative-count",
				Severity: SeverityError,
				Message:  fmt.Sprintf("%s: count cannot be negative, got %d", id, count),
			})
		case id == catchAll.ID:
			findings = append(findings, Finding{
				Rule:     "negative-count",
				Severity: SeverityError,
				Message:  fmt.Sprintf("%s count is derived from the player total and cannot be set", catchAll.Name),
			})
		default:
			if _, err := reg.RoleByID(id); err != nil {
				findings = append(findings, Finding{
					Rule:     "negative-count",
					Severity: SeverityError,
					Message:  fmt.Sprintf("unknown role %q", id),
				})
			}
		}
	}
	return findings
}

// MinimumVillagersRule derives the remainder-role count. Negative means
// the configuration over-allocates and blocks; exactly zero is a supported
// unusual game mode that only warns.
func MinimumVillagersRule(counts RoleCounts, totalPlayers int, reg *Registry) []Finding {
	villagers := totalPlayers - counts.Total()
	catchAll := reg.CatchAll()
	switch {
	case villagers < 0:
		return []Finding{{
			Rule:     "minimum-villagers",
			Severity: SeverityError,
			Message:  fmt.Sprintf("more roles than players: %d short", -villagers),
		}}
	case villagers == 0 && totalPlayers > 0:
		return []Finding{{
			Rule:     "minimum-villagers",
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("no %s slots remain", catchAll.Name),
		}}
	}
	return nil
}

// AllSpecialRolesRule fires alongside minimum-villagers when every player
// holds a special role, spelling out the gameplay implication.
func AllSpecialRolesRule(counts RoleCounts, totalPlayers int, reg *Registry) []Finding {
	if totalPlayers <= 0 || totalPlayers-counts.Total() != 0 {
		return nil
	}
	catchAll := reg.CatchAll()
	return []Finding{{
		Rule:     "all-special-roles",
		Severity: SeverityWarning,
		Message: fmt.Sprintf("every player gets a special role; a game with no %ss plays very differently",
			catchAll.Name),
	}}
}

// EdgeRatioRule warns on valid-but-unusual antagonist ratios: none at all,
// or everyone but one player. Skipped when the catalog has no antagonist
// role.
func EdgeRatioRule(counts RoleCounts, totalPlayers int, reg *Registry) []Finding {
	antagonist, ok := reg.Antagonist()
	if !ok || totalPlayers <= 2 {
		return nil
	}
	count, present := counts[antagonist.ID]
	switch {
	case !present || count == 0:
		return []Finding{{
			Rule:     "edge-ratio",
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("no %s configured: the game has no antagonists", antagonist.Name),
		}}
	case count == totalPlayers-1:
		return []Finding{{
			Rule:     "edge-ratio",
			Severity: SeverityWarning,
			Message: fmt.Sprintf("%d of %d players are %s: only one player is not",
				count, totalPlayers, antagonist.Name),
		}}
	}
	return nil
}

// sortedRoleIDs returns map keys in a stable order so repeated validation
// of the same inputs produces findings in the same order.
func sortedRoleIDs(counts RoleCounts) []RoleID {
	ids := make([]RoleID, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
