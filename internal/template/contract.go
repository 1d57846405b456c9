// Package template defines growth rules: declarative applicability
// contracts, target discovery, and expansion into pending entities,
// relationships and mutations. Templates are data-plus-behavior records in
// a registry; the engine supplies the mechanism, templates the content.
package template

import (
	"fmt"

	"worldloom/internal/world"
)

// CountConstraint bounds the population of a kind, optionally narrowed to
// a subtype.
type CountConstraint struct {
	Kind    world.Kind
	Subtype string
	Count   int
}

// Predicate is a named custom applicability check.
type Predicate struct {
	Name  string
	Check func(*Context) bool
}

// Contract is a pure conjunction of independently evaluable clauses. An
// absent clause category constrains nothing. Saturation maxima exist to
// stop runaway instantiation once a population target is exceeded
// (configurations typically set them at 1.5x the target).
type Contract struct {
	// PressureMin requires each named pressure to be at or above its
	// threshold.
	PressureMin map[string]float64
	// CountMin/CountMax bound entity populations.
	CountMin []CountConstraint
	CountMax []CountConstraint
	// Eras restricts firing to the named eras; empty means any era.
	Eras []string
	// RefireCooldown is the minimum number of ticks between fires of the
	// same template.
	RefireCooldown int
	// Predicates are custom checks; all must pass.
	Predicates []Predicate
}

// Eligible evaluates every clause against the current world state.
// lastFired carries the tick of the template's previous fire (hasFired
// false when it never has). The returned reason names the first failing
// clause; clause order is cheapest-first as a performance nicety, the
// conjunction itself is order-independent.
func (c Contract) Eligible(ctx *Context, lastFired int, hasFired bool) (bool, string) {
	if c.RefireCooldown > 0 && hasFired && ctx.Tick-lastFired < c.RefireCooldown {
		return false, fmt.Sprintf("refire cooldown: %d ticks remaining", c.RefireCooldown-(ctx.Tick-lastFired))
	}

	if len(c.Eras) > 0 {
		inEra := false
		for _, era := range c.Eras {
			if era == ctx.Era {
				inEra = true
				break
			}
		}
		if !inEra {
			return false, fmt.Sprintf("era %q not in %v", ctx.Era, c.Eras)
		}
	}

	for id, min := range c.PressureMin {
		if value := ctx.Pressures.Get(id); value < min {
			return false, fmt.Sprintf("pressure %s at %.1f below %.1f", id, value, min)
		}
	}

	for _, constraint := range c.CountMin {
		if got := ctx.World.CountByKind(constraint.Kind, constraint.Subtype); got < constraint.Count {
			return false, fmt.Sprintf("need at least %d %s/%s, have %d", constraint.Count, constraint.Kind, constraint.Subtype, got)
		}
	}
	for _, constraint := range c.CountMax {
		if got := ctx.World.CountByKind(constraint.Kind, constraint.Subtype); got >= constraint.Count {
			return false, fmt.Sprintf("saturated: %d %s/%s at or above cap %d", got, constraint.Kind, constraint.Subtype, constraint.Count)
		}
	}

	for _, predicate := range c.Predicates {
		if !predicate.Check(ctx) {
			return false, fmt.Sprintf("predicate %s failed", predicate.Name)
		}
	}

	return true, ""
}
