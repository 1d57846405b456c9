// Package mutate converts declared template mutations into validated
// results and commits them to the world store. Preparation never writes;
// Commit is the only writer and runs in a fixed order (entities, then
// relationships, then pressures) so later steps can rely on earlier ones
// within the same batch.
package mutate

import (
	"fmt"

	"worldloom/internal/pressure"
	"worldloom/internal/world"
)

// Op enumerates the supported mutation kinds. The zero value is unknown so
// an uninitialized mutation is rejected with a diagnostic instead of doing
// something surprising.
type Op int

const (
	OpUnknown Op = iota
	OpSetTag
	OpRemoveTag
	OpCreateRelationship
	OpArchiveRelationship
	OpAdjustRelationshipStrength
	OpChangeStatus
	OpAdjustProminence
	OpModifyPressure
	OpUpdateRateLimit
)

var opNames = map[Op]string{
	OpUnknown:                    "unknown",
	OpSetTag:                     "set_tag",
	OpRemoveTag:                  "remove_tag",
	OpCreateRelationship:         "create_relationship",
	OpArchiveRelationship:        "archive_relationship",
	OpAdjustRelationshipStrength: "adjust_relationship_strength",
	OpChangeStatus:               "change_status",
	OpAdjustProminence:           "adjust_prominence",
	OpModifyPressure:             "modify_pressure",
	OpUpdateRateLimit:            "update_rate_limit",
}

func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// RelationshipIntent describes the edge a mutation creates or adjusts.
type RelationshipIntent struct {
	Kind          string
	Other         Ref
	Bidirectional bool
	Strength      float64
	Category      string
	Distance      float64
	CatalyzedBy   Ref
}

// Mutation is one declared change. Op selects which of the remaining
// fields are meaningful.
type Mutation struct {
	Op     Op
	Target Ref

	// set_tag / remove_tag
	Tag   string
	Value any

	// create_relationship / adjust_relationship_strength
	Relationship RelationshipIntent

	// archive_relationship: kind plus optional counterpart and direction
	ArchiveKind      string
	Counterpart      Ref
	ArchiveDirection world.Direction

	// adjust_relationship_strength
	StrengthDelta float64

	// change_status
	Status string

	// adjust_prominence: +1 steps up, -1 steps down
	ProminenceDirection int

	// modify_pressure
	Pressure      string
	PressureDelta float64
}

// EntityModification is a pending change to one entity.
type EntityModification struct {
	ID         string
	Status     *string
	Prominence *world.Prominence
	SetTags    map[string]any
	RemoveTags []string
}

// RelationshipAdjustment is a pending strength or status change to an
// existing edge.
type RelationshipAdjustment struct {
	Src           string
	Dst           string
	Kind          string
	StrengthDelta float64
	NewStatus     string
}

// Result is the outcome of preparing a mutation. When Applied is false the
// Diagnostic explains why and every other field is empty; nothing partial
// is ever recorded.
type Result struct {
	Applied               bool
	Diagnostic            string
	EntityModifications   []EntityModification
	RelationshipsCreated  []world.Relationship
	RelationshipsAdjusted []RelationshipAdjustment
	PressureChanges       map[string]float64
	RateLimitUpdated      bool
}

func rejected(format string, args ...any) Result {
	return Result{Applied: false, Diagnostic: fmt.Sprintf(format, args...)}
}

// RateCounter throttles entity creation across a run. The pipeline only
// bumps it; callers decide what the count means.
type RateCounter struct {
	Count    int
	LastTick int
}

// Bump records one creation event at the given tick.
func (c *RateCounter) Bump(tick int) {
	c.Count++
	c.LastTick = tick
}

// Context carries everything a mutation may reference during preparation
// and commit.
type Context struct {
	World     *world.Store
	Pressures *pressure.Tracker
	Cooldowns *pressure.CooldownLedger
	RateLimit *RateCounter
	Tick      int

	// Self is the entity the current template invocation centers on.
	Self string
	// Bindings map template-declared names to committed entity ids.
	Bindings map[string]string
	// PendingIDs are the real ids assigned to the expansion's pending
	// entity list, indexed by position.
	PendingIDs []string
}
