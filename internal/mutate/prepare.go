package mutate

import "worldloom/internal/world"

// Prepare computes what a mutation would change without touching the
// store. Every referenced entity and relationship is validated; any
// failure rejects the whole mutation with a diagnostic and records no
// partial state. Preparing the same mutation twice yields the same result.
func Prepare(m Mutation, ctx *Context) Result {
	switch m.Op {
	case OpSetTag:
		return prepareSetTag(m, ctx)
	case OpRemoveTag:
		return prepareRemoveTag(m, ctx)
	case OpCreateRelationship:
		return prepareCreateRelationship(m, ctx)
	case OpArchiveRelationship:
		return prepareArchiveRelationship(m, ctx)
	case OpAdjustRelationshipStrength:
		return prepareAdjustStrength(m, ctx)
	case OpChangeStatus:
		return prepareChangeStatus(m, ctx)
	case OpAdjustProminence:
		return prepareAdjustProminence(m, ctx)
	case OpModifyPressure:
		return prepareModifyPressure(m, ctx)
	case OpUpdateRateLimit:
		return Result{Applied: true, RateLimitUpdated: true}
	default:
		return rejected("unrecognized mutation type: %s", m.Op)
	}
}

func prepareSetTag(m Mutation, ctx *Context) Result {
	if m.Tag == "" {
		return rejected("set_tag requires a tag name")
	}
	id, err := m.Target.Resolve(ctx)
	if err != nil {
		return rejected("set_tag: %v", err)
	}
	value := m.Value
	if value == nil {
		value = true
	}
	return Result{
		Applied: true,
		EntityModifications: []EntityModification{
			{ID: id, SetTags: map[string]any{m.Tag: value}},
		},
	}
}

func prepareRemoveTag(m Mutation, ctx *Context) Result {
	if m.Tag == "" {
		return rejected("remove_tag requires a tag name")
	}
	id, err := m.Target.Resolve(ctx)
	if err != nil {
		return rejected("remove_tag: %v", err)
	}
	return Result{
		Applied: true,
		EntityModifications: []EntityModification{
			{ID: id, RemoveTags: []string{m.Tag}},
		},
	}
}

func prepareCreateRelationship(m Mutation, ctx *Context) Result {
	intent := m.Relationship
	if intent.Kind == "" {
		return rejected("create_relationship requires a relationship kind")
	}
	src, err := m.Target.Resolve(ctx)
	if err != nil {
		return rejected("create_relationship: %v", err)
	}
	dst, err := intent.Other.Resolve(ctx)
	if err != nil {
		return rejected("create_relationship: %v", err)
	}
	if src == dst {
		return rejected("create_relationship: %s cannot relate to itself", src)
	}

	if ctx.Cooldowns != nil {
		for _, endpoint := range []string{src, dst} {
			if !ctx.Cooldowns.CanForm(endpoint, intent.Kind, ctx.Tick) {
				return rejected("create_relationship: %s is cooling down on %s for %d more tick(s)",
					endpoint, intent.Kind, ctx.Cooldowns.Remaining(endpoint, intent.Kind, ctx.Tick))
			}
		}
	}

	catalyst := ""
	if !intent.CatalyzedBy.IsZero() {
		catalyst, err = intent.CatalyzedBy.Resolve(ctx)
		if err != nil {
			return rejected("create_relationship catalyst: %v", err)
		}
	}

	strength := intent.Strength
	if strength == 0 {
		strength = world.DefaultStrength
	}

	edge := world.Relationship{
		Kind:        intent.Kind,
		Src:         src,
		Dst:         dst,
		Strength:    strength,
		Category:    intent.Category,
		Distance:    intent.Distance,
		CatalyzedBy: catalyst,
	}
	created := []world.Relationship{edge}
	if intent.Bidirectional {
		mirror := edge
		mirror.Src, mirror.Dst = edge.Dst, edge.Src
		created = append(created, mirror)
	}
	return Result{Applied: true, RelationshipsCreated: created}
}

func prepareArchiveRelationship(m Mutation, ctx *Context) Result {
	if m.ArchiveKind == "" {
		return rejected("archive_relationship requires a relationship kind")
	}
	id, err := m.Target.Resolve(ctx)
	if err != nil {
		return rejected("archive_relationship: %v", err)
	}
	counterpart := ""
	if !m.Counterpart.IsZero() {
		counterpart, err = m.Counterpart.Resolve(ctx)
		if err != nil {
			return rejected("archive_relationship: %v", err)
		}
	}

	var adjustments []RelationshipAdjustment
	skippedImmutable := 0
	for _, rel := range ctx.World.EntityRelationships(id, m.ArchiveDirection) {
		if rel.Kind != m.ArchiveKind || rel.Status == world.StatusHistorical {
			continue
		}
		if counterpart != "" && rel.Counterpart(id) != counterpart {
			continue
		}
		if rel.Immutable() {
			skippedImmutable++
			continue
		}
		adjustments = append(adjustments, RelationshipAdjustment{
			Src: rel.Src, Dst: rel.Dst, Kind: rel.Kind,
			NewStatus: world.StatusHistorical,
		})
	}

	if len(adjustments) == 0 {
		if skippedImmutable > 0 {
			return rejected("archive_relationship: %d matching %s relationship(s) are immutable facts", skippedImmutable, m.ArchiveKind)
		}
		return rejected("archive_relationship: no active %s relationship on %s", m.ArchiveKind, id)
	}
	return Result{Applied: true, RelationshipsAdjusted: adjustments}
}

func prepareAdjustStrength(m Mutation, ctx *Context) Result {
	intent := m.Relationship
	if intent.Kind == "" {
		return rejected("adjust_relationship_strength requires a relationship kind")
	}
	src, err := m.Target.Resolve(ctx)
	if err != nil {
		return rejected("adjust_relationship_strength: %v", err)
	}
	dst, err := intent.Other.Resolve(ctx)
	if err != nil {
		return rejected("adjust_relationship_strength: %v", err)
	}

	forward, ok := ctx.World.GetRelationship(src, dst, intent.Kind)
	if !ok {
		return rejected("adjust_relationship_strength: no %s relationship from %s to %s", intent.Kind, src, dst)
	}
	if forward.Immutable() {
		return rejected("adjust_relationship_strength: %s relationship is an immutable fact", intent.Kind)
	}

	adjustments := []RelationshipAdjustment{
		{Src: src, Dst: dst, Kind: intent.Kind, StrengthDelta: m.StrengthDelta},
	}
	if intent.Bidirectional {
		if reverse, ok := ctx.World.GetRelationship(dst, src, intent.Kind); ok && !reverse.Immutable() {
			adjustments = append(adjustments, RelationshipAdjustment{
				Src: dst, Dst: src, Kind: intent.Kind, StrengthDelta: m.StrengthDelta,
			})
		}
	}
	return Result{Applied: true, RelationshipsAdjusted: adjustments}
}

func prepareChangeStatus(m Mutation, ctx *Context) Result {
	if m.Status == "" {
		return rejected("change_status requires a status")
	}
	id, err := m.Target.Resolve(ctx)
	if err != nil {
		return rejected("change_status: %v", err)
	}
	status := m.Status
	return Result{
		Applied: true,
		EntityModifications: []EntityModification{
			{ID: id, Status: &status},
		},
	}
}

func prepareAdjustProminence(m Mutation, ctx *Context) Result {
	if m.ProminenceDirection == 0 {
		return rejected("adjust_prominence requires a direction")
	}
	id, err := m.Target.Resolve(ctx)
	if err != nil {
		return rejected("adjust_prominence: %v", err)
	}
	entity, _ := ctx.World.GetEntity(id)
	next, moved := world.StepProminence(entity.Prominence, m.ProminenceDirection)
	if !moved {
		// Already at an extreme: a successful no-op, reported but not an error.
		return Result{
			Applied:    true,
			Diagnostic: "prominence already at " + string(entity.Prominence),
		}
	}
	return Result{
		Applied: true,
		EntityModifications: []EntityModification{
			{ID: id, Prominence: &next},
		},
	}
}

func prepareModifyPressure(m Mutation, ctx *Context) Result {
	if m.Pressure == "" {
		return rejected("modify_pressure requires a pressure id")
	}
	return Result{
		Applied:         true,
		PressureChanges: map[string]float64{m.Pressure: m.PressureDelta},
	}
}
