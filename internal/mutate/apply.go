package mutate

import (
	"fmt"

	"worldloom/internal/world"
)

// Commit writes a prepared result to the store. It refuses results that
// were not successfully prepared. Changes land in a fixed order (entity
// fields, then relationships, then pressures) so relationship creation can
// reference entities updated in the same batch.
func Commit(result Result, ctx *Context) error {
	if !result.Applied {
		return fmt.Errorf("cannot commit a result that was not applied: %s", result.Diagnostic)
	}

	for _, mod := range result.EntityModifications {
		patch := world.EntityPatch{
			Status:     mod.Status,
			Prominence: mod.Prominence,
			Tags:       mod.SetTags,
			RemoveTags: mod.RemoveTags,
		}
		if !ctx.World.UpdateEntity(mod.ID, patch) {
			return fmt.Errorf("commit: entity %s vanished between prepare and apply", mod.ID)
		}
	}

	for _, rel := range result.RelationshipsCreated {
		if !ctx.World.PushRelationship(rel) {
			return fmt.Errorf("commit: endpoints of %s relationship %s->%s vanished between prepare and apply", rel.Kind, rel.Src, rel.Dst)
		}
		if ctx.Cooldowns != nil {
			ctx.Cooldowns.RecordFormation(rel.Src, rel.Kind, ctx.Tick)
			ctx.Cooldowns.RecordFormation(rel.Dst, rel.Kind, ctx.Tick)
		}
	}

	for _, adj := range result.RelationshipsAdjusted {
		if adj.NewStatus != "" {
			if !ctx.World.SetRelationshipStatus(adj.Src, adj.Dst, adj.Kind, adj.NewStatus) {
				return fmt.Errorf("commit: %s relationship %s->%s vanished between prepare and apply", adj.Kind, adj.Src, adj.Dst)
			}
		}
		if adj.StrengthDelta != 0 {
			if !ctx.World.AdjustRelationshipStrength(adj.Src, adj.Dst, adj.Kind, adj.StrengthDelta) {
				return fmt.Errorf("commit: %s relationship %s->%s vanished between prepare and apply", adj.Kind, adj.Src, adj.Dst)
			}
		}
	}

	if ctx.Pressures != nil {
		for id, delta := range result.PressureChanges {
			ctx.Pressures.Modify(id, delta)
		}
	}

	if result.RateLimitUpdated && ctx.RateLimit != nil {
		ctx.RateLimit.Bump(ctx.Tick)
	}
	return nil
}

// Apply prepares and, when preparation succeeds, commits a single
// mutation. The returned result carries the diagnostic either way.
func Apply(m Mutation, ctx *Context) (Result, error) {
	result := Prepare(m, ctx)
	if !result.Applied {
		return result, nil
	}
	if err := Commit(result, ctx); err != nil {
		return result, err
	}
	return result, nil
}
