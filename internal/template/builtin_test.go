package template

import (
	"testing"

	"worldloom/internal/mutate"
	"worldloom/internal/selector"
	"worldloom/internal/world"
)

func TestFactionFounding(t *testing.T) {
	tmpl := factionFounding()

	t.Run("no founders is an error", func(t *testing.T) {
		ctx := newTestContext(t)
		if _, err := tmpl.Expand(ctx, selector.Result{}); err == nil {
			t.Fatalf("expected error with no founders")
		}
	})

	t.Run("expansion wires leader and members to the pending faction", func(t *testing.T) {
		ctx := newTestContext(t)
		var founders []world.Entity
		for _, name := range []string{"Aldous", "Brena", "Corvin"} {
			id := ctx.World.SetEntity(world.Entity{Kind: world.KindNPC, Name: name, Status: "alive"})
			founder, _ := ctx.World.GetEntity(id)
			founders = append(founders, founder)
		}

		expansion, err := tmpl.Expand(ctx, selector.Result{Existing: founders})
		if err != nil {
			t.Fatalf("expand: %v", err)
		}
		if len(expansion.Entities) != 1 || expansion.Entities[0].Kind != world.KindFaction {
			t.Fatalf("expected one pending faction, got %+v", expansion.Entities)
		}
		if len(expansion.Relationships) != 3 {
			t.Fatalf("expected leader_of plus two member_of edges, got %d", len(expansion.Relationships))
		}
		if expansion.Relationships[0].Kind != "leader_of" {
			t.Fatalf("first edge must be leader_of, got %s", expansion.Relationships[0].Kind)
		}
		var ops []string
		for _, m := range expansion.Mutations {
			ops = append(ops, m.Op.String())
		}
		want := map[string]bool{"set_tag": false, "adjust_prominence": false, "modify_pressure": false, "update_rate_limit": false}
		for _, op := range ops {
			if _, tracked := want[op]; tracked {
				want[op] = true
			}
		}
		for op, seen := range want {
			if !seen {
				t.Fatalf("missing %s mutation in %v", op, ops)
			}
		}
	})

	t.Run("created founders ride along as pending entities", func(t *testing.T) {
		ctx := newTestContext(t)
		id := ctx.World.SetEntity(world.Entity{Kind: world.KindNPC, Name: "Aldous", Status: "alive"})
		existing, _ := ctx.World.GetEntity(id)
		created := []world.Entity{
			{Kind: world.KindNPC, Status: "alive"},
			{Kind: world.KindNPC, Status: "alive"},
		}

		expansion, err := tmpl.Expand(ctx, selector.Result{Existing: []world.Entity{existing}, Created: created})
		if err != nil {
			t.Fatalf("expand: %v", err)
		}
		// Faction at pending 0, then the two drafts.
		if len(expansion.Entities) != 3 {
			t.Fatalf("expected faction plus 2 drafts, got %d", len(expansion.Entities))
		}
		if len(expansion.Relationships) != 3 {
			t.Fatalf("expected 3 edges, got %d", len(expansion.Relationships))
		}
	})
}

func TestAllianceFormation(t *testing.T) {
	tmpl := allianceFormation()

	t.Run("requires two active factions", func(t *testing.T) {
		ctx := newTestContext(t)
		ctx.World.SetEntity(world.Entity{Kind: world.KindFaction, Name: "Ash Pact", Status: "active"})
		if _, err := tmpl.Expand(ctx, selector.Result{}); err == nil {
			t.Fatalf("expected error with a single faction")
		}
	})

	t.Run("allies two factions bidirectionally", func(t *testing.T) {
		ctx := newTestContext(t)
		a := ctx.World.SetEntity(world.Entity{Kind: world.KindFaction, Name: "Ash Pact", Status: "active"})
		b := ctx.World.SetEntity(world.Entity{Kind: world.KindFaction, Name: "Iron Veil", Status: "active"})

		expansion, err := tmpl.Expand(ctx, selector.Result{})
		if err != nil {
			t.Fatalf("expand: %v", err)
		}
		if len(expansion.Entities) != 0 {
			t.Fatalf("alliances create no entities, got %d", len(expansion.Entities))
		}
		if expansion.Subject != a && expansion.Subject != b {
			t.Fatalf("subject must be one of the factions, got %q", expansion.Subject)
		}
		if len(expansion.Relationships) != 1 {
			t.Fatalf("expected one edge spec, got %d", len(expansion.Relationships))
		}
		edge := expansion.Relationships[0]
		if edge.Kind != "allied_with" || !edge.Bidirectional {
			t.Fatalf("expected bidirectional allied_with, got %+v", edge)
		}
		if edge.Src != mutate.ID(expansion.Subject) {
			t.Fatalf("edge must originate at the anchor")
		}
	})

	t.Run("open enemies are not eligible partners", func(t *testing.T) {
		ctx := newTestContext(t)
		a := ctx.World.SetEntity(world.Entity{Kind: world.KindFaction, Name: "Ash Pact", Status: "active"})
		b := ctx.World.SetEntity(world.Entity{Kind: world.KindFaction, Name: "Iron Veil", Status: "active"})
		ctx.World.PushRelationship(world.Relationship{Kind: "at_war_with", Src: a, Dst: b})

		if _, err := tmpl.Expand(ctx, selector.Result{}); err == nil {
			t.Fatalf("warring factions must not ally")
		}
	})
}

func TestCultFormation(t *testing.T) {
	tmpl := cultFormation()

	t.Run("requires a mystic site", func(t *testing.T) {
		ctx := newTestContext(t)
		if _, err := tmpl.Expand(ctx, selector.Result{}); err == nil {
			t.Fatalf("expected error without a mystic site")
		}
	})

	t.Run("cult inherits the site's culture", func(t *testing.T) {
		ctx := newTestContext(t)
		siteID := ctx.World.SetEntity(world.Entity{
			Kind: world.KindLocation, Name: "Hollow Shrine", Culture: "veldtfolk",
			Tags: map[string]any{"mystic": true},
		})
		for _, name := range []string{"Dena", "Edric"} {
			id := ctx.World.SetEntity(world.Entity{Kind: world.KindNPC, Name: name, Status: "alive"})
			ctx.World.PushRelationship(world.Relationship{Kind: "located_in", Src: id, Dst: siteID})
		}

		expansion, err := tmpl.Expand(ctx, selector.Result{})
		if err != nil {
			t.Fatalf("expand: %v", err)
		}
		if len(expansion.Entities) == 0 {
			t.Fatalf("expected a pending cult")
		}
		cult := expansion.Entities[0]
		if cult.Subtype != "cult" || cult.Culture != "veldtfolk" {
			t.Fatalf("unexpected cult draft: %+v", cult)
		}
		if expansion.Relationships[0].Kind != "located_in" {
			t.Fatalf("cult must be placed at the site first, got %s", expansion.Relationships[0].Kind)
		}
	})
}

func TestWarToTreaty(t *testing.T) {
	tmpl := warToTreaty()

	t.Run("requires an active war", func(t *testing.T) {
		ctx := newTestContext(t)
		if _, err := tmpl.Expand(ctx, selector.Result{}); err == nil {
			t.Fatalf("expected error without a war")
		}

		// A historical war does not count.
		a := ctx.World.SetEntity(world.Entity{Kind: world.KindFaction, Name: "Ash Pact", Status: "active"})
		b := ctx.World.SetEntity(world.Entity{Kind: world.KindFaction, Name: "Iron Veil", Status: "active"})
		ctx.World.PushRelationship(world.Relationship{Kind: "at_war_with", Src: a, Dst: b, Status: world.StatusHistorical})
		if _, err := tmpl.Expand(ctx, selector.Result{}); err == nil {
			t.Fatalf("historical wars must not produce treaties")
		}
	})

	t.Run("treaty archives the war and links both factions", func(t *testing.T) {
		ctx := newTestContext(t)
		a := ctx.World.SetEntity(world.Entity{Kind: world.KindFaction, Name: "Ash Pact", Status: "active"})
		b := ctx.World.SetEntity(world.Entity{Kind: world.KindFaction, Name: "Iron Veil", Status: "active"})
		ctx.World.PushRelationship(world.Relationship{Kind: "at_war_with", Src: a, Dst: b})

		expansion, err := tmpl.Expand(ctx, selector.Result{})
		if err != nil {
			t.Fatalf("expand: %v", err)
		}
		if len(expansion.Entities) != 1 || expansion.Entities[0].Subtype != "treaty" {
			t.Fatalf("expected a treaty occurrence, got %+v", expansion.Entities)
		}
		// Two involves edges plus one bidirectional treaty_with.
		if len(expansion.Relationships) != 3 {
			t.Fatalf("expected 3 edge specs, got %d", len(expansion.Relationships))
		}
		last := expansion.Relationships[2]
		if last.Kind != "treaty_with" || !last.Bidirectional {
			t.Fatalf("expected bidirectional treaty_with, got %+v", last)
		}
		archived := false
		for _, m := range expansion.Mutations {
			if m.ArchiveKind == "at_war_with" {
				archived = true
			}
		}
		if !archived {
			t.Fatalf("expansion must archive the war")
		}
	})
}
