package world

import (
	"math/rand"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	s.SetEntity(Entity{
		ID:         "npc1",
		Kind:       KindNPC,
		Subtype:    "merchant",
		Name:       "Orin",
		Status:     "alive",
		Prominence: ProminenceMarginal,
		Culture:    "coastal",
		Tags:       map[string]any{"trade": true, "home": "westport"},
	})
	s.SetEntity(Entity{
		ID:         "npc2",
		Kind:       KindNPC,
		Subtype:    "hero",
		Name:       "Sera",
		Status:     "alive",
		Prominence: ProminenceRenowned,
		Culture:    "highland",
	})
	s.SetEntity(Entity{
		ID:         "faction1",
		Kind:       KindFaction,
		Subtype:    "guild",
		Name:       "Salt Compact",
		Status:     "active",
		Prominence: ProminenceRecognized,
	})
	if !s.PushRelationship(Relationship{Kind: "leader_of", Src: "npc2", Dst: "faction1"}) {
		t.Fatalf("push leader_of")
	}
	return s
}

func TestStoreEntities(t *testing.T) {
	t.Run("get returns defensive copies", func(t *testing.T) {
		s := newTestStore(t)
		entity, ok := s.GetEntity("npc1")
		if !ok {
			t.Fatalf("expected npc1")
		}
		entity.Tags["trade"] = false
		entity.Name = "changed"

		again, _ := s.GetEntity("npc1")
		if again.Tags["trade"] != true {
			t.Fatalf("stored tags mutated through returned copy")
		}
		if again.Name != "Orin" {
			t.Fatalf("stored name mutated through returned copy")
		}
	})

	t.Run("links copy does not leak", func(t *testing.T) {
		s := newTestStore(t)
		entity, _ := s.GetEntity("npc2")
		if len(entity.Links) != 1 {
			t.Fatalf("expected 1 link, got %d", len(entity.Links))
		}
		entity.Links[0].Kind = "tampered"
		again, _ := s.GetEntity("npc2")
		if again.Links[0].Kind != "leader_of" {
			t.Fatalf("stored links mutated through returned copy")
		}
	})

	t.Run("update merges tags and stamps", func(t *testing.T) {
		s := newTestStore(t)
		s.SetTick(7)
		status := "dead"
		if !s.UpdateEntity("npc1", EntityPatch{
			Status: &status,
			Tags:   map[string]any{"cursed": true},
		}) {
			t.Fatalf("expected update to succeed")
		}
		entity, _ := s.GetEntity("npc1")
		if entity.Status != "dead" {
			t.Fatalf("status not updated: %s", entity.Status)
		}
		if entity.Tags["home"] != "westport" || entity.Tags["cursed"] != true {
			t.Fatalf("tags not merged: %v", entity.Tags)
		}
		if entity.UpdatedAt != 7 {
			t.Fatalf("expected UpdatedAt 7, got %d", entity.UpdatedAt)
		}
	})

	t.Run("update of missing entity returns false", func(t *testing.T) {
		s := newTestStore(t)
		if s.UpdateEntity("ghost", EntityPatch{}) {
			t.Fatalf("expected false for missing entity")
		}
	})

	t.Run("find combines criteria with AND", func(t *testing.T) {
		s := newTestStore(t)
		found := s.FindEntities(Criteria{Kind: KindNPC, Status: "alive", Culture: "coastal"})
		if len(found) != 1 || found[0].ID != "npc1" {
			t.Fatalf("unexpected result: %v", found)
		}
		if got := s.FindEntities(Criteria{Kind: KindNPC, ExcludeIDs: []string{"npc1", "npc2"}}); len(got) != 0 {
			t.Fatalf("expected exclusions to drop all npcs")
		}
		if got := s.FindEntities(Criteria{}); len(got) != 3 {
			t.Fatalf("empty criteria must match everything, got %d", len(got))
		}
	})

	t.Run("counts", func(t *testing.T) {
		s := newTestStore(t)
		if s.EntityCount() != 3 {
			t.Fatalf("expected 3 entities")
		}
		if s.CountByKind(KindNPC, "") != 2 {
			t.Fatalf("expected 2 npcs")
		}
		if s.CountByKind(KindNPC, "hero") != 1 {
			t.Fatalf("expected 1 hero")
		}
	})

	t.Run("seeded id source reproduces minted ids", func(t *testing.T) {
		mint := func() []string {
			s := NewStore()
			s.SetIDSource(rand.New(rand.NewSource(7)))
			var ids []string
			for i := 0; i < 4; i++ {
				ids = append(ids, s.SetEntity(Entity{Kind: KindNPC}))
			}
			return ids
		}
		first := mint()
		second := mint()
		for i := range first {
			if first[i] == "" || first[i] != second[i] {
				t.Fatalf("ids diverged at %d: %q vs %q", i, first[i], second[i])
			}
		}
	})

	t.Run("delete removes touching relationships", func(t *testing.T) {
		s := newTestStore(t)
		if !s.DeleteEntity("npc2") {
			t.Fatalf("expected delete to succeed")
		}
		if len(s.Relationships()) != 0 {
			t.Fatalf("edges touching npc2 should be gone")
		}
		faction, _ := s.GetEntity("faction1")
		if len(faction.Links) != 0 {
			t.Fatalf("faction links should be empty after delete")
		}
	})
}

func TestStoreRelationships(t *testing.T) {
	t.Run("push updates both links caches", func(t *testing.T) {
		s := newTestStore(t)
		s.SetTick(3)
		if !s.PushRelationship(Relationship{Kind: "member_of", Src: "npc1", Dst: "faction1"}) {
			t.Fatalf("push failed")
		}
		npc, _ := s.GetEntity("npc1")
		faction, _ := s.GetEntity("faction1")
		if len(npc.Links) != 1 || npc.Links[0].Kind != "member_of" {
			t.Fatalf("npc links not updated: %v", npc.Links)
		}
		if len(faction.Links) != 2 {
			t.Fatalf("faction should have 2 links, got %d", len(faction.Links))
		}
		if npc.UpdatedAt != 3 || faction.UpdatedAt != 3 {
			t.Fatalf("endpoints should be stamped at tick 3")
		}
	})

	t.Run("default strength", func(t *testing.T) {
		s := newTestStore(t)
		s.PushRelationship(Relationship{Kind: "ally_of", Src: "npc1", Dst: "npc2"})
		rel, ok := s.GetRelationship("npc1", "npc2", "ally_of")
		if !ok || rel.Strength != DefaultStrength {
			t.Fatalf("expected default strength, got %v", rel.Strength)
		}
	})

	t.Run("push rejects missing endpoints", func(t *testing.T) {
		s := newTestStore(t)
		if s.PushRelationship(Relationship{Kind: "ally_of", Src: "npc1", Dst: "ghost"}) {
			t.Fatalf("expected push to fail for missing dst")
		}
	})

	t.Run("has is direction agnostic and kind optional", func(t *testing.T) {
		s := newTestStore(t)
		if !s.HasRelationship("faction1", "npc2", "") {
			t.Fatalf("expected reversed lookup to match")
		}
		if !s.HasRelationship("npc2", "faction1", "leader_of") {
			t.Fatalf("expected kind-scoped lookup to match")
		}
		if s.HasRelationship("npc1", "faction1", "") {
			t.Fatalf("expected no edge between npc1 and faction1")
		}
	})

	t.Run("remove returns false when absent", func(t *testing.T) {
		s := newTestStore(t)
		if s.RemoveRelationship("npc1", "npc2", "ally_of") {
			t.Fatalf("expected false")
		}
		if !s.RemoveRelationship("npc2", "faction1", "leader_of") {
			t.Fatalf("expected removal to succeed")
		}
	})

	t.Run("strength adjustment clamps", func(t *testing.T) {
		s := newTestStore(t)
		if !s.AdjustRelationshipStrength("npc2", "faction1", "leader_of", 2.0) {
			t.Fatalf("adjust failed")
		}
		rel, _ := s.GetRelationship("npc2", "faction1", "leader_of")
		if rel.Strength != 1 {
			t.Fatalf("expected clamp to 1, got %v", rel.Strength)
		}
	})

	t.Run("links cache agrees with relationship list", func(t *testing.T) {
		s := newTestStore(t)
		s.PushRelationship(Relationship{Kind: "member_of", Src: "npc1", Dst: "faction1"})
		s.PushRelationship(Relationship{Kind: "rival_of", Src: "npc1", Dst: "npc2"})

		all := s.Relationships()
		for _, entity := range s.Entities() {
			for _, link := range entity.Links {
				if !containsRel(all, link) {
					t.Fatalf("link %v missing from relationship list", link)
				}
			}
		}
		for _, rel := range all {
			for _, id := range []string{rel.Src, rel.Dst} {
				entity, _ := s.GetEntity(id)
				if !containsRel(entity.Links, rel) {
					t.Fatalf("relationship %v missing from %s links", rel, id)
				}
			}
		}
	})

	t.Run("connected entities dedupe and filter by kind", func(t *testing.T) {
		s := newTestStore(t)
		s.PushRelationship(Relationship{Kind: "member_of", Src: "npc1", Dst: "faction1"})
		s.PushRelationship(Relationship{Kind: "trades_with", Src: "npc1", Dst: "faction1"})
		connected := s.ConnectedEntities("npc1", "")
		if len(connected) != 1 || connected[0].ID != "faction1" {
			t.Fatalf("expected deduped faction1, got %v", connected)
		}
		if got := s.ConnectedEntities("faction1", "leader_of"); len(got) != 1 || got[0].ID != "npc2" {
			t.Fatalf("kind filter failed: %v", got)
		}
	})
}

func TestProminenceSteps(t *testing.T) {
	if next, ok := StepProminence(ProminenceMarginal, +1); !ok || next != ProminenceRecognized {
		t.Fatalf("expected marginal -> recognized, got %s", next)
	}
	if _, ok := StepProminence(ProminenceMythic, +1); ok {
		t.Fatalf("mythic must not step up")
	}
	if _, ok := StepProminence(ProminenceForgotten, -1); ok {
		t.Fatalf("forgotten must not step down")
	}
	if next, ok := StepProminence(ProminenceRenowned, -1); !ok || next != ProminenceRecognized {
		t.Fatalf("expected renowned -> recognized, got %s", next)
	}
}

func containsRel(rels []Relationship, target Relationship) bool {
	for _, rel := range rels {
		if rel.Src == target.Src && rel.Dst == target.Dst && rel.Kind == target.Kind {
			return true
		}
	}
	return false
}
