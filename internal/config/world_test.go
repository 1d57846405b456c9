package config

import (
	"path/filepath"
	"testing"
)

const minimalWorldHeader = "version: 1\nentity_kinds:\n  - name: npc\n"

func TestLoadWorldDef(t *testing.T) {
	t.Run("valid definition loads", func(t *testing.T) {
		def, err := LoadWorldDef(filepath.Join("testdata", "valid_world.yaml"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !def.IsValidEntityKind("npc") {
			t.Fatalf("expected npc kind to be valid")
		}
		if len(def.Entities) != 2 || len(def.Relationships) != 1 {
			t.Fatalf("unexpected seed counts: %d entities, %d relationships", len(def.Entities), len(def.Relationships))
		}
	})

	t.Run("missing entity kinds", func(t *testing.T) {
		path := writeTempConfig(t, "world.yaml", "version: 1\nentity_kinds: []\n")
		if _, err := LoadWorldDef(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("duplicate entity kind names", func(t *testing.T) {
		path := writeTempConfig(t, "world.yaml", "version: 1\nentity_kinds:\n  - name: npc\n  - name: NPC\n")
		if _, err := LoadWorldDef(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("negative cooldown", func(t *testing.T) {
		path := writeTempConfig(t, "world.yaml", minimalWorldHeader+"relationship_kinds:\n  - name: ally_of\n    cooldown: -1\n")
		if _, err := LoadWorldDef(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("pressure initial out of range", func(t *testing.T) {
		path := writeTempConfig(t, "world.yaml", minimalWorldHeader+"pressures:\n  - id: unrest\n    initial: 150\n")
		if _, err := LoadWorldDef(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("first era must start at zero", func(t *testing.T) {
		path := writeTempConfig(t, "world.yaml", minimalWorldHeader+"eras:\n  - name: dawn\n    start_tick: 5\n")
		if _, err := LoadWorldDef(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("era start ticks must increase", func(t *testing.T) {
		path := writeTempConfig(t, "world.yaml", minimalWorldHeader+"eras:\n  - name: dawn\n    start_tick: 0\n  - name: dusk\n    start_tick: 0\n")
		if _, err := LoadWorldDef(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("axis references unknown pressure", func(t *testing.T) {
		path := writeTempConfig(t, "world.yaml", minimalWorldHeader+"axes:\n  - kind: npc\n    axis: x\n    tag: coastal\n    position: 10\n    pressure: ghost\n")
		if _, err := LoadWorldDef(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("region with unknown shape", func(t *testing.T) {
		path := writeTempConfig(t, "world.yaml", minimalWorldHeader+"regions:\n  - name: blob\n    kind: npc\n    shape: hexagon\n")
		if _, err := LoadWorldDef(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("seed relationship references unknown entity", func(t *testing.T) {
		path := writeTempConfig(t, "world.yaml", minimalWorldHeader+"relationship_kinds:\n  - name: ally_of\nentities:\n  - id: a\n    kind: npc\nrelationships:\n  - kind: ally_of\n    src: a\n    dst: ghost\n")
		if _, err := LoadWorldDef(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("seed entity with short coordinates", func(t *testing.T) {
		path := writeTempConfig(t, "world.yaml", minimalWorldHeader+"entities:\n  - id: a\n    kind: npc\n    coordinates: [1, 2]\n")
		if _, err := LoadWorldDef(path); err == nil {
			t.Fatalf("expected error")
		}
	})
}

func TestWorldDefHelpers(t *testing.T) {
	def, err := LoadWorldDef(filepath.Join("testdata", "valid_world.yaml"))
	if err != nil {
		t.Fatalf("loading world definition: %v", err)
	}

	t.Run("kind lookup is case-insensitive", func(t *testing.T) {
		if _, ok := def.EntityKindByName("NPC"); !ok {
			t.Fatalf("expected to find NPC kind")
		}
		if def.IsValidEntityKind("dragon") {
			t.Fatalf("expected dragon to be invalid")
		}
	})

	t.Run("status validation", func(t *testing.T) {
		if !def.IsValidStatus("npc", "alive") {
			t.Fatalf("expected alive to be valid for npc")
		}
		if def.IsValidStatus("npc", "petrified") {
			t.Fatalf("expected petrified to be invalid for npc")
		}
		if !def.IsValidStatus("occurrence", "anything") {
			t.Fatalf("kinds without statuses accept any status")
		}
	})

	t.Run("cooldown durations skip zero", func(t *testing.T) {
		durations := def.CooldownDurations()
		if durations["at_war_with"] != 25 {
			t.Fatalf("expected at_war_with cooldown 25, got %d", durations["at_war_with"])
		}
		if _, ok := durations["located_in"]; ok {
			t.Fatalf("located_in has no cooldown and must not appear")
		}
	})

	t.Run("era schedule", func(t *testing.T) {
		if era := def.EraAt(0); era != "age_of_founding" {
			t.Fatalf("expected age_of_founding at tick 0, got %q", era)
		}
		if era := def.EraAt(119); era != "age_of_founding" {
			t.Fatalf("expected age_of_founding at tick 119, got %q", era)
		}
		if era := def.EraAt(120); era != "age_of_strife" {
			t.Fatalf("expected age_of_strife at tick 120, got %q", era)
		}
	})
}
