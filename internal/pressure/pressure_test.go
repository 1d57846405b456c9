package pressure

import "testing"

func TestTracker(t *testing.T) {
	t.Run("modify clamps to bounds", func(t *testing.T) {
		tracker := NewTracker(map[string]Def{"unrest": {Initial: 90}}, []string{"unrest"})
		if got := tracker.Modify("unrest", 25); got != 100 {
			t.Fatalf("expected clamp to 100, got %v", got)
		}
		if got := tracker.Modify("unrest", -250); got != 0 {
			t.Fatalf("expected clamp to 0, got %v", got)
		}
	})

	t.Run("step applies growth and decay", func(t *testing.T) {
		tracker := NewTracker(map[string]Def{
			"mysticism": {Initial: 50, GrowthRate: 2},
			"unrest":    {Initial: 80, DecayRate: 10, Baseline: 30},
		}, []string{"mysticism", "unrest"})
		tracker.Step()
		if got := tracker.Get("mysticism"); got != 52 {
			t.Fatalf("expected 52, got %v", got)
		}
		if got := tracker.Get("unrest"); got >= 80 || got <= 30 {
			t.Fatalf("expected decay toward baseline, got %v", got)
		}
	})

	t.Run("ad hoc pressures survive step untouched", func(t *testing.T) {
		tracker := NewTracker(nil, nil)
		tracker.Set("war", 40)
		tracker.Step()
		if got := tracker.Get("war"); got != 40 {
			t.Fatalf("expected 40, got %v", got)
		}
	})

	t.Run("unknown pressure reads zero", func(t *testing.T) {
		tracker := NewTracker(nil, nil)
		if tracker.Get("nothing") != 0 || tracker.Has("nothing") {
			t.Fatalf("unknown pressure should read zero")
		}
	})
}

func TestCooldownLedger(t *testing.T) {
	ledger := NewCooldownLedger(map[string]int{"allies": 10})

	t.Run("unrecorded is always eligible", func(t *testing.T) {
		if !ledger.CanForm("npc1", "allies", 0) {
			t.Fatalf("expected eligible before any formation")
		}
		if !ledger.CanForm("npc1", "rivals", 5) {
			t.Fatalf("kinds without durations never block")
		}
	})

	t.Run("inclusive boundary", func(t *testing.T) {
		ledger.RecordFormation("npc1", "allies", 100)
		for tick := 100; tick < 110; tick++ {
			if ledger.CanForm("npc1", "allies", tick) {
				t.Fatalf("expected blocked at tick %d", tick)
			}
		}
		if !ledger.CanForm("npc1", "allies", 110) {
			t.Fatalf("expected eligible at exactly T+D")
		}
	})

	t.Run("remaining ticks", func(t *testing.T) {
		ledger.RecordFormation("npc1", "allies", 95)
		if got := ledger.Remaining("npc1", "allies", 100); got != 5 {
			t.Fatalf("expected 5 remaining, got %d", got)
		}
		if got := ledger.Remaining("npc1", "allies", 200); got != 0 {
			t.Fatalf("expected 0 remaining, got %d", got)
		}
	})
}
