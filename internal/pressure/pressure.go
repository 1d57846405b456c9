// Package pressure tracks the numeric world-state signals that gate growth
// templates, plus the per-entity cooldown timers that throttle relationship
// formation.
package pressure

// Min and Max bound every pressure value.
const (
	Min = 0.0
	Max = 100.0
)

// Def describes how one pressure evolves each tick. GrowthRate is added,
// then the value decays toward Baseline at DecayRate. Both formulas come
// from configuration; the tracker only evaluates them.
type Def struct {
	GrowthRate float64
	DecayRate  float64
	Baseline   float64
	Initial    float64
}

// Tracker holds current pressure values for one run.
type Tracker struct {
	defs   map[string]Def
	values map[string]float64
	order  []string
}

// NewTracker builds a tracker from configured definitions. Iteration order
// follows the order slice so runs stay reproducible.
func NewTracker(defs map[string]Def, order []string) *Tracker {
	t := &Tracker{
		defs:   make(map[string]Def, len(defs)),
		values: make(map[string]float64, len(defs)),
		order:  append([]string(nil), order...),
	}
	for id, def := range defs {
		t.defs[id] = def
		t.values[id] = clamp(def.Initial)
	}
	return t
}

// Get returns the current value of a pressure, 0 for unknown ids.
func (t *Tracker) Get(id string) float64 {
	return t.values[id]
}

// Has reports whether the pressure id is defined.
func (t *Tracker) Has(id string) bool {
	_, ok := t.values[id]
	return ok
}

// Set overwrites a pressure value, clamped to [Min, Max]. Unknown ids are
// registered on the fly so tests can build scenarios directly.
func (t *Tracker) Set(id string, value float64) {
	if _, ok := t.values[id]; !ok {
		t.order = append(t.order, id)
	}
	t.values[id] = clamp(value)
}

// Modify applies a delta with clamping and returns the new value.
func (t *Tracker) Modify(id string, delta float64) float64 {
	if _, ok := t.values[id]; !ok {
		t.order = append(t.order, id)
	}
	t.values[id] = clamp(t.values[id] + delta)
	return t.values[id]
}

// Step applies one tick of natural growth and decay to every defined
// pressure. Pressures registered ad hoc (no Def) are left alone.
func (t *Tracker) Step() {
	for _, id := range t.order {
		def, ok := t.defs[id]
		if !ok {
			continue
		}
		value := t.values[id] + def.GrowthRate
		value -= def.DecayRate * (value - def.Baseline) / Max
		t.values[id] = clamp(value)
	}
}

// Snapshot returns every pressure value keyed by id.
func (t *Tracker) Snapshot() map[string]float64 {
	out := make(map[string]float64, len(t.values))
	for id, value := range t.values {
		out[id] = value
	}
	return out
}

// IDs returns the pressure ids in registration order.
func (t *Tracker) IDs() []string {
	return append([]string(nil), t.order...)
}

func clamp(value float64) float64 {
	if value < Min {
		return Min
	}
	if value > Max {
		return Max
	}
	return value
}
