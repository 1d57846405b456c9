package pressure

type cooldownKey struct {
	entityID string
	relKind  string
}

// CooldownLedger remembers when each entity last formed a relationship of
// each kind. Durations are supplied per relationship kind by configuration;
// kinds with no duration never block.
type CooldownLedger struct {
	durations map[string]int
	formed    map[cooldownKey]int
}

// NewCooldownLedger builds a ledger with per-kind durations in ticks.
func NewCooldownLedger(durations map[string]int) *CooldownLedger {
	ledger := &CooldownLedger{
		durations: make(map[string]int, len(durations)),
		formed:    make(map[cooldownKey]int),
	}
	for kind, duration := range durations {
		ledger.durations[kind] = duration
	}
	return ledger
}

// RecordFormation notes that entityID formed a relationship of relKind at
// the given tick.
func (l *CooldownLedger) RecordFormation(entityID, relKind string, tick int) {
	l.formed[cooldownKey{entityID: entityID, relKind: relKind}] = tick
}

// CanForm reports whether entityID may form a relationship of relKind at
// the given tick. The boundary is inclusive: with duration D and formation
// at T, the answer is false throughout [T, T+D) and true at exactly T+D.
// Entities with no recorded formation, and kinds with no configured
// duration, are always eligible.
func (l *CooldownLedger) CanForm(entityID, relKind string, tick int) bool {
	duration, ok := l.durations[relKind]
	if !ok || duration <= 0 {
		return true
	}
	last, ok := l.formed[cooldownKey{entityID: entityID, relKind: relKind}]
	if !ok {
		return true
	}
	return tick-last >= duration
}

// Remaining returns how many ticks are left before entityID may form a
// relationship of relKind again; 0 when already eligible.
func (l *CooldownLedger) Remaining(entityID, relKind string, tick int) int {
	duration, ok := l.durations[relKind]
	if !ok || duration <= 0 {
		return 0
	}
	last, ok := l.formed[cooldownKey{entityID: entityID, relKind: relKind}]
	if !ok {
		return 0
	}
	remaining := duration - (tick - last)
	if remaining < 0 {
		return 0
	}
	return remaining
}
