package world

// PushRelationship inserts a relationship, replacing any existing edge with
// the same (src, dst, kind). A zero Strength becomes DefaultStrength. Both
// endpoints get a fresh UpdatedAt stamp so their Links caches read current.
// Returns false when either endpoint is missing.
func (s *Store) PushRelationship(r Relationship) bool {
	if !s.HasEntity(r.Src) || !s.HasEntity(r.Dst) {
		return false
	}
	if r.Strength == 0 {
		r.Strength = DefaultStrength
	}
	r.Strength = clampStrength(r.Strength)

	key := relKey{src: r.Src, dst: r.Dst, kind: r.Kind}
	stored := r
	if _, exists := s.rels[key]; !exists {
		s.relOrder = append(s.relOrder, key)
		s.bySrc[r.Src] = append(s.bySrc[r.Src], key)
		s.byDst[r.Dst] = append(s.byDst[r.Dst], key)
	}
	s.rels[key] = &stored

	s.entities[r.Src].UpdatedAt = s.tick
	s.entities[r.Dst].UpdatedAt = s.tick
	return true
}

// RemoveRelationship deletes the (src, dst, kind) edge. Returns false when
// no such edge exists.
func (s *Store) RemoveRelationship(src, dst, kind string) bool {
	key := relKey{src: src, dst: dst, kind: kind}
	if _, ok := s.rels[key]; !ok {
		return false
	}
	s.removeRelKey(key)
	if entity, ok := s.entities[src]; ok {
		entity.UpdatedAt = s.tick
	}
	if entity, ok := s.entities[dst]; ok {
		entity.UpdatedAt = s.tick
	}
	return true
}

func (s *Store) removeRelKey(key relKey) {
	if _, ok := s.rels[key]; !ok {
		return
	}
	delete(s.rels, key)
	s.relOrder = removeKey(s.relOrder, key)
	s.bySrc[key.src] = removeKey(s.bySrc[key.src], key)
	s.byDst[key.dst] = removeKey(s.byDst[key.dst], key)
}

// Relationships returns every relationship in insertion order.
func (s *Store) Relationships() []Relationship {
	out := make([]Relationship, 0, len(s.relOrder))
	for _, key := range s.relOrder {
		out = append(out, *s.rels[key])
	}
	return out
}

// RelCriteria filters relationships; zero-valued fields match everything.
type RelCriteria struct {
	Kind     string
	Src      string
	Dst      string
	Status   string
	Category string
}

func (c RelCriteria) matches(r *Relationship) bool {
	if c.Kind != "" && r.Kind != c.Kind {
		return false
	}
	if c.Src != "" && r.Src != c.Src {
		return false
	}
	if c.Dst != "" && r.Dst != c.Dst {
		return false
	}
	if c.Status != "" && r.Status != c.Status {
		return false
	}
	if c.Category != "" && r.Category != c.Category {
		return false
	}
	return true
}

// FindRelationships returns relationships matching all set criteria.
func (s *Store) FindRelationships(criteria RelCriteria) []Relationship {
	var out []Relationship
	for _, key := range s.relOrder {
		if criteria.matches(s.rels[key]) {
			out = append(out, *s.rels[key])
		}
	}
	return out
}

// EntityRelationships returns relationships where id is an endpoint in the
// given direction: DirectionOut matches src, DirectionIn matches dst,
// DirectionBoth (or "") matches either.
func (s *Store) EntityRelationships(id string, direction Direction) []Relationship {
	var out []Relationship
	for _, key := range s.relOrder {
		switch direction {
		case DirectionOut:
			if key.src != id {
				continue
			}
		case DirectionIn:
			if key.dst != id {
				continue
			}
		default:
			if key.src != id && key.dst != id {
				continue
			}
		}
		out = append(out, *s.rels[key])
	}
	return out
}

// HasRelationship reports whether an edge exists between src and dst in
// either direction. An empty kind matches any kind.
func (s *Store) HasRelationship(src, dst, kind string) bool {
	for _, key := range s.bySrc[src] {
		if key.dst == dst && (kind == "" || key.kind == kind) {
			return true
		}
	}
	for _, key := range s.bySrc[dst] {
		if key.dst == src && (kind == "" || key.kind == kind) {
			return true
		}
	}
	return false
}

// GetRelationship returns the (src, dst, kind) edge.
func (s *Store) GetRelationship(src, dst, kind string) (Relationship, bool) {
	stored, ok := s.rels[relKey{src: src, dst: dst, kind: kind}]
	if !ok {
		return Relationship{}, false
	}
	return *stored, true
}

// SetRelationshipStatus updates the status of one edge. Returns false when
// the edge is absent.
func (s *Store) SetRelationshipStatus(src, dst, kind, status string) bool {
	stored, ok := s.rels[relKey{src: src, dst: dst, kind: kind}]
	if !ok {
		return false
	}
	stored.Status = status
	return true
}

// AdjustRelationshipStrength applies a delta, clamped to [0, 1]. Returns
// false when the edge is absent.
func (s *Store) AdjustRelationshipStrength(src, dst, kind string, delta float64) bool {
	stored, ok := s.rels[relKey{src: src, dst: dst, kind: kind}]
	if !ok {
		return false
	}
	stored.Strength = clampStrength(stored.Strength + delta)
	return true
}

// RelationshipCount counts edges touching id, optionally restricted to one
// kind. Archived (historical) edges still count; they remain part of the
// entity's accumulated history.
func (s *Store) RelationshipCount(id string, kind string) int {
	count := 0
	for _, key := range s.bySrc[id] {
		if kind == "" || key.kind == kind {
			count++
		}
	}
	for _, key := range s.byDst[id] {
		if kind == "" || key.kind == kind {
			count++
		}
	}
	return count
}

func removeKey(keys []relKey, key relKey) []relKey {
	for i, candidate := range keys {
		if candidate == key {
			return append(keys[:i], keys[i+1:]...)
		}
	}
	return keys
}
