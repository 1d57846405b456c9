package world

import (
	"io"

	"github.com/google/uuid"
)

// Store holds every entity and relationship for one simulation run. It is
// written by exactly one goroutine at a time by protocol of the tick loop,
// so it carries no locking.
//
// All read accessors return defensive copies; mutating a returned entity or
// relationship never changes stored state. The Links cache on returned
// entities is rebuilt from the relationship index on every read, which keeps
// it consistent with the relationship list by construction.
type Store struct {
	tick     int
	idSource io.Reader

	entities    map[string]*Entity
	entityOrder []string
	byKind      map[Kind][]string

	rels     map[relKey]*Relationship
	relOrder []relKey
	bySrc    map[string][]relKey
	byDst    map[string][]relKey
}

type relKey struct {
	src  string
	dst  string
	kind string
}

// NewStore returns an empty store at tick 0.
func NewStore() *Store {
	return &Store{
		entities: make(map[string]*Entity),
		byKind:   make(map[Kind][]string),
		rels:     make(map[relKey]*Relationship),
		bySrc:    make(map[string][]relKey),
		byDst:    make(map[string][]relKey),
	}
}

// SetIDSource routes id minting through the given reader, normally the
// run's seeded generator, so ids reproduce across same-seed runs. Without
// a source, ids fall back to crypto randomness.
func (s *Store) SetIDSource(r io.Reader) { s.idSource = r }

func (s *Store) newID() string {
	if s.idSource != nil {
		if id, err := uuid.NewRandomFromReader(s.idSource); err == nil {
			return id.String()
		}
	}
	return uuid.NewString()
}

// Tick returns the store's current tick stamp.
func (s *Store) Tick() int { return s.tick }

// SetTick sets the tick used to stamp CreatedAt/UpdatedAt.
func (s *Store) SetTick(tick int) { s.tick = tick }

// SetEntity inserts or replaces an entity. An empty ID gets a fresh one.
// CreatedAt is stamped on first insert, UpdatedAt on every call. The Links
// field of the input is ignored; the store owns that cache.
func (s *Store) SetEntity(e Entity) string {
	if e.ID == "" {
		e.ID = s.newID()
	}
	stored := e.Clone()
	stored.Links = nil
	stored.UpdatedAt = s.tick

	if existing, ok := s.entities[stored.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
		if existing.Kind != stored.Kind {
			s.byKind[existing.Kind] = removeID(s.byKind[existing.Kind], stored.ID)
			s.byKind[stored.Kind] = append(s.byKind[stored.Kind], stored.ID)
		}
		s.entities[stored.ID] = &stored
		return stored.ID
	}

	stored.CreatedAt = s.tick
	s.entities[stored.ID] = &stored
	s.entityOrder = append(s.entityOrder, stored.ID)
	s.byKind[stored.Kind] = append(s.byKind[stored.Kind], stored.ID)
	return stored.ID
}

// GetEntity returns a defensive copy with its Links cache populated.
func (s *Store) GetEntity(id string) (Entity, bool) {
	stored, ok := s.entities[id]
	if !ok {
		return Entity{}, false
	}
	out := stored.Clone()
	out.Links = s.linksFor(id)
	return out, true
}

// HasEntity reports whether id is present.
func (s *Store) HasEntity(id string) bool {
	_, ok := s.entities[id]
	return ok
}

// EntityCount returns the total number of entities.
func (s *Store) EntityCount() int { return len(s.entities) }

// CountByKind counts entities of a kind, optionally narrowed to a subtype.
func (s *Store) CountByKind(kind Kind, subtype string) int {
	count := 0
	for _, id := range s.byKind[kind] {
		if subtype == "" || s.entities[id].Subtype == subtype {
			count++
		}
	}
	return count
}

// Entities returns every entity in insertion order.
func (s *Store) Entities() []Entity {
	out := make([]Entity, 0, len(s.entityOrder))
	for _, id := range s.entityOrder {
		entity, _ := s.GetEntity(id)
		out = append(out, entity)
	}
	return out
}

// EntitiesByKind returns entities of one kind in insertion order.
func (s *Store) EntitiesByKind(kind Kind) []Entity {
	ids := s.byKind[kind]
	out := make([]Entity, 0, len(ids))
	for _, id := range ids {
		entity, _ := s.GetEntity(id)
		out = append(out, entity)
	}
	return out
}

// Criteria filters entities. Zero-valued fields match everything, set
// fields combine with AND.
type Criteria struct {
	Kind       Kind
	Subtype    string
	Status     string
	Prominence Prominence
	Culture    string
	HasTag     string
	TagEquals  map[string]any
	ExcludeIDs []string
}

func (c Criteria) matches(e *Entity) bool {
	if c.Kind != "" && e.Kind != c.Kind {
		return false
	}
	if c.Subtype != "" && e.Subtype != c.Subtype {
		return false
	}
	if c.Status != "" && e.Status != c.Status {
		return false
	}
	if c.Prominence != "" && e.Prominence != c.Prominence {
		return false
	}
	if c.Culture != "" && e.Culture != c.Culture {
		return false
	}
	if c.HasTag != "" {
		if _, ok := e.Tags[c.HasTag]; !ok {
			return false
		}
	}
	for key, want := range c.TagEquals {
		got, ok := e.Tags[key]
		if !ok || got != want {
			return false
		}
	}
	for _, id := range c.ExcludeIDs {
		if e.ID == id {
			return false
		}
	}
	return true
}

// FindEntities returns entities matching all set criteria, in insertion
// order.
func (s *Store) FindEntities(criteria Criteria) []Entity {
	ids := s.entityOrder
	if criteria.Kind != "" {
		ids = s.byKind[criteria.Kind]
	}
	var out []Entity
	for _, id := range ids {
		if criteria.matches(s.entities[id]) {
			entity, _ := s.GetEntity(id)
			out = append(out, entity)
		}
	}
	return out
}

// ConnectedEntities returns the counterparts of every relationship touching
// id, optionally restricted to one relationship kind. Each counterpart
// appears once, in relationship insertion order.
func (s *Store) ConnectedEntities(id string, relKind string) []Entity {
	seen := make(map[string]struct{})
	var out []Entity
	for _, key := range s.relOrder {
		if key.src != id && key.dst != id {
			continue
		}
		if relKind != "" && key.kind != relKind {
			continue
		}
		other := key.dst
		if other == id {
			other = key.src
		}
		if _, dup := seen[other]; dup {
			continue
		}
		seen[other] = struct{}{}
		if entity, ok := s.GetEntity(other); ok {
			out = append(out, entity)
		}
	}
	return out
}

// EntityPatch is a partial update. Nil pointer fields are left untouched,
// Tags merge into the existing map, RemoveTags are deleted after the merge.
type EntityPatch struct {
	Subtype     *string
	Name        *string
	Description *string
	Status      *string
	Prominence  *Prominence
	Culture     *string
	Coordinates *Point
	Tags        map[string]any
	RemoveTags  []string
}

// UpdateEntity applies a patch and stamps UpdatedAt. Returns false when the
// entity is absent; never an error.
func (s *Store) UpdateEntity(id string, patch EntityPatch) bool {
	stored, ok := s.entities[id]
	if !ok {
		return false
	}
	if patch.Subtype != nil {
		stored.Subtype = *patch.Subtype
	}
	if patch.Name != nil {
		stored.Name = *patch.Name
	}
	if patch.Description != nil {
		stored.Description = *patch.Description
	}
	if patch.Status != nil {
		stored.Status = *patch.Status
	}
	if patch.Prominence != nil {
		stored.Prominence = *patch.Prominence
	}
	if patch.Culture != nil {
		stored.Culture = *patch.Culture
	}
	if patch.Coordinates != nil {
		point := *patch.Coordinates
		stored.Coordinates = &point
	}
	if len(patch.Tags) > 0 {
		if stored.Tags == nil {
			stored.Tags = make(map[string]any, len(patch.Tags))
		}
		for key, value := range patch.Tags {
			stored.Tags[key] = value
		}
	}
	for _, key := range patch.RemoveTags {
		delete(stored.Tags, key)
	}
	stored.UpdatedAt = s.tick
	return true
}

// DeleteEntity removes an entity and every relationship touching it.
// Normal retirement is a status change; this exists for tests and explicit
// cleanup paths.
func (s *Store) DeleteEntity(id string) bool {
	stored, ok := s.entities[id]
	if !ok {
		return false
	}
	for _, key := range append(append([]relKey(nil), s.bySrc[id]...), s.byDst[id]...) {
		s.removeRelKey(key)
	}
	delete(s.entities, id)
	s.entityOrder = removeID(s.entityOrder, id)
	s.byKind[stored.Kind] = removeID(s.byKind[stored.Kind], id)
	return true
}

func (s *Store) linksFor(id string) []Relationship {
	if len(s.bySrc[id])+len(s.byDst[id]) == 0 {
		return nil
	}
	var out []Relationship
	for _, key := range s.relOrder {
		if key.src == id || key.dst == id {
			out = append(out, *s.rels[key])
		}
	}
	return out
}

func removeID(ids []string, id string) []string {
	for i, candidate := range ids {
		if candidate == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
