// Package selector resolves a template's "I need N entities like this"
// request into concrete targets. Scoring favors requested traits, punishes
// hyperconnected hubs quadratically, and spreads repeated selection across
// the population; when the whole pool scores too low a caller-supplied
// factory synthesizes fresh entities instead of forcing a poor match.
package selector

import (
	"fmt"
	"math/rand"

	"worldloom/internal/world"
)

// Defaults applied when a request leaves tuning fields zero.
const (
	DefaultSubtypeBoost       = 0.5
	DefaultLocationBoost      = 0.4
	DefaultCultureBoost       = 0.3
	DefaultHubPenaltyStrength = 0.25
	DefaultDiversityStrength  = 0.5
)

// Request describes what a template wants selected.
type Request struct {
	Kind    world.Kind
	Subtype string
	Status  string
	Count   int

	// ExcludeIDs removes specific entities from consideration.
	ExcludeIDs []string

	// PreferredSubtypes earn an additive boost per match.
	PreferredSubtypes []string
	SubtypeBoost      float64

	// ReferenceID boosts candidates sharing a location relationship with
	// the reference; ReferenceCulture boosts matching cultures and, with
	// CrossCulturePenalty, punishes mismatches.
	ReferenceID         string
	LocationRelKind     string
	LocationBoost       float64
	ReferenceCulture    string
	CultureBoost        float64
	CrossCulturePenalty float64

	// AvoidRelationshipKind drives the quadratic hub penalty; candidates
	// already rich in that relationship kind score sharply lower.
	AvoidRelationshipKind string
	HubPenaltyStrength    float64

	// MaxTotalRelationships hard-rejects candidates with more total
	// relationships than this; 0 means no cap.
	MaxTotalRelationships int

	// DiversityBucket names a tracking bucket; repeated selection under
	// the same bucket decays a candidate's score by DiversityStrength.
	DiversityBucket   string
	DiversityStrength float64

	// Threshold is the minimum acceptable best score; below it the
	// Factory (when present) synthesizes a new entity, up to MaxCreated
	// (defaulting to Count).
	Threshold  float64
	Factory    func(index int) world.Entity
	MaxCreated int
}

// Result lists the chosen targets. Created entities are drafts: they are
// not yet in the store, and the caller must carry them through its
// expansion result for the mutation pipeline to commit.
type Result struct {
	Existing    []world.Entity
	Created     []world.Entity
	Diagnostics []string
}

// Tuning supplies run-wide defaults for request fields left zero. Zero
// tuning values fall through to the package defaults.
type Tuning struct {
	HubPenaltyStrength    float64
	CrossCulturePenalty   float64
	MaxTotalRelationships int
	SaturationThreshold   float64
}

// Selector scores and samples entities from one store. The usage map
// persists across calls so diversity buckets see the whole run.
type Selector struct {
	store  *world.Store
	rng    *rand.Rand
	usage  map[string]map[string]int
	tuning Tuning
}

// New builds a selector around a store and the run's injected generator.
func New(store *world.Store, rng *rand.Rand) *Selector {
	return &Selector{
		store: store,
		rng:   rng,
		usage: make(map[string]map[string]int),
	}
}

// SetTuning installs run-wide defaults, usually from configuration.
func (s *Selector) SetTuning(t Tuning) {
	s.tuning = t
}

func (s *Selector) applyTuning(req Request) Request {
	if req.HubPenaltyStrength == 0 {
		req.HubPenaltyStrength = s.tuning.HubPenaltyStrength
	}
	if req.CrossCulturePenalty == 0 {
		req.CrossCulturePenalty = s.tuning.CrossCulturePenalty
	}
	if req.MaxTotalRelationships == 0 {
		req.MaxTotalRelationships = s.tuning.MaxTotalRelationships
	}
	if req.Threshold == 0 {
		req.Threshold = s.tuning.SaturationThreshold
	}
	return req
}

type candidate struct {
	entity world.Entity
	score  float64
}

// Select resolves a request. It never fails on an empty pool: the result
// simply has fewer (possibly zero) entries than requested, with
// diagnostics explaining the shortfall.
func (s *Selector) Select(req Request) Result {
	var result Result
	if req.Count <= 0 {
		return result
	}
	req = s.applyTuning(req)

	pool := s.scorePool(req, &result)
	maxCreated := req.MaxCreated
	if maxCreated == 0 && req.Factory != nil {
		maxCreated = req.Count
	}

	for slot := 0; slot < req.Count; slot++ {
		best := bestScore(pool)

		if req.Factory != nil && len(result.Created) < maxCreated && (len(pool) == 0 || best < req.Threshold) {
			draft := req.Factory(len(result.Created))
			result.Created = append(result.Created, draft)
			result.Diagnostics = append(result.Diagnostics,
				fmt.Sprintf("pool saturated (best score %.2f < %.2f): synthesized %q", best, req.Threshold, draft.Name))
			continue
		}

		if len(pool) == 0 {
			result.Diagnostics = append(result.Diagnostics,
				fmt.Sprintf("no candidates remain for %s/%s: filled %d of %d slots", req.Kind, req.Subtype, slot, req.Count))
			break
		}

		picked := s.draw(pool)
		chosen := pool[picked]
		pool = append(pool[:picked], pool[picked+1:]...)
		result.Existing = append(result.Existing, chosen.entity)
		s.recordUse(req.DiversityBucket, chosen.entity.ID)
	}

	return result
}

func (s *Selector) scorePool(req Request, result *Result) []candidate {
	criteria := world.Criteria{
		Kind:       req.Kind,
		Subtype:    req.Subtype,
		Status:     req.Status,
		ExcludeIDs: req.ExcludeIDs,
	}

	var reference world.Entity
	haveReference := false
	if req.ReferenceID != "" {
		reference, haveReference = s.store.GetEntity(req.ReferenceID)
	}

	var pool []candidate
	for _, entity := range s.store.FindEntities(criteria) {
		if entity.ID == req.ReferenceID {
			continue
		}
		if limit := req.MaxTotalRelationships; limit > 0 && s.store.RelationshipCount(entity.ID, "") > limit {
			result.Diagnostics = append(result.Diagnostics,
				fmt.Sprintf("%s rejected: total relationships exceed cap %d", entity.ID, limit))
			continue
		}
		pool = append(pool, candidate{entity: entity, score: s.score(req, entity, reference, haveReference)})
	}
	return pool
}

func (s *Selector) score(req Request, entity world.Entity, reference world.Entity, haveReference bool) float64 {
	score := 1.0

	for _, subtype := range req.PreferredSubtypes {
		if entity.Subtype == subtype {
			score += orDefault(req.SubtypeBoost, DefaultSubtypeBoost)
			break
		}
	}

	if haveReference && sharesLocation(s.store, entity, reference, req.LocationRelKind) {
		score += orDefault(req.LocationBoost, DefaultLocationBoost)
	}

	if req.ReferenceCulture != "" && entity.Culture != "" {
		if entity.Culture == req.ReferenceCulture {
			score += orDefault(req.CultureBoost, DefaultCultureBoost)
		} else if req.CrossCulturePenalty > 0 && req.CrossCulturePenalty < 1 {
			score *= req.CrossCulturePenalty
		}
	}

	if req.AvoidRelationshipKind != "" {
		n := float64(s.store.RelationshipCount(entity.ID, req.AvoidRelationshipKind))
		strength := orDefault(req.HubPenaltyStrength, DefaultHubPenaltyStrength)
		score *= 1 / (1 + n*n*strength)
	}

	if req.DiversityBucket != "" {
		uses := s.usage[req.DiversityBucket][entity.ID]
		if uses > 0 {
			strength := orDefault(req.DiversityStrength, DefaultDiversityStrength)
			score /= 1 + float64(uses)*strength
		}
	}

	return score
}

// draw samples one index with probability proportional to score.
func (s *Selector) draw(pool []candidate) int {
	total := 0.0
	for _, c := range pool {
		total += c.score
	}
	if total <= 0 {
		return s.rng.Intn(len(pool))
	}
	roll := s.rng.Float64() * total
	for i, c := range pool {
		roll -= c.score
		if roll < 0 {
			return i
		}
	}
	return len(pool) - 1
}

func (s *Selector) recordUse(bucket, id string) {
	if bucket == "" {
		return
	}
	if s.usage[bucket] == nil {
		s.usage[bucket] = make(map[string]int)
	}
	s.usage[bucket][id]++
}

// UseCount reports how often an entity was selected under a bucket.
func (s *Selector) UseCount(bucket, id string) int {
	return s.usage[bucket][id]
}

func sharesLocation(store *world.Store, a, b world.Entity, relKind string) bool {
	if relKind == "" {
		relKind = "located_in"
	}
	locations := make(map[string]struct{})
	for _, rel := range store.EntityRelationships(a.ID, world.DirectionOut) {
		if rel.Kind == relKind {
			locations[rel.Dst] = struct{}{}
		}
	}
	for _, rel := range store.EntityRelationships(b.ID, world.DirectionOut) {
		if rel.Kind == relKind {
			if _, ok := locations[rel.Dst]; ok {
				return true
			}
		}
	}
	return false
}

func bestScore(pool []candidate) float64 {
	best := 0.0
	for _, c := range pool {
		if c.score > best {
			best = c.score
		}
	}
	return best
}

func orDefault(value, fallback float64) float64 {
	if value == 0 {
		return fallback
	}
	return value
}
