// Package sim drives a world through ticks. Each tick walks the template
// registry in registration order, commits the expansions of every template
// whose contract holds, then applies natural pressure growth and decay.
// Given the same world definition, registry and seed, a run is fully
// reproducible.
package sim

import (
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"worldloom/internal/config"
	"worldloom/internal/coord"
	"worldloom/internal/mutate"
	"worldloom/internal/pressure"
	"worldloom/internal/selector"
	"worldloom/internal/template"
	"worldloom/internal/world"
)

// Stats accumulates run-level counters.
type Stats struct {
	TicksRun             int
	TemplatesFired       int
	EntitiesCreated      int
	RelationshipsCreated int
	MutationsRejected    int
}

// Options tunes one engine instance. A nil Logger disables logging.
// CreationLimit caps how many template firings may create entities within
// CreationWindow ticks; zero means unlimited.
type Options struct {
	Seed           int64
	Logger         *zap.Logger
	CreationLimit  int
	CreationWindow int
}

// Engine owns every subsystem of one running world.
type Engine struct {
	def       *config.WorldDef
	store     *world.Store
	pressures *pressure.Tracker
	cooldowns *pressure.CooldownLedger
	coords    *coord.System
	sel       *selector.Selector
	registry  *template.Registry
	rng       *rand.Rand
	logger    *zap.Logger
	opts      Options

	rate      mutate.RateCounter
	lastFired map[string]int
	stats     Stats
}

// New builds an engine from a validated world definition and a template
// registry, seeding the store, pressures, cooldowns and coordinate spaces
// from the definition.
func New(def *config.WorldDef, registry *template.Registry, opts Options) (*Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	rng := rand.New(rand.NewSource(opts.Seed))
	store := world.NewStore()
	store.SetIDSource(rng)

	e := &Engine{
		def:       def,
		store:     store,
		cooldowns: pressure.NewCooldownLedger(def.CooldownDurations()),
		coords:    coord.NewSystem(opts.Seed, rng),
		sel:       selector.New(store, rng),
		registry:  registry,
		rng:       rng,
		logger:    logger,
		opts:      opts,
		lastFired: make(map[string]int),
	}

	defs := make(map[string]pressure.Def, len(def.Pressures))
	order := make([]string, 0, len(def.Pressures))
	for _, p := range def.Pressures {
		defs[p.ID] = pressure.Def{
			GrowthRate: p.GrowthRate,
			DecayRate:  p.DecayRate,
			Baseline:   p.Baseline,
			Initial:    p.Initial,
		}
		order = append(order, p.ID)
	}
	e.pressures = pressure.NewTracker(defs, order)

	e.sel.SetTuning(selector.Tuning{
		HubPenaltyStrength:    def.Selection.HubPenaltyStrength,
		CrossCulturePenalty:   def.Selection.CrossCulturePenalty,
		MaxTotalRelationships: def.Selection.MaxTotalRelationships,
		SaturationThreshold:   def.Selection.SaturationThreshold,
	})

	if err := e.bootstrap(); err != nil {
		return nil, fmt.Errorf("building world: %w", err)
	}
	return e, nil
}

// Store exposes the live entity store.
func (e *Engine) Store() *world.Store { return e.store }

// Pressures exposes the live pressure tracker.
func (e *Engine) Pressures() *pressure.Tracker { return e.pressures }

// Coords exposes the coordinate system.
func (e *Engine) Coords() *coord.System { return e.coords }

// Definition returns the world definition the engine was built from.
func (e *Engine) Definition() *config.WorldDef { return e.def }

// Stats returns a copy of the run counters.
func (e *Engine) Stats() Stats { return e.stats }

// Tick returns the current tick number.
func (e *Engine) Tick() int { return e.store.Tick() }

// Era returns the era name covering the current tick.
func (e *Engine) Era() string { return e.def.EraAt(e.store.Tick()) }

// Run advances the world by the given number of ticks.
func (e *Engine) Run(ticks int) {
	for i := 0; i < ticks; i++ {
		e.Step()
	}
}

// Step advances the world by one tick: evaluate templates, commit firings,
// then step pressures and move the clock.
func (e *Engine) Step() {
	tick := e.store.Tick()
	ctx := e.templateContext(tick)

	for _, tmpl := range e.registry.All() {
		name := tmpl.Metadata.Name
		last, fired := e.lastFired[name]

		ok, reason := tmpl.Contract.Eligible(ctx, last, fired)
		if !ok {
			e.logger.Debug("template ineligible",
				zap.Int("tick", tick),
				zap.String("template", name),
				zap.String("reason", reason))
			continue
		}
		if tmpl.CanApply != nil && !tmpl.CanApply(ctx) {
			continue
		}

		var targets selector.Result
		if tmpl.FindTargets != nil {
			targets = tmpl.FindTargets(ctx)
		}

		expansion, err := tmpl.Expand(ctx, targets)
		if err != nil {
			e.logger.Debug("template declined to expand",
				zap.Int("tick", tick),
				zap.String("template", name),
				zap.Error(err))
			continue
		}
		if len(expansion.Entities) > 0 && !e.creationAllowed(tick) {
			e.logger.Debug("creation rate limit reached",
				zap.Int("tick", tick),
				zap.String("template", name))
			continue
		}

		e.commitExpansion(name, expansion, tick)
		e.lastFired[name] = tick
		e.stats.TemplatesFired++
		e.logger.Info("template fired",
			zap.Int("tick", tick),
			zap.String("template", name),
			zap.Int("entities", len(expansion.Entities)),
			zap.Int("relationships", len(expansion.Relationships)))
	}

	e.pressures.Step()
	e.store.SetTick(tick + 1)
	e.stats.TicksRun++
}

func (e *Engine) templateContext(tick int) *template.Context {
	return &template.Context{
		Tick:      tick,
		Era:       e.def.EraAt(tick),
		World:     e.store,
		Pressures: e.pressures,
		Cooldowns: e.cooldowns,
		Coords:    e.coords,
		Select:    e.sel,
		Rand:      e.rng,
	}
}

func (e *Engine) creationAllowed(tick int) bool {
	if e.opts.CreationLimit <= 0 {
		return true
	}
	window := e.opts.CreationWindow
	if window <= 0 {
		window = 1
	}
	if tick-e.rate.LastTick >= window {
		e.rate.Count = 0
	}
	return e.rate.Count < e.opts.CreationLimit
}

// commitExpansion writes one template firing to the world: pending entities
// receive real ids first, then every declared relationship and mutation
// flows through the mutation pipeline. Individual rejections are counted
// and logged; they do not undo the rest of the batch.
func (e *Engine) commitExpansion(name string, expansion template.Expansion, tick int) {
	pending := make([]string, 0, len(expansion.Entities))
	for _, draft := range expansion.Entities {
		draft.ID = ""
		id := e.store.SetEntity(draft)
		pending = append(pending, id)
		e.stats.EntitiesCreated++
	}

	ctx := &mutate.Context{
		World:      e.store,
		Pressures:  e.pressures,
		Cooldowns:  e.cooldowns,
		RateLimit:  &e.rate,
		Tick:       tick,
		Self:       expansion.Subject,
		Bindings:   expansion.Bindings,
		PendingIDs: pending,
	}

	mutations := make([]mutate.Mutation, 0, len(expansion.Relationships)+len(expansion.Mutations))
	for _, spec := range expansion.Relationships {
		mutations = append(mutations, relationshipMutation(spec))
	}
	mutations = append(mutations, expansion.Mutations...)

	for _, m := range mutations {
		result, err := mutate.Apply(m, ctx)
		if err != nil {
			e.stats.MutationsRejected++
			e.logger.Warn("mutation commit failed",
				zap.Int("tick", tick),
				zap.String("template", name),
				zap.Error(err))
			continue
		}
		if !result.Applied {
			e.stats.MutationsRejected++
			e.logger.Debug("mutation rejected",
				zap.Int("tick", tick),
				zap.String("template", name),
				zap.String("op", m.Op.String()),
				zap.String("reason", result.Diagnostic))
			continue
		}
		e.stats.RelationshipsCreated += len(result.RelationshipsCreated)
	}
}

func relationshipMutation(spec template.RelationshipSpec) mutate.Mutation {
	return mutate.Mutation{
		Op:     mutate.OpCreateRelationship,
		Target: spec.Src,
		Relationship: mutate.RelationshipIntent{
			Kind:          spec.Kind,
			Other:         spec.Dst,
			Bidirectional: spec.Bidirectional,
			Strength:      spec.Strength,
			Category:      spec.Category,
			Distance:      spec.Distance,
			CatalyzedBy:   spec.CatalyzedBy,
		},
	}
}
