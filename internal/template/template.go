package template

import (
	"fmt"
	"math/rand"

	"worldloom/internal/coord"
	"worldloom/internal/mutate"
	"worldloom/internal/pressure"
	"worldloom/internal/selector"
	"worldloom/internal/world"
)

// Context is the read surface handed to templates during evaluation,
// target discovery and expansion. Expansion must not write to the store
// directly; all changes flow back through the returned Expansion.
type Context struct {
	Tick      int
	Era       string
	World     *world.Store
	Pressures *pressure.Tracker
	Cooldowns *pressure.CooldownLedger
	Coords    *coord.System
	Select    *selector.Selector
	Rand      *rand.Rand
}

// coordOffsetNear places spawned entities close to, but not on top of,
// their reference entities.
var coordOffsetNear = coord.OffsetRange{MinDistance: 5, MaxDistance: 15}

// Metadata describes a template for logs and inspection.
type Metadata struct {
	Name        string
	Description string
	Category    string
}

// RelationshipSpec declares an edge in an expansion. Endpoints may
// reference committed ids, the invocation subject, bindings, or pending
// entities by index.
type RelationshipSpec struct {
	Kind          string
	Src           mutate.Ref
	Dst           mutate.Ref
	Strength      float64
	Category      string
	Distance      float64
	CatalyzedBy   mutate.Ref
	Bidirectional bool
}

// Expansion is everything one template invocation wants committed.
// Entities are pending: they receive real ids at commit time, and
// relationships or mutations reference them through pending-index refs.
// Entities synthesized by the target selector must be carried here too or
// they are lost.
type Expansion struct {
	Entities      []world.Entity
	Relationships []RelationshipSpec
	Mutations     []mutate.Mutation
	// Subject optionally names the committed entity the batch centers on;
	// it resolves $self refs during commit.
	Subject string
	// Bindings name committed entities for $name refs.
	Bindings map[string]string
}

// Template is one declarative growth rule. Contract gates it, CanApply
// optionally adds checks beyond the contract, FindTargets picks the
// entities it acts on, and Expand produces the change set. Only Expand is
// required alongside the metadata.
type Template struct {
	Metadata    Metadata
	Contract    Contract
	CanApply    func(*Context) bool
	FindTargets func(*Context) selector.Result
	Expand      func(*Context, selector.Result) (Expansion, error)
}

// Registry is the lookup table of registered templates, iterated in
// registration order so runs stay reproducible.
type Registry struct {
	order  []string
	byName map[string]*Template
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Template)}
}

// Register adds a template. Names must be unique and Expand is mandatory.
func (r *Registry) Register(t Template) error {
	if t.Metadata.Name == "" {
		return fmt.Errorf("template name is required")
	}
	if t.Expand == nil {
		return fmt.Errorf("template %s has no expand function", t.Metadata.Name)
	}
	if _, exists := r.byName[t.Metadata.Name]; exists {
		return fmt.Errorf("duplicate template name: %s", t.Metadata.Name)
	}
	stored := t
	r.byName[t.Metadata.Name] = &stored
	r.order = append(r.order, t.Metadata.Name)
	return nil
}

// Get returns a template by name.
func (r *Registry) Get(name string) (*Template, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// All returns every template in registration order.
func (r *Registry) All() []*Template {
	out := make([]*Template, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Names returns the registered template names in order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}
