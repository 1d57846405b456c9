package mutate

import "fmt"

type refKind int

const (
	refNone refKind = iota
	refID
	refSelf
	refPending
	refBinding
)

// Ref names an entity from inside a mutation declaration: a committed id,
// the invocation's own subject ($self), an index into the expansion's
// pending entity list, or a name bound during expansion. The zero Ref is
// empty and fails resolution.
type Ref struct {
	kind    refKind
	id      string
	index   int
	binding string
}

// ID references a committed entity id.
func ID(id string) Ref { return Ref{kind: refID, id: id} }

// Self references the invocation subject.
func Self() Ref { return Ref{kind: refSelf} }

// Pending references the expansion's pending entity at index.
func Pending(index int) Ref { return Ref{kind: refPending, index: index} }

// Binding references a name bound by the template during expansion.
func Binding(name string) Ref { return Ref{kind: refBinding, binding: name} }

// IsZero reports whether the ref is empty.
func (r Ref) IsZero() bool { return r.kind == refNone }

func (r Ref) String() string {
	switch r.kind {
	case refID:
		return r.id
	case refSelf:
		return "$self"
	case refPending:
		return fmt.Sprintf("will-be-assigned-%d", r.index)
	case refBinding:
		return "$" + r.binding
	default:
		return "<empty>"
	}
}

// Resolve maps the ref to a committed entity id using the context. The
// entity must exist in the store; an empty or unresolvable ref is an error
// that rejects the whole mutation.
func (r Ref) Resolve(ctx *Context) (string, error) {
	var id string
	switch r.kind {
	case refID:
		id = r.id
	case refSelf:
		if ctx.Self == "" {
			return "", fmt.Errorf("no subject bound for $self")
		}
		id = ctx.Self
	case refPending:
		if r.index < 0 || r.index >= len(ctx.PendingIDs) {
			return "", fmt.Errorf("pending index %d out of range (have %d pending entities)", r.index, len(ctx.PendingIDs))
		}
		id = ctx.PendingIDs[r.index]
	case refBinding:
		bound, ok := ctx.Bindings[r.binding]
		if !ok {
			return "", fmt.Errorf("no binding for $%s", r.binding)
		}
		id = bound
	default:
		return "", fmt.Errorf("empty entity reference")
	}

	if !ctx.World.HasEntity(id) {
		return "", fmt.Errorf("entity %s not found", id)
	}
	return id, nil
}
