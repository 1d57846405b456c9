package world

import "fmt"

// Kind is the coarse category an entity belongs to. Each kind owns its own
// coordinate space and status vocabulary.
type Kind string

const (
	KindNPC        Kind = "npc"
	KindLocation   Kind = "location"
	KindFaction    Kind = "faction"
	KindAbility    Kind = "ability"
	KindRule       Kind = "rule"
	KindEra        Kind = "era"
	KindOccurrence Kind = "occurrence"
)

// Prominence is an ordered notability scale. Mutations move it one step at
// a time, never further.
type Prominence string

const (
	ProminenceForgotten  Prominence = "forgotten"
	ProminenceMarginal   Prominence = "marginal"
	ProminenceRecognized Prominence = "recognized"
	ProminenceRenowned   Prominence = "renowned"
	ProminenceMythic     Prominence = "mythic"
)

var prominenceOrder = []Prominence{
	ProminenceForgotten,
	ProminenceMarginal,
	ProminenceRecognized,
	ProminenceRenowned,
	ProminenceMythic,
}

func prominenceIndex(p Prominence) int {
	for i, candidate := range prominenceOrder {
		if candidate == p {
			return i
		}
	}
	return -1
}

// IsValidProminence reports whether p is one of the five known levels.
func IsValidProminence(p Prominence) bool {
	return prominenceIndex(p) >= 0
}

// StepProminence moves one step along the scale. direction > 0 steps up,
// direction < 0 steps down. The second return is false when already at the
// relevant extreme or when p is unknown.
func StepProminence(p Prominence, direction int) (Prominence, bool) {
	index := prominenceIndex(p)
	if index < 0 {
		return p, false
	}
	switch {
	case direction > 0:
		if index == len(prominenceOrder)-1 {
			return p, false
		}
		return prominenceOrder[index+1], true
	case direction < 0:
		if index == 0 {
			return p, false
		}
		return prominenceOrder[index-1], true
	default:
		return p, false
	}
}

// Point is a position in a kind's bounded coordinate space (axes 0-100).
type Point struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	Z float64 `yaml:"z" json:"z"`
}

// Entity is the hard state of a single world element. Tags hold string or
// bool values only. Links is a denormalized cache of every relationship
// touching the entity; the store keeps it consistent, callers never write it.
type Entity struct {
	ID          string
	Kind        Kind
	Subtype     string
	Name        string
	Description string
	Status      string
	Prominence  Prominence
	Culture     string
	Tags        map[string]any
	Links       []Relationship
	Coordinates *Point
	CreatedAt   int
	UpdatedAt   int
}

// Clone returns a deep copy. Mutating the copy never affects the original.
func (e Entity) Clone() Entity {
	out := e
	if e.Tags != nil {
		out.Tags = make(map[string]any, len(e.Tags))
		for key, value := range e.Tags {
			out.Tags[key] = value
		}
	}
	if e.Links != nil {
		out.Links = make([]Relationship, len(e.Links))
		copy(out.Links, e.Links)
	}
	if e.Coordinates != nil {
		point := *e.Coordinates
		out.Coordinates = &point
	}
	return out
}

// TagString returns the tag as a string, with ok false when absent or not
// a string value.
func (e Entity) TagString(key string) (string, bool) {
	value, ok := e.Tags[key]
	if !ok {
		return "", false
	}
	s, ok := value.(string)
	return s, ok
}

// HasTag reports whether the tag is present, regardless of value.
func (e Entity) HasTag(key string) bool {
	_, ok := e.Tags[key]
	return ok
}

func (e Entity) String() string {
	return fmt.Sprintf("%s/%s %q (%s)", e.Kind, e.Subtype, e.Name, e.ID)
}
