package world

// Relationship category groupings. CategoryImmutableFact marks edges that
// record fixed facts (geography, lineage); the mutation pipeline refuses to
// archive or re-weigh them.
const (
	CategoryPolitical     = "political"
	CategorySpatial       = "spatial"
	CategoryCultural      = "cultural"
	CategoryPersonal      = "personal"
	CategoryImmutableFact = "immutable_fact"
)

// StatusHistorical marks archived relationships and retired entities.
const StatusHistorical = "historical"

// DefaultStrength is assumed when a relationship is created without one.
const DefaultStrength = 0.5

// Relationship is a directed, typed edge between two entities.
type Relationship struct {
	Kind        string
	Src         string
	Dst         string
	Strength    float64
	Status      string
	Category    string
	Distance    float64
	CatalyzedBy string
}

// Direction selects which relationship endpoints to match in queries.
type Direction string

const (
	DirectionOut  Direction = "out"
	DirectionIn   Direction = "in"
	DirectionBoth Direction = "both"
)

// Touches reports whether the relationship has id as either endpoint.
func (r Relationship) Touches(id string) bool {
	return r.Src == id || r.Dst == id
}

// Counterpart returns the opposite endpoint of id, or "" when id is not an
// endpoint.
func (r Relationship) Counterpart(id string) string {
	switch id {
	case r.Src:
		return r.Dst
	case r.Dst:
		return r.Src
	default:
		return ""
	}
}

// Immutable reports whether the edge records a fixed fact.
func (r Relationship) Immutable() bool {
	return r.Category == CategoryImmutableFact
}

func clampStrength(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
