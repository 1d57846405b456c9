// Package coord assigns entities positions in bounded per-kind coordinate
// spaces and manages named regions within them. Placement is deterministic
// given the injected seed and generator.
package coord

import (
	"fmt"
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"worldloom/internal/world"
)

// Axis bounds for every space.
const (
	AxisMin = 0.0
	AxisMax = 100.0
)

const placementAttempts = 12

// SemanticAxis maps the presence of a tag to a position on one axis of a
// kind's space. PressureID optionally names the pressure whose growth the
// axis correlates with; the engine only records the link, it does not
// compute from it.
type SemanticAxis struct {
	Kind       world.Kind
	Axis       string // "x", "y" or "z"
	Tag        string
	Position   float64
	Weight     float64
	PressureID string
}

// OffsetRange bounds how far a derived position lands from its anchor.
type OffsetRange struct {
	MinDistance float64
	MaxDistance float64
}

// System owns the configured spaces, semantic axes and regions.
type System struct {
	spaces  map[world.Kind]struct{}
	axes    map[world.Kind][]SemanticAxis
	regions map[world.Kind][]Region
	noise   opensimplex.Noise
	rng     *rand.Rand
}

// NewSystem builds a system with a seeded jitter field and the run's
// injected generator.
func NewSystem(seed int64, rng *rand.Rand) *System {
	return &System{
		spaces:  make(map[world.Kind]struct{}),
		axes:    make(map[world.Kind][]SemanticAxis),
		regions: make(map[world.Kind][]Region),
		noise:   opensimplex.NewNormalized(seed),
		rng:     rng,
	}
}

// ConfigureSpace declares that kind owns a coordinate space.
func (s *System) ConfigureSpace(kind world.Kind) {
	s.spaces[kind] = struct{}{}
}

// Configured reports whether kind has a coordinate space.
func (s *System) Configured(kind world.Kind) bool {
	_, ok := s.spaces[kind]
	return ok
}

// AddAxis registers a semantic axis definition for its kind.
func (s *System) AddAxis(axis SemanticAxis) error {
	switch axis.Axis {
	case "x", "y", "z":
	default:
		return fmt.Errorf("invalid axis: %s", axis.Axis)
	}
	if axis.Position < AxisMin || axis.Position > AxisMax {
		return fmt.Errorf("axis position out of range: %v", axis.Position)
	}
	if axis.Weight == 0 {
		axis.Weight = 1
	}
	s.axes[axis.Kind] = append(s.axes[axis.Kind], axis)
	return nil
}

// mustSpace panics when the space is not configured. Placing an entity into
// an unconfigured space would corrupt every later spatial query, so this is
// a setup error that has to surface immediately.
func (s *System) mustSpace(kind world.Kind) {
	if !s.Configured(kind) {
		panic(fmt.Sprintf("coord: coordinate space not configured for kind %q", kind))
	}
}

// DeriveCoordinates computes a position for a new entity of targetKind near
// the centroid of the reference entities' positions. References without
// coordinates are skipped; when none are usable the position falls back to
// the kind's semantic-axis defaults weighted by hintTags. The result is
// offset from the anchor by a distance within the given range and clamped
// to the space bounds. Panics when targetKind has no configured space.
func (s *System) DeriveCoordinates(refs []world.Entity, targetKind world.Kind, hintTags map[string]any, offset OffsetRange) world.Point {
	s.mustSpace(targetKind)

	anchor, ok := centroid(refs)
	if !ok {
		anchor = s.semanticDefault(targetKind, hintTags)
	}

	distance := offset.MinDistance
	if offset.MaxDistance > offset.MinDistance {
		distance += s.rng.Float64() * (offset.MaxDistance - offset.MinDistance)
	}
	if distance == 0 {
		return clampPoint(anchor)
	}

	theta := s.rng.Float64() * 2 * math.Pi
	phi := (s.rng.Float64() - 0.5) * math.Pi
	return clampPoint(world.Point{
		X: anchor.X + distance*math.Cos(theta)*math.Cos(phi),
		Y: anchor.Y + distance*math.Sin(theta)*math.Cos(phi),
		Z: anchor.Z + distance*math.Sin(phi),
	})
}

func (s *System) semanticDefault(kind world.Kind, hintTags map[string]any) world.Point {
	point := world.Point{X: AxisMax / 2, Y: AxisMax / 2, Z: AxisMax / 2}
	if len(hintTags) == 0 {
		return point
	}

	type pull struct {
		sum    float64
		weight float64
	}
	pulls := map[string]*pull{"x": {}, "y": {}, "z": {}}
	for _, axis := range s.axes[kind] {
		if _, ok := hintTags[axis.Tag]; !ok {
			continue
		}
		p := pulls[axis.Axis]
		p.sum += axis.Position * axis.Weight
		p.weight += axis.Weight
	}
	if p := pulls["x"]; p.weight > 0 {
		point.X = p.sum / p.weight
	}
	if p := pulls["y"]; p.weight > 0 {
		point.Y = p.sum / p.weight
	}
	if p := pulls["z"]; p.weight > 0 {
		point.Z = p.sum / p.weight
	}
	return point
}

func centroid(refs []world.Entity) (world.Point, bool) {
	var sum world.Point
	count := 0
	for _, ref := range refs {
		if ref.Coordinates == nil {
			continue
		}
		sum.X += ref.Coordinates.X
		sum.Y += ref.Coordinates.Y
		sum.Z += ref.Coordinates.Z
		count++
	}
	if count == 0 {
		return world.Point{}, false
	}
	return world.Point{X: sum.X / float64(count), Y: sum.Y / float64(count), Z: sum.Z / float64(count)}, true
}

func clampPoint(p world.Point) world.Point {
	return world.Point{X: clampAxis(p.X), Y: clampAxis(p.Y), Z: clampAxis(p.Z)}
}

func clampAxis(value float64) float64 {
	if value < AxisMin {
		return AxisMin
	}
	if value > AxisMax {
		return AxisMax
	}
	return value
}
