package coord

import (
	"fmt"
	"math"

	"worldloom/internal/world"
)

// Shape selects how a region's footprint is defined in the x/y plane.
type Shape string

const (
	ShapeCircle  Shape = "circle"
	ShapeRect    Shape = "rect"
	ShapePolygon Shape = "polygon"
)

// Region is a named subarea of one kind's coordinate space. An optional
// z-range restricts it vertically, AutoTags are applied to entities placed
// inside it, and Parent nests it under another region of the same kind.
type Region struct {
	Name     string
	Kind     world.Kind
	Shape    Shape
	Center   world.Point
	Radius   float64
	MinX     float64
	MinY     float64
	MaxX     float64
	MaxY     float64
	Polygon  []world.Point
	ZMin     *float64
	ZMax     *float64
	AutoTags map[string]any
	Parent   string
}

// Contains reports whether the point falls inside the region footprint and
// z-range.
func (r Region) Contains(p world.Point) bool {
	if r.ZMin != nil && p.Z < *r.ZMin {
		return false
	}
	if r.ZMax != nil && p.Z > *r.ZMax {
		return false
	}
	switch r.Shape {
	case ShapeCircle:
		return planarDistance(p, r.Center) <= r.Radius
	case ShapeRect:
		return p.X >= r.MinX && p.X <= r.MaxX && p.Y >= r.MinY && p.Y <= r.MaxY
	case ShapePolygon:
		return pointInPolygon(p, r.Polygon)
	default:
		return false
	}
}

// Distance returns the planar distance from the point to the region's
// boundary, 0 when the point is inside.
func (r Region) Distance(p world.Point) float64 {
	if r.Contains(p) {
		return 0
	}
	switch r.Shape {
	case ShapeCircle:
		d := planarDistance(p, r.Center) - r.Radius
		if d < 0 {
			return 0
		}
		return d
	case ShapeRect:
		dx := math.Max(math.Max(r.MinX-p.X, 0), p.X-r.MaxX)
		dy := math.Max(math.Max(r.MinY-p.Y, 0), p.Y-r.MaxY)
		return math.Hypot(dx, dy)
	case ShapePolygon:
		best := math.Inf(1)
		for i := range r.Polygon {
			j := (i + 1) % len(r.Polygon)
			if d := segmentDistance(p, r.Polygon[i], r.Polygon[j]); d < best {
				best = d
			}
		}
		if math.IsInf(best, 1) {
			return 0
		}
		return best
	default:
		return math.Inf(1)
	}
}

func (r Region) area() float64 {
	switch r.Shape {
	case ShapeCircle:
		return math.Pi * r.Radius * r.Radius
	case ShapeRect:
		return (r.MaxX - r.MinX) * (r.MaxY - r.MinY)
	case ShapePolygon:
		area := 0.0
		for i := range r.Polygon {
			j := (i + 1) % len(r.Polygon)
			area += r.Polygon[i].X*r.Polygon[j].Y - r.Polygon[j].X*r.Polygon[i].Y
		}
		return math.Abs(area) / 2
	default:
		return 0
	}
}

func (r Region) anchor() world.Point {
	switch r.Shape {
	case ShapeCircle:
		return r.Center
	case ShapeRect:
		return world.Point{X: (r.MinX + r.MaxX) / 2, Y: (r.MinY + r.MaxY) / 2}
	case ShapePolygon:
		var sum world.Point
		for _, vertex := range r.Polygon {
			sum.X += vertex.X
			sum.Y += vertex.Y
		}
		n := float64(len(r.Polygon))
		if n == 0 {
			return world.Point{}
		}
		return world.Point{X: sum.X / n, Y: sum.Y / n}
	default:
		return world.Point{}
	}
}

func (r Region) validate() error {
	if r.Name == "" {
		return fmt.Errorf("region name is required")
	}
	switch r.Shape {
	case ShapeCircle:
		if r.Radius <= 0 {
			return fmt.Errorf("region %s: circle radius must be positive", r.Name)
		}
	case ShapeRect:
		if r.MaxX <= r.MinX || r.MaxY <= r.MinY {
			return fmt.Errorf("region %s: rect bounds are inverted", r.Name)
		}
	case ShapePolygon:
		if len(r.Polygon) < 3 {
			return fmt.Errorf("region %s: polygon needs at least 3 vertices", r.Name)
		}
	default:
		return fmt.Errorf("region %s: unknown shape %q", r.Name, r.Shape)
	}
	return nil
}

// AddRegion registers a seeded region. The kind's space must already be
// configured and any parent must already exist.
func (s *System) AddRegion(region Region) error {
	s.mustSpace(region.Kind)
	if err := region.validate(); err != nil {
		return err
	}
	for _, existing := range s.regions[region.Kind] {
		if existing.Name == region.Name {
			return fmt.Errorf("duplicate region name: %s", region.Name)
		}
	}
	if region.Parent != "" && s.findRegion(region.Kind, region.Parent) == nil {
		return fmt.Errorf("region %s references unknown parent: %s", region.Name, region.Parent)
	}
	s.regions[region.Kind] = append(s.regions[region.Kind], region)
	return nil
}

// Regions returns the regions of a kind in registration order.
func (s *System) Regions(kind world.Kind) []Region {
	return append([]Region(nil), s.regions[kind]...)
}

func (s *System) findRegion(kind world.Kind, name string) *Region {
	for i := range s.regions[kind] {
		if s.regions[kind][i].Name == name {
			return &s.regions[kind][i]
		}
	}
	return nil
}

func (s *System) nestingDepth(region Region) int {
	depth := 0
	parent := region.Parent
	for parent != "" {
		next := s.findRegion(region.Kind, parent)
		if next == nil {
			break
		}
		depth++
		parent = next.Parent
	}
	return depth
}

// Placement describes where a point falls relative to a kind's regions.
// Containing is the most specific region holding the point (deepest
// nesting, then smallest area); Overlapping lists every region holding it.
// When nothing contains the point, Nearest and NearestDistance point at the
// closest region instead.
type Placement struct {
	Containing      *Region
	Overlapping     []Region
	Nearest         *Region
	NearestDistance float64
}

// Locate resolves a point against the regions of a kind. Panics when the
// kind's space is not configured.
func (s *System) Locate(kind world.Kind, p world.Point) Placement {
	s.mustSpace(kind)

	var placement Placement
	bestDepth, bestArea := -1, math.Inf(1)
	nearest := math.Inf(1)

	for i := range s.regions[kind] {
		region := s.regions[kind][i]
		if region.Contains(p) {
			placement.Overlapping = append(placement.Overlapping, region)
			depth, area := s.nestingDepth(region), region.area()
			if depth > bestDepth || (depth == bestDepth && area < bestArea) {
				bestDepth, bestArea = depth, area
				containing := region
				placement.Containing = &containing
			}
			continue
		}
		if d := region.Distance(p); d < nearest {
			nearest = d
			candidate := region
			placement.Nearest = &candidate
			placement.NearestDistance = d
		}
	}

	if placement.Containing != nil {
		placement.Nearest = nil
		placement.NearestDistance = 0
	}
	return placement
}

// CreateEmergentRegion tries to place a new circular region near a point,
// keeping at least minDistanceFromExisting from every existing region
// anchor. Placement jitters deterministically off the seeded noise field.
// The bool result is false when no valid spot was found within the attempt
// budget; that is a reported outcome, not an error.
func (s *System) CreateEmergentRegion(kind world.Kind, name string, near world.Point, radius, minDistanceFromExisting float64, autoTags map[string]any) (Region, bool) {
	s.mustSpace(kind)

	for attempt := 0; attempt < placementAttempts; attempt++ {
		jitterX := (s.noise.Eval2(near.X/AxisMax+float64(attempt)*0.37, near.Y/AxisMax) - 0.5) * 2
		jitterY := (s.noise.Eval2(near.Y/AxisMax, near.X/AxisMax+float64(attempt)*0.59) - 0.5) * 2
		spread := minDistanceFromExisting * (1 + float64(attempt)/2)
		candidate := clampPoint(world.Point{
			X: near.X + jitterX*spread + (s.rng.Float64()-0.5)*radius,
			Y: near.Y + jitterY*spread + (s.rng.Float64()-0.5)*radius,
			Z: near.Z,
		})

		tooClose := false
		for _, existing := range s.regions[kind] {
			if planarDistance(candidate, existing.anchor()) < minDistanceFromExisting {
				tooClose = true
				break
			}
		}
		if tooClose {
			continue
		}

		region := Region{
			Name:     name,
			Kind:     kind,
			Shape:    ShapeCircle,
			Center:   candidate,
			Radius:   radius,
			AutoTags: autoTags,
		}
		if err := s.AddRegion(region); err != nil {
			return Region{}, false
		}
		return region, true
	}
	return Region{}, false
}

func planarDistance(a, b world.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func segmentDistance(p, a, b world.Point) float64 {
	abx, aby := b.X-a.X, b.Y-a.Y
	apx, apy := p.X-a.X, p.Y-a.Y
	length := abx*abx + aby*aby
	if length == 0 {
		return planarDistance(p, a)
	}
	t := (apx*abx + apy*aby) / length
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return planarDistance(p, world.Point{X: a.X + t*abx, Y: a.Y + t*aby})
}

func pointInPolygon(p world.Point, polygon []world.Point) bool {
	inside := false
	for i, j := 0, len(polygon)-1; i < len(polygon); j, i = i, i+1 {
		a, b := polygon[i], polygon[j]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}
