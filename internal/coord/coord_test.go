package coord

import (
	"math"
	"math/rand"
	"testing"

	"worldloom/internal/world"
)

func newTestSystem(t *testing.T) *System {
	t.Helper()
	s := NewSystem(42, rand.New(rand.NewSource(42)))
	s.ConfigureSpace(world.KindLocation)
	s.ConfigureSpace(world.KindNPC)
	return s
}

func TestDeriveCoordinates(t *testing.T) {
	t.Run("unconfigured space panics", func(t *testing.T) {
		s := newTestSystem(t)
		defer func() {
			if recover() == nil {
				t.Fatalf("expected panic for unconfigured kind")
			}
		}()
		s.DeriveCoordinates(nil, world.KindFaction, nil, OffsetRange{})
	})

	t.Run("centroid of references", func(t *testing.T) {
		s := newTestSystem(t)
		refs := []world.Entity{
			{Coordinates: &world.Point{X: 10, Y: 10, Z: 0}},
			{Coordinates: &world.Point{X: 30, Y: 50, Z: 20}},
			{Coordinates: nil}, // unusable, skipped
		}
		point := s.DeriveCoordinates(refs, world.KindLocation, nil, OffsetRange{})
		if point.X != 20 || point.Y != 30 || point.Z != 10 {
			t.Fatalf("expected centroid (20,30,10), got %+v", point)
		}
	})

	t.Run("offset stays within range", func(t *testing.T) {
		s := newTestSystem(t)
		anchor := world.Point{X: 50, Y: 50, Z: 50}
		refs := []world.Entity{{Coordinates: &anchor}}
		for i := 0; i < 25; i++ {
			point := s.DeriveCoordinates(refs, world.KindLocation, nil, OffsetRange{MinDistance: 5, MaxDistance: 10})
			d := math.Sqrt(sq(point.X-anchor.X) + sq(point.Y-anchor.Y) + sq(point.Z-anchor.Z))
			if d < 5-1e-9 || d > 10+1e-9 {
				t.Fatalf("offset %v outside [5,10]", d)
			}
		}
	})

	t.Run("semantic defaults from hint tags", func(t *testing.T) {
		s := newTestSystem(t)
		if err := s.AddAxis(SemanticAxis{Kind: world.KindNPC, Axis: "x", Tag: "mystic", Position: 90}); err != nil {
			t.Fatalf("add axis: %v", err)
		}
		if err := s.AddAxis(SemanticAxis{Kind: world.KindNPC, Axis: "x", Tag: "martial", Position: 10}); err != nil {
			t.Fatalf("add axis: %v", err)
		}
		point := s.DeriveCoordinates(nil, world.KindNPC, map[string]any{"mystic": true}, OffsetRange{})
		if point.X != 90 {
			t.Fatalf("expected x=90 from mystic axis, got %v", point.X)
		}
		if point.Y != 50 {
			t.Fatalf("unhinted axes default to center, got %v", point.Y)
		}
		blended := s.DeriveCoordinates(nil, world.KindNPC, map[string]any{"mystic": true, "martial": true}, OffsetRange{})
		if blended.X != 50 {
			t.Fatalf("expected equal-weight blend at 50, got %v", blended.X)
		}
	})

	t.Run("result clamped to bounds", func(t *testing.T) {
		s := newTestSystem(t)
		edge := world.Point{X: 99, Y: 99, Z: 99}
		refs := []world.Entity{{Coordinates: &edge}}
		for i := 0; i < 10; i++ {
			point := s.DeriveCoordinates(refs, world.KindLocation, nil, OffsetRange{MinDistance: 20, MaxDistance: 20})
			for _, axis := range []float64{point.X, point.Y, point.Z} {
				if axis < AxisMin || axis > AxisMax {
					t.Fatalf("axis out of bounds: %+v", point)
				}
			}
		}
	})
}

func TestRegions(t *testing.T) {
	zLow, zHigh := 0.0, 10.0

	setup := func(t *testing.T) *System {
		s := newTestSystem(t)
		regions := []Region{
			{Name: "the-reach", Kind: world.KindLocation, Shape: ShapeRect, MinX: 0, MinY: 0, MaxX: 60, MaxY: 60},
			{Name: "mist-vale", Kind: world.KindLocation, Shape: ShapeCircle, Center: world.Point{X: 30, Y: 30}, Radius: 10, Parent: "the-reach",
				AutoTags: map[string]any{"misty": true}},
			{Name: "deep-roads", Kind: world.KindLocation, Shape: ShapePolygon, ZMin: &zLow, ZMax: &zHigh,
				Polygon: []world.Point{{X: 70, Y: 70}, {X: 90, Y: 70}, {X: 90, Y: 90}, {X: 70, Y: 90}}},
		}
		for _, region := range regions {
			if err := s.AddRegion(region); err != nil {
				t.Fatalf("add region %s: %v", region.Name, err)
			}
		}
		return s
	}

	t.Run("most specific containing region wins", func(t *testing.T) {
		s := setup(t)
		placement := s.Locate(world.KindLocation, world.Point{X: 30, Y: 30})
		if placement.Containing == nil || placement.Containing.Name != "mist-vale" {
			t.Fatalf("expected mist-vale, got %+v", placement.Containing)
		}
		if len(placement.Overlapping) != 2 {
			t.Fatalf("expected 2 overlapping regions, got %d", len(placement.Overlapping))
		}
	})

	t.Run("z range excludes", func(t *testing.T) {
		s := setup(t)
		inside := s.Locate(world.KindLocation, world.Point{X: 80, Y: 80, Z: 5})
		if inside.Containing == nil || inside.Containing.Name != "deep-roads" {
			t.Fatalf("expected deep-roads at z=5")
		}
		above := s.Locate(world.KindLocation, world.Point{X: 80, Y: 80, Z: 50})
		if above.Containing != nil {
			t.Fatalf("expected no containing region above z range")
		}
	})

	t.Run("nearest region when none contain", func(t *testing.T) {
		s := setup(t)
		placement := s.Locate(world.KindLocation, world.Point{X: 65, Y: 30})
		if placement.Containing != nil {
			t.Fatalf("expected no containing region")
		}
		if placement.Nearest == nil || placement.Nearest.Name != "the-reach" {
			t.Fatalf("expected the-reach nearest, got %+v", placement.Nearest)
		}
		if placement.NearestDistance != 5 {
			t.Fatalf("expected distance 5, got %v", placement.NearestDistance)
		}
	})

	t.Run("duplicate names rejected", func(t *testing.T) {
		s := setup(t)
		err := s.AddRegion(Region{Name: "the-reach", Kind: world.KindLocation, Shape: ShapeCircle, Radius: 1})
		if err == nil {
			t.Fatalf("expected duplicate name error")
		}
	})

	t.Run("unknown parent rejected", func(t *testing.T) {
		s := setup(t)
		err := s.AddRegion(Region{Name: "orphan", Kind: world.KindLocation, Shape: ShapeCircle, Radius: 1, Parent: "nowhere"})
		if err == nil {
			t.Fatalf("expected unknown parent error")
		}
	})
}

func TestEmergentRegions(t *testing.T) {
	t.Run("respects minimum distance", func(t *testing.T) {
		s := newTestSystem(t)
		if err := s.AddRegion(Region{Name: "old-town", Kind: world.KindLocation, Shape: ShapeCircle, Center: world.Point{X: 50, Y: 50}, Radius: 5}); err != nil {
			t.Fatalf("seed region: %v", err)
		}
		region, ok := s.CreateEmergentRegion(world.KindLocation, "new-quarter", world.Point{X: 52, Y: 52}, 4, 15, nil)
		if !ok {
			t.Fatalf("expected placement to succeed")
		}
		if planarDistance(region.Center, world.Point{X: 50, Y: 50}) < 15 {
			t.Fatalf("placed too close to old-town: %+v", region.Center)
		}
	})

	t.Run("gives up after bounded attempts", func(t *testing.T) {
		s := newTestSystem(t)
		if err := s.AddRegion(Region{Name: "everywhere", Kind: world.KindLocation, Shape: ShapeCircle, Center: world.Point{X: 50, Y: 50}, Radius: 80}); err != nil {
			t.Fatalf("seed region: %v", err)
		}
		// min distance larger than the whole space: no placement can work.
		if _, ok := s.CreateEmergentRegion(world.KindLocation, "impossible", world.Point{X: 50, Y: 50}, 4, 500, nil); ok {
			t.Fatalf("expected failure, not a panic or success")
		}
	})
}

func sq(v float64) float64 { return v * v }
