package sim

import (
	"fmt"

	"worldloom/internal/config"
	"worldloom/internal/coord"
	"worldloom/internal/world"
)

// bootstrap translates the world definition into live subsystem state:
// coordinate spaces, axes, seeded regions, then seed entities and
// relationships. Definition-level cross-references were already validated
// at load time; bootstrap enforces the constraints only the runtime can
// check, like prominence levels and per-kind statuses.
func (e *Engine) bootstrap() error {
	for _, kind := range e.def.EntityKinds {
		if kind.Coordinates {
			e.coords.ConfigureSpace(world.Kind(kind.Name))
		}
	}

	for _, axis := range e.def.Axes {
		err := e.coords.AddAxis(coord.SemanticAxis{
			Kind:       world.Kind(axis.Kind),
			Axis:       axis.Axis,
			Tag:        axis.Tag,
			Position:   axis.Position,
			Weight:     axis.Weight,
			PressureID: axis.Pressure,
		})
		if err != nil {
			return fmt.Errorf("axis for kind %s: %w", axis.Kind, err)
		}
	}

	for _, region := range e.def.Regions {
		converted, err := convertRegion(region)
		if err != nil {
			return err
		}
		if err := e.coords.AddRegion(converted); err != nil {
			return fmt.Errorf("region %s: %w", region.Name, err)
		}
	}

	for _, seed := range e.def.Entities {
		if err := e.seedEntity(seed); err != nil {
			return err
		}
	}

	for i, seed := range e.def.Relationships {
		if err := e.seedRelationship(seed); err != nil {
			return fmt.Errorf("seed relationship %d: %w", i, err)
		}
	}
	return nil
}

func (e *Engine) seedEntity(seed config.SeedEntity) error {
	prominence := world.Prominence(seed.Prominence)
	if prominence == "" {
		prominence = world.ProminenceMarginal
	}
	if !world.IsValidProminence(prominence) {
		return fmt.Errorf("seed entity %s: unknown prominence %q", seed.ID, seed.Prominence)
	}
	if seed.Status != "" && !e.def.IsValidStatus(seed.Kind, seed.Status) {
		return fmt.Errorf("seed entity %s: status %q is not valid for kind %s", seed.ID, seed.Status, seed.Kind)
	}

	entity := world.Entity{
		ID:          seed.ID,
		Kind:        world.Kind(seed.Kind),
		Subtype:     seed.Subtype,
		Name:        seed.Name,
		Description: seed.Description,
		Status:      seed.Status,
		Prominence:  prominence,
		Culture:     seed.Culture,
		Tags:        seed.Tags,
	}

	if len(seed.Coordinates) == 3 {
		if !e.coords.Configured(entity.Kind) {
			return fmt.Errorf("seed entity %s: kind %s has no coordinate space", seed.ID, seed.Kind)
		}
		entity.Coordinates = &world.Point{
			X: seed.Coordinates[0],
			Y: seed.Coordinates[1],
			Z: seed.Coordinates[2],
		}
	}

	e.store.SetEntity(entity)
	return nil
}

func (e *Engine) seedRelationship(seed config.SeedRelationship) error {
	category := ""
	if kind, ok := e.def.RelationshipKindByName(seed.Kind); ok {
		category = kind.Category
	}
	pushed := e.store.PushRelationship(world.Relationship{
		Kind:     seed.Kind,
		Src:      seed.Src,
		Dst:      seed.Dst,
		Strength: seed.Strength,
		Category: category,
	})
	if !pushed {
		return fmt.Errorf("endpoints %s and %s must both exist", seed.Src, seed.Dst)
	}
	return nil
}

func convertRegion(region config.Region) (coord.Region, error) {
	out := coord.Region{
		Name:     region.Name,
		Kind:     world.Kind(region.Kind),
		Shape:    coord.Shape(region.Shape),
		AutoTags: region.Tags,
		Parent:   region.Parent,
	}

	switch out.Shape {
	case coord.ShapeCircle:
		out.Center = world.Point{X: region.Center[0], Y: region.Center[1]}
		if len(region.Center) > 2 {
			out.Center.Z = region.Center[2]
		}
		out.Radius = region.Radius
	case coord.ShapeRect:
		out.MinX, out.MinY = region.Bounds[0], region.Bounds[1]
		out.MaxX, out.MaxY = region.Bounds[2], region.Bounds[3]
	case coord.ShapePolygon:
		for _, vertex := range region.Polygon {
			if len(vertex) < 2 {
				return coord.Region{}, fmt.Errorf("region %s: polygon vertices need x and y", region.Name)
			}
			out.Polygon = append(out.Polygon, world.Point{X: vertex[0], Y: vertex[1]})
		}
	}

	if len(region.ZRange) == 2 {
		zMin, zMax := region.ZRange[0], region.ZRange[1]
		out.ZMin, out.ZMax = &zMin, &zMax
	}
	return out, nil
}
