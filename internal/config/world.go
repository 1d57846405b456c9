package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// WorldDef is the full declarative description of one world: its kind and
// relationship vocabularies, pressures with growth/decay formulas, eras,
// coordinate axes and seeded regions, selector tuning, and the initial
// entities and relationships the simulation starts from.
type WorldDef struct {
	Version           int                `yaml:"version"`
	EntityKinds       []EntityKind       `yaml:"entity_kinds"`
	RelationshipKinds []RelationshipKind `yaml:"relationship_kinds"`
	Pressures         []Pressure         `yaml:"pressures"`
	Eras              []Era              `yaml:"eras"`
	Selection         Selection          `yaml:"selection"`
	Axes              []SemanticAxis     `yaml:"axes"`
	Regions           []Region           `yaml:"regions"`
	Entities          []SeedEntity       `yaml:"entities"`
	Relationships     []SeedRelationship `yaml:"relationships"`

	kindIndex map[string]*EntityKind
	relIndex  map[string]*RelationshipKind
}

type EntityKind struct {
	Name        string   `yaml:"name"`
	Statuses    []string `yaml:"statuses"`
	Coordinates bool     `yaml:"coordinates"`
}

type RelationshipKind struct {
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
	Cooldown int    `yaml:"cooldown"`
}

type Pressure struct {
	ID         string  `yaml:"id"`
	Initial    float64 `yaml:"initial"`
	GrowthRate float64 `yaml:"growth_rate"`
	DecayRate  float64 `yaml:"decay_rate"`
	Baseline   float64 `yaml:"baseline"`
}

type Era struct {
	Name      string `yaml:"name"`
	StartTick int    `yaml:"start_tick"`
}

type Selection struct {
	HubPenaltyStrength    float64 `yaml:"hub_penalty_strength"`
	CrossCulturePenalty   float64 `yaml:"cross_culture_penalty"`
	MaxTotalRelationships int     `yaml:"max_total_relationships"`
	SaturationThreshold   float64 `yaml:"saturation_threshold"`
}

type SemanticAxis struct {
	Kind     string  `yaml:"kind"`
	Axis     string  `yaml:"axis"`
	Tag      string  `yaml:"tag"`
	Position float64 `yaml:"position"`
	Weight   float64 `yaml:"weight"`
	Pressure string  `yaml:"pressure"`
}

type Region struct {
	Name    string         `yaml:"name"`
	Kind    string         `yaml:"kind"`
	Shape   string         `yaml:"shape"`
	Center  []float64      `yaml:"center"`
	Radius  float64        `yaml:"radius"`
	Bounds  []float64      `yaml:"bounds"` // min_x, min_y, max_x, max_y
	Polygon [][]float64    `yaml:"polygon"`
	ZRange  []float64      `yaml:"z_range"`
	Tags    map[string]any `yaml:"tags"`
	Parent  string         `yaml:"parent"`
}

type SeedEntity struct {
	ID          string         `yaml:"id"`
	Kind        string         `yaml:"kind"`
	Subtype     string         `yaml:"subtype"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Status      string         `yaml:"status"`
	Prominence  string         `yaml:"prominence"`
	Culture     string         `yaml:"culture"`
	Tags        map[string]any `yaml:"tags"`
	Coordinates []float64      `yaml:"coordinates"`
}

type SeedRelationship struct {
	Kind     string  `yaml:"kind"`
	Src      string  `yaml:"src"`
	Dst      string  `yaml:"dst"`
	Strength float64 `yaml:"strength"`
}

func LoadWorldDef(path string) (*WorldDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading world definition: %w", err)
	}

	var def WorldDef
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("loading world definition: %w", err)
	}

	if err := validateWorldDef(&def); err != nil {
		return nil, fmt.Errorf("loading world definition: %w", err)
	}

	def.kindIndex = make(map[string]*EntityKind)
	for i := range def.EntityKinds {
		kind := &def.EntityKinds[i]
		def.kindIndex[strings.ToLower(kind.Name)] = kind
	}
	def.relIndex = make(map[string]*RelationshipKind)
	for i := range def.RelationshipKinds {
		rel := &def.RelationshipKinds[i]
		def.relIndex[strings.ToLower(rel.Name)] = rel
	}

	return &def, nil
}

func validateWorldDef(def *WorldDef) error {
	if def.Version != 1 {
		return fmt.Errorf("unsupported version: %d", def.Version)
	}
	if len(def.EntityKinds) == 0 {
		return fmt.Errorf("at least one entity kind is required")
	}

	kindNames := make(map[string]struct{})
	for i, kind := range def.EntityKinds {
		if strings.TrimSpace(kind.Name) == "" {
			return fmt.Errorf("entity kind %d name is required", i)
		}
		key := strings.ToLower(kind.Name)
		if _, exists := kindNames[key]; exists {
			return fmt.Errorf("duplicate entity kind: %s", kind.Name)
		}
		kindNames[key] = struct{}{}
	}

	relNames := make(map[string]struct{})
	for i, rel := range def.RelationshipKinds {
		if strings.TrimSpace(rel.Name) == "" {
			return fmt.Errorf("relationship kind %d name is required", i)
		}
		key := strings.ToLower(rel.Name)
		if _, exists := relNames[key]; exists {
			return fmt.Errorf("duplicate relationship kind: %s", rel.Name)
		}
		relNames[key] = struct{}{}
		if rel.Cooldown < 0 {
			return fmt.Errorf("relationship kind %s cooldown must not be negative", rel.Name)
		}
	}

	pressureIDs := make(map[string]struct{})
	for i, pressure := range def.Pressures {
		if strings.TrimSpace(pressure.ID) == "" {
			return fmt.Errorf("pressure %d id is required", i)
		}
		key := strings.ToLower(pressure.ID)
		if _, exists := pressureIDs[key]; exists {
			return fmt.Errorf("duplicate pressure id: %s", pressure.ID)
		}
		pressureIDs[key] = struct{}{}
		if pressure.Initial < 0 || pressure.Initial > 100 {
			return fmt.Errorf("pressure %s initial value out of range", pressure.ID)
		}
	}

	lastStart := -1
	for i, era := range def.Eras {
		if strings.TrimSpace(era.Name) == "" {
			return fmt.Errorf("era %d name is required", i)
		}
		if era.StartTick <= lastStart && i > 0 {
			return fmt.Errorf("era %s start tick must increase", era.Name)
		}
		if i == 0 && era.StartTick != 0 {
			return fmt.Errorf("first era must start at tick 0")
		}
		lastStart = era.StartTick
	}

	for _, axis := range def.Axes {
		if _, ok := kindNames[strings.ToLower(axis.Kind)]; !ok {
			return fmt.Errorf("axis references unknown kind: %s", axis.Kind)
		}
		switch axis.Axis {
		case "x", "y", "z":
		default:
			return fmt.Errorf("axis for kind %s has invalid axis: %s", axis.Kind, axis.Axis)
		}
		if axis.Pressure != "" {
			if _, ok := pressureIDs[strings.ToLower(axis.Pressure)]; !ok {
				return fmt.Errorf("axis for kind %s references unknown pressure: %s", axis.Kind, axis.Pressure)
			}
		}
	}

	for _, region := range def.Regions {
		if _, ok := kindNames[strings.ToLower(region.Kind)]; !ok {
			return fmt.Errorf("region %s references unknown kind: %s", region.Name, region.Kind)
		}
		switch region.Shape {
		case "circle":
			if len(region.Center) < 2 || region.Radius <= 0 {
				return fmt.Errorf("region %s: circle needs a center and positive radius", region.Name)
			}
		case "rect":
			if len(region.Bounds) != 4 {
				return fmt.Errorf("region %s: rect needs bounds [min_x, min_y, max_x, max_y]", region.Name)
			}
		case "polygon":
			if len(region.Polygon) < 3 {
				return fmt.Errorf("region %s: polygon needs at least 3 vertices", region.Name)
			}
		default:
			return fmt.Errorf("region %s: unknown shape %q", region.Name, region.Shape)
		}
		if len(region.ZRange) != 0 && len(region.ZRange) != 2 {
			return fmt.Errorf("region %s: z_range needs exactly two values", region.Name)
		}
	}

	entityIDs := make(map[string]struct{})
	for i, entity := range def.Entities {
		if strings.TrimSpace(entity.ID) == "" {
			return fmt.Errorf("seed entity %d id is required", i)
		}
		if _, exists := entityIDs[entity.ID]; exists {
			return fmt.Errorf("duplicate seed entity id: %s", entity.ID)
		}
		entityIDs[entity.ID] = struct{}{}
		if _, ok := kindNames[strings.ToLower(entity.Kind)]; !ok {
			return fmt.Errorf("seed entity %s has unknown kind: %s", entity.ID, entity.Kind)
		}
		if len(entity.Coordinates) != 0 && len(entity.Coordinates) != 3 {
			return fmt.Errorf("seed entity %s coordinates need exactly three values", entity.ID)
		}
	}

	for i, rel := range def.Relationships {
		if strings.TrimSpace(rel.Kind) == "" {
			return fmt.Errorf("seed relationship %d kind is required", i)
		}
		if _, ok := relNames[strings.ToLower(rel.Kind)]; !ok {
			return fmt.Errorf("seed relationship %d has unknown kind: %s", i, rel.Kind)
		}
		for _, id := range []string{rel.Src, rel.Dst} {
			if _, ok := entityIDs[id]; !ok {
				return fmt.Errorf("seed relationship %d references unknown entity: %s", i, id)
			}
		}
	}

	return nil
}

func (d *WorldDef) EntityKindByName(name string) (*EntityKind, bool) {
	if d == nil {
		return nil, false
	}
	kind, ok := d.kindIndex[strings.ToLower(name)]
	return kind, ok
}

func (d *WorldDef) RelationshipKindByName(name string) (*RelationshipKind, bool) {
	if d == nil {
		return nil, false
	}
	rel, ok := d.relIndex[strings.ToLower(name)]
	return rel, ok
}

func (d *WorldDef) IsValidEntityKind(name string) bool {
	_, ok := d.EntityKindByName(name)
	return ok
}

func (d *WorldDef) IsValidRelationshipKind(name string) bool {
	_, ok := d.RelationshipKindByName(name)
	return ok
}

// IsValidStatus reports whether status is allowed for the kind. Kinds that
// declare no statuses accept anything.
func (d *WorldDef) IsValidStatus(kindName, status string) bool {
	kind, ok := d.EntityKindByName(kindName)
	if !ok {
		return false
	}
	if len(kind.Statuses) == 0 {
		return true
	}
	for _, candidate := range kind.Statuses {
		if strings.EqualFold(candidate, status) {
			return true
		}
	}
	return false
}

// CooldownDurations returns relationship-kind cooldowns keyed by name,
// omitting kinds without one.
func (d *WorldDef) CooldownDurations() map[string]int {
	out := make(map[string]int)
	for _, rel := range d.RelationshipKinds {
		if rel.Cooldown > 0 {
			out[rel.Name] = rel.Cooldown
		}
	}
	return out
}

// EraAt returns the era name covering a tick, or "" with no eras defined.
func (d *WorldDef) EraAt(tick int) string {
	current := ""
	for _, era := range d.Eras {
		if era.StartTick <= tick {
			current = era.Name
		}
	}
	return current
}
