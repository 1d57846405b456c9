package mcp

import (
	"context"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"worldloom/internal/validate"
	"worldloom/internal/world"
)

type GetEntityInput struct {
	ID string `json:"id" jsonschema:"entity id"`
}

type ListEntitiesInput struct {
	Kind    string `json:"kind,omitempty" jsonschema:"entity kind filter"`
	Subtype string `json:"subtype,omitempty" jsonschema:"subtype filter"`
	Status  string `json:"status,omitempty" jsonschema:"status filter"`
	Tag     string `json:"tag,omitempty" jsonschema:"require a tag to be present"`
}

type GetRelationshipsInput struct {
	ID        string `json:"id" jsonschema:"entity id"`
	Kind      string `json:"kind,omitempty" jsonschema:"relationship kind filter"`
	Direction string `json:"direction,omitempty" jsonschema:"out, in, or both"`
}

type GetPressuresInput struct{}

type GetWorldStatusInput struct{}

type GetSchemaInput struct{}

type ValidateWorldInput struct{}

type EntityOutput struct {
	ID          string         `json:"id"`
	Kind        string         `json:"kind"`
	Subtype     string         `json:"subtype,omitempty"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Status      string         `json:"status,omitempty"`
	Prominence  string         `json:"prominence"`
	Culture     string         `json:"culture,omitempty"`
	Tags        map[string]any `json:"tags,omitempty"`
	Coordinates []float64      `json:"coordinates,omitempty"`
	CreatedAt   int            `json:"created_at"`
	UpdatedAt   int            `json:"updated_at"`
}

type EntitySummaryOutput struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	Subtype    string `json:"subtype,omitempty"`
	Name       string `json:"name"`
	Status     string `json:"status,omitempty"`
	Prominence string `json:"prominence"`
}

type RelationshipOutput struct {
	Kind        string  `json:"kind"`
	Src         string  `json:"src"`
	Dst         string  `json:"dst"`
	Strength    float64 `json:"strength"`
	Status      string  `json:"status,omitempty"`
	Category    string  `json:"category,omitempty"`
	CatalyzedBy string  `json:"catalyzed_by,omitempty"`
}

type GetEntityOutput struct {
	Entity        EntityOutput         `json:"entity"`
	Relationships []RelationshipOutput `json:"relationships"`
}

type ListEntitiesOutput struct {
	Entities []EntitySummaryOutput `json:"entities"`
}

type GetRelationshipsOutput struct {
	Relationships []RelationshipOutput `json:"relationships"`
}

type PressureOutput struct {
	ID    string  `json:"id"`
	Value float64 `json:"value"`
}

type GetPressuresOutput struct {
	Pressures []PressureOutput `json:"pressures"`
}

type GetWorldStatusOutput struct {
	Tick          int            `json:"tick"`
	Era           string         `json:"era,omitempty"`
	Entities      int            `json:"entities"`
	Relationships int            `json:"relationships"`
	ByKind        map[string]int `json:"by_kind"`
}

type EntityKindOutput struct {
	Name        string   `json:"name"`
	Statuses    []string `json:"statuses,omitempty"`
	Coordinates bool     `json:"coordinates"`
}

type RelationshipKindOutput struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Cooldown int    `json:"cooldown,omitempty"`
}

type PressureDefOutput struct {
	ID         string  `json:"id"`
	Initial    float64 `json:"initial"`
	GrowthRate float64 `json:"growth_rate,omitempty"`
	DecayRate  float64 `json:"decay_rate,omitempty"`
	Baseline   float64 `json:"baseline,omitempty"`
}

type EraOutput struct {
	Name      string `json:"name"`
	StartTick int    `json:"start_tick"`
}

type GetSchemaOutput struct {
	EntityKinds       []EntityKindOutput       `json:"entity_kinds"`
	RelationshipKinds []RelationshipKindOutput `json:"relationship_kinds"`
	Pressures         []PressureDefOutput      `json:"pressures"`
	Eras              []EraOutput              `json:"eras"`
}

type IssueOutput struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Entity   string `json:"entity,omitempty"`
	Kind     string `json:"kind,omitempty"`
}

type ValidateWorldOutput struct {
	Issues []IssueOutput `json:"issues"`
	Errors int           `json:"errors"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_entity",
		Description: "Retrieve one entity with its relationships",
	}, s.handleGetEntity)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_entities",
		Description: "List entities with optional filters",
	}, s.handleListEntities)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_relationships",
		Description: "List the relationships touching an entity",
	}, s.handleGetRelationships)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_pressures",
		Description: "Return current pressure values",
	}, s.handleGetPressures)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_world_status",
		Description: "Return tick, era and population counts",
	}, s.handleGetWorldStatus)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_schema",
		Description: "Return the world definition: kinds, pressures and eras",
	}, s.handleGetSchema)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "validate_world",
		Description: "Audit the grown world against its definition",
	}, s.handleValidateWorld)
}

func (s *Server) handleGetEntity(ctx context.Context, req *sdk.CallToolRequest, input GetEntityInput) (*sdk.CallToolResult, GetEntityOutput, error) {
	if input.ID == "" {
		return nil, GetEntityOutput{}, fmt.Errorf("id is required")
	}
	entity, ok := s.engine.Store().GetEntity(input.ID)
	if !ok {
		return nil, GetEntityOutput{}, fmt.Errorf("entity %s not found", input.ID)
	}

	output := GetEntityOutput{Entity: entityOutput(entity)}
	for _, rel := range entity.Links {
		output.Relationships = append(output.Relationships, relationshipOutput(rel))
	}
	return nil, output, nil
}

func (s *Server) handleListEntities(ctx context.Context, req *sdk.CallToolRequest, input ListEntitiesInput) (*sdk.CallToolResult, ListEntitiesOutput, error) {
	criteria := world.Criteria{
		Kind:    world.Kind(input.Kind),
		Subtype: input.Subtype,
		Status:  input.Status,
		HasTag:  input.Tag,
	}

	var output ListEntitiesOutput
	for _, entity := range s.engine.Store().FindEntities(criteria) {
		output.Entities = append(output.Entities, EntitySummaryOutput{
			ID:         entity.ID,
			Kind:       string(entity.Kind),
			Subtype:    entity.Subtype,
			Name:       entity.Name,
			Status:     entity.Status,
			Prominence: string(entity.Prominence),
		})
	}
	return nil, output, nil
}

func (s *Server) handleGetRelationships(ctx context.Context, req *sdk.CallToolRequest, input GetRelationshipsInput) (*sdk.CallToolResult, GetRelationshipsOutput, error) {
	if input.ID == "" {
		return nil, GetRelationshipsOutput{}, fmt.Errorf("id is required")
	}
	if !s.engine.Store().HasEntity(input.ID) {
		return nil, GetRelationshipsOutput{}, fmt.Errorf("entity %s not found", input.ID)
	}

	direction := world.Direction(input.Direction)
	switch direction {
	case "", world.DirectionBoth:
		direction = world.DirectionBoth
	case world.DirectionOut, world.DirectionIn:
	default:
		return nil, GetRelationshipsOutput{}, fmt.Errorf("unknown direction: %s", input.Direction)
	}

	var output GetRelationshipsOutput
	for _, rel := range s.engine.Store().EntityRelationships(input.ID, direction) {
		if input.Kind != "" && rel.Kind != input.Kind {
			continue
		}
		output.Relationships = append(output.Relationships, relationshipOutput(rel))
	}
	return nil, output, nil
}

func (s *Server) handleGetPressures(ctx context.Context, req *sdk.CallToolRequest, input GetPressuresInput) (*sdk.CallToolResult, GetPressuresOutput, error) {
	tracker := s.engine.Pressures()
	var output GetPressuresOutput
	for _, id := range tracker.IDs() {
		output.Pressures = append(output.Pressures, PressureOutput{ID: id, Value: tracker.Get(id)})
	}
	return nil, output, nil
}

func (s *Server) handleGetWorldStatus(ctx context.Context, req *sdk.CallToolRequest, input GetWorldStatusInput) (*sdk.CallToolResult, GetWorldStatusOutput, error) {
	store := s.engine.Store()
	byKind := make(map[string]int)
	for _, kind := range s.engine.Definition().EntityKinds {
		if count := store.CountByKind(world.Kind(kind.Name), ""); count > 0 {
			byKind[kind.Name] = count
		}
	}
	return nil, GetWorldStatusOutput{
		Tick:          s.engine.Tick(),
		Era:           s.engine.Era(),
		Entities:      store.EntityCount(),
		Relationships: len(store.Relationships()),
		ByKind:        byKind,
	}, nil
}

func (s *Server) handleGetSchema(ctx context.Context, req *sdk.CallToolRequest, input GetSchemaInput) (*sdk.CallToolResult, GetSchemaOutput, error) {
	def := s.engine.Definition()
	var output GetSchemaOutput
	for _, kind := range def.EntityKinds {
		output.EntityKinds = append(output.EntityKinds, EntityKindOutput{
			Name:        kind.Name,
			Statuses:    kind.Statuses,
			Coordinates: kind.Coordinates,
		})
	}
	for _, kind := range def.RelationshipKinds {
		output.RelationshipKinds = append(output.RelationshipKinds, RelationshipKindOutput{
			Name:     kind.Name,
			Category: kind.Category,
			Cooldown: kind.Cooldown,
		})
	}
	for _, p := range def.Pressures {
		output.Pressures = append(output.Pressures, PressureDefOutput{
			ID:         p.ID,
			Initial:    p.Initial,
			GrowthRate: p.GrowthRate,
			DecayRate:  p.DecayRate,
			Baseline:   p.Baseline,
		})
	}
	for _, era := range def.Eras {
		output.Eras = append(output.Eras, EraOutput{Name: era.Name, StartTick: era.StartTick})
	}
	return nil, output, nil
}

func (s *Server) handleValidateWorld(ctx context.Context, req *sdk.CallToolRequest, input ValidateWorldInput) (*sdk.CallToolResult, ValidateWorldOutput, error) {
	report, err := validate.Run(s.engine.Definition(), s.engine.Store())
	if err != nil {
		return nil, ValidateWorldOutput{}, err
	}

	var output ValidateWorldOutput
	for _, issue := range report.Issues {
		output.Issues = append(output.Issues, IssueOutput{
			Severity: string(issue.Severity),
			Code:     issue.Code,
			Message:  issue.Message,
			Entity:   issue.Entity,
			Kind:     issue.Kind,
		})
	}
	output.Errors = len(report.Errors())
	return nil, output, nil
}

func entityOutput(entity world.Entity) EntityOutput {
	out := EntityOutput{
		ID:          entity.ID,
		Kind:        string(entity.Kind),
		Subtype:     entity.Subtype,
		Name:        entity.Name,
		Description: entity.Description,
		Status:      entity.Status,
		Prominence:  string(entity.Prominence),
		Culture:     entity.Culture,
		Tags:        entity.Tags,
		CreatedAt:   entity.CreatedAt,
		UpdatedAt:   entity.UpdatedAt,
	}
	if entity.Coordinates != nil {
		out.Coordinates = []float64{entity.Coordinates.X, entity.Coordinates.Y, entity.Coordinates.Z}
	}
	return out
}

func relationshipOutput(rel world.Relationship) RelationshipOutput {
	return RelationshipOutput{
		Kind:        rel.Kind,
		Src:         rel.Src,
		Dst:         rel.Dst,
		Strength:    rel.Strength,
		Status:      rel.Status,
		Category:    rel.Category,
		CatalyzedBy: rel.CatalyzedBy,
	}
}
