// Package validate audits a live world against its definition: every
// entity kind, status and prominence must be known, relationships must use
// declared kinds, and spatial data must agree with the configured
// coordinate spaces. The audit reports issues; it never repairs.
package validate

import (
	"fmt"
	"strings"

	"worldloom/internal/config"
	"worldloom/internal/world"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeUnknownKind        = "unknown_entity_kind"
	codeInvalidStatus      = "invalid_status"
	codeInvalidProminence  = "invalid_prominence"
	codeUnknownRelKind     = "unknown_relationship_kind"
	codeUnnamedEntity      = "unnamed_entity"
	codeOrphanedEntity     = "orphaned_entity"
	codeDuplicateName      = "duplicate_name"
	codeUnexpectedCoords   = "unexpected_coordinates"
	codeMissingCoordinates = "missing_coordinates"
	codeCategoryMismatch   = "category_mismatch"
)

type Issue struct {
	Severity Severity
	Code     string
	Message  string
	Kind     string
	Entity   string
}

type Report struct {
	Issues []Issue
}

// Errors returns only the error-severity issues.
func (r *Report) Errors() []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			out = append(out, issue)
		}
	}
	return out
}

// Run audits every entity and relationship in the store against the world
// definition.
func Run(def *config.WorldDef, store *world.Store) (*Report, error) {
	if def == nil {
		return nil, fmt.Errorf("world definition is required")
	}
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}

	issues := make([]Issue, 0)
	seenNames := make(map[string]string)

	for _, entity := range store.Entities() {
		issues = append(issues, auditEntity(def, entity)...)

		if entity.Name != "" {
			key := string(entity.Kind) + "/" + strings.ToLower(entity.Name)
			if otherID, dup := seenNames[key]; dup {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Code:     codeDuplicateName,
					Message:  fmt.Sprintf("name %q already used by %s", entity.Name, otherID),
					Kind:     string(entity.Kind),
					Entity:   entity.ID,
				})
			} else {
				seenNames[key] = entity.ID
			}
		}

		if len(entity.Links) == 0 {
			issues = append(issues, Issue{
				Severity: SeverityWarn,
				Code:     codeOrphanedEntity,
				Message:  "entity has no relationships",
				Kind:     string(entity.Kind),
				Entity:   entity.ID,
			})
		}
	}

	for _, rel := range store.Relationships() {
		kind, known := def.RelationshipKindByName(rel.Kind)
		if !known {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeUnknownRelKind,
				Message:  fmt.Sprintf("relationship kind %q is not declared", rel.Kind),
				Entity:   rel.Src,
			})
			continue
		}
		if kind.Category != "" && rel.Category != "" && !strings.EqualFold(kind.Category, rel.Category) {
			issues = append(issues, Issue{
				Severity: SeverityWarn,
				Code:     codeCategoryMismatch,
				Message:  fmt.Sprintf("%s relationship carries category %q, definition says %q", rel.Kind, rel.Category, kind.Category),
				Entity:   rel.Src,
			})
		}
	}

	return &Report{Issues: issues}, nil
}

func auditEntity(def *config.WorldDef, entity world.Entity) []Issue {
	var issues []Issue

	kind, known := def.EntityKindByName(string(entity.Kind))
	if !known {
		return []Issue{{
			Severity: SeverityError,
			Code:     codeUnknownKind,
			Message:  fmt.Sprintf("entity kind %q is not declared", entity.Kind),
			Kind:     string(entity.Kind),
			Entity:   entity.ID,
		}}
	}

	if entity.Status != "" && !def.IsValidStatus(string(entity.Kind), entity.Status) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Code:     codeInvalidStatus,
			Message:  fmt.Sprintf("status %q is not valid for kind %s", entity.Status, entity.Kind),
			Kind:     string(entity.Kind),
			Entity:   entity.ID,
		})
	}

	if entity.Prominence != "" && !world.IsValidProminence(entity.Prominence) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Code:     codeInvalidProminence,
			Message:  fmt.Sprintf("unknown prominence %q", entity.Prominence),
			Kind:     string(entity.Kind),
			Entity:   entity.ID,
		})
	}

	if entity.Name == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarn,
			Code:     codeUnnamedEntity,
			Message:  "entity has no name",
			Kind:     string(entity.Kind),
			Entity:   entity.ID,
		})
	}

	if entity.Coordinates != nil && !kind.Coordinates {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Code:     codeUnexpectedCoords,
			Message:  fmt.Sprintf("kind %s has no coordinate space", entity.Kind),
			Kind:     string(entity.Kind),
			Entity:   entity.ID,
		})
	}
	if entity.Coordinates == nil && kind.Coordinates {
		issues = append(issues, Issue{
			Severity: SeverityWarn,
			Code:     codeMissingCoordinates,
			Message:  "entity of a spatial kind has no coordinates",
			Kind:     string(entity.Kind),
			Entity:   entity.ID,
		})
	}

	return issues
}
