package template

import (
	"fmt"

	"worldloom/internal/mutate"
	"worldloom/internal/selector"
	"worldloom/internal/world"
)

// Builtin returns the standard growth rules shipped with the engine:
// faction founding under unrest, alliances between pressured factions,
// cult formation near mystic sites, and treaty occurrences resolving
// wars. They double as reference implementations for external template
// libraries.
func Builtin() []Template {
	return []Template{
		factionFounding(),
		allianceFormation(),
		cultFormation(),
		warToTreaty(),
	}
}

func allianceFormation() Template {
	return Template{
		Metadata: Metadata{
			Name:        "alliance_formation",
			Description: "Two pressured factions close ranks in a formal alliance",
			Category:    "political",
		},
		Contract: Contract{
			PressureMin:    map[string]float64{"war": 50},
			CountMin:       []CountConstraint{{Kind: world.KindFaction, Count: 2}},
			RefireCooldown: 15,
		},
		Expand: func(ctx *Context, _ selector.Result) (Expansion, error) {
			factions := ctx.World.FindEntities(world.Criteria{Kind: world.KindFaction, Status: "active"})
			if len(factions) < 2 {
				return Expansion{}, fmt.Errorf("fewer than two active factions")
			}
			anchor := factions[ctx.Rand.Intn(len(factions))]

			// Current allies and open enemies are not eligible partners.
			exclude := []string{anchor.ID}
			for _, rel := range ctx.World.EntityRelationships(anchor.ID, world.DirectionBoth) {
				switch rel.Kind {
				case "allied_with":
					exclude = append(exclude, rel.Counterpart(anchor.ID))
				case "at_war_with":
					if rel.Status != world.StatusHistorical {
						exclude = append(exclude, rel.Counterpart(anchor.ID))
					}
				}
			}

			partners := ctx.Select.Select(selector.Request{
				Kind:                  world.KindFaction,
				Status:                "active",
				Count:                 1,
				ExcludeIDs:            exclude,
				ReferenceCulture:      anchor.Culture,
				AvoidRelationshipKind: "allied_with",
				DiversityBucket:       "alliance_formation",
			})
			if len(partners.Existing) == 0 {
				return Expansion{}, fmt.Errorf("no eligible partner for %s", anchor.Name)
			}
			partner := partners.Existing[0]

			expansion := Expansion{Subject: anchor.ID}
			expansion.Relationships = append(expansion.Relationships, RelationshipSpec{
				Kind: "allied_with", Src: mutate.ID(anchor.ID), Dst: mutate.ID(partner.ID),
				Bidirectional: true, Strength: 0.6, Category: world.CategoryPolitical,
			})
			expansion.Mutations = append(expansion.Mutations,
				mutate.Mutation{Op: mutate.OpModifyPressure, Pressure: "war", PressureDelta: -5},
			)
			return expansion, nil
		},
	}
}

func factionFounding() Template {
	return Template{
		Metadata: Metadata{
			Name:        "faction_founding",
			Description: "Discontented notables band together into a new faction",
			Category:    "political",
		},
		Contract: Contract{
			PressureMin:    map[string]float64{"unrest": 60},
			CountMin:       []CountConstraint{{Kind: world.KindNPC, Count: 3}},
			CountMax:       []CountConstraint{{Kind: world.KindFaction, Count: 12}},
			RefireCooldown: 20,
		},
		FindTargets: func(ctx *Context) selector.Result {
			return ctx.Select.Select(selector.Request{
				Kind:                  world.KindNPC,
				Status:                "alive",
				Count:                 3,
				PreferredSubtypes:     []string{"hero", "veteran"},
				AvoidRelationshipKind: "leader_of",
				DiversityBucket:       "faction_founding",
				Threshold:             0.15,
				Factory: func(index int) world.Entity {
					return world.Entity{
						Kind:       world.KindNPC,
						Subtype:    "commoner",
						Status:     "alive",
						Prominence: world.ProminenceForgotten,
						Tags:       map[string]any{"needs_name": true},
					}
				},
			})
		},
		Expand: func(ctx *Context, targets selector.Result) (Expansion, error) {
			if len(targets.Existing)+len(targets.Created) == 0 {
				return Expansion{}, fmt.Errorf("no founders available")
			}

			faction := world.Entity{
				Kind:       world.KindFaction,
				Subtype:    "movement",
				Status:     "active",
				Prominence: world.ProminenceMarginal,
				Tags:       map[string]any{"needs_name": true, "founded_tick": fmt.Sprintf("%d", ctx.Tick)},
			}
			if ctx.Coords.Configured(world.KindFaction) {
				point := ctx.Coords.DeriveCoordinates(targets.Existing, world.KindFaction, faction.Tags, coordOffsetNear)
				faction.Coordinates = &point
			}

			// Entity 0 is the faction; selector-created founders follow.
			expansion := Expansion{Entities: append([]world.Entity{faction}, targets.Created...)}

			memberRef := func(i int) mutate.Ref {
				if i < len(targets.Existing) {
					return mutate.ID(targets.Existing[i].ID)
				}
				return mutate.Pending(1 + (i - len(targets.Existing)))
			}

			total := len(targets.Existing) + len(targets.Created)
			leader := memberRef(0)
			expansion.Relationships = append(expansion.Relationships, RelationshipSpec{
				Kind: "leader_of", Src: leader, Dst: mutate.Pending(0),
				Strength: 0.8, Category: world.CategoryPolitical, CatalyzedBy: leader,
			})
			for i := 1; i < total; i++ {
				expansion.Relationships = append(expansion.Relationships, RelationshipSpec{
					Kind: "member_of", Src: memberRef(i), Dst: mutate.Pending(0),
					Category: world.CategoryPolitical, CatalyzedBy: leader,
				})
			}

			expansion.Mutations = append(expansion.Mutations,
				mutate.Mutation{Op: mutate.OpSetTag, Target: leader, Tag: "founder"},
				mutate.Mutation{Op: mutate.OpAdjustProminence, Target: leader, ProminenceDirection: 1},
				mutate.Mutation{Op: mutate.OpModifyPressure, Pressure: "unrest", PressureDelta: -15},
				mutate.Mutation{Op: mutate.OpUpdateRateLimit},
			)
			return expansion, nil
		},
	}
}

func cultFormation() Template {
	return Template{
		Metadata: Metadata{
			Name:        "cult_formation",
			Description: "A cult coalesces around a mystic site",
			Category:    "cultural",
		},
		Contract: Contract{
			PressureMin: map[string]float64{"mysticism": 70},
			CountMax:    []CountConstraint{{Kind: world.KindFaction, Subtype: "cult", Count: 6}},
			Predicates: []Predicate{{
				Name: "mystic_site_exists",
				Check: func(ctx *Context) bool {
					return len(ctx.World.FindEntities(world.Criteria{Kind: world.KindLocation, HasTag: "mystic"})) > 0
				},
			}},
			RefireCooldown: 30,
		},
		Expand: func(ctx *Context, _ selector.Result) (Expansion, error) {
			sites := ctx.World.FindEntities(world.Criteria{Kind: world.KindLocation, HasTag: "mystic"})
			if len(sites) == 0 {
				return Expansion{}, fmt.Errorf("no mystic site")
			}
			site := sites[ctx.Rand.Intn(len(sites))]

			followers := ctx.Select.Select(selector.Request{
				Kind:                  world.KindNPC,
				Status:                "alive",
				Count:                 2,
				ReferenceID:           site.ID,
				LocationRelKind:       "located_in",
				AvoidRelationshipKind: "member_of",
				DiversityBucket:       "cult_formation",
			})
			if len(followers.Existing)+len(followers.Created) == 0 {
				return Expansion{}, fmt.Errorf("no followers near %s", site.Name)
			}

			cult := world.Entity{
				Kind:       world.KindFaction,
				Subtype:    "cult",
				Status:     "active",
				Prominence: world.ProminenceForgotten,
				Culture:    site.Culture,
				Tags:       map[string]any{"needs_name": true, "mystic": true},
			}
			if ctx.Coords.Configured(world.KindFaction) {
				point := ctx.Coords.DeriveCoordinates([]world.Entity{site}, world.KindFaction, cult.Tags, coordOffsetNear)
				cult.Coordinates = &point
			}

			expansion := Expansion{Entities: append([]world.Entity{cult}, followers.Created...)}
			expansion.Relationships = append(expansion.Relationships, RelationshipSpec{
				Kind: "located_in", Src: mutate.Pending(0), Dst: mutate.ID(site.ID),
				Category: world.CategorySpatial,
			})
			for _, follower := range followers.Existing {
				expansion.Relationships = append(expansion.Relationships, RelationshipSpec{
					Kind: "member_of", Src: mutate.ID(follower.ID), Dst: mutate.Pending(0),
					Category: world.CategoryCultural,
				})
			}
			for i := range followers.Created {
				expansion.Relationships = append(expansion.Relationships, RelationshipSpec{
					Kind: "member_of", Src: mutate.Pending(1 + i), Dst: mutate.Pending(0),
					Category: world.CategoryCultural,
				})
			}

			expansion.Mutations = append(expansion.Mutations,
				mutate.Mutation{Op: mutate.OpSetTag, Target: mutate.ID(site.ID), Tag: "cult_presence"},
				mutate.Mutation{Op: mutate.OpModifyPressure, Pressure: "mysticism", PressureDelta: -10},
				mutate.Mutation{Op: mutate.OpUpdateRateLimit},
			)
			return expansion, nil
		},
	}
}

func warToTreaty() Template {
	return Template{
		Metadata: Metadata{
			Name:        "war_to_treaty",
			Description: "An exhausting war ends in a treaty",
			Category:    "political",
		},
		Contract: Contract{
			PressureMin: map[string]float64{"war": 80},
			Predicates: []Predicate{{
				Name: "active_war_exists",
				Check: func(ctx *Context) bool {
					return len(activeWars(ctx)) > 0
				},
			}},
			RefireCooldown: 10,
		},
		Expand: func(ctx *Context, _ selector.Result) (Expansion, error) {
			wars := activeWars(ctx)
			if len(wars) == 0 {
				return Expansion{}, fmt.Errorf("no active war")
			}
			war := wars[ctx.Rand.Intn(len(wars))]

			treaty := world.Entity{
				Kind:       world.KindOccurrence,
				Subtype:    "treaty",
				Status:     "concluded",
				Prominence: world.ProminenceRecognized,
				Tags:       map[string]any{"needs_name": true, "ended_war": true},
			}

			expansion := Expansion{Entities: []world.Entity{treaty}}
			for _, id := range []string{war.Src, war.Dst} {
				expansion.Relationships = append(expansion.Relationships, RelationshipSpec{
					Kind: "involves", Src: mutate.Pending(0), Dst: mutate.ID(id),
					Category: world.CategoryPolitical,
				})
			}
			expansion.Relationships = append(expansion.Relationships, RelationshipSpec{
				Kind: "treaty_with", Src: mutate.ID(war.Src), Dst: mutate.ID(war.Dst),
				Bidirectional: true, Strength: 0.6, Category: world.CategoryPolitical,
				CatalyzedBy: mutate.Pending(0),
			})

			expansion.Mutations = append(expansion.Mutations,
				mutate.Mutation{
					Op: mutate.OpArchiveRelationship, Target: mutate.ID(war.Src),
					ArchiveKind: "at_war_with", Counterpart: mutate.ID(war.Dst),
				},
				mutate.Mutation{Op: mutate.OpModifyPressure, Pressure: "war", PressureDelta: -30},
			)
			return expansion, nil
		},
	}
}

func activeWars(ctx *Context) []world.Relationship {
	var out []world.Relationship
	for _, rel := range ctx.World.FindRelationships(world.RelCriteria{Kind: "at_war_with"}) {
		if rel.Status != world.StatusHistorical {
			out = append(out, rel)
		}
	}
	return out
}
