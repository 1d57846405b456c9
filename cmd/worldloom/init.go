package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	var projectName string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a new worldloom project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(projectName) == "" {
				return fmt.Errorf("--name is required")
			}
			return runInit(projectName)
		},
	}
	cmd.Flags().StringVar(&projectName, "name", "", "Project name")
	return cmd
}

func runInit(projectName string) error {
	worldPath := "world.yaml"
	if _, err := os.Stat(projectConfigPath); err == nil {
		return fmt.Errorf("%s already exists", projectConfigPath)
	}
	if _, err := os.Stat(worldPath); err == nil {
		return fmt.Errorf("%s already exists", worldPath)
	}

	configContents := fmt.Sprintf("project: %s\nversion: 1\nseed: 1\nticks: 100\nworld: %s\n\nlogging:\n  level: info\n", projectName, worldPath)
	if err := os.WriteFile(projectConfigPath, []byte(configContents), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", projectConfigPath, err)
	}
	if err := os.WriteFile(worldPath, []byte(starterWorld), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", worldPath, err)
	}
	return nil
}

const starterWorld = `version: 1

entity_kinds:
  - name: npc
    statuses: [alive, dead, missing]
    coordinates: true
  - name: location
    statuses: [thriving, declining, ruined]
    coordinates: true
  - name: faction
    statuses: [active, disbanded]
  - name: occurrence

relationship_kinds:
  - name: located_in
    category: spatial
  - name: leader_of
    category: political
  - name: member_of
    category: political
    cooldown: 5
  - name: allied_with
    category: political
    cooldown: 10
  - name: at_war_with
    category: political
    cooldown: 25
  - name: treaty_with
    category: political
  - name: involves
    category: political

pressures:
  - id: unrest
    initial: 30
    growth_rate: 1.5
    decay_rate: 0.5
    baseline: 10
  - id: war
    initial: 0
    growth_rate: 0.6
  - id: mysticism
    initial: 20
    growth_rate: 0.8
    decay_rate: 0.3
    baseline: 20

eras:
  - name: age_of_founding
    start_tick: 0
  - name: age_of_strife
    start_tick: 60

selection:
  hub_penalty_strength: 0.25
  cross_culture_penalty: 0.5
  saturation_threshold: 0.2

entities:
  - id: seed-town
    kind: location
    subtype: town
    name: Graymoor
    status: thriving
    prominence: recognized
    coordinates: [50, 50, 0]
    tags: { mystic: true }
  - id: seed-elder
    kind: npc
    subtype: hero
    name: Aldous
    status: alive
    prominence: recognized
  - id: seed-smith
    kind: npc
    subtype: commoner
    name: Brena
    status: alive
  - id: seed-scout
    kind: npc
    subtype: veteran
    name: Corvin
    status: alive

relationships:
  - kind: located_in
    src: seed-elder
    dst: seed-town
  - kind: located_in
    src: seed-smith
    dst: seed-town
`
