package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"worldloom/internal/sim"
	"worldloom/internal/world"
)

// inspectTicks is shared by the inspect subcommands: -1 runs the project
// config's tick count before reporting, 0 inspects the seeded world as-is.
func inspectCmd() *cobra.Command {
	var ticks int
	var seed int64
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Inspect the world after a deterministic run",
	}
	cmd.PersistentFlags().IntVar(&ticks, "ticks", -1, "Ticks to run before inspecting (default: project config)")
	cmd.PersistentFlags().Int64Var(&seed, "seed", 0, "Random seed override")
	cmd.AddCommand(inspectListCmd(&ticks, &seed))
	cmd.AddCommand(inspectEntityCmd(&ticks, &seed))
	cmd.AddCommand(inspectPressuresCmd(&ticks, &seed))
	cmd.AddCommand(inspectStatusCmd(&ticks, &seed))
	return cmd
}

func inspectEngine(ticks int, seed int64) (*sim.Engine, error) {
	cfg, def, err := loadConfigs()
	if err != nil {
		return nil, err
	}
	engine, err := buildEngine(cfg, def, seed, zap.NewNop())
	if err != nil {
		return nil, err
	}
	if ticks < 0 {
		ticks = cfg.Ticks
	}
	engine.Run(ticks)
	return engine, nil
}

func inspectListCmd(ticks *int, seed *int64) *cobra.Command {
	var kind string
	var subtype string
	var status string
	var tag string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entities in the world",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := inspectEngine(*ticks, *seed)
			if err != nil {
				return err
			}
			entities := engine.Store().FindEntities(world.Criteria{
				Kind:    world.Kind(kind),
				Subtype: subtype,
				Status:  status,
				HasTag:  tag,
			})
			if len(entities) == 0 {
				fmt.Fprintln(os.Stdout, "No entities found.")
				return nil
			}
			for _, entity := range entities {
				name := entity.Name
				if name == "" {
					name = "(unnamed)"
				}
				fmt.Fprintf(os.Stdout, "%s  %s (%s) [%s]\n", entity.ID, name, entity.Kind, entity.Prominence)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "Entity kind to filter")
	cmd.Flags().StringVar(&subtype, "subtype", "", "Subtype to filter")
	cmd.Flags().StringVar(&status, "status", "", "Status to filter")
	cmd.Flags().StringVar(&tag, "tag", "", "Tag to filter")
	return cmd
}

func inspectEntityCmd(ticks *int, seed *int64) *cobra.Command {
	return &cobra.Command{
		Use:   "entity <id>",
		Short: "Show one entity and its relationships",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := inspectEngine(*ticks, *seed)
			if err != nil {
				return err
			}
			entity, ok := engine.Store().GetEntity(args[0])
			if !ok {
				return fmt.Errorf("entity %s not found", args[0])
			}

			fmt.Fprintf(os.Stdout, "%s (%s", entity.Name, entity.Kind)
			if entity.Subtype != "" {
				fmt.Fprintf(os.Stdout, "/%s", entity.Subtype)
			}
			fmt.Fprintf(os.Stdout, ")\n")
			fmt.Fprintf(os.Stdout, "  id:         %s\n", entity.ID)
			fmt.Fprintf(os.Stdout, "  prominence: %s\n", entity.Prominence)
			if entity.Status != "" {
				fmt.Fprintf(os.Stdout, "  status:     %s\n", entity.Status)
			}
			if entity.Culture != "" {
				fmt.Fprintf(os.Stdout, "  culture:    %s\n", entity.Culture)
			}
			if entity.Coordinates != nil {
				fmt.Fprintf(os.Stdout, "  position:   (%.1f, %.1f, %.1f)\n",
					entity.Coordinates.X, entity.Coordinates.Y, entity.Coordinates.Z)
			}
			for key, value := range entity.Tags {
				fmt.Fprintf(os.Stdout, "  tag %s: %v\n", key, value)
			}
			if len(entity.Links) > 0 {
				fmt.Fprintln(os.Stdout, "  relationships:")
				for _, rel := range entity.Links {
					marker := ""
					if rel.Status == world.StatusHistorical {
						marker = " (historical)"
					}
					fmt.Fprintf(os.Stdout, "    %s -[%s %.2f]-> %s%s\n", rel.Src, rel.Kind, rel.Strength, rel.Dst, marker)
				}
			}
			return nil
		},
	}
}

func inspectPressuresCmd(ticks *int, seed *int64) *cobra.Command {
	return &cobra.Command{
		Use:   "pressures",
		Short: "Show current pressure values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := inspectEngine(*ticks, *seed)
			if err != nil {
				return err
			}
			tracker := engine.Pressures()
			for _, id := range tracker.IDs() {
				fmt.Fprintf(os.Stdout, "%-20s %6.2f\n", id, tracker.Get(id))
			}
			return nil
		},
	}
}

func inspectStatusCmd(ticks *int, seed *int64) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show tick, era and population counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := inspectEngine(*ticks, *seed)
			if err != nil {
				return err
			}
			store := engine.Store()
			fmt.Fprintf(os.Stdout, "tick %d", engine.Tick())
			if era := engine.Era(); era != "" {
				fmt.Fprintf(os.Stdout, " (%s)", era)
			}
			fmt.Fprintf(os.Stdout, ": %d entities, %d relationships\n", store.EntityCount(), len(store.Relationships()))
			for _, kind := range engine.Definition().EntityKinds {
				if count := store.CountByKind(world.Kind(kind.Name), ""); count > 0 {
					fmt.Fprintf(os.Stdout, "  %-12s %d\n", kind.Name, count)
				}
			}
			return nil
		},
	}
}
