package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func runCmd() *cobra.Command {
	var ticks int
	var seed int64
	var verbose bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Grow the world for a number of ticks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(ticks, seed, verbose)
		},
	}
	cmd.Flags().IntVar(&ticks, "ticks", -1, "Ticks to run (default: project config)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed override")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	return cmd
}

func runRun(ticks int, seed int64, verbose bool) error {
	cfg, def, err := loadConfigs()
	if err != nil {
		return err
	}

	logger, err := buildLogger(cfg, verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	engine, err := buildEngine(cfg, def, seed, logger)
	if err != nil {
		return err
	}

	if ticks < 0 {
		ticks = cfg.Ticks
	}

	start := time.Now()
	engine.Run(ticks)
	elapsed := time.Since(start)

	stats := engine.Stats()
	fmt.Fprintf(os.Stdout, "Ran %s ticks in %s (era: %s)\n",
		humanize.Comma(int64(stats.TicksRun)), elapsed.Round(time.Millisecond), engine.Era())
	fmt.Fprintf(os.Stdout, "  templates fired:       %s\n", humanize.Comma(int64(stats.TemplatesFired)))
	fmt.Fprintf(os.Stdout, "  entities created:      %s\n", humanize.Comma(int64(stats.EntitiesCreated)))
	fmt.Fprintf(os.Stdout, "  relationships created: %s\n", humanize.Comma(int64(stats.RelationshipsCreated)))
	fmt.Fprintf(os.Stdout, "  mutations rejected:    %s\n", humanize.Comma(int64(stats.MutationsRejected)))
	fmt.Fprintf(os.Stdout, "  world population:      %s entities, %s relationships\n",
		humanize.Comma(int64(engine.Store().EntityCount())), humanize.Comma(int64(len(engine.Store().Relationships()))))
	return nil
}
