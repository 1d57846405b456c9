package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"worldloom/internal/mcp"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func serveCmd() *cobra.Command {
	var ticks int
	var seed int64
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Grow the world, then expose it over MCP on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(ticks, seed)
		},
	}
	cmd.Flags().IntVar(&ticks, "ticks", -1, "Ticks to run before serving (default: project config)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed override")
	return cmd
}

func runServe(ticks int, seed int64) error {
	cfg, def, err := loadConfigs()
	if err != nil {
		return err
	}

	engine, err := buildEngine(cfg, def, seed, zap.NewNop())
	if err != nil {
		return err
	}
	if ticks < 0 {
		ticks = cfg.Ticks
	}
	engine.Run(ticks)

	server := mcp.NewServer(engine, version)
	return server.Run(context.Background(), &sdk.StdioTransport{})
}
