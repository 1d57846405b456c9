// Package mcp exposes a running world over the Model Context Protocol so
// external tools can inspect entities, relationships and pressures. Every
// tool is read-only; the simulation mutates only through its own tick loop.
package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"worldloom/internal/sim"
)

type Server struct {
	engine *sim.Engine
	mcp    *sdk.Server
}

func NewServer(engine *sim.Engine, version string) *Server {
	s := &Server{
		engine: engine,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "worldloom",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}
