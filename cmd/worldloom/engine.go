package main

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"worldloom/internal/config"
	"worldloom/internal/sim"
	"worldloom/internal/template"
)

const projectConfigPath = "worldloom.yaml"

func loadConfigs() (*config.ProjectConfig, *config.WorldDef, error) {
	cfg, err := config.LoadProjectConfig(projectConfigPath)
	if err != nil {
		return nil, nil, err
	}
	def, err := config.LoadWorldDef(cfg.World)
	if err != nil {
		return nil, nil, err
	}
	return cfg, def, nil
}

// buildEngine assembles an engine with the builtin template library. A seed
// of 0 falls back to the project config's seed.
func buildEngine(cfg *config.ProjectConfig, def *config.WorldDef, seed int64, logger *zap.Logger) (*sim.Engine, error) {
	if seed == 0 {
		seed = cfg.Seed
	}

	registry := template.NewRegistry()
	for _, tmpl := range template.Builtin() {
		if err := registry.Register(tmpl); err != nil {
			return nil, fmt.Errorf("registering builtin templates: %w", err)
		}
	}

	return sim.New(def, registry, sim.Options{
		Seed:   seed,
		Logger: logger,
	})
}

func buildLogger(cfg *config.ProjectConfig, verbose bool) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	switch cfg.Logging.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	}
	if verbose {
		zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	return logger, nil
}
