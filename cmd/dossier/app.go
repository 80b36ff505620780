package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"dossier/internal/gateway"
	"dossier/internal/intake"
	"dossier/internal/objstore"
	"dossier/internal/store"
	"dossier/internal/surveil"
)

// app bundles the wired service graph behind a single Close.
type app struct {
	records  *store.Store
	objects  *objstore.Store
	engine   *surveil.Engine
	pipeline *intake.Pipeline
}

// openApp validates the loaded config and wires record store, object
// store, gateway, surveillance engine, and intake pipeline.
func openApp(ctx context.Context) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	records, err := store.New(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("open record store: %w", err)
	}
	objects, err := objstore.New(cfg.ObjectsDir())
	if err != nil {
		records.Close()
		return nil, fmt.Errorf("open object store: %w", err)
	}
	client, err := gateway.NewClientFromConfig(ctx, cfg)
	if err != nil {
		records.Close()
		return nil, fmt.Errorf("build gateway: %w", err)
	}

	logger.Debug("app wired",
		zap.String("database", cfg.DatabasePath()),
		zap.String("objects", cfg.ObjectsDir()),
		zap.String("provider", cfg.LLM.Provider),
		zap.Int("sweep_workers", cfg.SweepWorkers()),
	)

	return &app{
		records:  records,
		objects:  objects,
		engine:   surveil.New(client, objects, records, surveil.Config{Workers: cfg.SweepWorkers()}),
		pipeline: intake.New(client, objects, records),
	}, nil
}

// Close releases held resources. The object store is directory-backed
// and has nothing to release.
func (a *app) Close() {
	if err := a.records.Close(); err != nil {
		logger.Warn("closing record store", zap.Error(err))
	}
}
