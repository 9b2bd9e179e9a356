package main

import (
	"context"

	"github.com/xelth-com/brokerledger/internal/config"
	"github.com/xelth-com/brokerledger/internal/database"
	"github.com/xelth-com/brokerledger/internal/logger"
	"github.com/xelth-com/brokerledger/internal/store"
	"github.com/xelth-com/brokerledger/internal/tasks"
	"github.com/xelth-com/brokerledger/internal/unitmaster"
)

// env is the opened ledger a command works against.
type env struct {
	cfg        *config.Config
	db         *database.DB
	store      *store.Store
	reconciler *tasks.Reconciler
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, err
	}
	db, err := database.Connect(cfg.Database, log)
	if err != nil {
		return nil, err
	}
	st := store.New(db.DB, log)
	if err := st.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	layouts := unitmaster.NewRegistry(cfg.Layouts.Sources, cfg.Layouts.CacheTTL)
	return &env{
		cfg:        cfg,
		db:         db,
		store:      st,
		reconciler: tasks.NewReconciler(st, tasks.NewEvaluator(layouts, cfg.Location()), log),
	}, nil
}

func (e *env) Close() error {
	return e.db.Close()
}
