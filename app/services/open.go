package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"project-tracker/app/config"
	"project-tracker/app/database"
)

// Open builds the Store selected by cfg.Store.Backend, migrating the SQL
// schema or ensuring the Neo4j constraints before returning it.
func Open(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (Store, error) {
	entry := log.WithField("backend", cfg.Store.Backend)

	switch cfg.Store.Backend {
	case config.BackendNeo4j:
		driver, err := config.InitNeo4j(ctx, cfg.Neo4j)
		if err != nil {
			return nil, err
		}
		store := NewGraphStore(driver, cfg.Neo4j.Database)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close(ctx)
			return nil, err
		}
		entry.WithField("uri", cfg.Neo4j.URI).Info("connected to neo4j")
		return store, nil

	case config.BackendSQLite, config.BackendPostgres:
		dialect, err := database.ParseDialect(cfg.Store.Backend)
		if err != nil {
			return nil, err
		}
		db, err := database.Open(ctx, dialect, cfg.Store.DSN)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(ctx, db, dialect); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate %s: %w", dialect, err)
		}
		entry.Info("database ready")
		return NewSQLStore(db, dialect), nil

	default:
		return nil, fmt.Errorf("unsupported store backend: %q", cfg.Store.Backend)
	}
}
