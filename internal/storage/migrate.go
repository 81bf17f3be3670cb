package storage

import (
	"context"
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed migrations/*.sql migrations/manifest.yaml
var migrationsFS embed.FS

type migrationManifest struct {
	Migrations []migrationRef `yaml:"migrations"`
}

type migrationRef struct {
	ID          string `yaml:"id"`
	File        string `yaml:"file"`
	Description string `yaml:"description"`
}

func loadManifest() (*migrationManifest, error) {
	data, err := migrationsFS.ReadFile("migrations/manifest.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read migration manifest: %w", err)
	}

	var manifest migrationManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse migration manifest: %w", err)
	}

	if len(manifest.Migrations) == 0 {
		return nil, fmt.Errorf("migration manifest is empty")
	}
	return &manifest, nil
}

// Migrate applies all pending migrations in manifest order. Every migration
// in the history is additive; already-applied ids are skipped.
func (p *PostgresClient) Migrate(ctx context.Context) error {
	manifest, err := loadManifest()
	if err != nil {
		return err
	}

	_, err = p.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	for _, m := range manifest.Migrations {
		var applied bool
		err := p.pool.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE id = $1)
		`, m.ID).Scan(&applied)
		if err != nil {
			return fmt.Errorf("failed to check migration %s: %w", m.ID, err)
		}
		if applied {
			continue
		}

		sql, err := migrationsFS.ReadFile("migrations/" + m.File)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", m.ID, err)
		}

		tx, err := p.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		if _, err := tx.Exec(ctx, string(sql)); err != nil {
			tx.Rollback(ctx)
			return fmt.Errorf("migration %s failed: %w", m.ID, err)
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO schema_migrations (id) VALUES ($1)
		`, m.ID); err != nil {
			tx.Rollback(ctx)
			return fmt.Errorf("failed to record migration %s: %w", m.ID, err)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", m.ID, err)
		}
	}

	return nil
}
