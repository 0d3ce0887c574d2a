package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
	"strconv"
	"strings"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// migration is one embedded schema step, ordered by its numeric prefix.
type migration struct {
	version int
	name    string
	sql     string
}

// migrate brings the schema up to date. Applied versions are tracked in
// schema_migrations; the first migration creates that table, so the
// applied-version query is allowed to fail on a fresh database.
func (s *Store) migrate(ctx context.Context) error {
	pending, err := loadMigrations()
	if err != nil {
		return err
	}

	applied := map[int]bool{}
	rows, err := s.pool.Query(ctx, "SELECT version FROM schema_migrations")
	if err == nil {
		for rows.Next() {
			var v int
			if err := rows.Scan(&v); err != nil {
				rows.Close()
				return fmt.Errorf("scanning applied migrations: %w", err)
			}
			applied[v] = true
		}
		rows.Close()
	}

	for _, m := range pending {
		if applied[m.version] {
			continue
		}

		slog.Info("applying migration", "version", m.version, "name", m.name)

		if _, err := s.pool.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("applying migration %s: %w", m.name, err)
		}
		if _, err := s.pool.Exec(ctx,
			"INSERT INTO schema_migrations (version) VALUES ($1) ON CONFLICT DO NOTHING",
			m.version,
		); err != nil {
			return fmt.Errorf("recording migration %s: %w", m.name, err)
		}
	}

	return nil
}

// loadMigrations parses the embedded SQL files. Filenames carry a numeric
// prefix ("001_create_users.sql"); anything else is skipped.
func loadMigrations() ([]migration, error) {
	var out []migration

	err := fs.WalkDir(migrationFiles, "migrations", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(d.Name(), ".sql") {
			return err
		}

		prefix, _, ok := strings.Cut(d.Name(), "_")
		if !ok {
			return nil
		}
		version, err := strconv.Atoi(prefix)
		if err != nil {
			return nil
		}

		content, err := migrationFiles.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", d.Name(), err)
		}

		out = append(out, migration{version: version, name: d.Name(), sql: string(content)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading migrations: %w", err)
	}

	slices.SortFunc(out, func(a, b migration) int { return a.version - b.version })
	return out, nil
}
