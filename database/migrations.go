package database

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migration is one numbered schema file, e.g. "1_init.sql".
type Migration struct {
	Version  int64
	Name     string
	SQL      string
	Checksum string
}

// appliedMigration is a row of schema_migrations.
type appliedMigration struct {
	Name     string
	Checksum string
}

func checksum(sqlText string) string {
	sum := sha256.Sum256([]byte(sqlText))
	return hex.EncodeToString(sum[:])
}

// loadMigrations reads every file in dir of fsys, sorted by version.
// Anything that is not "<version>_<name>.sql" is an error.
func loadMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	migrations := make([]Migration, 0, len(entries))
	seen := make(map[int64]string, len(entries))
	for _, entry := range entries {
		file := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(file, ".sql") {
			return nil, fmt.Errorf("non-migration file found in migrations path: %s", file)
		}

		name := strings.TrimSuffix(file, ".sql")
		prefix, _, ok := strings.Cut(name, "_")
		if !ok {
			return nil, fmt.Errorf("malformed migration filename: %s", file)
		}
		version, err := strconv.ParseInt(prefix, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse version from %s: %w", file, err)
		}
		if prev, dup := seen[version]; dup {
			return nil, fmt.Errorf("duplicate migration version %d: %s and %s", version, prev, name)
		}
		seen[version] = name

		content, err := fs.ReadFile(fsys, path.Join(dir, file))
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", file, err)
		}

		migrations = append(migrations, Migration{
			Version:  version,
			Name:     name,
			SQL:      string(content),
			Checksum: checksum(string(content)),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

func (d *Database) createMigrationsTable(ctx context.Context) error {
	const query = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			checksum TEXT NOT NULL DEFAULT '',
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`
	if _, err := d.writeDB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

func (d *Database) appliedMigrations(ctx context.Context) (map[int64]appliedMigration, error) {
	rows, err := d.readDB.QueryContext(ctx, "SELECT version, name, checksum FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int64]appliedMigration)
	for rows.Next() {
		var (
			version int64
			row     appliedMigration
		)
		if err := rows.Scan(&version, &row.Name, &row.Checksum); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied[version] = row
	}
	return applied, rows.Err()
}

// migrate applies every migration in fsys/dir not yet recorded in
// schema_migrations, one transaction each. An applied migration whose file
// content has since changed stops startup.
func (d *Database) migrate(ctx context.Context, fsys fs.FS, dir string) (int, error) {
	if err := d.createMigrationsTable(ctx); err != nil {
		return 0, err
	}

	migrations, err := loadMigrations(fsys, dir)
	if err != nil {
		return 0, err
	}

	applied, err := d.appliedMigrations(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, m := range migrations {
		if prev, ok := applied[m.Version]; ok {
			if prev.Checksum != "" && prev.Checksum != m.Checksum {
				return count, fmt.Errorf("migration %s was modified after it was applied", m.Name)
			}
			continue
		}

		d.logger.Database("Applying migration", "version", m.Version, "name", m.Name)
		err := d.WithTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
				return fmt.Errorf("failed to execute migration %s: %w", m.Name, err)
			}
			_, err := tx.ExecContext(ctx,
				"INSERT INTO schema_migrations (version, name, checksum) VALUES (?, ?, ?)",
				m.Version, m.Name, m.Checksum)
			return err
		})
		if err != nil {
			return count, fmt.Errorf("migration %s failed: %w", m.Name, err)
		}
		count++
	}

	d.logger.Database("Database schema up to date", "applied", count, "total", len(migrations))
	return count, nil
}

func (d *Database) runMigrations(ctx context.Context) error {
	_, err := d.migrate(ctx, migrationFiles, "migrations")
	return err
}

// checkDatabaseExists reports whether path names a non-empty database file.
// In-memory databases always need initialization.
func checkDatabaseExists(path string) bool {
	if path == ":memory:" || strings.Contains(path, "mode=memory") {
		return false
	}

	if abs, err := filepath.Abs(path); err == nil {
		if stat, err := os.Stat(abs); err == nil && stat.Size() > 0 {
			return true
		}
	}
	return false
}
