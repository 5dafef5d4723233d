// Package database opens the SQL connection pool used by the tracker and
// applies the embedded schema migrations for SQLite and PostgreSQL.
package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver
)

//go:embed schema/*.sql schema/postgres/*.sql
var schemaFS embed.FS

// schemaType is the migration file prefix, e.g. schema/tracker_001.sql.
const schemaType = "tracker"

// Dialect represents the database dialect.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// ParseDialect parses a dialect string.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(s) {
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	case "postgres", "postgresql", "pg":
		return DialectPostgres, nil
	default:
		return "", fmt.Errorf("unknown dialect: %s", s)
	}
}

// Open opens a connection pool for the given dialect and verifies it with a ping.
// For SQLite the dsn is a file path (parent directories are created) or ":memory:".
func Open(ctx context.Context, dialect Dialect, dsn string) (*sql.DB, error) {
	switch dialect {
	case DialectSQLite:
		return openSQLite(ctx, dsn)
	case DialectPostgres:
		return openPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("unsupported dialect: %s", dialect)
	}
}

func openSQLite(ctx context.Context, dsn string) (*sql.DB, error) {
	memory := dsn == ":memory:"
	if !memory {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	// Pragmas go in the DSN so every pooled connection gets them.
	db, err := sql.Open("sqlite", sqliteDSN(dsn))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if memory {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

func sqliteDSN(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	pragmas := []string{
		"_pragma=foreign_keys(1)",
		"_pragma=busy_timeout(5000)",
	}
	if dsn != ":memory:" {
		pragmas = append(pragmas, "_pragma=journal_mode(WAL)", "_pragma=synchronous(NORMAL)")
	}
	return dsn + sep + strings.Join(pragmas, "&")
}

func openPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate applies every embedded migration that has not been recorded in
// the _migrations table yet. Each migration runs in its own transaction.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect) error {
	createTable := `
		CREATE TABLE IF NOT EXISTS _migrations (
			version INTEGER PRIMARY KEY,
			applied_at TEXT DEFAULT (datetime('now'))
		)`
	dir := "schema"
	if dialect == DialectPostgres {
		createTable = `
		CREATE TABLE IF NOT EXISTS _migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`
		dir = "schema/postgres"
	}

	if _, err := db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return err
	}

	entries, err := schemaFS.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read schema dir: %w", err)
	}

	prefix := schemaType + "_"
	var migrations []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), prefix) && strings.HasSuffix(e.Name(), ".sql") {
			migrations = append(migrations, e.Name())
		}
	}
	sort.Strings(migrations)

	record := Rebind(dialect, "INSERT INTO _migrations (version) VALUES (?)")
	for _, name := range migrations {
		version, err := migrationVersion(name, prefix)
		if err != nil {
			return err
		}
		if applied[version] {
			continue
		}

		content, err := schemaFS.ReadFile(path.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		if _, err := tx.ExecContext(ctx, string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, record, version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", name, err)
		}
	}
	return nil
}

func appliedVersions(ctx context.Context, db *sql.DB) (map[int]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM _migrations")
	if err != nil {
		return nil, fmt.Errorf("query migrations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan migration version: %w", err)
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate migrations: %w", err)
	}
	return applied, nil
}

// migrationVersion extracts the version from a file name,
// e.g. "tracker_001.sql" with prefix "tracker_" returns 1.
func migrationVersion(name, prefix string) (int, error) {
	s := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".sql")
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid migration name %s: %w", name, err)
	}
	return v, nil
}

// Rebind rewrites ? placeholders into the dialect's form ($1, $2, ... for PostgreSQL).
func Rebind(dialect Dialect, query string) string {
	if dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$")
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ForUpdate returns the row-locking suffix for a SELECT inside a write
// transaction. SQLite serializes writers itself and has no FOR UPDATE.
func ForUpdate(dialect Dialect) string {
	if dialect == DialectPostgres {
		return " FOR UPDATE"
	}
	return ""
}
