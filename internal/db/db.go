// Copyright (c) 2026 Sentinel Team
// Sentinel - secure vault client
// This source code is licensed under the MIT license found in the LICENSE file.

package db // import "github.com/sentinel-vault/sentinel/internal/db"

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite"

	// SQL drivers for the non-default backends.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
)

var (
	//go:embed migrations
	embeddedMigrations embed.FS
	// sqlOpenFunc allows tests to override database opening behavior.
	sqlOpenFunc = sql.Open
)

// Supported reports whether dbType names a backend this package can open.
func Supported(dbType string) bool {
	switch dbType {
	case "sqlite", "postgres", "mysql":
		return true
	}
	return false
}

// Open connects to the cache database, applies pending migrations and
// returns a Store on a long-lived *bun.DB.
func Open(dbType, dsn string) (*Store, error) {
	if !Supported(dbType) {
		return nil, fmt.Errorf("unsupported database type: '%s'", dbType)
	}
	driverName := dbType
	// The pgx stdlib registers driver name "pgx"; map "postgres" to that driver.
	if dbType == "postgres" {
		driverName = "pgx"
	}
	if dbType == "sqlite" {
		if err := ensureSQLiteDir(dsn); err != nil {
			return nil, err
		}
	}
	start := time.Now()
	sqlDB, err := sqlOpenFunc(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// The cache is small and single-user; these defaults only matter for the
	// server backends and can be tuned through the environment.
	maxOpen := envInt("SENTINEL_DB_MAX_OPEN_CONNS", 4)
	maxIdle := envInt("SENTINEL_DB_MAX_IDLE_CONNS", 2)
	// In-memory SQLite databases are per connection.
	if dbType == "sqlite" && isMemoryDSN(dsn) {
		maxOpen, maxIdle = 1, 1
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(time.Duration(envInt("SENTINEL_DB_CONN_MAX_LIFETIME_SECONDS", 300)) * time.Second)
	dbLogf("db: opened %s driver in %s (max open=%d)", driverName, time.Since(start), maxOpen)

	migStart := time.Now()
	if err := RunMigrations(sqlDB, dbType); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	dbLogf("db: migrations for %s completed in %s", dbType, time.Since(migStart))

	return &Store{bun: createBunDB(sqlDB, dbType), dbType: dbType}, nil
}

func envInt(name string, def int) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func isMemoryDSN(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}

// ensureSQLiteDir creates the parent directory of a file DSN.
func ensureSQLiteDir(dsn string) error {
	if isMemoryDSN(dsn) {
		return nil
	}
	p := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	dir := filepath.Dir(p)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	return nil
}

// createBunDB constructs a *bun.DB for the provided *sql.DB and dbType.
func createBunDB(sqlDB *sql.DB, dbType string) *bun.DB {
	switch dbType {
	case "postgres":
		return bun.NewDB(sqlDB, pgdialect.New())
	case "mysql":
		return bun.NewDB(sqlDB, mysqldialect.New())
	default:
		return bun.NewDB(sqlDB, sqlitedialect.New())
	}
}

// RunMigrations applies the embedded migrations for dbType that have not been
// recorded in schema_migrations yet, each in its own transaction.
func RunMigrations(db *sql.DB, dbType string) error {
	migrationsPath := fmt.Sprintf("migrations/%s", dbType)

	entries, err := fs.ReadDir(embeddedMigrations, migrationsPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read embedded migrations (%s): %w", migrationsPath, err)
	}

	var ups []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			ups = append(ups, e.Name())
		}
	}
	sort.Strings(ups)

	if err := ensureSchemaMigrationsTable(db, dbType); err != nil {
		return fmt.Errorf("failed to ensure schema_migrations table: %w", err)
	}

	for _, fname := range ups {
		version := strings.TrimSuffix(fname, ".up.sql")

		var exists int
		err := db.QueryRow(placeholders(dbType, "SELECT 1 FROM schema_migrations WHERE version = ?"), version).Scan(&exists)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to check migration version %s: %w", version, err)
		}

		p := path.Join(migrationsPath, fname)
		data, err := embeddedMigrations.ReadFile(p)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", p, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %s: %w", version, err)
		}
		for _, stmt := range splitStatements(string(data)) {
			if _, err := tx.Exec(stmt); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("failed to execute migration %s: %w", version, err)
			}
		}
		if _, err := tx.Exec(placeholders(dbType, "INSERT INTO schema_migrations(version, applied_at) VALUES(?, ?)"), version, time.Now().UTC()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %s: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", version, err)
		}
		dbLogf("db: applied migration %s", version)
	}
	return nil
}

// splitStatements drops "--" comment lines and splits on ";". The MySQL
// driver refuses multi-statement Exec by default.
func splitStatements(script string) []string {
	var kept []string
	for _, line := range strings.Split(script, "\n") {
		if !strings.HasPrefix(strings.TrimSpace(line), "--") {
			kept = append(kept, line)
		}
	}
	var out []string
	for _, part := range strings.Split(strings.Join(kept, "\n"), ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

// placeholders rewrites "?" to "$n" for postgres.
func placeholders(dbType, query string) string {
	if dbType != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func ensureSchemaMigrationsTable(db *sql.DB, dbType string) error {
	// MySQL cannot index TEXT without a length.
	if dbType == "mysql" {
		_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (version VARCHAR(191) PRIMARY KEY, applied_at TIMESTAMP NULL)`)
		return err
	}
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY, applied_at TIMESTAMP)`)
	return err
}

// RunMaintenance compacts the cache. For SQLite this runs VACUUM and a WAL
// checkpoint; postgres gets VACUUM ANALYZE; mysql is left alone.
func (s *Store) RunMaintenance(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	switch s.dbType {
	case "sqlite":
		if _, err := ExecRaw(ctx, s.bun, "PRAGMA optimize"); err != nil {
			dbLogf("db: sqlite optimize failed (ignored): %v", err)
		}
		if _, err := ExecRaw(ctx, s.bun, "VACUUM"); err != nil {
			return fmt.Errorf("sqlite vacuum failed: %w", err)
		}
		_, _ = ExecRaw(ctx, s.bun, "PRAGMA wal_checkpoint(TRUNCATE)")
	case "postgres":
		if _, err := ExecRaw(ctx, s.bun, "VACUUM ANALYZE"); err != nil {
			return fmt.Errorf("postgres vacuum failed: %w", err)
		}
	}
	return nil
}
