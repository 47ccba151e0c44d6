package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/lib/pq"

	"github.com/kanna-admin/kanna/internal/config"
)

const createMigrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	name       TEXT PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config file")
	listOnly := flag.Bool("list", false, "list tables and applied migrations, then exit")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	dir := cfg.Database.MigrationsDir
	if flag.NArg() > 0 {
		dir = flag.Arg(0)
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("ping: %v", err)
	}
	log.Println("Connected to database")

	if *listOnly {
		if err := listTables(ctx, db, os.Stdout); err != nil {
			log.Fatal(err)
		}
		return
	}

	files, err := migrationFiles(dir)
	if err != nil {
		log.Fatalf("read migrations dir %s: %v", dir, err)
	}

	okCount, skipCount, err := applyMigrations(ctx, db, dir, files, os.Stdout)
	log.Printf("Done: %d applied, %d already applied", okCount, skipCount)
	if err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	log.Println("Migrations complete")
}

// migrationFiles returns the .sql files in dir sorted by name.
func migrationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// applyMigrations runs each file not yet recorded in schema_migrations in
// its own transaction. It stops at the first failure so later files never
// run against a half-migrated schema.
func applyMigrations(ctx context.Context, db *sql.DB, dir string, files []string, out io.Writer) (applied, skipped int, err error) {
	if _, err := db.ExecContext(ctx, createMigrationsTable); err != nil {
		return 0, 0, fmt.Errorf("create schema_migrations: %w", err)
	}

	for _, f := range files {
		var done bool
		err := db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE name = $1)`, f,
		).Scan(&done)
		if err != nil {
			return applied, skipped, fmt.Errorf("check %s: %w", f, err)
		}
		if done {
			skipped++
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, f))
		if err != nil {
			return applied, skipped, fmt.Errorf("read %s: %w", f, err)
		}
		if strings.TrimSpace(string(data)) == "" {
			continue
		}

		fmt.Fprintf(out, "  %s ... ", f)
		if err := runOne(ctx, db, f, string(data)); err != nil {
			fmt.Fprintf(out, "ERROR: %v\n", err)
			return applied, skipped, err
		}
		fmt.Fprintln(out, "OK")
		applied++
	}
	return applied, skipped, nil
}

func runOne(ctx context.Context, db *sql.DB, name, content string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if _, err := tx.ExecContext(ctx, content); err != nil {
		tx.Rollback()
		return fmt.Errorf("%s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, name); err != nil {
		tx.Rollback()
		return fmt.Errorf("record %s: %w", name, err)
	}
	return tx.Commit()
}

func listTables(ctx context.Context, db *sql.DB, out io.Writer) error {
	rows, err := db.QueryContext(ctx,
		"SELECT tablename FROM pg_tables WHERE schemaname='public' ORDER BY tablename")
	if err != nil {
		return err
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return err
		}
		fmt.Fprintln(out, " ", t)
		n++
	}
	if err := rows.Err(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Total: %d tables\n", n)
	return nil
}
