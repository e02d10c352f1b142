// Package migrations holds the SQL schema and applies it.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed *.sql
var files embed.FS

const (
	dropAllFile      = "000_drop_all.sql"
	consolidatedFile = "000_consolidated.sql"
	upSuffix         = ".up.sql"
)

// UpFiles は .up.sql ファイル名をソート済みで返す
func UpFiles() ([]string, error) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), upSuffix) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func ensureSchemaMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		name TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`)
	return err
}

// Up は未適用のマイグレーションを順番に適用し、適用数を返す
func Up(ctx context.Context, pool *pgxpool.Pool) (int, error) {
	if err := ensureSchemaMigrations(ctx, pool); err != nil {
		return 0, fmt.Errorf("create schema_migrations: %w", err)
	}
	upFiles, err := UpFiles()
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, filename := range upFiles {
		name := strings.TrimSuffix(filename, upSuffix)

		var exists bool
		if err := pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE name=$1)", name).Scan(&exists); err != nil {
			return applied, fmt.Errorf("check migration %s: %w", name, err)
		}
		if exists {
			continue
		}

		sql, err := files.ReadFile(filename)
		if err != nil {
			return applied, err
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return applied, fmt.Errorf("migration %s: %w", name, err)
		}
		if _, err := pool.Exec(ctx, "INSERT INTO schema_migrations (name) VALUES ($1)", name); err != nil {
			return applied, fmt.Errorf("record migration %s: %w", name, err)
		}
		applied++
		slog.Info("migration completed", "migration", name)
	}
	return applied, nil
}

// DropAll は全テーブルを DROP する
func DropAll(ctx context.Context, pool *pgxpool.Pool) error {
	sql, err := files.ReadFile(dropAllFile)
	if err != nil {
		return err
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("drop all: %w", err)
	}
	return nil
}

// Consolidated は集約スキーマを適用し、全マイグレーションを適用済みとして記録する
func Consolidated(ctx context.Context, pool *pgxpool.Pool) error {
	sql, err := files.ReadFile(consolidatedFile)
	if err != nil {
		return err
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("consolidated apply: %w", err)
	}

	if err := ensureSchemaMigrations(ctx, pool); err != nil {
		return err
	}
	upFiles, err := UpFiles()
	if err != nil {
		return err
	}
	for _, filename := range upFiles {
		name := strings.TrimSuffix(filename, upSuffix)
		if _, err := pool.Exec(ctx, "INSERT INTO schema_migrations (name) VALUES ($1) ON CONFLICT DO NOTHING", name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
	}
	slog.Info("consolidated schema applied", "migrations_marked", len(upFiles))
	return nil
}
