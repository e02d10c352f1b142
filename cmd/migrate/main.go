package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/momentumgaming/backend/internal/config"
	"github.com/momentumgaming/backend/internal/logging"
	"github.com/momentumgaming/backend/internal/repository"
	"github.com/momentumgaming/backend/migrations"
)

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: migrate [command]

Commands:
  (default)   差分マイグレーションを適用
  reset       全テーブルを DROP し、集約スキーマで再作成
  fresh       全テーブルを DROP し、全マイグレーションを順番に適用`)
	os.Exit(1)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logging.Setup(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "migrate"})

	ctx := context.Background()
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL, 2)
	if err != nil {
		logging.Fatal("connect failed", "error", err)
	}
	defer pool.Close()

	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "":
		runIncremental(ctx, pool)
	case "reset":
		must(migrations.DropAll(ctx, pool), "drop all failed")
		slog.Info("all tables dropped")
		must(migrations.Consolidated(ctx, pool), "consolidated apply failed")
	case "fresh":
		must(migrations.DropAll(ctx, pool), "drop all failed")
		slog.Info("all tables dropped")
		runIncremental(ctx, pool)
	default:
		usage()
	}
}

func runIncremental(ctx context.Context, pool *pgxpool.Pool) {
	applied, err := migrations.Up(ctx, pool)
	must(err, "migration failed")
	if applied == 0 {
		slog.Info("all migrations already applied")
	} else {
		slog.Info("migrations completed", "count", applied)
	}
}

func must(err error, msg string) {
	if err != nil {
		logging.Fatal(msg, "error", err)
	}
}
