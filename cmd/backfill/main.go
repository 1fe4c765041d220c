// Command backfill copies local_path and folder_name from metadata-only
// documents onto uploaded documents of the same owner and file name.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"docsync/internal/backfill"
	"docsync/internal/config"
	"docsync/internal/database"
	"docsync/internal/logger"
	"docsync/internal/repository/postgres"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "Report matches without writing")
	flag.Parse()

	cfg := config.Load()

	loc, err := cfg.LogLocation()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.IsDevelopment(), loc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, *dryRun); err != nil {
		log.Error("backfill_failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.AppConfig, log *zap.Logger, dryRun bool) error {
	db, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer db.Close()

	rep, err := backfill.New(postgres.NewDocumentPostgres(db), log, dryRun).Run(ctx)
	if err != nil {
		return fmt.Errorf("%w (updated %d before failure)", err, rep.Updated)
	}

	fmt.Printf("owners=%d checked=%d updated=%d unmatched=%d ambiguous=%d dry_run=%t\n",
		rep.Owners, rep.Checked, rep.Updated, rep.Unmatched, rep.Ambiguous, dryRun)
	return nil
}
