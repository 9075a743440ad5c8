package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/noah-isme/snow-school-api/migrations"
	"github.com/noah-isme/snow-school-api/pkg/config"
	"github.com/noah-isme/snow-school-api/pkg/database"
	"github.com/noah-isme/snow-school-api/pkg/logger"
)

const usage = `usage: migrate [-dir .] <up|down|status|redo|reset|version> [args]`

func main() {
	var dir string
	flag.StringVar(&dir, "dir", ".", "Migration directory inside the embedded filesystem")
	flag.Usage = func() { log.Println(usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(ctx, db.DB, migrations.FS, dir, args[0], args[1:]...); err != nil {
		logr.Fatal("migration failed", zap.String("command", args[0]), zap.Error(err))
	}
	logr.Info("migration finished", zap.String("command", args[0]))
}
