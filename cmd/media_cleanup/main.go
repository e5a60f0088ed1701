package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"foodgram/internal/config"
	"foodgram/internal/database"
	"foodgram/internal/pkg/imagestore"
	"foodgram/internal/pkg/logger"
	"foodgram/internal/repository"
)

func main() {
	grace := flag.Duration("grace", time.Hour, "skip files modified more recently than this")
	schedule := flag.String("schedule", "", "cron schedule (e.g. \"@daily\"); empty runs once and exits")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zlog, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	db, err := database.Connect(cfg.DatabaseURL, zlog)
	if err != nil {
		zlog.Fatalw("db connect failed", "error", err)
	}
	store := imagestore.New(cfg.MediaDir, cfg.MediaURL)

	if *schedule == "" {
		if err := prune(context.Background(), db, store, *grace, zlog); err != nil {
			zlog.Fatalw("media cleanup failed", "error", err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := cron.New()
	if _, err := c.AddFunc(*schedule, func() {
		if err := prune(ctx, db, store, *grace, zlog); err != nil {
			zlog.Errorw("media cleanup failed", "error", err)
		}
	}); err != nil {
		zlog.Fatalw("invalid schedule", "schedule", *schedule, "error", err)
	}
	c.Start()
	zlog.Infow("media cleanup scheduled", "schedule", *schedule)

	<-ctx.Done()
	<-c.Stop().Done()
}

func prune(ctx context.Context, db *gorm.DB, store *imagestore.Store, grace time.Duration, log *zap.SugaredLogger) error {
	urls, err := repository.NewRecipeRepository(db).ImageURLs(ctx)
	if err != nil {
		return err
	}
	keep := make(map[string]bool, len(urls))
	for _, u := range urls {
		keep[u] = true
	}

	removed, err := store.Prune(keep, grace)
	for _, u := range removed {
		log.Debugw("orphan image removed", "url", u)
	}
	if err != nil {
		return err
	}
	log.Infow("media cleanup completed", "referenced", len(keep), "removed", len(removed))
	return nil
}
