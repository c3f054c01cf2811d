// cmd/historian/main.go is an asynchronous historian service that pops room actions from the
// Redis queue and persists them to PostgreSQL.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/bluff/internal/cache"
	"github.com/jason-s-yu/bluff/internal/config"
	"github.com/jason-s-yu/bluff/internal/database"
	"github.com/jason-s-yu/bluff/internal/historian"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "", "optional yaml config file")
	batchSize := flag.Int("batch", 20, "actions per database transaction")
	flushDelay := flag.Duration("flush", 500*time.Millisecond, "maximum time an action waits in a batch")
	flag.Parse()

	logger := logrus.New()
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Server.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	if cfg.Redis.Addr == "" || cfg.Database.DSN == "" {
		logger.Fatal("historian needs BLUFF_REDIS_ADDR and BLUFF_DATABASE_DSN")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	queue, err := cache.NewRedisRecorder(cfg.Redis.Addr, cfg.Redis.DB, cfg.Redis.Queue)
	if err != nil {
		logger.Fatalf("redis: %v", err)
	}
	defer queue.Close()

	pool, err := database.Connect(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	if err := database.EnsureSchema(ctx, pool); err != nil {
		logger.Fatalf("postgres: %v", err)
	}

	svc := historian.NewService(queue, database.NewActionStore(pool), logger, *batchSize, *flushDelay)
	svc.Run(ctx)
	logger.Info("Historian shutdown complete.")
}
