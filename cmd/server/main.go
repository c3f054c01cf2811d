// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/bluff/internal/cache"
	"github.com/jason-s-yu/bluff/internal/config"
	"github.com/jason-s-yu/bluff/internal/game"
	"github.com/jason-s-yu/bluff/internal/handlers"
	"github.com/jason-s-yu/bluff/internal/middleware"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "", "optional yaml config file")
	flag.Parse()

	logger := logrus.New()
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	level, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warnf("unknown log level %q, using info", cfg.Server.LogLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	opts := []game.RoomOption{game.WithLogger(logger)}
	if cfg.Redis.Addr != "" {
		rec, err := cache.NewRedisRecorder(cfg.Redis.Addr, cfg.Redis.DB, cfg.Redis.Queue)
		if err != nil {
			logger.Fatalf("action log: %v", err)
		}
		defer rec.Close()
		opts = append(opts, game.WithRecorder(rec))
		logger.Infof("Publishing room actions to redis %s queue %s", cfg.Redis.Addr, cfg.Redis.Queue)
	}
	reg := game.NewRegistry(cfg.Settings(), opts...)

	mux := http.NewServeMux()
	mux.Handle("/ws", middleware.LogMiddleware(logger)(
		handlers.RoomWSHandler(logger, reg, cfg.Difficulty()),
	))
	mux.Handle("/rooms", middleware.LogMiddleware(logger)(handlers.ListRoomsHandler(reg)))
	mux.Handle("/healthz", handlers.HealthHandler(reg))

	srv := &http.Server{Addr: cfg.Addr(), Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		logger.Info("Shutting down")
		reg.CloseAll()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Infof("Running on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("server exited: %v", err)
	}
}
