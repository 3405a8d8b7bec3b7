// cmd/api/main.go
package main

import (
	"net/http"
	"os"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/briangreenhill/prplan/internal/config"
	"github.com/briangreenhill/prplan/internal/http/routes"
)

func main() {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "api").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("config error")
	}
	if err := cfg.Require("API_TOKEN", "REDIS_ADDR"); err != nil {
		logger.Fatal().Err(err).Msg("config error")
	}
	logger = logger.Level(cfg.Level())

	// Queue
	redis := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	client := asynq.NewClient(redis)
	defer client.Close()
	inspector := asynq.NewInspector(redis)
	defer inspector.Close()

	// Router / server
	s := routes.New(routes.ServerOptions{
		Logger:   logger,
		Queue:    client,
		Tasks:    inspector,
		APIToken: cfg.APIToken,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info().Str("addr", srv.Addr).Msg("starting api")
	if err := srv.ListenAndServe(); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
