package main

import (
	"fmt"
	"os"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/briangreenhill/prplan/internal/config"
	"github.com/briangreenhill/prplan/internal/jobs"
	"github.com/briangreenhill/prplan/pkg/garmin"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "worker").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("config error")
	}
	logger = logger.Level(cfg.Level())

	client := garmin.NewClient(
		garmin.WithBaseURL(cfg.Garmin.BaseURL),
		garmin.WithTokenURL(cfg.Garmin.TokenURL),
		garmin.WithClientID(cfg.Garmin.ClientID),
		garmin.WithTokenDir(cfg.TokenDir),
	)

	// One push at a time: Garmin sees workouts in plan order and runs never interleave
	srv := asynq.NewServer(asynq.RedisClientOpt{Addr: cfg.RedisAddr}, asynq.Config{
		Concurrency: 1,
		Queues: map[string]int{
			jobs.QueuePush: 1,
		},
		Logger: asynqLogger{logger},
	})
	mux := asynq.NewServeMux()
	mux.Handle(jobs.TaskPushPlan, &jobs.PushHandler{
		Garmin:   client,
		Email:    cfg.Garmin.Email,
		Password: cfg.Garmin.Password,
		Log:      logger,
	})

	logger.Info().Str("redis", cfg.RedisAddr).Msg("worker running")
	if err := srv.Run(mux); err != nil {
		logger.Fatal().Err(err).Msg("worker stopped")
	}
}

// asynqLogger routes asynq's internal logs through zerolog
type asynqLogger struct {
	log zerolog.Logger
}

func (l asynqLogger) Debug(args ...any) { l.log.Debug().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Info(args ...any)  { l.log.Info().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Warn(args ...any)  { l.log.Warn().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Error(args ...any) { l.log.Error().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Fatal(args ...any) { l.log.Fatal().Msg(fmt.Sprint(args...)) }
