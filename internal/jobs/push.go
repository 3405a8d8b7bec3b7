package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/briangreenhill/prplan/internal/uploader"
)

// Garmin is the session the worker publishes through. *garmin.Client satisfies it.
type Garmin interface {
	uploader.Publisher
	Authenticate(ctx context.Context, email, password string) error
}

// PushResult is stored as the task result once a push finishes
type PushResult struct {
	RunID      string           `json:"run_id"`
	Outcome    uploader.Outcome `json:"outcome"`
	FinishedAt time.Time        `json:"finished_at"`
}

// PushHandler processes plan:push tasks
type PushHandler struct {
	Garmin   Garmin
	Email    string
	Password string
	Log      zerolog.Logger
}

// ProcessTask implements asynq.Handler. Only a bad payload or a failed login
// is reported as an error; per-workout failures end up in the result.
func (h *PushHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p PushPlanPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		h.Log.Error().Err(err).Msg("bad payload")
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}

	log := h.Log.With().Str("run_id", p.RunID).Int("workouts", len(p.Plan)).Logger()
	log.Info().Msg("push start")
	start := time.Now()

	if err := h.Garmin.Authenticate(ctx, h.Email, h.Password); err != nil {
		log.Error().Err(err).Msg("garmin login failed")
		return fmt.Errorf("garmin login: %v: %w", err, asynq.SkipRetry)
	}

	up := uploader.New(h.Garmin, uploader.WithLogger(log))
	out, err := up.Push(ctx, p.Plan)
	if err != nil {
		return fmt.Errorf("push: %v: %w", err, asynq.SkipRetry)
	}

	log.Info().
		Int("created", out.Created).
		Int("failed", len(out.Failures)).
		Dur("duration", time.Since(start)).
		Msg("push done")

	if w := t.ResultWriter(); w != nil {
		b, err := json.Marshal(PushResult{RunID: p.RunID, Outcome: out, FinishedAt: time.Now().UTC()})
		if err != nil {
			return fmt.Errorf("encode result: %v: %w", err, asynq.SkipRetry)
		}
		if _, err := w.Write(b); err != nil {
			log.Warn().Err(err).Msg("could not store push result")
		}
	}
	return nil
}
