// Package coach turns fitness metrics and a race goal into a workout plan
// by way of a language model.
package coach

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/briangreenhill/prplan/internal/prompt"
	"github.com/briangreenhill/prplan/internal/workout"
)

// ErrGeneration is returned when the model call itself fails or returns nothing
var ErrGeneration = errors.New("failed to generate training plan")

// Generator sends a prompt to a language model and returns its raw text
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Coach builds prompts, calls the generator and validates the plan it returns
type Coach struct {
	gen     Generator
	prompts *prompt.Generator
	log     zerolog.Logger
}

func New(gen Generator, prompts *prompt.Generator, log zerolog.Logger) *Coach {
	return &Coach{gen: gen, prompts: prompts, log: log}
}

// Plan generates a training plan. Model failures wrap ErrGeneration;
// replies that are not a JSON array of days wrap workout.ErrPlanUnparseable.
func (c *Coach) Plan(ctx context.Context, req prompt.Request) ([]workout.Day, error) {
	text, err := c.prompts.Build(req)
	if err != nil {
		return nil, err
	}

	c.log.Debug().Int("prompt_bytes", len(text)).Str("race_date", req.RaceDate).Msg("requesting plan")
	raw, err := c.gen.Generate(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: empty response", ErrGeneration)
	}

	days, err := workout.ParsePlan(raw)
	if err != nil {
		c.log.Debug().Str("response", truncate(raw, 500)).Msg("unparseable plan")
		return nil, err
	}
	c.log.Info().Int("workouts", len(days)).Msg("plan generated")
	return days, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
