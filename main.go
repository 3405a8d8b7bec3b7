package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/briangreenhill/prplan/cache"
	"github.com/briangreenhill/prplan/internal/coach"
	"github.com/briangreenhill/prplan/internal/config"
	"github.com/briangreenhill/prplan/internal/fitness"
	"github.com/briangreenhill/prplan/internal/prompt"
	"github.com/briangreenhill/prplan/internal/uploader"
	"github.com/briangreenhill/prplan/internal/workout"
	"github.com/briangreenhill/prplan/pkg/garmin"
)

const (
	version         = "prplan v0.1.0"
	historyCacheTTL = 24 * time.Hour
	failurePreview  = 3
)

var errUsage = errors.New("invalid usage")

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := runCLI(ctx, os.Args[1:], os.Stdout, log)
	stop()
	if err != nil {
		log.Fatal().Err(err).Msg("prplan failed")
	}
}

func runCLI(ctx context.Context, args []string, out io.Writer, log zerolog.Logger) error {
	if len(args) == 0 {
		usage(out)
		return fmt.Errorf("%w: missing command", errUsage)
	}

	switch args[0] {
	case "help", "--help", "-h":
		usage(out)
	case "version", "--version", "-v":
		fmt.Fprintln(out, version)
	case "plan":
		return runPlan(ctx, args[1:], out, log)
	case "push":
		return runPush(ctx, args[1:], out, log)
	default:
		return fmt.Errorf("%w: unknown command: %s", errUsage, args[0])
	}
	return nil
}

func usage(out io.Writer) {
	fmt.Fprintln(out, "Usage: prplan <command> [options]")
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  plan --distance D --pace P --race-date YYYY-MM-DD [--long-run-day DAY] [--out FILE] [--dry-run]")
	fmt.Fprintln(out, "                      Generate a training plan from recent runs and upload it")
	fmt.Fprintln(out, "  push FILE           Upload a saved plan (raw model output or a JSON array)")
	fmt.Fprintln(out, "  help, version")
	fmt.Fprintln(out, "Environment:")
	fmt.Fprintln(out, "  GEMINI_API_KEY      Gemini API key (required for plan)")
	fmt.Fprintln(out, "  GARMIN_EMAIL        Garmin Connect email (required)")
	fmt.Fprintln(out, "  GARMIN_PASSWORD     Garmin Connect password (required)")
	fmt.Fprintln(out, "  PRPLAN_TOKEN_DIR    Where the session token is kept (default ~/.garmin-pr-plan)")
	fmt.Fprintln(out, "  PRPLAN_HISTORY_DAYS Days of history to analyze (default 90)")
	fmt.Fprintln(out, "  PRPLAN_NOCACHE      Disable the activity history cache")
}

type planFlags struct {
	distance   string
	pace       string
	raceDate   string
	longRunDay string
	out        string
	dryRun     bool
}

func parsePlanFlags(args []string, out io.Writer) (planFlags, error) {
	var f planFlags
	fs := flag.NewFlagSet("plan", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&f.distance, "distance", "", `race distance, e.g. 5K, 10K, "half marathon"`)
	fs.StringVar(&f.pace, "pace", "", "goal pace, e.g. 7:30/mi or 5:00/km")
	fs.StringVar(&f.raceDate, "race-date", "", "race date (YYYY-MM-DD)")
	fs.StringVar(&f.longRunDay, "long-run-day", prompt.DefaultLongRunDay, "preferred day for long runs")
	fs.StringVar(&f.out, "out", "", "also write the generated plan to this file")
	fs.BoolVar(&f.dryRun, "dry-run", false, "generate the plan without uploading it")
	if err := fs.Parse(args); err != nil {
		return f, fmt.Errorf("%w: %v", errUsage, err)
	}

	var missing []string
	if f.distance == "" {
		missing = append(missing, "--distance")
	}
	if f.pace == "" {
		missing = append(missing, "--pace")
	}
	if f.raceDate == "" {
		missing = append(missing, "--race-date")
	}
	if len(missing) > 0 {
		return f, fmt.Errorf("%w: missing required flags: %s", errUsage, strings.Join(missing, ", "))
	}
	if _, err := time.Parse("2006-01-02", f.raceDate); err != nil {
		return f, fmt.Errorf("%w: %q", prompt.ErrInvalidRaceDate, f.raceDate)
	}
	return f, nil
}

func runPlan(ctx context.Context, args []string, out io.Writer, log zerolog.Logger) error {
	flags, err := parsePlanFlags(args, out)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	log = log.Level(cfg.Level())

	client, err := newGarminClient(cfg, log)
	if err != nil {
		return err
	}
	if err := client.Authenticate(ctx, cfg.Garmin.Email, cfg.Garmin.Password); err != nil {
		return fmt.Errorf("failed to connect to Garmin: %w", err)
	}
	fmt.Fprintln(out, "● Connected to Garmin Connect")

	end := time.Now()
	activities, err := client.Activities(ctx, end.AddDate(0, 0, -cfg.HistoryDays), end)
	if err != nil {
		return fmt.Errorf("fetch activity history: %w", err)
	}
	metrics := fitness.Summarize(fitness.FromGarmin(activities))
	report(out, metrics)

	prompts, err := prompt.NewGenerator(cfg.PromptPath)
	if err != nil {
		return err
	}
	c := coach.New(coach.NewGeminiGenerator(cfg.Gemini.APIKey, cfg.Gemini.Model), prompts, log)

	fmt.Fprintln(out, "Generating your personalized training plan...")
	plan, err := c.Plan(ctx, prompt.Request{
		Metrics:    metrics,
		Distance:   flags.distance,
		GoalPace:   flags.pace,
		RaceDate:   flags.raceDate,
		LongRunDay: flags.longRunDay,
		Today:      end,
	})
	if err != nil {
		return fmt.Errorf("failed to generate plan: %w", err)
	}
	fmt.Fprintf(out, "● Generated %d workouts\n", len(plan))

	if flags.out != "" {
		if err := workout.SavePlan(flags.out, plan); err != nil {
			return err
		}
		fmt.Fprintf(out, "● Plan saved to %s\n", flags.out)
	}
	if flags.dryRun {
		return nil
	}
	return push(ctx, client, plan, out, log)
}

func runPush(ctx context.Context, args []string, out io.Writer, log zerolog.Logger) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: push takes exactly one plan file", errUsage)
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read plan: %w", err)
	}
	plan, err := workout.ParsePlan(string(b))
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log = log.Level(cfg.Level())

	client, err := newGarminClient(cfg, log)
	if err != nil {
		return err
	}
	if err := client.Authenticate(ctx, cfg.Garmin.Email, cfg.Garmin.Password); err != nil {
		return fmt.Errorf("failed to connect to Garmin: %w", err)
	}
	fmt.Fprintln(out, "● Connected to Garmin Connect")
	return push(ctx, client, plan, out, log)
}

func push(ctx context.Context, pub uploader.Publisher, plan []workout.Day, out io.Writer, log zerolog.Logger) error {
	fmt.Fprintln(out, "Uploading to Garmin Connect...")
	up := uploader.New(pub,
		uploader.WithLogger(log),
		uploader.WithProgress(func(r uploader.Result) {
			mark := "✓"
			if !r.OK() {
				mark = "✗"
			}
			fmt.Fprintf(out, "  (%d/%d) %s... %s\n", r.Index, r.Total, r.Name, mark)
		}),
	)
	outcome, err := up.Push(ctx, plan)
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, outcome.Summary(failurePreview))
	if outcome.Created > 0 {
		fmt.Fprintln(out, "Sync your watch to see your training plan")
	}
	return nil
}

// newGarminClient wires the session token store and, unless disabled, the
// on-disk response cache under the auth transport
func newGarminClient(cfg *config.Config, log zerolog.Logger) (*garmin.Client, error) {
	opts := []garmin.Option{
		garmin.WithBaseURL(cfg.Garmin.BaseURL),
		garmin.WithTokenURL(cfg.Garmin.TokenURL),
		garmin.WithClientID(cfg.Garmin.ClientID),
		garmin.WithTokenDir(cfg.TokenDir),
	}
	if !cfg.NoCache {
		store, err := cache.NewFileCache(cfg.CacheDir, historyCacheTTL)
		if err != nil {
			return nil, fmt.Errorf("open cache: %w", err)
		}
		log.Debug().Str("dir", store.Dir()).Msg("response cache enabled")
		opts = append(opts, garmin.WithTransport(cache.NewTransport(store, nil)))
	}
	return garmin.NewClient(opts...), nil
}

func report(out io.Writer, m fitness.Metrics) {
	if !m.HasData {
		fmt.Fprintln(out, "● No recent runs found (will base plan on goals)")
		return
	}
	fmt.Fprintf(out, "● Found %d runs (avg %s)\n", m.TotalRuns, fitness.FormatDistance(m.AvgDistanceKm))
	if m.AvgPaceMinPerKm != nil {
		fmt.Fprintf(out, "● Current avg pace: %s\n", fitness.FormatPace(*m.AvgPaceMinPerKm))
	}
}
