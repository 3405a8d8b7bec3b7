// Package uploader publishes a generated plan to Garmin Connect one workout
// at a time, retrying each workout a bounded number of times.
package uploader

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/briangreenhill/prplan/internal/workout"
	"github.com/briangreenhill/prplan/pkg/garmin"
)

// MaxAttempts is how many times one workout's create+schedule sequence is tried
const MaxAttempts = 3

// Publisher is the remote side of a push. *garmin.Client satisfies it.
type Publisher interface {
	CreateWorkout(ctx context.Context, w *garmin.Workout) (string, error)
	ScheduleWorkout(ctx context.Context, workoutID string, date time.Time) error
}

// sessionChecker is implemented by publishers that know whether they hold a session
type sessionChecker interface {
	Authenticated() bool
}

// Result describes the final state of one workout
type Result struct {
	Index     int // 1-based position in the plan
	Total     int
	Name      string
	WorkoutID string
	Scheduled bool
	Attempts  int
	Err       error
}

// OK reports whether the workout was created (and scheduled, when dated)
func (r Result) OK() bool { return r.Err == nil }

// Progress is called once per workout, in plan order
type Progress func(Result)

type Uploader struct {
	pub         Publisher
	log         zerolog.Logger
	maxAttempts int
	progress    Progress
}

type Option func(*Uploader)

func WithLogger(l zerolog.Logger) Option {
	return func(u *Uploader) { u.log = l }
}

func WithProgress(p Progress) Option {
	return func(u *Uploader) { u.progress = p }
}

// WithMaxAttempts overrides MaxAttempts. Values below 1 are ignored.
func WithMaxAttempts(n int) Option {
	return func(u *Uploader) {
		if n >= 1 {
			u.maxAttempts = n
		}
	}
}

func New(pub Publisher, opts ...Option) *Uploader {
	u := &Uploader{
		pub:         pub,
		log:         zerolog.Nop(),
		maxAttempts: MaxAttempts,
	}
	for _, o := range opts {
		o(u)
	}
	return u
}

// Push publishes every day of the plan in order. Failures are recorded in
// the outcome and never stop the loop. If ctx is cancelled, the remaining
// workouts are recorded as failed with the context error.
func (u *Uploader) Push(ctx context.Context, plan []workout.Day) (Outcome, error) {
	if sc, ok := u.pub.(sessionChecker); ok && !sc.Authenticated() {
		return Outcome{}, garmin.ErrNotAuthenticated
	}

	out := Outcome{Failures: []Failure{}}
	for i, day := range plan {
		var res Result
		if err := ctx.Err(); err != nil {
			res = Result{Name: day.DisplayName(), Err: err}
		} else {
			u.log.Info().Msgf("(%d/%d) %s", i+1, len(plan), day.DisplayName())
			res = u.publish(ctx, day)
		}
		res.Index, res.Total = i+1, len(plan)
		out.record(res)
		if u.progress != nil {
			u.progress(res)
		}
	}

	u.log.Info().Int("created", out.Created).Int("failed", len(out.Failures)).Msg("push finished")
	return out, nil
}

// publish runs the create+schedule sequence with bounded retries. A schedule
// failure retries the whole sequence, so a retried workout may be created twice.
func (u *Uploader) publish(ctx context.Context, day workout.Day) Result {
	res := Result{Name: day.DisplayName()}
	req := day.Request()
	date, dated := day.ScheduledDate()

	for attempt := 1; attempt <= u.maxAttempts; attempt++ {
		res.Attempts = attempt
		id, scheduled, err := u.once(ctx, req, date, dated)
		if err == nil {
			res.WorkoutID, res.Scheduled, res.Err = id, scheduled, nil
			return res
		}
		res.Err = err
		u.log.Warn().Err(err).Str("workout", res.Name).Int("attempt", attempt).Msg("publish failed")
	}
	return res
}

func (u *Uploader) once(ctx context.Context, req *garmin.Workout, date time.Time, dated bool) (string, bool, error) {
	id, err := u.pub.CreateWorkout(ctx, req)
	if err != nil {
		return "", false, fmt.Errorf("create workout: %w", err)
	}
	if !dated {
		return id, false, nil
	}
	if err := u.pub.ScheduleWorkout(ctx, id, date); err != nil {
		return "", false, fmt.Errorf("schedule workout %s: %w", id, err)
	}
	return id, true, nil
}

// Failure is one workout that could not be published
type Failure struct {
	Name string `json:"name"`
	Err  string `json:"error"`
}

// Outcome aggregates a single push
type Outcome struct {
	Created  int       `json:"created"`
	Failures []Failure `json:"failures"`
}

func (o *Outcome) record(r Result) {
	if r.OK() {
		o.Created++
		return
	}
	o.Failures = append(o.Failures, Failure{Name: r.Name, Err: r.Err.Error()})
}

// Summary renders the created count and up to preview failures
func (o Outcome) Summary(preview int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d workouts uploaded to Garmin Connect", o.Created)
	if len(o.Failures) == 0 {
		return b.String()
	}

	fmt.Fprintf(&b, "\n%d workouts failed after retries:", len(o.Failures))
	shown := min(max(preview, 0), len(o.Failures))
	for _, f := range o.Failures[:shown] {
		fmt.Fprintf(&b, "\n  %s: %s", f.Name, f.Err)
	}
	if rest := len(o.Failures) - shown; rest > 0 {
		fmt.Fprintf(&b, "\n  ...and %d more", rest)
	}
	return b.String()
}
