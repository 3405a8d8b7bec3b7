package uploader

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/briangreenhill/prplan/internal/workout"
	"github.com/briangreenhill/prplan/pkg/garmin"
)

type call struct {
	op   string // "create" or "schedule"
	name string
	id   string
	date time.Time
}

// fakePublisher records calls. failCreate/failSchedule return how many times
// a workout (by name) should fail before succeeding; -1 fails forever.
type fakePublisher struct {
	calls        []call
	failCreate   map[string]int
	failSchedule map[string]int
	unauth       bool
	onCreate     func(name string)
	nextID       int
	names        map[string]string
}

func newFake() *fakePublisher {
	return &fakePublisher{
		failCreate:   map[string]int{},
		failSchedule: map[string]int{},
		names:        map[string]string{},
	}
}

func (f *fakePublisher) Authenticated() bool { return !f.unauth }

func (f *fakePublisher) CreateWorkout(_ context.Context, w *garmin.Workout) (string, error) {
	f.calls = append(f.calls, call{op: "create", name: w.WorkoutName})
	if f.onCreate != nil {
		f.onCreate(w.WorkoutName)
	}
	if n := f.failCreate[w.WorkoutName]; n != 0 {
		if n > 0 {
			f.failCreate[w.WorkoutName] = n - 1
		}
		return "", &garmin.APIError{Method: "POST", Path: "/workout-service/workout", StatusCode: 500, Body: "boom"}
	}
	f.nextID++
	id := fmt.Sprintf("%d", 1000+f.nextID)
	f.names[id] = w.WorkoutName
	return id, nil
}

func (f *fakePublisher) ScheduleWorkout(_ context.Context, id string, date time.Time) error {
	name := f.names[id]
	f.calls = append(f.calls, call{op: "schedule", name: name, id: id, date: date})
	if n := f.failSchedule[name]; n != 0 {
		if n > 0 {
			f.failSchedule[name] = n - 1
		}
		return errors.New("schedule rejected")
	}
	return nil
}

func (f *fakePublisher) count(op, name string) int {
	n := 0
	for _, c := range f.calls {
		if c.op == op && c.name == name {
			n++
		}
	}
	return n
}

func (f *fakePublisher) createOrder() []string {
	var seen []string
	for _, c := range f.calls {
		if c.op == "create" && (len(seen) == 0 || seen[len(seen)-1] != c.name) {
			seen = append(seen, c.name)
		}
	}
	return seen
}

func day(name, date string) workout.Day {
	return workout.Day{
		Date: date,
		Name: name,
		Steps: []workout.RawStep{
			{Name: "Run", Duration: "5 mi", Target: "8:00/mi", Intensity: "active"},
		},
	}
}

func TestPushAllCreatesFail(t *testing.T) {
	pub := newFake()
	plan := []workout.Day{day("A", "2026-11-01"), day("B", ""), day("C", "2026-11-03")}
	for _, d := range plan {
		pub.failCreate[d.Name] = -1
	}

	out, err := New(pub).Push(context.Background(), plan)
	require.NoError(t, err)

	assert.Equal(t, 0, out.Created)
	require.Len(t, out.Failures, 3)
	for i, d := range plan {
		assert.Equal(t, d.Name, out.Failures[i].Name)
		assert.Contains(t, out.Failures[i].Err, "500")
		assert.Equal(t, MaxAttempts, pub.count("create", d.Name), "workout %s", d.Name)
		assert.Zero(t, pub.count("schedule", d.Name))
	}
}

func TestPushMiddleWorkoutFails(t *testing.T) {
	pub := newFake()
	pub.failCreate["Week 1 - Intervals"] = -1
	plan := []workout.Day{
		day("Week 1 - Easy", "2026-11-01"),
		day("Week 1 - Intervals", "2026-11-02"),
		day("Week 1 - Long", "2026-11-03"),
	}

	out, err := New(pub).Push(context.Background(), plan)
	require.NoError(t, err)

	assert.Equal(t, 2, out.Created)
	require.Len(t, out.Failures, 1)
	assert.Equal(t, "Week 1 - Intervals", out.Failures[0].Name)
	assert.Equal(t, []string{"Week 1 - Easy", "Week 1 - Intervals", "Week 1 - Long"}, pub.createOrder())
	assert.Equal(t, 1, pub.count("schedule", "Week 1 - Long"), "later workouts still run")
}

func TestPushRetriesTransientFailure(t *testing.T) {
	pub := newFake()
	pub.failCreate["Tempo"] = 2

	var results []Result
	out, err := New(pub, WithProgress(func(r Result) { results = append(results, r) })).
		Push(context.Background(), []workout.Day{day("Tempo", "2026-11-05")})
	require.NoError(t, err)

	assert.Equal(t, 1, out.Created)
	assert.Empty(t, out.Failures)
	require.Len(t, results, 1)
	assert.True(t, results[0].OK())
	assert.Equal(t, 3, results[0].Attempts)
	assert.True(t, results[0].Scheduled)
	assert.Equal(t, 1, results[0].Index)
	assert.Equal(t, 1, results[0].Total)
}

func TestPushScheduleFailureRetriesCreate(t *testing.T) {
	pub := newFake()
	pub.failSchedule["Long Run"] = 1

	out, err := New(pub).Push(context.Background(), []workout.Day{day("Long Run", "2026-11-07")})
	require.NoError(t, err)

	assert.Equal(t, 1, out.Created)
	assert.Equal(t, 2, pub.count("create", "Long Run"), "the whole sequence is retried")
	assert.Equal(t, 2, pub.count("schedule", "Long Run"))

	last := pub.calls[len(pub.calls)-1]
	assert.Equal(t, "schedule", last.op)
	assert.Equal(t, time.Date(2026, 11, 7, 0, 0, 0, 0, time.UTC), last.date)
}

func TestPushScheduleAlwaysFails(t *testing.T) {
	pub := newFake()
	pub.failSchedule["Race Day"] = -1

	out, err := New(pub).Push(context.Background(), []workout.Day{day("Race Day", "2026-12-06")})
	require.NoError(t, err)

	assert.Equal(t, 0, out.Created)
	require.Len(t, out.Failures, 1)
	assert.Contains(t, out.Failures[0].Err, "schedule rejected")
	assert.Equal(t, MaxAttempts, pub.count("create", "Race Day"))
}

func TestPushUndatedSkipsSchedule(t *testing.T) {
	pub := newFake()

	out, err := New(pub).Push(context.Background(), []workout.Day{day("Shakeout", "")})
	require.NoError(t, err)

	assert.Equal(t, 1, out.Created)
	assert.Equal(t, 1, pub.count("create", "Shakeout"))
	assert.Zero(t, pub.count("schedule", "Shakeout"))
}

func TestPushUnnamedWorkout(t *testing.T) {
	pub := newFake()
	pub.failCreate["Training Run"] = -1

	out, err := New(pub).Push(context.Background(), []workout.Day{day("", "")})
	require.NoError(t, err)
	require.Len(t, out.Failures, 1)
	assert.Equal(t, "Training Run", out.Failures[0].Name)
}

func TestPushEmptyPlan(t *testing.T) {
	out, err := New(newFake()).Push(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, out.Created)
	assert.Empty(t, out.Failures)
}

func TestPushRequiresSession(t *testing.T) {
	pub := newFake()
	pub.unauth = true

	_, err := New(pub).Push(context.Background(), []workout.Day{day("A", "")})
	assert.ErrorIs(t, err, garmin.ErrNotAuthenticated)
	assert.Empty(t, pub.calls)
}

func TestPushCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pub := newFake()
	pub.onCreate = func(name string) {
		if name == "B" {
			cancel()
		}
	}
	plan := []workout.Day{day("A", ""), day("B", ""), day("C", ""), day("D", "")}

	out, err := New(pub).Push(ctx, plan)
	require.NoError(t, err)

	assert.Equal(t, 2, out.Created, "the in-flight workout completes")
	require.Len(t, out.Failures, 2)
	assert.Equal(t, "C", out.Failures[0].Name)
	assert.Equal(t, context.Canceled.Error(), out.Failures[0].Err)
	assert.Equal(t, "D", out.Failures[1].Name)
	assert.Zero(t, pub.count("create", "C"))
}

func TestWithMaxAttempts(t *testing.T) {
	pub := newFake()
	pub.failCreate["A"] = -1

	_, err := New(pub, WithMaxAttempts(5)).Push(context.Background(), []workout.Day{day("A", "")})
	require.NoError(t, err)
	assert.Equal(t, 5, pub.count("create", "A"))

	pub = newFake()
	pub.failCreate["A"] = -1
	_, err = New(pub, WithMaxAttempts(0)).Push(context.Background(), []workout.Day{day("A", "")})
	require.NoError(t, err)
	assert.Equal(t, MaxAttempts, pub.count("create", "A"))
}

func TestOutcomeSummary(t *testing.T) {
	tests := []struct {
		name string
		out  Outcome
		want []string
		not  []string
	}{
		{
			name: "no failures",
			out:  Outcome{Created: 12},
			want: []string{"12 workouts uploaded"},
			not:  []string{"failed"},
		},
		{
			name: "few failures",
			out:  Outcome{Created: 1, Failures: []Failure{{"A", "e1"}, {"B", "e2"}}},
			want: []string{"2 workouts failed after retries:", "A: e1", "B: e2"},
			not:  []string{"more"},
		},
		{
			name: "preview truncated",
			out: Outcome{Failures: []Failure{
				{"A", "e"}, {"B", "e"}, {"C", "e"}, {"D", "e"}, {"E", "e"},
			}},
			want: []string{"0 workouts uploaded", "A: e", "C: e", "...and 2 more"},
			not:  []string{"D: e", "E: e"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.out.Summary(3)
			for _, w := range tt.want {
				assert.Contains(t, s, w)
			}
			for _, n := range tt.not {
				assert.NotContains(t, s, n)
			}
		})
	}

	assert.Equal(t, 1, strings.Count(Outcome{Failures: []Failure{{"A", "e"}, {"B", "e"}}}.Summary(0), "...and 2 more"))
}
