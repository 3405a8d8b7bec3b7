package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/briangreenhill/prplan/internal/workout"
	"github.com/briangreenhill/prplan/pkg/garmin"
)

type fakeGarmin struct {
	authErr   error
	authed    bool
	creates   []string
	schedules []string
}

func (f *fakeGarmin) Authenticate(_ context.Context, email, password string) error {
	if f.authErr != nil {
		return f.authErr
	}
	f.authed = email != "" && password != ""
	return nil
}

func (f *fakeGarmin) Authenticated() bool { return f.authed }

func (f *fakeGarmin) CreateWorkout(_ context.Context, w *garmin.Workout) (string, error) {
	f.creates = append(f.creates, w.WorkoutName)
	return "42", nil
}

func (f *fakeGarmin) ScheduleWorkout(_ context.Context, id string, date time.Time) error {
	f.schedules = append(f.schedules, id+"@"+date.Format("2006-01-02"))
	return nil
}

var testPlan = []workout.Day{
	{Date: "2026-11-01", Name: "Easy", Steps: []workout.RawStep{{Name: "Run", Duration: "4 mi", Target: "easy"}}},
	{Name: "Strides", Steps: []workout.RawStep{{Name: "Stride", Duration: "100m", Target: "5:00/mi", Intensity: "active"}}},
}

func TestNewPushTask(t *testing.T) {
	task, err := NewPushTask("run-1", testPlan)
	require.NoError(t, err)
	assert.Equal(t, TaskPushPlan, task.Type())

	var p PushPlanPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	assert.Equal(t, "run-1", p.RunID)
	assert.Equal(t, testPlan, p.Plan)
}

func TestProcessTask(t *testing.T) {
	g := &fakeGarmin{}
	h := &PushHandler{Garmin: g, Email: "runner@example.com", Password: "pw", Log: zerolog.Nop()}

	task, err := NewPushTask("run-2", testPlan)
	require.NoError(t, err)

	require.NoError(t, h.ProcessTask(context.Background(), task))
	assert.Equal(t, []string{"Easy", "Strides"}, g.creates)
	assert.Equal(t, []string{"42@2026-11-01"}, g.schedules)
}

func TestProcessTaskBadPayload(t *testing.T) {
	g := &fakeGarmin{}
	h := &PushHandler{Garmin: g, Log: zerolog.Nop()}

	err := h.ProcessTask(context.Background(), asynq.NewTask(TaskPushPlan, []byte("{nope")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
	assert.Empty(t, g.creates)
}

func TestProcessTaskLoginFailure(t *testing.T) {
	g := &fakeGarmin{authErr: garmin.ErrMissingCredentials}
	h := &PushHandler{Garmin: g, Log: zerolog.Nop()}

	task, err := NewPushTask("run-3", testPlan)
	require.NoError(t, err)

	err = h.ProcessTask(context.Background(), task)
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
	assert.Contains(t, err.Error(), "email and password are required")
	assert.Empty(t, g.creates)
}

func TestProcessTaskNoSession(t *testing.T) {
	g := &fakeGarmin{}
	h := &PushHandler{Garmin: g, Log: zerolog.Nop()} // no credentials, so no session

	task, err := NewPushTask("run-4", testPlan)
	require.NoError(t, err)

	err = h.ProcessTask(context.Background(), task)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
	assert.Contains(t, err.Error(), garmin.ErrNotAuthenticated.Error())
	assert.Empty(t, g.creates)
}
