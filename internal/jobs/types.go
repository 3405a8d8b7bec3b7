package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/briangreenhill/prplan/internal/workout"
)

const (
	TaskPushPlan = "plan:push"
	QueuePush    = "push"

	pushTimeout   = 30 * time.Minute
	pushRetention = 24 * time.Hour
)

type PushPlanPayload struct {
	RunID string        `json:"run_id"`
	Plan  []workout.Day `json:"plan"`
}

// NewPushTask builds a plan:push task. The run ID doubles as the task ID so a
// run can be looked up later. asynq never retries it: creating workouts is not
// idempotent and the uploader retries each workout itself.
func NewPushTask(runID string, plan []workout.Day) (*asynq.Task, error) {
	payload, err := json.Marshal(PushPlanPayload{RunID: runID, Plan: plan})
	if err != nil {
		return nil, fmt.Errorf("encode push payload: %w", err)
	}
	return asynq.NewTask(TaskPushPlan, payload,
		asynq.TaskID(runID),
		asynq.Queue(QueuePush),
		asynq.MaxRetry(0),
		asynq.Timeout(pushTimeout),
		asynq.Retention(pushRetention),
	), nil
}
