package garmin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const activityPageSize = 100

// ActivityType identifies the sport of an activity
type ActivityType struct {
	TypeID  int    `json:"typeId"`
	TypeKey string `json:"typeKey"` // e.g. "running", "trail_running", "cycling"
}

// Activity represents one record from the activity-history endpoint
type Activity struct {
	ActivityID     int64        `json:"activityId"`
	ActivityName   string       `json:"activityName"`
	StartTimeLocal string       `json:"startTimeLocal"` // "2006-01-02 15:04:05"
	ActivityType   ActivityType `json:"activityType"`
	Distance       float64      `json:"distance"` // meters
	Duration       float64      `json:"duration"` // seconds
	AverageHR      *float64     `json:"averageHR"`
	Calories       *float64     `json:"calories"`
}

type SportType struct {
	SportTypeID  int    `json:"sportTypeId"`
	SportTypeKey string `json:"sportTypeKey"`
}

// SportRunning is the only sport this client publishes workouts for
var SportRunning = SportType{SportTypeID: 1, SportTypeKey: "running"}

type StepType struct {
	StepTypeID  int    `json:"stepTypeId"`
	StepTypeKey string `json:"stepTypeKey"`
}

type EndCondition struct {
	ConditionTypeID  int    `json:"conditionTypeId"`
	ConditionTypeKey string `json:"conditionTypeKey"`
}

type TargetType struct {
	WorkoutTargetTypeID  int    `json:"workoutTargetTypeId"`
	WorkoutTargetTypeKey string `json:"workoutTargetTypeKey"`
}

// WorkoutStep is an ExecutableStepDTO. Null fields are sent explicitly.
type WorkoutStep struct {
	Type              string       `json:"type"`
	StepID            *int64       `json:"stepId"`
	StepOrder         int          `json:"stepOrder"`
	ChildStepID       *int64       `json:"childStepId"`
	Description       *string      `json:"description"`
	StepType          StepType     `json:"stepType"`
	EndCondition      EndCondition `json:"endCondition"`
	EndConditionValue float64      `json:"endConditionValue"`
	TargetType        TargetType   `json:"targetType"`
	TargetValueOne    *float64     `json:"targetValueOne"`
	TargetValueTwo    *float64     `json:"targetValueTwo"`
}

type WorkoutSegment struct {
	SegmentOrder int           `json:"segmentOrder"`
	SportType    SportType     `json:"sportType"`
	WorkoutSteps []WorkoutStep `json:"workoutSteps"`
}

// Workout is the create-workout request body
type Workout struct {
	WorkoutID       int64            `json:"workoutId,omitempty"`
	WorkoutName     string           `json:"workoutName"`
	Description     string           `json:"description"`
	SportType       SportType        `json:"sportType"`
	WorkoutSegments []WorkoutSegment `json:"workoutSegments"`
}

// APIError is a non-2xx response from Garmin Connect
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s -> %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	hc, err := c.httpClient()
	if err != nil {
		return err
	}

	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("build url: %w", err)
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("NK", "NT")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}
	if resp.StatusCode >= 300 {
		return &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out == nil || len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

// Activities returns every activity started between start and end (inclusive dates), newest first
func (c *Client) Activities(ctx context.Context, start, end time.Time) ([]Activity, error) {
	var all []Activity
	for offset := 0; ; offset += activityPageSize {
		q := url.Values{
			"startDate": {start.Format("2006-01-02")},
			"endDate":   {end.Format("2006-01-02")},
			"start":     {strconv.Itoa(offset)},
			"limit":     {strconv.Itoa(activityPageSize)},
		}
		var page []Activity
		if err := c.do(ctx, http.MethodGet, "/activitylist-service/activities/search/activities", q, nil, &page); err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < activityPageSize {
			return all, nil
		}
	}
}

// CreateWorkout uploads a workout and returns its identifier
func (c *Client) CreateWorkout(ctx context.Context, w *Workout) (string, error) {
	var created Workout
	if err := c.do(ctx, http.MethodPost, "/workout-service/workout", nil, w, &created); err != nil {
		return "", err
	}
	if created.WorkoutID == 0 {
		return "", fmt.Errorf("create workout %q: response carried no workoutId", w.WorkoutName)
	}
	return strconv.FormatInt(created.WorkoutID, 10), nil
}

// ScheduleWorkout places a created workout on the calendar
func (c *Client) ScheduleWorkout(ctx context.Context, workoutID string, date time.Time) error {
	body := map[string]string{"date": date.Format("2006-01-02")}
	return c.do(ctx, http.MethodPost, "/workout-service/schedule/"+url.PathEscape(workoutID), nil, body, nil)
}
