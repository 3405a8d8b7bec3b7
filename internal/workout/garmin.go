package workout

import (
	"strings"

	"github.com/briangreenhill/prplan/pkg/garmin"
)

const defaultWorkoutName = "Training Run"

var (
	conditionTime     = garmin.EndCondition{ConditionTypeID: 2, ConditionTypeKey: "time"}
	conditionDistance = garmin.EndCondition{ConditionTypeID: 3, ConditionTypeKey: "distance"}

	targetNone      = garmin.TargetType{WorkoutTargetTypeID: 1, WorkoutTargetTypeKey: "no.target"}
	targetHeartRate = garmin.TargetType{WorkoutTargetTypeID: 4, WorkoutTargetTypeKey: "heart.rate.zone"}
	targetPace      = garmin.TargetType{WorkoutTargetTypeID: 6, WorkoutTargetTypeKey: "pace.zone"}
)

// DisplayName is the workout name used for upload and failure reports
func (d Day) DisplayName() string {
	if n := strings.TrimSpace(d.Name); n != "" {
		return n
	}
	return defaultWorkoutName
}

// Request builds the create-workout body for a day
func (d Day) Request() *garmin.Workout {
	encoded := Encode(d.Steps)
	steps := make([]garmin.WorkoutStep, 0, len(encoded))
	for _, e := range encoded {
		steps = append(steps, e.Garmin())
	}
	return &garmin.Workout{
		WorkoutName: d.DisplayName(),
		Description: d.Description,
		SportType:   garmin.SportRunning,
		WorkoutSegments: []garmin.WorkoutSegment{{
			SegmentOrder: 1,
			SportType:    garmin.SportRunning,
			WorkoutSteps: steps,
		}},
	}
}

// Garmin converts an encoded step to its wire form
func (e EncodedStep) Garmin() garmin.WorkoutStep {
	ws := garmin.WorkoutStep{
		Type:      "ExecutableStepDTO",
		StepOrder: e.Order,
		StepType:  garmin.StepType{StepTypeID: e.Role.ID, StepTypeKey: e.Role.Key},
	}

	switch e.Duration.Kind {
	case DurationDistance:
		ws.EndCondition = conditionDistance
		ws.EndConditionValue = e.Duration.Meters
	default:
		ws.EndCondition = conditionTime
		ws.EndConditionValue = float64(e.Duration.Seconds)
	}

	switch e.Target.Kind {
	case PaceRange:
		ws.TargetType = targetPace
		ws.TargetValueOne = ptr(e.Target.Low)
		ws.TargetValueTwo = ptr(e.Target.High)
	case HeartRateZone:
		ws.TargetType = targetHeartRate
		ws.TargetValueOne = ptr(float64(e.Target.Zone))
		ws.TargetValueTwo = ptr(float64(e.Target.Zone))
	default:
		ws.TargetType = targetNone
	}
	return ws
}

func ptr(v float64) *float64 { return &v }
