// Package fitness reduces recent running history to the metrics a plan generator needs.
package fitness

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/briangreenhill/prplan/pkg/garmin"
)

const recentRunLimit = 10

// ActivityRecord is one completed run
type ActivityRecord struct {
	Date            string   `json:"date"`
	DistanceKm      float64  `json:"distance_km"`
	DurationMin     float64  `json:"duration_min"`
	AvgHeartRate    *int     `json:"avg_hr,omitempty"`
	AvgPaceMinPerKm *float64 `json:"avg_pace_min_km,omitempty"` // nil when distance is 0
	Calories        *float64 `json:"calories,omitempty"`
}

// Metrics aggregates a window of runs. Check HasData before reading any other field.
type Metrics struct {
	HasData         bool             `json:"has_data"`
	TotalRuns       int              `json:"total_runs"`
	AvgDistanceKm   float64          `json:"avg_distance_km"`
	TotalDistanceKm float64          `json:"total_distance_km"`
	AvgPaceMinPerKm *float64         `json:"avg_pace_min_km,omitempty"`
	AvgHeartRate    *float64         `json:"avg_hr,omitempty"`
	RecentRuns      []ActivityRecord `json:"recent_runs"`
}

// MarshalJSON keeps empty metrics free of zero-valued aggregates
func (m Metrics) MarshalJSON() ([]byte, error) {
	if !m.HasData {
		return json.Marshal(struct {
			HasData bool   `json:"has_data"`
			Message string `json:"message"`
		}{false, "No running activities found"})
	}
	type alias Metrics
	return json.Marshal(alias(m))
}

// Summarize computes aggregate metrics. The first 10 records are kept as
// recent runs, so callers pass activities newest first.
func Summarize(activities []ActivityRecord) Metrics {
	if len(activities) == 0 {
		return Metrics{HasData: false}
	}

	total := 0.0
	for _, a := range activities {
		total += a.DistanceKm
	}

	m := Metrics{
		HasData:         true,
		TotalRuns:       len(activities),
		TotalDistanceKm: total,
		AvgDistanceKm:   total / float64(len(activities)),
	}

	var paceSum, hrSum float64
	var paces, hrs int
	for _, a := range activities {
		if a.AvgPaceMinPerKm != nil {
			paceSum += *a.AvgPaceMinPerKm
			paces++
		}
		if a.AvgHeartRate != nil {
			hrSum += float64(*a.AvgHeartRate)
			hrs++
		}
	}
	if paces > 0 {
		avg := paceSum / float64(paces)
		m.AvgPaceMinPerKm = &avg
	}
	if hrs > 0 {
		avg := hrSum / float64(hrs)
		m.AvgHeartRate = &avg
	}

	n := min(len(activities), recentRunLimit)
	m.RecentRuns = append([]ActivityRecord(nil), activities[:n]...)
	return m
}

// IsRun reports whether a Garmin activity type is a running type
func IsRun(typeKey string) bool {
	return strings.Contains(strings.ToLower(typeKey), "run")
}

// FromGarmin keeps running activities and converts them to records, preserving order
func FromGarmin(activities []garmin.Activity) []ActivityRecord {
	out := make([]ActivityRecord, 0, len(activities))
	for _, a := range activities {
		if !IsRun(a.ActivityType.TypeKey) {
			continue
		}
		rec := ActivityRecord{
			Date:        a.StartTimeLocal,
			DistanceKm:  math.Max(a.Distance, 0) / 1000,
			DurationMin: math.Max(a.Duration, 0) / 60,
			Calories:    a.Calories,
		}
		if rec.DistanceKm > 0 {
			pace := rec.DurationMin / rec.DistanceKm
			rec.AvgPaceMinPerKm = &pace
		}
		if a.AverageHR != nil && *a.AverageHR > 0 {
			hr := int(math.Round(*a.AverageHR))
			rec.AvgHeartRate = &hr
		}
		out = append(out, rec)
	}
	return out
}
