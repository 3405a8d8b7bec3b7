// Package workout turns free-text workout days into the structured step model Garmin Connect expects.
package workout

import "fmt"

// RawStep is one step as written by the plan generator
type RawStep struct {
	Name      string `json:"name"`
	Duration  string `json:"duration"`  // "800m", "2 mi", "10:00", "90 sec"
	Target    string `json:"target"`    // "7:30/mi", "Zone 3", "jog"
	Intensity string `json:"intensity"` // warmup, cooldown, rest, active
}

// Day is one calendar entry of a plan. Date is empty for unscheduled workouts.
type Day struct {
	Date        string    `json:"date,omitempty"` // YYYY-MM-DD
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Steps       []RawStep `json:"steps"`
}

// DurationKind tags a Duration
type DurationKind int

const (
	DurationTime DurationKind = iota
	DurationDistance
)

// Duration is the condition that ends a step: a fixed distance or a fixed time
type Duration struct {
	Kind    DurationKind
	Meters  float64 // set when Kind == DurationDistance
	Seconds int     // set when Kind == DurationTime
}

func Distance(meters float64) Duration { return Duration{Kind: DurationDistance, Meters: meters} }
func Time(seconds int) Duration        { return Duration{Kind: DurationTime, Seconds: seconds} }

func (d Duration) String() string {
	if d.Kind == DurationDistance {
		return fmt.Sprintf("Distance(%.2fm)", d.Meters)
	}
	return fmt.Sprintf("Time(%ds)", d.Seconds)
}

// TargetKind tags a Target
type TargetKind int

const (
	NoTarget TargetKind = iota
	PaceRange
	HeartRateZone
)

// Target is the pace or heart-rate band for a step.
// For PaceRange, Low is the faster speed and High the slower one (m/s).
type Target struct {
	Kind TargetKind
	Low  float64
	High float64
	Zone int
}

func Open() Target                  { return Target{Kind: NoTarget} }
func Pace(low, high float64) Target { return Target{Kind: PaceRange, Low: low, High: high} }
func HeartRate(zone int) Target     { return Target{Kind: HeartRateZone, Zone: zone} }

func (t Target) String() string {
	switch t.Kind {
	case PaceRange:
		return fmt.Sprintf("PaceRange(%.3f-%.3f m/s)", t.Low, t.High)
	case HeartRateZone:
		return fmt.Sprintf("HeartRateZone(%d)", t.Zone)
	default:
		return "NoTarget"
	}
}

// Role is the functional category of a step
type Role struct {
	ID  int
	Key string
}

var (
	RoleWarmup   = Role{ID: 1, Key: "warmup"}
	RoleCooldown = Role{ID: 2, Key: "cooldown"}
	RoleInterval = Role{ID: 3, Key: "interval"}
	RoleRecovery = Role{ID: 4, Key: "recovery"}
)

// EncodedStep is a fully structured step. Order is 1-based and fixed at construction.
type EncodedStep struct {
	Order    int
	Role     Role
	Duration Duration
	Target   Target
}
