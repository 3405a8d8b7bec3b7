package workout

import "strings"

const (
	defaultDurationText = "10:00"
	defaultTargetText   = "Open"
)

var roles = map[string]Role{
	"warmup":   RoleWarmup,
	"cooldown": RoleCooldown,
	"rest":     RoleRecovery,
	"active":   RoleInterval,
}

// RoleFor maps a step intensity to its role. Unknown intensities are intervals.
func RoleFor(intensity string) Role {
	if r, ok := roles[strings.ToLower(strings.TrimSpace(intensity))]; ok {
		return r
	}
	return RoleInterval
}

// Encode builds structured steps in input order, numbered from 1
func Encode(steps []RawStep) []EncodedStep {
	out := make([]EncodedStep, 0, len(steps))
	for i, st := range steps {
		duration := st.Duration
		if strings.TrimSpace(duration) == "" {
			duration = defaultDurationText
		}
		target := st.Target
		if strings.TrimSpace(target) == "" {
			target = defaultTargetText
		}
		out = append(out, EncodedStep{
			Order:    i + 1,
			Role:     RoleFor(st.Intensity),
			Duration: ParseDuration(duration),
			Target:   ParseTarget(target),
		})
	}
	return out
}
