package workout

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	metersPerMile = 1609.34
	metersPerKm   = 1000.0

	// DefaultDuration is used when a step has no duration or it cannot be read
	DefaultDuration = 10 * 60
)

var (
	distanceRe = regexp.MustCompile(`^([\d.]+)\s*(m|km|mi|mile|miles)$`)
	timeUnitRe = regexp.MustCompile(`^([\d.]+)\s*(min|mins|minute|minutes|sec|secs|second|seconds|s)$`)
)

// ParseDuration reads a free-text duration. It never fails: text it cannot
// read becomes Time(600).
func ParseDuration(text string) Duration {
	s := strings.ToLower(strings.TrimSpace(text))

	if m := distanceRe.FindStringSubmatch(s); m != nil {
		if v, ok := parseNumber(m[1]); ok {
			switch m[2] {
			case "km":
				return Distance(v * metersPerKm)
			case "mi", "mile", "miles":
				return Distance(v * metersPerMile)
			default:
				return Distance(v)
			}
		}
	}

	if m := timeUnitRe.FindStringSubmatch(s); m != nil {
		if v, ok := parseNumber(m[1]); ok {
			switch m[2] {
			case "min", "mins", "minute", "minutes":
				return Time(int(v * 60))
			default:
				return Time(int(v))
			}
		}
	}

	if strings.Contains(s, ":") {
		if secs, ok := parseClock(s); ok {
			return Time(secs)
		}
		return Time(DefaultDuration)
	}

	if v, ok := parseNumber(s); ok {
		return Time(int(math.Trunc(v)) * 60)
	}

	return Time(DefaultDuration)
}

// parseClock reads "minutes:seconds". Only the first colon is honoured;
// with any other segment count the seconds default to 0.
func parseClock(s string) (int, bool) {
	parts := strings.Split(s, ":")
	minutes, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || minutes < 0 {
		return 0, false
	}
	seconds := 0
	if len(parts) == 2 && strings.TrimSpace(parts[1]) != "" {
		seconds, err = strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil || seconds < 0 {
			return 0, false
		}
	}
	return minutes*60 + seconds, true
}

func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}
