package workout

import (
	"regexp"
	"strconv"
	"strings"
)

const paceBand = 0.05

var (
	paceRe  = regexp.MustCompile(`(?i)^(\d+):(\d+)(?:/?(mi|km))?$`)
	digitRe = regexp.MustCompile(`\d`)
)

// ParseTarget reads a free-text target. It never fails: text it cannot read
// becomes NoTarget.
//
// A pace without a unit is taken as per-km when its minutes are below 10 and
// per-mile otherwise. Sub-10 per-mile paces written without "/mi" are
// therefore read as per-km.
func ParseTarget(text string) Target {
	s := strings.TrimSpace(text)
	switch strings.ToLower(s) {
	case "", "open", "jog", "easy":
		return Open()
	}

	if m := paceRe.FindStringSubmatch(s); m != nil {
		minutes, _ := strconv.Atoi(m[1])
		seconds, _ := strconv.Atoi(m[2])
		total := minutes*60 + seconds
		if total <= 0 {
			return Open()
		}

		unit := metersPerMile
		if u := strings.ToLower(m[3]); u == "km" || (u == "" && minutes < 10) {
			unit = metersPerKm
		}
		speed := unit / float64(total)
		return Pace(speed*(1+paceBand), speed*(1-paceBand))
	}

	if strings.Contains(strings.ToLower(s), "zone") {
		if d := digitRe.FindString(s); d != "" {
			zone, _ := strconv.Atoi(d)
			return HeartRate(zone)
		}
	}

	return Open()
}
