package workout

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ErrPlanUnparseable is returned when generator output is not a JSON array of workout days
var ErrPlanUnparseable = errors.New("failed to parse training plan")

// ParsePlan reads a plan from generator output. Markdown code fences
// (with or without a json tag) are stripped first.
func ParsePlan(text string) ([]Day, error) {
	body := bytes.TrimSpace([]byte(StripFences(text)))
	if len(body) == 0 || body[0] != '[' {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrPlanUnparseable)
	}

	var days []Day
	if err := json.Unmarshal(body, &days); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPlanUnparseable, err)
	}

	for i, d := range days {
		if d.Date == "" {
			continue
		}
		if _, err := time.Parse(dateLayout, d.Date); err != nil {
			return nil, fmt.Errorf("%w: workout %d (%s) has invalid date %q", ErrPlanUnparseable, i+1, d.DisplayName(), d.Date)
		}
	}
	return days, nil
}

// SavePlan writes a plan as indented JSON that ParsePlan reads back
func SavePlan(path string, days []Day) error {
	if days == nil {
		days = []Day{}
	}
	b, err := json.MarshalIndent(days, "", "  ")
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("write plan: %w", err)
	}
	return nil
}

// StripFences returns the content of the first ```json (or bare ```) block, or the trimmed text when there is none
func StripFences(text string) string {
	s := strings.TrimSpace(text)
	if _, after, ok := strings.Cut(s, "```json"); ok {
		block, _, _ := strings.Cut(after, "```")
		return strings.TrimSpace(block)
	}
	if _, after, ok := strings.Cut(s, "```"); ok {
		block, _, _ := strings.Cut(after, "```")
		return strings.TrimSpace(block)
	}
	return s
}

// ScheduledDate returns the calendar date of the day, if it has one
func (d Day) ScheduledDate() (time.Time, bool) {
	if d.Date == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, d.Date)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// UnmarshalJSON accepts numbers and nulls where text is expected, since
// generators sometimes write "duration": 10 instead of "duration": "10".
func (s *RawStep) UnmarshalJSON(b []byte) error {
	var raw struct {
		Name      looseText `json:"name"`
		Duration  looseText `json:"duration"`
		Target    looseText `json:"target"`
		Intensity looseText `json:"intensity"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*s = RawStep{
		Name:      string(raw.Name),
		Duration:  string(raw.Duration),
		Target:    string(raw.Target),
		Intensity: string(raw.Intensity),
	}
	return nil
}

type looseText string

func (t *looseText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*t = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = looseText(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("expected text or number, got %s", b)
		}
		*t = looseText(n.String())
	}
	return nil
}
