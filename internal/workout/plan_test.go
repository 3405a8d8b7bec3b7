package workout

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePlan = `[
  {
    "date": "2026-11-02",
    "name": "Week 1 - Tempo",
    "description": "Steady threshold",
    "steps": [
      {"name": "Warm Up", "duration": "2 mi", "target": "8:30/mi", "intensity": "warmup"},
      {"name": "Tempo", "duration": "4 mi", "target": "6:45/mi", "intensity": "active"},
      {"name": "Cool Down", "duration": "1 mi", "target": "8:30/mi", "intensity": "cooldown"}
    ]
  },
  {
    "name": "Shakeout",
    "description": "",
    "steps": [{"name": "Easy", "duration": 20, "target": null}]
  }
]`

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"json fence", "Here you go:\n```json\n[1]\n```\nEnjoy", "[1]"},
		{"bare fence", "```\n[2]\n```", "[2]"},
		{"no fence", "  [3]  ", "[3]"},
		{"unterminated fence", "```json\n[4]", "[4]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFences(tt.in))
		})
	}
}

func TestParsePlan(t *testing.T) {
	for _, text := range []string{samplePlan, "```json\n" + samplePlan + "\n```", "```\n" + samplePlan + "\n```"} {
		days, err := ParsePlan(text)
		require.NoError(t, err)
		require.Len(t, days, 2)

		assert.Equal(t, "Week 1 - Tempo", days[0].Name)
		require.Len(t, days[0].Steps, 3)
		assert.Equal(t, "warmup", days[0].Steps[0].Intensity)

		date, ok := days[0].ScheduledDate()
		require.True(t, ok)
		assert.Equal(t, time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC), date)

		_, ok = days[1].ScheduledDate()
		assert.False(t, ok)
		assert.Equal(t, "20", days[1].Steps[0].Duration, "numeric durations are read as text")
		assert.Equal(t, "", days[1].Steps[0].Target)
	}
}

func TestParsePlanEmptyArray(t *testing.T) {
	days, err := ParsePlan("[]")
	require.NoError(t, err)
	assert.Empty(t, days)
}

func TestParsePlanUnparseable(t *testing.T) {
	inputs := []string{
		"",
		"I could not build a plan, sorry.",
		`{"date": "2026-11-02"}`,
		"null",
		"[{\"name\": \"Broken\"",
		`[{"name": "Bad step", "steps": [{"duration": true}]}]`,
		`[{"name": "Bad date", "date": "next tuesday", "steps": []}]`,
	}

	for _, in := range inputs {
		_, err := ParsePlan(in)
		if !errors.Is(err, ErrPlanUnparseable) {
			t.Errorf("ParsePlan(%q) error = %v, want ErrPlanUnparseable", in, err)
		}
	}
}

func TestSavePlan(t *testing.T) {
	days, err := ParsePlan(samplePlan)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "plan.json")
	require.NoError(t, SavePlan(path, days))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	again, err := ParsePlan(string(b))
	require.NoError(t, err)
	assert.Equal(t, days, again)
}
