// Package prompt renders the coaching prompt sent to the plan generator
package prompt

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/briangreenhill/prplan/internal/fitness"
)

const (
	dateLayout        = "2006-01-02"
	DefaultLongRunDay = "Saturday"
)

// ErrInvalidRaceDate is returned when the race date is not YYYY-MM-DD
var ErrInvalidRaceDate = errors.New("race date must be YYYY-MM-DD")

// Request is everything the prompt needs about the athlete and the race
type Request struct {
	Metrics    fitness.Metrics
	Distance   string
	GoalPace   string
	RaceDate   string // YYYY-MM-DD
	LongRunDay string
	Today      time.Time
}

// data is what the template sees
type data struct {
	AthleteJSON    string
	Distance       string
	GoalPace       string
	RaceDate       string
	WeeksUntilRace int
	Today          string
	LongRunDay     string
}

// Generator renders coaching prompts from a template
type Generator struct {
	tmpl *template.Template
}

// NewGenerator uses the template at path, or the built-in one when path is empty
func NewGenerator(path string) (*Generator, error) {
	text := Default()
	name := "default"
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read prompt template: %w", err)
		}
		text, name = string(b), path
	}

	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template %s: %w", name, err)
	}
	return &Generator{tmpl: tmpl}, nil
}

// Build renders the built-in template
func Build(req Request) (string, error) {
	g, err := NewGenerator("")
	if err != nil {
		return "", err
	}
	return g.Build(req)
}

// Build renders the prompt for req
func (g *Generator) Build(req Request) (string, error) {
	race, err := time.Parse(dateLayout, strings.TrimSpace(req.RaceDate))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidRaceDate, req.RaceDate)
	}
	today := req.Today
	if today.IsZero() {
		today = time.Now()
	}
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	athlete, err := json.MarshalIndent(req.Metrics, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode athlete data: %w", err)
	}

	longRun := strings.TrimSpace(req.LongRunDay)
	if longRun == "" {
		longRun = DefaultLongRunDay
	}

	var b strings.Builder
	err = g.tmpl.Execute(&b, data{
		AthleteJSON:    string(athlete),
		Distance:       req.Distance,
		GoalPace:       req.GoalPace,
		RaceDate:       race.Format(dateLayout),
		WeeksUntilRace: WeeksUntil(today, race),
		Today:          today.Format(dateLayout),
		LongRunDay:     longRun,
	})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return b.String(), nil
}

// WeeksUntil counts whole weeks between two calendar dates, rounding down
func WeeksUntil(today, race time.Time) int {
	days := int(race.Sub(today).Hours() / 24)
	weeks := days / 7
	if days%7 != 0 && days < 0 {
		weeks--
	}
	return weeks
}
