package services

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/oscardel13/calorie-tracker/models"
)

var (
	ErrInvalidCalories  = errors.New("calories goal must be a number")
	ErrInvalidGoal      = errors.New("goals must be non-negative numbers")
	ErrMissingStartDate = errors.New("start date is required")
	ErrDailyGoalCount   = errors.New("exactly seven daily goals are required")
)

// split7 spreads a weekly total evenly over seven days, rounded.
func split7(total float64) float64 {
	return math.Round(total / models.DaysPerWeek)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func validateGoals(g models.Macros) error {
	if !finite(g.Calories) {
		return ErrInvalidCalories
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"calories", g.Calories},
		{"carbs", g.Carbs},
		{"protein", g.Protein},
		{"fiber", g.Fiber},
	} {
		if !finite(f.v) || f.v < 0 {
			return fmt.Errorf("%w: %s = %v", ErrInvalidGoal, f.name, f.v)
		}
	}
	return nil
}

// BuildWeek creates a week from weekly totals. Each day gets round(total/7)
// per macro; the weekly totals are kept verbatim, so 7x the per-day figure may
// differ slightly from them.
func BuildWeek(name string, start models.Date, weekly models.Macros) (models.Week, error) {
	if err := validateGoals(weekly); err != nil {
		return models.Week{}, err
	}
	if start.IsZero() {
		return models.Week{}, ErrMissingStartDate
	}

	perDay := weekly.Map(split7)
	daily := make([]models.Macros, models.DaysPerWeek)
	for i := range daily {
		daily[i] = perDay
	}
	return assembleWeek(name, start, weekly, daily), nil
}

// BuildWeekFromDailyGoals creates a week from seven explicit per-day goal
// sets. The weekly totals are their exact sum.
func BuildWeekFromDailyGoals(name string, start models.Date, daily []models.Macros) (models.Week, error) {
	if len(daily) != models.DaysPerWeek {
		return models.Week{}, fmt.Errorf("%w: got %d", ErrDailyGoalCount, len(daily))
	}
	var total models.Macros
	for i, g := range daily {
		if err := validateGoals(g); err != nil {
			return models.Week{}, fmt.Errorf("day %d: %w", i+1, err)
		}
		total = total.Add(g)
	}
	if start.IsZero() {
		return models.Week{}, ErrMissingStartDate
	}
	return assembleWeek(name, start, total, daily), nil
}

func assembleWeek(name string, start models.Date, totals models.Macros, daily []models.Macros) models.Week {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultWeekName(start)
	}

	days := make([]models.Day, models.DaysPerWeek)
	for i := range days {
		g := daily[i]
		days[i] = models.Day{
			Date:         start.AddDays(i),
			CaloriesGoal: g.Calories,
			CarbsGoal:    g.Carbs,
			ProteinGoal:  g.Protein,
			FiberGoal:    g.Fiber,
			Items:        []models.Item{},
		}
	}

	return models.Week{
		Name:         name,
		Start:        start,
		End:          start.AddDays(models.DaysPerWeek - 1),
		CaloriesGoal: totals.Calories,
		CarbsGoal:    totals.Carbs,
		ProteinGoal:  totals.Protein,
		FiberGoal:    totals.Fiber,
		Days:         days,
	}
}

// DefaultWeekName labels a week by its span, e.g. "Week • Nov 3–Nov 9, 2025".
func DefaultWeekName(start models.Date) string {
	end := start.AddDays(models.DaysPerWeek - 1)
	return fmt.Sprintf("Week • %s–%s", start.Format("Jan 2"), end.Format("Jan 2, 2006"))
}

// NextWeekDraft prefills a daily-mode edit for the week after last: it starts
// the day after last.End and copies last's goals, rounded.
func NextWeekDraft(last models.Week) WeekEdit {
	daily := make([]models.Macros, models.DaysPerWeek)
	for i := range daily {
		if i < len(last.Days) {
			daily[i] = last.Days[i].Goals().Map(math.Round)
		}
	}
	return WeekEdit{
		Start:  last.End.AddDays(1),
		Mode:   ModeDaily,
		Weekly: last.Goals().Map(math.Round),
		Daily:  daily,
	}
}
