package services

import (
	"math"

	"github.com/oscardel13/calorie-tracker/models"
)

// DailyGoalFromWeek averages the per-day goals of week, rounded.
func DailyGoalFromWeek(week models.Week) models.Macros {
	if len(week.Days) == 0 {
		return models.Macros{}
	}
	n := float64(len(week.Days))
	return SumDayGoals(week).Map(func(v float64) float64 { return math.Round(v / n) })
}

// Progress compares a consumed amount with its goal. Percent is capped at 1.
type Progress struct {
	Consumed float64 `json:"consumed"`
	Goal     float64 `json:"goal"`
	Percent  float64 `json:"percent"`
}

func progressOf(consumed, goal float64) Progress {
	pct := 0.0
	if goal > 0 {
		pct = math.Min(consumed/goal, 1)
	}
	return Progress{Consumed: consumed, Goal: goal, Percent: pct}
}

func progressMap(consumed, goal models.Macros) map[string]Progress {
	return map[string]Progress{
		"calories": progressOf(consumed.Calories, goal.Calories),
		"carbs":    progressOf(consumed.Carbs, goal.Carbs),
		"protein":  progressOf(consumed.Protein, goal.Protein),
		"fiber":    progressOf(consumed.Fiber, goal.Fiber),
	}
}

type DaySummary struct {
	Date     models.Date         `json:"date"`
	Totals   models.Macros       `json:"totals"`
	Progress map[string]Progress `json:"progress"`
}

// WeekSummary is everything a week view renders, derived read-only from the Week.
type WeekSummary struct {
	Week      models.Week         `json:"week"`
	Totals    models.Macros       `json:"totals"`
	DailyGoal models.Macros       `json:"daily_goal"`
	Progress  map[string]Progress `json:"progress"`
	Days      []DaySummary        `json:"days"`
	Allowance Allowance           `json:"allowance"`
}

func SummarizeWeek(week models.Week) WeekSummary {
	totals := SumWeek(week)
	days := make([]DaySummary, len(week.Days))
	for i, d := range week.Days {
		t := SumDay(d)
		days[i] = DaySummary{Date: d.Date, Totals: t, Progress: progressMap(t, d.Goals())}
	}
	return WeekSummary{
		Week:      week,
		Totals:    totals,
		DailyGoal: DailyGoalFromWeek(week),
		Progress:  progressMap(totals, week.Goals()),
		Days:      days,
		Allowance: ComputeAdjustedDailyAllowance(week, nil),
	}
}
