package services

import (
	"math"

	"github.com/oscardel13/calorie-tracker/models"
)

// DayOverride stands in a draft item list for one day, for previewing an
// edit before it is saved.
type DayOverride struct {
	Date  models.Date   `json:"date"`
	Items []models.Item `json:"items"`
}

// Allowance is the Adjusted Daily Allowance of a week.
type Allowance struct {
	Value             float64 `json:"value"`
	RemainingCalories float64 `json:"remaining_calories"`
	MissingDays       int     `json:"missing_days"`
}

// ComputeAdjustedDailyAllowance spreads the calories left in the weekly goal
// over the days that have nothing logged yet.
//
// A day counts as missing when its logged calories total exactly zero. That
// includes past days the user skipped as well as days not yet reached.
func ComputeAdjustedDailyAllowance(week models.Week, override *DayOverride) Allowance {
	var consumed float64
	missing := 0
	for _, d := range week.Days {
		items := d.Items
		if override != nil && d.Date == override.Date {
			items = override.Items
		}
		cals := SumItems(items).Calories
		consumed += cals
		if cals == 0 {
			missing++
		}
	}

	remaining := math.Max(week.CaloriesGoal-consumed, 0)

	var value float64
	if missing > 0 {
		value = math.Ceil(remaining / float64(missing))
	}
	return Allowance{Value: value, RemainingCalories: remaining, MissingDays: missing}
}
