package services

import (
	"math"

	"github.com/oscardel13/calorie-tracker/models"
)

// DayPlan previews a day with a set of planned items on top of what is
// already logged.
type DayPlan struct {
	Date      models.Date   `json:"date"`
	Goals     models.Macros `json:"goals"`
	Current   models.Macros `json:"current"`
	Planned   models.Macros `json:"planned"`
	Remaining models.Macros `json:"remaining"`
}

// PlanDay computes what is left of the day's goals after current and planned
// items. Calories may go negative to show an overshoot, and so may carbs when
// a carbs goal is set; protein and fiber stop at zero.
func PlanDay(day models.Day, drafts []models.Item) DayPlan {
	current := SumDay(day)
	planned := SumItems(drafts)
	used := current.Add(planned)

	left := func(goal, used float64) float64 { return math.Ceil(goal - used) }

	carbs := left(day.CarbsGoal, used.Carbs)
	if day.CarbsGoal <= 0 {
		carbs = math.Max(0, carbs)
	}

	return DayPlan{
		Date:    day.Date,
		Goals:   day.Goals(),
		Current: current,
		Planned: planned,
		Remaining: models.Macros{
			Calories: left(day.CaloriesGoal, used.Calories),
			Carbs:    carbs,
			Protein:  math.Max(left(day.ProteinGoal, used.Protein), 0),
			Fiber:    math.Max(left(day.FiberGoal, used.Fiber), 0),
		},
	}
}
