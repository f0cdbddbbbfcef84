package models

import (
	"errors"
	"fmt"
)

const DaysPerWeek = 7

var ErrInvalidWeek = errors.New("invalid week")

// Item is one logged food entry. Calories is required; the other macros
// default to zero and may be absent from older stored records.
type Item struct {
	Date     Date    `json:"date"`
	Name     string  `json:"name,omitempty"`
	Calories float64 `json:"calories"`
	Carbs    float64 `json:"carbs,omitempty"`
	Protein  float64 `json:"protein,omitempty"`
	Fiber    float64 `json:"fiber,omitempty"`
}

func (it Item) Macros() Macros {
	return Macros{Calories: it.Calories, Carbs: it.Carbs, Protein: it.Protein, Fiber: it.Fiber}
}

// Day is one calendar date of a Week. Items are kept newest first.
type Day struct {
	Date         Date    `json:"date"`
	CaloriesGoal float64 `json:"calories_goal"`
	CarbsGoal    float64 `json:"carbs_goal"`
	ProteinGoal  float64 `json:"protein_goal"`
	FiberGoal    float64 `json:"fiber_goal"`
	Items        []Item  `json:"items"`
}

func (d Day) Goals() Macros {
	return Macros{Calories: d.CaloriesGoal, Carbs: d.CarbsGoal, Protein: d.ProteinGoal, Fiber: d.FiberGoal}
}

// Week is seven consecutive Days. The weekly goals are stored as entered and
// may differ slightly from the sum of the rounded per-day goals.
type Week struct {
	Name         string  `json:"week_name"`
	Start        Date    `json:"start"`
	End          Date    `json:"end"`
	CaloriesGoal float64 `json:"calories_goal"`
	CarbsGoal    float64 `json:"carbs_goal"`
	ProteinGoal  float64 `json:"protein_goal"`
	FiberGoal    float64 `json:"fiber_goal"`
	Days         []Day   `json:"days"`
}

func (w Week) Goals() Macros {
	return Macros{Calories: w.CaloriesGoal, Carbs: w.CarbsGoal, Protein: w.ProteinGoal, Fiber: w.FiberGoal}
}

// DayIndex returns the position of the day with the given date, or -1.
func (w Week) DayIndex(date Date) int {
	for i, d := range w.Days {
		if d.Date == date {
			return i
		}
	}
	return -1
}

// Validate checks the calendar shape: seven consecutive days from Start and
// End == Start+6.
func (w Week) Validate() error {
	if w.Start.IsZero() {
		return fmt.Errorf("%w: missing start date", ErrInvalidWeek)
	}
	if w.End != w.Start.AddDays(DaysPerWeek-1) {
		return fmt.Errorf("%w: end %s is not start %s + 6 days", ErrInvalidWeek, w.End, w.Start)
	}
	if len(w.Days) != DaysPerWeek {
		return fmt.Errorf("%w: %d days, want %d", ErrInvalidWeek, len(w.Days), DaysPerWeek)
	}
	for i, d := range w.Days {
		if want := w.Start.AddDays(i); d.Date != want {
			return fmt.Errorf("%w: day %d is %s, want %s", ErrInvalidWeek, i, d.Date, want)
		}
	}
	return nil
}
