package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/oscardel13/calorie-tracker/models"
)

var (
	ErrUnknownMode = errors.New("unknown goal mode")
	ErrDayNotFound = errors.New("day not found in week")
	ErrItemIndex   = errors.New("item index out of range")
	ErrInvalidItem = errors.New("item macros must be non-negative numbers")
)

// GoalMode selects how a week's goals are entered.
type GoalMode string

const (
	// ModeWeekly spreads weekly totals evenly over the days.
	ModeWeekly GoalMode = "weekly"
	// ModeDaily takes seven per-day goal sets and sums them.
	ModeDaily GoalMode = "daily"
)

// WeekEdit describes a week to build, or the new shape of an existing one.
// Weekly is read in ModeWeekly, Daily in ModeDaily.
type WeekEdit struct {
	Name   string          `json:"week_name"`
	Start  models.Date     `json:"start"`
	Mode   GoalMode        `json:"mode"`
	Weekly models.Macros   `json:"weekly"`
	Daily  []models.Macros `json:"daily,omitempty"`
}

// BuildFromEdit builds a fresh, item-less week. An empty mode means weekly.
func BuildFromEdit(edit WeekEdit) (models.Week, error) {
	switch edit.Mode {
	case ModeWeekly, "":
		return BuildWeek(edit.Name, edit.Start, edit.Weekly)
	case ModeDaily:
		return BuildWeekFromDailyGoals(edit.Name, edit.Start, edit.Daily)
	default:
		return models.Week{}, fmt.Errorf("%w: %q", ErrUnknownMode, edit.Mode)
	}
}

// EditWeek rebuilds old with new dates and goals. The items of day i move to
// the new day i and their dates are rewritten to match. A blank name keeps
// the old one. old is not modified.
func EditWeek(old models.Week, edit WeekEdit) (models.Week, error) {
	if strings.TrimSpace(edit.Name) == "" {
		edit.Name = old.Name
	}
	next, err := BuildFromEdit(edit)
	if err != nil {
		return models.Week{}, err
	}
	for i := range next.Days {
		if i >= len(old.Days) {
			break
		}
		next.Days[i].Items = stampItems(old.Days[i].Items, next.Days[i].Date)
	}
	return next, nil
}

// stampItems copies items with every date set to date.
func stampItems(items []models.Item, date models.Date) []models.Item {
	out := make([]models.Item, len(items))
	for i, it := range items {
		it.Date = date
		out[i] = it
	}
	return out
}

func validateItem(it models.Item) error {
	m := it.Macros()
	if !finite(m.Calories) {
		return ErrInvalidCalories
	}
	for _, v := range []float64{m.Calories, m.Carbs, m.Protein, m.Fiber} {
		if !finite(v) || v < 0 {
			return ErrInvalidItem
		}
	}
	return nil
}

// withDay returns a copy of week whose day at date is replaced by fn's result.
// A date outside the week is an error: it means the caller's view of the week
// is out of sync with the stored one.
func withDay(week models.Week, date models.Date, fn func(models.Day) (models.Day, error)) (models.Week, error) {
	idx := week.DayIndex(date)
	if idx == -1 {
		return models.Week{}, fmt.Errorf("%w: %s in week %q", ErrDayNotFound, date, week.Name)
	}
	day, err := fn(week.Days[idx])
	if err != nil {
		return models.Week{}, err
	}
	days := make([]models.Day, len(week.Days))
	copy(days, week.Days)
	days[idx] = day
	week.Days = days
	return week, nil
}

// AddItemToDay puts item at the top of the day's list, newest first.
func AddItemToDay(week models.Week, date models.Date, item models.Item) (models.Week, error) {
	if err := validateItem(item); err != nil {
		return models.Week{}, err
	}
	return withDay(week, date, func(d models.Day) (models.Day, error) {
		item.Date = date
		items := make([]models.Item, 0, len(d.Items)+1)
		items = append(items, item)
		d.Items = append(items, d.Items...)
		return d, nil
	})
}

// ReplaceDayItems swaps in the full item list of one day, as when an edited
// day is saved.
func ReplaceDayItems(week models.Week, date models.Date, items []models.Item) (models.Week, error) {
	for _, it := range items {
		if err := validateItem(it); err != nil {
			return models.Week{}, err
		}
	}
	return withDay(week, date, func(d models.Day) (models.Day, error) {
		d.Items = stampItems(items, date)
		return d, nil
	})
}

func RemoveItem(week models.Week, date models.Date, index int) (models.Week, error) {
	return withDay(week, date, func(d models.Day) (models.Day, error) {
		if index < 0 || index >= len(d.Items) {
			return d, fmt.Errorf("%w: %d of %d", ErrItemIndex, index, len(d.Items))
		}
		items := make([]models.Item, 0, len(d.Items)-1)
		items = append(items, d.Items[:index]...)
		d.Items = append(items, d.Items[index+1:]...)
		return d, nil
	})
}
