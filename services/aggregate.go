package services

import "github.com/oscardel13/calorie-tracker/models"

// SumItems totals each macro independently. Empty input gives all zeros.
func SumItems(items []models.Item) models.Macros {
	var total models.Macros
	for _, it := range items {
		total = total.Add(it.Macros())
	}
	return total
}

func SumDay(day models.Day) models.Macros {
	return SumItems(day.Items)
}

func SumWeek(week models.Week) models.Macros {
	var total models.Macros
	for _, d := range week.Days {
		total = total.Add(SumDay(d))
	}
	return total
}

// SumDayGoals adds up the per-day goals of week.
func SumDayGoals(week models.Week) models.Macros {
	var total models.Macros
	for _, d := range week.Days {
		total = total.Add(d.Goals())
	}
	return total
}
