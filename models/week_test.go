package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sevenDays(start Date) []Day {
	days := make([]Day, DaysPerWeek)
	for i := range days {
		days[i] = Day{Date: start.AddDays(i), Items: []Item{}}
	}
	return days
}

func TestWeekValidate(t *testing.T) {
	start := NewDate(2025, time.November, 3)
	good := Week{Name: "w", Start: start, End: start.AddDays(6), Days: sevenDays(start)}
	require.NoError(t, good.Validate())

	t.Run("missing start", func(t *testing.T) {
		w := good
		w.Start = Date{}
		assert.ErrorIs(t, w.Validate(), ErrInvalidWeek)
	})

	t.Run("wrong end", func(t *testing.T) {
		w := good
		w.End = start.AddDays(7)
		assert.ErrorIs(t, w.Validate(), ErrInvalidWeek)
	})

	t.Run("six days", func(t *testing.T) {
		w := good
		w.Days = good.Days[:6]
		assert.ErrorIs(t, w.Validate(), ErrInvalidWeek)
	})

	t.Run("gap in dates", func(t *testing.T) {
		w := good
		w.Days = append([]Day(nil), good.Days...)
		w.Days[3].Date = start.AddDays(10)
		assert.ErrorIs(t, w.Validate(), ErrInvalidWeek)
	})
}

func TestWeekDayIndex(t *testing.T) {
	start := NewDate(2025, time.November, 3)
	w := Week{Start: start, End: start.AddDays(6), Days: sevenDays(start)}

	assert.Equal(t, 0, w.DayIndex(start))
	assert.Equal(t, 6, w.DayIndex(start.AddDays(6)))
	assert.Equal(t, -1, w.DayIndex(start.AddDays(7)))
}

func TestItemOptionalMacrosDecodeAsZero(t *testing.T) {
	var it Item
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2025-11-03","calories":250}`), &it))

	assert.Equal(t, Macros{Calories: 250}, it.Macros())
	assert.Equal(t, "2025-11-03", it.Date.String())
}

func TestWeekJSONRoundTrip(t *testing.T) {
	raw := `{
		"week_name": "Week • Nov 3–Nov 9, 2025",
		"start": "2025-11-03",
		"end": "2025-11-09",
		"calories_goal": 14000,
		"carbs_goal": 1400,
		"protein_goal": 1050,
		"fiber_goal": 210,
		"days": [
			{"date":"2025-11-03","calories_goal":2000,"carbs_goal":200,"protein_goal":150,"fiber_goal":30,
			 "items":[{"date":"2025-11-03","name":"oats","calories":300,"carbs":54,"protein":10,"fiber":8}]}
		]
	}`

	var w Week
	require.NoError(t, json.Unmarshal([]byte(raw), &w))
	out, err := json.Marshal(w)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
}

func TestUserLatestWeek(t *testing.T) {
	_, ok := User{}.LatestWeek()
	assert.False(t, ok)

	u := User{Weeks: []Week{{Name: "a"}, {Name: "b"}}}
	w, ok := u.LatestWeek()
	assert.True(t, ok)
	assert.Equal(t, "b", w.Name)
}
