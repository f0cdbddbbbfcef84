package models

import "time"

// SavedFood is a reusable macro template from the user's food library.
type SavedFood struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Carbs    float64 `json:"carbs,omitempty"`
	Protein  float64 `json:"protein,omitempty"`
	Fiber    float64 `json:"fiber,omitempty"`
	Uses     int     `json:"uses,omitempty"`
}

// ToItem prefills an Item for the given day from the template.
func (f SavedFood) ToItem(date Date) Item {
	return Item{
		Date:     date,
		Name:     f.Name,
		Calories: f.Calories,
		Carbs:    f.Carbs,
		Protein:  f.Protein,
		Fiber:    f.Fiber,
	}
}

// SavedFoodRecord is the saved_foods table. ID is unique within one user's
// library only. Seq grows with every insert and lists are read by Seq
// descending, newest first.
type SavedFoodRecord struct {
	PK        uint   `gorm:"column:pk;primaryKey;autoIncrement"`
	ID        string `gorm:"column:id;size:64;not null;uniqueIndex:idx_food_user_id"`
	UserID    uint   `gorm:"not null;uniqueIndex:idx_food_user_id"`
	Seq       int64  `gorm:"not null"`
	Name      string `gorm:"not null"`
	Calories  float64
	Carbs     float64
	Protein   float64
	Fiber     float64
	Uses      int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (SavedFoodRecord) TableName() string { return "saved_foods" }

func (r SavedFoodRecord) ToModel() SavedFood {
	return SavedFood{
		ID:       r.ID,
		Name:     r.Name,
		Calories: r.Calories,
		Carbs:    r.Carbs,
		Protein:  r.Protein,
		Fiber:    r.Fiber,
		Uses:     r.Uses,
	}
}
