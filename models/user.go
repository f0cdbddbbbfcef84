package models

import "time"

// User owns its weeks (append-only plus "update latest") and its food library.
// PIN holds a bcrypt hash once stored; an empty PIN means none was set.
type User struct {
	Name       string      `json:"user"`
	PIN        string      `json:"pin,omitempty"`
	Weeks      []Week      `json:"weeks"`
	SavedFoods []SavedFood `json:"saved_foods,omitempty"`
}

func (u User) LatestWeek() (Week, bool) {
	if len(u.Weeks) == 0 {
		return Week{}, false
	}
	return u.Weeks[len(u.Weeks)-1], true
}

// UserRecord is the users table.
type UserRecord struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:128;uniqueIndex;not null"`
	PINHash   string `gorm:"size:72"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (UserRecord) TableName() string { return "users" }

// WeekRecord stores one Week as its JSON document, so the YYYY-MM-DD strings
// round-trip untouched. Position orders a user's weeks oldest first.
type WeekRecord struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index:idx_week_user_pos,unique;not null"`
	Position  int    `gorm:"index:idx_week_user_pos,unique;not null"`
	Payload   string `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (WeekRecord) TableName() string { return "weeks" }
