package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oscardel13/calorie-tracker/models"
)

// GormStore is the Store backed by a gorm database (SQLite locally,
// Postgres when configured).
type GormStore struct {
	db    *gorm.DB
	newID func() string
}

var _ Store = (*GormStore)(nil)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, newID: uuid.NewString}
}

func encodeWeek(w models.Week) (string, error) {
	b, err := json.Marshal(w)
	if err != nil {
		return "", fmt.Errorf("encode week %q: %w", w.Name, err)
	}
	return string(b), nil
}

func decodeWeek(payload string) (models.Week, error) {
	var w models.Week
	if err := json.Unmarshal([]byte(payload), &w); err != nil {
		return models.Week{}, fmt.Errorf("decode week: %w", err)
	}
	return w, nil
}

func findUser(tx *gorm.DB, name string) (*models.UserRecord, error) {
	var rec models.UserRecord
	err := tx.Where("name = ?", name).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func listFoods(tx *gorm.DB, userID uint) ([]models.SavedFood, error) {
	var recs []models.SavedFoodRecord
	if err := tx.Where("user_id = ?", userID).Order("seq DESC").Find(&recs).Error; err != nil {
		return nil, err
	}
	foods := make([]models.SavedFood, 0, len(recs))
	for _, r := range recs {
		foods = append(foods, r.ToModel())
	}
	return foods, nil
}

func loadUser(tx *gorm.DB, rec *models.UserRecord) (*models.User, error) {
	var weekRecs []models.WeekRecord
	if err := tx.Where("user_id = ?", rec.ID).Order("position ASC").Find(&weekRecs).Error; err != nil {
		return nil, err
	}
	weeks := make([]models.Week, 0, len(weekRecs))
	for _, wr := range weekRecs {
		w, err := decodeWeek(wr.Payload)
		if err != nil {
			return nil, err
		}
		weeks = append(weeks, w)
	}

	foods, err := listFoods(tx, rec.ID)
	if err != nil {
		return nil, err
	}

	return &models.User{Name: rec.Name, PIN: rec.PINHash, Weeks: weeks, SavedFoods: foods}, nil
}

func (s *GormStore) GetUser(ctx context.Context, name string) (*models.User, error) {
	var out *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := findUser(tx, name)
		if err != nil {
			return err
		}
		out, err = loadUser(tx, rec)
		return err
	})
	return out, err
}

// UpsertUser inserts the user or replaces its PIN, weeks and foods wholesale.
func (s *GormStore) UpsertUser(ctx context.Context, user models.User) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.upsert(tx, user)
	})
}

func (s *GormStore) upsert(tx *gorm.DB, user models.User) error {
	rec, err := findUser(tx, user.Name)
	switch {
	case errors.Is(err, ErrUserNotFound):
		rec = &models.UserRecord{Name: user.Name, PINHash: user.PIN}
		if err := tx.Create(rec).Error; err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		rec.PINHash = user.PIN
		if err := tx.Save(rec).Error; err != nil {
			return err
		}
	}

	if err := tx.Where("user_id = ?", rec.ID).Delete(&models.WeekRecord{}).Error; err != nil {
		return err
	}
	for i, w := range user.Weeks {
		payload, err := encodeWeek(w)
		if err != nil {
			return err
		}
		if err := tx.Create(&models.WeekRecord{UserID: rec.ID, Position: i, Payload: payload}).Error; err != nil {
			return err
		}
	}

	if err := tx.Where("user_id = ?", rec.ID).Delete(&models.SavedFoodRecord{}).Error; err != nil {
		return err
	}
	n := len(user.SavedFoods)
	seen := make(map[string]bool, n)
	for i, f := range user.SavedFoods {
		if f.ID == "" || seen[f.ID] {
			f.ID = s.newID()
		}
		seen[f.ID] = true
		// The list is newest first, so the first food gets the highest Seq.
		if err := tx.Create(foodRecord(rec.ID, int64(n-i), f)).Error; err != nil {
			return err
		}
	}
	return nil
}

func foodRecord(userID uint, seq int64, f models.SavedFood) *models.SavedFoodRecord {
	return &models.SavedFoodRecord{
		ID:       f.ID,
		UserID:   userID,
		Seq:      seq,
		Name:     f.Name,
		Calories: f.Calories,
		Carbs:    f.Carbs,
		Protein:  f.Protein,
		Fiber:    f.Fiber,
		Uses:     f.Uses,
	}
}

func (s *GormStore) AddWeek(ctx context.Context, name string, week models.Week) (*models.User, error) {
	var out *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := findUser(tx, name)
		if err != nil {
			return err
		}
		var next int
		if err := tx.Model(&models.WeekRecord{}).
			Where("user_id = ?", rec.ID).
			Select("COALESCE(MAX(position) + 1, 0)").
			Scan(&next).Error; err != nil {
			return err
		}
		payload, err := encodeWeek(week)
		if err != nil {
			return err
		}
		if err := tx.Create(&models.WeekRecord{UserID: rec.ID, Position: next, Payload: payload}).Error; err != nil {
			return err
		}
		out, err = loadUser(tx, rec)
		return err
	})
	return out, err
}

// UpdateLatestWeek replaces the user's last week with fn's result. An error
// from fn aborts the write.
func (s *GormStore) UpdateLatestWeek(ctx context.Context, name string, fn WeekUpdater) (*models.User, error) {
	var out *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := findUser(tx, name)
		if err != nil {
			return err
		}
		var wr models.WeekRecord
		err = tx.Where("user_id = ?", rec.ID).Order("position DESC").First(&wr).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoWeeks
		}
		if err != nil {
			return err
		}

		prev, err := decodeWeek(wr.Payload)
		if err != nil {
			return err
		}
		next, err := fn(prev)
		if err != nil {
			return err
		}
		payload, err := encodeWeek(next)
		if err != nil {
			return err
		}
		if err := tx.Model(&wr).Update("payload", payload).Error; err != nil {
			return err
		}
		out, err = loadUser(tx, rec)
		return err
	})
	return out, err
}

// ListSavedFoods returns the library newest first; an unknown user has an
// empty library.
func (s *GormStore) ListSavedFoods(ctx context.Context, name string) ([]models.SavedFood, error) {
	var out []models.SavedFood
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := findUser(tx, name)
		if errors.Is(err, ErrUserNotFound) {
			out = []models.SavedFood{}
			return nil
		}
		if err != nil {
			return err
		}
		out, err = listFoods(tx, rec.ID)
		return err
	})
	return out, err
}

func (s *GormStore) GetSavedFood(ctx context.Context, name, id string) (models.SavedFood, error) {
	var out models.SavedFood
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := findUser(tx, name)
		if err != nil {
			return err
		}
		var fr models.SavedFoodRecord
		err = tx.Where("id = ? AND user_id = ?", id, rec.ID).First(&fr).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFoodNotFound
		}
		if err != nil {
			return err
		}
		out = fr.ToModel()
		return nil
	})
	return out, err
}

// AddSavedFood assigns a fresh id and puts the food at the top of the list.
func (s *GormStore) AddSavedFood(ctx context.Context, name string, food models.SavedFood) ([]models.SavedFood, error) {
	var out []models.SavedFood
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := findUser(tx, name)
		if err != nil {
			return err
		}
		var seq int64
		if err := tx.Model(&models.SavedFoodRecord{}).
			Where("user_id = ?", rec.ID).
			Select("COALESCE(MAX(seq), 0) + 1").
			Scan(&seq).Error; err != nil {
			return err
		}
		food.ID = s.newID()
		if err := tx.Create(foodRecord(rec.ID, seq, food)).Error; err != nil {
			return err
		}
		out, err = listFoods(tx, rec.ID)
		return err
	})
	return out, err
}

// UpdateSavedFood replaces the food with the same id. An unknown id leaves
// the library unchanged.
func (s *GormStore) UpdateSavedFood(ctx context.Context, name string, food models.SavedFood) ([]models.SavedFood, error) {
	var out []models.SavedFood
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := findUser(tx, name)
		if err != nil {
			return err
		}
		if err := tx.Model(&models.SavedFoodRecord{}).
			Where("id = ? AND user_id = ?", food.ID, rec.ID).
			Updates(map[string]interface{}{
				"name":     food.Name,
				"calories": food.Calories,
				"carbs":    food.Carbs,
				"protein":  food.Protein,
				"fiber":    food.Fiber,
			}).Error; err != nil {
			return err
		}
		out, err = listFoods(tx, rec.ID)
		return err
	})
	return out, err
}

func (s *GormStore) RemoveSavedFood(ctx context.Context, name, id string) ([]models.SavedFood, error) {
	var out []models.SavedFood
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := findUser(tx, name)
		if err != nil {
			return err
		}
		if err := tx.Where("id = ? AND user_id = ?", id, rec.ID).Delete(&models.SavedFoodRecord{}).Error; err != nil {
			return err
		}
		out, err = listFoods(tx, rec.ID)
		return err
	})
	return out, err
}

func (s *GormStore) BumpSavedFoodUse(ctx context.Context, name, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := findUser(tx, name)
		if err != nil {
			return err
		}
		res := tx.Model(&models.SavedFoodRecord{}).
			Where("id = ? AND user_id = ?", id, rec.ID).
			UpdateColumn("uses", gorm.Expr("uses + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrFoodNotFound
		}
		return nil
	})
}

func (s *GormStore) ListUsers(ctx context.Context) ([]models.User, error) {
	var out []models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recs []models.UserRecord
		if err := tx.Order("name ASC").Find(&recs).Error; err != nil {
			return err
		}
		out = make([]models.User, 0, len(recs))
		for i := range recs {
			u, err := loadUser(tx, &recs[i])
			if err != nil {
				return err
			}
			out = append(out, *u)
		}
		return nil
	})
	return out, err
}

// ReplaceAll drops every stored user and writes users in their place.
func (s *GormStore) ReplaceAll(ctx context.Context, users []models.User) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range []interface{}{&models.SavedFoodRecord{}, &models.WeekRecord{}, &models.UserRecord{}} {
			if err := tx.Where("1 = 1").Delete(table).Error; err != nil {
				return err
			}
		}
		for _, u := range users {
			if err := s.upsert(tx, u); err != nil {
				return fmt.Errorf("import user %q: %w", u.Name, err)
			}
		}
		return nil
	})
}
