package services

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/oscardel13/calorie-tracker/models"
	"github.com/oscardel13/calorie-tracker/repository"
)

var ErrFoodName = errors.New("saved food needs a name")

// FoodSort orders a food library listing.
type FoodSort string

const (
	FoodSortAlpha FoodSort = "alpha"
	FoodSortUsed  FoodSort = "used"
)

// FilterFoods keeps foods whose name contains query (case-insensitive) and
// orders them by name, or by use count then name. foods is not modified.
func FilterFoods(foods []models.SavedFood, query string, by FoodSort) []models.SavedFood {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.SavedFood, 0, len(foods))
	for _, f := range foods {
		if q == "" || strings.Contains(strings.ToLower(f.Name), q) {
			out = append(out, f)
		}
	}

	byName := func(a, b models.SavedFood) bool {
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	}
	switch by {
	case FoodSortAlpha:
		sort.SliceStable(out, func(i, j int) bool { return byName(out[i], out[j]) })
	case FoodSortUsed:
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Uses != out[j].Uses {
				return out[i].Uses > out[j].Uses
			}
			return byName(out[i], out[j])
		})
	}
	return out
}

// FoodService manages a user's food library.
type FoodService struct {
	store repository.Store
	hub   *RealtimeHub
	log   *zap.Logger
}

func NewFoodService(store repository.Store, hub *RealtimeHub, log *zap.Logger) *FoodService {
	if log == nil {
		log = zap.NewNop()
	}
	return &FoodService{store: store, hub: hub, log: log}
}

func validateFood(f models.SavedFood) error {
	if strings.TrimSpace(f.Name) == "" {
		return ErrFoodName
	}
	return validateItem(models.Item{Calories: f.Calories, Carbs: f.Carbs, Protein: f.Protein, Fiber: f.Fiber})
}

// List returns the library newest first unless a sort is given.
func (s *FoodService) List(ctx context.Context, user, query string, by FoodSort) ([]models.SavedFood, error) {
	foods, err := s.store.ListSavedFoods(ctx, user)
	if err != nil {
		return nil, err
	}
	return FilterFoods(foods, query, by), nil
}

func (s *FoodService) changed(user, action string, foods []models.SavedFood) {
	s.log.Info("Food library updated",
		zap.String("user", user),
		zap.String("action", action),
		zap.Int("foods", len(foods)))
	s.hub.Broadcast(user, EventFoodsUpdated, foods)
}

func (s *FoodService) Add(ctx context.Context, user string, food models.SavedFood) ([]models.SavedFood, error) {
	food.Name = strings.TrimSpace(food.Name)
	if err := validateFood(food); err != nil {
		return nil, err
	}
	food.Uses = 0
	foods, err := s.store.AddSavedFood(ctx, user, food)
	if err != nil {
		return nil, err
	}
	s.changed(user, "add", foods)
	return foods, nil
}

func (s *FoodService) Update(ctx context.Context, user string, food models.SavedFood) ([]models.SavedFood, error) {
	food.Name = strings.TrimSpace(food.Name)
	if err := validateFood(food); err != nil {
		return nil, err
	}
	foods, err := s.store.UpdateSavedFood(ctx, user, food)
	if err != nil {
		return nil, err
	}
	s.changed(user, "update", foods)
	return foods, nil
}

func (s *FoodService) Remove(ctx context.Context, user, id string) ([]models.SavedFood, error) {
	foods, err := s.store.RemoveSavedFood(ctx, user, id)
	if err != nil {
		return nil, err
	}
	s.changed(user, "remove", foods)
	return foods, nil
}
