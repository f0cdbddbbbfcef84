package repository

import (
	"context"
	"errors"

	"github.com/oscardel13/calorie-tracker/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrNoWeeks      = errors.New("user has no weeks")
	ErrFoodNotFound = errors.New("saved food not found")
)

// WeekUpdater derives the new latest week from the stored one.
type WeekUpdater func(prev models.Week) (models.Week, error)

// Store persists users, their weeks and their food libraries. Each call is
// one atomic write; concurrent writers are last-writer-wins.
type Store interface {
	GetUser(ctx context.Context, name string) (*models.User, error)
	UpsertUser(ctx context.Context, user models.User) error
	AddWeek(ctx context.Context, name string, week models.Week) (*models.User, error)
	UpdateLatestWeek(ctx context.Context, name string, fn WeekUpdater) (*models.User, error)

	ListSavedFoods(ctx context.Context, name string) ([]models.SavedFood, error)
	GetSavedFood(ctx context.Context, name, id string) (models.SavedFood, error)
	AddSavedFood(ctx context.Context, name string, food models.SavedFood) ([]models.SavedFood, error)
	UpdateSavedFood(ctx context.Context, name string, food models.SavedFood) ([]models.SavedFood, error)
	RemoveSavedFood(ctx context.Context, name, id string) ([]models.SavedFood, error)
	BumpSavedFoodUse(ctx context.Context, name, id string) error

	ListUsers(ctx context.Context) ([]models.User, error)
	ReplaceAll(ctx context.Context, users []models.User) error
}
