package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/oscardel13/calorie-tracker/models"
	"github.com/oscardel13/calorie-tracker/repository"
)

// TrackerService runs the week operations of one user against the store.
// The accounting lives in the pure functions of this package.
type TrackerService struct {
	store repository.Store
	hub   *RealtimeHub
	log   *zap.Logger
}

func NewTrackerService(store repository.Store, hub *RealtimeHub, log *zap.Logger) *TrackerService {
	if log == nil {
		log = zap.NewNop()
	}
	return &TrackerService{store: store, hub: hub, log: log}
}

// NewItem is an item to log. With SavedFoodID set the item is prefilled from
// that template, Overrides replaces the fields the client edited and the
// template's use count goes up. SaveAsFood also stores the item as a new
// template.
type NewItem struct {
	Item        models.Item
	SavedFoodID string
	Overrides   ItemOverrides
	SaveAsFood  bool
}

// ItemOverrides holds the fields set on top of a saved food. Nil keeps the
// template's value.
type ItemOverrides struct {
	Name     *string
	Calories *float64
	Carbs    *float64
	Protein  *float64
	Fiber    *float64
}

func (o ItemOverrides) apply(item models.Item) models.Item {
	if o.Name != nil {
		item.Name = *o.Name
	}
	if o.Calories != nil {
		item.Calories = *o.Calories
	}
	if o.Carbs != nil {
		item.Carbs = *o.Carbs
	}
	if o.Protein != nil {
		item.Protein = *o.Protein
	}
	if o.Fiber != nil {
		item.Fiber = *o.Fiber
	}
	return item
}

func (s *TrackerService) latest(ctx context.Context, user string) (models.Week, error) {
	u, err := s.store.GetUser(ctx, user)
	if err != nil {
		return models.Week{}, err
	}
	w, ok := u.LatestWeek()
	if !ok {
		return models.Week{}, repository.ErrNoWeeks
	}
	return w, nil
}

func (s *TrackerService) ListWeeks(ctx context.Context, user string) ([]models.Week, error) {
	u, err := s.store.GetUser(ctx, user)
	if err != nil {
		return nil, err
	}
	return u.Weeks, nil
}

// CreateWeek builds a week from edit and appends it to the user's weeks.
func (s *TrackerService) CreateWeek(ctx context.Context, user string, edit WeekEdit) (models.Week, error) {
	week, err := BuildFromEdit(edit)
	if err != nil {
		return models.Week{}, err
	}
	if _, err := s.store.AddWeek(ctx, user, week); err != nil {
		return models.Week{}, err
	}
	s.log.Info("Week created",
		zap.String("user", user),
		zap.String("week", week.Name),
		zap.Stringer("start", week.Start),
		zap.String("mode", string(edit.Mode)))
	s.hub.Broadcast(user, EventWeekUpdated, week)
	return week, nil
}

// RepeatLastWeek drafts the week that follows the user's latest one.
func (s *TrackerService) RepeatLastWeek(ctx context.Context, user string) (WeekEdit, error) {
	last, err := s.latest(ctx, user)
	if err != nil {
		return WeekEdit{}, err
	}
	return NextWeekDraft(last), nil
}

func (s *TrackerService) LatestSummary(ctx context.Context, user string) (WeekSummary, error) {
	w, err := s.latest(ctx, user)
	if err != nil {
		return WeekSummary{}, err
	}
	return SummarizeWeek(w), nil
}

func (s *TrackerService) updateLatest(ctx context.Context, user, action string, fn repository.WeekUpdater) (models.Week, error) {
	var next models.Week
	_, err := s.store.UpdateLatestWeek(ctx, user, func(prev models.Week) (models.Week, error) {
		w, err := fn(prev)
		next = w
		return w, err
	})
	if err != nil {
		return models.Week{}, err
	}
	s.log.Info("Week updated",
		zap.String("user", user),
		zap.String("week", next.Name),
		zap.String("action", action))
	s.hub.Broadcast(user, EventWeekUpdated, next)
	return next, nil
}

// EditLatestWeek reshapes the latest week, carrying its items over.
func (s *TrackerService) EditLatestWeek(ctx context.Context, user string, edit WeekEdit) (models.Week, error) {
	return s.updateLatest(ctx, user, "edit", func(prev models.Week) (models.Week, error) {
		return EditWeek(prev, edit)
	})
}

// AddItem logs an item on one day of the latest week.
func (s *TrackerService) AddItem(ctx context.Context, user string, date models.Date, in NewItem) (models.Week, error) {
	item := in.Item
	if in.SavedFoodID != "" {
		food, err := s.store.GetSavedFood(ctx, user, in.SavedFoodID)
		if err != nil {
			return models.Week{}, err
		}
		item = in.Overrides.apply(food.ToItem(date))
	}

	week, err := s.updateLatest(ctx, user, "add item", func(prev models.Week) (models.Week, error) {
		return AddItemToDay(prev, date, item)
	})
	if err != nil {
		return models.Week{}, err
	}

	if in.SavedFoodID != "" {
		if err := s.store.BumpSavedFoodUse(ctx, user, in.SavedFoodID); err != nil {
			s.log.Warn("Could not count saved food use", zap.String("food", in.SavedFoodID), zap.Error(err))
		}
	}
	if in.SaveAsFood {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			name = "Untitled"
		}
		foods, err := s.store.AddSavedFood(ctx, user, models.SavedFood{
			Name:     name,
			Calories: item.Calories,
			Carbs:    item.Carbs,
			Protein:  item.Protein,
			Fiber:    item.Fiber,
		})
		if err != nil {
			return week, fmt.Errorf("item logged but not saved as food: %w", err)
		}
		s.hub.Broadcast(user, EventFoodsUpdated, foods)
	}
	return week, nil
}

func (s *TrackerService) ReplaceItems(ctx context.Context, user string, date models.Date, items []models.Item) (models.Week, error) {
	return s.updateLatest(ctx, user, "replace items", func(prev models.Week) (models.Week, error) {
		return ReplaceDayItems(prev, date, items)
	})
}

func (s *TrackerService) RemoveItem(ctx context.Context, user string, date models.Date, index int) (models.Week, error) {
	return s.updateLatest(ctx, user, "remove item", func(prev models.Week) (models.Week, error) {
		return RemoveItem(prev, date, index)
	})
}

// PreviewAllowance computes the latest week's allowance, optionally with one
// day's items swapped for a draft. Nothing is stored.
func (s *TrackerService) PreviewAllowance(ctx context.Context, user string, override *DayOverride) (Allowance, error) {
	w, err := s.latest(ctx, user)
	if err != nil {
		return Allowance{}, err
	}
	if override != nil && w.DayIndex(override.Date) == -1 {
		return Allowance{}, fmt.Errorf("%w: %s in week %q", ErrDayNotFound, override.Date, w.Name)
	}
	return ComputeAdjustedDailyAllowance(w, override), nil
}

// PlanDay previews planned items against one day of the latest week.
func (s *TrackerService) PlanDay(ctx context.Context, user string, date models.Date, drafts []models.Item) (DayPlan, error) {
	w, err := s.latest(ctx, user)
	if err != nil {
		return DayPlan{}, err
	}
	idx := w.DayIndex(date)
	if idx == -1 {
		return DayPlan{}, fmt.Errorf("%w: %s in week %q", ErrDayNotFound, date, w.Name)
	}
	return PlanDay(w.Days[idx], drafts), nil
}
