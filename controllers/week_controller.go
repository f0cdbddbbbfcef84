package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oscardel13/calorie-tracker/models"
	"github.com/oscardel13/calorie-tracker/services"
)

type WeekController struct {
	Svc *services.TrackerService
}

func NewWeekController(svc *services.TrackerService) *WeekController {
	return &WeekController{Svc: svc}
}

// GoalsInput carries calories as a pointer so an absent value is rejected
// rather than read as zero. The other macros default to zero.
type GoalsInput struct {
	Calories *float64 `json:"calories"`
	Carbs    float64  `json:"carbs"`
	Protein  float64  `json:"protein"`
	Fiber    float64  `json:"fiber"`
}

func (g *GoalsInput) macros() (models.Macros, error) {
	if g == nil || g.Calories == nil {
		return models.Macros{}, services.ErrInvalidCalories
	}
	return models.Macros{Calories: *g.Calories, Carbs: g.Carbs, Protein: g.Protein, Fiber: g.Fiber}, nil
}

type WeekInput struct {
	Name   string            `json:"week_name"`
	Start  models.Date       `json:"start"`
	Mode   services.GoalMode `json:"mode"`
	Weekly *GoalsInput       `json:"weekly"`
	Daily  []GoalsInput      `json:"daily"`
}

func (in WeekInput) edit() (services.WeekEdit, error) {
	edit := services.WeekEdit{Name: in.Name, Start: in.Start, Mode: in.Mode}
	switch in.Mode {
	case services.ModeWeekly, "":
		m, err := in.Weekly.macros()
		if err != nil {
			return edit, err
		}
		edit.Weekly = m
	case services.ModeDaily:
		edit.Daily = make([]models.Macros, len(in.Daily))
		for i := range in.Daily {
			m, err := in.Daily[i].macros()
			if err != nil {
				return edit, fmt.Errorf("day %d: %w", i+1, err)
			}
			edit.Daily[i] = m
		}
	}
	return edit, nil
}

func bindWeek(c *gin.Context) (services.WeekEdit, bool) {
	var input WeekInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return services.WeekEdit{}, false
	}
	edit, err := input.edit()
	if err != nil {
		respondError(c, err)
		return services.WeekEdit{}, false
	}
	return edit, true
}

func (h *WeekController) ListWeeks(c *gin.Context) {
	user, ok := userFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	weeks, err := h.Svc.ListWeeks(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"weeks": weeks})
}

func (h *WeekController) CreateWeek(c *gin.Context) {
	user, ok := userFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	edit, ok := bindWeek(c)
	if !ok {
		return
	}
	week, err := h.Svc.CreateWeek(c.Request.Context(), user, edit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, week)
}

func (h *WeekController) RepeatWeek(c *gin.Context) {
	user, ok := userFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	draft, err := h.Svc.RepeatLastWeek(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

func (h *WeekController) LatestWeek(c *gin.Context) {
	user, ok := userFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	summary, err := h.Svc.LatestSummary(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *WeekController) EditLatestWeek(c *gin.Context) {
	user, ok := userFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	edit, ok := bindWeek(c)
	if !ok {
		return
	}
	week, err := h.Svc.EditLatestWeek(c.Request.Context(), user, edit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, week)
}

// ItemInput uses pointers so a field left out can be told from a zero. With
// saved_food_id set, each field given replaces the template's value.
type ItemInput struct {
	Name        string   `json:"name"`
	Calories    *float64 `json:"calories"`
	Carbs       *float64 `json:"carbs"`
	Protein     *float64 `json:"protein"`
	Fiber       *float64 `json:"fiber"`
	SavedFoodID string   `json:"saved_food_id"`
	SaveAsFood  bool     `json:"save_as_food"`
}

func (in ItemInput) item() (models.Item, error) {
	if in.Calories == nil {
		return models.Item{}, services.ErrInvalidCalories
	}
	return models.Item{
		Name:     in.Name,
		Calories: *in.Calories,
		Carbs:    value(in.Carbs),
		Protein:  value(in.Protein),
		Fiber:    value(in.Fiber),
	}, nil
}

func (in ItemInput) overrides() services.ItemOverrides {
	o := services.ItemOverrides{Calories: in.Calories, Carbs: in.Carbs, Protein: in.Protein, Fiber: in.Fiber}
	if in.Name != "" {
		o.Name = &in.Name
	}
	return o
}

func value(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func (h *WeekController) AddItem(c *gin.Context) {
	user, ok := userFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	date, ok := dateParam(c)
	if !ok {
		return
	}
	var input ItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := services.NewItem{SavedFoodID: input.SavedFoodID, SaveAsFood: input.SaveAsFood}
	if in.SavedFoodID != "" {
		in.Overrides = input.overrides()
	} else {
		item, err := input.item()
		if err != nil {
			respondError(c, err)
			return
		}
		in.Item = item
	}

	week, err := h.Svc.AddItem(c.Request.Context(), user, date, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, week)
}

type ItemsInput struct {
	Items []ItemInput `json:"items"`
}

func (in ItemsInput) items() ([]models.Item, error) {
	out := make([]models.Item, len(in.Items))
	for i, it := range in.Items {
		item, err := it.item()
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		out[i] = item
	}
	return out, nil
}

func (h *WeekController) ReplaceItems(c *gin.Context) {
	user, ok := userFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	date, ok := dateParam(c)
	if !ok {
		return
	}
	var input ItemsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	items, err := input.items()
	if err != nil {
		respondError(c, err)
		return
	}

	week, err := h.Svc.ReplaceItems(c.Request.Context(), user, date, items)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, week)
}

func (h *WeekController) RemoveItem(c *gin.Context) {
	user, ok := userFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	date, ok := dateParam(c)
	if !ok {
		return
	}
	index, ok := indexParam(c)
	if !ok {
		return
	}
	week, err := h.Svc.RemoveItem(c.Request.Context(), user, date, index)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, week)
}

type AllowanceInput struct {
	Date  models.Date `json:"date"`
	Items []ItemInput `json:"items"`
}

// PreviewAllowance accepts an empty body for the stored week as is, or a
// date plus draft items to preview that day's edit.
func (h *WeekController) PreviewAllowance(c *gin.Context) {
	user, ok := userFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var input AllowanceInput
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var override *services.DayOverride
	if !input.Date.IsZero() {
		items, err := ItemsInput{Items: input.Items}.items()
		if err != nil {
			respondError(c, err)
			return
		}
		override = &services.DayOverride{Date: input.Date, Items: items}
	}

	a, err := h.Svc.PreviewAllowance(c.Request.Context(), user, override)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *WeekController) PlanDay(c *gin.Context) {
	user, ok := userFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	date, ok := dateParam(c)
	if !ok {
		return
	}
	var input ItemsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	drafts, err := input.items()
	if err != nil {
		respondError(c, err)
		return
	}

	plan, err := h.Svc.PlanDay(c.Request.Context(), user, date, drafts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}
