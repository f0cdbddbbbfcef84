package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oscardel13/calorie-tracker/models"
	"github.com/oscardel13/calorie-tracker/services"
)

type FoodController struct {
	Svc *services.FoodService
}

func NewFoodController(svc *services.FoodService) *FoodController {
	return &FoodController{Svc: svc}
}

type FoodInput struct {
	Name     string   `json:"name" binding:"required"`
	Calories *float64 `json:"calories"`
	Carbs    float64  `json:"carbs"`
	Protein  float64  `json:"protein"`
	Fiber    float64  `json:"fiber"`
}

func (in FoodInput) food(id string) (models.SavedFood, error) {
	if in.Calories == nil {
		return models.SavedFood{}, services.ErrInvalidCalories
	}
	return models.SavedFood{
		ID:       id,
		Name:     in.Name,
		Calories: *in.Calories,
		Carbs:    in.Carbs,
		Protein:  in.Protein,
		Fiber:    in.Fiber,
	}, nil
}

// GET /foods?q=yog&sort=used
func (h *FoodController) ListFoods(c *gin.Context) {
	user, ok := userFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	by := services.FoodSort(c.Query("sort"))
	switch by {
	case "", services.FoodSortAlpha, services.FoodSortUsed:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "sort must be alpha or used"})
		return
	}
	foods, err := h.Svc.List(c.Request.Context(), user, c.Query("q"), by)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"foods": foods})
}

func (h *FoodController) bind(c *gin.Context, id string) (models.SavedFood, bool) {
	var input FoodInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return models.SavedFood{}, false
	}
	food, err := input.food(id)
	if err != nil {
		respondError(c, err)
		return models.SavedFood{}, false
	}
	return food, true
}

func (h *FoodController) AddFood(c *gin.Context) {
	user, ok := userFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	food, ok := h.bind(c, "")
	if !ok {
		return
	}
	foods, err := h.Svc.Add(c.Request.Context(), user, food)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"foods": foods})
}

func (h *FoodController) UpdateFood(c *gin.Context) {
	user, ok := userFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	food, ok := h.bind(c, c.Param("id"))
	if !ok {
		return
	}
	foods, err := h.Svc.Update(c.Request.Context(), user, food)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"foods": foods})
}

func (h *FoodController) RemoveFood(c *gin.Context) {
	user, ok := userFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	foods, err := h.Svc.Remove(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"foods": foods})
}
