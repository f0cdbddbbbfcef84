package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oscardel13/calorie-tracker/middlewares"
	"github.com/oscardel13/calorie-tracker/models"
	"github.com/oscardel13/calorie-tracker/repository"
	"github.com/oscardel13/calorie-tracker/services"
)

func userFromCtx(c *gin.Context) (string, bool) {
	user := c.GetString(middlewares.UserKey)
	return user, user != ""
}

var (
	badRequest = []error{
		models.ErrInvalidDate,
		models.ErrInvalidWeek,
		services.ErrInvalidCalories,
		services.ErrInvalidGoal,
		services.ErrMissingStartDate,
		services.ErrDailyGoalCount,
		services.ErrUnknownMode,
		services.ErrItemIndex,
		services.ErrInvalidItem,
		services.ErrFoodName,
		services.ErrUserName,
		services.ErrInvalidBackup,
	}
	notFound = []error{
		repository.ErrUserNotFound,
		repository.ErrNoWeeks,
		repository.ErrFoodNotFound,
		services.ErrDayNotFound,
	}
)

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

func statusFor(err error) int {
	switch {
	case isAny(err, badRequest):
		return http.StatusBadRequest
	case isAny(err, notFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidPIN):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, services.ErrBackupDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError replies with the status matching err. Server errors are
// attached to the context for the request logger and hidden from the client.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		msg = "internal error"
	}
	c.JSON(status, gin.H{"error": msg})
}

func dateParam(c *gin.Context) (models.Date, bool) {
	d, err := models.ParseDate(c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return models.Date{}, false
	}
	return d, true
}

func indexParam(c *gin.Context) (int, bool) {
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item index must be an integer"})
		return 0, false
	}
	return i, true
}
