package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oscardel13/calorie-tracker/repository"
	"github.com/oscardel13/calorie-tracker/services"
)

type AuthController struct {
	Svc *services.AuthService
}

func NewAuthController(svc *services.AuthService) *AuthController {
	return &AuthController{Svc: svc}
}

type CredentialsInput struct {
	User string `json:"user" binding:"required"`
	PIN  string `json:"pin"`
}

func (h *AuthController) Signup(c *gin.Context) {
	var input CredentialsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.Svc.Signup(c.Request.Context(), input.User, input.PIN)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token})
}

func (h *AuthController) Login(c *gin.Context) {
	var input CredentialsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.Svc.Login(c.Request.Context(), input.User, input.PIN)
	switch {
	case errors.Is(err, services.ErrInvalidPIN), errors.Is(err, repository.ErrUserNotFound):
		// unknown user and wrong PIN look the same from outside
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user or PIN"})
		return
	case err != nil:
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
