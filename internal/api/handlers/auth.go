package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roksva123/go-wrike-export/internal/model"
	"github.com/roksva123/go-wrike-export/internal/service"
)

// Authenticator issues API tokens. Implemented by service.AuthService.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
}

type AuthHandler struct {
	Auth Authenticator
}

func NewAuthHandler(auth Authenticator) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	var response model.ResponseApi

	// Validate JSON
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ApiMessage = "Invalid request: " + err.Error()
		c.JSON(http.StatusBadRequest, response)
		return
	}

	token, err := h.Auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.ApiMessage = "Username or password is incorrect"
			c.JSON(http.StatusUnauthorized, response)
			return
		}
		response.ApiMessage = "Failed to generate token"
		c.JSON(http.StatusInternalServerError, response)
		return
	}

	response.ApiMessage = "Login Successful"
	response.Data = model.LoginResponse{Token: token}
	c.JSON(http.StatusOK, response)
}
