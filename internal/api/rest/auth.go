package rest

import (
	"errors"
	"net/http"

	"device-registry/internal/auth"
	"device-registry/internal/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

// POST /auth/register
func (s *Server) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse("AUTH_400", "Invalid request body", err.Error()))
		return
	}

	_, err := s.authService.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUsernameTaken):
			c.JSON(http.StatusBadRequest, types.NewErrorResponse("AUTH_400", "Username already exists", nil))
		case errors.Is(err, auth.ErrEmptyCredentials):
			c.JSON(http.StatusBadRequest, types.NewErrorResponse("AUTH_400", "Username and password are required", nil))
		default:
			s.logger.Error("Registration failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, types.NewErrorResponse("AUTH_500", "Registration failed", nil))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "registration successful"})
}

// POST /auth/login
func (s *Server) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse("AUTH_400", "Invalid request body", err.Error()))
		return
	}

	token, err := s.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, types.NewErrorResponse("AUTH_401", "Incorrect username or password", nil))
			return
		}
		s.logger.Error("Login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse("AUTH_500", "Login failed", nil))
		return
	}

	c.JSON(http.StatusOK, LoginResponse{Token: token})
}
