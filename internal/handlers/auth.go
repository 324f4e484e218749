package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smartscale/portfolio-api/internal/dto"
	apierrors "github.com/smartscale/portfolio-api/internal/errors"
	"github.com/smartscale/portfolio-api/internal/middleware"
	"github.com/smartscale/portfolio-api/internal/services"
	"go.uber.org/zap"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
	log         *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         log,
	}
}

// Login authenticates the administrator and issues a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Username and password are required")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), services.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponseDTO{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      dto.ToUserDTO(*result.Credential),
	})
}

// Verify reports whether the presented bearer token is still valid.
func (h *AuthHandler) Verify(c *gin.Context) {
	token, ok := middleware.BearerToken(c)
	if !ok {
		apierrors.Unauthorized(c, "No token provided")
		return
	}

	credential, err := h.authService.Verify(c.Request.Context(), token)
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.VerifyResponseDTO{
		Valid: true,
		User:  dto.ToUserDTO(*credential),
	})
}

// ChangePassword rotates the administrator password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	type ChangePasswordRequest struct {
		CurrentPassword string `json:"currentPassword" binding:"required"`
		NewPassword     string `json:"newPassword" binding:"required"`
	}

	token, ok := middleware.BearerToken(c)
	if !ok {
		apierrors.Unauthorized(c, "Access token required")
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Current password and new password are required")
		return
	}

	err := h.authService.ChangePassword(c.Request.Context(), token, services.ChangePasswordInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageDTO{Message: "Password changed successfully"})
}

func (h *AuthHandler) respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c, "Invalid credentials")
	case errors.Is(err, services.ErrInvalidToken):
		apierrors.InvalidToken(c, "Invalid token")
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.Unauthorized(c, "User not found")
	case errors.Is(err, services.ErrWeakPassword):
		apierrors.WeakPassword(c, err.Error())
	default:
		h.log.Error("Authentication request failed", zap.Error(err))
		apierrors.InternalError(c, "")
	}
}
