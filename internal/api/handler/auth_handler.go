package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"chillingstories/internal/api/dto"
	"chillingstories/internal/api/service"

	"github.com/gin-gonic/gin"
)

func bearerTokenFromHeader(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

type AuthHandler struct {
	svc service.AuthService
}

func NewAuthHandler(svc service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/register", h.Register)
	rg.POST("/login", h.Login)
	rg.POST("/refresh", h.Refresh)
	rg.POST("/logout", h.Logout)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var in dto.RegisterRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.svc.Register(ctx, in.Username, in.Email, in.Password, in.Role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNameInUse), errors.Is(err, service.ErrEmailInUse):
			respondError(c, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrInvalidRole):
			respondError(c, http.StatusBadRequest, err.Error())
		default:
			respondError(c, http.StatusInternalServerError, err.Error())
		}
		return
	}
	respondOK(c, http.StatusCreated, dto.FromUserToResponse(*user))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var in dto.LoginRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	access, refresh, user, err := h.svc.Login(ctx, in.Email, in.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	respondOK(c, http.StatusOK, dto.AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         dto.FromUserToResponse(*user),
	})
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var in dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	access, err := h.svc.RefreshAccessToken(ctx, in.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			respondError(c, http.StatusUnauthorized, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondOK(c, http.StatusOK, gin.H{"access_token": access})
}

// Logout revokes the refresh token row and denylists the access token
// for the remainder of its life. The access token comes from the
// Authorization header, same place the auth middleware reads it.
func (h *AuthHandler) Logout(c *gin.Context) {
	var in dto.LogoutRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	accessToken, ok := bearerTokenFromHeader(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "missing or malformed authorization header")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.Logout(ctx, accessToken, in.RefreshToken); err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			respondError(c, http.StatusUnauthorized, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondMessage(c, http.StatusOK, "logged out")
}
