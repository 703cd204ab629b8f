package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"chillingstories/internal/api/dto"
	"chillingstories/internal/api/middleware"
	"chillingstories/internal/api/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	svc service.UserService
}

func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	rg.GET("/me", requireAuth, h.Me)
	rg.PATCH("/me", requireAuth, h.UpdateProfile)
	rg.GET("/:userId", h.GetByID)

	rg.GET("/", requireAuth, middleware.RequireAdmin(), h.GetAll)
	rg.PATCH("/:userId/role", requireAuth, middleware.RequireAdmin(), h.UpdateRole)
}

func (h *UserHandler) Me(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	h.respondUser(c, userID)
}

func (h *UserHandler) GetByID(c *gin.Context) {
	userID, ok := paramID(c, "userId", "invalid user id")
	if !ok {
		return
	}
	h.respondUser(c, userID)
}

func (h *UserHandler) respondUser(c *gin.Context, userID int64) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.svc.GetByID(ctx, userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if user == nil {
		respondError(c, http.StatusNotFound, "user not found")
		return
	}
	respondOK(c, http.StatusOK, dto.FromUserToResponse(*user))
}

func (h *UserHandler) GetAll(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	users, err := h.svc.GetAll(ctx)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	resp := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, dto.FromUserToResponse(u))
	}
	respondOK(c, http.StatusOK, resp)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	var in dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.svc.UpdateProfile(ctx, userID, service.UpdateProfileInput{
		Username:  in.Username,
		Email:     in.Email,
		Phone:     in.Phone,
		AvatarURL: in.AvatarURL,
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if user == nil {
		respondError(c, http.StatusNotFound, "user not found")
		return
	}
	respondOK(c, http.StatusOK, dto.FromUserToResponse(*user))
}

func (h *UserHandler) UpdateRole(c *gin.Context) {
	userID, ok := paramID(c, "userId", "invalid user id")
	if !ok {
		return
	}

	var in dto.UpdateRoleRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.svc.UpdateRole(ctx, userID, in.Role)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRole) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if user == nil {
		respondError(c, http.StatusNotFound, "user not found")
		return
	}
	respondOK(c, http.StatusOK, dto.FromUserToResponse(*user))
}
