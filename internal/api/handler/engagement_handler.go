package handler

import (
	"context"
	"net/http"
	"time"

	"chillingstories/internal/api/dto"
	"chillingstories/internal/api/middleware"
	"chillingstories/internal/api/service"

	"github.com/gin-gonic/gin"
)

type EngagementHandler struct {
	svc service.EngagementService
}

func NewEngagementHandler(svc service.EngagementService) *EngagementHandler {
	return &EngagementHandler{svc: svc}
}

// RegisterRoutes mounts the reading-history routes; all of them require
// an authenticated user.
func (h *EngagementHandler) RegisterRoutes(rg *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	rg.GET("/history", requireAuth, h.GetHistory)
	rg.POST("/history", requireAuth, h.UpdateProgress)
	rg.DELETE("/history/:storyId", requireAuth, h.RemoveFromHistory)
}

func (h *EngagementHandler) GetHistory(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	entries, err := h.svc.GetHistory(ctx, userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	resp := make([]dto.ReadingHistoryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, dto.FromHistoryToResponse(e, posterLink(c, e.CoverImagePath)))
	}
	respondOK(c, http.StatusOK, resp)
}

type updateProgressRequest struct {
	StoryID   int64 `json:"story_id" binding:"required,min=1"`
	ChapterID int64 `json:"chapter_id" binding:"required,min=1"`
	OrderNum  int   `json:"order_num" binding:"required,min=1"`
}

// UpdateProgress lets a client set the bookmark explicitly, for example
// when a reader finishes a chapter in an offline cache. Last write wins.
func (h *EngagementHandler) UpdateProgress(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	var in updateProgressRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.UpdateProgress(ctx, userID, in.StoryID, in.ChapterID, in.OrderNum); err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondMessage(c, http.StatusOK, "reading progress updated")
}

func (h *EngagementHandler) RemoveFromHistory(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	storyID, ok := paramID(c, "storyId", "invalid story id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	removed, err := h.svc.RemoveFromHistory(ctx, userID, storyID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if !removed {
		respondError(c, http.StatusNotFound, "no history entry for this story")
		return
	}
	respondMessage(c, http.StatusOK, "removed from reading history")
}
