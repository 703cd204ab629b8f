package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"chillingstories/internal/api/dto"
	"chillingstories/internal/api/middleware"
	"chillingstories/internal/api/models"
	"chillingstories/internal/api/repository"
	"chillingstories/internal/api/service"

	"github.com/gin-gonic/gin"
)

type ChapterHandler struct {
	svc service.ChapterService
}

func NewChapterHandler(svc service.ChapterService) *ChapterHandler {
	return &ChapterHandler{svc: svc}
}

// RegisterStoryRoutes mounts the chapter routes nested under a story.
func (h *ChapterHandler) RegisterStoryRoutes(rg *gin.RouterGroup, requireAuth, optionalAuth gin.HandlerFunc) {
	rg.GET("/:storyId/chapters", h.ListByStory)
	rg.GET("/:storyId/chapters/:orderNum", optionalAuth, h.GetByOrder)

	rg.POST("/:storyId/chapters", requireAuth, middleware.RequireAuthorOrAdmin(), h.Add)
	rg.POST("/:storyId/chapters/upload", requireAuth, middleware.RequireAuthorOrAdmin(), h.Upload)
	rg.PATCH("/:storyId/chapters/:orderNum", requireAuth, middleware.RequireAuthorOrAdmin(), h.UpdateByOrder)
	rg.DELETE("/:storyId/chapters/:orderNum", requireAuth, middleware.RequireAuthorOrAdmin(), h.DeleteByOrder)
}

// RegisterChapterRoutes mounts the routes addressed by chapter id alone.
func (h *ChapterHandler) RegisterChapterRoutes(rg *gin.RouterGroup, requireAuth, optionalAuth gin.HandlerFunc) {
	rg.GET("/:chapterId", optionalAuth, h.GetByID)
	rg.PATCH("/:chapterId", requireAuth, middleware.RequireAuthorOrAdmin(), h.UpdateByID)
	rg.DELETE("/:chapterId", requireAuth, middleware.RequireAuthorOrAdmin(), h.DeleteByID)
}

// ListByStory returns the story's chapters without content bodies,
// ordered ascending by order number.
func (h *ChapterHandler) ListByStory(c *gin.Context) {
	storyID, ok := paramID(c, "storyId", "invalid story id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	list, err := h.svc.GetByStory(ctx, storyID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	resp := make([]dto.ChapterListItem, 0, len(list))
	for _, ch := range list {
		resp = append(resp, dto.FromChapterToListItem(ch))
	}
	respondOK(c, http.StatusOK, resp)
}

// GetByOrder reads one chapter by (story, order). For an authenticated
// reader the read also records progress and bumps the story's view count.
func (h *ChapterHandler) GetByOrder(c *gin.Context) {
	storyID, ok := paramID(c, "storyId", "invalid story id")
	if !ok {
		return
	}
	orderNum, err := strconv.Atoi(c.Param("orderNum"))
	if err != nil || orderNum < 1 {
		respondError(c, http.StatusBadRequest, "invalid chapter number")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	chapter, err := h.svc.GetByOrderForUser(ctx, storyID, orderNum, middleware.OptionalUserID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if chapter == nil {
		respondError(c, http.StatusNotFound, "chapter not found")
		return
	}
	respondOK(c, http.StatusOK, dto.FromChapterToResponse(*chapter))
}

func (h *ChapterHandler) GetByID(c *gin.Context) {
	chapterID, ok := paramID(c, "chapterId", "invalid chapter id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	chapter, err := h.svc.GetByIDForUser(ctx, chapterID, middleware.OptionalUserID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if chapter == nil {
		respondError(c, http.StatusNotFound, "chapter not found")
		return
	}
	respondOK(c, http.StatusOK, dto.FromChapterToResponse(*chapter))
}

type addChapterRequest struct {
	OrderNum int    `json:"order_num" binding:"required,min=1"`
	Title    string `json:"title" binding:"required"`
	Content  string `json:"content" binding:"required"`
}

func (h *ChapterHandler) Add(c *gin.Context) {
	storyID, ok := paramID(c, "storyId", "invalid story id")
	if !ok {
		return
	}
	var in addChapterRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if !h.mayManageStory(ctx, c, storyID) {
		return
	}

	chapterID, err := h.svc.Add(ctx, storyID, in.OrderNum, in.Title, in.Content)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateOrder) {
			respondError(c, http.StatusConflict, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondOK(c, http.StatusCreated, gin.H{"chapter_id": chapterID, "order_num": in.OrderNum})
}

// Upload accepts one or more text files under the "chapters" field and
// appends them as chapters after the story's current last one. Titles
// come from the filenames.
func (h *ChapterHandler) Upload(c *gin.Context) {
	storyID, ok := paramID(c, "storyId", "invalid story id")
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	files := form.File["chapters"]
	if len(files) == 0 {
		respondError(c, http.StatusBadRequest, "no chapter files uploaded")
		return
	}

	items := make([]service.ChapterInput, 0, len(files))
	for _, fh := range files {
		content, err := readUploadedText(fh)
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		items = append(items, service.ChapterInput{
			Title:   chapterTitleFromName(fh.Filename),
			Content: content,
		})
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if !h.mayManageStory(ctx, c, storyID) {
		return
	}

	created, err := h.svc.AddBulk(ctx, storyID, items)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	results := make([]dto.UploadedChapterResult, 0, len(created))
	for _, ch := range created {
		results = append(results, dto.UploadedChapterResult{
			ChapterID: ch.ID,
			OrderNum:  ch.OrderNum,
			Title:     ch.Title,
		})
	}
	respondOK(c, http.StatusCreated, results)
}

func (h *ChapterHandler) UpdateByOrder(c *gin.Context) {
	storyID, ok := paramID(c, "storyId", "invalid story id")
	if !ok {
		return
	}
	orderNum, err := strconv.Atoi(c.Param("orderNum"))
	if err != nil || orderNum < 1 {
		respondError(c, http.StatusBadRequest, "invalid chapter number")
		return
	}
	var in dto.UpdateChapterRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if !h.mayManageStory(ctx, c, storyID) {
		return
	}

	changed, err := h.svc.UpdateByOrder(ctx, storyID, orderNum, in.Title, in.Content)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if !changed {
		respondError(c, http.StatusNotFound, "nothing to update")
		return
	}
	respondMessage(c, http.StatusOK, "chapter updated")
}

func (h *ChapterHandler) DeleteByOrder(c *gin.Context) {
	storyID, ok := paramID(c, "storyId", "invalid story id")
	if !ok {
		return
	}
	orderNum, err := strconv.Atoi(c.Param("orderNum"))
	if err != nil || orderNum < 1 {
		respondError(c, http.StatusBadRequest, "invalid chapter number")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if !h.mayManageStory(ctx, c, storyID) {
		return
	}

	deleted, err := h.svc.DeleteByOrder(ctx, storyID, orderNum)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if !deleted {
		respondError(c, http.StatusNotFound, "chapter not found")
		return
	}
	respondMessage(c, http.StatusOK, "chapter deleted")
}

func (h *ChapterHandler) UpdateByID(c *gin.Context) {
	chapterID, ok := paramID(c, "chapterId", "invalid chapter id")
	if !ok {
		return
	}
	var in dto.UpdateChapterRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if !h.mayManageChapter(ctx, c, chapterID) {
		return
	}

	changed, err := h.svc.UpdateByID(ctx, chapterID, in.Title, in.Content)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if !changed {
		respondError(c, http.StatusNotFound, "nothing to update")
		return
	}
	respondMessage(c, http.StatusOK, "chapter updated")
}

func (h *ChapterHandler) DeleteByID(c *gin.Context) {
	chapterID, ok := paramID(c, "chapterId", "invalid chapter id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if !h.mayManageChapter(ctx, c, chapterID) {
		return
	}

	deleted, err := h.svc.DeleteByID(ctx, chapterID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if !deleted {
		respondError(c, http.StatusNotFound, "chapter not found")
		return
	}
	respondMessage(c, http.StatusOK, "chapter deleted")
}

func (h *ChapterHandler) mayManageStory(ctx context.Context, c *gin.Context, storyID int64) bool {
	authorID, err := h.svc.AuthorByStoryID(ctx, storyID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return false
	}
	return h.checkOwner(c, authorID, "story not found")
}

func (h *ChapterHandler) mayManageChapter(ctx context.Context, c *gin.Context, chapterID int64) bool {
	authorID, err := h.svc.AuthorByChapterID(ctx, chapterID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return false
	}
	return h.checkOwner(c, authorID, "chapter not found")
}

// checkOwner enforces "author of the owning story, or admin". A zero
// authorID means the target row does not exist.
func (h *ChapterHandler) checkOwner(c *gin.Context, authorID int64, missing string) bool {
	if authorID == 0 {
		respondError(c, http.StatusNotFound, missing)
		return false
	}
	if role, _ := middleware.CurrentRole(c); role == models.RoleAdmin {
		return true
	}
	userID, ok := middleware.CurrentUserID(c)
	if !ok || userID != authorID {
		respondError(c, http.StatusForbidden, "not the story's author")
		return false
	}
	return true
}

// paramID parses a positive int64 path parameter.
func paramID(c *gin.Context, name, invalidMsg string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		respondError(c, http.StatusBadRequest, invalidMsg)
		return 0, false
	}
	return id, true
}
