package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"chillingstories/internal/api/dto"
	"chillingstories/internal/api/middleware"
	"chillingstories/internal/api/models"
	"chillingstories/internal/api/service"

	"github.com/gin-gonic/gin"
)

type StoryHandler struct {
	svc       service.StoryService
	posterDir string
}

func NewStoryHandler(svc service.StoryService, posterDir string) *StoryHandler {
	return &StoryHandler{svc: svc, posterDir: posterDir}
}

func (h *StoryHandler) RegisterRoutes(rg *gin.RouterGroup, requireAuth, optionalAuth gin.HandlerFunc) {
	// Public / optionally-authenticated reads
	rg.GET("/", h.List)
	rg.GET("/genres/all", h.AllGenres)
	rg.GET("/top/new", optionalAuth, h.TopNew)
	rg.GET("/top/views", optionalAuth, h.TopViewed)
	rg.GET("/top/favorites", optionalAuth, h.TopFavorited)
	rg.GET("/users/:userId", optionalAuth, h.ByAuthor)
	rg.GET("/:storyId/info", optionalAuth, h.Info)
	rg.GET("/:storyId/genres", h.StoryGenres)
	rg.PATCH("/:storyId/view", h.AddView)

	// Authenticated
	rg.GET("/me/favorites", requireAuth, h.MyFavorites)
	rg.POST("/:storyId/favorite", requireAuth, h.ToggleFavorite)

	// Author/admin mutations
	rg.POST("/", requireAuth, middleware.RequireAuthorOrAdmin(), h.Create)
	rg.PATCH("/:storyId", requireAuth, middleware.RequireAuthorOrAdmin(), h.Update)
	rg.DELETE("/:storyId", requireAuth, middleware.RequireAuthorOrAdmin(), h.Delete)
	rg.PUT("/:storyId/genres", requireAuth, middleware.RequireAuthorOrAdmin(), h.UpdateGenres)
}

// Create handles multipart story creation: metadata fields, an optional
// poster image, and an optional JSON-encoded genres array.
func (h *StoryHandler) Create(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		respondError(c, http.StatusBadRequest, "title is required")
		return
	}

	in := service.CreateStoryInput{Title: title}
	if desc := c.PostForm("description"); desc != "" {
		in.Description = &desc
	}

	var genres []string
	if raw := c.PostForm("genres"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &genres); err != nil {
			respondError(c, http.StatusBadRequest, "genres must be a JSON array of strings")
			return
		}
	}

	// The poster file is stored before the insert; on failure the handler
	// cleans it up so no orphan file stays behind.
	var posterName string
	if fh, err := c.FormFile("poster"); err == nil {
		name, err := savePoster(c, fh, h.posterDir)
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
		posterName = name
		in.CoverImagePath = &posterName
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var (
		storyID int64
		err     error
	)
	if len(genres) > 0 {
		storyID, err = h.svc.CreateWithGenres(ctx, userID, in, genres)
	} else {
		storyID, err = h.svc.Create(ctx, userID, in)
	}
	if err != nil {
		if posterName != "" {
			os.Remove(filepath.Join(h.posterDir, posterName))
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	respondOK(c, http.StatusCreated, gin.H{
		"story_id":         storyID,
		"cover_image_path": in.CoverImagePath,
		"poster_link":      posterLink(c, in.CoverImagePath),
		"genres_added":     service.NormalizeGenres(genres),
	})
}

// List handles GET /api/stories with an optional ?search= keyword.
func (h *StoryHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	list, err := h.svc.Search(ctx, c.Query("search"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	resp := make([]dto.StoryResponse, 0, len(list))
	for _, s := range list {
		resp = append(resp, dto.FromStoryToResponse(s, posterLink(c, s.CoverImagePath)))
	}
	respondOK(c, http.StatusOK, resp)
}

func (h *StoryHandler) TopNew(c *gin.Context) {
	h.respondSummaryList(c, func(ctx context.Context, viewerID *int64) ([]models.StorySummary, error) {
		return h.svc.GetNewest(ctx, viewerID)
	})
}

func (h *StoryHandler) TopViewed(c *gin.Context) {
	h.respondSummaryList(c, func(ctx context.Context, viewerID *int64) ([]models.StorySummary, error) {
		return h.svc.GetTopByView(ctx, viewerID)
	})
}

func (h *StoryHandler) TopFavorited(c *gin.Context) {
	h.respondSummaryList(c, func(ctx context.Context, viewerID *int64) ([]models.StorySummary, error) {
		return h.svc.GetTopByFavorite(ctx, viewerID)
	})
}

func (h *StoryHandler) ByAuthor(c *gin.Context) {
	authorID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid user id")
		return
	}
	h.respondSummaryList(c, func(ctx context.Context, viewerID *int64) ([]models.StorySummary, error) {
		return h.svc.GetByAuthor(ctx, authorID, viewerID)
	})
}

func (h *StoryHandler) MyFavorites(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	h.respondSummaryList(c, func(ctx context.Context, _ *int64) ([]models.StorySummary, error) {
		return h.svc.GetFavorited(ctx, userID)
	})
}

func (h *StoryHandler) respondSummaryList(c *gin.Context, fetch func(context.Context, *int64) ([]models.StorySummary, error)) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	list, err := fetch(ctx, middleware.OptionalUserID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	resp := make([]dto.StorySummaryResponse, 0, len(list))
	for _, s := range list {
		resp = append(resp, dto.FromSummaryToResponse(s, posterLink(c, s.CoverImagePath)))
	}
	respondOK(c, http.StatusOK, resp)
}

func (h *StoryHandler) Info(c *gin.Context) {
	storyID, err := strconv.ParseInt(c.Param("storyId"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid story id")
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	summary, err := h.svc.GetByID(ctx, storyID, middleware.OptionalUserID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if summary == nil {
		respondError(c, http.StatusNotFound, "story not found")
		return
	}
	respondOK(c, http.StatusOK, dto.FromSummaryToResponse(*summary, posterLink(c, summary.CoverImagePath)))
}

// Update applies a partial update. Metadata comes as JSON; multipart form
// data is accepted too so the poster image can be replaced. A replaced
// poster's old file is removed after the row update succeeds.
func (h *StoryHandler) Update(c *gin.Context) {
	storyID, err := strconv.ParseInt(c.Param("storyId"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid story id")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	summary, err := h.svc.GetByID(ctx, storyID, nil)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if summary == nil {
		respondError(c, http.StatusNotFound, "story not found")
		return
	}
	if !h.principalMayManage(c, summary.AuthorID) {
		respondError(c, http.StatusForbidden, "not the story's author")
		return
	}

	var in service.UpdateStoryInput
	var newPoster string
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if title := c.PostForm("title"); title != "" {
			in.Title = &title
		}
		if desc := c.PostForm("description"); desc != "" {
			in.Description = &desc
		}
		if fh, err := c.FormFile("poster"); err == nil {
			name, err := savePoster(c, fh, h.posterDir)
			if err != nil {
				respondError(c, http.StatusInternalServerError, err.Error())
				return
			}
			newPoster = name
			in.CoverImagePath = &newPoster
		}
	} else {
		var req dto.UpdateStoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		in.Title = req.Title
		in.Description = req.Description
	}

	changed, err := h.svc.Update(ctx, storyID, in)
	if err != nil || !changed {
		if newPoster != "" {
			os.Remove(filepath.Join(h.posterDir, newPoster))
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
		respondError(c, http.StatusNotFound, "nothing to update")
		return
	}

	if newPoster != "" && summary.CoverImagePath != nil && *summary.CoverImagePath != newPoster {
		os.Remove(filepath.Join(h.posterDir, *summary.CoverImagePath))
	}
	respondMessage(c, http.StatusOK, "story updated")
}

// Delete removes the story row, then its poster file. The filename is
// captured before the delete so the file can still be found afterwards.
func (h *StoryHandler) Delete(c *gin.Context) {
	storyID, err := strconv.ParseInt(c.Param("storyId"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid story id")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	summary, err := h.svc.GetByID(ctx, storyID, nil)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if summary == nil {
		respondError(c, http.StatusNotFound, "story not found")
		return
	}
	if !h.principalMayManage(c, summary.AuthorID) {
		respondError(c, http.StatusForbidden, "not the story's author")
		return
	}

	deleted, err := h.svc.Delete(ctx, storyID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if !deleted {
		respondError(c, http.StatusNotFound, "story not found")
		return
	}

	if summary.CoverImagePath != nil {
		os.Remove(filepath.Join(h.posterDir, *summary.CoverImagePath))
	}
	respondMessage(c, http.StatusOK, "story and associated files deleted")
}

func (h *StoryHandler) AddView(c *gin.Context) {
	storyID, err := strconv.ParseInt(c.Param("storyId"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid story id")
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.IncrementView(ctx, storyID); err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondMessage(c, http.StatusOK, "view count updated")
}

func (h *StoryHandler) ToggleFavorite(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	storyID, err := strconv.ParseInt(c.Param("storyId"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid story id")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	isFavorited, err := h.svc.ToggleFavorite(ctx, userID, storyID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	message := "Removed from favorites"
	if isFavorited {
		message = "Added to favorites"
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"is_favorited": isFavorited,
		"message":      message,
	})
}

func (h *StoryHandler) UpdateGenres(c *gin.Context) {
	storyID, err := strconv.ParseInt(c.Param("storyId"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid story id")
		return
	}

	var in dto.UpdateGenresRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if ok := h.mayManage(ctx, c, storyID); !ok {
		return
	}

	if err := h.svc.UpdateGenres(ctx, storyID, in.Genres); err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondOK(c, http.StatusOK, gin.H{"updated_genres": service.NormalizeGenres(in.Genres)})
}

func (h *StoryHandler) AllGenres(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	genres, err := h.svc.GetAllGenres(ctx)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondOK(c, http.StatusOK, genres)
}

func (h *StoryHandler) StoryGenres(c *gin.Context) {
	storyID, err := strconv.ParseInt(c.Param("storyId"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid story id")
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	genres, err := h.svc.GetGenresByStory(ctx, storyID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondOK(c, http.StatusOK, genres)
}

// mayManage answers the ownership question for mutation endpoints and
// writes the failure response itself when the check does not pass.
func (h *StoryHandler) mayManage(ctx context.Context, c *gin.Context, storyID int64) bool {
	summary, err := h.svc.GetByID(ctx, storyID, nil)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return false
	}
	if summary == nil {
		respondError(c, http.StatusNotFound, "story not found")
		return false
	}
	if !h.principalMayManage(c, summary.AuthorID) {
		respondError(c, http.StatusForbidden, "not the story's author")
		return false
	}
	return true
}

// principalMayManage: the story's author, or an admin.
func (h *StoryHandler) principalMayManage(c *gin.Context, authorID int64) bool {
	if role, _ := middleware.CurrentRole(c); role == models.RoleAdmin {
		return true
	}
	userID, ok := middleware.CurrentUserID(c)
	return ok && userID == authorID
}
