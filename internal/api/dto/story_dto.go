package dto

import (
	"time"

	"chillingstories/internal/api/models"
)

// UpdateStoryRequest used for PATCH /api/stories/:storyId (partial updates)
type UpdateStoryRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// UpdateGenresRequest used for PUT /api/stories/:storyId/genres
type UpdateGenresRequest struct {
	Genres []string `json:"genres" binding:"required"`
}

// StoryResponse is the flat story row shape (search results).
type StoryResponse struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Description    *string   `json:"description,omitempty"`
	CoverImagePath *string   `json:"cover_image_path,omitempty"`
	CoverLink      *string   `json:"cover_link,omitempty"`
	AuthorID       int64     `json:"author_id"`
	Status         string    `json:"status"`
	ViewCount      int64     `json:"view_count"`
	FavoriteCount  int64     `json:"favorite_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// StorySummaryResponse adds the derived fields of the summary projection.
type StorySummaryResponse struct {
	StoryResponse
	AuthorName   string     `json:"author_name"`
	ChapterCount int64      `json:"chapter_count"`
	LastUpdateAt *time.Time `json:"last_update_at,omitempty"`
	IsFavorited  bool       `json:"is_favorited"`
}

func FromStoryToResponse(s models.Story, coverLink *string) StoryResponse {
	return StoryResponse{
		ID:             s.ID,
		Title:          s.Title,
		Description:    s.Description,
		CoverImagePath: s.CoverImagePath,
		CoverLink:      coverLink,
		AuthorID:       s.AuthorID,
		Status:         s.Status,
		ViewCount:      s.ViewCount,
		FavoriteCount:  s.FavoriteCount,
		CreatedAt:      s.CreatedAt,
	}
}

func FromSummaryToResponse(s models.StorySummary, coverLink *string) StorySummaryResponse {
	return StorySummaryResponse{
		StoryResponse: StoryResponse{
			ID:             s.ID,
			Title:          s.Title,
			Description:    s.Description,
			CoverImagePath: s.CoverImagePath,
			CoverLink:      coverLink,
			AuthorID:       s.AuthorID,
			Status:         s.Status,
			ViewCount:      s.ViewCount,
			FavoriteCount:  s.FavoriteCount,
			CreatedAt:      s.CreatedAt,
		},
		AuthorName:   s.AuthorName,
		ChapterCount: s.ChapterCount,
		LastUpdateAt: s.LastUpdateAt,
		IsFavorited:  s.IsFavorited,
	}
}
