package dto

import (
	"time"

	"chillingstories/internal/api/models"
)

// UpdateChapterRequest used for PATCH on chapters (partial updates)
type UpdateChapterRequest struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// ChapterResponse is the full chapter shape including content.
type ChapterResponse struct {
	ID        int64     `json:"id"`
	StoryID   int64     `json:"story_id"`
	OrderNum  int       `json:"order_num"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ChapterListItem omits the content body for listings.
type ChapterListItem struct {
	ID        int64     `json:"id"`
	StoryID   int64     `json:"story_id"`
	OrderNum  int       `json:"order_num"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// UploadedChapterResult reports one chapter created by a bulk upload.
type UploadedChapterResult struct {
	ChapterID int64  `json:"chapter_id"`
	OrderNum  int    `json:"order_num"`
	Title     string `json:"title"`
}

func FromChapterToResponse(c models.Chapter) ChapterResponse {
	return ChapterResponse{
		ID:        c.ID,
		StoryID:   c.StoryID,
		OrderNum:  c.OrderNum,
		Title:     c.Title,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
}

func FromChapterToListItem(c models.Chapter) ChapterListItem {
	return ChapterListItem{
		ID:        c.ID,
		StoryID:   c.StoryID,
		OrderNum:  c.OrderNum,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
	}
}
