package dto

import (
	"time"

	"chillingstories/internal/api/models"
)

// ReadingHistoryResponse is one entry of a user's reading history.
type ReadingHistoryResponse struct {
	StoryID          int64     `json:"story_id"`
	Title            string    `json:"title"`
	CoverImagePath   *string   `json:"cover_image_path,omitempty"`
	CoverLink        *string   `json:"cover_link,omitempty"`
	AuthorID         int64     `json:"author_id"`
	AuthorName       string    `json:"author_name"`
	Status           string    `json:"status"`
	LastChapterID    int64     `json:"last_chapter_id"`
	LastChapterTitle string    `json:"last_chapter_title"`
	LastOrderNum     int       `json:"last_order_num"`
	TotalChapters    int64     `json:"total_chapters"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func FromHistoryToResponse(e models.ReadingHistoryEntry, coverLink *string) ReadingHistoryResponse {
	return ReadingHistoryResponse{
		StoryID:          e.StoryID,
		Title:            e.Title,
		CoverImagePath:   e.CoverImagePath,
		CoverLink:        coverLink,
		AuthorID:         e.AuthorID,
		AuthorName:       e.AuthorName,
		Status:           e.Status,
		LastChapterID:    e.LastChapterID,
		LastChapterTitle: e.LastChapterTitle,
		LastOrderNum:     e.LastOrderNum,
		TotalChapters:    e.TotalChapters,
		UpdatedAt:        e.UpdatedAt,
	}
}
