package models

import "time"

// StorySummary is the projection returned by story list and info reads.
// ChapterCount and LastUpdateAt come from correlated aggregates over
// chapters, AuthorName from a join on users, IsFavorited from an existence
// check against favorites when a viewing user is known.
type StorySummary struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Description    *string    `json:"description,omitempty"`
	CoverImagePath *string    `json:"cover_image_path,omitempty"`
	AuthorID       int64      `json:"author_id"`
	AuthorName     string     `json:"author_name"`
	Status         string     `json:"status"`
	ViewCount      int64      `json:"view_count"`
	FavoriteCount  int64      `json:"favorite_count"`
	CreatedAt      time.Time  `json:"created_at"`
	ChapterCount   int64      `json:"chapter_count"`
	LastUpdateAt   *time.Time `json:"last_update_at,omitempty"`
	IsFavorited    bool       `json:"is_favorited"`
}

// ReadingHistoryEntry is one row of a user's reading history, joining the
// story, its author, and the last chapter read.
type ReadingHistoryEntry struct {
	StoryID          int64     `json:"story_id"`
	Title            string    `json:"title"`
	CoverImagePath   *string   `json:"cover_image_path,omitempty"`
	AuthorID         int64     `json:"author_id"`
	AuthorName       string    `json:"author_name"`
	Status           string    `json:"status"`
	LastChapterID    int64     `json:"last_chapter_id"`
	LastChapterTitle string    `json:"last_chapter_title"`
	LastOrderNum     int       `json:"last_order_num"`
	TotalChapters    int64     `json:"total_chapters"`
	UpdatedAt        time.Time `json:"updated_at"`
}
