package models

import "time"

// ReadingProgress points at the last chapter a user visited in a story.
// Last-write-wins: re-reading an earlier chapter moves the pointer back.
type ReadingProgress struct {
	UserID        int64     `json:"user_id" gorm:"primaryKey"`
	StoryID       int64     `json:"story_id" gorm:"primaryKey"`
	LastChapterID int64     `json:"last_chapter_id" gorm:"not null"`
	LastOrderNum  int       `json:"last_order_num" gorm:"not null"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"default:CURRENT_TIMESTAMP"`
}

func (ReadingProgress) TableName() string {
	return "reading_progress"
}
