package models

import "time"

// Chapter is one ordered unit of a story's content. (story_id, order_num)
// is unique so order-based lookups are unambiguous.
type Chapter struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	StoryID   int64     `json:"story_id" gorm:"not null;uniqueIndex:idx_story_order"`
	OrderNum  int       `json:"order_num" gorm:"not null;uniqueIndex:idx_story_order"`
	Title     string    `json:"title" gorm:"not null"`
	Content   string    `json:"content" gorm:"not null;type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	// Associations
	Story *Story `json:"story,omitempty" gorm:"foreignKey:StoryID;constraint:OnDelete:CASCADE;"`
}

func (Chapter) TableName() string {
	return "chapters"
}
