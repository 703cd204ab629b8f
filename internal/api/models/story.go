package models

import "time"

// Story status values. The store defaults new stories to ongoing.
const (
	StoryStatusOngoing   = "ongoing"
	StoryStatusCompleted = "completed"
)

type Story struct {
	ID             int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Title          string    `json:"title" gorm:"not null"`
	Description    *string   `json:"description,omitempty"`
	CoverImagePath *string   `json:"cover_image_path,omitempty"`
	AuthorID       int64     `json:"author_id" gorm:"not null;index"`
	Status         string    `json:"status" gorm:"default:'ongoing';not null"`
	ViewCount      int64     `json:"view_count" gorm:"default:0;not null"`
	FavoriteCount  int64     `json:"favorite_count" gorm:"default:0;not null"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`

	// Associations
	Author   *User     `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Genres   []Genre   `json:"genres,omitempty" gorm:"many2many:story_genres;constraint:OnDelete:CASCADE;"`
	Chapters []Chapter `json:"chapters,omitempty" gorm:"foreignKey:StoryID;constraint:OnDelete:CASCADE;"`
}

func (Story) TableName() string {
	return "stories"
}
