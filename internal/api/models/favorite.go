package models

import "time"

// Favorite is an existence-based relation: a row means the user has
// favorited the story. Story.FavoriteCount tracks the number of rows.
type Favorite struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    int64     `json:"user_id" gorm:"not null;uniqueIndex:idx_user_story"`
	StoryID   int64     `json:"story_id" gorm:"not null;uniqueIndex:idx_user_story"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	// Associations
	User  *User  `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Story *Story `json:"story,omitempty" gorm:"foreignKey:StoryID;constraint:OnDelete:CASCADE;"`
}

func (Favorite) TableName() string {
	return "favorites"
}
