package models

// explicit join model so genre links can be replaced in bulk
type StoryGenre struct {
	StoryID int64 `json:"story_id" gorm:"primaryKey"`
	GenreID int64 `json:"genre_id" gorm:"primaryKey"`
}

func (StoryGenre) TableName() string {
	return "story_genres"
}
