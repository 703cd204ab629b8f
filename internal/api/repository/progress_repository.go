package repository

import (
	"context"
	"fmt"

	"chillingstories/internal/api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository interface {
	Upsert(ctx context.Context, progress *models.ReadingProgress) error
	GetAllByUser(ctx context.Context, userID int64) ([]models.ReadingHistoryEntry, error)
	Delete(ctx context.Context, userID, storyID int64) (bool, error)
}

type progressRepository struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

// Upsert records the last chapter read, keyed on (user_id, story_id).
// Last-write-wins: the newest read overwrites, forward or backward.
func (r *progressRepository) Upsert(ctx context.Context, progress *models.ReadingProgress) error {
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "story_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_chapter_id", "last_order_num", "updated_at"}),
	}).Create(progress).Error; err != nil {
		return fmt.Errorf("upsert reading progress: %w", err)
	}
	return nil
}

// GetAllByUser returns the user's reading history joined with story,
// author, and last-read chapter metadata, most recently updated first.
func (r *progressRepository) GetAllByUser(ctx context.Context, userID int64) ([]models.ReadingHistoryEntry, error) {
	var list []models.ReadingHistoryEntry
	err := r.db.WithContext(ctx).Raw(`
SELECT rp.story_id, s.title, s.cover_image_path, s.author_id,
       u.username AS author_name, s.status,
       rp.last_chapter_id, c.title AS last_chapter_title, rp.last_order_num,
       (SELECT COUNT(*) FROM chapters c2 WHERE c2.story_id = s.id) AS total_chapters,
       rp.updated_at
FROM reading_progress rp
JOIN stories s ON s.id = rp.story_id
JOIN users u ON u.id = s.author_id
JOIN chapters c ON c.id = rp.last_chapter_id
WHERE rp.user_id = ?
ORDER BY rp.updated_at DESC`, userID).Scan(&list).Error
	if err != nil {
		return nil, fmt.Errorf("get reading history: %w", err)
	}
	return list, nil
}

func (r *progressRepository) Delete(ctx context.Context, userID, storyID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND story_id = ?", userID, storyID).
		Delete(&models.ReadingProgress{})
	if res.Error != nil {
		return false, fmt.Errorf("delete reading progress: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
