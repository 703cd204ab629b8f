package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chillingstories/internal/api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChapterRepo struct {
	db *gorm.DB
}

func NewChapterRepo(db *gorm.DB) *ChapterRepo {
	return &ChapterRepo{db: db}
}

func (r *ChapterRepo) Create(ctx context.Context, c *models.Chapter) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateOrder
		}
		return fmt.Errorf("create chapter: %w", err)
	}
	return nil
}

// CreateBulk inserts the chapters in list order, numbering them after the
// story's current highest order_num. Everything happens in one transaction.
func (r *ChapterRepo) CreateBulk(ctx context.Context, storyID int64, chapters []models.Chapter) error {
	if len(chapters) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxOrder int
		if err := tx.Model(&models.Chapter{}).
			Where("story_id = ?", storyID).
			Select("COALESCE(MAX(order_num), 0)").
			Scan(&maxOrder).Error; err != nil {
			return fmt.Errorf("get max order: %w", err)
		}
		for i := range chapters {
			chapters[i].StoryID = storyID
			chapters[i].OrderNum = maxOrder + i + 1
			if err := tx.Create(&chapters[i]).Error; err != nil {
				if isUniqueViolation(err) {
					return ErrDuplicateOrder
				}
				return fmt.Errorf("create chapter %d: %w", chapters[i].OrderNum, err)
			}
		}
		return nil
	})
}

// GetByStory returns the story's chapters ordered ascending by order_num.
func (r *ChapterRepo) GetByStory(ctx context.Context, storyID int64) ([]models.Chapter, error) {
	var list []models.Chapter
	if err := r.db.WithContext(ctx).
		Where("story_id = ?", storyID).
		Order("order_num ASC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("get chapters: %w", err)
	}
	return list, nil
}

func (r *ChapterRepo) GetByID(ctx context.Context, id int64) (*models.Chapter, error) {
	var c models.Chapter
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get chapter: %w", err)
	}
	return &c, nil
}

func (r *ChapterRepo) GetByOrder(ctx context.Context, storyID int64, orderNum int) (*models.Chapter, error) {
	var c models.Chapter
	if err := r.db.WithContext(ctx).
		Where("story_id = ? AND order_num = ?", storyID, orderNum).
		First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get chapter by order: %w", err)
	}
	return &c, nil
}

// GetByIDWithProgress reads the chapter and, in the same transaction,
// upserts the user's reading progress to point at it and increments the
// story's view counter. Both side effects commit or roll back together.
func (r *ChapterRepo) GetByIDWithProgress(ctx context.Context, chapterID, userID int64) (*models.Chapter, error) {
	var c models.Chapter
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&c, chapterID).Error; err != nil {
			return err
		}
		return recordRead(tx, &c, userID)
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chapter with progress: %w", err)
	}
	return &c, nil
}

// GetByOrderWithProgress is GetByIDWithProgress keyed on (story, order).
func (r *ChapterRepo) GetByOrderWithProgress(ctx context.Context, storyID int64, orderNum int, userID int64) (*models.Chapter, error) {
	var c models.Chapter
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("story_id = ? AND order_num = ?", storyID, orderNum).First(&c).Error; err != nil {
			return err
		}
		return recordRead(tx, &c, userID)
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chapter with progress: %w", err)
	}
	return &c, nil
}

// recordRead applies the two read side effects: progress upsert
// (last-write-wins on (user_id, story_id)) and the view-count increment.
func recordRead(tx *gorm.DB, c *models.Chapter, userID int64) error {
	progress := models.ReadingProgress{
		UserID:        userID,
		StoryID:       c.StoryID,
		LastChapterID: c.ID,
		LastOrderNum:  c.OrderNum,
		UpdatedAt:     time.Now(),
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "story_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_chapter_id", "last_order_num", "updated_at"}),
	}).Create(&progress).Error; err != nil {
		return fmt.Errorf("upsert reading progress: %w", err)
	}
	if err := tx.Model(&models.Story{}).Where("id = ?", c.StoryID).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error; err != nil {
		return fmt.Errorf("increment view count: %w", err)
	}
	return nil
}

// UpdateByID sets the supplied columns. False when nothing supplied or no
// row matched, same contract as story updates.
func (r *ChapterRepo) UpdateByID(ctx context.Context, id int64, updates map[string]any) (bool, error) {
	if len(updates) == 0 {
		return false, nil
	}
	res := r.db.WithContext(ctx).Model(&models.Chapter{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return false, fmt.Errorf("update chapter: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *ChapterRepo) UpdateByOrder(ctx context.Context, storyID int64, orderNum int, updates map[string]any) (bool, error) {
	if len(updates) == 0 {
		return false, nil
	}
	res := r.db.WithContext(ctx).Model(&models.Chapter{}).
		Where("story_id = ? AND order_num = ?", storyID, orderNum).
		Updates(updates)
	if res.Error != nil {
		return false, fmt.Errorf("update chapter by order: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *ChapterRepo) DeleteByID(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.Chapter{}, id)
	if res.Error != nil {
		return false, fmt.Errorf("delete chapter: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *ChapterRepo) DeleteByOrder(ctx context.Context, storyID int64, orderNum int) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("story_id = ? AND order_num = ?", storyID, orderNum).
		Delete(&models.Chapter{})
	if res.Error != nil {
		return false, fmt.Errorf("delete chapter by order: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// AuthorByStoryID resolves the owning author so the access layer can
// enforce "author of this story, or admin". Zero when the story is missing.
func (r *ChapterRepo) AuthorByStoryID(ctx context.Context, storyID int64) (int64, error) {
	var authorID int64
	err := r.db.WithContext(ctx).Model(&models.Story{}).
		Where("id = ?", storyID).
		Select("author_id").
		Scan(&authorID).Error
	if err != nil {
		return 0, fmt.Errorf("get author by story: %w", err)
	}
	return authorID, nil
}

func (r *ChapterRepo) AuthorByChapterID(ctx context.Context, chapterID int64) (int64, error) {
	var authorID int64
	err := r.db.WithContext(ctx).
		Raw(`SELECT s.author_id FROM chapters c JOIN stories s ON s.id = c.story_id WHERE c.id = ?`, chapterID).
		Scan(&authorID).Error
	if err != nil {
		return 0, fmt.Errorf("get author by chapter: %w", err)
	}
	return authorID, nil
}
