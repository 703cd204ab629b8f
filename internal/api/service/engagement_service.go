package service

import (
	"context"
	"time"

	"chillingstories/internal/api/models"
	"chillingstories/internal/api/repository"
)

type EngagementService interface {
	UpdateProgress(ctx context.Context, userID, storyID, chapterID int64, orderNum int) error
	GetHistory(ctx context.Context, userID int64) ([]models.ReadingHistoryEntry, error)
	RemoveFromHistory(ctx context.Context, userID, storyID int64) (bool, error)
}

type engagementService struct {
	repo repository.ProgressRepository
}

func NewEngagementService(repo repository.ProgressRepository) EngagementService {
	return &engagementService{repo: repo}
}

// UpdateProgress stores the most recent chapter read, last-write-wins.
func (s *engagementService) UpdateProgress(ctx context.Context, userID, storyID, chapterID int64, orderNum int) error {
	return s.repo.Upsert(ctx, &models.ReadingProgress{
		UserID:        userID,
		StoryID:       storyID,
		LastChapterID: chapterID,
		LastOrderNum:  orderNum,
		UpdatedAt:     time.Now(),
	})
}

func (s *engagementService) GetHistory(ctx context.Context, userID int64) ([]models.ReadingHistoryEntry, error) {
	return s.repo.GetAllByUser(ctx, userID)
}

func (s *engagementService) RemoveFromHistory(ctx context.Context, userID, storyID int64) (bool, error) {
	return s.repo.Delete(ctx, userID, storyID)
}
