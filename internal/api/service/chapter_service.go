package service

import (
	"context"
	"strings"

	"chillingstories/internal/api/models"
	"chillingstories/internal/api/repository"
)

// ChapterInput is one uploaded chapter body with its display title.
type ChapterInput struct {
	Title   string
	Content string
}

type ChapterService interface {
	Add(ctx context.Context, storyID int64, orderNum int, title, content string) (int64, error)
	AddBulk(ctx context.Context, storyID int64, items []ChapterInput) ([]models.Chapter, error)

	GetByStory(ctx context.Context, storyID int64) ([]models.Chapter, error)
	GetByID(ctx context.Context, chapterID int64) (*models.Chapter, error)
	GetByOrder(ctx context.Context, storyID int64, orderNum int) (*models.Chapter, error)
	GetByIDForUser(ctx context.Context, chapterID int64, userID *int64) (*models.Chapter, error)
	GetByOrderForUser(ctx context.Context, storyID int64, orderNum int, userID *int64) (*models.Chapter, error)

	UpdateByID(ctx context.Context, chapterID int64, title, content *string) (bool, error)
	UpdateByOrder(ctx context.Context, storyID int64, orderNum int, title, content *string) (bool, error)
	DeleteByID(ctx context.Context, chapterID int64) (bool, error)
	DeleteByOrder(ctx context.Context, storyID int64, orderNum int) (bool, error)

	AuthorByStoryID(ctx context.Context, storyID int64) (int64, error)
	AuthorByChapterID(ctx context.Context, chapterID int64) (int64, error)
}

type chapterService struct {
	repo *repository.ChapterRepo
}

func NewChapterService(r *repository.ChapterRepo) ChapterService {
	return &chapterService{repo: r}
}

func (s *chapterService) Add(ctx context.Context, storyID int64, orderNum int, title, content string) (int64, error) {
	c := models.Chapter{
		StoryID:  storyID,
		OrderNum: orderNum,
		Title:    title,
		Content:  content,
	}
	if err := s.repo.Create(ctx, &c); err != nil {
		return 0, err
	}
	return c.ID, nil
}

// AddBulk appends the uploaded chapters after the story's current highest
// order number, preserving upload order.
func (s *chapterService) AddBulk(ctx context.Context, storyID int64, items []ChapterInput) ([]models.Chapter, error) {
	chapters := make([]models.Chapter, 0, len(items))
	for _, item := range items {
		chapters = append(chapters, models.Chapter{
			Title:   item.Title,
			Content: item.Content,
		})
	}
	if err := s.repo.CreateBulk(ctx, storyID, chapters); err != nil {
		return nil, err
	}
	return chapters, nil
}

func (s *chapterService) GetByStory(ctx context.Context, storyID int64) ([]models.Chapter, error) {
	return s.repo.GetByStory(ctx, storyID)
}

func (s *chapterService) GetByID(ctx context.Context, chapterID int64) (*models.Chapter, error) {
	return s.repo.GetByID(ctx, chapterID)
}

func (s *chapterService) GetByOrder(ctx context.Context, storyID int64, orderNum int) (*models.Chapter, error) {
	return s.repo.GetByOrder(ctx, storyID, orderNum)
}

// GetByIDForUser reads the chapter; with a known user the read also
// records progress and the view count, atomically.
func (s *chapterService) GetByIDForUser(ctx context.Context, chapterID int64, userID *int64) (*models.Chapter, error) {
	if userID == nil {
		return s.repo.GetByID(ctx, chapterID)
	}
	return s.repo.GetByIDWithProgress(ctx, chapterID, *userID)
}

func (s *chapterService) GetByOrderForUser(ctx context.Context, storyID int64, orderNum int, userID *int64) (*models.Chapter, error) {
	if userID == nil {
		return s.repo.GetByOrder(ctx, storyID, orderNum)
	}
	return s.repo.GetByOrderWithProgress(ctx, storyID, orderNum, *userID)
}

func (s *chapterService) UpdateByID(ctx context.Context, chapterID int64, title, content *string) (bool, error) {
	return s.repo.UpdateByID(ctx, chapterID, chapterUpdates(title, content))
}

func (s *chapterService) UpdateByOrder(ctx context.Context, storyID int64, orderNum int, title, content *string) (bool, error) {
	return s.repo.UpdateByOrder(ctx, storyID, orderNum, chapterUpdates(title, content))
}

func chapterUpdates(title, content *string) map[string]any {
	updates := map[string]any{}
	if title != nil && strings.TrimSpace(*title) != "" {
		updates["title"] = *title
	}
	if content != nil && *content != "" {
		updates["content"] = *content
	}
	return updates
}

func (s *chapterService) DeleteByID(ctx context.Context, chapterID int64) (bool, error) {
	return s.repo.DeleteByID(ctx, chapterID)
}

func (s *chapterService) DeleteByOrder(ctx context.Context, storyID int64, orderNum int) (bool, error) {
	return s.repo.DeleteByOrder(ctx, storyID, orderNum)
}

func (s *chapterService) AuthorByStoryID(ctx context.Context, storyID int64) (int64, error) {
	return s.repo.AuthorByStoryID(ctx, storyID)
}

func (s *chapterService) AuthorByChapterID(ctx context.Context, chapterID int64) (int64, error) {
	return s.repo.AuthorByChapterID(ctx, chapterID)
}
