package service

import (
	"context"
	"strings"

	"chillingstories/internal/api/models"
	"chillingstories/internal/api/repository"
)

// CreateStoryInput carries the story fields supplied at creation. The
// domain does not validate them; callers check required fields.
type CreateStoryInput struct {
	Title          string
	Description    *string
	CoverImagePath *string
}

// UpdateStoryInput carries a partial update; only non-empty supplied
// fields are applied.
type UpdateStoryInput struct {
	Title          *string
	Description    *string
	CoverImagePath *string
}

type StoryService interface {
	Create(ctx context.Context, authorID int64, in CreateStoryInput) (int64, error)
	CreateWithGenres(ctx context.Context, authorID int64, in CreateStoryInput, genreNames []string) (int64, error)
	Update(ctx context.Context, id int64, in UpdateStoryInput) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Search(ctx context.Context, keyword string) ([]models.Story, error)

	GetByID(ctx context.Context, id int64, viewerID *int64) (*models.StorySummary, error)
	GetNewest(ctx context.Context, viewerID *int64) ([]models.StorySummary, error)
	GetTopByView(ctx context.Context, viewerID *int64) ([]models.StorySummary, error)
	GetTopByFavorite(ctx context.Context, viewerID *int64) ([]models.StorySummary, error)
	GetByAuthor(ctx context.Context, authorID int64, viewerID *int64) ([]models.StorySummary, error)
	GetFavorited(ctx context.Context, userID int64) ([]models.StorySummary, error)

	ToggleFavorite(ctx context.Context, userID, storyID int64) (bool, error)
	IncrementView(ctx context.Context, storyID int64) error

	UpdateGenres(ctx context.Context, storyID int64, genreNames []string) error
	GetAllGenres(ctx context.Context) ([]models.Genre, error)
	GetGenresByStory(ctx context.Context, storyID int64) ([]models.Genre, error)
}

type storyService struct {
	repo *repository.StoryRepo
}

func NewStoryService(r *repository.StoryRepo) StoryService {
	return &storyService{repo: r}
}

func (s *storyService) Create(ctx context.Context, authorID int64, in CreateStoryInput) (int64, error) {
	story := models.Story{
		Title:          in.Title,
		Description:    in.Description,
		CoverImagePath: in.CoverImagePath,
		AuthorID:       authorID,
	}
	if err := s.repo.Create(ctx, &story); err != nil {
		return 0, err
	}
	return story.ID, nil
}

func (s *storyService) CreateWithGenres(ctx context.Context, authorID int64, in CreateStoryInput, genreNames []string) (int64, error) {
	story := models.Story{
		Title:          in.Title,
		Description:    in.Description,
		CoverImagePath: in.CoverImagePath,
		AuthorID:       authorID,
	}
	if err := s.repo.CreateWithGenres(ctx, &story, NormalizeGenres(genreNames)); err != nil {
		return 0, err
	}
	return story.ID, nil
}

func (s *storyService) Update(ctx context.Context, id int64, in UpdateStoryInput) (bool, error) {
	updates := map[string]any{}
	if in.Title != nil && strings.TrimSpace(*in.Title) != "" {
		updates["title"] = *in.Title
	}
	if in.Description != nil && *in.Description != "" {
		updates["description"] = *in.Description
	}
	if in.CoverImagePath != nil && *in.CoverImagePath != "" {
		updates["cover_image_path"] = *in.CoverImagePath
	}
	return s.repo.UpdatePartial(ctx, id, updates)
}

func (s *storyService) Delete(ctx context.Context, id int64) (bool, error) {
	return s.repo.Delete(ctx, id)
}

func (s *storyService) Search(ctx context.Context, keyword string) ([]models.Story, error) {
	return s.repo.Search(ctx, strings.TrimSpace(keyword))
}

func (s *storyService) GetByID(ctx context.Context, id int64, viewerID *int64) (*models.StorySummary, error) {
	return s.repo.GetByID(ctx, id, viewerID)
}

func (s *storyService) GetNewest(ctx context.Context, viewerID *int64) ([]models.StorySummary, error) {
	return s.repo.GetNewest(ctx, viewerID)
}

func (s *storyService) GetTopByView(ctx context.Context, viewerID *int64) ([]models.StorySummary, error) {
	return s.repo.GetTopByView(ctx, viewerID)
}

func (s *storyService) GetTopByFavorite(ctx context.Context, viewerID *int64) ([]models.StorySummary, error) {
	return s.repo.GetTopByFavorite(ctx, viewerID)
}

func (s *storyService) GetByAuthor(ctx context.Context, authorID int64, viewerID *int64) ([]models.StorySummary, error) {
	return s.repo.GetByAuthor(ctx, authorID, viewerID)
}

func (s *storyService) GetFavorited(ctx context.Context, userID int64) ([]models.StorySummary, error) {
	return s.repo.GetFavorited(ctx, userID)
}

func (s *storyService) ToggleFavorite(ctx context.Context, userID, storyID int64) (bool, error) {
	return s.repo.ToggleFavorite(ctx, userID, storyID)
}

func (s *storyService) IncrementView(ctx context.Context, storyID int64) error {
	return s.repo.IncrementView(ctx, storyID)
}

func (s *storyService) UpdateGenres(ctx context.Context, storyID int64, genreNames []string) error {
	return s.repo.ReplaceGenres(ctx, storyID, NormalizeGenres(genreNames))
}

func (s *storyService) GetAllGenres(ctx context.Context) ([]models.Genre, error) {
	return s.repo.GetAllGenres(ctx)
}

func (s *storyService) GetGenresByStory(ctx context.Context, storyID int64) ([]models.Genre, error) {
	return s.repo.GetGenresByStory(ctx, storyID)
}

// NormalizeGenres trims and lower-cases genre names, drops empties, and
// removes duplicates while preserving first-seen order. "Horror", " horror "
// and "HORROR" all collapse to a single "horror".
func NormalizeGenres(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		n := strings.ToLower(strings.TrimSpace(name))
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
