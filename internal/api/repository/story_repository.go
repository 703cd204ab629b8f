package repository

import (
	"context"
	"fmt"

	"chillingstories/internal/api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Ranking lists are capped at 30 rows.
const topListLimit = 30

// summarySelect is the shared projection for story list/info reads.
// chapter_count and last_update_at are correlated aggregates over chapters;
// is_favorited is filled per viewing user when one is known.
const summarySelect = `
SELECT s.id, s.title, s.description, s.cover_image_path, s.author_id,
       u.username AS author_name, s.status, s.view_count, s.favorite_count,
       s.created_at,
       (SELECT COUNT(*) FROM chapters c WHERE c.story_id = s.id) AS chapter_count,
       (SELECT MAX(c.created_at) FROM chapters c WHERE c.story_id = s.id) AS last_update_at,
       %s AS is_favorited
FROM stories s
JOIN users u ON u.id = s.author_id`

type StoryRepo struct {
	db *gorm.DB
}

func NewStoryRepo(db *gorm.DB) *StoryRepo {
	return &StoryRepo{db: db}
}

func (r *StoryRepo) Create(ctx context.Context, s *models.Story) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return fmt.Errorf("create story: %w", err)
	}
	return nil
}

// CreateWithGenres inserts the story and its genre links in one
// transaction. Any failure rolls back everything, including the story row.
// Genre names must already be normalized by the caller.
func (r *StoryRepo) CreateWithGenres(ctx context.Context, s *models.Story, genreNames []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(s).Error; err != nil {
			return fmt.Errorf("create story: %w", err)
		}
		return linkGenres(tx, s.ID, genreNames)
	})
}

// linkGenres upserts each genre by name and links it to the story. Both
// inserts are duplicate-tolerant (ON CONFLICT DO NOTHING) so concurrent
// callers racing on the same genre name cannot fail or duplicate rows.
func linkGenres(tx *gorm.DB, storyID int64, genreNames []string) error {
	for _, name := range genreNames {
		g := models.Genre{Name: name}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&g).Error; err != nil {
			return fmt.Errorf("upsert genre %q: %w", name, err)
		}
		// On conflict the insert assigns no id; fetch the existing row.
		if g.ID == 0 {
			if err := tx.Where("name = ?", name).First(&g).Error; err != nil {
				return fmt.Errorf("find genre %q: %w", name, err)
			}
		}
		link := models.StoryGenre{StoryID: storyID, GenreID: g.ID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
			return fmt.Errorf("link genre %q: %w", name, err)
		}
	}
	return nil
}

// ReplaceGenres atomically replaces the story's genre links with the given
// list. An empty list leaves the story with zero genres.
func (r *StoryRepo) ReplaceGenres(ctx context.Context, storyID int64, genreNames []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("story_id = ?", storyID).Delete(&models.StoryGenre{}).Error; err != nil {
			return fmt.Errorf("clear story genres: %w", err)
		}
		return linkGenres(tx, storyID, genreNames)
	})
}

// UpdatePartial sets only the supplied columns. Returns false when nothing
// was supplied or no row matched.
func (r *StoryRepo) UpdatePartial(ctx context.Context, id int64, updates map[string]any) (bool, error) {
	if len(updates) == 0 {
		return false, nil
	}
	res := r.db.WithContext(ctx).Model(&models.Story{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return false, fmt.Errorf("update story: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *StoryRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.Story{}, id)
	if res.Error != nil {
		return false, fmt.Errorf("delete story: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Search returns all stories when keyword is empty, otherwise a full-text
// match over title and description ranked by relevance, ties broken by id.
func (r *StoryRepo) Search(ctx context.Context, keyword string) ([]models.Story, error) {
	var list []models.Story
	db := r.db.WithContext(ctx)
	if keyword == "" {
		if err := db.Order("created_at DESC, id ASC").Find(&list).Error; err != nil {
			return nil, fmt.Errorf("list stories: %w", err)
		}
		return list, nil
	}
	err := db.Raw(`
SELECT s.*, ts_rank(to_tsvector('simple', s.title || ' ' || COALESCE(s.description, '')),
                    plainto_tsquery('simple', ?)) AS rank
FROM stories s
WHERE to_tsvector('simple', s.title || ' ' || COALESCE(s.description, '')) @@ plainto_tsquery('simple', ?)
ORDER BY rank DESC, s.id ASC`, keyword, keyword).Scan(&list).Error
	if err != nil {
		return nil, fmt.Errorf("search stories: %w", err)
	}
	return list, nil
}

// GetByID returns the story summary, or nil when the story does not exist.
// viewerID adds the is_favorited flag; pass nil for anonymous reads.
func (r *StoryRepo) GetByID(ctx context.Context, id int64, viewerID *int64) (*models.StorySummary, error) {
	query, args := summaryQuery(viewerID, "WHERE s.id = ?", "")
	args = append(args, id)

	var list []models.StorySummary
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&list).Error; err != nil {
		return nil, fmt.Errorf("get story: %w", err)
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

func (r *StoryRepo) GetNewest(ctx context.Context, viewerID *int64) ([]models.StorySummary, error) {
	return r.listSummaries(ctx, viewerID, "", "ORDER BY s.created_at DESC, s.id ASC", topListLimit)
}

func (r *StoryRepo) GetTopByView(ctx context.Context, viewerID *int64) ([]models.StorySummary, error) {
	return r.listSummaries(ctx, viewerID, "", "ORDER BY s.view_count DESC, s.id ASC", topListLimit)
}

func (r *StoryRepo) GetTopByFavorite(ctx context.Context, viewerID *int64) ([]models.StorySummary, error) {
	return r.listSummaries(ctx, viewerID, "", "ORDER BY s.favorite_count DESC, s.id ASC", topListLimit)
}

func (r *StoryRepo) GetByAuthor(ctx context.Context, authorID int64, viewerID *int64) ([]models.StorySummary, error) {
	query, args := summaryQuery(viewerID, "WHERE s.author_id = ?", "ORDER BY s.created_at DESC, s.id ASC")
	args = append(args, authorID)

	var list []models.StorySummary
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&list).Error; err != nil {
		return nil, fmt.Errorf("get stories by author: %w", err)
	}
	return list, nil
}

// GetFavorited returns the stories the user has favorited, most recently
// favorited first.
func (r *StoryRepo) GetFavorited(ctx context.Context, userID int64) ([]models.StorySummary, error) {
	query, args := summaryQuery(&userID,
		"JOIN favorites f ON f.story_id = s.id AND f.user_id = ?",
		"ORDER BY f.created_at DESC, s.id ASC")
	args = append(args, userID)

	var list []models.StorySummary
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&list).Error; err != nil {
		return nil, fmt.Errorf("get favorited stories: %w", err)
	}
	return list, nil
}

func (r *StoryRepo) listSummaries(ctx context.Context, viewerID *int64, where, order string, limit int) ([]models.StorySummary, error) {
	query, args := summaryQuery(viewerID, where, order)
	query += fmt.Sprintf(" LIMIT %d", limit)

	var list []models.StorySummary
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&list).Error; err != nil {
		return nil, fmt.Errorf("list story summaries: %w", err)
	}
	return list, nil
}

// summaryQuery assembles the summary projection with an optional viewer for
// the is_favorited flag. The viewer placeholder binds first, so callers
// append their own clause arguments after the returned args.
func summaryQuery(viewerID *int64, clauses, order string) (string, []any) {
	var args []any
	favExpr := "FALSE"
	if viewerID != nil {
		favExpr = "EXISTS(SELECT 1 FROM favorites f2 WHERE f2.user_id = ? AND f2.story_id = s.id)"
		args = append(args, *viewerID)
	}
	query := fmt.Sprintf(summarySelect, favExpr)
	if clauses != "" {
		query += "\n" + clauses
	}
	if order != "" {
		query += "\n" + order
	}
	return query, args
}

// IncrementView bumps the story's view counter with an atomic SQL
// expression.
func (r *StoryRepo) IncrementView(ctx context.Context, storyID int64) error {
	if err := r.db.WithContext(ctx).Model(&models.Story{}).Where("id = ?", storyID).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error; err != nil {
		return fmt.Errorf("increment view count: %w", err)
	}
	return nil
}

// ToggleFavorite flips the (user, story) favorite state and adjusts the
// story's favorite counter in the same transaction. The counter never drops
// below zero. Returns the resulting state.
func (r *StoryRepo) ToggleFavorite(ctx context.Context, userID, storyID int64) (bool, error) {
	var favorited bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Favorite{}).
			Where("user_id = ? AND story_id = ?", userID, storyID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("check favorite: %w", err)
		}

		if count > 0 {
			if err := tx.Where("user_id = ? AND story_id = ?", userID, storyID).
				Delete(&models.Favorite{}).Error; err != nil {
				return fmt.Errorf("remove favorite: %w", err)
			}
			if err := tx.Model(&models.Story{}).Where("id = ?", storyID).
				UpdateColumn("favorite_count", gorm.Expr("GREATEST(favorite_count - 1, 0)")).Error; err != nil {
				return fmt.Errorf("decrement favorite count: %w", err)
			}
			favorited = false
			return nil
		}

		if err := tx.Create(&models.Favorite{UserID: userID, StoryID: storyID}).Error; err != nil {
			// A concurrent request hit the unique index on (user_id, story_id)
			// first; the row exists, so the state is favorited.
			if isUniqueViolation(err) {
				favorited = true
				return nil
			}
			return fmt.Errorf("add favorite: %w", err)
		}
		if err := tx.Model(&models.Story{}).Where("id = ?", storyID).
			UpdateColumn("favorite_count", gorm.Expr("favorite_count + 1")).Error; err != nil {
			return fmt.Errorf("increment favorite count: %w", err)
		}
		favorited = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return favorited, nil
}

func (r *StoryRepo) GetAllGenres(ctx context.Context) ([]models.Genre, error) {
	var list []models.Genre
	if err := r.db.WithContext(ctx).Order("name asc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("get genres: %w", err)
	}
	return list, nil
}

func (r *StoryRepo) GetGenresByStory(ctx context.Context, storyID int64) ([]models.Genre, error) {
	var list []models.Genre
	if err := r.db.WithContext(ctx).
		Model(&models.Genre{}).
		Joins("JOIN story_genres sg ON sg.genre_id = genres.id").
		Where("sg.story_id = ?", storyID).
		Order("genres.name asc").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("get genres by story: %w", err)
	}
	return list, nil
}
