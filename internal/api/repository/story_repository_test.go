package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"chillingstories/internal/api/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoryRepo_UpdatePartial_EmptyUpdates(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStoryRepo(db)

	changed, err := repo.UpdatePartial(context.Background(), 1, map[string]any{})
	assert.NoError(t, err)
	assert.False(t, changed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoryRepo_UpdatePartial(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStoryRepo(db)

	mock.ExpectExec(`UPDATE "stories" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	changed, err := repo.UpdatePartial(context.Background(), 1, map[string]any{"title": "New Title"})
	assert.NoError(t, err)
	assert.True(t, changed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoryRepo_Delete_Missing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStoryRepo(db)

	mock.ExpectExec(`DELETE FROM "stories"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := repo.Delete(context.Background(), 42)
	assert.NoError(t, err)
	assert.False(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoryRepo_IncrementView(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStoryRepo(db)

	mock.ExpectExec(`UPDATE "stories" SET "view_count"=view_count \+ 1`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.IncrementView(context.Background(), 1)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoryRepo_Search_EmptyKeywordListsAll(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStoryRepo(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "title", "author_id", "status", "view_count", "favorite_count", "created_at"}).
		AddRow(int64(2), "Newer", int64(1), "ongoing", int64(0), int64(0), now).
		AddRow(int64(1), "Older", int64(1), "ongoing", int64(0), int64(0), now.Add(-time.Hour))
	mock.ExpectQuery(`SELECT \* FROM "stories" ORDER BY created_at DESC, id ASC`).
		WillReturnRows(rows)

	list, err := repo.Search(context.Background(), "")
	assert.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Newer", list[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoryRepo_Search_Keyword(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStoryRepo(db)

	rows := sqlmock.NewRows([]string{"id", "title", "author_id", "status", "view_count", "favorite_count", "created_at"}).
		AddRow(int64(1), "Haunted House", int64(1), "ongoing", int64(0), int64(0), time.Now())
	mock.ExpectQuery(`ts_rank`).
		WithArgs("haunted", "haunted").
		WillReturnRows(rows)

	list, err := repo.Search(context.Background(), "haunted")
	assert.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Haunted House", list[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoryRepo_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStoryRepo(db)

	mock.ExpectQuery(`FROM stories s`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	s, err := repo.GetByID(context.Background(), 99, nil)
	assert.NoError(t, err)
	assert.Nil(t, s)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoryRepo_GetByID_WithViewer(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStoryRepo(db)

	viewerID := int64(5)
	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "title", "description", "cover_image_path", "author_id",
		"author_name", "status", "view_count", "favorite_count", "created_at",
		"chapter_count", "last_update_at", "is_favorited",
	}).AddRow(int64(1), "Haunted House", nil, nil, int64(2),
		"ghostwriter", "ongoing", int64(10), int64(3), now,
		int64(4), now, true)

	// The viewer id binds before the WHERE clause argument.
	mock.ExpectQuery(`EXISTS\(SELECT 1 FROM favorites f2`).
		WithArgs(viewerID, int64(1)).
		WillReturnRows(rows)

	s, err := repo.GetByID(context.Background(), 1, &viewerID)
	assert.NoError(t, err)
	require.NotNil(t, s)
	assert.True(t, s.IsFavorited)
	assert.Equal(t, "ghostwriter", s.AuthorName)
	assert.Equal(t, int64(4), s.ChapterCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoryRepo_ToggleFavorite_Add(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStoryRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "favorites"`).
		WithArgs(int64(5), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))
	mock.ExpectQuery(`INSERT INTO "favorites"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectExec(`UPDATE "stories" SET "favorite_count"=favorite_count \+ 1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	favorited, err := repo.ToggleFavorite(context.Background(), 5, 1)
	assert.NoError(t, err)
	assert.True(t, favorited)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoryRepo_ToggleFavorite_Remove(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStoryRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "favorites"`).
		WithArgs(int64(5), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectExec(`DELETE FROM "favorites"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "stories" SET "favorite_count"=GREATEST\(favorite_count - 1, 0\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	favorited, err := repo.ToggleFavorite(context.Background(), 5, 1)
	assert.NoError(t, err)
	assert.False(t, favorited)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoryRepo_ToggleFavorite_ConcurrentInsertWins(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStoryRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "favorites"`).
		WithArgs(int64(5), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))
	mock.ExpectQuery(`INSERT INTO "favorites"`).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectCommit()

	favorited, err := repo.ToggleFavorite(context.Background(), 5, 1)
	assert.NoError(t, err)
	assert.True(t, favorited)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoryRepo_GetAllGenres(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStoryRepo(db)

	rows := sqlmock.NewRows([]string{"id", "name"}).
		AddRow(int64(1), "horror").
		AddRow(int64(2), "thriller")
	mock.ExpectQuery(`SELECT \* FROM "genres" ORDER BY name asc`).
		WillReturnRows(rows)

	genres, err := repo.GetAllGenres(context.Background())
	assert.NoError(t, err)
	require.Len(t, genres, 2)
	assert.Equal(t, "horror", genres[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoryRepo_CreateWithGenres_RollsBackOnGenreFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStoryRepo(db)

	// The story row and the first genre go in fine; the second genre
	// insert fails and the whole transaction must roll back.
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "stories"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery(`INSERT INTO "genres"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectExec(`INSERT INTO "story_genres" .* ON CONFLICT DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "genres"`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	s := models.Story{Title: "Haunted House", AuthorID: 2}
	err := repo.CreateWithGenres(context.Background(), &s, []string{"horror", "thriller"})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoryRepo_ReplaceGenres(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStoryRepo(db)

	// Existing links are cleared before the new set is written, all in
	// one transaction.
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "story_genres" WHERE story_id = \$1`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(`INSERT INTO "genres" .* ON CONFLICT \("name"\) DO NOTHING`).
		WithArgs("horror").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectExec(`INSERT INTO "story_genres" .* ON CONFLICT DO NOTHING`).
		WithArgs(int64(1), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.ReplaceGenres(context.Background(), 1, []string{"horror"})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoryRepo_ReplaceGenres_ExistingGenreIsReused(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStoryRepo(db)

	// The genre upsert conflicts and assigns no id, so the existing row
	// is looked up before linking.
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "story_genres" WHERE story_id = \$1`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "genres" .* ON CONFLICT \("name"\) DO NOTHING`).
		WithArgs("horror").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT \* FROM "genres" WHERE name = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(7), "horror"))
	mock.ExpectExec(`INSERT INTO "story_genres" .* ON CONFLICT DO NOTHING`).
		WithArgs(int64(1), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.ReplaceGenres(context.Background(), 1, []string{"horror"})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoryRepo_ReplaceGenres_EmptyListClearsAll(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStoryRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "story_genres" WHERE story_id = \$1`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	err := repo.ReplaceGenres(context.Background(), 1, nil)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
