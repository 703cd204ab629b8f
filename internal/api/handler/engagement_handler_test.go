package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"chillingstories/internal/api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockEngagementService mocks the EngagementService interface
type MockEngagementService struct {
	mock.Mock
}

func (m *MockEngagementService) UpdateProgress(ctx context.Context, userID, storyID, chapterID int64, orderNum int) error {
	args := m.Called(ctx, userID, storyID, chapterID, orderNum)
	return args.Error(0)
}

func (m *MockEngagementService) GetHistory(ctx context.Context, userID int64) ([]models.ReadingHistoryEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReadingHistoryEntry), args.Error(1)
}

func (m *MockEngagementService) RemoveFromHistory(ctx context.Context, userID, storyID int64) (bool, error) {
	args := m.Called(ctx, userID, storyID)
	return args.Bool(0), args.Error(1)
}

func TestGetHistory(t *testing.T) {
	svc := new(MockEngagementService)
	h := NewEngagementHandler(svc)
	router := setupRouter()
	router.GET("/me/history", asPrincipal(5, "reader", models.RoleViewer), h.GetHistory)

	svc.On("GetHistory", mock.Anything, int64(5)).Return([]models.ReadingHistoryEntry{
		{
			StoryID:          1,
			Title:            "Haunted House",
			AuthorName:       "ghostwriter",
			LastChapterID:    10,
			LastChapterTitle: "Two",
			LastOrderNum:     2,
			TotalChapters:    4,
			UpdatedAt:        time.Now(),
		},
	}, nil)

	w := doRequest(router, "GET", "/me/history")

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Success bool `json:"success"`
		Data    []struct {
			StoryID       int64 `json:"story_id"`
			LastOrderNum  int   `json:"last_order_num"`
			TotalChapters int64 `json:"total_chapters"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &response)
	require.Len(t, response.Data, 1)
	assert.Equal(t, int64(1), response.Data[0].StoryID)
	assert.Equal(t, 2, response.Data[0].LastOrderNum)
	assert.Equal(t, int64(4), response.Data[0].TotalChapters)
	svc.AssertExpectations(t)
}

func TestUpdateProgress(t *testing.T) {
	svc := new(MockEngagementService)
	h := NewEngagementHandler(svc)
	router := setupRouter()
	router.POST("/me/history", asPrincipal(5, "reader", models.RoleViewer), h.UpdateProgress)

	svc.On("UpdateProgress", mock.Anything, int64(5), int64(1), int64(10), 2).Return(nil)

	w := postJSON(router, "/me/history", map[string]any{
		"story_id":   1,
		"chapter_id": 10,
		"order_num":  2,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestRemoveFromHistory_Missing(t *testing.T) {
	svc := new(MockEngagementService)
	h := NewEngagementHandler(svc)
	router := setupRouter()
	router.DELETE("/me/history/:storyId", asPrincipal(5, "reader", models.RoleViewer), h.RemoveFromHistory)

	svc.On("RemoveFromHistory", mock.Anything, int64(5), int64(9)).Return(false, nil)

	w := doRequest(router, "DELETE", "/me/history/9")

	assert.Equal(t, http.StatusNotFound, w.Code)
	svc.AssertExpectations(t)
}
