package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"chillingstories/internal/api/dto"
	"chillingstories/internal/api/models"
	"chillingstories/internal/api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockAuthService mocks the AuthService interface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, username, email, password, role string) (*models.User, error) {
	args := m.Called(ctx, username, email, password, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, string, *models.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(2) == nil {
		return args.String(0), args.String(1), nil, args.Error(3)
	}
	return args.String(0), args.String(1), args.Get(2).(*models.User), args.Error(3)
}

func (m *MockAuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	args := m.Called(ctx, accessToken, refreshToken)
	return args.Error(0)
}

func (m *MockAuthService) ValidateToken(ctx context.Context, tokenString string) (*service.Claims, error) {
	args := m.Called(ctx, tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Claims), args.Error(1)
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func postJSON(router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req, _ := http.NewRequest("POST", path, bytes.NewBuffer(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegister_Success(t *testing.T) {
	mockAuthService := new(MockAuthService)
	h := NewAuthHandler(mockAuthService)
	router := setupRouter()
	router.POST("/register", h.Register)

	user := &models.User{
		ID:       1,
		Username: "testuser",
		Email:    "test@example.com",
		Role:     models.RoleViewer,
	}
	mockAuthService.On("Register", mock.Anything, "testuser", "test@example.com", "password123", "").
		Return(user, nil)

	w := postJSON(router, "/register", dto.RegisterRequest{
		Username: "testuser",
		Email:    "test@example.com",
		Password: "password123",
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var response struct {
		Success bool             `json:"success"`
		Data    dto.UserResponse `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.True(t, response.Success)
	assert.Equal(t, "testuser", response.Data.Username)
	assert.Equal(t, models.RoleViewer, response.Data.Role)

	mockAuthService.AssertExpectations(t)
}

func TestRegister_EmailInUse(t *testing.T) {
	mockAuthService := new(MockAuthService)
	h := NewAuthHandler(mockAuthService)
	router := setupRouter()
	router.POST("/register", h.Register)

	mockAuthService.On("Register", mock.Anything, "testuser", "taken@example.com", "password123", "").
		Return(nil, service.ErrEmailInUse)

	w := postJSON(router, "/register", dto.RegisterRequest{
		Username: "testuser",
		Email:    "taken@example.com",
		Password: "password123",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	mockAuthService.AssertExpectations(t)
}

func TestRegister_ShortPassword(t *testing.T) {
	mockAuthService := new(MockAuthService)
	h := NewAuthHandler(mockAuthService)
	router := setupRouter()
	router.POST("/register", h.Register)

	w := postJSON(router, "/register", dto.RegisterRequest{
		Username: "testuser",
		Email:    "test@example.com",
		Password: "short",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockAuthService.AssertNotCalled(t, "Register")
}

func TestLogin_Success(t *testing.T) {
	mockAuthService := new(MockAuthService)
	h := NewAuthHandler(mockAuthService)
	router := setupRouter()
	router.POST("/login", h.Login)

	user := &models.User{ID: 1, Username: "testuser", Email: "test@example.com", Role: models.RoleViewer}
	mockAuthService.On("Login", mock.Anything, "test@example.com", "password123").
		Return("access-token", "refresh-token", user, nil)

	w := postJSON(router, "/login", dto.LoginRequest{
		Email:    "test@example.com",
		Password: "password123",
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Success bool             `json:"success"`
		Data    dto.AuthResponse `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.True(t, response.Success)
	assert.Equal(t, "access-token", response.Data.AccessToken)
	assert.Equal(t, "refresh-token", response.Data.RefreshToken)
	assert.Equal(t, "testuser", response.Data.User.Username)

	mockAuthService.AssertExpectations(t)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	mockAuthService := new(MockAuthService)
	h := NewAuthHandler(mockAuthService)
	router := setupRouter()
	router.POST("/login", h.Login)

	mockAuthService.On("Login", mock.Anything, "test@example.com", "wrongpass").
		Return("", "", nil, service.ErrInvalidCredentials)

	w := postJSON(router, "/login", dto.LoginRequest{
		Email:    "test@example.com",
		Password: "wrongpass",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockAuthService.AssertExpectations(t)
}

func TestRefresh_InvalidToken(t *testing.T) {
	mockAuthService := new(MockAuthService)
	h := NewAuthHandler(mockAuthService)
	router := setupRouter()
	router.POST("/refresh", h.Refresh)

	mockAuthService.On("RefreshAccessToken", mock.Anything, "bad-token").
		Return("", service.ErrInvalidToken)

	w := postJSON(router, "/refresh", dto.RefreshTokenRequest{RefreshToken: "bad-token"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockAuthService.AssertExpectations(t)
}

func TestLogout_MissingHeader(t *testing.T) {
	mockAuthService := new(MockAuthService)
	h := NewAuthHandler(mockAuthService)
	router := setupRouter()
	router.POST("/logout", h.Logout)

	w := postJSON(router, "/logout", dto.LogoutRequest{RefreshToken: "refresh-token"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockAuthService.AssertNotCalled(t, "Logout")
}
