package service

import (
	"context"
	"strings"

	"chillingstories/internal/api/models"
	"chillingstories/internal/api/repository"
)

// UpdateProfileInput carries a partial profile update.
type UpdateProfileInput struct {
	Username  *string
	Email     *string
	Phone     *string
	AvatarURL *string
}

type UserService interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetAll(ctx context.Context) ([]models.User, error)
	UpdateProfile(ctx context.Context, id int64, in UpdateProfileInput) (*models.User, error)
	UpdateRole(ctx context.Context, id int64, role string) (*models.User, error)
}

type userService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *userService) GetAll(ctx context.Context) ([]models.User, error) {
	return s.repo.GetAll(ctx)
}

func (s *userService) UpdateProfile(ctx context.Context, id int64, in UpdateProfileInput) (*models.User, error) {
	updates := map[string]any{}
	if in.Username != nil && strings.TrimSpace(*in.Username) != "" {
		updates["username"] = *in.Username
	}
	if in.Email != nil && strings.TrimSpace(*in.Email) != "" {
		updates["email"] = *in.Email
	}
	if in.Phone != nil && *in.Phone != "" {
		updates["phone"] = *in.Phone
	}
	if in.AvatarURL != nil && *in.AvatarURL != "" {
		updates["avatar_url"] = *in.AvatarURL
	}
	return s.repo.UpdateProfile(ctx, id, updates)
}

func (s *userService) UpdateRole(ctx context.Context, id int64, role string) (*models.User, error) {
	if !models.ValidRole(role) {
		return nil, ErrInvalidRole
	}
	return s.repo.UpdateRole(ctx, id, role)
}
