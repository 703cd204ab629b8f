package dto

// UpdateProfileRequest used for PATCH /api/users/me (partial updates)
type UpdateProfileRequest struct {
	Username  *string `json:"username,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// UpdateRoleRequest used for PATCH /api/users/:id/role (admin only)
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}
