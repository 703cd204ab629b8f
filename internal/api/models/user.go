package models

import "time"

// User roles.
const (
	RoleAdmin  = "admin"
	RoleAuthor = "author"
	RoleViewer = "viewer"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleAuthor, RoleViewer:
		return true
	}
	return false
}

type User struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Username  string    `json:"username" gorm:"uniqueIndex;not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Phone     *string   `json:"phone,omitempty"`
	Password  string    `json:"-" gorm:"column:password_hash;not null"` // Not shown in JSON
	Role      string    `json:"role" gorm:"default:'viewer';not null"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}
