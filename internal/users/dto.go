package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/brightbasket/storefront-backend/pkg/db/models"
)

// Profile is the public representation of a user account.
type Profile struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	IsAdmin     bool       `json:"isAdmin"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// ToProfile maps a stored user onto its public shape.
func ToProfile(user *models.User) Profile {
	return Profile{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		IsAdmin:     user.IsAdmin,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}

// ToProfiles maps a slice of stored users.
func ToProfiles(rows []models.User) []Profile {
	out := make([]Profile, 0, len(rows))
	for i := range rows {
		out = append(out, ToProfile(&rows[i]))
	}
	return out
}
