package user

import (
	"time"

	"github.com/google/uuid"
)

// User is the profile record for an account. Identity and credentials live
// in the managed auth service; this server only ever sees the user id from a
// verified token, so there is no password material here.
type User struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Email       string    `json:"email" db:"email"`
	DisplayName string    `json:"display_name" db:"display_name"`
	AvatarURL   string    `json:"avatar_url" db:"avatar_url"`
	StatusLine  string    `json:"status_line" db:"status_line"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// UpdateProfileRequest represents the request to update the caller's profile
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	StatusLine  *string `json:"status_line,omitempty"`
}
