package ports

import (
	"context"

	"github.com/driftchat/drift/internal/core/domain/user"
	"github.com/google/uuid"
)

// UserRepository defines the interface for profile data operations
type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	Update(ctx context.Context, u *user.User) error
}

// UserService defines the interface for profile business logic
type UserService interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*user.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req *user.UpdateProfileRequest) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
}
