package services

import (
	"context"
	"fmt"
	"time"

	"github.com/driftchat/drift/internal/core/domain/user"
	"github.com/driftchat/drift/internal/core/ports"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type UserService struct {
	repo   ports.UserRepository
	logger *logrus.Logger
}

func NewUserService(repo ports.UserRepository, logger *logrus.Logger) ports.UserService {
	return &UserService{repo: repo, logger: logger}
}

func (s *UserService) GetProfile(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

// UpdateProfile applies the non-nil fields of req to the caller's profile.
func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, req *user.UpdateProfileRequest) (*user.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	if req.DisplayName != nil {
		u.DisplayName = *req.DisplayName
	}
	if req.AvatarURL != nil {
		u.AvatarURL = *req.AvatarURL
	}
	if req.StatusLine != nil {
		u.StatusLine = *req.StatusLine
	}
	u.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"user_id": id}).Info("profile updated")
	return u, nil
}
