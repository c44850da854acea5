package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	"github.com/driftchat/drift/internal/core/cachekey"
	"github.com/driftchat/drift/internal/core/domain/chat"
	"github.com/driftchat/drift/internal/core/domain/friend"
	"github.com/driftchat/drift/internal/core/domain/user"
	"github.com/driftchat/drift/internal/core/ports"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrInvalidInviteToken = errors.New("invite token is invalid or expired")

type FriendService struct {
	repo          ports.FriendRepository
	userRepo      ports.UserRepository
	chatRepo      ports.ChatRepository
	inviteRepo    ports.InviteTokenRepository
	emailService  ports.EmailService
	cache         ports.Cache
	inviteBaseURL string
	logger        *logrus.Logger
}

func NewFriendService(repo ports.FriendRepository, userRepo ports.UserRepository, chatRepo ports.ChatRepository, inviteRepo ports.InviteTokenRepository, emailService ports.EmailService, cache ports.Cache, inviteBaseURL string, logger *logrus.Logger) ports.FriendService {
	return &FriendService{
		repo:          repo,
		userRepo:      userRepo,
		chatRepo:      chatRepo,
		inviteRepo:    inviteRepo,
		emailService:  emailService,
		cache:         cache,
		inviteBaseURL: inviteBaseURL,
		logger:        logger,
	}
}

func (s *FriendService) SendRequest(ctx context.Context, requesterID, receiverID uuid.UUID) (*friend.Friendship, error) {
	if requesterID == receiverID {
		return nil, friend.ErrSelfRequest
	}

	existing, err := s.repo.GetByPair(ctx, requesterID, receiverID)
	switch {
	case err == nil:
		switch existing.Status {
		case friend.StatusAccepted:
			return nil, friend.ErrAlreadyFriends
		case friend.StatusPending:
			return nil, friend.ErrAlreadyPending
		case friend.StatusDeclined:
			// A declined edge does not block a fresh request.
			if err := s.repo.Delete(ctx, existing.ID); err != nil {
				return nil, fmt.Errorf("failed to clear declined request: %w", err)
			}
		}
	case !errors.Is(err, friend.ErrNotFound):
		return nil, fmt.Errorf("failed to check existing friendship: %w", err)
	}

	f := &friend.Friendship{
		ID:          uuid.New(),
		RequesterID: requesterID,
		ReceiverID:  receiverID,
		Status:      friend.StatusPending,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("failed to create friend request: %w", err)
	}

	s.notifyReceiver(ctx, requesterID, receiverID)
	return f, nil
}

func (s *FriendService) Accept(ctx context.Context, userID, requestID uuid.UUID) (*friend.Friendship, error) {
	return s.answer(ctx, userID, requestID, friend.StatusAccepted)
}

func (s *FriendService) Decline(ctx context.Context, userID, requestID uuid.UUID) (*friend.Friendship, error) {
	return s.answer(ctx, userID, requestID, friend.StatusDeclined)
}

func (s *FriendService) answer(ctx context.Context, userID, requestID uuid.UUID, status friend.Status) (*friend.Friendship, error) {
	f, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if f.ReceiverID != userID {
		return nil, friend.ErrNotReceiver
	}
	if f.Status != friend.StatusPending {
		return nil, friend.ErrNotPending
	}
	if err := s.repo.UpdateStatus(ctx, requestID, status); err != nil {
		return nil, fmt.Errorf("failed to update request: %w", err)
	}
	f.Status = status
	f.UpdatedAt = time.Now()
	s.logger.WithFields(logrus.Fields{"request_id": requestID, "status": status}).Info("friend request answered")
	return f, nil
}

func (s *FriendService) Remove(ctx context.Context, userID, otherID uuid.UUID) error {
	f, err := s.repo.GetByPair(ctx, userID, otherID)
	if err != nil {
		return err
	}
	if !f.Involves(userID) {
		return friend.ErrNotFound
	}
	return s.repo.Delete(ctx, f.ID)
}

func (s *FriendService) ListFriends(ctx context.Context, userID uuid.UUID) ([]*user.User, error) {
	return s.repo.ListFriends(ctx, userID)
}

func (s *FriendService) ListPending(ctx context.Context, userID uuid.UUID) ([]*friend.Friendship, error) {
	return s.repo.ListPending(ctx, userID)
}

func (s *FriendService) ListSent(ctx context.Context, userID uuid.UUID) ([]*friend.Friendship, error) {
	return s.repo.ListSent(ctx, userID)
}

// ShareTargets lists the user's friends as forwarding targets, with the
// direct chat id when one already exists. Chats are created lazily on first
// send, so a zero ChatID just means no conversation yet.
func (s *FriendService) ShareTargets(ctx context.Context, userID uuid.UUID) ([]chat.ShareTarget, error) {
	key := cachekey.ShareTargets(userID)
	if b, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		var targets []chat.ShareTarget
		if err := json.Unmarshal(b, &targets); err == nil {
			return targets, nil
		}
	}

	friends, err := s.repo.ListFriends(ctx, userID)
	if err != nil {
		return nil, err
	}

	targets := make([]chat.ShareTarget, 0, len(friends))
	for _, fr := range friends {
		target := chat.ShareTarget{
			UserID:      fr.ID,
			DisplayName: fr.DisplayName,
			AvatarURL:   fr.AvatarURL,
		}
		if c, err := s.chatRepo.GetDirectByPair(ctx, userID, fr.ID); err == nil {
			target.ChatID = c.ID
		}
		targets = append(targets, target)
	}

	if b, err := json.Marshal(targets); err == nil {
		if err := s.cache.Set(ctx, key, b, cachekey.TTLShort); err != nil {
			s.logger.WithFields(logrus.Fields{"key": key}).WithError(err).Warn("failed to cache share targets")
		}
	}
	return targets, nil
}

// Invite emails a signup link to someone without an account. Only the
// token's bcrypt hash is stored; the plaintext lives in the emailed URL.
func (s *FriendService) Invite(ctx context.Context, inviterID uuid.UUID, email string) error {
	if existing, err := s.userRepo.GetByEmail(ctx, email); err == nil && existing != nil {
		// Already registered: a regular friend request applies instead.
		if _, err := s.SendRequest(ctx, inviterID, existing.ID); err != nil {
			return err
		}
		return nil
	}

	token, err := generateInviteToken()
	if err != nil {
		return fmt.Errorf("failed to generate invite token: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash invite token: %w", err)
	}
	if err := s.inviteRepo.Store(ctx, email, string(hash), inviterID); err != nil {
		return fmt.Errorf("failed to store invite: %w", err)
	}

	inviter, err := s.userRepo.GetByID(ctx, inviterID)
	if err != nil {
		return fmt.Errorf("failed to load inviter: %w", err)
	}
	inviteURL := fmt.Sprintf("%s/signup?email=%s&invite=%s", s.inviteBaseURL, email, token)
	if err := s.emailService.SendInvite(ctx, email, inviter.DisplayName, inviteURL); err != nil {
		return fmt.Errorf("failed to send invite email: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"inviter_id": inviterID}).Info("invite sent")
	return nil
}

// RedeemInvite verifies the emailed token after signup and creates the
// pending friend request the invite stood for.
func (s *FriendService) RedeemInvite(ctx context.Context, newUserID uuid.UUID, email, token string) (*friend.Friendship, error) {
	hash, inviterID, err := s.inviteRepo.Get(ctx, email)
	if err != nil {
		return nil, ErrInvalidInviteToken
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)); err != nil {
		return nil, ErrInvalidInviteToken
	}
	if err := s.inviteRepo.Delete(ctx, email); err != nil {
		s.logger.WithFields(logrus.Fields{"email": email}).WithError(err).Warn("failed to delete redeemed invite")
	}
	return s.SendRequest(ctx, inviterID, newUserID)
}

func (s *FriendService) notifyReceiver(ctx context.Context, requesterID, receiverID uuid.UUID) {
	requester, err := s.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		return
	}
	receiver, err := s.userRepo.GetByID(ctx, receiverID)
	if err != nil {
		return
	}
	if err := s.emailService.SendFriendRequestNotification(ctx, receiver.Email, requester.DisplayName); err != nil {
		// Log error but don't fail the request
		s.logger.WithFields(logrus.Fields{"receiver_id": receiverID}).WithError(err).Warn("failed to send friend request notification")
	}
}

func generateInviteToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
