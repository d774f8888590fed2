package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"devmatch/models"
	apperrors "devmatch/pkg/errors"
	"devmatch/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// SessionService issues and checks bearer tokens.
type SessionService struct {
	Dynamo   *DynamoService
	Profiles *UserProfileService
	Table    string
	TTL      time.Duration
	Log      logger.Logger

	now func() time.Time
}

func (s *SessionService) table() string {
	if s.Table == "" {
		return models.SessionsTable
	}
	return s.Table
}

func (s *SessionService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func (s *SessionService) ttl() time.Duration {
	if s.TTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return s.TTL
}

// Login checks credentials and stores a new session.
func (s *SessionService) Login(ctx context.Context, emailID, password string) (*models.LoginResponse, error) {
	user, err := s.Profiles.GetUserByEmail(ctx, emailID)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	now := s.clock().UTC()
	session := models.Session{
		Token:     uuid.NewString(),
		UserID:    user.UserID,
		CreatedAt: now.Format(time.RFC3339),
		ExpiresAt: now.Add(s.ttl()).Unix(),
	}
	if err := s.Dynamo.PutItem(ctx, s.table(), session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	s.Log.Info("🔑 User logged in", "userId", user.UserID)
	return &models.LoginResponse{
		Token: session.Token,
		User:  s.Profiles.Identity(ctx, *user),
	}, nil
}

// Authenticate returns the user behind token. DynamoDB TTL deletion is
// lazy, so expiry is checked here as well.
func (s *SessionService) Authenticate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", apperrors.ErrMissingToken
	}
	var session models.Session
	err := s.Dynamo.GetItemInto(ctx, s.table(), stringKey("token", token), &session)
	if errors.Is(err, ErrItemNotFound) {
		return "", apperrors.ErrSessionExpired
	}
	if err != nil {
		return "", fmt.Errorf("failed to load session: %w", err)
	}
	if session.ExpiresAt <= s.clock().Unix() {
		return "", apperrors.ErrSessionExpired
	}
	return session.UserID, nil
}

// Logout deletes the session. Unknown tokens are not an error.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	if err := s.Dynamo.DeleteItem(ctx, s.table(), stringKey("token", token)); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
