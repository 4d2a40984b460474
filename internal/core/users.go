package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/JonMunkholm/flatbridge/internal/auth"
	db "github.com/JonMunkholm/flatbridge/internal/database"
)

// MaxUsernameLength bounds registered usernames.
const MaxUsernameLength = 64

// Register creates an account and returns a signed-in session.
func (s *Service) Register(ctx context.Context, username, password string) (*Session, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if len(username) > MaxUsernameLength {
		return nil, fmt.Errorf("username must be at most %d characters", MaxUsernameLength)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	row, err := s.store.CreateUser(ctx, db.CreateUserParams{Username: username, PasswordHash: hash})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.newSession(row)
}

// rejectUnknownUser runs when the username does not exist.
var rejectUnknownUser = auth.RejectUnknownUser

// Login verifies credentials and returns a session. Unknown users and wrong
// passwords produce the same error.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	row, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, rejectUnknownUser(password)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := auth.CheckPassword(row.PasswordHash, password); err != nil {
		return nil, err
	}

	return s.newSession(row)
}

// GetUser returns the account with the given id.
func (s *Service) GetUser(ctx context.Context, userID string) (*User, error) {
	uid, err := parseUUID(userID, "user")
	if err != nil {
		return nil, err
	}
	row, err := s.store.GetUser(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", notFound(err, "user"))
	}
	u := userFromRow(row)
	return &u, nil
}

// Authenticate validates a bearer token.
func (s *Service) Authenticate(token string) (*auth.Claims, error) {
	if s.tokens == nil {
		return nil, fmt.Errorf("%w: token issuer not configured", auth.ErrInvalidToken)
	}
	return s.tokens.Validate(token)
}

func (s *Service) newSession(row db.User) (*Session, error) {
	if s.tokens == nil {
		return nil, fmt.Errorf("token issuer not configured")
	}
	u := userFromRow(row)
	token, exp, err := s.tokens.Issue(u.ID, u.Username)
	if err != nil {
		return nil, err
	}
	return &Session{User: u, Token: token, ExpiresAt: exp}, nil
}

func userFromRow(r db.User) User {
	return User{
		ID:        uuidString(r.ID),
		Username:  r.Username,
		CreatedAt: timeOf(r.CreatedAt),
	}
}
