// Package auth implements email/password authentication: registration,
// signin with signed access tokens, bearer token authorization and logout.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bookmarks/internal/session"
	"bookmarks/internal/token"

	"github.com/google/uuid"
)

var (
	// ErrEmailExists is returned when email is already registered
	ErrEmailExists = errors.New("email already registered")
	// ErrInvalidCredentials is returned when email or password do not match
	ErrInvalidCredentials = errors.New("credentials incorrect")
	// ErrUserNotFound is returned when user is not found
	ErrUserNotFound = errors.New("user not found")
	// ErrUnauthorized is returned when a bearer token cannot be accepted
	ErrUnauthorized = errors.New("unauthorized")
	// ErrPasswordTooLong is returned when a password exceeds what the hasher accepts
	ErrPasswordTooLong = errors.New("password too long")
)

// TokenType is the scheme clients present access tokens with.
const TokenType = "Bearer"

// Service defines the authentication service interface
type Service interface {
	Signup(ctx context.Context, email, password string) (*User, error)
	Signin(ctx context.Context, email, password string) (*TokenResponse, error)
	Authorize(ctx context.Context, accessToken string) (*Principal, error)
	Logout(ctx context.Context, sessionID string) error
	GetUserByID(ctx context.Context, userID string) (*User, error)
}

// service implements the Service interface
type service struct {
	repo      Repository
	hasher    PasswordHasher
	issuer    token.Issuer
	sessions  session.Manager
	logger    *slog.Logger
	dummyHash string
}

// NewService creates a new authentication service
func NewService(repo Repository, hasher PasswordHasher, issuer token.Issuer, sessions session.Manager, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}

	// Compared against when the email is unknown so both failure paths cost a hash.
	dummy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		logger.Warn("Failed to prepare dummy password hash", "error", err)
	}

	return &service{
		repo:      repo,
		hasher:    hasher,
		issuer:    issuer,
		sessions:  sessions,
		logger:    logger,
		dummyHash: dummy,
	}
}

// NormalizeEmail trims and lower-cases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup registers a new user
func (s *service) Signup(ctx context.Context, email, password string) (*User, error) {
	email = NormalizeEmail(email)

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user, err := s.repo.Create(ctx, &User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "User registered", "user_id", user.ID)
	return user, nil
}

// Signin checks credentials and issues an access token backed by a session
func (s *service) Signin(ctx context.Context, email, password string) (*TokenResponse, error) {
	email = NormalizeEmail(email)

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			_ = s.hasher.Compare(s.dummyHash, password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	accessToken, claims, err := s.issuer.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	err = s.sessions.Create(ctx, &session.Session{
		ID:        claims.SessionID(),
		UserID:    user.ID,
		Email:     user.Email,
		CreatedAt: claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.InfoContext(ctx, "User signed in", "user_id", user.ID, "session_id", claims.SessionID())

	return &TokenResponse{
		AccessToken: accessToken,
		TokenType:   TokenType,
		ExpiresIn:   int64(s.issuer.TTL().Seconds()),
	}, nil
}

// Authorize validates an access token and its session
func (s *service) Authorize(ctx context.Context, accessToken string) (*Principal, error) {
	claims, err := s.issuer.Parse(accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	sess, err := s.sessions.Get(ctx, claims.SessionID())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	if sess.UserID != claims.UserID() {
		return nil, fmt.Errorf("%w: session belongs to another user", ErrUnauthorized)
	}

	return &Principal{
		UserID:    sess.UserID,
		Email:     sess.Email,
		SessionID: sess.ID,
		ExpiresAt: sess.ExpiresAt,
	}, nil
}

// Logout revokes the session behind an access token
func (s *service) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	s.logger.InfoContext(ctx, "Session revoked", "session_id", sessionID)
	return nil
}

// GetUserByID retrieves a user by their ID
func (s *service) GetUserByID(ctx context.Context, userID string) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}
