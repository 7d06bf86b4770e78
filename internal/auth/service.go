// Package auth orchestrates the registration, login, refresh, verify and
// revoke flows over the token codec and the backing stores.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gatekeep-backend/internal/models"
	"gatekeep-backend/internal/password"
	"gatekeep-backend/internal/repository"
	"gatekeep-backend/internal/token"

	"github.com/google/uuid"
)

// UserStore persists user identity. Lookups return nil, nil when no record
// exists.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	ByEmail(ctx context.Context, email string) (*models.User, error)
	ByID(ctx context.Context, id string) (*models.User, error)
}

// Blacklist records revoked refresh tokens by fingerprint. Add is
// idempotent; Contains only reports entries that have not yet expired.
type Blacklist interface {
	Add(ctx context.Context, fingerprint string, expiresAt time.Time) error
	Contains(ctx context.Context, fingerprint string) (bool, error)
}

// TokenPair is the response body shared by register, login and refresh.
type TokenPair struct {
	AccessToken           string `json:"access_token"`
	AccessTokenExpiresIn  int64  `json:"access_token_expires_in"`
	RefreshToken          string `json:"refresh_token"`
	RefreshTokenExpiresIn int64  `json:"refresh_token_expires_in"`
}

type AuthService struct {
	users     UserStore
	blacklist Blacklist
	codec     *token.Codec
	hasher    password.Hasher
	strength  password.StrengthChecker
}

func NewAuthService(users UserStore, blacklist Blacklist, codec *token.Codec, hasher password.Hasher, strength password.StrengthChecker) *AuthService {
	return &AuthService{
		users:     users,
		blacklist: blacklist,
		codec:     codec,
		hasher:    hasher,
		strength:  strength,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) issuePair(userID string) (*TokenPair, error) {
	access, err := s.codec.Issue(userID, token.ClassAccess)
	if err != nil {
		return nil, fmt.Errorf("issuing access token: %w", err)
	}

	refresh, err := s.codec.Issue(userID, token.ClassRefresh)
	if err != nil {
		return nil, fmt.Errorf("issuing refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:           access.Raw,
		AccessTokenExpiresIn:  access.ExpiresIn,
		RefreshToken:          refresh.Raw,
		RefreshTokenExpiresIn: refresh.ExpiresIn,
	}, nil
}

// Register creates a user and issues its first token pair. The strength
// check is seeded with the email so passwords derived from it score lower.
func (s *AuthService) Register(ctx context.Context, email, password1, password2 string) (*TokenPair, error) {
	if email == "" || password1 == "" || password2 == "" {
		return nil, ErrMissingRegistration
	}
	if password1 != password2 {
		return nil, ErrPasswordMismatch
	}

	email = normalizeEmail(email)

	if err := s.strength.Check(password1, []string{email}); err != nil {
		return nil, ErrWeakPassword
	}

	existing, err := s.users.ByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hashed, err := s.hasher.Hash(password1)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{
		ID:       uuid.New().String(),
		Email:    email,
		Password: hashed,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// Concurrent registration can slip past the lookup above; the
		// unique index is the real guard.
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return s.issuePair(user.ID)
}

// Login verifies credentials and issues a token pair. An unknown email and
// a wrong password return the identical error so the response does not leak
// which part failed.
func (s *AuthService) Login(ctx context.Context, email, plain string) (*TokenPair, error) {
	if email == "" || plain == "" {
		return nil, ErrMissingCredentials
	}

	user, err := s.users.ByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if !s.hasher.Compare(plain, user.Password) {
		return nil, ErrInvalidCredentials
	}

	return s.issuePair(user.ID)
}

// Refresh consumes a refresh token and issues a new pair. The token is
// burned before the subject lookup so it cannot be replayed even when the
// rest of the flow fails.
func (s *AuthService) Refresh(ctx context.Context, raw string) (*TokenPair, error) {
	if raw == "" {
		return nil, ErrMissingRefreshToken
	}

	claims, err := s.codec.Verify(raw)
	if err != nil || claims.Type != token.ClassRefresh || claims.ExpiresAt == nil {
		return nil, ErrInvalidRefreshToken
	}

	fingerprint := s.codec.Fingerprint(raw)

	revoked, err := s.blacklist.Contains(ctx, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("checking blacklist: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	if err := s.blacklist.Add(ctx, fingerprint, claims.ExpiresAt.Time); err != nil {
		return nil, fmt.Errorf("blacklisting token: %w", err)
	}

	user, err := s.users.ByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidRefreshToken
	}

	return s.issuePair(user.ID)
}

// Verify validates an access token and returns the subject id. Purely
// stateless; the blacklist is never consulted for access tokens.
func (s *AuthService) Verify(raw string) (string, error) {
	if raw == "" {
		return "", ErrMissingAccessToken
	}

	claims, err := s.codec.Verify(raw)
	if err != nil || claims.Type != token.ClassAccess {
		return "", ErrInvalidAccessToken
	}

	return claims.UserID, nil
}

// Revoke blacklists a refresh token. Revoking an already-revoked token
// succeeds again; the store treats duplicate fingerprints as no-ops.
func (s *AuthService) Revoke(ctx context.Context, raw string) error {
	if raw == "" {
		return ErrMissingRefreshToken
	}

	claims, err := s.codec.Verify(raw)
	if err != nil || claims.Type != token.ClassRefresh || claims.ExpiresAt == nil {
		return ErrInvalidRefreshToken
	}

	if err := s.blacklist.Add(ctx, s.codec.Fingerprint(raw), claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("blacklisting token: %w", err)
	}

	return nil
}

// UserByID looks up a user record; backs the /auth/me endpoint.
func (s *AuthService) UserByID(ctx context.Context, id string) (*models.User, error) {
	return s.users.ByID(ctx, id)
}
