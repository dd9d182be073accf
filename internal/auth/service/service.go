package service

import (
	"context"
	"time"

	"calltrack_backend/internal/auth/token"
	userrepo "calltrack_backend/internal/users/repository"
	"calltrack_backend/platform/apperr"
	"calltrack_backend/platform/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const accessTokenType = "access"

// UserReader is the slice of the user directory the auth service needs.
type UserReader interface {
	GetByEmail(ctx context.Context, email string) (*userrepo.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*userrepo.User, error)
}

// TokenStore persists hashed refresh tokens.
type TokenStore interface {
	StoreRefreshToken(ctx context.Context, tokenHash string, userID uuid.UUID, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, time.Time, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
}

// PasswordComparer verifies a plaintext password against a stored hash.
type PasswordComparer func(hash, plain string) error

// TokenPair is an issued access/refresh token pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Service implements credential verification and token issuance.
type Service struct {
	repo    TokenStore
	users   UserReader
	cfg     config.AuthServiceConfig
	compare PasswordComparer
}

// New creates a new auth service.
func New(repo TokenStore, users UserReader, cfg config.AuthServiceConfig, compare PasswordComparer) *Service {
	return &Service{repo: repo, users: users, cfg: cfg, compare: compare}
}

// SignIn verifies credentials and issues a token pair.
func (s *Service) SignIn(ctx context.Context, email, plainPassword string) (*TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Unauthorized("invalid credentials")
	}

	if err := s.compare(user.PasswordHash, plainPassword); err != nil {
		return nil, apperr.Unauthorized("invalid credentials")
	}

	if !user.IsActive {
		return nil, apperr.Forbidden("account deactivated")
	}

	return s.issueTokens(ctx, user.ID, user.Role, user.FullName)
}

// Refresh rotates a refresh token and issues a fresh pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	hash := token.HashSHA256(refreshToken)
	userID, expiresAt, err := s.repo.GetRefreshToken(ctx, hash)
	if err != nil {
		return nil, apperr.Unauthorized("invalid refresh token")
	}

	if time.Now().After(expiresAt) {
		_ = s.repo.RevokeRefreshToken(ctx, hash)
		return nil, apperr.Unauthorized("refresh token expired")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil || !user.IsActive {
		_ = s.repo.RevokeRefreshToken(ctx, hash)
		return nil, apperr.Unauthorized("invalid refresh token")
	}

	_ = s.repo.RevokeRefreshToken(ctx, hash)
	return s.issueTokens(ctx, user.ID, user.Role, user.FullName)
}

// SignOut revokes a refresh token.
func (s *Service) SignOut(ctx context.Context, refreshToken string) error {
	return s.repo.RevokeRefreshToken(ctx, token.HashSHA256(refreshToken))
}

func (s *Service) issueTokens(ctx context.Context, userID uuid.UUID, role, fullName string) (*TokenPair, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":       userID.String(),
		"role":      role,
		"full_name": fullName,
		"type":      accessTokenType,
		"iat":       now.Unix(),
		"exp":       now.Add(s.cfg.GetAccessTokenTTL()).Unix(),
	}

	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(s.cfg.GetJWTAccessSecret()))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to sign access token", err)
	}

	refresh, err := token.GenerateRandomToken(32)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to generate refresh token", err)
	}

	refreshHash := token.HashSHA256(refresh)
	expiresAt := now.Add(s.cfg.GetRefreshTokenTTL())
	if err := s.repo.StoreRefreshToken(ctx, refreshHash, userID, expiresAt); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to store refresh token", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
