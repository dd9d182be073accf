package service

import (
	"context"
	"time"

	"calltrack_backend/internal/auth/password"
	"calltrack_backend/internal/users/repository"
	"calltrack_backend/internal/users/transport"
	"calltrack_backend/platform/apperr"

	"github.com/google/uuid"
)

// Service implements user directory operations.
type Service struct {
	repo *repository.Repository
}

// New creates a new users service.
func New(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

// Create adds a new user to the directory.
func (s *Service) Create(ctx context.Context, req transport.CreateUserRequest) (*transport.UserResponse, error) {
	if existing, err := s.repo.GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, apperr.Conflict("user already exists")
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to hash password", err)
	}

	now := time.Now()
	user := &repository.User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		Role:         req.Role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to create user", err)
	}

	return toResponse(user), nil
}

// GetByID returns a single user.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*transport.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(user), nil
}

// List returns every user in the directory.
func (s *Service) List(ctx context.Context) ([]transport.UserResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list users", err)
	}

	out := make([]transport.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, *toResponse(&users[i]))
	}
	return out, nil
}

// ListSalespeople returns active salesperson accounts.
func (s *Service) ListSalespeople(ctx context.Context) ([]transport.SalespersonResponse, error) {
	users, err := s.repo.ListActiveSalespeople(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list salespeople", err)
	}

	out := make([]transport.SalespersonResponse, 0, len(users))
	for _, u := range users {
		out = append(out, transport.SalespersonResponse{
			ID:       u.ID,
			Email:    u.Email,
			FullName: u.FullName,
			IsActive: u.IsActive,
		})
	}
	return out, nil
}

// Update replaces a user's mutable fields.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateUserRequest) (*transport.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Email = req.Email
	user.FullName = req.FullName
	user.Role = req.Role
	user.IsActive = req.IsActive
	user.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return toResponse(user), nil
}

// Deactivate soft-deletes a user. Their ID stays referenceable by calls,
// leads and follow-ups.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.repo.Deactivate(ctx, id)
}

func toResponse(user *repository.User) *transport.UserResponse {
	return &transport.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      user.Role,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	}
}
