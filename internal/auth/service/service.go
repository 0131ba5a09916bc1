// Package service implements the demo login flow: users are found or created
// by email and identified afterwards by an opaque cookie, no passwords.
package service

import (
	"context"
	"errors"
	"strings"

	"buyer_portal_backend/internal/auth/repository"
	"buyer_portal_backend/internal/auth/transport"
)

const defaultName = "demo"

type Service struct {
	repo *repository.Repository
}

func New(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

// Login resolves the caller to a user record. With an email, an existing
// user is reused and a missing one created; without one, a fresh anonymous
// demo user is minted on every call.
func (s *Service) Login(ctx context.Context, req transport.LoginRequest) (transport.UserResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)

	if email != "" {
		user, err := s.repo.GetByEmail(ctx, email)
		if err == nil {
			return toUserResponse(user), nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return transport.UserResponse{}, err
		}

		created, err := s.repo.Create(ctx, nilIfEmpty(name), &email)
		if err != nil {
			return transport.UserResponse{}, err
		}
		return toUserResponse(created), nil
	}

	if name == "" {
		name = defaultName
	}
	created, err := s.repo.Create(ctx, &name, nil)
	if err != nil {
		return transport.UserResponse{}, err
	}
	return toUserResponse(created), nil
}

func toUserResponse(user repository.User) transport.UserResponse {
	return transport.UserResponse{
		ID:        user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

func nilIfEmpty(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
