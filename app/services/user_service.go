package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/campusprint/printhub/app/models"
	"github.com/campusprint/printhub/app/repositories"
	"github.com/campusprint/printhub/pkg/identity"
	"github.com/campusprint/printhub/pkg/logger"
)

// UserService keeps the local user directory in step with the identity
// provider.
type UserService struct {
	users  *repositories.UserRepository
	domain string
}

// NewUserService returns a UserService admitting emails that end with
// domain. An empty domain admits everyone.
func NewUserService(users *repositories.UserRepository, domain string) *UserService {
	return &UserService{users: users, domain: strings.ToLower(domain)}
}

// Allowed reports whether email carries the institutional domain.
func (s *UserService) Allowed(email string) bool {
	return s.domain == "" || strings.HasSuffix(strings.ToLower(email), s.domain)
}

// Admit rejects identities outside the institutional domain.
func (s *UserService) Admit(id identity.Identity) error {
	if !s.Allowed(id.Email) {
		return newError(ErrForbidden, fmt.Sprintf("Only %s email addresses are allowed", s.domain))
	}
	return nil
}

// EnsureUser checks the domain allow-list and creates the local record for
// id on first sight.
func (s *UserService) EnsureUser(ctx context.Context, id identity.Identity) (*models.User, error) {
	if err := s.Admit(id); err != nil {
		return nil, err
	}

	u, err := s.users.FindByIdentityID(ctx, id.ID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	u, err = s.users.FirstOrCreate(ctx, &models.User{IdentityID: id.ID, Email: id.Email, Name: id.Name})
	if err != nil {
		return nil, err
	}
	logger.WithCtx(ctx).Info("user registered", "user_id", u.ID)
	return u, nil
}

// Find returns the local record for identityID.
func (s *UserService) Find(ctx context.Context, identityID string) (*models.User, error) {
	u, err := s.users.FindByIdentityID(ctx, identityID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// UpdateProfile replaces the user's phone and hostel.
func (s *UserService) UpdateProfile(ctx context.Context, identityID, phone, hostel string) error {
	err := s.users.UpdateProfile(ctx, identityID, strings.TrimSpace(phone), strings.TrimSpace(hostel))
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
