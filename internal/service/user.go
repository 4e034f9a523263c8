package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Brodino96/TasteTracker/internal/domain"
	"github.com/Brodino96/TasteTracker/internal/repository"
)

// UserService keeps the local copy of identity-platform profiles that
// reviews are displayed with.
type UserService struct {
	repo   repository.UserRepository
	logger *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(repo repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

// Remember records the profile carried by a verified token. Failures are
// logged and otherwise ignored.
func (s *UserService) Remember(ctx context.Context, id, email, displayName string) {
	if id == "" {
		return
	}
	profile := &domain.UserProfile{
		ID:          id,
		Email:       strings.TrimSpace(email),
		DisplayName: strings.TrimSpace(displayName),
	}
	if err := s.repo.Upsert(ctx, profile); err != nil {
		s.logger.WarnContext(ctx, "failed to record user profile",
			slog.String("user_id", id),
			slog.String("error", err.Error()),
		)
	}
}
