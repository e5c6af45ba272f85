package user

import (
	"context"
	"errors"

	"coach_marketplace_backend/internal/common"
	"coach_marketplace_backend/internal/shared"

	"go.uber.org/zap"
)

// ServiceImplementation provides user lookups backed by the repository.
type ServiceImplementation struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new user service.
func NewService(repo Repository, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:   repo,
		logger: logger.Named("UserService"),
	}
}

var _ shared.Service = (*ServiceImplementation)(nil)

func (s *ServiceImplementation) GetUserByID(ctx context.Context, id uint) (*shared.User, error) {
	dbUser, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			s.logger.Error("Failed to load user", zap.Uint("userID", id), zap.Error(err))
		}
		return nil, err
	}
	return DBToShared(dbUser), nil
}

func (s *ServiceImplementation) GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*shared.User, error) {
	dbUser, err := s.repo.FindByFirebaseUID(ctx, firebaseUID)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			s.logger.Error("Failed to load user by Firebase UID", zap.String("firebaseUID", firebaseUID), zap.Error(err))
		}
		return nil, err
	}
	return DBToShared(dbUser), nil
}
