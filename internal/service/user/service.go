package user

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/model"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/repository"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/service"
	apperrors "github.com/keshav-rathi-0/Medilink-sub001/pkg/errors"
)

// Service is the administrative view over accounts. Users are never
// hard-deleted; deactivation blocks login.
type Service struct {
	repo repository.UserRepository
}

func NewService(repo repository.UserRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filter *model.UserFilter) ([]*model.User, int, error) {
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, 0, apperrors.Validationf("unknown role %q", filter.Role)
	}
	filter.Normalize()
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, service.RepoError(err, "user")
	}
	return users, total, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.RepoError(err, "user")
	}
	return user, nil
}

// Update changes profile fields, the role or the active flag. Admins cannot
// demote or deactivate themselves.
func (s *Service) Update(ctx context.Context, caller model.UserRef, id uuid.UUID, req *model.UpdateUserRequest) (*model.User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.RepoError(err, "user")
	}

	if req.Role != nil {
		if !req.Role.Valid() {
			return nil, apperrors.Validationf("unknown role %q", *req.Role)
		}
		if caller.ID == id && *req.Role != user.Role {
			return nil, apperrors.Conflict("you cannot change your own role")
		}
	}
	if req.IsActive != nil && !*req.IsActive && caller.ID == id {
		return nil, apperrors.Conflict("you cannot deactivate your own account")
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}
	if req.Address != nil {
		user.Address = req.Address
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, service.RepoError(err, "user")
	}

	log.Ctx(ctx).Info().
		Str("user", user.ID.String()).
		Str("role", string(user.Role)).
		Bool("active", user.IsActive).
		Msg("user updated")
	return user, nil
}

func (s *Service) Deactivate(ctx context.Context, caller model.UserRef, id uuid.UUID) error {
	inactive := false
	_, err := s.Update(ctx, caller, id, &model.UpdateUserRequest{IsActive: &inactive})
	return err
}
