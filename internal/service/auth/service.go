package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/email"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/model"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/repository"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/service"
	"github.com/keshav-rathi-0/Medilink-sub001/pkg/auth"
	apperrors "github.com/keshav-rathi-0/Medilink-sub001/pkg/errors"
	"github.com/keshav-rathi-0/Medilink-sub001/pkg/security"
)

const resetTokenExpiry = 10 * time.Minute

// same message for unknown email, wrong password and inactive account
const invalidCredentials = "invalid credentials"

type Service struct {
	userRepo repository.UserRepository
	jwtSvc   auth.JWTService
	hasher   security.PasswordHasher
	emailSvc email.Service
	now      func() time.Time
}

func NewService(userRepo repository.UserRepository, jwtSvc auth.JWTService,
	hasher security.PasswordHasher, emailSvc email.Service) *Service {
	return &Service{
		userRepo: userRepo,
		jwtSvc:   jwtSvc,
		hasher:   hasher,
		emailSvc: emailSvc,
		now:      time.Now,
	}
}

// Register creates an account and signs it in. Anonymous callers may only
// register patients; staff accounts need an admin caller.
func (s *Service) Register(ctx context.Context, caller *model.UserRef, req *model.RegisterRequest) (*model.AuthResponse, error) {
	if !req.Role.Valid() {
		return nil, apperrors.Validationf("invalid role %q", req.Role)
	}
	if req.Role != model.RolePatient && (caller == nil || caller.Role != model.RoleAdmin) {
		return nil, apperrors.Forbidden("only an admin can register "+string(req.Role)+" accounts",
			[]string{string(model.RoleAdmin)})
	}

	email := model.NormalizeEmail(req.Email)
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.Conflict("user already exists with this email")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, service.RepoError(err, "user")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooShort) {
			return nil, apperrors.Validation(err.Error())
		}
		return nil, apperrors.Internal(err)
	}

	user := &model.User{
		Name:         req.Name,
		Email:        email,
		PasswordHash: hash,
		Role:         req.Role,
		Phone:        req.Phone,
		Address:      req.Address,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, service.RepoError(err, "user")
	}

	log.Ctx(ctx).Info().Str("user_id", user.ID.String()).Str("role", string(user.Role)).Msg("user registered")
	return s.issue(user)
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, model.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Unauthorized(invalidCredentials)
		}
		return nil, service.RepoError(err, "user")
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, apperrors.Unauthorized(invalidCredentials)
	}
	if !user.IsActive {
		return nil, apperrors.Unauthorized(invalidCredentials)
	}

	now := s.now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, service.RepoError(err, "user")
	}

	return s.issue(user)
}

func (s *Service) ValidateToken(token string) (*model.TokenClaims, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, apperrors.Unauthorized("not authorized to access this route")
	}
	return claims, nil
}

func (s *Service) Logout(claims *model.TokenClaims) {
	s.jwtSvc.Revoke(claims)
}

func (s *Service) GetMe(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, service.RepoError(err, "user")
	}
	return user, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req *model.UpdateProfileRequest) (*model.User, error) {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, service.RepoError(err, "user")
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}
	if req.Address != nil {
		user.Address = req.Address
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, service.RepoError(err, "user")
	}
	return user, nil
}

// ForgotPassword mails a single-use reset token. Unknown addresses succeed
// silently so the endpoint cannot be used to probe for accounts.
func (s *Service) ForgotPassword(ctx context.Context, emailAddr string) error {
	user, err := s.userRepo.GetByEmail(ctx, model.NormalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return service.RepoError(err, "user")
	}

	raw, digest, err := security.NewResetToken()
	if err != nil {
		return apperrors.Internal(err)
	}
	expires := s.now().Add(resetTokenExpiry)
	user.ResetPasswordToken = &digest
	user.ResetPasswordExpire = &expires
	if err := s.userRepo.Update(ctx, user); err != nil {
		return service.RepoError(err, "user")
	}

	if err := s.emailSvc.SendPasswordReset(ctx, user.Email, user.Name, raw); err != nil {
		user.ClearResetToken()
		if updateErr := s.userRepo.Update(ctx, user); updateErr != nil {
			log.Ctx(ctx).Error().Err(updateErr).Msg("failed to clear reset token after mail failure")
		}
		return apperrors.Internal(fmt.Errorf("email could not be sent: %w", err))
	}
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, req *model.ResetPasswordRequest) (*model.AuthResponse, error) {
	user, err := s.userRepo.GetByResetToken(ctx, security.HashToken(req.Token), s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Validation("invalid or expired token")
		}
		return nil, service.RepoError(err, "user")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	user.PasswordHash = hash
	user.ClearResetToken()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, service.RepoError(err, "user")
	}

	return s.issue(user)
}

func (s *Service) UpdatePassword(ctx context.Context, userID uuid.UUID, req *model.UpdatePasswordRequest) (*model.AuthResponse, error) {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, service.RepoError(err, "user")
	}

	if err := s.hasher.Compare(user.PasswordHash, req.CurrentPassword); err != nil {
		return nil, apperrors.Unauthorized("password is incorrect")
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	user.PasswordHash = hash
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, service.RepoError(err, "user")
	}

	return s.issue(user)
}

func (s *Service) issue(user *model.User) (*model.AuthResponse, error) {
	token, expiresAt, err := s.jwtSvc.GenerateToken(user)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &model.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}
