package staff

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/model"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/repository"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/service"
	apperrors "github.com/keshav-rathi-0/Medilink-sub001/pkg/errors"
)

type Service struct {
	tx       repository.Transactor
	repo     repository.StaffRepository
	users    repository.UserRepository
	counters repository.CounterRepository
	now      func() time.Time
}

func NewService(tx repository.Transactor, repo repository.StaffRepository, users repository.UserRepository, counters repository.CounterRepository) *Service {
	return &Service{tx: tx, repo: repo, users: users, counters: counters, now: time.Now}
}

// Create links an employee record to a non-patient user and assigns the next EMP id
func (s *Service) Create(ctx context.Context, req *model.CreateStaffRequest) (*model.Staff, error) {
	user, err := s.users.Get(ctx, req.UserID)
	if err != nil {
		return nil, service.RepoError(err, "user")
	}
	if user.Role == model.RolePatient {
		return nil, apperrors.Validation("patients cannot be registered as staff")
	}
	if _, err := s.repo.GetByUserID(ctx, user.ID); err == nil {
		return nil, apperrors.Conflict("staff record already exists for this user")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, service.RepoError(err, "staff")
	}

	member := &model.Staff{
		UserID:         user.ID,
		Name:           user.Name,
		Email:          user.Email,
		Role:           user.Role,
		Designation:    req.Designation,
		Department:     req.Department,
		Shift:          req.Shift,
		Salary:         req.Salary,
		JoiningDate:    model.Today(s.now()),
		Qualifications: req.Qualifications,
		IsActive:       true,
	}
	if member.Shift == "" {
		member.Shift = model.ShiftMorning
	}
	if req.JoiningDate != nil {
		member.JoiningDate = *req.JoiningDate
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		n, err := s.counters.Next(ctx, model.CounterStaff)
		if err != nil {
			return err
		}
		member.EmployeeID = model.EmployeeID(n)
		return s.repo.Create(ctx, member)
	})
	if err != nil {
		return nil, service.RepoError(err, "staff")
	}

	log.Ctx(ctx).Info().Str("employee", member.EmployeeID).Str("department", member.Department).Msg("staff member added")
	return member, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Staff, error) {
	member, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.RepoError(err, "staff")
	}
	return member, nil
}

func (s *Service) List(ctx context.Context, filter *model.StaffFilter) ([]*model.Staff, int, error) {
	filter.Normalize()
	members, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, service.RepoError(err, "staff")
	}
	return members, total, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateStaffRequest) (*model.Staff, error) {
	member, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.RepoError(err, "staff")
	}

	if req.Designation != nil {
		member.Designation = *req.Designation
	}
	if req.Department != nil {
		member.Department = *req.Department
	}
	if req.Shift != nil {
		member.Shift = *req.Shift
	}
	if req.Salary != nil {
		member.Salary = *req.Salary
	}
	if req.Qualifications != nil {
		member.Qualifications = *req.Qualifications
	}
	if req.IsActive != nil {
		member.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, member); err != nil {
		return nil, service.RepoError(err, "staff")
	}
	return member, nil
}

// ReviewPerformance records a rating and stamps the review date
func (s *Service) ReviewPerformance(ctx context.Context, id uuid.UUID, req *model.PerformanceReviewRequest) (*model.Staff, error) {
	if req.Rating < 0 || req.Rating > 5 {
		return nil, apperrors.Validation("rating must be between 0 and 5")
	}
	member, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.RepoError(err, "staff")
	}

	today := model.Today(s.now())
	member.Performance = model.Performance{
		Rating:         req.Rating,
		LastReviewDate: &today,
		Notes:          req.Notes,
	}
	if err := s.repo.Update(ctx, member); err != nil {
		return nil, service.RepoError(err, "staff")
	}
	return member, nil
}

func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	inactive := false
	_, err := s.Update(ctx, id, &model.UpdateStaffRequest{IsActive: &inactive})
	return err
}
