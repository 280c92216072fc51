package doctor

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/model"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/repository"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/service"
	apperrors "github.com/keshav-rathi-0/Medilink-sub001/pkg/errors"
)

type Service struct {
	repo  repository.DoctorRepository
	users repository.UserRepository
}

func NewService(repo repository.DoctorRepository, users repository.UserRepository) *Service {
	return &Service{repo: repo, users: users}
}

func validateAvailability(days []model.DayAvailability) error {
	seen := make(map[string]bool, len(days))
	for _, d := range days {
		if seen[d.Day] {
			return apperrors.Validationf("availability lists %s twice", d.Day)
		}
		seen[d.Day] = true
		for _, slot := range d.Slots {
			if err := (model.TimeSlot{StartTime: slot.StartTime, EndTime: slot.EndTime}).Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, req *model.CreateDoctorRequest) (*model.Doctor, error) {
	user, err := s.users.Get(ctx, req.UserID)
	if err != nil {
		return nil, service.RepoError(err, "user")
	}
	if user.Role != model.RoleDoctor {
		return nil, apperrors.Validationf("user has role %s, expected %s", user.Role, model.RoleDoctor)
	}
	if _, err := s.repo.GetByUserID(ctx, user.ID); err == nil {
		return nil, apperrors.Conflict("doctor profile already exists for this user")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, service.RepoError(err, "doctor")
	}
	if err := validateAvailability(req.Availability); err != nil {
		return nil, err
	}

	doctor := &model.Doctor{
		UserID:          user.ID,
		Name:            user.Name,
		Email:           user.Email,
		Specialization:  req.Specialization,
		Qualification:   req.Qualification,
		ExperienceYears: req.ExperienceYears,
		LicenseNumber:   req.LicenseNumber,
		ConsultationFee: req.ConsultationFee,
		Department:      req.Department,
		Availability:    req.Availability,
		IsActive:        true,
	}
	if err := s.repo.Create(ctx, doctor); err != nil {
		return nil, service.RepoError(err, "doctor with this license number")
	}
	return doctor, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	doctor, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.RepoError(err, "doctor")
	}
	return doctor, nil
}

// GetByUser returns the profile linked to a login, used for a doctor's own views
func (s *Service) GetByUser(ctx context.Context, userID uuid.UUID) (*model.Doctor, error) {
	doctor, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, service.RepoError(err, "doctor profile")
	}
	return doctor, nil
}

func (s *Service) List(ctx context.Context, filter *model.DoctorFilter) ([]*model.Doctor, int, error) {
	filter.Normalize()
	doctors, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, service.RepoError(err, "doctor")
	}
	return doctors, total, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateDoctorRequest) (*model.Doctor, error) {
	doctor, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.RepoError(err, "doctor")
	}

	if req.Specialization != nil {
		doctor.Specialization = *req.Specialization
	}
	if req.Qualification != nil {
		doctor.Qualification = *req.Qualification
	}
	if req.ExperienceYears != nil {
		doctor.ExperienceYears = *req.ExperienceYears
	}
	if req.ConsultationFee != nil {
		doctor.ConsultationFee = *req.ConsultationFee
	}
	if req.Department != nil {
		doctor.Department = *req.Department
	}
	if req.Rating != nil {
		doctor.Rating = *req.Rating
	}
	if req.IsActive != nil {
		doctor.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, doctor); err != nil {
		return nil, service.RepoError(err, "doctor")
	}
	return doctor, nil
}

// UpdateAvailability replaces the weekly schedule and on-call shifts
func (s *Service) UpdateAvailability(ctx context.Context, id uuid.UUID, req *model.UpdateAvailabilityRequest) (*model.Doctor, error) {
	if err := validateAvailability(req.Availability); err != nil {
		return nil, err
	}
	for _, shift := range req.OnCallShifts {
		if shift.Date.IsZero() {
			return nil, apperrors.Validation("on-call shift date is required")
		}
	}

	doctor, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.RepoError(err, "doctor")
	}
	doctor.Availability = req.Availability
	doctor.OnCallShifts = req.OnCallShifts

	if err := s.repo.Update(ctx, doctor); err != nil {
		return nil, service.RepoError(err, "doctor")
	}
	return doctor, nil
}

func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	inactive := false
	_, err := s.Update(ctx, id, &model.UpdateDoctorRequest{IsActive: &inactive})
	return err
}
