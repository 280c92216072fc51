package patient

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/model"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/repository"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/service"
	apperrors "github.com/keshav-rathi-0/Medilink-sub001/pkg/errors"
)

type Service struct {
	tx    repository.Transactor
	repo  repository.PatientRepository
	users repository.UserRepository
	now   func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewService(tx repository.Transactor, repo repository.PatientRepository, users repository.UserRepository) *Service {
	return &Service{
		tx:    tx,
		repo:  repo,
		users: users,
		now:   time.Now,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *Service) patientNumber() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.PatientNumber(s.now(), s.rnd)
}

func (s *Service) Create(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error) {
	user, err := s.users.Get(ctx, req.UserID)
	if err != nil {
		return nil, service.RepoError(err, "user")
	}
	if user.Role != model.RolePatient {
		return nil, apperrors.Validationf("user has role %s, expected %s", user.Role, model.RolePatient)
	}
	if _, err := s.repo.GetByUserID(ctx, user.ID); err == nil {
		return nil, apperrors.Conflict("patient profile already exists for this user")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, service.RepoError(err, "patient")
	}

	patient := &model.Patient{
		UserID:             user.ID,
		PatientNumber:      s.patientNumber(),
		Name:               user.Name,
		Email:              user.Email,
		DateOfBirth:        req.DateOfBirth,
		Gender:             req.Gender,
		BloodGroup:         req.BloodGroup,
		EmergencyContact:   req.EmergencyContact,
		MedicalHistory:     req.MedicalHistory,
		Allergies:          req.Allergies,
		CurrentMedications: req.CurrentMedications,
		InsuranceInfo:      req.InsuranceInfo,
	}
	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, service.RepoError(err, "patient")
	}

	log.Ctx(ctx).Info().Str("patient", patient.PatientNumber).Msg("patient registered")
	return patient, nil
}

func (s *Service) Get(ctx context.Context, caller model.UserRef, id uuid.UUID) (*model.Patient, error) {
	scope, err := service.PatientScope(ctx, s.repo, caller)
	if err != nil {
		return nil, err
	}
	if err := service.CheckOwner(scope, id, "patient"); err != nil {
		return nil, err
	}
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.RepoError(err, "patient")
	}
	return patient, nil
}

// GetMine returns the caller's own patient profile
func (s *Service) GetMine(ctx context.Context, caller model.UserRef) (*model.Patient, error) {
	patient, err := s.repo.GetByUserID(ctx, caller.ID)
	if err != nil {
		return nil, service.RepoError(err, "patient profile")
	}
	return patient, nil
}

func (s *Service) List(ctx context.Context, filter *model.PatientFilter) ([]*model.Patient, int, error) {
	filter.Normalize()
	patients, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, service.RepoError(err, "patient")
	}
	return patients, total, nil
}

// modify applies fn to the locked patient row of a caller-visible patient
func (s *Service) modify(ctx context.Context, caller model.UserRef, id uuid.UUID, fn func(p *model.Patient) error) (*model.Patient, error) {
	scope, err := service.PatientScope(ctx, s.repo, caller)
	if err != nil {
		return nil, err
	}
	if err := service.CheckOwner(scope, id, "patient"); err != nil {
		return nil, err
	}

	var patient *model.Patient
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		patient, err = s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(patient); err != nil {
			return err
		}
		return s.repo.Update(ctx, patient)
	})
	if err != nil {
		return nil, service.RepoError(err, "patient")
	}
	return patient, nil
}

func (s *Service) Update(ctx context.Context, caller model.UserRef, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	return s.modify(ctx, caller, id, func(p *model.Patient) error {
		if req.DateOfBirth != nil {
			if req.DateOfBirth.After(s.now()) {
				return apperrors.Validation("date of birth cannot be in the future")
			}
			p.DateOfBirth = req.DateOfBirth
		}
		if req.Gender != nil {
			p.Gender = req.Gender
		}
		if req.BloodGroup != nil {
			p.BloodGroup = req.BloodGroup
		}
		if req.EmergencyContact != nil {
			p.EmergencyContact = req.EmergencyContact
		}
		if req.Allergies != nil {
			p.Allergies = *req.Allergies
		}
		if req.CurrentMedications != nil {
			p.CurrentMedications = *req.CurrentMedications
		}
		if req.InsuranceInfo != nil {
			p.InsuranceInfo = req.InsuranceInfo
		}
		return nil
	})
}

func (s *Service) AddMedicalHistory(ctx context.Context, caller model.UserRef, id uuid.UUID, entry *model.MedicalHistoryEntry) (*model.Patient, error) {
	if entry.Status == "" {
		entry.Status = "Active"
	}
	return s.modify(ctx, caller, id, func(p *model.Patient) error {
		p.MedicalHistory = append(p.MedicalHistory, *entry)
		return nil
	})
}

func (s *Service) AddLabReport(ctx context.Context, caller model.UserRef, id uuid.UUID, report *model.LabReport) (*model.Patient, error) {
	if report.Date == nil {
		today := model.Today(s.now())
		report.Date = &today
	}
	return s.modify(ctx, caller, id, func(p *model.Patient) error {
		p.LabReports = append(p.LabReports, *report)
		return nil
	})
}

// Admissions lists the patient's ward stays, newest first
func (s *Service) Admissions(ctx context.Context, caller model.UserRef, id uuid.UUID) ([]model.Admission, error) {
	patient, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	out := make([]model.Admission, 0, len(patient.AdmissionHistory))
	for i := len(patient.AdmissionHistory) - 1; i >= 0; i-- {
		out = append(out, patient.AdmissionHistory[i])
	}
	return out, nil
}

// Delete removes a patient record. Patients still holding a bed are kept.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return service.RepoError(err, "patient")
	}
	if patient.CurrentAdmission() != nil {
		return apperrors.Conflict("patient is currently admitted; release the bed first")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return service.RepoError(err, "patient")
	}
	log.Ctx(ctx).Info().Str("patient", patient.PatientNumber).Msg("patient deleted")
	return nil
}
