package ward

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/model"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/repository"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/service"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/service/event"
	apperrors "github.com/keshav-rathi-0/Medilink-sub001/pkg/errors"
	"github.com/keshav-rathi-0/Medilink-sub001/pkg/metrics"
)

// Service owns wards and their beds. Every bed change runs with the ward and
// bed rows locked so availableBeds always matches the beds themselves.
type Service struct {
	tx       repository.Transactor
	repo     repository.WardRepository
	patients repository.PatientRepository
	events   *event.Service
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewService(tx repository.Transactor, repo repository.WardRepository, patients repository.PatientRepository,
	events *event.Service, m *metrics.Metrics) *Service {
	return &Service{
		tx:       tx,
		repo:     repo,
		patients: patients,
		events:   events,
		metrics:  m,
		now:      time.Now,
	}
}

func (s *Service) Create(ctx context.Context, req *model.CreateWardRequest) (*model.Ward, error) {
	if req.TotalBeds < 1 {
		return nil, apperrors.Validation("total beds must be at least 1")
	}
	if req.TotalBeds > model.MaxWardBeds {
		return nil, apperrors.Validationf("total beds cannot exceed %d", model.MaxWardBeds)
	}

	ward := &model.Ward{
		WardNumber:    req.WardNumber,
		Name:          req.Name,
		Type:          req.Type,
		Floor:         req.Floor,
		ChargesPerDay: req.ChargesPerDay,
		NurseInCharge: req.NurseInCharge,
		IsActive:      true,
	}
	ward.Touch(s.now())
	ward.Beds = model.NewBeds(ward.ID, ward.WardNumber, req.TotalBeds)
	ward.Recount()

	if err := s.repo.Create(ctx, ward); err != nil {
		return nil, service.RepoError(err, "ward")
	}
	return ward, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Ward, error) {
	ward, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.RepoError(err, "ward")
	}
	return ward, nil
}

func (s *Service) List(ctx context.Context, filter *model.WardFilter) ([]*model.Ward, int, error) {
	filter.Normalize()
	wards, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, service.RepoError(err, "ward")
	}
	return wards, total, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateWardRequest) (*model.Ward, error) {
	var ward *model.Ward
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		ward, err = s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return service.RepoError(err, "ward")
		}

		if req.Name != nil {
			ward.Name = *req.Name
		}
		if req.Type != nil {
			ward.Type = *req.Type
		}
		if req.Floor != nil {
			ward.Floor = *req.Floor
		}
		if req.ChargesPerDay != nil {
			ward.ChargesPerDay = *req.ChargesPerDay
		}
		if req.NurseInCharge != nil {
			ward.NurseInCharge = req.NurseInCharge
		}
		if req.IsActive != nil {
			ward.IsActive = *req.IsActive
		}
		ward.Recount()

		return s.repo.Update(ctx, ward)
	})
	if err != nil {
		return nil, service.RepoError(err, "ward")
	}
	return ward, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		ward, err := s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return service.RepoError(err, "ward")
		}
		ward.Recount()
		if occupied := ward.OccupiedBeds(); occupied > 0 {
			return apperrors.Conflictf("cannot delete ward %s with %d occupied beds", ward.WardNumber, occupied)
		}
		return s.repo.Delete(ctx, id)
	})
	return service.RepoError(err, "ward")
}

// AllocateBed puts the patient in the lowest-numbered free bed and opens an
// admission on the patient record.
func (s *Service) AllocateBed(ctx context.Context, wardID uuid.UUID, req *model.AllocateBedRequest) (*model.BedAllocation, error) {
	now := s.now()
	admittedAt := now
	if req.AdmissionDate != nil {
		admittedAt = *req.AdmissionDate
	}
	if req.ExpectedDischargeDate != nil && req.ExpectedDischargeDate.Before(admittedAt) {
		return nil, apperrors.Validation("expected discharge date cannot be before admission")
	}

	var result *model.BedAllocation
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		ward, err := s.repo.GetForUpdate(ctx, wardID)
		if err != nil {
			return service.RepoError(err, "ward")
		}
		if !ward.IsActive {
			return apperrors.Conflictf("ward %s is not active", ward.WardNumber)
		}

		patient, err := s.patients.GetForUpdate(ctx, req.PatientID)
		if err != nil {
			return service.RepoError(err, "patient")
		}
		if current := patient.CurrentAdmission(); current != nil {
			return apperrors.Conflictf("patient is already admitted to bed %s", current.BedNumber)
		}

		bed, err := ward.AllocateBed(patient.ID, admittedAt, req.ExpectedDischargeDate)
		if err != nil {
			return err
		}
		if err := s.repo.UpdateBed(ctx, bed); err != nil {
			return service.RepoError(err, "bed")
		}
		if err := s.repo.Update(ctx, ward); err != nil {
			return service.RepoError(err, "ward")
		}

		admission := model.Admission{
			WardID:                ward.ID,
			WardNumber:            ward.WardNumber,
			BedNumber:             bed.BedNumber,
			AdmissionDate:         admittedAt,
			ExpectedDischargeDate: req.ExpectedDischargeDate,
		}
		patient.Admit(admission)
		if err := s.patients.Update(ctx, patient); err != nil {
			return service.RepoError(err, "patient")
		}

		result = &model.BedAllocation{Ward: ward, Bed: bed, Admission: admission}
		return s.events.Emit(ctx, model.EventBedAllocated, ward.ID, map[string]interface{}{
			"ward_number": ward.WardNumber,
			"bed_number":  bed.BedNumber,
			"patient_id":  patient.ID,
		})
	})
	if err != nil {
		return nil, service.RepoError(err, "ward")
	}

	s.metrics.BedOperations.WithLabelValues("allocate").Inc()
	log.Ctx(ctx).Info().
		Str("ward", result.Ward.WardNumber).
		Str("bed", result.Bed.BedNumber).
		Int("available_beds", result.Ward.AvailableBeds).
		Msg("bed allocated")
	return result, nil
}

// ReleaseBed frees the bed and closes the occupant's open admission
func (s *Service) ReleaseBed(ctx context.Context, wardID uuid.UUID, bedNumber string) (*model.Ward, error) {
	var ward *model.Ward
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		ward, err = s.repo.GetForUpdate(ctx, wardID)
		if err != nil {
			return service.RepoError(err, "ward")
		}

		bed, patientID, err := ward.ReleaseBed(bedNumber)
		if err != nil {
			return err
		}
		if err := s.repo.UpdateBed(ctx, bed); err != nil {
			return service.RepoError(err, "bed")
		}
		if err := s.repo.Update(ctx, ward); err != nil {
			return service.RepoError(err, "ward")
		}

		if patientID != uuid.Nil {
			if err := s.discharge(ctx, patientID); err != nil {
				return err
			}
		}

		return s.events.Emit(ctx, model.EventBedReleased, ward.ID, map[string]interface{}{
			"ward_number": ward.WardNumber,
			"bed_number":  bedNumber,
			"patient_id":  patientID,
		})
	})
	if err != nil {
		return nil, service.RepoError(err, "ward")
	}

	s.metrics.BedOperations.WithLabelValues("release").Inc()
	return ward, nil
}

func (s *Service) discharge(ctx context.Context, patientID uuid.UUID) error {
	patient, err := s.patients.GetForUpdate(ctx, patientID)
	if errors.Is(err, repository.ErrNotFound) {
		log.Ctx(ctx).Warn().Str("patient_id", patientID.String()).Msg("released bed of a patient that no longer exists")
		return nil
	}
	if err != nil {
		return service.RepoError(err, "patient")
	}
	if !patient.Discharge(s.now()) {
		return nil
	}
	return service.RepoError(s.patients.Update(ctx, patient), "patient")
}
