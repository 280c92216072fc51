package prescription

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/model"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/repository"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/service"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/service/event"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/service/medicine"
	apperrors "github.com/keshav-rathi-0/Medilink-sub001/pkg/errors"
	"github.com/keshav-rathi-0/Medilink-sub001/pkg/metrics"
)

type Service struct {
	tx          repository.Transactor
	repo        repository.PrescriptionRepository
	patients    repository.PatientRepository
	doctors     repository.DoctorRepository
	medicines   repository.MedicineRepository
	counters    repository.CounterRepository
	medicineSvc *medicine.Service
	events      *event.Service
	metrics     *metrics.Metrics
	now         func() time.Time
}

type Deps struct {
	Tx          repository.Transactor
	Repo        repository.PrescriptionRepository
	Patients    repository.PatientRepository
	Doctors     repository.DoctorRepository
	Medicines   repository.MedicineRepository
	Counters    repository.CounterRepository
	MedicineSvc *medicine.Service
	Events      *event.Service
	Metrics     *metrics.Metrics
}

func NewService(d Deps) *Service {
	return &Service{
		tx:          d.Tx,
		repo:        d.Repo,
		patients:    d.Patients,
		doctors:     d.Doctors,
		medicines:   d.Medicines,
		counters:    d.Counters,
		medicineSvc: d.MedicineSvc,
		events:      d.Events,
		metrics:     d.Metrics,
		now:         time.Now,
	}
}

// checkLines resolves every line's medicine, fills in its name and verifies
// stock could cover the order. Nothing is decremented.
func (s *Service) checkLines(ctx context.Context, items []model.PrescriptionItem) error {
	rx := model.Prescription{Medicines: items}
	quantities := rx.Quantities()
	ids := model.SortedIDs(quantities)

	meds, err := s.medicines.GetMany(ctx, ids)
	if err != nil {
		return service.RepoError(err, "medicine")
	}
	byID := make(map[uuid.UUID]*model.Medicine, len(meds))
	for _, m := range meds {
		byID[m.ID] = m
	}

	for _, id := range ids {
		m, ok := byID[id]
		if !ok {
			return apperrors.NotFound("medicine " + id.String())
		}
		if err := m.CheckDispensable(quantities[id]); err != nil {
			return err
		}
	}
	for i := range items {
		items[i].MedicineName = byID[items[i].MedicineID].Name
	}
	return nil
}

func (s *Service) Create(ctx context.Context, req *model.CreatePrescriptionRequest) (*model.Prescription, error) {
	if len(req.Medicines) == 0 {
		return nil, apperrors.Validation("prescription must have at least one medicine")
	}
	patient, err := s.patients.Get(ctx, req.PatientID)
	if err != nil {
		return nil, service.RepoError(err, "patient")
	}
	doctor, err := s.doctors.Get(ctx, req.DoctorID)
	if err != nil {
		return nil, service.RepoError(err, "doctor")
	}

	items := append([]model.PrescriptionItem(nil), req.Medicines...)
	if err := s.checkLines(ctx, items); err != nil {
		return nil, err
	}

	now := s.now()
	validUntil := now.Add(model.DefaultPrescriptionValidity)
	if req.ValidUntil != nil {
		if !req.ValidUntil.After(now) {
			return nil, apperrors.Validation("valid until must be in the future")
		}
		validUntil = *req.ValidUntil
	}

	rx := &model.Prescription{
		PatientID:      patient.ID,
		DoctorID:       doctor.ID,
		PatientName:    patient.Name,
		DoctorName:     doctor.Name,
		AppointmentID:  req.AppointmentID,
		Diagnosis:      req.Diagnosis,
		Medicines:      items,
		Status:         model.PrescriptionPending,
		RefillsAllowed: req.RefillsAllowed,
		ValidUntil:     validUntil,
		Notes:          req.Notes,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		n, err := s.counters.Next(ctx, model.CounterPrescription)
		if err != nil {
			return service.RepoError(err, "prescription number")
		}
		rx.PrescriptionNumber = model.PrescriptionNumber(n)
		return s.repo.Create(ctx, rx)
	})
	if err != nil {
		return nil, service.RepoError(err, "prescription")
	}
	return rx, nil
}

func (s *Service) Get(ctx context.Context, caller model.UserRef, id uuid.UUID) (*model.Prescription, error) {
	scope, err := service.PatientScope(ctx, s.patients, caller)
	if err != nil {
		return nil, err
	}
	rx, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.RepoError(err, "prescription")
	}
	if err := service.CheckOwner(scope, rx.PatientID, "prescription"); err != nil {
		return nil, err
	}
	return rx, nil
}

func (s *Service) List(ctx context.Context, caller model.UserRef, filter *model.PrescriptionFilter) ([]*model.Prescription, int, error) {
	scope, err := service.PatientScope(ctx, s.patients, caller)
	if err != nil {
		return nil, 0, err
	}
	if scope != nil {
		filter.PatientID = scope
	}
	filter.Normalize()

	list, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, service.RepoError(err, "prescription")
	}
	return list, total, nil
}

// Update edits a prescription that has not been dispensed yet
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdatePrescriptionRequest) (*model.Prescription, error) {
	var rx *model.Prescription
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		rx, err = s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return service.RepoError(err, "prescription")
		}
		if rx.Status != model.PrescriptionPending {
			return apperrors.Conflictf("cannot update a prescription in status %s", rx.Status)
		}

		if req.Diagnosis != nil {
			rx.Diagnosis = *req.Diagnosis
		}
		if req.Medicines != nil {
			items := append([]model.PrescriptionItem(nil), (*req.Medicines)...)
			if len(items) == 0 {
				return apperrors.Validation("prescription must have at least one medicine")
			}
			if err := s.checkLines(ctx, items); err != nil {
				return err
			}
			rx.Medicines = items
		}
		if req.RefillsAllowed != nil {
			if *req.RefillsAllowed < rx.RefillsUsed {
				return apperrors.Validation("refills allowed cannot be below refills already used")
			}
			rx.RefillsAllowed = *req.RefillsAllowed
		}
		if req.ValidUntil != nil {
			rx.ValidUntil = *req.ValidUntil
		}
		if req.Notes != nil {
			rx.Notes = *req.Notes
		}
		return s.repo.Update(ctx, rx)
	})
	if err != nil {
		return nil, service.RepoError(err, "prescription")
	}
	return rx, nil
}

// dispense takes stock for every line or for none. Medicine rows are locked in
// id order and all checked before the first decrement.
func (s *Service) dispense(ctx context.Context, rx *model.Prescription) error {
	quantities := rx.Quantities()
	ids := rx.MedicineIDs()

	meds, err := s.medicines.ListForUpdate(ctx, ids)
	if err != nil {
		return service.RepoError(err, "medicine")
	}
	byID := make(map[uuid.UUID]*model.Medicine, len(meds))
	for _, m := range meds {
		byID[m.ID] = m
	}
	for _, id := range ids {
		m, ok := byID[id]
		if !ok {
			return apperrors.NotFound("medicine " + id.String())
		}
		if err := m.CheckDispensable(quantities[id]); err != nil {
			return err
		}
	}

	now := s.now()
	for _, id := range ids {
		m := byID[id]
		before := m.StockQuantity
		if err := m.Dispense(quantities[id], now); err != nil {
			return err
		}
		if err := s.medicines.Update(ctx, m); err != nil {
			return service.RepoError(err, "medicine")
		}
		if err := s.medicineSvc.CheckStockLow(ctx, m, before); err != nil {
			return err
		}
	}
	return nil
}

// UpdateStatus moves the prescription through its state machine. Entering a
// filled state dispenses every line.
func (s *Service) UpdateStatus(ctx context.Context, caller model.UserRef, id uuid.UUID, status model.PrescriptionStatus) (*model.Prescription, error) {
	if !status.Valid() {
		return nil, apperrors.Validationf("invalid prescription status %q", status)
	}

	var rx *model.Prescription
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		rx, err = s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return service.RepoError(err, "prescription")
		}
		if err := rx.Transition(status); err != nil {
			return err
		}
		if status.Dispenses() {
			if err := s.dispense(ctx, rx); err != nil {
				return err
			}
			rx.MarkDispensed(caller.ID, s.now())
		}
		if err := s.repo.Update(ctx, rx); err != nil {
			return service.RepoError(err, "prescription")
		}
		if status == model.PrescriptionFulfilled {
			return s.events.Emit(ctx, model.EventPrescriptionFulfilled, rx.ID, map[string]interface{}{
				"prescription_number": rx.PrescriptionNumber,
				"patient_id":          rx.PatientID,
			})
		}
		return nil
	})
	if err != nil {
		return nil, service.RepoError(err, "prescription")
	}

	if status.Dispenses() {
		s.metrics.PrescriptionsFill.WithLabelValues("fill").Inc()
	}
	return rx, nil
}

// Refill dispenses the prescription again. The last allowed refill closes it.
func (s *Service) Refill(ctx context.Context, caller model.UserRef, id uuid.UUID) (*model.Prescription, error) {
	var rx *model.Prescription
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		rx, err = s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return service.RepoError(err, "prescription")
		}
		now := s.now()
		if err := rx.CheckRefill(now); err != nil {
			return err
		}
		if err := s.dispense(ctx, rx); err != nil {
			return err
		}
		rx.RecordRefill()
		rx.MarkDispensed(caller.ID, now)
		if err := s.repo.Update(ctx, rx); err != nil {
			return service.RepoError(err, "prescription")
		}
		return s.events.Emit(ctx, model.EventPrescriptionRefilled, rx.ID, map[string]interface{}{
			"prescription_number": rx.PrescriptionNumber,
			"refills_used":        rx.RefillsUsed,
			"refills_allowed":     rx.RefillsAllowed,
		})
	})
	if err != nil {
		return nil, service.RepoError(err, "prescription")
	}

	s.metrics.PrescriptionsFill.WithLabelValues("refill").Inc()
	log.Ctx(ctx).Info().
		Str("prescription", rx.PrescriptionNumber).
		Int("refills_used", rx.RefillsUsed).
		Msg("prescription refilled")
	return rx, nil
}

func (s *Service) Cancel(ctx context.Context, id uuid.UUID, reason string) (*model.Prescription, error) {
	var rx *model.Prescription
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		rx, err = s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return service.RepoError(err, "prescription")
		}
		if rx.Status == model.PrescriptionCancelled {
			return nil
		}
		if err := rx.Cancel(reason); err != nil {
			return err
		}
		return s.repo.Update(ctx, rx)
	})
	if err != nil {
		return nil, service.RepoError(err, "prescription")
	}
	return rx, nil
}
