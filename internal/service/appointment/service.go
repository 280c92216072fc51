package appointment

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/model"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/repository"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/service"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/service/event"
	apperrors "github.com/keshav-rathi-0/Medilink-sub001/pkg/errors"
	"github.com/keshav-rathi-0/Medilink-sub001/pkg/metrics"
)

const slotTaken = "Time slot not available"

type Service struct {
	tx       repository.Transactor
	repo     repository.AppointmentRepository
	patients repository.PatientRepository
	doctors  repository.DoctorRepository
	counters repository.CounterRepository
	events   *event.Service
	metrics  *metrics.Metrics
}

func NewService(tx repository.Transactor, repo repository.AppointmentRepository, patients repository.PatientRepository,
	doctors repository.DoctorRepository, counters repository.CounterRepository, events *event.Service, m *metrics.Metrics) *Service {
	return &Service{
		tx:       tx,
		repo:     repo,
		patients: patients,
		doctors:  doctors,
		counters: counters,
		events:   events,
		metrics:  m,
	}
}

func validateSlot(date model.Date, slot model.TimeSlot) error {
	if date.IsZero() {
		return apperrors.Validation("appointment date is required")
	}
	return slot.Validate()
}

// reserve takes the slot lock and fails when a live appointment already holds it.
// Must run inside a transaction.
func (s *Service) reserve(ctx context.Context, doctorID uuid.UUID, date model.Date, startTime string, exclude *uuid.UUID) error {
	if err := s.repo.LockSlot(ctx, doctorID, date, startTime); err != nil {
		return service.RepoError(err, "appointment")
	}
	taken, err := s.repo.HasConflict(ctx, doctorID, date, startTime, exclude)
	if err != nil {
		return service.RepoError(err, "appointment")
	}
	if taken {
		s.metrics.SlotConflicts.Inc()
		return apperrors.Conflict(slotTaken)
	}
	return nil
}

// slotError maps the live-slot unique index to the same conflict the check reports
func (s *Service) slotError(err error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		s.metrics.SlotConflicts.Inc()
		return apperrors.Conflict(slotTaken)
	}
	return service.RepoError(err, "appointment")
}

func (s *Service) Create(ctx context.Context, caller model.UserRef, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	if err := validateSlot(req.AppointmentDate, req.TimeSlot); err != nil {
		return nil, err
	}

	scope, err := service.PatientScope(ctx, s.patients, caller)
	if err != nil {
		return nil, err
	}
	if scope != nil && *scope != req.PatientID {
		return nil, apperrors.Forbidden("patients can only book appointments for themselves", nil)
	}

	if _, err := s.patients.Get(ctx, req.PatientID); err != nil {
		return nil, service.RepoError(err, "patient")
	}
	doctor, err := s.doctors.Get(ctx, req.DoctorID)
	if err != nil {
		return nil, service.RepoError(err, "doctor")
	}
	if !doctor.IsActive {
		return nil, apperrors.Conflict("doctor is not accepting appointments")
	}

	apt := &model.Appointment{
		PatientID:       req.PatientID,
		DoctorID:        req.DoctorID,
		DoctorName:      doctor.Name,
		AppointmentDate: req.AppointmentDate,
		TimeSlot:        req.TimeSlot,
		Type:            req.Type,
		Status:          model.AppointmentScheduled,
		Priority:        req.Priority,
		Reason:          req.Reason,
		Symptoms:        req.Symptoms,
		Notes:           req.Notes,
		CreatedBy:       &caller.ID,
	}
	if apt.Type == "" {
		apt.Type = model.AppointmentConsultation
	}
	if apt.Priority == "" {
		apt.Priority = model.PriorityNormal
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.reserve(ctx, apt.DoctorID, apt.AppointmentDate, apt.StartTime, nil); err != nil {
			return err
		}
		n, err := s.counters.Next(ctx, model.CounterAppointment)
		if err != nil {
			return service.RepoError(err, "appointment number")
		}
		apt.AppointmentNumber = model.AppointmentNumber(n)
		if err := s.repo.Create(ctx, apt); err != nil {
			return s.slotError(err)
		}
		return s.events.Emit(ctx, model.EventAppointmentCreated, apt.ID, apt)
	})
	if err != nil {
		return nil, service.RepoError(err, "appointment")
	}

	log.Ctx(ctx).Info().
		Str("appointment", apt.AppointmentNumber).
		Str("doctor_id", apt.DoctorID.String()).
		Str("date", apt.AppointmentDate.String()).
		Str("start", apt.StartTime).
		Msg("appointment booked")
	return apt, nil
}

func (s *Service) Get(ctx context.Context, caller model.UserRef, id uuid.UUID) (*model.Appointment, error) {
	scope, err := service.PatientScope(ctx, s.patients, caller)
	if err != nil {
		return nil, err
	}
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.RepoError(err, "appointment")
	}
	if err := service.CheckOwner(scope, apt.PatientID, "appointment"); err != nil {
		return nil, err
	}
	return apt, nil
}

func (s *Service) List(ctx context.Context, caller model.UserRef, filter *model.AppointmentFilter) ([]*model.Appointment, int, error) {
	scope, err := service.PatientScope(ctx, s.patients, caller)
	if err != nil {
		return nil, 0, err
	}
	if scope != nil {
		filter.PatientID = scope
	}
	filter.Normalize()

	appointments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, service.RepoError(err, "appointment")
	}
	return appointments, total, nil
}

// Update applies a partial patch. Moving the date or start time re-runs the
// slot check so a patch cannot double-book a doctor.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	var apt *model.Appointment
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		apt, err = s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return service.RepoError(err, "appointment")
		}
		wasHolding := apt.Status.Holds()
		oldDate, oldStart := apt.AppointmentDate, apt.StartTime

		if req.AppointmentDate != nil {
			apt.AppointmentDate = *req.AppointmentDate
		}
		if req.TimeSlot != nil {
			apt.TimeSlot = *req.TimeSlot
		}
		if req.Type != nil {
			apt.Type = *req.Type
		}
		if req.Priority != nil {
			apt.Priority = *req.Priority
		}
		if req.Status != nil {
			if !req.Status.Valid() {
				return apperrors.Validationf("invalid appointment status %q", *req.Status)
			}
			apt.Status = *req.Status
		}
		if req.Reason != nil {
			apt.Reason = *req.Reason
		}
		if req.Symptoms != nil {
			apt.Symptoms = *req.Symptoms
		}
		if req.Notes != nil {
			apt.Notes = *req.Notes
		}

		moved := !apt.AppointmentDate.Equal(oldDate.Time) || apt.StartTime != oldStart
		if moved {
			if err := validateSlot(apt.AppointmentDate, apt.TimeSlot); err != nil {
				return err
			}
		}
		if apt.Status.Holds() && (moved || !wasHolding) {
			if err := s.reserve(ctx, apt.DoctorID, apt.AppointmentDate, apt.StartTime, &apt.ID); err != nil {
				return err
			}
		}

		if err := s.repo.Update(ctx, apt); err != nil {
			return s.slotError(err)
		}
		return nil
	})
	if err != nil {
		return nil, service.RepoError(err, "appointment")
	}
	return apt, nil
}

func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, req *model.RescheduleAppointmentRequest) (*model.Appointment, error) {
	if err := validateSlot(req.AppointmentDate, req.TimeSlot); err != nil {
		return nil, err
	}

	var apt *model.Appointment
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		apt, err = s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return service.RepoError(err, "appointment")
		}
		if err := apt.CanReschedule(); err != nil {
			return err
		}
		if err := s.reserve(ctx, apt.DoctorID, req.AppointmentDate, req.TimeSlot.StartTime, &apt.ID); err != nil {
			return err
		}

		previous := struct {
			Date  model.Date `json:"previous_date"`
			Start string     `json:"previous_start_time"`
		}{apt.AppointmentDate, apt.StartTime}

		apt.AppointmentDate = req.AppointmentDate
		apt.TimeSlot = req.TimeSlot
		if err := s.repo.Update(ctx, apt); err != nil {
			return s.slotError(err)
		}
		return s.events.Emit(ctx, model.EventAppointmentRescheduled, apt.ID, map[string]interface{}{
			"appointment_number": apt.AppointmentNumber,
			"appointment_date":   apt.AppointmentDate,
			"start_time":         apt.StartTime,
			"previous":           previous,
		})
	})
	if err != nil {
		return nil, service.RepoError(err, "appointment")
	}
	return apt, nil
}

// Cancel is idempotent: cancelling again only refreshes the reason.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, reason string) (*model.Appointment, error) {
	var apt *model.Appointment
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		apt, err = s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return service.RepoError(err, "appointment")
		}
		apt.Cancel(reason)
		if err := s.repo.Update(ctx, apt); err != nil {
			return service.RepoError(err, "appointment")
		}
		return s.events.Emit(ctx, model.EventAppointmentCancelled, apt.ID, map[string]interface{}{
			"appointment_number": apt.AppointmentNumber,
			"reason":             reason,
		})
	})
	if err != nil {
		return nil, service.RepoError(err, "appointment")
	}
	return apt, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error) {
	return s.Update(ctx, id, &model.UpdateAppointmentRequest{Status: &status})
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return service.RepoError(err, "appointment")
	}
	return nil
}

// AvailableSlots lists the doctor's weekday slots that are open and not booked
func (s *Service) AvailableSlots(ctx context.Context, doctorID uuid.UUID, date model.Date) (*model.AvailableSlots, error) {
	if date.IsZero() {
		return nil, apperrors.Validation("date is required")
	}
	doctor, err := s.doctors.Get(ctx, doctorID)
	if err != nil {
		return nil, service.RepoError(err, "doctor")
	}
	booked, err := s.repo.BookedSlots(ctx, doctorID, date)
	if err != nil {
		return nil, service.RepoError(err, "appointment")
	}

	taken := make(map[string]bool, len(booked))
	for _, b := range booked {
		taken[b.StartTime] = true
	}

	day := date.Weekday()
	free := make([]model.TimeSlot, 0)
	for _, slot := range doctor.SlotsOn(day) {
		if slot.IsAvailable && !taken[slot.StartTime] {
			free = append(free, model.TimeSlot{StartTime: slot.StartTime, EndTime: slot.EndTime})
		}
	}

	return &model.AvailableSlots{
		DoctorID: doctorID,
		Date:     date,
		Day:      day,
		Slots:    free,
	}, nil
}
