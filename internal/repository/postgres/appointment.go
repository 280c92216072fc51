package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/model"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/repository"
)

const appointmentSelect = `
	SELECT a.id, a.appointment_number, a.patient_id, a.doctor_id,
		pu.name AS patient_name, du.name AS doctor_name,
		a.appointment_date, a.start_time, a.end_time, a.type, a.status, a.priority,
		a.reason, a.symptoms, a.notes, a.cancellation_reason, a.created_by,
		a.created_at, a.updated_at
	FROM appointments a
	JOIN patients p ON p.id = a.patient_id
	JOIN users pu ON pu.id = p.user_id
	JOIN doctors d ON d.id = a.doctor_id
	JOIN users du ON du.id = d.user_id`

// liveStatuses is the SQL form of AppointmentStatus.Holds
const liveStatuses = `a.status NOT IN ('Cancelled', 'Completed')`

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(base BaseRepository) repository.AppointmentRepository {
	return &appointmentRepository{base}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, appointment_number, patient_id, doctor_id, appointment_date,
			start_time, end_time, type, status, priority, reason, symptoms,
			notes, cancellation_reason, created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	appointment.Touch(time.Now())

	_, err := r.conn(ctx).ExecContext(ctx, query,
		appointment.ID,
		appointment.AppointmentNumber,
		appointment.PatientID,
		appointment.DoctorID,
		appointment.AppointmentDate,
		appointment.StartTime,
		appointment.EndTime,
		appointment.Type,
		appointment.Status,
		appointment.Priority,
		appointment.Reason,
		appointment.Symptoms,
		appointment.Notes,
		appointment.CancellationReason,
		appointment.CreatedBy,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", mapError(err))
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	var appointment model.Appointment
	if err := r.get(ctx, &appointment, appointmentSelect+` WHERE a.id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	var appointment model.Appointment
	if err := r.get(ctx, &appointment, appointmentSelect+` WHERE a.id = $1 FOR UPDATE OF a`, id); err != nil {
		return nil, fmt.Errorf("failed to lock appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments SET
			appointment_date = $1,
			start_time = $2,
			end_time = $3,
			type = $4,
			status = $5,
			priority = $6,
			reason = $7,
			symptoms = $8,
			notes = $9,
			cancellation_reason = $10,
			updated_at = $11
		WHERE id = $12
	`
	appointment.UpdatedAt = time.Now()

	err := r.exec(ctx, query,
		appointment.AppointmentDate,
		appointment.StartTime,
		appointment.EndTime,
		appointment.Type,
		appointment.Status,
		appointment.Priority,
		appointment.Reason,
		appointment.Symptoms,
		appointment.Notes,
		appointment.CancellationReason,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.exec(ctx, `DELETE FROM appointments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	return nil
}

func appointmentWhere(filter *model.AppointmentFilter) *where {
	w := &where{}
	if filter.PatientID != nil {
		w.add("a.patient_id = $%d", *filter.PatientID)
	}
	if filter.DoctorID != nil {
		w.add("a.doctor_id = $%d", *filter.DoctorID)
	}
	if filter.Status != "" {
		w.add("a.status = $%d", filter.Status)
	}
	if filter.Priority != "" {
		w.add("a.priority = $%d", filter.Priority)
	}
	if filter.Date != nil {
		w.add("a.appointment_date = $%d", *filter.Date)
	}
	if filter.From != nil {
		w.add("a.appointment_date >= $%d", *filter.From)
	}
	if filter.To != nil {
		w.add("a.appointment_date <= $%d", *filter.To)
	}
	if filter.Upcoming {
		w.raw(liveStatuses)
		w.raw("a.status <> 'No-Show'")
	}
	return w
}

func (r *appointmentRepository) List(ctx context.Context, filter *model.AppointmentFilter) ([]*model.Appointment, int, error) {
	w := appointmentWhere(filter)

	total, err := r.count(ctx, `SELECT COUNT(*) FROM appointments a`+w.String(), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count appointments: %w", err)
	}

	limit, args := w.page(filter.Limit(), filter.Offset())
	var appointments []*model.Appointment
	order := ` ORDER BY a.appointment_date, a.start_time`
	if filter.Recent {
		order = ` ORDER BY a.created_at DESC`
	}
	query := appointmentSelect + w.String() + order + limit
	if err := r.selectAll(ctx, &appointments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, total, nil
}

func (r *appointmentRepository) LockSlot(ctx context.Context, doctorID uuid.UUID, date model.Date, startTime string) error {
	key := fmt.Sprintf("appointment:%s:%s:%s", doctorID, date, startTime)
	if _, err := r.conn(ctx).ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return fmt.Errorf("failed to lock slot: %w", err)
	}
	return nil
}

func (r *appointmentRepository) HasConflict(ctx context.Context, doctorID uuid.UUID, date model.Date, startTime string, excludeID *uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM appointments a
			WHERE a.doctor_id = $1
			AND a.appointment_date = $2
			AND a.start_time = $3
			AND ` + liveStatuses + `
			AND ($4::uuid IS NULL OR a.id <> $4)
		)
	`
	var exists bool
	if err := r.get(ctx, &exists, query, doctorID, date, startTime, excludeID); err != nil {
		return false, fmt.Errorf("failed to check appointment conflicts: %w", err)
	}
	return exists, nil
}

func (r *appointmentRepository) BookedSlots(ctx context.Context, doctorID uuid.UUID, date model.Date) ([]model.TimeSlot, error) {
	query := `
		SELECT a.start_time, a.end_time FROM appointments a
		WHERE a.doctor_id = $1 AND a.appointment_date = $2 AND ` + liveStatuses + `
		ORDER BY a.start_time`

	var slots []model.TimeSlot
	if err := r.selectAll(ctx, &slots, query, doctorID, date); err != nil {
		return nil, fmt.Errorf("failed to list booked slots: %w", err)
	}
	return slots, nil
}

func (r *appointmentRepository) CountByStatus(ctx context.Context, filter *model.AppointmentFilter) ([]model.StatusCount, error) {
	w := appointmentWhere(filter)
	query := `SELECT a.status, COUNT(*) AS count FROM appointments a` + w.String() + ` GROUP BY a.status ORDER BY a.status`

	var counts []model.StatusCount
	if err := r.selectAll(ctx, &counts, query, w.args...); err != nil {
		return nil, fmt.Errorf("failed to count appointments by status: %w", err)
	}
	return counts, nil
}
