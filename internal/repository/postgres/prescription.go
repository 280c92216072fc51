package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/model"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/repository"
)

const prescriptionSelect = `
	SELECT rx.id, rx.prescription_number, rx.patient_id, rx.doctor_id,
		pu.name AS patient_name, du.name AS doctor_name, rx.appointment_id,
		rx.diagnosis, rx.medicines, rx.status, rx.refills_allowed, rx.refills_used,
		rx.valid_until, rx.notes, rx.dispensed_by, rx.dispensed_at, rx.cancellation_reason,
		rx.created_at, rx.updated_at
	FROM prescriptions rx
	JOIN patients p ON p.id = rx.patient_id
	JOIN users pu ON pu.id = p.user_id
	JOIN doctors d ON d.id = rx.doctor_id
	JOIN users du ON du.id = d.user_id`

type prescriptionRepository struct {
	BaseRepository
}

func NewPrescriptionRepository(base BaseRepository) repository.PrescriptionRepository {
	return &prescriptionRepository{base}
}

func (r *prescriptionRepository) Create(ctx context.Context, rx *model.Prescription) error {
	query := `
		INSERT INTO prescriptions (
			id, prescription_number, patient_id, doctor_id, appointment_id, diagnosis,
			medicines, status, refills_allowed, refills_used, valid_until, notes,
			dispensed_by, dispensed_at, cancellation_reason, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	rx.Touch(time.Now())

	_, err := r.conn(ctx).ExecContext(ctx, query,
		rx.ID,
		rx.PrescriptionNumber,
		rx.PatientID,
		rx.DoctorID,
		rx.AppointmentID,
		rx.Diagnosis,
		rx.Medicines,
		rx.Status,
		rx.RefillsAllowed,
		rx.RefillsUsed,
		rx.ValidUntil,
		rx.Notes,
		rx.DispensedBy,
		rx.DispensedAt,
		rx.CancellationReason,
		rx.CreatedAt,
		rx.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create prescription: %w", mapError(err))
	}
	return nil
}

func (r *prescriptionRepository) Get(ctx context.Context, id uuid.UUID) (*model.Prescription, error) {
	var rx model.Prescription
	if err := r.get(ctx, &rx, prescriptionSelect+` WHERE rx.id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get prescription: %w", err)
	}
	return &rx, nil
}

func (r *prescriptionRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Prescription, error) {
	var rx model.Prescription
	if err := r.get(ctx, &rx, prescriptionSelect+` WHERE rx.id = $1 FOR UPDATE OF rx`, id); err != nil {
		return nil, fmt.Errorf("failed to lock prescription: %w", err)
	}
	return &rx, nil
}

func (r *prescriptionRepository) Update(ctx context.Context, rx *model.Prescription) error {
	query := `
		UPDATE prescriptions SET
			diagnosis = $1,
			medicines = $2,
			status = $3,
			refills_allowed = $4,
			refills_used = $5,
			valid_until = $6,
			notes = $7,
			dispensed_by = $8,
			dispensed_at = $9,
			cancellation_reason = $10,
			updated_at = $11
		WHERE id = $12
	`
	rx.UpdatedAt = time.Now()

	err := r.exec(ctx, query,
		rx.Diagnosis,
		rx.Medicines,
		rx.Status,
		rx.RefillsAllowed,
		rx.RefillsUsed,
		rx.ValidUntil,
		rx.Notes,
		rx.DispensedBy,
		rx.DispensedAt,
		rx.CancellationReason,
		rx.UpdatedAt,
		rx.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update prescription: %w", err)
	}
	return nil
}

func (r *prescriptionRepository) List(ctx context.Context, filter *model.PrescriptionFilter) ([]*model.Prescription, int, error) {
	var w where
	if filter.PatientID != nil {
		w.add("rx.patient_id = $%d", *filter.PatientID)
	}
	if filter.DoctorID != nil {
		w.add("rx.doctor_id = $%d", *filter.DoctorID)
	}
	if filter.Status != "" {
		w.add("rx.status = $%d", filter.Status)
	}

	total, err := r.count(ctx, `SELECT COUNT(*) FROM prescriptions rx`+w.String(), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count prescriptions: %w", err)
	}

	limit, args := w.page(filter.Limit(), filter.Offset())
	var prescriptions []*model.Prescription
	query := prescriptionSelect + w.String() + ` ORDER BY rx.created_at DESC` + limit
	if err := r.selectAll(ctx, &prescriptions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list prescriptions: %w", err)
	}
	return prescriptions, total, nil
}
