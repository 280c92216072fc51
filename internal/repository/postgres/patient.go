package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/model"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/repository"
)

const patientSelect = `
	SELECT p.id, p.user_id, p.patient_number, u.name, u.email, p.date_of_birth, p.gender,
		p.blood_group, p.emergency_contact, p.medical_history, p.allergies,
		p.current_medications, p.lab_reports, p.insurance_info, p.admission_history,
		p.created_at, p.updated_at
	FROM patients p
	JOIN users u ON u.id = p.user_id`

type patientRepository struct {
	BaseRepository
}

func NewPatientRepository(base BaseRepository) repository.PatientRepository {
	return &patientRepository{base}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (
			id, user_id, patient_number, date_of_birth, gender, blood_group,
			emergency_contact, medical_history, allergies, current_medications,
			lab_reports, insurance_info, admission_history, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	patient.Touch(time.Now())

	_, err := r.conn(ctx).ExecContext(ctx, query,
		patient.ID,
		patient.UserID,
		patient.PatientNumber,
		patient.DateOfBirth,
		patient.Gender,
		patient.BloodGroup,
		patient.EmergencyContact,
		patient.MedicalHistory,
		patient.Allergies,
		patient.CurrentMedications,
		patient.LabReports,
		patient.InsuranceInfo,
		patient.AdmissionHistory,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", mapError(err))
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	var patient model.Patient
	if err := r.get(ctx, &patient, patientSelect+` WHERE p.id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	var patient model.Patient
	if err := r.get(ctx, &patient, patientSelect+` WHERE p.id = $1 FOR UPDATE OF p`, id); err != nil {
		return nil, fmt.Errorf("failed to lock patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Patient, error) {
	var patient model.Patient
	if err := r.get(ctx, &patient, patientSelect+` WHERE p.user_id = $1`, userID); err != nil {
		return nil, fmt.Errorf("failed to get patient by user: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients SET
			date_of_birth = $1,
			gender = $2,
			blood_group = $3,
			emergency_contact = $4,
			medical_history = $5,
			allergies = $6,
			current_medications = $7,
			lab_reports = $8,
			insurance_info = $9,
			admission_history = $10,
			updated_at = $11
		WHERE id = $12
	`
	patient.UpdatedAt = time.Now()

	err := r.exec(ctx, query,
		patient.DateOfBirth,
		patient.Gender,
		patient.BloodGroup,
		patient.EmergencyContact,
		patient.MedicalHistory,
		patient.Allergies,
		patient.CurrentMedications,
		patient.LabReports,
		patient.InsuranceInfo,
		patient.AdmissionHistory,
		patient.UpdatedAt,
		patient.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.exec(ctx, `DELETE FROM patients WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	return nil
}

func (r *patientRepository) List(ctx context.Context, filter *model.PatientFilter) ([]*model.Patient, int, error) {
	var w where
	if filter.BloodGroup != "" {
		w.add("p.blood_group = $%d", filter.BloodGroup)
	}
	if filter.Search != "" {
		w.add("(u.name ILIKE $%[1]d OR u.email ILIKE $%[1]d OR p.patient_number ILIKE $%[1]d)", "%"+filter.Search+"%")
	}

	total, err := r.count(ctx, `SELECT COUNT(*) FROM patients p JOIN users u ON u.id = p.user_id`+w.String(), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count patients: %w", err)
	}

	limit, args := w.page(filter.Limit(), filter.Offset())
	var patients []*model.Patient
	if err := r.selectAll(ctx, &patients, patientSelect+w.String()+` ORDER BY p.created_at DESC`+limit, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, total, nil
}

func (r *patientRepository) Count(ctx context.Context) (int, error) {
	n, err := r.count(ctx, `SELECT COUNT(*) FROM patients`)
	if err != nil {
		return 0, fmt.Errorf("failed to count patients: %w", err)
	}
	return n, nil
}

func (r *patientRepository) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	n, err := r.count(ctx, `SELECT COUNT(*) FROM patients WHERE created_at >= $1`, since)
	if err != nil {
		return 0, fmt.Errorf("failed to count new patients: %w", err)
	}
	return n, nil
}
