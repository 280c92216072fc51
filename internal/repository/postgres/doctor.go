package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/model"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/repository"
)

const doctorSelect = `
	SELECT d.id, d.user_id, u.name, u.email, d.specialization, d.qualification,
		d.experience_years, d.license_number, d.consultation_fee, d.department,
		d.availability, d.on_call_shifts, d.rating, d.is_active, d.created_at, d.updated_at
	FROM doctors d
	JOIN users u ON u.id = d.user_id`

type doctorRepository struct {
	BaseRepository
}

func NewDoctorRepository(base BaseRepository) repository.DoctorRepository {
	return &doctorRepository{base}
}

func (r *doctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	query := `
		INSERT INTO doctors (
			id, user_id, specialization, qualification, experience_years,
			license_number, consultation_fee, department, availability,
			on_call_shifts, rating, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	doctor.Touch(time.Now())

	_, err := r.conn(ctx).ExecContext(ctx, query,
		doctor.ID,
		doctor.UserID,
		doctor.Specialization,
		doctor.Qualification,
		doctor.ExperienceYears,
		doctor.LicenseNumber,
		doctor.ConsultationFee,
		doctor.Department,
		doctor.Availability,
		doctor.OnCallShifts,
		doctor.Rating,
		doctor.IsActive,
		doctor.CreatedAt,
		doctor.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create doctor: %w", mapError(err))
	}
	return nil
}

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	var doctor model.Doctor
	if err := r.get(ctx, &doctor, doctorSelect+` WHERE d.id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Doctor, error) {
	var doctor model.Doctor
	if err := r.get(ctx, &doctor, doctorSelect+` WHERE d.user_id = $1`, userID); err != nil {
		return nil, fmt.Errorf("failed to get doctor by user: %w", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) Update(ctx context.Context, doctor *model.Doctor) error {
	query := `
		UPDATE doctors SET
			specialization = $1,
			qualification = $2,
			experience_years = $3,
			consultation_fee = $4,
			department = $5,
			availability = $6,
			on_call_shifts = $7,
			rating = $8,
			is_active = $9,
			updated_at = $10
		WHERE id = $11
	`
	doctor.UpdatedAt = time.Now()

	err := r.exec(ctx, query,
		doctor.Specialization,
		doctor.Qualification,
		doctor.ExperienceYears,
		doctor.ConsultationFee,
		doctor.Department,
		doctor.Availability,
		doctor.OnCallShifts,
		doctor.Rating,
		doctor.IsActive,
		doctor.UpdatedAt,
		doctor.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update doctor: %w", err)
	}
	return nil
}

func (r *doctorRepository) List(ctx context.Context, filter *model.DoctorFilter) ([]*model.Doctor, int, error) {
	var w where
	if filter.Specialization != "" {
		w.add("d.specialization ILIKE $%d", filter.Specialization)
	}
	if filter.Department != "" {
		w.add("d.department ILIKE $%d", filter.Department)
	}
	if filter.IsActive != nil {
		w.add("d.is_active = $%d", *filter.IsActive)
	}
	if filter.Search != "" {
		w.add("(u.name ILIKE $%[1]d OR d.specialization ILIKE $%[1]d)", "%"+filter.Search+"%")
	}

	total, err := r.count(ctx, `SELECT COUNT(*) FROM doctors d JOIN users u ON u.id = d.user_id`+w.String(), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count doctors: %w", err)
	}

	limit, args := w.page(filter.Limit(), filter.Offset())
	var doctors []*model.Doctor
	if err := r.selectAll(ctx, &doctors, doctorSelect+w.String()+` ORDER BY u.name`+limit, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, total, nil
}

func (r *doctorRepository) CountActive(ctx context.Context) (int, error) {
	n, err := r.count(ctx, `SELECT COUNT(*) FROM doctors WHERE is_active`)
	if err != nil {
		return 0, fmt.Errorf("failed to count doctors: %w", err)
	}
	return n, nil
}
