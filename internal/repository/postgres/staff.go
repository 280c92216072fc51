package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/model"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/repository"
)

const staffSelect = `
	SELECT s.id, s.employee_id, s.user_id, u.name, u.email, u.role, s.designation,
		s.department, s.shift, s.salary, s.joining_date, s.qualifications,
		s.performance, s.is_active, s.created_at, s.updated_at
	FROM staff s
	JOIN users u ON u.id = s.user_id`

type staffRepository struct {
	BaseRepository
}

func NewStaffRepository(base BaseRepository) repository.StaffRepository {
	return &staffRepository{base}
}

func (r *staffRepository) Create(ctx context.Context, staff *model.Staff) error {
	query := `
		INSERT INTO staff (
			id, employee_id, user_id, designation, department, shift, salary,
			joining_date, qualifications, performance, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	staff.Touch(time.Now())

	_, err := r.conn(ctx).ExecContext(ctx, query,
		staff.ID,
		staff.EmployeeID,
		staff.UserID,
		staff.Designation,
		staff.Department,
		staff.Shift,
		staff.Salary,
		staff.JoiningDate,
		staff.Qualifications,
		staff.Performance,
		staff.IsActive,
		staff.CreatedAt,
		staff.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create staff: %w", mapError(err))
	}
	return nil
}

func (r *staffRepository) Get(ctx context.Context, id uuid.UUID) (*model.Staff, error) {
	var staff model.Staff
	if err := r.get(ctx, &staff, staffSelect+` WHERE s.id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get staff: %w", err)
	}
	return &staff, nil
}

func (r *staffRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Staff, error) {
	var staff model.Staff
	if err := r.get(ctx, &staff, staffSelect+` WHERE s.user_id = $1`, userID); err != nil {
		return nil, fmt.Errorf("failed to get staff by user: %w", err)
	}
	return &staff, nil
}

func (r *staffRepository) Update(ctx context.Context, staff *model.Staff) error {
	query := `
		UPDATE staff SET
			designation = $1,
			department = $2,
			shift = $3,
			salary = $4,
			qualifications = $5,
			performance = $6,
			is_active = $7,
			updated_at = $8
		WHERE id = $9
	`
	staff.UpdatedAt = time.Now()

	err := r.exec(ctx, query,
		staff.Designation,
		staff.Department,
		staff.Shift,
		staff.Salary,
		staff.Qualifications,
		staff.Performance,
		staff.IsActive,
		staff.UpdatedAt,
		staff.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update staff: %w", err)
	}
	return nil
}

func (r *staffRepository) List(ctx context.Context, filter *model.StaffFilter) ([]*model.Staff, int, error) {
	var w where
	if filter.Department != "" {
		w.add("s.department ILIKE $%d", filter.Department)
	}
	if filter.Designation != "" {
		w.add("s.designation ILIKE $%d", filter.Designation)
	}
	if filter.Shift != "" {
		w.add("s.shift = $%d", filter.Shift)
	}
	if filter.IsActive != nil {
		w.add("s.is_active = $%d", *filter.IsActive)
	}

	total, err := r.count(ctx, `SELECT COUNT(*) FROM staff s`+w.String(), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count staff: %w", err)
	}

	limit, args := w.page(filter.Limit(), filter.Offset())
	var staff []*model.Staff
	if err := r.selectAll(ctx, &staff, staffSelect+w.String()+` ORDER BY s.employee_id`+limit, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list staff: %w", err)
	}
	return staff, total, nil
}

func (r *staffRepository) CountActive(ctx context.Context) (int, error) {
	n, err := r.count(ctx, `SELECT COUNT(*) FROM staff WHERE is_active`)
	if err != nil {
		return 0, fmt.Errorf("failed to count staff: %w", err)
	}
	return n, nil
}
