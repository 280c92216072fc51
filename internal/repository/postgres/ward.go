package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/model"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/repository"
)

const (
	wardColumns = `id, ward_number, name, type, floor, charges_per_day, nurse_in_charge,
	total_beds, available_beds, is_active, created_at, updated_at`
	bedColumns = `ward_id, bed_number, is_occupied, patient_id, admission_date, expected_discharge_date`
)

type wardRepository struct {
	BaseRepository
}

func NewWardRepository(base BaseRepository) repository.WardRepository {
	return &wardRepository{base}
}

func (r *wardRepository) Create(ctx context.Context, ward *model.Ward) error {
	ward.Touch(time.Now())
	for _, b := range ward.Beds {
		b.WardID = ward.ID
	}
	ward.Recount()

	return r.WithinTx(ctx, func(ctx context.Context) error {
		query := `
			INSERT INTO wards (` + wardColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`
		_, err := r.conn(ctx).ExecContext(ctx, query,
			ward.ID,
			ward.WardNumber,
			ward.Name,
			ward.Type,
			ward.Floor,
			ward.ChargesPerDay,
			ward.NurseInCharge,
			ward.TotalBeds,
			ward.AvailableBeds,
			ward.IsActive,
			ward.CreatedAt,
			ward.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create ward: %w", mapError(err))
		}

		if len(ward.Beds) == 0 {
			return nil
		}
		_, err = sqlx.NamedExecContext(ctx, r.conn(ctx),
			`INSERT INTO beds (`+bedColumns+`)
			VALUES (:ward_id, :bed_number, :is_occupied, :patient_id, :admission_date, :expected_discharge_date)`,
			ward.Beds,
		)
		if err != nil {
			return fmt.Errorf("failed to create beds: %w", mapError(err))
		}
		return nil
	})
}

func (r *wardRepository) Get(ctx context.Context, id uuid.UUID) (*model.Ward, error) {
	var ward model.Ward
	if err := r.get(ctx, &ward, `SELECT `+wardColumns+` FROM wards WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get ward: %w", err)
	}
	if err := r.selectAll(ctx, &ward.Beds,
		`SELECT `+bedColumns+` FROM beds WHERE ward_id = $1 ORDER BY length(bed_number), bed_number`, id); err != nil {
		return nil, fmt.Errorf("failed to get beds: %w", err)
	}
	return &ward, nil
}

func (r *wardRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Ward, error) {
	var ward model.Ward
	if err := r.get(ctx, &ward, `SELECT `+wardColumns+` FROM wards WHERE id = $1 FOR UPDATE`, id); err != nil {
		return nil, fmt.Errorf("failed to lock ward: %w", err)
	}
	if err := r.selectAll(ctx, &ward.Beds,
		`SELECT `+bedColumns+` FROM beds WHERE ward_id = $1 ORDER BY length(bed_number), bed_number FOR UPDATE`, id); err != nil {
		return nil, fmt.Errorf("failed to lock beds: %w", err)
	}
	return &ward, nil
}

func (r *wardRepository) Update(ctx context.Context, ward *model.Ward) error {
	query := `
		UPDATE wards SET
			name = $1,
			type = $2,
			floor = $3,
			charges_per_day = $4,
			nurse_in_charge = $5,
			total_beds = $6,
			available_beds = $7,
			is_active = $8,
			updated_at = $9
		WHERE id = $10
	`
	ward.UpdatedAt = time.Now()

	err := r.exec(ctx, query,
		ward.Name,
		ward.Type,
		ward.Floor,
		ward.ChargesPerDay,
		ward.NurseInCharge,
		ward.TotalBeds,
		ward.AvailableBeds,
		ward.IsActive,
		ward.UpdatedAt,
		ward.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update ward: %w", err)
	}
	return nil
}

func (r *wardRepository) UpdateBed(ctx context.Context, bed *model.Bed) error {
	query := `
		UPDATE beds SET
			is_occupied = $1,
			patient_id = $2,
			admission_date = $3,
			expected_discharge_date = $4
		WHERE ward_id = $5 AND bed_number = $6
	`
	err := r.exec(ctx, query,
		bed.IsOccupied,
		bed.PatientID,
		bed.AdmissionDate,
		bed.ExpectedDischargeDate,
		bed.WardID,
		bed.BedNumber,
	)
	if err != nil {
		return fmt.Errorf("failed to update bed: %w", err)
	}
	return nil
}

func (r *wardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.exec(ctx, `DELETE FROM wards WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete ward: %w", err)
	}
	return nil
}

func (r *wardRepository) List(ctx context.Context, filter *model.WardFilter) ([]*model.Ward, int, error) {
	var w where
	if filter.Type != "" {
		w.add("type = $%d", filter.Type)
	}
	if filter.Floor != nil {
		w.add("floor = $%d", *filter.Floor)
	}
	if filter.HasAvailable {
		w.raw("available_beds > 0")
	}

	total, err := r.count(ctx, `SELECT COUNT(*) FROM wards`+w.String(), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count wards: %w", err)
	}

	limit, args := w.page(filter.Limit(), filter.Offset())
	var wards []*model.Ward
	query := `SELECT ` + wardColumns + ` FROM wards` + w.String() + ` ORDER BY ward_number` + limit
	if err := r.selectAll(ctx, &wards, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list wards: %w", err)
	}
	if err := r.attachBeds(ctx, wards); err != nil {
		return nil, 0, err
	}
	return wards, total, nil
}

// attachBeds loads the beds of all wards in one query
func (r *wardRepository) attachBeds(ctx context.Context, wards []*model.Ward) error {
	if len(wards) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(wards))
	byID := make(map[uuid.UUID]*model.Ward, len(wards))
	for i, w := range wards {
		ids[i] = w.ID
		byID[w.ID] = w
		w.Beds = []*model.Bed{}
	}

	var beds []*model.Bed
	query := `SELECT ` + bedColumns + ` FROM beds WHERE ward_id = ANY($1) ORDER BY ward_id, length(bed_number), bed_number`
	if err := r.selectAll(ctx, &beds, query, pq.Array(uuidStrings(ids))); err != nil {
		return fmt.Errorf("failed to list beds: %w", err)
	}
	for _, b := range beds {
		if w, ok := byID[b.WardID]; ok {
			w.Beds = append(w.Beds, b)
		}
	}
	return nil
}

func (r *wardRepository) BedStats(ctx context.Context) (*model.BedStats, error) {
	query := `
		SELECT
			COALESCE(SUM(total_beds), 0) AS total_beds,
			COALESCE(SUM(available_beds), 0) AS available_beds,
			COALESCE(SUM(total_beds - available_beds), 0) AS occupied_beds
		FROM wards
		WHERE is_active`

	var stats model.BedStats
	if err := r.get(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("failed to get bed stats: %w", err)
	}
	return &stats, nil
}

func (r *wardRepository) Occupancy(ctx context.Context) ([]model.WardOccupancy, error) {
	query := `
		SELECT id, ward_number, name, type, total_beds, available_beds
		FROM wards
		WHERE is_active
		ORDER BY ward_number`

	var rows []model.WardOccupancy
	if err := r.selectAll(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to get ward occupancy: %w", err)
	}
	return rows, nil
}
