package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/model"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/repository"
)

const medicineColumns = `id, name, generic_name, category, manufacturer, description,
	stock_quantity, reorder_level, unit_price, expiry_date, batch_number, last_restocked,
	requires_prescription, is_active, created_at, updated_at`

type medicineRepository struct {
	BaseRepository
}

func NewMedicineRepository(base BaseRepository) repository.MedicineRepository {
	return &medicineRepository{base}
}

func (r *medicineRepository) Create(ctx context.Context, medicine *model.Medicine) error {
	query := `
		INSERT INTO medicines (` + medicineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	medicine.Touch(time.Now())

	_, err := r.conn(ctx).ExecContext(ctx, query,
		medicine.ID,
		medicine.Name,
		medicine.GenericName,
		medicine.Category,
		medicine.Manufacturer,
		medicine.Description,
		medicine.StockQuantity,
		medicine.ReorderLevel,
		medicine.UnitPrice,
		medicine.ExpiryDate,
		medicine.BatchNumber,
		medicine.LastRestocked,
		medicine.RequiresPrescription,
		medicine.IsActive,
		medicine.CreatedAt,
		medicine.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create medicine: %w", mapError(err))
	}
	return nil
}

func (r *medicineRepository) Get(ctx context.Context, id uuid.UUID) (*model.Medicine, error) {
	var medicine model.Medicine
	if err := r.get(ctx, &medicine, `SELECT `+medicineColumns+` FROM medicines WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get medicine: %w", err)
	}
	return &medicine, nil
}

func (r *medicineRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Medicine, error) {
	var medicine model.Medicine
	if err := r.get(ctx, &medicine, `SELECT `+medicineColumns+` FROM medicines WHERE id = $1 FOR UPDATE`, id); err != nil {
		return nil, fmt.Errorf("failed to lock medicine: %w", err)
	}
	return &medicine, nil
}

func (r *medicineRepository) ListForUpdate(ctx context.Context, ids []uuid.UUID) ([]*model.Medicine, error) {
	query := `SELECT ` + medicineColumns + ` FROM medicines WHERE id = ANY($1) ORDER BY id FOR UPDATE`

	var medicines []*model.Medicine
	if err := r.selectAll(ctx, &medicines, query, pq.Array(uuidStrings(ids))); err != nil {
		return nil, fmt.Errorf("failed to lock medicines: %w", err)
	}
	return medicines, nil
}

func (r *medicineRepository) GetMany(ctx context.Context, ids []uuid.UUID) ([]*model.Medicine, error) {
	query := `SELECT ` + medicineColumns + ` FROM medicines WHERE id = ANY($1) ORDER BY id`

	var medicines []*model.Medicine
	if err := r.selectAll(ctx, &medicines, query, pq.Array(uuidStrings(ids))); err != nil {
		return nil, fmt.Errorf("failed to get medicines: %w", err)
	}
	return medicines, nil
}

func (r *medicineRepository) Update(ctx context.Context, medicine *model.Medicine) error {
	query := `
		UPDATE medicines SET
			name = $1,
			generic_name = $2,
			category = $3,
			manufacturer = $4,
			description = $5,
			stock_quantity = $6,
			reorder_level = $7,
			unit_price = $8,
			expiry_date = $9,
			batch_number = $10,
			last_restocked = $11,
			requires_prescription = $12,
			is_active = $13,
			updated_at = $14
		WHERE id = $15
	`
	medicine.UpdatedAt = time.Now()

	err := r.exec(ctx, query,
		medicine.Name,
		medicine.GenericName,
		medicine.Category,
		medicine.Manufacturer,
		medicine.Description,
		medicine.StockQuantity,
		medicine.ReorderLevel,
		medicine.UnitPrice,
		medicine.ExpiryDate,
		medicine.BatchNumber,
		medicine.LastRestocked,
		medicine.RequiresPrescription,
		medicine.IsActive,
		medicine.UpdatedAt,
		medicine.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update medicine: %w", err)
	}
	return nil
}

func (r *medicineRepository) List(ctx context.Context, filter *model.MedicineFilter) ([]*model.Medicine, int, error) {
	var w where
	if filter.Category != "" {
		w.add("category = $%d", filter.Category)
	}
	if filter.IsActive != nil {
		w.add("is_active = $%d", *filter.IsActive)
	}
	if filter.Search != "" {
		w.add("(name ILIKE $%[1]d OR generic_name ILIKE $%[1]d)", "%"+filter.Search+"%")
	}

	total, err := r.count(ctx, `SELECT COUNT(*) FROM medicines`+w.String(), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count medicines: %w", err)
	}

	limit, args := w.page(filter.Limit(), filter.Offset())
	var medicines []*model.Medicine
	query := `SELECT ` + medicineColumns + ` FROM medicines` + w.String() + ` ORDER BY name` + limit
	if err := r.selectAll(ctx, &medicines, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list medicines: %w", err)
	}
	return medicines, total, nil
}

func (r *medicineRepository) LowStock(ctx context.Context, limit int) ([]*model.Medicine, error) {
	query := `SELECT ` + medicineColumns + ` FROM medicines
		WHERE is_active AND stock_quantity <= reorder_level
		ORDER BY stock_quantity ASC, name`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	var medicines []*model.Medicine
	if err := r.selectAll(ctx, &medicines, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list low stock medicines: %w", err)
	}
	return medicines, nil
}

func (r *medicineRepository) ExpiringBefore(ctx context.Context, today, before model.Date) ([]*model.Medicine, error) {
	query := `SELECT ` + medicineColumns + ` FROM medicines
		WHERE is_active AND expiry_date IS NOT NULL AND expiry_date >= $1 AND expiry_date <= $2
		ORDER BY expiry_date ASC`

	var medicines []*model.Medicine
	if err := r.selectAll(ctx, &medicines, query, today, before); err != nil {
		return nil, fmt.Errorf("failed to list expiring medicines: %w", err)
	}
	return medicines, nil
}

func (r *medicineRepository) Expired(ctx context.Context, today model.Date) ([]*model.Medicine, error) {
	query := `SELECT ` + medicineColumns + ` FROM medicines
		WHERE expiry_date < $1 AND stock_quantity > 0
		ORDER BY expiry_date ASC`

	var medicines []*model.Medicine
	if err := r.selectAll(ctx, &medicines, query, today); err != nil {
		return nil, fmt.Errorf("failed to list expired medicines: %w", err)
	}
	return medicines, nil
}

func (r *medicineRepository) CountActive(ctx context.Context) (int, error) {
	n, err := r.count(ctx, `SELECT COUNT(*) FROM medicines WHERE is_active`)
	if err != nil {
		return 0, fmt.Errorf("failed to count medicines: %w", err)
	}
	return n, nil
}

func (r *medicineRepository) Inventory(ctx context.Context, today, expiringBefore model.Date) (*model.InventoryReport, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE is_active) AS total_medicines,
			COALESCE(SUM(stock_quantity) FILTER (WHERE is_active), 0) AS stock_units,
			COALESCE(SUM(stock_quantity * unit_price) FILTER (WHERE is_active), 0) AS stock_value,
			COUNT(*) FILTER (WHERE is_active AND stock_quantity <= reorder_level) AS low_stock,
			COUNT(*) FILTER (WHERE is_active AND expiry_date >= $1 AND expiry_date <= $2) AS expiring_soon,
			COUNT(*) FILTER (WHERE expiry_date < $1 AND stock_quantity > 0) AS expired
		FROM medicines`

	var report model.InventoryReport
	if err := r.get(ctx, &report, query, today, expiringBefore); err != nil {
		return nil, fmt.Errorf("failed to summarize inventory: %w", err)
	}
	return &report, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
