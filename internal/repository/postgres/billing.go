package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/model"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/repository"
)

const billSelect = `
	SELECT b.id, b.bill_number, b.patient_id, u.name AS patient_name, b.appointment_id,
		b.items, b.subtotal, b.discount, b.tax, b.total_amount, b.amount_paid, b.balance,
		b.payment_status, b.payments, b.payment_method, b.insurance_claim, b.due_date,
		b.notes, b.created_at, b.updated_at
	FROM bills b
	JOIN patients p ON p.id = b.patient_id
	JOIN users u ON u.id = p.user_id`

type billingRepository struct {
	BaseRepository
}

func NewBillingRepository(base BaseRepository) repository.BillingRepository {
	return &billingRepository{base}
}

func (r *billingRepository) Create(ctx context.Context, bill *model.Bill) error {
	query := `
		INSERT INTO bills (
			id, bill_number, patient_id, appointment_id, items, subtotal, discount,
			tax, total_amount, amount_paid, balance, payment_status, payments,
			payment_method, insurance_claim, due_date, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`
	bill.Touch(time.Now())

	_, err := r.conn(ctx).ExecContext(ctx, query,
		bill.ID,
		bill.BillNumber,
		bill.PatientID,
		bill.AppointmentID,
		bill.Items,
		bill.Subtotal,
		bill.Discount,
		bill.Tax,
		bill.TotalAmount,
		bill.AmountPaid,
		bill.Balance,
		bill.PaymentStatus,
		bill.Payments,
		bill.PaymentMethod,
		bill.InsuranceClaim,
		bill.DueDate,
		bill.Notes,
		bill.CreatedAt,
		bill.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create bill: %w", mapError(err))
	}
	return nil
}

func (r *billingRepository) Get(ctx context.Context, id uuid.UUID) (*model.Bill, error) {
	var bill model.Bill
	if err := r.get(ctx, &bill, billSelect+` WHERE b.id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	return &bill, nil
}

func (r *billingRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Bill, error) {
	var bill model.Bill
	if err := r.get(ctx, &bill, billSelect+` WHERE b.id = $1 FOR UPDATE OF b`, id); err != nil {
		return nil, fmt.Errorf("failed to lock bill: %w", err)
	}
	return &bill, nil
}

func (r *billingRepository) Update(ctx context.Context, bill *model.Bill) error {
	query := `
		UPDATE bills SET
			items = $1,
			subtotal = $2,
			discount = $3,
			tax = $4,
			total_amount = $5,
			amount_paid = $6,
			balance = $7,
			payment_status = $8,
			payments = $9,
			payment_method = $10,
			insurance_claim = $11,
			due_date = $12,
			notes = $13,
			updated_at = $14
		WHERE id = $15
	`
	bill.UpdatedAt = time.Now()

	err := r.exec(ctx, query,
		bill.Items,
		bill.Subtotal,
		bill.Discount,
		bill.Tax,
		bill.TotalAmount,
		bill.AmountPaid,
		bill.Balance,
		bill.PaymentStatus,
		bill.Payments,
		bill.PaymentMethod,
		bill.InsuranceClaim,
		bill.DueDate,
		bill.Notes,
		bill.UpdatedAt,
		bill.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	return nil
}

func (r *billingRepository) List(ctx context.Context, filter *model.BillFilter) ([]*model.Bill, int, error) {
	var w where
	if filter.PatientID != nil {
		w.add("b.patient_id = $%d", *filter.PatientID)
	}
	if filter.PaymentStatus != "" {
		w.add("b.payment_status = $%d", filter.PaymentStatus)
	}
	if filter.From != nil {
		w.add("b.created_at >= $%d", filter.From.Time)
	}
	if filter.To != nil {
		w.add("b.created_at < $%d", filter.To.AddDate(0, 0, 1))
	}

	total, err := r.count(ctx, `SELECT COUNT(*) FROM bills b`+w.String(), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count bills: %w", err)
	}

	limit, args := w.page(filter.Limit(), filter.Offset())
	var bills []*model.Bill
	query := billSelect + w.String() + ` ORDER BY b.created_at DESC` + limit
	if err := r.selectAll(ctx, &bills, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list bills: %w", err)
	}
	return bills, total, nil
}

func (r *billingRepository) Outstanding(ctx context.Context, patientID *uuid.UUID) (*model.OutstandingBills, error) {
	query := `
		SELECT COUNT(*) AS count, COALESCE(SUM(balance), 0) AS balance
		FROM bills
		WHERE payment_status IN ('Unpaid', 'Partially-Paid')
		AND ($1::uuid IS NULL OR patient_id = $1)`

	var out model.OutstandingBills
	if err := r.get(ctx, &out, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to sum outstanding bills: %w", err)
	}
	return &out, nil
}

func (r *billingRepository) CollectedSince(ctx context.Context, since time.Time) (model.Money, error) {
	var collected model.Money
	err := r.get(ctx, &collected,
		`SELECT COALESCE(SUM(amount_paid), 0) FROM bills WHERE created_at >= $1`, since)
	if err != nil {
		return 0, fmt.Errorf("failed to sum collected revenue: %w", err)
	}
	return collected, nil
}

func (r *billingRepository) Revenue(ctx context.Context, from, to model.Date) ([]model.RevenueRow, error) {
	query := `
		SELECT payment_status,
			COUNT(*) AS bills,
			COALESCE(SUM(total_amount), 0) AS billed,
			COALESCE(SUM(amount_paid), 0) AS collected,
			COALESCE(SUM(balance), 0) AS outstanding
		FROM bills
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY payment_status
		ORDER BY payment_status`

	var rows []model.RevenueRow
	if err := r.selectAll(ctx, &rows, query, from.Time, to.AddDate(0, 0, 1)); err != nil {
		return nil, fmt.Errorf("failed to summarize revenue: %w", err)
	}
	return rows, nil
}
