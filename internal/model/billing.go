package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/keshav-rathi-0/Medilink-sub001/pkg/errors"
)

type PaymentStatus string

const (
	PaymentUnpaid        PaymentStatus = "Unpaid"
	PaymentPartiallyPaid PaymentStatus = "Partially-Paid"
	PaymentPaid          PaymentStatus = "Paid"
	PaymentRefunded      PaymentStatus = "Refunded"
)

type ClaimStatus string

const (
	ClaimPending           ClaimStatus = "Pending"
	ClaimApproved          ClaimStatus = "Approved"
	ClaimPartiallyApproved ClaimStatus = "Partially-Approved"
	ClaimRejected          ClaimStatus = "Rejected"
)

const PaymentMethodInsurance = "Insurance"

type BillItem struct {
	Description string `json:"description" binding:"required"`
	Category    string `json:"category"`
	UnitPrice   Money  `json:"unit_price" binding:"gte=0"`
	Quantity    int    `json:"quantity" binding:"gt=0"`
	Amount      Money  `json:"amount"`
}

type Payment struct {
	Amount    Money     `json:"amount"`
	Method    string    `json:"method"`
	Reference string    `json:"reference,omitempty"`
	PaidAt    time.Time `json:"paid_at"`
}

type InsuranceClaim struct {
	ClaimNumber    string      `json:"claim_number"`
	Provider       string      `json:"provider"`
	AmountClaimed  Money       `json:"amount_claimed"`
	ApprovedAmount *Money      `json:"approved_amount,omitempty"`
	Status         ClaimStatus `json:"status"`
	SubmittedAt    time.Time   `json:"submitted_at"`
	ResolvedAt     *time.Time  `json:"resolved_at,omitempty"`
}

func (c InsuranceClaim) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *InsuranceClaim) Scan(src interface{}) error {
	return scanJSON(src, c)
}

type Bill struct {
	Base
	BillNumber     string             `json:"bill_number" db:"bill_number"`
	PatientID      uuid.UUID          `json:"patient_id" db:"patient_id"`
	PatientName    string             `json:"patient_name,omitempty" db:"patient_name"`
	AppointmentID  *uuid.UUID         `json:"appointment_id,omitempty" db:"appointment_id"`
	Items          JSONList[BillItem] `json:"items" db:"items"`
	Subtotal       Money              `json:"subtotal" db:"subtotal"`
	Discount       Money              `json:"discount" db:"discount"`
	Tax            Money              `json:"tax" db:"tax"`
	TotalAmount    Money              `json:"total_amount" db:"total_amount"`
	AmountPaid     Money              `json:"amount_paid" db:"amount_paid"`
	Balance        Money              `json:"balance" db:"balance"`
	PaymentStatus  PaymentStatus      `json:"payment_status" db:"payment_status"`
	Payments       JSONList[Payment]  `json:"payments" db:"payments"`
	PaymentMethod  *string            `json:"payment_method,omitempty" db:"payment_method"`
	InsuranceClaim *InsuranceClaim    `json:"insurance_claim,omitempty" db:"insurance_claim"`
	DueDate        *Date              `json:"due_date,omitempty" db:"due_date"`
	Notes          string             `json:"notes" db:"notes"`
}

// DerivePaymentStatus is the single rule mapping amounts to a status
func DerivePaymentStatus(paid, balance Money) PaymentStatus {
	switch {
	case balance == 0:
		return PaymentPaid
	case paid > 0:
		return PaymentPartiallyPaid
	default:
		return PaymentUnpaid
	}
}

// Compute fills line amounts and totals from items, discount and tax
func (b *Bill) Compute() error {
	if len(b.Items) == 0 {
		return errors.Validation("bill must have at least one item")
	}
	if b.Discount < 0 || b.Tax < 0 {
		return errors.Validation("discount and tax cannot be negative")
	}

	var subtotal Money
	for i := range b.Items {
		item := &b.Items[i]
		if item.Quantity <= 0 {
			return errors.Validationf("item %q quantity must be positive", item.Description)
		}
		if item.UnitPrice < 0 {
			return errors.Validationf("item %q unit price cannot be negative", item.Description)
		}
		item.Amount = item.UnitPrice.Times(item.Quantity)
		subtotal += item.Amount
	}
	if b.Discount > subtotal {
		return errors.Validation("discount cannot exceed subtotal")
	}

	b.Subtotal = subtotal
	b.TotalAmount = subtotal - b.Discount + b.Tax
	b.settle()
	return nil
}

func (b *Bill) settle() {
	b.Balance = b.TotalAmount - b.AmountPaid
	b.PaymentStatus = DerivePaymentStatus(b.AmountPaid, b.Balance)
}

// RecordPayment applies a payment against the outstanding balance
func (b *Bill) RecordPayment(amount Money, method, reference string, now time.Time) error {
	if amount <= 0 {
		return errors.Validation("payment amount must be greater than zero")
	}
	if b.PaymentStatus == PaymentPaid || b.PaymentStatus == PaymentRefunded {
		return errors.Conflictf("bill is already %s", b.PaymentStatus)
	}
	if amount > b.Balance {
		return errors.Conflictf("payment of %s exceeds outstanding balance %s", amount, b.Balance)
	}

	b.AmountPaid += amount
	b.Payments = append(b.Payments, Payment{
		Amount:    amount,
		Method:    method,
		Reference: reference,
		PaidAt:    now,
	})
	if method != "" {
		b.PaymentMethod = &method
	}
	b.settle()
	return nil
}

// SubmitClaim attaches a pending insurance claim
func (b *Bill) SubmitClaim(claimNumber, provider string, amount Money, now time.Time) error {
	if amount <= 0 {
		return errors.Validation("claimed amount must be greater than zero")
	}
	if b.InsuranceClaim != nil {
		switch b.InsuranceClaim.Status {
		case ClaimPending, ClaimApproved, ClaimPartiallyApproved:
			return errors.Conflictf("bill already has a %s insurance claim", b.InsuranceClaim.Status)
		}
	}
	b.InsuranceClaim = &InsuranceClaim{
		ClaimNumber:   claimNumber,
		Provider:      provider,
		AmountClaimed: amount,
		Status:        ClaimPending,
		SubmittedAt:   now,
	}
	return nil
}

// ResolveClaim settles a pending claim. Approved amounts are paid in, capped at the balance.
func (b *Bill) ResolveClaim(status ClaimStatus, approved *Money, now time.Time) (Money, error) {
	if b.InsuranceClaim == nil {
		return 0, errors.Conflict("bill has no insurance claim")
	}
	if b.InsuranceClaim.Status != ClaimPending {
		return 0, errors.Conflictf("insurance claim is already %s", b.InsuranceClaim.Status)
	}

	claim := b.InsuranceClaim
	switch status {
	case ClaimRejected:
		claim.Status = ClaimRejected
		claim.ResolvedAt = &now
		return 0, nil
	case ClaimApproved, ClaimPartiallyApproved:
	default:
		return 0, errors.Validationf("invalid claim status %q", status)
	}

	amount := claim.AmountClaimed
	if approved != nil {
		amount = *approved
	}
	if amount < 0 {
		return 0, errors.Validation("approved amount cannot be negative")
	}
	paid := MinMoney(amount, b.Balance)
	if paid > 0 {
		if err := b.RecordPayment(paid, PaymentMethodInsurance, claim.ClaimNumber, now); err != nil {
			return 0, err
		}
	}
	claim.ApprovedAmount = &amount
	claim.Status = status
	claim.ResolvedAt = &now
	return paid, nil
}

type CreateBillRequest struct {
	PatientID     uuid.UUID  `json:"patient_id" binding:"required"`
	AppointmentID *uuid.UUID `json:"appointment_id"`
	Items         []BillItem `json:"items" binding:"required,min=1,dive"`
	Discount      Money      `json:"discount" binding:"gte=0"`
	Tax           Money      `json:"tax" binding:"gte=0"`
	DueDate       *Date      `json:"due_date"`
	Notes         string     `json:"notes"`
}

type RecordPaymentRequest struct {
	Amount    Money  `json:"amount"`
	Method    string `json:"method" binding:"required,oneof=Cash Card UPI Insurance Online Cheque"`
	Reference string `json:"reference"`
}

type InsuranceClaimRequest struct {
	ClaimNumber   string `json:"claim_number" binding:"required"`
	Provider      string `json:"provider" binding:"required"`
	AmountClaimed Money  `json:"amount_claimed"`
}

type UpdateClaimRequest struct {
	Status         ClaimStatus `json:"status" binding:"required,oneof=Approved Partially-Approved Rejected"`
	ApprovedAmount *Money      `json:"approved_amount"`
}

type BillFilter struct {
	Pagination
	PatientID     *uuid.UUID
	PaymentStatus PaymentStatus
	From          *Date
	To            *Date
}
