package model

import (
	"time"

	"github.com/keshav-rathi-0/Medilink-sub001/pkg/errors"
)

type StockOperation string

const (
	StockAdd    StockOperation = "add"
	StockReduce StockOperation = "reduce"
	StockSet    StockOperation = "set"
)

type Medicine struct {
	Base
	Name                 string     `json:"name" db:"name"`
	GenericName          string     `json:"generic_name" db:"generic_name"`
	Category             string     `json:"category" db:"category"`
	Manufacturer         string     `json:"manufacturer" db:"manufacturer"`
	Description          string     `json:"description" db:"description"`
	StockQuantity        int        `json:"stock_quantity" db:"stock_quantity"`
	ReorderLevel         int        `json:"reorder_level" db:"reorder_level"`
	UnitPrice            Money      `json:"unit_price" db:"unit_price"`
	ExpiryDate           *Date      `json:"expiry_date,omitempty" db:"expiry_date"`
	BatchNumber          string     `json:"batch_number" db:"batch_number"`
	LastRestocked        *time.Time `json:"last_restocked,omitempty" db:"last_restocked"`
	RequiresPrescription bool       `json:"requires_prescription" db:"requires_prescription"`
	IsActive             bool       `json:"is_active" db:"is_active"`
}

// IsLowStock reports stock at or under the reorder level
func (m *Medicine) IsLowStock() bool {
	return m.StockQuantity <= m.ReorderLevel
}

// ApplyStock runs one ledger operation. A reduce past zero is rejected
// and leaves the quantity untouched.
func (m *Medicine) ApplyStock(op StockOperation, qty int, now time.Time) error {
	if qty <= 0 {
		return errors.Validation("Quantity must be a positive integer")
	}

	switch op {
	case StockAdd:
		m.StockQuantity += qty
		m.LastRestocked = &now
	case StockReduce:
		if qty > m.StockQuantity {
			return errors.Conflictf("insufficient stock for %s: available %d, requested %d", m.Name, m.StockQuantity, qty)
		}
		m.StockQuantity -= qty
	case StockSet:
		m.StockQuantity = qty
	default:
		return errors.Validationf("invalid stock operation %q, expected add, reduce or set", op)
	}
	m.UpdatedAt = now
	return nil
}

// CheckDispensable verifies a medicine can cover qty units without changing it
func (m *Medicine) CheckDispensable(qty int) error {
	if !m.IsActive {
		return errors.Conflictf("medicine %s is not active", m.Name)
	}
	if m.StockQuantity < qty {
		return errors.Conflictf("insufficient stock for %s: available %d, requested %d", m.Name, m.StockQuantity, qty)
	}
	return nil
}

// Dispense removes qty units after CheckDispensable passed
func (m *Medicine) Dispense(qty int, now time.Time) error {
	if err := m.CheckDispensable(qty); err != nil {
		return err
	}
	m.StockQuantity -= qty
	m.UpdatedAt = now
	return nil
}

// IsExpired reports an expiry date before today
func (m *Medicine) IsExpired(now time.Time) bool {
	return m.ExpiryDate != nil && m.ExpiryDate.Before(Today(now).Time)
}

type CreateMedicineRequest struct {
	Name                 string `json:"name" binding:"required"`
	GenericName          string `json:"generic_name"`
	Category             string `json:"category" binding:"required"`
	Manufacturer         string `json:"manufacturer"`
	Description          string `json:"description"`
	StockQuantity        int    `json:"stock_quantity" binding:"gte=0"`
	ReorderLevel         int    `json:"reorder_level" binding:"gte=0"`
	UnitPrice            Money  `json:"unit_price" binding:"gte=0"`
	ExpiryDate           *Date  `json:"expiry_date"`
	BatchNumber          string `json:"batch_number"`
	RequiresPrescription *bool  `json:"requires_prescription"`
}

type UpdateMedicineRequest struct {
	Name                 *string `json:"name"`
	GenericName          *string `json:"generic_name"`
	Category             *string `json:"category"`
	Manufacturer         *string `json:"manufacturer"`
	Description          *string `json:"description"`
	ReorderLevel         *int    `json:"reorder_level" binding:"omitempty,gte=0"`
	UnitPrice            *Money  `json:"unit_price" binding:"omitempty,gte=0"`
	ExpiryDate           *Date   `json:"expiry_date"`
	BatchNumber          *string `json:"batch_number"`
	RequiresPrescription *bool   `json:"requires_prescription"`
	IsActive             *bool   `json:"is_active"`
}

type UpdateStockRequest struct {
	Quantity  int            `json:"quantity"`
	Operation StockOperation `json:"operation" binding:"required"`
}

type MedicineFilter struct {
	Pagination
	Category string `form:"category"`
	Search   string `form:"search"`
	IsActive *bool  `form:"is_active"`
}
