package model

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/keshav-rathi-0/Medilink-sub001/pkg/errors"
)

type PrescriptionStatus string

const (
	PrescriptionPending         PrescriptionStatus = "Pending"
	PrescriptionPartiallyFilled PrescriptionStatus = "Partially-Filled"
	PrescriptionFulfilled       PrescriptionStatus = "Fulfilled"
	PrescriptionCancelled       PrescriptionStatus = "Cancelled"
)

// DefaultPrescriptionValidity applies when validUntil is not supplied
const DefaultPrescriptionValidity = 30 * 24 * time.Hour

var prescriptionTransitions = map[PrescriptionStatus][]PrescriptionStatus{
	PrescriptionPending:         {PrescriptionPartiallyFilled, PrescriptionFulfilled, PrescriptionCancelled},
	PrescriptionPartiallyFilled: {PrescriptionFulfilled, PrescriptionCancelled},
}

func (s PrescriptionStatus) Valid() bool {
	switch s {
	case PrescriptionPending, PrescriptionPartiallyFilled, PrescriptionFulfilled, PrescriptionCancelled:
		return true
	}
	return false
}

func (s PrescriptionStatus) CanTransitionTo(next PrescriptionStatus) bool {
	for _, allowed := range prescriptionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Dispenses reports whether entering the status takes stock
func (s PrescriptionStatus) Dispenses() bool {
	return s == PrescriptionFulfilled || s == PrescriptionPartiallyFilled
}

type PrescriptionItem struct {
	MedicineID   uuid.UUID `json:"medicine_id" binding:"required"`
	MedicineName string    `json:"medicine_name"`
	Quantity     int       `json:"quantity" binding:"required,gt=0"`
	Dosage       string    `json:"dosage" binding:"required"`
	Frequency    string    `json:"frequency" binding:"required"`
	Duration     string    `json:"duration"`
	Instructions string    `json:"instructions,omitempty"`
}

type Prescription struct {
	Base
	PrescriptionNumber string                     `json:"prescription_number" db:"prescription_number"`
	PatientID          uuid.UUID                  `json:"patient_id" db:"patient_id"`
	DoctorID           uuid.UUID                  `json:"doctor_id" db:"doctor_id"`
	PatientName        string                     `json:"patient_name,omitempty" db:"patient_name"`
	DoctorName         string                     `json:"doctor_name,omitempty" db:"doctor_name"`
	AppointmentID      *uuid.UUID                 `json:"appointment_id,omitempty" db:"appointment_id"`
	Diagnosis          string                     `json:"diagnosis" db:"diagnosis"`
	Medicines          JSONList[PrescriptionItem] `json:"medicines" db:"medicines"`
	Status             PrescriptionStatus         `json:"status" db:"status"`
	RefillsAllowed     int                        `json:"refills_allowed" db:"refills_allowed"`
	RefillsUsed        int                        `json:"refills_used" db:"refills_used"`
	ValidUntil         time.Time                  `json:"valid_until" db:"valid_until"`
	Notes              string                     `json:"notes" db:"notes"`
	DispensedBy        *uuid.UUID                 `json:"dispensed_by,omitempty" db:"dispensed_by"`
	DispensedAt        *time.Time                 `json:"dispensed_at,omitempty" db:"dispensed_at"`
	CancellationReason *string                    `json:"cancellation_reason,omitempty" db:"cancellation_reason"`
}

// Quantities sums line quantities per medicine
func (p *Prescription) Quantities() map[uuid.UUID]int {
	q := make(map[uuid.UUID]int, len(p.Medicines))
	for _, item := range p.Medicines {
		q[item.MedicineID] += item.Quantity
	}
	return q
}

// MedicineIDs returns the distinct medicine ids sorted, the lock order for stock rows
func (p *Prescription) MedicineIDs() []uuid.UUID {
	return SortedIDs(p.Quantities())
}

// SortedIDs orders map keys so row locks are always taken in the same order
func SortedIDs(m map[uuid.UUID]int) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

// Transition moves to next if the state machine allows it
func (p *Prescription) Transition(next PrescriptionStatus) error {
	if !next.Valid() {
		return errors.Validationf("invalid prescription status %q", next)
	}
	if !p.Status.CanTransitionTo(next) {
		return errors.Conflictf("cannot change prescription status from %s to %s", p.Status, next)
	}
	p.Status = next
	return nil
}

// MarkDispensed records who handed the medicines out
func (p *Prescription) MarkDispensed(by uuid.UUID, at time.Time) {
	p.DispensedBy = &by
	p.DispensedAt = &at
}

// CheckRefill validates a refill without mutating the prescription
func (p *Prescription) CheckRefill(now time.Time) error {
	if p.Status == PrescriptionCancelled {
		return errors.Conflict("cannot refill a cancelled prescription")
	}
	if p.RefillsUsed >= p.RefillsAllowed {
		return errors.Conflict("no refills remaining")
	}
	if now.After(p.ValidUntil) {
		return errors.Conflict("prescription expired")
	}
	return nil
}

// RecordRefill counts a refill and closes the prescription at the limit
func (p *Prescription) RecordRefill() {
	p.RefillsUsed++
	if p.RefillsUsed >= p.RefillsAllowed {
		p.Status = PrescriptionFulfilled
	}
}

// Cancel ends the prescription unless it was already fulfilled. Cancelling
// twice keeps the first reason.
func (p *Prescription) Cancel(reason string) error {
	switch p.Status {
	case PrescriptionFulfilled:
		return errors.Conflict("cannot cancel fulfilled prescription")
	case PrescriptionCancelled:
		return nil
	}
	p.Status = PrescriptionCancelled
	if reason != "" {
		p.CancellationReason = &reason
	}
	return nil
}

type CreatePrescriptionRequest struct {
	PatientID      uuid.UUID          `json:"patient_id" binding:"required"`
	DoctorID       uuid.UUID          `json:"doctor_id" binding:"required"`
	AppointmentID  *uuid.UUID         `json:"appointment_id"`
	Diagnosis      string             `json:"diagnosis" binding:"required"`
	Medicines      []PrescriptionItem `json:"medicines" binding:"required,min=1,dive"`
	RefillsAllowed int                `json:"refills_allowed" binding:"gte=0"`
	ValidUntil     *time.Time         `json:"valid_until"`
	Notes          string             `json:"notes"`
}

type UpdatePrescriptionRequest struct {
	Diagnosis      *string             `json:"diagnosis"`
	Medicines      *[]PrescriptionItem `json:"medicines" binding:"omitempty,min=1,dive"`
	RefillsAllowed *int                `json:"refills_allowed" binding:"omitempty,gte=0"`
	ValidUntil     *time.Time          `json:"valid_until"`
	Notes          *string             `json:"notes"`
}

type UpdatePrescriptionStatusRequest struct {
	Status PrescriptionStatus `json:"status" binding:"required"`
}

type CancelPrescriptionRequest struct {
	Reason string `json:"reason"`
}

type PrescriptionFilter struct {
	Pagination
	PatientID *uuid.UUID
	DoctorID  *uuid.UUID
	Status    PrescriptionStatus
}
