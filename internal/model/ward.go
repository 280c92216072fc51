package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/keshav-rathi-0/Medilink-sub001/pkg/errors"
)

type WardType string

const (
	WardGeneral     WardType = "General"
	WardICU         WardType = "ICU"
	WardPrivate     WardType = "Private"
	WardSemiPrivate WardType = "Semi-Private"
	WardEmergency   WardType = "Emergency"
	WardPediatric   WardType = "Pediatric"
	WardMaternity   WardType = "Maternity"
)

type Bed struct {
	WardID                uuid.UUID  `json:"-" db:"ward_id"`
	BedNumber             string     `json:"bed_number" db:"bed_number"`
	IsOccupied            bool       `json:"is_occupied" db:"is_occupied"`
	PatientID             *uuid.UUID `json:"patient_id,omitempty" db:"patient_id"`
	AdmissionDate         *time.Time `json:"admission_date,omitempty" db:"admission_date"`
	ExpectedDischargeDate *time.Time `json:"expected_discharge_date,omitempty" db:"expected_discharge_date"`
}

func (b *Bed) clear() {
	b.IsOccupied = false
	b.PatientID = nil
	b.AdmissionDate = nil
	b.ExpectedDischargeDate = nil
}

type Ward struct {
	Base
	WardNumber    string     `json:"ward_number" db:"ward_number"`
	Name          string     `json:"name" db:"name"`
	Type          WardType   `json:"type" db:"type"`
	Floor         int        `json:"floor" db:"floor"`
	ChargesPerDay Money      `json:"charges_per_day" db:"charges_per_day"`
	NurseInCharge *uuid.UUID `json:"nurse_in_charge,omitempty" db:"nurse_in_charge"`
	TotalBeds     int        `json:"total_beds" db:"total_beds"`
	AvailableBeds int        `json:"available_beds" db:"available_beds"`
	IsActive      bool       `json:"is_active" db:"is_active"`
	Beds          []*Bed     `json:"beds" db:"-"`
}

// MaxWardBeds bounds the beds created with one ward
const MaxWardBeds = 500

// NewBeds numbers beds {wardNumber}-01 .. {wardNumber}-N
func NewBeds(wardID uuid.UUID, wardNumber string, n int) []*Bed {
	beds := make([]*Bed, 0, n)
	for i := 1; i <= n; i++ {
		beds = append(beds, &Bed{
			WardID:    wardID,
			BedNumber: fmt.Sprintf("%s-%02d", wardNumber, i),
		})
	}
	return beds
}

// bedNumberLess orders bed numbers of one ward numerically. They share the
// ward prefix, so a shorter number is a smaller one.
func bedNumberLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

// Recount derives the bed counters from the beds themselves
func (w *Ward) Recount() {
	available := 0
	for _, b := range w.Beds {
		if !b.IsOccupied {
			available++
		}
	}
	w.TotalBeds = len(w.Beds)
	w.AvailableBeds = available
}

func (w *Ward) OccupiedBeds() int {
	return w.TotalBeds - w.AvailableBeds
}

// AllocateBed occupies the first free bed by bed number
func (w *Ward) AllocateBed(patientID uuid.UUID, admittedAt time.Time, expectedDischarge *time.Time) (*Bed, error) {
	w.Recount()
	if w.AvailableBeds == 0 {
		return nil, errors.Conflict("no beds available")
	}

	var bed *Bed
	for _, b := range w.Beds {
		if !b.IsOccupied && (bed == nil || bedNumberLess(b.BedNumber, bed.BedNumber)) {
			bed = b
		}
	}
	if bed == nil {
		return nil, errors.Conflict("no beds available")
	}

	bed.IsOccupied = true
	bed.PatientID = &patientID
	bed.AdmissionDate = &admittedAt
	bed.ExpectedDischargeDate = expectedDischarge
	w.Recount()
	return bed, nil
}

// ReleaseBed frees an occupied bed and returns who was in it
func (w *Ward) ReleaseBed(bedNumber string) (*Bed, uuid.UUID, error) {
	for _, b := range w.Beds {
		if b.BedNumber != bedNumber {
			continue
		}
		if !b.IsOccupied {
			return nil, uuid.Nil, errors.Validationf("bed %s is not occupied", bedNumber)
		}
		var patientID uuid.UUID
		if b.PatientID != nil {
			patientID = *b.PatientID
		}
		b.clear()
		w.Recount()
		return b, patientID, nil
	}
	return nil, uuid.Nil, errors.Validationf("bed %s not found in ward %s", bedNumber, w.WardNumber)
}

type CreateWardRequest struct {
	WardNumber    string     `json:"ward_number" binding:"required"`
	Name          string     `json:"name" binding:"required"`
	Type          WardType   `json:"type" binding:"required,oneof=General ICU Private Semi-Private Emergency Pediatric Maternity"`
	Floor         int        `json:"floor"`
	TotalBeds     int        `json:"total_beds" binding:"lte=500"`
	ChargesPerDay Money      `json:"charges_per_day" binding:"gte=0"`
	NurseInCharge *uuid.UUID `json:"nurse_in_charge"`
}

type UpdateWardRequest struct {
	Name          *string    `json:"name"`
	Type          *WardType  `json:"type" binding:"omitempty,oneof=General ICU Private Semi-Private Emergency Pediatric Maternity"`
	Floor         *int       `json:"floor"`
	ChargesPerDay *Money     `json:"charges_per_day" binding:"omitempty,gte=0"`
	NurseInCharge *uuid.UUID `json:"nurse_in_charge"`
	IsActive      *bool      `json:"is_active"`
}

type AllocateBedRequest struct {
	PatientID             uuid.UUID  `json:"patient_id" binding:"required"`
	AdmissionDate         *time.Time `json:"admission_date"`
	ExpectedDischargeDate *time.Time `json:"expected_discharge_date"`
}

type ReleaseBedRequest struct {
	BedNumber string `json:"bed_number" binding:"required"`
}

type WardFilter struct {
	Pagination
	Type         WardType `form:"type"`
	Floor        *int     `form:"floor"`
	HasAvailable bool     `form:"available"`
}

// BedAllocation is the result of a successful allocation
type BedAllocation struct {
	Ward      *Ward     `json:"ward"`
	Bed       *Bed      `json:"bed"`
	Admission Admission `json:"admission"`
}
