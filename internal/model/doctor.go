package model

import (
	"github.com/google/uuid"
)

// Slot is one bookable window in a doctor's weekly availability
type Slot struct {
	StartTime   string `json:"start_time" binding:"required,hhmm"`
	EndTime     string `json:"end_time" binding:"required,hhmm"`
	IsAvailable bool   `json:"is_available"`
}

type DayAvailability struct {
	Day   string `json:"day" binding:"required,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	Slots []Slot `json:"slots" binding:"dive"`
}

type OnCallShift struct {
	Date      Date   `json:"date"`
	StartTime string `json:"start_time" binding:"required,hhmm"`
	EndTime   string `json:"end_time" binding:"required,hhmm"`
}

type Doctor struct {
	Base
	UserID          uuid.UUID                 `json:"user_id" db:"user_id"`
	Name            string                    `json:"name" db:"name"`
	Email           string                    `json:"email" db:"email"`
	Specialization  string                    `json:"specialization" db:"specialization"`
	Qualification   string                    `json:"qualification" db:"qualification"`
	ExperienceYears int                       `json:"experience_years" db:"experience_years"`
	LicenseNumber   string                    `json:"license_number" db:"license_number"`
	ConsultationFee Money                     `json:"consultation_fee" db:"consultation_fee"`
	Department      string                    `json:"department" db:"department"`
	Availability    JSONList[DayAvailability] `json:"availability" db:"availability"`
	OnCallShifts    JSONList[OnCallShift]     `json:"on_call_shifts" db:"on_call_shifts"`
	Rating          float64                   `json:"rating" db:"rating"`
	IsActive        bool                      `json:"is_active" db:"is_active"`
}

// SlotsOn returns the availability slots for a weekday
func (d *Doctor) SlotsOn(day string) []Slot {
	for _, a := range d.Availability {
		if a.Day == day {
			return a.Slots
		}
	}
	return nil
}

type CreateDoctorRequest struct {
	UserID          uuid.UUID         `json:"user_id" binding:"required"`
	Specialization  string            `json:"specialization" binding:"required"`
	Qualification   string            `json:"qualification"`
	ExperienceYears int               `json:"experience_years" binding:"gte=0"`
	LicenseNumber   string            `json:"license_number" binding:"required"`
	ConsultationFee Money             `json:"consultation_fee" binding:"gte=0"`
	Department      string            `json:"department"`
	Availability    []DayAvailability `json:"availability" binding:"dive"`
}

type UpdateDoctorRequest struct {
	Specialization  *string  `json:"specialization"`
	Qualification   *string  `json:"qualification"`
	ExperienceYears *int     `json:"experience_years" binding:"omitempty,gte=0"`
	ConsultationFee *Money   `json:"consultation_fee" binding:"omitempty,gte=0"`
	Department      *string  `json:"department"`
	Rating          *float64 `json:"rating" binding:"omitempty,gte=0,lte=5"`
	IsActive        *bool    `json:"is_active"`
}

type UpdateAvailabilityRequest struct {
	Availability []DayAvailability `json:"availability" binding:"required,dive"`
	OnCallShifts []OnCallShift     `json:"on_call_shifts" binding:"dive"`
}

type DoctorFilter struct {
	Pagination
	Specialization string `form:"specialization"`
	Department     string `form:"department"`
	Search         string `form:"search"`
	IsActive       *bool  `form:"is_active"`
}

// AvailableSlots is the booking view of one doctor on one day
type AvailableSlots struct {
	DoctorID uuid.UUID  `json:"doctor_id"`
	Date     Date       `json:"date"`
	Day      string     `json:"day"`
	Slots    []TimeSlot `json:"slots"`
}
