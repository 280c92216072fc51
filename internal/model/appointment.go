package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/keshav-rathi-0/Medilink-sub001/pkg/errors"
)

type AppointmentStatus string

const (
	AppointmentScheduled  AppointmentStatus = "Scheduled"
	AppointmentConfirmed  AppointmentStatus = "Confirmed"
	AppointmentInProgress AppointmentStatus = "In-Progress"
	AppointmentCompleted  AppointmentStatus = "Completed"
	AppointmentCancelled  AppointmentStatus = "Cancelled"
	AppointmentNoShow     AppointmentStatus = "No-Show"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentScheduled, AppointmentConfirmed, AppointmentInProgress,
		AppointmentCompleted, AppointmentCancelled, AppointmentNoShow:
		return true
	}
	return false
}

// Holds reports whether the status keeps its time slot booked
func (s AppointmentStatus) Holds() bool {
	return s != AppointmentCancelled && s != AppointmentCompleted
}

type AppointmentType string

const (
	AppointmentConsultation AppointmentType = "Consultation"
	AppointmentFollowUp     AppointmentType = "Follow-up"
	AppointmentEmergency    AppointmentType = "Emergency"
	AppointmentCheckup      AppointmentType = "Routine Checkup"
)

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityNormal Priority = "Normal"
	PriorityHigh   Priority = "High"
	PriorityUrgent Priority = "Urgent"
)

// TimeSlot is an HH:MM window on an appointment day
type TimeSlot struct {
	StartTime string `json:"start_time" db:"start_time" binding:"required,hhmm"`
	EndTime   string `json:"end_time" db:"end_time" binding:"required,hhmm"`
}

// Validate checks both ends parse and the slot is not empty
func (t TimeSlot) Validate() error {
	start, err := time.Parse("15:04", t.StartTime)
	if err != nil {
		return errors.Validationf("invalid start time %q, expected HH:MM", t.StartTime)
	}
	end, err := time.Parse("15:04", t.EndTime)
	if err != nil {
		return errors.Validationf("invalid end time %q, expected HH:MM", t.EndTime)
	}
	if !end.After(start) {
		return errors.Validation("end time must be after start time")
	}
	return nil
}

type Appointment struct {
	Base
	AppointmentNumber  string                `json:"appointment_number" db:"appointment_number"`
	PatientID          uuid.UUID             `json:"patient_id" db:"patient_id"`
	DoctorID           uuid.UUID             `json:"doctor_id" db:"doctor_id"`
	PatientName        string                `json:"patient_name,omitempty" db:"patient_name"`
	DoctorName         string                `json:"doctor_name,omitempty" db:"doctor_name"`
	AppointmentDate    Date                  `json:"appointment_date" db:"appointment_date"`
	TimeSlot           `json:"time_slot"`
	Type               AppointmentType       `json:"type" db:"type"`
	Status             AppointmentStatus     `json:"status" db:"status"`
	Priority           Priority              `json:"priority" db:"priority"`
	Reason             string                `json:"reason" db:"reason"`
	Symptoms           JSONList[string]      `json:"symptoms" db:"symptoms"`
	Notes              string                `json:"notes" db:"notes"`
	CancellationReason *string               `json:"cancellation_reason,omitempty" db:"cancellation_reason"`
	CreatedBy          *uuid.UUID            `json:"created_by,omitempty" db:"created_by"`
}

// CanReschedule reports whether the appointment may move to another slot
func (a *Appointment) CanReschedule() error {
	if a.Status != AppointmentScheduled && a.Status != AppointmentConfirmed {
		return errors.Conflictf("cannot reschedule an appointment in status %s", a.Status)
	}
	return nil
}

// Cancel marks the appointment cancelled. Repeating it only refreshes the reason.
func (a *Appointment) Cancel(reason string) {
	a.Status = AppointmentCancelled
	if reason != "" {
		a.CancellationReason = &reason
	}
}

type CreateAppointmentRequest struct {
	PatientID       uuid.UUID       `json:"patient_id" binding:"required"`
	DoctorID        uuid.UUID       `json:"doctor_id" binding:"required"`
	AppointmentDate Date            `json:"appointment_date"`
	TimeSlot        TimeSlot        `json:"time_slot"`
	Type            AppointmentType `json:"type" binding:"omitempty,oneof=Consultation Follow-up Emergency 'Routine Checkup'"`
	Priority        Priority        `json:"priority" binding:"omitempty,oneof=Low Normal High Urgent"`
	Reason          string          `json:"reason"`
	Symptoms        []string        `json:"symptoms"`
	Notes           string          `json:"notes"`
}

type UpdateAppointmentRequest struct {
	AppointmentDate *Date              `json:"appointment_date"`
	TimeSlot        *TimeSlot          `json:"time_slot"`
	Type            *AppointmentType   `json:"type" binding:"omitempty,oneof=Consultation Follow-up Emergency 'Routine Checkup'"`
	Priority        *Priority          `json:"priority" binding:"omitempty,oneof=Low Normal High Urgent"`
	Status          *AppointmentStatus `json:"status"`
	Reason          *string            `json:"reason"`
	Symptoms        *[]string          `json:"symptoms"`
	Notes           *string            `json:"notes"`
}

type RescheduleAppointmentRequest struct {
	AppointmentDate Date     `json:"appointment_date"`
	TimeSlot        TimeSlot `json:"time_slot"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason"`
}

type UpdateAppointmentStatusRequest struct {
	Status AppointmentStatus `json:"status" binding:"required"`
}

type AppointmentFilter struct {
	Pagination
	PatientID *uuid.UUID
	DoctorID  *uuid.UUID
	Status    AppointmentStatus
	Priority  Priority
	Date      *Date
	From      *Date
	To        *Date
	// Upcoming keeps live statuses only; pair it with From
	Upcoming bool
	// Recent orders by booking time, newest first
	Recent bool
}

// StatusCount is an aggregate row for dashboards and reports
type StatusCount struct {
	Status string `json:"status" db:"status"`
	Count  int    `json:"count" db:"count"`
}
