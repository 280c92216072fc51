package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

type EmergencyContact struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
}

func (e EmergencyContact) Value() (driver.Value, error) {
	return json.Marshal(e)
}

func (e *EmergencyContact) Scan(src interface{}) error {
	return scanJSON(src, e)
}

type MedicalHistoryEntry struct {
	Condition     string `json:"condition" binding:"required"`
	DiagnosedDate *Date  `json:"diagnosed_date,omitempty"`
	Status        string `json:"status" binding:"omitempty,oneof=Active Resolved Chronic"`
	Notes         string `json:"notes,omitempty"`
}

type Medication struct {
	Name      string `json:"name" binding:"required"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
	StartDate *Date  `json:"start_date,omitempty"`
}

type LabReport struct {
	TestName string `json:"test_name" binding:"required"`
	Result   string `json:"result"`
	Date     *Date  `json:"date,omitempty"`
	FileURL  string `json:"file_url,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

type InsuranceInfo struct {
	Provider       string `json:"provider"`
	PolicyNumber   string `json:"policy_number"`
	ValidUntil     *Date  `json:"valid_until,omitempty"`
	CoverageAmount Money  `json:"coverage_amount"`
}

func (i InsuranceInfo) Value() (driver.Value, error) {
	return json.Marshal(i)
}

func (i *InsuranceInfo) Scan(src interface{}) error {
	return scanJSON(src, i)
}

// Admission is one stay on a ward bed
type Admission struct {
	WardID                uuid.UUID  `json:"ward_id"`
	WardNumber            string     `json:"ward_number"`
	BedNumber             string     `json:"bed_number"`
	AdmissionDate         time.Time  `json:"admission_date"`
	ExpectedDischargeDate *time.Time `json:"expected_discharge_date,omitempty"`
	DischargeDate         *time.Time `json:"discharge_date,omitempty"`
}

func (a Admission) Open() bool {
	return a.DischargeDate == nil
}

type Patient struct {
	Base
	UserID             uuid.UUID                     `json:"user_id" db:"user_id"`
	PatientNumber      string                        `json:"patient_number" db:"patient_number"`
	Name               string                        `json:"name" db:"name"`
	Email              string                        `json:"email" db:"email"`
	DateOfBirth        *Date                         `json:"date_of_birth,omitempty" db:"date_of_birth"`
	Gender             *Gender                       `json:"gender,omitempty" db:"gender"`
	BloodGroup         *string                       `json:"blood_group,omitempty" db:"blood_group"`
	EmergencyContact   *EmergencyContact             `json:"emergency_contact,omitempty" db:"emergency_contact"`
	MedicalHistory     JSONList[MedicalHistoryEntry] `json:"medical_history" db:"medical_history"`
	Allergies          JSONList[string]              `json:"allergies" db:"allergies"`
	CurrentMedications JSONList[Medication]          `json:"current_medications" db:"current_medications"`
	LabReports         JSONList[LabReport]           `json:"lab_reports" db:"lab_reports"`
	InsuranceInfo      *InsuranceInfo                `json:"insurance_info,omitempty" db:"insurance_info"`
	AdmissionHistory   JSONList[Admission]           `json:"admission_history" db:"admission_history"`
}

// Admit appends a new open admission
func (p *Patient) Admit(a Admission) {
	p.AdmissionHistory = append(p.AdmissionHistory, a)
}

// Discharge closes the most recent open admission, if any
func (p *Patient) Discharge(at time.Time) bool {
	for i := len(p.AdmissionHistory) - 1; i >= 0; i-- {
		if p.AdmissionHistory[i].Open() {
			p.AdmissionHistory[i].DischargeDate = &at
			return true
		}
	}
	return false
}

// CurrentAdmission is the latest admission without a discharge date
func (p *Patient) CurrentAdmission() *Admission {
	for i := len(p.AdmissionHistory) - 1; i >= 0; i-- {
		if p.AdmissionHistory[i].Open() {
			a := p.AdmissionHistory[i]
			return &a
		}
	}
	return nil
}

type CreatePatientRequest struct {
	UserID             uuid.UUID             `json:"user_id" binding:"required"`
	DateOfBirth        *Date                 `json:"date_of_birth"`
	Gender             *Gender               `json:"gender" binding:"omitempty,oneof=Male Female Other"`
	BloodGroup         *string               `json:"blood_group" binding:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	EmergencyContact   *EmergencyContact     `json:"emergency_contact"`
	MedicalHistory     []MedicalHistoryEntry `json:"medical_history" binding:"dive"`
	Allergies          []string              `json:"allergies"`
	CurrentMedications []Medication          `json:"current_medications" binding:"dive"`
	InsuranceInfo      *InsuranceInfo        `json:"insurance_info"`
}

type UpdatePatientRequest struct {
	DateOfBirth        *Date             `json:"date_of_birth"`
	Gender             *Gender           `json:"gender" binding:"omitempty,oneof=Male Female Other"`
	BloodGroup         *string           `json:"blood_group" binding:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	EmergencyContact   *EmergencyContact `json:"emergency_contact"`
	Allergies          *[]string         `json:"allergies"`
	CurrentMedications *[]Medication     `json:"current_medications" binding:"omitempty,dive"`
	InsuranceInfo      *InsuranceInfo    `json:"insurance_info"`
}

type PatientFilter struct {
	Pagination
	BloodGroup string `form:"blood_group"`
	Search     string `form:"search"`
}
