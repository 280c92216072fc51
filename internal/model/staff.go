package model

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/google/uuid"
)

type Shift string

const (
	ShiftMorning  Shift = "Morning"
	ShiftEvening  Shift = "Evening"
	ShiftNight    Shift = "Night"
	ShiftRotating Shift = "Rotating"
)

type Performance struct {
	Rating         float64 `json:"rating"`
	LastReviewDate *Date   `json:"last_review_date,omitempty"`
	Notes          string  `json:"notes,omitempty"`
}

func (p Performance) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *Performance) Scan(src interface{}) error {
	return scanJSON(src, p)
}

type Staff struct {
	Base
	EmployeeID     string           `json:"employee_id" db:"employee_id"`
	UserID         uuid.UUID        `json:"user_id" db:"user_id"`
	Name           string           `json:"name" db:"name"`
	Email          string           `json:"email" db:"email"`
	Role           Role             `json:"role" db:"role"`
	Designation    string           `json:"designation" db:"designation"`
	Department     string           `json:"department" db:"department"`
	Shift          Shift            `json:"shift" db:"shift"`
	Salary         Money            `json:"salary" db:"salary"`
	JoiningDate    Date             `json:"joining_date" db:"joining_date"`
	Qualifications JSONList[string] `json:"qualifications" db:"qualifications"`
	Performance    Performance      `json:"performance" db:"performance"`
	IsActive       bool             `json:"is_active" db:"is_active"`
}

type CreateStaffRequest struct {
	UserID         uuid.UUID `json:"user_id" binding:"required"`
	Designation    string    `json:"designation" binding:"required"`
	Department     string    `json:"department" binding:"required"`
	Shift          Shift     `json:"shift" binding:"omitempty,oneof=Morning Evening Night Rotating"`
	Salary         Money     `json:"salary" binding:"gte=0"`
	JoiningDate    *Date     `json:"joining_date"`
	Qualifications []string  `json:"qualifications"`
}

type UpdateStaffRequest struct {
	Designation    *string   `json:"designation"`
	Department     *string   `json:"department"`
	Shift          *Shift    `json:"shift" binding:"omitempty,oneof=Morning Evening Night Rotating"`
	Salary         *Money    `json:"salary" binding:"omitempty,gte=0"`
	Qualifications *[]string `json:"qualifications"`
	IsActive       *bool     `json:"is_active"`
}

type PerformanceReviewRequest struct {
	Rating float64 `json:"rating" binding:"gte=0,lte=5"`
	Notes  string  `json:"notes"`
}

type StaffFilter struct {
	Pagination
	Department  string `form:"department"`
	Designation string `form:"designation"`
	Shift       Shift  `form:"shift"`
	IsActive    *bool  `form:"is_active"`
}
