package model

import "time"

type BedStats struct {
	TotalBeds     int `json:"total_beds" db:"total_beds"`
	AvailableBeds int `json:"available_beds" db:"available_beds"`
	OccupiedBeds  int `json:"occupied_beds" db:"occupied_beds"`
}

type OutstandingBills struct {
	Count   int   `json:"count" db:"count"`
	Balance Money `json:"balance" db:"balance"`
}

type AdminDashboard struct {
	TotalPatients      int              `json:"total_patients"`
	TotalDoctors       int              `json:"total_doctors"`
	ActiveStaff        int              `json:"active_staff"`
	TodayAppointments  int              `json:"today_appointments"`
	Beds               BedStats         `json:"beds"`
	LowStockMedicines  int              `json:"low_stock_medicines"`
	PendingBills       OutstandingBills `json:"pending_bills"`
	MonthRevenue       Money            `json:"month_revenue"`
	RecentAppointments []*Appointment   `json:"recent_appointments"`
	GeneratedAt        time.Time        `json:"generated_at"`
}

type DoctorDashboard struct {
	Doctor              *Doctor         `json:"doctor"`
	TodayAppointments   []*Appointment  `json:"today_appointments"`
	UpcomingCount       int             `json:"upcoming_count"`
	AppointmentsByState []StatusCount   `json:"appointments_by_status"`
	RecentPrescriptions []*Prescription `json:"recent_prescriptions"`
	GeneratedAt         time.Time       `json:"generated_at"`
}

type PatientDashboard struct {
	Patient              *Patient        `json:"patient"`
	UpcomingAppointments []*Appointment  `json:"upcoming_appointments"`
	ActivePrescriptions  []*Prescription `json:"active_prescriptions"`
	UnpaidBills          []*Bill         `json:"unpaid_bills"`
	OutstandingBalance   Money           `json:"outstanding_balance"`
	CurrentAdmission     *Admission      `json:"current_admission,omitempty"`
	GeneratedAt          time.Time       `json:"generated_at"`
}

type NurseDashboard struct {
	Wards             []*Ward   `json:"wards"`
	AdmittedPatients  int       `json:"admitted_patients"`
	TodayAppointments int       `json:"today_appointments"`
	GeneratedAt       time.Time `json:"generated_at"`
}

type ReceptionistDashboard struct {
	TodayAppointments   []*Appointment `json:"today_appointments"`
	NewPatientsToday    int            `json:"new_patients_today"`
	AvailableBeds       int            `json:"available_beds"`
	PendingBills        int            `json:"pending_bills"`
	GeneratedAt         time.Time      `json:"generated_at"`
}

type PharmacistDashboard struct {
	PendingPrescriptions []*Prescription `json:"pending_prescriptions"`
	LowStock             []*Medicine     `json:"low_stock"`
	ExpiringSoon         int             `json:"expiring_soon"`
	Expired              int             `json:"expired"`
	TotalMedicines       int             `json:"total_medicines"`
	GeneratedAt          time.Time       `json:"generated_at"`
}
