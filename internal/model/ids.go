package model

import (
	"fmt"
	"math/rand"
	"time"
)

// Counter names backing generated identifiers
const (
	CounterAppointment  = "appointment"
	CounterPrescription = "prescription"
	CounterStaff        = "staff"
)

// BillCounter restarts numbering every calendar year
func BillCounter(year int) string {
	return fmt.Sprintf("bill-%d", year)
}

func AppointmentNumber(n int64) string {
	return fmt.Sprintf("APT%06d", n)
}

func PrescriptionNumber(n int64) string {
	return fmt.Sprintf("RX%06d", n)
}

func BillNumber(year int, n int64) string {
	return fmt.Sprintf("BILL-%d-%06d", year, n)
}

func EmployeeID(n int64) string {
	return fmt.Sprintf("EMP%05d", n)
}

// PatientNumber is PAT + last six digits of the unix-millisecond clock + three random digits
func PatientNumber(now time.Time, r *rand.Rand) string {
	ms := now.UnixMilli() % 1_000_000
	var suffix int
	if r != nil {
		suffix = r.Intn(1000)
	} else {
		suffix = rand.Intn(1000)
	}
	return fmt.Sprintf("PAT%06d%03d", ms, suffix)
}
