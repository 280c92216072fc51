package model

import (
	"github.com/google/uuid"
)

// ReportRange bounds a report by calendar day, inclusive
type ReportRange struct {
	From Date `json:"from"`
	To   Date `json:"to"`
}

type RevenueRow struct {
	PaymentStatus PaymentStatus `json:"payment_status" db:"payment_status"`
	Bills         int           `json:"bills" db:"bills"`
	Billed        Money         `json:"billed" db:"billed"`
	Collected     Money         `json:"collected" db:"collected"`
	Outstanding   Money         `json:"outstanding" db:"outstanding"`
}

type RevenueReport struct {
	ReportRange
	Rows           []RevenueRow `json:"rows"`
	TotalBilled    Money        `json:"total_billed"`
	TotalCollected Money        `json:"total_collected"`
	TotalBalance   Money        `json:"total_outstanding"`
}

type AppointmentReport struct {
	ReportRange
	ByStatus []StatusCount `json:"by_status"`
	Total    int           `json:"total"`
}

type WardOccupancy struct {
	WardID        uuid.UUID `json:"ward_id" db:"id"`
	WardNumber    string    `json:"ward_number" db:"ward_number"`
	Name          string    `json:"name" db:"name"`
	Type          WardType  `json:"type" db:"type"`
	TotalBeds     int       `json:"total_beds" db:"total_beds"`
	AvailableBeds int       `json:"available_beds" db:"available_beds"`
	OccupancyRate float64   `json:"occupancy_rate" db:"-"`
}

type OccupancyReport struct {
	Wards []WardOccupancy `json:"wards"`
	Total BedStats        `json:"total"`
}

type InventoryReport struct {
	TotalMedicines int   `json:"total_medicines" db:"total_medicines"`
	StockUnits     int   `json:"stock_units" db:"stock_units"`
	StockValue     Money `json:"stock_value" db:"stock_value"`
	LowStock       int   `json:"low_stock" db:"low_stock"`
	ExpiringSoon   int   `json:"expiring_soon" db:"expiring_soon"`
	Expired        int   `json:"expired" db:"expired"`
}
