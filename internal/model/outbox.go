package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "PENDING"
	OutboxStatusProcessed OutboxStatus = "PROCESSED"
	OutboxStatusFailed    OutboxStatus = "FAILED"
)

// Domain event types written to the outbox
const (
	EventAppointmentCreated     = "appointment.created"
	EventAppointmentRescheduled = "appointment.rescheduled"
	EventAppointmentCancelled   = "appointment.cancelled"
	EventBedAllocated           = "ward.bed_allocated"
	EventBedReleased            = "ward.bed_released"
	EventStockLow               = "medicine.stock_low"
	EventPrescriptionFulfilled  = "prescription.fulfilled"
	EventPrescriptionRefilled   = "prescription.refilled"
	EventPaymentRecorded        = "billing.payment_recorded"
	EventClaimResolved          = "billing.claim_resolved"
	EventPasswordReset          = "auth.password_reset_requested"
)

type OutboxEvent struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	EventType    string          `db:"event_type" json:"event_type"`
	AggregateID  uuid.UUID       `db:"aggregate_id" json:"aggregate_id"`
	Payload      json.RawMessage `db:"payload" json:"payload"`
	Status       OutboxStatus    `db:"status" json:"status"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
	RetryCount   int             `db:"retry_count" json:"retry_count"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	ProcessedAt  *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
}

// EventMessage is what subscribers receive on the broker
type EventMessage struct {
	ID          uuid.UUID       `json:"id"`
	Type        string          `json:"type"`
	AggregateID uuid.UUID       `json:"aggregate_id"`
	Payload     json.RawMessage `json:"payload"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

func (e *OutboxEvent) Message() EventMessage {
	return EventMessage{
		ID:          e.ID,
		Type:        e.EventType,
		AggregateID: e.AggregateID,
		Payload:     e.Payload,
		OccurredAt:  e.CreatedAt,
	}
}
