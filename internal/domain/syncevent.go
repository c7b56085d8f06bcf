package domain

import "time"

type SyncDirection string

const (
	SyncDirectionInbound  SyncDirection = "inbound"
	SyncDirectionOutbound SyncDirection = "outbound"
	SyncDirectionManual   SyncDirection = "manual"
)

// SyncCounts tallies the writes of one reconciliation or publish attempt.
type SyncCounts struct {
	Processed int `json:"processed"`
	Blocked   int `json:"blocked"`
	Freed     int `json:"freed"`
}

// SyncEvent is one append-only audit record. Never mutated or deleted.
type SyncEvent struct {
	ID             string        `json:"id"`
	OrganizationID string        `json:"organization_id"`
	PropertyID     string        `json:"property_id"`
	Direction      SyncDirection `json:"direction"`
	Counts         SyncCounts    `json:"counts"`
	Errors         []string      `json:"errors"`
	CreatedAt      time.Time     `json:"created_at"`
}

// SyncResult is the outcome of one property's inbound reconciliation.
type SyncResult struct {
	PropertyID    string   `json:"property_id"`
	DaysProcessed int      `json:"days_processed"`
	DaysBlocked   int      `json:"days_blocked"`
	DaysFreed     int      `json:"days_freed"`
	Errors        []string `json:"errors"`
}

// PublishResult is the outcome of one outbound reservation publish.
type PublishResult struct {
	ReservationID         string `json:"reservation_id"`
	ExternalReservationID string `json:"external_reservation_id"`
	AlreadySynced         bool   `json:"already_synced"`
}

// PropertySyncOutcome pairs a property with its reconciliation outcome inside
// a bulk run. Err is set when the property failed outright.
type PropertySyncOutcome struct {
	PropertyID string     `json:"property_id"`
	Result     SyncResult `json:"result"`
	Err        string     `json:"error,omitempty"`
}

// BulkSyncReport aggregates an orchestrator pass over all mapped properties.
type BulkSyncReport struct {
	TotalProperties  int                   `json:"total_properties"`
	SyncedProperties int                   `json:"synced_properties"`
	FailedProperties int                   `json:"failed_properties"`
	Results          []PropertySyncOutcome `json:"results"`
}
