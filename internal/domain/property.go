package domain

import "time"

// Property is an internal listing. ExternalListingID links it to the PMS; a
// nil value means the property does not participate in sync.
type Property struct {
	ID                string
	OrganizationID    string
	Name              string
	ExternalListingID *string
	CreatedAt         time.Time
}
