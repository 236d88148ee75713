package worker

import "time"

// Worker is a person who can be assigned signable records. Enabled starts
// false and flips to true when the worker signs their enrollment.
type Worker struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	ExternalID        string    `json:"externalId"`
	Role              string    `json:"role,omitempty"`
	Site              string    `json:"site,omitempty"`
	CompanyName       string    `json:"companyName,omitempty"`
	CompanyExternalID string    `json:"companyExternalId,omitempty"`
	Phone             string    `json:"phone,omitempty"`
	Enabled           bool      `json:"enabled"`
	PIN               string    `json:"-"`
	CreatedAt         time.Time `json:"createdAt"`
}
