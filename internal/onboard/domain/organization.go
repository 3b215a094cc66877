package domain

import "time"

type Organization struct {
	ID   string
	Name string
	// Slug is the URL-safe unique identifier derived from Name at
	// creation time. Immutable afterwards.
	Slug      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Membership links a user to an organization.
type Membership struct {
	OrganizationID string
	UserID         string
	CreatedAt      time.Time
}
