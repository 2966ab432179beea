package dto

import "time"

// EventTally summarises registrations and gate activity for one event.
type EventTally struct {
	EventID      string `json:"eventId,omitempty"`
	Registered   int    `json:"registered"`
	Pending      int    `json:"pending"`
	Approved     int    `json:"approved"`
	Rejected     int    `json:"rejected"`
	Participants int    `json:"participants"`
	Allowed      int    `json:"allowedDecisions"`
	Denied       int    `json:"deniedDecisions"`
	Admitted     int    `json:"admittedRegistrations"`
}

// DashboardSummary is the admin overview, per event plus totals.
type DashboardSummary struct {
	EventID     string       `json:"eventId,omitempty"`
	Events      []EventTally `json:"events"`
	Totals      EventTally   `json:"totals"`
	GeneratedAt time.Time    `json:"generatedAt"`
}
