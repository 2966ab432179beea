package models

import "time"

// RegistrationStatus is the approval state of a registration.
type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "PENDING"
	RegistrationApproved RegistrationStatus = "APPROVED"
	RegistrationRejected RegistrationStatus = "REJECTED"
)

// Valid reports whether s is a known status.
func (s RegistrationStatus) Valid() bool {
	switch s {
	case RegistrationPending, RegistrationApproved, RegistrationRejected:
		return true
	}
	return false
}

// TicketStatus tracks rendering of the ticket document, separately from approval.
type TicketStatus string

const (
	TicketPending TicketStatus = "PENDING"
	TicketReady   TicketStatus = "READY"
	TicketFailed  TicketStatus = "FAILED"
)

// Registration is one submitted entry for an event.
type Registration struct {
	ID                  string             `db:"id" json:"id"`
	RegistrationID      string             `db:"registration_id" json:"registrationId"`
	EventID             string             `db:"event_id" json:"eventId"`
	IsGardenCityStudent bool               `db:"is_garden_city_student" json:"isGardenCityStudent"`
	Leader              Person             `db:"leader" json:"leader"`
	TeamMembers         People             `db:"team_members" json:"teamMembers"`
	Status              RegistrationStatus `db:"status" json:"status"`
	QRPayload           string             `db:"qr_payload" json:"qrPayload"`
	FinalEventDate      string             `db:"final_event_date" json:"finalEventDate"`
	TicketStatus        TicketStatus       `db:"ticket_status" json:"ticketStatus"`
	TicketPath          *string            `db:"ticket_path" json:"-"`
	CreatedAt           time.Time          `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time          `db:"updated_at" json:"updatedAt"`
}

// ParticipantCount counts the leader plus members.
func (r Registration) ParticipantCount() int {
	return 1 + len(r.TeamMembers)
}

// RegistrationFilter captures admin listing criteria.
type RegistrationFilter struct {
	EventID   string
	Status    *RegistrationStatus
	Search    string
	Page      int
	PageSize  int
	SortOrder string
}
