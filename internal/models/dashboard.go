package models

// RegistrationTally is one (event, status) bucket of registrations.
type RegistrationTally struct {
	EventID      string             `db:"event_id"`
	Status       RegistrationStatus `db:"status"`
	Count        int                `db:"count"`
	Participants int                `db:"participants"`
}

// DecisionTally is one (event, action) bucket of gate decisions. Registrations
// counts distinct registrations, since decisions are appended per scan.
type DecisionTally struct {
	EventID       string         `db:"event_id"`
	Action        DecisionAction `db:"action"`
	Count         int            `db:"count"`
	Registrations int            `db:"registrations"`
}
