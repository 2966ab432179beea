package models

import "time"

// EventType distinguishes solo events from team events.
type EventType string

const (
	EventTypeIndividual EventType = "Individual"
	EventTypeGroup      EventType = "Group"
)

// Event is a festival event from the admin managed catalog.
type Event struct {
	CustomID         string    `db:"custom_id" json:"customId"`
	Title            string    `db:"title" json:"title"`
	Category         string    `db:"category" json:"category"`
	Type             EventType `db:"type" json:"type"`
	TeamSizeMin      int       `db:"team_size_min" json:"teamSizeMin"`
	TeamSizeMax      int       `db:"team_size_max" json:"teamSizeMax"`
	Department       string    `db:"department" json:"department"`
	Date             string    `db:"date" json:"date"`
	ExternalDate     string    `db:"external_date" json:"externalDate,omitempty"`
	Time             string    `db:"time" json:"time"`
	Location         string    `db:"location" json:"location"`
	RegistrationOpen bool      `db:"registration_open" json:"registrationOpen"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time `db:"updated_at" json:"updatedAt"`
}

// TeamBounds returns the inclusive participant range, leader included.
// Individual events always resolve to exactly one participant.
func (e Event) TeamBounds() (min, max int) {
	if e.Type == EventTypeIndividual {
		return 1, 1
	}
	min, max = e.TeamSizeMin, e.TeamSizeMax
	if min < 1 {
		min = 1
	}
	if max < min {
		max = min
	}
	return min, max
}

// FinalDate picks the date shown to a participant. External participants may
// attend on a separate day.
func (e Event) FinalDate(isGardenCityStudent bool) string {
	if !isGardenCityStudent && e.ExternalDate != "" {
		return e.ExternalDate
	}
	return e.Date
}

// Snapshot copies the fields an entry decision preserves.
func (e Event) Snapshot() EventSnapshot {
	return EventSnapshot{
		CustomID:   e.CustomID,
		Title:      e.Title,
		Category:   e.Category,
		Department: e.Department,
		Date:       e.Date,
		Time:       e.Time,
		Location:   e.Location,
	}
}

// EventFilter narrows catalog listings.
type EventFilter struct {
	Category   string
	Department string
	OpenOnly   bool
}
