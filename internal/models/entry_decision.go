package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DecisionAction is the operator outcome recorded at the gate.
type DecisionAction string

const (
	ActionEntryAllowed DecisionAction = "ENTRY_ALLOWED"
	ActionEntryDenied  DecisionAction = "ENTRY_DENIED"
)

// ParseDecisionAction accepts the short operator form (ALLOWED, DENIED) and
// the stored form, case-insensitively.
func ParseDecisionAction(raw string) (DecisionAction, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "ALLOWED", "ALLOW", string(ActionEntryAllowed):
		return ActionEntryAllowed, true
	case "DENIED", "DENY", string(ActionEntryDenied):
		return ActionEntryDenied, true
	}
	return "", false
}

// EventSnapshot freezes event details at decision time.
type EventSnapshot struct {
	CustomID   string `json:"customId"`
	Title      string `json:"title"`
	Category   string `json:"category,omitempty"`
	Department string `json:"department,omitempty"`
	Date       string `json:"date,omitempty"`
	Time       string `json:"time,omitempty"`
	Location   string `json:"location,omitempty"`
}

// Value marshals the snapshot for JSONB storage.
func (s EventSnapshot) Value() (driver.Value, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal event snapshot: %w", err)
	}
	return data, nil
}

// Scan unmarshals a JSONB snapshot.
func (s *EventSnapshot) Scan(value interface{}) error {
	data, err := jsonBytes(value, "EventSnapshot")
	if err != nil {
		return err
	}
	if len(data) == 0 {
		*s = EventSnapshot{}
		return nil
	}
	if err := json.Unmarshal(data, s); err != nil {
		return fmt.Errorf("unmarshal event snapshot: %w", err)
	}
	return nil
}

// EntryDecision is an immutable record of one admit or deny at the gate.
// RegistrationID references registrations.id; RegID is the human identifier.
type EntryDecision struct {
	ID             string         `db:"id" json:"id"`
	RegistrationID string         `db:"registration_id" json:"registrationId"`
	RegID          string         `db:"reg_id" json:"regId"`
	EventID        string         `db:"event_id" json:"eventId"`
	Leader         Person         `db:"leader" json:"leader"`
	TeamMembers    People         `db:"team_members" json:"teamMembers"`
	EventDetails   EventSnapshot  `db:"event_details" json:"eventDetails"`
	Action         DecisionAction `db:"action" json:"action"`
	Reason         *string        `db:"reason" json:"reason,omitempty"`
	OperatorID     *string        `db:"operator_id" json:"operatorId,omitempty"`
	ScannedAt      time.Time      `db:"scanned_at" json:"scannedAt"`
	LoggedAt       time.Time      `db:"logged_at" json:"loggedAt"`
}

// EntryDecisionFilter narrows audit review queries.
type EntryDecisionFilter struct {
	EventID  string
	RegID    string
	Action   *DecisionAction
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}
