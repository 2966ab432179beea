package dto

import (
	"time"

	"github.com/noah-isme/gardenia-api/internal/models"
)

// RecordDecisionRequest is submitted by the gate operator after a scan.
type RecordDecisionRequest struct {
	RegistrationID string     `json:"registrationId" validate:"required,max=64"`
	EventID        string     `json:"eventId" validate:"max=64"`
	Action         string     `json:"action" validate:"required"`
	Reason         string     `json:"reason" validate:"max=500"`
	ScannedAt      *time.Time `json:"scannedAt" validate:"required"`
}

// DecisionHistory lists every decision for one registration. LatestAction is
// reporting sugar; older rows are never superseded in storage.
type DecisionHistory struct {
	RegistrationID string                 `json:"registrationId"`
	LatestAction   *models.DecisionAction `json:"latestAction,omitempty"`
	Count          int                    `json:"count"`
	Decisions      []models.EntryDecision `json:"decisions"`
}

// DecisionQuery captures audit review query parameters.
type DecisionQuery struct {
	EventID  string `form:"eventId"`
	RegID    string `form:"regId"`
	Action   string `form:"action"`
	From     string `form:"from"`
	To       string `form:"to"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
	Format   string `form:"format"`
}

// ExportFile is a rendered audit export.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}
