package dto

import (
	"time"

	"github.com/noah-isme/gardenia-api/internal/models"
)

// TicketLink describes where a rendered ticket can be downloaded.
type TicketLink struct {
	RegistrationID string              `json:"registrationId"`
	TicketStatus   models.TicketStatus `json:"ticketStatus"`
	DownloadURL    string              `json:"downloadUrl,omitempty"`
	ExpiresAt      *time.Time          `json:"expiresAt,omitempty"`
}
