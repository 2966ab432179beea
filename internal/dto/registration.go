package dto

import (
	"time"

	"github.com/noah-isme/gardenia-api/internal/models"
)

// PersonInput is a leader or team member as submitted by the form.
type PersonInput struct {
	Name                  string `json:"name" validate:"required,max=120"`
	Email                 string `json:"email" validate:"omitempty,email,max=160"`
	Phone                 string `json:"phone" validate:"omitempty,max=20"`
	RegisterNumber        string `json:"registerNumber" validate:"max=40"`
	CollegeName           string `json:"collegeName" validate:"max=160"`
	CollegeRegisterNumber string `json:"collegeRegisterNumber" validate:"max=40"`
}

// SubmitRegistrationRequest is the public registration form. The number of
// team members is bounded by the event's team size, not here.
type SubmitRegistrationRequest struct {
	EventID             string        `json:"eventId" validate:"required,max=64"`
	IsGardenCityStudent bool          `json:"isGardenCityStudent"`
	Leader              PersonInput   `json:"leader"`
	TeamMembers         []PersonInput `json:"teamMembers" validate:"dive"`
}

// RegistrationReceipt is returned once a registration is stored.
type RegistrationReceipt struct {
	RegistrationID string                    `json:"registrationId"`
	QRPayload      string                    `json:"qrPayload"`
	Status         models.RegistrationStatus `json:"status"`
	TicketStatus   models.TicketStatus       `json:"ticketStatus"`
}

// EventSummary is the slice of event metadata a gate operator needs.
type EventSummary struct {
	CustomID   string `json:"customId"`
	Title      string `json:"title"`
	Category   string `json:"category"`
	Department string `json:"department"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Location   string `json:"location"`
}

// RegistrationView is the read-only projection returned by validation.
type RegistrationView struct {
	RegistrationID      string                    `json:"registrationId"`
	EventID             string                    `json:"eventId"`
	Status              models.RegistrationStatus `json:"status"`
	IsGardenCityStudent bool                      `json:"isGardenCityStudent"`
	Leader              models.Person             `json:"leader"`
	TeamMembers         models.People             `json:"teamMembers"`
	FinalEventDate      string                    `json:"finalEventDate"`
	TicketStatus        models.TicketStatus       `json:"ticketStatus"`
	Event               EventSummary              `json:"event"`
	CreatedAt           time.Time                 `json:"createdAt"`
}

// RegistrationDetail extends the view with admin-only ticket access.
type RegistrationDetail struct {
	RegistrationView
	Ticket *TicketLink `json:"ticket,omitempty"`
}

// UpdateRegistrationStatusRequest changes the approval status.
type UpdateRegistrationStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING APPROVED REJECTED"`
}

// RegistrationQuery captures admin list query parameters.
type RegistrationQuery struct {
	EventID   string `form:"eventId"`
	Status    string `form:"status"`
	Search    string `form:"search"`
	Page      int    `form:"page"`
	PageSize  int    `form:"pageSize"`
	SortOrder string `form:"sortOrder"`
}

// ValidatePayloadRequest carries a raw scanner string.
type ValidatePayloadRequest struct {
	Payload string `json:"payload" validate:"required,max=2048"`
}
