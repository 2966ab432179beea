package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gardenia-api/internal/dto"
	"github.com/noah-isme/gardenia-api/internal/models"
	"github.com/noah-isme/gardenia-api/internal/service"
	"github.com/noah-isme/gardenia-api/pkg/response"
)

type ticketDesk interface {
	Download(ctx context.Context, token string) (*service.TicketDownload, error)
	Requeue(ctx context.Context, registrationID string, actor *models.JWTClaims) (*dto.TicketLink, error)
}

// TicketHandler serves signed ticket downloads and re-rendering.
type TicketHandler struct {
	tickets ticketDesk
}

// NewTicketHandler constructs the handler.
func NewTicketHandler(tickets ticketDesk) *TicketHandler {
	return &TicketHandler{tickets: tickets}
}

// Download godoc
// @Summary Download a ticket
// @Description Streams the ticket PDF for a signed, unexpired token
// @Tags Tickets
// @Produce application/pdf
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /tickets/{token} [get]
func (h *TicketHandler) Download(c *gin.Context) {
	ticket, err := h.tickets.Download(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Cache-Control", "private, no-store")
	response.File(c, "application/pdf", ticket.Filename, ticket.Data)
}

// Requeue godoc
// @Summary Re-render a ticket
// @Tags Tickets
// @Produce json
// @Param regId path string true "Registration id"
// @Success 202 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Security BearerAuth
// @Router /registrations/{regId}/ticket [post]
func (h *TicketHandler) Requeue(c *gin.Context) {
	link, err := h.tickets.Requeue(c.Request.Context(), c.Param("regId"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, link)
}

