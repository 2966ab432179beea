package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gardenia-api/internal/dto"
	"github.com/noah-isme/gardenia-api/internal/models"
	appErrors "github.com/noah-isme/gardenia-api/pkg/errors"
	"github.com/noah-isme/gardenia-api/pkg/response"
)

type registrationManager interface {
	Submit(ctx context.Context, req dto.SubmitRegistrationRequest) (*dto.RegistrationReceipt, error)
	Get(ctx context.Context, registrationID string) (*dto.RegistrationDetail, error)
	List(ctx context.Context, query dto.RegistrationQuery) ([]models.Registration, *models.Pagination, error)
	UpdateStatus(ctx context.Context, registrationID string, req dto.UpdateRegistrationStatusRequest, actor *models.JWTClaims) (*dto.RegistrationDetail, error)
}

type credentialValidator interface {
	Validate(ctx context.Context, payload string) (*dto.RegistrationView, error)
}

// RegistrationHandler exposes the public form, admin management and the
// gate verifier.
type RegistrationHandler struct {
	registrations registrationManager
	verifier      credentialValidator
}

// NewRegistrationHandler constructs the handler.
func NewRegistrationHandler(registrations registrationManager, verifier credentialValidator) *RegistrationHandler {
	return &RegistrationHandler{registrations: registrations, verifier: verifier}
}

// Submit godoc
// @Summary Register for an event
// @Description Validates the form against the event rules and issues a registration id and QR payload
// @Tags Registrations
// @Accept json
// @Produce json
// @Param payload body dto.SubmitRegistrationRequest true "Registration form"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /registrations [post]
func (h *RegistrationHandler) Submit(c *gin.Context) {
	var req dto.SubmitRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "invalid registration payload")
		return
	}
	receipt, err := h.registrations.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, receipt)
}

// List godoc
// @Summary List registrations
// @Tags Registrations
// @Produce json
// @Param eventId query string false "Event"
// @Param status query string false "PENDING, APPROVED or REJECTED"
// @Param search query string false "Leader name, email or registration id"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /registrations [get]
func (h *RegistrationHandler) List(c *gin.Context) {
	var query dto.RegistrationQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, err, "invalid query")
		return
	}
	regs, pagination, err := h.registrations.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, regs, pagination)
}

// Get godoc
// @Summary Get registration
// @Tags Registrations
// @Produce json
// @Param regId path string true "Registration id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /registrations/{regId} [get]
func (h *RegistrationHandler) Get(c *gin.Context) {
	detail, err := h.registrations.Get(c.Request.Context(), c.Param("regId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// UpdateStatus godoc
// @Summary Approve or reject a registration
// @Tags Registrations
// @Accept json
// @Produce json
// @Param regId path string true "Registration id"
// @Param payload body dto.UpdateRegistrationStatusRequest true "New status"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /registrations/{regId}/status [patch]
func (h *RegistrationHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateRegistrationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "invalid status payload")
		return
	}
	detail, err := h.registrations.UpdateStatus(c.Request.Context(), c.Param("regId"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// ValidateID godoc
// @Summary Validate a scanned credential
// @Description Read-only lookup of a registration by id or URL-escaped QR payload
// @Tags Gate
// @Produce json
// @Param regId path string true "Registration id or escaped payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Security BearerAuth
// @Router /registrations/validate/{regId} [get]
func (h *RegistrationHandler) ValidateID(c *gin.Context) {
	h.validate(c, c.Param("regId"))
}

// ValidatePayload godoc
// @Summary Validate a raw scanner payload
// @Tags Gate
// @Accept json
// @Produce json
// @Param payload body dto.ValidatePayloadRequest true "Scanned text"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Security BearerAuth
// @Router /registrations/validate [post]
func (h *RegistrationHandler) ValidatePayload(c *gin.Context) {
	var req dto.ValidatePayloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrMalformedPayload, ""))
		return
	}
	h.validate(c, req.Payload)
}

func (h *RegistrationHandler) validate(c *gin.Context, payload string) {
	view, err := h.verifier.Validate(c.Request.Context(), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}
