package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gardenia-api/internal/dto"
	"github.com/noah-isme/gardenia-api/internal/models"
	"github.com/noah-isme/gardenia-api/pkg/response"
)

type decisionLog interface {
	Record(ctx context.Context, req dto.RecordDecisionRequest, operator *models.JWTClaims) (*models.EntryDecision, error)
	History(ctx context.Context, regID string) (*dto.DecisionHistory, error)
	List(ctx context.Context, query dto.DecisionQuery) ([]models.EntryDecision, *models.Pagination, error)
	Export(ctx context.Context, query dto.DecisionQuery, actor *models.JWTClaims) (*dto.ExportFile, error)
}

// EntryDecisionHandler records gate decisions and serves the audit trail.
type EntryDecisionHandler struct {
	decisions decisionLog
}

// NewEntryDecisionHandler constructs the handler.
func NewEntryDecisionHandler(decisions decisionLog) *EntryDecisionHandler {
	return &EntryDecisionHandler{decisions: decisions}
}

// Record godoc
// @Summary Record an entry decision
// @Description Appends an ALLOWED or DENIED decision. Earlier decisions are never modified.
// @Tags Gate
// @Accept json
// @Produce json
// @Param payload body dto.RecordDecisionRequest true "Decision"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /entry-decisions [post]
func (h *EntryDecisionHandler) Record(c *gin.Context) {
	var req dto.RecordDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "invalid decision payload")
		return
	}
	decision, err := h.decisions.Record(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, decision)
}

// History godoc
// @Summary Decision history for a registration
// @Tags Gate
// @Produce json
// @Param regId path string true "Registration id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /registrations/{regId}/entry-decisions [get]
func (h *EntryDecisionHandler) History(c *gin.Context) {
	history, err := h.decisions.History(c.Request.Context(), c.Param("regId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history, nil)
}

// List godoc
// @Summary List entry decisions
// @Tags Audit
// @Produce json
// @Param eventId query string false "Event"
// @Param regId query string false "Registration id"
// @Param action query string false "ALLOWED or DENIED"
// @Param from query string false "RFC3339 lower bound on scan time"
// @Param to query string false "RFC3339 upper bound on scan time"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /entry-decisions [get]
func (h *EntryDecisionHandler) List(c *gin.Context) {
	var query dto.DecisionQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, err, "invalid query")
		return
	}
	decisions, pagination, err := h.decisions.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, decisions, pagination)
}

// Export godoc
// @Summary Export entry decisions
// @Tags Audit
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Param eventId query string false "Event"
// @Param action query string false "ALLOWED or DENIED"
// @Param from query string false "RFC3339 lower bound on scan time"
// @Param to query string false "RFC3339 upper bound on scan time"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /entry-decisions/export [get]
func (h *EntryDecisionHandler) Export(c *gin.Context) {
	var query dto.DecisionQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, err, "invalid query")
		return
	}
	file, err := h.decisions.Export(c.Request.Context(), query, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.ContentType, file.Filename, file.Data)
}
