package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gardenia-api/internal/dto"
	"github.com/noah-isme/gardenia-api/internal/middleware"
	"github.com/noah-isme/gardenia-api/pkg/response"
)

type dashboardService interface {
	Summary(ctx context.Context, eventID string) (*dto.DashboardSummary, bool, error)
	Refresh(ctx context.Context) error
}

// DashboardHandler exposes the admin overview.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Summary godoc
// @Summary Registration and gate summary
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param eventId query string false "Event custom id"
// @Param refresh query bool false "Bypass the cached summary"
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	if refresh, _ := strconv.ParseBool(c.Query("refresh")); refresh {
		if err := h.service.Refresh(c.Request.Context()); err != nil {
			_ = c.Error(err)
		}
	}
	summary, cacheHit, err := h.service.Summary(c.Request.Context(), c.Query("eventId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "cache_hit", cacheHit)
	response.JSON(c, http.StatusOK, summary, nil, middleware.ExtractMeta(c))
}
