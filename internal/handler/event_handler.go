package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gardenia-api/internal/middleware"
	"github.com/noah-isme/gardenia-api/internal/models"
	"github.com/noah-isme/gardenia-api/pkg/response"
)

type eventReader interface {
	Get(ctx context.Context, customID string) (*models.Event, error)
	List(ctx context.Context, filter models.EventFilter) ([]models.Event, error)
}

// EventHandler serves the public event catalog.
type EventHandler struct {
	events eventReader
}

// NewEventHandler constructs the handler.
func NewEventHandler(events eventReader) *EventHandler {
	return &EventHandler{events: events}
}

// List godoc
// @Summary List events
// @Tags Events
// @Produce json
// @Param category query string false "Category"
// @Param department query string false "Department"
// @Param open query bool false "Only events open for registration"
// @Success 200 {object} response.Envelope
// @Router /events [get]
func (h *EventHandler) List(c *gin.Context) {
	openOnly, _ := strconv.ParseBool(c.Query("open"))
	events, err := h.events.List(c.Request.Context(), models.EventFilter{
		Category:   c.Query("category"),
		Department: c.Query("department"),
		OpenOnly:   openOnly,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "count", len(events))
	response.JSON(c, http.StatusOK, events, nil, middleware.ExtractMeta(c))
}

// Get godoc
// @Summary Get event
// @Tags Events
// @Produce json
// @Param id path string true "Event custom id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /events/{id} [get]
func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.events.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil, middleware.ExtractMeta(c))
}
