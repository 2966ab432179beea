package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gardenia-api/internal/dto"
	"github.com/noah-isme/gardenia-api/internal/models"
	"github.com/noah-isme/gardenia-api/pkg/response"
)

type staffDirectory interface {
	List(ctx context.Context, query dto.StaffQuery) ([]models.User, *models.Pagination, error)
	Create(ctx context.Context, req dto.CreateStaffRequest, actor *models.JWTClaims) (*models.User, error)
	Update(ctx context.Context, id string, req dto.UpdateStaffRequest, actor *models.JWTClaims) (*models.User, error)
}

// StaffHandler manages admin and gate operator accounts.
type StaffHandler struct {
	staff staffDirectory
}

// NewStaffHandler constructs the handler.
func NewStaffHandler(staff staffDirectory) *StaffHandler {
	return &StaffHandler{staff: staff}
}

// List godoc
// @Summary List staff accounts
// @Tags Staff
// @Produce json
// @Param role query string false "ADMIN or GATEKEEPER"
// @Param active query bool false "Active flag"
// @Param search query string false "Email or name"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /staff [get]
func (h *StaffHandler) List(c *gin.Context) {
	var query dto.StaffQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, err, "invalid query")
		return
	}
	users, pagination, err := h.staff.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users, pagination)
}

// Create godoc
// @Summary Create a staff account
// @Tags Staff
// @Accept json
// @Produce json
// @Param payload body dto.CreateStaffRequest true "Account"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /staff [post]
func (h *StaffHandler) Create(c *gin.Context) {
	var req dto.CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "invalid staff payload")
		return
	}
	user, err := h.staff.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// Update godoc
// @Summary Update a staff account
// @Tags Staff
// @Accept json
// @Produce json
// @Param id path string true "Account id"
// @Param payload body dto.UpdateStaffRequest true "Changes"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /staff/{id} [patch]
func (h *StaffHandler) Update(c *gin.Context) {
	var req dto.UpdateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "invalid staff payload")
		return
	}
	user, err := h.staff.Update(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}
