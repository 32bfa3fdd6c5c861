package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/calendario/calendario-api/internal/dto"
	"github.com/calendario/calendario-api/internal/service"
	appErrors "github.com/calendario/calendario-api/pkg/errors"
	"github.com/calendario/calendario-api/pkg/response"
)

// AvailabilityHandler wires HTTP endpoints to the availability service.
type AvailabilityHandler struct {
	service *service.AvailabilityService
}

// NewAvailabilityHandler creates a new handler.
func NewAvailabilityHandler(svc *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: svc}
}

// GetMine godoc
// @Summary Get weekly availability
// @Description Returns the owner's weekly availability template, Sunday first
// @Tags Availability
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /availability/me [get]
func (h *AvailabilityHandler) GetMine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	res, err := h.service.GetUserAvailability(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// UpdateMine godoc
// @Summary Update weekly availability
// @Description Replaces the owner's weekly availability template
// @Tags Availability
// @Accept json
// @Produce json
// @Param payload body dto.UpdateAvailabilityRequest true "Weekly template"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /availability/me [put]
func (h *AvailabilityHandler) UpdateMine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.UpdateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid availability payload"))
		return
	}

	if err := h.service.UpdateAvailability(c.Request.Context(), claims.UserID, req); err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"message": "availability updated"}, nil)
}

// GetPublic godoc
// @Summary Get bookable slots for an event
// @Description Returns per-weekday upcoming dates with open slots for a public event. Unknown or private events yield an empty list.
// @Tags Availability
// @Produce json
// @Param eventId path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Router /availability/public/{eventId} [get]
func (h *AvailabilityHandler) GetPublic(c *gin.Context) {
	eventID := c.Param("eventId")
	if eventID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "event id required"))
		return
	}

	res, err := h.service.GetPublicEventAvailability(c.Request.Context(), eventID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}
