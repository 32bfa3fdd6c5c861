package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/calendario/calendario-api/internal/dto"
	"github.com/calendario/calendario-api/internal/service"
	appErrors "github.com/calendario/calendario-api/pkg/errors"
	"github.com/calendario/calendario-api/pkg/response"
)

// EventHandler wires HTTP endpoints to the event service.
type EventHandler struct {
	service *service.EventService
}

// NewEventHandler creates a new handler.
func NewEventHandler(svc *service.EventService) *EventHandler {
	return &EventHandler{service: svc}
}

// Create godoc
// @Summary Create event type
// @Description Create a bookable event type for the authenticated owner
// @Tags Events
// @Accept json
// @Produce json
// @Param payload body dto.CreateEventRequest true "Event payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /events [post]
func (h *EventHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid event payload"))
		return
	}

	res, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, res)
}

// List godoc
// @Summary List event types
// @Description List the owner's event types with booking counts
// @Tags Events
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /events [get]
func (h *EventHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	res, err := h.service.ListForUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Update godoc
// @Summary Update event type
// @Description Edit an event type owned by the authenticated user
// @Tags Events
// @Accept json
// @Produce json
// @Param eventId path string true "Event ID"
// @Param payload body dto.UpdateEventRequest true "Event payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /events/{eventId} [put]
func (h *EventHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid event payload"))
		return
	}

	res, err := h.service.Update(c.Request.Context(), claims.UserID, c.Param("eventId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// TogglePrivacy godoc
// @Summary Toggle event privacy
// @Description Flip an event between public and private
// @Tags Events
// @Produce json
// @Param eventId path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /events/{eventId}/privacy [patch]
func (h *EventHandler) TogglePrivacy(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	isPrivate, err := h.service.TogglePrivacy(c.Request.Context(), claims.UserID, c.Param("eventId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"isPrivate": isPrivate}, nil)
}

// Delete godoc
// @Summary Delete event type
// @Description Remove an event type owned by the authenticated user
// @Tags Events
// @Produce json
// @Param eventId path string true "Event ID"
// @Success 204 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /events/{eventId} [delete]
func (h *EventHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(c.Request.Context(), claims.UserID, c.Param("eventId")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// PublicByUsername godoc
// @Summary Public booking page
// @Description Host profile plus their public event types
// @Tags Events
// @Produce json
// @Param username path string true "Host username"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /events/public/{username} [get]
func (h *EventHandler) PublicByUsername(c *gin.Context) {
	res, err := h.service.GetPublicByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// PublicEvent godoc
// @Summary Public event details
// @Description Resolve one bookable event from a public link
// @Tags Events
// @Produce json
// @Param username path string true "Host username"
// @Param slug path string true "Event slug"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /events/public/{username}/{slug} [get]
func (h *EventHandler) PublicEvent(c *gin.Context) {
	res, err := h.service.GetPublicEvent(c.Request.Context(), c.Param("username"), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}
