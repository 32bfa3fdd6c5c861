package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/calendario/calendario-api/internal/dto"
	"github.com/calendario/calendario-api/internal/service"
	appErrors "github.com/calendario/calendario-api/pkg/errors"
	"github.com/calendario/calendario-api/pkg/response"
)

// MeetingHandler wires HTTP endpoints to the meeting service.
type MeetingHandler struct {
	service *service.MeetingService
}

// NewMeetingHandler creates a new handler.
func NewMeetingHandler(svc *service.MeetingService) *MeetingHandler {
	return &MeetingHandler{service: svc}
}

// List godoc
// @Summary List meetings
// @Description List the owner's meetings filtered by UPCOMING, PAST, or CANCELLED
// @Tags Meetings
// @Produce json
// @Param filter query string false "UPCOMING, PAST, or CANCELLED"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /meetings [get]
func (h *MeetingHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	res, err := h.service.ListForUser(c.Request.Context(), claims.UserID, c.Query("filter"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// CreateForGuest godoc
// @Summary Book a meeting
// @Description Book a meeting as a guest against a public event
// @Tags Meetings
// @Accept json
// @Produce json
// @Param payload body dto.CreateMeetingRequest true "Booking payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /meetings/public [post]
func (h *MeetingHandler) CreateForGuest(c *gin.Context) {
	var req dto.CreateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid booking payload"))
		return
	}

	res, err := h.service.CreateForGuest(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, res)
}

// Cancel godoc
// @Summary Cancel meeting
// @Description Cancel a scheduled meeting owned by the authenticated user
// @Tags Meetings
// @Produce json
// @Param meetingId path string true "Meeting ID"
// @Success 204 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /meetings/{meetingId}/cancel [put]
func (h *MeetingHandler) Cancel(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Cancel(c.Request.Context(), claims.UserID, c.Param("meetingId")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Export godoc
// @Summary Export meetings
// @Description Download the owner's filtered meetings as CSV or PDF
// @Tags Meetings
// @Produce text/csv
// @Param filter query string false "UPCOMING, PAST, or CANCELLED"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /meetings/export [get]
func (h *MeetingHandler) Export(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	format := service.ExportFormat(c.DefaultQuery("format", string(service.ExportCSV)))
	data, contentType, err := h.service.Export(c.Request.Context(), claims.UserID, c.Query("filter"), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("meetings-%s.%s", time.Now().Format("2006-01-02"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}
