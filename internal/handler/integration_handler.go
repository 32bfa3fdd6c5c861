package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/calendario/calendario-api/internal/models"
	"github.com/calendario/calendario-api/internal/service"
	appErrors "github.com/calendario/calendario-api/pkg/errors"
	"github.com/calendario/calendario-api/pkg/response"
)

// IntegrationHandler wires HTTP endpoints to the integration service.
type IntegrationHandler struct {
	service     *service.IntegrationService
	redirectURL string
}

// NewIntegrationHandler creates a new handler. redirectURL is where the
// browser lands after the OAuth callback completes.
func NewIntegrationHandler(svc *service.IntegrationService, redirectURL string) *IntegrationHandler {
	return &IntegrationHandler{service: svc, redirectURL: redirectURL}
}

// Status godoc
// @Summary Integration status
// @Description Report whether the owner has connected the calendar provider
// @Tags Integrations
// @Produce json
// @Param appType query string false "Provider app type" default(GOOGLE_MEET_AND_CALENDAR)
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /integrations/status [get]
func (h *IntegrationHandler) Status(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	appType := models.IntegrationAppType(c.DefaultQuery("appType", string(models.IntegrationGoogleMeet)))
	res, err := h.service.Status(c.Request.Context(), claims.UserID, appType)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// ConnectURL godoc
// @Summary Provider consent URL
// @Description Returns the OAuth consent URL to connect the calendar provider
// @Tags Integrations
// @Produce json
// @Param appType query string false "Provider app type" default(GOOGLE_MEET_AND_CALENDAR)
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /integrations/connect [get]
func (h *IntegrationHandler) ConnectURL(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	appType := models.IntegrationAppType(c.DefaultQuery("appType", string(models.IntegrationGoogleMeet)))
	res, err := h.service.ConnectURL(c.Request.Context(), claims.UserID, appType)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Callback godoc
// @Summary OAuth callback
// @Description Completes the provider OAuth flow and redirects to the app
// @Tags Integrations
// @Produce json
// @Param code query string true "Authorization code"
// @Param state query string true "Opaque state from the consent URL"
// @Success 302
// @Failure 400 {object} response.Envelope
// @Router /integrations/callback [get]
func (h *IntegrationHandler) Callback(c *gin.Context) {
	if err := h.service.HandleCallback(c.Request.Context(), c.Query("code"), c.Query("state")); err != nil {
		response.Error(c, err)
		return
	}

	if h.redirectURL != "" {
		c.Redirect(http.StatusFound, h.redirectURL)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "integration connected"}, nil)
}
