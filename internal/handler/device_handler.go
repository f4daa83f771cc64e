package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/blog-platform-api/internal/models"
	"github.com/noah-isme/blog-platform-api/pkg/response"
)

type deviceService interface {
	List(ctx context.Context, refreshToken string) ([]models.DeviceView, error)
	DeleteOthers(ctx context.Context, refreshToken string) error
	Delete(ctx context.Context, refreshToken, deviceID string) error
}

// DeviceHandler exposes the active sessions of the caller.
type DeviceHandler struct {
	service deviceService
}

// NewDeviceHandler creates a new handler.
func NewDeviceHandler(svc deviceService) *DeviceHandler {
	return &DeviceHandler{service: svc}
}

// List godoc
// @Summary List active devices
// @Tags Security
// @Produce json
// @Success 200 {object} response.Envelope{data=[]models.DeviceView}
// @Failure 401 {object} response.Envelope
// @Router /security/devices [get]
func (h *DeviceHandler) List(c *gin.Context) {
	token, ok := refreshToken(c)
	if !ok {
		return
	}
	devices, err := h.service.List(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, devices, nil)
}

// DeleteOthers godoc
// @Summary Terminate all other sessions
// @Tags Security
// @Success 204
// @Failure 401 {object} response.Envelope
// @Router /security/devices [delete]
func (h *DeviceHandler) DeleteOthers(c *gin.Context) {
	token, ok := refreshToken(c)
	if !ok {
		return
	}
	if err := h.service.DeleteOthers(c.Request.Context(), token); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Delete godoc
// @Summary Terminate one session
// @Tags Security
// @Param deviceId path string true "Device ID"
// @Success 204
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /security/devices/{deviceId} [delete]
func (h *DeviceHandler) Delete(c *gin.Context) {
	token, ok := refreshToken(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), token, c.Param("deviceId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
