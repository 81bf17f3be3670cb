package rest

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"device-registry/internal/api/websocket"
	"device-registry/internal/devices"
	"device-registry/internal/storage"
	"device-registry/internal/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DeviceRequest struct {
	Name         string   `json:"name" binding:"required"`
	IsOnline     bool     `json:"isOnline"`
	IsOn         bool     `json:"isOn"`
	Type         string   `json:"type"`
	Location     string   `json:"location"`
	Temperature  *float64 `json:"temperature"`
	BatteryLevel *int     `json:"batteryLevel"`
}

func (r *DeviceRequest) toDevice() *storage.Device {
	return &storage.Device{
		Name:         r.Name,
		IsOnline:     r.IsOnline,
		IsOn:         r.IsOn,
		Type:         r.Type,
		Location:     r.Location,
		Temperature:  r.Temperature,
		BatteryLevel: r.BatteryLevel,
	}
}

func deviceID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse("DEVICE_400", "Invalid device id", nil))
		return 0, false
	}
	return id, true
}

// GET /devices
func (s *Server) listDevices(c *gin.Context) {
	list, err := s.deviceService.ListAll(c.Request.Context())
	if err != nil {
		s.logger.Error("Failed to list devices", zap.Error(err))
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse("DEVICE_500", "Failed to list devices", nil))
		return
	}

	c.JSON(http.StatusOK, list)
}

// GET /devices/:id
func (s *Server) getDevice(c *gin.Context) {
	id, ok := deviceID(c)
	if !ok {
		return
	}

	device, err := s.deviceService.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, types.NewErrorResponse("DEVICE_404", "Device not found", nil))
			return
		}
		s.logger.Error("Failed to get device", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse("DEVICE_500", "Failed to get device", nil))
		return
	}

	c.JSON(http.StatusOK, device)
}

// POST /devices/add
func (s *Server) addDevice(c *gin.Context) {
	var req DeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse("DEVICE_400", "Invalid request body", err.Error()))
		return
	}

	created, err := s.deviceService.Add(c.Request.Context(), req.toDevice())
	if err != nil {
		if errors.Is(err, devices.ErrEmptyName) {
			c.JSON(http.StatusBadRequest, types.NewErrorResponse("DEVICE_400", "Device name is required", nil))
			return
		}
		s.logger.Error("Failed to add device", zap.Error(err))
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse("DEVICE_500", "Failed to add device", nil))
		return
	}

	s.wsHub.Broadcast(websocket.NewDeviceMessage(websocket.MessageTypeDeviceCreated, created))

	c.Header("Location", fmt.Sprintf("/devices/%d", created.ID))
	c.JSON(http.StatusCreated, created)
}

// PUT /devices/:id
func (s *Server) updateDevice(c *gin.Context) {
	id, ok := deviceID(c)
	if !ok {
		return
	}

	var req DeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse("DEVICE_400", "Invalid request body", err.Error()))
		return
	}

	if !s.applyDeviceError(c, id, s.deviceService.Update(c.Request.Context(), id, req.toDevice())) {
		return
	}

	s.broadcastDeviceState(c, id, websocket.MessageTypeDeviceUpdated)
	c.Status(http.StatusNoContent)
}

// PATCH /devices/:id/status — body is a bare JSON boolean.
func (s *Server) updateDeviceStatus(c *gin.Context) {
	id, ok := deviceID(c)
	if !ok {
		return
	}

	var isOnline bool
	if err := c.ShouldBindJSON(&isOnline); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse("DEVICE_400", "Body must be a JSON boolean", nil))
		return
	}

	if !s.applyDeviceError(c, id, s.deviceService.UpdateOnlineStatus(c.Request.Context(), id, isOnline)) {
		return
	}

	s.broadcastDeviceState(c, id, websocket.MessageTypeDeviceStatusChanged)
	c.Status(http.StatusNoContent)
}

// PATCH /devices/:id/power — body is a bare JSON boolean.
func (s *Server) updateDevicePower(c *gin.Context) {
	id, ok := deviceID(c)
	if !ok {
		return
	}

	var isOn bool
	if err := c.ShouldBindJSON(&isOn); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse("DEVICE_400", "Body must be a JSON boolean", nil))
		return
	}

	if !s.applyDeviceError(c, id, s.deviceService.UpdatePowerStatus(c.Request.Context(), id, isOn)) {
		return
	}

	s.broadcastDeviceState(c, id, websocket.MessageTypeDevicePowerChanged)
	c.Status(http.StatusNoContent)
}

// DELETE /devices/:id
func (s *Server) deleteDevice(c *gin.Context) {
	id, ok := deviceID(c)
	if !ok {
		return
	}

	if !s.applyDeviceError(c, id, s.deviceService.Delete(c.Request.Context(), id)) {
		return
	}

	s.wsHub.Broadcast(websocket.NewDeviceDeletedMessage(id))
	c.Status(http.StatusNoContent)
}

// applyDeviceError maps a mutation error to a response. Returns true when
// the mutation succeeded.
func (s *Server) applyDeviceError(c *gin.Context, id int64, err error) bool {
	if err == nil {
		return true
	}

	switch {
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, types.NewErrorResponse("DEVICE_404", "Device not found", nil))
	case errors.Is(err, devices.ErrEmptyName):
		c.JSON(http.StatusBadRequest, types.NewErrorResponse("DEVICE_400", "Device name is required", nil))
	default:
		s.logger.Error("Device mutation failed", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse("DEVICE_500", "Device operation failed", nil))
	}
	return false
}

// broadcastDeviceState re-reads the row and pushes it to dashboard sockets.
// Best effort; the REST response does not depend on it.
func (s *Server) broadcastDeviceState(c *gin.Context, id int64, msgType websocket.MessageType) {
	device, err := s.deviceService.GetByID(c.Request.Context(), id)
	if err != nil {
		s.logger.Warn("Failed to load device for broadcast", zap.Int64("id", id), zap.Error(err))
		return
	}
	s.wsHub.Broadcast(websocket.NewDeviceMessage(msgType, device))
}
