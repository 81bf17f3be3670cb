package websocket

import (
	"time"

	"device-registry/internal/storage"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MessageTypeDeviceCreated       MessageType = "device_created"
	MessageTypeDeviceUpdated       MessageType = "device_updated"
	MessageTypeDeviceDeleted       MessageType = "device_deleted"
	MessageTypeDeviceStatusChanged MessageType = "device_status_changed"
	MessageTypeDevicePowerChanged  MessageType = "device_power_changed"
)

// Message represents a WebSocket message
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// DeviceEventData carries the device affected by a registry mutation. Device
// is nil for deletions; only the id survives.
type DeviceEventData struct {
	DeviceID int64           `json:"device_id"`
	Device   *storage.Device `json:"device,omitempty"`
}

// NewMessage creates a new message with current timestamp
func NewMessage(msgType MessageType, data interface{}) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

func NewDeviceMessage(msgType MessageType, device *storage.Device) Message {
	return NewMessage(msgType, DeviceEventData{
		DeviceID: device.ID,
		Device:   device,
	})
}

func NewDeviceDeletedMessage(deviceID int64) Message {
	return NewMessage(MessageTypeDeviceDeleted, DeviceEventData{
		DeviceID: deviceID,
	})
}
