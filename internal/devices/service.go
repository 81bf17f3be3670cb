package devices

import (
	"context"
	"errors"

	"device-registry/internal/storage"
)

var ErrEmptyName = errors.New("device name must not be empty")

// DeviceStore is the slice of the persistence layer the device service needs.
// Every operation re-reads from the store; nothing is cached.
type DeviceStore interface {
	ListDevices(ctx context.Context) ([]*storage.Device, error)
	GetDeviceByID(ctx context.Context, id int64) (*storage.Device, error)
	InsertDevice(ctx context.Context, d *storage.Device) (*storage.Device, error)
	UpdateDevice(ctx context.Context, id int64, d *storage.Device) error
	UpdateDeviceOnline(ctx context.Context, id int64, isOnline bool) error
	UpdateDevicePower(ctx context.Context, id int64, isOn bool) error
	DeleteDevice(ctx context.Context, id int64) error
	CountDevices(ctx context.Context) (int64, error)
}

// Service is the CRUD facade over the device store. Mutations persist
// synchronously before returning; concurrent writers are last-write-wins.
type Service struct {
	store DeviceStore
}

func NewService(store DeviceStore) *Service {
	return &Service{store: store}
}

// ListAll returns every device row. No pagination, no ordering contract.
func (s *Service) ListAll(ctx context.Context) ([]*storage.Device, error) {
	return s.store.ListDevices(ctx)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*storage.Device, error) {
	return s.store.GetDeviceByID(ctx, id)
}

// Add inserts a device and returns the row including its assigned id.
func (s *Service) Add(ctx context.Context, d *storage.Device) (*storage.Device, error) {
	if d.Name == "" {
		return nil, ErrEmptyName
	}
	return s.store.InsertDevice(ctx, d)
}

// Update replaces name, type, location, temperature, batteryLevel and
// isOnline on the matching row. id and isOn are untouched.
func (s *Service) Update(ctx context.Context, id int64, d *storage.Device) error {
	if d.Name == "" {
		return ErrEmptyName
	}
	return s.store.UpdateDevice(ctx, id, d)
}

// UpdateOnlineStatus sets only isOnline.
func (s *Service) UpdateOnlineStatus(ctx context.Context, id int64, isOnline bool) error {
	return s.store.UpdateDeviceOnline(ctx, id, isOnline)
}

// UpdatePowerStatus sets only isOn.
func (s *Service) UpdatePowerStatus(ctx context.Context, id int64, isOn bool) error {
	return s.store.UpdateDevicePower(ctx, id, isOn)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.store.DeleteDevice(ctx, id)
}
