package devices

import (
	"context"
	"sort"
	"sync"
	"testing"

	"device-registry/internal/storage"

	"github.com/stretchr/testify/require"
)

// memDeviceStore mirrors the store's per-row semantics in memory.
type memDeviceStore struct {
	mu     sync.Mutex
	rows   map[int64]*storage.Device
	nextID int64
}

func newMemDeviceStore() *memDeviceStore {
	return &memDeviceStore{rows: make(map[int64]*storage.Device), nextID: 1}
}

func (m *memDeviceStore) ListDevices(_ context.Context) ([]*storage.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*storage.Device, 0, len(m.rows))
	for _, d := range m.rows {
		copy := *d
		out = append(out, &copy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memDeviceStore) GetDeviceByID(_ context.Context, id int64) (*storage.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.rows[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copy := *d
	return &copy, nil
}

func (m *memDeviceStore) InsertDevice(_ context.Context, d *storage.Device) (*storage.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := *d
	row.ID = m.nextID
	m.nextID++
	m.rows[row.ID] = &row
	copy := row
	return &copy, nil
}

func (m *memDeviceStore) UpdateDevice(_ context.Context, id int64, d *storage.Device) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return storage.ErrNotFound
	}
	row.Name = d.Name
	row.Type = d.Type
	row.Location = d.Location
	row.Temperature = d.Temperature
	row.BatteryLevel = d.BatteryLevel
	row.IsOnline = d.IsOnline
	return nil
}

func (m *memDeviceStore) UpdateDeviceOnline(_ context.Context, id int64, isOnline bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return storage.ErrNotFound
	}
	row.IsOnline = isOnline
	return nil
}

func (m *memDeviceStore) UpdateDevicePower(_ context.Context, id int64, isOn bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return storage.ErrNotFound
	}
	row.IsOn = isOn
	return nil
}

func (m *memDeviceStore) DeleteDevice(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memDeviceStore) CountDevices(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.rows)), nil
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestService_AddAssignsIDAndRoundTrips(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := NewService(newMemDeviceStore())

	created, err := svc.Add(ctx, &storage.Device{
		Name:         "Thermostat A",
		Type:         "Sensor",
		Location:     "Lobby",
		Temperature:  floatPtr(21.5),
		BatteryLevel: intPtr(80),
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.False(t, created.IsOnline)
	require.False(t, created.IsOn)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created, got)
}

func TestService_AddRejectsEmptyName(t *testing.T) {
	t.Parallel()

	svc := NewService(newMemDeviceStore())
	_, err := svc.Add(context.Background(), &storage.Device{Name: ""})
	require.ErrorIs(t, err, ErrEmptyName)
}

func TestService_UpdateDoesNotTouchPowerState(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := NewService(newMemDeviceStore())

	created, err := svc.Add(ctx, &storage.Device{Name: "Light 1", IsOn: true})
	require.NoError(t, err)

	err = svc.Update(ctx, created.ID, &storage.Device{
		Name:     "Light 1 renamed",
		Type:     "Light",
		Location: "Hallway",
		IsOnline: true,
	})
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Light 1 renamed", got.Name)
	require.True(t, got.IsOnline)
	require.True(t, got.IsOn, "Update must not modify isOn")
}

func TestService_UpdateOnlineStatusChangesOnlyThatField(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := NewService(newMemDeviceStore())

	created, err := svc.Add(ctx, &storage.Device{
		Name:         "Camera 1",
		Type:         "Camera",
		Location:     "Entrance",
		IsOn:         true,
		Temperature:  floatPtr(28),
		BatteryLevel: intPtr(100),
	})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateOnlineStatus(ctx, created.ID, true))

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, got.IsOnline)

	// Every other field is unchanged.
	got.IsOnline = created.IsOnline
	require.Equal(t, created, got)
}

func TestService_DeleteThenGetFails(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := NewService(newMemDeviceStore())

	created, err := svc.Add(ctx, &storage.Device{Name: "Doomed"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.GetByID(ctx, created.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.ErrorIs(t, svc.Delete(ctx, created.ID), storage.ErrNotFound)
}

func TestService_MutationsOnMissingIDReturnNotFound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := NewService(newMemDeviceStore())

	require.ErrorIs(t, svc.Update(ctx, 42, &storage.Device{Name: "x"}), storage.ErrNotFound)
	require.ErrorIs(t, svc.UpdateOnlineStatus(ctx, 42, true), storage.ErrNotFound)
	require.ErrorIs(t, svc.UpdatePowerStatus(ctx, 42, true), storage.ErrNotFound)
}
