package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"device-registry/internal/api/websocket"
	"device-registry/internal/auth"
	"device-registry/internal/config"
	"device-registry/internal/devices"
	"device-registry/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memStore is an in-memory stand-in for the Postgres client, implementing
// both the user and device store interfaces.
type memStore struct {
	mu      sync.Mutex
	users   []*storage.User
	devices map[int64]*storage.Device
	nextID  int64
}

func newMemStore() *memStore {
	return &memStore{devices: make(map[int64]*storage.Device), nextID: 1}
}

func (m *memStore) GetUserByUsername(_ context.Context, username string) (*storage.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *memStore) GetUserByCredentials(_ context.Context, username, password string) (*storage.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username && u.Password == password {
			return u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *memStore) CreateUser(_ context.Context, username, password, role string) (*storage.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user := &storage.User{
		ID:        uuid.New(),
		Username:  username,
		Password:  password,
		Role:      role,
		CreatedAt: time.Now(),
	}
	m.users = append(m.users, user)
	return user, nil
}

func (m *memStore) HasUserWithRole(_ context.Context, role string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Role == role {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) ListDevices(_ context.Context) ([]*storage.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*storage.Device, 0, len(m.devices))
	for _, d := range m.devices {
		copy := *d
		out = append(out, &copy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) GetDeviceByID(_ context.Context, id int64) (*storage.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.devices[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copy := *d
	return &copy, nil
}

func (m *memStore) InsertDevice(_ context.Context, d *storage.Device) (*storage.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := *d
	row.ID = m.nextID
	m.nextID++
	m.devices[row.ID] = &row
	copy := row
	return &copy, nil
}

func (m *memStore) UpdateDevice(_ context.Context, id int64, d *storage.Device) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.devices[id]
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

func (m *memStore) UpdateDeviceOnline(_ context.Context, id int64, isOnline bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.devices[id]
	if !ok {
		return storage.ErrNotFound
	}
	row.IsOnline = isOnline
	return nil
}

func (m *memStore) UpdateDevicePower(_ context.Context, id int64, isOn bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.devices[id]
	if !ok {
		return storage.ErrNotFound
	}
	row.IsOn = isOn
	return nil
}

func (m *memStore) DeleteDevice(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.devices[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.devices, id)
	return nil
}

func (m *memStore) CountDevices(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.devices)), nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{HTTPPort: 0},
		JWT: config.JWTConfig{
			Issuer:   "registry-test",
			Audience: "dashboard-test",
			TokenTTL: time.Hour,
		},
		CORS: config.CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Bootstrap: config.BootstrapConfig{
			AdminUsername: "admin",
			AdminPassword: "123456",
		},
	}
}

// newTestServer wires a Server over an in-memory store with the default
// admin already seeded.
func newTestServer(t *testing.T) (*Server, *memStore) {
	t.Helper()

	cfg := testConfig()
	store := newMemStore()
	logger := zap.NewNop()

	authService := auth.NewService(store, cfg.JWT, logger)
	require.NoError(t, authService.EnsureAdmin(context.Background(), cfg.Bootstrap))

	deviceService := devices.NewService(store)
	wsHub := websocket.NewHub(logger, authService)

	return NewServer(cfg, authService, deviceService, wsHub, logger), store
}

func doJSON(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp := httptest.NewRecorder()
	s.Router().ServeHTTP(resp, req)
	return resp
}

func loginAs(t *testing.T, s *Server, username, password string) string {
	t.Helper()

	resp := doJSON(t, s, http.MethodPost, "/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var out LoginResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}
