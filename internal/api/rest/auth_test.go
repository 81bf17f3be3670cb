package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"device-registry/internal/storage"

	"github.com/stretchr/testify/require"
)

func TestRegister_SucceedsOnceThenConflicts(t *testing.T) {
	t.Parallel()

	s, store := newTestServer(t)

	body := map[string]string{"username": "alice", "password": "secret1"}

	resp := doJSON(t, s, http.MethodPost, "/auth/register", "", body)
	require.Equal(t, http.StatusOK, resp.Code)

	// New users always get the User role.
	user, err := store.GetUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, storage.RoleUser, user.Role)

	resp = doJSON(t, s, http.MethodPost, "/auth/register", "", body)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestRegister_RejectsMissingFields(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)

	resp := doJSON(t, s, http.MethodPost, "/auth/register", "", map[string]string{"username": "alice"})
	require.Equal(t, http.StatusBadRequest, resp.Code)

	resp = doJSON(t, s, http.MethodPost, "/auth/register", "", map[string]string{"password": "secret1"})
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestLogin_ReturnsTokenWithUserClaims(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)

	resp := doJSON(t, s, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "alice", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	token := loginAs(t, s, "alice", "secret1")

	claims, err := s.authService.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Name)
	require.Equal(t, storage.RoleUser, claims.Role)
}

func TestLogin_RejectsWrongCredentials(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)

	resp := doJSON(t, s, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "admin", "password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, resp.Code)

	var out LoginResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	require.Empty(t, out.Token)

	resp = doJSON(t, s, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "nobody", "password": "secret1",
	})
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLogin_DefaultAdminWorks(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)

	token := loginAs(t, s, "admin", "123456")

	claims, err := s.authService.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, storage.RoleAdmin, claims.Role)
}
