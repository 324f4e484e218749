package handlers

import (
	"net/http"
	"testing"

	"github.com/smartscale/portfolio-api/internal/dto"
	apierrors "github.com/smartscale/portfolio-api/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthHandler_Login(t *testing.T) {
	env := setupHandlerTestEnv(t, 1024)

	w := env.do(t, jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "admin",
		"password": "smartscale2024",
	}, ""))
	require.Equal(t, http.StatusOK, w.Code)

	response := decode[dto.LoginResponseDTO](t, w)
	assert.NotEmpty(t, response.Token)
	assert.Equal(t, "admin", response.User.Username)
	assert.NotZero(t, response.User.ID)
}

func TestAuthHandler_LoginFailuresLookTheSame(t *testing.T) {
	env := setupHandlerTestEnv(t, 1024)

	wrongPassword := env.do(t, jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "admin",
		"password": "wrongpass",
	}, ""))
	unknownUser := env.do(t, jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "nouser",
		"password": "x",
	}, ""))

	require.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	require.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownUser.Body.String())
	assert.Equal(t, apierrors.ErrCodeInvalidCredentials, decode[apierrors.APIError](t, wrongPassword).Code)
}

func TestAuthHandler_LoginRequiresFields(t *testing.T) {
	env := setupHandlerTestEnv(t, 1024)

	w := env.do(t, jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "admin"}, ""))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Verify(t *testing.T) {
	env := setupHandlerTestEnv(t, 1024)

	w := env.do(t, jsonRequest(t, http.MethodPost, "/api/auth/verify", nil, env.token(t)))
	require.Equal(t, http.StatusOK, w.Code)
	response := decode[dto.VerifyResponseDTO](t, w)
	assert.True(t, response.Valid)
	assert.Equal(t, "admin", response.User.Username)

	w = env.do(t, jsonRequest(t, http.MethodPost, "/api/auth/verify", nil, ""))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, jsonRequest(t, http.MethodPost, "/api/auth/verify", nil, "garbage"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apierrors.ErrCodeInvalidToken, decode[apierrors.APIError](t, w).Code)
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	env := setupHandlerTestEnv(t, 1024)
	token := env.token(t)

	w := env.do(t, jsonRequest(t, http.MethodPost, "/api/auth/change-password", map[string]string{
		"currentPassword": "wrong",
		"newPassword":     "newpass1",
	}, token))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apierrors.ErrCodeInvalidCredentials, decode[apierrors.APIError](t, w).Code)

	w = env.do(t, jsonRequest(t, http.MethodPost, "/api/auth/change-password", map[string]string{
		"currentPassword": "smartscale2024",
		"newPassword":     "short",
	}, token))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apierrors.ErrCodeWeakPassword, decode[apierrors.APIError](t, w).Code)

	w = env.do(t, jsonRequest(t, http.MethodPost, "/api/auth/change-password", map[string]string{
		"currentPassword": "smartscale2024",
	}, token))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, jsonRequest(t, http.MethodPost, "/api/auth/change-password", map[string]string{
		"currentPassword": "smartscale2024",
		"newPassword":     "newpass1",
	}, ""))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, jsonRequest(t, http.MethodPost, "/api/auth/change-password", map[string]string{
		"currentPassword": "smartscale2024",
		"newPassword":     "newpass1",
	}, token))
	require.Equal(t, http.StatusOK, w.Code)

	// The token issued before the change keeps working.
	w = env.do(t, jsonRequest(t, http.MethodPost, "/api/auth/verify", nil, token))
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "admin",
		"password": "newpass1",
	}, ""))
	assert.Equal(t, http.StatusOK, w.Code)
}
