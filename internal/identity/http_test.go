// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/identra/internal/platform/middleware"
	"github.com/taibuivan/identra/internal/platform/sec"
)

// # HTTP Fixture

type httpFixture struct {
	router  chi.Router
	repo    *memoryUserRepository
	tokens  *sec.TokenService
	service *Service
}

func newHTTPFixture(t *testing.T) *httpFixture {
	t.Helper()

	repo := newMemoryUserRepository()
	tokens, err := sec.NewTokenService("http-test-signing-key", "identra.test", 15*time.Minute)
	require.NoError(t, err)

	refresh := NewRefreshTokenManager(repo)
	service := NewService(repo, refresh, tokens, newMemoryThrottle(), discardLogger())
	handler := NewHandler(service, discardLogger())

	router := chi.NewRouter()
	router.Use(middleware.Authenticate(tokens))
	router.Mount("/auth", handler.AuthRoutes())
	router.Mount("/users", handler.UserRoutes())

	return &httpFixture{router: router, repo: repo, tokens: tokens, service: service}
}

func (f *httpFixture) do(t *testing.T, method, path string, body any, bearer string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	request := httptest.NewRequest(method, path, reader)
	request.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		request.Header.Set("Authorization", "Bearer "+bearer)
	}

	recorder := httptest.NewRecorder()
	f.router.ServeHTTP(recorder, request)
	return recorder
}

func decodeData(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var envelope struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	return envelope.Data
}

// # Auth Endpoints

func TestHTTPRegisterLoginRefreshRevokeFlow(t *testing.T) {
	fixture := newHTTPFixture(t)

	// Register.
	recorder := fixture.do(t, http.MethodPost, "/auth/register", map[string]string{
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"email":      "ada@example.com",
		"password":   testPassword,
	}, "")
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	registered := decodeData(t, recorder)
	assert.Equal(t, "adalovelace", registered["username"])
	assert.NotContains(t, recorder.Body.String(), testPassword)

	// Login.
	recorder = fixture.do(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "ada@example.com",
		"password": testPassword,
	}, "")
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	session := decodeData(t, recorder)
	accessToken, _ := session["access_token"].(string)
	refreshToken, _ := session["refresh_token"].(string)
	require.NotEmpty(t, accessToken)
	require.NotEmpty(t, refreshToken)
	assert.Equal(t, "Bearer", session["token_type"])

	// Current user with the bearer token.
	recorder = fixture.do(t, http.MethodGet, "/auth/current-user", nil, accessToken)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	assert.Equal(t, "ada@example.com", decodeData(t, recorder)["email"])

	// Refresh without any bearer token: the secret alone authenticates.
	recorder = fixture.do(t, http.MethodPost, "/auth/refresh-token", map[string]string{
		"refresh_token": refreshToken,
	}, "")
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	assert.NotEmpty(t, decodeData(t, recorder)["access_token"])

	// Revoke, then the secret stops working.
	recorder = fixture.do(t, http.MethodPost, "/auth/revoke-refresh-token", map[string]string{
		"refresh_token": refreshToken,
	}, "")
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	assert.Equal(t, refreshToken, decodeData(t, recorder)["token"])

	recorder = fixture.do(t, http.MethodPost, "/auth/refresh-token", map[string]string{
		"refresh_token": refreshToken,
	}, "")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestHTTPRegisterValidation(t *testing.T) {
	fixture := newHTTPFixture(t)

	recorder := fixture.do(t, http.MethodPost, "/auth/register", map[string]string{
		"first_name": "",
		"last_name":  "Lovelace",
		"email":      "not-an-email",
		"password":   "short",
	}, "")

	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "VALIDATION_ERROR")
}

func TestHTTPLoginBadCredentials(t *testing.T) {
	fixture := newHTTPFixture(t)

	recorder := fixture.do(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "nobody@example.com",
		"password": testPassword,
	}, "")

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestHTTPCurrentUserRequiresAuth(t *testing.T) {
	fixture := newHTTPFixture(t)

	recorder := fixture.do(t, http.MethodGet, "/auth/current-user", nil, "")

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestHTTPRevokeMissingToken(t *testing.T) {
	fixture := newHTTPFixture(t)

	recorder := fixture.do(t, http.MethodPost, "/auth/revoke-refresh-token", map[string]string{}, "")

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

// # User Endpoints

func TestHTTPUserLifecycle(t *testing.T) {
	fixture := newHTTPFixture(t)

	registered, err := fixture.service.Register(context.Background(), RegisterInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  testPassword,
	})
	require.NoError(t, err)

	memberToken, err := fixture.tokens.GenerateAccessToken(
		registered.ID, registered.Username, registered.DisplayName(), registered.Email, string(sec.RoleMember),
	)
	require.NoError(t, err)
	adminToken, err := fixture.tokens.GenerateAccessToken(
		registered.ID, registered.Username, registered.DisplayName(), registered.Email, string(sec.RoleAdmin),
	)
	require.NoError(t, err)

	// Read.
	recorder := fixture.do(t, http.MethodGet, "/users/"+registered.ID, nil, memberToken)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	assert.Equal(t, "adalovelace", decodeData(t, recorder)["username"])

	// Update.
	recorder = fixture.do(t, http.MethodPut, "/users/"+registered.ID, map[string]string{
		"first_name": "Augusta",
		"last_name":  "King",
		"email":      "ada@example.com",
	}, memberToken)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	assert.Equal(t, "Augusta", decodeData(t, recorder)["first_name"])

	// Delete requires admin.
	recorder = fixture.do(t, http.MethodDelete, "/users/"+registered.ID, nil, memberToken)
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	recorder = fixture.do(t, http.MethodDelete, "/users/"+registered.ID, nil, adminToken)
	assert.Equal(t, http.StatusNoContent, recorder.Code)

	recorder = fixture.do(t, http.MethodGet, "/users/"+registered.ID, nil, adminToken)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestHTTPUserInvalidID(t *testing.T) {
	fixture := newHTTPFixture(t)

	registered, err := fixture.service.Register(context.Background(), RegisterInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  testPassword,
	})
	require.NoError(t, err)

	token, err := fixture.tokens.GenerateAccessToken(
		registered.ID, registered.Username, registered.DisplayName(), registered.Email, string(sec.RoleMember),
	)
	require.NoError(t, err)

	recorder := fixture.do(t, http.MethodGet, "/users/not-a-uuid", nil, token)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
