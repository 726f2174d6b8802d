// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package identity

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/identra/internal/platform/middleware"
	requestutil "github.com/taibuivan/identra/internal/platform/request"
	"github.com/taibuivan/identra/internal/platform/respond"
	"github.com/taibuivan/identra/internal/platform/sec"
	"github.com/taibuivan/identra/internal/platform/validate"
)

// # HTTP Transport

// Handler exposes the credential lifecycle over HTTP.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler creates the identity HTTP handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// AuthRoutes returns the router for /auth endpoints.
//
// The refresh and revoke endpoints are deliberately outside the RequireAuth
// group: they authenticate by the refresh secret in the body, so they must
// keep working after the short-lived access token has expired.
func (h *Handler) AuthRoutes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", h.register)
	router.Post("/login", h.login)
	router.Post("/refresh-token", h.refreshToken)
	router.Post("/revoke-refresh-token", h.revokeRefreshToken)

	router.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth)
		protected.Get("/current-user", h.currentUser)
	})

	return router
}

// UserRoutes returns the router for /users endpoints. All of them require an
// authenticated caller; deletion additionally requires the admin role.
func (h *Handler) UserRoutes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/{id}", h.getUser)
	router.Put("/{id}", h.updateUser)

	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))
		admin.Delete("/{id}", h.deleteUser)
	})

	return router
}

// # Request Payloads

type registerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Gender    string `json:"gender"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type updateUserRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Gender    string `json:"gender"`
}

// # Response Payloads

type loginResponse struct {
	AccessToken           string `json:"access_token"`
	TokenType             string `json:"token_type"`
	ExpiresIn             int64  `json:"expires_in"`
	RefreshToken          string `json:"refresh_token"`
	RefreshTokenExpiresAt string `json:"refresh_token_expires_at"`
	User                  *User  `json:"user"`
}

type refreshResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	User        *User  `json:"user"`
}

type revokeResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

// # Handlers

// register handles POST /auth/register.
func (h *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var payload registerRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.
		Required(FieldFirstName, payload.FirstName).MaxLen(FieldFirstName, payload.FirstName, 64).
		Required(FieldLastName, payload.LastName).MaxLen(FieldLastName, payload.LastName, 64).
		Required(FieldEmail, payload.Email).Email(FieldEmail, payload.Email).
		Required(FieldPassword, payload.Password).MinLen(FieldPassword, payload.Password, 8).
		MaxLen(FieldGender, payload.Gender, 32)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := h.service.Register(request.Context(), RegisterInput{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Email:     payload.Email,
		Password:  payload.Password,
		Gender:    payload.Gender,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

// login handles POST /auth/login.
func (h *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var payload loginRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.
		Required(FieldEmail, payload.Email).Email(FieldEmail, payload.Email).
		Required(FieldPassword, payload.Password)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := h.service.Login(request.Context(), LoginInput{
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, loginResponse{
		AccessToken:           session.AccessToken,
		TokenType:             "Bearer",
		ExpiresIn:             int64(h.service.tokenProvider.AccessTokenTTL().Seconds()),
		RefreshToken:          session.RefreshToken,
		RefreshTokenExpiresAt: session.RefreshTokenExpiresAt.Format(time.RFC3339),
		User:                  session.User,
	})
}

// refreshToken handles POST /auth/refresh-token.
func (h *Handler) refreshToken(writer http.ResponseWriter, request *http.Request) {
	var payload refreshTokenRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if payload.RefreshToken == "" {
		respond.Error(writer, request, validate.RequiredError(FieldRefreshToken, "Refresh token is required"))
		return
	}

	session, err := h.service.Refresh(request.Context(), payload.RefreshToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, refreshResponse{
		AccessToken: session.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.service.tokenProvider.AccessTokenTTL().Seconds()),
		User:        session.User,
	})
}

// revokeRefreshToken handles POST /auth/revoke-refresh-token.
func (h *Handler) revokeRefreshToken(writer http.ResponseWriter, request *http.Request) {
	var payload refreshTokenRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if payload.RefreshToken == "" {
		respond.Error(writer, request, validate.RequiredError(FieldRefreshToken, "Refresh token is required"))
		return
	}

	confirmation, err := h.service.Revoke(request.Context(), payload.RefreshToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, revokeResponse{
		Token:   confirmation.Token,
		Message: confirmation.Message,
	})
}

// currentUser handles GET /auth/current-user.
func (h *Handler) currentUser(writer http.ResponseWriter, request *http.Request) {
	user, err := h.service.CurrentUser(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// getUser handles GET /users/{id}.
func (h *Handler) getUser(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, FieldID)

	validator := &validate.Validator{}
	if err := validator.UUID(FieldID, id).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := h.service.GetByID(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// updateUser handles PUT /users/{id}.
func (h *Handler) updateUser(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, FieldID)

	var payload updateUserRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.
		UUID(FieldID, id).
		Required(FieldFirstName, payload.FirstName).MaxLen(FieldFirstName, payload.FirstName, 64).
		Required(FieldLastName, payload.LastName).MaxLen(FieldLastName, payload.LastName, 64).
		Required(FieldEmail, payload.Email).Email(FieldEmail, payload.Email).
		MaxLen(FieldGender, payload.Gender, 32)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := h.service.Update(request.Context(), id, UpdateInput{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Email:     payload.Email,
		Gender:    payload.Gender,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// deleteUser handles DELETE /users/{id}.
func (h *Handler) deleteUser(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, FieldID)

	validator := &validate.Validator{}
	if err := validator.UUID(FieldID, id).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := h.service.Delete(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
