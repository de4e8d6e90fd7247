package handler

import (
	"errors"
	"net/http"
	"strings"

	"socialnet/internal/httputil"
	"socialnet/internal/model"
	"socialnet/internal/service"
)

// AuthHandler serves session endpoints. Registering or logging in opens a
// session in the directory and returns an access token naming the user.
type AuthHandler struct {
	network *service.NetworkService
	auth    *service.AuthService
}

func NewAuthHandler(network *service.NetworkService, auth *service.AuthService) *AuthHandler {
	return &AuthHandler{network: network, auth: auth}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	user, err := h.network.Register(r.Context(), &req)
	if err != nil {
		writeServiceError(w, "register", err)
		return
	}
	h.writeSession(w, http.StatusCreated, user)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		httputil.WriteBadRequest(w, "Name is required")
		return
	}

	user, err := h.network.Login(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrUserNotFound), errors.Is(err, model.ErrWrongPassword):
			httputil.WriteUnauthorized(w, "Invalid name or password")
		default:
			writeServiceError(w, "login", err)
		}
		return
	}
	h.writeSession(w, http.StatusOK, user)
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	name, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.network.Logout(r.Context(), name); err != nil {
		writeServiceError(w, "logout", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) writeSession(w http.ResponseWriter, status int, user *model.UserSummary) {
	token, err := h.auth.IssueToken(user.Name)
	if err != nil {
		writeServiceError(w, "issue token", err)
		return
	}
	httputil.WriteJSON(w, status, model.LoginResponse{
		User:        *user,
		AccessToken: token,
		ExpiresIn:   h.auth.ExpiresIn(),
	})
}
