package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"socialnet/internal/httputil"
	"socialnet/internal/service"
)

type UserHandler struct {
	network *service.NetworkService
}

func NewUserHandler(network *service.NetworkService) *UserHandler {
	return &UserHandler{network: network}
}

// List handles GET /users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.network.ListUsers(r.Context()))
}

// Network handles GET /network with the rendered listing.
func (h *UserHandler) Network(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.TextResponse{Text: h.network.Render(r.Context())})
}

// GetProfile handles GET /users/{name}
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.network.Profile(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeServiceError(w, "get profile", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profile)
}

// Follow handles POST /users/{name}/follow
func (h *UserHandler) Follow(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.network.Follow(r.Context(), actor, chi.URLParam(r, "name")); err != nil {
		writeServiceError(w, "follow", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Unfollow handles DELETE /users/{name}/follow
func (h *UserHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.network.Unfollow(r.Context(), actor, chi.URLParam(r, "name")); err != nil {
		writeServiceError(w, "unfollow", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Notifications handles GET /me/notifications
func (h *UserHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	name, ok := currentUser(w, r)
	if !ok {
		return
	}
	res, err := h.network.Notifications(r.Context(), name)
	if err != nil {
		writeServiceError(w, "get notifications", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

// Feed handles GET /me/feed?cursor=&limit=
func (h *UserHandler) Feed(w http.ResponseWriter, r *http.Request) {
	name, ok := currentUser(w, r)
	if !ok {
		return
	}

	var cursor *float64
	if raw := r.URL.Query().Get("cursor"); raw != "" {
		c, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			httputil.WriteBadRequest(w, "Invalid cursor")
			return
		}
		cursor = &c
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		l, err := strconv.Atoi(raw)
		if err != nil {
			httputil.WriteBadRequest(w, "Invalid limit")
			return
		}
		limit = l
	}

	res, err := h.network.Feed(r.Context(), name, cursor, limit)
	if err != nil {
		writeServiceError(w, "get feed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}
