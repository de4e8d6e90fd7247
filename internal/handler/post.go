package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"socialnet/internal/httputil"
	"socialnet/internal/model"
	"socialnet/internal/service"
)

type PostHandler struct {
	network *service.NetworkService
}

func NewPostHandler(network *service.NetworkService) *PostHandler {
	return &PostHandler{network: network}
}

// Create handles POST /posts
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req model.CreatePostRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	post, err := h.network.Publish(r.Context(), actor, &req)
	if err != nil {
		writeServiceError(w, "create post", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, post)
}

// GetByID handles GET /posts/{id}
func (h *PostHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	post, err := h.network.GetPost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "get post", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, post)
}

// GetUserPosts handles GET /users/{name}/posts
func (h *PostHandler) GetUserPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.network.ListUserPosts(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeServiceError(w, "get user posts", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, posts)
}

// Like handles POST /posts/{id}/like
func (h *PostHandler) Like(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	post, err := h.network.Like(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "like post", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, post)
}

// Comment handles POST /posts/{id}/comments
func (h *PostHandler) Comment(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req model.CreateCommentRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	post, err := h.network.Comment(r.Context(), actor, chi.URLParam(r, "id"), req.Text)
	if err != nil {
		writeServiceError(w, "comment on post", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, post)
}

// Discount handles POST /posts/{id}/discount. The owner password in the
// body is the credential; no access token is needed.
func (h *PostHandler) Discount(w http.ResponseWriter, r *http.Request) {
	var req model.DiscountRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	post, err := h.network.Discount(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		writeServiceError(w, "discount post", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, post)
}

// MarkSold handles POST /posts/{id}/sold
func (h *PostHandler) MarkSold(w http.ResponseWriter, r *http.Request) {
	var req model.SoldRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	post, err := h.network.MarkSold(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		writeServiceError(w, "mark post sold", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, post)
}
