package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"socialnet/internal/handler"
	"socialnet/internal/httputil"
	authmw "socialnet/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler  *handler.AuthHandler
	UserHandler  *handler.UserHandler
	PostHandler  *handler.PostHandler
	MediaHandler *handler.MediaHandler
	LiveHandler  http.Handler // WebSocket notifications
	Tokens       authmw.TokenParser
}

// NewRouter creates the chi router with every route group.
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public routes
	r.Post("/auth/register", cfg.AuthHandler.Register)
	r.Post("/auth/login", cfg.AuthHandler.Login)

	r.Get("/network", cfg.UserHandler.Network)
	r.Get("/users", cfg.UserHandler.List)
	r.Get("/users/{name}", cfg.UserHandler.GetProfile)
	r.Get("/users/{name}/posts", cfg.PostHandler.GetUserPosts)
	r.Get("/posts/{id}", cfg.PostHandler.GetByID)

	// Sale updates are gated by the owner password in the body
	r.Post("/posts/{id}/discount", cfg.PostHandler.Discount)
	r.Post("/posts/{id}/sold", cfg.PostHandler.MarkSold)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(cfg.Tokens))

		r.Post("/auth/logout", cfg.AuthHandler.Logout)

		r.Post("/users/{name}/follow", cfg.UserHandler.Follow)
		r.Delete("/users/{name}/follow", cfg.UserHandler.Unfollow)
		r.Get("/me/notifications", cfg.UserHandler.Notifications)
		r.Get("/me/feed", cfg.UserHandler.Feed)

		r.Post("/posts", cfg.PostHandler.Create)
		r.Post("/posts/{id}/like", cfg.PostHandler.Like)
		r.Post("/posts/{id}/comments", cfg.PostHandler.Comment)

		r.Post("/media/images", cfg.MediaHandler.UploadImage)

		if cfg.LiveHandler != nil {
			r.Method(http.MethodGet, "/ws", cfg.LiveHandler)
		}
	})

	return r
}
