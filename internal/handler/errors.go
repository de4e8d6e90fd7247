package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"socialnet/internal/httputil"
	"socialnet/internal/model"
	"socialnet/internal/transport/http/middleware"
)

// writeServiceError maps a domain error to its HTTP response.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, model.ErrUserNotFound),
		errors.Is(err, model.ErrPostNotFound):
		httputil.WriteNotFound(w, err.Error())

	case errors.Is(err, model.ErrNameTaken),
		errors.Is(err, model.ErrAlreadyOnline),
		errors.Is(err, model.ErrNotOnline):
		httputil.WriteConflict(w, err.Error())

	case errors.Is(err, model.ErrWrongPassword),
		errors.Is(err, model.ErrNotAuthorized):
		httputil.WriteForbidden(w, err.Error())

	case errors.Is(err, model.ErrInvalidPassword),
		errors.Is(err, model.ErrNameRequired),
		errors.Is(err, model.ErrUnknownPostKind),
		errors.Is(err, model.ErrInvalidPayload),
		errors.Is(err, model.ErrInvalidPrice),
		errors.Is(err, model.ErrInvalidDiscount),
		errors.Is(err, model.ErrNotSalePost),
		errors.Is(err, model.ErrContentRequired):
		httputil.WriteBadRequest(w, err.Error())

	case errors.Is(err, model.ErrFeedUnavailable):
		httputil.WriteUnavailable(w, err.Error())

	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		httputil.WriteUnavailable(w, "Request cancelled")

	default:
		log.Printf("[Handler] %s failed: %v", op, err)
		httputil.WriteInternalError(w, "Failed to "+op)
	}
}

func currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	name, ok := middleware.GetUsernameFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
	}
	return name, ok
}
