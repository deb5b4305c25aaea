package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	mw "github.com/grootlabs/groot/internal/api/middleware"
	"github.com/grootlabs/groot/internal/api/response"
)

// Dependencies holds all handler dependencies for the router.
type Dependencies struct {
	HealthHandler    http.HandlerFunc
	ListKeysHandler  http.HandlerFunc
	CreateKeyHandler http.HandlerFunc
	UpdateKeyHandler http.HandlerFunc
	DeleteKeyHandler http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	r.Get("/health", orNotImplemented(deps.HealthHandler))

	r.Route("/keys", func(r chi.Router) {
		r.Get("/", orNotImplemented(deps.ListKeysHandler))
		r.Post("/", orNotImplemented(deps.CreateKeyHandler))
		r.Patch("/{keyID}", orNotImplemented(deps.UpdateKeyHandler))
		r.Delete("/{keyID}", orNotImplemented(deps.DeleteKeyHandler))
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
