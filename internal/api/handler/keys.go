package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/grootlabs/groot/internal/api/response"
	"github.com/grootlabs/groot/internal/store"
	"github.com/grootlabs/groot/pkg/models"
)

// Keys defines the store operations the key handlers depend on.
type Keys interface {
	ListKeys(ctx context.Context, filter store.KeyFilter) ([]*models.APIKey, error)
	CreateKey(ctx context.Context, draft models.KeyDraft) (*models.APIKey, error)
	UpdateKey(ctx context.Context, id uuid.UUID, patch store.KeyPatch) (*models.APIKey, error)
	DeleteKey(ctx context.Context, id uuid.UUID) error
}

// NewListKeysHandler returns an http.HandlerFunc for GET /keys.
// status and environment query params each accept an "all" sentinel that
// disables that dimension's constraint.
func NewListKeysHandler(s Keys) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var filter store.KeyFilter

		if v := r.URL.Query().Get("status"); v != "" && v != "all" {
			status := models.Status(v)
			if !status.Valid() {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					"status must be one of all, active, revoked", nil)
				return
			}
			filter.Status = status
		}

		if v := r.URL.Query().Get("environment"); v != "" && v != "all" {
			env := models.Environment(v)
			if !env.Valid() {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					"environment must be one of all, production, staging, development", nil)
				return
			}
			filter.Environment = env
		}

		keys, err := s.ListKeys(r.Context(), filter)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "STORE_ERROR",
				"Failed to list API keys", err.Error())
			return
		}

		response.JSON(w, keys)
	}
}

// NewCreateKeyHandler returns an http.HandlerFunc for POST /keys.
func NewCreateKeyHandler(s Keys) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var draft models.KeyDraft
		if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		if err := draft.Validate(); err != nil {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
			return
		}

		key, err := s.CreateKey(r.Context(), draft)
		if err != nil {
			if errors.Is(err, store.ErrDuplicateSecret) {
				response.Error(w, http.StatusInternalServerError, "STORE_ERROR",
					"Failed to create API key", "secret already exists")
				return
			}
			response.Error(w, http.StatusInternalServerError, "STORE_ERROR",
				"Failed to create API key", err.Error())
			return
		}

		response.Created(w, key)
	}
}

type patchRequest struct {
	Name        *string             `json:"name"`
	Secret      *string             `json:"secret"`
	Status      *models.Status      `json:"status"`
	Scopes      *[]string           `json:"scopes"`
	Environment *models.Environment `json:"environment"`
	LastUsed    *time.Time          `json:"last_used"`
}

// NewUpdateKeyHandler returns an http.HandlerFunc for PATCH /keys/{keyID}.
// Any subset of the mutable fields may be patched; id and created_at never.
func NewUpdateKeyHandler(s Keys) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseKeyID(w, r)
		if !ok {
			return
		}

		var req patchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "name must not be empty", nil)
			return
		}
		if req.Secret != nil && *req.Secret == "" {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "secret must not be empty", nil)
			return
		}
		if req.Status != nil && !req.Status.Valid() {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR",
				"status must be one of active, revoked", nil)
			return
		}
		if req.Environment != nil && !req.Environment.Valid() {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR",
				"environment must be one of production, staging, development", nil)
			return
		}

		patch := store.KeyPatch{
			Name:        req.Name,
			Secret:      req.Secret,
			Status:      req.Status,
			Scopes:      req.Scopes,
			Environment: req.Environment,
			LastUsed:    req.LastUsed,
		}
		if patch.Empty() {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "no fields to update", nil)
			return
		}

		key, err := s.UpdateKey(r.Context(), id, patch)
		if err != nil {
			switch {
			case errors.Is(err, store.ErrNotFound):
				response.Error(w, http.StatusNotFound, "RESOURCE_NOT_FOUND", "API key not found", nil)
			case errors.Is(err, store.ErrDuplicateSecret):
				response.Error(w, http.StatusInternalServerError, "STORE_ERROR",
					"Failed to update API key", "secret already exists")
			default:
				response.Error(w, http.StatusInternalServerError, "STORE_ERROR",
					"Failed to update API key", err.Error())
			}
			return
		}

		response.JSON(w, key)
	}
}

// NewDeleteKeyHandler returns an http.HandlerFunc for DELETE /keys/{keyID}.
func NewDeleteKeyHandler(s Keys) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseKeyID(w, r)
		if !ok {
			return
		}

		if err := s.DeleteKey(r.Context(), id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "RESOURCE_NOT_FOUND", "API key not found", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "STORE_ERROR",
				"Failed to delete API key", err.Error())
			return
		}

		response.NoContent(w)
	}
}

func parseKeyID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "keyID"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "keyID must be a valid UUID", nil)
		return uuid.Nil, false
	}
	return id, true
}
