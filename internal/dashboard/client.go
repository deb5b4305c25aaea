package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/grootlabs/groot/pkg/models"
)

// Service is the interface for the key-management HTTP surface.
type Service interface {
	List(ctx context.Context, filter Filter) ([]models.APIKey, error)
	Create(ctx context.Context, draft models.KeyDraft) (*models.APIKey, error)
	Update(ctx context.Context, id uuid.UUID, patch Patch) (*models.APIKey, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Patch carries a partial update; nil fields are left untouched.
type Patch struct {
	Name        *string             `json:"name,omitempty"`
	Secret      *string             `json:"secret,omitempty"`
	Status      *models.Status      `json:"status,omitempty"`
	Scopes      *[]string           `json:"scopes,omitempty"`
	Environment *models.Environment `json:"environment,omitempty"`
	LastUsed    *time.Time          `json:"last_used,omitempty"`
}

// HTTPClient implements Service against the /keys HTTP surface.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a client for the surface at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) List(ctx context.Context, filter Filter) ([]models.APIKey, error) {
	params := url.Values{}
	if filter.Status != "" && filter.Status != FilterAll {
		params.Set("status", filter.Status)
	}
	if filter.Environment != "" && filter.Environment != FilterAll {
		params.Set("environment", filter.Environment)
	}

	u := c.baseURL + "/keys"
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	var keys []models.APIKey
	if err := c.do(req, &keys); err != nil {
		return nil, err
	}
	if keys == nil {
		keys = []models.APIKey{}
	}
	return keys, nil
}

func (c *HTTPClient) Create(ctx context.Context, draft models.KeyDraft) (*models.APIKey, error) {
	// Reject incomplete drafts before touching the network.
	if err := draft.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	body, err := json.Marshal(draft)
	if err != nil {
		return nil, fmt.Errorf("encoding draft: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/keys", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var key models.APIKey
	if err := c.do(req, &key); err != nil {
		return nil, err
	}
	return &key, nil
}

func (c *HTTPClient) Update(ctx context.Context, id uuid.UUID, patch Patch) (*models.APIKey, error) {
	body, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("encoding patch: %w", err)
	}

	u := c.baseURL + "/keys/" + id.String()
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var key models.APIKey
	if err := c.do(req, &key); err != nil {
		return nil, err
	}
	return &key, nil
}

func (c *HTTPClient) Delete(ctx context.Context, id uuid.UUID) error {
	u := c.baseURL + "/keys/" + id.String()
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	return c.do(req, nil)
}

// do executes the request, decodes the {data}/{error} envelope and maps
// failures to sentinel errors.
func (c *HTTPClient) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStore, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if resp.StatusCode >= 400 {
		return classifyResponse(resp)
	}

	if out == nil {
		return nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("%w: decoding response: %v", ErrStore, err)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", ErrStore, err)
	}
	return nil
}

// classifyResponse maps an error envelope to a sentinel error.
func classifyResponse(resp *http.Response) error {
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	message := resp.Status
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Error.Message != "" {
		message = envelope.Error.Message
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, message)
	case resp.StatusCode == http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrValidation, message)
	default:
		return fmt.Errorf("%w: %s", ErrStore, message)
	}
}

// Compile-time check that HTTPClient implements Service.
var _ Service = (*HTTPClient)(nil)
