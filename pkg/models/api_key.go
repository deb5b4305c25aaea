package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an API key. Keys only ever toggle
// between active and revoked.
type Status string

const (
	StatusActive  Status = "active"
	StatusRevoked Status = "revoked"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusRevoked
}

// Toggle returns the opposite status.
func (s Status) Toggle() Status {
	if s == StatusActive {
		return StatusRevoked
	}
	return StatusActive
}

// Environment is the deployment tier a key is issued for. It affects
// only the secret prefix and display, not access control.
type Environment string

const (
	EnvProduction  Environment = "production"
	EnvStaging     Environment = "staging"
	EnvDevelopment Environment = "development"
)

func (e Environment) Valid() bool {
	switch e {
	case EnvProduction, EnvStaging, EnvDevelopment:
		return true
	}
	return false
}

// Tag returns the short environment marker embedded in generated secrets.
func (e Environment) Tag() string {
	switch e {
	case EnvProduction:
		return "prod"
	case EnvStaging:
		return "staging"
	default:
		return "dev"
	}
}

// KnownScopes are the permission tags the client offers. The store does
// not enforce a closed vocabulary; these are advisory.
var KnownScopes = []string{"read", "write", "admin", "delete"}

// APIKey is the sole persistent entity: one key record with its metadata.
// Secrets are stored and returned in plaintext; reveal and copy need the
// full value.
type APIKey struct {
	ID          uuid.UUID   `db:"id"          json:"id"`
	Name        string      `db:"name"        json:"name"`
	Secret      string      `db:"secret"      json:"secret"`
	Status      Status      `db:"status"      json:"status"`
	Scopes      []string    `db:"scopes"      json:"scopes"`
	Environment Environment `db:"environment" json:"environment"`
	CreatedAt   time.Time   `db:"created_at"  json:"created_at"`
	LastUsed    *time.Time  `db:"last_used"   json:"last_used"`
	UpdatedAt   time.Time   `db:"updated_at"  json:"updated_at"`
}

// KeyDraft is the creation payload. The store assigns everything else.
type KeyDraft struct {
	Name        string      `json:"name"`
	Secret      string      `json:"secret"`
	Scopes      []string    `json:"scopes"`
	Environment Environment `json:"environment"`
}

// Validate rejects drafts with missing or empty required fields. It runs
// before any network or database call.
func (d KeyDraft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if d.Secret == "" {
		return fmt.Errorf("secret is required")
	}
	if len(d.Scopes) == 0 {
		return fmt.Errorf("at least one scope is required")
	}
	if d.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if !d.Environment.Valid() {
		return fmt.Errorf("environment must be one of production, staging, development; got %q", d.Environment)
	}
	return nil
}
