package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/grootlabs/groot/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateSecret = errors.New("duplicate secret violation")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	ListKeys(ctx context.Context, filter KeyFilter) ([]*models.APIKey, error)
	CreateKey(ctx context.Context, draft models.KeyDraft) (*models.APIKey, error)
	UpdateKey(ctx context.Context, id uuid.UUID, patch KeyPatch) (*models.APIKey, error)
	DeleteKey(ctx context.Context, id uuid.UUID) error
}

// KeyFilter narrows a list query. Zero values mean "all": the dimension's
// constraint is disabled. Dimensions combine conjunctively.
type KeyFilter struct {
	Status      models.Status
	Environment models.Environment
}

// KeyPatch is a partial update. Nil fields are left untouched; id and
// created_at are never patchable, and updated_at is refreshed by the
// store's trigger on every mutation.
type KeyPatch struct {
	Name        *string
	Secret      *string
	Status      *models.Status
	Scopes      *[]string
	Environment *models.Environment
	LastUsed    *time.Time
}

// Empty reports whether the patch would change nothing.
func (p KeyPatch) Empty() bool {
	return p.Name == nil && p.Secret == nil && p.Status == nil &&
		p.Scopes == nil && p.Environment == nil && p.LastUsed == nil
}
