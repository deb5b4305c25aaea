package dashboard

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/grootlabs/groot/pkg/models"
)

// FilterAll is the sentinel value that disables a filter dimension.
const FilterAll = "all"

// Filter narrows the key list. Both dimensions default to FilterAll and
// apply conjunctively.
type Filter struct {
	Status      string
	Environment string
}

func defaultFilter() Filter {
	return Filter{Status: FilterAll, Environment: FilterAll}
}

// Severity classifies a notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// Notification is a transient banner. ExpiresAt is the auto-dismissal
// deadline; replacing a notification restarts it.
type Notification struct {
	Message   string
	Severity  Severity
	ExpiresAt time.Time
}

// State is an immutable snapshot of everything the dashboard renders.
// ViewModel methods each produce a fresh snapshot; callers never mutate one.
type State struct {
	Keys   []models.APIKey
	Filter Filter

	CreateOpen  bool
	CreateDraft models.KeyDraft

	EditID    uuid.UUID // uuid.Nil when no row is being edited
	EditDraft models.KeyDraft

	Revealed        map[uuid.UUID]bool
	CopiedID        uuid.UUID
	PendingDeleteID uuid.UUID

	Notification *Notification
}

// DisplaySecret returns the secret as it should be rendered: the full
// value when the row is revealed, a masked form otherwise.
func (s State) DisplaySecret(key models.APIKey) string {
	if s.Revealed[key.ID] {
		return key.Secret
	}
	return maskSecret(key.Secret)
}

// maskSecret keeps the identifying prefix up to the last underscore and
// hides the random tail.
func maskSecret(secret string) string {
	if i := strings.LastIndex(secret, "_"); i >= 0 {
		return secret[:i+1] + "••••••••"
	}
	return "••••••••"
}

func (s State) clone() State {
	out := s
	if s.Keys != nil {
		out.Keys = make([]models.APIKey, len(s.Keys))
		copy(out.Keys, s.Keys)
	}
	out.Revealed = make(map[uuid.UUID]bool, len(s.Revealed))
	for id, v := range s.Revealed {
		out.Revealed[id] = v
	}
	if s.Notification != nil {
		n := *s.Notification
		out.Notification = &n
	}
	return out
}
