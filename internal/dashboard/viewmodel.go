package dashboard

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/grootlabs/groot/pkg/models"
)

const defaultDismissAfter = 4 * time.Second

// ViewModel owns all dashboard state and exposes one method per user
// action. Every action produces a new State snapshot; callers render
// whatever State() returns and never mutate it.
type ViewModel struct {
	svc  Service
	clip Clipboard

	mu    sync.Mutex
	state State

	// listSeq is a monotonic token stamped on each refresh so a stale
	// response can never overwrite a fresher list.
	listSeq uint64

	now          func() time.Time
	dismissAfter time.Duration
	genSecret    func(models.Environment) (string, error)
}

// Option configures a ViewModel.
type Option func(*ViewModel)

// WithClipboard replaces the system clipboard, mainly for tests.
func WithClipboard(c Clipboard) Option {
	return func(vm *ViewModel) { vm.clip = c }
}

// WithClock replaces the wall clock used for notification deadlines and
// rotation timestamps.
func WithClock(now func() time.Time) Option {
	return func(vm *ViewModel) { vm.now = now }
}

// WithDismissAfter sets the notification auto-dismissal window.
func WithDismissAfter(d time.Duration) Option {
	return func(vm *ViewModel) { vm.dismissAfter = d }
}

// WithSecretGenerator replaces the secret generator, mainly for tests.
func WithSecretGenerator(gen func(models.Environment) (string, error)) Option {
	return func(vm *ViewModel) { vm.genSecret = gen }
}

// NewViewModel creates a view-model backed by svc.
func NewViewModel(svc Service, opts ...Option) *ViewModel {
	vm := &ViewModel{
		svc:          svc,
		clip:         SystemClipboard{},
		now:          time.Now,
		dismissAfter: defaultDismissAfter,
		genSecret:    GenerateSecret,
		state: State{
			Keys:     []models.APIKey{},
			Filter:   defaultFilter(),
			Revealed: map[uuid.UUID]bool{},
		},
	}
	for _, opt := range opts {
		opt(vm)
	}
	return vm
}

// State returns a snapshot of the current dashboard state.
func (vm *ViewModel) State() State {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.state.clone()
}

// Refresh re-runs the list with the current filter and fully replaces
// the displayed keys. A response that lost the race to a newer refresh
// is discarded. On failure the prior list is preserved.
func (vm *ViewModel) Refresh(ctx context.Context) {
	vm.mu.Lock()
	vm.listSeq++
	seq := vm.listSeq
	filter := vm.state.Filter
	vm.mu.Unlock()

	keys, err := vm.svc.List(ctx, filter)

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if seq != vm.listSeq {
		// A newer refresh is in flight or already landed.
		return
	}
	if err != nil {
		vm.notifyLocked("Failed to load API keys", SeverityError)
		return
	}

	vm.state.Keys = keys
	vm.pruneLocked()
}

// pruneLocked drops per-row client state for rows that no longer exist.
func (vm *ViewModel) pruneLocked() {
	present := make(map[uuid.UUID]bool, len(vm.state.Keys))
	for _, k := range vm.state.Keys {
		present[k.ID] = true
	}
	for id := range vm.state.Revealed {
		if !present[id] {
			delete(vm.state.Revealed, id)
		}
	}
	if vm.state.CopiedID != uuid.Nil && !present[vm.state.CopiedID] {
		vm.state.CopiedID = uuid.Nil
	}
	if vm.state.PendingDeleteID != uuid.Nil && !present[vm.state.PendingDeleteID] {
		vm.state.PendingDeleteID = uuid.Nil
	}
	if vm.state.EditID != uuid.Nil && !present[vm.state.EditID] {
		vm.state.EditID = uuid.Nil
		vm.state.EditDraft = models.KeyDraft{}
	}
}

// SetStatusFilter narrows the list to a status and re-runs the query.
func (vm *ViewModel) SetStatusFilter(ctx context.Context, status string) {
	vm.mu.Lock()
	vm.state.Filter.Status = status
	vm.mu.Unlock()
	vm.Refresh(ctx)
}

// SetEnvironmentFilter narrows the list to an environment and re-runs
// the query. Filters apply conjunctively.
func (vm *ViewModel) SetEnvironmentFilter(ctx context.Context, environment string) {
	vm.mu.Lock()
	vm.state.Filter.Environment = environment
	vm.mu.Unlock()
	vm.Refresh(ctx)
}

// OpenCreate opens the creation form with a fresh draft.
func (vm *ViewModel) OpenCreate() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.state.CreateOpen = true
	vm.state.CreateDraft = models.KeyDraft{Environment: models.EnvDevelopment}
}

// SetCreateDraft replaces the creation draft as the user types.
func (vm *ViewModel) SetCreateDraft(draft models.KeyDraft) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.state.CreateDraft = draft
}

// CancelCreate closes the creation form and discards the draft.
func (vm *ViewModel) CancelCreate() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.state.CreateOpen = false
	vm.state.CreateDraft = models.KeyDraft{}
}

// SubmitCreate validates the draft, generates a secret and creates the
// record. On success the form closes, the list refreshes and a success
// notification appears. On failure the form and draft stay as they were.
func (vm *ViewModel) SubmitCreate(ctx context.Context) {
	vm.mu.Lock()
	draft := vm.state.CreateDraft
	vm.mu.Unlock()

	draft.Name = strings.TrimSpace(draft.Name)
	if draft.Name == "" {
		vm.notify("Name is required", SeverityError)
		return
	}
	if len(draft.Scopes) == 0 {
		draft.Scopes = []string{"read"}
	}

	secret, err := vm.genSecret(draft.Environment)
	if err != nil {
		vm.notify("Choose a valid environment", SeverityError)
		return
	}
	draft.Secret = secret

	if _, err := vm.svc.Create(ctx, draft); err != nil {
		vm.notify("Failed to create API key", SeverityError)
		return
	}

	vm.mu.Lock()
	vm.state.CreateOpen = false
	vm.state.CreateDraft = models.KeyDraft{}
	vm.notifyLocked("API key created", SeveritySuccess)
	vm.mu.Unlock()

	vm.Refresh(ctx)
}

// BeginEdit enters edit mode for one row, seeding the draft from the
// current record.
func (vm *ViewModel) BeginEdit(id uuid.UUID) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	key, ok := vm.findLocked(id)
	if !ok {
		return
	}
	vm.state.EditID = id
	vm.state.EditDraft = models.KeyDraft{
		Name:        key.Name,
		Scopes:      append([]string(nil), key.Scopes...),
		Environment: key.Environment,
	}
}

// SetEditDraft replaces the edit draft as the user types.
func (vm *ViewModel) SetEditDraft(draft models.KeyDraft) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.state.EditDraft = draft
}

// CancelEdit leaves edit mode without saving.
func (vm *ViewModel) CancelEdit() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.state.EditID = uuid.Nil
	vm.state.EditDraft = models.KeyDraft{}
}

// SaveEdit persists the edit draft. A draft whose trimmed name is empty
// is ignored. On success edit mode ends and the list refreshes; on
// failure edit mode stays active so nothing is lost.
func (vm *ViewModel) SaveEdit(ctx context.Context) {
	vm.mu.Lock()
	id := vm.state.EditID
	draft := vm.state.EditDraft
	vm.mu.Unlock()

	if id == uuid.Nil {
		return
	}
	name := strings.TrimSpace(draft.Name)
	if name == "" {
		return
	}

	scopes := append([]string(nil), draft.Scopes...)
	patch := Patch{
		Name:        &name,
		Scopes:      &scopes,
		Environment: &draft.Environment,
	}
	if _, err := vm.svc.Update(ctx, id, patch); err != nil {
		vm.notify("Failed to update API key", SeverityError)
		return
	}

	vm.mu.Lock()
	vm.state.EditID = uuid.Nil
	vm.state.EditDraft = models.KeyDraft{}
	vm.notifyLocked("API key updated", SeveritySuccess)
	vm.mu.Unlock()

	vm.Refresh(ctx)
}

// Rotate replaces one record's secret with a freshly generated one for
// its environment and stamps last_used. Name, scopes and status are
// untouched.
func (vm *ViewModel) Rotate(ctx context.Context, id uuid.UUID) {
	vm.mu.Lock()
	key, ok := vm.findLocked(id)
	vm.mu.Unlock()
	if !ok {
		return
	}

	secret, err := vm.genSecret(key.Environment)
	if err != nil {
		vm.notify("Failed to rotate secret", SeverityError)
		return
	}
	now := vm.now()

	patch := Patch{Secret: &secret, LastUsed: &now}
	if _, err := vm.svc.Update(ctx, id, patch); err != nil {
		vm.notify("Failed to rotate secret", SeverityError)
		return
	}

	vm.notify("Secret rotated", SeveritySuccess)
	vm.Refresh(ctx)
}

// ToggleStatus flips one record between active and revoked.
func (vm *ViewModel) ToggleStatus(ctx context.Context, id uuid.UUID) {
	vm.mu.Lock()
	key, ok := vm.findLocked(id)
	vm.mu.Unlock()
	if !ok {
		return
	}

	next := key.Status.Toggle()
	patch := Patch{Status: &next}
	if _, err := vm.svc.Update(ctx, id, patch); err != nil {
		vm.notify("Failed to update API key", SeverityError)
		return
	}

	if next == models.StatusRevoked {
		vm.notify("API key revoked", SeveritySuccess)
	} else {
		vm.notify("API key activated", SeveritySuccess)
	}
	vm.Refresh(ctx)
}

// RequestDelete marks a row for deletion pending explicit confirmation.
// Nothing is sent to the store yet.
func (vm *ViewModel) RequestDelete(id uuid.UUID) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if _, ok := vm.findLocked(id); !ok {
		return
	}
	vm.state.PendingDeleteID = id
}

// CancelDelete dismisses the pending confirmation.
func (vm *ViewModel) CancelDelete() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.state.PendingDeleteID = uuid.Nil
}

// ConfirmDelete performs the deletion requested earlier. The success
// notification deliberately carries error severity: destruction is
// styled like a failure so it cannot be missed. On failure the record
// stays in the list.
func (vm *ViewModel) ConfirmDelete(ctx context.Context) {
	vm.mu.Lock()
	id := vm.state.PendingDeleteID
	vm.state.PendingDeleteID = uuid.Nil
	vm.mu.Unlock()
	if id == uuid.Nil {
		return
	}

	if err := vm.svc.Delete(ctx, id); err != nil {
		vm.notify("Failed to delete API key", SeverityError)
		return
	}

	vm.notify("API key deleted", SeverityError)
	vm.Refresh(ctx)
}

// ToggleReveal flips one row between masked and revealed. Pure client
// state; nothing is round-tripped.
func (vm *ViewModel) ToggleReveal(id uuid.UUID) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.state.Revealed[id] {
		delete(vm.state.Revealed, id)
	} else {
		vm.state.Revealed[id] = true
	}
}

// CopySecret writes the full secret to the clipboard regardless of the
// mask state and marks the row as copied. Copying another row clears
// the previous mark.
func (vm *ViewModel) CopySecret(id uuid.UUID) {
	vm.mu.Lock()
	key, ok := vm.findLocked(id)
	vm.mu.Unlock()
	if !ok {
		return
	}

	if err := vm.clip.Copy(key.Secret); err != nil {
		vm.notify("Clipboard unavailable", SeverityError)
		return
	}

	vm.mu.Lock()
	vm.state.CopiedID = id
	vm.notifyLocked("Secret copied", SeveritySuccess)
	vm.mu.Unlock()
}

// DismissNotification clears the current notification.
func (vm *ViewModel) DismissNotification() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.state.Notification = nil
}

// DismissExpired clears the notification once its deadline has passed.
// Renderers call this on their tick.
func (vm *ViewModel) DismissExpired() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.state.Notification != nil && !vm.now().Before(vm.state.Notification.ExpiresAt) {
		vm.state.Notification = nil
	}
}

func (vm *ViewModel) findLocked(id uuid.UUID) (models.APIKey, bool) {
	for _, k := range vm.state.Keys {
		if k.ID == id {
			return k, true
		}
	}
	return models.APIKey{}, false
}

func (vm *ViewModel) notify(message string, severity Severity) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.notifyLocked(message, severity)
}

// notifyLocked replaces the current notification and restarts the
// dismissal deadline.
func (vm *ViewModel) notifyLocked(message string, severity Severity) {
	vm.state.Notification = &Notification{
		Message:   message,
		Severity:  severity,
		ExpiresAt: vm.now().Add(vm.dismissAfter),
	}
}
