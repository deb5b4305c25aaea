package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/grootlabs/groot/pkg/models"
)

const keyColumns = `id, name, secret, status, scopes, environment, created_at, last_used, updated_at`

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) ListKeys(ctx context.Context, filter KeyFilter) ([]*models.APIKey, error) {
	// Build WHERE clause dynamically
	var conditions []string
	var args []any
	argIdx := 1

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, filter.Status)
		argIdx++
	}
	if filter.Environment != "" {
		conditions = append(conditions, fmt.Sprintf("environment = $%d", argIdx))
		args = append(args, filter.Environment)
		argIdx++
	}

	query := `SELECT ` + keyColumns + ` FROM api_keys`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	keys := []*models.APIKey{}
	for rows.Next() {
		k, err := scanKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (s *PostgresStore) CreateKey(ctx context.Context, draft models.KeyDraft) (*models.APIKey, error) {
	// id, status, created_at and updated_at come from column defaults.
	row := s.pool.QueryRow(ctx,
		`INSERT INTO api_keys (name, secret, scopes, environment)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+keyColumns,
		strings.TrimSpace(draft.Name), draft.Secret, draft.Scopes, draft.Environment)

	k, err := scanKey(row)
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrDuplicateSecret
		}
		return nil, fmt.Errorf("create api key: %w", err)
	}
	return k, nil
}

func (s *PostgresStore) UpdateKey(ctx context.Context, id uuid.UUID, patch KeyPatch) (*models.APIKey, error) {
	if patch.Empty() {
		return nil, fmt.Errorf("update api key: empty patch")
	}

	// Build SET clause dynamically; updated_at is refreshed by the trigger.
	var sets []string
	args := []any{id}
	argIdx := 2

	set := func(col string, val any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, argIdx))
		args = append(args, val)
		argIdx++
	}

	if patch.Name != nil {
		set("name", strings.TrimSpace(*patch.Name))
	}
	if patch.Secret != nil {
		set("secret", *patch.Secret)
	}
	if patch.Status != nil {
		set("status", *patch.Status)
	}
	if patch.Scopes != nil {
		set("scopes", *patch.Scopes)
	}
	if patch.Environment != nil {
		set("environment", *patch.Environment)
	}
	if patch.LastUsed != nil {
		set("last_used", *patch.LastUsed)
	}

	query := fmt.Sprintf(
		`UPDATE api_keys SET %s WHERE id = $1 RETURNING `+keyColumns,
		strings.Join(sets, ", "))

	k, err := scanKey(s.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrDuplicateSecret
		}
		return nil, fmt.Errorf("update api key: %w", err)
	}
	return k, nil
}

func (s *PostgresStore) DeleteKey(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM api_keys WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanKey(row pgx.Row) (*models.APIKey, error) {
	var k models.APIKey
	if err := row.Scan(&k.ID, &k.Name, &k.Secret, &k.Status, &k.Scopes,
		&k.Environment, &k.CreatedAt, &k.LastUsed, &k.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isDuplicateKeyError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("scan api key: %w", err)
	}
	return &k, nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}

// Compile-time check that PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)
