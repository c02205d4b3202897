package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const sqliteTimeLayout = "2006-01-02 15:04:05"

// SQLiteStore keeps sessions in the console's local database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

func (s *SQLiteStore) Load(ctx context.Context, id string) (*State, error) {
	st := State{ID: id}
	err := s.db.QueryRowContext(ctx, `
		SELECT current_tenant, current_tenant_key, admin_token, admin_user
		FROM sessions
		WHERE id = ? AND expires_at > ?
	`, id, s.now().UTC().Format(sqliteTimeLayout)).Scan(&st.CurrentTenant, &st.CurrentTenantKey, &st.AdminToken, &st.AdminUser)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return &st, nil
}

func (s *SQLiteStore) Save(ctx context.Context, st *State, ttl time.Duration) error {
	now := s.now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, current_tenant, current_tenant_key, admin_token, admin_user, updated_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			current_tenant = excluded.current_tenant,
			current_tenant_key = excluded.current_tenant_key,
			admin_token = excluded.admin_token,
			admin_user = excluded.admin_user,
			updated_at = excluded.updated_at,
			expires_at = excluded.expires_at
	`, st.ID, st.CurrentTenant, st.CurrentTenantKey, st.AdminToken, st.AdminUser,
		now.Format(sqliteTimeLayout), now.Add(ttl).Format(sqliteTimeLayout))
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// PurgeExpired removes expired rows and returns how many were deleted.
func (s *SQLiteStore) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, s.now().UTC().Format(sqliteTimeLayout))
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge sessions rows affected: %w", err)
	}
	return n, nil
}
