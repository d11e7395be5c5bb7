package repos

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// SessionRepo stores session values in the sessions table, next to the
// user binding kept by UserRepo.
type SessionRepo struct{ db *sqlx.DB }

func NewSessionRepo(db *sqlx.DB) *SessionRepo { return &SessionRepo{db: db} }

func expiryStamp(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func (r *SessionRepo) Load(ctx context.Context, id string) (map[string]json.RawMessage, error) {
	var data string
	err := r.db.GetContext(ctx, &data, `
		SELECT COALESCE(data,'') FROM sessions
		WHERE id = ? AND (expires_at IS NULL OR expires_at > ?)
	`, id, expiryStamp(time.Now()))
	if errors.Is(err, sql.ErrNoRows) || (err == nil && data == "") {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var values map[string]json.RawMessage
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return values, nil
}

func (r *SessionRepo) Save(ctx context.Context, id string, values map[string]json.RawMessage, ttl time.Duration) error {
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO sessions(id, data, expires_at, last_seen)
		VALUES(?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
		  data = excluded.data,
		  expires_at = excluded.expires_at,
		  last_seen = CURRENT_TIMESTAMP
	`, id, string(data), expiryStamp(time.Now().Add(ttl)))
	return err
}

func (r *SessionRepo) Destroy(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}

// PurgeExpired drops sessions past their expiry and reports how many.
func (r *SessionRepo) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at IS NOT NULL AND expires_at <= ?`,
		expiryStamp(time.Now()))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
