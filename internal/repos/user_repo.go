package repos

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"olivosverdes/internal/domain"
)

var ErrEmailTaken = errors.New("email already registered")

// DefaultSessionTTL matches the SESSION_TTL_MINUTES default.
const DefaultSessionTTL = 14 * 24 * time.Hour

type UserRepo struct {
	DB *sqlx.DB
	// SessionTTL is how long a login binding lasts.
	SessionTTL time.Duration
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db, SessionTTL: DefaultSessionTTL} }

func (r *UserRepo) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, `SELECT id,email,name,password_hash,role FROM users WHERE LOWER(email)=LOWER(?)`, email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, `SELECT id,email,name,password_hash,role FROM users WHERE id=?`, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts the user and the customer profile together.
func (r *UserRepo) Create(ctx context.Context, u domain.User, p domain.CustomerProfile) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO users(id,email,name,password_hash,role) VALUES(?,?,?,?,?)
	`, u.ID, u.Email, u.Name, u.Hash, u.Role); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return ErrEmailTaken
		}
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO customer_profiles(user_id,phone,address,city) VALUES(?,?,?,?)
	`, u.ID, p.Phone, p.Address, p.City); err != nil {
		return err
	}
	return tx.Commit()
}

// Profile returns nil without error when the user never filled one in.
func (r *UserRepo) Profile(ctx context.Context, userID string) (*domain.CustomerProfile, error) {
	var p domain.CustomerProfile
	err := r.DB.GetContext(ctx, &p, `
		SELECT user_id, COALESCE(phone,'') AS phone, COALESCE(address,'') AS address, COALESCE(city,'') AS city
		FROM customer_profiles WHERE user_id=?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// BindSession logs sid in as userID until the session TTL runs out.
func (r *UserRepo) BindSession(ctx context.Context, sid, userID string) error {
	ttl := r.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	_, err := r.DB.ExecContext(ctx, `INSERT INTO sessions(id,user_id,expires_at,last_seen)
                          VALUES(?,?,?,CURRENT_TIMESTAMP)
                          ON CONFLICT(id) DO UPDATE SET user_id=excluded.user_id,expires_at=excluded.expires_at,last_seen=CURRENT_TIMESTAMP`,
		sid, userID, expiryStamp(time.Now().Add(ttl)))
	return err
}

// SessionUser returns the user bound to sid. Expired sessions have no user.
func (r *UserRepo) SessionUser(ctx context.Context, sid string) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, `
      SELECT u.id,u.email,u.name,u.password_hash,u.role
      FROM sessions s
      JOIN users u ON u.id=s.user_id
      WHERE s.id=? AND (s.expires_at IS NULL OR s.expires_at > ?)`, sid, expiryStamp(time.Now()))
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) UnbindSession(ctx context.Context, sid string) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE sessions SET user_id=NULL,last_seen=CURRENT_TIMESTAMP WHERE id=?`, sid)
	return err
}
