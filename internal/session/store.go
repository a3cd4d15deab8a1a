// Package session holds the durable client session: the auth token, the
// authenticated user profile, and the video references produced by the
// highlight pipeline. State survives process restarts via sqlite and is
// always passed by reference, never accessed as a global.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

const (
	keyToken         = "auth_token"
	keyUser          = "user_profile"
	keyVideoRef      = "last_video"
	keyFinalVideoRef = "final_video"
)

// Profile is the authenticated user record returned by the remote service.
type Profile struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     int    `json:"role"`
}

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// SetCredentials stores the token and profile from a completed auth flow.
// A nil profile stores the token alone; the profile may be filled in later
// by SetUser once the follow-up profile fetch completes.
func (s *Store) SetCredentials(ctx context.Context, token string, user *Profile) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := upsert(ctx, tx, keyToken, token); err != nil {
		return err
	}
	if user != nil {
		data, err := json.Marshal(user)
		if err != nil {
			return fmt.Errorf("marshal profile: %w", err)
		}
		if err := upsert(ctx, tx, keyUser, string(data)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SetUser stores the profile on its own, used by the best-effort profile
// fetch that follows a successful login.
func (s *Store) SetUser(ctx context.Context, user *Profile) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	return s.set(ctx, keyUser, string(data))
}

// Clear removes the token and profile in a single transaction. Video
// references survive logout, matching the original client behaviour.
func (s *Store) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, key := range []string{keyToken, keyUser} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM session WHERE key = ?", key); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Token returns the stored auth token, or "" when unauthenticated.
func (s *Store) Token() string {
	v, _ := s.get(context.Background(), keyToken)
	return v
}

// User returns the stored profile, or nil when absent.
func (s *Store) User(ctx context.Context) (*Profile, error) {
	v, err := s.get(ctx, keyUser)
	if err != nil {
		return nil, err
	}
	if v == "" {
		return nil, nil
	}
	var p Profile
	if err := json.Unmarshal([]byte(v), &p); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}
	return &p, nil
}

func (s *Store) SetVideoRef(ctx context.Context, ref string) error {
	return s.set(ctx, keyVideoRef, ref)
}

// VideoRef returns the reference of the last completed generation run, or ""
// when no generation run has completed.
func (s *Store) VideoRef(ctx context.Context) (string, error) {
	return s.get(ctx, keyVideoRef)
}

func (s *Store) SetFinalVideoRef(ctx context.Context, ref string) error {
	return s.set(ctx, keyFinalVideoRef, ref)
}

func (s *Store) FinalVideoRef(ctx context.Context) (string, error) {
	return s.get(ctx, keyFinalVideoRef)
}

// Get reads an arbitrary session key. Used for locally generated values such
// as the control API token.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	return s.get(ctx, key)
}

// Set writes an arbitrary session key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.set(ctx, key, value)
}

func (s *Store) get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM session WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *Store) set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session (key, value, updated_at) VALUES (?, ?, datetime('now'))
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value)
	return err
}

func upsert(ctx context.Context, tx *sql.Tx, key, value string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO session (key, value, updated_at) VALUES (?, ?, datetime('now'))
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value)
	return err
}
