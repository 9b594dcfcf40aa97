// Package auth verifies identity tokens presented at connect time. Token
// issuance (signup/signin) belongs to a separate service; the relay only
// consumes the verification side of the contract.
package auth

import (
	"database/sql"
	"errors"
	"time"
)

// ErrInvalidToken is returned for missing, unknown or expired tokens.
var ErrInvalidToken = errors.New("invalid token")

// Verifier resolves an identity token to a user id.
type Verifier interface {
	Verify(token string) (userID string, err error)
}

// TokenStore verifies tokens against a sessions table shared with the
// account service.
type TokenStore struct {
	db *sql.DB
}

// NewTokenStore prepares the sessions table on the given database.
func NewTokenStore(db *sql.DB) (*TokenStore, error) {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		expires_at DATETIME
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}
	return &TokenStore{db: db}, nil
}

// Verify looks the token up and checks expiry. Expired rows are treated the
// same as unknown ones.
func (ts *TokenStore) Verify(token string) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}

	var userID string
	var expiresAt sql.NullTime
	err := ts.db.QueryRow(
		"SELECT user_id, expires_at FROM sessions WHERE token = ?",
		token,
	).Scan(&userID, &expiresAt)
	if err == sql.ErrNoRows {
		return "", ErrInvalidToken
	}
	if err != nil {
		return "", err
	}
	if expiresAt.Valid && time.Now().After(expiresAt.Time) {
		return "", ErrInvalidToken
	}
	return userID, nil
}

// Put registers a session token. The account service normally writes these;
// tests and local setups use it directly. A zero expiry means no expiry.
func (ts *TokenStore) Put(token, userID string, expiresAt time.Time) error {
	var exp interface{}
	if !expiresAt.IsZero() {
		exp = expiresAt
	}
	_, err := ts.db.Exec(
		"INSERT OR REPLACE INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)",
		token, userID, exp,
	)
	return err
}

// Static is a fixed token-to-user map, for tests and single-user setups.
type Static map[string]string

// Verify implements Verifier.
func (s Static) Verify(token string) (string, error) {
	userID, ok := s[token]
	if !ok {
		return "", ErrInvalidToken
	}
	return userID, nil
}
