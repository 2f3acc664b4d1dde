// Copyright 2026 © The Paideia Authors
// SPDX-License-Identifier: Apache-2.0

// Package store persists users, sessions and learning history in SQLite.
package store

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/pbkdf2"

	"github.com/jllopis/paideia/pkg/errors"

	_ "modernc.org/sqlite"
)

const (
	userTable    = "users"
	sessionTable = "sessions"
	eventTable   = "history_events"

	pbkdf2Iterations = 100_000
	pbkdf2KeyLen     = 32
	saltLen          = 16
	tokenLen         = 32

	// SessionTTL is how long a session token stays valid.
	SessionTTL = 7 * 24 * time.Hour
)

// Store is a SQLite-backed persistence layer shared by the auth and
// history agents.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path and ensures schema.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("store path is empty")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.New(errors.CodeStoreError, "open database", err)
	}
	s, err := New(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing database handle and ensures schema.
func New(db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	if err := ensureSchema(db); err != nil {
		return nil, errors.New(errors.CodeStoreError, "ensure schema", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func ensureSchema(db *sql.DB) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			salt TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			software_experience TEXT NOT NULL DEFAULT '',
			hardware_experience TEXT NOT NULL DEFAULT '',
			learning_goals TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);`, userTable),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			token TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			created_at INTEGER NOT NULL,
			expires_at INTEGER NOT NULL,
			FOREIGN KEY(user_id) REFERENCES %s(id)
		);`, sessionTable, userTable),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_user ON %s(user_id);`, sessionTable, sessionTable),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_expires ON %s(expires_at);`, sessionTable, sessionTable),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			timestamp INTEGER NOT NULL,
			type TEXT NOT NULL,
			user_id TEXT NOT NULL DEFAULT '',
			session_id TEXT NOT NULL DEFAULT '',
			agent TEXT NOT NULL DEFAULT '',
			skill TEXT NOT NULL DEFAULT '',
			input_summary TEXT NOT NULL DEFAULT '',
			output_summary TEXT NOT NULL DEFAULT '',
			success INTEGER NOT NULL DEFAULT 1,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			metadata_json BLOB
		);`, eventTable),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_user ON %s(user_id);`, eventTable, eventTable),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_session ON %s(session_id);`, eventTable, eventTable),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_timestamp ON %s(timestamp);`, eventTable, eventTable),
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// User is a registered learner.
type User struct {
	ID                 int64     `json:"id"`
	Email              string    `json:"email"`
	Name               string    `json:"name"`
	SoftwareExperience string    `json:"software_experience"`
	HardwareExperience string    `json:"hardware_experience"`
	LearningGoals      string    `json:"learning_goals"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Profile carries the optional profile fields supplied at registration.
type Profile struct {
	Name               string
	SoftwareExperience string
	HardwareExperience string
	LearningGoals      string
}

// Session is an authenticated session token with an expiry.
type Session struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RegisterUser creates a user with a salted PBKDF2 password hash.
// Registering an email that already exists returns CodeInvalidInput.
func (s *Store) RegisterUser(ctx context.Context, email, password string, profile Profile) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, errors.New(errors.CodeInvalidInput, "invalid email address", nil)
	}
	if len(password) < 8 {
		return nil, errors.New(errors.CodeInvalidInput, "password must be at least 8 characters", nil)
	}

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, errors.New(errors.CodeInternal, "generate salt", err)
	}
	hash := hashPassword(password, salt)
	now := time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (email, password_hash, salt, name, software_experience, hardware_experience, learning_goals, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, userTable),
		email, hash, hex.EncodeToString(salt),
		profile.Name, profile.SoftwareExperience, profile.HardwareExperience, profile.LearningGoals,
		now.UnixMilli(), now.UnixMilli())
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return nil, errors.New(errors.CodeInvalidInput, "email already registered", nil).
				WithContext("email", email)
		}
		return nil, errors.New(errors.CodeStoreError, "insert user", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, errors.New(errors.CodeStoreError, "read inserted id", err)
	}
	return &User{
		ID:                 id,
		Email:              email,
		Name:               profile.Name,
		SoftwareExperience: profile.SoftwareExperience,
		HardwareExperience: profile.HardwareExperience,
		LearningGoals:      profile.LearningGoals,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// Authenticate verifies the password for email and returns the user.
// Unknown emails and wrong passwords both return CodeUnauthorized.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var (
		user     User
		hash     string
		saltHex  string
		created  int64
		updated  int64
	)
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT id, email, password_hash, salt, name, software_experience, hardware_experience, learning_goals, created_at, updated_at
			FROM %s WHERE email = ?`, userTable), email).
		Scan(&user.ID, &user.Email, &hash, &saltHex, &user.Name,
			&user.SoftwareExperience, &user.HardwareExperience, &user.LearningGoals, &created, &updated)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New(errors.CodeUnauthorized, "invalid email or password", nil)
		}
		return nil, errors.New(errors.CodeStoreError, "query user", err)
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return nil, errors.New(errors.CodeStoreError, "decode salt", err)
	}
	if subtle.ConstantTimeCompare([]byte(hashPassword(password, salt)), []byte(hash)) != 1 {
		return nil, errors.New(errors.CodeUnauthorized, "invalid email or password", nil)
	}
	user.CreatedAt = time.UnixMilli(created).UTC()
	user.UpdatedAt = time.UnixMilli(updated).UTC()
	return &user, nil
}

// GetUser returns the user by id, or CodeNotFound.
func (s *Store) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.getUser(ctx, "id = ?", id)
}

// GetUserByEmail returns the user by email, or CodeNotFound.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.getUser(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (s *Store) getUser(ctx context.Context, where string, arg any) (*User, error) {
	var (
		user    User
		created int64
		updated int64
	)
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT id, email, name, software_experience, hardware_experience, learning_goals, created_at, updated_at
			FROM %s WHERE %s`, userTable, where), arg).
		Scan(&user.ID, &user.Email, &user.Name,
			&user.SoftwareExperience, &user.HardwareExperience, &user.LearningGoals, &created, &updated)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New(errors.CodeNotFound, "user not found", nil)
		}
		return nil, errors.New(errors.CodeStoreError, "query user", err)
	}
	user.CreatedAt = time.UnixMilli(created).UTC()
	user.UpdatedAt = time.UnixMilli(updated).UTC()
	return &user, nil
}

// profileColumns maps updatable profile keys to their columns. Email and
// password changes go through dedicated flows, not here.
var profileColumns = map[string]string{
	"name":                "name",
	"software_experience": "software_experience",
	"hardware_experience": "hardware_experience",
	"learning_goals":      "learning_goals",
}

// UpdateProfile applies the allowed subset of updates and returns the
// refreshed user. Unknown keys are ignored.
func (s *Store) UpdateProfile(ctx context.Context, userID int64, updates map[string]any) (*User, error) {
	var (
		sets []string
		args []any
	)
	for key, col := range profileColumns {
		val, ok := updates[key]
		if !ok {
			continue
		}
		sets = append(sets, col+" = ?")
		args = append(args, fmt.Sprintf("%v", val))
	}
	if len(sets) == 0 {
		return s.GetUser(ctx, userID)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC().UnixMilli(), userID)

	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", userTable, strings.Join(sets, ", ")), args...)
	if err != nil {
		return nil, errors.New(errors.CodeStoreError, "update profile", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, errors.New(errors.CodeStoreError, "update profile", err)
	}
	if affected == 0 {
		return nil, errors.New(errors.CodeNotFound, "user not found", nil)
	}
	return s.GetUser(ctx, userID)
}

// CreateSession issues a fresh session token for the user.
func (s *Store) CreateSession(ctx context.Context, userID int64) (*Session, error) {
	raw := make([]byte, tokenLen)
	if _, err := rand.Read(raw); err != nil {
		return nil, errors.New(errors.CodeInternal, "generate token", err)
	}
	now := time.Now().UTC()
	session := &Session{
		Token:     base64.RawURLEncoding.EncodeToString(raw),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(SessionTTL),
	}
	_, err := s.db.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO %s (token, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)", sessionTable),
		session.Token, userID, now.UnixMilli(), session.ExpiresAt.UnixMilli())
	if err != nil {
		return nil, errors.New(errors.CodeStoreError, "insert session", err)
	}
	return session, nil
}

// ValidateSession resolves a token to its user. Expired or unknown tokens
// return CodeUnauthorized.
func (s *Store) ValidateSession(ctx context.Context, token string) (*User, *Session, error) {
	var (
		session Session
		created int64
		expires int64
	)
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT token, user_id, created_at, expires_at FROM %s WHERE token = ?", sessionTable), token).
		Scan(&session.Token, &session.UserID, &created, &expires)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, errors.New(errors.CodeUnauthorized, "invalid session", nil)
		}
		return nil, nil, errors.New(errors.CodeStoreError, "query session", err)
	}
	session.CreatedAt = time.UnixMilli(created).UTC()
	session.ExpiresAt = time.UnixMilli(expires).UTC()
	if time.Now().UTC().After(session.ExpiresAt) {
		_, _ = s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE token = ?", sessionTable), token)
		return nil, nil, errors.New(errors.CodeUnauthorized, "session expired", nil)
	}
	user, err := s.GetUser(ctx, session.UserID)
	if err != nil {
		return nil, nil, err
	}
	return user, &session, nil
}

// DeleteSession removes a session token. Returns false when the token was
// not present.
func (s *Store) DeleteSession(ctx context.Context, token string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE token = ?", sessionTable), token)
	if err != nil {
		return false, errors.New(errors.CodeStoreError, "delete session", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, errors.New(errors.CodeStoreError, "delete session", err)
	}
	return affected > 0, nil
}

// PurgeExpiredSessions removes all sessions past their expiry.
func (s *Store) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE expires_at < ?", sessionTable),
		time.Now().UTC().UnixMilli())
	if err != nil {
		return 0, errors.New(errors.CodeStoreError, "purge sessions", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, errors.New(errors.CodeStoreError, "purge sessions", err)
	}
	return affected, nil
}

func hashPassword(password string, salt []byte) string {
	key := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, pbkdf2KeyLen, sha256.New)
	return hex.EncodeToString(key)
}
