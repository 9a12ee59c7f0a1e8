// Package store persists device-local state: interest selections, the user
// profile blob and auth tokens. It is a plain key/value table over SQLite,
// standing in for the platform storage primitives a mobile or web client uses.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-pkgz/repeater/v2"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure Go SQLite driver

	"github.com/azhavoronkov/eventscope/pkg/domain"
)

//go:embed schema.sql
var schema string

// fixed keys, same names the mobile client uses in secure storage
const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
)

// Config represents storage configuration
type Config struct {
	DSN             string
	Prefix          string // key namespace for profile/selection blobs
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Store is a key/value store over a single settings table
type Store struct {
	db     *sqlx.DB
	prefix string
}

// New opens the database, applies pragmas and creates the schema
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		cfg.DSN = "file:eventscope.db?cache=shared&mode=rwc&_txlock=immediate"
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "eventscope"
	}

	db, err := sqlx.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return nil, fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, prefix: cfg.Prefix}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Get retrieves a value, empty string when the key is absent
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, "SELECT value FROM settings WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

// Set stores a value, retrying on SQLite lock contention
func (s *Store) Set(ctx context.Context, key, value string) error {
	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))
	return retrier.Do(ctx, func() error {
		query := `
			INSERT INTO settings (key, value, updated_at) VALUES (?, ?, datetime('now'))
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		`
		if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
			if isLockError(err) {
				return err // retried
			}
			return &criticalError{err: fmt.Errorf("set %s: %w", key, err)}
		}
		return nil
	})
}

// Delete removes a key, missing keys are not an error
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM settings WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Profile loads the persisted profile blob; a missing or corrupt blob yields
// the zero profile, the same first-use default the UI starts from
func (s *Store) Profile(ctx context.Context) (domain.Profile, error) {
	raw, err := s.Get(ctx, s.prefix+"-profile")
	if err != nil {
		return domain.Profile{}, err
	}
	if raw == "" {
		return domain.Profile{}, nil
	}
	var p domain.Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return domain.Profile{}, nil // corrupt local blob degrades to first-use state
	}
	return p, nil
}

// SaveProfile persists the profile blob
func (s *Store) SaveProfile(ctx context.Context, p domain.Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	return s.Set(ctx, s.prefix+"-profile", string(data))
}

// Selection loads the persisted interest selection as an ordered key list
func (s *Store) Selection(ctx context.Context) ([]string, error) {
	raw, err := s.Get(ctx, s.prefix+"-rotate-class")
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return []string{}, nil
	}
	var keys []string
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return []string{}, nil
	}
	return keys, nil
}

// SaveSelection persists the interest selection, replaced wholesale
func (s *Store) SaveSelection(ctx context.Context, keys []string) error {
	if keys == nil {
		keys = []string{}
	}
	data, err := json.Marshal(keys)
	if err != nil {
		return fmt.Errorf("marshal selection: %w", err)
	}
	return s.Set(ctx, s.prefix+"-rotate-class", string(data))
}

// Toggle flips one interest key in the selection and persists the result,
// returning the new selection
func (s *Store) Toggle(ctx context.Context, key string) ([]string, error) {
	current, err := s.Selection(ctx)
	if err != nil {
		return nil, err
	}
	next := make([]string, 0, len(current)+1)
	found := false
	for _, k := range current {
		if k == key {
			found = true
			continue
		}
		next = append(next, k)
	}
	if !found {
		next = append(next, key)
	}
	if err := s.SaveSelection(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// AccessToken implements client.TokenStore
func (s *Store) AccessToken(ctx context.Context) (string, error) {
	return s.Get(ctx, keyAccessToken)
}

// SetAccessToken stores or clears the access token
func (s *Store) SetAccessToken(ctx context.Context, token string) error {
	if token == "" {
		return s.Delete(ctx, keyAccessToken)
	}
	return s.Set(ctx, keyAccessToken, token)
}

// RefreshToken retrieves the stored refresh token
func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	return s.Get(ctx, keyRefreshToken)
}

// SetRefreshToken stores or clears the refresh token
func (s *Store) SetRefreshToken(ctx context.Context, token string) error {
	if token == "" {
		return s.Delete(ctx, keyRefreshToken)
	}
	return s.Set(ctx, keyRefreshToken, token)
}

// criticalError wraps an error to signal repeater to stop retrying
type criticalError struct {
	err error
}

func (e *criticalError) Error() string {
	return e.err.Error()
}

// isLockError checks if an error is a SQLite lock/busy error
func isLockError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "SQLITE_BUSY") ||
		strings.Contains(errStr, "database is locked") ||
		strings.Contains(errStr, "database table is locked")
}
