package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// The two realms keep disjoint session tables. A row's presence is what
// keeps a signed token alive; logout deletes the row.

// CreateSession records a user-realm session.
func (s *Store) CreateSession(ctx context.Context, token string, userID int64, expiresAt time.Time) error {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (token, user_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`, token, userID, time.Now().UTC(), expiresAt); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// DeleteSession revokes a user-realm session. Deleting an unknown token is a no-op.
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM sessions
		WHERE token = $1
	`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// UserIDBySession resolves a live user session to its owner.
func (s *Store) UserIDBySession(ctx context.Context, token string) (int64, error) {
	var userID int64
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id
		FROM sessions
		WHERE token = $1 AND expires_at > $2
	`, token, time.Now().UTC()).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrUnauthorized
		}
		return 0, fmt.Errorf("lookup session: %w", err)
	}
	return userID, nil
}

// CreateStaffSession records a staff-realm session.
func (s *Store) CreateStaffSession(ctx context.Context, token string, staffID int64, expiresAt time.Time) error {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO staff_sessions (token, staff_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`, token, staffID, time.Now().UTC(), expiresAt); err != nil {
		return fmt.Errorf("store staff session: %w", err)
	}
	return nil
}

// DeleteStaffSession revokes a staff-realm session.
func (s *Store) DeleteStaffSession(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM staff_sessions
		WHERE token = $1
	`, token); err != nil {
		return fmt.Errorf("delete staff session: %w", err)
	}
	return nil
}

// StaffIDBySession resolves a live staff session to its owner.
func (s *Store) StaffIDBySession(ctx context.Context, token string) (int64, error) {
	var staffID int64
	err := s.db.QueryRowContext(ctx, `
		SELECT staff_id
		FROM staff_sessions
		WHERE token = $1 AND expires_at > $2
	`, token, time.Now().UTC()).Scan(&staffID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrUnauthorized
		}
		return 0, fmt.Errorf("lookup staff session: %w", err)
	}
	return staffID, nil
}
