package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/aaa123456yg/music-platform/shared/go/models"
)

// ErrStaffNotFound indicates a missing staff id.
var ErrStaffNotFound = errors.New("staff not found")

// CreateStaff registers a back-office account. Staff passwords use the same
// bcrypt scheme as user passwords; there is no plaintext comparison path.
func (s *Store) CreateStaff(ctx context.Context, name, password string) (models.Staff, error) {
	name = strings.TrimSpace(name)
	if name == "" || password == "" {
		return models.Staff{}, fmt.Errorf("%w: name and password are required", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.Staff{}, fmt.Errorf("hash password: %w", err)
	}

	staff := models.Staff{Name: name}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO staff (name, password_hash, created_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, name, hash, time.Now().UTC()).Scan(&staff.ID, &staff.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Staff{}, fmt.Errorf("staff name already taken")
		}
		return models.Staff{}, fmt.Errorf("insert staff: %w", err)
	}
	return staff, nil
}

// VerifyStaffCredentials validates a staff name/password pair.
func (s *Store) VerifyStaffCredentials(ctx context.Context, name, password string) (models.Staff, error) {
	name = strings.TrimSpace(name)

	var (
		staff models.Staff
		hash  []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, created_at, password_hash
		FROM staff
		WHERE name = $1
	`, name).Scan(&staff.ID, &staff.Name, &staff.CreatedAt, &hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = bcrypt.CompareHashAndPassword(dummyPasswordHash, []byte(password))
			return models.Staff{}, ErrInvalidCredentials
		}
		return models.Staff{}, fmt.Errorf("lookup staff: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return models.Staff{}, ErrInvalidCredentials
	}

	return staff, nil
}

// StaffByID returns a single staff account.
func (s *Store) StaffByID(ctx context.Context, id int64) (models.Staff, error) {
	var staff models.Staff
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, created_at
		FROM staff
		WHERE id = $1
	`, id).Scan(&staff.ID, &staff.Name, &staff.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Staff{}, ErrStaffNotFound
	}
	if err != nil {
		return models.Staff{}, fmt.Errorf("get staff: %w", err)
	}
	return staff, nil
}
