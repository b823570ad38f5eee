package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mocktest/internal/db"
)

// SQLStore is the credential store over the users and auth_guard_states tables.
type SQLStore struct {
	db *sql.DB
}

type credentialRow struct {
	User
	PasswordHash string
}

func NewSQLStore(conn *sql.DB) *SQLStore {
	return &SQLStore{db: conn}
}

func (s *SQLStore) CreateUser(ctx context.Context, u User, passwordHash string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, roll_number, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, u.ID, u.Name, u.RollNumber, passwordHash, u.Role, u.CreatedAt.UnixMilli())
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrDuplicateUser
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *SQLStore) FindByRollNumber(ctx context.Context, rollNumber string) (*credentialRow, error) {
	return s.findOne(ctx, `
		SELECT id, name, roll_number, role, created_at, password_hash
		FROM users
		WHERE roll_number = $1
	`, rollNumber)
}

func (s *SQLStore) FindByID(ctx context.Context, id string) (*credentialRow, error) {
	return s.findOne(ctx, `
		SELECT id, name, roll_number, role, created_at, password_hash
		FROM users
		WHERE id = $1
	`, id)
}

func (s *SQLStore) findOne(ctx context.Context, query string, arg string) (*credentialRow, error) {
	var row credentialRow
	var createdAt int64
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&row.ID, &row.Name, &row.RollNumber, &row.Role, &createdAt, &row.PasswordHash,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	row.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &row, nil
}

func (s *SQLStore) CountByRole(ctx context.Context, role string) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role = $1`, role).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (s *SQLStore) IsGuardLocked(ctx context.Context, purpose, subjectKey string, now time.Time) (bool, error) {
	var lockedUntil sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT locked_until
		FROM auth_guard_states
		WHERE purpose = $1 AND subject_key = $2
	`, purpose, subjectKey).Scan(&lockedUntil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	if !lockedUntil.Valid {
		return false, nil
	}
	return now.Before(time.UnixMilli(lockedUntil.Int64)), nil
}

func (s *SQLStore) RegisterFailure(ctx context.Context, purpose, subjectKey string, maxFailures int, lockDuration time.Duration, now time.Time) error {
	var failedCount int
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO auth_guard_states (purpose, subject_key, failed_count, updated_at)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (purpose, subject_key)
		DO UPDATE SET
			failed_count = auth_guard_states.failed_count + 1,
			updated_at = excluded.updated_at
		RETURNING failed_count
	`, purpose, subjectKey, now.UnixMilli()).Scan(&failedCount)
	if err != nil {
		return err
	}

	if failedCount >= maxFailures {
		_, err = s.db.ExecContext(ctx, `
			UPDATE auth_guard_states
			SET locked_until = $3,
				failed_count = 0,
				updated_at = $4
			WHERE purpose = $1 AND subject_key = $2
		`, purpose, subjectKey, now.Add(lockDuration).UnixMilli(), now.UnixMilli())
		if err != nil {
			return err
		}
	}
	return nil
}

// PruneGuards drops rows whose last failure is older than staleBefore and
// that are not currently locked.
func (s *SQLStore) PruneGuards(ctx context.Context, purpose string, staleBefore, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM auth_guard_states
		WHERE purpose = $1
			AND updated_at < $2
			AND (locked_until IS NULL OR locked_until <= $3)
	`, purpose, staleBefore.UnixMilli(), now.UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLStore) ClearGuard(ctx context.Context, purpose, subjectKey string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM auth_guard_states
		WHERE purpose = $1 AND subject_key = $2
	`, purpose, subjectKey)
	return err
}
