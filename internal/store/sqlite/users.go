package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/promptstashapp/promptstash-server/internal/domain"
	"github.com/promptstashapp/promptstash-server/internal/store"
)

// userColumns is the ordered list of columns selected in user queries.
// Must match the scan order in scanUser.
const userColumns = `id, email, email_lower, password_hash, is_root,
	display_name, created_at, updated_at, last_login_at`

// scanUser scans a sql.Row (or sql.Rows via its Scan method) into a domain.User.
func scanUser(scanner interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var u domain.User

	var (
		emailLower  string
		passwordH   sql.NullString
		isRoot      int
		createdAt   string
		updatedAt   string
		lastLoginAt string
	)

	err := scanner.Scan(
		&u.ID,
		&u.Email,
		&emailLower,
		&passwordH,
		&isRoot,
		&u.DisplayName,
		&createdAt,
		&updatedAt,
		&lastLoginAt,
	)
	if err != nil {
		return nil, err
	}

	if passwordH.Valid {
		u.PasswordHash = passwordH.String
	}
	u.IsRoot = isRoot != 0

	u.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	u.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	u.LastLoginAt, err = parseTime(lastLoginAt)
	if err != nil {
		return nil, err
	}

	return &u, nil
}

// CreateUser inserts a new user into the database.
// Returns store.ErrAlreadyExists if the user ID or email already exists.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	emailLower := strings.ToLower(strings.TrimSpace(user.Email))

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (
			id, email, email_lower, password_hash, is_root,
			display_name, created_at, updated_at, last_login_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		emailLower,
		nullString(user.PasswordHash),
		boolToInt(user.IsRoot),
		user.DisplayName,
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
		formatTime(user.LastLoginAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetUser returns the user with the given ID, or store.ErrNotFound.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return user, err
}

// GetUserByEmail returns the user with the given email (case-insensitive),
// or store.ErrNotFound.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	emailLower := strings.ToLower(strings.TrimSpace(email))

	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email_lower = ?`, emailLower)

	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return user, err
}

// CountUsers returns the total number of users. Used to decide whether
// first-run setup is still open.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

// UpdateUser persists mutable user fields.
// Returns store.ErrNotFound if the user does not exist.
func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET
			display_name = ?,
			password_hash = ?,
			updated_at = ?,
			last_login_at = ?
		WHERE id = ?`,
		user.DisplayName,
		nullString(user.PasswordHash),
		formatTime(user.UpdatedAt),
		formatTime(user.LastLoginAt),
		user.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
