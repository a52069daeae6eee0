package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/promptstashapp/promptstash-server/internal/domain"
	"github.com/promptstashapp/promptstash-server/internal/store"
)

// sessionColumns is the ordered list of columns selected in session queries.
// Must match the scan order in scanSession.
const sessionColumns = `id, user_id, refresh_token_hash, expires_at, created_at,
	last_seen_at, ip_address, client_name, client_version, platform, device_name`

// scanSession scans a sql.Row (or sql.Rows) into a domain.Session.
func scanSession(scanner interface{ Scan(dest ...any) error }) (*domain.Session, error) {
	var sess domain.Session

	var (
		expiresAt     string
		createdAt     string
		lastSeenAt    string
		ipAddress     sql.NullString
		clientName    sql.NullString
		clientVersion sql.NullString
		platform      sql.NullString
		deviceName    sql.NullString
	)

	err := scanner.Scan(
		&sess.ID,
		&sess.UserID,
		&sess.RefreshTokenHash,
		&expiresAt,
		&createdAt,
		&lastSeenAt,
		&ipAddress,
		&clientName,
		&clientVersion,
		&platform,
		&deviceName,
	)
	if err != nil {
		return nil, err
	}

	sess.ExpiresAt, err = parseTime(expiresAt)
	if err != nil {
		return nil, err
	}
	sess.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	sess.LastSeenAt, err = parseTime(lastSeenAt)
	if err != nil {
		return nil, err
	}

	sess.IPAddress = ipAddress.String
	sess.ClientName = clientName.String
	sess.ClientVersion = clientVersion.String
	sess.Platform = platform.String
	sess.DeviceName = deviceName.String

	return &sess, nil
}

// CreateSession inserts a new refresh session.
func (s *Store) CreateSession(ctx context.Context, sess *domain.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (
			id, user_id, refresh_token_hash, expires_at, created_at,
			last_seen_at, ip_address, client_name, client_version, platform, device_name
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID,
		sess.UserID,
		sess.RefreshTokenHash,
		formatTime(sess.ExpiresAt),
		formatTime(sess.CreatedAt),
		formatTime(sess.LastSeenAt),
		nullString(sess.IPAddress),
		nullString(sess.ClientName),
		nullString(sess.ClientVersion),
		nullString(sess.Platform),
		nullString(sess.DeviceName),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetSessionByRefreshToken looks up a session by its refresh token hash.
// Expired sessions are treated as not found.
func (s *Store) GetSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE refresh_token_hash = ? AND expires_at > ?`,
		tokenHash, formatTime(time.Now()))

	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return sess, err
}

// UpdateSession persists a rotated refresh token and activity timestamps.
func (s *Store) UpdateSession(ctx context.Context, sess *domain.Session) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET
			refresh_token_hash = ?,
			expires_at = ?,
			last_seen_at = ?
		WHERE id = ?`,
		sess.RefreshTokenHash,
		formatTime(sess.ExpiresAt),
		formatTime(sess.LastSeenAt),
		sess.ID,
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

// DeleteSession removes a session (logout).
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
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

// DeleteUserSessions removes all sessions for a user.
func (s *Store) DeleteUserSessions(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
	return err
}

// DeleteExpiredSessions removes sessions whose expiry has passed and
// returns how many were deleted.
func (s *Store) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= ?`, formatTime(time.Now()))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListUserSessions returns a user's sessions, most recently seen first.
func (s *Store) ListUserSessions(ctx context.Context, userID string) ([]*domain.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE user_id = ? ORDER BY last_seen_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}
