package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
)

var sessionColumns = []string{
	"id", "user_id", "ip_address", "user_agent", "expires_at", "created_at", "updated_at",
}

// CreateSession stores a new session
func (db *DB) CreateSession(ctx context.Context, session *Session) error {
	query, args, err := builder.Insert("sessions").
		Columns(sessionColumns...).
		Values(session.ID, session.UserID, session.IPAddress, session.UserAgent,
			session.ExpiresAt.Unix(), session.CreatedAt, session.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert session: %w", err)
	}

	_, err = db.ExecContext(ctx, query, args...)
	return err
}

// GetSession retrieves a session by ID. Returns sql.ErrNoRows when absent.
func (db *DB) GetSession(ctx context.Context, id string) (*Session, error) {
	query, args, err := builder.Select(sessionColumns...).
		From("sessions").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select session: %w", err)
	}

	session := &Session{}
	var expiresAt int64
	err = db.QueryRowContext(ctx, query, args...).Scan(
		&session.ID, &session.UserID, &session.IPAddress, &session.UserAgent,
		&expiresAt, &session.CreatedAt, &session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	session.ExpiresAt = time.Unix(expiresAt, 0).UTC()
	return session, nil
}

// DeleteSession deletes a single session. Deleting a missing session is not an error.
func (db *DB) DeleteSession(ctx context.Context, id string) error {
	query, args, err := builder.Delete("sessions").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete session: %w", err)
	}
	_, err = db.ExecContext(ctx, query, args...)
	return err
}

// deleteUserSessions deletes every session belonging to userID inside tx
func deleteUserSessions(ctx context.Context, tx *sql.Tx, userID string) error {
	query, args, err := builder.Delete("sessions").Where(squirrel.Eq{"user_id": userID}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete user sessions: %w", err)
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}

// DeleteExpiredSessions deletes sessions whose expiry is at or before now
func (db *DB) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	query, args, err := builder.Delete("sessions").
		Where(squirrel.LtOrEq{"expires_at": now.Unix()}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete expired sessions: %w", err)
	}
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
