package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
)

var userColumns = []string{
	"id", "name", "email", "email_verified", "image", "password_hash", "created_at", "updated_at",
}

// CreateUser creates a new user
func (db *DB) CreateUser(ctx context.Context, user *User) error {
	query, args, err := builder.Insert("users").
		Columns(userColumns...).
		Values(user.ID, user.Name, user.Email, user.EmailVerified, user.Image, user.PasswordHash, user.CreatedAt, user.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert user: %w", err)
	}

	_, err = db.ExecContext(ctx, query, args...)
	return err
}

// GetUserByEmail retrieves a user by email. Returns sql.ErrNoRows when absent.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return db.getUser(ctx, squirrel.Eq{"email": email})
}

// GetUserByID retrieves a user by ID. Returns sql.ErrNoRows when absent.
func (db *DB) GetUserByID(ctx context.Context, id string) (*User, error) {
	return db.getUser(ctx, squirrel.Eq{"id": id})
}

func (db *DB) getUser(ctx context.Context, where squirrel.Eq) (*User, error) {
	query, args, err := builder.Select(userColumns...).
		From("users").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user: %w", err)
	}

	user := &User{}
	var image sql.NullString
	err = db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID, &user.Name, &user.Email, &user.EmailVerified, &image,
		&user.PasswordHash, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if image.Valid {
		user.Image = &image.String
	}
	return user, nil
}

// DeleteUser deletes a user together with all of their sessions.
// Returns sql.ErrNoRows when the user does not exist.
func (db *DB) DeleteUser(ctx context.Context, id string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Explicit so the result does not depend on the foreign_keys pragma
	if err := deleteUserSessions(ctx, tx, id); err != nil {
		return err
	}

	query, args, err := builder.Delete("users").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete user: %w", err)
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}

	return tx.Commit()
}
