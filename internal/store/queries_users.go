// Copyright (c) 2026 Haasivu Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const userColumns = `id, email, password_hash, role, name, avatar, created_at, updated_at, last_login_at`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.Name,
		&u.Avatar, &u.CreatedAt, &u.UpdatedAt, &u.LastLoginAt)
	return u, err
}

// CreateUserParams holds the fields for CreateUser.
type CreateUserParams struct {
	Email        string
	PasswordHash string
	Role         string
	Name         string
	Avatar       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateUser inserts a new user and returns the stored row.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash, role, name, avatar, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING `+userColumns,
		arg.Email, arg.PasswordHash, arg.Role, arg.Name, arg.Avatar,
		arg.CreatedAt, arg.UpdatedAt)
	return scanUser(row)
}

// GetUserByID fetches a user by id.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (User, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByEmail fetches a user by email.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

// UpdateUserRoleParams holds the fields for UpdateUserRole.
type UpdateUserRoleParams struct {
	ID        int64
	Role      string
	Name      string
	Avatar    string
	UpdatedAt time.Time
}

// UpdateUserRole replaces the user's role, display name and avatar
// wholesale (the switch-role demo mechanism).
func (q *Queries) UpdateUserRole(ctx context.Context, arg UpdateUserRoleParams) (User, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE users SET role = ?, name = ?, avatar = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+userColumns,
		arg.Role, arg.Name, arg.Avatar, arg.UpdatedAt, arg.ID)
	return scanUser(row)
}

// UpdateUserLastLogin stamps the user's last login time.
func (q *Queries) UpdateUserLastLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = ? WHERE id = ?`, at, id)
	return err
}

// CountUsers returns the number of users.
func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}
