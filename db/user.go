package db

// user.go deals with user account database calls. Password hashes are
// stored with bcrypt and never leave this file except through
// UserAuthenticate's yes/no answer.

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials reports a sign-in attempt with an unknown email
// or a wrong password. The two cases are deliberately not
// distinguished.
var ErrInvalidCredentials = errors.New("invalid credentials")

// User is the concrete type of each user row. The password hash is
// only populated by the sign-in lookup and is never marshalled.
type User struct {
	ID           int64   `db:"id" json:"id"`
	Username     string  `db:"username" json:"username"`
	Email        string  `db:"email" json:"email"`
	PasswordHash string  `db:"password_hash" json:"-"`
	FullName     string  `db:"full_name" json:"full_name"`
	Role         string  `db:"role" json:"role"`
	IsActive     bool    `db:"is_active" json:"is_active"`
	LastLogin    *string `db:"last_login" json:"last_login"`
	CreatedAt    string  `db:"created_at" json:"created_at"`
	UpdatedAt    string  `db:"updated_at" json:"updated_at"`
}

// UserPatch carries optional user field updates. Nil fields leave the
// stored column untouched. A non-nil Password is hashed before
// storage.
type UserPatch struct {
	Username *string
	Email    *string
	Password *string
	FullName *string
	Role     *string
	IsActive *bool
}

// UserCreate inserts a user with the supplied plaintext password
// hashed at the given bcrypt cost, returning the generated id.
// ErrConflict is returned when the username or email is already taken.
func (db *DB) UserCreate(ctx context.Context, u User, password string, bcryptCost int) (int64, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return 0, fmt.Errorf("password hash error: %w", err)
	}
	ps := db.stmt(userInsertSQL)
	namedArgs := map[string]any{
		"Username":     u.Username,
		"Email":        u.Email,
		"PasswordHash": string(hash),
		"FullName":     u.FullName,
		"Role":         u.Role,
		"IsActive":     u.IsActive,
	}
	if err := ps.verifyArgs(namedArgs); err != nil {
		return 0, fmt.Errorf("user insert verify arguments error: %v", err)
	}
	var id int64
	err = ps.GetContext(ctx, &id, namedArgs)
	db.logQuery("user insert", namedArgs, err)
	if isUniqueViolation(err) {
		return 0, ErrConflict
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert user %q: %w", u.Username, err)
	}
	return id, nil
}

// UsersGet returns all users, newest first, without password hashes.
func (db *DB) UsersGet(ctx context.Context) ([]User, error) {
	users := []User{}
	err := db.SelectContext(ctx, &users, db.query(usersSQL))
	if err != nil {
		return nil, fmt.Errorf("users select error: %w", err)
	}
	return users, nil
}

// UserGet returns a single user by id, without the password hash.
func (db *DB) UserGet(ctx context.Context, id int64) (User, error) {
	ps := db.stmt(userGetSQL)
	namedArgs := map[string]any{"ID": id}
	if err := ps.verifyArgs(namedArgs); err != nil {
		return User{}, err
	}
	var u User
	err := ps.GetContext(ctx, &u, namedArgs)
	db.logQuery("user get", namedArgs, err)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("user select error: %w", err)
	}
	return u, nil
}

// UserUpdate patches a user, hashing any replacement password at the
// given bcrypt cost. ErrConflict is returned when a new username or
// email is already taken.
func (db *DB) UserUpdate(ctx context.Context, id int64, patch UserPatch, bcryptCost int) error {
	var hash *string
	if patch.Password != nil {
		h, err := bcrypt.GenerateFromPassword([]byte(*patch.Password), bcryptCost)
		if err != nil {
			return fmt.Errorf("password hash error: %w", err)
		}
		s := string(h)
		hash = &s
	}
	ps := db.stmt(userUpdateSQL)
	namedArgs := map[string]any{
		"ID":           id,
		"Username":     patch.Username,
		"Email":        patch.Email,
		"PasswordHash": hash,
		"FullName":     patch.FullName,
		"Role":         patch.Role,
		"IsActive":     patch.IsActive,
	}
	if err := ps.verifyArgs(namedArgs); err != nil {
		return fmt.Errorf("user update verify arguments error: %v", err)
	}
	res, err := ps.ExecContext(ctx, namedArgs)
	db.logQuery("user update", namedArgs, err)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to update user %d: %w", id, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// UserDelete removes a user by id.
func (db *DB) UserDelete(ctx context.Context, id int64) error {
	ps := db.stmt(userDeleteSQL)
	namedArgs := map[string]any{"ID": id}
	if err := ps.verifyArgs(namedArgs); err != nil {
		return err
	}
	res, err := ps.ExecContext(ctx, namedArgs)
	db.logQuery("user delete", namedArgs, err)
	if err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// UserAuthenticate verifies an email and password pair against the
// active users, stamping last_login on success. The returned user has
// the stored hash cleared.
func (db *DB) UserAuthenticate(ctx context.Context, email, password string) (User, error) {
	ps := db.stmt(userGetByEmailSQL)
	namedArgs := map[string]any{"Email": email}
	if err := ps.verifyArgs(namedArgs); err != nil {
		return User{}, err
	}
	var u User
	err := ps.GetContext(ctx, &u, namedArgs)
	db.logQuery("user get by email", namedArgs, err)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, fmt.Errorf("user select error: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	u.PasswordHash = ""

	lp := db.stmt(userLastLoginSQL)
	lastArgs := map[string]any{"ID": u.ID}
	if err := lp.verifyArgs(lastArgs); err != nil {
		return User{}, err
	}
	if _, err := lp.ExecContext(ctx, lastArgs); err != nil {
		return User{}, fmt.Errorf("failed to stamp last login for user %d: %w", u.ID, err)
	}
	return u, nil
}
