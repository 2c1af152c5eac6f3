package db

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

// testBcryptCost keeps the password hashing quick under test.
const testBcryptCost = bcrypt.MinCost

func TestUserLifecycle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	u := User{
		Username: "jdoe",
		Email:    "jdoe@example.com",
		FullName: "J Doe",
		Role:     "admin",
		IsActive: true,
	}
	id, err := db.UserCreate(ctx, u, "s3cret-pw", testBcryptCost)
	if err != nil {
		t.Fatalf("user create error: %v", err)
	}

	got, err := db.UserGet(ctx, id)
	if err != nil {
		t.Fatalf("user get error: %v", err)
	}
	if got.Username != "jdoe" || got.Role != "admin" || !got.IsActive {
		t.Errorf("unexpected user record %+v", got)
	}
	// The by-id and list reads never carry the hash.
	if got.PasswordHash != "" {
		t.Error("password hash leaked by UserGet")
	}
	if got.LastLogin != nil {
		t.Errorf("expected nil last login before sign in, got %v", *got.LastLogin)
	}

	users, err := db.UsersGet(ctx)
	if err != nil {
		t.Fatalf("users get error: %v", err)
	}
	if got, want := len(users), 1; got != want {
		t.Fatalf("got %d users, want %d", got, want)
	}
	if users[0].PasswordHash != "" {
		t.Error("password hash leaked by UsersGet")
	}

	err = db.UserUpdate(ctx, id, UserPatch{FullName: ptrStr("Jane Doe")}, testBcryptCost)
	if err != nil {
		t.Fatalf("user update error: %v", err)
	}
	got, err = db.UserGet(ctx, id)
	if err != nil {
		t.Fatalf("user get error: %v", err)
	}
	if got.FullName != "Jane Doe" {
		t.Errorf("got full name %q after patch", got.FullName)
	}

	if err := db.UserDelete(ctx, id); err != nil {
		t.Fatalf("user delete error: %v", err)
	}
	if _, err := db.UserGet(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestUserUniqueness(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	u := User{Username: "jdoe", Email: "jdoe@example.com", IsActive: true}
	if _, err := db.UserCreate(ctx, u, "pw", testBcryptCost); err != nil {
		t.Fatalf("user create error: %v", err)
	}

	// Same username, different email.
	_, err := db.UserCreate(ctx, User{Username: "jdoe", Email: "other@example.com", IsActive: true}, "pw", testBcryptCost)
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict for duplicate username, got %v", err)
	}
	// Same email, different username.
	_, err = db.UserCreate(ctx, User{Username: "other", Email: "jdoe@example.com", IsActive: true}, "pw", testBcryptCost)
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict for duplicate email, got %v", err)
	}

	// Updating onto a taken email also conflicts.
	id, err := db.UserCreate(ctx, User{Username: "second", Email: "second@example.com", IsActive: true}, "pw", testBcryptCost)
	if err != nil {
		t.Fatalf("user create error: %v", err)
	}
	err = db.UserUpdate(ctx, id, UserPatch{Email: ptrStr("jdoe@example.com")}, testBcryptCost)
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict for update onto taken email, got %v", err)
	}

	// A patch carrying the user's own unchanged email is not a
	// conflict; only the other fields change.
	err = db.UserUpdate(ctx, id, UserPatch{
		Email:    ptrStr("second@example.com"),
		FullName: ptrStr("Second User"),
	}, testBcryptCost)
	if err != nil {
		t.Fatalf("own email patch error: %v", err)
	}
	got, err := db.UserGet(ctx, id)
	if err != nil {
		t.Fatalf("user get error: %v", err)
	}
	if got.Email != "second@example.com" {
		t.Errorf("got email %q after own email patch", got.Email)
	}
	if got.FullName != "Second User" {
		t.Errorf("got full name %q after own email patch", got.FullName)
	}
}

func TestUserAuthenticate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	id, err := db.UserCreate(ctx, User{
		Username: "jdoe",
		Email:    "jdoe@example.com",
		IsActive: true,
	}, "s3cret-pw", testBcryptCost)
	if err != nil {
		t.Fatalf("user create error: %v", err)
	}

	u, err := db.UserAuthenticate(ctx, "jdoe@example.com", "s3cret-pw")
	if err != nil {
		t.Fatalf("authenticate error: %v", err)
	}
	if u.ID != id {
		t.Errorf("got authenticated id %d, want %d", u.ID, id)
	}
	if u.PasswordHash != "" {
		t.Error("password hash leaked by UserAuthenticate")
	}

	// Signing in stamps last_login.
	got, err := db.UserGet(ctx, id)
	if err != nil {
		t.Fatalf("user get error: %v", err)
	}
	if got.LastLogin == nil {
		t.Error("expected last login to be stamped after sign in")
	}

	// A wrong password and an unknown email both fail identically.
	if _, err := db.UserAuthenticate(ctx, "jdoe@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := db.UserAuthenticate(ctx, "nobody@example.com", "s3cret-pw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}

	// Deactivated users cannot sign in.
	if err := db.UserUpdate(ctx, id, UserPatch{IsActive: ptrBool(false)}, testBcryptCost); err != nil {
		t.Fatalf("user update error: %v", err)
	}
	if _, err := db.UserAuthenticate(ctx, "jdoe@example.com", "s3cret-pw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for inactive user, got %v", err)
	}
}
