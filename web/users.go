package web

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"net/mail"

	"github.com/rorycl/bizmanager/db"
)

const minPasswordLength = 6

// userForm is a user create or update request. Nil fields in an update
// leave the stored value untouched.
type userForm struct {
	ID       int64   `json:"id"`
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	FullName *string `json:"full_name"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

// signinForm is a signin request.
type signinForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleUsers provides user management on /auth/users.
func (web *WebApp) handleUsers() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			web.usersGet(w, r)
		case http.MethodPost:
			web.usersCreate(w, r)
		case http.MethodPut:
			web.usersUpdate(w, r)
		case http.MethodDelete:
			web.usersDelete(w, r)
		}
	})
}

// usersGet lists users, or fetches one by ?id=. Password hashes never
// leave the database layer.
func (web *WebApp) usersGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.URL.Query().Has("id") {
		var form IDForm
		if err := DecodeURLParams(r, &form); err != nil {
			web.clientError(w, "invalid query parameters", http.StatusBadRequest)
			return
		}
		validator := NewValidator()
		form.Validate(validator)
		if !validator.Valid() {
			web.clientError(w, validator.First(), http.StatusBadRequest)
			return
		}
		user, err := web.db.UserGet(ctx, form.ID)
		if err != nil {
			web.storeError(w, r, err, "user not found")
			return
		}
		web.respond(w, http.StatusOK, "", user)
		return
	}

	users, err := web.db.UsersGet(ctx)
	if err != nil {
		web.serverError(w, r, err)
		return
	}
	web.respond(w, http.StatusOK, "", users)
}

// usersCreate creates a user from a JSON body.
func (web *WebApp) usersCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var form userForm
	if !web.decodeJSONBody(w, r, &form) {
		return
	}

	validator := NewValidator()
	validator.Check(form.Username != nil && *form.Username != "", "username", "A username must be provided.")
	validator.Check(form.Email != nil && *form.Email != "", "email", "An email must be provided.")
	validator.Check(form.Password != nil && *form.Password != "", "password", "A password must be provided.")
	validator.Check(form.FullName != nil && *form.FullName != "", "full_name", "A full name must be provided.")
	if !validator.Valid() {
		web.clientError(w, validator.First(), http.StatusBadRequest)
		return
	}
	validator.Check(validEmail(*form.Email), "email", "A valid email address must be provided.")
	validator.Check(len(*form.Password) >= minPasswordLength, "password", "The password must be at least 6 characters long.")
	if !validator.Valid() {
		web.clientError(w, validator.First(), http.StatusBadRequest)
		return
	}

	user := db.User{
		Username: *form.Username,
		Email:    *form.Email,
		FullName: *form.FullName,
		Role:     "user",
		IsActive: true,
	}
	if form.Role != nil && *form.Role != "" {
		user.Role = *form.Role
	}
	if form.IsActive != nil {
		user.IsActive = *form.IsActive
	}

	id, err := web.db.UserCreate(ctx, user, *form.Password, web.cfg.BcryptCost)
	if err != nil {
		web.storeError(w, r, err, "user not found")
		return
	}
	created, err := web.db.UserGet(ctx, id)
	if err != nil {
		web.serverError(w, r, err)
		return
	}
	web.respond(w, http.StatusCreated, "User was created successfully.", created)
}

// usersUpdate partially updates a user identified by ?id= or the body
// id field. A supplied password is re-hashed.
func (web *WebApp) usersUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var form userForm
	if !web.decodeJSONBody(w, r, &form) {
		return
	}
	if form.ID == 0 && r.URL.Query().Has("id") {
		var idForm IDForm
		if err := DecodeURLParams(r, &idForm); err == nil {
			form.ID = idForm.ID
		}
	}

	validator := NewValidator()
	validator.Check(form.ID > 0, "id", "A valid id must be provided.")
	if form.Email != nil {
		validator.Check(validEmail(*form.Email), "email", "A valid email address must be provided.")
	}
	if form.Password != nil {
		validator.Check(len(*form.Password) >= minPasswordLength, "password", "The password must be at least 6 characters long.")
	}
	if !validator.Valid() {
		web.clientError(w, validator.First(), http.StatusBadRequest)
		return
	}

	patch := db.UserPatch{
		Username: form.Username,
		Email:    form.Email,
		Password: form.Password,
		FullName: form.FullName,
		Role:     form.Role,
		IsActive: form.IsActive,
	}
	if err := web.db.UserUpdate(ctx, form.ID, patch, web.cfg.BcryptCost); err != nil {
		web.storeError(w, r, err, "user not found")
		return
	}
	user, err := web.db.UserGet(ctx, form.ID)
	if err != nil {
		web.storeError(w, r, err, "user not found")
		return
	}
	web.respond(w, http.StatusOK, "User was updated successfully.", user)
}

// usersDelete removes a user by ?id=.
func (web *WebApp) usersDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var form IDForm
	if err := DecodeURLParams(r, &form); err != nil {
		web.clientError(w, "invalid query parameters", http.StatusBadRequest)
		return
	}
	validator := NewValidator()
	form.Validate(validator)
	if !validator.Valid() {
		web.clientError(w, validator.First(), http.StatusBadRequest)
		return
	}

	user, err := web.db.UserGet(ctx, form.ID)
	if err != nil {
		web.storeError(w, r, err, "user not found")
		return
	}
	if err := web.db.UserDelete(ctx, form.ID); err != nil {
		web.storeError(w, r, err, "user not found")
		return
	}
	web.respond(w, http.StatusOK, "User was deleted successfully.", map[string]any{
		"id":       user.ID,
		"username": user.Username,
	})
}

// handleSignin verifies credentials on /auth/signin and issues an
// opaque session token. The token is not persisted; clients hold it
// for the session only.
func (web *WebApp) handleSignin() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var form signinForm
		if !web.decodeJSONBody(w, r, &form) {
			return
		}
		validator := NewValidator()
		validator.Check(form.Email != "", "email", "An email must be provided.")
		validator.Check(form.Password != "", "password", "A password must be provided.")
		if !validator.Valid() {
			web.clientError(w, validator.First(), http.StatusBadRequest)
			return
		}

		user, err := web.db.UserAuthenticate(ctx, form.Email, form.Password)
		if errors.Is(err, db.ErrInvalidCredentials) {
			// The same message for an unknown email and a wrong
			// password.
			web.clientError(w, "invalid email or password", http.StatusBadRequest)
			return
		}
		if err != nil {
			web.serverError(w, r, err)
			return
		}

		token, err := sessionToken()
		if err != nil {
			web.serverError(w, r, err)
			return
		}
		web.respond(w, http.StatusOK, "Signed in successfully.", map[string]any{
			"user":  user,
			"token": token,
		})
	})
}

// sessionToken generates a random opaque token.
func sessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// validEmail reports whether s parses as an email address.
func validEmail(s string) bool {
	_, err := mail.ParseAddress(s)
	return err == nil
}
