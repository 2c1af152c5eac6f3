package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/schema"
)

// ------------------------------------------------------------------------------
// Helpers
// ------------------------------------------------------------------------------

// Validator holds a map of validation errors, keyed by the form field name.
type Validator struct {
	Errors map[string]string
}

// NewValidator creates a new, initialized Validator.
func NewValidator() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

// Valid returns true if the Errors map is empty.
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// AddError adds an error message to the map for a given field if one
// doesn't already exist for that field.
func (v *Validator) AddError(key, message string) {
	if _, exists := v.Errors[key]; !exists {
		v.Errors[key] = message
	}
}

// Check is a helper for conditional validation. If `ok` is false, it
// calls AddError with the provided key and message.
func (v *Validator) Check(ok bool, key, message string) {
	if !ok {
		v.AddError(key, message)
	}
}

// First returns one of the recorded error messages for use in a
// short-circuiting JSON response.
func (v *Validator) First() string {
	for _, message := range v.Errors {
		return message
	}
	return ""
}

// validDate reports whether s is a YYYY-MM-DD date.
func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// today returns the current date in the format used for stored dates.
func today() string {
	return time.Now().UTC().Format("2006-01-02")
}

// ------------------------------------------------------------------------------
// Forms
// ------------------------------------------------------------------------------

// IDForm represents the `?id=` URL query parameter used by single
// record reads and deletes.
type IDForm struct {
	ID int64 `schema:"id"`
}

// Validate checks IDForm fields and populates Validator with any
// errors.
func (f *IDForm) Validate(v *Validator) {
	v.Check(f.ID > 0, "id", "A valid id must be provided.")
}

// SearchForm represents the `?s=` URL query parameter used by the
// keyword search endpoints.
type SearchForm struct {
	Search string `schema:"s"`
}

// Validate checks SearchForm fields and populates Validator with any
// errors. An empty keyword is rejected before any query is run.
func (f *SearchForm) Validate(v *Validator) {
	v.Check(f.Search != "", "s", "A search keyword must be provided.")
}

// TransactionListForm represents the optional filters on the financial
// transactions listing.
type TransactionListForm struct {
	Type      string `schema:"type"`
	StartDate string `schema:"start_date"`
	EndDate   string `schema:"end_date"`
}

// Validate checks TransactionListForm fields and populates Validator
// with any errors.
func (f *TransactionListForm) Validate(v *Validator) {
	allowedTypes := map[string]bool{"": true, "income": true, "expense": true}
	v.Check(allowedTypes[f.Type], "type", "Type must be income or expense.")

	v.Check(f.StartDate == "" || validDate(f.StartDate), "start_date", "Start date must be YYYY-MM-DD.")
	v.Check(f.EndDate == "" || validDate(f.EndDate), "end_date", "End date must be YYYY-MM-DD.")
	if f.StartDate != "" && f.EndDate != "" {
		v.Check(f.StartDate <= f.EndDate, "end_date", "End date cannot be before the start date.")
	}
}

// DateRangeForm represents an optional date range, used by the
// category statistics endpoint.
type DateRangeForm struct {
	StartDate string `schema:"start_date"`
	EndDate   string `schema:"end_date"`
}

// Validate checks DateRangeForm fields and populates Validator with
// any errors.
func (f *DateRangeForm) Validate(v *Validator) {
	v.Check(f.StartDate == "" || validDate(f.StartDate), "start_date", "Start date must be YYYY-MM-DD.")
	v.Check(f.EndDate == "" || validDate(f.EndDate), "end_date", "End date must be YYYY-MM-DD.")
	if f.StartDate != "" && f.EndDate != "" {
		v.Check(f.StartDate <= f.EndDate, "end_date", "End date cannot be before the start date.")
	}
}

// ------------------------------------------------------------------------------
// General decoding funcs
// ------------------------------------------------------------------------------

// newSchemaDecoder creates a new schema.Decoder instance, ignoring any
// query keys the destination form does not declare.
func newSchemaDecoder() *schema.Decoder {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	return decoder
}

// DecodeURLParams is helper that decodes URL query parameters from a request
// into a destination struct (dst).
func DecodeURLParams(r *http.Request, dst any) error {
	decoder := newSchemaDecoder()
	if err := decoder.Decode(dst, r.URL.Query()); err != nil {
		return fmt.Errorf("url parameter decoding error: %v", err)
	}
	return nil
}
