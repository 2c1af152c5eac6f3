package db

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParameterize(t *testing.T) {

	tests := []struct {
		input        string
		expectedArgs []string
		expectedBody string
		isErr        bool
	}{
		{
			input:        `date('2025-01-01') AS DateFrom   /* @param */`,
			expectedArgs: []string{"DateFrom"},
			expectedBody: `:DateFrom AS DateFrom`,
		},
		{
			input: `nothing`,
			isErr: true,
		},
		{
			input: `
WITH params AS (
	SELECT 'Acme Sarl' AS ClientName /* @param */
	,'INV-001' AS InvoiceNumber      /* @param */
	,date('2025-01-01') AS InvoiceDate /* @param */
	,1 AS IsLocal                    /* @param */
	,-34.5 AS FloatExample           /* @param */
	,null AS NullExample             /* @param */
	-- Pending | Paid
	,'Pending' AS Status             /* @param */
	,'raw string' AS RawString
)
`,
			expectedArgs: []string{
				"ClientName", "InvoiceNumber", "InvoiceDate", "IsLocal",
				"FloatExample", "NullExample", "Status"},
			expectedBody: `
WITH params AS (
	SELECT :ClientName AS ClientName
	,:InvoiceNumber AS InvoiceNumber
	,:InvoiceDate AS InvoiceDate
	,:IsLocal AS IsLocal
	,:FloatExample AS FloatExample
	,:NullExample AS NullExample
	-- Pending | Paid
	,:Status AS Status
	,'raw string' AS RawString
)
`,
		},
	}

	for ii, tt := range tests {
		t.Run(fmt.Sprintf("test_%d", ii), func(t *testing.T) {
			result, err := parameterize([]byte(tt.input))
			if err != nil {
				if tt.isErr {
					if !errors.Is(err, ErrNoParameters) {
						t.Fatalf("expected ErrNoParameters, got %v", err)
					}
					return
				}
				t.Fatal(err)
			}
			if got, want := len(result.Parameters), len(tt.expectedArgs); got != want {
				t.Errorf("got %d parameters, want %d", got, want)
			}
			if diff := cmp.Diff(tt.expectedArgs, result.Parameters); diff != "" {
				t.Errorf("Parameters mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(string(result.Body), tt.expectedBody); diff != "" {
				t.Error(diff)
			}
		})
	}
}

func TestParameterizeFile(t *testing.T) {

	sqlDir := os.DirFS("sql")

	_, err := ParameterizeFile(sqlDir, "invoice_get.sql")
	if err != nil {
		t.Fatalf("unexpected file parameterization error: %v", err)
	}
	// A parameterless file reports ErrNoParameters so that it can be
	// prepared verbatim instead.
	_, err = ParameterizeFile(sqlDir, "invoices.sql")
	if !errors.Is(err, ErrNoParameters) {
		t.Fatalf("expected ErrNoParameters, got %v", err)
	}
	_, err = ParameterizeFile(sqlDir, "doesNotExist")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected file parameterization error")
	}
}
