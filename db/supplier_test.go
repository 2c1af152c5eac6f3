package db

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestSupplierLifecycle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	s := Supplier{
		Name:          "Acme Sarl",
		Email:         "contact@acme.example",
		Phone:         "+212 5 22 00 00 00",
		Address:       "1 Rue Example, Casablanca",
		ContactPerson: "A Person",
	}
	id, err := db.SupplierCreate(ctx, s)
	if err != nil {
		t.Fatalf("supplier create error: %v", err)
	}

	got, err := db.SupplierGet(ctx, id)
	if err != nil {
		t.Fatalf("supplier get error: %v", err)
	}
	s.ID = id
	ignore := cmpopts.IgnoreFields(Supplier{}, "CreatedAt", "UpdatedAt")
	if diff := cmp.Diff(s, got, ignore); diff != "" {
		t.Errorf("supplier mismatch (-want +got):\n%s", diff)
	}

	err = db.SupplierUpdate(ctx, id, SupplierPatch{Phone: ptrStr("+212 5 22 11 11 11")})
	if err != nil {
		t.Fatalf("supplier update error: %v", err)
	}
	got, err = db.SupplierGet(ctx, id)
	if err != nil {
		t.Fatalf("supplier get error: %v", err)
	}
	if got.Phone != "+212 5 22 11 11 11" {
		t.Errorf("got phone %q after patch", got.Phone)
	}
	if got.Name != "Acme Sarl" {
		t.Errorf("name changed unexpectedly to %q", got.Name)
	}

	if err := db.SupplierDelete(ctx, id); err != nil {
		t.Fatalf("supplier delete error: %v", err)
	}
	if _, err := db.SupplierGet(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestSupplierSearch(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for _, s := range []Supplier{
		{Name: "Acme Sarl", Email: "sales@acme.example", ContactPerson: "A Person"},
		{Name: "Bolt SA", Phone: "0522000000"},
	} {
		if _, err := db.SupplierCreate(ctx, s); err != nil {
			t.Fatalf("supplier create error: %v", err)
		}
	}

	tests := []struct {
		search string
		count  int
	}{
		{"acme", 1},
		{"0522", 1},
		{"Person", 1},
		{"zebra", 0},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			matches, err := db.SupplierSearch(ctx, tt.search)
			if err != nil {
				t.Fatalf("supplier search error: %v", err)
			}
			if got, want := len(matches), tt.count; got != want {
				t.Errorf("got %d matches for %q, want %d", got, tt.search, want)
			}
		})
	}
}

func TestSupplierStats(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	id, err := db.SupplierCreate(ctx, Supplier{Name: "Acme Sarl"})
	if err != nil {
		t.Fatalf("supplier create error: %v", err)
	}

	// Invoices are linked to suppliers by client name only.
	items := []InvoiceItem{
		{Articles: "widgets", Qte: 10, Mt: 120},
		{Articles: "gadgets", Qte: 5, Mt: 80},
	}
	inv := Invoice{ClientName: "Acme Sarl", InvoiceNumber: "INV-001", Date: "2025-01-01"}
	if _, err := db.InvoiceCreate(ctx, inv, items, nil); err != nil {
		t.Fatalf("invoice create error: %v", err)
	}

	stats, err := db.SupplierStatsGet(ctx, id)
	if err != nil {
		t.Fatalf("supplier stats error: %v", err)
	}
	want := SupplierStats{TotalInvoices: 1, TotalItemsSupplied: 15, TotalAmount: 200}
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Errorf("supplier stats mismatch (-want +got):\n%s", diff)
	}

	// Stats for an unknown supplier are a not found error, not empty
	// stats.
	if _, err := db.SupplierStatsGet(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
