package db

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// seedTransactions inserts a small fixed set of financial transactions.
func seedTransactions(t *testing.T, db *DB) {
	t.Helper()
	ctx := context.Background()
	for _, tx := range []Transaction{
		{Type: "income", Category: "Sales", Amount: 1000, Date: "2025-01-10", Reference: "RCPT-1"},
		{Type: "expense", Category: "Office", Amount: 500, Date: "2025-01-15", Description: "chairs"},
		{Type: "expense", Category: "Office", Amount: 100, Date: "2025-02-01"},
		{Type: "income", Category: "Sales", Amount: 250, Date: "2025-02-20"},
	} {
		if _, err := db.TransactionCreate(ctx, tx); err != nil {
			t.Fatalf("transaction create error: %v", err)
		}
	}
}

func TestTransactionLifecycle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	tx := Transaction{
		Type:        "expense",
		Category:    "Office",
		Amount:      500,
		Description: "chairs",
		Date:        "2025-01-01",
		Reference:   "PO-17",
	}
	id, err := db.TransactionCreate(ctx, tx)
	if err != nil {
		t.Fatalf("transaction create error: %v", err)
	}

	got, err := db.TransactionGet(ctx, id)
	if err != nil {
		t.Fatalf("transaction get error: %v", err)
	}
	tx.ID = id
	ignore := cmpopts.IgnoreFields(Transaction{}, "CreatedAt", "UpdatedAt")
	if diff := cmp.Diff(tx, got, ignore); diff != "" {
		t.Errorf("transaction mismatch (-want +got):\n%s", diff)
	}

	err = db.TransactionUpdate(ctx, id, TransactionPatch{Amount: ptrFloat64(550)})
	if err != nil {
		t.Fatalf("transaction update error: %v", err)
	}
	got, err = db.TransactionGet(ctx, id)
	if err != nil {
		t.Fatalf("transaction get error: %v", err)
	}
	if got.Amount != 550 {
		t.Errorf("got amount %v after patch, want 550", got.Amount)
	}
	if got.Category != "Office" {
		t.Errorf("category changed unexpectedly to %q", got.Category)
	}

	if err := db.TransactionDelete(ctx, id); err != nil {
		t.Fatalf("transaction delete error: %v", err)
	}
	if _, err := db.TransactionGet(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestTransactionTypeValidation(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.TransactionCreate(ctx, Transaction{Type: "transfer", Amount: 1, Date: "2025-01-01"}); err == nil {
		t.Error("expected a type validation error on create")
	}
	if err := db.TransactionUpdate(ctx, 1, TransactionPatch{Type: ptrStr("transfer")}); err == nil {
		t.Error("expected a type validation error on update")
	}
	if _, err := db.TransactionsGet(ctx, TransactionFilter{Type: ptrStr("transfer")}); err == nil {
		t.Error("expected a type validation error on filter")
	}
}

func TestTransactionsGetFiltered(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedTransactions(t, db)

	tests := []struct {
		name   string
		filter TransactionFilter
		count  int
	}{
		{"all", TransactionFilter{}, 4},
		{"expenses", TransactionFilter{Type: ptrStr("expense")}, 2},
		{"january", TransactionFilter{DateFrom: ptrStr("2025-01-01"), DateTo: ptrStr("2025-01-31")}, 2},
		{"from february", TransactionFilter{DateFrom: ptrStr("2025-02-01")}, 2},
		{"february expenses", TransactionFilter{Type: ptrStr("expense"), DateFrom: ptrStr("2025-02-01")}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transactions, err := db.TransactionsGet(ctx, tt.filter)
			if err != nil {
				t.Fatalf("transactions get error: %v", err)
			}
			if got, want := len(transactions), tt.count; got != want {
				t.Errorf("got %d transactions, want %d", got, want)
			}
		})
	}
}

func TestTransactionSearch(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedTransactions(t, db)

	tests := []struct {
		search string
		count  int
	}{
		{"Office", 2},
		{"chairs", 1},
		{"RCPT", 1},
		{"zebra", 0},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			matches, err := db.TransactionSearch(ctx, tt.search)
			if err != nil {
				t.Fatalf("transaction search error: %v", err)
			}
			if got, want := len(matches), tt.count; got != want {
				t.Errorf("got %d matches for %q, want %d", got, tt.search, want)
			}
		})
	}
}

func TestFinancialAndCategoryStats(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedTransactions(t, db)

	stats, err := db.FinancialStatsGet(ctx, nil, nil)
	if err != nil {
		t.Fatalf("financial stats error: %v", err)
	}
	want := FinancialStats{
		TotalTransactions: 4,
		TotalIncome:       1250,
		TotalExpense:      600,
		NetAmount:         650,
	}
	if diff := cmp.Diff(want, stats, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("financial stats mismatch (-want +got):\n%s", diff)
	}

	// Scoped to January only.
	stats, err = db.FinancialStatsGet(ctx, ptrStr("2025-01-01"), ptrStr("2025-01-31"))
	if err != nil {
		t.Fatalf("financial stats error: %v", err)
	}
	if got, want := stats.NetAmount, 500.0; got != want {
		t.Errorf("got january net %v, want %v", got, want)
	}

	categories, err := db.CategoryStatsGet(ctx, nil, nil)
	if err != nil {
		t.Fatalf("category stats error: %v", err)
	}
	wantCategories := []CategoryStats{
		{Category: "Sales", Type: "income", TransactionCount: 2, TotalAmount: 1250},
		{Category: "Office", Type: "expense", TransactionCount: 2, TotalAmount: 600},
	}
	if diff := cmp.Diff(wantCategories, categories, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("category stats mismatch (-want +got):\n%s", diff)
	}
}
