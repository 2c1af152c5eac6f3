package web

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/rorycl/bizmanager/db"
)

// seedWebTransactions posts a small set of transactions across two
// months.
func seedWebTransactions(t *testing.T, h http.Handler) {
	t.Helper()
	for _, tx := range []map[string]any{
		{"type": "income", "category": "Sales", "amount": 1000.0, "date": "2025-01-10"},
		{"type": "expense", "category": "Office", "amount": 400.0, "date": "2025-01-15"},
		{"type": "income", "category": "Sales", "amount": 250.0, "date": "2025-02-05"},
		{"type": "expense", "category": "Travel", "amount": 200.0, "date": "2025-02-20"},
	} {
		w, _ := doRequest(t, h, "POST", "/transactions", tx)
		if w.Code != http.StatusCreated {
			t.Fatalf("setup create failed with status %d", w.Code)
		}
	}
}

func TestTransactionEndpoints(t *testing.T) {
	webApp := setupTestWebApp(t)
	h := webApp.routes()

	// The type is constrained.
	w, _ := doRequest(t, h, "POST", "/transactions", map[string]any{
		"type": "transfer", "amount": 10.0,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("got status %d, want 400 for a bad type", w.Code)
	}

	// An amount is required.
	w, _ = doRequest(t, h, "POST", "/transactions", map[string]any{"type": "income"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("got status %d, want 400 for a missing amount", w.Code)
	}

	w, e := doRequest(t, h, "POST", "/transactions", map[string]any{
		"type": "income", "category": "Sales", "amount": 99.5, "date": "2025-01-02",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, want 201: %s", w.Code, w.Body.String())
	}
	var tx db.Transaction
	decodeData(t, e, &tx)
	if tx.Amount != 99.5 {
		t.Errorf("got amount %v, want 99.5", tx.Amount)
	}

	w, e = doRequest(t, h, "PUT", "/transactions", map[string]any{
		"id": tx.ID, "category": "Consulting",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", w.Code)
	}
	decodeData(t, e, &tx)
	if tx.Category != "Consulting" {
		t.Errorf("got category %q, want Consulting", tx.Category)
	}

	w, _ = doRequest(t, h, "DELETE", fmt.Sprintf("/transactions?id=%d", tx.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", w.Code)
	}
}

func TestTransactionListingAndStats(t *testing.T) {
	webApp := setupTestWebApp(t)
	h := webApp.routes()
	seedWebTransactions(t, h)

	var listing struct {
		Records []db.Transaction  `json:"records"`
		Stats   db.FinancialStats `json:"stats"`
	}

	// The full listing carries overall statistics.
	_, e := doRequest(t, h, "GET", "/transactions", nil)
	decodeData(t, e, &listing)
	if len(listing.Records) != 4 {
		t.Fatalf("got %d records, want 4", len(listing.Records))
	}
	if listing.Stats.TotalIncome != 1250 {
		t.Errorf("got total income %v, want 1250", listing.Stats.TotalIncome)
	}
	if listing.Stats.TotalExpense != 600 {
		t.Errorf("got total expenses %v, want 600", listing.Stats.TotalExpense)
	}

	// Filters narrow both records and statistics.
	_, e = doRequest(t, h, "GET", "/transactions?start_date=2025-01-01&end_date=2025-01-31", nil)
	decodeData(t, e, &listing)
	if len(listing.Records) != 2 {
		t.Errorf("got %d january records, want 2", len(listing.Records))
	}
	if listing.Stats.NetAmount != 600 {
		t.Errorf("got january net %v, want 600", listing.Stats.NetAmount)
	}

	_, e = doRequest(t, h, "GET", "/transactions?type=expense", nil)
	decodeData(t, e, &listing)
	if len(listing.Records) != 2 {
		t.Errorf("got %d expense records, want 2", len(listing.Records))
	}

	// A bad filter type is rejected.
	w, _ := doRequest(t, h, "GET", "/transactions?type=transfer", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("got status %d, want 400 for a bad filter type", w.Code)
	}

	// An inverted date range is rejected.
	w, _ = doRequest(t, h, "GET", "/transactions?start_date=2025-02-01&end_date=2025-01-01", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("got status %d, want 400 for an inverted range", w.Code)
	}
}

func TestCategoryStatsEndpoint(t *testing.T) {
	webApp := setupTestWebApp(t)
	h := webApp.routes()
	seedWebTransactions(t, h)

	_, e := doRequest(t, h, "GET", "/transactions/stats/categories", nil)
	var stats []db.CategoryStats
	decodeData(t, e, &stats)
	if len(stats) != 3 {
		t.Fatalf("got %d category rows, want 3", len(stats))
	}
	// Ordered by total amount, largest first.
	if stats[0].Category != "Sales" {
		t.Errorf("got first category %q, want Sales", stats[0].Category)
	}

	_, e = doRequest(t, h, "GET", "/transactions/stats/categories?start_date=2025-02-01", nil)
	decodeData(t, e, &stats)
	if len(stats) != 2 {
		t.Errorf("got %d category rows from february, want 2", len(stats))
	}
}

func TestTransactionSearchEndpoint(t *testing.T) {
	webApp := setupTestWebApp(t)
	h := webApp.routes()
	seedWebTransactions(t, h)

	w, _ := doRequest(t, h, "GET", "/transactions/search", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("got status %d, want 400 for a missing keyword", w.Code)
	}

	_, e := doRequest(t, h, "GET", "/transactions/search?s=office", nil)
	var transactions []db.Transaction
	decodeData(t, e, &transactions)
	if len(transactions) != 1 {
		t.Errorf("got %d results, want 1", len(transactions))
	}
}
