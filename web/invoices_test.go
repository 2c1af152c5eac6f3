package web

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/rorycl/bizmanager/db"
)

// createTestInvoice posts an invoice with two items and a summary,
// returning the created record.
func createTestInvoice(t *testing.T, h http.Handler, clientName, number string) invoiceRecord {
	t.Helper()

	body := map[string]any{
		"clientName":    clientName,
		"invoiceNumber": number,
		"date":          "2025-03-01",
		"isLocal":       false,
		"totalAmount":   150.0,
		"status":        "Pending",
		"items": []map[string]any{
			{"refFournisseur": "RF-1", "articles": "Steel bolts", "qte": 10, "poids": 2.5, "puPieces": 5.0, "exchangeRate": 1.1, "mt": 50.0, "prixAchat": 40.0, "autresCharges": 2.0, "cuHt": 4.2},
			{"refFournisseur": "RF-2", "articles": "Copper wire", "qte": 5, "poids": 1.0, "puPieces": 20.0, "exchangeRate": 1.1, "mt": 100.0, "prixAchat": 80.0, "autresCharges": 5.0, "cuHt": 17.0},
		},
		"summary": map[string]any{
			"factureNumber": number, "transit": 10.0, "droitDouane": 5.0,
			"chequeChange": 0.0, "freiht": 7.5, "autres": 1.0, "total": 173.5,
			"txChange": 1.1, "poidsTotal": 3.5,
		},
	}

	w, e := doRequest(t, h, "POST", "/invoices", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, want 201: %s", w.Code, w.Body.String())
	}
	if !e.Success {
		t.Fatalf("expected success, got %q", e.Message)
	}
	var record invoiceRecord
	decodeData(t, e, &record)
	return record
}

func TestInvoiceEndpoints(t *testing.T) {
	webApp := setupTestWebApp(t)
	h := webApp.routes()

	created := createTestInvoice(t, h, "Acme Sarl", "INV-001")
	if created.ID < 1 {
		t.Fatalf("expected a positive id, got %d", created.ID)
	}
	if got, want := len(created.Items), 2; got != want {
		t.Errorf("got %d items, want %d", got, want)
	}
	if created.Summary == nil {
		t.Fatal("expected a summary on the created record")
	}

	// Single read returns the same record.
	w, e := doRequest(t, h, "GET", fmt.Sprintf("/invoices?id=%d", created.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", w.Code)
	}
	var fetched invoiceRecord
	decodeData(t, e, &fetched)
	if diff := cmp.Diff(created, fetched); diff != "" {
		t.Errorf("record mismatch (-created +fetched):\n%s", diff)
	}

	// List read includes the full record.
	_, e = doRequest(t, h, "GET", "/invoices", nil)
	var records []invoiceRecord
	decodeData(t, e, &records)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if len(records[0].Items) != 2 || records[0].Summary == nil {
		t.Error("list record should include items and summary")
	}

	// Status endpoint patches only the status.
	w, e = doRequest(t, h, "PUT", "/invoices/status", map[string]any{
		"id": created.ID, "status": "Paid",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", w.Code)
	}
	decodeData(t, e, &fetched)
	if fetched.Status != "Paid" {
		t.Errorf("got status %q, want Paid", fetched.Status)
	}
	if fetched.ClientName != "Acme Sarl" {
		t.Errorf("client name changed to %q", fetched.ClientName)
	}

	// Type endpoint flips the local flag.
	_, e = doRequest(t, h, "PUT", "/invoices/type", map[string]any{
		"id": created.ID, "isLocal": true,
	})
	decodeData(t, e, &fetched)
	if !fetched.IsLocal {
		t.Error("expected isLocal true after type update")
	}

	// Totals aggregate the line items.
	_, e = doRequest(t, h, "GET", fmt.Sprintf("/invoices/totals?id=%d", created.ID), nil)
	var totals db.InvoiceTotals
	decodeData(t, e, &totals)
	if totals.TotalItems != 2 {
		t.Errorf("got %d total items, want 2", totals.TotalItems)
	}
	if totals.TotalQuantity != 15 {
		t.Errorf("got %v total quantity, want 15", totals.TotalQuantity)
	}

	// Delete, then the single read is a 404.
	w, _ = doRequest(t, h, "DELETE", fmt.Sprintf("/invoices?id=%d", created.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", w.Code)
	}
	w, e = doRequest(t, h, "GET", fmt.Sprintf("/invoices?id=%d", created.ID), nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("got status %d, want 404", w.Code)
	}
	if e.Success {
		t.Error("expected success false for a missing invoice")
	}
}

func TestInvoiceValidation(t *testing.T) {
	webApp := setupTestWebApp(t)
	h := webApp.routes()

	// Creation requires a client name and invoice number.
	w, e := doRequest(t, h, "POST", "/invoices", map[string]any{"clientName": "Acme"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("got status %d, want 400", w.Code)
	}
	if e.Success {
		t.Error("expected success false")
	}

	// A malformed date is rejected.
	w, _ = doRequest(t, h, "POST", "/invoices", map[string]any{
		"clientName": "Acme", "invoiceNumber": "INV-9", "date": "01/03/2025",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("got status %d, want 400 for a bad date", w.Code)
	}

	// Updates need a positive id.
	w, _ = doRequest(t, h, "PUT", "/invoices", map[string]any{"status": "Paid"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("got status %d, want 400 for a missing id", w.Code)
	}

	// Updating a missing invoice is a 404.
	w, _ = doRequest(t, h, "PUT", "/invoices", map[string]any{"id": 999, "status": "Paid"})
	if w.Code != http.StatusNotFound {
		t.Errorf("got status %d, want 404", w.Code)
	}
}

func TestInvoiceSearchEndpoint(t *testing.T) {
	webApp := setupTestWebApp(t)
	h := webApp.routes()

	createTestInvoice(t, h, "Acme Sarl", "INV-001")
	createTestInvoice(t, h, "Bolt Traders", "INV-002")

	// An empty keyword is rejected before any query runs.
	w, _ := doRequest(t, h, "GET", "/invoices/search", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("got status %d, want 400 for a missing keyword", w.Code)
	}

	w, e := doRequest(t, h, "GET", "/invoices/search?s=acme", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", w.Code)
	}
	var invoices []db.Invoice
	decodeData(t, e, &invoices)
	if len(invoices) != 1 {
		t.Errorf("got %d results, want 1", len(invoices))
	}

	_, e = doRequest(t, h, "GET", "/invoices/search?s=INV-", nil)
	decodeData(t, e, &invoices)
	if len(invoices) != 2 {
		t.Errorf("got %d results, want 2", len(invoices))
	}
}
