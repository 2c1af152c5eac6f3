package db

// invoice.go deals with invoice, invoice line item and invoice summary
// database calls. Invoices own their line items and an optional 1:1
// summary row, so the write operations run in transactions.

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Invoice is the concrete type of each invoice row.
type Invoice struct {
	ID            int64   `db:"id" json:"id"`
	ClientName    string  `db:"client_name" json:"clientName"`
	InvoiceNumber string  `db:"invoice_number" json:"invoiceNumber"`
	Date          string  `db:"date" json:"date"`
	IsLocal       bool    `db:"is_local" json:"isLocal"`
	TotalAmount   float64 `db:"total_amount" json:"totalAmount"`
	Status        string  `db:"status" json:"status"`
	CreatedAt     string  `db:"created_at" json:"createdAt"`
	UpdatedAt     string  `db:"updated_at" json:"updatedAt"`
}

// InvoiceItem is a single line item belonging to an invoice. The field
// names follow the import paperwork they are transcribed from.
type InvoiceItem struct {
	ID             int64   `db:"id" json:"id"`
	InvoiceID      int64   `db:"invoice_id" json:"invoiceId"`
	RefFournisseur string  `db:"ref_fournisseur" json:"refFournisseur"`
	Articles       string  `db:"articles" json:"articles"`
	Qte            float64 `db:"qte" json:"qte"`
	Poids          float64 `db:"poids" json:"poids"`
	PuPieces       float64 `db:"pu_pieces" json:"puPieces"`
	ExchangeRate   float64 `db:"exchange_rate" json:"exchangeRate"`
	Mt             float64 `db:"mt" json:"mt"`
	PrixAchat      float64 `db:"prix_achat" json:"prixAchat"`
	AutresCharges  float64 `db:"autres_charges" json:"autresCharges"`
	CuHt           float64 `db:"cu_ht" json:"cuHt"`
}

// InvoiceSummary is the optional 1:1 costing summary for an invoice.
type InvoiceSummary struct {
	InvoiceID     int64   `db:"invoice_id" json:"invoiceId"`
	FactureNumber string  `db:"facture_number" json:"factureNumber"`
	Transit       float64 `db:"transit" json:"transit"`
	DroitDouane   float64 `db:"droit_douane" json:"droitDouane"`
	ChequeChange  float64 `db:"cheque_change" json:"chequeChange"`
	Freiht        float64 `db:"freiht" json:"freiht"`
	Autres        float64 `db:"autres" json:"autres"`
	Total         float64 `db:"total" json:"total"`
	TxChange      float64 `db:"tx_change" json:"txChange"`
	PoidsTotal    float64 `db:"poids_total" json:"poidsTotal"`
}

// InvoiceTotals aggregates an invoice's line items.
type InvoiceTotals struct {
	TotalItems         int     `db:"total_items" json:"totalItems"`
	TotalQuantity      float64 `db:"total_quantity" json:"totalQuantity"`
	TotalWeight        float64 `db:"total_weight" json:"totalWeight"`
	TotalAmount        float64 `db:"total_amount" json:"totalAmount"`
	TotalPurchasePrice float64 `db:"total_purchase_price" json:"totalPurchasePrice"`
	TotalOtherCharges  float64 `db:"total_other_charges" json:"totalOtherCharges"`
	TotalCost          float64 `db:"total_cost" json:"totalCost"`
}

// InvoicePatch carries optional invoice field updates. Nil fields leave
// the stored column untouched.
type InvoicePatch struct {
	ClientName    *string
	InvoiceNumber *string
	Date          *string
	IsLocal       *bool
	TotalAmount   *float64
	Status        *string
}

// InvoiceCreate inserts an invoice together with its line items and
// optional summary in a single transaction, returning the generated
// invoice id.
func (db *DB) InvoiceCreate(ctx context.Context, inv Invoice, items []InvoiceItem, summary *InvoiceSummary) (int64, error) {

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback() // no-op after commit.

	ps := db.stmt(invoiceInsertSQL)
	namedArgs := map[string]any{
		"ClientName":    inv.ClientName,
		"InvoiceNumber": inv.InvoiceNumber,
		"InvoiceDate":   inv.Date,
		"IsLocal":       inv.IsLocal,
		"TotalAmount":   inv.TotalAmount,
		"Status":        inv.Status,
	}
	if err := ps.verifyArgs(namedArgs); err != nil {
		return 0, fmt.Errorf("invoice insert verify arguments error: %v", err)
	}

	var id int64
	err = tx.NamedStmtContext(ctx, ps.NamedStmt).GetContext(ctx, &id, namedArgs)
	db.logQuery("invoice insert", namedArgs, err)
	if err != nil {
		return 0, fmt.Errorf("failed to insert invoice %q: %w", inv.InvoiceNumber, err)
	}

	if err := db.insertInvoiceItems(ctx, tx, id, items); err != nil {
		return 0, err
	}
	if summary != nil {
		s := *summary
		s.InvoiceID = id
		if err := db.upsertInvoiceSummary(ctx, tx, s); err != nil {
			return 0, err
		}
	}
	return id, tx.Commit()
}

// insertInvoiceItems adds the line items for an invoice within the
// supplied transaction.
func (db *DB) insertInvoiceItems(ctx context.Context, tx *sqlx.Tx, invoiceID int64, items []InvoiceItem) error {
	ps := db.stmt(invoiceItemsInsertSQL)
	stmt := tx.NamedStmtContext(ctx, ps.NamedStmt)
	for _, item := range items {
		namedArgs := map[string]any{
			"InvoiceID":      invoiceID,
			"RefFournisseur": item.RefFournisseur,
			"Articles":       item.Articles,
			"Qte":            item.Qte,
			"Poids":          item.Poids,
			"PuPieces":       item.PuPieces,
			"ExchangeRate":   item.ExchangeRate,
			"Mt":             item.Mt,
			"PrixAchat":      item.PrixAchat,
			"AutresCharges":  item.AutresCharges,
			"CuHt":           item.CuHt,
		}
		if err := ps.verifyArgs(namedArgs); err != nil {
			return fmt.Errorf("invoice item insert verify arguments error: %v", err)
		}
		_, err := stmt.ExecContext(ctx, namedArgs)
		if err != nil {
			return fmt.Errorf("failed to insert line item %q for invoice %d: %w", item.Articles, invoiceID, err)
		}
	}
	return nil
}

// upsertInvoiceSummary inserts or replaces the summary row for an
// invoice within the supplied transaction.
func (db *DB) upsertInvoiceSummary(ctx context.Context, tx *sqlx.Tx, s InvoiceSummary) error {
	ps := db.stmt(invoiceSummaryUpsertSQL)
	namedArgs := map[string]any{
		"InvoiceID":     s.InvoiceID,
		"FactureNumber": s.FactureNumber,
		"Transit":       s.Transit,
		"DroitDouane":   s.DroitDouane,
		"ChequeChange":  s.ChequeChange,
		"Freiht":        s.Freiht,
		"Autres":        s.Autres,
		"Total":         s.Total,
		"TxChange":      s.TxChange,
		"PoidsTotal":    s.PoidsTotal,
	}
	if err := ps.verifyArgs(namedArgs); err != nil {
		return fmt.Errorf("invoice summary upsert verify arguments error: %v", err)
	}
	_, err := tx.NamedStmtContext(ctx, ps.NamedStmt).ExecContext(ctx, namedArgs)
	db.logQuery("invoice summary upsert", namedArgs, err)
	if err != nil {
		return fmt.Errorf("failed to upsert summary for invoice %d: %w", s.InvoiceID, err)
	}
	return nil
}

// InvoicesGet returns all invoices, newest first. An empty database
// yields an empty slice rather than an error.
func (db *DB) InvoicesGet(ctx context.Context) ([]Invoice, error) {
	invoices := []Invoice{}
	err := db.SelectContext(ctx, &invoices, db.query(invoicesSQL))
	if err != nil {
		return nil, fmt.Errorf("invoices select error: %w", err)
	}
	return invoices, nil
}

// InvoiceGet returns a single invoice by id.
func (db *DB) InvoiceGet(ctx context.Context, id int64) (Invoice, error) {
	ps := db.stmt(invoiceGetSQL)
	namedArgs := map[string]any{"ID": id}
	if err := ps.verifyArgs(namedArgs); err != nil {
		return Invoice{}, err
	}
	var inv Invoice
	err := ps.GetContext(ctx, &inv, namedArgs)
	db.logQuery("invoice get", namedArgs, err)
	if errors.Is(err, sql.ErrNoRows) {
		return Invoice{}, ErrNotFound
	}
	if err != nil {
		return Invoice{}, fmt.Errorf("invoice select error: %w", err)
	}
	return inv, nil
}

// InvoiceUpdate patches an invoice and, when non-nil, replaces its line
// items or summary, all in one transaction. A nil items pointer leaves
// the stored items alone; a pointer to an empty slice removes them.
func (db *DB) InvoiceUpdate(ctx context.Context, id int64, patch InvoicePatch, items *[]InvoiceItem, summary *InvoiceSummary) error {

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() // no-op after commit.

	ps := db.stmt(invoiceUpdateSQL)
	namedArgs := map[string]any{
		"ID":            id,
		"ClientName":    patch.ClientName,
		"InvoiceNumber": patch.InvoiceNumber,
		"InvoiceDate":   patch.Date,
		"IsLocal":       patch.IsLocal,
		"TotalAmount":   patch.TotalAmount,
		"Status":        patch.Status,
	}
	if err := ps.verifyArgs(namedArgs); err != nil {
		return fmt.Errorf("invoice update verify arguments error: %v", err)
	}
	res, err := tx.NamedStmtContext(ctx, ps.NamedStmt).ExecContext(ctx, namedArgs)
	db.logQuery("invoice update", namedArgs, err)
	if err != nil {
		return fmt.Errorf("failed to update invoice %d: %w", id, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	if items != nil {
		if err := db.deleteInvoiceItems(ctx, tx, id); err != nil {
			return err
		}
		if err := db.insertInvoiceItems(ctx, tx, id, *items); err != nil {
			return err
		}
	}
	if summary != nil {
		s := *summary
		s.InvoiceID = id
		if err := db.upsertInvoiceSummary(ctx, tx, s); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// deleteInvoiceItems removes all line items for an invoice within the
// supplied transaction.
func (db *DB) deleteInvoiceItems(ctx context.Context, tx *sqlx.Tx, invoiceID int64) error {
	ps := db.stmt(invoiceItemsDeleteSQL)
	namedArgs := map[string]any{"InvoiceID": invoiceID}
	if err := ps.verifyArgs(namedArgs); err != nil {
		return err
	}
	_, err := tx.NamedStmtContext(ctx, ps.NamedStmt).ExecContext(ctx, namedArgs)
	if err != nil {
		return fmt.Errorf("failed to delete line items for invoice %d: %w", invoiceID, err)
	}
	return nil
}

// InvoiceDelete removes an invoice with its line items and summary in a
// single transaction. The children are deleted explicitly rather than
// relying on the schema's cascade rules.
func (db *DB) InvoiceDelete(ctx context.Context, id int64) error {

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() // no-op after commit.

	ps := db.stmt(invoiceSummaryDeleteSQL)
	namedArgs := map[string]any{"InvoiceID": id}
	if err := ps.verifyArgs(namedArgs); err != nil {
		return err
	}
	if _, err := tx.NamedStmtContext(ctx, ps.NamedStmt).ExecContext(ctx, namedArgs); err != nil {
		return fmt.Errorf("failed to delete summary for invoice %d: %w", id, err)
	}

	if err := db.deleteInvoiceItems(ctx, tx, id); err != nil {
		return err
	}

	ps = db.stmt(invoiceDeleteSQL)
	namedArgs = map[string]any{"ID": id}
	if err := ps.verifyArgs(namedArgs); err != nil {
		return err
	}
	res, err := tx.NamedStmtContext(ctx, ps.NamedStmt).ExecContext(ctx, namedArgs)
	db.logQuery("invoice delete", namedArgs, err)
	if err != nil {
		return fmt.Errorf("failed to delete invoice %d: %w", id, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// InvoiceSearch returns invoices whose client name, number or status
// contain the search term.
func (db *DB) InvoiceSearch(ctx context.Context, search string) ([]Invoice, error) {
	ps := db.stmt(invoiceSearchSQL)
	namedArgs := map[string]any{"Search": search}
	if err := ps.verifyArgs(namedArgs); err != nil {
		return nil, err
	}
	invoices := []Invoice{}
	err := ps.SelectContext(ctx, &invoices, namedArgs)
	db.logQuery("invoice search", namedArgs, err)
	if err != nil {
		return nil, fmt.Errorf("invoice search error: %w", err)
	}
	return invoices, nil
}

// InvoiceItemsGet returns an invoice's line items in insertion order.
func (db *DB) InvoiceItemsGet(ctx context.Context, invoiceID int64) ([]InvoiceItem, error) {
	ps := db.stmt(invoiceItemsGetSQL)
	namedArgs := map[string]any{"InvoiceID": invoiceID}
	if err := ps.verifyArgs(namedArgs); err != nil {
		return nil, err
	}
	items := []InvoiceItem{}
	err := ps.SelectContext(ctx, &items, namedArgs)
	db.logQuery("invoice items get", namedArgs, err)
	if err != nil {
		return nil, fmt.Errorf("invoice items select error: %w", err)
	}
	return items, nil
}

// InvoiceSummaryGet returns the summary row for an invoice, or
// ErrNotFound if none has been recorded.
func (db *DB) InvoiceSummaryGet(ctx context.Context, invoiceID int64) (InvoiceSummary, error) {
	ps := db.stmt(invoiceSummaryGetSQL)
	namedArgs := map[string]any{"InvoiceID": invoiceID}
	if err := ps.verifyArgs(namedArgs); err != nil {
		return InvoiceSummary{}, err
	}
	var s InvoiceSummary
	err := ps.GetContext(ctx, &s, namedArgs)
	db.logQuery("invoice summary get", namedArgs, err)
	if errors.Is(err, sql.ErrNoRows) {
		return InvoiceSummary{}, ErrNotFound
	}
	if err != nil {
		return InvoiceSummary{}, fmt.Errorf("invoice summary select error: %w", err)
	}
	return s, nil
}

// InvoiceTotalsGet aggregates the line items for an invoice. An invoice
// without items yields zero totals.
func (db *DB) InvoiceTotalsGet(ctx context.Context, invoiceID int64) (InvoiceTotals, error) {
	ps := db.stmt(invoiceItemsTotalsSQL)
	namedArgs := map[string]any{"InvoiceID": invoiceID}
	if err := ps.verifyArgs(namedArgs); err != nil {
		return InvoiceTotals{}, err
	}
	var t InvoiceTotals
	err := ps.GetContext(ctx, &t, namedArgs)
	db.logQuery("invoice totals", namedArgs, err)
	if err != nil {
		return InvoiceTotals{}, fmt.Errorf("invoice totals select error: %w", err)
	}
	return t, nil
}
