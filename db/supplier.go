package db

// supplier.go deals with supplier database calls.

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Supplier is the concrete type of each supplier row.
type Supplier struct {
	ID            int64  `db:"id" json:"id"`
	Name          string `db:"name" json:"name"`
	Email         string `db:"email" json:"email"`
	Phone         string `db:"phone" json:"phone"`
	Address       string `db:"address" json:"address"`
	ContactPerson string `db:"contact_person" json:"contact_person"`
	CreatedAt     string `db:"created_at" json:"created_at"`
	UpdatedAt     string `db:"updated_at" json:"updated_at"`
}

// SupplierStats summarises the invoicing history for a supplier. There
// is no foreign key between invoices and suppliers; the two are linked
// by the invoice client name matching the supplier name.
type SupplierStats struct {
	TotalInvoices      int     `db:"total_invoices" json:"total_invoices"`
	TotalItemsSupplied float64 `db:"total_items_supplied" json:"total_items_supplied"`
	TotalAmount        float64 `db:"total_amount" json:"total_amount"`
}

// SupplierPatch carries optional supplier field updates. Nil fields
// leave the stored column untouched.
type SupplierPatch struct {
	Name          *string
	Email         *string
	Phone         *string
	Address       *string
	ContactPerson *string
}

// SupplierCreate inserts a supplier, returning its generated id.
func (db *DB) SupplierCreate(ctx context.Context, s Supplier) (int64, error) {
	ps := db.stmt(supplierInsertSQL)
	namedArgs := map[string]any{
		"Name":          s.Name,
		"Email":         s.Email,
		"Phone":         s.Phone,
		"Address":       s.Address,
		"ContactPerson": s.ContactPerson,
	}
	if err := ps.verifyArgs(namedArgs); err != nil {
		return 0, fmt.Errorf("supplier insert verify arguments error: %v", err)
	}
	var id int64
	err := ps.GetContext(ctx, &id, namedArgs)
	db.logQuery("supplier insert", namedArgs, err)
	if err != nil {
		return 0, fmt.Errorf("failed to insert supplier %q: %w", s.Name, err)
	}
	return id, nil
}

// SuppliersGet returns all suppliers, newest first.
func (db *DB) SuppliersGet(ctx context.Context) ([]Supplier, error) {
	suppliers := []Supplier{}
	err := db.SelectContext(ctx, &suppliers, db.query(suppliersSQL))
	if err != nil {
		return nil, fmt.Errorf("suppliers select error: %w", err)
	}
	return suppliers, nil
}

// SupplierGet returns a single supplier by id.
func (db *DB) SupplierGet(ctx context.Context, id int64) (Supplier, error) {
	ps := db.stmt(supplierGetSQL)
	namedArgs := map[string]any{"ID": id}
	if err := ps.verifyArgs(namedArgs); err != nil {
		return Supplier{}, err
	}
	var s Supplier
	err := ps.GetContext(ctx, &s, namedArgs)
	db.logQuery("supplier get", namedArgs, err)
	if errors.Is(err, sql.ErrNoRows) {
		return Supplier{}, ErrNotFound
	}
	if err != nil {
		return Supplier{}, fmt.Errorf("supplier select error: %w", err)
	}
	return s, nil
}

// SupplierUpdate patches a supplier.
func (db *DB) SupplierUpdate(ctx context.Context, id int64, patch SupplierPatch) error {
	ps := db.stmt(supplierUpdateSQL)
	namedArgs := map[string]any{
		"ID":            id,
		"Name":          patch.Name,
		"Email":         patch.Email,
		"Phone":         patch.Phone,
		"Address":       patch.Address,
		"ContactPerson": patch.ContactPerson,
	}
	if err := ps.verifyArgs(namedArgs); err != nil {
		return fmt.Errorf("supplier update verify arguments error: %v", err)
	}
	res, err := ps.ExecContext(ctx, namedArgs)
	db.logQuery("supplier update", namedArgs, err)
	if err != nil {
		return fmt.Errorf("failed to update supplier %d: %w", id, err)
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

// SupplierDelete removes a supplier by id. Products referencing the
// supplier keep their rows with the link cleared by the schema's ON
// DELETE SET NULL rule.
func (db *DB) SupplierDelete(ctx context.Context, id int64) error {
	ps := db.stmt(supplierDeleteSQL)
	namedArgs := map[string]any{"ID": id}
	if err := ps.verifyArgs(namedArgs); err != nil {
		return err
	}
	res, err := ps.ExecContext(ctx, namedArgs)
	db.logQuery("supplier delete", namedArgs, err)
	if err != nil {
		return fmt.Errorf("failed to delete supplier %d: %w", id, err)
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

// SupplierSearch returns suppliers whose name, email, phone or contact
// person contain the search term.
func (db *DB) SupplierSearch(ctx context.Context, search string) ([]Supplier, error) {
	ps := db.stmt(supplierSearchSQL)
	namedArgs := map[string]any{"Search": search}
	if err := ps.verifyArgs(namedArgs); err != nil {
		return nil, err
	}
	suppliers := []Supplier{}
	err := ps.SelectContext(ctx, &suppliers, namedArgs)
	db.logQuery("supplier search", namedArgs, err)
	if err != nil {
		return nil, fmt.Errorf("supplier search error: %w", err)
	}
	return suppliers, nil
}

// SupplierStatsGet summarises the invoicing history for a supplier. The
// supplier must exist even when it has no invoices.
func (db *DB) SupplierStatsGet(ctx context.Context, id int64) (SupplierStats, error) {
	if _, err := db.SupplierGet(ctx, id); err != nil {
		return SupplierStats{}, err
	}
	ps := db.stmt(supplierStatsSQL)
	namedArgs := map[string]any{"ID": id}
	if err := ps.verifyArgs(namedArgs); err != nil {
		return SupplierStats{}, err
	}
	var stats SupplierStats
	err := ps.GetContext(ctx, &stats, namedArgs)
	db.logQuery("supplier stats", namedArgs, err)
	if err != nil {
		return SupplierStats{}, fmt.Errorf("supplier stats select error: %w", err)
	}
	return stats, nil
}
