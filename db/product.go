package db

// product.go deals with product and inventory database calls.

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Product is the concrete type of each product row, joined with its
// supplier name where one is set.
type Product struct {
	ID              int64   `db:"id" json:"id"`
	Name            string  `db:"name" json:"name"`
	Description     string  `db:"description" json:"description"`
	Category        string  `db:"category" json:"category"`
	UnitPrice       float64 `db:"unit_price" json:"unit_price"`
	CostPrice       float64 `db:"cost_price" json:"cost_price"`
	QuantityInStock float64 `db:"quantity_in_stock" json:"quantity_in_stock"`
	MinQuantity     float64 `db:"min_quantity" json:"min_quantity"`
	SupplierID      *int64  `db:"supplier_id" json:"supplier_id"`
	SupplierName    *string `db:"supplier_name" json:"supplier_name"`
	CreatedAt       string  `db:"created_at" json:"created_at"`
	UpdatedAt       string  `db:"updated_at" json:"updated_at"`
}

// InventoryStats summarises the products table.
type InventoryStats struct {
	TotalProducts int     `db:"total_products" json:"total_products"`
	TotalQuantity float64 `db:"total_quantity" json:"total_quantity"`
	TotalValue    float64 `db:"total_value" json:"total_value"`
	LowStockCount int     `db:"low_stock_count" json:"low_stock_count"`
}

// ProductPatch carries optional product field updates. Nil fields leave
// the stored column untouched; an existing supplier link cannot be
// cleared through a patch, only repointed.
type ProductPatch struct {
	Name            *string
	Description     *string
	Category        *string
	UnitPrice       *float64
	CostPrice       *float64
	QuantityInStock *float64
	MinQuantity     *float64
	SupplierID      *int64
}

// ProductCreate inserts a product, returning its generated id.
func (db *DB) ProductCreate(ctx context.Context, p Product) (int64, error) {
	ps := db.stmt(productInsertSQL)
	namedArgs := map[string]any{
		"Name":            p.Name,
		"Description":     p.Description,
		"Category":        p.Category,
		"UnitPrice":       p.UnitPrice,
		"CostPrice":       p.CostPrice,
		"QuantityInStock": p.QuantityInStock,
		"MinQuantity":     p.MinQuantity,
		"SupplierID":      p.SupplierID,
	}
	if err := ps.verifyArgs(namedArgs); err != nil {
		return 0, fmt.Errorf("product insert verify arguments error: %v", err)
	}
	var id int64
	err := ps.GetContext(ctx, &id, namedArgs)
	db.logQuery("product insert", namedArgs, err)
	if err != nil {
		return 0, fmt.Errorf("failed to insert product %q: %w", p.Name, err)
	}
	return id, nil
}

// ProductsGet returns all products, newest first.
func (db *DB) ProductsGet(ctx context.Context) ([]Product, error) {
	products := []Product{}
	err := db.SelectContext(ctx, &products, db.query(productsSQL))
	if err != nil {
		return nil, fmt.Errorf("products select error: %w", err)
	}
	return products, nil
}

// ProductGet returns a single product by id.
func (db *DB) ProductGet(ctx context.Context, id int64) (Product, error) {
	ps := db.stmt(productGetSQL)
	namedArgs := map[string]any{"ID": id}
	if err := ps.verifyArgs(namedArgs); err != nil {
		return Product{}, err
	}
	var p Product
	err := ps.GetContext(ctx, &p, namedArgs)
	db.logQuery("product get", namedArgs, err)
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("product select error: %w", err)
	}
	return p, nil
}

// ProductUpdate patches a product.
func (db *DB) ProductUpdate(ctx context.Context, id int64, patch ProductPatch) error {
	ps := db.stmt(productUpdateSQL)
	namedArgs := map[string]any{
		"ID":              id,
		"Name":            patch.Name,
		"Description":     patch.Description,
		"Category":        patch.Category,
		"UnitPrice":       patch.UnitPrice,
		"CostPrice":       patch.CostPrice,
		"QuantityInStock": patch.QuantityInStock,
		"MinQuantity":     patch.MinQuantity,
		"SupplierID":      patch.SupplierID,
	}
	if err := ps.verifyArgs(namedArgs); err != nil {
		return fmt.Errorf("product update verify arguments error: %v", err)
	}
	res, err := ps.ExecContext(ctx, namedArgs)
	db.logQuery("product update", namedArgs, err)
	if err != nil {
		return fmt.Errorf("failed to update product %d: %w", id, err)
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

// ProductDelete removes a product by id.
func (db *DB) ProductDelete(ctx context.Context, id int64) error {
	ps := db.stmt(productDeleteSQL)
	namedArgs := map[string]any{"ID": id}
	if err := ps.verifyArgs(namedArgs); err != nil {
		return err
	}
	res, err := ps.ExecContext(ctx, namedArgs)
	db.logQuery("product delete", namedArgs, err)
	if err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
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

// ProductSearch returns products whose name, description, category or
// supplier name contain the search term.
func (db *DB) ProductSearch(ctx context.Context, search string) ([]Product, error) {
	ps := db.stmt(productSearchSQL)
	namedArgs := map[string]any{"Search": search}
	if err := ps.verifyArgs(namedArgs); err != nil {
		return nil, err
	}
	products := []Product{}
	err := ps.SelectContext(ctx, &products, namedArgs)
	db.logQuery("product search", namedArgs, err)
	if err != nil {
		return nil, fmt.Errorf("product search error: %w", err)
	}
	return products, nil
}

// ProductsLowStock returns products at or below their minimum stock
// threshold, most depleted first.
func (db *DB) ProductsLowStock(ctx context.Context) ([]Product, error) {
	products := []Product{}
	err := db.SelectContext(ctx, &products, db.query(productsLowStockSQL))
	if err != nil {
		return nil, fmt.Errorf("low stock select error: %w", err)
	}
	return products, nil
}

// InventoryStatsGet summarises stock levels and value across all
// products.
func (db *DB) InventoryStatsGet(ctx context.Context) (InventoryStats, error) {
	var stats InventoryStats
	err := db.GetContext(ctx, &stats, db.query(inventoryStatsSQL))
	if err != nil {
		return InventoryStats{}, fmt.Errorf("inventory stats select error: %w", err)
	}
	return stats, nil
}
