package web

// products.go provides the product and inventory endpoints.

import (
	"net/http"

	"github.com/rorycl/bizmanager/db"
)

// productForm is the JSON body for product creation and update. Nil
// fields are absent from the body.
type productForm struct {
	ID              int64    `json:"id"`
	Name            *string  `json:"name"`
	Description     *string  `json:"description"`
	Category        *string  `json:"category"`
	UnitPrice       *float64 `json:"unit_price"`
	CostPrice       *float64 `json:"cost_price"`
	QuantityInStock *float64 `json:"quantity_in_stock"`
	MinQuantity     *float64 `json:"min_quantity"`
	SupplierID      *int64   `json:"supplier_id"`
}

// handleProducts serves the /products endpoint: list (with inventory
// statistics) or single read, create, update and delete.
func (web *WebApp) handleProducts() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			web.productsGet(w, r)
		case http.MethodPost:
			web.productsCreate(w, r)
		case http.MethodPut:
			web.productsUpdate(w, r)
		case http.MethodDelete:
			web.productsDelete(w, r)
		}
	})
}

// productsGet lists all products with an inventory statistics block
// or, with ?id=, returns one product.
func (web *WebApp) productsGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.URL.Query().Has("id") {
		form := &IDForm{}
		if err := DecodeURLParams(r, form); err != nil {
			web.clientError(w, err.Error(), http.StatusBadRequest)
			return
		}
		validator := NewValidator()
		form.Validate(validator)
		if !validator.Valid() {
			web.clientError(w, validator.First(), http.StatusBadRequest)
			return
		}
		product, err := web.db.ProductGet(ctx, form.ID)
		if err != nil {
			web.storeError(w, r, err, "product not found")
			return
		}
		web.respond(w, http.StatusOK, "", product)
		return
	}

	products, err := web.db.ProductsGet(ctx)
	if err != nil {
		web.serverError(w, r, err)
		return
	}
	stats, err := web.db.InventoryStatsGet(ctx)
	if err != nil {
		web.serverError(w, r, err)
		return
	}
	data := struct {
		Records []db.Product      `json:"records"`
		Stats   db.InventoryStats `json:"stats"`
	}{
		Records: products,
		Stats:   stats,
	}
	web.respond(w, http.StatusOK, "", data)
}

// productsCreate creates a product.
func (web *WebApp) productsCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	form := &productForm{}
	if !web.decodeJSONBody(w, r, form) {
		return
	}

	validator := NewValidator()
	validator.Check(form.Name != nil && *form.Name != "", "name", "A product name must be provided.")
	if !validator.Valid() {
		web.clientError(w, validator.First(), http.StatusBadRequest)
		return
	}

	p := db.Product{
		Name:       *form.Name,
		SupplierID: form.SupplierID,
	}
	if form.Description != nil {
		p.Description = *form.Description
	}
	if form.Category != nil {
		p.Category = *form.Category
	}
	if form.UnitPrice != nil {
		p.UnitPrice = *form.UnitPrice
	}
	if form.CostPrice != nil {
		p.CostPrice = *form.CostPrice
	}
	if form.QuantityInStock != nil {
		p.QuantityInStock = *form.QuantityInStock
	}
	if form.MinQuantity != nil {
		p.MinQuantity = *form.MinQuantity
	}

	id, err := web.db.ProductCreate(ctx, p)
	if err != nil {
		web.serverError(w, r, err)
		return
	}
	product, err := web.db.ProductGet(ctx, id)
	if err != nil {
		web.serverError(w, r, err)
		return
	}
	web.respond(w, http.StatusCreated, "Product was created successfully.", product)
}

// productsUpdate patches a product.
func (web *WebApp) productsUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	form := &productForm{}
	if !web.decodeJSONBody(w, r, form) {
		return
	}

	validator := NewValidator()
	validator.Check(form.ID > 0, "id", "A valid id must be provided.")
	if !validator.Valid() {
		web.clientError(w, validator.First(), http.StatusBadRequest)
		return
	}

	patch := db.ProductPatch{
		Name:            form.Name,
		Description:     form.Description,
		Category:        form.Category,
		UnitPrice:       form.UnitPrice,
		CostPrice:       form.CostPrice,
		QuantityInStock: form.QuantityInStock,
		MinQuantity:     form.MinQuantity,
		SupplierID:      form.SupplierID,
	}
	if err := web.db.ProductUpdate(ctx, form.ID, patch); err != nil {
		web.storeError(w, r, err, "product not found")
		return
	}
	product, err := web.db.ProductGet(ctx, form.ID)
	if err != nil {
		web.serverError(w, r, err)
		return
	}
	web.respond(w, http.StatusOK, "Product was updated successfully.", product)
}

// productsDelete removes a product.
func (web *WebApp) productsDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	form := &IDForm{}
	if err := DecodeURLParams(r, form); err != nil {
		web.clientError(w, err.Error(), http.StatusBadRequest)
		return
	}
	validator := NewValidator()
	form.Validate(validator)
	if !validator.Valid() {
		web.clientError(w, validator.First(), http.StatusBadRequest)
		return
	}

	if err := web.db.ProductDelete(ctx, form.ID); err != nil {
		web.storeError(w, r, err, "product not found")
		return
	}
	web.respond(w, http.StatusOK, "Product was deleted successfully.", nil)
}

// handleProductSearch serves /products/search?s=keyword.
func (web *WebApp) handleProductSearch() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		form := &SearchForm{}
		if err := DecodeURLParams(r, form); err != nil {
			web.clientError(w, err.Error(), http.StatusBadRequest)
			return
		}
		validator := NewValidator()
		form.Validate(validator)
		if !validator.Valid() {
			web.clientError(w, validator.First(), http.StatusBadRequest)
			return
		}

		products, err := web.db.ProductSearch(ctx, form.Search)
		if err != nil {
			web.serverError(w, r, err)
			return
		}
		web.respond(w, http.StatusOK, "", products)
	})
}

// handleProductsLowStock serves /products/low-stock, products at or
// below their minimum stock threshold.
func (web *WebApp) handleProductsLowStock() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		products, err := web.db.ProductsLowStock(r.Context())
		if err != nil {
			web.serverError(w, r, err)
			return
		}
		web.respond(w, http.StatusOK, "", products)
	})
}
