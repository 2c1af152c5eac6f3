package web

// suppliers.go provides the supplier endpoints.

import (
	"net/http"

	"github.com/rorycl/bizmanager/db"
)

// supplierForm is the JSON body for supplier creation and update. Nil
// fields are absent from the body.
type supplierForm struct {
	ID            int64   `json:"id"`
	Name          *string `json:"name"`
	Email         *string `json:"email"`
	Phone         *string `json:"phone"`
	Address       *string `json:"address"`
	ContactPerson *string `json:"contact_person"`
}

// handleSuppliers serves the /suppliers endpoint: list or single read,
// create, update and delete.
func (web *WebApp) handleSuppliers() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			web.suppliersGet(w, r)
		case http.MethodPost:
			web.suppliersCreate(w, r)
		case http.MethodPut:
			web.suppliersUpdate(w, r)
		case http.MethodDelete:
			web.suppliersDelete(w, r)
		}
	})
}

// suppliersGet lists all suppliers or, with ?id=, returns one.
func (web *WebApp) suppliersGet(w http.ResponseWriter, r *http.Request) {
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
		supplier, err := web.db.SupplierGet(ctx, form.ID)
		if err != nil {
			web.storeError(w, r, err, "supplier not found")
			return
		}
		web.respond(w, http.StatusOK, "", supplier)
		return
	}

	suppliers, err := web.db.SuppliersGet(ctx)
	if err != nil {
		web.serverError(w, r, err)
		return
	}
	web.respond(w, http.StatusOK, "", suppliers)
}

// suppliersCreate creates a supplier.
func (web *WebApp) suppliersCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	form := &supplierForm{}
	if !web.decodeJSONBody(w, r, form) {
		return
	}

	validator := NewValidator()
	validator.Check(form.Name != nil && *form.Name != "", "name", "A supplier name must be provided.")
	if !validator.Valid() {
		web.clientError(w, validator.First(), http.StatusBadRequest)
		return
	}

	s := db.Supplier{Name: *form.Name}
	if form.Email != nil {
		s.Email = *form.Email
	}
	if form.Phone != nil {
		s.Phone = *form.Phone
	}
	if form.Address != nil {
		s.Address = *form.Address
	}
	if form.ContactPerson != nil {
		s.ContactPerson = *form.ContactPerson
	}

	id, err := web.db.SupplierCreate(ctx, s)
	if err != nil {
		web.serverError(w, r, err)
		return
	}
	supplier, err := web.db.SupplierGet(ctx, id)
	if err != nil {
		web.serverError(w, r, err)
		return
	}
	web.respond(w, http.StatusCreated, "Supplier was created successfully.", supplier)
}

// suppliersUpdate patches a supplier.
func (web *WebApp) suppliersUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	form := &supplierForm{}
	if !web.decodeJSONBody(w, r, form) {
		return
	}

	validator := NewValidator()
	validator.Check(form.ID > 0, "id", "A valid id must be provided.")
	if !validator.Valid() {
		web.clientError(w, validator.First(), http.StatusBadRequest)
		return
	}

	patch := db.SupplierPatch{
		Name:          form.Name,
		Email:         form.Email,
		Phone:         form.Phone,
		Address:       form.Address,
		ContactPerson: form.ContactPerson,
	}
	if err := web.db.SupplierUpdate(ctx, form.ID, patch); err != nil {
		web.storeError(w, r, err, "supplier not found")
		return
	}
	supplier, err := web.db.SupplierGet(ctx, form.ID)
	if err != nil {
		web.serverError(w, r, err)
		return
	}
	web.respond(w, http.StatusOK, "Supplier was updated successfully.", supplier)
}

// suppliersDelete removes a supplier.
func (web *WebApp) suppliersDelete(w http.ResponseWriter, r *http.Request) {
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

	if err := web.db.SupplierDelete(ctx, form.ID); err != nil {
		web.storeError(w, r, err, "supplier not found")
		return
	}
	web.respond(w, http.StatusOK, "Supplier was deleted successfully.", nil)
}

// handleSupplierSearch serves /suppliers/search?s=keyword.
func (web *WebApp) handleSupplierSearch() http.Handler {
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

		suppliers, err := web.db.SupplierSearch(ctx, form.Search)
		if err != nil {
			web.serverError(w, r, err)
			return
		}
		web.respond(w, http.StatusOK, "", suppliers)
	})
}

// handleSupplierStats serves /suppliers/stats?id=, summarising the
// supplier's invoicing history.
func (web *WebApp) handleSupplierStats() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
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

		stats, err := web.db.SupplierStatsGet(ctx, form.ID)
		if err != nil {
			web.storeError(w, r, err, "supplier not found")
			return
		}
		web.respond(w, http.StatusOK, "", stats)
	})
}
