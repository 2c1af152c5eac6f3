package web

// invoices.go provides the invoice endpoints. An invoice is always
// presented as a full record: the invoice row with its line items and
// optional summary.

import (
	"context"
	"errors"
	"net/http"

	"github.com/rorycl/bizmanager/db"
)

// invoiceRecord is the wire form of an invoice with its children.
type invoiceRecord struct {
	db.Invoice
	Items   []db.InvoiceItem   `json:"items"`
	Summary *db.InvoiceSummary `json:"summary"`
}

// invoiceForm is the JSON body for invoice creation and update. Nil
// fields are absent from the body.
type invoiceForm struct {
	ID            int64              `json:"id"`
	ClientName    *string            `json:"clientName"`
	InvoiceNumber *string            `json:"invoiceNumber"`
	Date          *string            `json:"date"`
	IsLocal       *bool              `json:"isLocal"`
	TotalAmount   *float64           `json:"totalAmount"`
	Status        *string            `json:"status"`
	Items         *[]db.InvoiceItem  `json:"items"`
	Summary       *db.InvoiceSummary `json:"summary"`
}

// invoiceRecordGet assembles the full record for an invoice.
func (web *WebApp) invoiceRecordGet(ctx context.Context, id int64) (invoiceRecord, error) {
	inv, err := web.db.InvoiceGet(ctx, id)
	if err != nil {
		return invoiceRecord{}, err
	}
	items, err := web.db.InvoiceItemsGet(ctx, id)
	if err != nil {
		return invoiceRecord{}, err
	}
	record := invoiceRecord{Invoice: inv, Items: items}

	summary, err := web.db.InvoiceSummaryGet(ctx, id)
	switch {
	case err == nil:
		record.Summary = &summary
	case !errors.Is(err, db.ErrNotFound):
		return invoiceRecord{}, err
	}
	return record, nil
}

// handleInvoices serves the /invoices endpoint: list or single read,
// create, update and delete.
func (web *WebApp) handleInvoices() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			web.invoicesGet(w, r)
		case http.MethodPost:
			web.invoicesCreate(w, r)
		case http.MethodPut:
			web.invoicesUpdate(w, r)
		case http.MethodDelete:
			web.invoicesDelete(w, r)
		}
	})
}

// invoicesGet lists all invoices or, with ?id=, returns one.
func (web *WebApp) invoicesGet(w http.ResponseWriter, r *http.Request) {
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
		record, err := web.invoiceRecordGet(ctx, form.ID)
		if err != nil {
			web.storeError(w, r, err, "invoice not found")
			return
		}
		web.respond(w, http.StatusOK, "", record)
		return
	}

	invoices, err := web.db.InvoicesGet(ctx)
	if err != nil {
		web.serverError(w, r, err)
		return
	}
	records := make([]invoiceRecord, 0, len(invoices))
	for _, inv := range invoices {
		record, err := web.invoiceRecordGet(ctx, inv.ID)
		if err != nil {
			web.serverError(w, r, err)
			return
		}
		records = append(records, record)
	}
	web.respond(w, http.StatusOK, "", records)
}

// invoicesCreate creates an invoice with its children in one
// transaction.
func (web *WebApp) invoicesCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	form := &invoiceForm{}
	if !web.decodeJSONBody(w, r, form) {
		return
	}

	validator := NewValidator()
	validator.Check(form.ClientName != nil && *form.ClientName != "", "clientName", "A client name must be provided.")
	validator.Check(form.InvoiceNumber != nil && *form.InvoiceNumber != "", "invoiceNumber", "An invoice number must be provided.")
	validator.Check(form.Date == nil || validDate(*form.Date), "date", "Date must be YYYY-MM-DD.")
	if !validator.Valid() {
		web.clientError(w, validator.First(), http.StatusBadRequest)
		return
	}

	inv := db.Invoice{
		ClientName:    *form.ClientName,
		InvoiceNumber: *form.InvoiceNumber,
		Date:          today(),
		IsLocal:       true,
		Status:        "Pending",
	}
	if form.Date != nil {
		inv.Date = *form.Date
	}
	if form.IsLocal != nil {
		inv.IsLocal = *form.IsLocal
	}
	if form.TotalAmount != nil {
		inv.TotalAmount = *form.TotalAmount
	}
	if form.Status != nil && *form.Status != "" {
		inv.Status = *form.Status
	}
	var items []db.InvoiceItem
	if form.Items != nil {
		items = *form.Items
	}

	id, err := web.db.InvoiceCreate(ctx, inv, items, form.Summary)
	if err != nil {
		web.serverError(w, r, err)
		return
	}
	record, err := web.invoiceRecordGet(ctx, id)
	if err != nil {
		web.serverError(w, r, err)
		return
	}
	web.respond(w, http.StatusCreated, "Invoice was created successfully.", record)
}

// invoicesUpdate patches an invoice; any items or summary in the body
// replace the stored children.
func (web *WebApp) invoicesUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	form := &invoiceForm{}
	if !web.decodeJSONBody(w, r, form) {
		return
	}

	validator := NewValidator()
	validator.Check(form.ID > 0, "id", "A valid id must be provided.")
	validator.Check(form.Date == nil || validDate(*form.Date), "date", "Date must be YYYY-MM-DD.")
	if !validator.Valid() {
		web.clientError(w, validator.First(), http.StatusBadRequest)
		return
	}

	patch := db.InvoicePatch{
		ClientName:    form.ClientName,
		InvoiceNumber: form.InvoiceNumber,
		Date:          form.Date,
		IsLocal:       form.IsLocal,
		TotalAmount:   form.TotalAmount,
		Status:        form.Status,
	}
	err := web.db.InvoiceUpdate(ctx, form.ID, patch, form.Items, form.Summary)
	if err != nil {
		web.storeError(w, r, err, "invoice not found")
		return
	}
	record, err := web.invoiceRecordGet(ctx, form.ID)
	if err != nil {
		web.serverError(w, r, err)
		return
	}
	web.respond(w, http.StatusOK, "Invoice was updated successfully.", record)
}

// invoicesDelete removes an invoice and its children.
func (web *WebApp) invoicesDelete(w http.ResponseWriter, r *http.Request) {
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

	if err := web.db.InvoiceDelete(ctx, form.ID); err != nil {
		web.storeError(w, r, err, "invoice not found")
		return
	}
	web.respond(w, http.StatusOK, "Invoice was deleted successfully.", nil)
}

// handleInvoiceSearch serves /invoices/search?s=keyword.
func (web *WebApp) handleInvoiceSearch() http.Handler {
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

		invoices, err := web.db.InvoiceSearch(ctx, form.Search)
		if err != nil {
			web.serverError(w, r, err)
			return
		}
		web.respond(w, http.StatusOK, "", invoices)
	})
}

// handleInvoiceStatus serves PUT /invoices/status with body
// {id, status}.
func (web *WebApp) handleInvoiceStatus() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		form := &struct {
			ID     int64   `json:"id"`
			Status *string `json:"status"`
		}{}
		if !web.decodeJSONBody(w, r, form) {
			return
		}

		validator := NewValidator()
		validator.Check(form.ID > 0, "id", "A valid id must be provided.")
		validator.Check(form.Status != nil && *form.Status != "", "status", "A status must be provided.")
		if !validator.Valid() {
			web.clientError(w, validator.First(), http.StatusBadRequest)
			return
		}

		err := web.db.InvoiceUpdate(ctx, form.ID, db.InvoicePatch{Status: form.Status}, nil, nil)
		if err != nil {
			web.storeError(w, r, err, "invoice not found")
			return
		}
		record, err := web.invoiceRecordGet(ctx, form.ID)
		if err != nil {
			web.serverError(w, r, err)
			return
		}
		web.respond(w, http.StatusOK, "Invoice status was updated successfully.", record)
	})
}

// handleInvoiceType serves PUT /invoices/type with body {id, isLocal}.
func (web *WebApp) handleInvoiceType() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		form := &struct {
			ID      int64 `json:"id"`
			IsLocal *bool `json:"isLocal"`
		}{}
		if !web.decodeJSONBody(w, r, form) {
			return
		}

		validator := NewValidator()
		validator.Check(form.ID > 0, "id", "A valid id must be provided.")
		validator.Check(form.IsLocal != nil, "isLocal", "An isLocal value must be provided.")
		if !validator.Valid() {
			web.clientError(w, validator.First(), http.StatusBadRequest)
			return
		}

		err := web.db.InvoiceUpdate(ctx, form.ID, db.InvoicePatch{IsLocal: form.IsLocal}, nil, nil)
		if err != nil {
			web.storeError(w, r, err, "invoice not found")
			return
		}
		record, err := web.invoiceRecordGet(ctx, form.ID)
		if err != nil {
			web.serverError(w, r, err)
			return
		}
		web.respond(w, http.StatusOK, "Invoice type was updated successfully.", record)
	})
}

// handleInvoiceTotals serves /invoices/totals?id=, aggregating the
// invoice's line items.
func (web *WebApp) handleInvoiceTotals() http.Handler {
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

		// The invoice must exist; an invoice without items reports
		// zero totals.
		if _, err := web.db.InvoiceGet(ctx, form.ID); err != nil {
			web.storeError(w, r, err, "invoice not found")
			return
		}
		totals, err := web.db.InvoiceTotalsGet(ctx, form.ID)
		if err != nil {
			web.serverError(w, r, err)
			return
		}
		web.respond(w, http.StatusOK, "", totals)
	})
}
