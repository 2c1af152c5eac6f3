package web

// transactions.go provides the financial transaction endpoints.

import (
	"net/http"

	"github.com/rorycl/bizmanager/db"
)

// transactionForm is the JSON body for transaction creation and
// update. Nil fields are absent from the body.
type transactionForm struct {
	ID          int64    `json:"id"`
	Type        *string  `json:"type"`
	Category    *string  `json:"category"`
	Amount      *float64 `json:"amount"`
	Description *string  `json:"description"`
	Date        *string  `json:"date"`
	Reference   *string  `json:"reference"`
}

// handleTransactions serves the /transactions endpoint: filtered list
// with a statistics block, single read, create, update and delete.
func (web *WebApp) handleTransactions() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			web.transactionsGet(w, r)
		case http.MethodPost:
			web.transactionsCreate(w, r)
		case http.MethodPut:
			web.transactionsUpdate(w, r)
		case http.MethodDelete:
			web.transactionsDelete(w, r)
		}
	})
}

// transactionsGet lists transactions with income and expense totals
// scoped to the same filter or, with ?id=, returns one transaction.
func (web *WebApp) transactionsGet(w http.ResponseWriter, r *http.Request) {
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
		transaction, err := web.db.TransactionGet(ctx, form.ID)
		if err != nil {
			web.storeError(w, r, err, "transaction not found")
			return
		}
		web.respond(w, http.StatusOK, "", transaction)
		return
	}

	form := &TransactionListForm{}
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

	filter := db.TransactionFilter{}
	if form.Type != "" {
		filter.Type = &form.Type
	}
	if form.StartDate != "" {
		filter.DateFrom = &form.StartDate
	}
	if form.EndDate != "" {
		filter.DateTo = &form.EndDate
	}

	transactions, err := web.db.TransactionsGet(ctx, filter)
	if err != nil {
		web.serverError(w, r, err)
		return
	}
	stats, err := web.db.FinancialStatsGet(ctx, filter.DateFrom, filter.DateTo)
	if err != nil {
		web.serverError(w, r, err)
		return
	}
	data := struct {
		Records []db.Transaction  `json:"records"`
		Stats   db.FinancialStats `json:"stats"`
	}{
		Records: transactions,
		Stats:   stats,
	}
	web.respond(w, http.StatusOK, "", data)
}

// transactionsCreate creates a financial transaction.
func (web *WebApp) transactionsCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	form := &transactionForm{}
	if !web.decodeJSONBody(w, r, form) {
		return
	}

	validator := NewValidator()
	validator.Check(form.Type != nil && (*form.Type == "income" || *form.Type == "expense"),
		"type", "Type must be income or expense.")
	validator.Check(form.Amount != nil, "amount", "An amount must be provided.")
	validator.Check(form.Date == nil || validDate(*form.Date), "date", "Date must be YYYY-MM-DD.")
	if !validator.Valid() {
		web.clientError(w, validator.First(), http.StatusBadRequest)
		return
	}

	t := db.Transaction{
		Type:   *form.Type,
		Amount: *form.Amount,
		Date:   today(),
	}
	if form.Category != nil {
		t.Category = *form.Category
	}
	if form.Description != nil {
		t.Description = *form.Description
	}
	if form.Date != nil {
		t.Date = *form.Date
	}
	if form.Reference != nil {
		t.Reference = *form.Reference
	}

	id, err := web.db.TransactionCreate(ctx, t)
	if err != nil {
		web.serverError(w, r, err)
		return
	}
	transaction, err := web.db.TransactionGet(ctx, id)
	if err != nil {
		web.serverError(w, r, err)
		return
	}
	web.respond(w, http.StatusCreated, "Transaction was created successfully.", transaction)
}

// transactionsUpdate patches a financial transaction.
func (web *WebApp) transactionsUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	form := &transactionForm{}
	if !web.decodeJSONBody(w, r, form) {
		return
	}

	validator := NewValidator()
	validator.Check(form.ID > 0, "id", "A valid id must be provided.")
	validator.Check(form.Type == nil || *form.Type == "income" || *form.Type == "expense",
		"type", "Type must be income or expense.")
	validator.Check(form.Date == nil || validDate(*form.Date), "date", "Date must be YYYY-MM-DD.")
	if !validator.Valid() {
		web.clientError(w, validator.First(), http.StatusBadRequest)
		return
	}

	patch := db.TransactionPatch{
		Type:        form.Type,
		Category:    form.Category,
		Amount:      form.Amount,
		Description: form.Description,
		Date:        form.Date,
		Reference:   form.Reference,
	}
	if err := web.db.TransactionUpdate(ctx, form.ID, patch); err != nil {
		web.storeError(w, r, err, "transaction not found")
		return
	}
	transaction, err := web.db.TransactionGet(ctx, form.ID)
	if err != nil {
		web.serverError(w, r, err)
		return
	}
	web.respond(w, http.StatusOK, "Transaction was updated successfully.", transaction)
}

// transactionsDelete removes a financial transaction.
func (web *WebApp) transactionsDelete(w http.ResponseWriter, r *http.Request) {
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

	if err := web.db.TransactionDelete(ctx, form.ID); err != nil {
		web.storeError(w, r, err, "transaction not found")
		return
	}
	web.respond(w, http.StatusOK, "Transaction was deleted successfully.", nil)
}

// handleTransactionSearch serves /transactions/search?s=keyword.
func (web *WebApp) handleTransactionSearch() http.Handler {
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

		transactions, err := web.db.TransactionSearch(ctx, form.Search)
		if err != nil {
			web.serverError(w, r, err)
			return
		}
		web.respond(w, http.StatusOK, "", transactions)
	})
}

// handleCategoryStats serves /transactions/stats/categories with
// optional ?start_date= and ?end_date= bounds.
func (web *WebApp) handleCategoryStats() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		form := &DateRangeForm{}
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

		var dateFrom, dateTo *string
		if form.StartDate != "" {
			dateFrom = &form.StartDate
		}
		if form.EndDate != "" {
			dateTo = &form.EndDate
		}
		stats, err := web.db.CategoryStatsGet(ctx, dateFrom, dateTo)
		if err != nil {
			web.serverError(w, r, err)
			return
		}
		web.respond(w, http.StatusOK, "", stats)
	})
}
