package db

// transaction.go deals with financial transaction database calls. These
// are income and expense records, not to be confused with sql
// transactions.

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Transaction types accepted by the financial_transactions table, also
// enforced by a schema check constraint.
const (
	TransactionTypeIncome  = "income"
	TransactionTypeExpense = "expense"
)

// Transaction is the concrete type of each financial transaction row.
type Transaction struct {
	ID          int64   `db:"id" json:"id"`
	Type        string  `db:"type" json:"type"`
	Category    string  `db:"category" json:"category"`
	Amount      float64 `db:"amount" json:"amount"`
	Description string  `db:"description" json:"description"`
	Date        string  `db:"date" json:"date"`
	Reference   string  `db:"reference" json:"reference"`
	CreatedAt   string  `db:"created_at" json:"created_at"`
	UpdatedAt   string  `db:"updated_at" json:"updated_at"`
}

// TransactionFilter narrows TransactionsGet. Nil fields disable the
// corresponding filter.
type TransactionFilter struct {
	Type     *string
	DateFrom *string
	DateTo   *string
}

// FinancialStats carries income, expense and net totals for a period.
type FinancialStats struct {
	TotalTransactions int     `db:"total_transactions" json:"total_transactions"`
	TotalIncome       float64 `db:"total_income" json:"total_income"`
	TotalExpense      float64 `db:"total_expense" json:"total_expense"`
	NetAmount         float64 `db:"net_amount" json:"net_amount"`
}

// CategoryStats carries per category and type totals for a period.
type CategoryStats struct {
	Category         string  `db:"category" json:"category"`
	Type             string  `db:"type" json:"type"`
	TransactionCount int     `db:"transaction_count" json:"transaction_count"`
	TotalAmount      float64 `db:"total_amount" json:"total_amount"`
}

// TransactionPatch carries optional transaction field updates. Nil
// fields leave the stored column untouched.
type TransactionPatch struct {
	Type        *string
	Category    *string
	Amount      *float64
	Description *string
	Date        *string
	Reference   *string
}

// validTransactionType reports whether t is an accepted transaction
// type.
func validTransactionType(t string) bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// TransactionCreate inserts a financial transaction, returning its
// generated id.
func (db *DB) TransactionCreate(ctx context.Context, t Transaction) (int64, error) {
	if !validTransactionType(t.Type) {
		return 0, fmt.Errorf("transaction type must be income or expense, got %q", t.Type)
	}
	ps := db.stmt(transactionInsertSQL)
	namedArgs := map[string]any{
		"Type":        t.Type,
		"Category":    t.Category,
		"Amount":      t.Amount,
		"Description": t.Description,
		"TxDate":      t.Date,
		"Reference":   t.Reference,
	}
	if err := ps.verifyArgs(namedArgs); err != nil {
		return 0, fmt.Errorf("transaction insert verify arguments error: %v", err)
	}
	var id int64
	err := ps.GetContext(ctx, &id, namedArgs)
	db.logQuery("transaction insert", namedArgs, err)
	if err != nil {
		return 0, fmt.Errorf("failed to insert transaction: %w", err)
	}
	return id, nil
}

// TransactionsGet returns financial transactions, newest first,
// optionally narrowed by type and date range.
func (db *DB) TransactionsGet(ctx context.Context, filter TransactionFilter) ([]Transaction, error) {
	if filter.Type != nil && !validTransactionType(*filter.Type) {
		return nil, fmt.Errorf("transaction type must be income or expense, got %q", *filter.Type)
	}
	ps := db.stmt(transactionsSQL)
	namedArgs := map[string]any{
		"Type":     filter.Type,
		"DateFrom": filter.DateFrom,
		"DateTo":   filter.DateTo,
	}
	if err := ps.verifyArgs(namedArgs); err != nil {
		return nil, err
	}
	transactions := []Transaction{}
	err := ps.SelectContext(ctx, &transactions, namedArgs)
	db.logQuery("transactions", namedArgs, err)
	if err != nil {
		return nil, fmt.Errorf("transactions select error: %w", err)
	}
	return transactions, nil
}

// TransactionGet returns a single financial transaction by id.
func (db *DB) TransactionGet(ctx context.Context, id int64) (Transaction, error) {
	ps := db.stmt(transactionGetSQL)
	namedArgs := map[string]any{"ID": id}
	if err := ps.verifyArgs(namedArgs); err != nil {
		return Transaction{}, err
	}
	var t Transaction
	err := ps.GetContext(ctx, &t, namedArgs)
	db.logQuery("transaction get", namedArgs, err)
	if errors.Is(err, sql.ErrNoRows) {
		return Transaction{}, ErrNotFound
	}
	if err != nil {
		return Transaction{}, fmt.Errorf("transaction select error: %w", err)
	}
	return t, nil
}

// TransactionUpdate patches a financial transaction.
func (db *DB) TransactionUpdate(ctx context.Context, id int64, patch TransactionPatch) error {
	if patch.Type != nil && !validTransactionType(*patch.Type) {
		return fmt.Errorf("transaction type must be income or expense, got %q", *patch.Type)
	}
	ps := db.stmt(transactionUpdateSQL)
	namedArgs := map[string]any{
		"ID":          id,
		"Type":        patch.Type,
		"Category":    patch.Category,
		"Amount":      patch.Amount,
		"Description": patch.Description,
		"TxDate":      patch.Date,
		"Reference":   patch.Reference,
	}
	if err := ps.verifyArgs(namedArgs); err != nil {
		return fmt.Errorf("transaction update verify arguments error: %v", err)
	}
	res, err := ps.ExecContext(ctx, namedArgs)
	db.logQuery("transaction update", namedArgs, err)
	if err != nil {
		return fmt.Errorf("failed to update transaction %d: %w", id, err)
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

// TransactionDelete removes a financial transaction by id.
func (db *DB) TransactionDelete(ctx context.Context, id int64) error {
	ps := db.stmt(transactionDeleteSQL)
	namedArgs := map[string]any{"ID": id}
	if err := ps.verifyArgs(namedArgs); err != nil {
		return err
	}
	res, err := ps.ExecContext(ctx, namedArgs)
	db.logQuery("transaction delete", namedArgs, err)
	if err != nil {
		return fmt.Errorf("failed to delete transaction %d: %w", id, err)
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

// TransactionSearch returns financial transactions whose category,
// description or reference contain the search term.
func (db *DB) TransactionSearch(ctx context.Context, search string) ([]Transaction, error) {
	ps := db.stmt(transactionSearchSQL)
	namedArgs := map[string]any{"Search": search}
	if err := ps.verifyArgs(namedArgs); err != nil {
		return nil, err
	}
	transactions := []Transaction{}
	err := ps.SelectContext(ctx, &transactions, namedArgs)
	db.logQuery("transaction search", namedArgs, err)
	if err != nil {
		return nil, fmt.Errorf("transaction search error: %w", err)
	}
	return transactions, nil
}

// FinancialStatsGet returns income, expense and net totals, optionally
// scoped to a date range. Nil bounds disable the corresponding limit.
func (db *DB) FinancialStatsGet(ctx context.Context, dateFrom, dateTo *string) (FinancialStats, error) {
	ps := db.stmt(financialStatsSQL)
	namedArgs := map[string]any{
		"DateFrom": dateFrom,
		"DateTo":   dateTo,
	}
	if err := ps.verifyArgs(namedArgs); err != nil {
		return FinancialStats{}, err
	}
	var stats FinancialStats
	err := ps.GetContext(ctx, &stats, namedArgs)
	db.logQuery("financial stats", namedArgs, err)
	if err != nil {
		return FinancialStats{}, fmt.Errorf("financial stats select error: %w", err)
	}
	return stats, nil
}

// CategoryStatsGet returns per category and type counts and totals,
// optionally scoped to a date range.
func (db *DB) CategoryStatsGet(ctx context.Context, dateFrom, dateTo *string) ([]CategoryStats, error) {
	ps := db.stmt(categoryStatsSQL)
	namedArgs := map[string]any{
		"DateFrom": dateFrom,
		"DateTo":   dateTo,
	}
	if err := ps.verifyArgs(namedArgs); err != nil {
		return nil, err
	}
	stats := []CategoryStats{}
	err := ps.SelectContext(ctx, &stats, namedArgs)
	db.logQuery("category stats", namedArgs, err)
	if err != nil {
		return nil, fmt.Errorf("category stats select error: %w", err)
	}
	return stats, nil
}
