package db

// The application's SQL statements are held as runnable sql files in
// the `sql` directory, which can be run on the sqlite command line
// with their example values. Files with /* @param */ markers become
// prepared named statements through the parameterization scheme in
// parameterize.go; the remainder are prepared verbatim.

// schemaSQL creates the application's database schema for SQLite. It
// is designed to be idempotent using CREATE TABLE IF NOT EXISTS.
const schemaSQL = "schema.sql"

// Invoices and their children.
const (
	invoiceInsertSQL        = "invoice_insert.sql"
	invoicesSQL             = "invoices.sql"
	invoiceGetSQL           = "invoice_get.sql"
	invoiceUpdateSQL        = "invoice_update.sql"
	invoiceDeleteSQL        = "invoice_delete.sql"
	invoiceSearchSQL        = "invoice_search.sql"
	invoiceItemsInsertSQL   = "invoice_items_insert.sql"
	invoiceItemsGetSQL      = "invoice_items_get.sql"
	invoiceItemsDeleteSQL   = "invoice_items_delete.sql"
	invoiceItemsTotalsSQL   = "invoice_items_totals.sql"
	invoiceSummaryUpsertSQL = "invoice_summary_upsert.sql"
	invoiceSummaryGetSQL    = "invoice_summary_get.sql"
	invoiceSummaryDeleteSQL = "invoice_summary_delete.sql"
)

// Products.
const (
	productInsertSQL    = "product_insert.sql"
	productsSQL         = "products.sql"
	productGetSQL       = "product_get.sql"
	productUpdateSQL    = "product_update.sql"
	productDeleteSQL    = "product_delete.sql"
	productSearchSQL    = "product_search.sql"
	productsLowStockSQL = "products_low_stock.sql"
	inventoryStatsSQL   = "inventory_stats.sql"
)

// Suppliers.
const (
	supplierInsertSQL = "supplier_insert.sql"
	suppliersSQL      = "suppliers.sql"
	supplierGetSQL    = "supplier_get.sql"
	supplierUpdateSQL = "supplier_update.sql"
	supplierDeleteSQL = "supplier_delete.sql"
	supplierSearchSQL = "supplier_search.sql"
	supplierStatsSQL  = "supplier_stats.sql"
)

// Financial transactions.
const (
	transactionInsertSQL = "transaction_insert.sql"
	transactionsSQL      = "transactions.sql"
	transactionGetSQL    = "transaction_get.sql"
	transactionUpdateSQL = "transaction_update.sql"
	transactionDeleteSQL = "transaction_delete.sql"
	transactionSearchSQL = "transaction_search.sql"
	financialStatsSQL    = "financial_stats.sql"
	categoryStatsSQL     = "category_stats.sql"
)

// Company info.
const (
	companyInsertSQL = "company_insert.sql"
	companiesSQL     = "companies.sql"
	companyGetSQL    = "company_get.sql"
	companyUpdateSQL = "company_update.sql"
	companyDeleteSQL = "company_delete.sql"
	companyCountSQL  = "company_count.sql"
)

// Users.
const (
	userInsertSQL     = "user_insert.sql"
	usersSQL          = "users.sql"
	userGetSQL        = "user_get.sql"
	userGetByEmailSQL = "user_get_by_email.sql"
	userUpdateSQL     = "user_update.sql"
	userDeleteSQL     = "user_delete.sql"
	userLastLoginSQL  = "user_last_login.sql"
)

// parameterizedFiles lists the statements prepared through the
// /* @param */ scheme.
var parameterizedFiles = []string{
	invoiceInsertSQL,
	invoiceGetSQL,
	invoiceUpdateSQL,
	invoiceDeleteSQL,
	invoiceSearchSQL,
	invoiceItemsInsertSQL,
	invoiceItemsGetSQL,
	invoiceItemsDeleteSQL,
	invoiceItemsTotalsSQL,
	invoiceSummaryUpsertSQL,
	invoiceSummaryGetSQL,
	invoiceSummaryDeleteSQL,
	productInsertSQL,
	productGetSQL,
	productUpdateSQL,
	productDeleteSQL,
	productSearchSQL,
	supplierInsertSQL,
	supplierGetSQL,
	supplierUpdateSQL,
	supplierDeleteSQL,
	supplierSearchSQL,
	supplierStatsSQL,
	transactionInsertSQL,
	transactionsSQL,
	transactionGetSQL,
	transactionUpdateSQL,
	transactionDeleteSQL,
	transactionSearchSQL,
	financialStatsSQL,
	categoryStatsSQL,
	companyInsertSQL,
	companyGetSQL,
	companyUpdateSQL,
	companyDeleteSQL,
	userInsertSQL,
	userGetSQL,
	userGetByEmailSQL,
	userUpdateSQL,
	userDeleteSQL,
	userLastLoginSQL,
}

// plainFiles lists the parameterless statements prepared verbatim.
var plainFiles = []string{
	invoicesSQL,
	productsSQL,
	productsLowStockSQL,
	inventoryStatsSQL,
	suppliersSQL,
	companiesSQL,
	companyCountSQL,
	usersSQL,
}
