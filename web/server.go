package web

// This file describes the web server for this project.
//
// Note that modules called by this server should provide self-describing
// errors since these are logged directly by the envelope helpers in
// envelope.go.
//
// This web server also sets out each endpoint handler as a HandlerFunc. This
// allows for the router to provide arguments to the handler, as discussed in
// Mat Ryer's post at
//
//	https://grafana.com/blog/how-i-write-http-services-in-go-after-13-years/
//
// Handlers for each resource live in their own file (invoices.go,
// products.go, and so on); middleware and shared helpers are here and in
// envelope.go.

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"github.com/rorycl/bizmanager/config"
	"github.com/rorycl/bizmanager/db"
)

// shutdownTimeout is how long in-flight requests get to finish once a
// stop signal arrives.
const shutdownTimeout = 10 * time.Second

// WebApp is the configuration object for the web server.
type WebApp struct {
	log    *log.Logger
	cfg    *config.Config
	db     *db.DB
	server *http.Server
}

// New initialises a WebApp.
func New(logger *log.Logger, cfg *config.Config, db *db.DB) (*WebApp, error) {
	if logger == nil {
		return nil, fmt.Errorf("a logger must be provided")
	}
	if db == nil {
		return nil, fmt.Errorf("a database connection must be provided")
	}

	// Add settings for the http server.
	server := &http.Server{
		Addr:              cfg.Web.ListenAddress,
		ReadHeaderTimeout: time.Duration(30 * time.Second),
		WriteTimeout:      time.Duration(30 * time.Second),
		MaxHeaderBytes:    1 << 19, // 500k ish
	}

	webApp := &WebApp{
		log:    logger,
		cfg:    cfg,
		db:     db,
		server: server,
	}
	return webApp, nil
}

// StartServer starts a WebApp, shutting down gracefully when the
// provided context is cancelled.
func (web *WebApp) StartServer(ctx context.Context) error {
	web.server.Handler = web.routes()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		web.log.Info("starting server", "address", web.cfg.Web.ListenAddress)
		err := web.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		web.log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return web.server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// routes connects all of the endpoints and provides middleware.
func (web *WebApp) routes() http.Handler {

	r := mux.NewRouter()

	// Invoices.
	r.Handle(
		"/invoices",
		web.handleInvoices(),
	).Methods("GET", "POST", "PUT", "DELETE")
	r.Handle(
		"/invoices/search",
		web.handleInvoiceSearch(),
	).Methods("GET")
	r.Handle(
		"/invoices/status",
		web.handleInvoiceStatus(),
	).Methods("PUT")
	r.Handle(
		"/invoices/type",
		web.handleInvoiceType(),
	).Methods("PUT")
	r.Handle(
		"/invoices/totals",
		web.handleInvoiceTotals(),
	).Methods("GET")

	// Products.
	r.Handle(
		"/products",
		web.handleProducts(),
	).Methods("GET", "POST", "PUT", "DELETE")
	r.Handle(
		"/products/search",
		web.handleProductSearch(),
	).Methods("GET")
	r.Handle(
		"/products/low-stock",
		web.handleProductsLowStock(),
	).Methods("GET")

	// Suppliers.
	r.Handle(
		"/suppliers",
		web.handleSuppliers(),
	).Methods("GET", "POST", "PUT", "DELETE")
	r.Handle(
		"/suppliers/search",
		web.handleSupplierSearch(),
	).Methods("GET")
	r.Handle(
		"/suppliers/stats",
		web.handleSupplierStats(),
	).Methods("GET")

	// Financial transactions.
	r.Handle(
		"/transactions",
		web.handleTransactions(),
	).Methods("GET", "POST", "PUT", "DELETE")
	r.Handle(
		"/transactions/search",
		web.handleTransactionSearch(),
	).Methods("GET")
	r.Handle(
		"/transactions/stats/categories",
		web.handleCategoryStats(),
	).Methods("GET")

	// Company information, a single action-dispatch endpoint.
	r.Handle(
		"/company_info",
		web.handleCompanyInfo(),
	).Methods("GET", "POST")

	// Users and sign in.
	r.Handle(
		"/auth/users",
		web.handleUsers(),
	).Methods("GET", "POST", "PUT", "DELETE")
	r.Handle(
		"/auth/signin",
		web.handleSignin(),
	).Methods("POST")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		web.clientError(w, "resource not found", http.StatusNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		web.clientError(w, "method not allowed", http.StatusMethodNotAllowed)
	})

	logging := handlers.LoggingHandler(os.Stdout, web.allowCORS(r))
	return logging
}

// allowCORS adds permissive cross-origin headers and answers preflight
// requests. The API is consumed by a browser frontend served from
// elsewhere.
func (web *WebApp) allowCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
