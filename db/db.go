// Package db provides the database component of the bizmanager project.
//
// Although the current database backend is sqlite to allow for simple
// single-binary deployment, the database is not considered a simple storage
// layer. Each query below is held in an sql file held in the `sql` directory,
// which can be run on the sqlite command line. (For some queries it is
// advisable to run the sql in a transaction, so that the results can be
// rolled back.)
//
// The use of external, runnable sql files also as Go prepared statements is
// made possible through a novel parameterization scheme, as set out in
// parameterize.go.
package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"        // helper library
	sqlite "modernc.org/sqlite"      // pure go sqlite driver
	sqlite3 "modernc.org/sqlite/lib" // sqlite result codes
)

// SQLEmbeddedFS embeds the sql statement files so that the binary is
// self-contained. Callers may instead mount an on-disk directory, for
// example during development.
//
//go:embed sql
var SQLEmbeddedFS embed.FS

// Sentinel errors reported by the entity operations, allowing callers to map
// database outcomes to responses without inspecting driver error strings.
var (
	// ErrNotFound reports that the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict reports a uniqueness violation, such as a duplicate
	// username or email address.
	ErrConflict = errors.New("record conflicts with an existing record")
	// ErrCompanyExists reports an attempt to register a second company
	// record. Company information is a singleton.
	ErrCompanyExists = errors.New("company information is already registered")
)

// isUniqueViolation reports whether err is a sqlite unique constraint
// failure, using the driver's extended result codes.
func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}

// parameterizedStmt describes an sql file parsed into an sqlx NamedStmt
// expecting the provided args.
type parameterizedStmt struct {
	sqlFile string
	args    []string
	*sqlx.NamedStmt
}

// verifyArgs determines if the number of arguments provided to a
// parameterizedStmt is as expected. This check could be more thorough.
func (p *parameterizedStmt) verifyArgs(args map[string]any) error {
	if got, want := len(args), len(p.args); got != want {
		return fmt.Errorf(
			"argument length to named statement from %q incorrect: got %d want %d",
			p.sqlFile,
			got,
			want,
		)
	}
	return nil
}

// DB provides a wrapper around the sql.DB connection for application-specific
// db operations.
type DB struct {
	*sqlx.DB
	logger *log.Logger
	sqlFS  fs.FS

	// Prepared statements keyed by sql file name.
	stmts map[string]*parameterizedStmt

	// Parameterless query texts keyed by sql file name.
	queries map[string]string
}

// testingMode alters connection handling for in-memory test databases.
var testingMode bool

// NewConnection creates a new connection to an SQLite database at the given
// path, initialises the schema and prepares the application's statements. A
// nil sqlDir falls back to the embedded sql directory; a nil logger falls
// back to the default logger.
func NewConnection(dbPath string, sqlDir fs.FS, logger *log.Logger) (*DB, error) {

	// dataSource is the default setting for file-based databases.
	dataSource := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", dbPath)

	// for in-memory test databases, check the necessary cached setting is used.
	if strings.Contains(dbPath, "mode=memory") || strings.Contains(dbPath, ":memory:") {
		if !strings.Contains(dbPath, "cache=shared") {
			return nil, fmt.Errorf("in-memory connection %q should contain 'cache=shared'", dbPath)
		}
		dataSource = dbPath
	}
	dbDB, err := sql.Open("sqlite", dataSource)
	if err != nil {
		return nil, err
	}
	if err := dbDB.Ping(); err != nil {
		return nil, err
	}

	if sqlDir == nil {
		sqlDir, err = fs.Sub(SQLEmbeddedFS, "sql")
		if err != nil {
			return nil, fmt.Errorf("could not mount embedded sql files: %w", err)
		}
	}
	if logger == nil {
		logger = log.Default()
	}

	// Wrap the standard library *sql.DB with sqlx.
	db := &DB{
		DB:     sqlx.NewDb(dbDB, "sqlite"),
		logger: logger,
		sqlFS:  sqlDir,
	}

	// A shared-cache in-memory database is dropped when its last connection
	// closes, so hold the pool to a single connection under test.
	if testingMode {
		db.SetMaxOpenConns(1)
	}

	// The schema file is idempotent and must be in place before the named
	// statements can be prepared against its tables.
	if err := db.InitSchema(db.sqlFS, schemaSQL); err != nil {
		return nil, err
	}
	if err := db.prepareNamedStatements(); err != nil {
		return nil, fmt.Errorf("could not prepare named statements: %w", err)
	}

	return db, nil
}

// NewConnectionInTestMode creates a connection suitable for testing,
// normally to a shared-cache in-memory database.
func NewConnectionInTestMode(dbPath string, sqlDir fs.FS, logger *log.Logger) (*DB, error) {
	if !strings.Contains(dbPath, "cache=shared") {
		return nil, fmt.Errorf("test connection %q should contain 'cache=shared'", dbPath)
	}
	testingMode = true
	return NewConnection(dbPath, sqlDir, logger)
}

// SetLogLevel sets the logging level of the db logger.
func (db *DB) SetLogLevel(level log.Level) {
	db.logger.SetLevel(level)
}

// prepareNamedStatements prepares all the named statements for this database
// connection, and loads the parameterless query texts.
func (db *DB) prepareNamedStatements() error {
	db.stmts = make(map[string]*parameterizedStmt, len(parameterizedFiles))
	for _, f := range parameterizedFiles {
		ps, err := db.prepNamedStatement(db.sqlFS, f)
		if err != nil {
			return fmt.Errorf("statement error for %q: %w", f, err)
		}
		db.stmts[f] = ps
	}
	db.queries = make(map[string]string, len(plainFiles))
	for _, f := range plainFiles {
		b, err := fs.ReadFile(db.sqlFS, f)
		if err != nil {
			return fmt.Errorf("could not read query file %q: %w", f, err)
		}
		db.queries[f] = string(b)
	}
	return nil
}

// stmt retrieves a statement prepared by prepareNamedStatements. Statement
// names are package constants covered by the prepare manifests, so every
// lookup is expected to succeed.
func (db *DB) stmt(name string) *parameterizedStmt {
	return db.stmts[name]
}

// query retrieves a parameterless query text.
func (db *DB) query(name string) string {
	return db.queries[name]
}

// prepNamedStatement prepares the SQL queries.
func (db *DB) prepNamedStatement(fileFS fs.FS, filePath string) (*parameterizedStmt, error) {
	query, err := ParameterizeFile(fileFS, filePath)
	if err != nil {
		return nil, fmt.Errorf("could not parameterize %q: %w", filePath, err)
	}

	pQuery, err := db.PrepareNamed(string(query.Body))
	if err != nil {
		return nil, fmt.Errorf("could not prepare statement %q: %w", filePath, err)
	}
	return &parameterizedStmt{
		filePath,
		query.Parameters,
		pQuery,
	}, nil
}

// InitSchema creates the necessary tables if they don't already exist. The
// schema file can be run idempotently.
func (db *DB) InitSchema(fileFS fs.FS, filePath string) error {

	schema, err := fs.ReadFile(fileFS, filePath)
	if err != nil {
		return fmt.Errorf("could not read schema file at %q: %w", filePath, err)
	}

	_, err = db.ExecContext(context.Background(), string(schema))
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// logQuery is for helping debug SQL issues.
func (db *DB) logQuery(name string, args map[string]any, err error) {
	db.logger.Debug("sql", "file", name, "args", args, "error", err)
}
