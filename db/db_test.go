package db

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func ptrStr(s string) *string { return &s }

func ptrBool(b bool) *bool { return &b }

func ptrFloat64(f float64) *float64 { return &f }

func ptrInt64(i int64) *int64 { return &i }

// setupTestDB sets up a test database connection to a shared-cache
// in-memory database named after the test, so each test starts from an
// empty schema.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testingMode = true
	t.Cleanup(func() {
		testingMode = false
	})

	dsn := fmt.Sprintf(
		"file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)",
		strings.ReplaceAll(t.Name(), "/", "_"),
	)

	testDB, err := NewConnectionInTestMode(dsn, os.DirFS("sql"), nil)
	if err != nil {
		t.Fatalf("in-memory test database opening error: %v", err)
	}
	testDB.SetLogLevel(log.WarnLevel)

	t.Cleanup(func() {
		if err := testDB.Close(); err != nil {
			t.Fatalf("unexpected db close error: %v", err)
		}
	})
	return testDB
}

func TestNewConnection(t *testing.T) {
	db := setupTestDB(t)

	// All manifest statements should have been prepared.
	if got, want := len(db.stmts), len(parameterizedFiles); got != want {
		t.Errorf("got %d prepared statements, want %d", got, want)
	}
	if got, want := len(db.queries), len(plainFiles); got != want {
		t.Errorf("got %d loaded queries, want %d", got, want)
	}
}

func TestNewConnectionInTestModeErrors(t *testing.T) {
	// An in-memory database without shared cache would vanish between
	// connections.
	_, err := NewConnectionInTestMode("file:nocache?mode=memory", os.DirFS("sql"), nil)
	if err == nil {
		t.Fatal("expected connection error for missing cache=shared")
	}
}
