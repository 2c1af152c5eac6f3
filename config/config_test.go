package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {

	config, err := Load("config.example.yaml")
	if err != nil {
		t.Fatal(err)
	}

	if got, want := config.DatabasePath, "./bizmanager.db"; got != want {
		t.Errorf("got %s want %s", got, want)
	}
	if got, want := config.Web.ListenAddress, "127.0.0.1:8080"; got != want {
		t.Errorf("got %s want %s", got, want)
	}
	if got, want := config.BcryptCost, 10; got != want {
		t.Errorf("got %d want %d", got, want)
	}
}

func TestConfigDefaults(t *testing.T) {

	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := `
database_path: /tmp/test.db
web:
  listen_address: ":9090"
`
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}

	config, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := config.LogLevel, "info"; got != want {
		t.Errorf("log level got %s want %s", got, want)
	}
	if got, want := config.BcryptCost, defaultBcryptCost; got != want {
		t.Errorf("bcrypt cost got %d want %d", got, want)
	}
}

func TestConfigErrors(t *testing.T) {

	tests := []struct {
		name     string
		contents string
	}{
		{
			name:     "missing database path",
			contents: "web:\n  listen_address: \":9090\"\n",
		},
		{
			name:     "missing listen address",
			contents: "database_path: /tmp/test.db\n",
		},
		{
			name:     "bad log level",
			contents: "database_path: /tmp/test.db\nlog_level: loud\nweb:\n  listen_address: \":9090\"\n",
		},
		{
			name:     "bcrypt cost out of range",
			contents: "database_path: /tmp/test.db\nbcrypt_cost: 99\nweb:\n  listen_address: \":9090\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.contents), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected a configuration error")
			}
		})
	}

	if _, err := Load("doesNotExist.yaml"); err == nil {
		t.Error("expected an error for a missing config file")
	}
}
