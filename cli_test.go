package main

import (
	"context"
	"testing"
)

// mockApp records cli invocations.
type mockApp struct {
	command string
	cfgPath string
	sqlDir  string
}

func (m *mockApp) Serve(ctx context.Context, cfgPath, sqlDir string) error {
	m.command, m.cfgPath, m.sqlDir = "serve", cfgPath, sqlDir
	return nil
}

func (m *mockApp) InitDB(ctx context.Context, cfgPath, sqlDir string) error {
	m.command, m.cfgPath, m.sqlDir = "init-db", cfgPath, sqlDir
	return nil
}

func TestCLICommands(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		command string
		cfgPath string
		sqlDir  string
	}{
		{
			name:    "serve with defaults",
			args:    []string{"bizmanager", "serve"},
			command: "serve",
			cfgPath: "config.yaml",
		},
		{
			name:    "serve with config flag",
			args:    []string{"bizmanager", "--config", "other.yaml", "serve"},
			command: "serve",
			cfgPath: "other.yaml",
		},
		{
			name:    "init-db with sql dir",
			args:    []string{"bizmanager", "--sql-dir", "db/sql", "init-db"},
			command: "init-db",
			cfgPath: "config.yaml",
			sqlDir:  "db/sql",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := &mockApp{}
			cmd := BuildCLI(app)
			if err := cmd.Run(context.Background(), tt.args); err != nil {
				t.Fatalf("cli run error: %v", err)
			}
			if app.command != tt.command {
				t.Errorf("got command %q, want %q", app.command, tt.command)
			}
			if app.cfgPath != tt.cfgPath {
				t.Errorf("got config path %q, want %q", app.cfgPath, tt.cfgPath)
			}
			if app.sqlDir != tt.sqlDir {
				t.Errorf("got sql dir %q, want %q", app.sqlDir, tt.sqlDir)
			}
		})
	}
}
