package migrations

import (
	"strings"
	"testing"
)

func TestEmbeddedFS_ContainsMigrationFiles(t *testing.T) {
	// Given: The embedded filesystem
	// When: We read the directory
	entries, err := FS.ReadDir(".")
	if err != nil {
		t.Fatalf("failed to read embedded FS: %v", err)
	}

	// Then: It contains the initial schema migration
	found := false
	for _, entry := range entries {
		if entry.Name() == "001_initial_schema.sql" {
			found = true
			break
		}
	}

	if !found {
		t.Error("001_initial_schema.sql not found in embedded FS")
	}
}

func TestEmbeddedFS_MigrationFileReadable(t *testing.T) {
	// Given: The embedded filesystem
	// When: We read the migration file
	content, err := FS.ReadFile("001_initial_schema.sql")
	if err != nil {
		t.Fatalf("failed to read migration file: %v", err)
	}

	// Then: It contains goose directives
	contentStr := string(content)
	if len(contentStr) == 0 {
		t.Error("migration file is empty")
	}

	// Verify goose markers are present
	if !contains(contentStr, "-- +goose Up") {
		t.Error("migration missing '-- +goose Up' directive")
	}
	if !contains(contentStr, "-- +goose Down") {
		t.Error("migration missing '-- +goose Down' directive")
	}
	for _, table := range []string{"header_tags", "script_categories", "scripts", "contact_points", "info_items"} {
		if !contains(contentStr, "CREATE TABLE "+table+" (") {
			t.Errorf("migration missing %s table creation", table)
		}
	}
}

func TestEmbeddedFS_DownDropsChildrenFirst(t *testing.T) {
	content, err := FS.ReadFile("001_initial_schema.sql")
	if err != nil {
		t.Fatalf("failed to read migration file: %v", err)
	}
	down := string(content)[strings.Index(string(content), "-- +goose Down"):]

	// Then: every child table is dropped before the table it references
	pairs := [][2]string{
		{"scripts", "script_categories"},
		{"contact_points", "contact_groups"},
		{"contact_groups", "contact_categories"},
		{"info_items", "info_tags"},
	}
	for _, p := range pairs {
		child := strings.Index(down, "DROP TABLE IF EXISTS "+p[0]+";")
		parent := strings.Index(down, "DROP TABLE IF EXISTS "+p[1]+";")
		if child < 0 || parent < 0 || child > parent {
			t.Errorf("%s must be dropped before %s", p[0], p[1])
		}
	}
}

func contains(s, substr string) bool {
	return strings.Contains(s, substr)
}
