package database

import (
	"sort"
	"testing"
)

func TestMigrationNamesSortedAndEmbedded(t *testing.T) {
	names, err := migrationNames()
	if err != nil {
		t.Fatalf("names: %v", err)
	}
	if len(names) == 0 {
		t.Fatal("expected embedded migrations")
	}
	if !sort.StringsAreSorted(names) {
		t.Fatalf("migrations not sorted: %v", names)
	}
	if names[0] != "001_schema.sql" {
		t.Fatalf("first migration = %q", names[0])
	}
}
