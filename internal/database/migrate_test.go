package database

import (
	"io/fs"
	"strings"
	"testing"
)

func TestEmbedMigrations(t *testing.T) {
	files, err := fs.Glob(EmbedMigrations, "migrations/*.sql")
	if err != nil {
		t.Fatalf("Glob() error = %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no migrations embedded")
	}

	for _, name := range files {
		data, err := fs.ReadFile(EmbedMigrations, name)
		if err != nil {
			t.Fatalf("ReadFile(%s) error = %v", name, err)
		}
		sql := string(data)
		if !strings.Contains(sql, "-- +goose Up") {
			t.Errorf("%s: missing goose Up marker", name)
		}
		if !strings.Contains(sql, "-- +goose Down") {
			t.Errorf("%s: missing goose Down marker", name)
		}
	}
}

func TestInitMigration_CreatesTables(t *testing.T) {
	data, err := fs.ReadFile(EmbedMigrations, "migrations/00001_init.sql")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	for _, table := range []string{"users", "saved_configurations", "ingest_jobs"} {
		if !strings.Contains(string(data), "CREATE TABLE "+table+" (") {
			t.Errorf("init migration does not create %s", table)
		}
	}
}
