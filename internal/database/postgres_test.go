package database

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/GunarsK-portfolio/workshop-planner/internal/migrations"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockGorm(t *testing.T) (*gorm.DB, *sql.DB) {
	t.Helper()
	sqlDB, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	if err != nil {
		t.Fatalf("gorm.Open error: %v", err)
	}
	return db, sqlDB
}

func TestPostgresConfig_DSN(t *testing.T) {
	cfg := PostgresConfig{
		Host:     "db",
		Port:     "5432",
		User:     "planner",
		Password: "secret",
		DBName:   "workshops",
	}

	got := cfg.DSN()
	want := "host=db port=5432 user=planner password=secret dbname=workshops sslmode=disable TimeZone=UTC"
	if got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}

	cfg.SSLMode = "require"
	cfg.TimeZone = "Europe/Riga"
	if got := cfg.DSN(); !strings.Contains(got, "sslmode=require") || !strings.Contains(got, "TimeZone=Europe/Riga") {
		t.Errorf("DSN() = %q, want explicit sslmode and TimeZone", got)
	}
}

func TestConfigurePool_Defaults(t *testing.T) {
	_, sqlDB := newMockGorm(t)
	defer sqlDB.Close()

	configurePool(sqlDB, PostgresConfig{})

	if got := sqlDB.Stats().MaxOpenConnections; got != 20 {
		t.Errorf("MaxOpenConnections = %d, want 20", got)
	}
}

func TestMigrate_RunsEmbeddedMigrations(t *testing.T) {
	db, sqlDB := newMockGorm(t)
	defer sqlDB.Close()

	orig := gooseUp
	t.Cleanup(func() { gooseUp = orig })

	var gotDir string
	gooseUp = func(ctx context.Context, db *sql.DB, dir string) error {
		gotDir = dir
		return nil
	}

	if err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if gotDir != "." {
		t.Errorf("migration dir = %q, want \".\"", gotDir)
	}
}

func TestMigrate_PropagatesError(t *testing.T) {
	db, sqlDB := newMockGorm(t)
	defer sqlDB.Close()

	orig := gooseUp
	t.Cleanup(func() { gooseUp = orig })

	gooseUp = func(ctx context.Context, db *sql.DB, dir string) error {
		return errors.New("relation already exists")
	}

	err := Migrate(context.Background(), db)
	if err == nil || !strings.Contains(err.Error(), "failed to run migrations") {
		t.Fatalf("Migrate() error = %v, want wrapped migration error", err)
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := fs.Glob(migrations.FS, "*.sql")
	if err != nil {
		t.Fatalf("Glob error: %v", err)
	}

	want := []string{
		"00001_create_users.sql",
		"00002_create_workshops.sql",
		"00003_create_login_attempts.sql",
	}
	if len(entries) != len(want) {
		t.Fatalf("found %d migrations, want %d: %v", len(entries), len(want), entries)
	}
	for i, name := range want {
		if entries[i] != name {
			t.Errorf("migration[%d] = %s, want %s", i, entries[i], name)
		}
		body, err := fs.ReadFile(migrations.FS, name)
		if err != nil {
			t.Fatalf("ReadFile(%s) error: %v", name, err)
		}
		if !strings.Contains(string(body), "-- +goose Up") || !strings.Contains(string(body), "-- +goose Down") {
			t.Errorf("%s is missing goose annotations", name)
		}
	}
}
