package postgres

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewPoolWithConfigDefaults(t *testing.T) {
	ctx := context.Background()

	// using invalid URL should return error
	if _, err := NewPoolWithConfig(ctx, PoolConfig{DatabaseURL: "not-a-url"}); err == nil {
		t.Fatalf("expected error when parsing invalid URL")
	}
}

func TestNewPoolWithConfigPingFailure(t *testing.T) {
	ctx := context.Background()
	cfg := PoolConfig{
		DatabaseURL: "postgres://invalid:5432/db",
		MaxConns:    1,
		MinConns:    0,
	}

	_, err := NewPoolWithConfig(ctx, cfg)
	if err == nil {
		t.Fatalf("expected error when pool cannot connect")
	}
}

func TestRunMigrationsMissingSource(t *testing.T) {
	err := RunMigrations("postgres://invalid:5432/db?sslmode=disable", t.TempDir()+"/missing", zerolog.Nop())
	if err == nil {
		t.Fatalf("expected error for missing migrations directory")
	}
}

// schemaAfterMigrations concatenates every up migration in apply order.
func schemaAfterMigrations(t *testing.T) string {
	t.Helper()

	files, err := filepath.Glob(filepath.Join("migrations", "*.up.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	sort.Strings(files)

	var schema strings.Builder
	for _, f := range files {
		body, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		schema.Write(body)
		schema.WriteString("\n")
	}
	return schema.String()
}

func TestMigrationsKeepHistoryWhenAccountIsDeleted(t *testing.T) {
	schema := schemaAfterMigrations(t)

	last := func(needle string) int { return strings.LastIndex(schema, needle) }

	if last("DROP CONSTRAINT IF EXISTS transactions_account_present") < last("CONSTRAINT transactions_account_present CHECK") {
		t.Fatalf("transactions_account_present must be dropped after it is created")
	}

	for _, want := range []string{
		"FOREIGN KEY (account_id) REFERENCES accounts (id) ON DELETE CASCADE",
		"FOREIGN KEY (from_account_id) REFERENCES accounts (id) ON DELETE SET NULL",
		"FOREIGN KEY (to_account_id) REFERENCES accounts (id) ON DELETE SET NULL",
	} {
		if !strings.Contains(schema, want) {
			t.Errorf("expected migrations to contain %q", want)
		}
	}
}

func TestMigrationsArePaired(t *testing.T) {
	ups, _ := filepath.Glob(filepath.Join("migrations", "*.up.sql"))
	if len(ups) == 0 {
		t.Fatalf("no migrations found")
	}

	for _, up := range ups {
		down := strings.TrimSuffix(up, ".up.sql") + ".down.sql"
		if _, err := os.Stat(down); err != nil {
			t.Errorf("missing down migration for %s", filepath.Base(up))
		}
	}
}
