package migrate

import (
	"io/fs"
	"os"
	"strings"
	"testing"

	"marketplace-portal/backend/internal/db"
)

func TestRun_EmptyDSN(t *testing.T) {
	err := Run("", Up)
	if err == nil {
		t.Fatal("Run with empty DSN should return error")
	}
	if !strings.Contains(err.Error(), "DATABASE_URL is not set") {
		t.Errorf("error = %q, want it to mention DATABASE_URL", err.Error())
	}
}

func TestRun_InvalidDirection(t *testing.T) {
	for _, dir := range []string{"", "invalid", "UP", "Down", "both"} {
		if err := Run("postgres://localhost/test", dir); err == nil {
			t.Errorf("Run with direction %q should return error", dir)
		}
	}
}

func TestVersion_EmptyDSN(t *testing.T) {
	if _, _, err := Version(""); err == nil {
		t.Fatal("Version with empty DSN should return error")
	}
}

func TestMigrationFS_PairsUpAndDown(t *testing.T) {
	entries, err := fs.ReadDir(db.MigrationFS, "migrations")
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	ups, downs := map[string]bool{}, map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}
	if len(ups) == 0 {
		t.Fatal("no migrations embedded")
	}
	for v := range ups {
		if !downs[v] {
			t.Errorf("migration %s has no down file", v)
		}
	}
}

func TestMigrationFS_PerPortalTables(t *testing.T) {
	b, err := fs.ReadFile(db.MigrationFS, "migrations/000002_portal_auth.up.sql")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	sql := string(b)
	for _, portal := range []string{"admin", "customer", "supplier", "fieldflow"} {
		for _, table := range []string{"_profiles", "_sessions", "_device_bindings", "_login_attempts"} {
			if !strings.Contains(sql, "CREATE TABLE IF NOT EXISTS "+portal+table) {
				t.Errorf("missing table %s%s", portal, table)
			}
		}
		if !strings.Contains(sql, portal+"_sessions (owner_profile_id) WHERE is_active") {
			t.Errorf("%s sessions lacks the one-active-session index", portal)
		}
	}
}

func TestRun_UpAgainstTestDatabase(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	if err := Run(dsn, Up); err != nil {
		t.Fatalf("Run up: %v", err)
	}
	v, dirty, err := Version(dsn)
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if dirty || v < 2 {
		t.Errorf("Version = %d dirty=%v, want >= 2 clean", v, dirty)
	}
}
