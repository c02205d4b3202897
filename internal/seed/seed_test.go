package seed

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/Simplici0/cotizador3d/internal/db"
	"github.com/Simplici0/cotizador3d/internal/migrations"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "seed-test.db")
	database, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := migrations.Up(database); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return database
}

func TestRunIsIdempotent(t *testing.T) {
	t.Parallel()

	database := openTestDB(t)

	for i := 0; i < 10; i++ {
		stats, err := Run(database)
		if err != nil {
			t.Fatalf("run seed (iteration=%d): %v", i, err)
		}
		if i == 0 {
			if stats.Inserts != len(Defaults) {
				t.Fatalf("expected %d inserts in first run, got %d", len(Defaults), stats.Inserts)
			}
			continue
		}
		if stats.Inserts != 0 || stats.Updates != 0 {
			t.Fatalf("expected no changes in iteration %d, got %+v", i, stats)
		}
	}

	assertCount(t, database, `SELECT COUNT(*) FROM console_settings`, nil, len(Defaults))
	assertCount(t, database, `SELECT COUNT(*) FROM console_settings WHERE key = ? AND value = ?`, []any{"quote_valor_dolar", "900"}, 1)
}

func TestRunKeepsOperatorValues(t *testing.T) {
	t.Parallel()

	database := openTestDB(t)

	if _, err := database.Exec(`INSERT INTO console_settings (key, value) VALUES ('quote_comision_pct', '25')`); err != nil {
		t.Fatalf("insert setting: %v", err)
	}

	stats, err := Run(database)
	if err != nil {
		t.Fatalf("run seed: %v", err)
	}
	if stats.Inserts != len(Defaults)-1 || stats.Updates != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	assertCount(t, database, `SELECT COUNT(*) FROM console_settings WHERE key = ? AND value = ?`, []any{"quote_comision_pct", "25"}, 1)
	assertCount(t, database, `SELECT COUNT(*) FROM console_settings WHERE key = ? AND description != ''`, "quote_comision_pct", 1)
}

func assertCount(t *testing.T, database *sql.DB, query string, args any, expected int) {
	t.Helper()

	var count int
	var err error
	switch v := args.(type) {
	case nil:
		err = database.QueryRow(query).Scan(&count)
	case []any:
		err = database.QueryRow(query, v...).Scan(&count)
	default:
		err = database.QueryRow(query, v).Scan(&count)
	}
	if err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != expected {
		t.Fatalf("expected count %d, got %d", expected, count)
	}
}
