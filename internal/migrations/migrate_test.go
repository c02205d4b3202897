package migrations

import (
	"testing"

	"github.com/Simplici0/cotizador3d/internal/db"
)

func TestUpCreatesTables(t *testing.T) {
	conn, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer conn.Close()

	if err := Up(conn); err != nil {
		t.Fatalf("first up: %v", err)
	}
	if err := Up(conn); err != nil {
		t.Fatalf("second up must be a no-op: %v", err)
	}

	for _, table := range []string{"sessions", "quote_exports", "console_settings"} {
		var name string
		err := conn.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Fatalf("table %s missing: %v", table, err)
		}
	}
}
