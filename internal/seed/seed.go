package seed

import (
	"database/sql"
	"errors"
	"fmt"
)

// Setting is one console_settings row seeded at startup.
type Setting struct {
	Key         string
	Value       string
	Description string
}

// Defaults are the quote settings the console starts with. Existing rows are
// never overwritten so operator edits survive restarts.
var Defaults = []Setting{
	{Key: "quote_validez_dias", Value: "7", Description: "Validez del presupuesto en días"},
	{Key: "quote_plazo_produccion_dias", Value: "5", Description: "Plazo de producción en días hábiles"},
	{Key: "quote_forma_pago", Value: "A acordar", Description: "Forma de pago"},
	{Key: "quote_garantia", Value: "Sujeto a material, tolerancias y uso acordados.", Description: "Garantía"},
	{Key: "quote_incluye", Value: "", Description: "Ítems incluidos, uno por línea"},
	{Key: "quote_no_incluye", Value: "", Description: "Ítems no incluidos, uno por línea"},
	{Key: "quote_comision_pct", Value: "18", Description: "Comisión por defecto (%)"},
	{Key: "quote_valor_dolar", Value: "900", Description: "Valor del dólar por defecto"},
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Run executes the startup seed in an idempotent way.
func Run(db *sql.DB) (Stats, error) {
	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	for _, s := range Defaults {
		if err := ensureSetting(tx, s, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureSetting(tx *sql.Tx, s Setting, stats *Stats) error {
	var description string
	err := tx.QueryRow(`SELECT description FROM console_settings WHERE key = ?`, s.Key).Scan(&description)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.Exec(`
			INSERT INTO console_settings (key, value, description)
			VALUES (?, ?, ?)
		`, s.Key, s.Value, s.Description); err != nil {
			return fmt.Errorf("insert setting %s: %w", s.Key, err)
		}
		stats.Inserts++
		return nil
	case err != nil:
		return fmt.Errorf("check setting %s existence: %w", s.Key, err)
	}

	if description != "" {
		return nil
	}

	// Backfill descriptions on rows created through the settings page.
	if _, err := tx.Exec(`UPDATE console_settings SET description = ? WHERE key = ?`, s.Description, s.Key); err != nil {
		return fmt.Errorf("update setting %s description: %w", s.Key, err)
	}
	stats.Updates++
	return nil
}
