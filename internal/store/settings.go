package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Simplici0/cotizador3d/internal/quotepdf"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("store: not found")

// Setting is a console-level key/value pair. These are local to the console
// and unrelated to the per-tenant settings kept by the backend.
type Setting struct {
	Key         string
	Value       string
	Description string
	UpdatedAt   time.Time
}

// QuoteDefaults prefill the quote form and the PDF conditions.
type QuoteDefaults struct {
	CommissionPct float64
	DollarValue   float64
	Conditions    quotepdf.Conditions
}

type Settings struct {
	db *sql.DB
}

func NewSettings(db *sql.DB) *Settings {
	return &Settings{db: db}
}

func (s *Settings) List(ctx context.Context) ([]Setting, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, value, description, updated_at
		FROM console_settings
		ORDER BY key
	`)
	if err != nil {
		return nil, fmt.Errorf("list console settings: %w", err)
	}
	defer rows.Close()

	settings := make([]Setting, 0)
	for rows.Next() {
		var item Setting
		if err := rows.Scan(&item.Key, &item.Value, &item.Description, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan console setting: %w", err)
		}
		settings = append(settings, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list console settings: %w", err)
	}
	return settings, nil
}

func (s *Settings) Get(ctx context.Context, key string) (Setting, error) {
	item := Setting{Key: key}
	err := s.db.QueryRowContext(ctx, `
		SELECT value, description, updated_at FROM console_settings WHERE key = ?
	`, key).Scan(&item.Value, &item.Description, &item.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Setting{}, ErrNotFound
	}
	if err != nil {
		return Setting{}, fmt.Errorf("get console setting %s: %w", key, err)
	}
	return item, nil
}

// Set updates an existing key. Unknown keys are rejected.
func (s *Settings) Set(ctx context.Context, key, value string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE console_settings SET value = ?, updated_at = CURRENT_TIMESTAMP WHERE key = ?
	`, strings.TrimSpace(value), key)
	if err != nil {
		return fmt.Errorf("update console setting %s: %w", key, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update console setting %s: %w", key, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// QuoteDefaults reads the quote_* keys. Missing or malformed values fall back
// to the built-in defaults.
func (s *Settings) QuoteDefaults(ctx context.Context) (QuoteDefaults, error) {
	all, err := s.List(ctx)
	if err != nil {
		return QuoteDefaults{}, err
	}
	values := make(map[string]string, len(all))
	for _, item := range all {
		values[item.Key] = item.Value
	}

	d := QuoteDefaults{
		CommissionPct: 18,
		DollarValue:   900,
		Conditions:    quotepdf.DefaultConditions(),
	}
	if v, err := strconv.ParseFloat(values["quote_comision_pct"], 64); err == nil {
		d.CommissionPct = min(max(v, 0), 100)
	}
	if v, err := strconv.ParseFloat(values["quote_valor_dolar"], 64); err == nil && v > 0 {
		d.DollarValue = v
	}
	if v, err := strconv.Atoi(values["quote_validez_dias"]); err == nil && v > 0 {
		d.Conditions.ValidityDays = v
	}
	if v, err := strconv.Atoi(values["quote_plazo_produccion_dias"]); err == nil && v > 0 {
		d.Conditions.ProductionDays = v
	}
	if v := strings.TrimSpace(values["quote_forma_pago"]); v != "" {
		d.Conditions.Payment = v
	}
	if v := strings.TrimSpace(values["quote_garantia"]); v != "" {
		d.Conditions.Guarantee = v
	}
	d.Conditions.Includes = lines(values["quote_incluye"])
	d.Conditions.Excludes = lines(values["quote_no_incluye"])
	return d, nil
}

func lines(raw string) []string {
	out := make([]string, 0)
	for _, l := range strings.Split(raw, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
