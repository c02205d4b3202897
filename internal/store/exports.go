package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Export is a logged PDF download.
type Export struct {
	ID            int64
	Tenant        string
	ProjectName   string
	FileName      string
	Units         int
	FXRate        float64
	FinalPriceARS float64
	SizeBytes     int64
	CreatedAt     time.Time
}

type Exports struct {
	db *sql.DB
}

func NewExports(db *sql.DB) *Exports {
	return &Exports{db: db}
}

func (e *Exports) Record(ctx context.Context, x Export) (int64, error) {
	res, err := e.db.ExecContext(ctx, `
		INSERT INTO quote_exports (tenant, project_name, file_name, units, fx_rate, final_price_ars, size_bytes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, x.Tenant, x.ProjectName, x.FileName, x.Units, x.FXRate, x.FinalPriceARS, x.SizeBytes)
	if err != nil {
		return 0, fmt.Errorf("insert quote export: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert quote export: %w", err)
	}
	return id, nil
}

// List returns the tenant's exports, newest first, optionally filtered by a
// substring of the project or file name.
func (e *Exports) List(ctx context.Context, tenant, query string) ([]Export, error) {
	search := "%" + query + "%"
	rows, err := e.db.QueryContext(ctx, `
		SELECT id, tenant, project_name, file_name, units, fx_rate, final_price_ars, size_bytes, created_at
		FROM quote_exports
		WHERE tenant = ?
			AND (? = '' OR project_name LIKE ? OR file_name LIKE ?)
		ORDER BY datetime(created_at) DESC, id DESC
	`, tenant, query, search, search)
	if err != nil {
		return nil, fmt.Errorf("list quote exports: %w", err)
	}
	defer rows.Close()

	exports := make([]Export, 0)
	for rows.Next() {
		var item Export
		if err := rows.Scan(&item.ID, &item.Tenant, &item.ProjectName, &item.FileName, &item.Units,
			&item.FXRate, &item.FinalPriceARS, &item.SizeBytes, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan quote export: %w", err)
		}
		exports = append(exports, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list quote exports: %w", err)
	}
	return exports, nil
}
