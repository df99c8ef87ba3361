package repository

import (
	"context"
	"database/sql"
	"time"
)

// ReportRepo computes read-only revenue aggregates over the reservation
// ledger.  Reports are recomputed on every view; nothing is cached or
// materialized.
type ReportRepo struct {
	db *sql.DB
}

// NewReportRepo returns a new ReportRepo bound to the given database.
func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{db: db} }

// DailyRevenue is the revenue collected for one menu date: the sum of
// menu price over that date's paid reservations, one price per
// reservation.
type DailyRevenue struct {
	Date       string `json:"date"`
	TotalCents uint64 `json:"total_cents"`
}

// RevenueByDate groups paid reservations by their menu's date and sums
// the menu price per row, newest date first.
func (r *ReportRepo) RevenueByDate(ctx context.Context) ([]DailyRevenue, error) {
	const q = `SELECT m.menu_date, SUM(m.price_cents)
	           FROM reservations r
	           JOIN menus m ON m.id = r.menu_id
	           WHERE r.is_paid = 1
	           GROUP BY m.menu_date
	           ORDER BY m.menu_date DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]DailyRevenue, 0)
	for rows.Next() {
		var d time.Time
		var total sql.NullInt64
		if err := rows.Scan(&d, &total); err != nil {
			return nil, err
		}
		rec := DailyRevenue{Date: d.Format("2006-01-02")}
		if total.Valid {
			rec.TotalCents = uint64(total.Int64)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GrandTotal sums the per-date rows into the overall revenue figure.
func GrandTotal(rows []DailyRevenue) uint64 {
	var sum uint64
	for _, r := range rows {
		sum += r.TotalCents
	}
	return sum
}
