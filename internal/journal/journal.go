// Package journal persists canonical reports to sqlite. Re-delivered
// venue events produce new rows; consumers dedup by content.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/betbot/govenue/pkg/report"
)

type Journal struct {
	db *sql.DB
}

// Open creates or opens the journal database and applies migrations.
func Open(path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	j := &Journal{db: db}
	if err := j.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

func (j *Journal) migrate() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Decimal columns are TEXT: REAL would round prices the parsers went
	// out of their way to keep exact.
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`
CREATE TABLE IF NOT EXISTS order_status_reports (
  report_id TEXT PRIMARY KEY,
  account_id TEXT NOT NULL,
  instrument_id TEXT NOT NULL,
  client_order_id TEXT,
  order_list_id TEXT,
  venue_order_id TEXT NOT NULL,
  side TEXT NOT NULL,
  order_type TEXT NOT NULL,
  contingency TEXT NOT NULL,
  time_in_force TEXT NOT NULL,
  status TEXT NOT NULL,
  price TEXT NOT NULL,
  quantity TEXT NOT NULL,
  filled_qty TEXT NOT NULL,
  expire_time_ns INTEGER,
  ts_accepted_ns INTEGER NOT NULL,
  ts_last_ns INTEGER NOT NULL,
  ts_init_ns INTEGER NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_order_status_account_ts ON order_status_reports(account_id, ts_last_ns DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_order_status_venue_order ON order_status_reports(venue_order_id);`,
		`
CREATE TABLE IF NOT EXISTS fill_reports (
  report_id TEXT PRIMARY KEY,
  account_id TEXT NOT NULL,
  instrument_id TEXT NOT NULL,
  client_order_id TEXT,
  venue_order_id TEXT NOT NULL,
  trade_id TEXT NOT NULL,
  side TEXT NOT NULL,
  liquidity_side TEXT NOT NULL,
  last_qty TEXT NOT NULL,
  last_px TEXT NOT NULL,
  ts_event_ns INTEGER NOT NULL,
  ts_init_ns INTEGER NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_fills_account_ts ON fill_reports(account_id, ts_event_ns DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_fills_trade ON fill_reports(trade_id);`,
	}

	for _, q := range stmts {
		if _, err := j.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migrate exec failed: %w", err)
		}
	}
	return nil
}

func (j *Journal) InsertOrderStatus(ctx context.Context, r report.OrderStatusReport) error {
	var expire sql.NullInt64
	if r.ExpireTime != nil {
		expire = sql.NullInt64{Int64: r.ExpireTime.UnixNano(), Valid: true}
	}
	_, err := j.db.ExecContext(ctx, `
INSERT INTO order_status_reports (
  report_id, account_id, instrument_id, client_order_id, order_list_id,
  venue_order_id, side, order_type, contingency, time_in_force, status,
  price, quantity, filled_qty, expire_time_ns, ts_accepted_ns, ts_last_ns, ts_init_ns
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		r.ReportID.String(), r.AccountID, r.InstrumentID, r.ClientOrderID, r.OrderListID,
		r.VenueOrderID, string(r.Side), string(r.OrderType), string(r.Contingency),
		string(r.TimeInForce), string(r.Status),
		r.Price.String(), r.Quantity.String(), r.FilledQty.String(),
		expire, r.TsAccepted.UnixNano(), r.TsLast.UnixNano(), r.TsInit.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert order status report: %w", err)
	}
	return nil
}

func (j *Journal) InsertFill(ctx context.Context, r report.FillReport) error {
	_, err := j.db.ExecContext(ctx, `
INSERT INTO fill_reports (
  report_id, account_id, instrument_id, client_order_id, venue_order_id,
  trade_id, side, liquidity_side, last_qty, last_px, ts_event_ns, ts_init_ns
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		r.ReportID.String(), r.AccountID, r.InstrumentID, r.ClientOrderID, r.VenueOrderID,
		r.TradeID, string(r.Side), string(r.LiquiditySide),
		r.LastQty.String(), r.LastPx.String(),
		r.TsEvent.UnixNano(), r.TsInit.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert fill report: %w", err)
	}
	return nil
}

// RecentOrderStatus returns the newest order-status rows, newest first.
func (j *Journal) RecentOrderStatus(ctx context.Context, limit int) ([]report.OrderStatusReport, error) {
	rows, err := j.db.QueryContext(ctx, `
SELECT report_id, account_id, instrument_id, client_order_id, order_list_id,
  venue_order_id, side, order_type, contingency, time_in_force, status,
  price, quantity, filled_qty, expire_time_ns, ts_accepted_ns, ts_last_ns, ts_init_ns
FROM order_status_reports ORDER BY ts_last_ns DESC, rowid DESC LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []report.OrderStatusReport
	for rows.Next() {
		var (
			r          report.OrderStatusReport
			reportID   string
			side       string
			orderType  string
			cont       string
			tif        string
			status     string
			price      string
			quantity   string
			filledQty  string
			expire     sql.NullInt64
			tsAccepted int64
			tsLast     int64
			tsInit     int64
		)
		if err := rows.Scan(
			&reportID, &r.AccountID, &r.InstrumentID, &r.ClientOrderID, &r.OrderListID,
			&r.VenueOrderID, &side, &orderType, &cont, &tif, &status,
			&price, &quantity, &filledQty, &expire, &tsAccepted, &tsLast, &tsInit,
		); err != nil {
			return nil, err
		}

		if r.ReportID, err = uuid.Parse(reportID); err != nil {
			return nil, fmt.Errorf("report %s: %w", reportID, err)
		}
		r.Side = report.OrderSide(side)
		r.OrderType = report.OrderType(orderType)
		r.Contingency = report.ContingencyType(cont)
		r.TimeInForce = report.TimeInForce(tif)
		r.Status = report.OrderStatus(status)
		if r.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("report %s price: %w", reportID, err)
		}
		if r.Quantity, err = decimal.NewFromString(quantity); err != nil {
			return nil, fmt.Errorf("report %s quantity: %w", reportID, err)
		}
		if r.FilledQty, err = decimal.NewFromString(filledQty); err != nil {
			return nil, fmt.Errorf("report %s filled_qty: %w", reportID, err)
		}
		if expire.Valid {
			t := time.Unix(0, expire.Int64).UTC()
			r.ExpireTime = &t
		}
		r.TsAccepted = time.Unix(0, tsAccepted).UTC()
		r.TsLast = time.Unix(0, tsLast).UTC()
		r.TsInit = time.Unix(0, tsInit).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// RecentFills returns the newest fill rows, newest first.
func (j *Journal) RecentFills(ctx context.Context, limit int) ([]report.FillReport, error) {
	rows, err := j.db.QueryContext(ctx, `
SELECT report_id, account_id, instrument_id, client_order_id, venue_order_id,
  trade_id, side, liquidity_side, last_qty, last_px, ts_event_ns, ts_init_ns
FROM fill_reports ORDER BY ts_event_ns DESC, rowid DESC LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []report.FillReport
	for rows.Next() {
		var (
			r         report.FillReport
			reportID  string
			side      string
			liquidity string
			lastQty   string
			lastPx    string
			tsEvent   int64
			tsInit    int64
		)
		if err := rows.Scan(
			&reportID, &r.AccountID, &r.InstrumentID, &r.ClientOrderID, &r.VenueOrderID,
			&r.TradeID, &side, &liquidity, &lastQty, &lastPx, &tsEvent, &tsInit,
		); err != nil {
			return nil, err
		}

		if r.ReportID, err = uuid.Parse(reportID); err != nil {
			return nil, fmt.Errorf("fill %s: %w", reportID, err)
		}
		r.Side = report.OrderSide(side)
		r.LiquiditySide = report.LiquiditySide(liquidity)
		if r.LastQty, err = decimal.NewFromString(lastQty); err != nil {
			return nil, fmt.Errorf("fill %s last_qty: %w", reportID, err)
		}
		if r.LastPx, err = decimal.NewFromString(lastPx); err != nil {
			return nil, fmt.Errorf("fill %s last_px: %w", reportID, err)
		}
		r.TsEvent = time.Unix(0, tsEvent).UTC()
		r.TsInit = time.Unix(0, tsInit).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountByStatus aggregates journaled order-status rows per canonical status.
func (j *Journal) CountByStatus(ctx context.Context) (map[report.OrderStatus]int64, error) {
	rows, err := j.db.QueryContext(ctx, `
SELECT status, COUNT(*) FROM order_status_reports GROUP BY status;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[report.OrderStatus]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[report.OrderStatus(status)] = n
	}
	return counts, rows.Err()
}
