package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS orders (
  id                   INTEGER PRIMARY KEY AUTOINCREMENT,
  order_id             TEXT NOT NULL UNIQUE,
  amount               TEXT NOT NULL,
  currency             TEXT NOT NULL,
  status               TEXT NOT NULL,
  billing              TEXT NOT NULL,
  company              TEXT,
  invoice_series       TEXT,
  invoice_number       TEXT,
  pdf_link             TEXT,
  invoicing_started_at TEXT,
  created_at           TEXT NOT NULL,
  updated_at           TEXT NOT NULL
)`

// Fixed-width UTC layout so timestamps compare correctly as text.
const sqliteTime = "2006-01-02T15:04:05.000000000Z"

// SQLiteRepo stores orders in a local SQLite file.
type SQLiteRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepo(db *sql.DB) *SQLiteRepo {
	return &SQLiteRepo{db: db, now: time.Now}
}

func (r *SQLiteRepo) ts() string { return r.now().UTC().Format(sqliteTime) }

func (r *SQLiteRepo) Upsert(ctx context.Context, o *Order) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	billing, company, err := marshalParties(o)
	if err != nil {
		return err
	}

	now := r.ts()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO orders (order_id, amount, currency, status, billing, company, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (order_id) DO UPDATE
		SET amount = excluded.amount,
		    currency = excluded.currency,
		    status = excluded.status,
		    billing = excluded.billing,
		    company = excluded.company,
		    updated_at = excluded.updated_at
		WHERE orders.status <> 'approved'
	`, o.OrderID, o.Amount.String(), o.Currency, string(o.Status), billing, company, now, now)
	if err != nil {
		return fmt.Errorf("upserting order %s: %w", o.OrderID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAlreadyApproved
	}
	return nil
}

func (r *SQLiteRepo) Get(ctx context.Context, orderID string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var (
		o                                         Order
		amount, status, billing, created, updated string
		company, series, number, pdf              sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT order_id, amount, currency, status, billing, company,
		       invoice_series, invoice_number, pdf_link, created_at, updated_at
		FROM orders WHERE order_id = ?
	`, orderID).Scan(&o.OrderID, &amount, &o.Currency, &status, &billing, &company,
		&series, &number, &pdf, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting order %s: %w", orderID, err)
	}

	if err := fillOrder(&o, amount, status, billing,
		nullable(company), nullable(series), nullable(number), nullable(pdf)); err != nil {
		return nil, err
	}
	if o.CreatedAt, err = time.Parse(sqliteTime, created); err != nil {
		return nil, fmt.Errorf("decoding created_at of order %s: %w", orderID, err)
	}
	if o.UpdatedAt, err = time.Parse(sqliteTime, updated); err != nil {
		return nil, fmt.Errorf("decoding updated_at of order %s: %w", orderID, err)
	}
	return &o, nil
}

func (r *SQLiteRepo) MarkFailed(ctx context.Context, orderID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = 'failed', updated_at = ?
		WHERE order_id = ? AND status <> 'approved'
	`, r.ts(), orderID)
	if err != nil {
		return false, fmt.Errorf("marking order %s failed: %w", orderID, err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *SQLiteRepo) ClaimInvoicing(ctx context.Context, orderID string, staleBefore time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	now := r.ts()
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = 'approved', invoicing_started_at = ?, updated_at = ?
		WHERE order_id = ?
		  AND COALESCE(invoice_series, '') = ''
		  AND (invoicing_started_at IS NULL OR invoicing_started_at < ?)
	`, now, now, orderID, staleBefore.UTC().Format(sqliteTime))
	if err != nil {
		return false, fmt.Errorf("claiming invoicing for order %s: %w", orderID, err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *SQLiteRepo) ReleaseInvoicing(ctx context.Context, orderID string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		UPDATE orders SET invoicing_started_at = NULL, updated_at = ?
		WHERE order_id = ?
	`, r.ts(), orderID)
	if err != nil {
		return fmt.Errorf("releasing invoicing claim for order %s: %w", orderID, err)
	}
	return nil
}

func (r *SQLiteRepo) SetInvoice(ctx context.Context, orderID string, inv Invoice) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET invoice_series = ?1,
		    invoice_number = ?2,
		    pdf_link = NULLIF(?3, ''),
		    invoicing_started_at = NULL,
		    updated_at = ?4
		WHERE order_id = ?5
		  AND (COALESCE(invoice_series, '') = ''
		       OR (invoice_series = ?1 AND invoice_number = ?2))
	`, inv.Series, inv.Number, inv.PDFLink, r.ts(), orderID)
	if err != nil {
		return fmt.Errorf("setting invoice for order %s: %w", orderID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.Get(ctx, orderID); err != nil {
			return err
		}
		return ErrInvoiceAlreadySet
	}
	return nil
}

func (r *SQLiteRepo) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return r.db.PingContext(ctx)
}

func nullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
