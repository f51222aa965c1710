package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrAlreadyApproved   = errors.New("order already approved")
	ErrInvoiceAlreadySet = errors.New("order already invoiced")
)

const queryTimeout = 5 * time.Second

//go:generate mockgen -source=repo.go -destination=repository_mock.go -package=order
type Repository interface {
	// Upsert inserts a new order or refreshes amount, currency, status,
	// billing and company of an existing one. Approved orders are never
	// overwritten; Upsert returns ErrAlreadyApproved for them.
	Upsert(ctx context.Context, o *Order) error
	Get(ctx context.Context, orderID string) (*Order, error)
	// MarkFailed moves a non-approved order to failed. It reports whether a
	// row changed.
	MarkFailed(ctx context.Context, orderID string) (bool, error)
	// ClaimInvoicing marks the order approved and takes the invoicing claim
	// when no invoice exists and no claim newer than staleBefore is held.
	ClaimInvoicing(ctx context.Context, orderID string, staleBefore time.Time) (bool, error)
	ReleaseInvoicing(ctx context.Context, orderID string) error
	SetInvoice(ctx context.Context, orderID string, inv Invoice) error
	Ping(ctx context.Context) error
}

const PGSchema = `
CREATE TABLE IF NOT EXISTS orders (
  id                   BIGSERIAL PRIMARY KEY,
  order_id             TEXT NOT NULL UNIQUE,
  amount               NUMERIC(12,2) NOT NULL,
  currency             CHAR(3) NOT NULL,
  status               TEXT NOT NULL,
  billing              JSONB NOT NULL,
  company              JSONB,
  invoice_series       TEXT,
  invoice_number       TEXT,
  pdf_link             TEXT,
  invoicing_started_at TIMESTAMPTZ,
  created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Upsert(ctx context.Context, o *Order) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	billing, company, err := marshalParties(o)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, `
		INSERT INTO orders (order_id, amount, currency, status, billing, company, created_at, updated_at)
		VALUES ($1, $2::numeric, $3, $4, $5::jsonb, $6::jsonb, NOW(), NOW())
		ON CONFLICT (order_id) DO UPDATE
		SET amount = EXCLUDED.amount,
		    currency = EXCLUDED.currency,
		    status = EXCLUDED.status,
		    billing = EXCLUDED.billing,
		    company = EXCLUDED.company,
		    updated_at = NOW()
		WHERE orders.status <> 'approved'
	`, o.OrderID, o.Amount.String(), o.Currency, string(o.Status), billing, company)
	if err != nil {
		return fmt.Errorf("upserting order %s: %w", o.OrderID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyApproved
	}
	return nil
}

func (r *PGRepo) Get(ctx context.Context, orderID string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var (
		o                       Order
		amount, status, billing string
		company                 *string
		series, number, pdf     *string
	)
	err := r.db.QueryRow(ctx, `
		SELECT order_id, amount::text, currency, status, billing::text, company::text,
		       invoice_series, invoice_number, pdf_link, created_at, updated_at
		FROM orders WHERE order_id = $1
	`, orderID).Scan(&o.OrderID, &amount, &o.Currency, &status, &billing, &company,
		&series, &number, &pdf, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting order %s: %w", orderID, err)
	}

	if err := fillOrder(&o, amount, status, billing, company, series, number, pdf); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *PGRepo) MarkFailed(ctx context.Context, orderID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET status = 'failed', updated_at = NOW()
		WHERE order_id = $1 AND status <> 'approved'
	`, orderID)
	if err != nil {
		return false, fmt.Errorf("marking order %s failed: %w", orderID, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PGRepo) ClaimInvoicing(ctx context.Context, orderID string, staleBefore time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET status = 'approved', invoicing_started_at = NOW(), updated_at = NOW()
		WHERE order_id = $1
		  AND COALESCE(invoice_series, '') = ''
		  AND (invoicing_started_at IS NULL OR invoicing_started_at < $2)
	`, orderID, staleBefore)
	if err != nil {
		return false, fmt.Errorf("claiming invoicing for order %s: %w", orderID, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PGRepo) ReleaseInvoicing(ctx context.Context, orderID string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		UPDATE orders SET invoicing_started_at = NULL, updated_at = NOW()
		WHERE order_id = $1
	`, orderID)
	if err != nil {
		return fmt.Errorf("releasing invoicing claim for order %s: %w", orderID, err)
	}
	return nil
}

func (r *PGRepo) SetInvoice(ctx context.Context, orderID string, inv Invoice) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET invoice_series = $2,
		    invoice_number = $3,
		    pdf_link = NULLIF($4, ''),
		    invoicing_started_at = NULL,
		    updated_at = NOW()
		WHERE order_id = $1
		  AND (COALESCE(invoice_series, '') = ''
		       OR (invoice_series = $2 AND invoice_number = $3))
	`, orderID, inv.Series, inv.Number, inv.PDFLink)
	if err != nil {
		return fmt.Errorf("setting invoice for order %s: %w", orderID, err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.Get(ctx, orderID); err != nil {
			return err
		}
		return ErrInvoiceAlreadySet
	}
	return nil
}

func (r *PGRepo) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return r.db.Ping(ctx)
}

func marshalParties(o *Order) (string, *string, error) {
	b, err := json.Marshal(o.Billing)
	if err != nil {
		return "", nil, fmt.Errorf("encoding billing: %w", err)
	}
	if o.Company == nil {
		return string(b), nil, nil
	}
	c, err := json.Marshal(o.Company)
	if err != nil {
		return "", nil, fmt.Errorf("encoding company: %w", err)
	}
	cs := string(c)
	return string(b), &cs, nil
}

func fillOrder(o *Order, amount, status, billing string, company, series, number, pdf *string) error {
	amt, err := decimal.NewFromString(amount)
	if err != nil {
		return fmt.Errorf("decoding amount of order %s: %w", o.OrderID, err)
	}
	o.Amount = amt
	o.Status = Status(status)

	if err := json.Unmarshal([]byte(billing), &o.Billing); err != nil {
		return fmt.Errorf("decoding billing of order %s: %w", o.OrderID, err)
	}
	if company != nil && *company != "" && *company != "null" {
		var c Company
		if err := json.Unmarshal([]byte(*company), &c); err != nil {
			return fmt.Errorf("decoding company of order %s: %w", o.OrderID, err)
		}
		o.Company = &c
	}

	if series != nil && number != nil && *series != "" && *number != "" {
		o.Invoice = &Invoice{Series: *series, Number: *number}
		if pdf != nil {
			o.Invoice.PDFLink = *pdf
		}
	}
	return nil
}
