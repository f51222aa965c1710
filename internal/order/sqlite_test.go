package order

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func newSQLite(t *testing.T) *SQLiteRepo {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+filepath.Join(t.TempDir(), "orders.sqlite"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(SQLiteSchema)
	require.NoError(t, err)
	return NewSQLiteRepo(db)
}

func pending(id string) *Order {
	return &Order{
		OrderID:  id,
		Amount:   decimal.RequireFromString("1448.80"),
		Currency: Currency,
		Status:   StatusPending,
		Billing:  Billing{FirstName: "Ion", LastName: "Popescu", Email: "ion@example.com", Phone: "0723456789", City: "Iasi"},
	}
}

func TestSQLite_UpsertGet(t *testing.T) {
	r := newSQLite(t)
	ctx := context.Background()

	_, err := r.Get(ctx, "FA-1")
	require.ErrorIs(t, err, ErrNotFound)

	o := pending("FA-1")
	o.Company = &Company{Name: "Open Sky SRL", VATCode: "RO1"}
	require.NoError(t, r.Upsert(ctx, o))

	got, err := r.Get(ctx, "FA-1")
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(o.Amount))
	assert.Equal(t, StatusPending, got.Status)
	assert.Equal(t, o.Billing, got.Billing)
	assert.Equal(t, o.Company, got.Company)
	assert.Nil(t, got.Invoice)
	assert.False(t, got.CreatedAt.IsZero())

	// second initiation updates in place and may drop the company
	o2 := pending("FA-1")
	o2.Amount = decimal.NewFromInt(100)
	require.NoError(t, r.Upsert(ctx, o2))

	got, err = r.Get(ctx, "FA-1")
	require.NoError(t, err)
	assert.Equal(t, "100", got.Amount.String())
	assert.Nil(t, got.Company)

	var n int
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*) FROM orders`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestSQLite_ApprovedIsFinal(t *testing.T) {
	r := newSQLite(t)
	ctx := context.Background()
	require.NoError(t, r.Upsert(ctx, pending("FA-2")))

	ok, err := r.ClaimInvoicing(ctx, "FA-2", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	require.True(t, ok)

	require.ErrorIs(t, r.Upsert(ctx, pending("FA-2")), ErrAlreadyApproved)

	changed, err := r.MarkFailed(ctx, "FA-2")
	require.NoError(t, err)
	assert.False(t, changed)

	got, err := r.Get(ctx, "FA-2")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, got.Status)
}

func TestSQLite_MarkFailed(t *testing.T) {
	r := newSQLite(t)
	ctx := context.Background()
	require.NoError(t, r.Upsert(ctx, pending("FA-3")))

	changed, err := r.MarkFailed(ctx, "FA-3")
	require.NoError(t, err)
	assert.True(t, changed)

	got, err := r.Get(ctx, "FA-3")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Equal(t, "Popescu", got.Billing.LastName, "status update must keep billing")

	changed, err = r.MarkFailed(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestSQLite_ClaimInvoicing(t *testing.T) {
	r := newSQLite(t)
	ctx := context.Background()
	require.NoError(t, r.Upsert(ctx, pending("FA-4")))

	staleBefore := time.Now().Add(-2 * time.Minute)
	ok, err := r.ClaimInvoicing(ctx, "FA-4", staleBefore)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.ClaimInvoicing(ctx, "FA-4", staleBefore)
	require.NoError(t, err)
	assert.False(t, ok, "fresh claim must block")

	require.NoError(t, r.ReleaseInvoicing(ctx, "FA-4"))
	ok, err = r.ClaimInvoicing(ctx, "FA-4", staleBefore)
	require.NoError(t, err)
	assert.True(t, ok, "released claim can be retaken")

	ok, err = r.ClaimInvoicing(ctx, "FA-4", time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, ok, "stale claim can be taken over")

	require.NoError(t, r.SetInvoice(ctx, "FA-4", Invoice{Series: "FA", Number: "1"}))
	ok, err = r.ClaimInvoicing(ctx, "FA-4", time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, ok, "invoiced order is never claimed again")

	ok, err = r.ClaimInvoicing(ctx, "missing", staleBefore)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLite_SetInvoice(t *testing.T) {
	r := newSQLite(t)
	ctx := context.Background()
	require.NoError(t, r.Upsert(ctx, pending("FA-5")))

	inv := Invoice{Series: "FA", Number: "0042", PDFLink: "https://smartbill.test/FA-0042.pdf"}
	require.NoError(t, r.SetInvoice(ctx, "FA-5", inv))
	require.NoError(t, r.SetInvoice(ctx, "FA-5", inv), "identical values are idempotent")

	err := r.SetInvoice(ctx, "FA-5", Invoice{Series: "FA", Number: "0043"})
	require.ErrorIs(t, err, ErrInvoiceAlreadySet)

	got, err := r.Get(ctx, "FA-5")
	require.NoError(t, err)
	require.True(t, got.HasInvoice())
	assert.Equal(t, inv, *got.Invoice)

	require.ErrorIs(t, r.SetInvoice(ctx, "missing", inv), ErrNotFound)
}

func TestSQLite_Ping(t *testing.T) {
	r := newSQLite(t)
	require.NoError(t, r.Ping(context.Background()))
}
