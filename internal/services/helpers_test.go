package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"olivosverdes/internal/cart"
	"olivosverdes/internal/domain"
	"olivosverdes/internal/pricing"
	"olivosverdes/internal/repos"
	"olivosverdes/internal/services"
)

var today = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	db       *sqlx.DB
	prods    *repos.ProductRepo
	orders   *repos.OrderRepo
	calc     *cart.Calculator
	cart     *services.CartService
	checkout *services.CheckoutService
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	prods := repos.NewProductRepo(db)
	orders := repos.NewOrderRepo(db)
	pr := &pricing.Resolver{Now: func() time.Time { return today }}
	calc := cart.NewCalculator(prods, decimal.RequireFromString("40.00"))
	return fixture{
		db:       db,
		prods:    prods,
		orders:   orders,
		calc:     calc,
		cart:     services.NewCartService(prods, pr, calc),
		checkout: services.NewCheckoutService(calc, orders, cart.FailOnMissing),
	}
}

type failingOrders struct{ calls int }

func (f *failingOrders) CreatePurchase(context.Context, domain.PurchaseRecord) error {
	f.calls++
	return errors.New("disk full")
}

type recordingOrders struct{ recs []domain.PurchaseRecord }

func (r *recordingOrders) CreatePurchase(_ context.Context, rec domain.PurchaseRecord) error {
	r.recs = append(r.recs, rec)
	return nil
}
