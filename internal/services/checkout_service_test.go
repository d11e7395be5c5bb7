package services_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"olivosverdes/internal/cart"
	"olivosverdes/internal/domain"
	"olivosverdes/internal/services"
	"olivosverdes/internal/session"
)

func cartJSON(t *testing.T, s *session.Session) string {
	t.Helper()
	var raw json.RawMessage
	_, err := s.Get(cart.SessionKey, &raw)
	require.NoError(t, err)
	return string(raw)
}

func TestCheckout_EmptyCartIsRejectedWithoutSideEffects(t *testing.T) {
	f := newFixture(t)
	rec := &recordingOrders{}
	svc := services.NewCheckoutService(f.calc, rec, cart.FailOnMissing)
	sess := session.New("s", nil)

	rv, err := svc.Review(context.Background(), sess)
	assert.ErrorIs(t, err, services.ErrEmptyCart)
	assert.Equal(t, services.StateEmpty, rv.State)

	_, err = svc.Confirm(context.Background(), sess, "s", "u-ana")
	assert.ErrorIs(t, err, services.ErrEmptyCart)
	assert.False(t, sess.Modified())
	assert.Empty(t, rec.recs)
}

func TestCheckout_ReviewMatchesCartTotals(t *testing.T) {
	f := newFixture(t)
	sess := session.New("s", nil)
	ctx := context.Background()
	_, _, _ = f.cart.Add(ctx, sess, 2)
	_, _, _ = f.cart.Add(ctx, sess, 2)

	rv, err := f.checkout.Review(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, services.StateReview, rv.State)

	view, err := f.cart.View(ctx, sess)
	require.NoError(t, err)
	assert.True(t, rv.Totals.GrandTotal.Equal(view.GrandTotal))
	assert.Equal(t, "97.00", rv.Totals.GrandTotal.StringFixed(2))
}

func TestCheckout_ConfirmPersistsThenClears(t *testing.T) {
	f := newFixture(t)
	sess := session.New("s", nil)
	ctx := context.Background()
	_, _, _ = f.cart.Add(ctx, sess, 2)
	_, _, _ = f.cart.Add(ctx, sess, 4)

	rec, err := f.checkout.Confirm(ctx, sess, "s", "u-ana")
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Len(t, rec.Lines, 2)
	assert.Equal(t, "113.50", rec.Total.StringFixed(2))

	o, items, err := f.orders.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PurchasePlaced, o.Status)
	assert.Equal(t, "40.00", o.ShippingFee.StringFixed(2))
	assert.Len(t, items, 2)

	n, err := cart.NewStore(sess).Len()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCheckout_PersistenceFailureKeepsCart(t *testing.T) {
	f := newFixture(t)
	sess := session.New("s", nil)
	ctx := context.Background()
	_, _, _ = f.cart.Add(ctx, sess, 2)
	_, _, _ = f.cart.Add(ctx, sess, 4)
	before := cartJSON(t, sess)

	orders := &failingOrders{}
	svc := services.NewCheckoutService(f.calc, orders, cart.FailOnMissing)
	_, err := svc.Confirm(ctx, sess, "s", "u-ana")
	require.ErrorContains(t, err, "disk full")
	assert.Equal(t, 1, orders.calls)
	assert.JSONEq(t, before, cartJSON(t, sess))
}

func TestCheckout_MissingProductPolicy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess := session.New("s", nil)
	_, _, _ = f.cart.Add(ctx, sess, 2)
	_, _, _ = f.cart.Add(ctx, sess, 9)
	_, err := f.db.Exec(`DELETE FROM products WHERE id = 9`)
	require.NoError(t, err)

	_, err = f.checkout.Confirm(ctx, sess, "s", "u-ana")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	n, _ := cart.NewStore(sess).Len()
	assert.Equal(t, 2, n)

	lenient := services.NewCheckoutService(f.calc, f.orders, cart.DropMissing)
	rec, err := lenient.Confirm(ctx, sess, "s", "u-ana")
	require.NoError(t, err)
	require.Len(t, rec.Lines, 1)
	assert.Equal(t, int64(2), rec.Lines[0].ProductID)
}
