package cart

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"olivosverdes/internal/domain"
	"olivosverdes/internal/session"
)

type fakeCatalog map[int64]domain.Product

func (f fakeCatalog) GetProduct(_ context.Context, id int64) (domain.Product, error) {
	p, ok := f[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

type brokenCatalog struct{}

func (brokenCatalog) GetProduct(context.Context, int64) (domain.Product, error) {
	return domain.Product{}, errors.New("database is locked")
}

func catalog() fakeCatalog {
	return fakeCatalog{
		1: {ID: 1, Name: "Naranja", BasePrice: money("10.00")},
		2: {ID: 2, Name: "Plátano", BasePrice: money("5.00")},
	}
}

var (
	viewOpts    = Options{MissingProduct: DropMissing, ChargeShippingOnEmpty: true}
	removalOpts = Options{MissingProduct: DropMissing, ChargeShippingOnEmpty: false}
)

func TestComputeTotals(t *testing.T) {
	s := NewStore(session.New("t", nil))
	_, _ = s.Add(1, money("10.00"))
	_, _ = s.Add(1, money("10.00"))
	_, _ = s.Add(2, money("5.00"))

	calc := NewCalculator(catalog(), money("40.00"))
	tot, err := calc.Compute(context.Background(), s, viewOpts)
	require.NoError(t, err)

	require.Len(t, tot.Lines, 2)
	assert.Equal(t, "20.00", tot.Lines[0].Subtotal.StringFixed(2))
	assert.Equal(t, "Naranja", tot.Lines[0].Product.Name)
	assert.Equal(t, "25.00", tot.Subtotal.StringFixed(2))
	assert.Equal(t, "40.00", tot.Shipping.StringFixed(2))
	assert.Equal(t, "65.00", tot.GrandTotal.StringFixed(2))
	assert.Empty(t, tot.Warnings)
}

func TestComputeUsesSnapshotNotCatalogPrice(t *testing.T) {
	s := NewStore(session.New("t", nil))
	_, _ = s.Add(1, money("7.50"))

	tot, err := NewCalculator(catalog(), money("40")).Compute(context.Background(), s, viewOpts)
	require.NoError(t, err)
	assert.Equal(t, "7.50", tot.Subtotal.StringFixed(2))
}

func TestEmptyCartShippingPolicy(t *testing.T) {
	calc := NewCalculator(catalog(), money("40.00"))

	tot, err := calc.Compute(context.Background(), NewStore(session.New("t", nil)), viewOpts)
	require.NoError(t, err)
	assert.True(t, tot.Empty())
	assert.Equal(t, "40.00", tot.GrandTotal.StringFixed(2))

	s := NewStore(session.New("t", nil))
	_, _ = s.Add(2, money("5.00"))
	_, _ = s.Remove(2)
	tot, err = calc.Compute(context.Background(), s, removalOpts)
	require.NoError(t, err)
	assert.True(t, tot.Subtotal.IsZero())
	assert.True(t, tot.GrandTotal.IsZero())
}

func TestMissingProductIsDroppedAndPersisted(t *testing.T) {
	sess := session.New("t", nil)
	s := NewStore(sess)
	_, _ = s.Add(1, money("10.00"))
	_, _ = s.Add(404, money("3.00"))

	tot, err := NewCalculator(catalog(), money("40")).Compute(context.Background(), s, viewOpts)
	require.NoError(t, err)
	assert.Equal(t, []string{"404"}, tot.Dropped)
	assert.Empty(t, tot.Warnings)
	assert.Equal(t, "10.00", tot.Subtotal.StringFixed(2))
	assert.True(t, sess.Modified())

	// a fresh store over the same session no longer sees the line
	entries, err := NewStore(sess).Enumerate()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "1", entries[0].Key)
}

func TestMissingProductFailsUnderStrictPolicy(t *testing.T) {
	s := NewStore(session.New("t", nil))
	_, _ = s.Add(1, money("10.00"))
	_, _ = s.Add(404, money("3.00"))

	_, err := NewCalculator(catalog(), money("40")).Compute(context.Background(), s,
		Options{MissingProduct: FailOnMissing})
	var mpe *MissingProductError
	require.ErrorAs(t, err, &mpe)
	assert.Equal(t, "404", mpe.Key)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	n, _ := s.Len()
	assert.Equal(t, 2, n)
}

func TestMalformedSnapshotsAreDroppedWithWarning(t *testing.T) {
	sess := session.New("t", nil)
	require.NoError(t, sess.Set(SessionKey, map[string]Line{
		"1":   {Quantity: 1, Price: "abc"},
		"2":   {Quantity: 2, Price: "5.00"},
		"nan": {Quantity: 1, Price: "1.00"},
	}))
	s := NewStore(sess)

	tot, err := NewCalculator(catalog(), money("40")).Compute(context.Background(), s, viewOpts)
	require.NoError(t, err)
	assert.Len(t, tot.Warnings, 1)
	assert.Contains(t, tot.Warnings[0], "product 1")
	assert.ElementsMatch(t, []string{"1", "nan"}, tot.Dropped)
	assert.Equal(t, "10.00", tot.Subtotal.StringFixed(2))

	n, _ := s.Len()
	assert.Equal(t, 1, n)
}

func TestLookupFailurePropagates(t *testing.T) {
	s := NewStore(session.New("t", nil))
	_, _ = s.Add(1, decimal.NewFromInt(1))
	_, err := NewCalculator(brokenCatalog{}, money("40")).Compute(context.Background(), s, viewOpts)
	assert.ErrorContains(t, err, "database is locked")
	n, _ := s.Len()
	assert.Equal(t, 1, n)
}

func TestNonStringPriceIsDroppedNotFatal(t *testing.T) {
	sess := session.New("t", map[string]json.RawMessage{
		SessionKey: json.RawMessage(`{"1":{"cantidad":1,"precio":"10.00"},"2":{"cantidad":1,"precio":12.5}}`),
	})
	s := NewStore(sess)
	calc := NewCalculator(catalog(), money("40.00"))

	tot, err := calc.Compute(context.Background(), s, viewOpts)
	require.NoError(t, err)
	require.Len(t, tot.Lines, 1)
	assert.Equal(t, "1", tot.Lines[0].Key)
	assert.Equal(t, []string{"2"}, tot.Dropped)
	require.Len(t, tot.Warnings, 1)
	assert.Contains(t, tot.Warnings[0], "product 2")
	assert.Equal(t, "50.00", tot.GrandTotal.StringFixed(2))

	// the cart keeps working after the bad line is gone
	qty, err := s.Add(1, money("10.00"))
	require.NoError(t, err)
	assert.Equal(t, 2, qty)
}

func TestMutationsSurviveUndecodableLine(t *testing.T) {
	sess := session.New("t", map[string]json.RawMessage{
		SessionKey: json.RawMessage(`{"1":{"cantidad":1,"precio":"10.00"},"2":{"cantidad":"x","precio":12.5}}`),
	})
	s := NewStore(sess)

	qty, err := s.Add(1, money("10.00"))
	require.NoError(t, err)
	assert.Equal(t, 2, qty)

	removed, err := s.Remove(2)
	require.NoError(t, err)
	assert.True(t, removed)

	n, err := s.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRemovalPathZeroesTotalWhenSubtotalIsZero(t *testing.T) {
	free := fakeCatalog{3: {ID: 3, Name: "Muestra", BasePrice: money("8.00")}}
	s := NewStore(session.New("t", nil))
	_, _ = s.Add(3, money("0.00")) // fully discounted

	calc := NewCalculator(free, money("40.00"))
	tot, err := calc.Compute(context.Background(), s, removalOpts)
	require.NoError(t, err)
	require.Len(t, tot.Lines, 1)
	assert.True(t, tot.GrandTotal.IsZero())

	tot, err = calc.Compute(context.Background(), s, viewOpts)
	require.NoError(t, err)
	assert.Equal(t, "40.00", tot.GrandTotal.StringFixed(2))
}
