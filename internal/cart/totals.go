package cart

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"olivosverdes/internal/domain"
)

// ProductLookup resolves cart keys against the live catalog. It returns
// domain.ErrProductNotFound for products that no longer exist.
type ProductLookup interface {
	GetProduct(ctx context.Context, id int64) (domain.Product, error)
}

// MissingPolicy decides what happens to lines whose product vanished.
type MissingPolicy int

const (
	DropMissing MissingPolicy = iota
	FailOnMissing
)

type Options struct {
	MissingProduct MissingPolicy
	// ChargeShippingOnEmpty adds shipping even when the subtotal is zero,
	// whether the cart is empty or its remaining lines cost nothing.
	ChargeShippingOnEmpty bool
}

type MissingProductError struct {
	Key string
}

func (e *MissingProductError) Error() string {
	return fmt.Sprintf("product %s in cart no longer exists", e.Key)
}

func (e *MissingProductError) Is(target error) bool { return target == domain.ErrProductNotFound }

type LineView struct {
	Key       string
	Product   domain.Product
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

type Totals struct {
	Lines      []LineView
	Subtotal   decimal.Decimal
	Shipping   decimal.Decimal
	GrandTotal decimal.Decimal
	// Warnings are user-facing notices about lines dropped for bad data.
	Warnings []string
	// Dropped holds the keys removed from the cart during this computation.
	Dropped []string
}

func (t Totals) Empty() bool { return len(t.Lines) == 0 }

type Calculator struct {
	Catalog     ProductLookup
	ShippingFee decimal.Decimal
}

func NewCalculator(catalog ProductLookup, shippingFee decimal.Decimal) *Calculator {
	return &Calculator{Catalog: catalog, ShippingFee: shippingFee}
}

// Compute prices every line of the cart. Lines whose product is gone are
// dropped from the cart or fail the computation depending on the policy;
// lines with an unreadable price snapshot are always dropped with a warning.
func (c *Calculator) Compute(ctx context.Context, s *Store, opt Options) (Totals, error) {
	entries, err := s.Enumerate()
	if err != nil {
		return Totals{}, err
	}

	out := Totals{Subtotal: decimal.Zero}
	for _, e := range entries {
		p, err := c.lookup(ctx, e.Key)
		if errors.Is(err, domain.ErrProductNotFound) {
			if opt.MissingProduct == FailOnMissing {
				return Totals{}, &MissingProductError{Key: e.Key}
			}
			if _, err := s.Drop(e.Key); err != nil {
				return Totals{}, err
			}
			out.Dropped = append(out.Dropped, e.Key)
			continue
		}
		if err != nil {
			return Totals{}, fmt.Errorf("lookup product %s: %w", e.Key, err)
		}

		price, perr := decimal.NewFromString(e.Line.Price)
		if perr != nil || price.IsNegative() || e.Line.Quantity < 1 {
			if _, err := s.Drop(e.Key); err != nil {
				return Totals{}, err
			}
			out.Dropped = append(out.Dropped, e.Key)
			out.Warnings = append(out.Warnings,
				fmt.Sprintf("The saved price for product %s was unreadable. It has been removed from your cart.", e.Key))
			continue
		}

		sub := price.Mul(decimal.NewFromInt(int64(e.Line.Quantity)))
		out.Subtotal = out.Subtotal.Add(sub)
		out.Lines = append(out.Lines, LineView{
			Key:       e.Key,
			Product:   p,
			Quantity:  e.Line.Quantity,
			UnitPrice: price,
			Subtotal:  sub,
		})
	}

	out.Shipping = c.ShippingFee
	if !out.Subtotal.IsPositive() && !opt.ChargeShippingOnEmpty {
		out.Shipping = decimal.Zero
	}
	out.GrandTotal = out.Subtotal.Add(out.Shipping)
	return out, nil
}

func (c *Calculator) lookup(ctx context.Context, key string) (domain.Product, error) {
	id, err := strconv.ParseInt(key, 10, 64)
	if err != nil || id <= 0 {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return c.Catalog.GetProduct(ctx, id)
}
