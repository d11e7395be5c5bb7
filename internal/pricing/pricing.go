// Package pricing resolves the price a product sells for on a given day.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"olivosverdes/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// EffectivePrice returns the base price, or the discounted price when the
// product's offer is active on asOf.
func EffectivePrice(p domain.Product, asOf time.Time) decimal.Decimal {
	if p.Offer == nil || !p.Offer.ActiveOn(asOf) {
		return p.BasePrice
	}
	keep := hundred.Sub(p.Offer.DiscountPercent)
	if keep.IsNegative() {
		return decimal.Zero
	}
	if keep.GreaterThan(hundred) {
		keep = hundred
	}
	return p.BasePrice.Mul(keep).Div(hundred).Round(2)
}

// OnOffer reports whether the product's offer applies on asOf.
func OnOffer(p domain.Product, asOf time.Time) bool {
	return p.Offer != nil && p.Offer.ActiveOn(asOf)
}

type Resolver struct {
	Now func() time.Time
}

func NewResolver() *Resolver { return &Resolver{Now: time.Now} }

func (r *Resolver) Price(p domain.Product) decimal.Decimal {
	return EffectivePrice(p, r.today())
}

func (r *Resolver) today() time.Time {
	if r == nil || r.Now == nil {
		return time.Now()
	}
	return r.Now()
}
