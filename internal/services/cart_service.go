package services

import (
	"context"
	"errors"

	"olivosverdes/internal/cart"
	"olivosverdes/internal/domain"
	"olivosverdes/internal/pricing"
)

var ErrUnknownAction = errors.New("unknown cart action")

// Adjust actions accepted by CartService.Adjust.
const (
	ActionIncrease = "aumentar"
	ActionDecrease = "disminuir"
)

type CartService struct {
	Catalog cart.ProductLookup
	Pricing *pricing.Resolver
	Calc    *cart.Calculator

	// ShippingOnEmptyView applies to the cart page, ShippingOnEmptyRemoval to
	// the totals returned after removing a line.
	ShippingOnEmptyView    bool
	ShippingOnEmptyRemoval bool
}

func NewCartService(catalog cart.ProductLookup, pr *pricing.Resolver, calc *cart.Calculator) *CartService {
	return &CartService{Catalog: catalog, Pricing: pr, Calc: calc, ShippingOnEmptyView: true}
}

// Add puts one unit of the product in the visitor's cart at today's price.
func (s *CartService) Add(ctx context.Context, scope cart.Scope, productID int64) (domain.Product, int, error) {
	p, err := s.Catalog.GetProduct(ctx, productID)
	if err != nil {
		return domain.Product{}, 0, err
	}
	qty, err := cart.NewStore(scope).Add(p.ID, s.Pricing.Price(p))
	if err != nil {
		return domain.Product{}, 0, err
	}
	return p, qty, nil
}

func (s *CartService) View(ctx context.Context, scope cart.Scope) (cart.Totals, error) {
	return s.Calc.Compute(ctx, cart.NewStore(scope), cart.Options{
		MissingProduct:        cart.DropMissing,
		ChargeShippingOnEmpty: s.ShippingOnEmptyView,
	})
}

// Adjust applies "aumentar" or "disminuir" and reports the resulting change.
// It returns cart.NotInCart when the product is not in the cart.
func (s *CartService) Adjust(scope cart.Scope, productID int64, action string) (cart.Adjustment, error) {
	st := cart.NewStore(scope)
	switch action {
	case ActionIncrease:
		ok, err := st.Increment(productID)
		if err != nil || !ok {
			return cart.NotInCart, err
		}
		return cart.Increased, nil
	case ActionDecrease:
		return st.Decrement(productID)
	default:
		return cart.NotInCart, ErrUnknownAction
	}
}

// Remove deletes the line and recomputes totals with the removal shipping rule.
func (s *CartService) Remove(ctx context.Context, scope cart.Scope, productID int64) (bool, cart.Totals, error) {
	st := cart.NewStore(scope)
	removed, err := st.Remove(productID)
	if err != nil || !removed {
		return removed, cart.Totals{}, err
	}
	tot, err := s.Calc.Compute(ctx, st, cart.Options{
		MissingProduct:        cart.DropMissing,
		ChargeShippingOnEmpty: s.ShippingOnEmptyRemoval,
	})
	return true, tot, err
}
