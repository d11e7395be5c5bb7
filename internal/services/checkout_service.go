package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"olivosverdes/internal/cart"
	"olivosverdes/internal/domain"
)

var ErrEmptyCart = errors.New("cannot check out an empty cart")

type CheckoutState string

const (
	StateEmpty     CheckoutState = "EMPTY"
	StateReview    CheckoutState = "REVIEW"
	StateConfirmed CheckoutState = "CONFIRMED"
)

// OrderStore persists a purchase header and its lines atomically.
type OrderStore interface {
	CreatePurchase(ctx context.Context, rec domain.PurchaseRecord) error
}

type CheckoutService struct {
	Calc   *cart.Calculator
	Orders OrderStore
	// Missing decides whether a vanished product blocks checkout.
	Missing cart.MissingPolicy
	NewID   func() string
	Now     func() time.Time
}

func NewCheckoutService(calc *cart.Calculator, orders OrderStore, missing cart.MissingPolicy) *CheckoutService {
	return &CheckoutService{Calc: calc, Orders: orders, Missing: missing, NewID: uuid.NewString, Now: time.Now}
}

type Review struct {
	State  CheckoutState
	Totals cart.Totals
}

// Review prices the cart for confirmation. An empty cart yields ErrEmptyCart
// without touching the session.
func (s *CheckoutService) Review(ctx context.Context, scope cart.Scope) (Review, error) {
	st := cart.NewStore(scope)
	n, err := st.Len()
	if err != nil {
		return Review{}, err
	}
	if n == 0 {
		return Review{State: StateEmpty}, ErrEmptyCart
	}

	tot, err := s.Calc.Compute(ctx, st, cart.Options{MissingProduct: s.Missing, ChargeShippingOnEmpty: true})
	if err != nil {
		return Review{}, err
	}
	if tot.Empty() {
		// every line was unreadable and got dropped
		return Review{State: StateEmpty, Totals: tot}, ErrEmptyCart
	}
	return Review{State: StateReview, Totals: tot}, nil
}

// Confirm stores the purchase and then clears the cart. If storing fails the
// cart is left exactly as it was.
func (s *CheckoutService) Confirm(ctx context.Context, scope cart.Scope, sessionID, userID string) (domain.PurchaseRecord, error) {
	rv, err := s.Review(ctx, scope)
	if err != nil {
		return domain.PurchaseRecord{}, err
	}

	rec := domain.PurchaseRecord{
		ID:          s.NewID(),
		UserID:      userID,
		SessionID:   sessionID,
		Subtotal:    rv.Totals.Subtotal,
		ShippingFee: rv.Totals.Shipping,
		Total:       rv.Totals.GrandTotal,
		Status:      domain.PurchasePlaced,
		CreatedAt:   s.Now(),
		Lines:       make([]domain.PurchaseLine, 0, len(rv.Totals.Lines)),
	}
	for _, l := range rv.Totals.Lines {
		rec.Lines = append(rec.Lines, domain.PurchaseLine{
			ProductID:   l.Product.ID,
			ProductName: l.Product.Name,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Subtotal:    l.Subtotal,
		})
	}

	if err := s.Orders.CreatePurchase(ctx, rec); err != nil {
		return domain.PurchaseRecord{}, fmt.Errorf("persist purchase: %w", err)
	}
	cart.NewStore(scope).Clear()
	return rec, nil
}
