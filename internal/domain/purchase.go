package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PurchasePlaced    = "PLACED"
	PurchaseShipped   = "SHIPPED"
	PurchaseDelivered = "DELIVERED"
	PurchaseCanceled  = "CANCELED"
)

// PurchaseRecord snapshots a cart at confirmation time.
type PurchaseRecord struct {
	ID          string
	UserID      string
	SessionID   string
	Subtotal    decimal.Decimal
	ShippingFee decimal.Decimal
	Total       decimal.Decimal
	Status      string
	CreatedAt   time.Time
	Lines       []PurchaseLine
}

type PurchaseLine struct {
	ProductID   int64
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}
