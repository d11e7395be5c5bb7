package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrProductNotFound = errors.New("product not found")

type Category struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

// Offer is a discount shared by any number of products. The validity window
// is inclusive on both ends and compared by calendar day.
type Offer struct {
	ID              int64
	Title           string
	DiscountPercent decimal.Decimal
	StartDate       time.Time
	EndDate         time.Time
}

func (o Offer) ActiveOn(t time.Time) bool {
	d := day(t)
	return !d.Before(day(o.StartDate)) && !d.After(day(o.EndDate))
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type Product struct {
	ID           int64
	CategoryID   int64
	CategoryName string
	Name         string
	Description  string
	Unit         string // kg | pieza | manojo
	BasePrice    decimal.Decimal
	Image        string
	Offer        *Offer
}
