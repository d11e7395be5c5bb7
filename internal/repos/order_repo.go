package repos

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"olivosverdes/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// ---------- List summary ----------
type OrderSummary struct {
	ID        string          `db:"id"`
	UserID    string          `db:"user_id"`
	UserEmail string          `db:"user_email"`
	Total     decimal.Decimal `db:"total"`
	Status    string          `db:"status"`
	CreatedAt string          `db:"created_at"`
}

// ---------- Order detail (used by /order/:id) ----------
type OrderRow struct {
	ID          string          `db:"id"`
	UserID      string          `db:"user_id"`
	SessionID   string          `db:"session_id"`
	Subtotal    decimal.Decimal `db:"subtotal"`
	ShippingFee decimal.Decimal `db:"shipping_fee"`
	Total       decimal.Decimal `db:"total"`
	Status      string          `db:"status"`
	CreatedAt   string          `db:"created_at"`
}

type OrderItemRow struct {
	ProductID   int64           `db:"product_id"`
	ProductName string          `db:"product_name"`
	Qty         int             `db:"qty"`
	UnitPrice   decimal.Decimal `db:"unit_price"`
	Subtotal    decimal.Decimal `db:"subtotal"`
}

// CreatePurchase writes the header and every line in one transaction;
// either all rows exist afterwards or none do.
func (r *OrderRepo) CreatePurchase(ctx context.Context, rec domain.PurchaseRecord) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
	  INSERT INTO orders
	    (id, user_id, session_id, subtotal, shipping_fee, total, status, created_at)
	  VALUES
	    (?,  ?,       ?,          ?,        ?,            ?,     ?,      CURRENT_TIMESTAMP)
	`, rec.ID, rec.UserID, rec.SessionID,
		rec.Subtotal.StringFixed(2), rec.ShippingFee.StringFixed(2), rec.Total.StringFixed(2),
		rec.Status); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, l := range rec.Lines {
		if _, err := tx.ExecContext(ctx, `
		  INSERT INTO order_items(order_id, product_id, product_name, qty, unit_price, subtotal)
		  VALUES(?, ?, ?, ?, ?, ?)
		`, rec.ID, l.ProductID, l.ProductName, l.Quantity,
			l.UnitPrice.StringFixed(2), l.Subtotal.StringFixed(2)); err != nil {
			return fmt.Errorf("insert order item %d: %w", l.ProductID, err)
		}
	}
	return tx.Commit()
}

func (r *OrderRepo) Get(ctx context.Context, orderID string) (OrderRow, []OrderItemRow, error) {
	var o OrderRow
	if err := r.db.GetContext(ctx, &o, `
		SELECT id, COALESCE(user_id,'') AS user_id, COALESCE(session_id,'') AS session_id,
		       subtotal, shipping_fee, total, status, created_at
		FROM orders
		WHERE id = ?
	`, orderID); err != nil {
		return OrderRow{}, nil, err
	}

	var items []OrderItemRow
	if err := r.db.SelectContext(ctx, &items, `
		SELECT product_id, product_name, qty, unit_price, subtotal
		FROM order_items
		WHERE order_id = ?
		ORDER BY product_name
	`, orderID); err != nil {
		return OrderRow{}, nil, err
	}

	return o, items, nil
}

func (r *OrderRepo) ListLatest(ctx context.Context, limit int) ([]OrderSummary, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []OrderSummary
	err := r.db.SelectContext(ctx, &out, `
		SELECT o.id, COALESCE(o.user_id,'') AS user_id, COALESCE(u.email,'') AS user_email,
		       o.total, o.status, o.created_at
		FROM orders o
		LEFT JOIN users u ON u.id = o.user_id
		ORDER BY datetime(o.created_at) DESC
		LIMIT ?
	`, limit)
	return out, err
}

// ListByUser returns the purchases a user confirmed, newest first.
func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]OrderSummary, error) {
	var out []OrderSummary
	err := r.db.SelectContext(ctx, &out, `
		SELECT o.id, o.user_id, COALESCE(u.email,'') AS user_email, o.total, o.status, o.created_at
		FROM orders o
		LEFT JOIN users u ON u.id = o.user_id
		WHERE o.user_id = ?
		ORDER BY datetime(o.created_at) DESC
	`, userID)
	return out, err
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("order %s not found", id)
	}
	return nil
}
