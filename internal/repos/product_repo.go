package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"olivosverdes/internal/domain"
)

const dateLayout = "2006-01-02"

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

type productRow struct {
	ID            int64               `db:"id"`
	CategoryID    int64               `db:"category_id"`
	CategoryName  string              `db:"category_name"`
	Name          string              `db:"name"`
	Description   string              `db:"description"`
	Unit          string              `db:"unit"`
	Price         decimal.Decimal     `db:"price"`
	Image         string              `db:"image"`
	OfferID       sql.NullInt64       `db:"offer_id"`
	OfferTitle    sql.NullString      `db:"offer_title"`
	OfferDiscount decimal.NullDecimal `db:"offer_discount"`
	OfferStart    sql.NullString      `db:"offer_start"`
	OfferEnd      sql.NullString      `db:"offer_end"`
}

const productSelect = `
  SELECT
    p.id, p.category_id, c.name AS category_name, p.name,
    COALESCE(p.description,'') AS description, p.unit, p.price,
    COALESCE(p.image,'') AS image,
    o.id AS offer_id, o.title AS offer_title, o.discount_percent AS offer_discount,
    o.start_date AS offer_start, o.end_date AS offer_end
  FROM products p
  JOIN categories c ON c.id = p.category_id
  LEFT JOIN offers o ON o.id = p.offer_id`

func (r productRow) toDomain() (domain.Product, error) {
	p := domain.Product{
		ID:           r.ID,
		CategoryID:   r.CategoryID,
		CategoryName: r.CategoryName,
		Name:         r.Name,
		Description:  r.Description,
		Unit:         r.Unit,
		BasePrice:    r.Price,
		Image:        r.Image,
	}
	if !r.OfferID.Valid {
		return p, nil
	}
	start, err := time.Parse(dateLayout, r.OfferStart.String)
	if err != nil {
		return p, fmt.Errorf("offer %d start date: %w", r.OfferID.Int64, err)
	}
	end, err := time.Parse(dateLayout, r.OfferEnd.String)
	if err != nil {
		return p, fmt.Errorf("offer %d end date: %w", r.OfferID.Int64, err)
	}
	p.Offer = &domain.Offer{
		ID:              r.OfferID.Int64,
		Title:           r.OfferTitle.String,
		DiscountPercent: r.OfferDiscount.Decimal,
		StartDate:       start,
		EndDate:         end,
	}
	return p, nil
}

func toProducts(rows []productRow) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(rows))
	for _, r := range rows {
		p, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *ProductRepo) selectProducts(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return toProducts(rows)
}

// GetProduct returns domain.ErrProductNotFound when the id does not exist.
func (r *ProductRepo) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	var row productRow
	err := r.db.GetContext(ctx, &row, productSelect+` WHERE p.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, domain.ErrProductNotFound
	}
	if err != nil {
		return domain.Product{}, err
	}
	return row.toDomain()
}

func (r *ProductRepo) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	return r.selectProducts(ctx, productSelect+`
  WHERE LOWER(c.name) = LOWER(?) AND p.active = 1
  ORDER BY p.name`, category)
}

// ListWithActiveOffers returns products whose offer window contains asOf.
func (r *ProductRepo) ListWithActiveOffers(ctx context.Context, asOf time.Time) ([]domain.Product, error) {
	day := asOf.Format(dateLayout)
	return r.selectProducts(ctx, productSelect+`
  WHERE p.active = 1 AND o.id IS NOT NULL AND o.start_date <= ? AND o.end_date >= ?
  ORDER BY p.name`, day, day)
}

func (r *ProductRepo) ListAll(ctx context.Context) ([]domain.Product, error) {
	return r.selectProducts(ctx, productSelect+`
  WHERE p.active = 1
  ORDER BY p.name`)
}

func (r *ProductRepo) Latest(ctx context.Context, limit int) ([]domain.Product, error) {
	return r.selectProducts(ctx, productSelect+`
  WHERE p.active = 1
  ORDER BY p.id DESC
  LIMIT ?`, limit)
}

func (r *ProductRepo) Search(ctx context.Context, q string, limit int) ([]domain.Product, error) {
	like := "%" + strings.ToLower(q) + "%"
	return r.selectProducts(ctx, productSelect+`
  WHERE p.active = 1 AND (LOWER(p.name) LIKE ? OR LOWER(p.description) LIKE ?)
  ORDER BY p.name
  LIMIT ?`, like, like, limit)
}
