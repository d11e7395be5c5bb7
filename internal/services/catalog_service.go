package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"olivosverdes/internal/domain"
	"olivosverdes/internal/pricing"
	"olivosverdes/internal/repos"
)

// ProductCard is a product as shown in listings: with the price it sells for today.
type ProductCard struct {
	domain.Product
	Price   decimal.Decimal
	OnOffer bool
}

type CatalogService struct {
	Cats    *repos.CategoryRepo
	Prods   *repos.ProductRepo
	Pricing *pricing.Resolver
}

func NewCatalogService(cats *repos.CategoryRepo, prods *repos.ProductRepo, pr *pricing.Resolver) *CatalogService {
	return &CatalogService{Cats: cats, Prods: prods, Pricing: pr}
}

func (s *CatalogService) now() time.Time {
	if s.Pricing != nil && s.Pricing.Now != nil {
		return s.Pricing.Now()
	}
	return time.Now()
}

func (s *CatalogService) cards(ps []domain.Product, err error) ([]ProductCard, error) {
	if err != nil {
		return nil, err
	}
	today := s.now()
	out := make([]ProductCard, 0, len(ps))
	for _, p := range ps {
		out = append(out, ProductCard{
			Product: p,
			Price:   pricing.EffectivePrice(p, today),
			OnOffer: pricing.OnOffer(p, today),
		})
	}
	return out, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.Cats.List(ctx)
}

// Featured returns the newest products for the home page.
func (s *CatalogService) Featured(ctx context.Context) ([]ProductCard, error) {
	return s.cards(s.Prods.Latest(ctx, 3))
}

func (s *CatalogService) Menu(ctx context.Context) ([]ProductCard, error) {
	return s.cards(s.Prods.ListAll(ctx))
}

func (s *CatalogService) ByCategory(ctx context.Context, name string) ([]ProductCard, error) {
	return s.cards(s.Prods.ListByCategory(ctx, name))
}

func (s *CatalogService) ActiveOffers(ctx context.Context) ([]ProductCard, error) {
	return s.cards(s.Prods.ListWithActiveOffers(ctx, s.now()))
}

func (s *CatalogService) Search(ctx context.Context, q string, limit int) ([]ProductCard, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.cards(s.Prods.Search(ctx, q, limit))
}

func (s *CatalogService) GetProduct(ctx context.Context, id int64) (ProductCard, error) {
	p, err := s.Prods.GetProduct(ctx, id)
	if err != nil {
		return ProductCard{}, err
	}
	cs, _ := s.cards([]domain.Product{p}, nil)
	return cs[0], nil
}
