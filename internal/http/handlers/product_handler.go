package handlers

import (
	"errors"

	"olivosverdes/internal/domain"
	"olivosverdes/internal/log"
	"olivosverdes/internal/services"
	"olivosverdes/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ProductID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "product"})
		return notFound(c, "This item is no longer available")
	}
	p, err := h.Catalog.GetProduct(c.UserContext(), id)
	if errors.Is(err, domain.ErrProductNotFound) {
		return notFound(c, "This item is no longer available")
	}
	if err != nil {
		return err
	}
	return render(c, "product", fiber.Map{"P": p})
}
