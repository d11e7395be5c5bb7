package handlers

import (
	"net/url"

	"olivosverdes/internal/log"
	"olivosverdes/internal/services"
	"olivosverdes/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CategoryHandler struct {
	Catalog *services.CatalogService
}

func (h *CategoryHandler) Home(c *fiber.Ctx) error {
	cats, err := h.Catalog.ListCategories(c.UserContext())
	if err != nil {
		return err
	}
	featured, err := h.Catalog.Featured(c.UserContext())
	if err != nil {
		return err
	}
	return render(c, "home", fiber.Map{"Categories": cats, "Products": featured})
}

func (h *CategoryHandler) Menu(c *fiber.Ctx) error {
	products, err := h.Catalog.Menu(c.UserContext())
	if err != nil {
		return err
	}
	return render(c, "menu", fiber.Map{"Title": "Menu", "Products": products})
}

// GET /categoria/:name
func (h *CategoryHandler) ByName(c *fiber.Ctx) error {
	raw, err := url.PathUnescape(c.Params("name"))
	if err != nil {
		return notFound(c, "Category not found")
	}
	name, ok := validate.Category(raw)
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "category"})
		return notFound(c, "Category not found")
	}
	products, err := h.Catalog.ByCategory(c.UserContext(), name)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		return notFound(c, "Category not found")
	}
	return render(c, "menu", fiber.Map{"Title": products[0].CategoryName, "Products": products})
}

func (h *CategoryHandler) Offers(c *fiber.Ctx) error {
	products, err := h.Catalog.ActiveOffers(c.UserContext())
	if err != nil {
		return err
	}
	return render(c, "menu", fiber.Map{"Title": "Offers", "Products": products})
}
