package handlers

import (
	"strings"

	"olivosverdes/internal/domain"
	applog "olivosverdes/internal/log"
	"olivosverdes/internal/repos"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	OrderRepo *repos.OrderRepo
}

var orderStatuses = map[string]bool{
	domain.PurchasePlaced:    true,
	domain.PurchaseShipped:   true,
	domain.PurchaseDelivered: true,
	domain.PurchaseCanceled:  true,
}

// GET /admin/orders
func (h *AdminHandler) OrdersPage(c *fiber.Ctx) error {
	ords, err := h.OrderRepo.ListLatest(c.UserContext(), 100)
	if err != nil {
		applog.Error(c, "admin.orders.list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load orders"})
	}
	return render(c, "admin_orders", fiber.Map{"Orders": ords})
}

// POST /admin/orders/:id/status
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	status := strings.ToUpper(strings.TrimSpace(c.FormValue("status")))
	if id == "" || !orderStatuses[status] {
		applog.Security(c, "validation.fail", map[string]any{"field": "status", "value": status})
		return c.Status(400).SendString("missing id or status")
	}
	if err := h.OrderRepo.UpdateStatus(c.UserContext(), id, status); err != nil {
		applog.Error(c, "admin.orders.update.fail", err, map[string]any{"order_id": id})
		return c.Status(400).SendString("could not update status")
	}
	applog.Audit(c, "admin.orders.update", map[string]any{"order_id": id, "status": status})
	return c.Redirect("/admin/orders")
}
