package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "olivosverdes/internal/log"
	"olivosverdes/internal/repos"
	"olivosverdes/internal/session"
)

type OrderHandler struct {
	Repo *repos.OrderRepo
}

func (h *OrderHandler) View(c *fiber.Ctx) error {
	oid := c.Params("id")
	if oid == "" {
		return notFound(c, "Order not found")
	}

	o, items, err := h.Repo.Get(c.UserContext(), oid)
	if err != nil {
		return notFound(c, "Order not found")
	}

	// Ownership: same session, same user, or an admin
	sid := ""
	if s := session.FromCtx(c); s != nil {
		sid = s.ID()
	}
	u := currentUser(c)
	owner := (sid != "" && sid == o.SessionID) || (u != nil && u.ID != "" && u.ID == o.UserID)
	if !owner && (u == nil || u.Role != "ADMIN") {
		applog.Security(c, "access.denied.order", map[string]any{"order_id": oid})
		return notFound(c, "Order not found")
	}

	return render(c, "order", fiber.Map{"Order": o, "Items": items})
}

// History lists orders for the current logged-in user.
func (h *OrderHandler) History(c *fiber.Ctx) error {
	u := currentUser(c)
	orders, err := h.Repo.ListByUser(c.UserContext(), u.ID)
	if err != nil {
		applog.Error(c, "orders.history.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load orders"})
	}
	return render(c, "order_history", fiber.Map{"Orders": orders})
}
