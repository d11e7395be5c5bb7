package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"olivosverdes/internal/cart"
	"olivosverdes/internal/domain"
	applog "olivosverdes/internal/log"
	"olivosverdes/internal/services"
	"olivosverdes/internal/session"
	"olivosverdes/internal/validate"
)

type CartHandler struct {
	Cart *services.CartService
}

// cartReply is the JSON body for XMLHttpRequest cart calls.
type cartReply struct {
	Success       bool     `json:"success"`
	Message       string   `json:"message"`
	ProductID     int64    `json:"product_id,omitempty"`
	NewSubtotal   *float64 `json:"new_subtotal,omitempty"`
	NewTotalFinal *float64 `json:"new_total_final,omitempty"`
}

func money(d decimal.Decimal) *float64 {
	f := d.Round(2).InexactFloat64()
	return &f
}

// reply answers XHR callers with JSON and everyone else with a notice and
// a redirect back.
func reply(c *fiber.Ctx, status int, r cartReply, fallback string) error {
	if isXHR(c) {
		return c.Status(status).JSON(r)
	}
	sess := session.FromCtx(c)
	switch {
	case r.Success:
		sess.Success(r.Message)
	case status >= 500:
		sess.Error(r.Message)
	default:
		sess.Warning(r.Message)
	}
	return back(c, fallback)
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	id, ok := validate.ProductID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "product"})
		return reply(c, fiber.StatusNotFound, cartReply{Message: "This item is no longer available."}, "/menu")
	}
	p, qty, err := h.Cart.Add(c.UserContext(), session.FromCtx(c), id)
	if errors.Is(err, domain.ErrProductNotFound) {
		return reply(c, fiber.StatusNotFound, cartReply{Message: "This item is no longer available."}, "/menu")
	}
	if err != nil {
		applog.Error(c, "cart.add.fail", err, map[string]any{"product": id})
		return reply(c, fiber.StatusInternalServerError, cartReply{Message: "Could not update your cart. Please try again."}, "/cart")
	}
	applog.Audit(c, "cart.add", map[string]any{"product": id, "qty": qty})
	return reply(c, fiber.StatusOK, cartReply{
		Success:   true,
		Message:   fmt.Sprintf("Added %s to your cart (%d in cart).", p.Name, qty),
		ProductID: id,
	}, "/menu")
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	sess := session.FromCtx(c)
	tot, err := h.Cart.View(c.UserContext(), sess)
	if err != nil {
		applog.Error(c, "cart.view.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load your cart"})
	}
	for _, w := range tot.Warnings {
		sess.Warning(w)
	}
	return render(c, "cart", fiber.Map{"Cart": tot})
}

// POST /cart/adjust/:id/:action
func (h *CartHandler) Adjust(c *fiber.Ctx) error {
	id, ok := validate.ProductID(c.Params("id"))
	if !ok {
		return reply(c, fiber.StatusNotFound, cartReply{Message: "That product is not in your cart."}, "/cart")
	}
	res, err := h.Cart.Adjust(session.FromCtx(c), id, c.Params("action"))
	if errors.Is(err, services.ErrUnknownAction) {
		applog.Security(c, "validation.fail", map[string]any{"field": "action", "value": c.Params("action")})
		return reply(c, fiber.StatusBadRequest, cartReply{Message: "Unknown cart action."}, "/cart")
	}
	if err != nil {
		applog.Error(c, "cart.adjust.fail", err, map[string]any{"product": id})
		return reply(c, fiber.StatusInternalServerError, cartReply{Message: "Could not update your cart. Please try again."}, "/cart")
	}

	var msg string
	switch res {
	case cart.NotInCart:
		return reply(c, fiber.StatusNotFound, cartReply{Message: "That product is not in your cart.", ProductID: id}, "/cart")
	case cart.Removed:
		msg = "Item removed from your cart."
	default:
		msg = "Quantity updated."
	}
	applog.Audit(c, "cart.adjust", map[string]any{"product": id, "action": c.Params("action")})
	return reply(c, fiber.StatusOK, cartReply{Success: true, Message: msg, ProductID: id}, "/cart")
}

// POST /cart/remove/:id
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	id, ok := validate.ProductID(c.Params("id"))
	if !ok {
		return reply(c, fiber.StatusNotFound, cartReply{Message: "That product is not in your cart."}, "/cart")
	}
	removed, tot, err := h.Cart.Remove(c.UserContext(), session.FromCtx(c), id)
	if err != nil {
		applog.Error(c, "cart.remove.fail", err, map[string]any{"product": id})
		return reply(c, fiber.StatusInternalServerError, cartReply{Message: "Could not update your cart. Please try again."}, "/cart")
	}
	if !removed {
		return reply(c, fiber.StatusNotFound, cartReply{Message: "That product is not in your cart.", ProductID: id}, "/cart")
	}
	applog.Audit(c, "cart.remove", map[string]any{"product": id})
	return reply(c, fiber.StatusOK, cartReply{
		Success:       true,
		Message:       "Item removed from your cart.",
		ProductID:     id,
		NewSubtotal:   money(tot.Subtotal),
		NewTotalFinal: money(tot.GrandTotal),
	}, "/cart")
}
