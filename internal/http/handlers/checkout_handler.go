package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"olivosverdes/internal/domain"
	applog "olivosverdes/internal/log"
	"olivosverdes/internal/services"
	"olivosverdes/internal/session"
)

type CheckoutHandler struct {
	Checkout *services.CheckoutService
}

// checkoutBlocked turns the expected checkout refusals into a notice and a
// redirect. It reports false for anything else.
func checkoutBlocked(c *fiber.Ctx, err error) (bool, error) {
	sess := session.FromCtx(c)
	switch {
	case errors.Is(err, services.ErrEmptyCart):
		sess.Warning("Your cart is empty. Add some fruit before checking out.")
		return true, c.Redirect("/menu")
	case errors.Is(err, domain.ErrProductNotFound):
		applog.Info(c, "checkout.missing_product", map[string]any{"error": err.Error()})
		sess.Error("A product in your cart is no longer available. Please review your cart.")
		return true, c.Redirect("/cart")
	}
	return false, nil
}

// GET /checkout
func (h *CheckoutHandler) Review(c *fiber.Ctx) error {
	sess := session.FromCtx(c)
	rv, err := h.Checkout.Review(c.UserContext(), sess)
	if handled, rerr := checkoutBlocked(c, err); handled {
		return rerr
	}
	if err != nil {
		applog.Error(c, "checkout.review.fail", err, nil)
		return err
	}
	for _, w := range rv.Totals.Warnings {
		sess.Warning(w)
	}
	return render(c, "checkout", fiber.Map{"Review": rv, "Cart": rv.Totals})
}

// POST /checkout
func (h *CheckoutHandler) Confirm(c *fiber.Ctx) error {
	sess := session.FromCtx(c)
	u := currentUser(c)
	rec, err := h.Checkout.Confirm(c.UserContext(), sess, sess.ID(), u.ID)
	if handled, rerr := checkoutBlocked(c, err); handled {
		return rerr
	}
	if err != nil {
		applog.Error(c, "checkout.confirm.fail", err, map[string]any{"user_id": u.ID})
		sess.Error("We could not place your order. Your cart was kept, please try again.")
		return c.Redirect("/cart")
	}
	applog.Audit(c, "order.place", map[string]any{
		"order_id": rec.ID,
		"total":    rec.Total.StringFixed(2),
		"lines":    len(rec.Lines),
	})
	sess.Success("Thank you! Your order has been placed.")
	return c.Redirect("/order/" + rec.ID)
}
