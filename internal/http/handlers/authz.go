package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"olivosverdes/internal/domain"
	applog "olivosverdes/internal/log"
	"olivosverdes/internal/services"
	"olivosverdes/internal/session"
)

// LoadUser attaches the logged-in user (if any) to Locals("user"). It must
// run after the session middleware.
func LoadUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if s := session.FromCtx(c); s != nil {
			if u, err := auth.CurrentUser(c.UserContext(), s.ID()); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	}
}

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}

// RequireUser enforces that a user is logged in; otherwise redirect to login
// with a way back.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if currentUser(c) == nil {
			return c.Redirect("/login?next=" + url.QueryEscape(c.OriginalURL()))
		}
		return c.Next()
	}
}

func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := currentUser(c)
		if u == nil {
			return c.Redirect("/login?next=" + url.QueryEscape(c.OriginalURL()))
		}
		if u.Role != "ADMIN" {
			applog.Security(c, "access.denied.admin", map[string]any{"user_id": u.ID})
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Access denied"})
		}
		return c.Next()
	}
}
