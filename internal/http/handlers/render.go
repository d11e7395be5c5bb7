package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"olivosverdes/internal/session"
)

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if u := c.Locals("user"); u != nil {
		data["User"] = u
	}
	if tok, _ := c.Locals("CSRFToken").(string); tok != "" {
		data["CSRFToken"] = tok
	} else if tok := c.Cookies("csrf_"); tok != "" {
		data["CSRFToken"] = tok
	}
	// notices queued by earlier requests are shown once
	if s := session.FromCtx(c); s != nil {
		data["Messages"] = s.Flashes()
	}
	return c.Render(tmpl, data)
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": msg})
}

func isXHR(c *fiber.Ctx) bool {
	return c.Get("X-Requested-With") == "XMLHttpRequest"
}

// back redirects to the page the visitor came from when it is on this
// site, otherwise to fallback.
func back(c *fiber.Ctx, fallback string) error {
	if ref := c.Get(fiber.HeaderReferer); ref != "" {
		if u, err := url.Parse(ref); err == nil && (u.Host == "" || u.Host == c.Hostname()) && u.Path != "" {
			return c.Redirect(u.RequestURI())
		}
	}
	return c.Redirect(fallback)
}
