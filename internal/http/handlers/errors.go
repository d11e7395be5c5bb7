package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "olivosverdes/internal/log"
)

// ErrorHandler logs the failure and shows a friendly page without internals.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	msg := "Something went wrong. Please try again."
	if code == fiber.StatusNotFound {
		msg = "Page not found"
	}
	if code >= 500 {
		applog.Error(c, "server.error", err, nil)
	} else {
		applog.Info(c, "request.error", map[string]any{"code": code, "error": err.Error()})
	}
	if rerr := c.Status(code).Render("notfound", fiber.Map{"Message": msg}); rerr != nil {
		return c.Status(code).SendString(msg)
	}
	return nil
}
