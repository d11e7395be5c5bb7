package handlers

import (
	"errors"

	"olivosverdes/internal/log"
	"olivosverdes/internal/services"
	"olivosverdes/internal/session"
	"olivosverdes/internal/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AuthHandler struct {
	Auth *services.AuthService
}

func nextOr(c *fiber.Ctx, def string) string {
	next := c.FormValue("next")
	if next == "" {
		next = c.Query("next")
	}
	if n, ok := validate.SafeNext(next); ok {
		return n
	}
	return def
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	next, _ := validate.SafeNext(c.Query("next"))
	return render(c, "login", fiber.Map{"Err": "", "Next": next})
}

func (h *AuthHandler) loginFailed(c *fiber.Ctx, email, reason string) error {
	log.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": reason})
	next, _ := validate.SafeNext(c.FormValue("next"))
	return c.Status(fiber.StatusUnauthorized).Render("login", fiber.Map{
		"Err": "Invalid email or password", "Next": next, "CSRFToken": c.Cookies("csrf_"),
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sess := session.FromCtx(c)
	email := c.FormValue("email")
	pass := c.FormValue("password")
	if _, ok := validate.Email(email); !ok {
		return h.loginFailed(c, email, "bad_format")
	}
	if !validate.Password(pass) {
		return h.loginFailed(c, email, "bad_password_format")
	}

	sid := uuid.NewString()
	u, err := h.Auth.Login(c.UserContext(), sid, email, pass)
	if errors.Is(err, services.ErrBadCreds) {
		return h.loginFailed(c, email, "bad_credentials")
	}
	if err != nil {
		return err
	}

	sess.Rotate(sid)
	log.Audit(c, "auth.login.success", map[string]any{"email": email})
	sess.Success("Welcome back, " + u.Name + ".")
	return c.Redirect(nextOr(c, "/"))
}

func (h *AuthHandler) RegisterForm(c *fiber.Ctx) error {
	if currentUser(c) != nil {
		return c.Redirect("/")
	}
	next, _ := validate.SafeNext(c.Query("next"))
	return render(c, "register", fiber.Map{"Next": next, "Form": services.Registration{}})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	sess := session.FromCtx(c)
	in := services.Registration{
		Name:     c.FormValue("name"),
		Email:    c.FormValue("email"),
		Password: c.FormValue("password"),
		Confirm:  c.FormValue("confirm"),
		Phone:    c.FormValue("phone"),
		Address:  c.FormValue("address"),
		City:     c.FormValue("city"),
	}

	sid := uuid.NewString()
	u, err := h.Auth.Register(c.UserContext(), sid, in)
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		log.Security(c, "auth.register.invalid", map[string]any{"fields": verr.Fields})
		in.Password, in.Confirm = "", ""
		next, _ := validate.SafeNext(c.FormValue("next"))
		return c.Status(fiber.StatusBadRequest).Render("register", fiber.Map{
			"Err": verr.Global, "Errors": verr.Fields, "Form": in, "Next": next, "CSRFToken": c.Cookies("csrf_"),
		})
	}
	if err != nil {
		return err
	}

	sess.Rotate(sid)
	log.Audit(c, "auth.register", map[string]any{"user_id": u.ID})
	sess.Success("Your account was created. Welcome, " + u.Name + "!")
	return c.Redirect(nextOr(c, "/"))
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sess := session.FromCtx(c)
	if err := h.Auth.Logout(c.UserContext(), sess.ID()); err != nil {
		log.Error(c, "auth.logout.fail", err, nil)
	}
	old := sess.ID()
	sess.Flush()
	sess.Rotate(uuid.NewString())
	sess.Info("You have been logged out.")
	log.Audit(c, "auth.logout", map[string]any{"sid": old})
	return c.Redirect("/")
}

func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	u := currentUser(c)
	p, err := h.Auth.Profile(c.UserContext(), u.ID)
	if err != nil {
		return err
	}
	return render(c, "profile", fiber.Map{"Profile": p})
}
