package session

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	applog "olivosverdes/internal/log"
)

const (
	CookieName = "sid"
	localsKey  = "session"
)

type Manager struct {
	Store  Store
	TTL    time.Duration
	Secure bool
}

func NewManager(st Store, ttl time.Duration) *Manager {
	return &Manager{Store: st, TTL: ttl}
}

// Handler loads the visitor's session before the route runs and saves it
// afterwards if the route marked it modified.
func (m *Manager) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies(CookieName)
		if _, err := uuid.Parse(sid); err != nil {
			sid = uuid.NewString()
			m.setCookie(c, sid)
		}

		values, err := m.Store.Load(c.UserContext(), sid)
		if err != nil {
			applog.Error(c, "session.load.fail", err, nil)
			return err
		}
		s := New(sid, values)
		c.Locals(localsKey, s)

		herr := c.Next()
		if _, rotated := s.Rotated(); rotated {
			m.setCookie(c, s.ID())
		}
		if serr := s.Save(c.UserContext(), m.Store, m.TTL); serr != nil {
			applog.Error(c, "session.save.fail", serr, nil)
			if herr == nil {
				return serr
			}
		}
		return herr
	}
}

func (m *Manager) setCookie(c *fiber.Ctx, sid string) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    sid,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   m.Secure,
	})
}

// FromCtx returns the session attached by Handler, or nil outside it.
func FromCtx(c *fiber.Ctx) *Session {
	s, _ := c.Locals(localsKey).(*Session)
	return s
}
