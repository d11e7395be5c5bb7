package handlers_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"olivosverdes/internal/config"
	"olivosverdes/internal/http/handlers"
	"olivosverdes/internal/repos"
	"olivosverdes/internal/services"
	"olivosverdes/internal/session"
)

type appOpts struct {
	csrf       bool
	loginLimit int
	cfg        func(*config.Config)
}

type testApp struct {
	app   *fiber.App
	db    *sqlx.DB
	users *repos.UserRepo
}

func testConfig() config.Config {
	return config.Config{
		DBDSN:                 ":memory:",
		SessionTTL:            time.Hour,
		ShippingFee:           decimal.RequireFromString("40.00"),
		ShippingOnEmptyView:   true,
		CheckoutMissingPolicy: config.CheckoutMissingFail,
		Templates:             "../../web/templates",
	}
}

// newTestApp wires the real middleware order from main against an
// in-memory database.
func newTestApp(t *testing.T, o appOpts) testApp {
	t.Helper()
	cfg := testConfig()
	if o.cfg != nil {
		o.cfg(&cfg)
	}
	db, err := repos.OpenDB(cfg.DBDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	userRepo := repos.NewUserRepo(db)
	userRepo.SessionTTL = cfg.SessionTTL
	authSvc := &services.AuthService{Users: userRepo, Cost: bcrypt.MinCost}

	engine := html.New(cfg.Templates, ".html")
	app := fiber.New(fiber.Config{Views: engine, ErrorHandler: handlers.ErrorHandler})
	app.Server().MaxRequestBodySize = 1 << 20
	app.Use(requestid.New())
	if o.csrf {
		app.Use(csrf.New(csrf.Config{KeyLookup: "form:csrf", CookieName: "csrf_", CookieSameSite: "Lax"}))
	}
	app.Use(session.NewManager(repos.NewSessionRepo(db), cfg.SessionTTL).Handler())
	app.Use(handlers.LoadUser(authSvc))

	deps := handlers.NewDeps(db, cfg, authSvc)
	if o.loginLimit > 0 {
		deps.LoginLimiter = limiter.New(limiter.Config{Max: o.loginLimit, Expiration: time.Minute})
	}
	deps.Mount(app)
	return testApp{app: app, db: db, users: userRepo}
}

// browser keeps cookies between requests like a real client would.
type browser struct {
	t       *testing.T
	app     *fiber.App
	cookies map[string]string
}

func newBrowser(t *testing.T, app *fiber.App) *browser {
	return &browser{t: t, app: app, cookies: map[string]string{}}
}

func (b *browser) do(req *http.Request) *http.Response {
	b.t.Helper()
	for k, v := range b.cookies {
		req.AddCookie(&http.Cookie{Name: k, Value: v})
	}
	resp, err := b.app.Test(req, -1)
	require.NoError(b.t, err)
	for _, c := range resp.Cookies() {
		b.cookies[c.Name] = c.Value
	}
	return resp
}

func (b *browser) get(path string) *http.Response {
	return b.do(httptest.NewRequest("GET", path, nil))
}

func (b *browser) post(path string, form url.Values) *http.Response {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) xhr(path string) *http.Response {
	req := httptest.NewRequest("POST", path, nil)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	return b.do(req)
}

// login binds the browser's session to a seeded user.
func (b *browser) login(users *repos.UserRepo, userID string) {
	b.t.Helper()
	if b.cookies[session.CookieName] == "" {
		b.get("/healthz")
	}
	require.NoError(b.t, users.BindSession(context.Background(), b.cookies[session.CookieName], userID))
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}
