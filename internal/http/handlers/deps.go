package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/jmoiron/sqlx"

	"olivosverdes/internal/cart"
	"olivosverdes/internal/config"
	applog "olivosverdes/internal/log"
	"olivosverdes/internal/pricing"
	"olivosverdes/internal/repos"
	"olivosverdes/internal/services"
)

type Deps struct {
	CategoryHandler *CategoryHandler
	ProductHandler  *ProductHandler
	SearchHandler   *SearchHandler
	AuthHandler     *AuthHandler
	CartHandler     *CartHandler
	CheckoutHandler *CheckoutHandler
	OrderHandler    *OrderHandler
	AdminHandler    *AdminHandler

	// LoginLimiter throttles POST /login.
	LoginLimiter fiber.Handler
}

func NewDeps(db *sqlx.DB, cfg config.Config, auth *services.AuthService) *Deps {
	catRepo := repos.NewCategoryRepo(db)
	prodRepo := repos.NewProductRepo(db)
	orderRepo := repos.NewOrderRepo(db)

	pr := pricing.NewResolver()
	calc := cart.NewCalculator(prodRepo, cfg.ShippingFee)

	catalogSvc := services.NewCatalogService(catRepo, prodRepo, pr)
	cartSvc := services.NewCartService(prodRepo, pr, calc)
	cartSvc.ShippingOnEmptyView = cfg.ShippingOnEmptyView
	cartSvc.ShippingOnEmptyRemoval = cfg.ShippingOnEmptyRemoval

	missing := cart.FailOnMissing
	if cfg.CheckoutMissingPolicy == config.CheckoutMissingDrop {
		missing = cart.DropMissing
	}
	checkoutSvc := services.NewCheckoutService(calc, orderRepo, missing)

	return &Deps{
		CategoryHandler: &CategoryHandler{Catalog: catalogSvc},
		ProductHandler:  &ProductHandler{Catalog: catalogSvc},
		SearchHandler:   &SearchHandler{Catalog: catalogSvc},
		AuthHandler:     &AuthHandler{Auth: auth},
		CartHandler:     &CartHandler{Cart: cartSvc},
		CheckoutHandler: &CheckoutHandler{Checkout: checkoutSvc},
		OrderHandler:    &OrderHandler{Repo: orderRepo},
		AdminHandler:    &AdminHandler{OrderRepo: orderRepo},
		LoginLimiter: limiter.New(limiter.Config{
			Max:        5,
			Expiration: 10 * time.Minute,
			LimitReached: func(c *fiber.Ctx) error {
				applog.Security(c, "rate.login.hit", nil)
				return c.Status(fiber.StatusTooManyRequests).Render("login", fiber.Map{"Err": "Too many attempts. Please try again later."})
			},
		}),
	}
}

// Mount registers the storefront routes. Session and user middleware must
// already be installed on app.
func (d *Deps) Mount(app fiber.Router) {
	// Catalog
	app.Get("/", d.CategoryHandler.Home)
	app.Get("/menu", d.CategoryHandler.Menu)
	app.Get("/categoria/:name", d.CategoryHandler.ByName)
	app.Get("/ofertas", d.CategoryHandler.Offers)
	app.Get("/product/:id", d.ProductHandler.Detail)
	app.Get("/search", limiter.New(limiter.Config{Max: 20, Expiration: time.Minute}), d.SearchHandler.Search)

	// Accounts
	app.Get("/registro", d.AuthHandler.RegisterForm)
	app.Post("/registro", d.AuthHandler.Register)
	app.Get("/login", d.AuthHandler.LoginForm)
	app.Post("/login", d.LoginLimiter, d.AuthHandler.Login)
	app.Post("/logout", d.AuthHandler.Logout)
	app.Get("/perfil", RequireUser(), d.AuthHandler.Profile)

	// Cart
	app.Post("/cart/add/:id", d.CartHandler.Add)
	app.Get("/cart", d.CartHandler.View)
	app.Post("/cart/adjust/:id/:action", d.CartHandler.Adjust)
	app.Post("/cart/remove/:id", d.CartHandler.Remove)

	// Checkout & orders
	app.Get("/checkout", RequireUser(), d.CheckoutHandler.Review)
	app.Post("/checkout", RequireUser(), d.CheckoutHandler.Confirm)
	app.Get("/order/:id", d.OrderHandler.View)
	app.Get("/orders", RequireUser(), d.OrderHandler.History)

	// Admin
	admin := app.Group("/admin", RequireAdmin())
	admin.Get("/orders", d.AdminHandler.OrdersPage)
	admin.Post("/orders/:id/status", d.AdminHandler.UpdateOrderStatus)

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
}
