package main

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"storefront/internal/config"
	"storefront/internal/http/handlers"
	applog "storefront/internal/log"
	"storefront/internal/repos"
	"storefront/internal/services"
)

func main() {
	cfg := config.Load()
	applog.Init(cfg.LogFile)

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	// Auth wiring
	userRepo := repos.NewUserRepo(db)
	authSvc := services.NewAuthService(userRepo, []byte(cfg.JWTSecret))

	deps := handlers.NewDeps(db, cfg, authSvc)

	// Warm the product list; the catalog serves reads from this state.
	if err := deps.Catalog.Refresh(); err != nil {
		log.Fatal(err)
	}

	// Refresh the in-memory order list whenever the auth state changes; the
	// most recent event wins, sign-out events carry no owner and are skipped.
	go func() {
		for id := range authSvc.Subscribe() {
			if id.OwnerID == "" {
				continue
			}
			if _, err := deps.Orders.Fetch(id.OwnerID); err != nil {
				applog.Error(nil, "orders.refresh.fail", err, map[string]any{"owner": id.OwnerID})
			}
		}
	}()

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "something went wrong"})
		},
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
	}))

	// ---------- Routes ----------
	api := app.Group("/api")

	// Auth (login throttled harder)
	api.Post("/register", deps.AuthHandler.Register)
	api.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many attempts"})
		},
	}), deps.AuthHandler.Login)
	api.Post("/logout", deps.AuthHandler.Logout)

	// Public catalog
	api.Get("/products", deps.ProductHandler.List)
	api.Get("/products/:id", deps.ProductHandler.Detail)

	// Cart is session-scoped; no login needed to browse with a cart.
	api.Get("/cart", deps.CartHandler.View)
	api.Post("/cart", deps.CartHandler.Add)
	api.Post("/cart/clear", deps.CartHandler.Clear)
	api.Put("/cart/:productId", deps.CartHandler.UpdateCount)
	api.Delete("/cart/:productId", deps.CartHandler.Remove)

	// Authenticated surface
	requireUser := handlers.RequireUser(authSvc)
	api.Get("/user/profile", requireUser, deps.UserHandler.Profile)
	api.Put("/user/profile", requireUser, deps.UserHandler.UpdateProfile)
	api.Get("/user/products", requireUser, deps.UserHandler.Listings)
	api.Post("/products", requireUser, deps.ProductHandler.Create)
	api.Put("/products/:id", requireUser, deps.ProductHandler.Update)
	api.Delete("/products/:id", requireUser, deps.ProductHandler.Delete)
	api.Post("/orders", requireUser, deps.OrderHandler.Place)
	api.Get("/orders", requireUser, deps.OrderHandler.History)

	// Health
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	log.Fatal(app.Listen(":" + cfg.Port))
}
