package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "storefront/internal/log"
	"storefront/internal/repos"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type UserHandler struct {
	Users   *repos.UserRepo
	Catalog *services.CatalogService
}

func (h *UserHandler) Profile(c *fiber.Ctx) error {
	u, err := h.Users.ByID(ownerID(c))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
	}
	return c.JSON(fiber.Map{"user": u})
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}
	name, ok := validate.Name(req.Name)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid name"})
	}
	if err := h.Users.UpdateName(ownerID(c), name); err != nil {
		applog.Error(c, "profile.update.fail", err, nil)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "could not update profile"})
	}
	applog.Audit(c, "profile.update", nil)
	return c.JSON(fiber.Map{"ok": true})
}

// Listings returns the products the caller has put up for sale.
func (h *UserHandler) Listings(c *fiber.Ctx) error {
	products, err := h.Catalog.ListByOwner(ownerID(c))
	if err != nil {
		applog.Error(c, "profile.listings.fail", err, nil)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "could not load products"})
	}
	return c.JSON(fiber.Map{"products": products})
}
