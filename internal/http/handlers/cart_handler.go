package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/cart"
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type CartHandler struct {
	Cart    *cart.Store
	Catalog *services.CatalogService
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	sid := ensureSID(c)
	return c.JSON(fiber.Map{
		"items":      h.Cart.Lines(sid),
		"totalCount": h.Cart.TotalCount(sid),
		"totalPrice": h.Cart.TotalPrice(sid),
	})
}

// Add puts one unit of a catalog product into the session cart.
func (h *CartHandler) Add(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var req struct {
		ProductID string `json:"productId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}
	id, ok := validate.ID(req.ProductID)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing productId"})
	}
	p, err := h.Catalog.Get(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
	}
	h.Cart.Add(sid, p)
	applog.Info(c, "cart.add", map[string]any{"product_id": id})
	return h.View(c)
}

func (h *CartHandler) UpdateCount(c *fiber.Ctx) error {
	sid := ensureSID(c)
	id, ok := validate.ID(c.Params("productId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing productId"})
	}
	var req struct {
		Count int `json:"count"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}
	if err := h.Cart.UpdateCount(sid, id, req.Count); err != nil {
		if errors.Is(err, cart.ErrBadCount) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "count must be >= 1"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not update cart"})
	}
	return h.View(c)
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	sid := ensureSID(c)
	id, ok := validate.ID(c.Params("productId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing productId"})
	}
	h.Cart.Remove(sid, id)
	return h.View(c)
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	sid := ensureSID(c)
	h.Cart.Clear(sid)
	return h.View(c)
}
