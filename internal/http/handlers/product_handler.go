package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/repos"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

// List serves the public catalog, optionally filtered by ?category=.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	category := c.Query("category")
	return c.JSON(fiber.Map{
		"products":   h.Catalog.Products(category),
		"categories": h.Catalog.Categories(),
	})
}

func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "product"})
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
	}
	p, err := h.Catalog.Get(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
	}
	return c.JSON(p)
}

type productInput struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Price       *float64       `json:"price"`
	Image       *string        `json:"image"`
	Rating      *domain.Rating `json:"rating"`
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var req productInput
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}
	title, ok := validate.Title(req.Title)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid title"})
	}
	if req.Category == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing category"})
	}
	if req.Price == nil || !validate.Price(*req.Price) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid price"})
	}

	p := domain.Product{
		Title:       title,
		Description: req.Description,
		Category:    req.Category,
		Price:       *req.Price,
		Rating:      req.Rating,
	}
	if req.Image != nil {
		p.Image = *req.Image
	}
	created, err := h.Catalog.Create(ownerID(c), p)
	if err != nil {
		applog.Error(c, "product.create.fail", err, nil)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "could not save product"})
	}
	applog.Audit(c, "product.create", map[string]any{"product_id": created.ID})
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
	}
	var req productInput
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	patch := repos.ProductPatch{
		Image:  req.Image,
		Price:  req.Price,
		Rating: req.Rating,
	}
	if req.Title != "" {
		title, ok := validate.Title(req.Title)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid title"})
		}
		patch.Title = &title
	}
	if req.Description != "" {
		patch.Description = &req.Description
	}
	if req.Category != "" {
		patch.Category = &req.Category
	}
	if req.Price != nil && !validate.Price(*req.Price) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid price"})
	}

	err := h.Catalog.Update(ownerID(c), id, patch)
	switch {
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
	case errors.Is(err, services.ErrNotOwner):
		applog.Security(c, "product.update.denied", map[string]any{"product_id": id})
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not your product"})
	case err != nil:
		applog.Error(c, "product.update.fail", err, map[string]any{"product_id": id})
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "could not save product"})
	}
	applog.Audit(c, "product.update", map[string]any{"product_id": id})
	return c.JSON(fiber.Map{"ok": true})
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
	}
	err := h.Catalog.Delete(ownerID(c), id)
	switch {
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
	case errors.Is(err, services.ErrNotOwner):
		applog.Security(c, "product.delete.denied", map[string]any{"product_id": id})
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not your product"})
	case err != nil:
		applog.Error(c, "product.delete.fail", err, map[string]any{"product_id": id})
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "could not delete product"})
	}
	applog.Audit(c, "product.delete", map[string]any{"product_id": id})
	return c.JSON(fiber.Map{"ok": true})
}
