package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/cart"
	applog "storefront/internal/log"
	"storefront/internal/services"
)

type OrderHandler struct {
	Cart   *cart.Store
	Orders *services.OrderService
}

// Place checks out the session cart for the authenticated owner. The cart is
// cleared only after the order write is acknowledged; any failure leaves it
// exactly as it was.
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	sid := ensureSID(c)
	owner := ownerID(c)

	lines := h.Cart.Lines(sid)
	total := h.Cart.TotalPrice(sid)
	idemKey := c.Get("X-Idempotency-Key")

	orderID, err := h.Orders.Place(owner, lines, total, idemKey)
	if err != nil {
		var pe *services.PersistenceError
		switch {
		case errors.Is(err, services.ErrUnauthenticated):
			applog.Security(c, "order.place.unauthenticated", nil)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "not logged in"})
		case errors.Is(err, services.ErrEmptyCart):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cart is empty"})
		case errors.As(err, &pe):
			applog.Error(c, "order.place.fail", err, map[string]any{"sid": sid})
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": pe.Error()})
		default:
			applog.Error(c, "order.place.fail", err, map[string]any{"sid": sid})
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not place order"})
		}
	}

	// Write acknowledged as durable; now the cart may go.
	h.Cart.Clear(sid)

	applog.Audit(c, "order.place", map[string]any{"order_id": orderID, "total": total})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"orderId": orderID, "total": total})
}

// History returns all orders owned by the caller, fetched fresh.
func (h *OrderHandler) History(c *fiber.Ctx) error {
	orders, err := h.Orders.Fetch(ownerID(c))
	if err != nil {
		applog.Error(c, "orders.history.fail", err, nil)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "could not load orders"})
	}
	return c.JSON(fiber.Map{"orders": orders})
}
