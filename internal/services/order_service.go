package services

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"storefront/internal/domain"
	"storefront/internal/repos"
)

// OrderService moves a cart's contents into a persisted order and keeps the
// owner's in-memory order list. The only consistency guarantee is ordering:
// the cart may be cleared only after the order write is acknowledged, and
// clearing is the caller's step, taken strictly after Place returns nil.
type OrderService struct {
	Orders *repos.OrderRepo

	mu   sync.Mutex
	list []domain.Order
}

func NewOrderService(orders *repos.OrderRepo) *OrderService {
	return &OrderService{Orders: orders}
}

// Place submits one order for ownerID with the given lines and the total the
// caller computed from them. idemKey, when set, is a client-generated key: a
// retry after a dropped acknowledgment returns the already-written order
// instead of creating a duplicate.
//
// On any error no state changes: the caller's cart must stay untouched.
func (s *OrderService) Place(ownerID string, lines []domain.CartLine, total float64, idemKey string) (string, error) {
	if ownerID == "" {
		return "", ErrUnauthenticated
	}
	if len(lines) == 0 {
		return "", ErrEmptyCart
	}

	if idemKey != "" {
		if id, ok, err := s.Orders.ByIdempotencyKey(idemKey); err != nil {
			return "", &PersistenceError{Op: "check idempotency key", Err: err}
		} else if ok {
			return id, nil
		}
	}

	o := domain.Order{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Lines:     lines,
		CreatedAt: time.Now().UnixMilli(),
		Total:     total,
	}
	if err := s.Orders.Create(o, idemKey); err != nil {
		// A concurrent retry may have landed the same key first; the order is
		// durable either way.
		if idemKey != "" {
			if id, ok, lookupErr := s.Orders.ByIdempotencyKey(idemKey); lookupErr == nil && ok {
				return id, nil
			}
		}
		return "", &PersistenceError{Op: "create order", Err: err}
	}

	// The write is durable; refreshing the order list is best-effort from here.
	s.refresh(ownerID)
	return o.ID, nil
}

func (s *OrderService) refresh(ownerID string) {
	if orders, err := s.Orders.ListByOwner(ownerID); err == nil {
		s.mu.Lock()
		s.list = orders
		s.mu.Unlock()
	}
}

// Fetch replaces the in-memory order list with the owner's persisted orders.
// Full replace, no merge.
func (s *OrderService) Fetch(ownerID string) ([]domain.Order, error) {
	if ownerID == "" {
		return nil, ErrUnauthenticated
	}
	orders, err := s.Orders.ListByOwner(ownerID)
	if err != nil {
		return nil, &PersistenceError{Op: "list orders", Err: err}
	}
	s.mu.Lock()
	s.list = orders
	s.mu.Unlock()
	return orders, nil
}

// List returns the current in-memory order list.
func (s *OrderService) List() []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Order(nil), s.list...)
}
