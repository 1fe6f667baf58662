// Package cart holds the authoritative in-memory shopping carts, one per
// browsing session, and mirrors every mutation into a session-scoped snapshot.
// The in-memory cart is the source of truth: a failed snapshot write is logged
// and the mutation stands.
package cart

import (
	"encoding/json"
	"errors"
	"sync"

	"storefront/internal/domain"
	applog "storefront/internal/log"
)

// ErrBadCount rejects UpdateCount calls with a non-positive quantity.
var ErrBadCount = errors.New("count must be >= 1")

// SnapshotStore is the session storage surface the cart persists into.
// Read returns (nil, nil) when no snapshot exists for the session.
type SnapshotStore interface {
	Read(sessionID string) ([]byte, error)
	Write(sessionID string, payload []byte) error
}

type Store struct {
	mu    sync.Mutex
	snaps SnapshotStore
	carts map[string][]domain.CartLine
}

func NewStore(snaps SnapshotStore) *Store {
	return &Store{snaps: snaps, carts: map[string][]domain.CartLine{}}
}

// lines returns the live slice for a session, loading the persisted snapshot
// on first touch. A missing or corrupt snapshot yields an empty cart; the
// parse error never escapes. Callers must hold s.mu.
func (s *Store) lines(sessionID string) []domain.CartLine {
	if c, ok := s.carts[sessionID]; ok {
		return c
	}
	c := []domain.CartLine{}
	payload, err := s.snaps.Read(sessionID)
	if err != nil {
		applog.Error(nil, "cart.snapshot.read", err, map[string]any{"sid": sessionID})
	} else if len(payload) > 0 {
		if err := json.Unmarshal(payload, &c); err != nil {
			applog.Error(nil, "cart.snapshot.corrupt", err, map[string]any{"sid": sessionID})
			c = []domain.CartLine{}
		}
	}
	s.carts[sessionID] = c
	return c
}

// persist writes the full cart snapshot, best-effort. Callers must hold s.mu.
func (s *Store) persist(sessionID string) {
	payload, err := json.Marshal(s.carts[sessionID])
	if err != nil {
		applog.Error(nil, "cart.snapshot.encode", err, map[string]any{"sid": sessionID})
		return
	}
	if err := s.snaps.Write(sessionID, payload); err != nil {
		applog.Error(nil, "cart.snapshot.write", err, map[string]any{"sid": sessionID})
	}
}

// Add puts one unit of p into the cart: an existing line's count grows by 1,
// otherwise a new line is appended at the end. Insertion order is preserved.
func (s *Store) Add(sessionID string, p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.lines(sessionID)
	for i := range c {
		if c[i].ID == p.ID {
			c[i].Count++
			s.persist(sessionID)
			return
		}
	}
	s.carts[sessionID] = append(c, domain.CartLine{Product: p, Count: 1})
	s.persist(sessionID)
}

// Remove deletes the line for productID. Removing an absent id is a no-op and
// does not touch the snapshot.
func (s *Store) Remove(sessionID, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.lines(sessionID)
	for i := range c {
		if c[i].ID == productID {
			s.carts[sessionID] = append(c[:i], c[i+1:]...)
			s.persist(sessionID)
			return
		}
	}
}

// UpdateCount sets the quantity on an existing line. Quantities below 1 are
// rejected; updating an absent id is a no-op.
func (s *Store) UpdateCount(sessionID, productID string, count int) error {
	if count < 1 {
		return ErrBadCount
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.lines(sessionID)
	for i := range c {
		if c[i].ID == productID {
			c[i].Count = count
			s.persist(sessionID)
			return nil
		}
	}
	return nil
}

// Clear empties the cart and persists the empty snapshot.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines(sessionID)
	s.carts[sessionID] = []domain.CartLine{}
	s.persist(sessionID)
}

// Lines returns a copy of the cart in insertion order.
func (s *Store) Lines(sessionID string) []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.lines(sessionID)
	out := make([]domain.CartLine, len(c))
	copy(out, c)
	return out
}

// TotalCount is the sum of line quantities, computed fresh on each call.
func (s *Store) TotalCount(sessionID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, l := range s.lines(sessionID) {
		total += l.Count
	}
	return total
}

// TotalPrice is sum(price * count) over the cart, computed fresh on each call.
func (s *Store) TotalPrice(sessionID string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0.0
	for _, l := range s.lines(sessionID) {
		total += l.Price * float64(l.Count)
	}
	return total
}
