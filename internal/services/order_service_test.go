package services_test

import (
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"storefront/internal/domain"
	"storefront/internal/repos"
	"storefront/internal/services"
)

func memdbOrders(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	schema := `
	CREATE TABLE orders(id TEXT PRIMARY KEY, owner_id TEXT NOT NULL, idempotency_key TEXT,
	  total NUMERIC NOT NULL, created_at INTEGER NOT NULL);
	CREATE UNIQUE INDEX idx_orders_idem ON orders(idempotency_key) WHERE idempotency_key IS NOT NULL;
	CREATE TABLE order_lines(order_id TEXT, position INTEGER, product_id TEXT, title TEXT,
	  category TEXT, price NUMERIC, image TEXT, count INTEGER, PRIMARY KEY(order_id, position));
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatal(err)
	}
	return db
}

func sampleLines() []domain.CartLine {
	return []domain.CartLine{
		{Product: domain.Product{ID: "a", Title: "Item a", Price: 10}, Count: 2},
		{Product: domain.Product{ID: "b", Title: "Item b", Price: 5}, Count: 1},
	}
}

func TestPlaceUnauthenticated(t *testing.T) {
	db := memdbOrders(t)
	svc := services.NewOrderService(repos.NewOrderRepo(db))

	_, err := svc.Place("", sampleLines(), 25, "")
	if !errors.Is(err, services.ErrUnauthenticated) {
		t.Fatalf("want ErrUnauthenticated, got %v", err)
	}

	// no writes happened
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM orders`); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("unauthenticated place wrote %d orders", n)
	}
}

func TestPlaceEmptyCart(t *testing.T) {
	db := memdbOrders(t)
	svc := services.NewOrderService(repos.NewOrderRepo(db))

	_, err := svc.Place("u-1", nil, 0, "")
	if !errors.Is(err, services.ErrEmptyCart) {
		t.Fatalf("want ErrEmptyCart, got %v", err)
	}
}

func TestPlaceAndFetch(t *testing.T) {
	db := memdbOrders(t)
	svc := services.NewOrderService(repos.NewOrderRepo(db))

	oid, err := svc.Place("u-1", sampleLines(), 25, "")
	if err != nil {
		t.Fatal(err)
	}
	if oid == "" {
		t.Fatal("no order id")
	}

	orders, err := svc.Fetch("u-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 1 {
		t.Fatalf("want 1 order, got %d", len(orders))
	}
	o := orders[0]
	if o.ID != oid || o.OwnerID != "u-1" || o.Total != 25 {
		t.Fatalf("bad order: %+v", o)
	}
	if o.CreatedAt <= 0 {
		t.Fatalf("createdAt not set: %d", o.CreatedAt)
	}
	if len(o.Lines) != 2 || o.Lines[0].ID != "a" || o.Lines[0].Count != 2 || o.Lines[1].ID != "b" {
		t.Fatalf("bad lines: %+v", o.Lines)
	}

	// Fetch replaces, never merges: another owner sees only their own
	orders, err = svc.Fetch("u-2")
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 0 {
		t.Fatalf("u-2 should have no orders, got %d", len(orders))
	}
	if got := svc.List(); len(got) != 0 {
		t.Fatalf("list should be fully replaced, got %d", len(got))
	}
}

func TestPlaceTotalIsFrozen(t *testing.T) {
	db := memdbOrders(t)
	svc := services.NewOrderService(repos.NewOrderRepo(db))

	lines := sampleLines()
	if _, err := svc.Place("u-1", lines, 25, ""); err != nil {
		t.Fatal(err)
	}

	// total stored at creation time, independent of the lines' current prices
	orders, err := svc.Fetch("u-1")
	if err != nil {
		t.Fatal(err)
	}
	if orders[0].Total != 25 {
		t.Fatalf("want frozen total 25, got %v", orders[0].Total)
	}
}

func TestPlaceIdempotencyKeyDedupes(t *testing.T) {
	db := memdbOrders(t)
	svc := services.NewOrderService(repos.NewOrderRepo(db))

	key := "idem-123"
	first, err := svc.Place("u-1", sampleLines(), 25, key)
	if err != nil {
		t.Fatal(err)
	}
	// a retried checkout after a dropped acknowledgment
	second, err := svc.Place("u-1", sampleLines(), 25, key)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatalf("retry created a new order: %s vs %s", first, second)
	}

	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM orders`); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("want 1 order row, got %d", n)
	}
}

func TestPlacePersistenceFailure(t *testing.T) {
	db := memdbOrders(t)
	svc := services.NewOrderService(repos.NewOrderRepo(db))

	// break the store
	if _, err := db.Exec(`DROP TABLE order_lines`); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Place("u-1", sampleLines(), 25, "")
	var pe *services.PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("want PersistenceError, got %v", err)
	}

	// nothing partial survives: the header insert was rolled back
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM orders`); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("partial order persisted: %d rows", n)
	}
}
