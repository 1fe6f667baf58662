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

func memdbProducts(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	schema := `
	CREATE TABLE products(id TEXT PRIMARY KEY, owner_id TEXT NOT NULL, title TEXT NOT NULL,
	  description TEXT, category TEXT NOT NULL, price NUMERIC NOT NULL, image TEXT,
	  rating_json TEXT, created_at TEXT DEFAULT CURRENT_TIMESTAMP, updated_at TEXT);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatal(err)
	}
	return db
}

func TestReduce(t *testing.T) {
	s := services.CatalogState{}

	s = services.Reduce(s, services.Action{Type: services.SetProducts, Products: []domain.Product{{ID: "p1"}}})
	if len(s.Products) != 1 || s.Products[0].ID != "p1" {
		t.Fatalf("SetProducts: %+v", s)
	}

	s = services.Reduce(s, services.Action{Type: services.SetCategory, Category: "bags"})
	if s.SelectedCategory != "bags" || len(s.Products) != 1 {
		t.Fatalf("SetCategory: %+v", s)
	}

	// unknown actions leave state untouched
	before := s
	s = services.Reduce(s, services.Action{Type: "NOPE"})
	if s.SelectedCategory != before.SelectedCategory || len(s.Products) != len(before.Products) {
		t.Fatalf("unknown action mutated state: %+v", s)
	}
}

func TestCatalogCRUDAndOwnership(t *testing.T) {
	db := memdbProducts(t)
	svc := services.NewCatalogService(repos.NewProductRepo(db))

	created, err := svc.Create("u-1", domain.Product{
		Title: "Canvas Backpack", Category: "bags", Price: 109.95,
		Rating: &domain.Rating{Rate: 3.9, Count: 120},
	})
	if err != nil {
		t.Fatal(err)
	}
	if created.ID == "" || created.OwnerID != "u-1" {
		t.Fatalf("bad created product: %+v", created)
	}

	got, err := svc.Get(created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Rating == nil || got.Rating.Count != 120 {
		t.Fatalf("rating lost on round trip: %+v", got.Rating)
	}

	// write-then-refresh: the view state sees the new product
	if got := svc.Products(""); len(got) != 1 {
		t.Fatalf("view state not refreshed: %d products", len(got))
	}

	// partial update by a non-owner is rejected
	price := 99.0
	err = svc.Update("u-2", created.ID, repos.ProductPatch{Price: &price})
	if !errors.Is(err, services.ErrNotOwner) {
		t.Fatalf("want ErrNotOwner, got %v", err)
	}
	if err := svc.Update("u-1", created.ID, repos.ProductPatch{Price: &price}); err != nil {
		t.Fatal(err)
	}
	got, _ = svc.Get(created.ID)
	if got.Price != 99.0 || got.Title != "Canvas Backpack" {
		t.Fatalf("partial update touched wrong fields: %+v", got)
	}

	err = svc.Delete("u-2", created.ID)
	if !errors.Is(err, services.ErrNotOwner) {
		t.Fatalf("want ErrNotOwner on delete, got %v", err)
	}
	if err := svc.Delete("u-1", created.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Get(created.ID); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("want ErrNotFound after delete, got %v", err)
	}
}

func TestCategoriesDerived(t *testing.T) {
	db := memdbProducts(t)
	svc := services.NewCatalogService(repos.NewProductRepo(db))

	for _, p := range []domain.Product{
		{Title: "A", Category: "bags", Price: 1},
		{Title: "B", Category: "clothing", Price: 1},
		{Title: "C", Category: "bags", Price: 1},
	} {
		if _, err := svc.Create("u-1", p); err != nil {
			t.Fatal(err)
		}
	}

	cats := svc.Categories()
	if len(cats) != 2 {
		t.Fatalf("want 2 unique categories, got %v", cats)
	}
	if got := svc.Products("bags"); len(got) != 2 {
		t.Fatalf("category filter: want 2, got %d", len(got))
	}
}
