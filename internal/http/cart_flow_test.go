package handlers_test

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/config"
	"storefront/internal/http/handlers"
	"storefront/internal/repos"
	"storefront/internal/services"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	authSvc := services.NewAuthService(repos.NewUserRepo(db), []byte("test-secret"))
	deps := handlers.NewDeps(db, config.Config{}, authSvc)
	if err := deps.Catalog.Refresh(); err != nil {
		t.Fatalf("refresh catalog: %v", err)
	}

	app := fiber.New()
	api := app.Group("/api")
	api.Post("/register", deps.AuthHandler.Register)
	api.Post("/login", deps.AuthHandler.Login)
	api.Post("/logout", deps.AuthHandler.Logout)
	api.Get("/products", deps.ProductHandler.List)
	api.Get("/products/:id", deps.ProductHandler.Detail)
	api.Get("/cart", deps.CartHandler.View)
	api.Post("/cart", deps.CartHandler.Add)
	api.Post("/cart/clear", deps.CartHandler.Clear)
	api.Put("/cart/:productId", deps.CartHandler.UpdateCount)
	api.Delete("/cart/:productId", deps.CartHandler.Remove)

	requireUser := handlers.RequireUser(authSvc)
	api.Post("/products", requireUser, deps.ProductHandler.Create)
	api.Put("/products/:id", requireUser, deps.ProductHandler.Update)
	api.Delete("/products/:id", requireUser, deps.ProductHandler.Delete)
	api.Post("/orders", requireUser, deps.OrderHandler.Place)
	api.Get("/orders", requireUser, deps.OrderHandler.History)
	return app
}

func jsonReq(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func extractCookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func decode(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

type cartView struct {
	Items []struct {
		ID    string  `json:"id"`
		Price float64 `json:"price"`
		Count int     `json:"count"`
	} `json:"items"`
	TotalCount int     `json:"totalCount"`
	TotalPrice float64 `json:"totalPrice"`
}

func TestCartFlow(t *testing.T) {
	app := newTestApp(t)

	// first add mints the session cookie
	resp, err := app.Test(jsonReq("POST", "/api/cart", map[string]string{"productId": "p-backpack"}))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add: status %d", resp.StatusCode)
	}
	sid := extractCookie(resp, "sid")
	if sid == "" {
		t.Fatal("no sid cookie minted")
	}
	withSID := func(req *http.Request) *http.Request {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
		return req
	}

	// same product again aggregates, second product appends
	if _, err := app.Test(withSID(jsonReq("POST", "/api/cart", map[string]string{"productId": "p-backpack"}))); err != nil {
		t.Fatal(err)
	}
	if _, err := app.Test(withSID(jsonReq("POST", "/api/cart", map[string]string{"productId": "p-tshirt"}))); err != nil {
		t.Fatal(err)
	}

	resp, err = app.Test(withSID(jsonReq("GET", "/api/cart", nil)))
	if err != nil {
		t.Fatal(err)
	}
	var cv cartView
	decode(t, resp, &cv)
	if len(cv.Items) != 2 || cv.Items[0].ID != "p-backpack" || cv.Items[0].Count != 2 {
		t.Fatalf("bad cart: %+v", cv)
	}
	if cv.TotalCount != 3 {
		t.Fatalf("want totalCount=3, got %d", cv.TotalCount)
	}
	want := 2*109.95 + 22.30
	if math.Abs(cv.TotalPrice-want) > 1e-9 {
		t.Fatalf("want totalPrice=%v, got %v", want, cv.TotalPrice)
	}

	// unknown product -> 404, cart untouched
	resp, err = app.Test(withSID(jsonReq("POST", "/api/cart", map[string]string{"productId": "nope"})))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown product: status %d", resp.StatusCode)
	}

	// count update, zero rejected
	resp, err = app.Test(withSID(jsonReq("PUT", "/api/cart/p-tshirt", map[string]int{"count": 5})))
	if err != nil {
		t.Fatal(err)
	}
	decode(t, resp, &cv)
	if cv.TotalCount != 7 {
		t.Fatalf("after update: totalCount %d", cv.TotalCount)
	}
	resp, err = app.Test(withSID(jsonReq("PUT", "/api/cart/p-tshirt", map[string]int{"count": 0})))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("count=0 should 400, got %d", resp.StatusCode)
	}

	// remove + clear
	resp, err = app.Test(withSID(jsonReq("DELETE", "/api/cart/p-backpack", nil)))
	if err != nil {
		t.Fatal(err)
	}
	decode(t, resp, &cv)
	if len(cv.Items) != 1 || cv.Items[0].ID != "p-tshirt" {
		t.Fatalf("after remove: %+v", cv)
	}
	resp, err = app.Test(withSID(jsonReq("POST", "/api/cart/clear", nil)))
	if err != nil {
		t.Fatal(err)
	}
	decode(t, resp, &cv)
	if cv.TotalCount != 0 || cv.TotalPrice != 0 {
		t.Fatalf("after clear: %+v", cv)
	}
}

func TestProductListAndDetail(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(jsonReq("GET", "/api/products?category=electronics", nil))
	if err != nil {
		t.Fatal(err)
	}
	var list struct {
		Products []struct {
			ID       string `json:"id"`
			Category string `json:"category"`
		} `json:"products"`
		Categories []string `json:"categories"`
	}
	decode(t, resp, &list)
	if len(list.Products) != 1 || list.Products[0].ID != "p-ssd" {
		t.Fatalf("filtered list: %+v", list.Products)
	}
	if len(list.Categories) != 3 {
		t.Fatalf("want 3 categories, got %v", list.Categories)
	}

	resp, err = app.Test(jsonReq("GET", "/api/products/p-backpack", nil))
	if err != nil {
		t.Fatal(err)
	}
	var p struct {
		Title  string `json:"title"`
		Rating *struct {
			Count int `json:"count"`
		} `json:"rating"`
	}
	decode(t, resp, &p)
	if p.Title != "Canvas Backpack" || p.Rating == nil || p.Rating.Count != 120 {
		t.Fatalf("detail: %+v", p)
	}
}
