package handlers

import (
	"github.com/jmoiron/sqlx"

	"storefront/internal/cart"
	"storefront/internal/config"
	"storefront/internal/repos"
	"storefront/internal/services"
)

type Deps struct {
	AuthHandler    *AuthHandler
	ProductHandler *ProductHandler
	CartHandler    *CartHandler
	OrderHandler   *OrderHandler
	UserHandler    *UserHandler

	Catalog *services.CatalogService
	Orders  *services.OrderService
}

func NewDeps(db *sqlx.DB, cfg config.Config, auth *services.AuthService) *Deps {
	prodRepo := repos.NewProductRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	snapRepo := repos.NewSnapshotRepo(db)

	catalogSvc := services.NewCatalogService(prodRepo)
	orderSvc := services.NewOrderService(orderRepo)
	cartStore := cart.NewStore(snapRepo)

	return &Deps{
		AuthHandler:    &AuthHandler{Auth: auth},
		ProductHandler: &ProductHandler{Catalog: catalogSvc},
		CartHandler:    &CartHandler{Cart: cartStore, Catalog: catalogSvc},
		OrderHandler:   &OrderHandler{Cart: cartStore, Orders: orderSvc},
		UserHandler:    &UserHandler{Users: repos.NewUserRepo(db), Catalog: catalogSvc},
		Catalog:        catalogSvc,
		Orders:         orderSvc,
	}
}
