package services

import (
	"database/sql"
	"errors"
	"sync"

	"github.com/google/uuid"

	"storefront/internal/domain"
	"storefront/internal/repos"
)

// CatalogState is the product-list view state: the fetched products plus the
// currently selected category filter.
type CatalogState struct {
	Products         []domain.Product
	SelectedCategory string
}

type ActionType string

const (
	SetProducts ActionType = "SET_PRODUCTS"
	SetCategory ActionType = "SET_SELECTED_CATEGORY"
)

type Action struct {
	Type     ActionType
	Products []domain.Product
	Category string
}

// Reduce is the pure state transition for the catalog view. Unknown action
// types leave the state unchanged.
func Reduce(s CatalogState, a Action) CatalogState {
	switch a.Type {
	case SetProducts:
		s.Products = a.Products
	case SetCategory:
		s.SelectedCategory = a.Category
	}
	return s
}

// CatalogService fronts the catalog source. Reads go through an in-memory
// product-list state refreshed after every write; writes enforce ownership.
type CatalogService struct {
	Prods *repos.ProductRepo

	mu    sync.Mutex
	state CatalogState
}

func NewCatalogService(prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Prods: prods}
}

func (s *CatalogService) dispatch(a Action) {
	s.mu.Lock()
	s.state = Reduce(s.state, a)
	s.mu.Unlock()
}

// Refresh reloads the product list from the store and replaces the view state.
func (s *CatalogService) Refresh() error {
	products, err := s.Prods.List()
	if err != nil {
		return &PersistenceError{Op: "list products", Err: err}
	}
	s.dispatch(Action{Type: SetProducts, Products: products})
	return nil
}

func (s *CatalogService) State() CatalogState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.state
	out.Products = append([]domain.Product(nil), s.state.Products...)
	return out
}

func (s *CatalogService) SelectCategory(category string) {
	s.dispatch(Action{Type: SetCategory, Category: category})
}

// Products returns the current list, filtered by category when one is given.
func (s *CatalogService) Products(category string) []domain.Product {
	st := s.State()
	if category == "" {
		return st.Products
	}
	out := []domain.Product{}
	for _, p := range st.Products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Categories derives the unique category set from the current product list,
// first-seen order.
func (s *CatalogService) Categories() []string {
	st := s.State()
	seen := map[string]bool{}
	out := []string{}
	for _, p := range st.Products {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out
}

func (s *CatalogService) Get(id string) (domain.Product, error) {
	p, err := s.Prods.Get(id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, ErrNotFound
	}
	if err != nil {
		return domain.Product{}, &PersistenceError{Op: "get product", Err: err}
	}
	return p, nil
}

func (s *CatalogService) ListByOwner(ownerID string) ([]domain.Product, error) {
	out, err := s.Prods.ListByOwner(ownerID)
	if err != nil {
		return nil, &PersistenceError{Op: "list own products", Err: err}
	}
	return out, nil
}

// Create stamps the owner and a fresh id, writes through, then refreshes the
// view state.
func (s *CatalogService) Create(ownerID string, p domain.Product) (domain.Product, error) {
	p.ID = uuid.NewString()
	p.OwnerID = ownerID
	if err := s.Prods.Insert(p); err != nil {
		return domain.Product{}, &PersistenceError{Op: "create product", Err: err}
	}
	if err := s.Refresh(); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func (s *CatalogService) owned(ownerID, id string) error {
	p, err := s.Prods.Get(id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return &PersistenceError{Op: "get product", Err: err}
	}
	if p.OwnerID != ownerID {
		return ErrNotOwner
	}
	return nil
}

func (s *CatalogService) Update(ownerID, id string, patch repos.ProductPatch) error {
	if err := s.owned(ownerID, id); err != nil {
		return err
	}
	if err := s.Prods.Update(id, patch); err != nil {
		return &PersistenceError{Op: "update product", Err: err}
	}
	return s.Refresh()
}

func (s *CatalogService) Delete(ownerID, id string) error {
	if err := s.owned(ownerID, id); err != nil {
		return err
	}
	if err := s.Prods.Delete(id); err != nil {
		return &PersistenceError{Op: "delete product", Err: err}
	}
	return s.Refresh()
}
