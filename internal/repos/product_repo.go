package repos

import (
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

// productRow carries the rating JSON column alongside the domain fields.
type productRow struct {
	domain.Product
	RatingJSON *string `db:"rating_json"`
}

func (row productRow) toProduct() domain.Product {
	p := row.Product
	if row.RatingJSON != nil && *row.RatingJSON != "" {
		var r domain.Rating
		if err := json.Unmarshal([]byte(*row.RatingJSON), &r); err == nil {
			p.Rating = &r
		}
	}
	return p
}

func ratingJSON(p domain.Product) any {
	if p.Rating == nil {
		return nil
	}
	b, err := json.Marshal(p.Rating)
	if err != nil {
		return nil
	}
	return string(b)
}

const productCols = `id, owner_id, title, description, category, price,
  COALESCE(image,'') AS image, rating_json, created_at`

func (r *ProductRepo) List() ([]domain.Product, error) {
	var rows []productRow
	err := r.db.Select(&rows, `
	  SELECT `+productCols+`
	  FROM products
	  ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toProduct())
	}
	return out, nil
}

func (r *ProductRepo) Get(id string) (domain.Product, error) {
	var row productRow
	err := r.db.Get(&row, `
	  SELECT `+productCols+`
	  FROM products
	  WHERE id = ?
	`, id)
	if err != nil {
		return domain.Product{}, err
	}
	return row.toProduct(), nil
}

func (r *ProductRepo) ListByOwner(ownerID string) ([]domain.Product, error) {
	var rows []productRow
	err := r.db.Select(&rows, `
	  SELECT `+productCols+`
	  FROM products
	  WHERE owner_id = ?
	  ORDER BY created_at DESC, id
	`, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toProduct())
	}
	return out, nil
}

func (r *ProductRepo) Insert(p domain.Product) error {
	_, err := r.db.Exec(`
	  INSERT INTO products(id,owner_id,title,description,category,price,image,rating_json,created_at)
	  VALUES(?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
	`, p.ID, p.OwnerID, p.Title, p.Description, p.Category, p.Price, p.Image, ratingJSON(p))
	return err
}

// ProductPatch updates only the fields that are set.
type ProductPatch struct {
	Title       *string
	Description *string
	Category    *string
	Price       *float64
	Image       *string
	Rating      *domain.Rating
}

func (r *ProductRepo) Update(id string, patch ProductPatch) error {
	set := ``
	args := []any{}
	add := func(col string, v any) {
		if set != "" {
			set += `, `
		}
		set += col + ` = ?`
		args = append(args, v)
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Category != nil {
		add("category", *patch.Category)
	}
	if patch.Price != nil {
		add("price", *patch.Price)
	}
	if patch.Image != nil {
		add("image", *patch.Image)
	}
	if patch.Rating != nil {
		b, err := json.Marshal(patch.Rating)
		if err != nil {
			return err
		}
		add("rating_json", string(b))
	}
	if set == "" {
		return nil
	}
	set += `, updated_at = CURRENT_TIMESTAMP`
	args = append(args, id)
	_, err := r.db.Exec(`UPDATE products SET `+set+` WHERE id = ?`, args...)
	return err
}

func (r *ProductRepo) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM products WHERE id = ?`, id)
	return err
}
