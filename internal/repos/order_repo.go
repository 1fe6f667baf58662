package repos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// Create writes the order header and its lines in one transaction. The caller
// sees the order as durable only once this returns nil.
func (r *OrderRepo) Create(o domain.Order, idemKey string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var key any
	if idemKey != "" {
		key = idemKey
	}
	if _, err := tx.Exec(`
	  INSERT INTO orders(id, owner_id, idempotency_key, total, created_at)
	  VALUES(?,?,?,?,?)
	`, o.ID, o.OwnerID, key, o.Total, o.CreatedAt); err != nil {
		return err
	}

	for i, l := range o.Lines {
		if _, err := tx.Exec(`
		  INSERT INTO order_lines(order_id, position, product_id, title, category, price, image, count)
		  VALUES(?,?,?,?,?,?,?,?)
		`, o.ID, i, l.ID, l.Title, l.Category, l.Price, l.Image, l.Count); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ByIdempotencyKey returns the id of an order already written under the key.
func (r *OrderRepo) ByIdempotencyKey(key string) (string, bool, error) {
	var id string
	err := r.db.Get(&id, `SELECT id FROM orders WHERE idempotency_key = ?`, key)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

type orderLineRow struct {
	OrderID   string  `db:"order_id"`
	ProductID string  `db:"product_id"`
	Title     string  `db:"title"`
	Category  string  `db:"category"`
	Price     float64 `db:"price"`
	Image     string  `db:"image"`
	Count     int     `db:"count"`
}

// ListByOwner returns all orders owned by ownerID, newest first, lines in
// their original cart order.
func (r *OrderRepo) ListByOwner(ownerID string) ([]domain.Order, error) {
	var heads []domain.Order
	if err := r.db.Select(&heads, `
	  SELECT id, owner_id, total, created_at
	  FROM orders
	  WHERE owner_id = ?
	  ORDER BY created_at DESC, id
	`, ownerID); err != nil {
		return nil, err
	}
	if len(heads) == 0 {
		return []domain.Order{}, nil
	}

	ids := make([]string, len(heads))
	for i, o := range heads {
		ids[i] = o.ID
	}
	query, args, err := sqlx.In(`
	  SELECT order_id, product_id, title, COALESCE(category,'') AS category,
	         price, COALESCE(image,'') AS image, count
	  FROM order_lines
	  WHERE order_id IN (?)
	  ORDER BY order_id, position
	`, ids)
	if err != nil {
		return nil, err
	}
	var lines []orderLineRow
	if err := r.db.Select(&lines, query, args...); err != nil {
		return nil, err
	}

	byOrder := map[string][]domain.CartLine{}
	for _, l := range lines {
		byOrder[l.OrderID] = append(byOrder[l.OrderID], domain.CartLine{
			Product: domain.Product{
				ID:       l.ProductID,
				Title:    l.Title,
				Category: l.Category,
				Price:    l.Price,
				Image:    l.Image,
			},
			Count: l.Count,
		})
	}
	for i := range heads {
		heads[i].Lines = byOrder[heads[i].ID]
	}
	return heads, nil
}
