package domain

// Rating is aggregate review data carried on a product.
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

type Product struct {
	ID          string  `db:"id" json:"id,omitempty"`
	OwnerID     string  `db:"owner_id" json:"ownerId"`
	Title       string  `db:"title" json:"title"`
	Description string  `db:"description" json:"description"`
	Category    string  `db:"category" json:"category"`
	Price       float64 `db:"price" json:"price"`
	Image       string  `db:"image" json:"image,omitempty"`
	Rating      *Rating `db:"-" json:"rating,omitempty"`
	CreatedAt   string  `db:"created_at" json:"-"`
}

// CartLine is one product entry in a cart plus its quantity. Count is always
// a positive integer; a cart holds at most one line per product id.
type CartLine struct {
	Product
	Count int `db:"count" json:"count"`
}

// Order is immutable once created. Total is the cart total captured at
// placement time and is never recomputed, so later price changes to the same
// product ids do not affect order history.
type Order struct {
	ID        string     `db:"id" json:"id"`
	OwnerID   string     `db:"owner_id" json:"ownerId"`
	Lines     []CartLine `db:"-" json:"products"`
	CreatedAt int64      `db:"created_at" json:"createdAt"` // epoch millis
	Total     float64    `db:"total" json:"total"`
}
