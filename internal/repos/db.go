package repos

import (
	"log"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Demo users and catalog entries; both idempotent, safe on every start.
	if err := seedUsers(db); err != nil {
		return nil, err
	}
	if err := seedProducts(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Users & Sessions
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,               -- same value as the 'sid' cookie
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen  TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

-- Products (the catalog source)
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  owner_id TEXT NOT NULL,
  title TEXT NOT NULL,
  description TEXT,
  category TEXT NOT NULL,
  price NUMERIC NOT NULL CHECK (price >= 0),
  image TEXT,
  rating_json TEXT,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_products_owner    ON products(owner_id);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);

-- Session cart snapshots (one JSON blob per browsing session)
CREATE TABLE IF NOT EXISTS cart_snapshots(
  session_id TEXT PRIMARY KEY,
  payload TEXT NOT NULL,
  updated_at TEXT
);

-- Orders (the account/order store)
CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,
  owner_id TEXT NOT NULL,
  idempotency_key TEXT,
  total NUMERIC NOT NULL,
  created_at INTEGER NOT NULL       -- epoch millis
);
CREATE INDEX IF NOT EXISTS idx_orders_owner ON orders(owner_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_idem ON orders(idempotency_key) WHERE idempotency_key IS NOT NULL;

CREATE TABLE IF NOT EXISTS order_lines(
  order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  product_id TEXT NOT NULL,
  title TEXT NOT NULL,
  category TEXT,
  price NUMERIC NOT NULL,
  image TEXT,
  count INTEGER NOT NULL CHECK (count >= 1),
  PRIMARY KEY (order_id, position)
);
`
	_, err := db.Exec(schema)
	return err
}

// seedUsers ensures two demo accounts exist (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Email, Name, Hash string
	}
	mk := func(id, email, name, raw string) u {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), 12)
		return u{ID: id, Email: email, Name: name, Hash: string(h)}
	}

	users := []u{
		mk("u-maya", "maya@storefront.test", "Maya", "Passw0rd!"),
		mk("u-theo", "theo@storefront.test", "Theo", "Passw0rd!"),
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		if _, err := tx.Exec(`
			INSERT INTO users(id,email,name,password_hash)
			VALUES(?,?,?,?)
			ON CONFLICT(email) DO NOTHING
		`, x.ID, x.Email, x.Name, x.Hash); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// seedProducts inserts a small demo catalog if none exists.
func seedProducts(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo catalog")

	tx := db.MustBegin()
	tx.MustExec(`INSERT INTO products(id,owner_id,title,description,category,price,image,rating_json) VALUES
	  ('p-backpack','u-maya','Canvas Backpack','Fits a 15 inch laptop','bags',109.95,'img/backpack.jpg','{"rate":3.9,"count":120}'),
	  ('p-tshirt','u-maya','Slim Fit T-Shirt','Lightweight casual tee','clothing',22.30,'img/tshirt.jpg','{"rate":4.1,"count":259}'),
	  ('p-ssd','u-theo','1TB Portable SSD','USB-C external drive','electronics',114.00,'img/ssd.jpg','{"rate":4.8,"count":400}')`)
	return tx.Commit()
}
