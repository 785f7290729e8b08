package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the SQLite database schema.
func InitSqliteSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	statements := []string{
		`
	CREATE TABLE IF NOT EXISTS restaurants (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		contact_phone TEXT NOT NULL DEFAULT ''
	);
	`,
		`
	CREATE TABLE IF NOT EXISTS product_categories (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL
	);
	`,
		`
	CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		category_id INTEGER REFERENCES product_categories(id) ON DELETE SET NULL,
		price TEXT NOT NULL,
		special_status INTEGER NOT NULL DEFAULT 0,
		description TEXT NOT NULL DEFAULT ''
	);
	`,
		`
	CREATE TABLE IF NOT EXISTS restaurant_menu_items (
		restaurant_id INTEGER NOT NULL REFERENCES restaurants(id) ON DELETE CASCADE,
		product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		availability INTEGER NOT NULL DEFAULT 1,
		PRIMARY KEY (restaurant_id, product_id)
	);
	`,
		`
	CREATE TABLE IF NOT EXISTS orders (
		id INTEGER PRIMARY KEY,
		firstname TEXT NOT NULL,
		lastname TEXT NOT NULL,
		phonenumber TEXT NOT NULL,
		address TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'NW',
		payment_method TEXT NOT NULL DEFAULT 'CS',
		comments TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		called_at INTEGER,
		delivered_at INTEGER,
		restaurant_id INTEGER REFERENCES restaurants(id) ON DELETE SET NULL
	);
	`,
		`
	CREATE TABLE IF NOT EXISTS order_positions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		order_id INTEGER NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		quantity INTEGER NOT NULL CHECK (quantity BETWEEN 1 AND 99),
		price TEXT NOT NULL
	);
	`,
		`
	CREATE TABLE IF NOT EXISTS geocode_cache (
		address TEXT PRIMARY KEY,
		lat REAL,
		lon REAL,
		updated_at INTEGER NOT NULL
	);
	`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);`,
		`CREATE INDEX IF NOT EXISTS idx_order_positions_order ON order_positions(order_id);`,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
