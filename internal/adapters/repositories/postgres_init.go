package repositories

import (
	"context"
	"errors"
	"fmt"

	"foodcart-routing-service/internal/platform/db"
)

var postgresSchema = []string{
	`
	CREATE TABLE IF NOT EXISTS restaurants (
		id BIGINT PRIMARY KEY,
		name VARCHAR(50) NOT NULL,
		address VARCHAR(100) NOT NULL DEFAULT '',
		contact_phone VARCHAR(50) NOT NULL DEFAULT ''
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS product_categories (
		id BIGINT PRIMARY KEY,
		name VARCHAR(50) NOT NULL
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS products (
		id BIGINT PRIMARY KEY,
		name VARCHAR(50) NOT NULL,
		category_id BIGINT REFERENCES product_categories(id) ON DELETE SET NULL,
		price NUMERIC(8, 2) NOT NULL CHECK (price >= 0),
		special_status BOOLEAN NOT NULL DEFAULT FALSE,
		description VARCHAR(200) NOT NULL DEFAULT ''
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS restaurant_menu_items (
		restaurant_id BIGINT NOT NULL REFERENCES restaurants(id) ON DELETE CASCADE,
		product_id BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		availability BOOLEAN NOT NULL DEFAULT TRUE,
		PRIMARY KEY (restaurant_id, product_id)
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS orders (
		id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
		firstname VARCHAR(50) NOT NULL,
		lastname VARCHAR(50) NOT NULL,
		phonenumber VARCHAR(32) NOT NULL,
		address VARCHAR(100) NOT NULL,
		status CHAR(2) NOT NULL DEFAULT 'NW',
		payment_method CHAR(2) NOT NULL DEFAULT 'CS',
		comments VARCHAR(256) NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		called_at TIMESTAMPTZ,
		delivered_at TIMESTAMPTZ,
		restaurant_id BIGINT REFERENCES restaurants(id) ON DELETE SET NULL
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS order_positions (
		id BIGSERIAL PRIMARY KEY,
		order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		product_id BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		quantity INTEGER NOT NULL CHECK (quantity BETWEEN 1 AND 99),
		price NUMERIC(8, 2) NOT NULL CHECK (price >= 0)
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS geocode_cache (
		address VARCHAR(100) PRIMARY KEY,
		lat DOUBLE PRECISION,
		lon DOUBLE PRECISION,
		updated_at TIMESTAMPTZ NOT NULL
	);
	`,
	`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);`,
	`CREATE INDEX IF NOT EXISTS idx_order_positions_order ON order_positions(order_id);`,
}

// Initialize the Postgres database schema.
func InitPostgresSchema(ctx context.Context, pool db.Pool) error {
	if pool == nil {
		return errors.New("init schema: pool is nil")
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for i, stmt := range postgresSchema {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
