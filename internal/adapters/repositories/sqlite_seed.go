package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Populate the SQLite database with seed data, replacing rows with the same ids.
func SeedSqlite(ctx context.Context, db *sql.DB, seed *Seed) error {
	if db == nil {
		return errors.New("seed: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, c := range seed.Categories {
		if _, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO product_categories (id, name) VALUES (?, ?);
		`, c.ID, c.Name); err != nil {
			return fmt.Errorf("seed categories: insert id=%d: %w", c.ID, err)
		}
	}

	for _, p := range seed.Products {
		if _, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO products (
			id,
			name,
			category_id,
			price,
			special_status,
			description
		)
		VALUES (?, ?, ?, ?, ?, ?);
		`, p.ID, p.Name, p.CategoryID, p.Price.StringFixed(2), p.SpecialStatus, p.Description); err != nil {
			return fmt.Errorf("seed products: insert id=%d: %w", p.ID, err)
		}
	}

	for _, r := range seed.Restaurants {
		if _, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO restaurants (id, name, address, contact_phone)
		VALUES (?, ?, ?, ?);
		`, r.ID, r.Name, r.Address, r.ContactPhone); err != nil {
			return fmt.Errorf("seed restaurants: insert id=%d: %w", r.ID, err)
		}
	}

	for _, m := range seed.MenuItems {
		if _, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO restaurant_menu_items (restaurant_id, product_id, availability)
		VALUES (?, ?, ?);
		`, m.RestaurantID, m.ProductID, m.Available); err != nil {
			return fmt.Errorf("seed menu items: insert restaurant_id=%d product_id=%d: %w", m.RestaurantID, m.ProductID, err)
		}
	}

	for _, o := range seed.Orders {
		if _, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO orders (
			id,
			firstname,
			lastname,
			phonenumber,
			address,
			status,
			payment_method,
			comments,
			created_at,
			restaurant_id
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
		`, o.ID, o.FirstName, o.LastName, o.Phone, o.Address, o.Status, o.PaymentMethod,
			o.Comments, o.createdAt().UnixNano(), o.RestaurantID); err != nil {
			return fmt.Errorf("seed orders: insert id=%d: %w", o.ID, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM order_positions WHERE order_id = ?;`, o.ID); err != nil {
			return fmt.Errorf("seed orders: clear positions id=%d: %w", o.ID, err)
		}
		for _, l := range o.Positions {
			if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_positions (order_id, product_id, quantity, price)
			VALUES (?, ?, ?, ?);
			`, o.ID, l.ProductID, l.Quantity, l.Price.StringFixed(2)); err != nil {
				return fmt.Errorf("seed orders: insert position order_id=%d product_id=%d: %w", o.ID, l.ProductID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed: commit tx: %w", err)
	}

	return nil
}
