package repositories

import (
	"context"
	"errors"
	"fmt"

	"foodcart-routing-service/internal/platform/db"
)

// Populate the Postgres database with seed data, updating rows with the same ids.
func SeedPostgres(ctx context.Context, pool db.Pool, seed *Seed) error {
	if pool == nil {
		return errors.New("seed: pool is nil")
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("seed: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, c := range seed.Categories {
		if _, err := tx.Exec(ctx, `
		INSERT INTO product_categories (id, name) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name;
		`, c.ID, c.Name); err != nil {
			return fmt.Errorf("seed categories: insert id=%d: %w", c.ID, err)
		}
	}

	for _, p := range seed.Products {
		if _, err := tx.Exec(ctx, `
		INSERT INTO products (id, name, category_id, price, special_status, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			category_id = EXCLUDED.category_id,
			price = EXCLUDED.price,
			special_status = EXCLUDED.special_status,
			description = EXCLUDED.description;
		`, p.ID, p.Name, p.CategoryID, p.Price, p.SpecialStatus, p.Description); err != nil {
			return fmt.Errorf("seed products: insert id=%d: %w", p.ID, err)
		}
	}

	for _, r := range seed.Restaurants {
		if _, err := tx.Exec(ctx, `
		INSERT INTO restaurants (id, name, address, contact_phone)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			address = EXCLUDED.address,
			contact_phone = EXCLUDED.contact_phone;
		`, r.ID, r.Name, r.Address, r.ContactPhone); err != nil {
			return fmt.Errorf("seed restaurants: insert id=%d: %w", r.ID, err)
		}
	}

	for _, m := range seed.MenuItems {
		if _, err := tx.Exec(ctx, `
		INSERT INTO restaurant_menu_items (restaurant_id, product_id, availability)
		VALUES ($1, $2, $3)
		ON CONFLICT (restaurant_id, product_id) DO UPDATE SET availability = EXCLUDED.availability;
		`, m.RestaurantID, m.ProductID, m.Available); err != nil {
			return fmt.Errorf("seed menu items: insert restaurant_id=%d product_id=%d: %w", m.RestaurantID, m.ProductID, err)
		}
	}

	for _, o := range seed.Orders {
		if _, err := tx.Exec(ctx, `
		INSERT INTO orders (
			id, firstname, lastname, phonenumber, address,
			status, payment_method, comments, created_at, restaurant_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			firstname = EXCLUDED.firstname,
			lastname = EXCLUDED.lastname,
			phonenumber = EXCLUDED.phonenumber,
			address = EXCLUDED.address,
			status = EXCLUDED.status,
			payment_method = EXCLUDED.payment_method,
			comments = EXCLUDED.comments,
			restaurant_id = EXCLUDED.restaurant_id;
		`, o.ID, o.FirstName, o.LastName, o.Phone, o.Address, o.Status, o.PaymentMethod,
			o.Comments, o.createdAt(), o.RestaurantID); err != nil {
			return fmt.Errorf("seed orders: insert id=%d: %w", o.ID, err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM order_positions WHERE order_id = $1;`, o.ID); err != nil {
			return fmt.Errorf("seed orders: clear positions id=%d: %w", o.ID, err)
		}
		for _, l := range o.Positions {
			if _, err := tx.Exec(ctx, `
			INSERT INTO order_positions (order_id, product_id, quantity, price)
			VALUES ($1, $2, $3, $4);
			`, o.ID, l.ProductID, l.Quantity, l.Price); err != nil {
				return fmt.Errorf("seed orders: insert position order_id=%d product_id=%d: %w", o.ID, l.ProductID, err)
			}
		}
	}

	// Seeded ids bypass the identity sequence; move it past them.
	if len(seed.Orders) > 0 {
		if _, err := tx.Exec(ctx, `
		SELECT setval(pg_get_serial_sequence('orders', 'id'), (SELECT MAX(id) FROM orders));
		`); err != nil {
			return fmt.Errorf("seed orders: advance id sequence: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("seed: commit tx: %w", err)
	}

	return nil
}
