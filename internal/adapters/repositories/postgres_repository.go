package repositories

import (
	"context"
	"errors"
	"fmt"

	"foodcart-routing-service/internal/domain"
	"foodcart-routing-service/internal/platform/db"
	"foodcart-routing-service/internal/platform/obs"
)

// Postgres-backed implementation of the order, restaurant and product ports.
type PostgresRepository struct{ Pool db.Pool }

func NewPostgresRepository(pool db.Pool) *PostgresRepository {
	return &PostgresRepository{Pool: pool}
}

func (p *PostgresRepository) ListRestaurants(ctx context.Context) ([]domain.Restaurant, error) {
	if p.Pool == nil {
		return nil, errors.New("postgres repository: pool is nil")
	}

	rows, err := p.Pool.Query(ctx, `
	SELECT id, name, address, contact_phone
	FROM restaurants
	ORDER BY name, id;
	`)
	if err != nil {
		return nil, fmt.Errorf("list restaurants: query restaurants table: %w", err)
	}
	defer rows.Close()

	restaurants := make([]domain.Restaurant, 0, 16)
	for rows.Next() {
		var r domain.Restaurant
		if err := rows.Scan(&r.ID, &r.Name, &r.Address, &r.ContactPhone); err != nil {
			return nil, fmt.Errorf("list restaurants: scan row: %w", err)
		}
		restaurants = append(restaurants, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list restaurants: row iteration: %w", err)
	}

	return restaurants, nil
}

func (p *PostgresRepository) ListMenuItems(ctx context.Context) ([]domain.MenuItem, error) {
	if p.Pool == nil {
		return nil, errors.New("postgres repository: pool is nil")
	}

	rows, err := p.Pool.Query(ctx, `
	SELECT restaurant_id, product_id, availability
	FROM restaurant_menu_items
	ORDER BY restaurant_id, product_id;
	`)
	if err != nil {
		return nil, fmt.Errorf("list menu items: query restaurant_menu_items table: %w", err)
	}
	defer rows.Close()

	items := make([]domain.MenuItem, 0, 64)
	for rows.Next() {
		var m domain.MenuItem
		if err := rows.Scan(&m.RestaurantID, &m.ProductID, &m.Available); err != nil {
			return nil, fmt.Errorf("list menu items: scan row: %w", err)
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list menu items: row iteration: %w", err)
	}

	return items, nil
}

func (p *PostgresRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	if p.Pool == nil {
		return nil, errors.New("postgres repository: pool is nil")
	}

	rows, err := p.Pool.Query(ctx, `
	SELECT id, name, category_id, price, special_status, description
	FROM products
	ORDER BY id;
	`)
	if err != nil {
		return nil, fmt.Errorf("list products: query products table: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 64)
	for rows.Next() {
		var pr domain.Product
		if err := rows.Scan(&pr.ID, &pr.Name, &pr.CategoryID, &pr.Price, &pr.SpecialStatus, &pr.Description); err != nil {
			return nil, fmt.Errorf("list products: scan row: %w", err)
		}
		products = append(products, pr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: row iteration: %w", err)
	}

	return products, nil
}

func (p *PostgresRepository) ListActiveOrders(ctx context.Context) (_ []*domain.Order, err error) {
	defer obs.Time(ctx, "orders.ListActive")(&err)

	if p.Pool == nil {
		return nil, errors.New("postgres repository: pool is nil")
	}

	statuses := make([]string, 0, len(domain.ActiveStatuses))
	for _, st := range domain.ActiveStatuses {
		statuses = append(statuses, string(st))
	}

	rows, err := p.Pool.Query(ctx, `
	SELECT
		id, firstname, lastname, phonenumber, address, status, payment_method,
		comments, created_at, called_at, delivered_at, restaurant_id
	FROM orders
	WHERE status = ANY($1::text[])
	ORDER BY id;
	`, statuses)
	if err != nil {
		return nil, fmt.Errorf("list active orders: query orders table: %w", err)
	}
	defer rows.Close()

	orders := make([]*domain.Order, 0, 64)
	byID := make(map[int64]*domain.Order)
	for rows.Next() {
		var o domain.Order
		var status, payment string
		if err := rows.Scan(
			&o.ID, &o.FirstName, &o.LastName, &o.Phone, &o.Address, &status, &payment,
			&o.Comments, &o.CreatedAt, &o.CalledAt, &o.DeliveredAt, &o.RestaurantID,
		); err != nil {
			return nil, fmt.Errorf("list active orders: scan row: %w", err)
		}
		o.Status = domain.OrderStatus(status)
		o.PaymentMethod = domain.PaymentMethod(payment)
		orders = append(orders, &o)
		byID[o.ID] = &o
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list active orders: row iteration: %w", err)
	}
	rows.Close()

	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}

	lineRows, err := p.Pool.Query(ctx, `
	SELECT order_id, product_id, quantity, price
	FROM order_positions
	WHERE order_id = ANY($1::bigint[])
	ORDER BY order_id, id;
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("list active orders: query order_positions table: %w", err)
	}
	defer lineRows.Close()

	for lineRows.Next() {
		var orderID int64
		var l domain.OrderLine
		if err := lineRows.Scan(&orderID, &l.ProductID, &l.Quantity, &l.Price); err != nil {
			return nil, fmt.Errorf("list active orders: scan position: %w", err)
		}
		if o, ok := byID[orderID]; ok {
			o.Lines = append(o.Lines, l)
		}
	}
	if err := lineRows.Err(); err != nil {
		return nil, fmt.Errorf("list active orders: position iteration: %w", err)
	}

	sortByStatus(orders)
	return orders, nil
}

// Insert the order and its positions in one transaction and set o.ID.
func (p *PostgresRepository) CreateOrder(ctx context.Context, o *domain.Order) (err error) {
	defer obs.Time(ctx, "orders.Create")(&err)

	if p.Pool == nil {
		return errors.New("postgres repository: pool is nil")
	}

	tx, err := p.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("create order: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id int64
	if err := tx.QueryRow(ctx, `
	INSERT INTO orders (
		firstname, lastname, phonenumber, address,
		status, payment_method, comments, created_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id;
	`, o.FirstName, o.LastName, o.Phone, o.Address, string(o.Status), string(o.PaymentMethod),
		o.Comments, o.CreatedAt).Scan(&id); err != nil {
		return fmt.Errorf("create order: insert order: %w", err)
	}

	for _, l := range o.Lines {
		if _, err := tx.Exec(ctx, `
		INSERT INTO order_positions (order_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4);
		`, id, l.ProductID, l.Quantity, l.Price); err != nil {
			return fmt.Errorf("create order: insert position product_id=%d: %w", l.ProductID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("create order: commit tx: %w", err)
	}

	o.ID = id
	return nil
}
