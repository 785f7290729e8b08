package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"foodcart-routing-service/internal/domain"
	"foodcart-routing-service/internal/platform/obs"
)

// SQLite-backed implementation of the order, restaurant and product ports.
type SqliteRepository struct{ DB *sql.DB }

func NewSqliteRepository(db *sql.DB) *SqliteRepository {
	return &SqliteRepository{DB: db}
}

// Return restaurants ordered by name.
func (s *SqliteRepository) ListRestaurants(ctx context.Context) ([]domain.Restaurant, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite repository: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT
		id,
		name,
		address,
		contact_phone
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

// Return every explicit menu entry.
func (s *SqliteRepository) ListMenuItems(ctx context.Context) ([]domain.MenuItem, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite repository: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT
		restaurant_id,
		product_id,
		availability
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

// Return the product catalogue ordered by id.
func (s *SqliteRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite repository: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT
		id,
		name,
		category_id,
		price,
		special_status,
		description
	FROM products
	ORDER BY id;
	`)
	if err != nil {
		return nil, fmt.Errorf("list products: query products table: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 64)
	for rows.Next() {
		var p domain.Product
		var category sql.NullInt64
		if err := rows.Scan(&p.ID, &p.Name, &category, &p.Price, &p.SpecialStatus, &p.Description); err != nil {
			return nil, fmt.Errorf("list products: scan row: %w", err)
		}
		if category.Valid {
			id := category.Int64
			p.CategoryID = &id
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: row iteration: %w", err)
	}

	return products, nil
}

// Return orders in an active status with their lines.
func (s *SqliteRepository) ListActiveOrders(ctx context.Context) (_ []*domain.Order, err error) {
	defer obs.Time(ctx, "orders.ListActive")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite repository: DB is nil")
	}

	ph := make([]string, 0, len(domain.ActiveStatuses))
	args := make([]any, 0, len(domain.ActiveStatuses))
	for _, st := range domain.ActiveStatuses {
		ph = append(ph, "?")
		args = append(args, string(st))
	}
	in := strings.Join(ph, ",")

	orderQuery := fmt.Sprintf(`
	SELECT
		id,
		firstname,
		lastname,
		phonenumber,
		address,
		status,
		payment_method,
		comments,
		created_at,
		called_at,
		delivered_at,
		restaurant_id
	FROM orders
	WHERE status IN (%s)
	ORDER BY id;
	`, in)

	rows, err := s.DB.QueryContext(ctx, orderQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("list active orders: query orders table: %w", err)
	}
	defer rows.Close()

	orders := make([]*domain.Order, 0, 64)
	byID := make(map[int64]*domain.Order)
	for rows.Next() {
		var o domain.Order
		var status, payment string
		var createdAt int64
		var calledAt, deliveredAt, restaurantID sql.NullInt64
		if err := rows.Scan(
			&o.ID, &o.FirstName, &o.LastName, &o.Phone, &o.Address, &status, &payment,
			&o.Comments, &createdAt, &calledAt, &deliveredAt, &restaurantID,
		); err != nil {
			return nil, fmt.Errorf("list active orders: scan row: %w", err)
		}
		o.Status = domain.OrderStatus(status)
		o.PaymentMethod = domain.PaymentMethod(payment)
		o.CreatedAt = time.Unix(0, createdAt).UTC()
		o.CalledAt = nullTime(calledAt)
		o.DeliveredAt = nullTime(deliveredAt)
		if restaurantID.Valid {
			id := restaurantID.Int64
			o.RestaurantID = &id
		}
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

	lineQuery := fmt.Sprintf(`
	SELECT
		p.order_id,
		p.product_id,
		p.quantity,
		p.price
	FROM order_positions p
	JOIN orders o ON o.id = p.order_id
	WHERE o.status IN (%s)
	ORDER BY p.order_id, p.id;
	`, in)

	lineRows, err := s.DB.QueryContext(ctx, lineQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("list active orders: query order_positions table: %w", err)
	}
	defer lineRows.Close()

	for lineRows.Next() {
		var orderID int64
		var l domain.OrderLine
		var price decimal.Decimal
		if err := lineRows.Scan(&orderID, &l.ProductID, &l.Quantity, &price); err != nil {
			return nil, fmt.Errorf("list active orders: scan position: %w", err)
		}
		l.Price = price
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

func nullTime(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(0, v.Int64).UTC()
	return &t
}

// Insert the order and its positions in one transaction and set o.ID.
func (s *SqliteRepository) CreateOrder(ctx context.Context, o *domain.Order) (err error) {
	defer obs.Time(ctx, "orders.Create")(&err)

	if s.DB == nil {
		return errors.New("sqlite repository: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create order: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
	INSERT INTO orders (
		firstname,
		lastname,
		phonenumber,
		address,
		status,
		payment_method,
		comments,
		created_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?);
	`, o.FirstName, o.LastName, o.Phone, o.Address, string(o.Status), string(o.PaymentMethod),
		o.Comments, o.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("create order: insert order: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create order: read id: %w", err)
	}

	for _, l := range o.Lines {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO order_positions (order_id, product_id, quantity, price)
		VALUES (?, ?, ?, ?);
		`, id, l.ProductID, l.Quantity, l.Price.StringFixed(2)); err != nil {
			return fmt.Errorf("create order: insert position product_id=%d: %w", l.ProductID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create order: commit tx: %w", err)
	}

	o.ID = id
	return nil
}
