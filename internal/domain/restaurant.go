package domain

import "github.com/shopspring/decimal"

// Restaurant is a kitchen that can fulfil orders.
type Restaurant struct {
	ID           int64
	Name         string
	Address      string
	ContactPhone string
}

// Product is an item offered on restaurant menus.
type Product struct {
	ID            int64
	Name          string
	CategoryID    *int64
	Price         decimal.Decimal
	SpecialStatus bool
	Description   string
}

// MenuItem records whether a restaurant currently sells a product.
// A missing MenuItem is equivalent to Available == false.
type MenuItem struct {
	RestaurantID int64
	ProductID    int64
	Available    bool
}
