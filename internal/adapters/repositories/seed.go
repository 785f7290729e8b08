package repositories

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"foodcart-routing-service/internal/domain"
)

// Seed is the demo data set loaded by `dbtool seed`.
type Seed struct {
	Categories  []CategorySeed   `json:"categories" yaml:"categories"`
	Products    []ProductSeed    `json:"products" yaml:"products"`
	Restaurants []RestaurantSeed `json:"restaurants" yaml:"restaurants"`
	MenuItems   []MenuItemSeed   `json:"menu_items" yaml:"menu_items"`
	Orders      []OrderSeed      `json:"orders" yaml:"orders"`
}

type CategorySeed struct {
	ID   int64  `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

type ProductSeed struct {
	ID            int64           `json:"id" yaml:"id"`
	Name          string          `json:"name" yaml:"name"`
	CategoryID    *int64          `json:"category_id" yaml:"category_id"`
	Price         decimal.Decimal `json:"price" yaml:"price"`
	SpecialStatus bool            `json:"special_status" yaml:"special_status"`
	Description   string          `json:"description" yaml:"description"`
}

type RestaurantSeed struct {
	ID           int64  `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	Address      string `json:"address" yaml:"address"`
	ContactPhone string `json:"contact_phone" yaml:"contact_phone"`
}

type MenuItemSeed struct {
	RestaurantID int64 `json:"restaurant_id" yaml:"restaurant_id"`
	ProductID    int64 `json:"product_id" yaml:"product_id"`
	Available    bool  `json:"availability" yaml:"availability"`
}

type OrderSeed struct {
	ID            int64           `json:"id" yaml:"id"`
	FirstName     string          `json:"firstname" yaml:"firstname"`
	LastName      string          `json:"lastname" yaml:"lastname"`
	Phone         string          `json:"phonenumber" yaml:"phonenumber"`
	Address       string          `json:"address" yaml:"address"`
	Status        string          `json:"status" yaml:"status"`
	PaymentMethod string          `json:"payment_method" yaml:"payment_method"`
	Comments      string          `json:"comments" yaml:"comments"`
	CreatedAt     *time.Time      `json:"created_at" yaml:"created_at"`
	RestaurantID  *int64          `json:"restaurant_id" yaml:"restaurant_id"`
	Positions     []OrderLineSeed `json:"positions" yaml:"positions"`
}

type OrderLineSeed struct {
	ProductID int64           `json:"product_id" yaml:"product_id"`
	Quantity  int             `json:"quantity" yaml:"quantity"`
	Price     decimal.Decimal `json:"price" yaml:"price"`
}

// LoadSeed reads a seed file; .yaml/.yml files are parsed as YAML, anything else as JSON.
func LoadSeed(path string) (*Seed, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load seed: read %q: %w", path, err)
	}

	var seed Seed
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(bytes, &seed)
	default:
		err = json.Unmarshal(bytes, &seed)
	}
	if err != nil {
		return nil, fmt.Errorf("load seed: parse %q: %w", path, err)
	}

	if err := seed.normalize(); err != nil {
		return nil, err
	}

	return &seed, nil
}

// normalize trims text fields, fills defaults and validates identifiers.
func (s *Seed) normalize() error {
	for i := range s.Restaurants {
		r := &s.Restaurants[i]
		if r.ID <= 0 {
			return fmt.Errorf("seed restaurants: invalid id at index %d: %d", i+1, r.ID)
		}
		r.Name = strings.TrimSpace(r.Name)
		if r.Name == "" {
			return fmt.Errorf("seed restaurants: item at index %d: name cannot be empty", i+1)
		}
		r.Address = strings.TrimSpace(r.Address)
	}

	for i := range s.Products {
		p := &s.Products[i]
		if p.ID <= 0 {
			return fmt.Errorf("seed products: invalid id at index %d: %d", i+1, p.ID)
		}
		if p.Price.IsNegative() {
			return fmt.Errorf("seed products: product %d: price cannot be negative", p.ID)
		}
	}

	for i := range s.Orders {
		o := &s.Orders[i]
		if o.ID <= 0 {
			return fmt.Errorf("seed orders: invalid id at index %d: %d", i+1, o.ID)
		}
		o.Address = strings.TrimSpace(o.Address)
		if o.Address == "" {
			return fmt.Errorf("seed orders: order %d: address cannot be empty", o.ID)
		}
		if o.Status == "" {
			o.Status = string(domain.StatusNew)
		}
		if o.PaymentMethod == "" {
			o.PaymentMethod = string(domain.PaymentCash)
		}
		for j, l := range o.Positions {
			if l.Quantity < 1 || l.Quantity > 99 {
				return fmt.Errorf("seed orders: order %d position %d: quantity %d out of range [1, 99]", o.ID, j+1, l.Quantity)
			}
		}
	}

	return nil
}

func (o OrderSeed) createdAt() time.Time {
	if o.CreatedAt == nil {
		return time.Now().UTC()
	}
	return o.CreatedAt.UTC()
}
