package dto

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"foodcart-routing-service/internal/domain"
	"foodcart-routing-service/internal/services"
)

type CandidateResponse struct {
	RestaurantID   int64   `json:"restaurant_id"`
	RestaurantName string  `json:"restaurant_name"`
	DistanceKm     float64 `json:"distance_km"`
}

// RoutingResponse carries either ranked candidates or geo_error=true.
type RoutingResponse struct {
	Status     string              `json:"status"`
	GeoError   bool                `json:"geo_error"`
	Candidates []CandidateResponse `json:"candidates"`
}

type OrderLineResponse struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

type OrderResponse struct {
	ID            int64               `json:"id"`
	FirstName     string              `json:"firstname"`
	LastName      string              `json:"lastname"`
	Phone         string              `json:"phonenumber"`
	Address       string              `json:"address"`
	Status        string              `json:"status"`
	StatusLabel   string              `json:"status_label"`
	PaymentMethod string              `json:"payment_method"`
	Comments      string              `json:"comments"`
	CreatedAt     time.Time           `json:"created_at"`
	RestaurantID  *int64              `json:"restaurant_id"`
	Total         string              `json:"total"`
	Lines         []OrderLineResponse `json:"lines"`
	Routing       *RoutingResponse    `json:"routing,omitempty"`
}

type ListOrdersResponse struct {
	Orders []OrderResponse `json:"orders"`
}

// NewRoutingResponse rounds distances to the precision shown to managers.
func NewRoutingResponse(res domain.RoutingResult) RoutingResponse {
	out := RoutingResponse{
		Status:     string(res.Status),
		GeoError:   res.Status == domain.RoutingGeoFailed,
		Candidates: make([]CandidateResponse, 0, len(res.Candidates)),
	}
	for _, c := range res.Candidates {
		out.Candidates = append(out.Candidates, CandidateResponse{
			RestaurantID:   c.RestaurantID,
			RestaurantName: c.RestaurantName,
			DistanceKm:     services.RoundKm(c.DistanceKm),
		})
	}
	return out
}

type OrderPositionRequest struct {
	Product  int64 `json:"product"`
	Quantity int   `json:"quantity"`
}

// CreateOrderRequest is the body of POST /orders.
type CreateOrderRequest struct {
	FirstName   string                 `json:"firstname"`
	LastName    string                 `json:"lastname"`
	PhoneNumber string                 `json:"phonenumber"`
	Address     string                 `json:"address"`
	Products    []OrderPositionRequest `json:"products"`
}

// ValidationErrorResponse maps request fields to what is wrong with them.
type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// Validate checks the request shape and returns per-field problems, or nil.
// Whether the products exist is checked when the order is placed.
func (req CreateOrderRequest) Validate() map[string]string {
	problems := make(map[string]string)

	required := []struct {
		field, value string
		limit        int
	}{
		{"firstname", req.FirstName, 50},
		{"lastname", req.LastName, 50},
		{"phonenumber", req.PhoneNumber, 32},
		{"address", req.Address, 100},
	}
	for _, r := range required {
		v := strings.TrimSpace(r.value)
		switch {
		case v == "":
			problems[r.field] = "this field is required"
		case utf8.RuneCountInString(v) > r.limit:
			problems[r.field] = fmt.Sprintf("must be at most %d characters", r.limit)
		}
	}
	if _, ok := problems["phonenumber"]; !ok && !validPhone(req.PhoneNumber) {
		problems["phonenumber"] = "invalid phone number"
	}

	if len(req.Products) == 0 {
		problems["products"] = "must be a non-empty list"
	}
	for i, p := range req.Products {
		key := fmt.Sprintf("products[%d]", i)
		switch {
		case p.Product <= 0:
			problems[key] = "unknown product"
		case p.Quantity < domain.MinLineQuantity || p.Quantity > domain.MaxLineQuantity:
			problems[key] = fmt.Sprintf("quantity must be between %d and %d", domain.MinLineQuantity, domain.MaxLineQuantity)
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return problems
}

// validPhone accepts an optional leading '+' and 10 to 15 digits, ignoring
// spaces, dashes and parentheses.
func validPhone(s string) bool {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "+")
	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits >= 10 && digits <= 15
}

// Order converts the request into a draft order.
func (req CreateOrderRequest) Order() domain.Order {
	lines := make([]domain.OrderLine, 0, len(req.Products))
	for _, p := range req.Products {
		lines = append(lines, domain.OrderLine{ProductID: p.Product, Quantity: p.Quantity})
	}
	return domain.Order{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Phone:     strings.TrimSpace(req.PhoneNumber),
		Address:   strings.TrimSpace(req.Address),
		Lines:     lines,
	}
}
