package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusNew       OrderStatus = "NW"
	StatusAppointed OrderStatus = "AP"
	StatusPreparing OrderStatus = "PR"
	StatusDelivery  OrderStatus = "DL"
	StatusCompleted OrderStatus = "CP"
	StatusCancelled OrderStatus = "CN"
)

// ActiveStatuses lists the statuses shown to managers, in display order.
var ActiveStatuses = []OrderStatus{StatusNew, StatusAppointed, StatusPreparing, StatusDelivery}

// Rank orders statuses along the order lifecycle. Unknown statuses sort last.
func (s OrderStatus) Rank() int {
	switch s {
	case StatusNew:
		return 0
	case StatusAppointed:
		return 1
	case StatusPreparing:
		return 2
	case StatusDelivery:
		return 3
	case StatusCompleted:
		return 4
	case StatusCancelled:
		return 5
	default:
		return 6
	}
}

func (s OrderStatus) Label() string {
	switch s {
	case StatusNew:
		return "new"
	case StatusAppointed:
		return "appointed"
	case StatusPreparing:
		return "preparing"
	case StatusDelivery:
		return "delivery"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "CS"
	PaymentCard       PaymentMethod = "CD"
	PaymentElectronic PaymentMethod = "EL"
)

// Bounds for OrderLine.Quantity.
const (
	MinLineQuantity = 1
	MaxLineQuantity = 99
)

// OrderLine is one product position of an order.
// Price is copied from the product when the order is placed.
type OrderLine struct {
	ProductID int64
	Quantity  int
	Price     decimal.Decimal
}

// Order is a customer order awaiting fulfilment.
// RestaurantID is set once a manager has assigned a performing restaurant.
type Order struct {
	ID            int64
	FirstName     string
	LastName      string
	Phone         string
	Address       string
	Status        OrderStatus
	PaymentMethod PaymentMethod
	Comments      string
	CreatedAt     time.Time
	CalledAt      *time.Time
	DeliveredAt   *time.Time
	RestaurantID  *int64
	Lines         []OrderLine
}

// Assigned reports whether a restaurant has already been chosen for the order.
func (o *Order) Assigned() bool {
	return o.RestaurantID != nil
}

// Total is the sum of quantity * price across all lines.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}
