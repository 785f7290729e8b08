package services

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"foodcart-routing-service/internal/domain"
	"foodcart-routing-service/internal/platform/obs"
	"foodcart-routing-service/internal/ports"
)

// UnknownProductsError rejects an order naming products missing from the catalogue.
type UnknownProductsError struct {
	IDs []int64
}

func (e *UnknownProductsError) Error() string {
	return fmt.Sprintf("unknown products %v", e.IDs)
}

// OrderIntake accepts customer orders.
type OrderIntake struct {
	orders   ports.OrderRepository
	products ports.ProductRepository
	now      func() time.Time
}

func NewOrderIntake(orders ports.OrderRepository, products ports.ProductRepository) *OrderIntake {
	return &OrderIntake{orders: orders, products: products, now: time.Now}
}

// Place stores draft as a new order. Every line must name a catalogue product;
// line prices are copied from the catalogue, the status is reset to new and an
// empty payment method defaults to cash.
func (in *OrderIntake) Place(ctx context.Context, draft domain.Order) (_ *domain.Order, err error) {
	defer obs.Time(ctx, "orders.Place")(&err)

	if len(draft.Lines) == 0 {
		return nil, eris.New("order intake: order has no lines")
	}
	for _, l := range draft.Lines {
		if l.Quantity < domain.MinLineQuantity || l.Quantity > domain.MaxLineQuantity {
			return nil, eris.Errorf("order intake: quantity %d for product %d out of range", l.Quantity, l.ProductID)
		}
	}

	catalogue, err := in.products.ListProducts(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "order intake: load products")
	}
	prices := make(map[int64]domain.Product, len(catalogue))
	for _, p := range catalogue {
		prices[p.ID] = p
	}

	o := draft
	o.ID = 0
	o.Status = domain.StatusNew
	o.RestaurantID = nil
	o.CalledAt = nil
	o.DeliveredAt = nil
	o.CreatedAt = in.now().UTC()
	if o.PaymentMethod == "" {
		o.PaymentMethod = domain.PaymentCash
	}

	var unknown []int64
	o.Lines = make([]domain.OrderLine, 0, len(draft.Lines))
	for _, l := range draft.Lines {
		p, ok := prices[l.ProductID]
		if !ok {
			if !slices.Contains(unknown, l.ProductID) {
				unknown = append(unknown, l.ProductID)
			}
			continue
		}
		o.Lines = append(o.Lines, domain.OrderLine{ProductID: p.ID, Quantity: l.Quantity, Price: p.Price})
	}
	if len(unknown) > 0 {
		return nil, &UnknownProductsError{IDs: unknown}
	}

	if err := in.orders.CreateOrder(ctx, &o); err != nil {
		return nil, eris.Wrap(err, "order intake: store order")
	}

	zap.L().Info("order placed",
		zap.String("req_id", obs.RequestID(ctx)),
		zap.Int64("order_id", o.ID),
		zap.Int("lines", len(o.Lines)),
		zap.String("total", o.Total().StringFixed(2)),
	)
	return &o, nil
}
