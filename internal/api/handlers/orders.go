package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"foodcart-routing-service/internal/api/dto"
	"foodcart-routing-service/internal/domain"
	"foodcart-routing-service/internal/ports"
	"foodcart-routing-service/internal/services"
)

const maxOrderBody = 64 << 10

// OrderHandler serves the manager's order list with a fresh routing pass per
// request, and accepts new customer orders.
type OrderHandler struct {
	Orders      ports.OrderRepository
	Restaurants ports.RestaurantRepository
	Pass        *services.RoutingPass
	Intake      *services.OrderIntake
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	routed, err := services.RouteActiveOrders(r.Context(), h.Orders, h.Restaurants, h.Pass)
	if err != nil {
		internalError(w, r, "route active orders", err)
		return
	}

	res := dto.ListOrdersResponse{
		Orders: make([]dto.OrderResponse, 0, len(routed.Orders)),
	}
	for _, o := range routed.Orders {
		item := toOrderResponse(o)
		if routing, ok := routed.Report.For(o.ID); ok {
			rr := dto.NewRoutingResponse(routing)
			item.Routing = &rr
		}
		res.Orders = append(res.Orders, item)
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateOrderRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxOrderBody)).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if problems := req.Validate(); problems != nil {
		writeJSON(w, r, http.StatusBadRequest, dto.ValidationErrorResponse{Error: "invalid order", Fields: problems})
		return
	}

	order, err := h.Intake.Place(r.Context(), req.Order())
	var unknown *services.UnknownProductsError
	switch {
	case errors.As(err, &unknown):
		writeJSON(w, r, http.StatusBadRequest, dto.ValidationErrorResponse{
			Error:  "invalid order",
			Fields: map[string]string{"products": fmt.Sprintf("unknown product ids %v", unknown.IDs)},
		})
		return
	case err != nil:
		internalError(w, r, "place order", err)
		return
	}

	writeJSON(w, r, http.StatusCreated, toOrderResponse(order))
}

func toOrderResponse(o *domain.Order) dto.OrderResponse {
	lines := make([]dto.OrderLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, dto.OrderLineResponse{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Price:     l.Price.StringFixed(2),
		})
	}

	return dto.OrderResponse{
		ID:            o.ID,
		FirstName:     o.FirstName,
		LastName:      o.LastName,
		Phone:         o.Phone,
		Address:       o.Address,
		Status:        string(o.Status),
		StatusLabel:   o.Status.Label(),
		PaymentMethod: string(o.PaymentMethod),
		Comments:      o.Comments,
		CreatedAt:     o.CreatedAt,
		RestaurantID:  o.RestaurantID,
		Total:         o.Total().StringFixed(2),
		Lines:         lines,
	}
}
