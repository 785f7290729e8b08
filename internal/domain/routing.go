package domain

// RoutingStatus is the outcome of a routing pass for one order.
type RoutingStatus string

const (
	// Candidates were ranked; the list may be empty when no restaurant qualifies.
	RoutingRanked RoutingStatus = "ranked"
	// The delivery address could not be resolved to coordinates in this pass.
	RoutingGeoFailed RoutingStatus = "geo_failed"
	// A restaurant is already assigned; no candidates are computed.
	RoutingAssigned RoutingStatus = "assigned"
)

// Candidate is a restaurant able to fulfil an order, with its distance
// to the delivery address at full precision.
type Candidate struct {
	RestaurantID   int64
	RestaurantName string
	DistanceKm     float64
}

// RoutingResult is computed fresh on every pass and never persisted.
type RoutingResult struct {
	OrderID    int64
	Status     RoutingStatus
	Candidates []Candidate
}

// RoutingReport holds per-order results of one routing pass, in input order.
type RoutingReport struct {
	Results []RoutingResult
	byOrder map[int64]int
}

func NewRoutingReport(capacity int) *RoutingReport {
	return &RoutingReport{
		Results: make([]RoutingResult, 0, capacity),
		byOrder: make(map[int64]int, capacity),
	}
}

func (r *RoutingReport) Add(res RoutingResult) {
	r.byOrder[res.OrderID] = len(r.Results)
	r.Results = append(r.Results, res)
}

// For returns the routing result for the given order id.
func (r *RoutingReport) For(orderID int64) (RoutingResult, bool) {
	i, ok := r.byOrder[orderID]
	if !ok {
		return RoutingResult{}, false
	}
	return r.Results[i], true
}
