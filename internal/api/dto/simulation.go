package dto

type TickRequest struct {
	Count int `json:"count"`
}

type EventResponse struct {
	Seq       int    `json:"seq"`
	Type      string `json:"type"`
	VehicleID *int   `json:"vehicle_id"`
	Component string `json:"component"`
	Previous  string `json:"previous,omitempty"`
	OrderID   *int   `json:"order_id,omitempty"`
}

type TickResponse struct {
	Tick   int64           `json:"tick"`
	Events []EventResponse `json:"events"`
}

// TicksResponse carries every tick that completed; Error is set when the
// run failed after them.
type TicksResponse struct {
	RunID string         `json:"run_id"`
	Ticks []TickResponse `json:"ticks"`
	Error string         `json:"error,omitempty"`
}

type ResetResponse struct {
	RunID string `json:"run_id"`
}

type AddVehicleRequest struct {
	X        int     `json:"x"`
	Y        int     `json:"y"`
	Capacity float64 `json:"capacity"`
}

type AddVehicleResponse struct {
	VehicleID int `json:"vehicle_id"`
}

type VehicleResponse struct {
	VehicleID int     `json:"vehicle_id"`
	Capacity  float64 `json:"capacity"`
	Load      float64 `json:"load"`
	At        string  `json:"at"`
	OnEdge    bool    `json:"on_edge"`
	Spawned   bool    `json:"spawned"`
	OrderIDs  []int   `json:"order_ids"`
	Segments  int     `json:"segments"`
}

type ListVehiclesResponse struct {
	Vehicles []VehicleResponse `json:"vehicles"`
}

type OccupancyResponse struct {
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	VehicleIDs []int  `json:"vehicle_ids"`
}

type StateResponse struct {
	RunID         string              `json:"run_id"`
	Tick          int64               `json:"tick"`
	PendingOrders int                 `json:"pending_orders"`
	Failed        string              `json:"failed,omitempty"`
	Vehicles      []VehicleResponse   `json:"vehicles"`
	Occupancy     []OccupancyResponse `json:"occupancy"`
}

type RecordResponse struct {
	RunID string `json:"run_id"`
	Tick  int64  `json:"tick"`
	EventResponse
}

type ListEventsResponse struct {
	Events []RecordResponse `json:"events"`
}
