package handlers

import (
	"context"
	"delivery-simulation/internal/adapters/events"
	"delivery-simulation/internal/api/dto"
	"delivery-simulation/internal/domain"
	"delivery-simulation/internal/platform/obs"
	"delivery-simulation/internal/services"
	"errors"
	"net/http"
)

const maxTicksPerRequest = 1000

// Simulator is the part of services.Simulation the handlers drive.
type Simulator interface {
	Run(ctx context.Context, n int) ([]services.StepResult, error)
	Reset() string
	AddVehicle(loc domain.Location, capacity float64) (int, error)
	Snapshot() services.Snapshot
}

type SimulationHandler struct {
	Sim Simulator
}

// Ticks advances the simulation by the requested number of ticks (default 1)
// and returns the events of each.
func (h *SimulationHandler) Ticks(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}

	var req dto.TickRequest
	if !decodeBody(w, r, &req) {
		return
	}
	count := req.Count
	if count == 0 {
		count = 1
	}
	if count < 1 || count > maxTicksPerRequest {
		writeError(w, r, http.StatusBadRequest, "count must be between 1 and 1000")
		return
	}

	results, err := h.Sim.Run(r.Context(), count)

	res := dto.TicksResponse{Ticks: make([]dto.TickResponse, 0, len(results))}
	for _, step := range results {
		res.RunID = step.RunID
		tr := dto.TickResponse{Tick: step.Tick, Events: make([]dto.EventResponse, 0, len(step.Events))}
		for _, rec := range events.Flatten(step.RunID, step.Tick, step.Events) {
			tr.Events = append(tr.Events, eventResponse(rec))
		}
		res.Ticks = append(res.Ticks, tr)
	}

	if err != nil {
		obs.FromContext(r.Context()).Error().Err(err).Int("ticks_done", len(results)).Msg("run ticks failed")
		status := http.StatusInternalServerError
		res.Error = "simulation tick failed"
		if errors.Is(err, services.ErrRunFailed) {
			status = http.StatusConflict
			res.Error = "simulation run failed; reset required"
		}
		writeJSON(w, r, status, res)
		return
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Reset starts a new run.
func (h *SimulationHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}

	runID := h.Sim.Reset()
	writeJSON(w, r, http.StatusOK, dto.ResetResponse{RunID: runID})
}

// Vehicles lists the fleet on GET and queues a new vehicle on POST.
func (h *SimulationHandler) Vehicles(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		snap := h.Sim.Snapshot()
		writeJSON(w, r, http.StatusOK, dto.ListVehiclesResponse{Vehicles: vehicleResponses(snap)})
	case http.MethodPost:
		var req dto.AddVehicleRequest
		if !decodeBody(w, r, &req) {
			return
		}
		id, err := h.Sim.AddVehicle(domain.Location{X: req.X, Y: req.Y}, req.Capacity)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, r, http.StatusCreated, dto.AddVehicleResponse{VehicleID: id})
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// State returns the current tick, fleet and non-empty occupancy records.
func (h *SimulationHandler) State(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}

	snap := h.Sim.Snapshot()
	res := dto.StateResponse{
		RunID:         snap.RunID,
		Tick:          snap.Tick,
		PendingOrders: snap.Pending,
		Failed:        snap.Failed,
		Vehicles:      vehicleResponses(snap),
		Occupancy:     make([]dto.OccupancyResponse, 0, len(snap.Occupancy)),
	}
	for _, occ := range snap.Occupancy {
		res.Occupancy = append(res.Occupancy, dto.OccupancyResponse{
			Name:       occ.Name,
			Kind:       occ.Kind,
			VehicleIDs: occ.Vehicles,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

func vehicleResponses(snap services.Snapshot) []dto.VehicleResponse {
	out := make([]dto.VehicleResponse, 0, len(snap.Vehicles))
	for _, v := range snap.Vehicles {
		orders := v.Orders
		if orders == nil {
			orders = []int{}
		}
		out = append(out, dto.VehicleResponse{
			VehicleID: v.ID,
			Capacity:  v.Capacity,
			Load:      v.Load,
			At:        v.At,
			OnEdge:    v.OnEdge,
			Spawned:   v.Spawned,
			OrderIDs:  orders,
			Segments:  v.Stops,
		})
	}
	return out
}
