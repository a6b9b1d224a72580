package api

import (
	"delivery-simulation/internal/api/handlers"
	"net/http"

	"github.com/rs/zerolog"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(sim handlers.Simulator, recent handlers.EventLog, recentLimit int, log zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	simHandler := &handlers.SimulationHandler{Sim: sim}
	eventHandler := &handlers.EventHandler{Log: recent, DefaultLimit: recentLimit}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/ticks", simHandler.Ticks)
	mux.HandleFunc("/reset", simHandler.Reset)
	mux.HandleFunc("/state", simHandler.State)
	mux.HandleFunc("/vehicles", simHandler.Vehicles)
	mux.HandleFunc("/events", eventHandler.List)

	return loggingMiddleware(log, mux)
}
