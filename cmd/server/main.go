package main

import (
	"context"
	"database/sql"
	"delivery-simulation/internal/adapters/cache"
	"delivery-simulation/internal/adapters/events"
	"delivery-simulation/internal/adapters/orders"
	"delivery-simulation/internal/adapters/pathing"
	"delivery-simulation/internal/adapters/repositories"
	"delivery-simulation/internal/api"
	"delivery-simulation/internal/config"
	"delivery-simulation/internal/domain"
	"delivery-simulation/internal/platform/db"
	"delivery-simulation/internal/platform/obs"
	"delivery-simulation/internal/ports"
	"delivery-simulation/internal/services"
	"delivery-simulation/internal/simulation"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// main is the application composition root.
// It wires concrete adapters (SQLite, Postgres, Redis) behind ports and starts the HTTP server.
func main() {
	if err := config.Load(config.Get("SIM_CONFIG_DIR", ".")); err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	var w io.Writer
	if !config.GetBool("log.pretty") {
		w = os.Stderr
	}
	logger := obs.NewLogger(config.GetString("log.level"), w)
	log.Logger = logger
	ctx := obs.WithLogger(context.Background(), logger)

	st := &stores{url: config.GetString("db.url"), log: logger}
	defer st.Close()

	var err error
	st.sqlite, err = db.OpenSqlite(config.GetString("db.path"))
	if err != nil {
		logger.Fatal().Err(err).Msg("open sqlite")
	}

	// Initialize schema and seed the region on startup for local runs.
	if err := initAndSeed(st.sqlite, config.GetString("seed.path")); err != nil {
		logger.Fatal().Err(err).Msg("seed")
	}

	region, err := repositories.NewSqliteRegionRepository(st.sqlite).LoadRegion(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("load region")
	}
	logger.Info().
		Int("nodes", len(region.Nodes())).
		Int("edges", len(region.Edges())).
		Str("hash", regionNamespace(region)).
		Msg("region loaded")

	dijkstra, err := pathing.NewDijkstraPathCalculator(region)
	if err != nil {
		logger.Fatal().Err(err).Send()
	}
	paths, err := withPathCache(ctx, dijkstra, region, st, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("path calculator")
	}

	manager, err := simulation.NewManager(region, paths, logger)
	if err != nil {
		logger.Fatal().Err(err).Send()
	}
	var deliveryOpts []services.DeliveryOption
	switch stops := config.GetString("delivery.stops"); stops {
	case "", "load":
	case "nearest":
		deliveryOpts = append(deliveryOpts, services.WithStopOrder(services.NearestNeighborStops(dijkstra)))
	default:
		logger.Fatal().Str("delivery.stops", stops).Msg("unknown stop order")
	}
	delivery, err := services.NewBasicDeliveryService(manager, logger, deliveryOpts...)
	if err != nil {
		logger.Fatal().Err(err).Send()
	}

	gen, err := orders.LoadScheduledOrderGenerator(ctx, repositories.NewSqliteOrderRepository(st.sqlite), region)
	if err != nil {
		logger.Fatal().Err(err).Msg("load orders")
	}
	logger.Info().Int("orders", gen.Len()).Msg("order schedule loaded")

	recentLimit := config.GetInt("events.recent")
	recent := events.NewRecentSink(recentLimit)
	sinks, err := buildSinks(st, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("event sinks")
	}
	sink := events.NewFanoutSink(append(sinks, recent)...)

	metrics, err := obs.NewSimMetrics(obs.Meter())
	if err != nil {
		logger.Fatal().Err(err).Msg("metrics")
	}

	sim, err := services.NewSimulation(delivery, gen, sink, services.WithLogger(logger), services.WithMetrics(metrics))
	if err != nil {
		logger.Fatal().Err(err).Send()
	}

	fleet, err := config.Vehicles()
	if err != nil {
		logger.Fatal().Err(err).Msg("vehicles")
	}
	for _, v := range fleet {
		id, err := sim.AddVehicle(domain.Location{X: v.X, Y: v.Y}, v.Capacity)
		if err != nil {
			logger.Fatal().Err(err).Msg("add vehicle")
		}
		logger.Debug().Int("vehicle", id).Int("x", v.X).Int("y", v.Y).Float64("capacity", v.Capacity).Msg("vehicle queued")
	}

	if n := config.GetInt("sim.ticks"); n > 0 {
		if _, err := sim.Run(ctx, n); err != nil {
			logger.Fatal().Err(err).Msg("warm-up run")
		}
	}

	router := api.NewRouter(sim, recent, recentLimit, logger)

	port := config.GetString("server.port")
	logger.Info().Str("addr", ":"+port).Str("run", sim.RunID()).Msg("server listening")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	logger.Fatal().Err(srv.ListenAndServe()).Msg("server stopped")
}

// stores holds the SQLite handle and opens Postgres on first use.
type stores struct {
	sqlite *sql.DB
	pg     *sql.DB
	url    string
	log    zerolog.Logger
}

func (s *stores) postgres() (*sql.DB, error) {
	if s.pg != nil {
		return s.pg, nil
	}
	if strings.TrimSpace(s.url) == "" {
		return nil, errors.New("postgres: db.url is required")
	}
	pg, err := db.Open(s.url)
	if err != nil {
		return nil, err
	}
	if err := repositories.InitPostgresSchema(pg); err != nil {
		_ = pg.Close()
		return nil, err
	}
	s.pg = pg
	return pg, nil
}

func (s *stores) Close() {
	for _, h := range []*sql.DB{s.pg, s.sqlite} {
		if h == nil {
			continue
		}
		if err := h.Close(); err != nil {
			s.log.Warn().Err(err).Msg("close db")
		}
	}
}

func regionNamespace(region *domain.Region) string {
	return fmt.Sprintf("%016x", region.Hash())
}

// withPathCache wraps Dijkstra with the configured cache:
// none, sqlite, postgres or redis.
func withPathCache(
	ctx context.Context,
	dijkstra *pathing.DijkstraPathCalculator,
	region *domain.Region,
	st *stores,
	logger zerolog.Logger,
) (ports.PathCalculator, error) {
	ns := regionNamespace(region)
	var pc ports.PathCache
	switch kind := strings.ToLower(config.GetString("cache.paths")); kind {
	case "", "none":
		return dijkstra, nil
	case "sqlite":
		pc = cache.NewSqlitePathCache(st.sqlite, ns)
	case "postgres":
		pg, err := st.postgres()
		if err != nil {
			return nil, fmt.Errorf("path cache: %w", err)
		}
		pc = cache.NewSQLPathCache(pg, ns)
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: config.GetString("redis.addr")})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("path cache: redis ping %s: %w", config.GetString("redis.addr"), err)
		}
		pc = cache.NewRedisPathCache(client, ns, config.GetDuration("redis.ttl"))
	default:
		return nil, fmt.Errorf("path cache: unknown kind %q", kind)
	}

	return pathing.NewCachedPathCalculator(dijkstra, pc, region, logger)
}

// buildSinks returns one sink per name in events.sink.
func buildSinks(st *stores, logger zerolog.Logger) ([]ports.EventSink, error) {
	var sinks []ports.EventSink
	for _, name := range config.GetList("events.sink") {
		switch strings.ToLower(name) {
		case "sqlite":
			sinks = append(sinks, events.NewSqliteEventSink(st.sqlite))
		case "postgres":
			pg, err := st.postgres()
			if err != nil {
				return nil, fmt.Errorf("event sink: %w", err)
			}
			sinks = append(sinks, events.NewSQLEventSink(pg))
		case "log":
			sinks = append(sinks, events.NewLogEventSink(logger))
		case "none":
		default:
			return nil, fmt.Errorf("event sink: unknown kind %q", name)
		}
	}
	return sinks, nil
}

func initAndSeed(db *sql.DB, seedPath string) error {
	if err := repositories.InitSchema(db); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if err := repositories.SeedFromJSON(db, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}
