package main

import (
	"context"
	"database/sql"
	"delivery-simulation/internal/adapters/repositories"
	"delivery-simulation/internal/config"
	"delivery-simulation/internal/platform/db"
	"delivery-simulation/internal/platform/obs"
	"flag"
	"strings"

	"github.com/rs/zerolog/log"
)

// dbtool prepares the Postgres event store and path cache, and optionally
// reports what a run stored.
func main() {
	runID := flag.String("run", "", "print event counts for this run id")
	flag.Parse()

	if err := config.Load(config.Get("SIM_CONFIG_DIR", ".")); err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger := obs.NewLogger(config.GetString("log.level"), nil)

	databaseURL := config.GetString("db.url")
	if strings.TrimSpace(databaseURL) == "" {
		databaseURL = config.Get("DATABASE_URL", "")
	}
	if strings.TrimSpace(databaseURL) == "" {
		logger.Fatal().Msg("db.url (SIM_DB_URL) or DATABASE_URL is required")
	}

	db, err := db.Open(databaseURL)
	if err != nil {
		logger.Fatal().Err(err).Send()
	}
	defer db.Close()

	logger.Info().Msg("initializing postgres schema...")
	if err := repositories.InitPostgresSchema(db); err != nil {
		logger.Fatal().Err(err).Msg("schema initialization failed")
	}
	logger.Info().Msg("schema ready")

	if *runID != "" {
		ctx := obs.WithLogger(context.Background(), logger)
		if err := report(ctx, db, *runID); err != nil {
			logger.Fatal().Err(err).Msg("report failed")
		}
	}
}

func report(ctx context.Context, db *sql.DB, runID string) (err error) {
	defer obs.Time(ctx, "dbtool.report")(&err)

	rows, err := db.QueryContext(ctx, `
	SELECT event_type, COUNT(*), MAX(tick)
	FROM sim_events
	WHERE run_id = $1
	GROUP BY event_type
	ORDER BY event_type;
	`, runID)
	if err != nil {
		return err
	}
	defer rows.Close()

	l := obs.FromContext(ctx)
	for rows.Next() {
		var (
			kind  string
			count int64
			last  int64
		)
		if err := rows.Scan(&kind, &count, &last); err != nil {
			return err
		}
		l.Info().Str("run", runID).Str("type", kind).Int64("count", count).Int64("last_tick", last).Msg("events")
	}
	return rows.Err()
}
