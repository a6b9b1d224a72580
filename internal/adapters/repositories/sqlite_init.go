package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Initialize the SQLite database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createNodesQuery := `
	CREATE TABLE IF NOT EXISTS nodes (
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		PRIMARY KEY (x, y)
	);
	`

	createFoodQuery := `
	CREATE TABLE IF NOT EXISTS restaurant_food (
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		position INTEGER NOT NULL,
		food TEXT NOT NULL,
		PRIMARY KEY (x, y, position)
	);
	`

	createEdgesQuery := `
	CREATE TABLE IF NOT EXISTS edges (
		a_x INTEGER NOT NULL,
		a_y INTEGER NOT NULL,
		b_x INTEGER NOT NULL,
		b_y INTEGER NOT NULL,
		name TEXT NOT NULL,
		duration INTEGER NOT NULL,
		PRIMARY KEY (a_x, a_y, b_x, b_y)
	);
	`

	createOrdersQuery := `
	CREATE TABLE IF NOT EXISTS orders (
		order_id INTEGER PRIMARY KEY,
		received_at INTEGER NOT NULL,
		restaurant_x INTEGER NOT NULL,
		restaurant_y INTEGER NOT NULL,
		destination_x INTEGER NOT NULL,
		destination_y INTEGER NOT NULL,
		window_start INTEGER NOT NULL,
		window_end INTEGER NOT NULL,
		foods TEXT NOT NULL,
		weight REAL NOT NULL
	);
	`

	createEventsQuery := `
	CREATE TABLE IF NOT EXISTS sim_events (
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		seq INTEGER NOT NULL,
		event_type TEXT NOT NULL,
		vehicle_id INTEGER NOT NULL,
		component TEXT NOT NULL,
		previous TEXT NOT NULL,
		order_id INTEGER,
		PRIMARY KEY (run_id, tick, seq)
	);
	`

	createPathCacheQuery := `
	CREATE TABLE IF NOT EXISTS path_cache (
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		hops TEXT NOT NULL,
		PRIMARY KEY (origin, destination)
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_orders_received_at
	ON orders(received_at);
	`

	statements := []string{
		createNodesQuery,
		createFoodQuery,
		createEdgesQuery,
		createOrdersQuery,
		createEventsQuery,
		createPathCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type LocationSeed struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type NodeSeed struct {
	Name     string       `json:"name"`
	Location LocationSeed `json:"location"`
	Kind     string       `json:"kind"`
	Food     []string     `json:"food,omitempty"`
}

type EdgeSeed struct {
	Name     string       `json:"name"`
	A        LocationSeed `json:"a"`
	B        LocationSeed `json:"b"`
	Duration int64        `json:"duration"`
}

type OrderSeed struct {
	OrderID     int          `json:"order_id"`
	ReceivedAt  int64        `json:"received_at"`
	Restaurant  LocationSeed `json:"restaurant"`
	Destination LocationSeed `json:"destination"`
	WindowStart int64        `json:"window_start"`
	WindowEnd   int64        `json:"window_end"`
	Foods       []string     `json:"foods"`
	Weight      float64      `json:"weight"`
}

// Seed is the JSON layout of a region together with its order schedule.
type Seed struct {
	Nodes  []NodeSeed  `json:"nodes"`
	Edges  []EdgeSeed  `json:"edges"`
	Orders []OrderSeed `json:"orders"`
}

// Populate the database with region and order data from a JSON file.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed region: read %q: %w", jsonPath, err)
	}

	var data Seed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed region: parse json: %w", err)
	}

	return SeedRegion(db, data)
}

// SeedRegion validates data and writes it in one transaction.
func SeedRegion(db *sql.DB, data Seed) error {
	if db == nil {
		return errors.New("seed region: DB is nil")
	}

	for i, n := range data.Nodes {
		if strings.TrimSpace(n.Name) == "" {
			return fmt.Errorf("seed region: node at index %d: name cannot be empty", i+1)
		}
		if _, err := parseKind(n.Kind); err != nil {
			return fmt.Errorf("seed region: node %q: %w", n.Name, err)
		}
	}
	for i, e := range data.Edges {
		if e.Duration <= 0 {
			return fmt.Errorf("seed region: edge at index %d: duration must be positive: %d", i+1, e.Duration)
		}
	}
	for i, o := range data.Orders {
		if o.OrderID <= 0 {
			return fmt.Errorf("seed region: invalid order_id at index %d: %d", i+1, o.OrderID)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed region: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, n := range data.Nodes {
		if _, err := tx.Exec(`
		INSERT OR REPLACE INTO nodes (x, y, name, kind)
		VALUES (?, ?, ?, ?);
		`, n.Location.X, n.Location.Y, strings.TrimSpace(n.Name), strings.ToLower(n.Kind)); err != nil {
			return fmt.Errorf("seed region: insert node %q: %w", n.Name, err)
		}
		if _, err := tx.Exec(`DELETE FROM restaurant_food WHERE x = ? AND y = ?;`, n.Location.X, n.Location.Y); err != nil {
			return fmt.Errorf("seed region: clear food %q: %w", n.Name, err)
		}
		for pos, food := range n.Food {
			if _, err := tx.Exec(`
			INSERT INTO restaurant_food (x, y, position, food)
			VALUES (?, ?, ?, ?);
			`, n.Location.X, n.Location.Y, pos, food); err != nil {
				return fmt.Errorf("seed region: insert food %q for %q: %w", food, n.Name, err)
			}
		}
	}

	for _, e := range data.Edges {
		a, b := e.A, e.B
		if a.X > b.X || (a.X == b.X && a.Y > b.Y) {
			a, b = b, a
		}
		if _, err := tx.Exec(`
		INSERT OR REPLACE INTO edges (a_x, a_y, b_x, b_y, name, duration)
		VALUES (?, ?, ?, ?, ?, ?);
		`, a.X, a.Y, b.X, b.Y, e.Name, e.Duration); err != nil {
			return fmt.Errorf("seed region: insert edge %q: %w", e.Name, err)
		}
	}

	stmt, err := tx.Prepare(`
	INSERT OR REPLACE INTO orders (
		order_id,
		received_at,
		restaurant_x,
		restaurant_y,
		destination_x,
		destination_y,
		window_start,
		window_end,
		foods,
		weight
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("seed region: prepare order insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range data.Orders {
		foods, err := json.Marshal(o.Foods)
		if err != nil {
			return fmt.Errorf("seed region: encode foods of order %d: %w", o.OrderID, err)
		}
		if _, err := stmt.Exec(
			o.OrderID, o.ReceivedAt,
			o.Restaurant.X, o.Restaurant.Y,
			o.Destination.X, o.Destination.Y,
			o.WindowStart, o.WindowEnd,
			string(foods), o.Weight,
		); err != nil {
			return fmt.Errorf("seed region: insert order_id=%d: %w", o.OrderID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed region: commit tx: %w", err)
	}

	return nil
}
