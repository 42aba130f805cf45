package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	_ "github.com/lib/pq"

	"github.com/pinggolf/clinker-planner/internal/plan"
	"github.com/pinggolf/clinker-planner/internal/plant"
)

// Store persists solve runs. It is a consumer of plan.Plan, not a dependency
// of it: the core optimisation packages (internal/assemble, internal/milp,
// internal/solve, internal/extract, internal/fallback, internal/diagnose)
// never import this package, so a solve never depends on Postgres being
// reachable.
type Store struct {
	db *sql.DB
}

// New wraps an already-open *sql.DB. Callers open it with
// sql.Open("postgres", dsn) and pass it in here.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// RunRecord is the persisted form of a plan.Plan: TotalCost is carried as a
// decimal.Decimal across the database boundary so repeated save/load cycles
// never accumulate floating-point drift in a reported monetary figure, even
// though the solve itself computes in float64 (matching the MILP backend's
// native numeric type).
type RunRecord struct {
	ID          uuid.UUID
	Status      plan.Status
	TotalCost   *decimal.Decimal
	Message     string
	Config      json.RawMessage
	ScheduledTrips []plan.ScheduledTrip
	PlantDiagnostics []plan.PlantDiagnostics
}

// SaveRun inserts a new run and its trips/diagnostics in one transaction.
func (s *Store) SaveRun(ctx context.Context, id uuid.UUID, p plan.Plan, config json.RawMessage) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var totalCost *decimal.Decimal
	if p.TotalCost != nil {
		d := decimal.NewFromFloat(*p.TotalCost)
		totalCost = &d
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO solve_runs (id, status, total_cost, message, config) VALUES ($1, $2, $3, $4, $5)`,
		id, string(p.Status), decimalOrNil(totalCost), p.Message, config,
	)
	if err != nil {
		return fmt.Errorf("insert solve_runs: %w", err)
	}

	for _, t := range p.ScheduledTrips {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO scheduled_trips (run_id, period, route_id, origin_id, destination_id, mode, num_trips, quantity)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			id, t.Period, string(t.RouteID), string(t.OriginID), string(t.DestinationID), t.Mode, t.NumTrips, t.QuantityShipped,
		)
		if err != nil {
			return fmt.Errorf("insert scheduled_trips: %w", err)
		}
	}

	for _, d := range p.Diagnostics.PerPlant {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO plant_diagnostics (run_id, plant_id, total_production, avg_inventory, capacity_utilisation)
			 VALUES ($1, $2, $3, $4, $5)`,
			id, string(d.PlantID), d.TotalProduction, d.AvgInventory, d.CapacityUtilisation,
		)
		if err != nil {
			return fmt.Errorf("insert plant_diagnostics: %w", err)
		}
	}

	return tx.Commit()
}

// GetRun loads a run and its child rows.
func (s *Store) GetRun(ctx context.Context, id uuid.UUID) (*RunRecord, error) {
	var rec RunRecord
	rec.ID = id
	var status string
	var totalCost sql.NullFloat64
	var message sql.NullString
	var config []byte

	row := s.db.QueryRowContext(ctx,
		`SELECT status, total_cost, message, config FROM solve_runs WHERE id = $1`, id)
	if err := row.Scan(&status, &totalCost, &message, &config); err != nil {
		return nil, fmt.Errorf("select solve_runs: %w", err)
	}
	rec.Status = plan.Status(status)
	rec.Message = message.String
	rec.Config = config
	if totalCost.Valid {
		d := decimal.NewFromFloat(totalCost.Float64)
		rec.TotalCost = &d
	}

	tripRows, err := s.db.QueryContext(ctx,
		`SELECT period, route_id, origin_id, destination_id, mode, num_trips, quantity
		 FROM scheduled_trips WHERE run_id = $1 ORDER BY period, route_id, mode`, id)
	if err != nil {
		return nil, fmt.Errorf("select scheduled_trips: %w", err)
	}
	defer tripRows.Close()
	for tripRows.Next() {
		var t plan.ScheduledTrip
		var routeID, originID, destID string
		if err := tripRows.Scan(&t.Period, &routeID, &originID, &destID, &t.Mode, &t.NumTrips, &t.QuantityShipped); err != nil {
			return nil, fmt.Errorf("scan scheduled_trips: %w", err)
		}
		t.RouteID, t.OriginID, t.DestinationID = plant.Code(routeID), plant.Code(originID), plant.Code(destID)
		rec.ScheduledTrips = append(rec.ScheduledTrips, t)
	}
	if err := tripRows.Err(); err != nil {
		return nil, err
	}

	diagRows, err := s.db.QueryContext(ctx,
		`SELECT plant_id, total_production, avg_inventory, capacity_utilisation
		 FROM plant_diagnostics WHERE run_id = $1 ORDER BY plant_id`, id)
	if err != nil {
		return nil, fmt.Errorf("select plant_diagnostics: %w", err)
	}
	defer diagRows.Close()
	for diagRows.Next() {
		var d plan.PlantDiagnostics
		var plantID string
		if err := diagRows.Scan(&plantID, &d.TotalProduction, &d.AvgInventory, &d.CapacityUtilisation); err != nil {
			return nil, fmt.Errorf("scan plant_diagnostics: %w", err)
		}
		d.PlantID = plant.Code(plantID)
		rec.PlantDiagnostics = append(rec.PlantDiagnostics, d)
	}
	if err := diagRows.Err(); err != nil {
		return nil, err
	}

	return &rec, nil
}

// ListRuns returns the most recently requested runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, status, total_cost, message, config FROM solve_runs ORDER BY requested_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("select solve_runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		var status string
		var totalCost sql.NullFloat64
		var message sql.NullString
		var config []byte
		if err := rows.Scan(&rec.ID, &status, &totalCost, &message, &config); err != nil {
			return nil, fmt.Errorf("scan solve_runs: %w", err)
		}
		rec.Status = plan.Status(status)
		rec.Message = message.String
		rec.Config = config
		if totalCost.Valid {
			d := decimal.NewFromFloat(totalCost.Float64)
			rec.TotalCost = &d
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func decimalOrNil(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	f, _ := d.Float64()
	return f
}
