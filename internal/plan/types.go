// Package plan holds the output contract of a solve: the plan record, its
// schedule, and its diagnostics, independent of how the solve was produced.
package plan

import "github.com/pinggolf/clinker-planner/internal/plant"

// Status is the termination status of a solve attempt.
type Status string

const (
	StatusOptimal    Status = "optimal"
	StatusInfeasible Status = "infeasible"
	StatusUnbounded  Status = "unbounded"
	StatusNotSolved  Status = "not_solved"
	StatusError      Status = "error"
)

// ScheduledTrip is one dispatched (route, mode, period) line in the plan.
type ScheduledTrip struct {
	Period            int
	RouteID           plant.Code
	OriginID          plant.Code
	DestinationID     plant.Code
	Mode              string
	NumTrips          int
	QuantityShipped   float64
}

// CostBreakdown decomposes TotalCost into its three objective sub-sums,
// re-evaluated from solved variable values rather than read off the solver's
// objective value (spec §4.6).
type CostBreakdown struct {
	Production float64
	Transport  float64
	Holding    float64
}

// Sum returns the three components summed; it should equal TotalCost within
// tolerance (the "cost identity" property, spec §8.4).
func (c CostBreakdown) Sum() float64 {
	return c.Production + c.Transport + c.Holding
}

// PlantDiagnostics aggregates per-plant metrics across the horizon.
type PlantDiagnostics struct {
	PlantID              plant.Code
	TotalProduction       float64
	AvgInventory          float64
	CapacityUtilisation   float64
}

// PeriodDiagnostics aggregates per-period metrics across the network.
type PeriodDiagnostics struct {
	Period     int
	Production float64
	Transport  float64
	NumTrips   int
}

// Summary holds network-wide diagnostics that are not naturally per-plant or
// per-period.
type Summary struct {
	NumActiveRoutes         int
	AvgInventoryUtilisation float64
}

// Diagnostics is the post-solve diagnostics bundle (spec §4.8).
type Diagnostics struct {
	PerPlant  []PlantDiagnostics
	PerPeriod []PeriodDiagnostics
	Summary   Summary
}

// Plan is the output record of a solve.
type Plan struct {
	Status Status

	// TotalCost is populated only when Status == StatusOptimal.
	TotalCost *float64

	ScheduledTrips []ScheduledTrip
	CostBreakdown  CostBreakdown
	Diagnostics    Diagnostics

	// Message records how the plan was produced, notably whether the
	// Fallback Orchestrator supplied emergency inflow.
	Message string
}

// IsOptimal reports whether the plan carries a usable solution.
func (p Plan) IsOptimal() bool { return p.Status == StatusOptimal }
