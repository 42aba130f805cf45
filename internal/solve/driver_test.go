package solve_test

import (
	"context"
	"testing"
	"time"

	"github.com/pinggolf/clinker-planner/internal/assemble"
	"github.com/pinggolf/clinker-planner/internal/milp"
	"github.com/pinggolf/clinker-planner/internal/plan"
	"github.com/pinggolf/clinker-planner/internal/plant"
	"github.com/pinggolf/clinker-planner/internal/solve"
)

func floatPtr(f float64) *float64 { return &f }

func feasibleParams() *assemble.Parameters {
	return &assemble.Parameters{
		Horizon: 1,
		Plants: map[plant.Code]plant.Plant{
			"P1": {ID: "P1", Kind: plant.KindProducer, MaxCapacity: 100, ProductionCostPerUnit: 10, MaxProductionPerPeriod: floatPtr(50)},
			"C1": {ID: "C1", Kind: plant.KindConsumer, MaxCapacity: 100},
		},
		Producers: []plant.Code{"P1"},
		Consumers: []plant.Code{"C1"},
		Routes: []plant.Route{
			{ID: "P1->C1", Origin: "P1", Destination: "C1", Modes: []plant.Mode{
				{Code: "road", TransportCostPerUnit: 2, TripCapacity: 10},
			}},
		},
		Demand: map[plant.Code][]float64{"P1": {0}, "C1": {20}},
	}
}

func infeasibleParams() *assemble.Parameters {
	return &assemble.Parameters{
		Horizon: 1,
		Plants: map[plant.Code]plant.Plant{
			"P1": {ID: "P1", Kind: plant.KindProducer, MaxCapacity: 100, ProductionCostPerUnit: 1, MaxProductionPerPeriod: floatPtr(0)},
			"C1": {ID: "C1", Kind: plant.KindConsumer, MaxCapacity: 100},
		},
		Producers: []plant.Code{"P1"},
		Consumers: []plant.Code{"C1"},
		Demand:    map[plant.Code][]float64{"P1": {0}, "C1": {10}},
	}
}

func TestSolve_ReturnsOptimalForFeasibleModel(t *testing.T) {
	built, err := milp.Build(feasibleParams(), milp.Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	result := solve.Solve(context.Background(), built.M, solve.Options{})
	if result.Status != plan.StatusOptimal {
		t.Fatalf("Status = %v, want StatusOptimal", result.Status)
	}
	if result.Solution == nil || !result.Solution.HasValues() {
		t.Error("Solution has no values on an optimal result")
	}
	if result.Err != nil {
		t.Errorf("Err = %v, want nil on an optimal result", result.Err)
	}
}

func TestSolve_ReturnsInfeasibleWithoutError(t *testing.T) {
	built, err := milp.Build(infeasibleParams(), milp.Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	result := solve.Solve(context.Background(), built.M, solve.Options{})
	if result.Status != plan.StatusInfeasible {
		t.Fatalf("Status = %v, want StatusInfeasible", result.Status)
	}
	if result.Err != nil {
		t.Errorf("Err = %v, want nil: infeasibility is a status, not an error (spec §4.5)", result.Err)
	}
}

func TestSolve_HonoursContextDeadlineOverLongerOptionsTimeLimit(t *testing.T) {
	built, err := milp.Build(feasibleParams(), milp.Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// A tiny, trivially solvable model should still finish well inside both
	// the 5s context deadline and the one-hour options limit.
	result := solve.Solve(ctx, built.M, solve.Options{TimeLimit: time.Hour})
	if result.Status != plan.StatusOptimal {
		t.Fatalf("Status = %v, want StatusOptimal", result.Status)
	}
}
