package diagnose

import (
	"context"
	"math"
	"testing"

	"github.com/pinggolf/clinker-planner/internal/assemble"
	"github.com/pinggolf/clinker-planner/internal/milp"
	"github.com/pinggolf/clinker-planner/internal/plan"
	"github.com/pinggolf/clinker-planner/internal/plant"
	"github.com/pinggolf/clinker-planner/internal/solve"
)

func solvedModel(t *testing.T) (*milp.Model, plan.Diagnostics) {
	t.Helper()
	params := &assemble.Parameters{
		Horizon: 1,
		Plants: map[plant.Code]plant.Plant{
			"P1": {ID: "P1", Kind: plant.KindProducer, MaxCapacity: 100, ProductionCostPerUnit: 10, MaxProductionPerPeriod: ptr(50)},
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
	built, err := milp.Build(params, milp.Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	result := solve.Solve(context.Background(), built.M, solve.Options{})
	if result.Status != plan.StatusOptimal {
		t.Fatalf("status = %v, want optimal", result.Status)
	}
	return built, Diagnose(result.Solution, built)
}

func ptr(f float64) *float64 { return &f }

func TestDiagnose_PerPlantProduction(t *testing.T) {
	_, d := solvedModel(t)

	var p1 *plan.PlantDiagnostics
	for i := range d.PerPlant {
		if d.PerPlant[i].PlantID == "P1" {
			p1 = &d.PerPlant[i]
		}
	}
	if p1 == nil {
		t.Fatal("no PlantDiagnostics for P1")
	}
	if math.Abs(p1.TotalProduction-20) > 1e-6 {
		t.Errorf("P1.TotalProduction = %v, want 20", p1.TotalProduction)
	}
}

func TestDiagnose_PerPeriodTransportAndTrips(t *testing.T) {
	_, d := solvedModel(t)
	if len(d.PerPeriod) != 1 {
		t.Fatalf("len(PerPeriod) = %d, want 1", len(d.PerPeriod))
	}
	pd := d.PerPeriod[0]
	if math.Abs(pd.Transport-40) > 1e-6 {
		t.Errorf("Transport = %v, want 40 (20 units at unit cost 2)", pd.Transport)
	}
	if pd.NumTrips != 2 {
		t.Errorf("NumTrips = %d, want 2", pd.NumTrips)
	}
}

func TestDiagnose_SummaryActiveRoutes(t *testing.T) {
	_, d := solvedModel(t)
	if d.Summary.NumActiveRoutes != 1 {
		t.Errorf("NumActiveRoutes = %d, want 1", d.Summary.NumActiveRoutes)
	}
}

func TestNewRegistry_RunAll_NoFindingsOnHealthyPlan(t *testing.T) {
	d := plan.Diagnostics{
		PerPlant: []plan.PlantDiagnostics{
			{PlantID: "P1", CapacityUtilisation: 0.5},
		},
		Summary: plan.Summary{NumActiveRoutes: 1},
	}
	findings := NewRegistry().RunAll(d)
	if len(findings) != 0 {
		t.Errorf("RunAll() = %v, want no findings for a mid-utilisation plant with an active network", findings)
	}
}

func TestLowInventoryCheck_FlagsNearFloorUtilisation(t *testing.T) {
	d := plan.Diagnostics{PerPlant: []plan.PlantDiagnostics{
		{PlantID: "P1", CapacityUtilisation: 0.02},
	}}
	findings := lowInventoryCheck{}.Run(d)
	if len(findings) != 1 {
		t.Fatalf("len(findings) = %d, want 1", len(findings))
	}
	if findings[0].PlantID != "P1" {
		t.Errorf("PlantID = %q, want P1", findings[0].PlantID)
	}
}

func TestOverUtilisationCheck_FlagsNearCapacity(t *testing.T) {
	d := plan.Diagnostics{PerPlant: []plan.PlantDiagnostics{
		{PlantID: "P1", CapacityUtilisation: 0.99},
	}}
	findings := overUtilisationCheck{}.Run(d)
	if len(findings) != 1 {
		t.Fatalf("len(findings) = %d, want 1", len(findings))
	}
}

func TestIdleRouteCheck_FlagsZeroActiveRoutes(t *testing.T) {
	d := plan.Diagnostics{Summary: plan.Summary{NumActiveRoutes: 0}}
	findings := idleRouteCheck{}.Run(d)
	if len(findings) != 1 {
		t.Fatalf("len(findings) = %d, want 1", len(findings))
	}
	if findings[0].Check != "idle_network" {
		t.Errorf("Check = %q, want idle_network", findings[0].Check)
	}
}
