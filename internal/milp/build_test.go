package milp

import (
	"testing"

	"github.com/pinggolf/clinker-planner/internal/assemble"
	"github.com/pinggolf/clinker-planner/internal/plant"
)

func oneRouteOneModeParams() *assemble.Parameters {
	return &assemble.Parameters{
		Horizon: 2,
		Plants: map[plant.Code]plant.Plant{
			"P1": {ID: "P1", Kind: plant.KindProducer, MaxCapacity: 1000, ProductionCostPerUnit: 4},
			"C1": {ID: "C1", Kind: plant.KindConsumer, MaxCapacity: 1000},
		},
		Producers: []plant.Code{"P1"},
		Consumers: []plant.Code{"C1"},
		Routes: []plant.Route{
			{
				ID: "P1->C1", Origin: "P1", Destination: "C1",
				Modes: []plant.Mode{{Code: "road", TransportCostPerUnit: 2, TripCapacity: 10}},
			},
		},
		Demand: map[plant.Code][]float64{
			"P1": {0, 0},
			"C1": {8, 8},
		},
	}
}

func TestBuild_DeclaresExpectedVariableCounts(t *testing.T) {
	params := oneRouteOneModeParams()

	built, err := Build(params, Options{})
	if err != nil {
		t.Fatalf("Build() error = %v, want nil", err)
	}

	if got, want := len(built.Production), len(params.Producers)*params.Horizon; got != want {
		t.Errorf("len(Production) = %d, want %d", got, want)
	}
	if got, want := len(built.Inventory), len(params.Plants)*params.Horizon; got != want {
		t.Errorf("len(Inventory) = %d, want %d", got, want)
	}
	if got, want := len(built.Quantity), 1*params.Horizon; got != want {
		t.Errorf("len(Quantity) = %d, want %d (one route, one mode)", got, want)
	}
	if got, want := len(built.Trips), 1*params.Horizon; got != want {
		t.Errorf("len(Trips) = %d, want %d", got, want)
	}
	if len(built.Emergency) != 0 {
		t.Errorf("len(Emergency) = %d, want 0 when EnableEmergency is false", len(built.Emergency))
	}

	for t2 := 1; t2 <= params.Horizon; t2++ {
		if _, ok := built.Production[ProdIndex{Plant: "P1", Period: t2}]; !ok {
			t.Errorf("Production[P1,%d] missing", t2)
		}
		if _, ok := built.Quantity[ShipIndex{Route: "P1->C1", Mode: "road", Period: t2}]; !ok {
			t.Errorf("Quantity[P1->C1,road,%d] missing", t2)
		}
	}
}

func TestBuild_EnableEmergencyDeclaresEmergencyVariables(t *testing.T) {
	params := oneRouteOneModeParams()

	built, err := Build(params, Options{EnableEmergency: true, EmergencyUnitCost: 1_000_000})
	if err != nil {
		t.Fatalf("Build() error = %v, want nil", err)
	}

	if got, want := len(built.Emergency), len(params.Plants)*params.Horizon; got != want {
		t.Errorf("len(Emergency) = %d, want %d", got, want)
	}
}

func TestBuild_NoProducerVariablesForConsumerOnlyPlant(t *testing.T) {
	params := oneRouteOneModeParams()

	built, err := Build(params, Options{})
	if err != nil {
		t.Fatalf("Build() error = %v, want nil", err)
	}

	for t2 := 1; t2 <= params.Horizon; t2++ {
		if _, ok := built.Production[ProdIndex{Plant: "C1", Period: t2}]; ok {
			t.Errorf("Production[C1,%d] present, want absent: C1 is a consumer", t2)
		}
	}
}

func TestRouteByID(t *testing.T) {
	params := oneRouteOneModeParams()

	r, ok := RouteByID(params, "P1->C1")
	if !ok {
		t.Fatal("RouteByID(P1->C1) ok = false, want true")
	}
	if r.Origin != "P1" || r.Destination != "C1" {
		t.Errorf("RouteByID(P1->C1) = %+v, want Origin=P1 Destination=C1", r)
	}

	if _, ok := RouteByID(params, "does-not-exist"); ok {
		t.Error("RouteByID(does-not-exist) ok = true, want false")
	}
}
