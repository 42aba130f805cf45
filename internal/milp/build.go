package milp

import (
	"math"

	"github.com/nextmv-io/sdk/mip"

	"github.com/pinggolf/clinker-planner/internal/assemble"
	"github.com/pinggolf/clinker-planner/internal/plant"
)

// emergencyUpperBound caps the Emergency inflow variable; it only needs to be
// large enough to cover the worst-case unmet demand in one period, which can
// never exceed the sum of all demand across the horizon.
const emergencyUpperBound = 1e12

// tripUpperBound caps the integer Trips variable. A route-mode can never need
// more trips than would be required to ship the entire horizon's demand in a
// single period at minimum capacity, so a generous fixed bound keeps the
// branch-and-cut search space small without constraining any real solution.
const tripUpperBound = 1_000_000

// Options controls which optional constraint families are built.
type Options struct {
	// EnableEmergency adds a per-(plant, period) Emergency inflow variable
	// and penalises it in the objective (spec §4.7, the Fallback
	// Orchestrator's rebuild).
	EnableEmergency bool
	// EmergencyUnitCost is the per-unit penalty coefficient; must exceed the
	// largest plausible legitimate cost per unit (spec §4.7, §6.3).
	EmergencyUnitCost float64
}

// Model is a built MILP together with the variable indices needed to read a
// solution back (spec §4.3, §4.6).
type Model struct {
	M mip.Model

	Production map[ProdIndex]mip.Float
	Inventory  map[InvIndex]mip.Float
	Quantity   map[ShipIndex]mip.Float
	Trips      map[ShipIndex]mip.Int
	Emergency  map[InvIndex]mip.Float

	Params *assemble.Parameters
}

// Build declares the objective and constraints of spec §4.3 over the index
// space assemble.Parameters describes. It returns a fresh Model every call;
// no state is retained between builds (spec §5).
func Build(params *assemble.Parameters, opts Options) (*Model, error) {
	m := mip.NewModel()
	m.Objective().SetMinimize()

	built := &Model{
		M:          m,
		Production: map[ProdIndex]mip.Float{},
		Inventory:  map[InvIndex]mip.Float{},
		Quantity:   map[ShipIndex]mip.Float{},
		Trips:      map[ShipIndex]mip.Int{},
		Emergency:  map[InvIndex]mip.Float{},
		Params:     params,
	}

	declareVariables(m, built, opts)
	declareShipmentConstraints(m, built)
	declareProductionCapConstraints(m, built)
	declareInventoryBalance(m, built, opts)
	declareStockBounds(m, built)
	declareObjective(m, built, opts)

	return built, nil
}

func declareVariables(m mip.Model, built *Model, opts Options) {
	p := built.Params

	for _, id := range p.Producers {
		for t := 1; t <= p.Horizon; t++ {
			built.Production[ProdIndex{id, t}] = m.NewFloat(0, math.MaxFloat64)
		}
	}
	for id := range p.Plants {
		for t := 1; t <= p.Horizon; t++ {
			built.Inventory[InvIndex{id, t}] = m.NewFloat(0, p.Plants[id].MaxCapacity)
			if opts.EnableEmergency {
				built.Emergency[InvIndex{id, t}] = m.NewFloat(0, emergencyUpperBound)
			}
		}
	}
	for _, r := range p.Routes {
		for _, mo := range r.Modes {
			for t := 1; t <= p.Horizon; t++ {
				idx := ShipIndex{r.ID, mo.Code, t}
				built.Quantity[idx] = m.NewFloat(0, math.MaxFloat64)
				built.Trips[idx] = m.NewInt(0, tripUpperBound)
			}
		}
	}
}

// declareShipmentConstraints builds constraint families 1 and 2: shipment
// capacity (Qty <= Trips * tripCapacity) and the minimum-batch link
// (Qty >= Trips * sbq), vacuous when sbq == 0 (spec §4.3).
func declareShipmentConstraints(m mip.Model, built *Model) {
	for _, r := range built.Params.Routes {
		for _, mo := range r.Modes {
			for t := 1; t <= built.Params.Horizon; t++ {
				idx := ShipIndex{r.ID, mo.Code, t}
				qty := built.Quantity[idx]
				trips := built.Trips[idx]

				capacity := m.NewConstraint(mip.LessThanOrEqual, 0)
				capacity.NewTerm(1, qty)
				capacity.NewTerm(-mo.TripCapacity, trips)

				if r.MinBatchQuantity > 0 {
					batch := m.NewConstraint(mip.GreaterThanOrEqual, 0)
					batch.NewTerm(1, qty)
					batch.NewTerm(-r.MinBatchQuantity, trips)
				}
			}
		}
	}
}

// declareProductionCapConstraints builds constraint family 3.
func declareProductionCapConstraints(m mip.Model, built *Model) {
	for _, id := range built.Params.Producers {
		cap := built.Params.Plants[id].MaxProductionPerPeriod
		if cap == nil {
			continue
		}
		for t := 1; t <= built.Params.Horizon; t++ {
			c := m.NewConstraint(mip.LessThanOrEqual, *cap)
			c.NewTerm(1, built.Production[ProdIndex{id, t}])
		}
	}
}

// declareInventoryBalance builds constraint family 4 (spec invariant 1):
// inv[p,t] = prev(p,t) + produced(p,t) + inflow(p,t) - outflow(p,t) - demand[p,t].
func declareInventoryBalance(m mip.Model, built *Model, opts Options) {
	p := built.Params

	inbound := make(map[InvIndex][]mip.Float)
	outbound := make(map[InvIndex][]mip.Float)
	for _, r := range p.Routes {
		for _, mo := range r.Modes {
			for t := 1; t <= p.Horizon; t++ {
				qty := built.Quantity[ShipIndex{r.ID, mo.Code, t}]
				inbound[InvIndex{r.Destination, t}] = append(inbound[InvIndex{r.Destination, t}], qty)
				outbound[InvIndex{r.Origin, t}] = append(outbound[InvIndex{r.Origin, t}], qty)
			}
		}
	}

	// inv[p,t] - prev(p,t) - produced(p,t) - inflow(p,t) + outflow(p,t) = -demand[p,t]
	// prev(p,t) is either the period-(t-1) inventory variable, or, for t==1,
	// the constant initial_inventory(p) folded into the right-hand side.
	for id, pl := range p.Plants {
		for t := 1; t <= p.Horizon; t++ {
			idx := InvIndex{id, t}

			rhs := -p.Demand[id][t-1]
			if t == 1 {
				rhs += pl.InitialInventory
			}

			c := m.NewConstraint(mip.Equal, rhs)
			c.NewTerm(1, built.Inventory[idx])
			if t > 1 {
				c.NewTerm(-1, built.Inventory[InvIndex{id, t - 1}])
			}
			if pl.IsProducer() {
				c.NewTerm(-1, built.Production[ProdIndex{id, t}])
			}
			for _, in := range inbound[idx] {
				c.NewTerm(-1, in)
			}
			for _, out := range outbound[idx] {
				c.NewTerm(1, out)
			}
			if opts.EnableEmergency {
				c.NewTerm(-1, built.Emergency[idx])
			}
		}
	}
}

// declareStockBounds builds constraint families 5 and 6: safety stock and
// maximum inventory. Maximum inventory is already encoded in the variable's
// upper bound (declareVariables); safety stock needs an explicit lower-bound
// constraint since mip.Float's lower bound there is fixed at 0.
func declareStockBounds(m mip.Model, built *Model) {
	for id, pl := range built.Params.Plants {
		if pl.SafetyStock <= 0 {
			continue
		}
		for t := 1; t <= built.Params.Horizon; t++ {
			c := m.NewConstraint(mip.GreaterThanOrEqual, pl.SafetyStock)
			c.NewTerm(1, built.Inventory[InvIndex{id, t}])
		}
	}
}

func declareObjective(m mip.Model, built *Model, opts Options) {
	p := built.Params
	obj := m.Objective()

	for _, id := range p.Producers {
		cost := p.Plants[id].ProductionCostPerUnit
		for t := 1; t <= p.Horizon; t++ {
			obj.NewTerm(cost, built.Production[ProdIndex{id, t}])
		}
	}

	for _, r := range p.Routes {
		for _, mo := range r.Modes {
			for t := 1; t <= p.Horizon; t++ {
				idx := ShipIndex{r.ID, mo.Code, t}
				// mo.TransportCostPerUnit already folds in handling cost
				// (spec §4.2 "averages freight + handling"), so it's the
				// only per-unit coefficient the objective needs here;
				// internal/extract's cost breakdown re-evaluates this same
				// single Transport term rather than splitting it back out.
				obj.NewTerm(mo.TransportCostPerUnit, built.Quantity[idx])
			}
		}
	}

	for id, pl := range p.Plants {
		for t := 1; t <= p.Horizon; t++ {
			obj.NewTerm(pl.HoldingCostPerUnit, built.Inventory[InvIndex{id, t}])
		}
	}

	if opts.EnableEmergency {
		for id := range p.Plants {
			for t := 1; t <= p.Horizon; t++ {
				obj.NewTerm(opts.EmergencyUnitCost, built.Emergency[InvIndex{id, t}])
			}
		}
	}
}

// RouteByID looks up a route by identifier; used by the Strategic Compiler
// and Plan Extractor to resolve scopes back to route/mode metadata.
func RouteByID(p *assemble.Parameters, id plant.Code) (plant.Route, bool) {
	for _, r := range p.Routes {
		if r.ID == id {
			return r, true
		}
	}
	return plant.Route{}, false
}
