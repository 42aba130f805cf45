// Package extract reads solved variable values into a plan.Plan: the
// schedule of dispatched trips and the cost breakdown, re-evaluated from
// variable values rather than read off the solver's objective (spec §4.6).
package extract

import (
	"math"
	"sort"

	"github.com/nextmv-io/sdk/mip"

	"github.com/pinggolf/clinker-planner/internal/milp"
	"github.com/pinggolf/clinker-planner/internal/plan"
)

// quantityEpsilon is the tolerance below which a shipped quantity is treated
// as zero (spec §4.6: "quantity > 10^-9").
const quantityEpsilon = 1e-9

// Extract builds the scheduled-trip list and cost breakdown from a solved
// Solution over built, per spec §4.6.
func Extract(solution mip.Solution, built *milp.Model) plan.Plan {
	trips := extractTrips(solution, built)
	sort.Slice(trips, func(i, j int) bool {
		if trips[i].Period != trips[j].Period {
			return trips[i].Period < trips[j].Period
		}
		if trips[i].RouteID != trips[j].RouteID {
			return trips[i].RouteID < trips[j].RouteID
		}
		return trips[i].Mode < trips[j].Mode
	})

	breakdown := costBreakdown(solution, built)
	total := breakdown.Sum()

	return plan.Plan{
		Status:         plan.StatusOptimal,
		TotalCost:      &total,
		ScheduledTrips: trips,
		CostBreakdown:  breakdown,
	}
}

// extractTrips emits one record per (route, mode, period) with trips rounded
// to the nearest integer > 0 or quantity > quantityEpsilon.
func extractTrips(solution mip.Solution, built *milp.Model) []plan.ScheduledTrip {
	var trips []plan.ScheduledTrip
	for idx := range built.Quantity {
		qty := solution.Value(built.Quantity[idx])
		tripsVar, ok := built.Trips[idx]
		numTrips := 0
		if ok {
			numTrips = int(math.Round(solution.Value(tripsVar)))
		}
		if numTrips <= 0 && qty <= quantityEpsilon {
			continue
		}
		route, ok := milp.RouteByID(built.Params, idx.Route)
		if !ok {
			continue
		}
		trips = append(trips, plan.ScheduledTrip{
			Period:          idx.Period,
			RouteID:         route.ID,
			OriginID:        route.Origin,
			DestinationID:   route.Destination,
			Mode:            idx.Mode,
			NumTrips:        numTrips,
			QuantityShipped: qty,
		})
	}
	return trips
}

// costBreakdown re-evaluates the three objective sub-sums on solved variable
// values (spec §4.6: "not by re-reading the objective value").
func costBreakdown(solution mip.Solution, built *milp.Model) plan.CostBreakdown {
	var out plan.CostBreakdown
	p := built.Params

	for _, id := range p.Producers {
		cost := p.Plants[id].ProductionCostPerUnit
		for t := 1; t <= p.Horizon; t++ {
			out.Production += cost * solution.Value(built.Production[milp.ProdIndex{Plant: id, Period: t}])
		}
	}

	for _, r := range p.Routes {
		for _, mo := range r.Modes {
			for t := 1; t <= p.Horizon; t++ {
				idx := milp.ShipIndex{Route: r.ID, Mode: mo.Code, Period: t}
				out.Transport += mo.TransportCostPerUnit * solution.Value(built.Quantity[idx])
			}
		}
	}

	for id, pl := range p.Plants {
		for t := 1; t <= p.Horizon; t++ {
			out.Holding += pl.HoldingCostPerUnit * solution.Value(built.Inventory[milp.InvIndex{Plant: id, Period: t}])
		}
	}

	return out
}
