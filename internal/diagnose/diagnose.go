// Package diagnose aggregates per-plant and per-period metrics from a solved
// MILP model: total production, average inventory, capacity utilisation,
// period transport/production splits, and network-wide summary figures
// (spec §4.8).
package diagnose

import (
	"github.com/nextmv-io/sdk/mip"

	"github.com/pinggolf/clinker-planner/internal/milp"
	"github.com/pinggolf/clinker-planner/internal/plan"
	"github.com/pinggolf/clinker-planner/internal/plant"
)

// Diagnose computes per-plant, per-period, and summary metrics by reading
// solved variable values off solution, mirroring how Extract re-evaluates
// the cost breakdown rather than trusting a derived record (spec §4.6, §4.8).
func Diagnose(solution mip.Solution, built *milp.Model) plan.Diagnostics {
	p := built.Params

	return plan.Diagnostics{
		PerPlant:  perPlant(solution, built),
		PerPeriod: perPeriod(solution, built),
		Summary:   summary(solution, built, p.Horizon),
	}
}

func perPlant(solution mip.Solution, built *milp.Model) []plan.PlantDiagnostics {
	p := built.Params

	out := make([]plan.PlantDiagnostics, 0, len(p.Plants))
	for id, pl := range p.Plants {
		var totalProduction float64
		if pl.IsProducer() {
			for t := 1; t <= p.Horizon; t++ {
				totalProduction += solution.Value(built.Production[milp.ProdIndex{Plant: id, Period: t}])
			}
		}

		var invSum float64
		for t := 1; t <= p.Horizon; t++ {
			invSum += solution.Value(built.Inventory[milp.InvIndex{Plant: id, Period: t}])
		}
		avgInv := invSum / float64(p.Horizon)

		util := 0.0
		if pl.MaxCapacity > 0 {
			util = avgInv / pl.MaxCapacity
		}

		out = append(out, plan.PlantDiagnostics{
			PlantID:             id,
			TotalProduction:     totalProduction,
			AvgInventory:        avgInv,
			CapacityUtilisation: util,
		})
	}
	return out
}

func perPeriod(solution mip.Solution, built *milp.Model) []plan.PeriodDiagnostics {
	p := built.Params

	out := make([]plan.PeriodDiagnostics, 0, p.Horizon)
	for t := 1; t <= p.Horizon; t++ {
		d := plan.PeriodDiagnostics{Period: t}

		for _, id := range p.Producers {
			cost := p.Plants[id].ProductionCostPerUnit
			d.Production += cost * solution.Value(built.Production[milp.ProdIndex{Plant: id, Period: t}])
		}

		for _, r := range p.Routes {
			for _, mo := range r.Modes {
				idx := milp.ShipIndex{Route: r.ID, Mode: mo.Code, Period: t}
				d.Transport += mo.TransportCostPerUnit * solution.Value(built.Quantity[idx])
				if tripsVar, ok := built.Trips[idx]; ok {
					d.NumTrips += int(roundNonNegative(solution.Value(tripsVar)))
				}
			}
		}

		out = append(out, d)
	}
	return out
}

func summary(solution mip.Solution, built *milp.Model, horizon int) plan.Summary {
	p := built.Params

	active := map[plant.Code]bool{}
	for _, r := range p.Routes {
		for _, mo := range r.Modes {
			for t := 1; t <= horizon; t++ {
				idx := milp.ShipIndex{Route: r.ID, Mode: mo.Code, Period: t}
				if solution.Value(built.Quantity[idx]) > quantityEpsilon {
					active[r.ID] = true
				}
			}
		}
	}

	var utilSum float64
	plants := perPlant(solution, built)
	for _, pd := range plants {
		utilSum += pd.CapacityUtilisation
	}
	avgUtil := 0.0
	if len(plants) > 0 {
		avgUtil = utilSum / float64(len(plants))
	}

	return plan.Summary{
		NumActiveRoutes:         len(active),
		AvgInventoryUtilisation: avgUtil,
	}
}

// quantityEpsilon mirrors internal/extract's tolerance for treating a
// shipped quantity as zero.
const quantityEpsilon = 1e-9

func roundNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return float64(int64(v + 0.5))
}
