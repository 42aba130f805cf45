// Package assemble derives the index sets, parameter maps, and plant/route
// bounds the MILP Builder needs from the Tabular Loader's typed rows.
package assemble

import (
	"sort"

	"github.com/pinggolf/clinker-planner/internal/plant"
	"github.com/pinggolf/clinker-planner/internal/tabular"
)

// Parameters is everything the MILP Builder needs to declare variables and
// constraints: the plant set, the route set, the demand map, and the horizon.
// It is produced fresh by Assemble for every solve (spec §5: "the Builder
// returns a fresh model per invocation"; Parameters is the Builder's input).
type Parameters struct {
	Horizon int

	Plants    map[plant.Code]plant.Plant
	Producers []plant.Code
	Consumers []plant.Code

	Routes []plant.Route

	// Demand[plantID][period-1] is the demand quantity; missing series
	// default to zero for the full horizon (spec §3).
	Demand map[plant.Code][]float64
}

// Assemble builds Parameters from the Loader's typed Tables, rejecting
// structurally invalid references or invariant violations eagerly (spec §4.2,
// §7: "the Assembler rejects eagerly").
func Assemble(t *tabular.Tables) (*Parameters, error) {
	horizon := computeHorizon(t)

	plants, err := assemblePlants(t, horizon)
	if err != nil {
		return nil, err
	}

	routes, err := assembleRoutes(t, plants)
	if err != nil {
		return nil, err
	}

	demand, err := assembleDemand(t, plants, horizon)
	if err != nil {
		return nil, err
	}

	var producers, consumers []plant.Code
	for id, p := range plants {
		if p.IsProducer() {
			producers = append(producers, id)
		} else {
			consumers = append(consumers, id)
		}
	}
	sort.Slice(producers, func(i, j int) bool { return producers[i] < producers[j] })
	sort.Slice(consumers, func(i, j int) bool { return consumers[i] < consumers[j] })

	return &Parameters{
		Horizon:   horizon,
		Plants:    plants,
		Producers: producers,
		Consumers: consumers,
		Routes:    routes,
		Demand:    demand,
	}, nil
}

// computeHorizon derives T = max(1, observed maximum period) across every
// table that carries a period column (spec §4.2).
func computeHorizon(t *tabular.Tables) int {
	max := 1
	bump := func(p int) {
		if p > max {
			max = p
		}
	}
	for _, r := range t.ClosingStock {
		bump(r.Period)
	}
	for _, r := range t.ProductionCost {
		bump(r.Period)
	}
	for _, r := range t.ProductionCapacity {
		bump(r.Period)
	}
	for _, r := range t.Demand {
		bump(r.Period)
	}
	for _, r := range t.Logistics {
		bump(r.Period)
	}
	for _, r := range t.StrategicConstraints {
		bump(r.Period)
	}
	return max
}

func assemblePlants(t *tabular.Tables, horizon int) (map[plant.Code]plant.Plant, error) {
	plants := make(map[plant.Code]plant.Plant, len(t.NodeTypes))

	for _, row := range t.NodeTypes {
		id := plant.Code(row.PlantID)
		if _, exists := plants[id]; exists {
			return nil, &DuplicatePlantError{PlantID: row.PlantID}
		}
		kind := plant.KindConsumer
		if row.Kind == string(plant.KindProducer) {
			kind = plant.KindProducer
		}
		plants[id] = plant.Plant{ID: id, Kind: kind}
	}

	openingByPlant := map[plant.Code]float64{}
	for _, row := range t.OpeningStock {
		openingByPlant[plant.Code(row.PlantID)] = row.Quantity
	}

	minCloseByPlant := map[plant.Code]float64{}
	haveMinClose := map[plant.Code]bool{}
	maxCloseByPlant := map[plant.Code]float64{}
	haveMaxClose := map[plant.Code]bool{}
	for _, row := range t.ClosingStock {
		id := plant.Code(row.PlantID)
		if !haveMinClose[id] || row.MinClose < minCloseByPlant[id] {
			minCloseByPlant[id] = row.MinClose
			haveMinClose[id] = true
		}
		if row.MaxClose != nil {
			if !haveMaxClose[id] || *row.MaxClose > maxCloseByPlant[id] {
				maxCloseByPlant[id] = *row.MaxClose
				haveMaxClose[id] = true
			}
		}
	}

	holdingCostByPlant := map[plant.Code]float64{}
	// Holding cost has no dedicated input table in spec §6.1; callers that
	// need non-zero holding cost supply it via WithHoldingCost. Per spec §9
	// Open Question 3, absence is treated as exactly 0 — never a fabricated
	// default.

	costByProducer, capByProducer := aggregateProducerCosts(t)

	for id, p := range plants {
		p.InitialInventory = openingByPlant[id]
		p.SafetyStock = minCloseByPlant[id]
		p.MaxCapacity = maxCloseByPlant[id]
		p.HoldingCostPerUnit = holdingCostByPlant[id]

		// Clamp so initial <= capacity and safety <= capacity (spec §4.2).
		if p.InitialInventory > p.MaxCapacity {
			p.MaxCapacity = p.InitialInventory
		}
		if p.SafetyStock > p.MaxCapacity {
			p.MaxCapacity = p.SafetyStock
		}
		if p.MaxCapacity <= 0 {
			return nil, &InvariantError{PlantID: string(id), Reason: "max capacity must be > 0; no closing-stock data found for this plant"}
		}

		if p.IsProducer() {
			p.ProductionCostPerUnit = costByProducer[id]
			if cap, ok := capByProducer[id]; ok {
				c := cap
				p.MaxProductionPerPeriod = &c
			}
		}

		plants[id] = p
	}

	return plants, nil
}

// aggregateProducerCosts computes the mean production cost per unit across
// periods, and the per-period production cap, for every producer that
// appears in the respective tables.
func aggregateProducerCosts(t *tabular.Tables) (cost map[plant.Code]float64, cap map[plant.Code]float64) {
	cost = map[plant.Code]float64{}
	costSum := map[plant.Code]float64{}
	costCount := map[plant.Code]int{}
	for _, row := range t.ProductionCost {
		id := plant.Code(row.ProducerID)
		costSum[id] += row.CostPerUnit
		costCount[id]++
	}
	for id, sum := range costSum {
		cost[id] = sum / float64(costCount[id])
	}

	cap = map[plant.Code]float64{}
	for _, row := range t.ProductionCapacity {
		id := plant.Code(row.ProducerID)
		// Production cap is per-period; the Assembler surfaces the per-period
		// cap used uniformly across periods as the maximum observed, since
		// the MILP Builder applies one per-period cap value per producer
		// (spec §4.3 constraint family 3).
		if row.Capacity > cap[id] {
			cap[id] = row.Capacity
		}
	}
	return cost, cap
}

func assembleRoutes(t *tabular.Tables, plants map[plant.Code]plant.Plant) ([]plant.Route, error) {
	type key struct{ origin, dest plant.Code }

	routesByKey := map[key]*plant.Route{}
	var order []key

	// freight+handling averaged per (origin, dest, mode) across periods
	// (reference behaviour per spec §4.2 / §9 Open Question 1), with the
	// observed capacity multiplier (last one wins, matching a single
	// per-route-mode vehicle spec rather than a per-period fleet change).
	type modeAgg struct {
		freightSum, handlingSum float64
		count                   int
		capacity                float64
	}
	modeAggByKey := map[key]map[string]*modeAgg{}

	for _, row := range t.Logistics {
		origin := plant.Code(row.OriginID)
		dest := plant.Code(row.DestinationID)

		op, ok := plants[origin]
		if !ok {
			return nil, &ReferenceError{Kind: "route", Ref: row.OriginID, Reason: "unknown plant"}
		}
		if !op.IsProducer() {
			return nil, &ReferenceError{Kind: "route", Ref: row.OriginID, Reason: "origin is not a producer"}
		}
		if _, ok := plants[dest]; !ok {
			return nil, &ReferenceError{Kind: "route", Ref: row.DestinationID, Reason: "unknown plant"}
		}
		if origin == dest {
			return nil, &ReferenceError{Kind: "route", Ref: string(origin), Reason: "self-loop route"}
		}

		k := key{origin, dest}
		if _, exists := routesByKey[k]; !exists {
			routesByKey[k] = &plant.Route{
				ID:          plant.Code(string(origin) + "->" + string(dest)),
				Origin:      origin,
				Destination: dest,
			}
			modeAggByKey[k] = map[string]*modeAgg{}
			order = append(order, k)
		}

		agg := modeAggByKey[k][row.ModeCode]
		if agg == nil {
			agg = &modeAgg{}
			modeAggByKey[k][row.ModeCode] = agg
		}
		agg.freightSum += row.FreightCost
		agg.handlingSum += row.HandlingCost
		agg.count++
		agg.capacity = row.CapacityMultiplier
	}

	routes := make([]plant.Route, 0, len(order))
	for _, k := range order {
		r := routesByKey[k]
		modeCodes := make([]string, 0, len(modeAggByKey[k]))
		for code := range modeAggByKey[k] {
			modeCodes = append(modeCodes, code)
		}
		sort.Strings(modeCodes)
		for _, code := range modeCodes {
			agg := modeAggByKey[k][code]
			n := float64(agg.count)
			r.Modes = append(r.Modes, plant.Mode{
				Code:                  code,
				TransportCostPerUnit:  (agg.freightSum + agg.handlingSum) / n,
				HandlingCostPerUnit:   agg.handlingSum / n,
				TripCapacity:          agg.capacity,
			})
		}
		routes = append(routes, *r)
	}

	return routes, nil
}

func assembleDemand(t *tabular.Tables, plants map[plant.Code]plant.Plant, horizon int) (map[plant.Code][]float64, error) {
	demand := make(map[plant.Code][]float64, len(plants))
	for id := range plants {
		demand[id] = make([]float64, horizon)
	}
	for _, row := range t.Demand {
		id := plant.Code(row.ConsumerID)
		if _, ok := plants[id]; !ok {
			return nil, &ReferenceError{Kind: "demand", Ref: row.ConsumerID, Reason: "unknown plant"}
		}
		if row.Period < 1 || row.Period > horizon {
			continue
		}
		// Spec §9 Open Question 2: demand rows may target producers too; the
		// balance equation is applied uniformly, so no kind check here.
		demand[id][row.Period-1] = row.Demand
	}
	return demand, nil
}

// WithHoldingCost sets an explicit per-unit holding cost on the named plant,
// modifying p in place; an unknown plant ID is ignored. The eight canonical tables in
// spec §6.1 carry no holding-cost column; callers that have one (e.g. from a
// ninth, locally-maintained cost table) apply it this way rather than the
// Assembler fabricating a non-zero default (spec §9 Open Question 3).
func (p *Parameters) WithHoldingCost(id plant.Code, perUnit float64) {
	if pl, ok := p.Plants[id]; ok {
		pl.HoldingCostPerUnit = perUnit
		p.Plants[id] = pl
	}
}
