// Package milp declares the multi-period MILP over the index space the
// Model Assembler produces: per-(plant, period) production and inventory,
// and per-(route, mode, period) shipment quantity and trip count.
package milp

import "github.com/pinggolf/clinker-planner/internal/plant"

// ProdIndex keys a per-producer, per-period production variable.
type ProdIndex struct {
	Plant  plant.Code
	Period int
}

// InvIndex keys a per-plant, per-period ending-inventory variable.
type InvIndex struct {
	Plant  plant.Code
	Period int
}

// ShipIndex keys a per-(route, mode, period) shipment quantity / trip count
// pair — the four-dimensional index space named in spec §1 (route carries
// origin and destination, so the three-field tuple spans origin, destination,
// mode and period at the plant level).
type ShipIndex struct {
	Route  plant.Code
	Mode   string
	Period int
}
