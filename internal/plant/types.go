// Package plant holds the static network entities the planning core reasons
// about: plants (producers and consumers), routes between them, and the
// transport modes a route offers.
package plant

// Kind distinguishes an Integrated Unit (producer) from a Grinding Unit
// (consumer).
type Kind string

const (
	// KindProducer is an Integrated Unit (IU): may manufacture clinker.
	KindProducer Kind = "IU"
	// KindConsumer is a Grinding Unit (GU): only consumes clinker.
	KindConsumer Kind = "GU"
)

// Plant is a node in the network: a producer or a consumer.
type Plant struct {
	ID Code
	Kind

	InitialInventory float64
	MaxCapacity       float64
	SafetyStock       float64

	HoldingCostPerUnit float64

	// Meaningful only when Kind == KindProducer.
	ProductionCostPerUnit float64
	// MaxProductionPerPeriod is nil when no cap was supplied for this producer.
	MaxProductionPerPeriod *float64
}

// Code identifies a plant or route by its external identifier.
type Code string

// IsProducer reports whether the plant may manufacture clinker.
func (p Plant) IsProducer() bool { return p.Kind == KindProducer }

// Mode is a transport option on a Route, with its own per-unit cost and
// per-trip vehicle capacity.
type Mode struct {
	Code string

	// TransportCostPerUnit averages freight + handling cost observed for this
	// mode across the periods present in the logistics table.
	TransportCostPerUnit float64
	// HandlingCostPerUnit is the portion of TransportCostPerUnit attributable
	// to handling. It is informational: the objective prices handling through
	// TransportCostPerUnit and adds no separate handling term.
	HandlingCostPerUnit float64
	TripCapacity        float64
}

// Route is a directed (origin, destination) pair offering one or more
// transport Modes. Routes are deduplicated by (origin, destination); a second
// logistics row for the same pair merges its mode into the existing Route.
type Route struct {
	ID          Code
	Origin      Code
	Destination Code
	// MinBatchQuantity (SBQ) is the minimum shipped quantity per dispatched
	// trip on this route, shared across all of its modes.
	MinBatchQuantity float64
	Modes            []Mode
}

// ModeByCode returns the Mode with the given code, or false if the route does
// not offer it.
func (r Route) ModeByCode(code string) (Mode, bool) {
	for _, m := range r.Modes {
		if m.Code == code {
			return m, true
		}
	}
	return Mode{}, false
}
