package diagnose

import (
	"fmt"

	"github.com/pinggolf/clinker-planner/internal/plan"
)

// Finding is one issue surfaced by a Check against a solved plan's
// diagnostics.
type Finding struct {
	Check   string
	PlantID string
	Message string
}

// Check inspects a Diagnostics bundle and reports any issues of its kind.
// Adapted from the toolbox's IssueDetector/DetectorRegistry pattern: each
// Check is self-describing and stateless, and the Registry runs all of them
// over one Diagnostics bundle.
type Check interface {
	Name() string
	Run(d plan.Diagnostics) []Finding
}

// Registry runs a set of registered Checks over a Diagnostics bundle.
type Registry struct {
	checks []Check
}

// NewRegistry returns a Registry with the standard checks registered.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Register(lowInventoryCheck{})
	r.Register(overUtilisationCheck{})
	r.Register(idleRouteCheck{})
	return r
}

// Register adds a Check to the registry.
func (r *Registry) Register(c Check) {
	r.checks = append(r.checks, c)
}

// RunAll runs every registered Check over d and returns the combined findings.
func (r *Registry) RunAll(d plan.Diagnostics) []Finding {
	var out []Finding
	for _, c := range r.checks {
		out = append(out, c.Run(d)...)
	}
	return out
}

// lowInventoryCheck flags plants whose average inventory sits at or below a
// small fraction of observed capacity, which usually signals a safety-stock
// floor that is binding almost every period.
type lowInventoryCheck struct{}

func (lowInventoryCheck) Name() string { return "low_inventory" }

func (lowInventoryCheck) Run(d plan.Diagnostics) []Finding {
	const lowUtilisationThreshold = 0.05
	var out []Finding
	for _, pd := range d.PerPlant {
		if pd.CapacityUtilisation > 0 && pd.CapacityUtilisation <= lowUtilisationThreshold {
			out = append(out, Finding{
				Check:   "low_inventory",
				PlantID: string(pd.PlantID),
				Message: fmt.Sprintf("average inventory utilisation %.1f%% is close to the safety-stock floor", pd.CapacityUtilisation*100),
			})
		}
	}
	return out
}

// overUtilisationCheck flags plants running close to max capacity on
// average, which leaves little headroom to absorb a demand spike.
type overUtilisationCheck struct{}

func (overUtilisationCheck) Name() string { return "over_utilisation" }

func (overUtilisationCheck) Run(d plan.Diagnostics) []Finding {
	const highUtilisationThreshold = 0.95
	var out []Finding
	for _, pd := range d.PerPlant {
		if pd.CapacityUtilisation >= highUtilisationThreshold {
			out = append(out, Finding{
				Check:   "over_utilisation",
				PlantID: string(pd.PlantID),
				Message: fmt.Sprintf("average inventory utilisation %.1f%% leaves little capacity headroom", pd.CapacityUtilisation*100),
			})
		}
	}
	return out
}

// idleRouteCheck flags a network-wide summary of zero active routes, which
// usually means every plant is self-sufficient or demand is zero across the
// horizon.
type idleRouteCheck struct{}

func (idleRouteCheck) Name() string { return "idle_network" }

func (idleRouteCheck) Run(d plan.Diagnostics) []Finding {
	if d.Summary.NumActiveRoutes == 0 {
		return []Finding{{Check: "idle_network", Message: "no route carried a shipment in this plan"}}
	}
	return nil
}
