// Package fallback recovers a feasible plan by re-solving with a penalised
// emergency-inflow variable when the base model is infeasible (spec §4.7).
package fallback

import (
	"context"
	"fmt"
	"log"

	"github.com/pinggolf/clinker-planner/internal/assemble"
	"github.com/pinggolf/clinker-planner/internal/diagnose"
	"github.com/pinggolf/clinker-planner/internal/extract"
	"github.com/pinggolf/clinker-planner/internal/milp"
	"github.com/pinggolf/clinker-planner/internal/plan"
	"github.com/pinggolf/clinker-planner/internal/solve"
	"github.com/pinggolf/clinker-planner/internal/strategic"
	"github.com/pinggolf/clinker-planner/internal/tabular"
)

// DefaultEmergencyUnitCost is the default penalty coefficient (spec §4.7).
// It must strictly exceed the largest plausible legitimate cost per unit so
// Emergency is used only when no feasible allocation exists.
const DefaultEmergencyUnitCost = 1_000_000.0

// Recover re-builds the model with EnableEmergency, re-applies any strategic
// constraint rows to the rebuilt model, and re-solves. If the fallback solve
// is Optimal, the returned plan carries a message recording that emergency
// inflow was used; otherwise the last status is returned as-is (spec §4.7).
func Recover(ctx context.Context, params *assemble.Parameters, strategicRows []tabular.StrategicConstraintRow, solveOpts solve.Options, emergencyUnitCost float64) (plan.Plan, error) {
	if emergencyUnitCost <= 0 {
		emergencyUnitCost = DefaultEmergencyUnitCost
	}

	built, err := milp.Build(params, milp.Options{EnableEmergency: true, EmergencyUnitCost: emergencyUnitCost})
	if err != nil {
		return plan.Plan{}, fmt.Errorf("build fallback model: %w", err)
	}
	if compiled := strategic.Compile(built.M, built, params, strategicRows); len(compiled) > 0 {
		log.Printf("compiled strategic constraints for fallback model: %v", compiled)
	}

	result := solve.Solve(ctx, built.M, solveOpts)
	if result.Status != plan.StatusOptimal {
		return plan.Plan{Status: result.Status, Message: fallbackFailureMessage(result)}, nil
	}

	p := extract.Extract(result.Solution, built)
	p.Diagnostics = diagnose.Diagnose(result.Solution, built)
	p.Message = "recovered via emergency inflow: base model was infeasible"
	return p, nil
}

func fallbackFailureMessage(r solve.Result) string {
	if r.Err != nil {
		return fmt.Sprintf("fallback solve did not recover a plan: %v", r.Err)
	}
	return "fallback solve did not recover a plan"
}
