// Package planner owns one solve end-to-end: it loads tables, assembles
// parameters, builds the model, invokes the Solver Driver, and — on
// Infeasible — hands off to the Fallback Orchestrator, implementing the
// pipeline's state machine (spec §4.8).
//
// A Session is never reused across solves; New returns a fresh one, holding
// no package-level state, matching the "no shared mutable state between
// solves" requirement (spec §5).
package planner

import (
	"context"
	"fmt"
	"log"

	"github.com/pinggolf/clinker-planner/internal/assemble"
	"github.com/pinggolf/clinker-planner/internal/diagnose"
	"github.com/pinggolf/clinker-planner/internal/extract"
	"github.com/pinggolf/clinker-planner/internal/fallback"
	"github.com/pinggolf/clinker-planner/internal/milp"
	"github.com/pinggolf/clinker-planner/internal/plan"
	"github.com/pinggolf/clinker-planner/internal/solve"
	"github.com/pinggolf/clinker-planner/internal/strategic"
	"github.com/pinggolf/clinker-planner/internal/tabular"
)

// Config controls optional behaviour of a Session's Run.
type Config struct {
	Solve solve.Options

	// EnableFallback turns on automatic re-solve with emergency inflow when
	// the base model is Infeasible (spec §4.7). Scenario S5 of spec §8
	// exercises both settings.
	EnableFallback bool
	// EmergencyUnitCost overrides fallback.DefaultEmergencyUnitCost when > 0.
	EmergencyUnitCost float64

	// RunChecks additionally runs the diagnostic-checks registry over the
	// finished plan and logs any findings; it never changes the plan itself.
	RunChecks bool
}

// Session carries the state of one solve through Load → Assemble → Build →
// Solve → Extract/Fallback → Diagnose.
type Session struct {
	cfg Config

	tables *tabular.Tables
	params *assemble.Parameters
	built  *milp.Model
}

// New returns a fresh Session configured by cfg.
func New(cfg Config) *Session {
	return &Session{cfg: cfg}
}

// Run executes the full pipeline against raw and returns the resulting plan.
// An error is returned only for Load/Assemble/Build failures — a solve that
// terminates Infeasible, NotSolved, or Error is reported as a plan.Plan with
// the corresponding Status, per spec §4.8's "Report(status)" terminal state.
func (s *Session) Run(ctx context.Context, raw map[tabular.TableName]tabular.Table, strategicRows []tabular.StrategicConstraintRow) (*plan.Plan, error) {
	tables, err := tabular.NewLoader().Load(raw)
	if err != nil {
		return nil, fmt.Errorf("load tables: %w", err)
	}
	s.tables = tables

	return s.runFromTables(ctx, strategicRows)
}

// RunWorkbook is Run's Excel-backed entry point (spec §6: optional workbook
// ingestion alongside raw rows).
func (s *Session) RunWorkbook(ctx context.Context, path string) (*plan.Plan, error) {
	tables, err := tabular.NewLoader().LoadWorkbook(path)
	if err != nil {
		return nil, fmt.Errorf("load workbook: %w", err)
	}
	s.tables = tables

	return s.runFromTables(ctx, tables.StrategicConstraints)
}

func (s *Session) runFromTables(ctx context.Context, strategicRows []tabular.StrategicConstraintRow) (*plan.Plan, error) {
	params, err := assemble.Assemble(s.tables)
	if err != nil {
		return nil, fmt.Errorf("assemble parameters: %w", err)
	}
	s.params = params

	built, err := milp.Build(params, milp.Options{})
	if err != nil {
		return nil, fmt.Errorf("build model: %w", err)
	}
	if compiled := strategic.Compile(built.M, built, params, strategicRows); len(compiled) > 0 {
		log.Printf("compiled strategic constraints: %v", compiled)
	}
	s.built = built

	result := solve.Solve(ctx, built.M, s.cfg.Solve)

	switch result.Status {
	case plan.StatusOptimal:
		p := extract.Extract(result.Solution, built)
		p.Diagnostics = diagnose.Diagnose(result.Solution, built)
		s.logChecks(p.Diagnostics)
		return &p, nil

	case plan.StatusInfeasible:
		if !s.cfg.EnableFallback {
			p := plan.Plan{Status: plan.StatusInfeasible, Message: "base model is infeasible; fallback disabled"}
			return &p, nil
		}
		p, err := fallback.Recover(ctx, params, strategicRows, s.cfg.Solve, s.cfg.EmergencyUnitCost)
		if err != nil {
			return nil, fmt.Errorf("fallback recovery: %w", err)
		}
		if p.IsOptimal() {
			s.logChecks(p.Diagnostics)
		}
		return &p, nil

	default:
		p := plan.Plan{Status: result.Status}
		if result.Err != nil {
			p.Message = result.Err.Error()
		}
		return &p, nil
	}
}

func (s *Session) logChecks(d plan.Diagnostics) {
	if !s.cfg.RunChecks {
		return
	}
	for _, f := range diagnose.NewRegistry().RunAll(d) {
		log.Printf("planner: check %s plant=%s: %s", f.Check, f.PlantID, f.Message)
	}
}
