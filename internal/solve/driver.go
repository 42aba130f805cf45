// Package solve invokes the MILP backend with time/gap limits and classifies
// its termination into the public status domain.
package solve

import (
	"context"
	"fmt"
	"time"

	"github.com/nextmv-io/sdk/mip"

	"github.com/pinggolf/clinker-planner/internal/plan"
)

// Result is the outcome of one solve attempt: a status and, when solved, the
// backend's Solution for the Plan Extractor to read values from.
type Result struct {
	Status   plan.Status
	Solution mip.Solution
	// Err carries the backend exception message when Status == StatusError
	// (spec §4.5, §7: "Any exception from the backend becomes Error with the
	// exception message preserved").
	Err error
}

// Solve invokes the "highs" branch-and-cut backend on m, honouring ctx's
// deadline if one is set (spec §5) in addition to opts.TimeLimit, and never
// panics or returns a bare error to the caller for backend failures — those
// become Result{Status: StatusError} (spec §4.5: "never throws; it
// classifies").
func Solve(ctx context.Context, m mip.Model, opts Options) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Result{Status: plan.StatusError, Err: fmt.Errorf("solver panic: %v", r)}
		}
	}()

	opts = opts.normalise()

	solver, err := mip.NewSolver("highs", m)
	if err != nil {
		return Result{Status: plan.StatusError, Err: fmt.Errorf("create solver: %w", err)}
	}

	solveOptions := mip.NewSolveOptions()
	limit := opts.TimeLimit
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < limit {
			limit = remaining
		}
	}
	if err := solveOptions.SetMaximumDuration(limit); err != nil {
		return Result{Status: plan.StatusError, Err: fmt.Errorf("set time limit: %w", err)}
	}
	if err := solveOptions.SetMIPGapRelative(opts.RelativeGap); err != nil {
		return Result{Status: plan.StatusError, Err: fmt.Errorf("set relative gap: %w", err)}
	}
	solveOptions.SetVerbosity(mip.Off)

	solution, err := solver.Solve(solveOptions)
	if err != nil {
		return Result{Status: plan.StatusError, Err: err}
	}

	if solution == nil || !solution.HasValues() {
		return Result{Status: plan.StatusInfeasible, Solution: solution}
	}
	if solution.IsOptimal() {
		return Result{Status: plan.StatusOptimal, Solution: solution}
	}
	// The backend found values but could not certify optimality within the
	// configured limits; spec §4.5's status domain has no distinct
	// "suboptimal" bucket, so a bounded, feasible-but-unproven solution is
	// reported as NotSolved rather than silently presented as Optimal.
	return Result{Status: plan.StatusNotSolved, Solution: solution}
}
