// Package strategic expands wildcard policy rows into concrete linear
// constraints over the MILP's shipment-quantity variables (spec §4.4).
package strategic

import (
	"fmt"

	"github.com/nextmv-io/sdk/mip"

	"github.com/pinggolf/clinker-planner/internal/assemble"
	"github.com/pinggolf/clinker-planner/internal/milp"
	"github.com/pinggolf/clinker-planner/internal/plant"
	"github.com/pinggolf/clinker-planner/internal/tabular"
)

// Compile expands every strategic constraint row into zero or one linear
// constraint on m, selecting the (route, mode, period) triples whose
// producer matches the row's producer and whose period matches the row's
// period, then filtering by the row's destination/mode scope (spec §4.4).
// Rows with unknown producers or periods outside the horizon, and rows whose
// scope matches no triple, are skipped without error (spec §4.4, §7: "the
// Strategic Compiler silently ignores unmatched rows").
//
// Compile returns the diagnostic name of each constraint it actually added,
// in compilation order, so a caller can log which rows took effect;
// mip.Constraint has no name setter in this API, so the name has to be
// tracked alongside the constraint rather than on it.
func Compile(m mip.Model, built *milp.Model, params *assemble.Parameters, rows []tabular.StrategicConstraintRow) []string {
	var compiled []string
	for i, row := range rows {
		if row.Period < 1 || row.Period > params.Horizon {
			continue
		}
		producer := plant.Code(row.ProducerID)
		if _, ok := params.Plants[producer]; !ok {
			continue
		}

		vars := selectQuantities(built, params, producer, row)
		if len(vars) == 0 {
			continue
		}

		c := m.NewConstraint(relation(row.Bound), row.Value)
		for _, v := range vars {
			c.NewTerm(1, v)
		}
		compiled = append(compiled, constraintName(i, row))
	}
	return compiled
}

// selectQuantities returns the Quantity variables matching row's scope under
// the given producer, per the four scope cases in spec §4.4.
func selectQuantities(built *milp.Model, params *assemble.Parameters, producer plant.Code, row tabular.StrategicConstraintRow) []mip.Float {
	var out []mip.Float
	for _, r := range params.Routes {
		if r.Origin != producer {
			continue
		}
		if row.DestID != nil && string(r.Destination) != *row.DestID {
			continue
		}
		for _, mo := range r.Modes {
			if row.ModeCode != nil && mo.Code != *row.ModeCode {
				continue
			}
			idx := milp.ShipIndex{Route: r.ID, Mode: mo.Code, Period: row.Period}
			if v, ok := built.Quantity[idx]; ok {
				out = append(out, v)
			}
		}
	}
	return out
}

func relation(b tabular.BoundKind) mip.Sense {
	switch b {
	case tabular.BoundUpper:
		return mip.LessThanOrEqual
	case tabular.BoundEquality:
		return mip.Equal
	default:
		return mip.GreaterThanOrEqual
	}
}

// constraintName builds the diagnostic name for a compiled row: row index,
// producer, scope (global / mode / route / exact), and period.
func constraintName(rowIdx int, row tabular.StrategicConstraintRow) string {
	scope := "global"
	switch {
	case row.DestID != nil && row.ModeCode != nil:
		scope = fmt.Sprintf("route=%s/mode=%s", *row.DestID, *row.ModeCode)
	case row.DestID != nil:
		scope = fmt.Sprintf("route=%s", *row.DestID)
	case row.ModeCode != nil:
		scope = fmt.Sprintf("mode=%s", *row.ModeCode)
	}
	return fmt.Sprintf("strategic[%d]:producer=%s:%s:period=%d", rowIdx, row.ProducerID, scope, row.Period)
}
