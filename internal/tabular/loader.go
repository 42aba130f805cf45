package tabular

import (
	"strconv"
	"strings"
)

// Loader parses the eight normalised input tables into typed rows. It holds
// no state between calls to Load; each call is independent (spec §4.1,
// "it holds no global state").
type Loader struct{}

// NewLoader returns a ready-to-use Loader.
func NewLoader() *Loader { return &Loader{} }

// Load parses the given raw tables (keyed by TableName) into Tables,
// rejecting structurally invalid rows with a *SchemaError pointing at table,
// row index, and field (spec §4.1, §7).
func (l *Loader) Load(raw map[TableName]Table) (*Tables, error) {
	out := &Tables{}
	var err error

	if t, ok := raw[TableNodeTypes]; ok {
		if out.NodeTypes, err = parseNodeTypes(t); err != nil {
			return nil, err
		}
	}
	if t, ok := raw[TableOpeningStock]; ok {
		if out.OpeningStock, err = parseOpeningStock(t); err != nil {
			return nil, err
		}
	}
	if t, ok := raw[TableClosingStock]; ok {
		if out.ClosingStock, err = parseClosingStock(t); err != nil {
			return nil, err
		}
	}
	if t, ok := raw[TableProductionCost]; ok {
		if out.ProductionCost, err = parseProductionCost(t); err != nil {
			return nil, err
		}
	}
	if t, ok := raw[TableProductionCapacity]; ok {
		if out.ProductionCapacity, err = parseProductionCapacity(t); err != nil {
			return nil, err
		}
	}
	if t, ok := raw[TableDemand]; ok {
		if out.Demand, err = parseDemand(t); err != nil {
			return nil, err
		}
	}
	if t, ok := raw[TableLogistics]; ok {
		if out.Logistics, err = parseLogistics(t); err != nil {
			return nil, err
		}
	}
	if t, ok := raw[TableStrategicConstraints]; ok {
		if out.StrategicConstraints, err = parseStrategicConstraints(t); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// cell fetches the raw value for a canonical column in a row, given the
// table's resolved canonical->raw header map. Missing columns return "", false.
func cell(row Row, cols map[string]string, canonical string) (string, bool) {
	raw, ok := cols[canonical]
	if !ok {
		return "", false
	}
	v, ok := row[raw]
	return strings.TrimSpace(v), ok
}

func requireString(table TableName, rowIdx int, row Row, cols map[string]string, field string) (string, error) {
	v, ok := cell(row, cols, field)
	if !ok || v == "" {
		return "", newSchemaError(table, rowIdx, field, "required column missing or empty")
	}
	return v, nil
}

func requireFloat(table TableName, rowIdx int, row Row, cols map[string]string, field string, allowNegative bool) (float64, error) {
	v, err := requireString(table, rowIdx, row, cols, field)
	if err != nil {
		return 0, err
	}
	f, perr := strconv.ParseFloat(v, 64)
	if perr != nil {
		return 0, newSchemaError(table, rowIdx, field, "not a number: %q", v)
	}
	if !allowNegative && f < 0 {
		return 0, newSchemaError(table, rowIdx, field, "must be non-negative, got %v", f)
	}
	return f, nil
}

func requireInt(table TableName, rowIdx int, row Row, cols map[string]string, field string) (int, error) {
	v, err := requireString(table, rowIdx, row, cols, field)
	if err != nil {
		return 0, err
	}
	n, perr := strconv.Atoi(v)
	if perr != nil {
		return 0, newSchemaError(table, rowIdx, field, "not an integer: %q", v)
	}
	return n, nil
}

func optionalFloat(row Row, cols map[string]string, field string) (*float64, error) {
	v, ok := cell(row, cols, field)
	if !ok || v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func optionalString(row Row, cols map[string]string, field string) *string {
	v, ok := cell(row, cols, field)
	if !ok || v == "" {
		return nil
	}
	return &v
}

func headers(rows []Row) []string {
	if len(rows) == 0 {
		return nil
	}
	out := make([]string, 0, len(rows[0]))
	for h := range rows[0] {
		out = append(out, h)
	}
	return out
}

func parseNodeTypes(t Table) ([]NodeTypeRow, error) {
	cols := resolveColumns(t.Name, headers(t.Rows))
	out := make([]NodeTypeRow, 0, len(t.Rows))
	for i, row := range t.Rows {
		plantID, err := requireString(t.Name, i, row, cols, "plant_id")
		if err != nil {
			return nil, err
		}
		kind, err := requireString(t.Name, i, row, cols, "kind")
		if err != nil {
			return nil, err
		}
		kind = strings.ToUpper(kind)
		if kind != "IU" && kind != "GU" {
			return nil, newSchemaError(t.Name, i, "kind", "must be IU or GU, got %q", kind)
		}
		out = append(out, NodeTypeRow{PlantID: plantID, Kind: kind})
	}
	return out, nil
}

func parseOpeningStock(t Table) ([]OpeningStockRow, error) {
	cols := resolveColumns(t.Name, headers(t.Rows))
	out := make([]OpeningStockRow, 0, len(t.Rows))
	for i, row := range t.Rows {
		plantID, err := requireString(t.Name, i, row, cols, "plant_id")
		if err != nil {
			return nil, err
		}
		qty, err := requireFloat(t.Name, i, row, cols, "quantity", false)
		if err != nil {
			return nil, err
		}
		out = append(out, OpeningStockRow{PlantID: plantID, Quantity: qty})
	}
	return out, nil
}

func parseClosingStock(t Table) ([]ClosingStockRow, error) {
	cols := resolveColumns(t.Name, headers(t.Rows))
	out := make([]ClosingStockRow, 0, len(t.Rows))
	for i, row := range t.Rows {
		plantID, err := requireString(t.Name, i, row, cols, "plant_id")
		if err != nil {
			return nil, err
		}
		period, err := requireInt(t.Name, i, row, cols, "period")
		if err != nil {
			return nil, err
		}
		minClose, err := requireFloat(t.Name, i, row, cols, "min_close", false)
		if err != nil {
			return nil, err
		}
		maxClose, err := optionalFloat(row, cols, "max_close")
		if err != nil {
			return nil, newSchemaError(t.Name, i, "max_close", "not a number")
		}
		out = append(out, ClosingStockRow{PlantID: plantID, Period: period, MinClose: minClose, MaxClose: maxClose})
	}
	return out, nil
}

func parseProductionCost(t Table) ([]ProductionCostRow, error) {
	cols := resolveColumns(t.Name, headers(t.Rows))
	out := make([]ProductionCostRow, 0, len(t.Rows))
	for i, row := range t.Rows {
		producerID, err := requireString(t.Name, i, row, cols, "producer_id")
		if err != nil {
			return nil, err
		}
		period, err := requireInt(t.Name, i, row, cols, "period")
		if err != nil {
			return nil, err
		}
		cost, err := requireFloat(t.Name, i, row, cols, "cost_per_unit", false)
		if err != nil {
			return nil, err
		}
		out = append(out, ProductionCostRow{ProducerID: producerID, Period: period, CostPerUnit: cost})
	}
	return out, nil
}

func parseProductionCapacity(t Table) ([]ProductionCapacityRow, error) {
	cols := resolveColumns(t.Name, headers(t.Rows))
	out := make([]ProductionCapacityRow, 0, len(t.Rows))
	for i, row := range t.Rows {
		producerID, err := requireString(t.Name, i, row, cols, "producer_id")
		if err != nil {
			return nil, err
		}
		period, err := requireInt(t.Name, i, row, cols, "period")
		if err != nil {
			return nil, err
		}
		cap, err := requireFloat(t.Name, i, row, cols, "capacity", false)
		if err != nil {
			return nil, err
		}
		out = append(out, ProductionCapacityRow{ProducerID: producerID, Period: period, Capacity: cap})
	}
	return out, nil
}

func parseDemand(t Table) ([]DemandRow, error) {
	cols := resolveColumns(t.Name, headers(t.Rows))
	out := make([]DemandRow, 0, len(t.Rows))
	for i, row := range t.Rows {
		consumerID, err := requireString(t.Name, i, row, cols, "consumer_id")
		if err != nil {
			return nil, err
		}
		period, err := requireInt(t.Name, i, row, cols, "period")
		if err != nil {
			return nil, err
		}
		demand, err := requireFloat(t.Name, i, row, cols, "demand", false)
		if err != nil {
			return nil, err
		}
		pct, err := optionalFloat(row, cols, "min_fulfillment_pct")
		if err != nil {
			return nil, newSchemaError(t.Name, i, "min_fulfillment_pct", "not a number")
		}
		out = append(out, DemandRow{ConsumerID: consumerID, Period: period, Demand: demand, MinFulfillmentPct: pct})
	}
	return out, nil
}

func parseLogistics(t Table) ([]LogisticsRow, error) {
	cols := resolveColumns(t.Name, headers(t.Rows))
	out := make([]LogisticsRow, 0, len(t.Rows))
	for i, row := range t.Rows {
		origin, err := requireString(t.Name, i, row, cols, "origin_id")
		if err != nil {
			return nil, err
		}
		dest, err := requireString(t.Name, i, row, cols, "destination_id")
		if err != nil {
			return nil, err
		}
		// A self-loop route (origin == destination) is a reference error,
		// not a schema error — the Assembler rejects it as
		// ReferenceError{Reason: "self-loop route"} (spec §4.2, §7), so it's
		// left unvalidated here rather than surfacing the wrong error kind.
		mode, err := requireString(t.Name, i, row, cols, "mode_code")
		if err != nil {
			return nil, err
		}
		period, err := requireInt(t.Name, i, row, cols, "period")
		if err != nil {
			return nil, err
		}
		freight, err := requireFloat(t.Name, i, row, cols, "freight_cost", false)
		if err != nil {
			return nil, err
		}
		handling, err := requireFloat(t.Name, i, row, cols, "handling_cost", false)
		if err != nil {
			return nil, err
		}
		capMult, err := requireFloat(t.Name, i, row, cols, "capacity_multiplier", false)
		if err != nil {
			return nil, err
		}
		out = append(out, LogisticsRow{
			OriginID: origin, DestinationID: dest, ModeCode: mode, Period: period,
			FreightCost: freight, HandlingCost: handling, CapacityMultiplier: capMult,
		})
	}
	return out, nil
}

func parseStrategicConstraints(t Table) ([]StrategicConstraintRow, error) {
	cols := resolveColumns(t.Name, headers(t.Rows))
	out := make([]StrategicConstraintRow, 0, len(t.Rows))
	for i, row := range t.Rows {
		producerID, err := requireString(t.Name, i, row, cols, "producer_id")
		if err != nil {
			return nil, err
		}
		period, err := requireInt(t.Name, i, row, cols, "period")
		if err != nil {
			return nil, err
		}
		boundRaw, err := requireString(t.Name, i, row, cols, "bound")
		if err != nil {
			return nil, err
		}
		bound, ok := parseBoundKind(strings.ToUpper(boundRaw))
		if !ok {
			return nil, newSchemaError(t.Name, i, "bound", "must be one of L, U, E, G, got %q", boundRaw)
		}
		value, err := requireFloat(t.Name, i, row, cols, "value", false)
		if err != nil {
			return nil, err
		}
		mode := optionalString(row, cols, "mode_code")
		dest := optionalString(row, cols, "dest_id")
		valueType := optionalString(row, cols, "value_type")
		out = append(out, StrategicConstraintRow{
			ProducerID: producerID, ModeCode: mode, DestID: dest, Period: period,
			Bound: bound, ValueType: valueType, Value: value,
		})
	}
	return out, nil
}
