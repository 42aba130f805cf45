package tabular

// Row is one raw record from a table: raw header -> raw cell value, as
// supplied directly by a caller or produced by the excelize workbook
// reader. The Loader never holds these beyond one parse pass.
type Row map[string]string

// Table is one named table's full set of raw rows.
type Table struct {
	Name TableName
	Rows []Row
}

// NodeTypeRow is (plant_id, kind).
type NodeTypeRow struct {
	PlantID string
	Kind    string
}

// OpeningStockRow is (plant_id, quantity).
type OpeningStockRow struct {
	PlantID  string
	Quantity float64
}

// ClosingStockRow is (plant_id, period, min_close, max_close?).
type ClosingStockRow struct {
	PlantID  string
	Period   int
	MinClose float64
	MaxClose *float64
}

// ProductionCostRow is (producer_id, period, cost_per_unit).
type ProductionCostRow struct {
	ProducerID  string
	Period      int
	CostPerUnit float64
}

// ProductionCapacityRow is (producer_id, period, capacity).
type ProductionCapacityRow struct {
	ProducerID string
	Period     int
	Capacity   float64
}

// DemandRow is (consumer_id, period, demand, min_fulfillment_pct?).
type DemandRow struct {
	ConsumerID        string
	Period            int
	Demand            float64
	MinFulfillmentPct *float64
}

// LogisticsRow is (origin_id, destination_id, mode_code, period,
// freight_cost, handling_cost, capacity_multiplier).
type LogisticsRow struct {
	OriginID            string
	DestinationID       string
	ModeCode            string
	Period              int
	FreightCost         float64
	HandlingCost        float64
	CapacityMultiplier  float64
}

// StrategicConstraintRow is (producer_id, mode_code?, dest_id?, period,
// bound, value_type?, value).
type StrategicConstraintRow struct {
	ProducerID string
	ModeCode   *string
	DestID     *string
	Period     int
	Bound      BoundKind
	ValueType  *string
	Value      float64
}

// BoundKind is the relation a strategic constraint row imposes.
type BoundKind string

const (
	BoundLower    BoundKind = "L"
	BoundUpper    BoundKind = "U"
	BoundEquality BoundKind = "E"
)

// parseBoundKind maps the raw column value to a BoundKind, coalescing the
// legacy "G" code to BoundLower (spec §3).
func parseBoundKind(raw string) (BoundKind, bool) {
	switch raw {
	case "L", "G":
		return BoundLower, true
	case "U":
		return BoundUpper, true
	case "E":
		return BoundEquality, true
	default:
		return "", false
	}
}

// Tables is the fully-parsed, typed result of a load: one slice per canonical
// table. The Loader yields this; it holds no state of its own afterward.
type Tables struct {
	NodeTypes           []NodeTypeRow
	OpeningStock        []OpeningStockRow
	ClosingStock        []ClosingStockRow
	ProductionCost      []ProductionCostRow
	ProductionCapacity  []ProductionCapacityRow
	Demand              []DemandRow
	Logistics           []LogisticsRow
	StrategicConstraints []StrategicConstraintRow
}
