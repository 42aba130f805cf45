package tabular

import "strings"

// TableName identifies one of the eight canonical input tables.
type TableName string

const (
	TableNodeTypes           TableName = "node_types"
	TableOpeningStock        TableName = "opening_stock"
	TableClosingStock        TableName = "closing_stock"
	TableProductionCost      TableName = "production_cost"
	TableProductionCapacity  TableName = "production_capacity"
	TableDemand              TableName = "demand"
	TableLogistics           TableName = "logistics"
	TableStrategicConstraints TableName = "strategic_constraints"
)

// field is one canonical column together with its accepted aliases. Lookups
// are case- and whitespace-insensitive (spec §6.1), resolved once per table
// via normalise below rather than per row.
type field struct {
	canonical string
	aliases   []string
}

// schema maps each canonical column to the set of header spellings observed
// in the wild; it is the "schema registry with aliases" called for in spec
// §9 ("Dynamic column normalisation ... maps to a schema registry with
// aliases, validated once at load").
var schemas = map[TableName][]field{
	TableNodeTypes: {
		{"plant_id", []string{"plant", "plant_code", "plantid"}},
		{"kind", []string{"type", "node_type", "plant_kind"}},
	},
	TableOpeningStock: {
		{"plant_id", []string{"plant", "plant_code"}},
		{"quantity", []string{"opening_stock", "opening_qty", "qty"}},
	},
	TableClosingStock: {
		{"plant_id", []string{"plant", "plant_code"}},
		{"period", []string{"pd", "t"}},
		{"min_close", []string{"min_close_stock", "mincs"}},
		{"max_close", []string{"max_close_stock", "maxcs"}},
	},
	TableProductionCost: {
		{"producer_id", []string{"plant_id", "plant"}},
		{"period", []string{"pd", "t"}},
		{"cost_per_unit", []string{"production_cost", "cost"}},
	},
	TableProductionCapacity: {
		{"producer_id", []string{"plant_id", "plant"}},
		{"period", []string{"pd", "t"}},
		{"capacity", []string{"production_capacity", "cap", "max_production"}},
	},
	TableDemand: {
		{"consumer_id", []string{"plant_id", "plant"}},
		{"period", []string{"pd", "t"}},
		{"demand", []string{"quantity", "qty"}},
		{"min_fulfillment_pct", []string{"min_fulfilment_pct", "min_fulfillment_percentage"}},
	},
	TableLogistics: {
		{"origin_id", []string{"origin", "source_id", "from"}},
		{"destination_id", []string{"destination", "dest_id", "to"}},
		{"mode_code", []string{"mode", "transport_mode"}},
		{"period", []string{"pd", "t"}},
		{"freight_cost", []string{"freight", "freight_cost_per_unit"}},
		{"handling_cost", []string{"handling", "handling_cost_per_unit"}},
		{"capacity_multiplier", []string{"trip_capacity", "capacity", "vehicle_capacity"}},
	},
	TableStrategicConstraints: {
		{"producer_id", []string{"plant_id", "producer"}},
		{"mode_code", []string{"mode"}},
		{"dest_id", []string{"destination_id", "destination"}},
		{"period", []string{"pd", "t"}},
		{"bound", []string{"bound_kind", "kind"}},
		{"value_type", []string{"valuetype"}},
		{"value", []string{"bound_value", "qty"}},
	},
}

// normaliseHeader whitespace-strips and case-folds a raw column name.
func normaliseHeader(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// resolveColumns builds a canonical-name -> raw-header lookup for one table
// given its observed header row, matching case- and whitespace-insensitively
// against the canonical name and its aliases.
func resolveColumns(table TableName, headers []string) map[string]string {
	fields := schemas[table]
	normalisedToRaw := make(map[string]string, len(headers))
	for _, h := range headers {
		normalisedToRaw[normaliseHeader(h)] = h
	}

	resolved := make(map[string]string, len(fields))
	for _, f := range fields {
		candidates := append([]string{f.canonical}, f.aliases...)
		for _, c := range candidates {
			if raw, ok := normalisedToRaw[normaliseHeader(c)]; ok {
				resolved[f.canonical] = raw
				break
			}
		}
	}
	return resolved
}
