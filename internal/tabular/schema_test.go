package tabular

import "testing"

func TestNormaliseHeader(t *testing.T) {
	cases := map[string]string{
		"Plant_ID":  "plant_id",
		" Quantity ": "quantity",
		"PD":        "pd",
	}
	for in, want := range cases {
		if got := normaliseHeader(in); got != want {
			t.Errorf("normaliseHeader(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveColumns_CanonicalAndAlias(t *testing.T) {
	headers := []string{"Plant", " Qty "}
	resolved := resolveColumns(TableOpeningStock, headers)

	if resolved["plant_id"] != "Plant" {
		t.Errorf("plant_id resolved to %q, want Plant", resolved["plant_id"])
	}
	if resolved["quantity"] != " Qty " {
		t.Errorf("quantity resolved to %q, want \" Qty \"", resolved["quantity"])
	}
}

func TestResolveColumns_UnmatchedColumnOmitted(t *testing.T) {
	headers := []string{"plant_id"}
	resolved := resolveColumns(TableOpeningStock, headers)

	if _, ok := resolved["quantity"]; ok {
		t.Errorf("quantity resolved = %q, want absent when no header matches", resolved["quantity"])
	}
}

func TestResolveColumns_FirstMatchingAliasWins(t *testing.T) {
	// production_cost table: producer_id accepts both "plant_id" and "plant" aliases.
	// When both are present, the earlier-declared alias in the schema wins.
	headers := []string{"plant_id", "plant"}
	resolved := resolveColumns(TableProductionCost, headers)

	if resolved["producer_id"] != "plant_id" {
		t.Errorf("producer_id resolved to %q, want plant_id (first alias takes priority)", resolved["producer_id"])
	}
}
