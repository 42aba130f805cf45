package assemble

import "fmt"

// ReferenceError reports a route or demand row referencing an unknown plant,
// or a route whose origin is not a producer (spec §7).
type ReferenceError struct {
	Kind   string // "route" or "demand"
	Ref    string // the offending identifier
	Reason string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s reference error: %q: %s", e.Kind, e.Ref, e.Reason)
}

// InvariantError reports a plant whose maximum capacity is still <= 0 after
// the Assembler has raised it to cover initial inventory and safety stock,
// i.e. a plant with no closing-stock capacity data (spec §7).
type InvariantError struct {
	PlantID string
	Reason  string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("plant %q invariant error: %s", e.PlantID, e.Reason)
}

// DuplicatePlantError reports two node-type rows for the same plant ID.
type DuplicatePlantError struct {
	PlantID string
}

func (e *DuplicatePlantError) Error() string {
	return fmt.Sprintf("duplicate plant id %q", e.PlantID)
}
