package family

import "fmt"

// DiagnosticCode classifies a recoverable data problem.
type DiagnosticCode string

const (
	// DanglingParentRef marks a parentIds entry that resolves to nobody.
	DanglingParentRef DiagnosticCode = "DANGLING_PARENT_REF"
	// DanglingSpouseRef marks a spouseIds entry that resolves to nobody.
	DanglingSpouseRef DiagnosticCode = "DANGLING_SPOUSE_REF"
	// MissingAnchor marks a configured anchor id that is not in the dataset.
	MissingAnchor DiagnosticCode = "MISSING_ANCHOR"
	// CyclicAncestry marks a person reachable as its own descendant.
	CyclicAncestry DiagnosticCode = "CYCLIC_ANCESTRY"
	// Unplaced marks a person that no tree of the layout reaches.
	Unplaced DiagnosticCode = "UNPLACED"
)

// Diagnostic records a non-fatal condition found while building the model.
// The offending reference has already been dropped or skipped when a
// Diagnostic is produced; it exists so shells can surface the problem.
type Diagnostic struct {
	Code     DiagnosticCode `json:"code"`
	PersonID string         `json:"person_id,omitempty"`
	Ref      string         `json:"ref,omitempty"`
}

func (d Diagnostic) String() string {
	switch d.Code {
	case DanglingParentRef:
		return fmt.Sprintf("%s: %q lists unknown parent %q", d.Code, d.PersonID, d.Ref)
	case DanglingSpouseRef:
		return fmt.Sprintf("%s: %q lists unknown spouse %q", d.Code, d.PersonID, d.Ref)
	case MissingAnchor:
		return fmt.Sprintf("%s: anchor %q not found", d.Code, d.Ref)
	case CyclicAncestry:
		return fmt.Sprintf("%s: %q reappears below %q", d.Code, d.Ref, d.PersonID)
	case Unplaced:
		return fmt.Sprintf("%s: %q is not shown in any tree", d.Code, d.PersonID)
	default:
		return fmt.Sprintf("%s: %s %s", d.Code, d.PersonID, d.Ref)
	}
}
