package validate

import "fmt"

// Finding kinds. The first two are structural errors that can never be
// acknowledged away; the rest can be confirmed by an operator.
const (
	KindDuplicateFilename     = "duplicate_filename"
	KindDuplicateBib          = "duplicate_bib"
	KindSectionOrder          = "section_order"
	KindBibOrder              = "bib_order"
	KindStatusWithTime        = "status_with_time"
	KindManualMeasurement     = "manual_measurement"
	KindMeasurementDeficiency = "measurement_deficiency"
)

// Finding is one detected data-integrity problem. Key identifies the same
// semantic problem across re-runs so confirmation decisions survive
// re-validation; Confirmed is set from persisted state by
// ApplyConfirmations and never by the checks themselves.
type Finding struct {
	Kind        string
	Message     string
	Details     interface{}
	Key         string
	Confirmable bool
	Confirmed   bool
}

// DuplicateFilenameDetails: one section token claimed by several files.
type DuplicateFilenameDetails struct {
	Token string
	Files []string
}

// DuplicateBibDetails: a bib recorded more than once in one section.
type DuplicateBibDetails struct {
	Section string
	Bib     int
	Count   int
}

// SectionOrderMismatch describes how one section's bib arrival order
// deviates from the group's baseline section.
type SectionOrderMismatch struct {
	Section       string
	BaselineOrder []int // common bibs, in baseline arrival order
	ObservedOrder []int // common bibs, in this section's arrival order
	Missing       []int // in baseline but not here
	Extra         []int // here but not in baseline
}

// SectionOrderDetails merges every deviating section of one group into a
// single finding.
type SectionOrderDetails struct {
	Group      int
	Baseline   string
	Mismatches []SectionOrderMismatch
}

// BibOrderDetails: one bib visited a group's sections out of definition
// order, or skipped a section it should have passed.
type BibOrderDetails struct {
	Bib      int
	Group    int
	Expected []string // definition order restricted to visited sections
	Actual   []string // observed visitation order
	Skipped  []string // sections between first and last visited, not seen
}

// StatusWithTimeDetails: a RIT/BLNK cell that still has recorded times.
type StatusWithTimeDetails struct {
	Section  string
	Bib      int
	Status   string
	HasStart bool
	HasGoal  bool
}

// ManualMeasurementDetails: a manually timed row that needs operator
// confirmation.
type ManualMeasurementDetails struct {
	File    string
	Section string
	Bib     int
}

// MeasurementDeficiencyDetails: a checkpoint where most timed bibs look
// wrong, suggesting an instrumentation fault.
type MeasurementDeficiencyDetails struct {
	Section string
	Timed   int
	Deviant int
}

func key(parts ...interface{}) string {
	k := ""
	for i, p := range parts {
		if i > 0 {
			k += ":"
		}
		k += fmt.Sprint(p)
	}
	return k
}

// ApplyConfirmations marks findings whose keys the operator has already
// confirmed. Non-confirmable findings are never marked.
func ApplyConfirmations(findings []Finding, confirmed map[string]bool) {
	for i := range findings {
		if findings[i].Confirmable && confirmed[findings[i].Key] {
			findings[i].Confirmed = true
		}
	}
}

// Keys returns the comparison keys of a finding list, for set comparisons.
func Keys(findings []Finding) map[string]bool {
	keys := make(map[string]bool, len(findings))
	for _, f := range findings {
		keys[f.Key] = true
	}
	return keys
}

// HasBlocking reports whether any finding is a non-confirmable structural
// error. The core never blocks on these itself; callers decide.
func HasBlocking(findings []Finding) bool {
	for _, f := range findings {
		if !f.Confirmable {
			return true
		}
	}
	return false
}
