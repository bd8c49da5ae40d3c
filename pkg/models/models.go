package models

// Status codes that can be assigned to a competitor, either for a single
// section or for the overall result. They are supplied by the operator and
// persisted outside the calculation core.
const (
	StatusRetired       = "RIT"  // retired, no time shown
	StatusNotClassified = "N.C." // still timed, excluded from ranking
	StatusBlank         = "BLNK" // no-show
)

// Section scoring types as they appear in the section settings table.
const (
	SectionPC      = "PC"  // precision time trial, ranked by |diff|
	SectionPCG     = "PCG" // grouped PC, elapsed time over several PC checkpoints
	SectionCO      = "CO"  // checkpoint clear, pass/fail window
	SectionUnknown = "UNKNOWN"
)

// Timing event types extracted from race file names.
const (
	EventStart = "START"
	EventGoal  = "GOAL"
)

// Entry is one row of the competitor roster.
type Entry struct {
	Bib          int     `json:"bib"`
	DriverName   string  `json:"driver_name"`
	DriverAge    int     `json:"driver_age"`
	CoDriverName string  `json:"co_driver_name"`
	CoDriverAge  int     `json:"co_driver_age"`
	CarName      string  `json:"car_name"`
	CarYear      int     `json:"car_year"`
	CarClass     string  `json:"car_class"`
	Coef         float64 `json:"coef"`
	AgeCoef      float64 `json:"age_coef"`
}

// Section is one timed stage as defined by the section settings table.
// The order of sections in the table is significant and preserved.
type Section struct {
	Type        string `json:"type"` // PC, PCG or CO
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	TargetTime  int    `json:"target_time"` // seconds
	Group       int    `json:"group"`
	Day         int    `json:"day,omitempty"` // 0 when the table has no DAY column
}

// TimingRecord is one START or GOAL observation for one bib in one section,
// as extracted from a single race file row. Time is kept verbatim; it is only
// parsed when a passage time is derived. Status is stamped from the override
// map before validation and is empty for normally timed records.
type TimingRecord struct {
	File    string `json:"file"`
	Section string `json:"section"`
	Event   string `json:"event"` // START or GOAL
	Bib     int    `json:"bib"`
	Time    string `json:"time"`
	Lane    string `json:"lane,omitempty"` // value of the column left of the time column
	Row     int    `json:"row"`            // data row index within the file
	Status  string `json:"status,omitempty"`
}

// ResultKey addresses one cell of the result grid.
type ResultKey struct {
	Bib     int
	Section string
}

// Result is the computed outcome for one bib in one section. PassageTime and
// Diff are nil when no usable timing data exists. Rank 0 means unranked,
// Status "" means normally scored.
type Result struct {
	PassageTime *float64
	Diff        *float64
	Rank        int
	Point       int
	Status      string
}
