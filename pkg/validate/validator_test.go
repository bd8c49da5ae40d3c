package validate

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/hal75-user/PC-System-Tool/pkg/models"
)

func rec(section, event string, bib int, opts ...func(*models.TimingRecord)) models.TimingRecord {
	r := models.TimingRecord{
		File:    section + event + ".csv",
		Section: section,
		Event:   event,
		Bib:     bib,
		Time:    "09:00:00",
		Lane:    "1",
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func withStatus(status string) func(*models.TimingRecord) {
	return func(r *models.TimingRecord) { r.Status = status }
}

func withLane(lane string) func(*models.TimingRecord) {
	return func(r *models.TimingRecord) { r.Lane = lane }
}

func withTime(t string) func(*models.TimingRecord) {
	return func(r *models.TimingRecord) { r.Time = t }
}

func groupedSections(names ...string) []models.Section {
	sections := make([]models.Section, len(names))
	for i, name := range names {
		sections[i] = models.Section{Type: models.SectionPC, Name: name, Group: 1}
	}
	return sections
}

func TestCheckDuplicateFilenames(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"PC3GOAL.csv", "PC3GOAL_PC4START.csv", "PC1START.csv", "notes.csv"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	findings := CheckDuplicateFilenames(dir)
	if len(findings) != 1 {
		t.Fatalf("findings=%d, want 1: %+v", len(findings), findings)
	}
	f := findings[0]
	if f.Kind != KindDuplicateFilename || f.Confirmable {
		t.Fatalf("finding=%+v", f)
	}
	if f.Key != "duplicate_filename:PC3GOAL" {
		t.Fatalf("key=%q", f.Key)
	}
	details := f.Details.(DuplicateFilenameDetails)
	if details.Token != "PC3GOAL" || len(details.Files) != 2 {
		t.Fatalf("details=%+v", details)
	}
}

func TestCheckDuplicateBibs(t *testing.T) {
	records := []models.TimingRecord{
		// START plus GOAL for the same bib is the normal case
		rec("PC1", "START", 1),
		rec("PC1", "GOAL", 1),
		// bib 5 measured twice at the same START
		rec("PC2", "START", 5),
		rec("PC2", "START", 5),
		rec("PC2", "GOAL", 5),
		// a time-less row is not a measurement and never duplicates
		rec("PC3", "START", 1, withTime("")),
		rec("PC3", "START", 1),
	}

	findings := CheckDuplicateBibs(records)
	if len(findings) != 1 {
		t.Fatalf("findings=%d, want 1: %+v", len(findings), findings)
	}
	f := findings[0]
	if f.Key != "duplicate_bib:PC2:5" || f.Confirmable {
		t.Fatalf("finding=%+v", f)
	}
}

func TestCheckSectionPassageOrderMismatch(t *testing.T) {
	sections := groupedSections("PC2", "PC3", "PC4")
	records := []models.TimingRecord{
		rec("PC2", "START", 1), rec("PC2", "START", 2), rec("PC2", "START", 3),
		// PC3 saw bibs 2 and 1 swapped
		rec("PC3", "START", 2), rec("PC3", "START", 1), rec("PC3", "START", 3),
		// PC4 matches the baseline
		rec("PC4", "START", 1), rec("PC4", "START", 2), rec("PC4", "START", 3),
	}

	findings := CheckSectionPassageOrder(records, sections)
	if len(findings) != 1 {
		t.Fatalf("findings=%d, want 1: %+v", len(findings), findings)
	}
	f := findings[0]
	if f.Key != "section_order:1:PC2" || !f.Confirmable {
		t.Fatalf("finding=%+v", f)
	}
	details := f.Details.(SectionOrderDetails)
	if details.Baseline != "PC2" || len(details.Mismatches) != 1 {
		t.Fatalf("details=%+v", details)
	}
	m := details.Mismatches[0]
	if m.Section != "PC3" {
		t.Fatalf("mismatch=%+v", m)
	}
	if !reflect.DeepEqual(m.BaselineOrder, []int{1, 2, 3}) ||
		!reflect.DeepEqual(m.ObservedOrder, []int{2, 1, 3}) {
		t.Fatalf("orders=%v vs %v", m.BaselineOrder, m.ObservedOrder)
	}
}

func TestCheckSectionPassageOrderMissingAndExtra(t *testing.T) {
	sections := groupedSections("PC2", "PC3")
	records := []models.TimingRecord{
		rec("PC2", "START", 1), rec("PC2", "START", 2),
		rec("PC3", "START", 1), rec("PC3", "START", 7),
	}

	findings := CheckSectionPassageOrder(records, sections)
	if len(findings) != 1 {
		t.Fatalf("findings=%d, want 1", len(findings))
	}
	m := findings[0].Details.(SectionOrderDetails).Mismatches[0]
	if !reflect.DeepEqual(m.Missing, []int{2}) || !reflect.DeepEqual(m.Extra, []int{7}) {
		t.Fatalf("missing=%v extra=%v", m.Missing, m.Extra)
	}
}

func TestCheckSectionPassageOrderClean(t *testing.T) {
	sections := groupedSections("PC2", "PC3")
	records := []models.TimingRecord{
		rec("PC2", "START", 1), rec("PC2", "START", 2),
		rec("PC3", "START", 1), rec("PC3", "START", 2),
	}
	if findings := CheckSectionPassageOrder(records, sections); len(findings) != 0 {
		t.Fatalf("findings=%+v, want none", findings)
	}
}

func TestCheckSectionPassageOrderIgnoresStatusRecords(t *testing.T) {
	sections := groupedSections("PC2", "PC3")
	records := []models.TimingRecord{
		rec("PC2", "START", 1), rec("PC2", "START", 2),
		// the swapped bib carries a status override, so it drops out
		rec("PC3", "START", 2, withStatus(models.StatusRetired)),
		rec("PC3", "START", 1),
		// time-less rows are not arrivals either
		rec("PC3", "START", 9, withTime("")),
	}
	if findings := CheckSectionPassageOrder(records, sections); len(findings) != 0 {
		t.Fatalf("findings=%+v, want none", findings)
	}
}

func TestCheckBibPassageOrder(t *testing.T) {
	sections := groupedSections("PC2", "PC3", "PC4")
	records := []models.TimingRecord{
		// bib 1 went backwards
		rec("PC3", "START", 1), rec("PC2", "START", 1),
		// bib 2 skipped PC3
		rec("PC2", "START", 2), rec("PC4", "START", 2),
		// bib 3 is clean
		rec("PC2", "START", 3), rec("PC3", "START", 3), rec("PC4", "START", 3),
	}

	findings := CheckBibPassageOrder(records, sections)
	if len(findings) != 2 {
		t.Fatalf("findings=%d, want 2: %+v", len(findings), findings)
	}

	if findings[0].Key != "bib_order:1:1" {
		t.Fatalf("first key=%q", findings[0].Key)
	}
	d := findings[0].Details.(BibOrderDetails)
	if !reflect.DeepEqual(d.Actual, []string{"PC3", "PC2"}) ||
		!reflect.DeepEqual(d.Expected, []string{"PC2", "PC3"}) {
		t.Fatalf("bib 1 details=%+v", d)
	}

	d = findings[1].Details.(BibOrderDetails)
	if d.Bib != 2 || !reflect.DeepEqual(d.Skipped, []string{"PC3"}) {
		t.Fatalf("bib 2 details=%+v", d)
	}
}

func TestCheckStatusWithTime(t *testing.T) {
	records := []models.TimingRecord{
		rec("PC1", "START", 1, withStatus(models.StatusRetired)),
		rec("PC1", "GOAL", 1, withStatus(models.StatusRetired)),
		// empty time is the expected state for a retired bib
		rec("PC2", "START", 2, withStatus(models.StatusRetired), withTime("")),
		// N.C. keeps its times legitimately
		rec("PC3", "START", 3, withStatus(models.StatusNotClassified)),
	}

	findings := CheckStatusWithTime(records)
	if len(findings) != 1 {
		t.Fatalf("findings=%d, want 1: %+v", len(findings), findings)
	}
	f := findings[0]
	if f.Key != "status_with_time:PC1:1" || !f.Confirmable {
		t.Fatalf("finding=%+v", f)
	}
	d := f.Details.(StatusWithTimeDetails)
	if !d.HasStart || !d.HasGoal {
		t.Fatalf("details=%+v", d)
	}
}

func TestCheckManualMeasurements(t *testing.T) {
	records := []models.TimingRecord{
		rec("PC1", "START", 1, withLane("T")),
		rec("PC1", "START", 1, withLane("T")), // same file and bib, one finding
		rec("PC1", "START", 2),
		rec("PC2", "GOAL", 1, withLane("T")),
	}

	findings := CheckManualMeasurements(records)
	if len(findings) != 2 {
		t.Fatalf("findings=%d, want 2: %+v", len(findings), findings)
	}
	if findings[0].Key != "manual_measurement:PC1START.csv:1" {
		t.Fatalf("key=%q", findings[0].Key)
	}
}

func TestCheckManualMeasurementsTimelessRow(t *testing.T) {
	// a manual row with a bib but no recorded time is still flagged
	records := []models.TimingRecord{
		rec("PC1", "START", 3, withLane("T"), withTime("")),
	}

	findings := CheckManualMeasurements(records)
	if len(findings) != 1 {
		t.Fatalf("findings=%d, want 1: %+v", len(findings), findings)
	}
	if findings[0].Key != "manual_measurement:PC1START.csv:3" {
		t.Fatalf("key=%q", findings[0].Key)
	}
}

func resultCell(t, diff float64, point int) *models.Result {
	return &models.Result{PassageTime: &t, Diff: &diff, Point: point}
}

func TestCheckMeasurementDeficiency(t *testing.T) {
	sections := []models.Section{
		{Type: models.SectionPC, Name: "PC1"},
		{Type: models.SectionCO, Name: "CO1"},
		{Type: models.SectionPCG, Name: "PCG1", Group: 1},
	}

	results := map[models.ResultKey]*models.Result{
		// PC1: two of four timed bibs off by a second or more
		{Bib: 1, Section: "PC1"}: resultCell(90, 0.2, 100),
		{Bib: 2, Section: "PC1"}: resultCell(91, 1.0, 80),
		{Bib: 3, Section: "PC1"}: resultCell(88, -2.0, 60),
		{Bib: 4, Section: "PC1"}: resultCell(90.5, 0.5, 50),
		// CO1: one of three missed the window, below half
		{Bib: 1, Section: "CO1"}: resultCell(60, 0, 20),
		{Bib: 2, Section: "CO1"}: resultCell(65, 5, 20),
		{Bib: 3, Section: "CO1"}: resultCell(125, 65, 0),
		// PCG sections are never checked
		{Bib: 1, Section: "PCG1"}: resultCell(300, 100, 0),
		{Bib: 2, Section: "PCG1"}: resultCell(310, 110, 0),
	}

	findings := CheckMeasurementDeficiency(sections, results)
	if len(findings) != 1 {
		t.Fatalf("findings=%d, want 1: %+v", len(findings), findings)
	}
	f := findings[0]
	if f.Key != "measurement_deficiency:PC1" || !f.Confirmable {
		t.Fatalf("finding=%+v", f)
	}
	d := f.Details.(MeasurementDeficiencyDetails)
	if d.Timed != 4 || d.Deviant != 2 {
		t.Fatalf("details=%+v", d)
	}
}

func TestCheckMeasurementDeficiencySkipsStatusCells(t *testing.T) {
	sections := []models.Section{{Type: models.SectionPC, Name: "PC1"}}
	deviant := resultCell(95, 5, 0)
	overridden := resultCell(95, 5, 0)
	overridden.Status = models.StatusRetired

	results := map[models.ResultKey]*models.Result{
		{Bib: 1, Section: "PC1"}: deviant,
		{Bib: 2, Section: "PC1"}: overridden,
		{Bib: 3, Section: "PC1"}: resultCell(90, 0, 100),
	}

	// one deviant of two counted cells meets the half threshold
	findings := CheckMeasurementDeficiency(sections, results)
	if len(findings) != 1 {
		t.Fatalf("findings=%d, want 1", len(findings))
	}
	if got := findings[0].Details.(MeasurementDeficiencyDetails).Timed; got != 2 {
		t.Fatalf("timed=%d, want 2 (status cell excluded)", got)
	}
}

func TestKeysStableAcrossRuns(t *testing.T) {
	sections := groupedSections("PC2", "PC3")
	records := []models.TimingRecord{
		rec("PC2", "START", 1), rec("PC2", "START", 2),
		rec("PC3", "START", 2), rec("PC3", "START", 1),
	}

	first := Keys(CheckSectionPassageOrder(records, sections))
	second := Keys(CheckSectionPassageOrder(records, sections))
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("keys changed between runs: %v vs %v", first, second)
	}
}

func TestApplyConfirmations(t *testing.T) {
	findings := []Finding{
		{Kind: KindSectionOrder, Key: "section_order:1:PC2", Confirmable: true},
		{Kind: KindDuplicateBib, Key: "duplicate_bib:PC1:5", Confirmable: false},
	}
	confirmed := map[string]bool{
		"section_order:1:PC2": true,
		"duplicate_bib:PC1:5": true, // must not stick to a non-confirmable kind
	}

	ApplyConfirmations(findings, confirmed)
	if !findings[0].Confirmed {
		t.Fatalf("confirmable finding not marked")
	}
	if findings[1].Confirmed {
		t.Fatalf("non-confirmable finding marked confirmed")
	}
}

func TestHasBlocking(t *testing.T) {
	if HasBlocking([]Finding{{Confirmable: true}}) {
		t.Fatalf("confirmable finding reported as blocking")
	}
	if !HasBlocking([]Finding{{Confirmable: true}, {Confirmable: false}}) {
		t.Fatalf("non-confirmable finding not reported as blocking")
	}
	if HasBlocking(nil) {
		t.Fatalf("empty list reported as blocking")
	}
}
